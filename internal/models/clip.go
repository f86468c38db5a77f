package models

import (
	"math"
	"path/filepath"
	"strings"
	"time"
)

const defaultFrameRate = 30.0

// Clip is a probed source media file. It is never modified after probing.
type Clip struct {
	Path      string        `json:"path"`
	Duration  time.Duration `json:"duration"`
	Width     int           `json:"width"`
	Height    int           `json:"height"`
	FrameRate float64       `json:"frame_rate"`
	HasAudio  bool          `json:"has_audio"`
}

// Name returns the base file name of the clip.
func (c Clip) Name() string {
	return filepath.Base(c.Path)
}

// Stem returns the file name without extension.
func (c Clip) Stem() string {
	name := c.Name()
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func (c Clip) fps() float64 {
	if c.FrameRate <= 0 {
		return defaultFrameRate
	}
	return c.FrameRate
}

// FrameDuration returns the length of one frame, assuming 30fps when unknown.
func (c Clip) FrameDuration() time.Duration {
	return time.Duration(float64(time.Second) / c.fps())
}

// SnapToFrame rounds d to the nearest frame boundary.
func (c Clip) SnapToFrame(d time.Duration) time.Duration {
	fps := c.fps()
	n := math.Round(d.Seconds() * fps)
	return time.Duration(n * float64(time.Second) / fps)
}

// TranscriptToken is one recognized word. Start <= End always holds and tokens
// of one clip never overlap.
type TranscriptToken struct {
	Text       string        `json:"text"`
	Start      time.Duration `json:"start"`
	End        time.Duration `json:"end"`
	Confidence float64       `json:"confidence"`
}

func (t TranscriptToken) Duration() time.Duration {
	return t.End - t.Start
}
