package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nguyentantai21042004/storycut/internal/models"
)

type probeResult struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
		Duration     string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe returns the clip metadata. Missing or unreadable files are input errors.
func (p *implProber) Probe(ctx context.Context, path string) (models.Clip, error) {
	if _, err := os.Stat(path); err != nil {
		return models.Clip{}, models.NewInputError("probe", err)
	}
	if err := ctx.Err(); err != nil {
		return models.Clip{}, err
	}

	out, err := p.probe(path)
	if err != nil {
		return models.Clip{}, models.NewInputError("probe", fmt.Errorf("ffprobe %s: %w", path, err))
	}

	clip, err := parseProbe(path, out)
	if err != nil {
		return models.Clip{}, models.NewInputError("probe", err)
	}
	return clip, nil
}

func parseProbe(path, raw string) (models.Clip, error) {
	var res probeResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return models.Clip{}, fmt.Errorf("decode ffprobe output: %w", err)
	}

	clip := models.Clip{Path: path}
	clip.Duration = parseSeconds(res.Format.Duration)

	for _, s := range res.Streams {
		switch s.CodecType {
		case "video":
			if clip.Width != 0 {
				continue
			}
			clip.Width = s.Width
			clip.Height = s.Height
			clip.FrameRate = parseRate(s.AvgFrameRate)
			if clip.FrameRate == 0 {
				clip.FrameRate = parseRate(s.RFrameRate)
			}
			if clip.Duration == 0 {
				clip.Duration = parseSeconds(s.Duration)
			}
		case "audio":
			clip.HasAudio = true
			if clip.Duration == 0 {
				clip.Duration = parseSeconds(s.Duration)
			}
		}
	}

	if clip.Duration <= 0 {
		return models.Clip{}, fmt.Errorf("%s: no duration in ffprobe output", path)
	}
	return clip, nil
}

func parseSeconds(s string) time.Duration {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 {
		return 0
	}
	return time.Duration(f * float64(time.Second))
}

// parseRate parses ffprobe rates such as "30000/1001".
func parseRate(s string) float64 {
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}
