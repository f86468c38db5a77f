package models

import "time"

// NarrativeSegment is a kept source range of a clip at a given play position.
type NarrativeSegment struct {
	Position int           `json:"position"`
	Start    time.Duration `json:"start"`
	End      time.Duration `json:"end"`
	Topic    string        `json:"topic,omitempty"`
	Tags     []string      `json:"tags,omitempty"`
	Summary  string        `json:"summary,omitempty"`
}

func (s NarrativeSegment) Duration() time.Duration {
	return s.End - s.Start
}

// Edit is the curated cut of one clip: segments in play order.
type Edit struct {
	Clip      Clip               `json:"clip"`
	Title     string             `json:"title,omitempty"`
	Reasoning string             `json:"reasoning,omitempty"`
	Segments  []NarrativeSegment `json:"segments"`
}

// Duration is the length of the output once all segments are concatenated.
func (e Edit) Duration() time.Duration {
	var total time.Duration
	for _, s := range e.Segments {
		total += s.Duration()
	}
	return total
}

// OutputStart returns where segment i begins in the output timeline.
func (e Edit) OutputStart(i int) time.Duration {
	var at time.Duration
	for j := 0; j < i && j < len(e.Segments); j++ {
		at += e.Segments[j].Duration()
	}
	return at
}

// CaptionStyle selects the visual treatment of a cue.
type CaptionStyle string

const (
	StyleDefault CaptionStyle = "default"
	StyleHook    CaptionStyle = "hook"
	StylePunch   CaptionStyle = "punch"
)

// WordTiming places one word inside its cue. Offset is relative to the cue start.
type WordTiming struct {
	Text     string        `json:"text"`
	Offset   time.Duration `json:"offset"`
	Duration time.Duration `json:"duration"`
}

// CaptionCue is one on-screen caption in output time.
type CaptionCue struct {
	Segment   int           `json:"segment"`
	Text      string        `json:"text"`
	Start     time.Duration `json:"start"`
	End       time.Duration `json:"end"`
	Words     []WordTiming  `json:"words"`
	Style     CaptionStyle  `json:"style"`
	Animation string        `json:"animation"`
}

// BrollAsset is a library clip available for overlays. Usage counts live in
// the run's usage table, not on the asset.
type BrollAsset struct {
	Path     string        `json:"path"`
	Duration time.Duration `json:"duration"`
	Width    int           `json:"width"`
	Height   int           `json:"height"`
	Tags     []string      `json:"tags"`
}

// Insertion places an asset over a segment. Offset is relative to the
// segment's start in output time.
type Insertion struct {
	Segment  int           `json:"segment"`
	Asset    BrollAsset    `json:"asset"`
	Offset   time.Duration `json:"offset"`
	Duration time.Duration `json:"duration"`
	Score    float64       `json:"score"`
}
