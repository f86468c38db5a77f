package models

import "time"

// Layer is the z-order of a timeline entry. Higher layers draw on top.
type Layer int

const (
	LayerBase Layer = iota
	LayerBroll
	LayerCaption
)

func (l Layer) String() string {
	switch l {
	case LayerBase:
		return "base"
	case LayerBroll:
		return "broll"
	case LayerCaption:
		return "caption"
	default:
		return "unknown"
	}
}

// TimelineEntry is one placed element. Start and End are output time;
// SourceStart and SourceEnd are in the source file of the entry.
type TimelineEntry struct {
	Layer       Layer         `json:"layer"`
	Segment     int           `json:"segment"`
	Start       time.Duration `json:"start"`
	End         time.Duration `json:"end"`
	Source      string        `json:"source,omitempty"`
	SourceStart time.Duration `json:"source_start"`
	SourceEnd   time.Duration `json:"source_end"`
	Text        string        `json:"text,omitempty"`
	Cue         int           `json:"cue"`
}

func (e TimelineEntry) Duration() time.Duration {
	return e.End - e.Start
}

// Timeline is the full composition of one output file.
type Timeline struct {
	Clip     Clip            `json:"clip"`
	Duration time.Duration   `json:"duration"`
	Entries  []TimelineEntry `json:"entries"`
	Cues     []CaptionCue    `json:"cues,omitempty"`
}

// Layer returns the entries of one layer, in timeline order.
func (t Timeline) Layer(l Layer) []TimelineEntry {
	var out []TimelineEntry
	for _, e := range t.Entries {
		if e.Layer == l {
			out = append(out, e)
		}
	}
	return out
}
