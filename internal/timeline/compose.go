package timeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/nguyentantai21042004/storycut/internal/models"
)

// Compose places base footage, B-roll and captions in output time. Base
// entries follow the segments back to back from zero. Insertions that do
// not fit their segment are dropped before placement.
func (c *implCompositor) Compose(edit models.Edit, cues []models.CaptionCue, inserts []models.Insertion) (models.Timeline, error) {
	ctx := context.Background()
	if len(edit.Segments) == 0 {
		return models.Timeline{}, models.NewRenderError("compose", errors.New("edit has no segments"))
	}

	tl := models.Timeline{
		Clip:     edit.Clip,
		Duration: edit.Duration(),
		Cues:     cues,
	}

	for i, seg := range edit.Segments {
		start := edit.OutputStart(i)
		tl.Entries = append(tl.Entries, models.TimelineEntry{
			Layer:       models.LayerBase,
			Segment:     i,
			Start:       start,
			End:         start + seg.Duration(),
			Source:      edit.Clip.Path,
			SourceStart: seg.Start,
			SourceEnd:   seg.End,
		})
	}

	var lastBrollEnd time.Duration
	for _, ins := range inserts {
		if ins.Segment < 0 || ins.Segment >= len(edit.Segments) {
			c.logger.Warn(ctx, "Dropping B-roll %s: segment %d out of range", ins.Asset.Path, ins.Segment)
			continue
		}
		segStart := edit.OutputStart(ins.Segment)
		segEnd := segStart + edit.Segments[ins.Segment].Duration()
		start := segStart + ins.Offset
		end := start + ins.Duration
		if ins.Duration <= 0 || ins.Offset < 0 || end > segEnd || start < lastBrollEnd {
			c.logger.Warn(ctx, "Dropping B-roll %s: does not fit segment %d", ins.Asset.Path, ins.Segment)
			continue
		}
		lastBrollEnd = end
		tl.Entries = append(tl.Entries, models.TimelineEntry{
			Layer:       models.LayerBroll,
			Segment:     ins.Segment,
			Start:       start,
			End:         end,
			Source:      ins.Asset.Path,
			SourceStart: 0,
			SourceEnd:   ins.Duration,
		})
	}

	for j, cue := range cues {
		tl.Entries = append(tl.Entries, models.TimelineEntry{
			Layer:   models.LayerCaption,
			Segment: cue.Segment,
			Start:   cue.Start,
			End:     cue.End,
			Text:    cue.Text,
			Cue:     j,
		})
	}

	sort.SliceStable(tl.Entries, func(i, j int) bool {
		a, b := tl.Entries[i], tl.Entries[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.Layer < b.Layer
	})

	if err := Validate(tl); err != nil {
		return models.Timeline{}, models.NewRenderError("compose", err)
	}
	return tl, nil
}

// Validate checks that base entries tile [0, Duration) without gaps or
// overlaps and that every overlay lies inside the output.
func Validate(tl models.Timeline) error {
	var at time.Duration
	for _, e := range tl.Layer(models.LayerBase) {
		if e.Start != at {
			return fmt.Errorf("base segment %d starts at %s, want %s", e.Segment, e.Start, at)
		}
		if e.End <= e.Start {
			return fmt.Errorf("base segment %d has no duration", e.Segment)
		}
		if e.SourceEnd-e.SourceStart != e.Duration() {
			return fmt.Errorf("base segment %d source span %s differs from output span %s",
				e.Segment, e.SourceEnd-e.SourceStart, e.Duration())
		}
		at = e.End
	}
	if at != tl.Duration {
		return fmt.Errorf("base footage ends at %s, want %s", at, tl.Duration)
	}

	for _, layer := range []models.Layer{models.LayerBroll, models.LayerCaption} {
		var prevEnd time.Duration
		for _, e := range tl.Layer(layer) {
			if e.Start < 0 || e.End > tl.Duration || e.End <= e.Start {
				return fmt.Errorf("%s entry [%s, %s] outside [0, %s]", layer, e.Start, e.End, tl.Duration)
			}
			if e.Start < prevEnd {
				return fmt.Errorf("%s entries overlap at %s", layer, e.Start)
			}
			prevEnd = e.End
		}
	}
	return nil
}
