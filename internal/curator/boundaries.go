package curator

import (
	"sort"
	"strings"
	"time"

	"github.com/nguyentantai21042004/storycut/internal/config"
	"github.com/nguyentantai21042004/storycut/internal/models"
)

// candidate is a proposed range before validation.
type candidate struct {
	Start   time.Duration
	End     time.Duration
	Topic   string
	Tags    []string
	Summary string
}

// candidates turns the response into proposed ranges in play order.
// Sentence ids outside the transcript are clamped to the nearest sentence.
func (r response) candidates(sentences []sentence) []candidate {
	if len(r.Segments) > 0 {
		out := make([]candidate, 0, len(r.Segments))
		for _, s := range r.Segments {
			summary := s.Summary
			if summary == "" {
				summary = s.Text
			}
			out = append(out, candidate{
				Start:   time.Duration(s.Start),
				End:     time.Duration(s.End),
				Topic:   s.Topic,
				Tags:    s.Tags,
				Summary: summary,
			})
		}
		return out
	}

	if len(sentences) == 0 {
		return nil
	}
	var out []candidate
	var run []sentence
	flush := func() {
		if len(run) == 0 {
			return
		}
		texts := make([]string, len(run))
		for i, s := range run {
			texts[i] = s.Text
		}
		out = append(out, candidate{
			Start:   run[0].Start,
			End:     run[len(run)-1].End,
			Summary: strings.Join(texts, " "),
		})
		run = nil
	}
	for _, id := range r.SelectedSequence {
		id = min(max(id, 0), len(sentences)-1)
		if len(run) > 0 && id != run[len(run)-1].ID+1 {
			flush()
		}
		run = append(run, sentences[id])
	}
	flush()
	return out
}

// boundaryRules holds the thresholds used to clean model output.
type boundaryRules struct {
	minSegment time.Duration
	padStart   time.Duration
	padEnd     time.Duration
}

func rulesFrom(cfg config.CuratorConfig) boundaryRules {
	return boundaryRules{
		minSegment: config.Seconds(cfg.MinSegmentSeconds),
		padStart:   config.Seconds(cfg.PadStartSeconds),
		padEnd:     config.Seconds(cfg.PadEndSeconds),
	}
}

// cleanSegments validates proposed ranges against the clip and its tokens.
// Each range is clamped into the clip, snapped to word then frame boundaries
// and trimmed against ranges accepted before it. Ranges left shorter than
// minSegment are dropped.
func cleanSegments(clip models.Clip, tokens []models.TranscriptToken, cands []candidate, rules boundaryRules) ([]models.NarrativeSegment, int) {
	limit := clip.Duration
	if limit <= 0 && len(tokens) > 0 {
		limit = tokens[len(tokens)-1].End
	}

	var out []models.NarrativeSegment
	dropped := 0
	for _, c := range cands {
		start, end := c.Start, c.End
		if end < start {
			start, end = end, start
		}
		start, end = clampRange(start, end, limit)
		if end <= start {
			dropped++
			continue
		}

		start = nearestStart(tokens, start)
		end = nearestEnd(tokens, end)

		start, end = clampRange(start-rules.padStart, end+rules.padEnd, limit)
		start, end = clampRange(clip.SnapToFrame(start), clip.SnapToFrame(end), limit)

		start, end = trimOverlaps(start, end, out)

		dur := end - start
		if dur <= 0 || dur < rules.minSegment {
			dropped++
			continue
		}
		out = append(out, models.NarrativeSegment{
			Position: len(out),
			Start:    start,
			End:      end,
			Topic:    strings.TrimSpace(c.Topic),
			Tags:     c.Tags,
			Summary:  strings.TrimSpace(c.Summary),
		})
	}
	return out, dropped
}

func clampRange(start, end, limit time.Duration) (time.Duration, time.Duration) {
	start = min(max(start, 0), limit)
	end = min(max(end, 0), limit)
	return start, end
}

// trimOverlaps shrinks [start, end) until it overlaps none of accepted.
// A range that swallows an accepted one keeps its leading part.
func trimOverlaps(start, end time.Duration, accepted []models.NarrativeSegment) (time.Duration, time.Duration) {
	for changed := true; changed && start < end; {
		changed = false
		for _, a := range accepted {
			if start >= a.End || end <= a.Start {
				continue
			}
			if start >= a.Start {
				start = a.End
			} else {
				end = a.Start
			}
			changed = true
			if start >= end {
				break
			}
		}
	}
	return start, end
}

// nearestStart snaps t to the closest token start.
func nearestStart(tokens []models.TranscriptToken, t time.Duration) time.Duration {
	return nearest(len(tokens), func(i int) time.Duration { return tokens[i].Start }, t)
}

// nearestEnd snaps t to the closest token end.
func nearestEnd(tokens []models.TranscriptToken, t time.Duration) time.Duration {
	return nearest(len(tokens), func(i int) time.Duration { return tokens[i].End }, t)
}

// nearest finds the value closest to t in a sorted sequence of n values.
func nearest(n int, at func(int) time.Duration, t time.Duration) time.Duration {
	if n == 0 {
		return t
	}
	i := sort.Search(n, func(i int) bool { return at(i) >= t })
	switch {
	case i == 0:
		return at(0)
	case i == n:
		return at(n - 1)
	}
	before, after := at(i-1), at(i)
	if t-before <= after-t {
		return before
	}
	return after
}
