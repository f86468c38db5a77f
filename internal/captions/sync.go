package captions

import (
	"strings"
	"time"

	"github.com/nguyentantai21042004/storycut/internal/config"
	"github.com/nguyentantai21042004/storycut/internal/models"
)

const animationKaraoke = "karaoke"

// word is a token clipped to a segment and re-based to output time.
type word struct {
	text  string
	start time.Duration
	end   time.Duration
}

// Sync builds the cues of every segment. Cues of one segment tile the
// segment's output span exactly: the first starts at the segment start, each
// ends where the next begins and the last ends at the segment end.
func (s *implSynchronizer) Sync(edit models.Edit, tokens []models.TranscriptToken) []models.CaptionCue {
	var cues []models.CaptionCue
	for i, seg := range edit.Segments {
		words := s.segmentWords(seg, edit.OutputStart(i), tokens)
		if len(words) == 0 {
			continue
		}
		cues = append(cues, s.segmentCues(i, edit.OutputStart(i), seg.Duration(), words)...)
	}
	return cues
}

// segmentWords returns the legible words of seg in output time. Tokens that
// straddle a boundary are cut to the kept part; tokens touching the range
// only at a boundary do not belong to it.
func (s *implSynchronizer) segmentWords(seg models.NarrativeSegment, outStart time.Duration, tokens []models.TranscriptToken) []word {
	minWord := config.Seconds(s.cfg.MinWordSeconds)

	var out []word
	for _, tok := range tokens {
		if tok.End <= seg.Start || tok.Start >= seg.End {
			continue
		}
		start := max(tok.Start, seg.Start)
		end := min(tok.End, seg.End)
		if end-start < minWord || end <= start {
			continue
		}
		out = append(out, word{
			text:  tok.Text,
			start: start - seg.Start + outStart,
			end:   end - seg.Start + outStart,
		})
	}
	return out
}

func (s *implSynchronizer) segmentCues(segIdx int, outStart, segDur time.Duration, words []word) []models.CaptionCue {
	groups := s.group(words)

	cues := make([]models.CaptionCue, len(groups))
	for g, ws := range groups {
		start := ws[0].start
		if g == 0 {
			start = outStart
		}
		cues[g] = models.CaptionCue{
			Segment:   segIdx,
			Start:     start,
			Animation: animationKaraoke,
		}
	}
	for g := range cues {
		if g+1 < len(cues) {
			cues[g].End = cues[g+1].Start
		} else {
			cues[g].End = outStart + segDur
		}
	}

	for g, ws := range groups {
		texts := make([]string, len(ws))
		timings := make([]models.WordTiming, len(ws))
		for i, w := range ws {
			texts[i] = s.display(w.text)
			timings[i] = models.WordTiming{
				Text:     texts[i],
				Offset:   w.start - cues[g].Start,
				Duration: w.end - w.start,
			}
		}
		cues[g].Text = strings.Join(texts, " ")
		cues[g].Words = timings
		cues[g].Style = s.style(cues[g])
	}
	return cues
}

// group splits words into cues of at most WordsPerCue, breaking early after
// sentence punctuation or before a long pause.
func (s *implSynchronizer) group(words []word) [][]word {
	maxGap := config.Seconds(s.cfg.MaxGapSeconds)
	perCue := max(s.cfg.WordsPerCue, 1)

	var groups [][]word
	var cur []word
	for i, w := range words {
		if len(cur) > 0 && maxGap > 0 && w.start-words[i-1].end > maxGap {
			groups = append(groups, cur)
			cur = nil
		}
		cur = append(cur, w)
		if len(cur) >= perCue || endsPhrase(w.text) {
			groups = append(groups, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}

func (s *implSynchronizer) style(cue models.CaptionCue) models.CaptionStyle {
	switch {
	case cue.Start < config.Seconds(s.cfg.HookSeconds):
		return models.StyleHook
	case strings.HasSuffix(cue.Text, "!") || strings.HasSuffix(cue.Text, "?"):
		return models.StylePunch
	default:
		return models.StyleDefault
	}
}

func (s *implSynchronizer) display(text string) string {
	if s.cfg.PreserveCase {
		return text
	}
	return strings.ToUpper(text)
}

func endsPhrase(text string) bool {
	return strings.HasSuffix(text, ".") || strings.HasSuffix(text, "?") || strings.HasSuffix(text, "!")
}
