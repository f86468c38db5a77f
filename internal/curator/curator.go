package curator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/storycut/internal/config"
	"github.com/nguyentantai21042004/storycut/internal/models"
)

// Curate asks the reasoning service for a cut and validates every returned
// range against the transcript before accepting it.
func (c *implCurator) Curate(ctx context.Context, clip models.Clip, tokens []models.TranscriptToken) (models.Edit, error) {
	if len(tokens) == 0 {
		return models.Edit{}, models.NewInputError("curate", errors.New("transcript is empty"))
	}

	sentences := groupSentences(tokens, config.Seconds(c.cfg.SentenceGap), c.cfg.SentenceMaxWords)
	prompt := buildPrompt(clip, sentences, config.Seconds(c.cfg.TargetSeconds), c.cfg.Instructions)

	c.logger.Info(ctx, "Curating %s: %d tokens in %d sentences", clip.Name(), len(tokens), len(sentences))
	started := time.Now()

	raw, attempts, err := c.reason(ctx, clip, prompt)
	if err != nil {
		return models.Edit{}, err
	}
	c.logger.Debug(ctx, "Curation response for %s after %d attempt(s) in %s", clip.Name(), attempts, time.Since(started))

	resp, err := parseResponse(raw)
	if err != nil {
		return models.Edit{}, models.NewCurationParseError("parse", err)
	}

	segments, dropped := cleanSegments(clip, tokens, resp.candidates(sentences), rulesFrom(c.cfg))
	if dropped > 0 {
		c.logger.Warn(ctx, "Dropped %d segment(s) of %s that were empty after clamping", dropped, clip.Name())
	}
	if len(segments) == 0 {
		return models.Edit{}, models.NewCurationParseError("validate",
			fmt.Errorf("none of %d proposed segments survived validation", dropped))
	}

	for i := range segments {
		seg := &segments[i]
		seg.Tags = normalizeTags(seg.Tags)
		if len(seg.Tags) == 0 {
			seg.Tags = deriveTags(tokens, *seg)
		}
		if seg.Summary == "" {
			seg.Summary = spokenText(tokens, *seg)
		}
		if seg.Topic == "" {
			seg.Topic = firstWords(seg.Summary, 6)
		}
	}

	edit := models.Edit{
		Clip:      clip,
		Title:     resp.title(),
		Reasoning: resp.Reasoning,
		Segments:  segments,
	}
	c.logger.Info(ctx, "Curated %s: %d segments, %s of %s", clip.Name(), len(segments), edit.Duration(), clip.Duration)
	return edit, nil
}
