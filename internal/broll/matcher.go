package broll

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nguyentantai21042004/storycut/internal/config"
	"github.com/nguyentantai21042004/storycut/internal/curator"
	"github.com/nguyentantai21042004/storycut/internal/embedding"
	"github.com/nguyentantai21042004/storycut/internal/models"
)

type candidate struct {
	asset    models.BrollAsset
	score    float64
	offset   time.Duration
	duration time.Duration
}

// Match picks greedily, segment by segment. Each pick only looks at the
// current usage counts and the cooldown window, never at later segments.
func (m *implMatcher) Match(ctx context.Context, edit models.Edit) ([]models.Insertion, error) {
	if m.library.Len() == 0 || len(edit.Segments) == 0 {
		return nil, nil
	}

	segVecs, assetVecs := m.vectors(ctx, edit)

	var out []models.Insertion
	recent := make([]string, len(edit.Segments))
	for i, seg := range edit.Segments {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		cands := m.candidates(edit, i, segVecs, assetVecs)
		cands = m.withoutCooldown(cands, recent, i)
		if len(cands) == 0 {
			m.logger.Debug(ctx, "No B-roll for segment %d of %s (%q)", i, edit.Clip.Name(), seg.Topic)
			continue
		}

		byPath := make(map[string]candidate, len(cands))
		for _, c := range cands {
			byPath[c.asset.Path] = c
		}
		path, ok := m.usage.Acquire(func(count func(string) int) (string, bool) {
			return best(cands, count)
		})
		if !ok {
			continue
		}

		c := byPath[path]
		recent[i] = path
		out = append(out, models.Insertion{
			Segment:  i,
			Asset:    c.asset,
			Offset:   c.offset,
			Duration: c.duration,
			Score:    c.score,
		})
		m.logger.Debug(ctx, "B-roll %s over segment %d of %s (score %.2f)", filepath.Base(c.asset.Path), i, edit.Clip.Name(), c.score)
	}

	m.logger.Info(ctx, "Matched %d B-roll overlays for %d segments of %s", len(out), len(edit.Segments), edit.Clip.Name())
	return out, nil
}

// candidates returns every asset that is relevant enough and fits segment i.
func (m *implMatcher) candidates(edit models.Edit, i int, segVecs [][]float64, assetVecs map[string][]float64) []candidate {
	seg := edit.Segments[i]
	segTags := tagSet(seg.Tags)

	var out []candidate
	for _, a := range m.library.Assets {
		score := m.cfg.TagWeight * overlap(segTags, a.Tags)
		if segVecs != nil && segVecs[i] != nil && assetVecs[a.Path] != nil {
			score += m.cfg.SemanticWeight * max(embedding.Cosine(segVecs[i], assetVecs[a.Path]), 0)
		}
		if score < m.cfg.MinRelevance || score <= 0 {
			continue
		}

		offset, dur, ok := m.placement(edit, i, a)
		if !ok {
			continue
		}
		out = append(out, candidate{asset: a, score: score, offset: offset, duration: dur})
	}
	return out
}

// placement computes where an asset goes inside segment i. Overlays start
// after the lead-in and never inside the hook window of the output.
func (m *implMatcher) placement(edit models.Edit, i int, a models.BrollAsset) (time.Duration, time.Duration, bool) {
	seg := edit.Segments[i]
	segDur := seg.Duration()
	outStart := edit.OutputStart(i)

	offset := max(config.Seconds(m.cfg.LeadInSeconds), config.Seconds(m.cfg.HookSeconds)-outStart)
	offset = edit.Clip.SnapToFrame(offset)
	if offset >= segDur {
		return 0, 0, false
	}

	dur := min(
		a.Duration,
		time.Duration(m.cfg.MaxOverlayFraction*float64(segDur)),
		config.Seconds(m.cfg.MaxOverlaySeconds),
		segDur-offset,
	)
	dur = edit.Clip.SnapToFrame(dur)
	if offset+dur > segDur {
		dur -= edit.Clip.FrameDuration()
	}
	if dur <= 0 || dur < config.Seconds(m.cfg.MinOverlaySeconds) {
		return 0, 0, false
	}
	return offset, dur, true
}

func (m *implMatcher) withoutCooldown(cands []candidate, recent []string, i int) []candidate {
	window := m.cfg.CooldownSegments
	if window <= 0 {
		return cands
	}
	used := make(map[string]bool, window)
	for j := max(0, i-window); j < i; j++ {
		if recent[j] != "" {
			used[recent[j]] = true
		}
	}

	out := cands[:0:0]
	for _, c := range cands {
		if !used[c.asset.Path] {
			out = append(out, c)
		}
	}
	return out
}

// vectors embeds segment summaries and library tags. Any failure disables
// the semantic term for this edit.
func (m *implMatcher) vectors(ctx context.Context, edit models.Edit) ([][]float64, map[string][]float64) {
	if m.embedder == nil || m.cfg.SemanticWeight <= 0 {
		return nil, nil
	}
	assetVecs := m.library.assetVectors(ctx, m.embedder, m.logger)
	if assetVecs == nil {
		return nil, nil
	}

	texts := make([]string, len(edit.Segments))
	for i, s := range edit.Segments {
		texts[i] = strings.TrimSpace(s.Topic + ". " + s.Summary)
	}
	segVecs, err := m.embedder.Embed(ctx, texts)
	if err != nil {
		m.logger.Warn(ctx, "Segment embeddings failed for %s, scoring by tags only: %v", edit.Clip.Name(), err)
		return nil, nil
	}
	return segVecs, assetVecs
}

// best orders by score, then lower usage, then path.
func best(cands []candidate, count func(string) int) (string, bool) {
	if len(cands) == 0 {
		return "", false
	}
	sorted := append([]candidate(nil), cands...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if ca, cb := count(a.asset.Path), count(b.asset.Path); ca != cb {
			return ca < cb
		}
		return a.asset.Path < b.asset.Path
	})
	return sorted[0].asset.Path, true
}

func tagSet(tags []string) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		if n := stem(curator.NormalizeTag(t)); n != "" {
			set[n] = true
		}
	}
	return set
}

// overlap is the share of segment tags the asset carries.
func overlap(segTags map[string]bool, assetTags []string) float64 {
	if len(segTags) == 0 {
		return 0
	}
	hit := make(map[string]bool)
	for _, t := range assetTags {
		n := stem(curator.NormalizeTag(t))
		if segTags[n] {
			hit[n] = true
		}
	}
	return float64(len(hit)) / float64(len(segTags))
}

// stem folds simple plurals so "cars" matches "car".
func stem(s string) string {
	if len(s) > 3 && strings.HasSuffix(s, "s") && !strings.HasSuffix(s, "ss") {
		return s[:len(s)-1]
	}
	return s
}
