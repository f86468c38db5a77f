package broll

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/nguyentantai21042004/storycut/internal/curator"
	"github.com/nguyentantai21042004/storycut/internal/embedding"
	"github.com/nguyentantai21042004/storycut/internal/logger"
	"github.com/nguyentantai21042004/storycut/internal/media"
	"github.com/nguyentantai21042004/storycut/internal/models"
)

// Library is the read-only set of assets available to a run.
type Library struct {
	Dir    string
	Assets []models.BrollAsset

	embedOnce sync.Once
	vectors   map[string][]float64
}

// LoadLibrary probes every video in dir and attaches its tags. Tags come from
// tagsFile inside dir, when present, plus the words of the file name. Assets
// that cannot be probed are logged and skipped.
func LoadLibrary(ctx context.Context, dir, tagsFile string, prober media.Prober, log logger.Logger) (*Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read broll library: %w", err)
	}

	tags, err := readTags(filepath.Join(dir, tagsFile))
	if err != nil {
		log.Warn(ctx, "Ignoring B-roll tags file: %v", err)
	}

	lib := &Library{Dir: dir}
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !media.IsVideoFile(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())

		clip, err := prober.Probe(ctx, path)
		if err != nil {
			log.Warn(ctx, "Skipping B-roll asset %s: %v", e.Name(), models.NewInputError("load broll", err))
			continue
		}
		if clip.Duration <= 0 {
			log.Warn(ctx, "Skipping B-roll asset %s: %v", e.Name(),
				models.NewInputError("load broll", errors.New("asset has no duration")))
			continue
		}

		lib.Assets = append(lib.Assets, models.BrollAsset{
			Path:     path,
			Duration: clip.Duration,
			Width:    clip.Width,
			Height:   clip.Height,
			Tags:     mergeTags(tags[e.Name()], nameTags(clip.Stem())),
		})
	}

	log.Info(ctx, "Loaded %d B-roll assets from %s", len(lib.Assets), dir)
	return lib, nil
}

// Len returns the number of usable assets; a nil library is empty.
func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Assets)
}

// assetVectors embeds the tag text of every asset once per library.
func (l *Library) assetVectors(ctx context.Context, emb embedding.Embedder, log logger.Logger) map[string][]float64 {
	l.embedOnce.Do(func() {
		texts := make([]string, len(l.Assets))
		for i, a := range l.Assets {
			texts[i] = strings.Join(a.Tags, " ")
		}
		vecs, err := emb.Embed(ctx, texts)
		if err != nil {
			log.Warn(ctx, "B-roll embeddings unavailable, scoring by tags only: %v", err)
			return
		}
		l.vectors = make(map[string][]float64, len(vecs))
		for i, v := range vecs {
			l.vectors[l.Assets[i].Path] = v
		}
	})
	return l.vectors
}

// readTags parses {"file.mp4": ["tag", ...]}. Keys starting with "_" are
// comments. A missing file is not an error.
func readTags(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	out := make(map[string][]string, len(raw))
	for name, v := range raw {
		if strings.HasPrefix(name, "_") {
			continue
		}
		var tags []string
		if err := json.Unmarshal(v, &tags); err != nil {
			return nil, fmt.Errorf("parse tags of %s: %w", name, err)
		}
		out[name] = tags
	}
	return out, nil
}

// nameTags splits a file stem like "city_night-drive02" into words.
func nameTags(stem string) []string {
	fields := strings.FieldsFunc(stem, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	var out []string
	for _, f := range fields {
		if len([]rune(f)) >= 3 {
			out = append(out, f)
		}
	}
	return out
}

func mergeTags(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, t := range list {
			n := curator.NormalizeTag(t)
			if n == "" || seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
