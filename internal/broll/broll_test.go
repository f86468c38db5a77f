package broll

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nguyentantai21042004/storycut/internal/config"
	"github.com/nguyentantai21042004/storycut/internal/logger"
	"github.com/nguyentantai21042004/storycut/internal/models"
)

type fakeProber map[string]time.Duration

func (f fakeProber) Probe(_ context.Context, path string) (models.Clip, error) {
	d, ok := f[filepath.Base(path)]
	if !ok {
		return models.Clip{}, errors.New("invalid data found when processing input")
	}
	return models.Clip{Path: path, Duration: d, Width: 1920, Height: 1080, FrameRate: 30}, nil
}

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		if strings.Contains(t, "money") || strings.Contains(t, "finance") {
			out[i] = []float64{1, 0}
		} else {
			out[i] = []float64{0, 1}
		}
	}
	return out, nil
}

func testConfig() config.BrollConfig {
	return config.BrollConfig{
		MinRelevance:       0.34,
		MaxOverlayFraction: 0.6,
		MaxOverlaySeconds:  3,
		MinOverlaySeconds:  1,
		LeadInSeconds:      0.5,
		CooldownSegments:   2,
		HookSeconds:        5,
		TagWeight:          1,
		SemanticWeight:     0.5,
	}
}

func asset(path string, d time.Duration, tags ...string) models.BrollAsset {
	return models.BrollAsset{Path: path, Duration: d, Tags: tags}
}

func segment(pos int, start, end float64, tags ...string) models.NarrativeSegment {
	return models.NarrativeSegment{
		Position: pos,
		Start:    config.Seconds(start),
		End:      config.Seconds(end),
		Tags:     tags,
	}
}

func testClip() models.Clip {
	return models.Clip{Path: "/in/talk.mp4", Duration: 60 * time.Second, FrameRate: 30}
}

func TestMatch(t *testing.T) {
	city := asset("/lib/city.mp4", 10*time.Second, "city", "traffic")
	food := asset("/lib/food.mp4", 2*time.Second, "cooking", "kitchen")

	tests := []struct {
		name     string
		segments []models.NarrativeSegment
		assets   []models.BrollAsset
		want     []models.Insertion
	}{
		{
			name: "two segments",
			segments: []models.NarrativeSegment{
				segment(0, 0, 20, "city", "night"),
				segment(1, 35, 50, "cooking"),
			},
			assets: []models.BrollAsset{city, food},
			want: []models.Insertion{
				{Segment: 0, Asset: city, Offset: 5 * time.Second, Duration: 3 * time.Second, Score: 0.5},
				{Segment: 1, Asset: food, Offset: 500 * time.Millisecond, Duration: 2 * time.Second, Score: 1},
			},
		},
		{
			name: "nothing clears the threshold",
			segments: []models.NarrativeSegment{
				segment(0, 0, 20, "finance", "markets", "bonds"),
			},
			assets: []models.BrollAsset{city, food},
			want:   nil,
		},
		{
			name: "segment inside the hook window",
			segments: []models.NarrativeSegment{
				segment(0, 10, 14, "city"),
			},
			assets: []models.BrollAsset{city},
			want:   nil,
		},
		{
			name: "asset too short",
			segments: []models.NarrativeSegment{
				segment(0, 0, 20, "city"),
			},
			assets: []models.BrollAsset{asset("/lib/blip.mp4", 500*time.Millisecond, "city")},
			want:   nil,
		},
		{
			name: "plural tags match",
			segments: []models.NarrativeSegment{
				segment(0, 0, 20, "Cars"),
			},
			assets: []models.BrollAsset{asset("/lib/car.mp4", 4*time.Second, "car")},
			want: []models.Insertion{
				{Segment: 0, Asset: asset("/lib/car.mp4", 4*time.Second, "car"), Offset: 5 * time.Second, Duration: 3 * time.Second, Score: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := &Library{Assets: tt.assets}
			m := New(testConfig(), lib, NewUsageTable(), nil, logger.NewNop())

			got, err := m.Match(context.Background(), models.Edit{Clip: testClip(), Segments: tt.segments})
			if err != nil {
				t.Fatalf("Match() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Match() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMatchCooldown(t *testing.T) {
	lib := &Library{Assets: []models.BrollAsset{
		asset("/lib/city1.mp4", 10*time.Second, "city"),
		asset("/lib/city2.mp4", 10*time.Second, "city"),
	}}
	edit := models.Edit{Clip: testClip(), Segments: []models.NarrativeSegment{
		segment(0, 0, 10, "city"),
		segment(1, 10, 20, "city"),
		segment(2, 20, 30, "city"),
	}}

	tests := []struct {
		name     string
		cooldown int
		want     []string
	}{
		{"window of two", 2, []string{"/lib/city1.mp4", "/lib/city2.mp4"}},
		{"window of one", 1, []string{"/lib/city1.mp4", "/lib/city2.mp4", "/lib/city1.mp4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.CooldownSegments = tt.cooldown
			m := New(cfg, lib, NewUsageTable(), nil, logger.NewNop())

			got, err := m.Match(context.Background(), edit)
			if err != nil {
				t.Fatal(err)
			}
			var paths []string
			for _, ins := range got {
				paths = append(paths, ins.Asset.Path)
			}
			if diff := cmp.Diff(tt.want, paths); diff != "" {
				t.Errorf("picked assets mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMatchPrefersLeastUsed(t *testing.T) {
	lib := &Library{Assets: []models.BrollAsset{
		asset("/lib/a.mp4", 10*time.Second, "city"),
		asset("/lib/b.mp4", 10*time.Second, "city"),
	}}
	usage := NewUsageTable()
	usage.Acquire(func(func(string) int) (string, bool) { return "/lib/a.mp4", true })

	m := New(testConfig(), lib, usage, nil, logger.NewNop())
	got, err := m.Match(context.Background(), models.Edit{
		Clip:     testClip(),
		Segments: []models.NarrativeSegment{segment(0, 0, 20, "city")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Asset.Path != "/lib/b.mp4" {
		t.Fatalf("Match() = %+v, want /lib/b.mp4", got)
	}
	if diff := cmp.Diff(map[string]int{"/lib/a.mp4": 1, "/lib/b.mp4": 1}, usage.Snapshot()); diff != "" {
		t.Errorf("usage mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchSemantic(t *testing.T) {
	lib := &Library{Assets: []models.BrollAsset{asset("/lib/cash.mp4", 10*time.Second, "money")}}
	seg := segment(0, 0, 20, "budget")
	seg.Topic = "finance"
	seg.Summary = "how we plan the month"

	tests := []struct {
		name     string
		embedder bool
		want     int
	}{
		{"tags only", false, 0},
		{"with embeddings", true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := &Library{Assets: lib.Assets}
			m := New(testConfig(), lib, NewUsageTable(), nil, logger.NewNop())
			if tt.embedder {
				m = New(testConfig(), lib, NewUsageTable(), fakeEmbedder{}, logger.NewNop())
			}
			got, err := m.Match(context.Background(), models.Edit{Clip: testClip(), Segments: []models.NarrativeSegment{seg}})
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d insertions, want %d", len(got), tt.want)
			}
		})
	}
}

func TestUsageTableConcurrent(t *testing.T) {
	usage := NewUsageTable()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			usage.Acquire(func(count func(string) int) (string, bool) {
				if count("a") <= count("b") {
					return "a", true
				}
				return "b", true
			})
		}()
	}
	wg.Wait()

	if got := usage.Count("a") + usage.Count("b"); got != 50 {
		t.Errorf("total usage = %d, want 50", got)
	}
	if diff := usage.Count("a") - usage.Count("b"); diff < 0 || diff > 1 {
		t.Errorf("usage not balanced: a=%d b=%d", usage.Count("a"), usage.Count("b"))
	}
}

func TestLoadLibrary(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a_city-night.mp4", "broken.mp4", "notes.txt", ".hidden.mp4"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	tags := `{"_comment": "tags per file", "a_city-night.mp4": ["Skyline", "city"]}`
	if err := os.WriteFile(filepath.Join(dir, "tags.json"), []byte(tags), 0644); err != nil {
		t.Fatal(err)
	}

	prober := fakeProber{"a_city-night.mp4": 8 * time.Second, ".hidden.mp4": time.Second}
	lib, err := LoadLibrary(context.Background(), dir, "tags.json", prober, logger.NewNop())
	if err != nil {
		t.Fatalf("LoadLibrary() error = %v", err)
	}

	want := []models.BrollAsset{{
		Path:     filepath.Join(dir, "a_city-night.mp4"),
		Duration: 8 * time.Second,
		Width:    1920,
		Height:   1080,
		Tags:     []string{"skyline", "city", "night"},
	}}
	if diff := cmp.Diff(want, lib.Assets); diff != "" {
		t.Errorf("assets mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadLibraryMissingDir(t *testing.T) {
	_, err := LoadLibrary(context.Background(), filepath.Join(t.TempDir(), "nope"), "tags.json", fakeProber{}, logger.NewNop())
	if err == nil {
		t.Error("LoadLibrary() should fail for a missing directory")
	}
}
