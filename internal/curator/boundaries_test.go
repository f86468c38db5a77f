package curator

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nguyentantai21042004/storycut/internal/models"
)

// evenTokens returns back-to-back tokens of the given length covering total.
func evenTokens(total, step time.Duration) []models.TranscriptToken {
	var out []models.TranscriptToken
	for at := time.Duration(0); at+step <= total; at += step {
		out = append(out, models.TranscriptToken{Text: "word", Start: at, End: at + step, Confidence: 1})
	}
	return out
}

func TestCleanSegments(t *testing.T) {
	clip := models.Clip{Path: "c.mp4", Duration: 60 * time.Second, FrameRate: 25}
	tokens := evenTokens(60*time.Second, 500*time.Millisecond)
	rules := boundaryRules{minSegment: 500 * time.Millisecond}
	s := time.Second

	tests := []struct {
		name        string
		cands       []candidate
		want        [][2]time.Duration
		wantDropped int
	}{
		{
			name:  "valid ranges kept",
			cands: []candidate{{Start: 0, End: 20 * s}, {Start: 35 * s, End: 50 * s}},
			want:  [][2]time.Duration{{0, 20 * s}, {35 * s, 50 * s}},
		},
		{
			name:  "out of range clamped",
			cands: []candidate{{Start: -5 * s, End: 3 * s}, {Start: 55 * s, End: 90 * s}},
			want:  [][2]time.Duration{{0, 3 * s}, {55 * s, 60 * s}},
		},
		{
			name:  "snapped to words",
			cands: []candidate{{Start: 10100 * time.Millisecond, End: 14900 * time.Millisecond}},
			want:  [][2]time.Duration{{10 * s, 15 * s}},
		},
		{
			name:  "reversed range repaired",
			cands: []candidate{{Start: 8 * s, End: 4 * s}},
			want:  [][2]time.Duration{{4 * s, 8 * s}},
		},
		{
			name:  "overlap trimmed",
			cands: []candidate{{Start: 10 * s, End: 20 * s}, {Start: 15 * s, End: 25 * s}, {Start: 5 * s, End: 12 * s}},
			want:  [][2]time.Duration{{10 * s, 20 * s}, {20 * s, 25 * s}, {5 * s, 10 * s}},
		},
		{
			name:        "duplicate dropped",
			cands:       []candidate{{Start: 10 * s, End: 20 * s}, {Start: 10 * s, End: 20 * s}},
			want:        [][2]time.Duration{{10 * s, 20 * s}},
			wantDropped: 1,
		},
		{
			name:        "entirely beyond clip dropped",
			cands:       []candidate{{Start: 70 * s, End: 80 * s}},
			wantDropped: 1,
		},
		{
			name:        "shorter than minimum dropped",
			cands:       []candidate{{Start: 30 * s, End: 30100 * time.Millisecond}},
			wantDropped: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs, dropped := cleanSegments(clip, tokens, tt.cands, rules)
			var got [][2]time.Duration
			for i, seg := range segs {
				if seg.Position != i {
					t.Errorf("segment %d has position %d", i, seg.Position)
				}
				got = append(got, [2]time.Duration{seg.Start, seg.End})
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ranges mismatch (-want +got):\n%s", diff)
			}
			if dropped != tt.wantDropped {
				t.Errorf("dropped = %d, want %d", dropped, tt.wantDropped)
			}
		})
	}
}

func TestCleanSegmentsInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	clip := models.Clip{Path: "r.mp4", Duration: 90 * time.Second, FrameRate: 30}
	tokens := evenTokens(88*time.Second, 400*time.Millisecond)
	rules := boundaryRules{
		minSegment: 500 * time.Millisecond,
		padStart:   50 * time.Millisecond,
		padEnd:     100 * time.Millisecond,
	}

	for round := 0; round < 200; round++ {
		var cands []candidate
		for n := rng.Intn(8) + 1; n > 0; n-- {
			start := time.Duration(rng.Int63n(int64(120*time.Second))) - 10*time.Second
			length := time.Duration(rng.Int63n(int64(30 * time.Second)))
			cands = append(cands, candidate{Start: start, End: start + length})
		}

		segs, _ := cleanSegments(clip, tokens, cands, rules)
		for i, a := range segs {
			if a.Start < 0 || a.End > clip.Duration {
				t.Fatalf("round %d: segment %v-%v outside clip", round, a.Start, a.End)
			}
			if a.Duration() < rules.minSegment {
				t.Fatalf("round %d: segment %v-%v too short", round, a.Start, a.End)
			}
			for _, b := range segs[i+1:] {
				if a.Start < b.End && b.Start < a.End {
					t.Fatalf("round %d: %v-%v overlaps %v-%v", round, a.Start, a.End, b.Start, b.End)
				}
			}
		}
	}
}
