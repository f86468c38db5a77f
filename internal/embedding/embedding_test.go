package embedding

import (
	"math"
	"testing"

	"github.com/nguyentantai21042004/storycut/internal/config"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 1}, []float64{-1, -1}, -1},
		{"length mismatch", []float64{1}, []float64{1, 2}, 0},
		{"zero vector", []float64{0, 0}, []float64{1, 2}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.EmbeddingConfig
		wantNil bool
	}{
		{"disabled", config.EmbeddingConfig{}, true},
		{"missing key", config.EmbeddingConfig{Provider: "cohere"}, true},
		{"unknown provider", config.EmbeddingConfig{Provider: "other", APIKey: "k"}, true},
		{"cohere", config.EmbeddingConfig{Provider: "cohere", APIKey: "k"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.cfg)
			if (got == nil) != tt.wantNil {
				t.Errorf("New() = %v, wantNil %v", got, tt.wantNil)
			}
		})
	}
}
