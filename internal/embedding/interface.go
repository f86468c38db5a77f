package embedding

import "context"

// Embedder turns texts into vectors for semantic similarity.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}
