package embedding

import (
	"context"
	"errors"
	"fmt"

	cohere "github.com/cohere-ai/cohere-go/v2"
)

// Embed returns one float vector per text.
func (c *implCohere) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := c.client.V2.Embed(
		ctx,
		&cohere.V2EmbedRequest{
			Texts:          texts,
			Model:          c.model,
			InputType:      cohere.EmbedInputTypeSearchDocument,
			EmbeddingTypes: []cohere.EmbeddingType{cohere.EmbeddingTypeFloat},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("cohere embed: %w", err)
	}
	if resp == nil || resp.Embeddings == nil || resp.Embeddings.Float == nil {
		return nil, errors.New("cohere embed returned no float embeddings")
	}
	if len(resp.Embeddings.Float) != len(texts) {
		return nil, fmt.Errorf("cohere embed returned %d vectors for %d texts", len(resp.Embeddings.Float), len(texts))
	}
	return resp.Embeddings.Float, nil
}
