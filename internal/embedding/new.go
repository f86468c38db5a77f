package embedding

import (
	"net/http"
	"time"

	cohereclient "github.com/cohere-ai/cohere-go/v2/client"

	"github.com/nguyentantai21042004/storycut/internal/config"
)

const defaultCohereModel = "embed-english-v3.0"

type implCohere struct {
	client *cohereclient.Client
	model  string
}

// New returns a Cohere embedder, or nil when embeddings are not configured.
func New(cfg config.EmbeddingConfig) Embedder {
	if cfg.Provider != "cohere" || cfg.APIKey == "" {
		return nil
	}
	model := cfg.Model
	if model == "" {
		model = defaultCohereModel
	}
	client := cohereclient.NewClient(
		cohereclient.WithToken(cfg.APIKey),
		cohereclient.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
	)
	return &implCohere{client: client, model: model}
}
