package curator

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nguyentantai21042004/storycut/internal/config"
	"github.com/nguyentantai21042004/storycut/internal/logger"
)

type implCurator struct {
	cfg      config.CuratorConfig
	reasoner Reasoner
	logger   logger.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// New creates a Curator that asks reasoner for the cut.
func New(cfg config.CuratorConfig, reasoner Reasoner, log logger.Logger) Curator {
	return &implCurator{
		cfg:      cfg,
		reasoner: reasoner,
		logger:   log,
		sleep:    sleepContext,
	}
}

// NewReasoner builds the backend selected by curator.provider.
func NewReasoner(cfg *config.Config, log logger.Logger) (Reasoner, error) {
	switch cfg.Curator.Provider {
	case "gemini":
		if len(cfg.Gemini.APIKeys) == 0 {
			return nil, fmt.Errorf("GEMINI_API_KEYS is not set")
		}
		return NewGemini(cfg.Gemini.APIKeys, cfg.Gemini.Model, log), nil
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is not set")
		}
		return NewOpenAI(cfg.OpenAI), nil
	case "director":
		return NewDirectorClient(cfg.Director, &http.Client{}), nil
	default:
		return nil, fmt.Errorf("unknown curator provider %q", cfg.Curator.Provider)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
