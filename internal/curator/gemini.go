package curator

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/storycut/internal/logger"
)

type geminiReasoner struct {
	mu         sync.Mutex
	apiKeys    []string
	currentKey int
	model      string
	logger     logger.Logger
}

// NewGemini creates a Reasoner that rotates through the supplied Gemini API
// keys when one is rate limited.
func NewGemini(apiKeys []string, model string, log logger.Logger) Reasoner {
	return &geminiReasoner{
		apiKeys: apiKeys,
		model:   model,
		logger:  log,
	}
}

// Reason sends the prompt to Gemini and returns the text of the first candidate.
func (g *geminiReasoner) Reason(ctx context.Context, prompt string) (string, error) {
	if len(g.apiKeys) == 0 {
		return "", fmt.Errorf("no Gemini API keys configured")
	}

	var lastErr error
	for range len(g.apiKeys) {
		key, idx := g.key()

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			lastErr = fmt.Errorf("create client: %w", err)
			g.rotateFrom(idx)
			continue
		}

		result, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			Temperature:      genai.Ptr[float32](0.2),
		})
		if err != nil {
			if isQuotaError(err) {
				g.logger.Warn(ctx, "Key %d rate limited, rotating...", idx+1)
				g.rotateFrom(idx)
				lastErr = err
				continue
			}
			return "", fmt.Errorf("generate content: %w", err)
		}

		if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
			var text strings.Builder
			for _, part := range result.Candidates[0].Content.Parts {
				if part.Text != "" {
					text.WriteString(part.Text)
				}
			}
			return text.String(), nil
		}

		return "", fmt.Errorf("gemini: %w", ErrEmptyAnswer)
	}

	return "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (g *geminiReasoner) key() (string, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.apiKeys[g.currentKey], g.currentKey
}

// rotateFrom advances past idx unless another caller already did.
func (g *geminiReasoner) rotateFrom(idx int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.currentKey == idx {
		g.currentKey = (g.currentKey + 1) % len(g.apiKeys)
	}
}

func isQuotaError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

// IsQuotaError reports whether err is a rate limit or quota failure.
func IsQuotaError(err error) bool {
	return err != nil && isQuotaError(err)
}
