package notify

import (
	"context"

	"github.com/nguyentantai21042004/storycut/internal/models"
)

// Publisher announces finished clips to other services.
type Publisher interface {
	Publish(ctx context.Context, runID string, result models.ClipResult) error
	Close() error
}

// ClipEvent is the message body sent for each clip.
type ClipEvent struct {
	RunID  string            `json:"run_id"`
	Folder string            `json:"folder"`
	Result models.ClipResult `json:"result"`
}
