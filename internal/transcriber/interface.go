package transcriber

import (
	"context"

	"github.com/nguyentantai21042004/storycut/internal/models"
)

// Transcriber turns a clip's speech into word tokens.
type Transcriber interface {
	// Transcribe validates the clip's audio and returns a lazy token stream.
	// Audio is decoded chunk by chunk as the stream is consumed.
	Transcribe(ctx context.Context, clip models.Clip) (*Stream, error)
}
