package curator

import (
	"context"
	"errors"

	"github.com/nguyentantai21042004/storycut/internal/models"
)

// Curator picks the narrative cut of a clip from its transcript.
type Curator interface {
	Curate(ctx context.Context, clip models.Clip, tokens []models.TranscriptToken) (models.Edit, error)
}

// ErrEmptyAnswer is returned by a Reasoner when the model answered with
// nothing usable. It is not retried.
var ErrEmptyAnswer = errors.New("empty answer")

// Reasoner sends a prompt to a language model and returns its raw answer.
type Reasoner interface {
	Reason(ctx context.Context, prompt string) (string, error)
}
