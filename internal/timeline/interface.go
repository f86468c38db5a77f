package timeline

import (
	"context"
	"io"

	"github.com/nguyentantai21042004/storycut/internal/models"
)

// Compositor merges the outputs of the earlier stages into one timeline.
type Compositor interface {
	Compose(edit models.Edit, cues []models.CaptionCue, inserts []models.Insertion) (models.Timeline, error)
}

// Renderer encodes a timeline into a media file.
type Renderer interface {
	// Render writes the output to dest. On failure dest is left untouched.
	Render(ctx context.Context, tl models.Timeline, dest string) error
}

// SubtitleWriter writes the caption track of a timeline.
type SubtitleWriter interface {
	WriteASS(w io.Writer, clip models.Clip, cues []models.CaptionCue) error
}
