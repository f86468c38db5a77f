package media

import (
	"context"

	"github.com/nguyentantai21042004/storycut/internal/models"
)

// Prober reads container metadata of a media file.
type Prober interface {
	Probe(ctx context.Context, path string) (models.Clip, error)
}
