package broll

import (
	"context"

	"github.com/nguyentantai21042004/storycut/internal/models"
)

// Matcher places library assets over the segments of an edit.
type Matcher interface {
	// Match returns at most one insertion per segment, in segment order.
	// Segments with no asset above the relevance threshold get none.
	Match(ctx context.Context, edit models.Edit) ([]models.Insertion, error)
}
