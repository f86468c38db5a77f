package captions

import (
	"io"

	"github.com/nguyentantai21042004/storycut/internal/models"
)

// Synchronizer maps kept segments back onto word timings.
type Synchronizer interface {
	// Sync returns cues in output time, ordered by start.
	Sync(edit models.Edit, tokens []models.TranscriptToken) []models.CaptionCue
	// WriteASS renders cues as an Advanced SubStation script.
	WriteASS(w io.Writer, clip models.Clip, cues []models.CaptionCue) error
}
