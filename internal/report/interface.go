package report

import (
	"context"

	"github.com/nguyentantai21042004/storycut/internal/models"
)

// FileName is the run report written into the input folder.
const FileName = "storycut-report.json"

// Writer persists run results next to the rendered files.
type Writer interface {
	// WriteReport stores r as JSON in r.Folder and returns the path.
	WriteReport(ctx context.Context, r models.RunReport) (string, error)
	// WriteCutSheet stores a human-readable edit decision list for one clip.
	WriteCutSheet(ctx context.Context, sheet CutSheet) (string, error)
}

// CutSheet is everything the cut sheet document shows for one clip.
type CutSheet struct {
	Edit    models.Edit
	Cues    []models.CaptionCue
	Inserts []models.Insertion
	Output  string
}
