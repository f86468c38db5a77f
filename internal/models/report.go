package models

import "time"

type ClipStatus string

const (
	StatusSucceeded ClipStatus = "succeeded"
	StatusFailed    ClipStatus = "failed"
	StatusSkipped   ClipStatus = "skipped"
)

// ClipResult is the outcome of one clip in a run. Notes hold partial
// successes, such as B-roll being skipped.
type ClipResult struct {
	Clip      string        `json:"clip"`
	Status    ClipStatus    `json:"status"`
	ErrorKind Kind          `json:"error_kind,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	Notes     []string      `json:"notes,omitempty"`
	Title     string        `json:"title,omitempty"`
	Output    string        `json:"output,omitempty"`
	RemoteURL string        `json:"remote_url,omitempty"`
	Duration  time.Duration `json:"duration"`
	Segments  int           `json:"segments"`
	Cues      int           `json:"cues"`
	Overlays  int           `json:"overlays"`
	Elapsed   time.Duration `json:"elapsed"`
}

type RunSummary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	WithNotes int `json:"with_notes"`
}

// RunReport collects the results of one run over an input folder.
type RunReport struct {
	ID         string         `json:"id"`
	Folder     string         `json:"folder"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Results    []ClipResult   `json:"results"`
	Usage      map[string]int `json:"broll_usage,omitempty"`
	Summary    RunSummary     `json:"summary"`
}

// Finalize recomputes Summary from Results.
func (r *RunReport) Finalize() {
	s := RunSummary{Total: len(r.Results)}
	for _, res := range r.Results {
		switch res.Status {
		case StatusSucceeded:
			s.Succeeded++
			if len(res.Notes) > 0 {
				s.WithNotes++
			}
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		}
	}
	r.Summary = s
}
