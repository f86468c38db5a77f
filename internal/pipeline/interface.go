package pipeline

import (
	"context"

	"github.com/nguyentantai21042004/storycut/internal/models"
)

// Pipeline turns a folder of source clips into finished edits.
type Pipeline interface {
	// Run processes every source clip in folder and writes the run report
	// there. Clips fail independently; the error is only set when the folder
	// itself cannot be read.
	Run(ctx context.Context, folder string, opts Options, obs Observer) (models.RunReport, error)
	// RunClips is Run over an explicit list of clips inside folder.
	RunClips(ctx context.Context, folder string, clips []string, opts Options, obs Observer) (models.RunReport, error)
	// Session returns a Pipeline whose runs share one B-roll library and one
	// usage table, loaded on first use. Watch mode runs every clip through it.
	Session() Pipeline
}

// Options are the switches exposed to the front end.
type Options struct {
	Captions bool
	Broll    bool
	// Force re-renders clips that already have a FINAL_ output.
	Force bool
}

// DefaultOptions enables every stage.
func DefaultOptions() Options {
	return Options{Captions: true, Broll: true}
}

// Stage names a step of the per-clip pipeline.
type Stage string

const (
	StageProbe      Stage = "probe"
	StageTranscribe Stage = "transcribe"
	StageCurate     Stage = "curate"
	StageCaptions   Stage = "captions"
	StageBroll      Stage = "broll"
	StageCompose    Stage = "compose"
	StageRender     Stage = "render"
	StageDeliver    Stage = "deliver"
)

// Observer receives progress. Methods are called from worker goroutines and
// must be safe for concurrent use.
type Observer interface {
	OnStart(runID string, clips []string)
	OnStage(clip string, stage Stage)
	OnClipDone(result models.ClipResult)
	OnFinish(report models.RunReport)
}

// NopObserver ignores all progress.
type NopObserver struct{}

func (NopObserver) OnStart(string, []string) {}
func (NopObserver) OnStage(string, Stage) {}
func (NopObserver) OnClipDone(models.ClipResult) {}
func (NopObserver) OnFinish(models.RunReport) {}
