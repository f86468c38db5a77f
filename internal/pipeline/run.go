package pipeline

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/storycut/internal/broll"
	"github.com/nguyentantai21042004/storycut/internal/media"
	"github.com/nguyentantai21042004/storycut/internal/models"
)

// runState is shared by the clips of one run. The usage table is its only
// mutable part.
type runState struct {
	id      string
	folder  string
	opts    Options
	obs     Observer
	matcher broll.Matcher
	usage   *broll.UsageTable
	note    string
}

func (p *implPipeline) Run(ctx context.Context, folder string, opts Options, obs Observer) (models.RunReport, error) {
	clips, err := media.ScanClips(folder)
	if err != nil {
		return models.RunReport{}, models.NewInputError("scan", err)
	}
	return p.RunClips(ctx, folder, clips, opts, obs)
}

// RunClips fans the clips out to at most performance.max_concurrent workers
// and collects one result per clip, in input order.
func (p *implPipeline) RunClips(ctx context.Context, folder string, clips []string, opts Options, obs Observer) (models.RunReport, error) {
	if obs == nil {
		obs = NopObserver{}
	}
	run := &runState{
		id:     uuid.NewString(),
		folder: folder,
		opts:   opts,
		obs:    obs,
	}
	if p.shared != nil {
		run.usage = p.shared.usage
	} else {
		run.usage = broll.NewUsageTable()
	}
	rep := models.RunReport{ID: run.id, Folder: folder, StartedAt: time.Now()}

	names := make([]string, len(clips))
	for i, c := range clips {
		names[i] = filepath.Base(c)
	}

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Run %s: %d clips in %s (captions=%v, broll=%v)", run.id, len(clips), folder, opts.Captions, opts.Broll)
	p.logger.Info(ctx, "========================================")
	obs.OnStart(run.id, names)

	if opts.Broll {
		if p.shared != nil {
			p.shared.once.Do(func() {
				p.shared.matcher, p.shared.note = p.prepareBroll(context.WithoutCancel(ctx), p.shared.usage)
			})
			run.matcher, run.note = p.shared.matcher, p.shared.note
		} else {
			run.matcher, run.note = p.prepareBroll(ctx, run.usage)
		}
	}

	results := make([]models.ClipResult, len(clips))
	sem := newSemaphore(p.cfg.Performance.MaxConcurrent)
	var wg sync.WaitGroup

	for i, path := range clips {
		if err := sem.acquire(ctx); err != nil {
			results[i] = cancelled(names[i])
			obs.OnClipDone(results[i])
			continue
		}
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer sem.release()

			res := p.processClip(ctx, run, path)
			p.deliver(ctx, run, &res)
			results[i] = res
			obs.OnClipDone(res)
		}(i, path)
	}
	wg.Wait()

	rep.Results = results
	rep.FinishedAt = time.Now()
	rep.Usage = usageByName(run.usage.Snapshot())
	rep.Finalize()

	if p.deps.Reports != nil {
		if _, err := p.deps.Reports.WriteReport(context.WithoutCancel(ctx), rep); err != nil {
			p.logger.Error(ctx, "Failed to write run report: %v", err)
		}
	}

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Run %s finished in %s: %d succeeded, %d failed, %d skipped",
		run.id, rep.FinishedAt.Sub(rep.StartedAt).Round(time.Millisecond), rep.Summary.Succeeded, rep.Summary.Failed, rep.Summary.Skipped)
	p.logger.Info(ctx, "========================================")
	obs.OnFinish(rep)
	return rep, nil
}

// prepareBroll loads the library and returns a matcher over usage. A missing
// library turns B-roll off with a note instead of failing the clips.
func (p *implPipeline) prepareBroll(ctx context.Context, usage *broll.UsageTable) (broll.Matcher, string) {
	dir := p.cfg.Broll.Library
	if dir == "" {
		return nil, "B-roll skipped: no library configured"
	}
	lib, err := broll.LoadLibrary(ctx, dir, p.cfg.Broll.TagsFile, p.deps.Prober, p.logger)
	if err != nil {
		p.logger.Warn(ctx, "B-roll disabled for this run: %v", err)
		return nil, "B-roll skipped: library unavailable"
	}
	if lib.Len() == 0 {
		return nil, "B-roll skipped: library is empty"
	}
	return broll.New(p.cfg.Broll, lib, usage, p.deps.Embedder, p.logger), ""
}

// deliver publishes the result and uploads the render. Failures here only
// add notes.
func (p *implPipeline) deliver(ctx context.Context, run *runState, res *models.ClipResult) {
	ctx = context.WithoutCancel(ctx)

	if p.deps.Uploader != nil && res.Status == models.StatusSucceeded {
		run.obs.OnStage(res.Clip, StageDeliver)
		url, err := p.deps.Uploader.Upload(ctx, res.Output)
		if err != nil {
			p.logger.Warn(ctx, "Upload of %s failed: %v", res.Clip, err)
			res.Notes = append(res.Notes, "upload failed: "+err.Error())
		} else {
			res.RemoteURL = url
		}
	}

	if p.deps.Publisher != nil {
		if err := p.deps.Publisher.Publish(ctx, run.id, *res); err != nil {
			p.logger.Warn(ctx, "Publishing result of %s failed: %v", res.Clip, err)
		}
	}
}

func cancelled(name string) models.ClipResult {
	return models.ClipResult{
		Clip:      name,
		Status:    models.StatusSkipped,
		ErrorKind: models.KindCancelled,
		Reason:    "run cancelled",
	}
}

func usageByName(counts map[string]int) map[string]int {
	if len(counts) == 0 {
		return nil
	}
	out := make(map[string]int, len(counts))
	for path, n := range counts {
		out[filepath.Base(path)] += n
	}
	return out
}
