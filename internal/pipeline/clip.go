package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/nguyentantai21042004/storycut/internal/media"
	"github.com/nguyentantai21042004/storycut/internal/models"
	"github.com/nguyentantai21042004/storycut/internal/report"
	"github.com/nguyentantai21042004/storycut/internal/transcriber"
)

const maxTitleLen = 60

var errCancelled = errors.New("run cancelled")

// clipRun carries one clip through the stages. Each stage reads the output
// of the previous one and owns its own.
type clipRun struct {
	run    *runState
	path   string
	name   string
	result models.ClipResult
}

// processClip runs every stage of one clip. Stage work is detached from ctx;
// cancellation is only observed between stages.
func (p *implPipeline) processClip(ctx context.Context, run *runState, path string) models.ClipResult {
	started := time.Now()
	c := &clipRun{
		run:    run,
		path:   path,
		name:   filepath.Base(path),
		result: models.ClipResult{Clip: filepath.Base(path)},
	}

	if !run.opts.Force && media.HasOutput(path) {
		p.logger.Info(ctx, "Skipping %s: output already exists", c.name)
		c.result.Status = models.StatusSkipped
		c.result.Reason = "output already exists"
		return c.result
	}

	p.logger.Info(ctx, "Starting clip: %s", path)
	err := p.stages(ctx, c)
	c.result.Elapsed = time.Since(started)

	switch {
	case err == nil:
		c.result.Status = models.StatusSucceeded
		p.logger.Info(ctx, "Clip %s done in %s: %s", c.name, c.result.Elapsed.Round(time.Millisecond), c.result.Output)
	case errors.Is(err, errCancelled):
		c.result = cancelled(c.name)
		p.logger.Warn(ctx, "Clip %s cancelled", c.name)
	case models.KindOf(err) == models.KindInput:
		c.result.Status = models.StatusSkipped
		c.result.ErrorKind = models.KindInput
		c.result.Reason = err.Error()
		p.logger.Warn(ctx, "Skipping %s: %v", c.name, err)
	default:
		c.result.Status = models.StatusFailed
		c.result.ErrorKind = models.KindOf(err)
		c.result.Reason = err.Error()
		p.logger.Error(ctx, "Clip %s failed: %v", c.name, err)
	}
	return c.result
}

func (p *implPipeline) stages(ctx context.Context, c *clipRun) error {
	work := context.WithoutCancel(ctx)
	checkpoint := func(stage Stage) error {
		if ctx.Err() != nil {
			return errCancelled
		}
		c.run.obs.OnStage(c.name, stage)
		return nil
	}

	if err := checkpoint(StageProbe); err != nil {
		return err
	}
	clip, err := p.deps.Prober.Probe(work, c.path)
	if err != nil {
		return err
	}

	if err := checkpoint(StageTranscribe); err != nil {
		return err
	}
	stream, err := p.deps.Transcriber.Transcribe(work, clip)
	if err != nil {
		return err
	}
	tokens, incomplete, err := transcriber.Collect(stream)
	if err != nil {
		return err
	}
	if incomplete {
		p.logger.Warn(ctx, "Transcript of %s is incomplete: %v", c.name, stream.Err())
		c.note(fmt.Sprintf("transcript incomplete after %d words", len(tokens)))
	}

	if err := checkpoint(StageCurate); err != nil {
		return err
	}
	edit, err := p.deps.Curator.Curate(work, clip, tokens)
	if err != nil {
		return err
	}

	if err := checkpoint(StageCaptions); err != nil {
		return err
	}
	cues, inserts := p.decorate(work, c, edit, tokens)

	if err := checkpoint(StageCompose); err != nil {
		return err
	}
	tl, err := p.deps.Compositor.Compose(edit, cues, inserts)
	if err != nil {
		return err
	}

	if err := checkpoint(StageRender); err != nil {
		return err
	}
	dest := filepath.Join(filepath.Dir(c.path), OutputName(clip, edit.Title))
	if err := p.deps.Renderer.Render(work, tl, dest); err != nil {
		return err
	}

	c.result.Title = edit.Title
	c.result.Output = dest
	c.result.Duration = tl.Duration
	c.result.Segments = len(tl.Layer(models.LayerBase))
	c.result.Cues = len(tl.Cues)
	c.result.Overlays = len(tl.Layer(models.LayerBroll))

	if p.cfg.Report.Docx && p.deps.Reports != nil {
		sheet := report.CutSheet{Edit: edit, Cues: cues, Inserts: inserts, Output: dest}
		if _, err := p.deps.Reports.WriteCutSheet(work, sheet); err != nil {
			p.logger.Warn(ctx, "Cut sheet for %s failed: %v", c.name, err)
			c.note("cut sheet not written")
		}
	}
	return nil
}

// decorate runs captions and B-roll side by side; both only read the edit.
// Neither can fail the clip.
func (p *implPipeline) decorate(ctx context.Context, c *clipRun, edit models.Edit, tokens []models.TranscriptToken) ([]models.CaptionCue, []models.Insertion) {
	var (
		cues    []models.CaptionCue
		inserts []models.Insertion
		wg      sync.WaitGroup
	)

	if c.run.opts.Captions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cues = p.deps.Captions.Sync(edit, tokens)
		}()
	}

	var brollErr error
	if c.run.opts.Broll && c.run.matcher != nil {
		c.run.obs.OnStage(c.name, StageBroll)
		wg.Add(1)
		go func() {
			defer wg.Done()
			inserts, brollErr = c.run.matcher.Match(ctx, edit)
		}()
	}
	wg.Wait()

	if c.run.opts.Captions && len(cues) == 0 {
		c.note("no legible words for captions")
	}
	if c.run.opts.Broll {
		switch {
		case c.run.matcher == nil:
			c.note(c.run.note)
		case brollErr != nil:
			p.logger.Warn(ctx, "B-roll matching for %s failed: %v", c.name, brollErr)
			inserts = nil
			c.note("B-roll skipped: matching failed")
		case len(inserts) == 0:
			c.note("no B-roll asset matched")
		}
	}
	return cues, inserts
}

func (c *clipRun) note(msg string) {
	if msg != "" {
		c.result.Notes = append(c.result.Notes, msg)
	}
}

// OutputName is FINAL_<clip>_<title>.mp4, or FINAL_<clip>.mp4 without a
// usable title.
func OutputName(clip models.Clip, title string) string {
	if t := sanitizeTitle(title); t != "" {
		return media.OutputPrefix + clip.Stem() + "_" + t + ".mp4"
	}
	return media.OutputPrefix + clip.Stem() + ".mp4"
}

// sanitizeTitle keeps letters and digits and joins words with underscores.
func sanitizeTitle(title string) string {
	words := strings.FieldsFunc(title, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := strings.Join(words, "_")
	if len(out) > maxTitleLen {
		cut := out[:maxTitleLen]
		if i := strings.LastIndexByte(cut, '_'); i > 0 {
			cut = cut[:i]
		}
		out = strings.ToValidUTF8(cut, "")
	}
	return out
}
