package timeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/storycut/internal/models"
)

const (
	subtitleFile    = "captions.ass"
	softwareEncoder = "libx264"
)

// Render encodes tl next to dest under a hidden temporary name and renames
// it into place only when ffmpeg succeeds.
func (r *implRenderer) Render(ctx context.Context, tl models.Timeline, dest string) error {
	if err := Validate(tl); err != nil {
		return models.NewRenderError("validate", err)
	}

	r.logger.Info(ctx, "Rendering %s: %s, %d entries", filepath.Base(dest), tl.Duration, len(tl.Entries))

	if err := os.MkdirAll(r.tempRoot, 0755); err != nil {
		return models.NewRenderError("temp dir", err)
	}
	workDir, err := os.MkdirTemp(r.tempRoot, "render-*")
	if err != nil {
		return models.NewRenderError("temp dir", err)
	}
	defer os.RemoveAll(workDir)

	subtitles := ""
	if len(tl.Cues) > 0 {
		var buf bytes.Buffer
		if err := r.subs.WriteASS(&buf, tl.Clip, tl.Cues); err != nil {
			return models.NewRenderError("write captions", err)
		}
		if err := os.WriteFile(filepath.Join(workDir, subtitleFile), buf.Bytes(), 0644); err != nil {
			return models.NewRenderError("write captions", err)
		}
		subtitles = subtitleFile
	}

	absDest, err := filepath.Abs(dest)
	if err != nil {
		return models.NewRenderError("output path", err)
	}
	partial := filepath.Join(filepath.Dir(absDest), "."+filepath.Base(absDest)+"."+uuid.NewString()+".partial")
	defer os.Remove(partial)

	g := buildGraph(tl, r.render, subtitles)
	args, err := r.args(tl, g, r.ffmpeg.Encoder, partial)
	if err != nil {
		return models.NewRenderError("input path", err)
	}

	r.logger.Debug(ctx, "ffmpeg in %s: -filter_complex %s", workDir, joinFilters(g.filters))
	if _, err := r.executor.ExecuteInDir(ctx, workDir, r.ffmpeg.Binary, args...); err != nil {
		if r.ffmpeg.Encoder == softwareEncoder {
			return models.NewRenderError("encode", err)
		}
		r.logger.Warn(ctx, "Encoder %s failed, trying %s: %v", r.ffmpeg.Encoder, softwareEncoder, err)
		args, _ = r.args(tl, g, softwareEncoder, partial)
		if _, err := r.executor.ExecuteInDir(ctx, workDir, r.ffmpeg.Binary, args...); err != nil {
			return models.NewRenderError("encode", fmt.Errorf("both hardware and software encoders failed: %w", err))
		}
	}

	if err := os.Rename(partial, absDest); err != nil {
		return models.NewRenderError("move output", err)
	}

	r.logger.Info(ctx, "Rendered %s", dest)
	return nil
}

// args builds the ffmpeg command line for one encoder.
func (r *implRenderer) args(tl models.Timeline, g graph, encoder, output string) ([]string, error) {
	src, err := filepath.Abs(tl.Clip.Path)
	if err != nil {
		return nil, err
	}
	args := []string{"-y", "-i", src}
	for _, in := range g.inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			return nil, err
		}
		args = append(args, "-i", abs)
	}

	args = append(args, "-filter_complex", joinFilters(g.filters), "-map", "["+g.video+"]")
	if g.audio != "" {
		args = append(args, "-map", "["+g.audio+"]", "-c:a", r.ffmpeg.AudioCodec)
	}

	if encoder == softwareEncoder {
		args = append(args, "-c:v", softwareEncoder, "-preset", r.ffmpeg.Preset, "-crf", strconv.Itoa(r.ffmpeg.CRF))
	} else {
		args = append(args, "-c:v", encoder, "-b:v", r.ffmpeg.VideoBitrate)
	}

	args = append(args,
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		"-f", "mp4", output,
	)
	return args, nil
}
