package transcriber

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nguyentantai21042004/storycut/internal/config"
	"github.com/nguyentantai21042004/storycut/internal/models"
)

type span struct {
	start time.Duration
	end   time.Duration
}

// Transcribe checks that the clip carries usable audio and returns a stream
// that extracts and transcribes one chunk at a time.
func (t *implTranscriber) Transcribe(ctx context.Context, clip models.Clip) (*Stream, error) {
	if !clip.HasAudio {
		return nil, models.NewTranscriptionError("transcribe", fmt.Errorf("%s has no audio track", clip.Name()))
	}
	minAudio := config.Seconds(t.whisper.MinAudioSeconds)
	if clip.Duration < minAudio {
		return nil, models.NewTranscriptionError("transcribe",
			fmt.Errorf("%s audio is %s, shorter than %s", clip.Name(), clip.Duration, minAudio))
	}

	spans := planChunks(clip.Duration, config.Seconds(t.whisper.ChunkSeconds))
	t.logger.Info(ctx, "Transcribing %s in %d chunk(s) with %d threads", clip.Name(), len(spans), t.whisper.Threads)

	var workDir string
	decode := func(ctx context.Context, idx int, s span) ([]models.TranscriptToken, error) {
		if workDir == "" {
			if err := os.MkdirAll(t.tempRoot, 0755); err != nil {
				return nil, fmt.Errorf("create temp root: %w", err)
			}
			dir, err := os.MkdirTemp(t.tempRoot, "transcribe-*")
			if err != nil {
				return nil, fmt.Errorf("create temp dir: %w", err)
			}
			workDir = dir
		}
		return t.transcribeChunk(ctx, clip, workDir, idx, s)
	}
	cleanup := func() {
		if workDir != "" {
			os.RemoveAll(workDir)
		}
	}

	return newStream(ctx, spans, decode, cleanup), nil
}

func (t *implTranscriber) transcribeChunk(ctx context.Context, clip models.Clip, dir string, idx int, s span) ([]models.TranscriptToken, error) {
	audioPath := filepath.Join(dir, fmt.Sprintf("chunk-%03d.wav", idx))
	if err := t.extractAudio(ctx, clip.Path, audioPath, s); err != nil {
		return nil, fmt.Errorf("chunk %d: %w", idx, err)
	}
	defer t.cleanupTempFile(ctx, audioPath)

	tokens, err := t.runWhisper(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("chunk %d: %w", idx, err)
	}

	for i := range tokens {
		tokens[i].Start += s.start
		tokens[i].End += s.start
		if tokens[i].End > s.end {
			tokens[i].End = s.end
		}
	}

	t.logger.Debug(ctx, "Chunk %d of %s: %d tokens (%s-%s)", idx, clip.Name(), len(tokens), s.start, s.end)
	return tokens, nil
}

// planChunks splits [0, total) into consecutive spans of at most size.
func planChunks(total, size time.Duration) []span {
	if size <= 0 || size >= total {
		return []span{{start: 0, end: total}}
	}
	var spans []span
	for at := time.Duration(0); at < total; at += size {
		end := at + size
		if end > total {
			end = total
		}
		spans = append(spans, span{start: at, end: end})
	}
	return spans
}

// cleanupTempFile removes a temporary file, logs warning if fails
func (t *implTranscriber) cleanupTempFile(ctx context.Context, filePath string) {
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		t.logger.Warn(ctx, "Failed to cleanup temp file %s: %v", filePath, err)
	}
}
