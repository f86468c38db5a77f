package transcriber

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nguyentantai21042004/storycut/internal/config"
	"github.com/nguyentantai21042004/storycut/internal/logger"
	"github.com/nguyentantai21042004/storycut/internal/models"
)

// fakeExecutor answers whisper calls with canned JSON per chunk index.
type fakeExecutor struct {
	chunks       map[int]string
	failChunk    map[int]error
	whisperCalls int
	ffmpegArgs   [][]string
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	if name == "ffmpeg" {
		f.ffmpegArgs = append(f.ffmpegArgs, args)
		return "", nil
	}
	f.whisperCalls++
	input := argValue(args, "-f")
	prefix := argValue(args, "-of")
	var idx int
	if _, err := fmt.Sscanf(filepath.Base(input), "chunk-%03d.wav", &idx); err != nil {
		return "", err
	}
	if err := f.failChunk[idx]; err != nil {
		return "", err
	}
	return "", os.WriteFile(prefix+".json", []byte(f.chunks[idx]), 0644)
}

func (f *fakeExecutor) ExecuteInDir(ctx context.Context, dir, name string, args ...string) (string, error) {
	return f.Execute(ctx, name, args...)
}

func argValue(args []string, flag string) string {
	i := slices.Index(args, flag)
	if i < 0 || i+1 >= len(args) {
		return ""
	}
	return args[i+1]
}

func words(pairs ...any) string {
	var parts []string
	for i := 0; i+2 < len(pairs); i += 3 {
		parts = append(parts, fmt.Sprintf(
			`{"offsets":{"from":%d,"to":%d},"text":" %s","tokens":[{"text":"[_BEG_]","p":0.1},{"text":" %s","p":0.9}]}`,
			pairs[i+1], pairs[i+2], pairs[i], pairs[i]))
	}
	return `{"transcription":[` + strings.Join(parts, ",") + `]}`
}

func newTestTranscriber(t *testing.T, exec *fakeExecutor, chunkSeconds float64) Transcriber {
	t.Helper()
	cfg := &config.Config{
		Whisper: config.WhisperConfig{
			ModelPath:       "model.bin",
			BinaryPath:      "whisper-cli",
			Language:        "en",
			Threads:         4,
			ChunkSeconds:    chunkSeconds,
			MinAudioSeconds: 1,
		},
		FFmpeg: config.FFmpegConfig{Binary: "ffmpeg"},
		Paths:  config.PathsConfig{Temp: t.TempDir()},
	}
	return New(cfg, exec, logger.NewNop())
}

func TestTranscribeRejectsUnusableAudio(t *testing.T) {
	tr := newTestTranscriber(t, &fakeExecutor{}, 300)

	tests := []struct {
		name string
		clip models.Clip
	}{
		{"no audio track", models.Clip{Path: "a.mp4", Duration: time.Minute}},
		{"too short", models.Clip{Path: "a.mp4", Duration: 500 * time.Millisecond, HasAudio: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tr.Transcribe(context.Background(), tt.clip)
			if models.KindOf(err) != models.KindTranscription {
				t.Fatalf("Transcribe() error = %v, want transcription error", err)
			}
		})
	}
}

func TestTranscribeChunks(t *testing.T) {
	exec := &fakeExecutor{chunks: map[int]string{
		0: words("Hello", 100, 400, "world.", 450, 900),
		1: words("Second", 0, 300, "chunk", 250, 700),
	}}
	tr := newTestTranscriber(t, exec, 10)
	clip := models.Clip{Path: "talk.mp4", Duration: 15 * time.Second, HasAudio: true}

	stream, err := tr.Transcribe(context.Background(), clip)
	if err != nil {
		t.Fatal(err)
	}
	tokens, incomplete, err := Collect(stream)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if incomplete {
		t.Error("Collect() incomplete = true, want false")
	}

	want := []models.TranscriptToken{
		{Text: "Hello", Start: 100 * time.Millisecond, End: 400 * time.Millisecond, Confidence: 0.9},
		{Text: "world.", Start: 450 * time.Millisecond, End: 900 * time.Millisecond, Confidence: 0.9},
		{Text: "Second", Start: 10 * time.Second, End: 10300 * time.Millisecond, Confidence: 0.9},
		{Text: "chunk", Start: 10300 * time.Millisecond, End: 10700 * time.Millisecond, Confidence: 0.9},
	}
	if diff := cmp.Diff(want, tokens); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
	if len(exec.ffmpegArgs) != 2 {
		t.Fatalf("ffmpeg called %d times, want 2", len(exec.ffmpegArgs))
	}
	if got := argValue(exec.ffmpegArgs[1], "-ss"); got != "10.000" {
		t.Errorf("second chunk -ss = %q, want 10.000", got)
	}
	if !slices.Contains(exec.ffmpegArgs[0], "-vn") {
		t.Errorf("audio extraction args missing -vn: %v", exec.ffmpegArgs[0])
	}
}

func TestTranscribeTokensOrdered(t *testing.T) {
	exec := &fakeExecutor{chunks: map[int]string{
		0: words("a", 0, 500, "b", 300, 200, "[BLANK_AUDIO]", 600, 700, "c", 800, 900),
	}}
	tr := newTestTranscriber(t, exec, 300)
	stream, err := tr.Transcribe(context.Background(), models.Clip{Path: "x.mp4", Duration: 5 * time.Second, HasAudio: true})
	if err != nil {
		t.Fatal(err)
	}

	tokens, _, err := Collect(stream)
	if err != nil {
		t.Fatal(err)
	}
	if len(tokens) != 3 {
		t.Fatalf("got %d tokens, want 3", len(tokens))
	}
	for i, tok := range tokens {
		if tok.Start > tok.End {
			t.Errorf("token %d: start %v after end %v", i, tok.Start, tok.End)
		}
		if i > 0 && tok.Start < tokens[i-1].End {
			t.Errorf("token %d overlaps previous: %v < %v", i, tok.Start, tokens[i-1].End)
		}
	}
}

func TestTranscribePartialFailure(t *testing.T) {
	exec := &fakeExecutor{
		chunks:    map[int]string{0: words("kept", 0, 500)},
		failChunk: map[int]error{1: errors.New("decoder crashed")},
	}
	tr := newTestTranscriber(t, exec, 10)
	stream, err := tr.Transcribe(context.Background(), models.Clip{Path: "long.mp4", Duration: 30 * time.Second, HasAudio: true})
	if err != nil {
		t.Fatal(err)
	}

	tokens, incomplete, err := Collect(stream)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if !incomplete {
		t.Error("incomplete = false, want true")
	}
	if len(tokens) != 1 || tokens[0].Text != "kept" {
		t.Errorf("tokens = %+v", tokens)
	}
	if stream.Err() == nil || !strings.Contains(stream.Err().Error(), "decoder crashed") {
		t.Errorf("Err() = %v", stream.Err())
	}
	if exec.whisperCalls != 2 {
		t.Errorf("whisper calls = %d, want 2", exec.whisperCalls)
	}
}

func TestTranscribeFirstChunkFailure(t *testing.T) {
	exec := &fakeExecutor{failChunk: map[int]error{0: errors.New("bad model")}}
	tr := newTestTranscriber(t, exec, 300)
	stream, err := tr.Transcribe(context.Background(), models.Clip{Path: "x.mp4", Duration: 5 * time.Second, HasAudio: true})
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = Collect(stream)
	if models.KindOf(err) != models.KindTranscription {
		t.Fatalf("Collect() error = %v, want transcription error", err)
	}
}

func TestStreamIsLazyAndSingleUse(t *testing.T) {
	exec := &fakeExecutor{chunks: map[int]string{
		0: words("one", 0, 100, "two", 200, 300),
		1: words("three", 0, 100),
	}}
	tr := newTestTranscriber(t, exec, 10)
	stream, err := tr.Transcribe(context.Background(), models.Clip{Path: "x.mp4", Duration: 20 * time.Second, HasAudio: true})
	if err != nil {
		t.Fatal(err)
	}

	for tok := range stream.All() {
		if tok.Text != "one" {
			t.Errorf("first token = %q", tok.Text)
		}
		break
	}
	if exec.whisperCalls != 1 {
		t.Errorf("whisper calls after early stop = %d, want 1", exec.whisperCalls)
	}

	count := 0
	for range stream.All() {
		count++
	}
	if count != 0 {
		t.Errorf("second iteration yielded %d tokens, want 0", count)
	}
}

func TestPlanChunks(t *testing.T) {
	tests := []struct {
		name  string
		total time.Duration
		size  time.Duration
		want  int
	}{
		{"single chunk", 30 * time.Second, 300 * time.Second, 1},
		{"exact multiple", 20 * time.Second, 10 * time.Second, 2},
		{"remainder", 25 * time.Second, 10 * time.Second, 3},
		{"no chunking", 25 * time.Second, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := planChunks(tt.total, tt.size)
			if len(spans) != tt.want {
				t.Fatalf("planChunks() = %d spans, want %d", len(spans), tt.want)
			}
			if spans[len(spans)-1].end != tt.total {
				t.Errorf("last span ends at %v, want %v", spans[len(spans)-1].end, tt.total)
			}
		})
	}
}

func TestStreamOf(t *testing.T) {
	tokens := []models.TranscriptToken{
		{Text: "hello", Start: 0, End: 400 * time.Millisecond},
		{Text: "[BLANK_AUDIO]", Start: 400 * time.Millisecond, End: time.Second},
		{Text: "world", Start: time.Second, End: 1400 * time.Millisecond},
	}

	tests := []struct {
		name           string
		failure        error
		wantTokens     int
		wantIncomplete bool
	}{
		{"complete", nil, 2, false},
		{"fails after tokens", errors.New("decoder crashed"), 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, incomplete, err := Collect(StreamOf(tokens, tt.failure))
			if err != nil {
				t.Fatalf("Collect() error = %v", err)
			}
			if len(got) != tt.wantTokens || incomplete != tt.wantIncomplete {
				t.Errorf("Collect() = %d tokens, incomplete %v", len(got), incomplete)
			}
		})
	}
}
