package transcriber

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nguyentantai21042004/storycut/internal/models"
)

type whisperOutput struct {
	Transcription []whisperSegment `json:"transcription"`
}

type whisperSegment struct {
	Offsets struct {
		From int64 `json:"from"`
		To   int64 `json:"to"`
	} `json:"offsets"`
	Text   string `json:"text"`
	Tokens []struct {
		Text string  `json:"text"`
		P    float64 `json:"p"`
	} `json:"tokens"`
}

// runWhisper transcribes one WAV file into word tokens relative to its start.
// -ml 1 with -sow makes whisper.cpp emit one segment per word.
func (t *implTranscriber) runWhisper(ctx context.Context, audioPath string) ([]models.TranscriptToken, error) {
	outputPrefix := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))

	args := []string{
		"-m", t.whisper.ModelPath,
		"-f", audioPath,
		"-l", t.whisper.Language,
		"-t", strconv.Itoa(t.whisper.Threads),
		"-ml", "1",
		"-sow",
		"-oj",
		"-ojf",
		"-of", outputPrefix,
	}
	if t.whisper.Prompt != "" {
		args = append(args, "--prompt", t.whisper.Prompt)
	}
	if !t.whisper.UseGPU {
		args = append(args, "-ng")
	}

	if _, err := t.executor.Execute(ctx, t.whisper.BinaryPath, args...); err != nil {
		return nil, fmt.Errorf("whisper transcribe: %w", err)
	}

	jsonPath := outputPrefix + ".json"
	defer os.Remove(jsonPath)

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}
	return parseWhisper(data)
}

func parseWhisper(data []byte) ([]models.TranscriptToken, error) {
	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode whisper output: %w", err)
	}

	tokens := make([]models.TranscriptToken, 0, len(out.Transcription))
	for _, seg := range out.Transcription {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		tokens = append(tokens, models.TranscriptToken{
			Text:       text,
			Start:      time.Duration(seg.Offsets.From) * time.Millisecond,
			End:        time.Duration(seg.Offsets.To) * time.Millisecond,
			Confidence: confidence(seg),
		})
	}
	return tokens, nil
}

// confidence is the mean probability of the segment's text tokens.
func confidence(seg whisperSegment) float64 {
	var sum float64
	var n int
	for _, tok := range seg.Tokens {
		if strings.HasPrefix(strings.TrimSpace(tok.Text), "[_") {
			continue
		}
		sum += tok.P
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
