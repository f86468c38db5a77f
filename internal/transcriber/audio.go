package transcriber

import (
	"context"
	"fmt"
	"strconv"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// extractAudio cuts one span of the clip's audio into a 16kHz mono WAV,
// the input format whisper.cpp expects.
func (t *implTranscriber) extractAudio(ctx context.Context, videoPath, audioPath string, s span) error {
	args := audioArgs(videoPath, audioPath, s)

	if _, err := t.executor.Execute(ctx, t.ffmpeg, args...); err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w", err)
	}
	return nil
}

func audioArgs(videoPath, audioPath string, s span) []string {
	return ffmpeg.Input(videoPath, ffmpeg.KwArgs{
		"ss": seconds(s.start),
		"t":  seconds(s.end - s.start),
	}).Output(audioPath, ffmpeg.KwArgs{
		"vn":      "",
		"ar":      "16000",
		"ac":      "1",
		"c:a":     "pcm_s16le",
		"threads": "0",
	}).OverWriteOutput().GetArgs()
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
