package curator

import (
	"fmt"
	"strings"
	"time"

	"github.com/nguyentantai21042004/storycut/internal/models"
)

// sentence is a run of tokens shown to the model as one numbered line.
type sentence struct {
	ID    int
	Start time.Duration
	End   time.Duration
	Text  string
}

// groupSentences splits tokens at sentence punctuation, long pauses or
// maxWords, whichever comes first.
func groupSentences(tokens []models.TranscriptToken, gap time.Duration, maxWords int) []sentence {
	var out []sentence
	var words []string
	var start, end time.Duration

	flush := func() {
		if len(words) == 0 {
			return
		}
		out = append(out, sentence{ID: len(out), Start: start, End: end, Text: strings.Join(words, " ")})
		words = words[:0]
	}

	for i, tok := range tokens {
		if len(words) > 0 && gap > 0 && tok.Start-end > gap {
			flush()
		}
		if len(words) == 0 {
			start = tok.Start
		}
		words = append(words, tok.Text)
		end = tok.End

		last := i == len(tokens)-1
		if last || endsSentence(tok.Text) || (maxWords > 0 && len(words) >= maxWords) {
			flush()
		}
	}
	return out
}

func endsSentence(word string) bool {
	return strings.HasSuffix(word, ".") || strings.HasSuffix(word, "?") || strings.HasSuffix(word, "!")
}

const promptTemplate = `You are the editor of a short-form video channel. Below is the transcript of one raw clip.
Each line is "[id] start-end text" with times in seconds.

Clip: %s | duration %.2fs | %dx%d @ %.2ffps
Target length: about %.0fs

Build the strongest self-contained story from this footage:
- open with a hook that makes a viewer stay
- drop filler, false starts, repeated takes and off-topic tangents
- keep every kept range on whole sentences so no word is cut
- list segments in the order they should play
%s
Reply with JSON only, no markdown:
{"title": "short catchy title", "reasoning": "one sentence", "segments": [{"start": 0.0, "end": 0.0, "topic": "few words", "tags": ["keyword"], "summary": "one sentence"}]}

Transcript:
%s`

// buildPrompt serializes the transcript into the compact script the model sees.
func buildPrompt(clip models.Clip, sentences []sentence, target time.Duration, extra string) string {
	var b strings.Builder
	for _, s := range sentences {
		fmt.Fprintf(&b, "[%d] %.2f-%.2f %s\n", s.ID, s.Start.Seconds(), s.End.Seconds(), s.Text)
	}
	if extra != "" {
		extra = "- " + strings.TrimSpace(extra) + "\n"
	}
	return fmt.Sprintf(promptTemplate,
		clip.Name(), clip.Duration.Seconds(), clip.Width, clip.Height, clip.FrameRate,
		target.Seconds(), extra, b.String())
}
