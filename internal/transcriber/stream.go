package transcriber

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/nguyentantai21042004/storycut/internal/models"
)

type decodeFunc func(ctx context.Context, idx int, s span) ([]models.TranscriptToken, error)

// Stream is a finite, single-use sequence of tokens. It is not safe for
// concurrent use.
type Stream struct {
	ctx        context.Context
	spans      []span
	decode     decodeFunc
	cleanup    func()
	consumed   bool
	emitted    int
	incomplete bool
	err        error
}

func newStream(ctx context.Context, spans []span, decode decodeFunc, cleanup func()) *Stream {
	return &Stream{ctx: ctx, spans: spans, decode: decode, cleanup: cleanup}
}

// StreamOf returns a stream over tokens that were already decoded. A non-nil
// failure is reported after the tokens, as a chunk failure would be.
func StreamOf(tokens []models.TranscriptToken, failure error) *Stream {
	spans := []span{{}}
	if failure != nil {
		spans = append(spans, span{})
	}
	decode := func(_ context.Context, idx int, _ span) ([]models.TranscriptToken, error) {
		if idx == 0 {
			return tokens, nil
		}
		return nil, failure
	}
	return newStream(context.Background(), spans, decode, nil)
}

// All yields tokens in time order. Only the first call produces anything.
func (s *Stream) All() iter.Seq[models.TranscriptToken] {
	return func(yield func(models.TranscriptToken) bool) {
		if s.consumed {
			return
		}
		s.consumed = true
		if s.cleanup != nil {
			defer s.cleanup()
		}

		var last time.Duration
		for i, sp := range s.spans {
			if err := s.ctx.Err(); err != nil {
				s.fail(err)
				return
			}
			tokens, err := s.decode(s.ctx, i, sp)
			if err != nil {
				s.fail(err)
				return
			}
			for _, tok := range normalize(tokens, last) {
				last = tok.End
				s.emitted++
				if !yield(tok) {
					return
				}
			}
		}
	}
}

// Err returns the failure that ended the stream, if any.
func (s *Stream) Err() error { return s.err }

// Incomplete reports whether decoding stopped early after producing tokens.
func (s *Stream) Incomplete() bool { return s.incomplete }

func (s *Stream) fail(err error) {
	if s.emitted == 0 {
		s.err = models.NewTranscriptionError("transcribe", err)
		return
	}
	s.incomplete = true
	s.err = fmt.Errorf("transcription stopped after %d tokens: %w", s.emitted, err)
}

var errNoSpeech = errors.New("no speech recognized")

// Collect drains the stream. A partial transcript is returned with
// incomplete set and a nil error; an empty one is a transcription error.
func Collect(s *Stream) (tokens []models.TranscriptToken, incomplete bool, err error) {
	for tok := range s.All() {
		tokens = append(tokens, tok)
	}
	if len(tokens) == 0 {
		if s.Err() != nil {
			return nil, false, s.Err()
		}
		return nil, false, models.NewTranscriptionError("transcribe", errNoSpeech)
	}
	return tokens, s.Incomplete(), nil
}

// normalize drops non-speech tokens and forces tokens to be ordered and
// non-overlapping, starting no earlier than prevEnd.
func normalize(tokens []models.TranscriptToken, prevEnd time.Duration) []models.TranscriptToken {
	out := make([]models.TranscriptToken, 0, len(tokens))
	for _, tok := range tokens {
		tok.Text = strings.TrimSpace(tok.Text)
		if tok.Text == "" || isNonSpeech(tok.Text) {
			continue
		}
		if tok.Start < prevEnd {
			tok.Start = prevEnd
		}
		if tok.End < tok.Start {
			tok.End = tok.Start
		}
		prevEnd = tok.End
		out = append(out, tok)
	}
	return out
}

// isNonSpeech matches annotations like [BLANK_AUDIO] or (music).
func isNonSpeech(text string) bool {
	return (strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]")) ||
		(strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")"))
}
