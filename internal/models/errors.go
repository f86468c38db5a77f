package models

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures.
type Kind string

const (
	KindInput         Kind = "input_error"
	KindTranscription Kind = "transcription_error"
	KindCuration      Kind = "curation_error"
	KindCurationParse Kind = "curation_parse_error"
	KindRender        Kind = "render_error"
	KindCancelled     Kind = "cancelled"
)

// Error carries a failure kind and the operation that produced it.
type Error struct {
	Kind      Kind
	Op        string
	Err       error
	Temporary bool
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func NewInputError(op string, err error) error {
	return &Error{Kind: KindInput, Op: op, Err: err}
}

func NewTranscriptionError(op string, err error) error {
	return &Error{Kind: KindTranscription, Op: op, Err: err}
}

// NewCurationError reports a reasoning service failure. temporary marks
// failures that were eligible for retry.
func NewCurationError(op string, err error, temporary bool) error {
	return &Error{Kind: KindCuration, Op: op, Err: err, Temporary: temporary}
}

func NewCurationParseError(op string, err error) error {
	return &Error{Kind: KindCurationParse, Op: op, Err: err}
}

func NewRenderError(op string, err error) error {
	return &Error{Kind: KindRender, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsTemporary reports whether err is a retryable pipeline error.
func IsTemporary(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Temporary
	}
	return false
}
