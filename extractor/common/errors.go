package common

import (
	"errors"
	"fmt"
)

// ErrNoTransactionsFound marks a document that was read but yielded nothing.
// The pipeline itself returns an empty statement; callers that must report the
// outcome use this value.
var ErrNoTransactionsFound = errors.New("no transactions found")

// UnreadableError means the bytes could not be turned into text or records.
type UnreadableError struct {
	Reason string
	Err    error
}

func (e *UnreadableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *UnreadableError) Unwrap() error {
	return e.Err
}

// Unreadable builds an UnreadableError.
func Unreadable(reason string, err error) *UnreadableError {
	return &UnreadableError{Reason: reason, Err: err}
}

// UnsupportedContentTypeError is returned before any extraction is attempted.
type UnsupportedContentTypeError struct {
	ContentType string
}

func (e *UnsupportedContentTypeError) Error() string {
	return fmt.Sprintf("unsupported content type %q", e.ContentType)
}
