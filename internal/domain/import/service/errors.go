package service

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat  = errors.New("unsupported format")
	ErrUnreadableDocument = errors.New("unreadable document")
)

// FailureKind names a fatal parse failure.
type FailureKind string

const (
	FailureUnsupportedFormat  FailureKind = "UnsupportedFormat"
	FailureUnreadableDocument FailureKind = "UnreadableDocument"
)

// Failure aborts a whole parse; no transactions are returned with it.
type Failure struct {
	Kind     FailureKind
	FormatID int
	Err      error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("%s (format %d)", f.sentinel(), f.FormatID)
	}
	return fmt.Sprintf("%s (format %d): %v", f.sentinel(), f.FormatID, f.Err)
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (f *Failure) Unwrap() []error {
	if f.Err == nil {
		return []error{f.sentinel()}
	}
	return []error{f.sentinel(), f.Err}
}

func (f *Failure) sentinel() error {
	if f.Kind == FailureUnsupportedFormat {
		return ErrUnsupportedFormat
	}
	return ErrUnreadableDocument
}

func unreadable(formatID int, err error) *Failure {
	return &Failure{Kind: FailureUnreadableDocument, FormatID: formatID, Err: err}
}
