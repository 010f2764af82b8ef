// Package cortexerr defines the closed set of error kinds returned by the
// indexing, query, and export pipelines so callers can match on kind rather
// than parsing messages.
package cortexerr

import (
	"errors"
	"fmt"
)

// Kind identifies one of the closed set of error categories.
type Kind string

const (
	KindDatabaseError      Kind = "DatabaseError"
	KindPermissionDenied   Kind = "PermissionDenied"
	KindFileNotFound       Kind = "FileNotFound"
	KindExtractionFailed   Kind = "ExtractionFailed"
	KindIndexingInProgress Kind = "IndexingInProgress"
	KindSearchTimeout      Kind = "SearchTimeout"
	KindInvalidQuery       Kind = "InvalidQuery"
	KindInvalidPath        Kind = "InvalidPath"
	KindInternal           Kind = "Internal"
)

// Error is the single closed error type used throughout cortex_local.
// Callers match on Kind() rather than inspecting Error() text.
type Error struct {
	kind       Kind
	Message    string
	Path       string
	Reason     string
	Suggestion string
	Query      string
	err        error
}

func (e *Error) Kind() Kind {
	return e.kind
}

func (e *Error) Unwrap() error {
	return e.err
}

func (e *Error) Error() string {
	switch e.kind {
	case KindDatabaseError:
		return fmt.Sprintf("database error: %s", e.Message)
	case KindPermissionDenied:
		return fmt.Sprintf("cannot access %s: %s", e.Path, e.Suggestion)
	case KindFileNotFound:
		return fmt.Sprintf("file not found: %s", e.Path)
	case KindExtractionFailed:
		return fmt.Sprintf("failed to extract content from %s: %s", e.Path, e.Reason)
	case KindIndexingInProgress:
		return "indexing is already in progress"
	case KindSearchTimeout:
		return "search took too long"
	case KindInvalidQuery:
		return fmt.Sprintf("invalid query %q: %s", e.Query, e.Reason)
	case KindInvalidPath:
		return fmt.Sprintf("invalid export path %q: %s", e.Path, e.Reason)
	default:
		return fmt.Sprintf("internal error: %s", e.Message)
	}
}

func NewDatabaseError(err error) *Error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &Error{kind: KindDatabaseError, Message: msg, err: err}
}

func NewPermissionDenied(path, suggestion string) *Error {
	return &Error{kind: KindPermissionDenied, Path: path, Suggestion: suggestion}
}

func NewFileNotFound(path string) *Error {
	return &Error{kind: KindFileNotFound, Path: path}
}

func NewExtractionFailed(path, reason string) *Error {
	return &Error{kind: KindExtractionFailed, Path: path, Reason: reason}
}

func NewIndexingInProgress() *Error {
	return &Error{kind: KindIndexingInProgress}
}

func NewSearchTimeout() *Error {
	return &Error{kind: KindSearchTimeout}
}

func NewInvalidQuery(query, reason string) *Error {
	return &Error{kind: KindInvalidQuery, Query: query, Reason: reason}
}

func NewInvalidPath(path, reason string) *Error {
	return &Error{kind: KindInvalidPath, Path: path, Reason: reason}
}

func NewInternal(err error) *Error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &Error{kind: KindInternal, Message: msg, err: err}
}

func NewInternalf(format string, args ...any) *Error {
	return &Error{kind: KindInternal, Message: fmt.Sprintf(format, args...)}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.kind == kind
	}
	return false
}
