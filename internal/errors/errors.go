// Package errors provides sentinel errors and error types for pgn-scan.
// It defines the failure kinds of the record scanner and structured error
// types that preserve context while allowing inspection with errors.Is()
// and errors.As().
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure conditions.
// Use these with errors.Is() to check for specific error types.
var (
	// ErrProtocolViolation indicates the byte provider broke its contract,
	// either by returning more data than requested or a value that is not
	// a byte sequence.
	ErrProtocolViolation = errors.New("protocol violation")

	// ErrRecordTooLarge indicates a record did not fit the fixed record buffer.
	ErrRecordTooLarge = errors.New("record too large")

	// ErrIncompleteRecord indicates the stream ended before a result token.
	// Only reported when the scanner is asked to surface truncated records.
	ErrIncompleteRecord = errors.New("incomplete record")

	// ErrInvalidConfig indicates invalid configuration values.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMissingTag indicates a required PGN tag is missing.
	ErrMissingTag = errors.New("missing required tag")

	// ErrInvalidTimeControl indicates a TimeControl tag that is not "base+increment".
	ErrInvalidTimeControl = errors.New("invalid time control")
)

// RecordError wraps scan failures with record context: the 1-based record
// number, the input name and the byte offset at which the record started.
// It supports unwrapping via errors.Is() and errors.As().
type RecordError struct {
	Err       error  // The underlying error
	RecordNum int    // 1-based record number in the input
	File      string // Source name (if known)
	Offset    int64  // Byte offset of the record start (-1 if unknown)
}

// Error returns a formatted error message including all available context.
func (e *RecordError) Error() string {
	var parts []string

	if e.File != "" {
		parts = append(parts, e.File)
	}

	parts = append(parts, fmt.Sprintf("record %d", e.RecordNum))

	if e.Offset >= 0 {
		parts = append(parts, fmt.Sprintf("offset %d", e.Offset))
	}

	context := strings.Join(parts, ", ")

	if e.Err != nil {
		return fmt.Sprintf("%s: %v", context, e.Err)
	}
	return context
}

// Unwrap returns the underlying error, enabling errors.Is() and errors.As()
// to work through the RecordError wrapper.
func (e *RecordError) Unwrap() error {
	return e.Err
}

// TagError reports a problem with a single header tag of a record.
type TagError struct {
	Err   error  // The underlying error
	Tag   string // Tag name
	Value string // Offending value (empty when the tag is missing)
}

// Error returns a formatted error message with the tag and value.
func (e *TagError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("tag %s %q: %v", e.Tag, e.Value, e.Err)
	}
	return fmt.Sprintf("tag %s: %v", e.Tag, e.Err)
}

// Unwrap returns the underlying error.
func (e *TagError) Unwrap() error {
	return e.Err
}

// Is reports whether err is one of the given targets.
func Is(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// As is errors.As, re-exported so callers need only this package.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap adds context to an error while preserving the underlying error
// for inspection with errors.Is() and errors.As().
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// Wrapf adds formatted context to an error while preserving the underlying
// error for inspection with errors.Is() and errors.As().
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}
