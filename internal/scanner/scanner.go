// Package scanner splits a PGN byte stream into records.
//
// A Scanner pulls one byte at a time from a buffered source and runs a small
// state machine over it. It captures the header tags and the verbatim bytes
// of each record up to and including its result token ("1-0", "0-1",
// "1/2-1/2" or "*"), and notes whether any comment contained an 'e' or a 'c'
// byte. Move text is never parsed.
package scanner

import (
	"bytes"
	"io"

	"github.com/lgbarn/pgn-scan/internal/errors"
	"github.com/lgbarn/pgn-scan/internal/metrics"
	"github.com/lgbarn/pgn-scan/internal/source"
)

// DefaultCapacity is the size of the record buffer. Records that do not fit
// fail with ErrRecordTooLarge.
const DefaultCapacity = 32768

// Option configures a Scanner.
type Option func(*Scanner)

// WithCapacity sets the fixed record buffer capacity.
func WithCapacity(n int) Option {
	return func(s *Scanner) {
		if n >= 1 {
			s.capacity = n
		}
	}
}

// WithIncompleteRecordError makes Next report ErrIncompleteRecord when the
// stream ends after part of a record was read. By default such a trailing
// fragment is dropped silently and Next returns false, nil.
func WithIncompleteRecordError() Option {
	return func(s *Scanner) {
		s.reportIncomplete = true
	}
}

// WithMetrics records completed records and failures in m.
func WithMetrics(m *metrics.Scan) Option {
	return func(s *Scanner) {
		s.metrics = m
	}
}

// Scanner extracts one PGN record per call to Next.
// It is not safe for concurrent use.
type Scanner struct {
	src      *source.Source
	capacity int
	record   []byte
	size     int
	offset   int64

	headers   map[string]string
	tagName   []byte
	tagValue  []byte
	state     ParseState
	hasClocks bool
	hasEvals  bool

	reportIncomplete bool
	metrics          *metrics.Scan
}

// New creates a Scanner reading from src.
func New(src *source.Source, opts ...Option) *Scanner {
	s := &Scanner{
		src:      src,
		capacity: DefaultCapacity,
		headers:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.record = make([]byte, s.capacity)
	return s
}

// FromReader creates a Scanner over r with a default-sized read window.
func FromReader(r io.Reader, opts ...Option) *Scanner {
	return New(source.New(source.NewReaderProvider(r)), opts...)
}

// Next scans the next record. It returns true when a result token completed
// a record, and false at end of stream. A record cut short by the end of the
// stream is discarded unless WithIncompleteRecordError was given.
//
// On error, or when Next returns false, no header, flag or raw data of the
// failed call is retained.
func (s *Scanner) Next() (bool, error) {
	s.reset()

	for {
		c, err := s.src.NextByte()
		if err == io.EOF {
			return false, s.endOfStream()
		}
		if err != nil {
			return false, s.fail(err)
		}

		if s.size == len(s.record) {
			return false, s.fail(errors.Wrapf(errors.ErrRecordTooLarge,
				"record exceeds %d bytes", len(s.record)))
		}
		s.record[s.size] = c
		s.size++

		if s.step(c) {
			s.metrics.ObserveRecord(s.size, s.hasClocks, s.hasEvals)
			return true, nil
		}
	}
}

// step applies one transition for byte c and reports whether it ended the
// record. Bytes with no listed transition leave the state unchanged.
func (s *Scanner) step(c byte) bool {
	switch s.state {
	case ExpectingAnything:
		switch c {
		case '[':
			s.tagName = s.tagName[:0]
			s.state = InsideTagName
		case '{':
			s.state = InsideComment
		case '-':
			s.state = s.afterDash()
		case '*':
			return true
		default:
		}

	case InsideTagName:
		if c == ' ' {
			s.tagValue = s.tagValue[:0]
			s.state = InsideTagValue
		} else {
			s.tagName = append(s.tagName, c)
		}

	case InsideTagValue:
		switch c {
		case ']':
			s.headers[string(s.tagName)] = string(s.tagValue)
			s.state = ExpectingAnything
		case '"':
		default:
			s.tagValue = append(s.tagValue, c)
		}

	case InsideComment:
		switch c {
		case 'e':
			s.hasEvals = true
		case 'c':
			s.hasClocks = true
		case '}':
			s.state = ExpectingAnything
		default:
		}

	case ExpectingEndScoreWin:
		return true

	case ExpectingEndScoreDraw:
		if c == '2' {
			return true
		}

	default:
	}
	return false
}

// afterDash picks the state following a '-' seen in ExpectingAnything.
// The byte before the dash tells castling ("O-O") from a draw ("1/2-1/2")
// from a win ("1-0", "0-1"). A dash opening the record has no previous
// byte and is treated as a win score.
func (s *Scanner) afterDash() ParseState {
	if s.size < 2 {
		return ExpectingEndScoreWin
	}
	switch s.record[s.size-2] {
	case 'O':
		return ExpectingAnything
	case '2':
		return ExpectingEndScoreDraw
	default:
		return ExpectingEndScoreWin
	}
}

// reset prepares for a new record starting at the current stream position.
func (s *Scanner) reset() {
	s.offset = s.src.Consumed()
	s.discard()
}

// discard drops everything accumulated for the current record.
func (s *Scanner) discard() {
	clear(s.headers)
	s.size = 0
	s.state = ExpectingAnything
	s.hasClocks = false
	s.hasEvals = false
	s.tagName = s.tagName[:0]
	s.tagValue = s.tagValue[:0]
}

// endOfStream handles io.EOF from the source.
func (s *Scanner) endOfStream() error {
	// Whitespace trailing the last result token is not a record.
	partial := len(bytes.TrimSpace(s.record[:s.size])) > 0
	s.discard()
	if partial && s.reportIncomplete {
		s.metrics.ObserveFailure(metrics.ReasonIncomplete)
		return errors.ErrIncompleteRecord
	}
	return nil
}

// fail discards the current record and returns err.
func (s *Scanner) fail(err error) error {
	switch {
	case errors.Is(err, errors.ErrRecordTooLarge):
		s.metrics.ObserveFailure(metrics.ReasonRecordTooLarge)
	case errors.Is(err, errors.ErrProtocolViolation):
		s.metrics.ObserveFailure(metrics.ReasonProtocolViolation)
	default:
		s.metrics.ObserveFailure(metrics.ReasonProvider)
	}
	s.discard()
	return err
}

// Header returns the value of the named tag of the last record, or "" if
// the record has no such tag.
func (s *Scanner) Header(name string) string {
	return s.headers[name]
}

// Headers returns a copy of all tags of the last record.
func (s *Scanner) Headers() map[string]string {
	out := make(map[string]string, len(s.headers))
	for k, v := range s.headers {
		out[k] = v
	}
	return out
}

// Raw returns the verbatim bytes of the last record. The slice aliases the
// scanner's buffer and is only valid until the next call to Next.
func (s *Scanner) Raw() []byte {
	return s.record[:s.size:s.size]
}

// HasClocks reports whether a comment of the last record contained a 'c'.
func (s *Scanner) HasClocks() bool {
	return s.hasClocks
}

// HasEvals reports whether a comment of the last record contained an 'e'.
func (s *Scanner) HasEvals() bool {
	return s.hasEvals
}

// State returns the state the last record ended in.
func (s *Scanner) State() ParseState {
	return s.state
}

// Offset returns the stream offset of the first byte of the last record.
func (s *Scanner) Offset() int64 {
	return s.offset
}

// Capacity returns the fixed record buffer capacity.
func (s *Scanner) Capacity() int {
	return len(s.record)
}
