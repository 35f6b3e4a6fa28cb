// Package source provides a buffered, pull-based byte source over an
// external byte provider. Bytes are served one at a time from a fixed
// window that is refilled from the provider only when it runs dry.
package source

import (
	"io"

	"github.com/lgbarn/pgn-scan/internal/errors"
)

// DefaultWindowSize is the capacity of the read window.
const DefaultWindowSize = 65536

// Provider supplies raw bytes on demand.
//
// Read returns at most maxBytes bytes. An empty result, or io.EOF with no
// data, signals end of stream. Returning more than maxBytes is a protocol
// violation.
type Provider interface {
	Read(maxBytes int) ([]byte, error)
}

// ProviderFunc adapts an ordinary function to the Provider interface.
type ProviderFunc func(maxBytes int) ([]byte, error)

// Read calls f(maxBytes).
func (f ProviderFunc) Read(maxBytes int) ([]byte, error) {
	return f(maxBytes)
}

// Option configures a Source.
type Option func(*Source)

// WithWindowSize sets the read window capacity.
func WithWindowSize(size int) Option {
	return func(s *Source) {
		if size >= 1 {
			s.windowSize = size
		}
	}
}

// WithRefillHook registers fn to be called with the size of every
// successful refill.
func WithRefillHook(fn func(n int)) Option {
	return func(s *Source) {
		s.onRefill = fn
	}
}

// Source is a single-byte pull interface over a Provider.
// It is not safe for concurrent use.
type Source struct {
	provider   Provider
	windowSize int
	window     []byte
	cursor     int
	limit      int
	eof        bool
	onRefill   func(n int)

	refills  uint64
	consumed int64
}

// New creates a Source bound to p for its lifetime.
func New(p Provider, opts ...Option) *Source {
	s := &Source{
		provider:   p,
		windowSize: DefaultWindowSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	// Allocate after options are applied; the window never grows.
	s.window = make([]byte, s.windowSize)
	return s
}

// NextByte returns the next byte of the stream, or io.EOF at end of stream.
// Any other error is fatal and leaves the Source at end of stream.
func (s *Source) NextByte() (byte, error) {
	if s.cursor == s.limit {
		if err := s.refill(); err != nil {
			return 0, err
		}
	}
	c := s.window[s.cursor]
	s.cursor++
	s.consumed++
	return c, nil
}

// refill asks the provider for up to one window of bytes.
func (s *Source) refill() error {
	if s.eof {
		return io.EOF
	}

	data, err := s.provider.Read(len(s.window))
	if err != nil && err != io.EOF {
		s.eof = true
		return errors.Wrap(err, "reading from provider")
	}
	if len(data) > len(s.window) {
		s.eof = true
		return errors.Wrapf(errors.ErrProtocolViolation,
			"provider returned more data than requested (%d > %d)", len(data), len(s.window))
	}
	if err == io.EOF {
		// Serve what came with the EOF, then stop asking.
		s.eof = true
	}
	if len(data) == 0 {
		s.eof = true
		return io.EOF
	}

	copy(s.window, data)
	s.cursor = 0
	s.limit = len(data)
	s.refills++
	if s.onRefill != nil {
		s.onRefill(len(data))
	}
	return nil
}

// WindowSize returns the fixed capacity of the read window.
func (s *Source) WindowSize() int {
	return len(s.window)
}

// Refills returns the number of successful provider reads.
func (s *Source) Refills() uint64 {
	return s.refills
}

// Consumed returns the number of bytes handed out by NextByte.
func (s *Source) Consumed() int64 {
	return s.consumed
}
