// Package reader turns PGN inputs into a sequence of game snapshots.
//
// A GameReader binds one input (a plain file, a zstd-compressed file or
// stdin) to a record scanner and copies every completed record into a
// chess.Game that outlives the scanner's buffers.
package reader

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/klauspost/compress/zstd"

	"github.com/lgbarn/pgn-scan/internal/chess"
	"github.com/lgbarn/pgn-scan/internal/config"
	"github.com/lgbarn/pgn-scan/internal/errors"
	"github.com/lgbarn/pgn-scan/internal/metrics"
	"github.com/lgbarn/pgn-scan/internal/scanner"
	"github.com/lgbarn/pgn-scan/internal/source"
)

// StdinName is the input name that selects standard input.
const StdinName = "-"

// Option configures a GameReader.
type Option func(*options)

type options struct {
	logger           log.Logger
	metrics          *metrics.Scan
	maxGames         int
	windowSize       int
	recordCapacity   int
	reportIncomplete bool
}

// WithLogger sets the logger for progress events.
func WithLogger(l log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records scanner and source activity in m.
func WithMetrics(m *metrics.Scan) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithMaxGames stops the reader after n games (0 = unlimited).
func WithMaxGames(n int) Option {
	return func(o *options) {
		o.maxGames = n
	}
}

// WithScannerConfig sizes the source window and record buffer and selects
// whether truncated records are reported.
func WithScannerConfig(c config.ScannerConfig) Option {
	return func(o *options) {
		o.windowSize = c.WindowSize
		o.recordCapacity = c.RecordCapacity
		o.reportIncomplete = c.ReportIncomplete
	}
}

// GameReader yields the games of a single input in order.
// It is not safe for concurrent use.
type GameReader struct {
	name     string
	closer   io.Closer
	src      *source.Source
	scanner  *scanner.Scanner
	logger   log.Logger
	maxGames int
	count    int
	done     bool
}

// Open opens the named input. Names ending in ".zst" are decompressed on
// the fly, and StdinName or "" reads standard input.
func Open(name string, opts ...Option) (*GameReader, error) {
	if name == "" || name == StdinName {
		return New(os.Stdin, "stdin", opts...), nil
	}

	f, err := os.Open(name) //nolint:gosec // G304: CLI tool opens user-specified files
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}

	if !strings.HasSuffix(name, ".zst") {
		r := New(f, name, opts...)
		r.closer = f
		return r, nil
	}

	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close() //nolint:errcheck,gosec // G104: already failing
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	r := New(dec, name, opts...)
	r.closer = &zstdCloser{dec: dec, file: f}
	return r, nil
}

// New creates a GameReader over r. The caller keeps ownership of r.
func New(r io.Reader, name string, opts ...Option) *GameReader {
	o := options{
		logger:         log.NewNopLogger(),
		windowSize:     source.DefaultWindowSize,
		recordCapacity: scanner.DefaultCapacity,
	}
	for _, opt := range opts {
		opt(&o)
	}

	src := source.New(source.NewReaderProvider(r),
		source.WithWindowSize(o.windowSize),
		source.WithRefillHook(o.metrics.ObserveRefill),
	)

	scanOpts := []scanner.Option{
		scanner.WithCapacity(o.recordCapacity),
		scanner.WithMetrics(o.metrics),
	}
	if o.reportIncomplete {
		scanOpts = append(scanOpts, scanner.WithIncompleteRecordError())
	}

	level.Info(o.logger).Log("msg", "reading started", "input", name)

	return &GameReader{
		name:     name,
		src:      src,
		scanner:  scanner.New(src, scanOpts...),
		logger:   o.logger,
		maxGames: o.maxGames,
	}
}

// Next returns the next game, or io.EOF when the input or the game limit
// is exhausted. Scan failures are returned as *errors.RecordError and end
// the input. The context is checked between games.
func (r *GameReader) Next(ctx context.Context) (*chess.Game, error) {
	if r.done {
		return nil, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.maxGames > 0 && r.count >= r.maxGames {
		r.finish()
		return nil, io.EOF
	}

	ok, err := r.scanner.Next()
	if err != nil {
		r.done = true
		level.Error(r.logger).Log("msg", "reading failed", "input", r.name, "games", r.count, "err", err)
		return nil, &errors.RecordError{
			Err:       err,
			RecordNum: r.count + 1,
			File:      r.name,
			Offset:    r.scanner.Offset(),
		}
	}
	if !ok {
		r.finish()
		return nil, io.EOF
	}

	r.count++
	return r.snapshot(), nil
}

// Each calls fn for every remaining game. It stops at the first error from
// the reader or from fn; io.EOF is not reported.
func (r *GameReader) Each(ctx context.Context, fn func(*chess.Game) error) error {
	for {
		g, err := r.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(g); err != nil {
			return err
		}
	}
}

// snapshot copies the scanner's current record.
func (r *GameReader) snapshot() *chess.Game {
	raw := r.scanner.Raw()
	g := &chess.Game{
		Tags:      r.scanner.Headers(),
		Raw:       make([]byte, len(raw)),
		HasClocks: r.scanner.HasClocks(),
		HasEvals:  r.scanner.HasEvals(),
		Number:    r.count,
		Source:    r.name,
		Offset:    r.scanner.Offset(),
	}
	copy(g.Raw, raw)
	return g
}

func (r *GameReader) finish() {
	if r.done {
		return
	}
	r.done = true
	level.Info(r.logger).Log("msg", "reading finished", "input", r.name, "games", r.count, "bytes", r.src.Consumed())
}

// Name returns the input name.
func (r *GameReader) Name() string {
	return r.name
}

// Count returns the number of games returned so far.
func (r *GameReader) Count() int {
	return r.count
}

// BytesRead returns the number of (decompressed) bytes scanned so far.
func (r *GameReader) BytesRead() int64 {
	return r.src.Consumed()
}

// Refills returns the number of reads issued to the underlying input.
func (r *GameReader) Refills() uint64 {
	return r.src.Refills()
}

// Close releases the input opened by Open. It is a no-op for readers made
// with New.
func (r *GameReader) Close() error {
	r.done = true
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// zstdCloser closes a zstd decoder and the file beneath it.
type zstdCloser struct {
	dec  *zstd.Decoder
	file *os.File
}

func (c *zstdCloser) Close() error {
	c.dec.Close()
	return c.file.Close()
}
