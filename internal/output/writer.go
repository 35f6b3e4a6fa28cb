package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/lgbarn/pgn-scan/internal/chess"
)

// GameWriter is the interface for writing games to output.
// Different implementations handle different output formats (PGN, JSON, etc.).
type GameWriter interface {
	// WriteGame writes a single game to the output.
	WriteGame(game *chess.Game) error

	// Flush flushes any buffered data to the underlying writer.
	Flush() error

	// Close flushes pending output. It does not close the underlying writer.
	Close() error
}

// Option configures the writers returned by New.
type Option func(*writerOptions)

type writerOptions struct {
	stripClocks bool
	jsonSingle  bool
}

// WithStripClocks removes [%clk ...] annotations from written PGN.
func WithStripClocks() Option {
	return func(o *writerOptions) {
		o.stripClocks = true
	}
}

// WithJSONLines makes the JSON writer emit one object per game instead of
// a single array on Close.
func WithJSONLines() Option {
	return func(o *writerOptions) {
		o.jsonSingle = true
	}
}

// New returns the writer for format f.
func New(w io.Writer, f Format, opts ...Option) (GameWriter, error) {
	var o writerOptions
	for _, opt := range opts {
		opt(&o)
	}

	switch f {
	case FormatPGN:
		pw := NewPGNWriter(w)
		pw.stripClocks = o.stripClocks
		return pw, nil
	case FormatTags:
		return NewTagsWriter(w), nil
	case FormatJSON:
		if o.jsonSingle {
			return NewJSONWriterSingle(w), nil
		}
		return NewJSONWriter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", f)
	}
}

// PGNWriter writes each game's record text followed by a blank line.
type PGNWriter struct {
	w           *bufio.Writer
	stripClocks bool
}

// NewPGNWriter creates a new PGN writer.
func NewPGNWriter(w io.Writer) *PGNWriter {
	return &PGNWriter{w: bufio.NewWriter(w)}
}

// WriteGame writes the trimmed record text and a blank line.
func (pw *PGNWriter) WriteGame(game *chess.Game) error {
	text := game.PGN()
	if pw.stripClocks {
		text = stripClockAnnotations(text)
	}
	if _, err := pw.w.WriteString(text); err != nil {
		return err
	}
	_, err := pw.w.WriteString("\n\n")
	return err
}

// Flush flushes buffered output.
func (pw *PGNWriter) Flush() error {
	return pw.w.Flush()
}

// Close flushes the PGN writer.
func (pw *PGNWriter) Close() error {
	return pw.Flush()
}

// TagsWriter writes only the tag block of each game.
type TagsWriter struct {
	w *bufio.Writer
}

// NewTagsWriter creates a new tags writer.
func NewTagsWriter(w io.Writer) *TagsWriter {
	return &TagsWriter{w: bufio.NewWriter(w)}
}

// WriteGame writes the game's tags and a blank line.
func (tw *TagsWriter) WriteGame(game *chess.Game) error {
	if err := writeTags(tw.w, game.Tags); err != nil {
		return err
	}
	return tw.w.WriteByte('\n')
}

// Flush flushes buffered output.
func (tw *TagsWriter) Flush() error {
	return tw.w.Flush()
}

// Close flushes the tags writer.
func (tw *TagsWriter) Close() error {
	return tw.Flush()
}

// JSONWriter writes games in JSON format.
// It buffers games and writes them as a JSON array on Close or Flush.
type JSONWriter struct {
	w      io.Writer
	games  []*JSONGame
	single bool // If true, write each game immediately instead of batching
}

// NewJSONWriter creates a JSON writer that batches games into one array.
func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{w: w}
}

// NewJSONWriterSingle creates a JSON writer that writes each game
// immediately as one line.
func NewJSONWriterSingle(w io.Writer) *JSONWriter {
	return &JSONWriter{w: w, single: true}
}

// WriteGame buffers a game for JSON output (or writes immediately in single mode).
func (jw *JSONWriter) WriteGame(game *chess.Game) error {
	jg := GameToJSON(game)
	if jw.single {
		return json.NewEncoder(jw.w).Encode(jg)
	}
	jw.games = append(jw.games, jg)
	return nil
}

// Flush writes all buffered games as a JSON array.
func (jw *JSONWriter) Flush() error {
	if jw.single || len(jw.games) == 0 {
		return nil
	}

	enc := json.NewEncoder(jw.w)
	enc.SetIndent("", "  ")
	err := enc.Encode(&JSONOutput{Games: jw.games})

	// Clear buffer after writing
	jw.games = jw.games[:0]

	return err
}

// Close flushes the JSON writer.
func (jw *JSONWriter) Close() error {
	return jw.Flush()
}
