package source

import (
	"io"

	"github.com/lgbarn/pgn-scan/internal/errors"
)

// maxConsecutiveEmptyReads bounds how often a Reader may return 0, nil
// before ReaderProvider gives up, as bufio does.
const maxConsecutiveEmptyReads = 100

// ReaderProvider serves a Source from any io.Reader: files, sockets,
// decompressors, in-memory buffers.
type ReaderProvider struct {
	r   io.Reader
	buf []byte
}

// NewReaderProvider wraps r.
func NewReaderProvider(r io.Reader) *ReaderProvider {
	return &ReaderProvider{r: r}
}

// Read performs a single Read on the underlying reader, retrying only
// when it makes no progress without reporting an error.
func (p *ReaderProvider) Read(maxBytes int) ([]byte, error) {
	if cap(p.buf) < maxBytes {
		p.buf = make([]byte, maxBytes)
	}
	buf := p.buf[:maxBytes]

	for i := 0; i < maxConsecutiveEmptyReads; i++ {
		n, err := p.r.Read(buf)
		if n > 0 || err != nil {
			return buf[:n], err
		}
	}
	return nil, io.ErrNoProgress
}

// ValueFunc returns a chunk of the stream as an untyped value.
type ValueFunc func(maxBytes int) (interface{}, error)

// ValueProvider accepts chunks as either bytes or text and treats both as
// the same byte sequence. A nil value means end of stream; any other type
// is a protocol violation.
type ValueProvider struct {
	fn ValueFunc
}

// NewValueProvider wraps fn.
func NewValueProvider(fn ValueFunc) *ValueProvider {
	return &ValueProvider{fn: fn}
}

// Read calls the wrapped function and converts its result to bytes.
func (p *ValueProvider) Read(maxBytes int) ([]byte, error) {
	v, err := p.fn(maxBytes)
	if err != nil && err != io.EOF {
		return nil, err
	}

	var data []byte
	switch chunk := v.(type) {
	case nil:
	case []byte:
		data = chunk
	case string:
		data = []byte(chunk)
	default:
		return nil, errors.Wrapf(errors.ErrProtocolViolation,
			"provider returned %T, want bytes or string", v)
	}
	return data, err
}
