// Package tarstream incrementally decodes a POSIX ustar byte stream into a
// forward-only sequence of chunks (headers, payload fragments, and error
// markers) without buffering the whole archive, and provides per-entry
// combinators on top of the chunk stream. Metadata and data live in fixed
// 512-byte blocks; the decoder owns all offset and padding arithmetic and
// lands on a block boundary after every entry, however much of the payload
// the caller consumed.
package tarstream

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

// BlockSize is the fixed tar framing unit, used for headers and padding.
const BlockSize = 512

var zeroBlock [BlockSize]byte

// Decoder reads a tar byte stream and produces chunks on demand. It pulls
// from the underlying reader only as needed, never buffering ahead beyond
// one read. A Decoder is not safe for concurrent use.
type Decoder struct {
	r         io.Reader
	offset    int64
	remaining int64 // payload bytes still owed for the current entry
	padding   int64 // pad bytes up to the next block boundary, dropped after the payload
	buf       []byte
	unread    *Chunk // one-slot push-back, filled by the entry adapter
	done      bool
}

// NewDecoder returns a Decoder reading from r. The stream is consumed
// strictly forward; r needs no seeking ability.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r, buf: make([]byte, 32*BlockSize)}
}

// Offset returns the number of archive bytes consumed so far.
func (d *Decoder) Offset() int64 {
	return d.offset
}

// Next returns the next chunk of the stream. It returns io.EOF on clean
// termination (the archive ended at an entry boundary, with or without the
// two-block trailer). Structural anomalies are reported as a terminal error
// chunk, not through the error return; only failures of the underlying
// reader surface there. A payload chunk's Data is valid until the following
// call to Next.
func (d *Decoder) Next() (*Chunk, error) {
	if c := d.unread; c != nil {
		d.unread = nil
		return c, nil
	}
	if d.done {
		return nil, io.EOF
	}
	if d.remaining > 0 {
		return d.payloadChunk()
	}
	if d.padding > 0 {
		if c, err := d.dropPadding(); c != nil || err != nil {
			return c, err
		}
	}
	return d.headerChunk()
}

func (d *Decoder) fail(e *FormatError) (*Chunk, error) {
	d.done = true
	return &Chunk{Type: ChunkTypeError, Err: e}, nil
}

// headerChunk reads one block at the current offset and interprets it as a
// header, the start of the end-of-archive trailer, or a truncation.
func (d *Decoder) headerChunk() (*Chunk, error) {
	if d.offset%BlockSize != 0 {
		panic("tarstream: header read off the block boundary")
	}
	var block [BlockSize]byte
	_, err := io.ReadFull(d.r, block[:])
	switch {
	case err == io.EOF:
		d.done = true
		return nil, io.EOF
	case err == io.ErrUnexpectedEOF:
		return d.fail(&FormatError{Code: ErrCodeIncompleteHeader, Offset: d.offset})
	case err != nil:
		return nil, errors.Wrap(err, "tarstream: read header block")
	}
	if bytes.Equal(block[:], zeroBlock[:]) {
		return d.trailerChunk()
	}
	h, perr := parseHeader(block[:], d.offset)
	if perr != nil {
		return d.fail(&FormatError{Code: ErrCodeInvalidHeader, Offset: d.offset})
	}
	d.offset += BlockSize
	d.remaining = h.Size
	d.padding = blockPadding(h.Size)
	return &Chunk{Type: ChunkTypeHeader, Header: h}, nil
}

// trailerChunk runs after a first all-zero block: a second all-zero block
// ends the archive cleanly, anything else is a malformed trailer.
func (d *Decoder) trailerChunk() (*Chunk, error) {
	second := d.offset + BlockSize
	var block [BlockSize]byte
	_, err := io.ReadFull(d.r, block[:])
	switch {
	case err == io.EOF, err == io.ErrUnexpectedEOF:
		return d.fail(&FormatError{Code: ErrCodeShortTrailer, Offset: second})
	case err != nil:
		return nil, errors.Wrap(err, "tarstream: read trailer block")
	}
	if !bytes.Equal(block[:], zeroBlock[:]) {
		return d.fail(&FormatError{Code: ErrCodeBadTrailer, Offset: second})
	}
	d.offset = second + BlockSize
	d.done = true
	return nil, io.EOF
}

// payloadChunk emits the next fragment of the current entry's payload.
func (d *Decoder) payloadChunk() (*Chunk, error) {
	limit := int64(len(d.buf))
	if d.remaining < limit {
		limit = d.remaining
	}
	for {
		n, err := d.r.Read(d.buf[:limit])
		if n > 0 {
			c := &Chunk{Type: ChunkTypePayload, Offset: d.offset, Data: d.buf[:n]}
			d.offset += int64(n)
			d.remaining -= int64(n)
			return c, nil
		}
		if err == io.EOF {
			return d.fail(&FormatError{
				Code:      ErrCodeIncompletePayload,
				Offset:    d.offset,
				Remaining: d.remaining,
			})
		}
		if err != nil {
			return nil, errors.Wrap(err, "tarstream: read payload")
		}
	}
}

// dropPadding discards the pad bytes between the payload end and the next
// block boundary. A stream that ends inside the padding is truncated, the
// same way a stream ending inside a header block is.
func (d *Decoder) dropPadding() (*Chunk, error) {
	n, err := io.ReadFull(d.r, d.buf[:d.padding])
	d.offset += int64(n)
	switch {
	case err == io.EOF, err == io.ErrUnexpectedEOF:
		boundary := d.offset - int64(n) + d.padding
		return d.fail(&FormatError{Code: ErrCodeIncompleteHeader, Offset: boundary})
	case err != nil:
		return nil, errors.Wrap(err, "tarstream: read padding")
	}
	d.padding = 0
	return nil, nil
}

func blockPadding(size int64) int64 {
	if r := size % BlockSize; r != 0 {
		return BlockSize - r
	}
	return 0
}
