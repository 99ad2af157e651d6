package tarstream

import (
	"fmt"

	"github.com/pkg/errors"
)

// ChunkType discriminates the variants of a Chunk.
type ChunkType int

const (
	// ChunkTypeHeader announces a new entry; Chunk.Header is set.
	ChunkTypeHeader ChunkType = iota + 1
	// ChunkTypePayload carries a fragment of the current entry's payload;
	// Chunk.Offset and Chunk.Data are set.
	ChunkTypePayload
	// ChunkTypeError reports a structural anomaly; Chunk.Err is set and the
	// chunk is terminal.
	ChunkTypeError
)

// Chunk is one event in the decoded stream: a header, a payload fragment, or
// an error marker. Payload chunks always belong to the entry announced by the
// most recent header chunk, with strictly increasing, contiguous offsets.
type Chunk struct {
	Type   ChunkType
	Header *Header      // header chunks
	Offset int64        // payload chunks: absolute offset of Data
	Data   []byte       // payload chunks: valid until the next call to Next
	Err    *FormatError // error chunks
}

// ErrorCode identifies a structural anomaly in the archive.
type ErrorCode int

const (
	// ErrCodeUnexpectedPayload: an entry call found a payload chunk with no
	// pending header. Caller protocol violation, not bad data.
	ErrCodeUnexpectedPayload ErrorCode = iota + 1
	// ErrCodeIncompleteHeader: the stream ended inside a block where a full
	// header or terminator block was expected.
	ErrCodeIncompleteHeader
	// ErrCodeIncompletePayload: the stream ended with payload bytes missing.
	ErrCodeIncompletePayload
	// ErrCodeShortTrailer: the stream ended after a single all-zero block.
	ErrCodeShortTrailer
	// ErrCodeBadTrailer: the block after the first all-zero block is not
	// all-zero.
	ErrCodeBadTrailer
	// ErrCodeInvalidHeader: a header block could not be decoded.
	ErrCodeInvalidHeader
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeUnexpectedPayload:
		return "unexpected payload"
	case ErrCodeIncompleteHeader:
		return "incomplete header"
	case ErrCodeIncompletePayload:
		return "incomplete payload"
	case ErrCodeShortTrailer:
		return "short trailer"
	case ErrCodeBadTrailer:
		return "bad trailer"
	case ErrCodeInvalidHeader:
		return "invalid header"
	default:
		return "unknown anomaly"
	}
}

// FormatError describes a structural anomaly detected at a byte offset of the
// archive stream.
type FormatError struct {
	Code   ErrorCode
	Offset int64
	// Remaining is the number of payload bytes still owed when the stream
	// ended. Only set for ErrCodeIncompletePayload.
	Remaining int64
}

func (e *FormatError) Error() string {
	if e.Code == ErrCodeIncompletePayload {
		return fmt.Sprintf("tarstream: %s at offset %d, %d bytes missing", e.Code, e.Offset, e.Remaining)
	}
	return fmt.Sprintf("tarstream: %s at offset %d", e.Code, e.Offset)
}

var (
	// ErrNoMoreEntries is returned by NextEntry when the archive holds no
	// further entries. It signals clean termination, not a malformed stream.
	ErrNoMoreEntries = errors.New("tarstream: no more entries")

	errBadNumericField = errors.New("tarstream: malformed octal field")
)
