package tarindex

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/veldtec/tarstream/src/tarstream"
)

var (
	// ErrNameTooLong is returned when an entry path does not fit the
	// fixed-width name field of a binary index record.
	ErrNameTooLong = errors.New("tarindex: entry path exceeds index name field")
)

// BinaryEntry is the fixed-width on-disk form of an IndexEntry.
type BinaryEntry [binaryEntrySize]byte

// BinaryEntry encodes the entry into its fixed-width record.
func (e *IndexEntry) BinaryEntry() (*BinaryEntry, error) {
	if len(e.Path) > binNameLen {
		return nil, ErrNameTooLong
	}
	bin := new(BinaryEntry)
	binary.LittleEndian.PutUint64(bin[binFirstPos:binFirstEnd], uint64(e.FirstByte))
	binary.LittleEndian.PutUint64(bin[binSizePos:binSizeEnd], uint64(e.Size))
	bin[binTypePos] = e.Typeflag
	copy(bin[binNamePos:binNameEnd], e.Path)
	return bin, nil
}

// ToIndexEntry decodes the record. LastByte is derived from the stored offset
// and payload size.
func (bin BinaryEntry) ToIndexEntry() *IndexEntry {
	first := int64(binary.LittleEndian.Uint64(bin[binFirstPos:binFirstEnd]))
	size := int64(binary.LittleEndian.Uint64(bin[binSizePos:binSizeEnd]))
	name := string(bytes.TrimRightFunc(bin[binNamePos:binNameEnd], func(r rune) bool { return r == 0x00 }))
	e := &IndexEntry{
		Path:      name,
		Typeflag:  bin[binTypePos],
		Size:      size,
		FirstByte: first,
	}
	e.LastByte = first + e.TarSize()
	return e
}

// WriteIndex decodes the tar stream read from r and writes one binary record
// per entry to w. Payload bytes are skipped over, never buffered. It returns
// the number of archive bytes consumed.
func WriteIndex(r io.Reader, w io.Writer) (int64, error) {
	d := tarstream.NewDecoder(r)
	err := d.Entries(func(h *tarstream.Header, payload io.Reader) error {
		entry := &IndexEntry{
			Path:      h.Path(),
			Typeflag:  h.Typeflag,
			Size:      h.Size,
			FirstByte: h.Offset,
		}
		bin, err := entry.BinaryEntry()
		if err != nil {
			return err
		}
		if _, err := w.Write(bin[:]); err != nil {
			return errors.Wrap(err, "tarindex: write record")
		}
		return nil
	})
	return d.Offset(), err
}

// ReadIndex reads binary records from r and hands each decoded entry to fn.
// A non-nil error from fn aborts the scan and is returned as-is.
func ReadIndex(r io.Reader, fn func(*IndexEntry) error) error {
	for {
		bin := new(BinaryEntry)
		if _, err := io.ReadFull(r, bin[:]); err != nil {
			if err == io.EOF {
				return nil
			}
			return errors.Wrap(err, "tarindex: read record")
		}
		if err := fn(bin.ToIndexEntry()); err != nil {
			return err
		}
	}
}
