package tarstream

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
	"pgregory.net/rapid"
)

func TestBlockPaddingProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		size := rapid.Int64Range(0, 1<<40).Draw(t, "size")
		pad := blockPadding(size)
		if pad < 0 || pad >= BlockSize {
			t.Fatalf("padding %d out of range for size %d", pad, size)
		}
		if (size+pad)%BlockSize != 0 {
			t.Fatalf("size %d + padding %d not block aligned", size, pad)
		}
	})
}

func TestOctalRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.Int64Range(0, 1<<33-1).Draw(t, "value")
		field := []byte(fmt.Sprintf("%011o\x00", v))
		got, err := parseOctal(field)
		if err != nil {
			t.Fatalf("parseOctal(%q): %v", field, err)
		}
		if got != v {
			t.Fatalf("parseOctal(%q) = %d, want %d", field, got, v)
		}
	})
}

func TestPathReconstructionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		suffix := rapid.StringMatching(`[a-zA-Z0-9._/-]{1,100}`).Draw(t, "suffix")
		prefix := rapid.StringMatching(`[a-zA-Z0-9._/-]{0,155}`).Draw(t, "prefix")
		block := mkHeaderBlock(suffix, 0, '0')
		copy(block[posPrefix:], prefix)
		h, err := parseHeader(block, 0)
		if err != nil {
			t.Fatalf("parseHeader: %v", err)
		}
		if h.Path() != prefix+suffix {
			t.Fatalf("Path() = %q, want %q", h.Path(), prefix+suffix)
		}
	})
}

// TestEntryAlignmentProperty checks that after processing any entry, fully
// read or not, the stream cursor sits on a 512-byte boundary.
func TestEntryAlignmentProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sizes := rapid.SliceOfN(rapid.Int64Range(0, 4*BlockSize+17), 1, 6).Draw(t, "sizes")
		consume := rapid.Bool().Draw(t, "consume")

		buf := new(bytes.Buffer)
		w := tar.NewWriter(buf)
		for i, size := range sizes {
			hdr := &tar.Header{
				Name:    fmt.Sprintf("f%04d", i),
				Mode:    0644,
				Size:    size,
				ModTime: time.Unix(1700000000, 0),
				Format:  tar.FormatUSTAR,
			}
			if err := w.WriteHeader(hdr); err != nil {
				t.Fatalf("WriteHeader: %v", err)
			}
			if _, err := w.Write(make([]byte, size)); err != nil {
				t.Fatalf("Write: %v", err)
			}
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}

		d := NewDecoder(bytes.NewReader(buf.Bytes()))
		var entries int
		for {
			err := d.NextEntry(func(h *Header, payload io.Reader) error {
				if !consume {
					return nil
				}
				_, err := io.Copy(io.Discard, payload)
				return err
			})
			if err == ErrNoMoreEntries {
				break
			}
			if err != nil {
				t.Fatalf("NextEntry: %v", err)
			}
			entries++
			if d.Offset()%BlockSize != 0 {
				t.Fatalf("offset %d not block aligned after entry %d", d.Offset(), entries)
			}
		}
		if entries != len(sizes) {
			t.Fatalf("processed %d entries, want %d", entries, len(sizes))
		}
	})
}

func TestDecodeGroupingProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sizes := rapid.SliceOfN(rapid.IntRange(0, 3*BlockSize), 1, 5).Draw(t, "sizes")
		var files []testFile
		for i, size := range sizes {
			data := make([]byte, size)
			for j := range data {
				data[j] = byte((i*31 + j) % 251)
			}
			files = append(files, testFile{name: fmt.Sprintf("f%04d", i), data: data})
		}
		d := NewDecoder(bytes.NewReader(mkArchiveRapid(t, files)))

		headers := 0
		var got []byte
		for {
			c, err := d.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatalf("Next: %v", err)
			}
			switch c.Type {
			case ChunkTypeHeader:
				if headers > 0 {
					checkPayload(t, files[headers-1].data, got)
				}
				headers++
				got = nil
			case ChunkTypePayload:
				got = append(got, c.Data...)
			case ChunkTypeError:
				t.Fatalf("error chunk: %v", c.Err)
			}
		}
		if headers != len(files) {
			t.Fatalf("decoded %d headers, want %d", headers, len(files))
		}
		checkPayload(t, files[headers-1].data, got)
	})
}

func mkArchiveRapid(t *rapid.T, files []testFile) []byte {
	buf := new(bytes.Buffer)
	w := tar.NewWriter(buf)
	for _, f := range files {
		hdr := &tar.Header{
			Name:    f.name,
			Mode:    0644,
			Size:    int64(len(f.data)),
			ModTime: time.Unix(1700000000, 0),
			Format:  tar.FormatUSTAR,
		}
		if err := w.WriteHeader(hdr); err != nil {
			t.Fatalf("WriteHeader: %v", err)
		}
		if _, err := w.Write(f.data); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.Bytes()
}

func checkPayload(t *rapid.T, want, got []byte) {
	if !bytes.Equal(want, got) {
		t.Fatalf("payload mismatch: %d bytes decoded, %d bytes written", len(got), len(want))
	}
}

func TestChunkDataValidUntilNext(t *testing.T) {
	// Document the scanner-style aliasing contract: Data is reused.
	archive := mkArchive(t, testFile{name: "a", data: bytes.Repeat([]byte{9}, 600)})
	d := NewDecoder(bytes.NewReader(archive))
	c, err := d.Next()
	assert.NilError(t, err)
	assert.Check(t, is.Equal(ChunkTypeHeader, c.Type))
	c, err = d.Next()
	assert.NilError(t, err)
	assert.Assert(t, is.Equal(ChunkTypePayload, c.Type))
	kept := append([]byte(nil), c.Data...)
	for {
		if _, err := d.Next(); err == io.EOF {
			break
		}
	}
	assert.Check(t, is.DeepEqual(kept, bytes.Repeat([]byte{9}, 600)))
}
