package tarindex

import (
	"archive/tar"
	"bytes"
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func mkArchive(t *testing.T, files map[string]int) ([]byte, []string) {
	t.Helper()
	names := []string{}
	for name := range files {
		names = append(names, name)
	}
	// map order is random; fix it for the fixture
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			if names[j] < names[i] {
				names[i], names[j] = names[j], names[i]
			}
		}
	}
	buf := new(bytes.Buffer)
	w := tar.NewWriter(buf)
	for _, name := range names {
		size := files[name]
		hdr := &tar.Header{
			Name:    name,
			Mode:    0644,
			Size:    int64(size),
			ModTime: time.Unix(1700000000, 0),
			Format:  tar.FormatUSTAR,
		}
		assert.NilError(t, w.WriteHeader(hdr))
		_, err := w.Write(make([]byte, size))
		assert.NilError(t, err)
	}
	assert.NilError(t, w.Close())
	return buf.Bytes(), names
}

func TestWriteReadIndex(t *testing.T) {
	archive, names := mkArchive(t, map[string]int{
		"a.bin": 0,
		"b.bin": 700,
		"c.bin": 512,
		"d.bin": 2049,
	})

	idx := new(bytes.Buffer)
	total, err := WriteIndex(bytes.NewReader(archive), idx)
	assert.NilError(t, err)
	assert.Check(t, is.Equal(int64(len(archive)), total))

	var entries []*IndexEntry
	assert.NilError(t, ReadIndex(idx, func(e *IndexEntry) error {
		entries = append(entries, e)
		return nil
	}))
	assert.Assert(t, is.Len(entries, len(names)))

	var offset int64
	for i, e := range entries {
		assert.Check(t, is.Equal(names[i], e.Path))
		assert.Check(t, is.Equal(offset, e.FirstByte))
		assert.Check(t, is.Equal(e.FirstByte+e.TarSize(), e.LastByte))
		assert.Check(t, is.Equal(int64(0), e.LastByte%blockSize))
		offset = e.LastByte
	}
	// All that remains past the last entry is the two-block trailer.
	assert.Check(t, is.Equal(total, offset+2*blockSize))
}

func TestBinaryEntryRoundTrip(t *testing.T) {
	in := &IndexEntry{
		Path:      "dir/sub/file.bin",
		Typeflag:  '0',
		Size:      1234,
		FirstByte: 5 * blockSize,
	}
	bin, err := in.BinaryEntry()
	assert.NilError(t, err)
	out := bin.ToIndexEntry()
	assert.Check(t, is.Equal(in.Path, out.Path))
	assert.Check(t, is.Equal(in.Typeflag, out.Typeflag))
	assert.Check(t, is.Equal(in.Size, out.Size))
	assert.Check(t, is.Equal(in.FirstByte, out.FirstByte))
	// Header block plus 1234 payload bytes padded up to three blocks.
	assert.Check(t, is.Equal(in.FirstByte+4*blockSize, out.LastByte))
}

func TestBinaryEntryNameTooLong(t *testing.T) {
	in := &IndexEntry{Path: strings.Repeat("x", binNameLen+1)}
	_, err := in.BinaryEntry()
	assert.Check(t, is.Equal(ErrNameTooLong, err))
}
