// Package tarindex builds and reads fixed-width binary indexes over tar
// archives. An index records, for every entry, where its header block starts,
// how large its payload is, and its typeflag, so byte ranges of individual
// members can be computed without re-decoding the archive.
package tarindex

import "github.com/veldtec/tarstream/src/tarstream"

const (
	blockSize = tarstream.BlockSize

	binFirstLen = 8
	binSizeLen  = 8
	binTypeLen  = 1
	binNameLen  = 256
	binFirstPos = 0
	binFirstEnd = binFirstPos + binFirstLen
	binSizePos  = binFirstEnd
	binSizeEnd  = binSizePos + binSizeLen
	binTypePos  = binSizeEnd
	binTypeEnd  = binTypePos + binTypeLen
	binNamePos  = binTypeEnd
	binNameEnd  = binNamePos + binNameLen

	binaryEntrySize int = binFirstLen + binSizeLen + binTypeLen + binNameLen
)

// IndexEntry locates one archive member within the tar byte stream.
type IndexEntry struct {
	Path      string // Full entry path.
	Typeflag  byte   // Raw link-indicator byte of the header.
	Size      int64  // Payload size in bytes.
	FirstByte int64  // Offset of the entry's header block.
	LastByte  int64  // Offset just past the entry's payload padding.
}

// FileType classifies the indexed entry.
func (e *IndexEntry) FileType() tarstream.FileType {
	return (&tarstream.Header{Typeflag: e.Typeflag}).FileType()
}

func paddedBlockSize(size int64) int64 {
	if size%blockSize == 0 {
		return size
	}
	return blockSize + (size/blockSize)*blockSize
}

// TarSize returns the number of archive bytes the entry occupies, header
// block included.
func (e *IndexEntry) TarSize() int64 {
	return blockSize + paddedBlockSize(e.Size)
}
