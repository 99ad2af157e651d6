package tarstream

import "bytes"

// Byte layout of a ustar header block.
const (
	posName     = 0
	lenName     = 100
	posMode     = 100
	lenMode     = 8
	posUID      = 108
	lenUID      = 8
	posGID      = 116
	lenGID      = 8
	posSize     = 124
	lenSize     = 12
	posModTime  = 136
	lenModTime  = 12
	posChecksum = 148
	lenChecksum = 8
	posTypeflag = 156
	posLinkName = 157
	lenLinkName = 100
	posUname    = 265
	lenUname    = 32
	posGname    = 297
	lenGname    = 32
	posDevMajor = 329
	lenDevMajor = 8
	posDevMinor = 337
	lenDevMinor = 8
	posPrefix   = 345
	lenPrefix   = 155
)

// Header describes one archive entry. It is produced by the decoder and not
// modified afterwards.
type Header struct {
	Offset        int64 // Byte offset of the header block itself.
	PayloadOffset int64 // Offset + BlockSize.

	Name     string // Name suffix, NUL-trimmed.
	Prefix   string // Name prefix, concatenated before Name to form the full path.
	Mode     int64
	UID      int
	GID      int
	Size     int64 // Payload size in bytes.
	ModTime  int64 // Seconds since the Unix epoch.
	Typeflag byte  // Raw link-indicator byte.
	LinkName string
	Uname    string
	Gname    string
	DevMajor int64 // Only meaningful for device-special entries.
	DevMinor int64
}

// Path returns the full entry path, prefix followed by name.
func (h *Header) Path() string {
	return h.Prefix + h.Name
}

// FileType classifies the entry by its typeflag byte.
func (h *Header) FileType() FileType {
	return typeOf(h.Typeflag)
}

// parseHeader decodes a single 512-byte header block located at offset.
// Failures mean the block does not hold a well-formed header; the checksum
// field is parsed for shape but never compared against a computed sum.
func parseHeader(block []byte, offset int64) (*Header, error) {
	if len(block) != BlockSize {
		panic("tarstream: header block must be exactly 512 bytes")
	}
	h := &Header{
		Offset:        offset,
		PayloadOffset: offset + BlockSize,
		Name:          cstring(block[posName : posName+lenName]),
		Prefix:        cstring(block[posPrefix : posPrefix+lenPrefix]),
		Typeflag:      block[posTypeflag],
		LinkName:      cstring(block[posLinkName : posLinkName+lenLinkName]),
		Uname:         cstring(block[posUname : posUname+lenUname]),
		Gname:         cstring(block[posGname : posGname+lenGname]),
	}
	fields := []struct {
		dst *int64
		pos int
		n   int
	}{
		{&h.Mode, posMode, lenMode},
		{&h.Size, posSize, lenSize},
		{&h.ModTime, posModTime, lenModTime},
		{&h.DevMajor, posDevMajor, lenDevMajor},
		{&h.DevMinor, posDevMinor, lenDevMinor},
	}
	for _, f := range fields {
		v, err := parseOctal(block[f.pos : f.pos+f.n])
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}
	uid, err := parseOctal(block[posUID : posUID+lenUID])
	if err != nil {
		return nil, err
	}
	gid, err := parseOctal(block[posGID : posGID+lenGID])
	if err != nil {
		return nil, err
	}
	h.UID, h.GID = int(uid), int(gid)
	if _, err := parseOctal(block[posChecksum : posChecksum+lenChecksum]); err != nil {
		return nil, err
	}
	return h, nil
}

// parseOctal decodes a space/NUL padded octal ASCII field. Leading spaces are
// skipped, the leading run of octal digits is accumulated, and everything up
// to the first NUL after that run must be space padding. A field with no
// digits decodes to 0.
func parseOctal(field []byte) (int64, error) {
	var v int64
	i := 0
	for i < len(field) && field[i] == ' ' {
		i++
	}
	for i < len(field) && field[i] >= '0' && field[i] <= '7' {
		v = v*8 + int64(field[i]-'0')
		i++
	}
	for ; i < len(field); i++ {
		if field[i] == 0 {
			break
		}
		if field[i] != ' ' {
			return 0, errBadNumericField
		}
	}
	return v, nil
}

// cstring trims b at the first NUL byte.
func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
