package tarstream

// FileType is the semantic classification of an entry's typeflag byte.
type FileType int

const (
	TypeNormal FileType = iota
	TypeHardLink
	TypeSymlink
	TypeCharSpecial
	TypeBlockSpecial
	TypeDirectory
	TypeFifo
	// TypeUnknown covers every other typeflag byte. The raw byte stays
	// available on Header.Typeflag.
	TypeUnknown
)

func typeOf(flag byte) FileType {
	switch flag {
	case 0, '0':
		return TypeNormal
	case '1':
		return TypeHardLink
	case '2':
		return TypeSymlink
	case '3':
		return TypeCharSpecial
	case '4':
		return TypeBlockSpecial
	case '5':
		return TypeDirectory
	case '6':
		return TypeFifo
	default:
		return TypeUnknown
	}
}

func (t FileType) String() string {
	switch t {
	case TypeNormal:
		return "file"
	case TypeHardLink:
		return "hardlink"
	case TypeSymlink:
		return "symlink"
	case TypeCharSpecial:
		return "char"
	case TypeBlockSpecial:
		return "block"
	case TypeDirectory:
		return "dir"
	case TypeFifo:
		return "fifo"
	default:
		return "unknown"
	}
}
