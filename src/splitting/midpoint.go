// Package splitting cuts tar archives at entry boundaries and produces
// per-entry payload digests, both driven by the streaming decoder.
package splitting

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/veldtec/tarstream/src/tarstream"
	"github.com/veldtec/tarstream/src/util"
)

// ErrNoBoundary is returned when no entry starts at or past the requested
// split position.
var ErrNoBoundary = errors.New("splitting: no entry boundary past position")

// splitPoint decodes the stream until it finds the first entry whose header
// begins at or past stop, and returns that header's offset. Entry payloads
// are skipped, not buffered.
func splitPoint(r io.Reader, stop int64) (int64, error) {
	d := tarstream.NewDecoder(r)
	for {
		c, err := d.Next()
		if err == io.EOF {
			return 0, ErrNoBoundary
		}
		if err != nil {
			return 0, err
		}
		switch c.Type {
		case tarstream.ChunkTypeHeader:
			if c.Header.Offset > 0 && c.Header.Offset >= stop {
				return c.Header.Offset, nil
			}
		case tarstream.ChunkTypeError:
			return 0, c.Err
		}
	}
}

func splitfile(filename string, midpoint int64) error {
	destName := filename + ".part2"
	destF, err := util.CreateFile(destName)
	if err != nil {
		return err
	}
	defer func() { _ = destF.Close() }()
	sourceF, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer func() { _ = sourceF.Close() }()
	pos, err := sourceF.Seek(midpoint, io.SeekStart)
	if err != nil {
		return err
	}
	if pos != midpoint {
		panic("splitting: seek failure")
	}
	if _, err = io.Copy(destF, sourceF); err != nil {
		return err
	}
	return os.Truncate(filename, midpoint)
}

// SplitTarMiddle splits a tarfile at the entry boundary closest past its
// middle, so that the second part also starts with a header block. It
// truncates the input tarfile in place and copies the remainder into a file
// called "<tarfile>.part2".
func SplitTarMiddle(tarfile string) error {
	f, err := os.Open(tarfile)
	if err != nil {
		return err
	}
	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}
	mid, err := splitPoint(f, stat.Size()/2)
	_ = f.Close()
	if err != nil {
		return errors.Wrapf(err, "splitting: split %s", tarfile)
	}
	return splitfile(tarfile, mid)
}

// ReadSHA256 writes a checksum line for every regular entry of the tarfile,
// in the "<hex digest>  <path>" format sha256sum uses.
func ReadSHA256(tarfile string, w io.Writer) error {
	f, err := os.Open(tarfile)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	d := tarstream.NewDecoder(f)
	return d.Entries(func(h *tarstream.Header, payload io.Reader) error {
		if h.FileType() != tarstream.TypeNormal {
			return nil
		}
		sum := sha256.New()
		if _, err := io.Copy(sum, payload); err != nil {
			return errors.Wrapf(err, "splitting: digest %s", h.Path())
		}
		_, err := fmt.Fprintf(w, "%x  %s\n", sum.Sum(nil), h.Path())
		return err
	})
}
