package tarstream

import "io"

// EntryFunc processes a single archive entry. The payload reader yields the
// entry's payload bytes and reports io.EOF at the payload end; the handler
// may stop reading at any point, the decoder resynchronizes afterwards.
type EntryFunc func(h *Header, payload io.Reader) error

// NextEntry decodes exactly one entry and hands it to fn. Whatever part of
// the payload fn leaves unread is drained so the stream lands on the next
// entry. It returns ErrNoMoreEntries when the archive is exhausted, the
// decoded *FormatError when the stream is malformed, and fn's error
// otherwise.
func (d *Decoder) NextEntry(fn EntryFunc) error {
	c, err := d.Next()
	if err == io.EOF {
		return ErrNoMoreEntries
	}
	if err != nil {
		return err
	}
	switch c.Type {
	case ChunkTypePayload:
		d.unread = c
		return &FormatError{Code: ErrCodeUnexpectedPayload, Offset: c.Offset}
	case ChunkTypeError:
		return c.Err
	}
	er := &entryReader{d: d}
	fnErr := fn(c.Header, er)
	if err := er.drain(); err != nil && fnErr == nil {
		return err
	}
	return fnErr
}

// Entries invokes fn for every entry of the archive in order. Archive
// exhaustion terminates the iteration cleanly; any other failure aborts it.
func (d *Decoder) Entries(fn EntryFunc) error {
	for {
		if err := d.NextEntry(fn); err != nil {
			if err == ErrNoMoreEntries {
				return nil
			}
			return err
		}
	}
}

// entryReader serves one entry's payload chunks as an io.Reader. The first
// non-payload chunk it encounters is pushed back onto the decoder and the
// reader reports io.EOF from then on.
type entryReader struct {
	d    *Decoder
	rest []byte // unconsumed tail of the current payload chunk
	done bool
}

func (er *entryReader) Read(p []byte) (int, error) {
	if len(er.rest) > 0 {
		n := copy(p, er.rest)
		er.rest = er.rest[n:]
		return n, nil
	}
	if er.done {
		return 0, io.EOF
	}
	c, err := er.d.Next()
	if err == io.EOF {
		er.done = true
		return 0, io.EOF
	}
	if err != nil {
		return 0, err
	}
	if c.Type != ChunkTypePayload {
		er.d.unread = c
		er.done = true
		return 0, io.EOF
	}
	n := copy(p, c.Data)
	er.rest = c.Data[n:]
	return n, nil
}

// drain discards the rest of the entry's payload so the decoder position
// advances past the entry even when the handler stopped early.
func (er *entryReader) drain() error {
	er.rest = nil
	for !er.done {
		c, err := er.d.Next()
		if err == io.EOF {
			er.done = true
			return nil
		}
		if err != nil {
			return err
		}
		if c.Type != ChunkTypePayload {
			er.d.unread = c
			er.done = true
		}
	}
	return nil
}
