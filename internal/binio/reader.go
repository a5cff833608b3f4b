package binio

import (
	"encoding/binary"
	"io"
)

// Reader is a forward-only reader over a byte stream; it adds no buffering
// of its own, reading straight from the wrapped io.Reader. It tracks
// its absolute position so callers can report offsets in error messages,
// and it never reads past a declared chunk boundary when handed to a
// Section view (see Bounded).
type Reader struct {
	r   io.Reader
	pos int64
}

// NewReader wraps r for sequential binary decoding.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Position returns the number of bytes consumed so far.
func (r *Reader) Position() int64 { return r.pos }

// ReadExact reads exactly n bytes and returns them as a new slice.
func (r *Reader) ReadExact(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return nil, ErrUnexpectedEnd
		}
		return nil, err
	}
	r.pos += int64(n)
	return buf, nil
}

// Skip discards n bytes.
func (r *Reader) Skip(n int64) error {
	if n <= 0 {
		return nil
	}
	written, err := io.CopyN(io.Discard, r.r, n)
	r.pos += written
	if err != nil {
		if err == io.EOF {
			return ErrUnexpectedEnd
		}
		return err
	}
	return nil
}

// ReadU8 reads a single byte.
func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.ReadExact(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16LE reads a little-endian uint16.
func (r *Reader) ReadU16LE() (uint16, error) {
	b, err := r.ReadExact(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32LE reads a little-endian uint32.
func (r *Reader) ReadU32LE() (uint32, error) {
	b, err := r.ReadExact(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadU32BE reads a big-endian uint32.
func (r *Reader) ReadU32BE() (uint32, error) {
	b, err := r.ReadExact(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// Section is a bounded view over a Reader's underlying stream, used to hand
// a callback exactly the bytes of one chunk's payload without letting it
// read past the boundary. Verify reports a DataError if the callback
// under- or over-consumed the section.
type Section struct {
	lr   *io.LimitedReader
	want int64
}

// Bounded returns an io.Reader limited to n bytes starting at the reader's
// current position, and adds n to r's Position up front. The underlying
// stream only advances as the returned Section is read, so the parent
// Reader stays in step only once the Section has been consumed in full
// (checked by Verify, or forced by Drain); nothing is pre-buffered past the
// boundary.
func (r *Reader) Bounded(n int64) *Section {
	lr := &io.LimitedReader{R: r.r, N: n}
	r.pos += n
	return &Section{lr: lr, want: n}
}

// Read implements io.Reader, counting bytes consumed by the callback.
func (s *Section) Read(p []byte) (int, error) {
	return s.lr.Read(p)
}

// Verify reports an error if the callback did not consume exactly the
// section's declared length.
func (s *Section) Verify(where string) error {
	if s.lr.N > 0 {
		return InvalidData(where, "callback under-consumed bounded section")
	}
	return nil
}

// Drain discards any unread bytes in the section (used after a callback
// returns successfully but chooses not to read trailing padding).
func (s *Section) Drain() error {
	_, err := io.Copy(io.Discard, s.lr)
	return err
}
