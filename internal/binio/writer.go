package binio

import (
	"bytes"
	"encoding/binary"
)

// Writer accumulates binary output in memory so that a chunk's total size
// can be computed before the bytes are emitted: callers can reserve a
// length field, keep writing, and patch the placeholder once the final size
// is known.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return w.buf.Len() }

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// WriteU8 appends a single byte.
func (w *Writer) WriteU8(v uint8) { w.buf.WriteByte(v) }

// WriteU16LE appends a little-endian uint16.
func (w *Writer) WriteU16LE(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

// WriteU32LE appends a little-endian uint32.
func (w *Writer) WriteU32LE(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

// WriteU32BE appends a big-endian uint32.
func (w *Writer) WriteU32BE(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

// WriteBytes appends raw bytes verbatim.
func (w *Writer) WriteBytes(b []byte) { w.buf.Write(b) }

// AlignTo pads the buffer with zero bytes until its length is a multiple
// of n.
func (w *Writer) AlignTo(n int) {
	if n <= 1 {
		return
	}
	for w.buf.Len()%n != 0 {
		w.buf.WriteByte(0)
	}
}

// Placeholder is a reserved span in the output buffer whose contents are
// filled in after more of the stream has been written (e.g. a chunk's
// "position" back-reference in XCursor's TOC).
type Placeholder struct {
	offset int
	size   int
}

// ReservePlaceholder writes size zero bytes and returns a handle that can
// later be filled with FillU32LE once the real value is known.
func (w *Writer) ReservePlaceholder(size int) Placeholder {
	p := Placeholder{offset: w.buf.Len(), size: size}
	for i := 0; i < size; i++ {
		w.buf.WriteByte(0)
	}
	return p
}

// FillU32LE patches a 4-byte placeholder with a little-endian uint32.
func (w *Writer) FillU32LE(p Placeholder, v uint32) {
	if p.size != 4 {
		panic("binio: placeholder size mismatch")
	}
	b := w.buf.Bytes()
	binary.LittleEndian.PutUint32(b[p.offset:p.offset+4], v)
}
