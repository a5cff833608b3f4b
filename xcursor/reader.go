package xcursor

import (
	"fmt"
	"io"

	"github.com/bibata/cursorkit/internal/binio"
)

// Handler receives push-style callbacks as a Reader walks an XCursor file.
// Exactly one Image or Comment call is made per TOC entry, in TOC order.
// A non-nil return from any method aborts the walk.
type Handler interface {
	// Header is called once, before any chunk callback.
	Header(fileVersion, tocLength uint32) error
	// Image is called once per IMAGE chunk. pixels is a bounded reader
	// yielding exactly width*height*4 bytes of little-endian ARGB32
	// premultiplied pixel data; the callback must read all of it.
	Image(nominalSize, chunkVersion, width, height, xhot, yhot, delay uint32, pixels io.Reader) error
	// Comment is called once per COMMENT chunk.
	Comment(commentType, chunkVersion uint32, text string) error
}

// Read walks an XCursor file from r, dispatching to h. Validation is
// eager: a malformed header or chunk aborts before any callback sees data
// from that chunk.
func Read(r io.Reader, h Handler) error {
	br := binio.NewReader(r)

	magic, err := br.ReadExact(4)
	if err != nil {
		return err
	}
	want := magicBytes()
	if magic[0] != want[0] || magic[1] != want[1] || magic[2] != want[2] || magic[3] != want[3] {
		return ErrBadMagic
	}

	headerSize, err := br.ReadU32LE()
	if err != nil {
		return err
	}
	if headerSize != FileHeaderSize {
		return fmt.Errorf("%w: file header declares %d, want %d", ErrBadHeaderSize, headerSize, FileHeaderSize)
	}

	fileVersion, err := br.ReadU32LE()
	if err != nil {
		return err
	}
	tocLength, err := br.ReadU32LE()
	if err != nil {
		return err
	}

	if err := h.Header(fileVersion, tocLength); err != nil {
		return err
	}

	toc := make([]TOCEntry, tocLength)
	for i := range toc {
		typ, err := br.ReadU32LE()
		if err != nil {
			return err
		}
		subtype, err := br.ReadU32LE()
		if err != nil {
			return err
		}
		pos, err := br.ReadU32LE()
		if err != nil {
			return err
		}
		toc[i] = TOCEntry{Type: typ, Subtype: subtype, Position: pos}
	}

	// Walk entries in TOC order, skipping forward to each declared position.
	// Since br is forward-only, a TOC whose positions decrease is rejected
	// rather than read out of order: any real writer (including
	// this package's) produces that layout, and a hostile reordering is
	// indistinguishable from a truncated file under a forward-only reader.
	pos := uint32(FileHeaderSize) + tocLength*TOCEntrySize
	for i, entry := range toc {
		if entry.Position < pos {
			return binio.InvalidData("toc", fmt.Sprintf("entry %d position %d precedes current offset %d", i, entry.Position, pos))
		}
		if entry.Position > pos {
			if err := br.Skip(int64(entry.Position - pos)); err != nil {
				return err
			}
			pos = entry.Position
		}

		consumed, err := readChunk(br, entry, h)
		if err != nil {
			return err
		}
		pos += consumed
	}

	return nil
}

// readChunk reads one chunk whose generic header has already been
// positioned at entry.Position, and dispatches it to h. Returns the number
// of bytes consumed.
func readChunk(br *binio.Reader, entry TOCEntry, h Handler) (uint32, error) {
	declaredSize, err := br.ReadU32LE()
	if err != nil {
		return 0, err
	}
	if declaredSize != ChunkHeaderSize {
		return 0, fmt.Errorf("%w: chunk declares header size %d, want %d", ErrBadHeaderSize, declaredSize, ChunkHeaderSize)
	}
	typ, err := br.ReadU32LE()
	if err != nil {
		return 0, err
	}
	subtype, err := br.ReadU32LE()
	if err != nil {
		return 0, err
	}
	version, err := br.ReadU32LE()
	if err != nil {
		return 0, err
	}
	if typ != entry.Type || subtype != entry.Subtype {
		return 0, ErrBadChunkHeader
	}

	switch typ {
	case TypeImage:
		return readImage(br, subtype, version, h)
	case TypeComment:
		return readComment(br, subtype, version, h)
	default:
		return 0, fmt.Errorf("xcursor: unknown chunk type 0x%08x", typ)
	}
}

func readImage(br *binio.Reader, nominalSize, version uint32, h Handler) (uint32, error) {
	width, err := br.ReadU32LE()
	if err != nil {
		return 0, err
	}
	height, err := br.ReadU32LE()
	if err != nil {
		return 0, err
	}
	xhot, err := br.ReadU32LE()
	if err != nil {
		return 0, err
	}
	yhot, err := br.ReadU32LE()
	if err != nil {
		return 0, err
	}
	delay, err := br.ReadU32LE()
	if err != nil {
		return 0, err
	}

	if width > MaxDimension || height > MaxDimension {
		return 0, ErrDimension
	}
	if xhot > width || yhot > height {
		return 0, ErrDimension
	}

	pixelLen := int64(width) * int64(height) * 4
	section := br.Bounded(pixelLen)
	if err := h.Image(nominalSize, version, width, height, xhot, yhot, delay, section); err != nil {
		return 0, err
	}
	if err := section.Verify("xcursor image pixels"); err != nil {
		return 0, ErrUnderConsumed
	}

	return chunkPreambleSize + 20 + uint32(pixelLen), nil
}

func readComment(br *binio.Reader, commentType, version uint32, h Handler) (uint32, error) {
	length, err := br.ReadU32LE()
	if err != nil {
		return 0, err
	}
	text, err := br.ReadExact(int(length))
	if err != nil {
		return 0, err
	}
	if err := h.Comment(commentType, version, string(text)); err != nil {
		return 0, err
	}
	return chunkPreambleSize + 4 + length, nil
}
