package wincur

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	bst "github.com/mixcode/binarystruct"
	"golang.org/x/image/draw"
)

// Image is one decoded cursor resolution: a premultiplied-RGBA bitmap with
// its hotspot. PNGData is non-nil when the entry was stored as a verbatim
// PNG on disk: when a PNG is supplied, it is stored verbatim.
type Image struct {
	HotspotX, HotspotY int
	RGBA               *image.RGBA
	PNGData            []byte
}

// WriteImage is one resolution to encode. If PNGData is set it is written
// verbatim; otherwise RGBA is synthesized into a DIB + AND mask.
type WriteImage struct {
	HotspotX, HotspotY int
	RGBA               *image.RGBA
	PNGData            []byte
}

// DecodeCUR parses an ICONDIR/ICONDIRENTRY-family container (CUR, type=2)
// and decodes every entry's image payload.
func DecodeCUR(r io.Reader) ([]Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return decodeCURBytes(data)
}

func decodeCURBytes(data []byte) ([]Image, error) {
	br := bytes.NewReader(data)

	var dir iconDir
	if _, err := bst.Read(br, bst.LittleEndian, &dir); err != nil {
		return nil, fmt.Errorf("wincur: reading ICONDIR: %w", err)
	}
	if dir.Reserved != 0 || dir.Type != 2 {
		return nil, fmt.Errorf("%w: reserved=%d type=%d", ErrBadICONDIR, dir.Reserved, dir.Type)
	}
	if dir.Count == 0 {
		return nil, fmt.Errorf("%w: no entries", ErrBadICONDIR)
	}

	entries := make([]iconDirEntry, dir.Count)
	for i := range entries {
		if _, err := bst.Read(br, bst.LittleEndian, &entries[i]); err != nil {
			return nil, fmt.Errorf("wincur: reading ICONDIRENTRY %d: %w", i, err)
		}
	}

	images := make([]Image, len(entries))
	for i, e := range entries {
		start := int64(e.Offset)
		end := start + int64(e.Size)
		if e.Size == 0 || start < 0 || end < start || end > int64(len(data)) {
			return nil, fmt.Errorf("%w: entry %d offset=%d size=%d", ErrBadEntry, i, e.Offset, e.Size)
		}
		payload := data[start:end]

		img, err := decodeEntryPayload(payload, e)
		if err != nil {
			return nil, fmt.Errorf("wincur: decoding entry %d: %w", i, err)
		}
		img.HotspotX = int(e.Planes)
		img.HotspotY = int(e.BitCount)
		images[i] = img
	}
	return images, nil
}

// decodeEntryPayload decodes a single CUR payload, auto-detecting PNG vs
// BMP/DIB by its leading bytes.
func decodeEntryPayload(payload []byte, e iconDirEntry) (Image, error) {
	if isPNG(payload) {
		img, err := png.Decode(bytes.NewReader(payload))
		if err != nil {
			return Image{}, err
		}
		rgba := toRGBA(img)
		cp := make([]byte, len(payload))
		copy(cp, payload)
		return Image{RGBA: rgba, PNGData: cp}, nil
	}

	rgba, err := decodeDIB(payload, e)
	if err != nil {
		return Image{}, err
	}
	return Image{RGBA: rgba}, nil
}

// decodeDIB decodes a BITMAPINFOHEADER + XOR pixels + AND mask payload, as
// embedded in a CUR/ICO entry. Grounded on the antoinefink-golang-ico and
// WuAdrian-watchcow ICO decoders: the declared height is double the real
// image height (XOR image stacked on top of a 1-bit AND mask), rows are
// padded to 32-bit boundaries, and 24/32bpp pixels are stored bottom-up.
func decodeDIB(payload []byte, e iconDirEntry) (*image.RGBA, error) {
	if len(payload) < bitmapInfoHeaderSize {
		return nil, fmt.Errorf("%w: truncated BITMAPINFOHEADER", ErrBadDIB)
	}

	var hdr bitmapInfoHeader
	if _, err := bst.Read(bytes.NewReader(payload[:bitmapInfoHeaderSize]), bst.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDIB, err)
	}

	w := int(hdr.Width)
	h := int(hdr.Height) / 2
	if w <= 0 || h <= 0 {
		w, h = e.width(), e.height()
	}
	bpp := int(hdr.BitCount)

	colorTableLen := 0
	switch bpp {
	case 1, 2, 4, 8:
		n := int(hdr.ClrUsed)
		if n == 0 {
			n = 1 << uint(bpp)
		}
		colorTableLen = n * 4
	case 24, 32:
		// no color table
	default:
		return nil, fmt.Errorf("%w: %d bpp", ErrUnsupportedBPP, bpp)
	}

	body := payload[bitmapInfoHeaderSize:]
	var palette []byte
	if colorTableLen > 0 {
		if len(body) < colorTableLen {
			return nil, fmt.Errorf("%w: truncated color table", ErrBadDIB)
		}
		palette = body[:colorTableLen]
		body = body[colorTableLen:]
	}

	xorRowSize := ((w*bpp + 31) / 32) * 4
	xorSize := xorRowSize * h
	andRowSize := ((w + 31) / 32) * 4
	andSize := andRowSize * h
	if len(body) < xorSize+andSize {
		return nil, fmt.Errorf("%w: pixel data shorter than declared dimensions", ErrBadDIB)
	}
	xorData := body[:xorSize]
	andData := body[xorSize : xorSize+andSize]

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for row := 0; row < h; row++ {
		// DIB rows are stored bottom-up.
		srcRow := xorData[row*xorRowSize : (row+1)*xorRowSize]
		dstY := h - 1 - row
		for col := 0; col < w; col++ {
			r, g, b, a := pixelAt(srcRow, palette, bpp, col)
			maskByte := andData[row*andRowSize+col/8]
			masked := (maskByte>>(7-uint(col%8)))&1 == 1
			if masked {
				a = 0
			}
			dst.SetRGBA(col, dstY, premultiply(r, g, b, a))
		}
	}
	return dst, nil
}

// pixelAt extracts one pixel's RGBA8 components (alpha=255 unless bpp==32)
// from a DIB row at the given column, for bpp in {1,2,4,8,24,32}.
func pixelAt(row, palette []byte, bpp, col int) (r, g, b, a uint8) {
	switch bpp {
	case 32:
		off := col * 4
		return row[off+2], row[off+1], row[off], row[off+3]
	case 24:
		off := col * 3
		return row[off+2], row[off+1], row[off], 255
	case 1, 2, 4, 8:
		idx := paletteIndex(row, bpp, col)
		off := int(idx) * 4
		if off+3 >= len(palette) {
			return 0, 0, 0, 255
		}
		return palette[off+2], palette[off+1], palette[off], 255
	}
	return 0, 0, 0, 255
}

func paletteIndex(row []byte, bpp, col int) byte {
	switch bpp {
	case 8:
		return row[col]
	case 4:
		b := row[col/2]
		if col%2 == 0 {
			return b >> 4
		}
		return b & 0x0F
	case 2:
		b := row[col/4]
		shift := 6 - 2*(col%4)
		return (b >> uint(shift)) & 0x03
	case 1:
		b := row[col/8]
		shift := 7 - (col % 8)
		return (b >> uint(shift)) & 0x01
	}
	return 0
}

func premultiply(r, g, b, a uint8) (uint8, uint8, uint8, uint8) {
	if a == 255 || a == 0 {
		if a == 0 {
			return 0, 0, 0, 0
		}
		return r, g, b, a
	}
	mul := func(c uint8) uint8 { return uint8(uint32(c) * uint32(a) / 255) }
	return mul(r), mul(g), mul(b), a
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// EncodeCUR writes a CUR container (ICONDIR type=2) holding images, laying
// out the directory followed by payloads at 32-bit-aligned offsets (spec
// §4.C: "CUR writer"). Images >= 256 in either dimension encode as 0 per
// the ICO-family convention.
func EncodeCUR(w io.Writer, images []WriteImage) error {
	if len(images) == 0 {
		return fmt.Errorf("wincur: no images to encode")
	}

	payloads := make([][]byte, len(images))
	for i, img := range images {
		p, err := encodeEntryPayload(img)
		if err != nil {
			return fmt.Errorf("wincur: encoding entry %d: %w", i, err)
		}
		payloads[i] = p
	}

	var buf bytes.Buffer
	dir := iconDir{Reserved: 0, Type: 2, Count: uint16(len(images))}
	if _, err := bst.Write(&buf, bst.LittleEndian, dir); err != nil {
		return err
	}

	headerLen := 6 + 16*len(images)
	offset := alignUp32(headerLen)
	entries := make([]iconDirEntry, len(images))
	offsets := make([]int, len(images))
	for i, img := range images {
		w, h := dimensOf(img)
		entries[i] = iconDirEntry{
			Width:      encodeDimension(w),
			Height:     encodeDimension(h),
			ColorCount: 0,
			Reserved:   0,
			Planes:     uint16(img.HotspotX),
			BitCount:   uint16(img.HotspotY),
			Size:       uint32(len(payloads[i])),
			Offset:     uint32(offset),
		}
		offsets[i] = offset
		offset = alignUp32(offset + len(payloads[i]))
	}
	for _, e := range entries {
		if _, err := bst.Write(&buf, bst.LittleEndian, e); err != nil {
			return err
		}
	}

	for i, p := range payloads {
		for buf.Len() < offsets[i] {
			buf.WriteByte(0)
		}
		buf.Write(p)
	}
	for buf.Len() < offset {
		buf.WriteByte(0)
	}

	_, err := w.Write(buf.Bytes())
	return err
}

func dimensOf(img WriteImage) (int, int) {
	if img.PNGData != nil {
		cfg, err := png.DecodeConfig(bytes.NewReader(img.PNGData))
		if err == nil {
			return cfg.Width, cfg.Height
		}
	}
	b := img.RGBA.Bounds()
	return b.Dx(), b.Dy()
}

func encodeDimension(v int) byte {
	if v >= 256 {
		return 0
	}
	return byte(v)
}

func alignUp32(n int) int { return (n + 3) &^ 3 }

func encodeEntryPayload(img WriteImage) ([]byte, error) {
	if img.PNGData != nil {
		return img.PNGData, nil
	}
	if img.RGBA == nil {
		return nil, fmt.Errorf("wincur: image has neither PNG data nor RGBA pixels")
	}
	return encodeDIB(img.RGBA), nil
}

// encodeDIB synthesizes a 32bpp BITMAPINFOHEADER + XOR pixels + AND mask
// payload from a premultiplied RGBA image.
func encodeDIB(img *image.RGBA) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	xorRowSize := w * 4
	andRowSize := ((w + 31) / 32) * 4

	hdr := bitmapInfoHeader{
		Size:     bitmapInfoHeaderSize,
		Width:    int32(w),
		Height:   int32(h * 2),
		Planes:   1,
		BitCount: 32,
	}
	hdr.SizeImage = uint32(xorRowSize*h + andRowSize*h)

	var buf bytes.Buffer
	bst.Write(&buf, bst.LittleEndian, hdr)

	xor := make([]byte, xorRowSize*h)
	and := make([]byte, andRowSize*h)
	for row := 0; row < h; row++ {
		srcY := b.Min.Y + (h - 1 - row)
		for col := 0; col < w; col++ {
			c := img.RGBAAt(b.Min.X+col, srcY)
			r, g, bl, a := unpremultiply(c.R, c.G, c.B, c.A)
			off := row*xorRowSize + col*4
			xor[off+0] = bl
			xor[off+1] = g
			xor[off+2] = r
			xor[off+3] = a
			if a == 0 {
				and[row*andRowSize+col/8] |= 1 << (7 - uint(col%8))
			}
		}
	}
	buf.Write(xor)
	buf.Write(and)
	return buf.Bytes()
}

func unpremultiply(r, g, b, a uint8) (uint8, uint8, uint8, uint8) {
	if a == 0 || a == 255 {
		return r, g, b, a
	}
	div := func(c uint8) uint8 { return uint8(uint32(c) * 255 / uint32(a)) }
	return div(r), div(g), div(b), a
}
