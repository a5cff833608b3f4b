// Package wincur implements Windows cursor formats: RIFF-wrapped ANI
// animation containers and ICO-family CUR static cursor files, each
// embedding PNG or DIB images per resolution.
package wincur

import "errors"

// iconDir is the 6-byte ICONDIR header shared by ICO and CUR containers.
type iconDir struct {
	Reserved uint16 `binary:"uint16"`
	Type     uint16 `binary:"uint16"` // 1 = icon, 2 = cursor
	Count    uint16 `binary:"uint16"`
}

// iconDirEntry is the 16-byte ICONDIRENTRY. For cursors, Planes and
// BitCount are reinterpreted as XHot and YHot respectively.
type iconDirEntry struct {
	Width      byte   `binary:"byte"`
	Height     byte   `binary:"byte"`
	ColorCount byte   `binary:"byte"`
	Reserved   byte   `binary:"byte"`
	Planes     uint16 `binary:"uint16"` // xHot for cursors
	BitCount   uint16 `binary:"uint16"` // yHot for cursors
	Size       uint32 `binary:"uint32"`
	Offset     uint32 `binary:"uint32"`
}

func (e iconDirEntry) width() int {
	if e.Width == 0 {
		return 256
	}
	return int(e.Width)
}

func (e iconDirEntry) height() int {
	if e.Height == 0 {
		return 256
	}
	return int(e.Height)
}

// anihHeader is the 36-byte ANI "anih" chunk payload.
type anihHeader struct {
	CbSizeOf uint32 `binary:"uint32"`
	CFrames  uint32 `binary:"uint32"`
	CSteps   uint32 `binary:"uint32"`
	Cx       uint32 `binary:"uint32"`
	Cy       uint32 `binary:"uint32"`
	CBitCount uint32 `binary:"uint32"`
	CPlanes  uint32 `binary:"uint32"`
	JifRate  uint32 `binary:"uint32"`
	Flags    uint32 `binary:"uint32"`
}

const (
	anihFlagIcon     = 1 << 0 // frames are ICO/CUR containers
	anihFlagSeqExtra = 1 << 1 // "seq" chunk present
)

// bitmapInfoHeader is the 40-byte BITMAPINFOHEADER.
type bitmapInfoHeader struct {
	Size            uint32 `binary:"uint32"`
	Width           int32  `binary:"int32"`
	Height          int32  `binary:"int32"` // doubled: XOR image + AND mask stacked
	Planes          uint16 `binary:"uint16"`
	BitCount        uint16 `binary:"uint16"`
	Compression     uint32 `binary:"uint32"`
	SizeImage       uint32 `binary:"uint32"`
	XPelsPerMeter   int32  `binary:"int32"`
	YPelsPerMeter   int32  `binary:"int32"`
	ClrUsed         uint32 `binary:"uint32"`
	ClrImportant    uint32 `binary:"uint32"`
}

const bitmapInfoHeaderSize = 40

var (
	ErrBadICONDIR     = errors.New("wincur: invalid ICONDIR header")
	ErrBadEntry       = errors.New("wincur: corrupted directory entry")
	ErrUnsupportedBPP = errors.New("wincur: unsupported bit depth")
	ErrBadDIB         = errors.New("wincur: corrupted DIB data")
	ErrBadANI         = errors.New("wincur: invalid ANI container")
	ErrFrameMismatch  = errors.New("wincur: ANI frame count mismatch")
)

var pngMagic = [8]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}

func isPNG(b []byte) bool {
	if len(b) < 8 {
		return false
	}
	for i, m := range pngMagic {
		if b[i] != m {
			return false
		}
	}
	return true
}
