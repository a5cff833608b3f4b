package wincur

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	bst "github.com/mixcode/binarystruct"

	"github.com/bibata/cursorkit/internal/riff"
)

// Animation is the decoded contents of an ANI container: one CUR-shaped
// frame per distinct image plus a playback sequence referencing them, and
// a per-step delay in jiffies (1/60s).
type Animation struct {
	Frames   [][]Image // Frames[i] is the set of resolutions for frame i
	Sequence []int     // Sequence[s] indexes into Frames for playback step s
	Rate     []uint32  // Rate[s] is step s's delay in jiffies; empty when the file has no "rate" chunk
	JifRate  uint32    // anih default delay in jiffies, used for every step when Rate is empty
	Width    int
	Height   int
	BitCount int
}

var (
	riffTag = riff.FourCC("RIFF")
	aconTag = riff.FourCC("ACON")
	listTag = riff.FourCC("LIST")
	framTag = riff.FourCC("fram")
	anihTag = riff.FourCC("anih")
	rateTag = riff.FourCC("rate")
	seqTag  = riff.FourCC("seq ")
	iconTag = riff.FourCC("icon")
)

// DecodeANI parses a RIFF(ACON) animated cursor container.
func DecodeANI(r io.Reader) (*Animation, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	if _, err := riff.ParseHeader(data, aconTag); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadANI, err)
	}
	body := data[riff.HeaderSize:]

	var hdr *anihHeader
	var frames [][]Image
	var rate []uint32
	var seq []int

	err = riff.Walk(body, func(c riff.Chunk) error {
		switch c.ID {
		case anihTag:
			var h anihHeader
			if _, err := bst.Read(bytes.NewReader(c.Payload), bst.LittleEndian, &h); err != nil {
				return fmt.Errorf("%w: anih: %v", ErrBadANI, err)
			}
			hdr = &h
		case rateTag:
			rate = make([]uint32, len(c.Payload)/4)
			for i := range rate {
				rate[i] = binary.LittleEndian.Uint32(c.Payload[i*4 : i*4+4])
			}
		case seqTag:
			seq = make([]int, len(c.Payload)/4)
			for i := range seq {
				seq[i] = int(binary.LittleEndian.Uint32(c.Payload[i*4 : i*4+4]))
			}
		case listTag:
			listType, inner, err := riff.ListType(c.Payload)
			if err != nil {
				return err
			}
			if listType != framTag {
				return nil
			}
			return riff.Walk(inner, func(fc riff.Chunk) error {
				if fc.ID != iconTag {
					return nil
				}
				imgs, err := decodeCURBytes(fc.Payload)
				if err != nil {
					return fmt.Errorf("wincur: ANI frame %d: %w", len(frames), err)
				}
				frames = append(frames, imgs)
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if hdr == nil {
		return nil, fmt.Errorf("%w: missing anih chunk", ErrBadANI)
	}
	if int(hdr.CFrames) != len(frames) {
		return nil, fmt.Errorf("%w: anih declares %d frames, found %d", ErrFrameMismatch, hdr.CFrames, len(frames))
	}

	// Per-step playback sequence: an explicit "seq " chunk takes precedence;
	// otherwise steps index frames modulo the frame count (§9 Open
	// Questions: this package chooses modular indexing over truncation).
	steps := int(hdr.CSteps)
	if steps == 0 {
		steps = len(frames)
	}
	if seq == nil {
		seq = make([]int, steps)
		for i := range seq {
			seq[i] = i % len(frames)
		}
	}

	return &Animation{
		Frames:   frames,
		Sequence: seq,
		Rate:     rate,
		JifRate:  hdr.JifRate,
		Width:    int(hdr.Cx),
		Height:   int(hdr.Cy),
		BitCount: int(hdr.CBitCount),
	}, nil
}

// EncodeANI writes frames as a RIFF(ACON) container. delaysMillis gives
// each playback step's duration in milliseconds; it is converted to
// jiffies (1/60s) via round(ms*60/1000), clamped to >= 1. A "rate" chunk
// is emitted only when the resulting jiffy delays are non-uniform,
// matching how real ANI encoders avoid the chunk in the common
// fixed-framerate case.
func EncodeANI(w io.Writer, frames [][]WriteImage, delaysMillis []uint32) error {
	if len(frames) == 0 {
		return fmt.Errorf("%w: no frames", ErrBadANI)
	}
	if len(delaysMillis) != len(frames) {
		return fmt.Errorf("%w: %d delays for %d frames", ErrFrameMismatch, len(delaysMillis), len(frames))
	}

	delays := make([]uint32, len(delaysMillis))
	for i, ms := range delaysMillis {
		delays[i] = millisToJiffies(ms)
	}

	cur0 := frames[0]
	w0, h0 := dimensOf(cur0[0])

	hdr := anihHeader{
		CbSizeOf: 36,
		CFrames:  uint32(len(frames)),
		CSteps:   uint32(len(frames)),
		Cx:       uint32(w0),
		Cy:       uint32(h0),
		CBitCount: 32,
		CPlanes:  1,
		JifRate:  delays[0],
		Flags:    anihFlagIcon,
	}

	var anihBuf bytes.Buffer
	bst.Write(&anihBuf, bst.LittleEndian, hdr)

	framePayloads := make([][]byte, len(frames))
	for i, f := range frames {
		var buf bytes.Buffer
		if err := EncodeCUR(&buf, f); err != nil {
			return fmt.Errorf("wincur: encoding ANI frame %d: %w", i, err)
		}
		framePayloads[i] = buf.Bytes()
	}

	var framBuf bytes.Buffer
	framBuf.Write([]byte("fram"))
	for _, p := range framePayloads {
		riff.WriteChunkHeader(&framBuf, iconTag, uint32(len(p)))
		framBuf.Write(p)
		if len(p)%2 != 0 {
			framBuf.WriteByte(0)
		}
	}

	uniform := true
	for _, d := range delays {
		if d != delays[0] {
			uniform = false
			break
		}
	}

	var body bytes.Buffer
	body.Write([]byte("ACON"))
	riff.WriteChunkHeader(&body, anihTag, uint32(anihBuf.Len()))
	body.Write(anihBuf.Bytes())

	if !uniform {
		var rateBuf bytes.Buffer
		for _, d := range delays {
			binary.Write(&rateBuf, binary.LittleEndian, d)
		}
		riff.WriteChunkHeader(&body, rateTag, uint32(rateBuf.Len()))
		body.Write(rateBuf.Bytes())
	}

	riff.WriteChunkHeader(&body, listTag, uint32(framBuf.Len()))
	body.Write(framBuf.Bytes())

	var out bytes.Buffer
	out.Write([]byte("RIFF"))
	var sizeBuf [4]byte
	binary.LittleEndian.PutUint32(sizeBuf[:], uint32(body.Len()))
	out.Write(sizeBuf[:])
	out.Write(body.Bytes())

	_, err := w.Write(out.Bytes())
	return err
}

// millisToJiffies converts a millisecond delay to jiffies (1/60s),
// clamping to >= 1: a zero delay would stall real cursor-animation
// consumers.
func millisToJiffies(ms uint32) uint32 {
	j := (uint64(ms)*60 + 500) / 1000
	if j == 0 {
		return 1
	}
	return uint32(j)
}
