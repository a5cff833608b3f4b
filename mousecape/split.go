package mousecape

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

// SplitFrames decodes a Representation PNG and, when frameCount > 1,
// vertically tiles it into frameCount equal-height frames. A single-frame
// representation decodes to one element.
func SplitFrames(pngData []byte, frameCount int) ([]*image.RGBA, error) {
	if frameCount <= 0 {
		frameCount = 1
	}
	img, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, fmt.Errorf("mousecape: decoding representation PNG: %w", err)
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if h%frameCount != 0 {
		return nil, fmt.Errorf("%w: height %d, frameCount %d", ErrBadFrameSize, h, frameCount)
	}
	frameH := h / frameCount

	frames := make([]*image.RGBA, frameCount)
	for i := 0; i < frameCount; i++ {
		frame := image.NewRGBA(image.Rect(0, 0, w, frameH))
		srcY0 := b.Min.Y + i*frameH
		for y := 0; y < frameH; y++ {
			for x := 0; x < w; x++ {
				frame.Set(x, y, img.At(b.Min.X+x, srcY0+y))
			}
		}
		frames[i] = frame
	}
	return frames, nil
}

// JoinFrames vertically stacks frames into a single Representation PNG,
// the writer-side inverse of SplitFrames. All frames must share width and
// height.
func JoinFrames(frames []*image.RGBA) ([]byte, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("mousecape: no frames to join")
	}
	w := frames[0].Bounds().Dx()
	h := frames[0].Bounds().Dy()
	joined := image.NewRGBA(image.Rect(0, 0, w, h*len(frames)))
	for i, f := range frames {
		fb := f.Bounds()
		if fb.Dx() != w || fb.Dy() != h {
			return nil, fmt.Errorf("mousecape: frame %d size %dx%d does not match %dx%d", i, fb.Dx(), fb.Dy(), w, h)
		}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				joined.Set(x, i*h+y, f.At(fb.Min.X+x, fb.Min.Y+y))
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, joined); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
