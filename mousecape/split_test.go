package mousecape

import (
	"image"
	"image/color"
	"testing"
)

func TestSplitFramesEqualHeightTiles(t *testing.T) {
	const w, h, frameCount = 32, 32, 4
	full := image.NewRGBA(image.Rect(0, 0, w, h*frameCount))
	for i := 0; i < frameCount; i++ {
		c := color.RGBA{R: uint8(i * 50), G: 0, B: 0, A: 255}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				full.SetRGBA(x, i*h+y, c)
			}
		}
	}
	data, err := JoinFrames(splitInput(full, frameCount, h))
	if err != nil {
		t.Fatalf("JoinFrames: %v", err)
	}

	frames, err := SplitFrames(data, frameCount)
	if err != nil {
		t.Fatalf("SplitFrames: %v", err)
	}
	if len(frames) != frameCount {
		t.Fatalf("got %d frames, want %d", len(frames), frameCount)
	}
	for i, f := range frames {
		if f.Bounds().Dx() != w || f.Bounds().Dy() != h {
			t.Fatalf("frame %d size %dx%d, want %dx%d", i, f.Bounds().Dx(), f.Bounds().Dy(), w, h)
		}
		want := color.RGBA{R: uint8(i * 50), G: 0, B: 0, A: 255}
		if got := f.RGBAAt(0, 0); got != want {
			t.Errorf("frame %d: pixel = %+v, want %+v", i, got, want)
		}
	}
}

func splitInput(full *image.RGBA, frameCount, frameH int) []*image.RGBA {
	w := full.Bounds().Dx()
	out := make([]*image.RGBA, frameCount)
	for i := 0; i < frameCount; i++ {
		f := image.NewRGBA(image.Rect(0, 0, w, frameH))
		for y := 0; y < frameH; y++ {
			for x := 0; x < w; x++ {
				f.Set(x, y, full.At(x, i*frameH+y))
			}
		}
		out[i] = f
	}
	return out
}

func TestSplitFramesRejectsIndivisibleHeight(t *testing.T) {
	data := solidPNG(16, 17, color.RGBA{A: 255})
	if _, err := SplitFrames(data, 4); err == nil {
		t.Fatal("expected ErrBadFrameSize for height not divisible by frameCount")
	}
}

func TestJoinFramesRejectsMismatchedSizes(t *testing.T) {
	a := image.NewRGBA(image.Rect(0, 0, 16, 16))
	b := image.NewRGBA(image.Rect(0, 0, 8, 16))
	if _, err := JoinFrames([]*image.RGBA{a, b}); err == nil {
		t.Fatal("expected error for mismatched frame sizes")
	}
}
