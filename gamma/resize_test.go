package gamma

import (
	"image"
	"image/color"
	"testing"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestDownscaleIdentityIsUnchanged(t *testing.T) {
	src := solidImage(16, 16, color.RGBA{R: 120, G: 80, B: 40, A: 255})
	out := Downscale(src, 16, 16)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			got := out.RGBAAt(x, y)
			want := src.RGBAAt(x, y)
			if got != want {
				t.Fatalf("pixel (%d,%d): got %+v, want %+v", x, y, got, want)
			}
		}
	}
}

// TestDownscaleIdentityAllChannelValues covers every 8-bit channel value,
// including the near-black range where the gamma<->linear lookup tables are
// not bit-exact under round trip (v=1..5,7,9 among them). A 1x downscale
// must still reproduce the source exactly, so Downscale special-cases the
// identity-size resize and bypasses the lossy linear conversion entirely
// rather than relying on the tables to round-trip every value.
func TestDownscaleIdentityAllChannelValues(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 256, 1))
	for v := 0; v < 256; v++ {
		src.SetRGBA(v, 0, color.RGBA{R: uint8(v), G: uint8(255 - v), B: uint8(v), A: uint8(v)})
	}

	out := Downscale(src, 256, 1)
	for v := 0; v < 256; v++ {
		got := out.RGBAAt(v, 0)
		want := src.RGBAAt(v, 0)
		if got != want {
			t.Fatalf("value %d: got %+v, want %+v", v, got, want)
		}
	}
}

func TestDownscalePremultipliedInvariant(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			a := uint8((x + y) * 16)
			src.SetRGBA(x, y, color.RGBA{R: 200, G: 150, B: 100, A: a})
		}
	}

	out := Downscale(src, 4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			c := out.RGBAAt(x, y)
			if c.R > c.A || c.G > c.A || c.B > c.A {
				t.Errorf("pixel (%d,%d) not premultiplied: %+v", x, y, c)
			}
		}
	}
}

func TestDownscaleHotspotProportional(t *testing.T) {
	src := solidImage(64, 64, color.RGBA{R: 10, G: 10, B: 10, A: 255})
	_, hx, hy := DownscaleHotspot(src, 32, 32, 32, 32)
	if hx != 16 || hy != 16 {
		t.Errorf("hotspot = (%d,%d), want (16,16)", hx, hy)
	}
}

func TestDownscaleHotspotClampsToBounds(t *testing.T) {
	src := solidImage(32, 32, color.RGBA{A: 255})
	_, hx, hy := DownscaleHotspot(src, 16, 16, 31, 31)
	if hx >= 16 || hy >= 16 {
		t.Errorf("hotspot = (%d,%d), want within [0,16)", hx, hy)
	}
}
