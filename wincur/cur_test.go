package wincur

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func solidRGBA(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestCURDimensionEncodingRoundTrip(t *testing.T) {
	for _, s := range []int{1, 16, 32, 48, 64, 128, 255, 256} {
		img := solidRGBA(s, s, color.RGBA{R: 10, G: 20, B: 30, A: 255})
		wi := WriteImage{HotspotX: s / 2, HotspotY: s / 2, RGBA: img}

		var buf bytes.Buffer
		if err := EncodeCUR(&buf, []WriteImage{wi}); err != nil {
			t.Fatalf("size %d: EncodeCUR: %v", s, err)
		}

		images, err := DecodeCUR(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("size %d: DecodeCUR: %v", s, err)
		}
		if len(images) != 1 {
			t.Fatalf("size %d: got %d images, want 1", s, len(images))
		}
		got := images[0].RGBA.Bounds()
		if got.Dx() != s || got.Dy() != s {
			t.Errorf("size %d: decoded dims %dx%d", s, got.Dx(), got.Dy())
		}
	}
}

func TestCURWithPNGPayload(t *testing.T) {
	img := solidRGBA(256, 256, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}

	wi := WriteImage{HotspotX: 128, HotspotY: 128, PNGData: pngBuf.Bytes()}
	var buf bytes.Buffer
	if err := EncodeCUR(&buf, []WriteImage{wi}); err != nil {
		t.Fatalf("EncodeCUR: %v", err)
	}

	raw := buf.Bytes()
	payload := raw[24:32]
	if !bytes.HasPrefix(payload, []byte{0x89, 'P', 'N', 'G'}) {
		t.Errorf("expected ICONDIRENTRY payload offset to start with PNG magic, got % x", payload)
	}

	images, err := DecodeCUR(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("DecodeCUR: %v", err)
	}
	if images[0].HotspotX != 128 || images[0].HotspotY != 128 {
		t.Errorf("hotspot = (%d,%d), want (128,128)", images[0].HotspotX, images[0].HotspotY)
	}
	if images[0].PNGData == nil {
		t.Error("expected PNGData to be populated for a PNG entry")
	}
}

func TestCURDIBRoundTripPreservesAlpha(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			a := uint8(255)
			if x == 0 {
				a = 0
			}
			img.SetRGBA(x, y, color.RGBA{R: 200, G: 100, B: 50, A: a})
		}
	}

	wi := WriteImage{RGBA: img}
	var buf bytes.Buffer
	if err := EncodeCUR(&buf, []WriteImage{wi}); err != nil {
		t.Fatalf("EncodeCUR: %v", err)
	}

	images, err := DecodeCUR(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodeCUR: %v", err)
	}
	out := images[0].RGBA
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			got := out.RGBAAt(x, y)
			if x == 0 && got.A != 0 {
				t.Errorf("pixel (%d,%d): alpha = %d, want 0", x, y, got.A)
			}
			if x != 0 && got.A != 255 {
				t.Errorf("pixel (%d,%d): alpha = %d, want 255", x, y, got.A)
			}
		}
	}
}
