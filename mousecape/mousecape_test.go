package mousecape

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func solidPNG(w, h int, c color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	theme := Theme{
		Author:     "studio",
		HiDPI:      true,
		Identifier: "com.example.cursors",
		Name:       "Example",
		Version:    1.0,
		Cursors: []Cursor{
			{
				Name:            "pointer",
				PointsWide:      32,
				PointsHigh:      32,
				HotSpotX:        4,
				HotSpotY:        4,
				FrameCount:      1,
				FrameDuration:   0,
				Representations: [][]byte{solidPNG(32, 32, color.RGBA{R: 1, G: 2, B: 3, A: 255})},
			},
			{
				Name:            "busy",
				PointsWide:      32,
				PointsHigh:      32,
				HotSpotX:        16,
				HotSpotY:        16,
				FrameCount:      4,
				FrameDuration:   0.1,
				Representations: [][]byte{solidPNG(32, 32*4, color.RGBA{R: 9, G: 9, B: 9, A: 255})},
			},
		},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, theme); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got.Author != theme.Author || got.HiDPI != theme.HiDPI || got.Identifier != theme.Identifier || got.Name != theme.Name {
		t.Errorf("theme metadata mismatch: got %+v", got)
	}
	if len(got.Cursors) != 2 {
		t.Fatalf("got %d cursors, want 2", len(got.Cursors))
	}
	// Encode sorts cursors lexically by name: "busy" before "pointer".
	if got.Cursors[0].Name != "busy" || got.Cursors[1].Name != "pointer" {
		t.Errorf("cursor order = [%s, %s], want [busy, pointer]", got.Cursors[0].Name, got.Cursors[1].Name)
	}
	busy := got.Cursors[0]
	if busy.FrameCount != 4 || busy.HotSpotX != 16 || busy.HotSpotY != 16 {
		t.Errorf("busy cursor fields mismatch: %+v", busy)
	}
	if len(busy.Representations) != 1 || !bytes.Equal(busy.Representations[0], theme.Cursors[1].Representations[0]) {
		t.Error("busy cursor representation bytes not preserved")
	}
}

func TestEncodeRejectsMissingRepresentations(t *testing.T) {
	theme := Theme{
		Cursors: []Cursor{{Name: "empty", FrameCount: 1}},
	}
	var buf bytes.Buffer
	if err := Encode(&buf, theme); err == nil {
		t.Fatal("expected error for cursor with no Representations")
	}
}

func TestDecodeRejectsNonPlist(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte("not xml at all"))); err == nil {
		t.Fatal("expected error decoding non-plist input")
	}
}
