package wincur

import (
	"bytes"
	"image/color"
	"testing"
)

func TestANIWriteReadJiffies(t *testing.T) {
	delaysMs := []uint32{100, 100, 50, 250}
	wantJiffies := []uint32{6, 6, 3, 15}

	var frames [][]WriteImage
	for i := range delaysMs {
		img := solidRGBA(32, 32, color.RGBA{R: uint8(i * 10), G: 0, B: 0, A: 255})
		frames = append(frames, []WriteImage{{RGBA: img, HotspotX: 16, HotspotY: 16}})
	}

	var buf bytes.Buffer
	if err := EncodeANI(&buf, frames, delaysMs); err != nil {
		t.Fatalf("EncodeANI: %v", err)
	}

	anim, err := DecodeANI(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodeANI: %v", err)
	}
	if len(anim.Frames) != 4 {
		t.Fatalf("got %d frames, want 4", len(anim.Frames))
	}
	if len(anim.Rate) != len(wantJiffies) {
		t.Fatalf("got %d rate entries, want %d", len(anim.Rate), len(wantJiffies))
	}
	for i, want := range wantJiffies {
		if anim.Rate[i] != want {
			t.Errorf("rate[%d] = %d, want %d", i, anim.Rate[i], want)
		}
	}
	for i, f := range anim.Frames {
		if f[0].RGBA.Bounds().Dx() != 32 {
			t.Errorf("frame %d: decoded width = %d, want 32", i, f[0].RGBA.Bounds().Dx())
		}
	}
}

func TestANIUniformDelayOmitsRateChunk(t *testing.T) {
	var frames [][]WriteImage
	delays := []uint32{100, 100, 100}
	for range delays {
		frames = append(frames, []WriteImage{{RGBA: solidRGBA(16, 16, color.RGBA{A: 255})}})
	}

	var buf bytes.Buffer
	if err := EncodeANI(&buf, frames, delays); err != nil {
		t.Fatalf("EncodeANI: %v", err)
	}
	if bytes.Contains(buf.Bytes(), []byte("rate")) {
		t.Error("expected no rate chunk for uniform delays")
	}

	anim, err := DecodeANI(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodeANI: %v", err)
	}
	if len(anim.Rate) != 0 {
		t.Errorf("expected no rate entries parsed, got %d", len(anim.Rate))
	}
	if len(anim.Sequence) != 3 {
		t.Errorf("got %d sequence steps, want 3", len(anim.Sequence))
	}
	for i, s := range anim.Sequence {
		if s != i%len(anim.Frames) {
			t.Errorf("sequence[%d] = %d, want modular index %d", i, s, i%len(anim.Frames))
		}
	}
}
