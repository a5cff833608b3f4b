package dump

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/bibata/cursorkit/xcursor"
)

func writeTestXCursor(t *testing.T, path string, w, h int, c color.RGBA) *image.RGBA {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	pixels := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := (y*w + x) * 4
			pixels[off+0] = c.B
			pixels[off+1] = c.G
			pixels[off+2] = c.R
			pixels[off+3] = c.A
		}
	}
	var buf bytes.Buffer
	if err := xcursor.Write(&buf, xcursor.File{Images: []xcursor.ImageEntry{
		{NominalSize: 24, Width: uint32(w), Height: uint32(h), XHot: 1, YHot: 1, Pixels: pixels},
	}}); err != nil {
		t.Fatalf("xcursor.Write: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return img
}

func TestDispatcherDumpsXCursorFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pointer")
	writeTestXCursor(t, path, 24, 24, color.RGBA{R: 9, G: 8, B: 7, A: 255})

	metas, err := NewDispatcher().Dump(path, dir)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if len(metas) != 1 || metas[0].Format != "xcursor" {
		t.Fatalf("got metas %+v, want one xcursor entry", metas)
	}
	if metas[0].FrameCount != 1 || len(metas[0].Frames) != 1 {
		t.Fatalf("unexpected frame data: %+v", metas[0])
	}
	if _, err := os.Stat(filepath.Join(dir, metas[0].Frames[0].FileName)); err != nil {
		t.Errorf("expected dumped PNG file: %v", err)
	}
}

func TestDispatcherRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "garbage")
	if err := os.WriteFile(path, []byte("not a cursor file at all"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := NewDispatcher().Dump(path, dir); err == nil {
		t.Fatal("expected ErrUnsupportedFormat")
	}
}

func TestWriteMetadataRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meta.json")
	metas := []Metadata{{Format: "xcursor", CursorName: "pointer", FrameCount: 1}}
	if err := WriteMetadata(path, metas); err != nil {
		t.Fatalf("WriteMetadata: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Contains(data, []byte("pointer")) {
		t.Errorf("expected metadata JSON to contain cursor name, got %s", data)
	}
}
