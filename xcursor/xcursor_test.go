package xcursor

import (
	"bytes"
	"io"
	"testing"
)

type recordedImage struct {
	nominalSize, width, height, xhot, yhot, delay uint32
	pixels                                        []byte
}

type recordingHandler struct {
	images   []recordedImage
	comments []CommentEntry
}

func (h *recordingHandler) Header(fileVersion, tocLength uint32) error { return nil }

func (h *recordingHandler) Image(nominalSize, chunkVersion, width, height, xhot, yhot, delay uint32, pixels io.Reader) error {
	data, err := io.ReadAll(pixels)
	if err != nil {
		return err
	}
	h.images = append(h.images, recordedImage{nominalSize, width, height, xhot, yhot, delay, data})
	return nil
}

func (h *recordingHandler) Comment(commentType, chunkVersion uint32, text string) error {
	h.comments = append(h.comments, CommentEntry{CommentType: commentType, Text: text})
	return nil
}

func solidPixels(w, h uint32, v byte) []byte {
	p := make([]byte, w*h*4)
	for i := range p {
		p[i] = v
	}
	return p
}

func TestRoundTripStaticThreeSizes(t *testing.T) {
	entries := []ImageEntry{
		{NominalSize: 24, Width: 32, Height: 32, XHot: 4, YHot: 4, Pixels: solidPixels(32, 32, 0x11)},
		{NominalSize: 36, Width: 48, Height: 48, XHot: 6, YHot: 6, Pixels: solidPixels(48, 48, 0x22)},
		{NominalSize: 48, Width: 64, Height: 64, XHot: 8, YHot: 8, Pixels: solidPixels(64, 64, 0x33)},
	}

	var buf bytes.Buffer
	if err := Write(&buf, File{Images: entries}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	h := &recordingHandler{}
	if err := Read(&buf, h); err != nil {
		t.Fatalf("Read: %v", err)
	}

	if len(h.images) != 3 {
		t.Fatalf("got %d images, want 3", len(h.images))
	}
	for i, want := range entries {
		got := h.images[i]
		if got.nominalSize != want.NominalSize || got.width != want.Width || got.height != want.Height ||
			got.xhot != want.XHot || got.yhot != want.YHot {
			t.Errorf("image %d: got %+v, want fields from %+v", i, got, want)
		}
		if !bytes.Equal(got.pixels, want.Pixels) {
			t.Errorf("image %d: pixel mismatch", i)
		}
	}
}

func TestRoundTripAnimatedContiguousBySize(t *testing.T) {
	var entries []ImageEntry
	sizes := []uint32{24, 36, 48}
	for _, size := range sizes {
		for frame := 0; frame < 9; frame++ {
			entries = append(entries, ImageEntry{
				NominalSize: size, Width: 32, Height: 32,
				Delay: 100, Pixels: solidPixels(32, 32, byte(frame)),
			})
		}
	}

	var buf bytes.Buffer
	if err := Write(&buf, File{Images: entries}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	h := &recordingHandler{}
	if err := Read(&buf, h); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(h.images) != 27 {
		t.Fatalf("got %d images, want 27", len(h.images))
	}
	for i := 0; i < len(h.images); i += 9 {
		size := h.images[i].nominalSize
		for j := 0; j < 9; j++ {
			if h.images[i+j].nominalSize != size {
				t.Fatalf("frame group starting at %d is not contiguous by size", i)
			}
			if h.images[i+j].delay != 100 {
				t.Errorf("frame %d: delay = %d, want 100", i+j, h.images[i+j].delay)
			}
		}
	}
}

func TestWriteRejectsBadDimensions(t *testing.T) {
	entries := []ImageEntry{{NominalSize: 24, Width: 10, Height: 10, XHot: 20, YHot: 4, Pixels: solidPixels(10, 10, 0)}}
	var buf bytes.Buffer
	if err := Write(&buf, File{Images: entries}); err == nil {
		t.Fatal("expected error for hotspot exceeding width")
	}
}

func TestReadRejectsBadMagic(t *testing.T) {
	h := &recordingHandler{}
	if err := Read(bytes.NewReader([]byte("nope")), h); err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestRoundTripComments(t *testing.T) {
	var buf bytes.Buffer
	f := File{Comments: []CommentEntry{{CommentType: 1, Text: "hello cursor"}}}
	if err := Write(&buf, f); err != nil {
		t.Fatalf("Write: %v", err)
	}
	h := &recordingHandler{}
	if err := Read(&buf, h); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(h.comments) != 1 || h.comments[0].Text != "hello cursor" {
		t.Fatalf("got comments %+v", h.comments)
	}
}
