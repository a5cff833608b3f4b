package dump

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bibata/cursorkit/xcursor"
)

func xcursorProvider() Provider {
	return Provider{
		Name: "xcursor",
		Probe: func(r io.ReadSeeker, size int64) bool {
			var magic [4]byte
			n, _ := io.ReadFull(r, magic[:])
			if n != 4 {
				return false
			}
			return string(magic[:]) == "Xcur"
		},
		Decode: func(r io.ReadSeeker, fileName, outDir string) ([]Metadata, error) {
			return decodeXCursor(r, fileName, outDir)
		},
	}
}

type xcursorHandler struct {
	outDir   string
	baseName string
	frames   []FrameFile
	count    int
}

func (h *xcursorHandler) Header(fileVersion, tocLength uint32) error { return nil }

func (h *xcursorHandler) Image(nominalSize, chunkVersion, width, height, xhot, yhot, delay uint32, pixels io.Reader) error {
	data, err := io.ReadAll(pixels)
	if err != nil {
		return err
	}
	img := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	for y := 0; y < int(height); y++ {
		for x := 0; x < int(width); x++ {
			off := (y*int(width) + x) * 4
			// XCursor pixels are little-endian ARGB32 premultiplied:
			// byte order on disk is B, G, R, A.
			img.SetRGBA(x, y, color.RGBA{R: data[off+2], G: data[off+1], B: data[off], A: data[off+3]})
		}
	}

	h.count++
	name := fmt.Sprintf("%s_%d_%d.png", h.baseName, nominalSize, h.count)
	if err := writeFramePNG(filepath.Join(h.outDir, name), img); err != nil {
		return err
	}
	h.frames = append(h.frames, FrameFile{FileName: name, NominalSize: int(nominalSize), FrameNo: h.count})
	return nil
}

func (h *xcursorHandler) Comment(commentType, chunkVersion uint32, text string) error { return nil }

func decodeXCursor(r io.ReadSeeker, fileName, outDir string) ([]Metadata, error) {
	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	h := &xcursorHandler{outDir: outDir, baseName: base}
	if err := xcursor.Read(r, h); err != nil {
		return nil, err
	}

	return []Metadata{{
		Format:     "xcursor",
		CursorName: base,
		FrameCount: h.count,
		Frames:     h.frames,
	}}, nil
}

func writeFramePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
