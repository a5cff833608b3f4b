package dump

import (
	"bytes"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/bibata/cursorkit/mousecape"
)

func mousecapeProvider() Provider {
	return Provider{
		Name: "mousecape",
		Probe: func(r io.ReadSeeker, size int64) bool {
			head := make([]byte, 512)
			n, _ := io.ReadFull(r, head)
			return bytes.Contains(head[:n], []byte("<plist"))
		},
		Decode: func(r io.ReadSeeker, fileName, outDir string) ([]Metadata, error) {
			return decodeMousecape(r, outDir)
		},
	}
}

func decodeMousecape(r io.Reader, outDir string) ([]Metadata, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	theme, err := mousecape.Decode(r)
	if err != nil {
		return nil, err
	}

	metas := make([]Metadata, 0, len(theme.Cursors))
	for _, c := range theme.Cursors {
		if len(c.Representations) == 0 {
			continue
		}
		// The highest-density representation carries the most detail; use
		// it as the frame source.
		rep := c.Representations[len(c.Representations)-1]
		frames, err := mousecape.SplitFrames(rep, c.FrameCount)
		if err != nil {
			return nil, fmt.Errorf("mousecape cursor %q: %w", c.Name, err)
		}

		var fileFrames []FrameFile
		for i, f := range frames {
			name := fmt.Sprintf("%s_%d.png", c.Name, i+1)
			out, err := os.Create(filepath.Join(outDir, name))
			if err != nil {
				return nil, err
			}
			err = png.Encode(out, f)
			out.Close()
			if err != nil {
				return nil, err
			}
			fileFrames = append(fileFrames, FrameFile{FileName: name, FrameNo: i + 1})
		}

		metas = append(metas, Metadata{
			Format:      "mousecape",
			CursorName:  c.Name,
			HotSpotX:    c.HotSpotX,
			HotSpotY:    c.HotSpotY,
			FrameCount:  c.FrameCount,
			DelayMillis: c.FrameDuration * 1000.0,
			Frames:      fileFrames,
		})
	}
	return metas, nil
}
