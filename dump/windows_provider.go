package dump

import (
	"bytes"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bibata/cursorkit/wincur"
)

func windowsProvider() Provider {
	return Provider{
		Name: "wincur",
		Probe: func(r io.ReadSeeker, size int64) bool {
			head := make([]byte, 16)
			n, _ := io.ReadFull(r, head)
			head = head[:n]
			if len(head) >= 12 && string(head[0:4]) == "RIFF" && string(head[8:12]) == "ACON" {
				return true
			}
			if len(head) >= 4 && head[0] == 0 && head[1] == 0 && head[2] == 2 && head[3] == 0 {
				return true
			}
			return false
		},
		Decode: func(r io.ReadSeeker, fileName, outDir string) ([]Metadata, error) {
			return decodeWindows(r, fileName, outDir)
		},
	}
}

func decodeWindows(r io.ReadSeeker, fileName, outDir string) ([]Metadata, error) {
	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	if bytes.HasPrefix(data, []byte("RIFF")) {
		anim, err := wincur.DecodeANI(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		var frames []FrameFile
		for i, resSet := range anim.Frames {
			img := resSet[0]
			name := fmt.Sprintf("%s_%d.png", base, i+1)
			if err := writeImagePNG(filepath.Join(outDir, name), img); err != nil {
				return nil, err
			}
			frames = append(frames, FrameFile{FileName: name, FrameNo: i + 1})
		}
		delayMs := float64(anim.JifRate) * 1000.0 / 60.0
		if len(anim.Rate) > 0 {
			delayMs = float64(anim.Rate[0]) * 1000.0 / 60.0
		}
		return []Metadata{{
			Format:      "wincur-ani",
			CursorName:  base,
			FrameCount:  len(anim.Frames),
			DelayMillis: delayMs,
			Frames:      frames,
		}}, nil
	}

	images, err := wincur.DecodeCUR(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	var frames []FrameFile
	var hotX, hotY int
	for i, img := range images {
		name := fmt.Sprintf("%s_%d.png", base, i+1)
		if err := writeImagePNG(filepath.Join(outDir, name), img); err != nil {
			return nil, err
		}
		frames = append(frames, FrameFile{FileName: name, FrameNo: i + 1})
		hotX, hotY = img.HotspotX, img.HotspotY
	}
	return []Metadata{{
		Format:     "wincur-cur",
		CursorName: base,
		HotSpotX:   float64(hotX),
		HotSpotY:   float64(hotY),
		FrameCount: 1,
		Frames:     frames,
	}}, nil
}

func writeImagePNG(path string, img wincur.Image) error {
	if img.PNGData != nil {
		return os.WriteFile(path, img.PNGData, 0o644)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img.RGBA)
}
