package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"golang.org/x/image/draw"

	"github.com/bibata/cursorkit/builder"
)

// frameFileRe matches "<nominalSize>.png" or "<nominalSize>_<frameNo>.png".
var frameFileRe = regexp.MustCompile(`^(\d+)(?:_(\d+))?\.png$`)

// hotspotEntry is one row of a cursor directory's "hotspots.json" sidecar,
// keyed by nominal size as a string (JSON object keys are always strings).
type hotspotEntry struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// runWincur builds a Windows CUR (static) or ANI (animated) cursor for each
// cursor subdirectory of bitmapsDir, or just one, if --all-cursors is not
// given and bitmapsDir itself holds the frame PNGs directly.
func runWincur(args []string) error {
	fs := flag.NewFlagSet("wincur", flag.ContinueOnError)
	allCursors := fs.Bool("all-cursors", false, "process every subdirectory of <bitmaps-dir> as its own cursor")
	out := fs.String("o", "", "output directory (default: <bitmaps-dir>)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return argErrorf("wincur: usage: bibata wincur [--all-cursors] <bitmaps-dir>")
	}
	bitmapsDir := fs.Arg(0)
	outDir := *out
	if outDir == "" {
		outDir = bitmapsDir
	}

	factory := &builder.Factory{Kind: builder.WindowsCursors, OutputDir: outDir}

	if !*allCursors {
		name := filepath.Base(bitmapsDir)
		return buildWindowsCursor(factory, bitmapsDir, name)
	}

	entries, err := os.ReadDir(bitmapsDir)
	if err != nil {
		return argErrorf("wincur: %v", err)
	}
	var failures int
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		if err := buildWindowsCursor(factory, filepath.Join(bitmapsDir, name), name); err != nil {
			log.Error().Err(err).Str("cursor", name).Msg("wincur: skipping cursor")
			failures++
		}
	}
	if failures > 0 {
		return fmt.Errorf("wincur: %d cursor(s) failed", failures)
	}
	return nil
}

func buildWindowsCursor(factory *builder.Factory, dir, name string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	type found struct {
		nominal int
		frameNo int
		path    string
	}
	var files []found
	maxFrame := 0
	for _, e := range entries {
		m := frameFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		nominal, _ := strconv.Atoi(m[1])
		frameNo := 0
		if m[2] != "" {
			frameNo, _ = strconv.Atoi(m[2])
		}
		if frameNo > maxFrame {
			maxFrame = frameNo
		}
		files = append(files, found{nominal, frameNo, filepath.Join(dir, e.Name())})
	}
	if len(files) == 0 {
		return fmt.Errorf("wincur: no frame PNGs found in %s", dir)
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].nominal != files[j].nominal {
			return files[i].nominal < files[j].nominal
		}
		return files[i].frameNo < files[j].frameNo
	})

	animated := maxFrame > 0
	hotspots := readHotspots(filepath.Join(dir, "hotspots.json"))

	cursor, err := factory.NewCursor(name, animated)
	if err != nil {
		return err
	}

	for _, f := range files {
		img, err := decodePNG(f.path)
		if err != nil {
			return err
		}
		hs := hotspots[strconv.Itoa(f.nominal)]
		if err := cursor.AddFrame(f.frameNo, img, hs.X, hs.Y, f.nominal, 100); err != nil {
			return err
		}
	}
	return cursor.Build()
}

func readHotspots(path string) map[string]hotspotEntry {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var m map[string]hotspotEntry
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}

func decodePNG(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, err
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst, nil
}
