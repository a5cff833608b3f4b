package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/bibata/cursorkit/builder"
	"github.com/bibata/cursorkit/gamma"
	"github.com/bibata/cursorkit/render"
)

// canvasRasterizer implements render.Rasterizer over a directory of
// pre-rendered canvas PNGs, one per cursor named "<cursor>.png", rather
// than an embedded SVG engine, which stays an external collaborator. It
// downscales its source canvas to the requested size via the package's
// own gamma-correct resizer when the two don't already match.
type canvasRasterizer struct {
	dir      string
	hotspots map[string]hotspotEntry
}

func newCanvasRasterizer(dir string) *canvasRasterizer {
	return &canvasRasterizer{dir: dir, hotspots: readHotspots(filepath.Join(dir, "hotspots.json"))}
}

func (c *canvasRasterizer) Render(svgBytes []byte, widthPx, heightPx int, colorMap map[string]string, strokeWidth float64, dropShadow bool) (*image.RGBA, int, int, error) {
	name := string(svgBytes) // caller passes the cursor name as the "svg source" handle
	img, err := decodePNG(filepath.Join(c.dir, name+".png"))
	if err != nil {
		return nil, 0, 0, err
	}

	hs := c.hotspots[name]
	b := img.Bounds()
	if b.Dx() == widthPx && b.Dy() == heightPx {
		return img, hs.X, hs.Y, nil
	}
	scaled, hotX, hotY := gamma.DownscaleHotspot(img, widthPx, heightPx, hs.X, hs.Y)
	return scaled, hotX, hotY, nil
}

// runRender rasterizes every "<cursor>.png" canvas under basePath and
// builds cursors for the requested output kinds.
func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	standardSizes := fs.Bool("standard-sizes", false, "use the standard {24,32,48} nominal size scheme instead of {32,48,64}")
	windowsCursors := fs.Bool("windows-cursors", false, "also build Windows CUR/ANI output alongside XCursor")
	outDir := fs.String("o", "", "output directory (default: <base-path>/out)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	basePath := "."
	if fs.NArg() >= 1 {
		basePath = fs.Arg(0)
		if err := fs.Parse(fs.Args()[1:]); err != nil {
			return err
		}
	}
	out := *outDir
	if out == "" {
		out = filepath.Join(basePath, "out")
	}

	sizes := []int{32, 48, 64}
	if *standardSizes {
		sizes = []int{24, 32, 48}
	}
	scheme := render.SizeScheme{NominalSizes: sizes, TargetCanvasFactor: 1.0}

	rasterizer := newCanvasRasterizer(basePath)
	renderer := render.NewRenderer(rasterizer)

	entries, err := os.ReadDir(basePath)
	if err != nil {
		return argErrorf("render: %v", err)
	}

	kinds := []builder.Kind{builder.LinuxCursors}
	if *windowsCursors {
		kinds = append(kinds, builder.WindowsCursors)
	}

	var failures int
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".png") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".png")
		if name == "hotspots" {
			continue
		}

		v := render.Variant{ThemeName: name, SourceDir: basePath, SizeScheme: scheme}
		for _, kind := range kinds {
			factory := &builder.Factory{Kind: kind, OutputDir: out, ThemeName: name}
			cb, err := factory.NewCursor(name, false)
			if err != nil {
				log.Error().Err(err).Str("cursor", name).Msg("render: building cursor")
				failures++
				continue
			}
			if err := renderer.Render(v, []byte(name), nil, cb); err != nil {
				log.Error().Err(err).Str("cursor", name).Msg("render: rendering cursor")
				failures++
				continue
			}
			if err := cb.Build(); err != nil {
				log.Error().Err(err).Str("cursor", name).Msg("render: writing cursor")
				failures++
			}
		}
	}

	if failures > 0 {
		return fmt.Errorf("render: %d cursor(s) failed", failures)
	}
	return nil
}
