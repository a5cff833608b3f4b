// Package render implements the per-variant cursor rendering pipeline: it
// resolves target sizes, drives an external Rasterizer, applies the
// gamma-correct downscale when a rasterized canvas exceeds its nominal
// size, and streams frames to a pluggable CursorBuilder. A dedupe cache
// keyed by the full variant tuple and the cursor source ensures equivalent
// variants rasterize each cursor once.
package render

import (
	"fmt"
	"image"
	"sort"
	"strings"
)

// SizeScheme maps a nominal logical size to the canvas multiplier the
// rasterizer should render at before this package downscales to the
// nominal size.
type SizeScheme struct {
	NominalSizes       []int
	TargetCanvasFactor float64
}

// Variant is the immutable tuple identifying one render configuration. Two
// Variants are equivalent iff all six fields compare equal: ColorMap is
// compared by contents, not map identity.
type Variant struct {
	ThemeName   string
	SourceDir   string
	ColorMap    map[string]string
	SizeScheme  SizeScheme
	StrokeWidth float64
	DropShadow  bool
}

// key returns a canonical string uniquely identifying the variant's value,
// independent of ColorMap iteration order.
func (v Variant) key() string {
	keys := make([]string, 0, len(v.ColorMap))
	for k := range v.ColorMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\x00%s\x00", v.ThemeName, v.SourceDir)
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s=%s\x00", k, v.ColorMap[k])
	}
	sizes := append([]int(nil), v.SizeScheme.NominalSizes...)
	sort.Ints(sizes)
	fmt.Fprintf(&sb, "%v\x00%g\x00%g\x00%v", sizes, v.SizeScheme.TargetCanvasFactor, v.StrokeWidth, v.DropShadow)
	return sb.String()
}

// Rasterizer is the external SVG-to-bitmap boundary: render svgBytes at
// widthPx x heightPx under colorMap/strokeWidth/dropShadow, returning a
// premultiplied-RGBA bitmap and its hotspot in pixel coordinates of that
// bitmap.
type Rasterizer interface {
	Render(svgBytes []byte, widthPx, heightPx int, colorMap map[string]string, strokeWidth float64, dropShadow bool) (bitmap *image.RGBA, hotX, hotY int, err error)
}

// RasterizerFunc adapts a plain function to the Rasterizer interface.
type RasterizerFunc func(svgBytes []byte, widthPx, heightPx int, colorMap map[string]string, strokeWidth float64, dropShadow bool) (*image.RGBA, int, int, error)

func (f RasterizerFunc) Render(svgBytes []byte, widthPx, heightPx int, colorMap map[string]string, strokeWidth float64, dropShadow bool) (*image.RGBA, int, int, error) {
	return f(svgBytes, widthPx, heightPx, colorMap, strokeWidth, dropShadow)
}

// CursorBuilder is the pluggable per-format output sink.
type CursorBuilder interface {
	// AddFrame is idempotent per (nominalSize, frameNo): a later call with
	// the same key replaces the earlier one. frameNo == 0 means "the
	// single static frame" and is only valid when Animated() is false.
	AddFrame(frameNo int, bitmap *image.RGBA, hotX, hotY, nominalSize int, delayMillis int) error
	// Animated reports whether this builder requires a non-zero frameNo
	// on every AddFrame call.
	Animated() bool
	// Build flushes accumulated frames to the builder's target. Must be
	// called exactly once; a second call returns ErrBuilderFinalized.
	Build() error
}
