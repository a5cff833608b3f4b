package builder

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"

	"github.com/bibata/cursorkit/mousecape"
	"github.com/bibata/cursorkit/render"
)

// mousecapeTheme accumulates every cursor built against it, then writes one
// .cape file on Finalize.
type mousecapeTheme struct {
	identifier string
	name       string
	author     string
	path       string

	cursors  []mousecape.Cursor
	anyHiDPI bool
}

func (f *Factory) mousecapeCursor(name string, animated bool) (render.CursorBuilder, error) {
	theme, ok := f.theme.(*mousecapeTheme)
	if !ok {
		theme = &mousecapeTheme{
			identifier: f.Identifier,
			name:       f.ThemeName,
			author:     f.Author,
			path:       filepath.Join(f.OutputDir, f.ThemeName+".cape"),
		}
		f.theme = theme
	}
	return &mousecapeCursorBuilder{theme: theme, name: name, animated: animated, frames: make(map[frameKey]frame)}, nil
}

type mousecapeCursorBuilder struct {
	theme    *mousecapeTheme
	name     string
	animated bool
	frames   map[frameKey]frame
	built    bool
}

func (b *mousecapeCursorBuilder) Animated() bool { return b.animated }

func (b *mousecapeCursorBuilder) AddFrame(frameNo int, bitmap *image.RGBA, hotX, hotY, nominalSize int, delayMillis int) error {
	if b.built {
		return ErrBuilderFinalized
	}
	if b.animated && frameNo == 0 {
		return fmt.Errorf("builder: %w", render.ErrFrameNoRequired)
	}
	b.frames[frameKey{nominalSize, frameNo}] = frame{bitmap: bitmap, hotX: hotX, hotY: hotY, delayMs: delayMillis}
	return nil
}

// Build assembles this cursor's Representations (one per nominal size,
// frames vertically joined for animated cursors) and appends it to the
// theme; the .cape file itself is written only when Finalize runs.
func (b *mousecapeCursorBuilder) Build() error {
	if b.built {
		return ErrBuilderFinalized
	}
	b.built = true
	if len(b.frames) == 0 {
		return ErrNoFrames
	}

	sizes := b.sortedSizes()
	frameNos := b.sortedFrameNos()
	frameCount := len(frameNos)
	if frameCount == 0 {
		frameCount = 1
	}

	reps := make([][]byte, 0, len(sizes))
	var pointsWide, pointsHigh, hotX, hotY float64
	var delayMs int
	baseSize := 0

	for i, size := range sizes {
		if i == 0 {
			baseSize = size
		}
		var frames []*image.RGBA
		if b.animated {
			for _, fn := range frameNos {
				f := b.frames[frameKey{size, fn}]
				frames = append(frames, f.bitmap)
				delayMs = f.delayMs
				hotX, hotY = float64(f.hotX), float64(f.hotY)
			}
		} else {
			f := b.frames[frameKey{size, 0}]
			frames = append(frames, f.bitmap)
			hotX, hotY = float64(f.hotX), float64(f.hotY)
		}
		rep, err := mousecape.JoinFrames(frames)
		if err != nil {
			return err
		}
		reps = append(reps, rep)
		if size == baseSize {
			b0 := frames[0].Bounds()
			pointsWide, pointsHigh = float64(b0.Dx()), float64(b0.Dy())
		}
	}

	hiDPI := false
	if baseSize > 0 {
		largest := sizes[len(sizes)-1]
		if largest > baseSize {
			hiDPI = true
		}
	}

	cursor := mousecape.Cursor{
		Name:            b.name,
		PointsWide:      pointsWide,
		PointsHigh:      pointsHigh,
		HotSpotX:        hotX,
		HotSpotY:        hotY,
		FrameCount:      frameCount,
		FrameDuration:   float64(delayMs) / 1000.0,
		Representations: reps,
	}

	b.theme.cursors = append(b.theme.cursors, cursor)
	if hiDPI {
		b.theme.anyHiDPI = true
	}
	return nil
}

func (b *mousecapeCursorBuilder) sortedSizes() []int {
	seen := make(map[int]bool)
	var sizes []int
	for k := range b.frames {
		if !seen[k.nominalSize] {
			seen[k.nominalSize] = true
			sizes = append(sizes, k.nominalSize)
		}
	}
	sort.Ints(sizes)
	return sizes
}

func (b *mousecapeCursorBuilder) sortedFrameNos() []int {
	seen := make(map[int]bool)
	var nos []int
	for k := range b.frames {
		if !seen[k.frameNo] {
			seen[k.frameNo] = true
			nos = append(nos, k.frameNo)
		}
	}
	sort.Ints(nos)
	return nos
}

// Finalize writes the accumulated theme to one .cape file. Must be called
// once, after every cursor built against this Factory has itself called
// Build.
func (f *Factory) Finalize() error {
	theme, ok := f.theme.(*mousecapeTheme)
	if !ok {
		return nil
	}

	t := mousecape.Theme{
		Author:     theme.author,
		HiDPI:      theme.anyHiDPI,
		Identifier: theme.identifier,
		Name:       theme.name,
		Version:    1.0,
		Cursors:    theme.cursors,
	}

	var buf bytes.Buffer
	if err := mousecape.Encode(&buf, t); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(theme.path), 0o755); err != nil {
		return err
	}
	return atomicWriteFile(theme.path, buf.Bytes())
}
