package builder

import (
	"bytes"
	"fmt"
	"image"
	"sort"

	"github.com/bibata/cursorkit/internal/pool"
	"github.com/bibata/cursorkit/render"
	"github.com/bibata/cursorkit/xcursor"
)

// xcursorBuilder accumulates frames and writes a single XCursor file to
// path (no extension convention enforced here; callers name the theme's
// per-cursor file, typically without a suffix, matching X11 convention).
type xcursorBuilder struct {
	path     string
	animated bool
	frames   map[frameKey]frame
	built    bool
}

func newXCursorBuilder(path string, animated bool) *xcursorBuilder {
	return &xcursorBuilder{path: path, animated: animated, frames: make(map[frameKey]frame)}
}

func (b *xcursorBuilder) Animated() bool { return b.animated }

func (b *xcursorBuilder) AddFrame(frameNo int, bitmap *image.RGBA, hotX, hotY, nominalSize int, delayMillis int) error {
	if b.built {
		return ErrBuilderFinalized
	}
	if b.animated && frameNo == 0 {
		return fmt.Errorf("builder: %w", render.ErrFrameNoRequired)
	}
	b.frames[frameKey{nominalSize, frameNo}] = frame{bitmap: bitmap, hotX: hotX, hotY: hotY, delayMs: delayMillis}
	return nil
}

func (b *xcursorBuilder) Build() error {
	if b.built {
		return ErrBuilderFinalized
	}
	b.built = true
	if len(b.frames) == 0 {
		return ErrNoFrames
	}

	sizes := b.sortedSizes()
	frameNos := b.sortedFrameNos()

	var images []xcursor.ImageEntry
	for _, size := range sizes {
		for _, fn := range frameNos {
			f, ok := b.frames[frameKey{size, fn}]
			if !ok {
				continue
			}
			bounds := f.bitmap.Bounds()
			w, h := bounds.Dx(), bounds.Dy()
			pixels := pool.Get(w * h * 4)
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					c := f.bitmap.RGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
					off := (y*w + x) * 4
					// XCursor pixels are little-endian ARGB32 premultiplied.
					pixels[off+0] = c.B
					pixels[off+1] = c.G
					pixels[off+2] = c.R
					pixels[off+3] = c.A
				}
			}
			images = append(images, xcursor.ImageEntry{
				NominalSize: uint32(size),
				Width:       uint32(w),
				Height:      uint32(h),
				XHot:        uint32(f.hotX),
				YHot:        uint32(f.hotY),
				Delay:       uint32(f.delayMs),
				Pixels:      pixels,
			})
		}
	}

	var buf bytes.Buffer
	err := xcursor.Write(&buf, xcursor.File{Images: images})
	for _, img := range images {
		pool.Put(img.Pixels)
	}
	if err != nil {
		return err
	}
	return atomicWriteFile(b.path, buf.Bytes())
}

func (b *xcursorBuilder) sortedSizes() []int {
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

func (b *xcursorBuilder) sortedFrameNos() []int {
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
