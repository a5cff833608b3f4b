package render

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"sync"

	"github.com/bibata/cursorkit/gamma"
)

var (
	ErrBuilderFinalized = errors.New("render: build called twice, or addFrame after build")
	ErrFrameNoRequired  = errors.New("render: animated builder requires a non-zero frameNo")
)

// rasterCache memoizes rasterization results by variant key, cursor source
// and animation spec, so that equivalent variants rasterize each cursor
// once, regardless of insertion order or ColorMap construction order.
type rasterCache struct {
	mu    sync.Mutex
	store map[string]rasterSet
}

// rasterSet is the full set of rasterized frames for one variant, indexed
// by nominal size then frame number (0 for static cursors).
type rasterSet map[int]map[int]rasterizedFrame

type rasterizedFrame struct {
	bitmap  *image.RGBA
	hotX    int
	hotY    int
	delayMs int
}

func newRasterCache() *rasterCache {
	return &rasterCache{store: make(map[string]rasterSet)}
}

// Renderer drives SVG rasterization, downscaling, and CursorBuilder
// delivery for one theme.
type Renderer struct {
	Rasterizer Rasterizer
	cache      *rasterCache
}

// NewRenderer constructs a Renderer over a shared, per-theme dedupe cache.
// Callers running multiple variants of the same theme should reuse one
// Renderer (and therefore one cache) across all of them.
func NewRenderer(r Rasterizer) *Renderer {
	return &Renderer{Rasterizer: r, cache: newRasterCache()}
}

// AnimationSpec describes an animated cursor's frame count and per-frame
// delay; nil means a static (single-frame) cursor.
type AnimationSpec struct {
	FrameCount  int
	DelayMillis int
}

// Render resolves v's target sizes, rasterizes (once per distinct variant
// key and cursor source, across all frames), downscales as needed, and forwards every frame
// to builder in (nominalSize ascending, frameNo ascending) order,
// independent of call order.
func (r *Renderer) Render(v Variant, svgBytes []byte, anim *AnimationSpec, builder CursorBuilder) error {
	frames, err := r.rasterize(v, svgBytes, anim)
	if err != nil {
		return err
	}

	sizes := make([]int, 0, len(frames))
	for size := range frames {
		sizes = append(sizes, size)
	}
	sort.Ints(sizes)

	for _, size := range sizes {
		frameNos := make([]int, 0, len(frames[size]))
		for fn := range frames[size] {
			frameNos = append(frameNos, fn)
		}
		sort.Ints(frameNos)

		for _, fn := range frameNos {
			f := frames[size][fn]
			if builder.Animated() && fn == 0 {
				return ErrFrameNoRequired
			}
			if err := builder.AddFrame(fn, f.bitmap, f.hotX, f.hotY, size, f.delayMs); err != nil {
				return err
			}
		}
	}
	return nil
}

// rasterize returns the full frame set for v, rasterizing only on a cache
// miss.
func (r *Renderer) rasterize(v Variant, svgBytes []byte, anim *AnimationSpec) (rasterSet, error) {
	key := v.key() + "\x00" + string(svgBytes)
	if anim != nil {
		key += fmt.Sprintf("\x00%d\x00%d", anim.FrameCount, anim.DelayMillis)
	}

	r.cache.mu.Lock()
	if cached, ok := r.cache.store[key]; ok {
		r.cache.mu.Unlock()
		return cached, nil
	}
	r.cache.mu.Unlock()

	frameCount := 1
	delayMs := 0
	if anim != nil {
		frameCount = anim.FrameCount
		delayMs = anim.DelayMillis
	}

	set := make(rasterSet, len(v.SizeScheme.NominalSizes))
	for _, nominal := range v.SizeScheme.NominalSizes {
		canvas := int(float64(nominal) * v.SizeScheme.TargetCanvasFactor)
		if canvas < nominal {
			canvas = nominal
		}

		perFrame := make(map[int]rasterizedFrame, frameCount)
		for i := 0; i < frameCount; i++ {
			frameNo := 0
			if anim != nil {
				frameNo = i + 1
			}

			bitmap, hotX, hotY, err := r.Rasterizer.Render(svgBytes, canvas, canvas, v.ColorMap, v.StrokeWidth, v.DropShadow)
			if err != nil {
				return nil, fmt.Errorf("render: rasterizing frame %d at size %d: %w", frameNo, nominal, err)
			}

			b := bitmap.Bounds()
			if b.Dx() > nominal || b.Dy() > nominal {
				bitmap, hotX, hotY = gamma.DownscaleHotspot(bitmap, nominal, nominal, hotX, hotY)
			}

			perFrame[frameNo] = rasterizedFrame{bitmap: bitmap, hotX: hotX, hotY: hotY, delayMs: delayMs}
		}
		set[nominal] = perFrame
	}

	r.cache.mu.Lock()
	r.cache.store[key] = set
	r.cache.mu.Unlock()

	return set, nil
}
