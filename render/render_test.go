package render

import (
	"image"
	"image/color"
	"sync"
	"testing"
)

type countingRasterizer struct {
	mu    sync.Mutex
	calls int
}

func (c *countingRasterizer) Render(svgBytes []byte, widthPx, heightPx int, colorMap map[string]string, strokeWidth float64, dropShadow bool) (*image.RGBA, int, int, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	img := image.NewRGBA(image.Rect(0, 0, widthPx, heightPx))
	for y := 0; y < heightPx; y++ {
		for x := 0; x < widthPx; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 1, G: 2, B: 3, A: 255})
		}
	}
	return img, widthPx / 2, heightPx / 2, nil
}

type recordingBuilder struct {
	animated bool
	calls    []recordedCall
	built    bool
}

type recordedCall struct {
	frameNo, nominalSize, delayMs int
}

func (b *recordingBuilder) AddFrame(frameNo int, bitmap *image.RGBA, hotX, hotY, nominalSize int, delayMillis int) error {
	if b.built {
		return ErrBuilderFinalized
	}
	b.calls = append(b.calls, recordedCall{frameNo, nominalSize, delayMillis})
	return nil
}

func (b *recordingBuilder) Animated() bool { return b.animated }

func (b *recordingBuilder) Build() error {
	if b.built {
		return ErrBuilderFinalized
	}
	b.built = true
	return nil
}

func TestDedupeEquivalentVariantsRasterizeOnce(t *testing.T) {
	raster := &countingRasterizer{}
	renderer := NewRenderer(raster)

	scheme := SizeScheme{NominalSizes: []int{24, 32}, TargetCanvasFactor: 1}

	v1 := Variant{
		ThemeName:  "theme",
		SourceDir:  "dir",
		ColorMap:   map[string]string{"accent": "#fff", "base": "#000"},
		SizeScheme: scheme,
	}
	v2 := Variant{
		ThemeName:  "theme",
		SourceDir:  "dir",
		ColorMap:   map[string]string{"base": "#000", "accent": "#fff"}, // different construction order
		SizeScheme: scheme,
	}

	b1 := &recordingBuilder{}
	if err := renderer.Render(v1, []byte("x"), nil, b1); err != nil {
		t.Fatalf("Render v1: %v", err)
	}
	b2 := &recordingBuilder{}
	if err := renderer.Render(v2, []byte("x"), nil, b2); err != nil {
		t.Fatalf("Render v2: %v", err)
	}

	if raster.calls != len(scheme.NominalSizes) {
		t.Errorf("rasterizer called %d times, want %d (one per size, cached across equivalent variants)", raster.calls, len(scheme.NominalSizes))
	}
}

func TestRenderOrdersFramesBySizeThenFrameNo(t *testing.T) {
	raster := &countingRasterizer{}
	renderer := NewRenderer(raster)
	scheme := SizeScheme{NominalSizes: []int{48, 24, 32}, TargetCanvasFactor: 1}
	v := Variant{ThemeName: "t", SizeScheme: scheme}

	b := &recordingBuilder{animated: true}
	anim := &AnimationSpec{FrameCount: 3, DelayMillis: 50}
	if err := renderer.Render(v, []byte("x"), anim, b); err != nil {
		t.Fatalf("Render: %v", err)
	}

	lastSize, lastFrame := -1, 0
	for _, c := range b.calls {
		if c.nominalSize < lastSize {
			t.Fatalf("sizes not ascending: %+v", b.calls)
		}
		if c.nominalSize > lastSize {
			lastSize, lastFrame = c.nominalSize, 0
		}
		if c.frameNo <= lastFrame {
			t.Fatalf("frame numbers not ascending within size %d: %+v", lastSize, b.calls)
		}
		lastFrame = c.frameNo
	}
}

func TestRenderRejectsZeroFrameNoForAnimatedBuilder(t *testing.T) {
	raster := &countingRasterizer{}
	renderer := NewRenderer(raster)
	v := Variant{ThemeName: "t", SizeScheme: SizeScheme{NominalSizes: []int{24}, TargetCanvasFactor: 1}}

	b := &recordingBuilder{animated: true}
	if err := renderer.Render(v, []byte("x"), nil, b); err != ErrFrameNoRequired {
		t.Fatalf("got %v, want ErrFrameNoRequired", err)
	}
}
