package builder

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sort"

	"github.com/bibata/cursorkit/render"
	"github.com/bibata/cursorkit/wincur"
)

// windowsBuilder accumulates frames and writes a single CUR (static) or ANI
// (animated) file to path + ".cur"/".ani".
type windowsBuilder struct {
	path     string
	animated bool
	frames   map[frameKey]frame
	built    bool

	// PreferPNGThreshold: a frame whose bitmap is at least this many pixels
	// wide or high is stored as verbatim PNG rather than a synthesized
	// DIB+mask, matching real cursor themes that prefer PNG at larger
	// resolutions for file-size reasons and fall back to DIB below it for
	// legacy consumer compatibility.
	PreferPNGThreshold int
}

func newWindowsBuilder(path string, animated bool) *windowsBuilder {
	return &windowsBuilder{
		path:               path,
		animated:           animated,
		frames:             make(map[frameKey]frame),
		PreferPNGThreshold: 48,
	}
}

func (b *windowsBuilder) Animated() bool { return b.animated }

func (b *windowsBuilder) AddFrame(frameNo int, bitmap *image.RGBA, hotX, hotY, nominalSize int, delayMillis int) error {
	if b.built {
		return ErrBuilderFinalized
	}
	if b.animated && frameNo == 0 {
		return fmt.Errorf("builder: %w", render.ErrFrameNoRequired)
	}
	b.frames[frameKey{nominalSize, frameNo}] = frame{bitmap: bitmap, hotX: hotX, hotY: hotY, delayMs: delayMillis}
	return nil
}

func (b *windowsBuilder) Build() error {
	if b.built {
		return ErrBuilderFinalized
	}
	b.built = true
	if len(b.frames) == 0 {
		return ErrNoFrames
	}

	if b.animated {
		return b.buildANI()
	}
	return b.buildCUR()
}

func (b *windowsBuilder) toWriteImage(f frame) wincur.WriteImage {
	wi := wincur.WriteImage{HotspotX: f.hotX, HotspotY: f.hotY}
	bounds := f.bitmap.Bounds()
	if bounds.Dx() >= b.PreferPNGThreshold || bounds.Dy() >= b.PreferPNGThreshold {
		var buf bytes.Buffer
		if err := png.Encode(&buf, f.bitmap); err == nil {
			wi.PNGData = buf.Bytes()
			return wi
		}
	}
	wi.RGBA = f.bitmap
	return wi
}

func (b *windowsBuilder) buildCUR() error {
	sizes := b.sortedSizes()
	images := make([]wincur.WriteImage, len(sizes))
	for i, size := range sizes {
		images[i] = b.toWriteImage(b.frames[frameKey{size, 0}])
	}

	var buf bytes.Buffer
	if err := wincur.EncodeCUR(&buf, images); err != nil {
		return err
	}
	return atomicWriteFile(b.path+".cur", buf.Bytes())
}

func (b *windowsBuilder) buildANI() error {
	frameNos := b.sortedFrameNos()
	sizes := b.sortedSizes()

	frames := make([][]wincur.WriteImage, len(frameNos))
	delays := make([]uint32, len(frameNos))
	for i, fn := range frameNos {
		images := make([]wincur.WriteImage, len(sizes))
		for j, size := range sizes {
			f := b.frames[frameKey{size, fn}]
			images[j] = b.toWriteImage(f)
			if j == 0 {
				delays[i] = uint32(f.delayMs)
			}
		}
		frames[i] = images
	}

	var buf bytes.Buffer
	if err := wincur.EncodeANI(&buf, frames, delays); err != nil {
		return err
	}
	return atomicWriteFile(b.path+".ani", buf.Bytes())
}

func (b *windowsBuilder) sortedSizes() []int {
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

func (b *windowsBuilder) sortedFrameNos() []int {
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
