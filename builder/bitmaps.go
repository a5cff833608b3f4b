package builder

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/bibata/cursorkit/render"
)

// bitmapBuilder writes one PNG file per (nominalSize, frameNo) frame under
// dir, named "<nominalSize>.png" (static) or "<nominalSize>_<frameNo>.png"
// (animated).
type bitmapBuilder struct {
	dir      string
	animated bool
	frames   map[frameKey]frame
	built    bool
}

func newBitmapBuilder(dir string, animated bool) *bitmapBuilder {
	return &bitmapBuilder{dir: dir, animated: animated, frames: make(map[frameKey]frame)}
}

func (b *bitmapBuilder) Animated() bool { return b.animated }

func (b *bitmapBuilder) AddFrame(frameNo int, bitmap *image.RGBA, hotX, hotY, nominalSize int, delayMillis int) error {
	if b.built {
		return ErrBuilderFinalized
	}
	if b.animated && frameNo == 0 {
		return fmt.Errorf("builder: %w", render.ErrFrameNoRequired)
	}
	b.frames[frameKey{nominalSize, frameNo}] = frame{bitmap: bitmap, hotX: hotX, hotY: hotY, delayMs: delayMillis}
	return nil
}

func (b *bitmapBuilder) Build() error {
	if b.built {
		return ErrBuilderFinalized
	}
	b.built = true
	if len(b.frames) == 0 {
		return ErrNoFrames
	}

	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return err
	}
	for key, f := range b.frames {
		name := fmt.Sprintf("%d.png", key.nominalSize)
		if b.animated {
			name = fmt.Sprintf("%d_%d.png", key.nominalSize, key.frameNo)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, f.bitmap); err != nil {
			return err
		}
		if err := atomicWriteFile(filepath.Join(b.dir, name), buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}
