// Package builder implements the four output CursorBuilder kinds (spec
// §4.F "Factory"): individual PNGs, Windows CUR/ANI, X11 XCursor, and a
// Mousecape theme file. Each builder accumulates frames keyed by
// (nominalSize, frameNo) with last-write-wins semantics and flushes
// exactly once on Build().
package builder

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/bibata/cursorkit/render"
)

var (
	ErrBuilderFinalized = render.ErrBuilderFinalized
	ErrNoFrames         = errors.New("builder: no frames were added")
)

type frameKey struct {
	nominalSize int
	frameNo     int
}

type frame struct {
	bitmap  *image.RGBA
	hotX    int
	hotY    int
	delayMs int
}

// Kind selects which output format Factory constructs.
type Kind int

const (
	Bitmaps Kind = iota
	WindowsCursors
	LinuxCursors
	MousecapeTheme
)

// Factory constructs the CursorBuilder for one output cursor within a
// theme. Formats that produce one file per theme (Mousecape) implement
// ThemeFinalizer; callers must call Finalize once all cursors in the theme
// have been built.
type Factory struct {
	Kind       Kind
	OutputDir  string
	ThemeName  string
	Identifier string
	Author     string

	theme interface{} // lazily holds *mousecapeTheme for Kind == MousecapeTheme
}

// ThemeFinalizer is implemented by builder kinds that accumulate state
// across an entire theme and must flush it after every cursor's Build call.
type ThemeFinalizer interface {
	Finalize() error
}

// NewCursor constructs the CursorBuilder for one cursor named name, animated
// according to the animated flag.
func (f *Factory) NewCursor(name string, animated bool) (render.CursorBuilder, error) {
	switch f.Kind {
	case Bitmaps:
		return newBitmapBuilder(filepath.Join(f.OutputDir, name), animated), nil
	case WindowsCursors:
		return newWindowsBuilder(filepath.Join(f.OutputDir, name), animated), nil
	case LinuxCursors:
		return newXCursorBuilder(filepath.Join(f.OutputDir, name), animated), nil
	case MousecapeTheme:
		return f.mousecapeCursor(name, animated)
	}
	return nil, fmt.Errorf("builder: unknown kind %d", f.Kind)
}

func atomicWriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
