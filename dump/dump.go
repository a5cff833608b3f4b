// Package dump implements the format-sniffing dispatcher that reverses a
// cursor file (XCursor, Windows CUR/ANI, or Mousecape .cape) into per-frame
// PNGs plus a metadata record.
package dump

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

var ErrUnsupportedFormat = errors.New("dump: no provider recognized this file")

// Metadata describes one dumped cursor's frames, written alongside the PNGs
// as "<name>.json".
type Metadata struct {
	Format      string       `json:"format"`
	CursorName  string       `json:"cursorName"`
	HotSpotX    float64      `json:"hotSpotX"`
	HotSpotY    float64      `json:"hotSpotY"`
	FrameCount  int          `json:"frameCount"`
	DelayMillis float64      `json:"delayMillis,omitempty"`
	Frames      []FrameFile  `json:"frames"`
}

// FrameFile names one extracted PNG and the nominal size / frame number it
// was decoded from.
type FrameFile struct {
	FileName    string `json:"fileName"`
	NominalSize int    `json:"nominalSize,omitempty"`
	FrameNo     int    `json:"frameNo,omitempty"`
}

// Provider is one registered format: Probe inspects a seekable reader and
// Decode extracts the format's content to outDir, returning one Metadata
// record per cursor found. The built-in probes do not restore the reader's
// position before returning; Dispatcher.Dump seeks back to the start before
// every probe and before Decode.
type Provider struct {
	Name   string
	Probe  func(r io.ReadSeeker, size int64) bool
	Decode func(r io.ReadSeeker, fileName, outDir string) ([]Metadata, error)
}

// Dispatcher holds the registry of known Providers, probed in registration
// order.
type Dispatcher struct {
	providers []Provider
}

// NewDispatcher constructs a Dispatcher with the built-in XCursor, Windows,
// and Mousecape providers registered.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{}
	d.Register(xcursorProvider())
	d.Register(windowsProvider())
	d.Register(mousecapeProvider())
	return d
}

// Register appends p to the dispatcher's provider list.
func (d *Dispatcher) Register(p Provider) {
	d.providers = append(d.providers, p)
}

// Dump probes path against every registered provider, resetting position to
// 0 before each probe and again before the winning provider's Decode, and
// returns the winner's metadata records.
func (d *Dispatcher) Dump(path, outDir string) ([]Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	for _, p := range d.providers {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		if !p.Probe(f, info.Size()) {
			continue
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		metas, err := p.Decode(f, path, outDir)
		if err != nil {
			return nil, fmt.Errorf("dump: %s: %w", p.Name, err)
		}
		return metas, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// WriteMetadata serializes metas as indented JSON to the file at path.
func WriteMetadata(path string, metas []Metadata) error {
	data, err := json.MarshalIndent(metas, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
