package xcursor

import (
	"fmt"
	"io"
	"sort"

	"github.com/bibata/cursorkit/internal/binio"
)

// ImageEntry describes one IMAGE chunk to be written.
type ImageEntry struct {
	NominalSize uint32
	Version     uint32
	Width       uint32
	Height      uint32
	XHot        uint32
	YHot        uint32
	Delay       uint32
	Pixels      []byte // little-endian ARGB32 premultiplied, len == Width*Height*4
}

// CommentEntry describes one COMMENT chunk to be written.
type CommentEntry struct {
	CommentType uint32
	Version     uint32
	Text        string
}

// File is the in-memory representation of an XCursor file to be written.
// Images are grouped by nominal size in the TOC to match conventional X11
// consumer expectations: Write reorders Images so that frames sharing a
// NominalSize are contiguous, preserving the relative order of images
// within each size group and of size groups by first appearance.
type File struct {
	FileVersion uint32
	Images      []ImageEntry
	Comments    []CommentEntry
}

// groupedImages returns images reordered so that all images of a given
// nominal size are contiguous, stable within each group.
func groupedImages(images []ImageEntry) []ImageEntry {
	order := make([]uint32, 0, len(images))
	seen := make(map[uint32]bool)
	for _, img := range images {
		if !seen[img.NominalSize] {
			seen[img.NominalSize] = true
			order = append(order, img.NominalSize)
		}
	}
	rank := make(map[uint32]int, len(order))
	for i, size := range order {
		rank[size] = i
	}
	out := make([]ImageEntry, len(images))
	copy(out, images)
	sort.SliceStable(out, func(i, j int) bool {
		return rank[out[i].NominalSize] < rank[out[j].NominalSize]
	})
	return out
}

// Write serializes f to w: file header, then TOC, then chunks, with the
// TOC's position fields back-patched once each chunk's offset is known.
func Write(w io.Writer, f File) error {
	images := groupedImages(f.Images)
	tocLength := uint32(len(images) + len(f.Comments))

	bw := binio.NewWriter()

	magic := magicBytes()
	bw.WriteBytes(magic[:])
	bw.WriteU32LE(FileHeaderSize)
	version := f.FileVersion
	if version == 0 {
		version = FileVersion
	}
	bw.WriteU32LE(version)
	bw.WriteU32LE(tocLength)

	type pending struct {
		posPlaceholder binio.Placeholder
	}
	placeholders := make([]pending, tocLength)

	idx := 0
	for _, img := range images {
		bw.WriteU32LE(TypeImage)
		bw.WriteU32LE(img.NominalSize)
		placeholders[idx].posPlaceholder = bw.ReservePlaceholder(4)
		idx++
	}
	for _, c := range f.Comments {
		bw.WriteU32LE(TypeComment)
		bw.WriteU32LE(c.CommentType)
		placeholders[idx].posPlaceholder = bw.ReservePlaceholder(4)
		idx++
	}

	idx = 0
	for _, img := range images {
		if img.Width > MaxDimension || img.Height > MaxDimension {
			return ErrDimension
		}
		if img.XHot > img.Width || img.YHot > img.Height {
			return ErrDimension
		}
		if uint32(len(img.Pixels)) != img.Width*img.Height*4 {
			return fmt.Errorf("xcursor: image pixel length %d does not match %dx%d*4", len(img.Pixels), img.Width, img.Height)
		}

		bw.FillU32LE(placeholders[idx].posPlaceholder, uint32(bw.Len()))
		idx++

		bw.WriteU32LE(ChunkHeaderSize)
		bw.WriteU32LE(TypeImage)
		bw.WriteU32LE(img.NominalSize)
		bw.WriteU32LE(img.Version)
		bw.WriteU32LE(img.Width)
		bw.WriteU32LE(img.Height)
		bw.WriteU32LE(img.XHot)
		bw.WriteU32LE(img.YHot)
		bw.WriteU32LE(img.Delay)
		bw.WriteBytes(img.Pixels)
	}
	for _, c := range f.Comments {
		bw.FillU32LE(placeholders[idx].posPlaceholder, uint32(bw.Len()))
		idx++

		text := []byte(c.Text)
		bw.WriteU32LE(ChunkHeaderSize)
		bw.WriteU32LE(TypeComment)
		bw.WriteU32LE(c.CommentType)
		bw.WriteU32LE(c.Version)
		bw.WriteU32LE(uint32(len(text)))
		bw.WriteBytes(text)
	}

	_, err := w.Write(bw.Bytes())
	return err
}
