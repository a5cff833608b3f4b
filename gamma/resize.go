package gamma

import (
	"image"
	"image/color"
)

// sample is one pixel's components in linear light, alpha-premultiplied,
// with alpha itself kept linear (alpha carries no gamma curve).
type sample struct {
	r, g, b, a float32
}

// Downscale resizes src to dstW x dstH using a separable box filter applied
// in linear light, then re-encodes to gamma space. Mirrors the
// import-row/accumulate shape of a conventional box-filter rescaler, but
// works in float32 over the whole image at once: cursor bitmaps are small
// enough (typically <= 256x256) that fixed-point row streaming buys nothing
// but complexity here.
func Downscale(src *image.RGBA, dstW, dstH int) *image.RGBA {
	b := src.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if dstW <= 0 || dstH <= 0 {
		dstW, dstH = 1, 1
	}

	if dstW == srcW && dstH == srcH {
		return copyRGBA(src)
	}

	linear := toLinearSamples(src)

	horiz := resampleAxis(linear, srcW, srcH, dstW, true)
	full := resampleAxis(horiz, dstW, srcH, dstH, false)

	return fromLinearSamples(full, dstW, dstH)
}

// DownscaleHotspot resizes src like Downscale and maps the hotspot
// proportionally, rounding to the nearest destination pixel and clamping to
// bounds so the hotspot always lands inside the resized bitmap.
func DownscaleHotspot(src *image.RGBA, dstW, dstH, hotX, hotY int) (*image.RGBA, int, int) {
	b := src.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	dst := Downscale(src, dstW, dstH)

	newX := int(float64(hotX)*float64(dstW)/float64(srcW) + 0.5)
	newY := int(float64(hotY)*float64(dstH)/float64(srcH) + 0.5)
	if newX >= dstW {
		newX = dstW - 1
	}
	if newY >= dstH {
		newY = dstH - 1
	}
	if newX < 0 {
		newX = 0
	}
	if newY < 0 {
		newY = 0
	}
	return dst, newX, newY
}

// copyRGBA returns a bitwise copy of src, normalized to a 0,0-origin
// rectangle. Used when scale is 1:1 so an identity resize is not run
// through the lossy gamma<->linear round trip at all.
func copyRGBA(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		srcOff := src.PixOffset(b.Min.X, b.Min.Y+y)
		dstOff := dst.PixOffset(0, y)
		copy(dst.Pix[dstOff:dstOff+w*4], src.Pix[srcOff:srcOff+w*4])
	}
	return dst
}

func toLinearSamples(src *image.RGBA) []sample {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]sample, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := src.RGBAAt(b.Min.X+x, b.Min.Y+y)
			a := float32(c.A) / 255.0
			out[y*w+x] = sample{
				r: ToLinear(c.R) * a,
				g: ToLinear(c.G) * a,
				b: ToLinear(c.B) * a,
				a: a,
			}
		}
	}
	return out
}

func fromLinearSamples(s []sample, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := s[y*w+x]
			a := px.a
			var r, g, b float32
			if a > 0 {
				r, g, b = px.r/a, px.g/a, px.b/a
			}
			dst.SetRGBA(x, y, colorFromLinear(r, g, b, a))
		}
	}
	return dst
}

func colorFromLinear(r, g, b, a float32) color.RGBA {
	aOut := uint8(clamp(float64(a)*255.0+0.5, 0, 255))
	return color.RGBA{
		R: premulChannel(FromLinear(r), aOut),
		G: premulChannel(FromLinear(g), aOut),
		B: premulChannel(FromLinear(b), aOut),
		A: aOut,
	}
}

func premulChannel(straight, alpha uint8) uint8 {
	return uint8(uint32(straight) * uint32(alpha) / 255)
}

// resampleAxis applies a 1-D box filter along either the horizontal (x) or
// vertical (y) axis of in, an image lineLen samples wide and lines tall.
// The horizontal pass maps each row's lineLen samples to dstLen; the
// vertical pass maps each column's lines samples to dstLen.
func resampleAxis(in []sample, lineLen, lines, dstLen int, horizontal bool) []sample {
	var out []sample
	if horizontal {
		out = make([]sample, dstLen*lines)
	} else {
		out = make([]sample, lineLen*dstLen)
	}

	srcLen, count := lineLen, lines
	if !horizontal {
		srcLen, count = lines, lineLen
	}
	scale := float64(srcLen) / float64(dstLen)

	for line := 0; line < count; line++ {
		for d := 0; d < dstLen; d++ {
			lo := float64(d) * scale
			hi := lo + scale
			loIdx := int(lo)
			hiIdx := int(hi)
			if hiIdx >= srcLen {
				hiIdx = srcLen - 1
			}

			var acc sample
			var weight float64
			for i := loIdx; i <= hiIdx; i++ {
				w := sampleWeight(float64(i), float64(i+1), lo, hi)
				if w <= 0 {
					continue
				}
				var px sample
				if horizontal {
					px = in[line*lineLen+i]
				} else {
					px = in[i*lineLen+line]
				}
				acc.r += float32(w) * px.r
				acc.g += float32(w) * px.g
				acc.b += float32(w) * px.b
				acc.a += float32(w) * px.a
				weight += w
			}
			if weight > 0 {
				acc.r /= float32(weight)
				acc.g /= float32(weight)
				acc.b /= float32(weight)
				acc.a /= float32(weight)
			}

			if horizontal {
				out[line*dstLen+d] = acc
			} else {
				out[d*lineLen+line] = acc
			}
		}
	}
	return out
}

// sampleWeight returns the overlap length between [a,b) and [lo,hi).
func sampleWeight(a, b, lo, hi float64) float64 {
	start := a
	if lo > start {
		start = lo
	}
	end := b
	if hi < end {
		end = hi
	}
	if end <= start {
		return 0
	}
	return end - start
}
