package imaging

// Binary morphology with a k×k square structuring element.
//
// The element's anchor sits at k/2, so for k=3 it spans offsets -1..1 and for
// k=2 it spans -1..0. Erosion keeps p when every in-image p+b is foreground
// (pixels outside the image count as foreground, so shapes touching the border
// are not eaten). Dilation sets q when some q-b is foreground (pixels outside
// the image count as background). With this pairing opening never adds pixels
// and closing never removes them, for even and odd k alike.
//
// A square element is separable, so each operation runs as a horizontal pass
// followed by a vertical pass.

// Erode returns the erosion of m by a k×k square. k < 2 returns a copy.
func Erode(m *Mask, k int) *Mask {
	if k < 2 {
		return m.Clone()
	}
	lo, hi := elementSpan(k)
	return morphPass(morphPass(m, true, lo, hi, true), false, lo, hi, true)
}

// Dilate returns the dilation of m by a k×k square. k < 2 returns a copy.
func Dilate(m *Mask, k int) *Mask {
	if k < 2 {
		return m.Clone()
	}
	lo, hi := elementSpan(k)
	return morphPass(morphPass(m, true, -hi, -lo, false), false, -hi, -lo, false)
}

// Open erodes then dilates: removes features smaller than the element.
func Open(m *Mask, k int) *Mask {
	return Dilate(Erode(m, k), k)
}

// Close dilates then erodes: bridges gaps smaller than the element.
func Close(m *Mask, k int) *Mask {
	return Erode(Dilate(m, k), k)
}

func elementSpan(k int) (lo, hi int) {
	anchor := k / 2
	return -anchor, k - 1 - anchor
}

// morphPass applies a 1-D min (erode) or max (dilate) over offsets [from, to]
// along rows (horizontal) or columns. Out-of-image samples are skipped.
func morphPass(src *Mask, horizontal bool, from, to int, erode bool) *Mask {
	dst := NewMask(src.Width, src.Height)
	w, h := src.Width, src.Height
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := erode
			for d := from; d <= to; d++ {
				sx, sy := x, y
				if horizontal {
					sx += d
				} else {
					sy += d
				}
				if sx < 0 || sy < 0 || sx >= w || sy >= h {
					continue
				}
				s := src.Pix[sy*w+sx]
				if erode && !s {
					v = false
					break
				}
				if !erode && s {
					v = true
					break
				}
			}
			dst.Pix[y*w+x] = v
		}
	}
	return dst
}
