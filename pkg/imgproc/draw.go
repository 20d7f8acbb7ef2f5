package imgproc

import (
	"math"
)

// LinePixels lists the pixel indices (y*w+x) covered by a segment of the
// given thickness. A pixel is covered when its center lies within
// thickness/2 of the segment, which keeps 1px lines 8-connected.
func LinePixels(h, w, x1, y1, x2, y2, thickness int) []int {
	if thickness < 1 {
		thickness = 1
	}
	r := float64(thickness) / 2
	pad := int(math.Ceil(r))

	minX, maxX := clampInt(min(x1, x2)-pad, 0, w-1), clampInt(max(x1, x2)+pad, 0, w-1)
	minY, maxY := clampInt(min(y1, y2)-pad, 0, h-1), clampInt(max(y1, y2)+pad, 0, h-1)

	ax, ay := float64(x1), float64(y1)
	dx, dy := float64(x2-x1), float64(y2-y1)
	ll := dx*dx + dy*dy

	var out []int
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float64(x), float64(y)
			t := 0.0
			if ll > 0 {
				t = ((px-ax)*dx + (py-ay)*dy) / ll
				t = math.Max(0, math.Min(1, t))
			}
			cx, cy := ax+t*dx-px, ay+t*dy-py
			if cx*cx+cy*cy <= r*r {
				out = append(out, y*w+x)
			}
		}
	}
	return out
}

// DiscPixels lists the pixel indices of a filled circle of radius r.
func DiscPixels(h, w, cx, cy, r int) []int {
	var out []int
	for y := clampInt(cy-r, 0, h-1); y <= clampInt(cy+r, 0, h-1); y++ {
		for x := clampInt(cx-r, 0, w-1); x <= clampInt(cx+r, 0, w-1); x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				out = append(out, y*w+x)
			}
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
