package imgproc

import (
	"math"
)

// Gray converts an RGB buffer to luma with the BT.601 weights.
func Gray(src *Buffer) []float64 {
	out := make([]float64, src.H*src.W)
	for i := range out {
		p := src.Pix[i*src.C : i*src.C+3]
		out[i] = math.Round(0.299*p[0] + 0.587*p[1] + 0.114*p[2])
	}
	return out
}

// Canny returns a 0/1 edge mask of a single channel image using 3x3 Sobel
// gradients with L1 magnitude, non-maximum suppression and hysteresis
// between low and high.
func Canny(gray []float64, h, w int, low, high float64) []float64 {
	at := func(y, x int) float64 {
		return gray[reflect101(y, h)*w+reflect101(x, w)]
	}

	gx := make([]float64, h*w)
	gy := make([]float64, h*w)
	mag := make([]float64, h*w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := (at(y-1, x+1) + 2*at(y, x+1) + at(y+1, x+1)) - (at(y-1, x-1) + 2*at(y, x-1) + at(y+1, x-1))
			dy := (at(y+1, x-1) + 2*at(y+1, x) + at(y+1, x+1)) - (at(y-1, x-1) + 2*at(y-1, x) + at(y-1, x+1))
			i := y*w + x
			gx[i], gy[i] = dx, dy
			mag[i] = math.Abs(dx) + math.Abs(dy)
		}
	}

	magAt := func(y, x int) float64 {
		if y < 0 || y >= h || x < 0 || x >= w {
			return 0
		}
		return mag[y*w+x]
	}

	const (
		tan22 = 0.4142135623730951
		tan67 = 2.414213562373095
	)

	// 0 none, 1 weak, 2 strong
	state := make([]uint8, h*w)
	var stack []int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			m := mag[i]
			if m <= low {
				continue
			}

			ax, ay := math.Abs(gx[i]), math.Abs(gy[i])
			var n1, n2 float64
			switch {
			case ay <= ax*tan22:
				n1, n2 = magAt(y, x-1), magAt(y, x+1)
			case ay >= ax*tan67:
				n1, n2 = magAt(y-1, x), magAt(y+1, x)
			case (gx[i] > 0) == (gy[i] > 0):
				n1, n2 = magAt(y-1, x-1), magAt(y+1, x+1)
			default:
				n1, n2 = magAt(y-1, x+1), magAt(y+1, x-1)
			}
			if m <= n1 || m < n2 {
				continue
			}

			if m > high {
				state[i] = 2
				stack = append(stack, i)
			} else {
				state[i] = 1
			}
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		y, x := i/w, i%w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				ny, nx := y+dy, x+dx
				if ny < 0 || ny >= h || nx < 0 || nx >= w {
					continue
				}
				j := ny*w + nx
				if state[j] == 1 {
					state[j] = 2
					stack = append(stack, j)
				}
			}
		}
	}

	edges := make([]float64, h*w)
	for i, s := range state {
		if s == 2 {
			edges[i] = 1
		}
	}
	return edges
}
