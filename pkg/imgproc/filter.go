package imgproc

import (
	"math"
)

// Buffer is an interleaved HxWxC float64 image.
type Buffer struct {
	H, W, C int
	Pix     []float64
}

func NewBuffer(h, w, c int) *Buffer {
	return &Buffer{H: h, W: w, C: c, Pix: make([]float64, h*w*c)}
}

func (b *Buffer) Index(y, x, ch int) int {
	return (y*b.W+x)*b.C + ch
}

// Kernel is a dense 2-D correlation kernel anchored at its center.
type Kernel struct {
	W, H int
	Data []float64
}

func (k Kernel) At(y, x int) float64 {
	return k.Data[y*k.W+x]
}

// reflect101 maps an out of range index the way OpenCV's default border
// does: ...dcb|abcd|cba...
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

// Correlate applies k to every channel of src independently.
func Correlate(src *Buffer, k Kernel) *Buffer {
	dst := NewBuffer(src.H, src.W, src.C)
	ay, ax := k.H/2, k.W/2

	for y := 0; y < src.H; y++ {
		for x := 0; x < src.W; x++ {
			for ch := 0; ch < src.C; ch++ {
				var sum float64
				for ky := 0; ky < k.H; ky++ {
					sy := reflect101(y+ky-ay, src.H)
					for kx := 0; kx < k.W; kx++ {
						wt := k.Data[ky*k.W+kx]
						if wt == 0 {
							continue
						}
						sx := reflect101(x+kx-ax, src.W)
						sum += wt * src.Pix[(sy*src.W+sx)*src.C+ch]
					}
				}
				dst.Pix[(y*src.W+x)*src.C+ch] = sum
			}
		}
	}
	return dst
}

// SeparableCorrelate runs kx along rows then ky along columns.
func SeparableCorrelate(src *Buffer, kx, ky []float64) *Buffer {
	tmp := NewBuffer(src.H, src.W, src.C)
	ax := len(kx) / 2
	for y := 0; y < src.H; y++ {
		for x := 0; x < src.W; x++ {
			for ch := 0; ch < src.C; ch++ {
				var sum float64
				for i, wt := range kx {
					sx := reflect101(x+i-ax, src.W)
					sum += wt * src.Pix[(y*src.W+sx)*src.C+ch]
				}
				tmp.Pix[(y*src.W+x)*src.C+ch] = sum
			}
		}
	}

	dst := NewBuffer(src.H, src.W, src.C)
	ay := len(ky) / 2
	for y := 0; y < src.H; y++ {
		for x := 0; x < src.W; x++ {
			for ch := 0; ch < src.C; ch++ {
				var sum float64
				for i, wt := range ky {
					sy := reflect101(y+i-ay, src.H)
					sum += wt * tmp.Pix[(sy*src.W+x)*src.C+ch]
				}
				dst.Pix[(y*src.W+x)*src.C+ch] = sum
			}
		}
	}
	return dst
}

// GaussianKernel returns a normalized 1-D kernel of the given odd size. A
// non-positive sigma is derived from the size like OpenCV does.
func GaussianKernel(size int, sigma float64) []float64 {
	if sigma <= 0 {
		sigma = 0.3*(float64(size-1)*0.5-1) + 0.8
	}
	k := make([]float64, size)
	c := float64(size-1) / 2
	var sum float64
	for i := range k {
		d := float64(i) - c
		k[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

func BoxKernel(size int) []float64 {
	k := make([]float64, size)
	for i := range k {
		k[i] = 1 / float64(size)
	}
	return k
}

// GaussianBlur is a convenience wrapper for the separable gaussian.
func GaussianBlur(src *Buffer, size int, sigma float64) *Buffer {
	k := GaussianKernel(size, sigma)
	return SeparableCorrelate(src, k, k)
}

// LineKernel builds a size x size kernel with a normalized line through its
// center at angle degrees, the classic motion blur PSF.
func LineKernel(size int, angle float64) Kernel {
	k := Kernel{W: size, H: size, Data: make([]float64, size*size)}
	center := size / 2
	rad := angle * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)

	var sum float64
	for i := -center; i <= center; i++ {
		x := int(math.Round(float64(center) + float64(i)*cos))
		y := int(math.Round(float64(center) + float64(i)*sin))
		if x >= 0 && x < size && y >= 0 && y < size && k.Data[y*size+x] == 0 {
			k.Data[y*size+x] = 1
			sum++
		}
	}

	if sum == 0 {
		k.Data[center*size+center] = 1
		return k
	}
	for i := range k.Data {
		k.Data[i] /= sum
	}
	return k
}
