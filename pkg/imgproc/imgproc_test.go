package imgproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"degrader/pkg/frame"
)

func TestReflect101(t *testing.T) {
	assert.Equal(t, 1, reflect101(-1, 5))
	assert.Equal(t, 2, reflect101(-2, 5))
	assert.Equal(t, 3, reflect101(5, 5))
	assert.Equal(t, 2, reflect101(6, 5))
	assert.Equal(t, 0, reflect101(7, 1))
}

func TestGaussianKernelNormalized(t *testing.T) {
	for _, size := range []int{1, 3, 7, 15} {
		k := GaussianKernel(size, 2)
		require.Len(t, k, size)
		var sum float64
		for _, v := range k {
			sum += v
		}
		assert.InDelta(t, 1, sum, 1e-12)
		assert.InDelta(t, k[0], k[size-1], 1e-15)
	}
}

func TestGaussianBlurConstantField(t *testing.T) {
	b := NewBuffer(10, 12, 3)
	for i := range b.Pix {
		b.Pix[i] = 128
	}

	out := GaussianBlur(b, 7, 2)
	for _, v := range out.Pix {
		assert.InDelta(t, 128, v, 1e-9)
	}
}

func TestLineKernel(t *testing.T) {
	k := LineKernel(5, 0)
	var sum float64
	for _, v := range k.Data {
		sum += v
	}
	assert.InDelta(t, 1, sum, 1e-12)
	for x := 0; x < 5; x++ {
		assert.InDelta(t, 0.2, k.At(2, x), 1e-12)
	}

	k = LineKernel(5, 90)
	for y := 0; y < 5; y++ {
		assert.InDelta(t, 0.2, k.At(y, 2), 1e-12)
	}
}

func TestCannyFindsStepEdge(t *testing.T) {
	h, w := 16, 16
	gray := make([]float64, h*w)
	for y := 0; y < h; y++ {
		for x := w / 2; x < w; x++ {
			gray[y*w+x] = 255
		}
	}

	edges := Canny(gray, h, w, 50, 150)
	var count int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if edges[y*w+x] == 1 {
				count++
				assert.True(t, x == w/2-1 || x == w/2, "edge at x=%d", x)
			}
		}
	}
	assert.Greater(t, count, 0)

	flat := Canny(make([]float64, h*w), h, w, 50, 150)
	for _, v := range flat {
		assert.Zero(t, v)
	}
}

func TestLinePixels(t *testing.T) {
	px := LinePixels(10, 10, 0, 0, 9, 9, 1)
	assert.Len(t, px, 10)
	for i, p := range px {
		assert.Equal(t, i*10+i, p)
	}

	thick := LinePixels(10, 10, 0, 5, 9, 5, 3)
	assert.Len(t, thick, 30)
}

func TestDiscPixels(t *testing.T) {
	px := DiscPixels(20, 20, 10, 10, 2)
	assert.Len(t, px, 13)

	clipped := DiscPixels(20, 20, 0, 0, 2)
	assert.Len(t, clipped, 6)
}

func TestResizeNearestFloor(t *testing.T) {
	f := frame.New(frame.Uint8, 4, 4, 3)
	for i := 0; i < 16; i++ {
		f.U8[i*3] = uint8(i)
	}

	down, err := ResizeNearestFloor(f, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 2, 8, 10}, []uint8{down.U8[0], down.U8[3], down.U8[6], down.U8[9]})

	up, err := ResizeNearestFloor(down, 4, 4)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), up.U8[3])
	assert.Equal(t, uint8(2), up.U8[6])
	assert.Equal(t, uint8(10), up.U8[(3*4+3)*3])
}

func TestResizeKeepsShape(t *testing.T) {
	f := frame.New(frame.Uint8, 8, 6, 3)
	for _, interp := range Interpolations() {
		out, err := Resize(f, 3, 4, interp)
		require.NoError(t, err)
		assert.Equal(t, []int{4, 3, 3}, out.Shape)
	}

	_, err := Resize(f, 3, 4, "lanczos9")
	assert.Error(t, err)
}
