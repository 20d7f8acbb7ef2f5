package frame

import (
	"image"
	"image/color"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	cases := []struct {
		name string
		f    *Frame
		err  error
	}{
		{"image", New(Uint8, 4, 5, 3), nil},
		{"batch", New(Float32, 2, 4, 5, 3), nil},
		{"float64", New(Float64, 4, 5, 3), nil},
		{"rank2", New(Uint8, 4, 5), ErrRank},
		{"rank5", New(Uint8, 1, 1, 4, 5, 3), ErrRank},
		{"gray", New(Uint8, 4, 5, 1), ErrChannels},
		{"dtype", &Frame{Shape: []int{1, 1, 3}, DType: Invalid}, ErrDType},
		{"short", &Frame{Shape: []int{2, 2, 3}, DType: Uint8, U8: make([]uint8, 3)}, ErrShape},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.f.Check()
			if c.err == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, c.err), "got %v", err)
			}
		})
	}
}

func TestToUint8ClampsAndRounds(t *testing.T) {
	f := FromFloat64s([]float64{-5, 0.4, 0.6, 127.5, 254.6, 500}, 1, 2, 3)
	u := f.ToUint8()

	assert.Equal(t, Uint8, u.DType)
	assert.Equal(t, []uint8{0, 0, 1, 128, 255, 255}, u.U8)
	assert.Equal(t, []int{1, 2, 3}, u.Shape)
}

func TestScaleUnitToUint8(t *testing.T) {
	f := &Frame{Shape: []int{1, 1, 3}, DType: Float32, F32: []float32{0, 0.5, 1}}
	u := f.ScaleUnitToUint8()
	assert.Equal(t, []uint8{0, 128, 255}, u.U8)
}

func TestSplitStack(t *testing.T) {
	a := New(Uint8, 2, 2, 3)
	b := New(Uint8, 2, 2, 3)
	for i := range b.U8 {
		b.U8[i] = uint8(i)
	}

	batch, err := Stack([]*Frame{a, b})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 2, 3}, batch.Shape)
	assert.Equal(t, 2, batch.Images())
	assert.Equal(t, 2, batch.Height())
	assert.Equal(t, 2, batch.Width())

	parts := batch.Split()
	require.Len(t, parts, 2)
	assert.True(t, parts[0].Equal(a))
	assert.True(t, parts[1].Equal(b))

	_, err = Stack([]*Frame{a, New(Uint8, 3, 2, 3)})
	assert.True(t, errors.Is(err, ErrShape))
}

func TestImageRoundTrip(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.Set(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	src.Set(2, 1, color.RGBA{R: 200, G: 100, B: 50, A: 255})

	f := FromImage(src)
	assert.Equal(t, []int{2, 3, 3}, f.Shape)
	assert.Equal(t, []uint8{10, 20, 30}, f.U8[0:3])
	assert.Equal(t, []uint8{200, 100, 50}, f.U8[15:18])

	img, err := f.Image()
	require.NoError(t, err)
	assert.True(t, FromImage(img).Equal(f))
}

func TestParseMediaType(t *testing.T) {
	mt, err := ParseMediaType(" Video ")
	require.NoError(t, err)
	assert.Equal(t, MediaVideo, mt)

	_, err = ParseMediaType("audio")
	assert.Error(t, err)
}
