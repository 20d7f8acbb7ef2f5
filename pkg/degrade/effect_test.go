package degrade

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"degrader/pkg/codec"
	"degrader/pkg/frame"
)

func testEnv(seed int64) Env {
	return Env{
		Codec: codec.NewFFmpeg(nil),
		Rand:  rand.New(rand.NewSource(seed)),
	}
}

func randomFrame(rnd *rand.Rand, shape ...int) *frame.Frame {
	f := frame.New(frame.Uint8, shape...)
	for i := range f.U8 {
		f.U8[i] = uint8(rnd.Intn(256))
	}
	return f
}

func constantFrame(v uint8, shape ...int) *frame.Frame {
	f := frame.New(frame.Uint8, shape...)
	for i := range f.U8 {
		f.U8[i] = v
	}
	return f
}

type stubEffect struct {
	base
	apply func(f *frame.Frame) (*frame.Frame, error)
}

func (s *stubEffect) Apply(f *frame.Frame) (*frame.Frame, error) {
	return s.apply(f)
}

func newStub(fn func(f *frame.Frame) (*frame.Frame, error)) *stubEffect {
	return &stubEffect{base: newBase("stub", Params{}, Env{}), apply: fn}
}

func TestProcessRejectsBadInput(t *testing.T) {
	e := newStub(func(f *frame.Frame) (*frame.Frame, error) { return f, nil })

	for name, tc := range map[string]struct {
		f    *frame.Frame
		want error
	}{
		"rank2":    {frame.New(frame.Uint8, 4, 4), frame.ErrRank},
		"rank5":    {frame.New(frame.Uint8, 1, 1, 4, 4, 3), frame.ErrRank},
		"channels": {frame.New(frame.Uint8, 4, 4, 4), frame.ErrChannels},
		"dtype":    {&frame.Frame{Shape: []int{2, 2, 3}}, frame.ErrDType},
		"short":    {&frame.Frame{Shape: []int{2, 2, 3}, DType: frame.Uint8, U8: make([]uint8, 3)}, frame.ErrShape},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Process(e, tc.f)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))
			assert.True(t, errors.Is(err, tc.want))

			var ie *InputError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, "stub", ie.Effect)
		})
	}
}

func TestProcessPhaseErrors(t *testing.T) {
	f := constantFrame(10, 4, 4, 3)

	boom := errors.New("boom")
	_, err := Process(newStub(func(*frame.Frame) (*frame.Frame, error) { return nil, boom }), f)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExecution))
	assert.True(t, errors.Is(err, boom))

	var pe *PhaseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, PhaseApply, pe.Phase)
	assert.Equal(t, "stub", pe.Effect)

	_, err = Process(newStub(func(*frame.Frame) (*frame.Frame, error) { return nil, nil }), f)
	assert.True(t, errors.Is(err, ErrEmptyResult))
}

func TestProcessDefaultPostprocessClamps(t *testing.T) {
	e := newStub(func(f *frame.Frame) (*frame.Frame, error) {
		return frame.FromFloat64s([]float64{-20, 0.4, 0.5, 254.6, 300, 128}, 1, 2, 3), nil
	})

	out, err := Process(e, constantFrame(0, 1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, frame.Uint8, out.DType)
	assert.Equal(t, []uint8{0, 0, 1, 255, 255, 128}, out.U8)
}

type hookedEffect struct {
	stubEffect
	calls []string
}

func (h *hookedEffect) Preprocess(f *frame.Frame) (*frame.Frame, error) {
	h.calls = append(h.calls, PhasePreprocess)
	return f, nil
}

func (h *hookedEffect) Postprocess(f *frame.Frame) (*frame.Frame, error) {
	h.calls = append(h.calls, PhasePostprocess)
	return nil, errors.New("post failed")
}

func TestProcessHookOrder(t *testing.T) {
	h := &hookedEffect{}
	h.stubEffect = *newStub(func(f *frame.Frame) (*frame.Frame, error) {
		h.calls = append(h.calls, PhaseApply)
		return f, nil
	})

	_, err := Process(h, constantFrame(1, 2, 2, 3))
	var pe *PhaseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, PhasePostprocess, pe.Phase)
	assert.Equal(t, []string{PhasePreprocess, PhaseApply, PhasePostprocess}, h.calls)
}

func TestTick(t *testing.T) {
	assert.Equal(t, 0, tick(0))
	assert.Equal(t, 6, tick(5))
	assert.Equal(t, 3, tick(10))
	assert.Equal(t, 1, tick(30))
	assert.Equal(t, 1, tick(100))
	assert.Equal(t, 2, tick(12))
}

func TestPerImage(t *testing.T) {
	batch := randomFrame(rand.New(rand.NewSource(3)), 3, 4, 5, 3)
	var seen int
	out, err := perImage(batch, func(img *frame.Frame) (*frame.Frame, error) {
		seen++
		assert.Equal(t, []int{4, 5, 3}, img.Shape)
		return img.Clone(), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, seen)
	assert.True(t, batch.Equal(out))

	_, err = perImage(batch, func(*frame.Frame) (*frame.Frame, error) { return nil, errors.New("nope") })
	assert.Error(t, err)
}

func TestUnitToUint8(t *testing.T) {
	f := frame.FromFloat64s([]float64{0, 0.5, 1}, 1, 1, 3)
	u := unitToUint8(f)
	assert.Equal(t, []uint8{0, 128, 255}, u.U8)

	g := frame.FromFloat64s([]float64{0, 50, 200}, 1, 1, 3)
	assert.Same(t, g, unitToUint8(g))
}
