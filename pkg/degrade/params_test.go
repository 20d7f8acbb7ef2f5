package degrade

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderCoercion(t *testing.T) {
	r, err := newReader("x", Params{
		"f":    "2.5",
		"i":    7.9,
		"s":    " Gaussian ",
		"list": []any{1, 2.5},
		"ints": []int{3, 4},
		"m":    map[string]any{"k": 1},
	}, "f", "i", "s", "list", "ints", "m", "missing")
	require.NoError(t, err)

	assert.Equal(t, 2.5, r.Float("f", 0))
	assert.Equal(t, 7, r.Int("i", 0))
	assert.Equal(t, "gaussian", r.String("s", ""))
	assert.Equal(t, []float64{1, 2.5}, r.Floats("list", 2, nil))
	assert.Equal(t, []int{3, 4}, r.Ints("ints", 2, nil))
	assert.Equal(t, Params{"k": 1}, r.Mapping("m"))
	assert.Equal(t, 42, r.Int("missing", 42))
	assert.NoError(t, r.Err())
}

func TestReaderKeepsFirstError(t *testing.T) {
	r, err := newReader("blur", Params{"a": "x", "b": []any{1}}, "a", "b")
	require.NoError(t, err)

	assert.Equal(t, 1.0, r.Float("a", 1))
	r.Floats("b", 2, nil)

	var pe *ParamError
	require.True(t, errors.As(r.Err(), &pe))
	assert.Equal(t, "a", pe.Key)
	assert.Equal(t, "blur", pe.Effect)
}

func TestAllowList(t *testing.T) {
	_, err := NewBlur(Params{"kernel_size": 3, "radius": 2}, Env{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
	assert.Contains(t, err.Error(), "radius")
	assert.Contains(t, err.Error(), "blur")

	var pe *ParamError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "radius", pe.Key)
}

func TestParamsCloneIsDeep(t *testing.T) {
	p := Params{
		"nested": map[string]any{"k": []any{1, 2}},
		"ints":   []int{1, 2},
	}
	c := p.Clone()

	c["ints"].([]int)[0] = 9
	c["nested"].(Params)["k"].([]any)[0] = 9

	assert.Equal(t, 1, p["ints"].([]int)[0])
	assert.Equal(t, 1, p["nested"].(map[string]any)["k"].([]any)[0])
}

func TestAsParams(t *testing.T) {
	_, ok := AsParams(map[string]any{})
	assert.True(t, ok)
	_, ok = AsParams(Params{})
	assert.True(t, ok)
	p, ok := AsParams(nil)
	assert.True(t, ok)
	assert.Empty(t, p)
	_, ok = AsParams([]any{})
	assert.False(t, ok)
}

func TestOddKernel(t *testing.T) {
	for in, want := range map[int]int{-3: 1, 0: 1, 1: 1, 2: 3, 4: 5, 7: 7, 254: 255, 256: 255, 100001: MaxKernelSize} {
		assert.Equal(t, want, oddKernel(in), "input %d", in)
	}
}
