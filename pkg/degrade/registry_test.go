package degrade

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinNames(t *testing.T) {
	assert.Equal(t, append(append([]string(nil), BaseEffects...), SpecialEffects...), Builtin.Names())
	for _, name := range Builtin.Names() {
		assert.True(t, Builtin.Has(name))
	}
	assert.False(t, Builtin.Has("stage1"))
}

func TestUnknownEffect(t *testing.T) {
	_, err := Builtin.New("sepia", Params{}, Env{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownEffect))

	var ue *UnknownEffectError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "sepia", ue.Name)
	assert.Len(t, ue.Known, 12)
	assert.Contains(t, err.Error(), "motion_blur")
}

func TestRegistryNewCopiesParams(t *testing.T) {
	p := Params{"kernel_size": 4}
	e, err := Builtin.New(Blur, p, Env{})
	require.NoError(t, err)

	e.Params()["kernel_size"] = 99
	assert.Equal(t, 4, p["kernel_size"])
	assert.Equal(t, 5, e.Params()["kernel_size"])
}

func TestRegistryOverride(t *testing.T) {
	r := NewRegistry()
	r.Register("a", NewBlur)
	r.Register("b", NewNoise)
	r.Register("a", NewInterlace)
	assert.Equal(t, []string{"a", "b"}, r.Names())

	e, err := r.New("a", Params{}, Env{})
	require.NoError(t, err)
	assert.Equal(t, Interlace, e.Name())
}

func TestIsSpecial(t *testing.T) {
	assert.True(t, IsSpecial(Shake))
	assert.False(t, IsSpecial(Blur))
	assert.True(t, IsStage(Stage3))
	assert.False(t, IsStage(Flicker))
}
