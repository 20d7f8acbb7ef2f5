package degrade

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"degrader/pkg/frame"
)

func TestStageTiers(t *testing.T) {
	s, err := NewStage(Stage1, Params{"blur": Params{"kernel_size": 3}}, testEnv(1), Builtin)
	require.NoError(t, err)
	assert.Equal(t, Stage1, s.Name())
	assert.Equal(t, Params{
		Blur:        Params{"kernel_size": 3},
		Resample:    Params{},
		Noise:       Params{},
		Compression: Params{},
	}, s.Params())

	s, err = NewStage(Stage2, Params{"noise": map[string]any{"intensity": 2}}, testEnv(1), Builtin)
	require.NoError(t, err)
	p := s.Params()
	assert.Equal(t, Params{"kernel_size": 7, "sigma": 1.8}, p[Blur])
	assert.Equal(t, Params{"scale_factor": 0.4}, p[Resample])
	assert.Equal(t, Params{"noise_type": NoiseGaussian, "intensity": 2}, p[Noise])
	assert.Equal(t, Params{"quality": 30}, p[Compression])
}

func TestStageRejectsBadConfig(t *testing.T) {
	_, err := NewStage(StageName, Params{"shake": Params{}}, Env{}, Builtin)
	assert.True(t, errors.Is(err, ErrInvalidParameter))

	_, err = NewStage(StageName, Params{"blur": 3}, Env{}, Builtin)
	assert.True(t, errors.Is(err, ErrInvalidParameter))

	_, err = NewStage("stage9", Params{}, Env{}, Builtin)
	assert.True(t, errors.Is(err, ErrUnknownEffect))
}

func TestStageRunsBaseEffectsInOrder(t *testing.T) {
	var order []string
	reg := NewRegistry()
	for _, name := range BaseEffects {
		name := name
		reg.Register(name, func(p Params, env Env) (Effect, error) {
			s := newStub(func(f *frame.Frame) (*frame.Frame, error) {
				order = append(order, name)
				return f.Clone(), nil
			})
			s.name = name
			return s, nil
		})
	}

	s, err := NewStage(Stage1, Params{}, Env{}, reg)
	require.NoError(t, err)
	assert.Nil(t, s.(*stage).Effects())

	_, err = Process(s, constantFrame(9, 4, 4, 3))
	require.NoError(t, err)
	assert.Equal(t, BaseEffects, order)
	assert.Len(t, s.(*stage).Effects(), 4)
}

func TestStageBuildsLazily(t *testing.T) {
	// sub-effect params are only checked once the stage runs
	s, err := NewStage(StageName, Params{"blur": Params{"radius": 3}}, testEnv(1), Builtin)
	require.NoError(t, err)

	_, err = Process(s, constantFrame(9, 8, 8, 3))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidParameter))

	var se *StepError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageName, se.Scope)
	assert.Equal(t, 1, se.Index)
	assert.Equal(t, Blur, se.Effect)
}

func TestStageWrapsStepFailures(t *testing.T) {
	boom := errors.New("boom")
	reg := NewRegistry()
	for i, name := range BaseEffects {
		fail := i == 2
		reg.Register(name, func(p Params, env Env) (Effect, error) {
			return newStub(func(f *frame.Frame) (*frame.Frame, error) {
				if fail {
					return nil, boom
				}
				return f, nil
			}), nil
		})
	}

	s, err := NewStage(Stage2, Params{}, Env{}, reg)
	require.NoError(t, err)

	_, err = Process(s, constantFrame(9, 4, 4, 3))
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.True(t, errors.Is(err, ErrExecution))

	var se *StepError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 3, se.Index)
	assert.Equal(t, Stage2, se.Scope)
}

func TestSpecialStage(t *testing.T) {
	_, err := NewStage(SpecialName, Params{}, Env{}, Builtin)
	var pe *ParamError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "degradation_type", pe.Key)

	_, err = NewStage(SpecialName, Params{"degradation_type": Blur}, Env{}, Builtin)
	assert.True(t, errors.Is(err, ErrInvalidParameter))

	_, err = NewStage(Stage3, Params{"degradation_type": Dirt, "params": "x"}, Env{}, Builtin)
	assert.True(t, errors.Is(err, ErrInvalidParameter))

	s, err := NewStage(Stage3, Params{
		"degradation_type": "Interlace",
		"params":           Params{"intensity": 1},
	}, testEnv(1), Builtin)
	require.NoError(t, err)
	assert.Equal(t, Params{"degradation_type": Interlace, "params": Params{"intensity": 1}}, s.Params())

	in := constantFrame(100, 6, 6, 3)
	out, err := Process(s, in)
	require.NoError(t, err)
	assert.Equal(t, in.Shape, out.Shape)

	var black int
	for _, v := range out.U8 {
		if v == 0 {
			black++
		}
	}
	assert.Equal(t, 3*6*3, black)
}

func TestStageKeepsShapeOnBatches(t *testing.T) {
	in := randomFrame(rand.New(rand.NewSource(40)), 2, 16, 16, 3)
	s, err := NewStage(Stage2, Params{}, testEnv(41), Builtin)
	require.NoError(t, err)

	out, err := Process(s, in)
	require.NoError(t, err)
	assert.Equal(t, in.Shape, out.Shape)
	assert.Equal(t, frame.Uint8, out.DType)
}

func TestStageResetsStatefulSubEffects(t *testing.T) {
	s, err := NewStage(SpecialName, Params{"degradation_type": Flicker}, testEnv(1), Builtin)
	require.NoError(t, err)

	_, err = Process(s, constantFrame(9, 3, 8, 8, 3))
	require.NoError(t, err)
	fl := s.(*stage).Effects()[0].(*flicker)
	assert.Equal(t, 3, fl.n)

	s.(Stateful).Reset()
	assert.Equal(t, 0, fl.n)
}

func TestStagePropagatesMediaType(t *testing.T) {
	s, err := NewStage(Stage1, Params{}, testEnv(1), Builtin)
	require.NoError(t, err)
	s.(MediaTyped).SetMediaType(frame.MediaVideo)

	_, err = Process(s, constantFrame(9, 8, 8, 3))
	require.NoError(t, err)
	for _, e := range s.(*stage).Effects() {
		assert.Equal(t, frame.MediaVideo, e.(MediaTyped).MediaType())
	}
}
