package degrade

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"degrader/pkg/frame"
)

// Effect is a single degradation transform. Apply must not write into its
// input frame; it returns a new frame honoring the frame contract.
type Effect interface {
	Name() string
	// Params returns a copy of the normalized parameters. Building the same
	// effect from them yields identical parameters again.
	Params() Params
	Apply(f *frame.Frame) (*frame.Frame, error)
}

// Preprocessor replaces the default no-op preprocessing of Process.
type Preprocessor interface {
	Preprocess(f *frame.Frame) (*frame.Frame, error)
}

// Postprocessor replaces the default clamp-and-cast postprocessing of
// Process.
type Postprocessor interface {
	Postprocess(f *frame.Frame) (*frame.Frame, error)
}

type MediaTyped interface {
	MediaType() frame.MediaType
	SetMediaType(t frame.MediaType)
}

// Stateful effects keep a frame counter across calls. Reset starts it over
// for a new media item.
type Stateful interface {
	Reset()
}

// Process is the fixed template every effect runs through: frame contract
// check, preprocess, apply, postprocess.
func Process(e Effect, f *frame.Frame) (*frame.Frame, error) {
	if err := f.Check(); err != nil {
		return nil, &InputError{Effect: e.Name(), Err: err}
	}

	in := f
	if p, ok := e.(Preprocessor); ok {
		var err error
		if in, err = p.Preprocess(f); err != nil {
			return nil, &PhaseError{Effect: e.Name(), Phase: PhasePreprocess, Err: err}
		}
		if in == nil {
			return nil, &PhaseError{Effect: e.Name(), Phase: PhasePreprocess, Err: ErrEmptyResult}
		}
	}

	out, err := e.Apply(in)
	if err != nil {
		return nil, &PhaseError{Effect: e.Name(), Phase: PhaseApply, Err: err}
	}
	if out == nil || out.Size() == 0 {
		return nil, &PhaseError{Effect: e.Name(), Phase: PhaseApply, Err: ErrEmptyResult}
	}

	if p, ok := e.(Postprocessor); ok {
		if out, err = p.Postprocess(out); err != nil {
			return nil, &PhaseError{Effect: e.Name(), Phase: PhasePostprocess, Err: err}
		}
	} else {
		out = out.ToUint8()
	}
	if err := out.Check(); err != nil {
		return nil, &PhaseError{Effect: e.Name(), Phase: PhasePostprocess, Err: err}
	}

	return out, nil
}

func newBase(name string, params Params, env Env) base {
	logger := env.logger().With(zap.String("effect", name))
	logger.With(zap.Any("params", params)).Debug("effect ready")

	return base{
		name:   name,
		params: params,
		media:  env.MediaType,
		logger: logger,
	}
}

// base carries what every effect shares.
type base struct {
	name   string
	params Params
	media  frame.MediaType
	logger *zap.Logger
}

func (b *base) Name() string {
	return b.name
}

func (b *base) Params() Params {
	return b.params.Clone()
}

func (b *base) MediaType() frame.MediaType {
	return b.media
}

func (b *base) SetMediaType(t frame.MediaType) {
	b.media = t
}

// counter is the running frame index of frequency gated effects.
type counter struct {
	n int
}

func (c *counter) next() int {
	n := c.n
	c.n++
	return n
}

func (c *counter) Reset() {
	c.n = 0
}

// tick is the gating interval for a frequency at the nominal 30 fps.
func tick(frequency float64) int {
	if frequency <= 0 {
		return 0
	}
	return max(1, int(math.RoundToEven(30/frequency)))
}

// perImage applies fn to every image of a batch, or once for a single image.
func perImage(f *frame.Frame, fn func(img *frame.Frame) (*frame.Frame, error)) (*frame.Frame, error) {
	if f.Rank() == 3 {
		return fn(f)
	}

	imgs := f.Split()
	out := make([]*frame.Frame, len(imgs))
	for i, img := range imgs {
		o, err := fn(img)
		if err != nil {
			return nil, errors.Wrapf(err, "image %d", i)
		}
		out[i] = o
	}
	return frame.Stack(out)
}

// unitToUint8 converts float frames scaled to [0,1] into 8-bit.
func unitToUint8(f *frame.Frame) *frame.Frame {
	if f.DType.IsFloat() && f.Max() <= 1 {
		return f.ScaleUnitToUint8()
	}
	return f
}
