package degrade

import (
	"math"
	"math/rand"

	"go.uber.org/zap"

	"degrader/pkg/frame"
)

func NewFlicker(p Params, env Env) (Effect, error) {
	r, err := newReader(Flicker, p, "range", "intensity", "frequency", "amplitude")
	if err != nil {
		return nil, err
	}

	e := &flicker{
		span:      r.Floats("range", 2, []float64{0.5, 1.5}),
		intensity: clampF(r.Float("intensity", 1), 0, 1),
		frequency: r.Float("frequency", 5),
		amplitude: r.Float("amplitude", 0.5),
		rnd:       env.rand(),
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	switch {
	case e.span[0] >= e.span[1]:
		return nil, &ParamError{Effect: Flicker, Key: "range", Value: e.span, Reason: "want an increasing [min, max]"}
	case e.frequency < 0:
		return nil, &ParamError{Effect: Flicker, Key: "frequency", Value: e.frequency, Reason: "must not be negative"}
	case e.amplitude < 0:
		return nil, &ParamError{Effect: Flicker, Key: "amplitude", Value: e.amplitude, Reason: "must not be negative"}
	}

	e.tick = tick(e.frequency)
	e.base = newBase(Flicker, Params{
		"range":     append([]float64(nil), e.span...),
		"intensity": e.intensity,
		"frequency": e.frequency,
		"amplitude": e.amplitude,
	}, env)
	return e, nil
}

// flicker scales the brightness of a random region on gated frames. The
// amplitude, shrunk by intensity, bounds the factor; range is only
// validated.
type flicker struct {
	base
	counter
	span      []float64
	intensity float64
	frequency float64
	amplitude float64
	tick      int
	rnd       *rand.Rand
}

// factors returns the bounds the brightness factor is drawn from.
func (e *flicker) factors() (float64, float64) {
	lo := math.Max(0.1, 1-e.amplitude)
	hi := math.Min(2, 1+e.amplitude)
	return 1 - (1-lo)*e.intensity, 1 + (hi-1)*e.intensity
}

// gated reports whether frame n flickers. A zero frequency flickers only
// on the first frame.
func (e *flicker) gated(n int) bool {
	if e.tick == 0 {
		return n == 0
	}
	return n%e.tick == 0
}

func (e *flicker) Apply(f *frame.Frame) (*frame.Frame, error) {
	return perImage(f, func(img *frame.Frame) (*frame.Frame, error) {
		n := e.next()
		data := img.Float64s()
		if !e.gated(n) {
			return frame.FromFloat64s(data, img.Shape...), nil
		}

		h, w, c := img.Height(), img.Width(), img.Channels()
		mx, my := int(float64(w)*0.3), int(float64(h)*0.3)
		x1, y1 := e.rnd.Intn(mx+1), e.rnd.Intn(my+1)
		x2, y2 := w-mx+e.rnd.Intn(max(1, mx)), h-my+e.rnd.Intn(max(1, my))

		lo, hi := e.factors()
		factor := lo + e.rnd.Float64()*(hi-lo)

		for y := y1; y < y2; y++ {
			for i := (y*w + x1) * c; i < (y*w+x2)*c; i++ {
				data[i] *= factor
			}
		}

		e.logger.With(zap.Int("frame", n), zap.Float64("factor", factor)).Debug("flicker")
		return frame.FromFloat64s(data, img.Shape...), nil
	})
}
