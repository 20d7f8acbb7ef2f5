package degrade

import (
	"math/rand"

	"degrader/pkg/frame"
)

func NewInterlace(p Params, env Env) (Effect, error) {
	r, err := newReader(Interlace, p, "intensity")
	if err != nil {
		return nil, err
	}

	e := &interlace{intensity: clampF(r.Float("intensity", 0.5), 0, 1), rnd: env.rand()}
	if err := r.Err(); err != nil {
		return nil, err
	}

	e.base = newBase(Interlace, Params{"intensity": e.intensity}, env)
	return e, nil
}

// interlace darkens every other scanline, starting on a random parity.
type interlace struct {
	base
	intensity float64
	rnd       *rand.Rand
}

func (e *interlace) Apply(f *frame.Frame) (*frame.Frame, error) {
	return perImage(f, func(img *frame.Frame) (*frame.Frame, error) {
		h, w, c := img.Height(), img.Width(), img.Channels()
		data := img.Float64s()

		start := 0
		if e.rnd.Float64() > 0.5 {
			start = 1
		}

		row := w * c
		for y := start; y < h; y += 2 {
			for i := y * row; i < (y+1)*row; i++ {
				data[i] *= 1 - e.intensity
			}
		}
		return frame.FromFloat64s(data, img.Shape...), nil
	})
}
