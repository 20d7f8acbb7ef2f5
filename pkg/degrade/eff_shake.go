package degrade

import (
	"math/rand"

	"degrader/pkg/frame"
)

func NewShake(p Params, env Env) (Effect, error) {
	r, err := newReader(Shake, p, "max_offset", "mix_weight", "frequency", "displacement")
	if err != nil {
		return nil, err
	}

	e := &shake{
		offset:    r.Int("max_offset", 5),
		mix:       clampF(r.Float("mix_weight", 0.5), 0.01, 0.99),
		frequency: r.Float("frequency", 0),
		rnd:       env.rand(),
	}
	displaced := r.has("displacement")
	d := r.Int("displacement", e.offset)
	if err := r.Err(); err != nil {
		return nil, err
	}

	switch {
	case e.offset < 1:
		return nil, &ParamError{Effect: Shake, Key: "max_offset", Value: e.offset, Reason: "must be at least 1"}
	case displaced && d < 1:
		return nil, &ParamError{Effect: Shake, Key: "displacement", Value: d, Reason: "must be at least 1"}
	case e.frequency < 0:
		return nil, &ParamError{Effect: Shake, Key: "frequency", Value: e.frequency, Reason: "must not be negative"}
	}
	e.offset = d

	e.tick = tick(e.frequency)
	e.base = newBase(Shake, Params{
		"max_offset":   e.offset,
		"displacement": e.offset,
		"mix_weight":   e.mix,
		"frequency":    e.frequency,
	}, env)
	return e, nil
}

// shake blends the frame with a randomly translated, wrapped copy of itself
// on gated frames. A zero frequency shakes every frame.
type shake struct {
	base
	counter
	offset    int
	mix       float64
	frequency float64
	tick      int
	rnd       *rand.Rand
}

func (e *shake) Preprocess(f *frame.Frame) (*frame.Frame, error) {
	return unitToUint8(f), nil
}

func (e *shake) Apply(f *frame.Frame) (*frame.Frame, error) {
	return perImage(f, func(img *frame.Frame) (*frame.Frame, error) {
		n := e.next()
		if e.tick > 0 && n%e.tick != 0 {
			return img.Clone(), nil
		}

		h, w, c := img.Height(), img.Width(), img.Channels()
		dx := e.rnd.Intn(2*e.offset+1) - e.offset
		dy := e.rnd.Intn(2*e.offset+1) - e.offset

		src := img.Float64s()
		out := make([]float64, len(src))
		for y := 0; y < h; y++ {
			sy := ((y-dy)%h + h) % h
			for x := 0; x < w; x++ {
				sx := ((x-dx)%w + w) % w
				di, si := (y*w+x)*c, (sy*w+sx)*c
				for ch := 0; ch < c; ch++ {
					out[di+ch] = src[di+ch]*e.mix + src[si+ch]*(1-e.mix)
				}
			}
		}
		return frame.FromFloat64s(out, img.Shape...), nil
	})
}
