package degrade

import (
	"math"

	"degrader/pkg/frame"
	"degrader/pkg/imgproc"
)

func NewAliasing(p Params, env Env) (Effect, error) {
	r, err := newReader(Aliasing, p, "scale_factor", "downsample_factor")
	if err != nil {
		return nil, err
	}

	e := &aliasing{}
	if r.has("downsample_factor") {
		d := r.Float("downsample_factor", 0)
		if err := r.Err(); err != nil {
			return nil, err
		}
		if d <= 1 {
			return nil, &ParamError{Effect: Aliasing, Key: "downsample_factor", Value: d, Reason: "must be greater than 1"}
		}
		e.downsample, e.scale = d, 1/d

		// keep a consistent explicit scale so normalized params rebuild exactly
		if s := r.Float("scale_factor", 0); r.Err() == nil && math.Abs(s*d-1) < 1e-9 {
			e.scale = s
		}
	} else {
		s := r.Float("scale_factor", 0.3)
		if err := r.Err(); err != nil {
			return nil, err
		}
		if s <= 0 || s >= 1 {
			return nil, &ParamError{Effect: Aliasing, Key: "scale_factor", Value: s, Reason: "must be in (0, 1)"}
		}
		e.scale, e.downsample = s, 1/s
	}

	e.base = newBase(Aliasing, Params{"scale_factor": e.scale, "downsample_factor": e.downsample}, env)
	return e, nil
}

// aliasing drops resolution with hard nearest neighbour sampling both ways.
type aliasing struct {
	base
	scale      float64
	downsample float64
}

func (e *aliasing) Apply(f *frame.Frame) (*frame.Frame, error) {
	return perImage(f, func(img *frame.Frame) (*frame.Frame, error) {
		h, w := img.Height(), img.Width()
		nh := max(1, int(float64(h)*e.scale))
		nw := max(1, int(float64(w)*e.scale))

		small, err := imgproc.ResizeNearestFloor(img, nw, nh)
		if err != nil {
			return nil, err
		}
		return imgproc.ResizeNearestFloor(small, w, h)
	})
}
