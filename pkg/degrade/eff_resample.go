package degrade

import (
	"fmt"

	"degrader/pkg/frame"
	"degrader/pkg/imgproc"
)

func NewResample(p Params, env Env) (Effect, error) {
	r, err := newReader(Resample, p, "scale_factor", "interpolation")
	if err != nil {
		return nil, err
	}

	e := &resample{
		scale:  r.Float("scale_factor", 0.5),
		interp: imgproc.Interpolation(r.String("interpolation", string(imgproc.Bilinear))),
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	if e.scale <= 0 || e.scale >= 1 {
		return nil, &ParamError{Effect: Resample, Key: "scale_factor", Value: e.scale, Reason: "must be in (0, 1)"}
	}
	if !e.interp.Valid() {
		return nil, &ParamError{
			Effect: Resample,
			Key:    "interpolation",
			Value:  e.interp,
			Reason: fmt.Sprintf("unsupported, want one of %v", imgproc.Interpolations()),
		}
	}

	e.base = newBase(Resample, Params{"scale_factor": e.scale, "interpolation": string(e.interp)}, env)
	return e, nil
}

// resample scales down and back up, losing resolution on the way.
type resample struct {
	base
	scale  float64
	interp imgproc.Interpolation
}

func (e *resample) Preprocess(f *frame.Frame) (*frame.Frame, error) {
	return unitToUint8(f), nil
}

func (e *resample) Apply(f *frame.Frame) (*frame.Frame, error) {
	return perImage(f, func(img *frame.Frame) (*frame.Frame, error) {
		h, w := img.Height(), img.Width()
		nh := max(1, int(float64(h)*e.scale))
		nw := max(1, int(float64(w)*e.scale))

		small, err := imgproc.Resize(img, nw, nh, e.interp)
		if err != nil {
			return nil, err
		}
		return imgproc.Resize(small, w, h, e.interp)
	})
}
