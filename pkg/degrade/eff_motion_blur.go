package degrade

import (
	"math"

	"degrader/pkg/frame"
	"degrader/pkg/imgproc"
)

func NewMotionBlur(p Params, env Env) (Effect, error) {
	r, err := newReader(MotionBlur, p, "kernel_size", "angle")
	if err != nil {
		return nil, err
	}

	angle := math.Mod(r.Float("angle", 0), 360)
	if angle < 0 {
		angle += 360
	}
	e := &motionBlur{ksize: oddKernel(r.Int("kernel_size", 15)), angle: angle}
	if err := r.Err(); err != nil {
		return nil, err
	}

	e.kernel = imgproc.LineKernel(e.ksize, e.angle)
	e.base = newBase(MotionBlur, Params{"kernel_size": e.ksize, "angle": e.angle}, env)
	return e, nil
}

// motionBlur smears along a straight line at the given angle.
type motionBlur struct {
	base
	ksize  int
	angle  float64
	kernel imgproc.Kernel
}

func (e *motionBlur) Apply(f *frame.Frame) (*frame.Frame, error) {
	return perImage(f, func(img *frame.Frame) (*frame.Frame, error) {
		return imgproc.Correlate(imgproc.FromFrame(img), e.kernel).Frame(), nil
	})
}
