package degrade

import (
	"math"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"degrader/pkg/frame"
	"degrader/pkg/imgproc"
)

const (
	BlurGaussian = "gaussian"
	BlurMean     = "mean"
)

func NewBlur(p Params, env Env) (Effect, error) {
	r, err := newReader(Blur, p, "blur_type", "kernel_size", "sigma")
	if err != nil {
		return nil, err
	}

	e := &blur{
		kind:  r.String("blur_type", BlurGaussian),
		ksize: oddKernel(r.Int("kernel_size", 5)),
		sigma: math.Max(0.1, r.Float("sigma", 1.0)),
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	if e.kind != BlurGaussian && e.kind != BlurMean {
		env.logger().With(zap.String("blur_type", e.kind)).Warn("unsupported blur type, using gaussian")
		e.kind = BlurGaussian
	}

	norm := Params{"blur_type": e.kind, "kernel_size": e.ksize}
	if e.kind == BlurGaussian {
		norm["sigma"] = e.sigma
	}
	e.base = newBase(Blur, norm, env)

	return e, nil
}

// blur convolves with a gaussian or box kernel.
type blur struct {
	base
	kind  string
	ksize int
	sigma float64
}

func (e *blur) Apply(f *frame.Frame) (*frame.Frame, error) {
	k := lo.Ternary(e.kind == BlurMean, imgproc.BoxKernel(e.ksize), imgproc.GaussianKernel(e.ksize, e.sigma))

	return perImage(f, func(img *frame.Frame) (*frame.Frame, error) {
		return imgproc.SeparableCorrelate(imgproc.FromFrame(img), k, k).Frame(), nil
	})
}
