package degrade

import (
	"degrader/pkg/frame"
	"degrader/pkg/imgproc"
)

const (
	cannyLow       = 50
	cannyHigh      = 150
	edgeBlurSigma  = 1.5
	defaultEdgeKer = 3
)

func NewEdgeArtifact(p Params, env Env) (Effect, error) {
	r, err := newReader(EdgeArtifact, p, "strength", "kernel_size")
	if err != nil {
		return nil, err
	}

	e := &edgeArtifact{strength: clampF(r.Float("strength", 0.5), 0, 1)}
	k := r.Int("kernel_size", defaultEdgeKer)
	if k <= 0 {
		k = defaultEdgeKer
	}
	e.ksize = oddKernel(k)
	if err := r.Err(); err != nil {
		return nil, err
	}

	e.base = newBase(EdgeArtifact, Params{"strength": e.strength, "kernel_size": e.ksize}, env)
	return e, nil
}

// edgeArtifact boosts high frequencies along detected edges, the ringing
// left behind by oversharpening.
type edgeArtifact struct {
	base
	strength float64
	ksize    int
}

func (e *edgeArtifact) Apply(f *frame.Frame) (*frame.Frame, error) {
	return perImage(f, func(img *frame.Frame) (*frame.Frame, error) {
		src := imgproc.FromFrame(img)
		edges := imgproc.Canny(imgproc.Gray(src), src.H, src.W, cannyLow, cannyHigh)
		blurred := imgproc.GaussianBlur(src, e.ksize, edgeBlurSigma)

		out := imgproc.NewBuffer(src.H, src.W, src.C)
		for i, v := range src.Pix {
			m := edges[i/src.C]
			out.Pix[i] = v + (v-blurred.Pix[i])*e.strength*m
		}
		return out.Frame(), nil
	})
}
