package degrade

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"degrader/pkg/frame"
)

const (
	NoiseGaussian   = "gaussian"
	NoisePoisson    = "poisson"
	NoiseSaltPepper = "salt_pepper"
)

func NewNoise(p Params, env Env) (Effect, error) {
	r, err := newReader(Noise, p, "noise_type", "intensity", "density", "salt_ratio", "salt_pepper_ratio")
	if err != nil {
		return nil, err
	}

	e := &noise{kind: r.String("noise_type", NoiseGaussian), rnd: env.rand()}
	switch e.kind {
	case NoiseGaussian, NoisePoisson:
		e.intensity = clampF(r.Float("intensity", 5), 0.01, 30)
	case NoiseSaltPepper:
		e.intensity = clampF(r.Float("intensity", 1), 0.01, 1)

		density := r.Float("density", 0.05)
		if density > 1 {
			density /= 100
		}
		e.density = clampF(density, 0.01, 0.2)

		ratio := r.Float("salt_pepper_ratio", 0.5)
		ratio = r.Float("salt_ratio", ratio)
		e.saltRatio = clampF(ratio, 0.1, 0.9)
	default:
		return nil, &ParamError{
			Effect: Noise,
			Key:    "noise_type",
			Value:  e.kind,
			Reason: "unsupported, want one of gaussian, poisson, salt_pepper",
		}
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	norm := Params{"noise_type": e.kind, "intensity": e.intensity}
	if e.kind == NoiseSaltPepper {
		norm["density"] = e.density
		norm["salt_ratio"] = e.saltRatio
	}
	e.base = newBase(Noise, norm, env)

	return e, nil
}

// noise adds gaussian, brightness dependent poisson or salt and pepper
// noise.
type noise struct {
	base
	kind      string
	intensity float64
	density   float64
	saltRatio float64
	rnd       *rand.Rand
}

func (e *noise) Apply(f *frame.Frame) (*frame.Frame, error) {
	return perImage(f, func(img *frame.Frame) (*frame.Frame, error) {
		data := img.Float64s()
		switch e.kind {
		case NoiseGaussian:
			for i := range data {
				data[i] += e.rnd.NormFloat64() * e.intensity
			}
		case NoisePoisson:
			for i, v := range data {
				lam := math.Max(0, v) / 255 * e.intensity
				data[i] = float64(poisson(e.rnd, lam)) / e.intensity * 255
			}
		case NoiseSaltPepper:
			e.saltPepper(data, img.Height(), img.Width(), img.Channels())
		}
		return frame.FromFloat64s(data, img.Shape...), nil
	})
}

func (e *noise) saltPepper(data []float64, h, w, c int) {
	total := int(float64(h*w) * e.density)
	salt := int(float64(total) * e.saltRatio)

	paint := func(n int, v float64) {
		for i := 0; i < n; i++ {
			p := (e.rnd.Intn(h)*w + e.rnd.Intn(w)) * c
			for ch := 0; ch < c; ch++ {
				data[p+ch] = v
			}
		}
	}
	paint(salt, 255*e.intensity)
	paint(total-salt, 0)
}

// rngSource feeds an effect's seeded generator to gonum distributions.
type rngSource struct {
	rnd *rand.Rand
}

func (s rngSource) Uint64() uint64 {
	return s.rnd.Uint64()
}

func (s rngSource) Seed(seed uint64) {
	s.rnd.Seed(int64(seed))
}

func poisson(rnd *rand.Rand, lam float64) int {
	if lam <= 0 {
		return 0
	}
	return int(distuv.Poisson{Lambda: lam, Src: rngSource{rnd}}.Rand())
}
