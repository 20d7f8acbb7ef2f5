package degrade

import (
	"math/rand"

	"github.com/samber/lo"

	"degrader/pkg/frame"
	"degrader/pkg/imgproc"
)

func NewScratch(p Params, env Env) (Effect, error) {
	r, err := newReader(Scratch, p, "num_scratches", "width_range", "intensity", "line_width", "brightness")
	if err != nil {
		return nil, err
	}

	e := &scratch{
		count:     max(0, r.Int("num_scratches", 10)),
		intensity: clampF(r.Float("intensity", 0.8), 0, 1),
		rnd:       env.rand(),
	}

	if r.has("line_width") {
		lw := max(1, r.Int("line_width", 1))
		e.widths = []int{lw, lw}
	} else {
		wr := r.Ints("width_range", 2, []int{1, 3})
		if wr[0] > wr[1] {
			return nil, &ParamError{Effect: Scratch, Key: "width_range", Value: wr, Reason: "want [min, max]"}
		}
		e.widths = orderedRange(wr, 1)
	}

	e.brightness = int(255 * e.intensity)
	if r.has("brightness") {
		e.brightness = lo.Clamp(r.Int("brightness", e.brightness), 0, 255)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	e.base = newBase(Scratch, Params{
		"num_scratches": e.count,
		"width_range":   append([]int(nil), e.widths...),
		"intensity":     e.intensity,
		"brightness":    e.brightness,
	}, env)
	return e, nil
}

// scratch draws random bright line segments.
type scratch struct {
	base
	count      int
	widths     []int
	intensity  float64
	brightness int
	rnd        *rand.Rand
}

func (e *scratch) Apply(f *frame.Frame) (*frame.Frame, error) {
	return perImage(f, func(img *frame.Frame) (*frame.Frame, error) {
		h, w, c := img.Height(), img.Width(), img.Channels()
		data := img.Float64s()
		v := float64(e.brightness)

		for i := 0; i < e.count; i++ {
			x1, y1 := e.rnd.Intn(w), e.rnd.Intn(h)
			x2, y2 := e.rnd.Intn(w), e.rnd.Intn(h)
			width := e.widths[0] + e.rnd.Intn(e.widths[1]-e.widths[0]+1)

			for _, p := range imgproc.LinePixels(h, w, x1, y1, x2, y2, width) {
				for ch := 0; ch < c; ch++ {
					data[p*c+ch] = v
				}
			}
		}
		return frame.FromFloat64s(data, img.Shape...), nil
	})
}
