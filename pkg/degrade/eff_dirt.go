package degrade

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/samber/lo"

	"degrader/pkg/frame"
	"degrader/pkg/imgproc"
)

// DirtPalette names the spot colors accepted by dirt.
var DirtPalette = map[string][3]int{
	"black":      {0, 0, 0},
	"brown":      {70, 40, 10},
	"gray":       {100, 100, 100},
	"dark_brown": {40, 20, 5},
}

func NewDirt(p Params, env Env) (Effect, error) {
	r, err := newReader(Dirt, p, "num_spots", "size_range", "darkness", "spot_size", "spot_color")
	if err != nil {
		return nil, err
	}

	e := &dirt{
		count:    max(0, r.Int("num_spots", 5)),
		darkness: clampF(r.Float("darkness", 0.6), 0, 1),
		rnd:      env.rand(),
	}

	if r.has("spot_size") {
		s := max(1, r.Int("spot_size", 1))
		e.sizes = []int{s, s}
	} else {
		sr := r.Ints("size_range", 2, []int{5, 20})
		if sr[0] > sr[1] {
			return nil, &ParamError{Effect: Dirt, Key: "size_range", Value: sr, Reason: "want [min, max]"}
		}
		e.sizes = orderedRange(sr, 1)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	if e.color, err = spotColor(p["spot_color"]); err != nil {
		return nil, err
	}

	e.base = newBase(Dirt, Params{
		"num_spots":  e.count,
		"size_range": append([]int(nil), e.sizes...),
		"darkness":   e.darkness,
		"spot_color": []int{e.color[0], e.color[1], e.color[2]},
	}, env)
	return e, nil
}

func spotColor(v any) ([3]int, error) {
	fail := func(reason string) ([3]int, error) {
		return [3]int{}, &ParamError{Effect: Dirt, Key: "spot_color", Value: v, Reason: reason}
	}

	if v == nil {
		return DirtPalette["black"], nil
	}
	if s, ok := v.(string); ok {
		if c, ok := DirtPalette[strings.ToLower(strings.TrimSpace(s))]; ok {
			return c, nil
		}
		if g, ok := toFloat(s); ok {
			v = g
		} else {
			return fail("unknown color, want one of black, brown, gray, dark_brown")
		}
	}
	if g, ok := toFloat(v); ok {
		c := lo.Clamp(int(g), 0, 255)
		return [3]int{c, c, c}, nil
	}

	items, ok := toSlice(v)
	if !ok {
		return fail("want a color name, a gray level or an RGB triple")
	}
	if len(items) != 3 {
		return fail("RGB triple needs 3 items")
	}
	var out [3]int
	for i, it := range items {
		f, ok := toFloat(it)
		if !ok {
			return fail(fmt.Sprintf("item %d is not a number", i))
		}
		out[i] = lo.Clamp(int(f), 0, 255)
	}
	return out, nil
}

// dirt alpha blends random filled circles.
type dirt struct {
	base
	count    int
	sizes    []int
	darkness float64
	color    [3]int
	rnd      *rand.Rand
}

func (e *dirt) Apply(f *frame.Frame) (*frame.Frame, error) {
	return perImage(f, func(img *frame.Frame) (*frame.Frame, error) {
		h, w, c := img.Height(), img.Width(), img.Channels()
		data := img.Float64s()
		a := e.darkness

		for i := 0; i < e.count; i++ {
			x, y := e.rnd.Intn(w), e.rnd.Intn(h)
			size := e.sizes[0] + e.rnd.Intn(e.sizes[1]-e.sizes[0]+1)

			for _, p := range imgproc.DiscPixels(h, w, x, y, size) {
				for ch := 0; ch < c; ch++ {
					data[p*c+ch] = float64(e.color[ch])*a + data[p*c+ch]*(1-a)
				}
			}
		}
		return frame.FromFloat64s(data, img.Shape...), nil
	})
}
