package imgproc

import (
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"degrader/pkg/frame"
)

type Interpolation string

const (
	Bilinear Interpolation = "bilinear"
	Nearest  Interpolation = "nearest"
	Bicubic  Interpolation = "bicubic"
	Area     Interpolation = "area"
)

var filters = map[Interpolation]imaging.ResampleFilter{
	Bilinear: imaging.Linear,
	Nearest:  imaging.NearestNeighbor,
	Bicubic:  imaging.CatmullRom,
	Area:     imaging.Box,
}

func Interpolations() []Interpolation {
	return []Interpolation{Bilinear, Nearest, Bicubic, Area}
}

func (i Interpolation) Valid() bool {
	_, ok := filters[i]
	return ok
}

// Resize scales a rank-3 frame to w x h with the given interpolation. The
// result is always uint8.
func Resize(f *frame.Frame, w, h int, interp Interpolation) (*frame.Frame, error) {
	filter, ok := filters[interp]
	if !ok {
		return nil, errors.Errorf("unsupported interpolation %q", interp)
	}

	img, err := f.Image()
	if err != nil {
		return nil, err
	}

	return frame.FromImage(imaging.Resize(img, w, h, filter)), nil
}

// ResizeNearestFloor is nearest neighbour with top-left sampling
// (src = floor(dst*scale)), which keeps block edges hard when scaling down
// and back up.
func ResizeNearestFloor(f *frame.Frame, w, h int) (*frame.Frame, error) {
	if f.Rank() != 3 {
		return nil, errors.Wrapf(frame.ErrRank, "resize wants rank 3, got %d", f.Rank())
	}

	sh, sw, c := f.Height(), f.Width(), f.Channels()
	out := frame.New(f.DType, h, w, c)
	for y := 0; y < h; y++ {
		sy := min(y*sh/h, sh-1)
		for x := 0; x < w; x++ {
			sx := min(x*sw/w, sw-1)
			di, si := (y*w+x)*c, (sy*sw+sx)*c
			switch f.DType {
			case frame.Uint8:
				copy(out.U8[di:di+c], f.U8[si:si+c])
			case frame.Float32:
				copy(out.F32[di:di+c], f.F32[si:si+c])
			case frame.Float64:
				copy(out.F64[di:di+c], f.F64[si:si+c])
			}
		}
	}
	return out, nil
}

// FromFrame loads a rank-3 frame into a float buffer.
func FromFrame(f *frame.Frame) *Buffer {
	return &Buffer{H: f.Height(), W: f.Width(), C: f.Channels(), Pix: f.Float64s()}
}

// Frame wraps the buffer as a float64 frame without copying.
func (b *Buffer) Frame() *frame.Frame {
	return frame.FromFloat64s(b.Pix, b.H, b.W, b.C)
}
