package frame

import (
	"github.com/pkg/errors"
)

// Split returns the images of f as rank-3 frames. For a rank-4 frame the
// results share storage with f, callers must treat them as read-only.
func (f *Frame) Split() []*Frame {
	if f.Rank() == 3 {
		return []*Frame{f}
	}

	n, h, w, c := f.Shape[0], f.Shape[1], f.Shape[2], f.Shape[3]
	step := h * w * c
	out := make([]*Frame, n)
	for i := 0; i < n; i++ {
		img := &Frame{Shape: []int{h, w, c}, DType: f.DType}
		lo, hi := i*step, (i+1)*step
		switch f.DType {
		case Uint8:
			img.U8 = f.U8[lo:hi:hi]
		case Float32:
			img.F32 = f.F32[lo:hi:hi]
		case Float64:
			img.F64 = f.F64[lo:hi:hi]
		}
		out[i] = img
	}
	return out
}

// Stack joins equally shaped rank-3 frames into one rank-4 batch. Frames of
// mixed dtype are promoted to float64.
func Stack(frames []*Frame) (*Frame, error) {
	if len(frames) == 0 {
		return nil, errors.New("stack of zero frames")
	}

	first := frames[0]
	if first.Rank() != 3 {
		return nil, errors.Wrapf(ErrRank, "stack wants rank 3 frames, got %d", first.Rank())
	}

	dt := first.DType
	for i, f := range frames {
		if f.Rank() != 3 || f.Shape[0] != first.Shape[0] || f.Shape[1] != first.Shape[1] || f.Shape[2] != first.Shape[2] {
			return nil, errors.Wrapf(ErrShape, "frame %d has shape %v, want %v", i, f.Shape, first.Shape)
		}
		if f.DType != dt {
			dt = Float64
		}
	}

	shape := append([]int{len(frames)}, first.Shape...)
	out := New(dt, shape...)
	step := first.Size()
	for i, f := range frames {
		lo := i * step
		switch dt {
		case Uint8:
			copy(out.U8[lo:], f.U8)
		case Float32:
			copy(out.F32[lo:], f.F32)
		case Float64:
			copy(out.F64[lo:], f.Float64s())
		}
	}
	return out, nil
}
