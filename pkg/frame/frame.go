package frame

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

var (
	ErrRank     = errors.New("frame rank must be 3 (HxWxC) or 4 (NxHxWxC)")
	ErrChannels = errors.New("frame must have 3 color channels")
	ErrDType    = errors.New("frame dtype must be uint8, float32 or float64")
	ErrShape    = errors.New("frame shape does not match its data")
)

type DType uint8

const (
	Invalid DType = iota
	Uint8
	Float32
	Float64
)

func (d DType) String() string {
	switch d {
	case Uint8:
		return "uint8"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	}
	return fmt.Sprintf("dtype(%d)", uint8(d))
}

func (d DType) IsFloat() bool {
	return d == Float32 || d == Float64
}

// New allocates a zeroed frame of the given shape and element type.
func New(dt DType, shape ...int) *Frame {
	f := &Frame{Shape: append([]int(nil), shape...), DType: dt}
	n := f.Size()
	switch dt {
	case Uint8:
		f.U8 = make([]uint8, n)
	case Float32:
		f.F32 = make([]float32, n)
	case Float64:
		f.F64 = make([]float64, n)
	}
	return f
}

// Frame is a dense row-major array holding one image (rank 3) or a batch of
// video frames (rank 4). Exactly one of U8, F32 or F64 carries the data.
type Frame struct {
	Shape []int
	DType DType
	U8    []uint8
	F32   []float32
	F64   []float64
}

func (f *Frame) Rank() int {
	return len(f.Shape)
}

func (f *Frame) Size() int {
	if len(f.Shape) == 0 {
		return 0
	}
	n := 1
	for _, d := range f.Shape {
		n *= d
	}
	return n
}

func (f *Frame) dataLen() int {
	switch f.DType {
	case Uint8:
		return len(f.U8)
	case Float32:
		return len(f.F32)
	case Float64:
		return len(f.F64)
	}
	return -1
}

// Check enforces the frame contract: rank 3 or 4, three channels, a
// supported dtype and a backing slice that matches the shape.
func (f *Frame) Check() error {
	if f == nil {
		return errors.Wrap(ErrShape, "nil frame")
	}
	if r := f.Rank(); r != 3 && r != 4 {
		return errors.Wrapf(ErrRank, "got rank %d", r)
	}
	if c := f.Shape[len(f.Shape)-1]; c != 3 {
		return errors.Wrapf(ErrChannels, "got %d channels", c)
	}
	for _, d := range f.Shape {
		if d <= 0 {
			return errors.Wrapf(ErrShape, "non-positive dimension in %v", f.Shape)
		}
	}
	n := f.dataLen()
	if n < 0 {
		return errors.Wrapf(ErrDType, "got %s", f.DType)
	}
	if n != f.Size() {
		return errors.Wrapf(ErrShape, "shape %v wants %d elements, have %d", f.Shape, f.Size(), n)
	}
	return nil
}

// Images is the number of images held: 1 for rank 3, N for rank 4.
func (f *Frame) Images() int {
	if f.Rank() == 4 {
		return f.Shape[0]
	}
	return 1
}

func (f *Frame) Height() int {
	return f.Shape[f.Rank()-3]
}

func (f *Frame) Width() int {
	return f.Shape[f.Rank()-2]
}

func (f *Frame) Channels() int {
	return f.Shape[f.Rank()-1]
}

func (f *Frame) Clone() *Frame {
	c := &Frame{Shape: append([]int(nil), f.Shape...), DType: f.DType}
	switch f.DType {
	case Uint8:
		c.U8 = append([]uint8(nil), f.U8...)
	case Float32:
		c.F32 = append([]float32(nil), f.F32...)
	case Float64:
		c.F64 = append([]float64(nil), f.F64...)
	}
	return c
}

// Float64s returns a fresh float64 copy of the data, values unscaled.
func (f *Frame) Float64s() []float64 {
	out := make([]float64, f.Size())
	switch f.DType {
	case Uint8:
		for i, v := range f.U8 {
			out[i] = float64(v)
		}
	case Float32:
		for i, v := range f.F32 {
			out[i] = float64(v)
		}
	case Float64:
		copy(out, f.F64)
	}
	return out
}

// Max returns the largest element, used to detect [0,1] scaled float frames.
func (f *Frame) Max() float64 {
	m := math.Inf(-1)
	switch f.DType {
	case Uint8:
		for _, v := range f.U8 {
			m = math.Max(m, float64(v))
		}
	case Float32:
		for _, v := range f.F32 {
			m = math.Max(m, float64(v))
		}
	case Float64:
		for _, v := range f.F64 {
			m = math.Max(m, v)
		}
	}
	return m
}

// FromFloat64s wraps data (taking ownership) as a float64 frame.
func FromFloat64s(data []float64, shape ...int) *Frame {
	return &Frame{Shape: append([]int(nil), shape...), DType: Float64, F64: data}
}

// FromUint8s wraps data (taking ownership) as a uint8 frame.
func FromUint8s(data []uint8, shape ...int) *Frame {
	return &Frame{Shape: append([]int(nil), shape...), DType: Uint8, U8: data}
}

// ToUint8 clamps to [0,255], rounds to nearest and casts. A uint8 frame is
// returned as is.
func (f *Frame) ToUint8() *Frame {
	if f.DType == Uint8 {
		return f
	}
	out := make([]uint8, f.Size())
	switch f.DType {
	case Float32:
		for i, v := range f.F32 {
			out[i] = Clamp8(float64(v))
		}
	case Float64:
		for i, v := range f.F64 {
			out[i] = Clamp8(v)
		}
	}
	return FromUint8s(out, f.Shape...)
}

// ScaleUnitToUint8 treats a float frame as [0,1] scaled and maps it to uint8.
func (f *Frame) ScaleUnitToUint8() *Frame {
	if f.DType == Uint8 {
		return f
	}
	data := f.Float64s()
	out := make([]uint8, len(data))
	for i, v := range data {
		out[i] = Clamp8(v * 255)
	}
	return FromUint8s(out, f.Shape...)
}

func Clamp8(v float64) uint8 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}

func (f *Frame) Equal(o *Frame) bool {
	if f.DType != o.DType || len(f.Shape) != len(o.Shape) {
		return false
	}
	for i := range f.Shape {
		if f.Shape[i] != o.Shape[i] {
			return false
		}
	}
	switch f.DType {
	case Uint8:
		return string(f.U8) == string(o.U8)
	case Float32:
		for i := range f.F32 {
			if f.F32[i] != o.F32[i] {
				return false
			}
		}
		return true
	case Float64:
		for i := range f.F64 {
			if f.F64[i] != o.F64[i] {
				return false
			}
		}
		return true
	}
	return false
}

func (f *Frame) String() string {
	return fmt.Sprintf("frame%v %s", f.Shape, f.DType)
}
