package frame

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// FromImage converts any image into a rank-3 uint8 RGB frame. Alpha is
// dropped after imaging normalises the source to non-premultiplied RGBA.
func FromImage(src image.Image) *Frame {
	nrgba := imaging.Clone(src)
	b := nrgba.Bounds()
	w, h := b.Dx(), b.Dy()

	f := New(Uint8, h, w, 3)
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
		dst := f.U8[y*w*3 : (y+1)*w*3]
		for x := 0; x < w; x++ {
			dst[x*3] = row[x*4]
			dst[x*3+1] = row[x*4+1]
			dst[x*3+2] = row[x*4+2]
		}
	}
	return f
}

// Image renders a rank-3 frame as an opaque NRGBA image. Float frames go
// through ToUint8 first.
func (f *Frame) Image() (*image.NRGBA, error) {
	if f.Rank() != 3 {
		return nil, errors.Wrapf(ErrRank, "image wants rank 3, got %d", f.Rank())
	}
	if f.Channels() != 3 {
		return nil, errors.Wrapf(ErrChannels, "got %d channels", f.Channels())
	}

	u := f.ToUint8()
	h, w := u.Height(), u.Width()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		src := u.U8[y*w*3 : (y+1)*w*3]
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for x := 0; x < w; x++ {
			row[x*4] = src[x*3]
			row[x*4+1] = src[x*3+1]
			row[x*4+2] = src[x*3+2]
			row[x*4+3] = 0xFF
		}
	}
	return dst, nil
}

// FromRGB24 wraps packed rgb24 bytes (as produced by ffmpeg rawvideo) as a
// rank-3 frame without copying.
func FromRGB24(data []byte, w, h int) (*Frame, error) {
	if len(data) != w*h*3 {
		return nil, errors.Wrapf(ErrShape, "rgb24 %dx%d wants %d bytes, have %d", w, h, w*h*3, len(data))
	}
	return FromUint8s(data, h, w, 3), nil
}
