package codec

import (
	"github.com/pkg/errors"

	"degrader/pkg/frame"
)

const (
	JPEG  = "jpeg"
	PNG   = "png"
	WebP  = "webp"
	H264  = "h264"
	MPEG4 = "mpeg4"
)

var ErrNoFrames = errors.New("codec produced no frames")

// Service encodes and decodes frames. Compression uses it for the round trip
// that introduces codec loss.
type Service interface {
	EncodeImage(img *frame.Frame, format string, quality int) ([]byte, error)
	DecodeImage(data []byte, format string) (*frame.Frame, error)
	// RoundTripVideo encodes frames as one clip and decodes it again. The
	// result may hold a different number of frames than the input.
	RoundTripVideo(frames []*frame.Frame, opts VideoOptions) ([]*frame.Frame, error)
}

type VideoOptions struct {
	Codec   string
	Quality int
	Bitrate int
	FPS     float64
}

func IsImageFormat(f string) bool {
	return f == JPEG || f == PNG || f == WebP
}

func IsVideoFormat(f string) bool {
	return f == H264 || f == MPEG4
}
