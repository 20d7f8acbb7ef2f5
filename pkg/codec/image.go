package codec

import (
	"bytes"
	"image/png"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"golang.org/x/image/webp"

	"degrader/pkg/frame"
)

// pngLevel maps the 0-9 zlib style level onto the four encoder presets.
func pngLevel(q int) png.CompressionLevel {
	switch {
	case q <= 0:
		return png.NoCompression
	case q <= 3:
		return png.BestSpeed
	case q <= 6:
		return png.DefaultCompression
	default:
		return png.BestCompression
	}
}

func (f *FFmpeg) EncodeImage(img *frame.Frame, format string, quality int) ([]byte, error) {
	nrgba, err := img.Image()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch format {
	case JPEG:
		err = imaging.Encode(&buf, nrgba, imaging.JPEG, imaging.JPEGQuality(quality))
	case PNG:
		err = imaging.Encode(&buf, nrgba, imaging.PNG, imaging.PNGCompressionLevel(pngLevel(quality)))
	case WebP:
		if err = imaging.Encode(&buf, nrgba, imaging.PNG, imaging.PNGCompressionLevel(png.BestSpeed)); err != nil {
			break
		}
		return f.run(f.bin, &buf,
			"-hide_banner", "-loglevel", "error",
			"-f", "png_pipe", "-i", "pipe:0",
			"-c:v", "libwebp", "-quality", strconv.Itoa(quality),
			"-f", "webp", "pipe:1",
		)
	default:
		return nil, errors.Errorf("unsupported image format %q", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", format)
	}

	return buf.Bytes(), nil
}

func (f *FFmpeg) DecodeImage(data []byte, format string) (*frame.Frame, error) {
	if len(data) == 0 {
		return nil, errors.Errorf("empty %s payload", format)
	}

	switch format {
	case JPEG, PNG:
		img, err := imaging.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrapf(err, "decode %s", format)
		}
		return frame.FromImage(img), nil
	case WebP:
		img, err := webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrap(err, "decode webp")
		}
		return frame.FromImage(img), nil
	}
	return nil, errors.Errorf("unsupported image format %q", format)
}
