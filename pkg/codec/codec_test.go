package codec

import (
	"image/png"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"degrader/pkg/frame"
)

func gradient(h, w int) *frame.Frame {
	f := frame.New(frame.Uint8, h, w, 3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 3
			f.U8[i] = uint8(x * 255 / w)
			f.U8[i+1] = uint8(y * 255 / h)
			f.U8[i+2] = uint8((x + y) % 256)
		}
	}
	return f
}

func TestImageRoundTrip(t *testing.T) {
	ff := NewFFmpeg(nil)
	src := gradient(24, 32)

	for _, tc := range []struct {
		format  string
		quality int
		exact   bool
	}{
		{JPEG, 10, false},
		{JPEG, 95, false},
		{PNG, 0, true},
		{PNG, 9, true},
	} {
		t.Run(tc.format, func(t *testing.T) {
			bs, err := ff.EncodeImage(src, tc.format, tc.quality)
			require.NoError(t, err)
			require.NotEmpty(t, bs)

			out, err := ff.DecodeImage(bs, tc.format)
			require.NoError(t, err)
			assert.Equal(t, src.Shape, out.Shape)
			assert.Equal(t, frame.Uint8, out.DType)
			if tc.exact {
				assert.True(t, src.Equal(out))
			}
		})
	}
}

func TestJPEGQualityMatters(t *testing.T) {
	ff := NewFFmpeg(nil)
	src := gradient(32, 32)

	low, err := ff.EncodeImage(src, JPEG, 5)
	require.NoError(t, err)
	high, err := ff.EncodeImage(src, JPEG, 100)
	require.NoError(t, err)
	assert.Less(t, len(low), len(high))
}

func TestUnsupportedFormats(t *testing.T) {
	ff := NewFFmpeg(nil)

	_, err := ff.EncodeImage(gradient(4, 4), "tiff", 1)
	assert.Error(t, err)

	_, err = ff.DecodeImage([]byte{1}, "tiff")
	assert.Error(t, err)

	_, err = ff.DecodeImage(nil, JPEG)
	assert.Error(t, err)

	_, err = ff.RoundTripVideo([]*frame.Frame{gradient(4, 4)}, VideoOptions{Codec: H264})
	assert.Error(t, err)
}

func TestPNGLevel(t *testing.T) {
	assert.Equal(t, png.NoCompression, pngLevel(0))
	assert.Equal(t, png.BestSpeed, pngLevel(3))
	assert.Equal(t, png.DefaultCompression, pngLevel(5))
	assert.Equal(t, png.BestCompression, pngLevel(9))
}

func TestEncodeArgs(t *testing.T) {
	args, err := encodeArgs(VideoOptions{Codec: H264, Quality: 40, Bitrate: 2000, FPS: 25}, 33, 20, "out.mp4")
	require.NoError(t, err)
	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "-s 33x20")
	assert.Contains(t, joined, "-crf 28")
	assert.Contains(t, joined, "-maxrate 2000k -bufsize 4000k")
	assert.Contains(t, joined, "-r 25")
	assert.Equal(t, "out.mp4", args[len(args)-1])

	args, err = encodeArgs(VideoOptions{Codec: MPEG4, Quality: 0}, 8, 8, "o.mp4")
	require.NoError(t, err)
	joined = strings.Join(args, " ")
	assert.Contains(t, joined, "-c:v mpeg4")
	assert.Contains(t, joined, "-q:v 1")
	assert.Contains(t, joined, "-r 30")
	assert.NotContains(t, joined, "-b:v")

	_, err = encodeArgs(VideoOptions{Codec: "vp9"}, 8, 8, "o.webm")
	assert.Error(t, err)
}

func TestParseProbe(t *testing.T) {
	p, err := parseProbe([]byte(`{"streams":[{"codec_name":"h264","width":640,"height":360,"r_frame_rate":"30/1","avg_frame_rate":"30000/1001","nb_frames":"90"}]}`))
	require.NoError(t, err)
	assert.Equal(t, 640, p.Width)
	assert.Equal(t, 360, p.Height)
	assert.Equal(t, 90, p.Frames)
	assert.Equal(t, "h264", p.Codec)
	assert.InDelta(t, 29.97, p.FPS, 0.01)

	_, err = parseProbe([]byte(`{"streams":[]}`))
	assert.Error(t, err)

	_, err = parseProbe([]byte(`not json`))
	assert.Error(t, err)
}

func TestParseRate(t *testing.T) {
	assert.Equal(t, 25.0, parseRate("25"))
	assert.Equal(t, 0.0, parseRate("0/0"))
	assert.Equal(t, 0.0, parseRate(""))
	assert.Equal(t, 12.5, parseRate("25/2"))
}

func TestSplitRGB24(t *testing.T) {
	data := make([]byte, 2*3*4*3+5)
	frames, err := splitRGB24(data, 4, 3)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, []int{3, 4, 3}, frames[1].Shape)

	_, err = splitRGB24(data[:10], 4, 3)
	assert.ErrorIs(t, err, ErrNoFrames)
}

func TestTmpFs(t *testing.T) {
	dir := t.TempDir()
	tmp, err := NewTmpFs(dir)
	require.NoError(t, err)

	a, b := tmp.NewFile(".mp4"), tmp.NewFile(".mp4")
	assert.NotEqual(t, a, b)
	assert.Equal(t, dir, filepath.Dir(a))
	assert.Equal(t, ".mp4", filepath.Ext(a))

	_, err = NewTmpFs(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
