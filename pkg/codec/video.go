package codec

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"degrader/pkg/frame"
)

// crf for h264 is kept inside the visually sane 18-28 window.
func crf(q int) int {
	return lo.Clamp(q, 18, 28)
}

func encodeArgs(opts VideoOptions, w, h int, out string) ([]string, error) {
	fps := fmtFPS(opts.FPS)
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-f", "rawvideo", "-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%dx%d", w, h),
		"-r", fps,
		"-i", "pipe:0",
		// yuv420p needs even dimensions
		"-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2",
	}

	switch opts.Codec {
	case H264, "":
		args = append(args,
			"-c:v", "libx264",
			"-preset", "medium",
			"-profile:v", "baseline",
			"-level", "3.1",
			"-pix_fmt", "yuv420p",
			"-crf", strconv.Itoa(crf(opts.Quality)),
		)
		if opts.Bitrate > 0 {
			args = append(args,
				"-maxrate", fmt.Sprintf("%dk", opts.Bitrate),
				"-bufsize", fmt.Sprintf("%dk", opts.Bitrate*2),
			)
		}
	case MPEG4:
		args = append(args,
			"-c:v", "mpeg4",
			"-pix_fmt", "yuv420p",
			"-q:v", strconv.Itoa(lo.Clamp(opts.Quality, 1, 31)),
		)
		if opts.Bitrate > 0 {
			args = append(args, "-b:v", fmt.Sprintf("%dk", opts.Bitrate))
		}
	default:
		return nil, errors.Errorf("unsupported video codec %q", opts.Codec)
	}

	return append(args, "-movflags", "+faststart", "-r", fps, out), nil
}

func rawReader(frames []*frame.Frame) (io.Reader, int, int, error) {
	if len(frames) == 0 {
		return nil, 0, 0, errors.New("no frames to encode")
	}

	h, w := frames[0].Height(), frames[0].Width()
	readers := make([]io.Reader, 0, len(frames))
	for i, f := range frames {
		if f.Rank() != 3 || f.Height() != h || f.Width() != w {
			return nil, 0, 0, errors.Wrapf(frame.ErrShape, "frame %d is %v, want %dx%dx3", i, f.Shape, h, w)
		}
		readers = append(readers, bytes.NewReader(f.ToUint8().U8))
	}
	return io.MultiReader(readers...), w, h, nil
}

// EncodeVideo writes frames to path as an mp4 clip.
func (f *FFmpeg) EncodeVideo(frames []*frame.Frame, path string, opts VideoOptions) error {
	r, w, h, err := rawReader(frames)
	if err != nil {
		return err
	}

	args, err := encodeArgs(opts, w, h, path)
	if err != nil {
		return err
	}

	if _, err := f.run(f.bin, r, args...); err != nil {
		return err
	}

	f.logger.With(zap.String("dst", path), zap.Int("frames", len(frames)), zap.String("codec", opts.Codec)).Debug("video encoded")
	return nil
}

// decodeVideo reads every frame of path, cropped to w x h.
func (f *FFmpeg) decodeVideo(path string, w, h int) ([]*frame.Frame, error) {
	out, err := f.run(f.bin, nil,
		"-hide_banner", "-loglevel", "error",
		"-i", path,
		"-vf", fmt.Sprintf("crop=%d:%d:0:0", w, h),
		"-f", "rawvideo", "-pix_fmt", "rgb24",
		"pipe:1",
	)
	if err != nil {
		return nil, err
	}

	return splitRGB24(out, w, h)
}

// DecodeVideo reads every frame of a video file along with its probe data.
func (f *FFmpeg) DecodeVideo(path string) ([]*frame.Frame, *Probe, error) {
	p, err := f.Probe(path)
	if err != nil {
		return nil, nil, err
	}

	frames, err := f.decodeVideo(path, p.Width, p.Height)
	if err != nil {
		return nil, nil, err
	}

	return frames, p, nil
}

func (f *FFmpeg) RoundTripVideo(frames []*frame.Frame, opts VideoOptions) ([]*frame.Frame, error) {
	if f.tmpfs == nil {
		return nil, errors.New("no tmpfs supported")
	}

	tmp := f.tmpfs.NewFile(".mp4")
	defer f.tmpfs.Remove(tmp)

	if err := f.EncodeVideo(frames, tmp, opts); err != nil {
		return nil, errors.Wrap(err, "video encode")
	}

	out, err := f.decodeVideo(tmp, frames[0].Width(), frames[0].Height())
	if err != nil {
		return nil, errors.Wrap(err, "video decode")
	}

	f.logger.With(zap.Int("in", len(frames)), zap.Int("out", len(out))).Debug("video round trip")
	return out, nil
}

func splitRGB24(data []byte, w, h int) ([]*frame.Frame, error) {
	step := w * h * 3
	if step == 0 {
		return nil, errors.Wrapf(frame.ErrShape, "zero sized video %dx%d", w, h)
	}

	n := len(data) / step
	if n == 0 {
		return nil, ErrNoFrames
	}

	frames := make([]*frame.Frame, n)
	for i := range frames {
		f, err := frame.FromRGB24(data[i*step:(i+1)*step:(i+1)*step], w, h)
		if err != nil {
			return nil, err
		}
		frames[i] = f
	}
	return frames, nil
}
