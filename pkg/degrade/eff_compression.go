package degrade

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"degrader/pkg/codec"
	"degrader/pkg/frame"
)

type formatSpec struct {
	video      bool
	minQ, maxQ int
	defQ       int
	defBitrate int
}

var formats = map[string]formatSpec{
	codec.JPEG:  {minQ: 1, maxQ: 100, defQ: 80},
	codec.PNG:   {minQ: 0, maxQ: 9, defQ: 3},
	codec.WebP:  {minQ: 1, maxQ: 100, defQ: 80},
	codec.H264:  {video: true, minQ: 0, maxQ: 51, defQ: 23, defBitrate: 2000},
	codec.MPEG4: {video: true, minQ: 0, maxQ: 31, defQ: 5, defBitrate: 1500},
}

func NewCompression(p Params, env Env) (Effect, error) {
	r, err := newReader(Compression, p, "format", "quality", "bitrate", "fps")
	if err != nil {
		return nil, err
	}

	e := &compression{format: r.String("format", codec.JPEG)}
	fmtDef, ok := formats[e.format]
	if !ok {
		return nil, &ParamError{
			Effect: Compression,
			Key:    "format",
			Value:  e.format,
			Reason: "unsupported, want one of jpeg, png, webp, h264, mpeg4",
		}
	}
	e.video = fmtDef.video
	e.quality = lo.Clamp(r.Int("quality", fmtDef.defQ), fmtDef.minQ, fmtDef.maxQ)

	norm := Params{"format": e.format, "quality": e.quality}
	if fmtDef.video {
		e.bitrate = lo.Clamp(r.Int("bitrate", fmtDef.defBitrate), 100, 20000)
		e.fps = r.Float("fps", 30)
		if e.fps <= 0 {
			e.fps = 30
		}
		norm["bitrate"] = e.bitrate
		norm["fps"] = e.fps
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	e.svc = env.Codec
	if e.svc == nil {
		tmp, err := codec.NewTmpFs("")
		if err != nil {
			env.logger().With(zap.Error(err)).Warn("no tmpfs for codec")
		}
		e.svc = codec.NewFFmpeg(tmp, codec.WithLogger(env.logger()))
	}

	e.base = newBase(Compression, norm, env)
	return e, nil
}

// compression round trips frames through a real codec to pick up its
// artifacts.
type compression struct {
	base
	format  string
	video   bool
	quality int
	bitrate int
	fps     float64
	svc     codec.Service
}

func (e *compression) Apply(f *frame.Frame) (*frame.Frame, error) {
	if !e.video {
		return perImage(f, e.image)
	}

	in := f.Split()
	out, err := e.svc.RoundTripVideo(in, codec.VideoOptions{
		Codec:   e.format,
		Quality: e.quality,
		Bitrate: e.bitrate,
		FPS:     e.fps,
	})
	if err != nil {
		return nil, errors.Wrap(err, "video round trip")
	}

	if len(out) != len(in) {
		e.logger.With(zap.Int("want", len(in)), zap.Int("got", len(out))).Debug("frame count drift")
	}
	if out, err = fitCount(out, len(in)); err != nil {
		return nil, err
	}

	if f.Rank() == 3 {
		return out[0], nil
	}
	return frame.Stack(out)
}

func (e *compression) image(img *frame.Frame) (*frame.Frame, error) {
	bs, err := e.svc.EncodeImage(img, e.format, e.quality)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", e.format)
	}
	if len(bs) == 0 {
		return nil, errors.Wrapf(ErrEmptyResult, "encode %s", e.format)
	}

	out, err := e.svc.DecodeImage(bs, e.format)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", e.format)
	}
	return out, nil
}

// fitCount pads by repeating the last frame or truncates so that n frames
// come back.
func fitCount(frames []*frame.Frame, n int) ([]*frame.Frame, error) {
	if len(frames) == 0 {
		return nil, errors.Wrap(ErrEmptyResult, "codec returned no frames")
	}
	if len(frames) >= n {
		return frames[:n], nil
	}

	last := frames[len(frames)-1]
	for len(frames) < n {
		frames = append(frames, last)
	}
	return frames, nil
}
