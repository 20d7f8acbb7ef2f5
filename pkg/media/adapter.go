package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/go-resty/resty/v2"
	"github.com/inhies/go-bytesize"
	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/image/webp"

	"degrader/pkg/codec"
	"degrader/pkg/frame"
)

// VideoCodec reads and writes whole clips through real files.
type VideoCodec interface {
	DecodeVideo(path string) ([]*frame.Frame, *codec.Probe, error)
	EncodeVideo(frames []*frame.Frame, path string, opts codec.VideoOptions) error
}

type Config struct {
	// OutputDir receives processed files, created when missing.
	OutputDir string
	// TmpDir holds scratch files for the video codec, system temp when empty.
	TmpDir string
}

func newFs(path string) (afero.Fs, error) {
	fs := afero.NewOsFs()
	if err := fs.MkdirAll(path, 0755); err != nil {
		return nil, err
	}
	return afero.NewBasePathFs(fs, path), nil
}

func NewAdapter(cfg Config, video VideoCodec, opts ...Option) (*Adapter, error) {
	a := &Adapter{
		outDir: cfg.OutputDir,
		in:     afero.NewOsFs(),
		video:  video,
		cli:    resty.New(),
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.out == nil {
		if cfg.OutputDir == "" {
			return nil, errors.New("no output dir")
		}
		fs, err := newFs(cfg.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("create output fs failed: %w", err)
		}
		a.out = fs
	}

	if a.tmp == nil {
		tmp, err := codec.NewTmpFs(cfg.TmpDir)
		if err != nil {
			return nil, err
		}
		a.tmp = tmp
	}

	return a, nil
}

// Adapter loads media into frames and persists processed frames.
type Adapter struct {
	outDir string
	in     afero.Fs
	out    afero.Fs
	tmp    *codec.TmpFs
	video  VideoCodec
	cli    *resty.Client
	logger *zap.Logger
}

// Load reads src, a path on the input fs or an http(s) URL. An unknown
// media type is detected from the extension.
func (a *Adapter) Load(ctx context.Context, src string, mt frame.MediaType) ([]*frame.Frame, *Metadata, error) {
	if mt == frame.MediaUnknown {
		var err error
		if mt, err = Detect(src); err != nil {
			return nil, nil, err
		}
	}

	bs, err := a.read(ctx, src)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "read %s", src)
	}
	if len(bs) == 0 {
		return nil, nil, errors.Errorf("read %s: empty file", src)
	}

	meta := &Metadata{
		Path:      src,
		MediaType: mt,
		Format:    strings.TrimPrefix(Ext(src), "."),
		Size:      bytesize.New(float64(len(bs))),
	}

	var frames []*frame.Frame
	switch mt {
	case frame.MediaImage:
		frames, err = a.loadImage(bs, Ext(src), meta)
	case frame.MediaVideo:
		frames, err = a.loadVideo(bs, Ext(src), meta)
	default:
		err = errors.Wrapf(ErrUnsupported, "media type %q", mt)
	}
	if err != nil {
		return nil, nil, errors.Wrapf(err, "load %s", src)
	}

	a.logger.With(zap.String("src", src), zap.Stringer("meta", meta)).Debug("media loaded")
	return frames, meta, nil
}

func (a *Adapter) read(ctx context.Context, src string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !IsRemote(src) {
		return afero.ReadFile(a.in, src)
	}

	resp, err := a.cli.R().SetContext(ctx).Get(src)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, errors.Errorf("http status %s", resp.Status())
	}
	return resp.Body(), nil
}

func (a *Adapter) loadImage(bs []byte, ext string, meta *Metadata) ([]*frame.Frame, error) {
	var (
		img image.Image
		err error
	)
	if ext == ".webp" {
		img, err = webp.Decode(bytes.NewReader(bs))
	} else {
		img, err = imaging.Decode(bytes.NewReader(bs), imaging.AutoOrientation(true))
	}
	if err != nil {
		return nil, errors.Wrap(err, "decode image")
	}

	f := frame.FromImage(img)
	meta.Width, meta.Height, meta.Frames = f.Width(), f.Height(), 1
	return []*frame.Frame{f}, nil
}

func (a *Adapter) loadVideo(bs []byte, ext string, meta *Metadata) ([]*frame.Frame, error) {
	if a.video == nil {
		return nil, errors.New("no video codec")
	}

	tmp := a.tmp.NewFile(ext)
	defer a.tmp.Remove(tmp)
	if err := afero.WriteFile(afero.NewOsFs(), tmp, bs, 0644); err != nil {
		return nil, err
	}

	frames, probe, err := a.video.DecodeVideo(tmp)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, codec.ErrNoFrames
	}

	meta.Width, meta.Height = probe.Width, probe.Height
	meta.Frames, meta.FPS, meta.Codec = len(frames), probe.FPS, probe.Codec
	return frames, nil
}

// Output describes where and how processed frames are saved.
type Output struct {
	// Source names the input, its stem and extension shape the output name.
	Source    string
	MediaType frame.MediaType
	// Tag marks the processing, e.g. the effect name or "composite".
	Tag string
	FPS float64
}

// OutputName builds {stem}_{tag}_{id}{ext}.
func OutputName(src, tag, ext string) string {
	return fmt.Sprintf("%s_%s_%s%s", Stem(src), tag, xid.New().String(), ext)
}

// Save writes frames to the output fs. The returned metadata carries the
// path under the output dir.
func (a *Adapter) Save(ctx context.Context, frames []*frame.Frame, o Output) (*Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, codec.ErrNoFrames
	}

	var (
		name string
		bs   []byte
		err  error
	)
	switch o.MediaType {
	case frame.MediaImage:
		name, bs, err = a.encodeImage(frames, o)
	case frame.MediaVideo:
		name, bs, err = a.encodeVideo(frames, o)
	default:
		err = errors.Wrapf(ErrUnsupported, "media type %q", o.MediaType)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "save %s", o.Source)
	}

	if err := afero.WriteFile(a.out, name, bs, 0644); err != nil {
		return nil, err
	}

	first := frames[0]
	meta := &Metadata{
		Path:      filepath.Join(a.outDir, name),
		MediaType: o.MediaType,
		Format:    strings.TrimPrefix(filepath.Ext(name), "."),
		Width:     first.Width(),
		Height:    first.Height(),
		Frames:    len(frames),
		FPS:       lo.Ternary(o.MediaType == frame.MediaVideo, o.FPS, 0),
		Size:      bytesize.New(float64(len(bs))),
	}

	a.logger.With(zap.String("path", meta.Path), zap.Stringer("size", meta.Size)).Info("media saved")
	return meta, nil
}

func (a *Adapter) encodeImage(frames []*frame.Frame, o Output) (string, []byte, error) {
	if len(frames) != 1 {
		return "", nil, errors.Errorf("image wants 1 frame, got %d", len(frames))
	}

	ext := Ext(o.Source)
	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		// formats imaging cannot write fall back to png
		ext, format = ".png", imaging.PNG
	}

	img, err := frames[0].Image()
	if err != nil {
		return "", nil, err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(95)); err != nil {
		return "", nil, err
	}
	return OutputName(o.Source, o.Tag, ext), buf.Bytes(), nil
}

func (a *Adapter) encodeVideo(frames []*frame.Frame, o Output) (string, []byte, error) {
	if a.video == nil {
		return "", nil, errors.New("no video codec")
	}

	tmp := a.tmp.NewFile(".mp4")
	defer a.tmp.Remove(tmp)

	err := a.video.EncodeVideo(frames, tmp, codec.VideoOptions{Codec: codec.H264, Quality: 23, FPS: o.FPS})
	if err != nil {
		return "", nil, err
	}

	bs, err := afero.ReadFile(afero.NewOsFs(), tmp)
	if err != nil {
		return "", nil, err
	}
	return OutputName(o.Source, o.Tag, ".mp4"), bs, nil
}
