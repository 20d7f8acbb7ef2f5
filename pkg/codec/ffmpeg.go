package codec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const DefaultTimeout = 5 * time.Minute

func NewFFmpeg(tmp *TmpFs, opts ...Option) *FFmpeg {
	f := &FFmpeg{
		bin:     "ffmpeg",
		probe:   "ffprobe",
		timeout: DefaultTimeout,
		tmpfs:   tmp,
		logger:  zap.NewNop(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// FFmpeg runs every encode and decode as a subprocess bounded by a timeout.
// JPEG and PNG stay in process.
type FFmpeg struct {
	bin     string
	probe   string
	timeout time.Duration
	tmpfs   *TmpFs
	logger  *zap.Logger
}

type Option func(f *FFmpeg)

func WithBinary(bin string) Option {
	return func(f *FFmpeg) {
		if bin != "" {
			f.bin = bin
		}
	}
}

func WithProbe(bin string) Option {
	return func(f *FFmpeg) {
		if bin != "" {
			f.probe = bin
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(f *FFmpeg) {
		if d > 0 {
			f.timeout = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(f *FFmpeg) {
		if l != nil {
			f.logger = l
		}
	}
}

func (f *FFmpeg) run(bin string, stdin io.Reader, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = stdin

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		f.logger.With(zap.String("exec", cmd.String()), zap.Error(err)).Info("failed")
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Errorf("%s timed out after %s", bin, f.timeout)
		}
		return nil, errors.Errorf("%s failed: %v\nOutput: %s", bin, err, strings.TrimSpace(stderr.String()))
	}

	f.logger.With(zap.String("exec", bin), zap.Duration("took", time.Since(start))).Debug("executed")
	return stdout.Bytes(), nil
}

type Probe struct {
	Width  int
	Height int
	FPS    float64
	Frames int
	Codec  string
}

type probeOutput struct {
	Streams []struct {
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
		NbFrames     string `json:"nb_frames"`
	} `json:"streams"`
}

// Probe reads the first video stream of a file.
func (f *FFmpeg) Probe(path string) (*Probe, error) {
	out, err := f.run(f.probe, nil,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=codec_name,width,height,r_frame_rate,avg_frame_rate,nb_frames",
		"-of", "json",
		path,
	)
	if err != nil {
		return nil, err
	}

	return parseProbe(out)
}

func parseProbe(out []byte) (*Probe, error) {
	var po probeOutput
	if err := json.Unmarshal(out, &po); err != nil {
		return nil, errors.Wrap(err, "parse ffprobe output")
	}
	if len(po.Streams) == 0 {
		return nil, errors.New("no video stream found")
	}

	s := po.Streams[0]
	p := &Probe{Width: s.Width, Height: s.Height, Codec: s.CodecName}
	p.FPS = parseRate(s.AvgFrameRate)
	if p.FPS == 0 {
		p.FPS = parseRate(s.RFrameRate)
	}
	p.Frames, _ = strconv.Atoi(s.NbFrames)

	return p, nil
}

// parseRate reads ffprobe rationals like "30000/1001".
func parseRate(s string) float64 {
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

func fmtFPS(fps float64) string {
	if fps <= 0 {
		fps = 30
	}
	return fmt.Sprintf("%g", fps)
}
