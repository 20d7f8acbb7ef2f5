package runner

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"degrader/pkg/degrade"
	"degrader/pkg/frame"
	"degrader/pkg/media"
	"degrader/pkg/pipeline"
)

// Store loads sources and persists results; media.Adapter is the real one.
type Store interface {
	Load(ctx context.Context, src string, mt frame.MediaType) ([]*frame.Frame, *media.Metadata, error)
	Save(ctx context.Context, frames []*frame.Frame, o media.Output) (*media.Metadata, error)
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Request is one media item with the configs to run on it. One config
// makes a single-effect request, two or three a composite one.
type Request struct {
	Source    string            `json:"source" yaml:"source"`
	MediaType frame.MediaType   `json:"media_type,omitempty" yaml:"media_type,omitempty"`
	Configs   []pipeline.Config `json:"configs" yaml:"configs"`
}

func (r Request) Tag() string {
	if len(r.Configs) == 1 {
		return r.Configs[0].Name
	}
	return pipeline.Composite
}

type Result struct {
	Status    string           `json:"status"`
	Source    string           `json:"source"`
	Original  *media.Metadata  `json:"original,omitempty"`
	Processed *media.Metadata  `json:"processed,omitempty"`
	Effects   []string         `json:"effects,omitempty"`
	Params    []degrade.Params `json:"params,omitempty"`
	Error     string           `json:"error,omitempty"`
	Elapsed   time.Duration    `json:"elapsed"`
}

func New(store Store, opts ...Option) *Runner {
	r := &Runner{
		store:       store,
		logger:      zap.NewNop(),
		progress:    io.Discard,
		concurrency: 1,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

type Runner struct {
	store       Store
	logger      *zap.Logger
	progress    io.Writer
	concurrency int
	seed        *int64
	pipeOpts    []pipeline.Option
}

func (r *Runner) build(req Request, seq int) (*pipeline.Pipeline, error) {
	opts := append([]pipeline.Option{
		pipeline.WithLogger(r.logger),
		pipeline.WithMediaType(req.MediaType),
	}, r.pipeOpts...)
	if r.seed != nil {
		opts = append(opts, pipeline.WithSeed(*r.seed+int64(seq)))
	}

	if len(req.Configs) == 1 {
		return pipeline.Single(req.Configs[0], opts...)
	}
	return pipeline.New(req.Configs, opts...)
}

// Run processes one request. The returned error is also recorded in the
// result.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	return r.run(ctx, req, 0)
}

func (r *Runner) run(ctx context.Context, req Request, seq int) (res *Result, err error) {
	start := time.Now()
	res = &Result{Status: StatusError, Source: req.Source}
	log := r.logger.With(zap.String("src", req.Source), zap.String("tag", req.Tag()))

	defer func() {
		res.Elapsed = time.Since(start)
		if err != nil {
			res.Error = err.Error()
			log.With(zap.Error(err)).Info("failed")
		}
	}()

	if req.MediaType == frame.MediaUnknown {
		if req.MediaType, err = media.Detect(req.Source); err != nil {
			return res, err
		}
	}

	// configuration errors come before any media i/o
	p, err := r.build(req, seq)
	if err != nil {
		return res, err
	}
	res.Effects, res.Params = p.Names(), p.Params()

	frames, meta, err := r.store.Load(ctx, req.Source, req.MediaType)
	if err != nil {
		return res, err
	}
	res.Original = meta

	out, err := r.process(p, frames, req)
	if err != nil {
		return res, err
	}

	saved, err := r.store.Save(ctx, out, media.Output{
		Source:    req.Source,
		MediaType: req.MediaType,
		Tag:       req.Tag(),
		FPS:       meta.FPS,
	})
	if err != nil {
		return res, err
	}

	res.Processed, res.Status = saved, StatusSuccess
	log.With(
		zap.String("dst", saved.Path),
		zap.Stringer("in", meta.Size),
		zap.Stringer("out", saved.Size),
		zap.Duration("elapsed", time.Since(start)),
	).Info("done")
	return res, nil
}

func (r *Runner) process(p *pipeline.Pipeline, frames []*frame.Frame, req Request) ([]*frame.Frame, error) {
	if req.MediaType == frame.MediaImage {
		if len(frames) != 1 {
			return nil, errors.Errorf("image source has %d frames", len(frames))
		}
		out, err := p.Apply(frames[0])
		if err != nil {
			return nil, err
		}
		return []*frame.Frame{out}, nil
	}

	bar := progressbar.NewOptions(len(frames),
		progressbar.OptionSetWriter(r.progress),
		progressbar.OptionSetDescription(fmt.Sprintf("Degrading %s", media.Stem(req.Source))),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
	)
	defer func() {
		_ = bar.Finish()
	}()

	return p.ApplyFrames(frames, func(int) {
		_ = bar.Add(1)
	})
}
