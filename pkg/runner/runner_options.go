package runner

import (
	"io"

	"go.uber.org/zap"

	"degrader/pkg/pipeline"
)

type Option func(r *Runner)

func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithProgress draws per-frame video progress to w.
func WithProgress(w io.Writer) Option {
	return func(r *Runner) {
		r.progress = w
	}
}

// WithConcurrency bounds how many batch requests run at once.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		r.concurrency = max(1, n)
	}
}

// WithSeed seeds every request, offset by its position in a batch.
func WithSeed(seed int64) Option {
	return func(r *Runner) {
		r.seed = &seed
	}
}

// WithPipelineOptions passes extra options to every pipeline built.
func WithPipelineOptions(opts ...pipeline.Option) Option {
	return func(r *Runner) {
		r.pipeOpts = append(r.pipeOpts, opts...)
	}
}
