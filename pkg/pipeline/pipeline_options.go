package pipeline

import (
	"math/rand"

	"go.uber.org/zap"

	"degrader/pkg/codec"
	"degrader/pkg/degrade"
	"degrader/pkg/frame"
)

type Option func(p *Pipeline)

func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

func WithRegistry(reg *degrade.Registry) Option {
	return func(p *Pipeline) {
		p.reg = reg
	}
}

func WithCodec(svc codec.Service) Option {
	return func(p *Pipeline) {
		p.env.Codec = svc
	}
}

func WithRand(rnd *rand.Rand) Option {
	return func(p *Pipeline) {
		p.env.Rand = rnd
	}
}

// WithSeed makes every random effect of the pipeline reproducible.
func WithSeed(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

func WithMediaType(t frame.MediaType) Option {
	return func(p *Pipeline) {
		p.env.MediaType = t
	}
}
