package pipeline

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"degrader/pkg/degrade"
	"degrader/pkg/frame"
)

const (
	MinStages = 2
	MaxStages = 3
)

// New builds a composite pipeline from 2 to 3 entries. Every effect is
// constructed up front, so configuration errors surface before any frame
// is touched.
func New(configs []Config, opts ...Option) (*Pipeline, error) {
	if n := len(configs); n < MinStages || n > MaxStages {
		return nil, &degrade.ConfigError{
			Err: errors.Errorf("composite pipeline needs %d to %d entries, got %d", MinStages, MaxStages, n),
		}
	}
	return build(configs, opts)
}

// Single builds the pipeline of a single effect request.
func Single(c Config, opts ...Option) (*Pipeline, error) {
	return build([]Config{c}, opts)
}

func build(configs []Config, opts []Option) (*Pipeline, error) {
	p := &Pipeline{reg: degrade.Builtin}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	p.env.Logger = p.logger

	for i, c := range configs {
		if err := p.add(c); err != nil {
			return nil, &degrade.ConfigError{Index: i + 1, Name: c.Name, Err: err}
		}
	}
	return p, nil
}

type Pipeline struct {
	reg     *degrade.Registry
	env     degrade.Env
	logger  *zap.Logger
	effects []degrade.Effect
}

func (p *Pipeline) add(c Config) error {
	if c.Name == "" {
		return errors.New("missing required key 'name'")
	}
	params, wrapped := unwrap(c.Params)

	switch {
	case c.Name == Composite:
		keys := lo.Ternary(wrapped, c.innerKeys(params), c.Keys())
		for _, sub := range keys {
			if !p.reg.Has(sub) {
				return &degrade.UnknownEffectError{Name: sub, Known: p.reg.Names()}
			}
			sp, ok := degrade.AsParams(params[sub])
			if !ok {
				return errors.Errorf("params of %s must be a mapping", sub)
			}
			sp, _ = unwrap(sp)
			if err := p.push(sub, sp); err != nil {
				return err
			}
		}
		return nil
	case degrade.IsStage(c.Name):
		e, err := degrade.NewStage(c.Name, params, p.env, p.reg)
		if err != nil {
			return err
		}
		p.use(e)
		return nil
	}
	return p.push(c.Name, params)
}

func (p *Pipeline) push(name string, params degrade.Params) error {
	e, err := p.reg.New(name, params, p.env)
	if err != nil {
		return err
	}
	p.use(e)
	return nil
}

func (p *Pipeline) use(e degrade.Effect) {
	p.effects = append(p.effects, e)
	p.logger.With(zap.Int("index", len(p.effects)), zap.String("effect", e.Name())).Info("effect added")
}

// unwrap strips one {params: {...}} wrapper level and reports whether it did.
func unwrap(params degrade.Params) (degrade.Params, bool) {
	if len(params) != 1 {
		return params, false
	}
	inner, ok := params["params"]
	if !ok || inner == nil {
		return params, false
	}
	if m, ok := degrade.AsParams(inner); ok {
		return m, true
	}
	return params, false
}

// Apply runs f through every effect in order.
func (p *Pipeline) Apply(f *frame.Frame) (*frame.Frame, error) {
	cur := f
	for i, e := range p.effects {
		out, err := degrade.Process(e, cur)
		if err != nil {
			return nil, &degrade.StepError{Scope: "pipeline", Index: i + 1, Effect: e.Name(), Err: err}
		}
		cur = out
	}
	return cur, nil
}

// ApplyFrames runs every frame of a clip through the same effects, so frame
// counters keep running across the clip. onFrame, if set, is called after
// each frame.
func (p *Pipeline) ApplyFrames(frames []*frame.Frame, onFrame func(i int)) ([]*frame.Frame, error) {
	if len(frames) == 0 {
		return nil, errors.Wrap(degrade.ErrEmptyResult, "no frames to process")
	}

	out := make([]*frame.Frame, len(frames))
	for i, f := range frames {
		o, err := p.Apply(f)
		if err != nil {
			return nil, errors.Wrapf(err, "frame %d", i)
		}
		out[i] = o
		if onFrame != nil {
			onFrame(i)
		}
	}

	p.logger.With(zap.Int("frames", len(frames))).Debug("clip processed")
	return out, nil
}

// Reset restarts the frame counters of stateful effects for a new media
// item.
func (p *Pipeline) Reset() {
	for _, e := range p.effects {
		if s, ok := e.(degrade.Stateful); ok {
			s.Reset()
		}
	}
}

func (p *Pipeline) Effects() []degrade.Effect {
	return append([]degrade.Effect(nil), p.effects...)
}

func (p *Pipeline) Names() []string {
	names := make([]string, len(p.effects))
	for i, e := range p.effects {
		names[i] = e.Name()
	}
	return names
}

// Params lists the normalized params of every effect, in order.
func (p *Pipeline) Params() []degrade.Params {
	params := make([]degrade.Params, len(p.effects))
	for i, e := range p.effects {
		params[i] = e.Params()
	}
	return params
}
