package degrade

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"degrader/pkg/frame"
)

const (
	StageName   = "stage"
	Stage1      = "stage1"
	Stage2      = "stage2"
	SpecialName = "special"
	Stage3      = "stage3"
)

// StageNames are the meta names a pipeline entry may use for a stage.
var StageNames = []string{StageName, Stage1, Stage2, SpecialName, Stage3}

// stage2Defaults is the harsher second tier; user params override per key.
var stage2Defaults = map[string]Params{
	Blur:        {"kernel_size": 7, "sigma": 1.8},
	Resample:    {"scale_factor": 0.4},
	Noise:       {"noise_type": NoiseGaussian, "intensity": 8.0},
	Compression: {"quality": 30},
}

func IsStage(name string) bool {
	return lo.Contains(StageNames, name)
}

// NewStage builds the stage named by one of StageNames. Sub-effects come
// from reg and are built on first use.
func NewStage(name string, p Params, env Env, reg *Registry) (Effect, error) {
	switch name {
	case StageName, Stage1, Stage2:
		return newTier(name, p, env, reg)
	case SpecialName, Stage3:
		return newSpecial(name, p, env, reg)
	}
	return nil, &UnknownEffectError{Name: name, Known: StageNames}
}

func newTier(name string, p Params, env Env, reg *Registry) (*stage, error) {
	r, err := newReader(name, p, BaseEffects...)
	if err != nil {
		return nil, err
	}

	s := &stage{reg: reg, env: env, subs: make([]Params, len(BaseEffects))}
	norm := Params{}
	for i, sub := range BaseEffects {
		merged := Params{}
		if name == Stage2 {
			merged = stage2Defaults[sub].Clone()
		}
		for k, v := range r.Mapping(sub) {
			merged[k] = v
		}
		s.subs[i] = merged
		norm[sub] = merged.Clone()
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	s.names = BaseEffects
	s.base = newBase(name, norm, env)
	return s, nil
}

func newSpecial(name string, p Params, env Env, reg *Registry) (*stage, error) {
	r, err := newReader(name, p, "degradation_type", "params")
	if err != nil {
		return nil, err
	}

	kind := r.String("degradation_type", "")
	params := r.Mapping("params")
	if err := r.Err(); err != nil {
		return nil, err
	}

	if kind == "" {
		return nil, &ParamError{Effect: name, Key: "degradation_type", Reason: "required"}
	}
	if !IsSpecial(kind) {
		return nil, &ParamError{
			Effect: name,
			Key:    "degradation_type",
			Value:  kind,
			Reason: fmt.Sprintf("want one of %s", strings.Join(SpecialEffects, ", ")),
		}
	}

	s := &stage{reg: reg, env: env, names: []string{kind}, subs: []Params{params}}
	s.base = newBase(name, Params{"degradation_type": kind, "params": params.Clone()}, env)
	return s, nil
}

// stage runs a fixed list of effects as one unit.
type stage struct {
	base
	reg     *Registry
	env     Env
	names   []string
	subs    []Params
	effects []Effect
}

func (s *stage) build() error {
	env := s.env
	env.MediaType = s.media

	effects := make([]Effect, len(s.names))
	for i, name := range s.names {
		e, err := s.reg.New(name, s.subs[i], env)
		if err != nil {
			return &StepError{Scope: s.name, Index: i + 1, Effect: name, Err: err}
		}
		effects[i] = e
	}

	s.effects = effects
	s.logger.With(zap.Strings("effects", s.names)).Debug("stage built")
	return nil
}

func (s *stage) Apply(f *frame.Frame) (*frame.Frame, error) {
	if s.effects == nil {
		if err := s.build(); err != nil {
			return nil, err
		}
	}

	cur := f
	for i, e := range s.effects {
		out, err := Process(e, cur)
		if err != nil {
			return nil, &StepError{Scope: s.name, Index: i + 1, Effect: e.Name(), Err: err}
		}
		cur = out
	}

	s.logger.With(zap.Ints("shape", cur.Shape)).Debug("stage done")
	return cur, nil
}

func (s *stage) SetMediaType(t frame.MediaType) {
	s.media = t
	for _, e := range s.effects {
		if m, ok := e.(MediaTyped); ok {
			m.SetMediaType(t)
		}
	}
}

func (s *stage) Reset() {
	for _, e := range s.effects {
		if st, ok := e.(Stateful); ok {
			st.Reset()
		}
	}
}

// Effects returns the built sub-effects, nil before the first Apply.
func (s *stage) Effects() []Effect {
	return s.effects
}
