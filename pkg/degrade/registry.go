package degrade

import (
	"math/rand"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"degrader/pkg/codec"
	"degrader/pkg/frame"
)

const (
	Blur         = "blur"
	Resample     = "resample"
	Noise        = "noise"
	Compression  = "compression"
	Aliasing     = "aliasing"
	Scratch      = "scratch"
	Dirt         = "dirt"
	Interlace    = "interlace"
	EdgeArtifact = "edge_artifact"
	MotionBlur   = "motion_blur"
	Flicker      = "flicker"
	Shake        = "shake"
)

var (
	// BaseEffects run inside a stage, in this order.
	BaseEffects = []string{Blur, Resample, Noise, Compression}
	// SpecialEffects may fill the optional special stage.
	SpecialEffects = []string{Aliasing, Scratch, Dirt, Interlace, EdgeArtifact, MotionBlur, Flicker, Shake}
)

// Env is what constructors may draw on besides their params.
type Env struct {
	Logger    *zap.Logger
	Codec     codec.Service
	Rand      *rand.Rand
	MediaType frame.MediaType
}

func (e Env) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

func (e Env) rand() *rand.Rand {
	if e.Rand == nil {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return e.Rand
}

type Constructor func(p Params, env Env) (Effect, error)

func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// Registry maps effect names to constructors and remembers registration
// order for listings.
type Registry struct {
	names []string
	ctors map[string]Constructor
}

func (r *Registry) Register(name string, c Constructor) {
	if _, ok := r.ctors[name]; !ok {
		r.names = append(r.names, name)
	}
	r.ctors[name] = c
}

func (r *Registry) Resolve(name string) (Constructor, error) {
	c, ok := r.ctors[name]
	if !ok {
		return nil, &UnknownEffectError{Name: name, Known: r.Names()}
	}
	return c, nil
}

func (r *Registry) Has(name string) bool {
	_, ok := r.ctors[name]
	return ok
}

func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// New resolves and builds an effect. The params are copied first.
func (r *Registry) New(name string, p Params, env Env) (Effect, error) {
	c, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	return c(p.Clone(), env)
}

// Builtin holds the twelve effects of the catalogue.
var Builtin = func() *Registry {
	r := NewRegistry()
	r.Register(Blur, NewBlur)
	r.Register(Resample, NewResample)
	r.Register(Noise, NewNoise)
	r.Register(Compression, NewCompression)
	r.Register(Aliasing, NewAliasing)
	r.Register(Scratch, NewScratch)
	r.Register(Dirt, NewDirt)
	r.Register(Interlace, NewInterlace)
	r.Register(EdgeArtifact, NewEdgeArtifact)
	r.Register(MotionBlur, NewMotionBlur)
	r.Register(Flicker, NewFlicker)
	r.Register(Shake, NewShake)
	return r
}()

func IsSpecial(name string) bool {
	return lo.Contains(SpecialEffects, name)
}
