package degrade

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Params is the raw, declarative parameter mapping of an effect, as decoded
// from YAML or JSON.
type Params map[string]any

// Clone copies p, nested mappings and lists included.
func (p Params) Clone() Params {
	if p == nil {
		return Params{}
	}
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Params:
		return t.Clone()
	case map[string]any:
		return Params(t).Clone()
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	case []int:
		return append([]int(nil), t...)
	case []float64:
		return append([]float64(nil), t...)
	}
	return v
}

// Keys returns the keys of p in sorted order.
func (p Params) Keys() []string {
	keys := lo.Keys(p)
	sort.Strings(keys)
	return keys
}

// AsParams accepts the mapping shapes produced by the decoders.
func AsParams(v any) (Params, bool) {
	switch t := v.(type) {
	case Params:
		return t, true
	case map[string]any:
		return Params(t), true
	case nil:
		return Params{}, true
	}
	return nil, false
}

// reader pulls typed values out of Params, remembering the first failure so
// constructors can read every field and check once.
type reader struct {
	effect string
	p      Params
	err    error
}

func newReader(effect string, p Params, allowed ...string) (*reader, error) {
	for _, k := range p.Keys() {
		if !lo.Contains(allowed, k) {
			return nil, &ParamError{
				Effect: effect,
				Key:    k,
				Reason: fmt.Sprintf("unsupported parameter, allowed: %s", strings.Join(allowed, ", ")),
			}
		}
	}
	return &reader{effect: effect, p: p}, nil
}

func (r *reader) fail(key string, v any, reason string) {
	if r.err == nil {
		r.err = &ParamError{Effect: r.effect, Key: key, Value: v, Reason: reason}
	}
}

func (r *reader) Err() error {
	return r.err
}

func (r *reader) has(key string) bool {
	v, ok := r.p[key]
	return ok && v != nil
}

func (r *reader) Float(key string, def float64) float64 {
	if !r.has(key) {
		return def
	}
	v := r.p[key]
	f, ok := toFloat(v)
	if !ok {
		r.fail(key, v, "not a number")
		return def
	}
	return f
}

func (r *reader) Int(key string, def int) int {
	if !r.has(key) {
		return def
	}
	v := r.p[key]
	f, ok := toFloat(v)
	if !ok {
		r.fail(key, v, "not an integer")
		return def
	}
	return int(f)
}

func (r *reader) String(key string, def string) string {
	if !r.has(key) {
		return def
	}
	v := r.p[key]
	s, ok := v.(string)
	if !ok {
		r.fail(key, v, "not a string")
		return def
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// Floats reads a fixed length numeric list.
func (r *reader) Floats(key string, n int, def []float64) []float64 {
	if !r.has(key) {
		return def
	}
	v := r.p[key]
	items, ok := toSlice(v)
	if !ok || len(items) != n {
		r.fail(key, v, fmt.Sprintf("want a list of %d numbers", n))
		return def
	}
	out := make([]float64, n)
	for i, it := range items {
		f, ok := toFloat(it)
		if !ok {
			r.fail(key, v, fmt.Sprintf("item %d is not a number", i))
			return def
		}
		out[i] = f
	}
	return out
}

func (r *reader) Ints(key string, n int, def []int) []int {
	fs := r.Floats(key, n, nil)
	if fs == nil {
		return def
	}
	out := make([]int, n)
	for i, f := range fs {
		out[i] = int(f)
	}
	return out
}

// Mapping reads a nested parameter mapping.
func (r *reader) Mapping(key string) Params {
	if !r.has(key) {
		return Params{}
	}
	v := r.p[key]
	m, ok := AsParams(v)
	if !ok {
		r.fail(key, v, "not a mapping")
		return Params{}
	}
	return m.Clone()
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t)
	case float32:
		return float64(t), !math.IsNaN(float64(t))
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil && !math.IsNaN(f)
	}
	return 0, false
}

func toSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []int:
		return lo.Map(t, func(x int, _ int) any { return x }), true
	case []float64:
		return lo.Map(t, func(x float64, _ int) any { return x }), true
	}
	return nil, false
}

// MaxKernelSize bounds every kernel_size.
const MaxKernelSize = 255

// oddKernel forces a kernel size to a positive odd number no larger than
// MaxKernelSize, rounding even sizes up.
func oddKernel(k int) int {
	k = min(max(1, k), MaxKernelSize)
	if k%2 == 0 {
		k++
	}
	return k
}

func clampF(v, lower, upper float64) float64 {
	return math.Max(lower, math.Min(upper, v))
}

// orderedRange sorts a two item range and clamps its floor.
func orderedRange(r []int, floor int) []int {
	a, b := max(floor, r[0]), max(floor, r[1])
	if a > b {
		a, b = b, a
	}
	return []int{a, b}
}
