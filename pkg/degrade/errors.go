package degrade

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrUnknownEffect    = errors.New("unknown effect")
	ErrInvalidInput     = errors.New("invalid input")
	ErrExecution        = errors.New("execution failed")
	ErrEmptyResult      = errors.New("empty result")
)

// ParamError is raised while an effect normalizes its parameters.
type ParamError struct {
	Effect string
	Key    string
	Value  any
	Reason string
}

func (e *ParamError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: parameter %q: %s", e.Effect, e.Key, e.Reason)
	}
	return fmt.Sprintf("%s: parameter %q=%v: %s", e.Effect, e.Key, e.Value, e.Reason)
}

func (e *ParamError) Is(target error) bool {
	return target == ErrInvalidParameter
}

type UnknownEffectError struct {
	Name  string
	Known []string
}

func (e *UnknownEffectError) Error() string {
	return fmt.Sprintf("unknown effect %q, known effects: %s", e.Name, strings.Join(e.Known, ", "))
}

func (e *UnknownEffectError) Is(target error) bool {
	return target == ErrUnknownEffect
}

// ConfigError points at the failing entry of a pipeline configuration.
// Index is 1-based, 0 when the document as a whole is malformed.
type ConfigError struct {
	Index int
	Name  string
	Err   error
}

func (e *ConfigError) Error() string {
	switch {
	case e.Index == 0:
		return fmt.Sprintf("config: %v", e.Err)
	case e.Name == "":
		return fmt.Sprintf("config entry %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("config entry %d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

type InputError struct {
	Effect string
	Err    error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: invalid input: %v", e.Effect, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

const (
	PhasePreprocess  = "preprocess"
	PhaseApply       = "apply"
	PhasePostprocess = "postprocess"
)

// PhaseError carries the effect and the phase of Process that failed.
type PhaseError struct {
	Effect string
	Phase  string
	Err    error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Effect, e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

func (e *PhaseError) Is(target error) bool {
	return target == ErrExecution
}

// StepError wraps the failure of one step of a stage or pipeline. Index is
// 1-based.
type StepError struct {
	Scope  string
	Index  int
	Effect string
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s step %d (%s) failed: %v", e.Scope, e.Index, e.Effect, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func (e *StepError) Is(target error) bool {
	return target == ErrExecution
}
