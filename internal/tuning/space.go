package tuning

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

var ErrInvalidSpace = errors.New("invalid hyperparameter space")

// KnobType enumerates the supported knob domains.
type KnobType string

const (
	KnobFixed       KnobType = "fixed"
	KnobInt         KnobType = "int"
	KnobFloat       KnobType = "float"
	KnobCategorical KnobType = "categorical"
)

// KnobSpec is the serialized form of one tunable hyperparameter, as stored
// on the model record.
type KnobSpec struct {
	Type    KnobType  `json:"type"`
	Value   any       `json:"value,omitempty"`
	Min     *float64  `json:"min,omitempty"`
	Max     *float64  `json:"max,omitempty"`
	Log     bool      `json:"log,omitempty"`
	Choices []any     `json:"choices,omitempty"`
}

// SpaceSpec maps knob names to their specs.
type SpaceSpec map[string]KnobSpec

// Params maps knob names to concrete values. A trial's hyperparameters are
// one Params assignment covering every knob of the space.
type Params map[string]any

// Knob is one validated entry of a hyperparameter space.
type Knob struct {
	Name    string
	Type    KnobType
	Value   any
	Min     float64
	Max     float64
	Log     bool
	Choices []any
}

// Space is a validated hyperparameter space, ordered by knob name so the
// numeric encoding used by strategies is stable.
type Space []Knob

// NewSpace validates a serialized space and returns its canonical form.
func NewSpace(spec SpaceSpec) (Space, error) {
	if len(spec) == 0 {
		return nil, fmt.Errorf("%w: no knobs defined", ErrInvalidSpace)
	}

	names := make([]string, 0, len(spec))
	for name := range spec {
		names = append(names, name)
	}
	sort.Strings(names)

	space := make(Space, 0, len(spec))
	for _, name := range names {
		knob, err := newKnob(name, spec[name])
		if err != nil {
			return nil, err
		}
		space = append(space, knob)
	}

	return space, nil
}

func newKnob(name string, spec KnobSpec) (Knob, error) {
	knob := Knob{Name: name, Type: spec.Type, Log: spec.Log}

	switch spec.Type {
	case KnobFixed:
		if spec.Value == nil {
			return Knob{}, fmt.Errorf("%w: fixed knob %q has no value", ErrInvalidSpace, name)
		}
		knob.Value = spec.Value
	case KnobInt, KnobFloat:
		if spec.Min == nil || spec.Max == nil {
			return Knob{}, fmt.Errorf("%w: knob %q is missing min/max bounds", ErrInvalidSpace, name)
		}
		knob.Min, knob.Max = *spec.Min, *spec.Max
		if knob.Min > knob.Max {
			return Knob{}, fmt.Errorf("%w: knob %q has min > max", ErrInvalidSpace, name)
		}
		if spec.Log && knob.Min <= 0 {
			return Knob{}, fmt.Errorf("%w: log-scaled knob %q requires min > 0", ErrInvalidSpace, name)
		}
		if spec.Type == KnobInt && (knob.Min != math.Trunc(knob.Min) || knob.Max != math.Trunc(knob.Max)) {
			return Knob{}, fmt.Errorf("%w: int knob %q has non-integer bounds", ErrInvalidSpace, name)
		}
	case KnobCategorical:
		if len(spec.Choices) == 0 {
			return Knob{}, fmt.Errorf("%w: categorical knob %q has no choices", ErrInvalidSpace, name)
		}
		knob.Choices = spec.Choices
	default:
		return Knob{}, fmt.Errorf("%w: knob %q has unknown type %q", ErrInvalidSpace, name, spec.Type)
	}

	return knob, nil
}

// Sample draws one uniform assignment from the space. Log-scaled knobs are
// sampled in log space and reported in linear units.
func (s Space) Sample(rng *rand.Rand) Params {
	params := make(Params, len(s))
	for _, knob := range s {
		params[knob.Name] = knob.sample(rng)
	}
	return params
}

func (k Knob) sample(rng *rand.Rand) any {
	switch k.Type {
	case KnobFixed:
		return k.Value
	case KnobCategorical:
		return k.Choices[rng.Intn(len(k.Choices))]
	case KnobInt:
		v := k.sampleNumeric(rng)
		return int(math.Round(clamp(v, k.Min, k.Max)))
	default:
		return k.sampleNumeric(rng)
	}
}

func (k Knob) sampleNumeric(rng *rand.Rand) float64 {
	if k.Log {
		lo, hi := math.Log(k.Min), math.Log(k.Max)
		return math.Exp(lo + rng.Float64()*(hi-lo))
	}
	return k.Min + rng.Float64()*(k.Max-k.Min)
}

// Validate checks that params assigns an in-domain value to every knob.
func (s Space) Validate(params Params) error {
	for _, knob := range s {
		v, ok := params[knob.Name]
		if !ok {
			return fmt.Errorf("missing value for knob %q", knob.Name)
		}
		if err := knob.validate(v); err != nil {
			return err
		}
	}
	return nil
}

func (k Knob) validate(v any) error {
	switch k.Type {
	case KnobFixed:
		if !valuesEqual(v, k.Value) {
			return fmt.Errorf("knob %q must be its fixed value %v, got %v", k.Name, k.Value, v)
		}
	case KnobCategorical:
		if k.choiceIndex(v) < 0 {
			return fmt.Errorf("knob %q value %v is not one of the declared choices", k.Name, v)
		}
	case KnobInt, KnobFloat:
		f, ok := toFloat(v)
		if !ok {
			return fmt.Errorf("knob %q value %v is not numeric", k.Name, v)
		}
		if f < k.Min || f > k.Max {
			return fmt.Errorf("knob %q value %v is outside [%v, %v]", k.Name, v, k.Min, k.Max)
		}
	}
	return nil
}

func (k Knob) choiceIndex(v any) int {
	for i, choice := range k.Choices {
		if valuesEqual(v, choice) {
			return i
		}
	}
	return -1
}

// encode maps params onto the unit hypercube for the surrogate model. Fixed
// knobs carry no information and are skipped. Log-scaled knobs are encoded
// in log space.
func (s Space) encode(params Params) ([]float64, error) {
	vec := make([]float64, 0, len(s))
	for _, knob := range s {
		switch knob.Type {
		case KnobFixed:
			continue
		case KnobCategorical:
			idx := knob.choiceIndex(params[knob.Name])
			if idx < 0 {
				return nil, fmt.Errorf("knob %q value %v is not one of the declared choices", knob.Name, params[knob.Name])
			}
			if len(knob.Choices) > 1 {
				vec = append(vec, float64(idx)/float64(len(knob.Choices)-1))
			} else {
				vec = append(vec, 0)
			}
		default:
			f, ok := toFloat(params[knob.Name])
			if !ok {
				return nil, fmt.Errorf("knob %q value %v is not numeric", knob.Name, params[knob.Name])
			}
			lo, hi := knob.Min, knob.Max
			if knob.Log {
				f, lo, hi = math.Log(f), math.Log(knob.Min), math.Log(knob.Max)
			}
			if hi > lo {
				vec = append(vec, (f-lo)/(hi-lo))
			} else {
				vec = append(vec, 0)
			}
		}
	}
	return vec, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func valuesEqual(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
		return false
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
