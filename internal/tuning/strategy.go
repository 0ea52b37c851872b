package tuning

import (
	"errors"
	"fmt"
)

var ErrUnknownStrategy = errors.New("unknown tuning strategy")

// Strategy names accepted on model registration.
const (
	StrategyBayes  = "bayes"
	StrategyRandom = "random"
)

// Observation is one completed trial's outcome, in chronological completion
// order for the model within its train job.
type Observation struct {
	Params Params
	Score  float64
}

// Strategy proposes hyperparameter configurations for one model's space.
// Strategies hold no state across process restarts: callers rebuild one from
// the full persisted history on every proposal cycle.
type Strategy interface {
	// Train replaces the strategy's view of history. An empty history resets
	// it to its prior (pure exploration).
	Train(history []Observation) error
	// Propose returns one concrete in-domain assignment for every knob.
	Propose() (Params, error)
}

// New builds a fresh strategy for the given space. An empty name selects
// Bayesian optimization.
func New(name string, space Space) (Strategy, error) {
	switch name {
	case StrategyBayes, "":
		return NewBayesSearch(space), nil
	case StrategyRandom:
		return NewRandomSearch(space), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}
