package tuning

import (
	"math/rand"
	"time"
)

// randomSearch draws uniform samples from the space, ignoring history.
type randomSearch struct {
	space Space
	rng   *rand.Rand
}

func NewRandomSearch(space Space) Strategy {
	return &randomSearch{
		space: space,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *randomSearch) Train(history []Observation) error {
	return nil
}

func (r *randomSearch) Propose() (Params, error) {
	return r.space.Sample(r.rng), nil
}
