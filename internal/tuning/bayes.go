package tuning

import (
	"math"
	"math/rand"
	"time"
)

const (
	// Candidate assignments sampled per proposal. The highest-acquisition
	// candidate is the one proposed.
	bayesNumCandidates = 64
	// Exploration weight of the upper confidence bound acquisition.
	bayesUCBBeta = 2.0
)

// bayesSearch is Bayesian optimization over the space: a Gaussian-process
// surrogate trained on (params, score) history, with a UCB acquisition
// function picking the next candidate. Scores are maximized.
type bayesSearch struct {
	space Space
	rng   *rand.Rand
	gp    *gaussianProcess
}

func NewBayesSearch(space Space) Strategy {
	return &bayesSearch{
		space: space,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		gp:    newGaussianProcess(),
	}
}

func (b *bayesSearch) Train(history []Observation) error {
	b.gp = newGaussianProcess()
	for _, obs := range history {
		x, err := b.space.encode(obs.Params)
		if err != nil {
			// History may contain configurations from an older space
			// definition. They carry no signal for the current space.
			continue
		}
		b.gp.observe(x, obs.Score)
	}
	return nil
}

func (b *bayesSearch) Propose() (Params, error) {
	if b.gp.empty() {
		return b.space.Sample(b.rng), nil
	}

	var best Params
	bestAcq := math.Inf(-1)

	for i := 0; i < bayesNumCandidates; i++ {
		candidate := b.space.Sample(b.rng)
		x, err := b.space.encode(candidate)
		if err != nil {
			return nil, err
		}

		mean, variance := b.gp.predict(x)
		acq := mean + bayesUCBBeta*math.Sqrt(variance)
		if acq > bestAcq {
			bestAcq = acq
			best = candidate
		}
	}

	return best, nil
}
