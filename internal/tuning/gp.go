package tuning

import "math"

// gaussianProcess is a small GP regression surrogate over the unit hypercube.
// It predicts the score of untested configurations from observed ones using
// an RBF kernel. Inputs are expected to be normalized by Space.encode.
type gaussianProcess struct {
	xs    [][]float64
	ys    []float64
	sigma float64
}

func newGaussianProcess() *gaussianProcess {
	return &gaussianProcess{sigma: 0.2}
}

func (gp *gaussianProcess) observe(x []float64, y float64) {
	point := make([]float64, len(x))
	copy(point, x)
	gp.xs = append(gp.xs, point)
	gp.ys = append(gp.ys, y)
}

func (gp *gaussianProcess) empty() bool {
	return len(gp.xs) == 0
}

// rbf is the radial basis function kernel: similarity decays exponentially
// with squared distance.
func (gp *gaussianProcess) rbf(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Exp(-sum / (2 * gp.sigma * gp.sigma))
}

// predict returns the expected score at x and the uncertainty of that
// estimate. With no observations it returns the prior (0, 1).
func (gp *gaussianProcess) predict(x []float64) (mean, variance float64) {
	if len(gp.xs) == 0 {
		return 0, 1
	}

	k := make([]float64, len(gp.xs))
	var kSum, weighted float64
	for i := range gp.xs {
		k[i] = gp.rbf(x, gp.xs[i])
		kSum += k[i]
		weighted += k[i] * gp.ys[i]
	}

	n := float64(len(gp.xs))
	if kSum > 0 {
		mean = weighted / kSum
	}

	variance = 1.0
	for i := range k {
		for j := range k {
			variance -= k[i] * k[j] / n
		}
	}
	if variance < 0 {
		variance = 0
	}

	return mean, variance
}
