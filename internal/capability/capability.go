package capability

import (
	"context"

	"github.com/hypertune/hypertune/internal/tuning"
)

// Capability is the contract a pluggable model implementation must satisfy.
// One instance is created per trial, bound to that trial's hyperparameters.
// Any error from these calls ends only the trial, not the worker.
type Capability interface {
	// Train fits the model on the dataset at the given URI.
	Train(ctx context.Context, datasetURI string) error
	// Evaluate scores the trained model on the dataset at the given URI.
	// Higher scores are better.
	Evaluate(ctx context.Context, datasetURI string) (float64, error)
	// DumpParameters returns the trained weights as an opaque blob.
	DumpParameters() ([]byte, error)
	// Destroy releases any resources held for the trial, such as scratch
	// state on disk. The instance is unusable afterwards.
	Destroy() error
}

// Factory instantiates a capability from a registered model's serialized
// definition and one concrete hyperparameter assignment.
type Factory func(definition []byte, hyperparameters tuning.Params) (Capability, error)
