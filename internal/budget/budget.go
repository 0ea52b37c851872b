package budget

import (
	"errors"
	"fmt"

	"github.com/hypertune/hypertune/internal/store/model"
)

var ErrUnknownKind = errors.New("unknown budget kind")

// Kind is the closed set of budget variants. Adding one means adding a case
// to Reached's switch; callers never dispatch on Kind themselves.
type Kind string

const (
	// TrialCount is exhausted once the number of completed trials reaches
	// the amount. Errored and running trials do not count.
	TrialCount Kind = "trial_count"
	// TrainHours is exhausted once the wall time spent on completed trials,
	// summed, reaches the amount in hours.
	TrainHours Kind = "train_hours"
)

// Reached reports whether the train job's resource allowance is exhausted,
// given its budget and the trials completed so far. It is pure: callers
// supply only completed trials and re-evaluate on every loop iteration.
func Reached(kind Kind, amount float64, completed []model.Trial) (bool, error) {
	switch kind {
	case TrialCount:
		return float64(len(completed)) >= amount, nil
	case TrainHours:
		var hours float64
		for _, trial := range completed {
			if trial.CompletedAt == nil {
				continue
			}
			hours += trial.CompletedAt.Sub(trial.CreatedAt).Hours()
		}
		return hours >= amount, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
