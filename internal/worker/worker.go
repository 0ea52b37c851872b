package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lthibault/jitterbug/v2"
	"go.uber.org/zap"

	"github.com/hypertune/hypertune/internal/budget"
	"github.com/hypertune/hypertune/internal/capability"
	"github.com/hypertune/hypertune/internal/store"
	"github.com/hypertune/hypertune/internal/store/model"
	"github.com/hypertune/hypertune/internal/tuning"
	"github.com/hypertune/hypertune/pkg/metrics"
)

const stopTimeout = 10 * time.Second

// URIResolver exchanges a stored dataset URI for one the model capability
// can consume directly. A nil resolver passes URIs through untouched.
type URIResolver interface {
	ResolveURI(ctx context.Context, datasetURI string) (string, error)
}

// Worker runs the trial orchestration loop for one assignment: check the
// budget, propose a configuration from history, record a trial, delegate
// fitting to the model capability and finalize the outcome, until the
// budget is exhausted or a fatal error occurs.
//
// One Worker is one single-threaded control loop. Several workers may run
// concurrently against the same train job; the transactional store is their
// only synchronization point.
type Worker struct {
	id              uuid.UUID
	store           store.Store
	registry        *capability.Registry
	resolver        URIResolver
	pollInterval    time.Duration
	finalizeRetries int

	log *zap.SugaredLogger
}

func New(id uuid.UUID, s store.Store, registry *capability.Registry, resolver URIResolver) *Worker {
	return &Worker{
		id:              id,
		store:           s,
		registry:        registry,
		resolver:        resolver,
		pollInterval:    10 * time.Second,
		finalizeRetries: 1,
		log:             zap.S().Named("worker"),
	}
}

// WithPollInterval sets the pause taken after an errored trial, so a
// persistently failing configuration space does not hammer the store.
func (w *Worker) WithPollInterval(interval time.Duration) *Worker {
	w.pollInterval = interval
	return w
}

// WithFinalizeRetries sets how many times a failed trial finalization is
// re-attempted before the failure is treated as fatal.
func (w *Worker) WithFinalizeRetries(retries int) *Worker {
	w.finalizeRetries = retries
	return w
}

// Run executes the loop until the budget is reached, the context is
// cancelled, or a fatal error occurs. A nil return means normal
// termination (process exit code 0); any error is unrecoverable and the
// process must exit non-zero. On every exit path the worker assignment is
// marked stopped.
func (w *Worker) Run(ctx context.Context) (err error) {
	w.log.Infof("starting worker %s", w.id)

	if _, err = w.store.Worker().UpdateStatus(ctx, w.id, model.WorkerStatusRunning); err != nil {
		return fmt.Errorf("marking worker %s running: %w", w.id, err)
	}

	// The assignment must never be left in a non-terminal state, whichever
	// path the loop exits through. Best effort: a failure here is logged
	// and reconciled externally.
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		if _, stopErr := w.store.Worker().UpdateStatus(stopCtx, w.id, model.WorkerStatusStopped); stopErr != nil {
			w.log.Errorf("failed to mark worker %s stopped: %v", w.id, stopErr)
		} else {
			w.log.Infof("worker %s stopped", w.id)
		}
	}()

	backoff := jitterbug.New(w.pollInterval, &jitterbug.Norm{Stdev: w.pollInterval / 10})
	defer backoff.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Infof("worker %s cancelled, exiting", w.id)
			return nil
		default:
		}

		// The assignment is externally mutable between iterations.
		assignment, err := w.store.Worker().Get(ctx, w.id)
		if err != nil {
			return fmt.Errorf("reading worker assignment %s: %w", w.id, err)
		}

		reached, err := w.budgetReached(ctx, assignment.TrainJobID)
		if err != nil {
			return err
		}
		if reached {
			w.log.Infof("budget for train job %s reached, exiting", assignment.TrainJobID)
			return nil
		}

		completed, err := w.runTrial(ctx, assignment)
		if err != nil {
			return err
		}

		if !completed {
			select {
			case <-ctx.Done():
				return nil
			case <-backoff.C:
			}
		}
	}
}

// budgetReached evaluates the train job's budget against its completed
// trials. Errored and running trials do not consume budget.
func (w *Worker) budgetReached(ctx context.Context, trainJobID uuid.UUID) (bool, error) {
	trainJob, err := w.store.TrainJob().Get(ctx, trainJobID)
	if err != nil {
		return false, fmt.Errorf("reading train job %s: %w", trainJobID, err)
	}

	// A stopped job ends the campaign regardless of remaining budget.
	if trainJob.Status == model.TrainJobStatusStopped {
		return true, nil
	}

	completed, err := w.completedTrials(ctx, trainJobID, nil)
	if err != nil {
		return false, err
	}

	reached, err := budget.Reached(budget.Kind(trainJob.BudgetKind), trainJob.BudgetAmount, completed)
	if err != nil {
		return false, fmt.Errorf("evaluating budget of train job %s: %w", trainJobID, err)
	}

	return reached, nil
}

// runTrial executes one trial attempt. Failures during selection and
// creation are fatal to the worker; failures during model execution
// finalize the trial as errored and the loop continues. Returns whether the
// trial completed successfully.
func (w *Worker) runTrial(ctx context.Context, assignment *model.Worker) (bool, error) {
	sel, err := w.selectAndCreate(ctx, assignment)
	if err != nil {
		return false, err
	}

	w.log.Infof("starting trial %s with hyperparameters %v", sel.trial.ID, sel.hyperparameters)

	start := time.Now()
	score, parameters, execErr := w.execute(ctx, sel)
	if execErr != nil {
		w.log.Errorf("trial %s errored: %v", sel.trial.ID, execErr)
		if err := w.finalize(ctx, func(ctx context.Context) error {
			return w.store.Trial().MarkErrored(ctx, sel.trial.ID)
		}); err != nil {
			return false, fmt.Errorf("marking trial %s errored: %w", sel.trial.ID, err)
		}
		metrics.IncreaseTrialsErroredTotalMetric(sel.tunedModel.Name)
		return false, nil
	}

	if err := w.finalize(ctx, func(ctx context.Context) error {
		return w.store.Trial().MarkComplete(ctx, sel.trial.ID, score, parameters)
	}); err != nil {
		return false, fmt.Errorf("marking trial %s complete: %w", sel.trial.ID, err)
	}

	w.log.Infof("trial %s complete, score %v", sel.trial.ID, score)
	metrics.IncreaseTrialsCompletedTotalMetric(sel.tunedModel.Name)
	metrics.ObserveTrialDurationMetric(sel.tunedModel.Name, time.Since(start).Seconds())
	return true, nil
}

type selection struct {
	trial           *model.Trial
	trainJob        *model.TrainJob
	tunedModel      *model.TunedModel
	hyperparameters tuning.Params
}

// selectAndCreate picks the next configuration and records the trial, all
// in one transaction. The tuning strategy is rebuilt from the full
// completed-trial history of this model on every call; no strategy state
// survives between cycles or process restarts.
func (w *Worker) selectAndCreate(ctx context.Context, assignment *model.Worker) (*selection, error) {
	txCtx, err := w.store.NewTransactionContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening transaction: %w", err)
	}

	trainJob, err := w.store.TrainJob().Get(txCtx, assignment.TrainJobID)
	if err != nil {
		_, _ = store.Rollback(txCtx)
		return nil, fmt.Errorf("reading train job %s: %w", assignment.TrainJobID, err)
	}

	tunedModel, err := w.store.TunedModel().Get(txCtx, assignment.TunedModelID)
	if err != nil {
		_, _ = store.Rollback(txCtx)
		return nil, fmt.Errorf("reading model %s: %w", assignment.TunedModelID, err)
	}

	proposal, err := w.propose(txCtx, trainJob, tunedModel)
	if err != nil {
		_, _ = store.Rollback(txCtx)
		return nil, err
	}

	trial, err := w.store.Trial().Create(txCtx, tunedModel.ID, trainJob.ID, proposal)
	if err != nil {
		_, _ = store.Rollback(txCtx)
		return nil, fmt.Errorf("creating trial: %w", err)
	}

	if _, err := store.Commit(txCtx); err != nil {
		return nil, fmt.Errorf("committing trial %s: %w", trial.ID, err)
	}

	return &selection{
		trial:           trial,
		trainJob:        trainJob,
		tunedModel:      tunedModel,
		hyperparameters: proposal,
	}, nil
}

// propose builds the model's space, retrains a fresh strategy on the
// completed history and obtains one in-domain configuration. Any failure
// here means the worker cannot select configurations at all and must abort.
func (w *Worker) propose(ctx context.Context, trainJob *model.TrainJob, tunedModel *model.TunedModel) (tuning.Params, error) {
	if tunedModel.Hyperparameters == nil {
		return nil, fmt.Errorf("model %s: %w", tunedModel.ID, tuning.ErrInvalidSpace)
	}

	space, err := tuning.NewSpace(tunedModel.Hyperparameters.Data)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", tunedModel.ID, err)
	}

	strategy, err := tuning.New(tunedModel.Strategy, space)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", tunedModel.ID, err)
	}

	completed, err := w.completedTrials(ctx, trainJob.ID, &tunedModel.ID)
	if err != nil {
		return nil, err
	}

	history := make([]tuning.Observation, 0, len(completed))
	for _, trial := range completed {
		if trial.Score == nil || trial.Hyperparameters == nil {
			continue
		}
		history = append(history, tuning.Observation{
			Params: trial.Hyperparameters.Data,
			Score:  *trial.Score,
		})
	}

	if err := strategy.Train(history); err != nil {
		return nil, fmt.Errorf("training strategy for model %s: %w", tunedModel.ID, err)
	}

	proposal, err := strategy.Propose()
	if err != nil {
		return nil, fmt.Errorf("proposing configuration for model %s: %w", tunedModel.ID, err)
	}

	if err := space.Validate(proposal); err != nil {
		return nil, fmt.Errorf("strategy proposed an out-of-domain configuration: %w", err)
	}

	return proposal, nil
}

// execute runs the model capability for one trial. Every error here is
// local to the trial.
func (w *Worker) execute(ctx context.Context, sel *selection) (float64, []byte, error) {
	inst, err := w.registry.New(sel.tunedModel.Kind, sel.tunedModel.Definition, sel.hyperparameters)
	if err != nil {
		return 0, nil, fmt.Errorf("instantiating model: %w", err)
	}
	defer func() {
		if destroyErr := inst.Destroy(); destroyErr != nil {
			w.log.Warnf("destroying model instance for trial %s: %v", sel.trial.ID, destroyErr)
		}
	}()

	trainURI, err := w.resolveURI(ctx, sel.trainJob.TrainDatasetURI)
	if err != nil {
		return 0, nil, err
	}
	testURI, err := w.resolveURI(ctx, sel.trainJob.TestDatasetURI)
	if err != nil {
		return 0, nil, err
	}

	if err := inst.Train(ctx, trainURI); err != nil {
		return 0, nil, fmt.Errorf("training model: %w", err)
	}

	score, err := inst.Evaluate(ctx, testURI)
	if err != nil {
		return 0, nil, fmt.Errorf("evaluating model: %w", err)
	}

	parameters, err := inst.DumpParameters()
	if err != nil {
		return 0, nil, fmt.Errorf("dumping model parameters: %w", err)
	}

	return score, parameters, nil
}

func (w *Worker) resolveURI(ctx context.Context, datasetURI string) (string, error) {
	if w.resolver == nil {
		return datasetURI, nil
	}
	resolved, err := w.resolver.ResolveURI(ctx, datasetURI)
	if err != nil {
		return "", fmt.Errorf("resolving dataset uri %q: %w", datasetURI, err)
	}
	return resolved, nil
}

// completedTrials reads the completed trials of a train job in completion
// order, optionally narrowed to one model.
func (w *Worker) completedTrials(ctx context.Context, trainJobID uuid.UUID, tunedModelID *uuid.UUID) ([]model.Trial, error) {
	filter := store.NewTrialQueryFilter().
		ByTrainJobID(trainJobID.String()).
		ByStatus(model.TrialStatusComplete)
	if tunedModelID != nil {
		filter = filter.ByTunedModelID(tunedModelID.String())
	}

	trials, err := w.store.Trial().List(ctx, filter, store.NewTrialQueryOptions().WithSortOrder(store.SortByCompletedTime))
	if err != nil {
		return nil, fmt.Errorf("listing completed trials of train job %s: %w", trainJobID, err)
	}

	return trials, nil
}

// finalize re-attempts a failed finalization before giving up, so a
// transient store failure does not leave the trial's outcome ambiguous.
// The trial started, so its outcome must be recorded even when the loop
// context was cancelled mid-trial; finalization runs on a context detached
// from cancellation, bounded like the deferred worker stop.
func (w *Worker) finalize(ctx context.Context, fn func(ctx context.Context) error) error {
	finalizeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
	defer cancel()

	err := fn(finalizeCtx)
	for attempt := 0; err != nil && !errors.Is(err, store.ErrTrialFinalized) && attempt < w.finalizeRetries; attempt++ {
		w.log.Warnf("retrying trial finalization: %v", err)
		err = fn(finalizeCtx)
	}
	return err
}
