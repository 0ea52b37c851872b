package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	api "github.com/hypertune/hypertune/api/v1alpha1"
	"github.com/hypertune/hypertune/internal/service/mappers"
	"github.com/hypertune/hypertune/internal/store"
	"github.com/hypertune/hypertune/internal/store/model"
	"github.com/hypertune/hypertune/pkg/metrics"
)

type WorkerService struct {
	store store.Store
}

func NewWorkerService(store store.Store) *WorkerService {
	return &WorkerService{store: store}
}

// CreateWorker records a new assignment binding one worker process to a
// (train job, model) pair. Both referents are checked in the same
// transaction as the insert.
func (s *WorkerService) CreateWorker(ctx context.Context, resource *api.WorkerCreate) (*model.Worker, error) {
	ctx, err := s.store.NewTransactionContext(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.TrainJob().Get(ctx, resource.TrainJobId); err != nil {
		_, _ = store.Rollback(ctx)
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrTrainJobNotFound(resource.TrainJobId)
		}
		return nil, err
	}

	if _, err := s.store.TunedModel().Get(ctx, resource.TunedModelId); err != nil {
		_, _ = store.Rollback(ctx)
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrTunedModelNotFound(resource.TunedModelId)
		}
		return nil, err
	}

	worker, err := s.store.Worker().Create(ctx, mappers.WorkerFromApi(uuid.New(), resource))
	if err != nil {
		_, _ = store.Rollback(ctx)
		return nil, err
	}

	if _, err := store.Commit(ctx); err != nil {
		return nil, err
	}

	s.updateStatusMetrics(context.WithoutCancel(ctx))
	return worker, nil
}

func (s *WorkerService) GetWorker(ctx context.Context, id uuid.UUID) (*model.Worker, error) {
	worker, err := s.store.Worker().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrWorkerNotFound(id)
		}
		return nil, err
	}
	return worker, nil
}

func (s *WorkerService) updateStatusMetrics(ctx context.Context) {
	for _, status := range []string{model.WorkerStatusIdle, model.WorkerStatusRunning, model.WorkerStatusStopped} {
		count, err := s.store.Worker().CountByStatus(ctx, status)
		if err != nil {
			continue
		}
		metrics.UpdateWorkerStateCounterMetric(status, int(count))
	}
}
