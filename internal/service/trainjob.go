package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	api "github.com/hypertune/hypertune/api/v1alpha1"
	"github.com/hypertune/hypertune/internal/budget"
	"github.com/hypertune/hypertune/internal/service/mappers"
	"github.com/hypertune/hypertune/internal/store"
	"github.com/hypertune/hypertune/internal/store/model"
)

type TrainJobService struct {
	store store.Store
}

func NewTrainJobService(store store.Store) *TrainJobService {
	return &TrainJobService{store: store}
}

// CreateTrainJob resolves the referenced datasets and records the job. The
// dataset URIs are frozen onto the job so later dataset changes cannot move
// a running campaign's data from under it.
func (s *TrainJobService) CreateTrainJob(ctx context.Context, resource *api.TrainJobCreate) (*model.TrainJob, error) {
	if _, err := budget.Reached(budget.Kind(resource.BudgetKind), resource.BudgetAmount, nil); err != nil {
		return nil, NewErrInvalidRequest("invalid budget: %v", err)
	}

	ctx, err := s.store.NewTransactionContext(ctx)
	if err != nil {
		return nil, err
	}

	trainDataset, err := s.store.Dataset().Get(ctx, resource.TrainDatasetId)
	if err != nil {
		_, _ = store.Rollback(ctx)
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrDatasetNotFound(resource.TrainDatasetId)
		}
		return nil, err
	}

	testDataset, err := s.store.Dataset().Get(ctx, resource.TestDatasetId)
	if err != nil {
		_, _ = store.Rollback(ctx)
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrDatasetNotFound(resource.TestDatasetId)
		}
		return nil, err
	}

	trainJob, err := s.store.TrainJob().Create(ctx, mappers.TrainJobFromApi(uuid.New(), resource, trainDataset.URI, testDataset.URI))
	if err != nil {
		_, _ = store.Rollback(ctx)
		return nil, err
	}

	if _, err := store.Commit(ctx); err != nil {
		return nil, err
	}

	return trainJob, nil
}

func (s *TrainJobService) GetTrainJob(ctx context.Context, id uuid.UUID) (*model.TrainJob, error) {
	trainJob, err := s.store.TrainJob().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrTrainJobNotFound(id)
		}
		return nil, err
	}
	return trainJob, nil
}

func (s *TrainJobService) ListTrainJobs(ctx context.Context) ([]model.TrainJob, error) {
	return s.store.TrainJob().List(ctx, nil)
}

// StopTrainJob marks the job stopped. Workers notice on their next budget
// check; running trials are left to finalize on their own.
func (s *TrainJobService) StopTrainJob(ctx context.Context, id uuid.UUID) (*model.TrainJob, error) {
	trainJob, err := s.store.TrainJob().UpdateStatus(ctx, id, model.TrainJobStatusStopped)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrTrainJobNotFound(id)
		}
		return nil, err
	}
	return trainJob, nil
}
