package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/hypertune/hypertune/internal/service/mappers"
	"github.com/hypertune/hypertune/internal/store"
	"github.com/hypertune/hypertune/internal/store/model"
)

type TrialService struct {
	store store.Store
}

func NewTrialService(store store.Store) *TrialService {
	return &TrialService{store: store}
}

// ListTrials returns trials matching the filter, oldest completion first.
func (s *TrialService) ListTrials(ctx context.Context, filter mappers.TrialFilter) ([]model.Trial, error) {
	storeFilter := store.NewTrialQueryFilter()
	if filter.TrainJobID != nil {
		storeFilter = storeFilter.ByTrainJobID(filter.TrainJobID.String())
	}
	if filter.TunedModelID != nil {
		storeFilter = storeFilter.ByTunedModelID(filter.TunedModelID.String())
	}
	if filter.Status != "" {
		storeFilter = storeFilter.ByStatus(filter.Status)
	}

	return s.store.Trial().List(ctx, storeFilter, store.NewTrialQueryOptions().WithSortOrder(store.SortByCompletedTime))
}

func (s *TrialService) GetTrial(ctx context.Context, id uuid.UUID) (*model.Trial, error) {
	trial, err := s.store.Trial().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrResourceNotFound(id, "trial")
		}
		return nil, err
	}
	return trial, nil
}
