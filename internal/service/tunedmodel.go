package service

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"

	api "github.com/hypertune/hypertune/api/v1alpha1"
	"github.com/hypertune/hypertune/internal/capability"
	"github.com/hypertune/hypertune/internal/service/mappers"
	"github.com/hypertune/hypertune/internal/store"
	"github.com/hypertune/hypertune/internal/store/model"
	"github.com/hypertune/hypertune/internal/tuning"
)

type TunedModelService struct {
	store    store.Store
	registry *capability.Registry
}

func NewTunedModelService(store store.Store, registry *capability.Registry) *TunedModelService {
	return &TunedModelService{store: store, registry: registry}
}

// RegisterModel validates the hyperparameter space and the strategy name
// before recording the model. A model is immutable once registered: workers
// read it concurrently and its space must never change under them.
func (s *TunedModelService) RegisterModel(ctx context.Context, resource *api.TunedModelCreate) (*model.TunedModel, error) {
	space, err := tuning.NewSpace(resource.Hyperparameters)
	if err != nil {
		return nil, NewErrInvalidRequest("invalid hyperparameter space: %v", err)
	}

	if _, err := tuning.New(resource.Strategy, space); err != nil {
		return nil, NewErrInvalidRequest("invalid strategy: %v", err)
	}

	// Instantiating the capability once catches an unknown kind or a broken
	// definition at registration time instead of on the first trial.
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	inst, err := s.registry.New(resource.Kind, resource.Definition, space.Sample(rng))
	if err != nil {
		return nil, NewErrInvalidRequest("invalid model kind: %v", err)
	}
	_ = inst.Destroy()

	tunedModel, err := s.store.TunedModel().Create(ctx, mappers.TunedModelFromApi(uuid.New(), resource))
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, NewErrDuplicateTunedModel(resource.Name)
		}
		return nil, err
	}

	return tunedModel, nil
}

func (s *TunedModelService) GetModel(ctx context.Context, id uuid.UUID) (*model.TunedModel, error) {
	tunedModel, err := s.store.TunedModel().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrTunedModelNotFound(id)
		}
		return nil, err
	}
	return tunedModel, nil
}

func (s *TunedModelService) ListModels(ctx context.Context) ([]model.TunedModel, error) {
	return s.store.TunedModel().List(ctx)
}
