package mappers

import (
	"io"

	"github.com/google/uuid"

	api "github.com/hypertune/hypertune/api/v1alpha1"
	"github.com/hypertune/hypertune/internal/store/model"
)

// DatasetUploadForm carries one dataset upload. Content is streamed to the
// artifact store, never buffered in the service.
type DatasetUploadForm struct {
	Name      string
	Content   io.Reader
	SizeBytes int64
}

func (f DatasetUploadForm) ToDataset(id uuid.UUID, uri string) model.Dataset {
	return model.Dataset{
		ID:        id,
		Name:      f.Name,
		URI:       uri,
		SizeBytes: f.SizeBytes,
	}
}

func TunedModelFromApi(id uuid.UUID, resource *api.TunedModelCreate) model.TunedModel {
	return model.TunedModel{
		ID:              id,
		Name:            resource.Name,
		Kind:            resource.Kind,
		Strategy:        resource.Strategy,
		Definition:      resource.Definition,
		Hyperparameters: model.MakeJSONField(resource.Hyperparameters),
	}
}

func TrainJobFromApi(id uuid.UUID, resource *api.TrainJobCreate, trainURI, testURI string) model.TrainJob {
	return model.TrainJob{
		ID:              id,
		TrainDatasetURI: trainURI,
		TestDatasetURI:  testURI,
		BudgetKind:      resource.BudgetKind,
		BudgetAmount:    resource.BudgetAmount,
		Status:          model.TrainJobStatusRunning,
	}
}

func WorkerFromApi(id uuid.UUID, resource *api.WorkerCreate) model.Worker {
	return model.Worker{
		ID:           id,
		TrainJobID:   resource.TrainJobId,
		TunedModelID: resource.TunedModelId,
		Status:       model.WorkerStatusIdle,
	}
}

// TrialFilter narrows trial listings. Nil fields match everything.
type TrialFilter struct {
	TrainJobID   *uuid.UUID
	TunedModelID *uuid.UUID
	Status       string
}
