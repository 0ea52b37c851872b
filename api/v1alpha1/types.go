// Package v1alpha1 holds the wire types of the admin API.
package v1alpha1

import (
	"time"

	"github.com/google/uuid"

	"github.com/hypertune/hypertune/internal/tuning"
)

type Dataset struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Uri       string    `json:"uri"`
	SizeBytes int64     `json:"sizeBytes"`
	CreatedAt time.Time `json:"createdAt"`
}

type DatasetList []Dataset

type TunedModelCreate struct {
	Name            string           `json:"name" validate:"required"`
	Kind            string           `json:"kind" validate:"required"`
	Strategy        string           `json:"strategy,omitempty"`
	Definition      []byte           `json:"definition,omitempty"`
	Hyperparameters tuning.SpaceSpec `json:"hyperparameters" validate:"required"`
}

type TunedModel struct {
	Id              uuid.UUID        `json:"id"`
	Name            string           `json:"name"`
	Kind            string           `json:"kind"`
	Strategy        string           `json:"strategy,omitempty"`
	Hyperparameters tuning.SpaceSpec `json:"hyperparameters"`
	CreatedAt       time.Time        `json:"createdAt"`
}

type TunedModelList []TunedModel

type TrainJobCreate struct {
	TrainDatasetId uuid.UUID `json:"trainDatasetId" validate:"required"`
	TestDatasetId  uuid.UUID `json:"testDatasetId" validate:"required"`
	BudgetKind     string    `json:"budgetKind" validate:"required"`
	BudgetAmount   float64   `json:"budgetAmount" validate:"gte=0"`
}

type TrainJob struct {
	Id              uuid.UUID `json:"id"`
	TrainDatasetUri string    `json:"trainDatasetUri"`
	TestDatasetUri  string    `json:"testDatasetUri"`
	BudgetKind      string    `json:"budgetKind"`
	BudgetAmount    float64   `json:"budgetAmount"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}

type TrainJobList []TrainJob

type WorkerCreate struct {
	TrainJobId   uuid.UUID `json:"trainJobId" validate:"required"`
	TunedModelId uuid.UUID `json:"tunedModelId" validate:"required"`
}

type Worker struct {
	Id           uuid.UUID `json:"id"`
	TrainJobId   uuid.UUID `json:"trainJobId"`
	TunedModelId uuid.UUID `json:"tunedModelId"`
	Status       string    `json:"status"`
}

type WorkerList []Worker

type Trial struct {
	Id              uuid.UUID     `json:"id"`
	TrainJobId      uuid.UUID     `json:"trainJobId"`
	TunedModelId    uuid.UUID     `json:"tunedModelId"`
	Hyperparameters tuning.Params `json:"hyperparameters"`
	Status          string        `json:"status"`
	Score           *float64      `json:"score,omitempty"`
	CompletedAt     *time.Time    `json:"completedAt,omitempty"`
}

type TrialList []Trial

type Health struct {
	Status string `json:"status"`
}

type Error struct {
	Message string `json:"message"`
}
