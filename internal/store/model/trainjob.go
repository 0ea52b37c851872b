package model

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TrainJobStatusRunning = "running"
	TrainJobStatusStopped = "stopped"
)

// TrainJob is one tuning campaign: a model family searched against fixed
// datasets under a budget. Immutable after creation except for its status.
type TrainJob struct {
	gorm.Model
	ID              uuid.UUID `gorm:"primaryKey"`
	TrainDatasetURI string    `gorm:"not null"`
	TestDatasetURI  string    `gorm:"not null"`
	BudgetKind      string    `gorm:"not null"`
	BudgetAmount    float64   `gorm:"not null"`
	Status          string    `gorm:"not null"`
}

type TrainJobList []TrainJob

func (t TrainJob) String() string {
	v, _ := json.Marshal(t)
	return string(v)
}
