package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hypertune/hypertune/internal/tuning"
	"gorm.io/gorm"
)

const (
	TrialStatusRunning  = "running"
	TrialStatusComplete = "complete"
	TrialStatusErrored  = "errored"
)

// Trial is one attempt to fit a model with one hyperparameter configuration.
// Created with status running, finalized exactly once to complete or
// errored, never deleted or reopened. Hyperparameters are fixed at creation.
type Trial struct {
	gorm.Model
	ID              uuid.UUID                 `gorm:"primaryKey"`
	TrainJobID      uuid.UUID                 `gorm:"index;not null"`
	TunedModelID    uuid.UUID                 `gorm:"index;not null"`
	Hyperparameters *JSONField[tuning.Params] `gorm:"type:jsonb;not null"`
	Status          string                    `gorm:"not null"`
	Score           *float64
	Parameters      []byte
	CompletedAt     *time.Time
}

type TrialList []Trial

func (t Trial) String() string {
	v, _ := json.Marshal(t)
	return string(v)
}
