package model

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	WorkerStatusIdle    = "idle"
	WorkerStatusRunning = "running"
	WorkerStatusStopped = "stopped"
)

// Worker binds one running process to exactly one (train job, model) pair.
type Worker struct {
	gorm.Model
	ID           uuid.UUID `gorm:"primaryKey"`
	TrainJobID   uuid.UUID `gorm:"index;not null"`
	TunedModelID uuid.UUID `gorm:"not null"`
	Status       string    `gorm:"not null"`
}

type WorkerList []Worker

func (w Worker) String() string {
	v, _ := json.Marshal(w)
	return string(v)
}

func NewWorkerFromID(id uuid.UUID) *Worker {
	return &Worker{ID: id}
}
