package model

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hypertune/hypertune/internal/tuning"
	"gorm.io/gorm"
)

// TunedModel is a registered model definition plus its hyperparameter space.
// Immutable once registered. Kind selects the capability implementation that
// can instantiate it; Definition is the opaque serialized model handed to
// that capability.
type TunedModel struct {
	gorm.Model
	ID              uuid.UUID                    `gorm:"primaryKey"`
	Name            string                       `gorm:"uniqueIndex;not null"`
	Kind            string                       `gorm:"not null"`
	Strategy        string                       `gorm:""`
	Definition      []byte                       `gorm:""`
	Hyperparameters *JSONField[tuning.SpaceSpec] `gorm:"type:jsonb;not null"`
}

type TunedModelList []TunedModel

func (m TunedModel) String() string {
	v, _ := json.Marshal(m)
	return string(v)
}
