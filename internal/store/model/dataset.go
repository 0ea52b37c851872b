package model

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Dataset is an uploaded dataset registered with the admin layer. The URI
// points at the backing object store; train jobs reference it by URI.
type Dataset struct {
	gorm.Model
	ID        uuid.UUID `gorm:"primaryKey"`
	Name      string    `gorm:"not null"`
	URI       string    `gorm:"not null"`
	SizeBytes int64
}

type DatasetList []Dataset

func (d Dataset) String() string {
	v, _ := json.Marshal(d)
	return string(v)
}
