package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hypertune/hypertune/internal/store/model"
	"gorm.io/gorm"
)

type TunedModel interface {
	List(ctx context.Context) (model.TunedModelList, error)
	Get(ctx context.Context, id uuid.UUID) (*model.TunedModel, error)
	Create(ctx context.Context, tunedModel model.TunedModel) (*model.TunedModel, error)
	InitialMigration(context.Context) error
}

type TunedModelStore struct {
	db *gorm.DB
}

func NewTunedModelStore(db *gorm.DB) TunedModel {
	return &TunedModelStore{db: db}
}

func (m *TunedModelStore) InitialMigration(ctx context.Context) error {
	return m.getDB(ctx).AutoMigrate(&model.TunedModel{})
}

func (m *TunedModelStore) List(ctx context.Context) (model.TunedModelList, error) {
	var models model.TunedModelList

	if err := m.getDB(ctx).Model(&models).Find(&models).Error; err != nil {
		return nil, err
	}

	return models, nil
}

// Create registers a model. Model records are immutable afterwards.
func (m *TunedModelStore) Create(ctx context.Context, tunedModel model.TunedModel) (*model.TunedModel, error) {
	if err := m.getDB(ctx).WithContext(ctx).Create(&tunedModel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, err
	}

	return &tunedModel, nil
}

func (m *TunedModelStore) Get(ctx context.Context, id uuid.UUID) (*model.TunedModel, error) {
	tunedModel := &model.TunedModel{ID: id}

	if err := m.getDB(ctx).WithContext(ctx).First(&tunedModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	return tunedModel, nil
}

func (m *TunedModelStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return m.db
}
