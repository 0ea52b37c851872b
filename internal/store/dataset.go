package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hypertune/hypertune/internal/store/model"
	"gorm.io/gorm"
)

type Dataset interface {
	List(ctx context.Context) (model.DatasetList, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Dataset, error)
	Create(ctx context.Context, dataset model.Dataset) (*model.Dataset, error)
	InitialMigration(context.Context) error
}

type DatasetStore struct {
	db *gorm.DB
}

func NewDatasetStore(db *gorm.DB) Dataset {
	return &DatasetStore{db: db}
}

func (d *DatasetStore) InitialMigration(ctx context.Context) error {
	return d.getDB(ctx).AutoMigrate(&model.Dataset{})
}

func (d *DatasetStore) List(ctx context.Context) (model.DatasetList, error) {
	var datasets model.DatasetList

	if err := d.getDB(ctx).Model(&datasets).Find(&datasets).Error; err != nil {
		return nil, err
	}

	return datasets, nil
}

func (d *DatasetStore) Create(ctx context.Context, dataset model.Dataset) (*model.Dataset, error) {
	if err := d.getDB(ctx).WithContext(ctx).Create(&dataset).Error; err != nil {
		return nil, err
	}

	return &dataset, nil
}

func (d *DatasetStore) Get(ctx context.Context, id uuid.UUID) (*model.Dataset, error) {
	dataset := &model.Dataset{ID: id}

	if err := d.getDB(ctx).WithContext(ctx).First(&dataset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	return dataset, nil
}

func (d *DatasetStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return d.db
}
