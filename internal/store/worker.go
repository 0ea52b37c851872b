package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hypertune/hypertune/internal/store/model"
	"gorm.io/gorm"
)

type Worker interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Worker, error)
	Create(ctx context.Context, worker model.Worker) (*model.Worker, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*model.Worker, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	InitialMigration(context.Context) error
}

type WorkerStore struct {
	db *gorm.DB
}

func NewWorkerStore(db *gorm.DB) Worker {
	return &WorkerStore{db: db}
}

func (w *WorkerStore) InitialMigration(ctx context.Context) error {
	return w.getDB(ctx).AutoMigrate(&model.Worker{})
}

// Create creates a worker assignment, idle until its process starts.
func (w *WorkerStore) Create(ctx context.Context, worker model.Worker) (*model.Worker, error) {
	if err := w.getDB(ctx).WithContext(ctx).Create(&worker).Error; err != nil {
		return nil, err
	}

	return &worker, nil
}

// Get returns a worker assignment based on its id.
func (w *WorkerStore) Get(ctx context.Context, id uuid.UUID) (*model.Worker, error) {
	worker := &model.Worker{ID: id}

	if err := w.getDB(ctx).WithContext(ctx).First(&worker).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	return worker, nil
}

// UpdateStatus transitions a worker's status in a single write. Idempotent:
// re-marking the current status succeeds.
func (w *WorkerStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*model.Worker, error) {
	worker := &model.Worker{ID: id}

	if err := w.getDB(ctx).WithContext(ctx).First(worker).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	if err := w.getDB(ctx).WithContext(ctx).Model(worker).Update("status", status).Error; err != nil {
		return nil, err
	}

	return worker, nil
}

func (w *WorkerStore) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	if err := w.getDB(ctx).WithContext(ctx).Model(&model.Worker{}).Where("status = ?", status).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (w *WorkerStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return w.db
}
