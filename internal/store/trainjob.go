package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hypertune/hypertune/internal/store/model"
	"gorm.io/gorm"
)

type TrainJob interface {
	List(ctx context.Context, filter *TrainJobQueryFilter) (model.TrainJobList, error)
	Get(ctx context.Context, id uuid.UUID) (*model.TrainJob, error)
	Create(ctx context.Context, trainJob model.TrainJob) (*model.TrainJob, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*model.TrainJob, error)
	InitialMigration(context.Context) error
}

type TrainJobStore struct {
	db *gorm.DB
}

func NewTrainJobStore(db *gorm.DB) TrainJob {
	return &TrainJobStore{db: db}
}

func (t *TrainJobStore) InitialMigration(ctx context.Context) error {
	return t.getDB(ctx).AutoMigrate(&model.TrainJob{})
}

// List lists train jobs matching the filter.
func (t *TrainJobStore) List(ctx context.Context, filter *TrainJobQueryFilter) (model.TrainJobList, error) {
	var trainJobs model.TrainJobList
	tx := t.getDB(ctx)

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}

	if err := tx.Model(&trainJobs).Find(&trainJobs).Error; err != nil {
		return nil, err
	}

	return trainJobs, nil
}

// Create creates a train job.
func (t *TrainJobStore) Create(ctx context.Context, trainJob model.TrainJob) (*model.TrainJob, error) {
	if err := t.getDB(ctx).WithContext(ctx).Create(&trainJob).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, err
	}

	return &trainJob, nil
}

// Get returns a train job based on its id.
func (t *TrainJobStore) Get(ctx context.Context, id uuid.UUID) (*model.TrainJob, error) {
	trainJob := &model.TrainJob{ID: id}

	if err := t.getDB(ctx).WithContext(ctx).First(&trainJob).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	return trainJob, nil
}

// UpdateStatus transitions a train job's status. Idempotent: setting the
// current status again is not an error.
func (t *TrainJobStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*model.TrainJob, error) {
	trainJob := &model.TrainJob{ID: id}

	if err := t.getDB(ctx).WithContext(ctx).First(trainJob).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	if err := t.getDB(ctx).WithContext(ctx).Model(trainJob).Update("status", status).Error; err != nil {
		return nil, err
	}

	return trainJob, nil
}

func (t *TrainJobStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return t.db
}
