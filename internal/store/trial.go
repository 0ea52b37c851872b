package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hypertune/hypertune/internal/store/model"
	"github.com/hypertune/hypertune/internal/tuning"
	"gorm.io/gorm"
)

type Trial interface {
	List(ctx context.Context, filter *TrialQueryFilter, opts *TrialQueryOptions) (model.TrialList, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Trial, error)
	Create(ctx context.Context, tunedModelID, trainJobID uuid.UUID, hyperparameters tuning.Params) (*model.Trial, error)
	MarkComplete(ctx context.Context, id uuid.UUID, score float64, parameters []byte) error
	MarkErrored(ctx context.Context, id uuid.UUID) error
	InitialMigration(context.Context) error
}

type TrialStore struct {
	db *gorm.DB
}

func NewTrialStore(db *gorm.DB) Trial {
	return &TrialStore{db: db}
}

func (t *TrialStore) InitialMigration(ctx context.Context) error {
	return t.getDB(ctx).AutoMigrate(&model.Trial{})
}

// List lists trials matching the filter.
func (t *TrialStore) List(ctx context.Context, filter *TrialQueryFilter, opts *TrialQueryOptions) (model.TrialList, error) {
	var trials model.TrialList
	tx := t.getDB(ctx)

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}

	if opts != nil {
		for _, fn := range opts.QueryFn {
			tx = fn(tx)
		}
	}

	if err := tx.Model(&trials).Find(&trials).Error; err != nil {
		return nil, err
	}

	return trials, nil
}

// Create inserts a new trial with status running and the chosen
// hyperparameters. The hyperparameters are fixed at creation.
func (t *TrialStore) Create(ctx context.Context, tunedModelID, trainJobID uuid.UUID, hyperparameters tuning.Params) (*model.Trial, error) {
	trial := model.Trial{
		ID:              uuid.New(),
		TrainJobID:      trainJobID,
		TunedModelID:    tunedModelID,
		Hyperparameters: model.MakeJSONField(hyperparameters),
		Status:          model.TrialStatusRunning,
	}

	if err := t.getDB(ctx).WithContext(ctx).Create(&trial).Error; err != nil {
		return nil, err
	}

	return &trial, nil
}

// Get returns a trial based on its id.
func (t *TrialStore) Get(ctx context.Context, id uuid.UUID) (*model.Trial, error) {
	trial := &model.Trial{ID: id}

	if err := t.getDB(ctx).WithContext(ctx).First(&trial).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	return trial, nil
}

// MarkComplete finalizes a running trial with its score and trained
// parameters. Returns ErrTrialFinalized if the trial already left the
// running state: a finalized trial's score and parameters are never
// overwritten.
func (t *TrialStore) MarkComplete(ctx context.Context, id uuid.UUID, score float64, parameters []byte) error {
	now := time.Now()
	return t.finalize(ctx, id, map[string]any{
		"status":       model.TrialStatusComplete,
		"score":        score,
		"parameters":   parameters,
		"completed_at": &now,
	})
}

// MarkErrored finalizes a running trial as errored. No score or parameters
// are recorded.
func (t *TrialStore) MarkErrored(ctx context.Context, id uuid.UUID) error {
	return t.finalize(ctx, id, map[string]any{
		"status": model.TrialStatusErrored,
	})
}

// finalize performs the single-writer running -> terminal transition. The
// status guard in the WHERE clause makes concurrent or repeated finalization
// deterministic: exactly one caller wins.
func (t *TrialStore) finalize(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	tx := t.getDB(ctx).WithContext(ctx).
		Model(&model.Trial{}).
		Where("id = ?", id).
		Where("status = ?", model.TrialStatusRunning).
		Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		if _, err := t.Get(ctx, id); err != nil {
			return err
		}
		return ErrTrialFinalized
	}

	return nil
}

func (t *TrialStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return t.db
}
