package store

import (
	"context"

	"gorm.io/gorm"
)

type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	TrainJob() TrainJob
	TunedModel() TunedModel
	Trial() Trial
	Worker() Worker
	Dataset() Dataset
	InitialMigration() error
	Close() error
}

type DataStore struct {
	db         *gorm.DB
	trainJob   TrainJob
	tunedModel TunedModel
	trial      Trial
	worker     Worker
	dataset    Dataset
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		trainJob:   NewTrainJobStore(db),
		tunedModel: NewTunedModelStore(db),
		trial:      NewTrialStore(db),
		worker:     NewWorkerStore(db),
		dataset:    NewDatasetStore(db),
		db:         db,
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db)
}

func (s *DataStore) TrainJob() TrainJob {
	return s.trainJob
}

func (s *DataStore) TunedModel() TunedModel {
	return s.tunedModel
}

func (s *DataStore) Trial() Trial {
	return s.trial
}

func (s *DataStore) Worker() Worker {
	return s.worker
}

func (s *DataStore) Dataset() Dataset {
	return s.dataset
}

func (s *DataStore) InitialMigration() error {
	ctx := context.Background()
	for _, m := range []interface {
		InitialMigration(context.Context) error
	}{s.trainJob, s.tunedModel, s.trial, s.worker, s.dataset} {
		if err := m.InitialMigration(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
