package store

import (
	"gorm.io/gorm"
)

type SortOrder int

const (
	Unsorted SortOrder = iota
	SortByID
	SortByCreatedTime
	SortByCompletedTime
)

type BaseQuerier struct {
	QueryFn []func(tx *gorm.DB) *gorm.DB
}

type TrialQueryFilter BaseQuerier

func NewTrialQueryFilter() *TrialQueryFilter {
	return &TrialQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (qf *TrialQueryFilter) ByTrainJobID(trainJobID string) *TrialQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("train_job_id = ?", trainJobID)
	})
	return qf
}

func (qf *TrialQueryFilter) ByTunedModelID(modelID string) *TrialQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("tuned_model_id = ?", modelID)
	})
	return qf
}

func (qf *TrialQueryFilter) ByStatus(status string) *TrialQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("status = ?", status)
	})
	return qf
}

type TrialQueryOptions BaseQuerier

func NewTrialQueryOptions() *TrialQueryOptions {
	return &TrialQueryOptions{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (o *TrialQueryOptions) WithSortOrder(sort SortOrder) *TrialQueryOptions {
	o.QueryFn = append(o.QueryFn, func(tx *gorm.DB) *gorm.DB {
		switch sort {
		case SortByID:
			return tx.Order("id")
		case SortByCreatedTime:
			return tx.Order("created_at")
		case SortByCompletedTime:
			return tx.Order("completed_at")
		default:
			return tx
		}
	})
	return o
}

type TrainJobQueryFilter BaseQuerier

func NewTrainJobQueryFilter() *TrainJobQueryFilter {
	return &TrainJobQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (qf *TrainJobQueryFilter) ByStatus(status string) *TrainJobQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("status = ?", status)
	})
	return qf
}
