package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hypertune/hypertune/internal/service/mappers"
	"github.com/hypertune/hypertune/internal/store"
	"github.com/hypertune/hypertune/internal/store/model"
)

// Uploader persists raw dataset content and returns the URI it can later be
// fetched from.
type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64) (string, error)
}

type DatasetService struct {
	store    store.Store
	uploader Uploader
}

func NewDatasetService(store store.Store, uploader Uploader) *DatasetService {
	return &DatasetService{store: store, uploader: uploader}
}

// UploadDataset stores the content in the artifact store and records the
// dataset. The returned dataset's URI points at the stored object.
func (s *DatasetService) UploadDataset(ctx context.Context, form mappers.DatasetUploadForm) (*model.Dataset, error) {
	if form.Name == "" {
		return nil, NewErrInvalidRequest("dataset name is required")
	}
	if form.Content == nil {
		return nil, NewErrInvalidRequest("dataset content is required")
	}

	id := uuid.New()
	key := fmt.Sprintf("datasets/%s/%s", id, form.Name)

	uri, err := s.uploader.Upload(ctx, key, form.Content, form.SizeBytes)
	if err != nil {
		return nil, fmt.Errorf("uploading dataset %q: %w", form.Name, err)
	}

	dataset, err := s.store.Dataset().Create(ctx, form.ToDataset(id, uri))
	if err != nil {
		return nil, err
	}

	zap.S().Named("dataset_service").Infof("stored dataset %s at %s", dataset.ID, dataset.URI)
	return dataset, nil
}

func (s *DatasetService) GetDataset(ctx context.Context, id uuid.UUID) (*model.Dataset, error) {
	dataset, err := s.store.Dataset().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrDatasetNotFound(id)
		}
		return nil, err
	}
	return dataset, nil
}

func (s *DatasetService) ListDatasets(ctx context.Context) ([]model.Dataset, error) {
	return s.store.Dataset().List(ctx)
}
