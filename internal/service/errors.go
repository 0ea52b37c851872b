package service

import (
	"fmt"

	"github.com/google/uuid"
)

type ErrResourceNotFound struct {
	error
}

func NewErrResourceNotFound(id uuid.UUID, resourceType string) *ErrResourceNotFound {
	return &ErrResourceNotFound{fmt.Errorf("%s %s not found", resourceType, id)}
}

func NewErrDatasetNotFound(id uuid.UUID) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "dataset")
}

func NewErrTunedModelNotFound(id uuid.UUID) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "model")
}

func NewErrTrainJobNotFound(id uuid.UUID) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "train job")
}

func NewErrWorkerNotFound(id uuid.UUID) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "worker")
}

type ErrInvalidRequest struct {
	error
}

func NewErrInvalidRequest(format string, args ...any) *ErrInvalidRequest {
	return &ErrInvalidRequest{fmt.Errorf(format, args...)}
}

type ErrDuplicateResource struct {
	error
}

func NewErrDuplicateTunedModel(name string) *ErrDuplicateResource {
	return &ErrDuplicateResource{fmt.Errorf("a model named %q is already registered", name)}
}
