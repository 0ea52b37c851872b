package v1alpha1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	api "github.com/hypertune/hypertune/api/v1alpha1"
	"github.com/hypertune/hypertune/internal/service"
	"github.com/hypertune/hypertune/internal/service/mappers"
)

func (h *Handler) CreateWorker(w http.ResponseWriter, r *http.Request) {
	var resource api.WorkerCreate
	if err := render.DecodeJSON(r.Body, &resource); err != nil {
		renderValidationError(w, r, service.NewErrInvalidRequest("invalid request body: %v", err))
		return
	}
	if err := h.validate.Struct(resource); err != nil {
		renderValidationError(w, r, err)
		return
	}

	worker, err := h.workers.CreateWorker(r.Context(), &resource)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, mappers.WorkerToApi(*worker))
}

func (h *Handler) GetWorker(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderValidationError(w, r, service.NewErrInvalidRequest("invalid worker id: %v", err))
		return
	}

	worker, err := h.workers.GetWorker(r.Context(), id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, mappers.WorkerToApi(*worker))
}
