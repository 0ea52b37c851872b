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

func (h *Handler) RegisterModel(w http.ResponseWriter, r *http.Request) {
	var resource api.TunedModelCreate
	if err := render.DecodeJSON(r.Body, &resource); err != nil {
		renderValidationError(w, r, service.NewErrInvalidRequest("invalid request body: %v", err))
		return
	}
	if err := h.validate.Struct(resource); err != nil {
		renderValidationError(w, r, err)
		return
	}

	tunedModel, err := h.models.RegisterModel(r.Context(), &resource)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, mappers.TunedModelToApi(*tunedModel))
}

func (h *Handler) GetModel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderValidationError(w, r, service.NewErrInvalidRequest("invalid model id: %v", err))
		return
	}

	tunedModel, err := h.models.GetModel(r.Context(), id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, mappers.TunedModelToApi(*tunedModel))
}

func (h *Handler) ListModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.models.ListModels(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, mappers.TunedModelListToApi(models))
}
