package v1alpha1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/hypertune/hypertune/internal/service"
	"github.com/hypertune/hypertune/internal/service/mappers"
)

func (h *Handler) GetTrial(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderValidationError(w, r, service.NewErrInvalidRequest("invalid trial id: %v", err))
		return
	}

	trial, err := h.trials.GetTrial(r.Context(), id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, mappers.TrialToApi(*trial))
}
