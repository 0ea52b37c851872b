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

func (h *Handler) CreateTrainJob(w http.ResponseWriter, r *http.Request) {
	var resource api.TrainJobCreate
	if err := render.DecodeJSON(r.Body, &resource); err != nil {
		renderValidationError(w, r, service.NewErrInvalidRequest("invalid request body: %v", err))
		return
	}
	if err := h.validate.Struct(resource); err != nil {
		renderValidationError(w, r, err)
		return
	}

	trainJob, err := h.trainJobs.CreateTrainJob(r.Context(), &resource)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, mappers.TrainJobToApi(*trainJob))
}

func (h *Handler) GetTrainJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderValidationError(w, r, service.NewErrInvalidRequest("invalid train job id: %v", err))
		return
	}

	trainJob, err := h.trainJobs.GetTrainJob(r.Context(), id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, mappers.TrainJobToApi(*trainJob))
}

func (h *Handler) ListTrainJobs(w http.ResponseWriter, r *http.Request) {
	trainJobs, err := h.trainJobs.ListTrainJobs(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, mappers.TrainJobListToApi(trainJobs))
}

func (h *Handler) StopTrainJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderValidationError(w, r, service.NewErrInvalidRequest("invalid train job id: %v", err))
		return
	}

	trainJob, err := h.trainJobs.StopTrainJob(r.Context(), id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, mappers.TrainJobToApi(*trainJob))
}

// ListTrainJobTrials lists the trials of one train job, optionally narrowed
// by "model" and "status" query parameters.
func (h *Handler) ListTrainJobTrials(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderValidationError(w, r, service.NewErrInvalidRequest("invalid train job id: %v", err))
		return
	}

	filter := mappers.TrialFilter{
		TrainJobID: &id,
		Status:     r.URL.Query().Get("status"),
	}
	if raw := r.URL.Query().Get("model"); raw != "" {
		modelID, err := uuid.Parse(raw)
		if err != nil {
			renderValidationError(w, r, service.NewErrInvalidRequest("invalid model id: %v", err))
			return
		}
		filter.TunedModelID = &modelID
	}

	trials, err := h.trials.ListTrials(r.Context(), filter)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, mappers.TrialListToApi(trials))
}
