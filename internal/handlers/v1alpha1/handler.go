// Package v1alpha1 exposes the admin API over HTTP.
package v1alpha1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	api "github.com/hypertune/hypertune/api/v1alpha1"
	"github.com/hypertune/hypertune/internal/service"
)

type Handler struct {
	datasets  *service.DatasetService
	models    *service.TunedModelService
	trainJobs *service.TrainJobService
	trials    *service.TrialService
	workers   *service.WorkerService
	validate  *validator.Validate
}

func NewHandler(
	datasets *service.DatasetService,
	models *service.TunedModelService,
	trainJobs *service.TrainJobService,
	trials *service.TrialService,
	workers *service.WorkerService,
) *Handler {
	return &Handler{
		datasets:  datasets,
		models:    models,
		trainJobs: trainJobs,
		trials:    trials,
		workers:   workers,
		validate:  validator.New(),
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.Health)

	r.Route("/api/v1alpha1", func(r chi.Router) {
		r.Route("/datasets", func(r chi.Router) {
			r.Post("/", h.UploadDataset)
			r.Get("/", h.ListDatasets)
			r.Get("/{id}", h.GetDataset)
		})
		r.Route("/models", func(r chi.Router) {
			r.Post("/", h.RegisterModel)
			r.Get("/", h.ListModels)
			r.Get("/{id}", h.GetModel)
		})
		r.Route("/trainjobs", func(r chi.Router) {
			r.Post("/", h.CreateTrainJob)
			r.Get("/", h.ListTrainJobs)
			r.Get("/{id}", h.GetTrainJob)
			r.Post("/{id}/stop", h.StopTrainJob)
			r.Get("/{id}/trials", h.ListTrainJobTrials)
		})
		r.Route("/trials", func(r chi.Router) {
			r.Get("/{id}", h.GetTrial)
		})
		r.Route("/workers", func(r chi.Router) {
			r.Post("/", h.CreateWorker)
			r.Get("/{id}", h.GetWorker)
		})
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, api.Health{Status: "ok"})
}

// renderError maps service errors onto HTTP statuses. Unclassified errors
// stay opaque 500s so store internals never leak to clients.
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch err.(type) {
	case *service.ErrResourceNotFound:
		status = http.StatusNotFound
	case *service.ErrInvalidRequest:
		status = http.StatusBadRequest
	case *service.ErrDuplicateResource:
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}

	render.Status(r, status)
	render.JSON(w, r, api.Error{Message: message})
}

func renderValidationError(w http.ResponseWriter, r *http.Request, err error) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, api.Error{Message: err.Error()})
}
