package v1alpha1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/hypertune/hypertune/internal/service"
	"github.com/hypertune/hypertune/internal/service/mappers"
)

// UploadDataset accepts a multipart upload with a "file" part and an
// optional "name" field defaulting to the uploaded filename.
func (h *Handler) UploadDataset(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		renderValidationError(w, r, service.NewErrInvalidRequest("missing file part: %v", err))
		return
	}
	defer file.Close()

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	dataset, err := h.datasets.UploadDataset(r.Context(), mappers.DatasetUploadForm{
		Name:      name,
		Content:   file,
		SizeBytes: header.Size,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, mappers.DatasetToApi(*dataset))
}

func (h *Handler) GetDataset(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderValidationError(w, r, service.NewErrInvalidRequest("invalid dataset id: %v", err))
		return
	}

	dataset, err := h.datasets.GetDataset(r.Context(), id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, mappers.DatasetToApi(*dataset))
}

func (h *Handler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	datasets, err := h.datasets.ListDatasets(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, mappers.DatasetListToApi(datasets))
}
