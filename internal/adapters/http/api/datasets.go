package api

import (
	"net/http"

	"github.com/okian/samemean/internal/domain/catalog"
)

// DatasetsHandler serves the read side of the registry.
type DatasetsHandler struct {
	deps Dependencies
}

// NewDatasetsHandler creates a new datasets handler.
func NewDatasetsHandler(deps Dependencies) *DatasetsHandler {
	return &DatasetsHandler{deps: deps}
}

type datasetsResponse struct {
	Datasets []catalog.Dataset `json:"datasets"`
	Ranges   []string          `json:"ranges"`
}

// HandleList handles GET /api/datasets.
func (h *DatasetsHandler) HandleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, datasetsResponse{
		Datasets: h.deps.Datasets(),
		Ranges:   catalog.ScoreRanges[:],
	})
}

// HandleGet handles GET /api/datasets/{id}.
func (h *DatasetsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ds, err := h.deps.Dataset(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

// HandleConsistency handles GET /api/datasets/{id}/consistency.
func (h *DatasetsHandler) HandleConsistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.deps.Consistency(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleChart handles GET /api/datasets/{id}/chart.
func (h *DatasetsHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	view, err := h.deps.Chart(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
