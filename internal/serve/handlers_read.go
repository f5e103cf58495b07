package serve

import (
	"net/http"

	"github.com/marcus/jobdesk/internal/host"
	"github.com/marcus/jobdesk/internal/models"
)

// resourceParam resolves the {resource} path segment, writing a 404 when it
// names nothing.
func resourceParam(w http.ResponseWriter, r *http.Request) (models.Resource, bool) {
	res, err := models.ParseResource(r.PathValue("resource"))
	if err != nil {
		WriteError(w, ErrNotFound, err.Error(), http.StatusNotFound)
		return "", false
	}
	return res, true
}

// ============================================================================
// GET /health
// ============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, map[string]interface{}{
		"status":      "ok",
		"instance_id": s.instanceID,
	}, http.StatusOK)
}

// ============================================================================
// GET /api/admin/stats
// ============================================================================

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.src.Stats(r.Context())
	if err != nil {
		writeSourceError(w, err)
		return
	}
	WriteSuccess(w, stats, http.StatusOK)
}

// ============================================================================
// GET /api/admin/{resource}
// ============================================================================

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	res, ok := resourceParam(w, r)
	if !ok {
		return
	}

	q, err := host.DecodeListQuery(r.URL.Query())
	if err != nil {
		WriteError(w, ErrValidation, err.Error(), http.StatusBadRequest)
		return
	}
	if errs := ValidatePagination(q); len(errs) > 0 {
		WriteValidation(w, errs)
		return
	}

	page, err := s.src.List(r.Context(), res, q)
	if err != nil {
		writeSourceError(w, err)
		return
	}
	if page.Rows == nil {
		page.Rows = []models.Record{}
	}
	WriteSuccess(w, page, http.StatusOK)
}

// ============================================================================
// GET /api/admin/{resource}/{id}
// ============================================================================

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	res, ok := resourceParam(w, r)
	if !ok {
		return
	}

	rec, err := s.src.Get(r.Context(), res, r.PathValue("id"))
	if err != nil {
		writeSourceError(w, err)
		return
	}
	WriteSuccess(w, rec, http.StatusOK)
}
