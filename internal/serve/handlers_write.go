package serve

import (
	"encoding/json"
	"net/http"

	"github.com/marcus/jobdesk/internal/host"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// ============================================================================
// PUT /api/admin/{resource}/{id}
// ============================================================================

// handleUpdate changes editable fields and returns the updated record.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	res, ok := resourceParam(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	var body host.UpdateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		WriteError(w, ErrValidation, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if errs := ValidateUpdate(res, &body); len(errs) > 0 {
		WriteValidation(w, errs)
		return
	}

	if err := s.src.Update(r.Context(), res, id, body.Fields); err != nil {
		writeSourceError(w, err)
		return
	}
	s.logger.Info("updated", "resource", res, "id", id, "fields", len(body.Fields))

	rec, err := s.src.Get(r.Context(), res, id)
	if err != nil {
		writeSourceError(w, err)
		return
	}
	WriteSuccess(w, rec, http.StatusOK)
}

// ============================================================================
// DELETE /api/admin/{resource}/{id}
// ============================================================================

// handleDelete removes a record and its dependents.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	res, ok := resourceParam(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	if err := s.src.Delete(r.Context(), res, id); err != nil {
		writeSourceError(w, err)
		return
	}
	WriteSuccess(w, host.DeleteResponse{Deleted: id}, http.StatusOK)
}
