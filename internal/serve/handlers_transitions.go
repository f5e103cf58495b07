package serve

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/marcus/jobdesk/internal/host"
	"github.com/marcus/jobdesk/internal/models"
	"github.com/marcus/jobdesk/internal/workflow"
)

// ============================================================================
// Status Transition Endpoints
// ============================================================================

// transitionDTO is one status a record may move to next.
type transitionDTO struct {
	Status string `json:"status"`
	Label  string `json:"label"`
	Action string `json:"action"`
}

// handleSetStatus moves a record to a new status. Guard failures block the
// change with 422 unless force is set; forced or advisory failures come back
// as warnings.
func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	res, ok := resourceParam(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	var body host.StatusRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil && err != io.EOF {
		WriteError(w, ErrValidation, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if errs := ValidateStatus(res, &body); len(errs) > 0 {
		WriteValidation(w, errs)
		return
	}

	warnings, err := s.src.SetStatus(r.Context(), res, id, models.Status(body.Status), body.Force)
	if err != nil {
		writeSourceError(w, err)
		return
	}
	s.logger.Info("status changed", "resource", res, "id", id, "status", body.Status,
		"force", body.Force, "warnings", len(warnings))

	rec, err := s.src.Get(r.Context(), res, id)
	if err != nil {
		writeSourceError(w, err)
		return
	}
	WriteSuccess(w, host.StatusResponse{
		Record:   rec,
		Warnings: host.WarningsToDTO(warnings),
	}, http.StatusOK)
}

// handleTransitions lists the statuses a record may move to from its current
// one. Guards are not evaluated.
func (s *Server) handleTransitions(w http.ResponseWriter, r *http.Request) {
	res, ok := resourceParam(w, r)
	if !ok {
		return
	}

	rec, err := s.src.Get(r.Context(), res, r.PathValue("id"))
	if err != nil {
		writeSourceError(w, err)
		return
	}

	from := rec.Status()
	next := workflow.GetTransitionsFrom(res, from)
	out := make([]transitionDTO, 0, len(next))
	for _, to := range next {
		out = append(out, transitionDTO{
			Status: string(to),
			Label:  to.Label(),
			Action: workflow.TransitionName(from, to),
		})
	}
	WriteSuccess(w, map[string]interface{}{
		"status":      string(from),
		"transitions": out,
	}, http.StatusOK)
}
