package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/alfredjeanlab/gantry/internal/events"
	"github.com/alfredjeanlab/gantry/internal/model"
)

// handleCreateRun handles POST /v1/runs.
func (s *GantryServer) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var in createRunInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	run, err := s.createRun(r.Context(), in)
	if err != nil {
		var ie inputError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, run)
}

// handleListRuns handles GET /v1/runs.
func (s *GantryServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.RunFilter{
		Workflow: q.Get("workflow"),
		Ref:      q.Get("ref"),
		Sort:     q.Get("sort"),
	}

	if v := q.Get("trigger"); v != "" {
		for _, t := range strings.Split(v, ",") {
			filter.Trigger = append(filter.Trigger, model.Trigger(t))
		}
	}
	if v := q.Get("conclusion"); v != "" {
		for _, c := range strings.Split(v, ",") {
			filter.Conclusion = append(filter.Conclusion, model.Conclusion(c))
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	runs, total, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	// Ensure runs is never null in JSON output.
	if runs == nil {
		runs = []*model.Run{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"total": total,
	})
}

// handleGetRun handles GET /v1/runs/{id}.
func (s *GantryServer) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	run, err := s.store.GetRun(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get run")
		return
	}

	writeJSON(w, http.StatusOK, run)
}

// handleDeleteRun handles DELETE /v1/runs/{id}.
func (s *GantryServer) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := s.store.DeleteRun(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete run")
		return
	}

	s.recordAndPublish(r.Context(), events.TopicRunDeleted, id, "", events.RunDeleted{RunID: id})

	w.WriteHeader(http.StatusNoContent)
}

// handleReportOutcome handles POST /v1/runs/{id}/outcomes.
// Reporting the same job twice replaces the earlier outcome, so a re-run job
// contributes only its latest result to the gate.
func (s *GantryServer) handleReportOutcome(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var outcome model.JobOutcome
	if err := json.NewDecoder(r.Body).Decode(&outcome); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if outcome.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !outcome.Result.IsValid() {
		writeError(w, http.StatusBadRequest, "unknown result "+string(outcome.Result))
		return
	}

	// Reject outcomes for runs that were already concluded.
	run, err := s.store.GetRun(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get run")
		return
	}
	if run.Conclusion != model.ConclusionPending {
		writeError(w, http.StatusConflict, "run already concluded")
		return
	}

	if err := s.store.PutOutcome(r.Context(), id, &outcome); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to record outcome")
		return
	}

	s.recordAndPublish(r.Context(), events.TopicOutcomeReported, id, "", events.OutcomeReported{
		RunID:   id,
		Outcome: &outcome,
	})

	writeJSON(w, http.StatusOK, outcome)
}

// handleGetOutcomes handles GET /v1/runs/{id}/outcomes.
func (s *GantryServer) handleGetOutcomes(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	outcomes, err := s.store.GetOutcomes(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get outcomes")
		return
	}
	if outcomes == nil {
		outcomes = []*model.JobOutcome{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"outcomes": outcomes})
}

// handleConcludeRun handles POST /v1/runs/{id}/conclude.
func (s *GantryServer) handleConcludeRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	// The body is optional; an empty body concludes over all reported outcomes.
	var in concludeRunInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	run, verdict, err := s.concludeRun(r.Context(), id, in)
	if err != nil {
		var ie inputError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
			return
		}
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to conclude run")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"run":     run,
		"verdict": verdict,
	})
}

// handleGetEvents handles GET /v1/runs/{id}/events.
func (s *GantryServer) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	evts, err := s.store.GetEvents(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get events")
		return
	}
	if evts == nil {
		evts = []*model.RunEvent{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": evts})
}
