package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/role-recommender/internal/artifacts"
	"github.com/jonathan/role-recommender/internal/db"
	"github.com/jonathan/role-recommender/internal/logging"
	"github.com/jonathan/role-recommender/internal/metrics"
	"github.com/jonathan/role-recommender/internal/stats"
	"github.com/jonathan/role-recommender/internal/types"
)

// CompareResponse is the comparison plus the id of its history record, if one was stored.
type CompareResponse struct {
	*types.Comparison
	HistoryID string `json:"history_id,omitempty"`
}

// HistoryResponse lists stored comparisons, newest first.
type HistoryResponse struct {
	Entries []types.HistoryEntry `json:"entries"`
	Limit   int                  `json:"limit"`
}

// labelSet resolves the {label_set} path value.
func (s *Server) labelSet(r *http.Request) (types.LabelSet, error) {
	raw := r.PathValue("label_set")
	ls, err := types.ParseLabelSet(raw)
	if err != nil {
		return "", &ErrUnknownLabelSet{Value: raw}
	}
	return ls, nil
}

// handleLabelSets lists both label sets with their classes and artifact state
func (s *Server) handleLabelSets(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.engine.LabelSets())
}

// handleFactors returns the top success factors of a class
func (s *Server) handleFactors(w http.ResponseWriter, r *http.Request) {
	ls, err := s.labelSet(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	req := types.FactorsRequest{LabelSet: ls, Class: r.URL.Query().Get("class")}
	if raw := r.URL.Query().Get("n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.failure(w, r, &ErrValidation{Field: "n", Message: "must be an integer"})
			return
		}
		req.N = n
	}

	result, err := s.engine.Factors(req)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleOptions returns the ordered legal values and default of each requested feature
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	ls, err := s.labelSet(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	var features []string
	for _, f := range strings.Split(r.URL.Query().Get("features"), ",") {
		if f = strings.TrimSpace(f); f != "" {
			features = append(features, f)
		}
	}

	options, err := s.engine.Options(ls, features)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, options)
}

// handleCompare scores the benchmark profile against the caller's profile
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	ls, err := s.labelSet(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	var req types.CompareRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		s.failure(w, r, &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()})
		return
	}

	cmp, err := s.engine.Compare(ls, req)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	metrics.RecordComparison(string(ls), cmp.Class, cmp.Delta)
	for _, note := range cmp.Notes {
		metrics.RecordInvalidOverride(string(ls), note.Reason)
	}

	resp := CompareResponse{Comparison: cmp}
	if s.history != nil {
		id, err := s.history.RecordComparison(r.Context(), cmp, req.Overrides)
		if err != nil {
			// The comparison itself succeeded; a history failure must not fail the request.
			logging.Ctx(r.Context()).Warn().Err(err).Msg("failed to record comparison history")
		} else {
			resp.HistoryID = id.String()
		}
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handlePerformance returns the classification report and confusion matrix
func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	ls, err := s.labelSet(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	perf, err := s.engine.Performance(ls)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, perf)
}

// handleAssociation runs a chi-square test between two survey columns
func (s *Server) handleAssociation(w http.ResponseWriter, r *http.Request) {
	ls, err := s.labelSet(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	req := types.AssociationRequest{X: r.URL.Query().Get("x"), Y: r.URL.Query().Get("y")}
	if err := req.Validate(); err != nil {
		s.failure(w, r, err)
		return
	}

	survey, err := s.survey(ls)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	result, err := stats.Associate(survey, req.X, req.Y)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleArtifacts lists the artifact files of a label set and whether each exists
func (s *Server) handleArtifacts(w http.ResponseWriter, r *http.Request) {
	ls, err := s.labelSet(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"label_set": ls,
		"artifacts": s.catalog.Artifacts(ls),
	})
}

// handleListHistory returns the most recent stored comparisons
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.failure(w, r, &ErrHistoryDisabled{})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.failure(w, r, &ErrValidation{Field: "limit", Message: "must be a non-negative integer"})
			return
		}
		limit = n
	}
	limit = db.NormalizeLimit(limit)

	entries, err := s.history.ListHistory(r.Context(), limit)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if entries == nil {
		entries = []types.HistoryEntry{}
	}
	s.jsonResponse(w, http.StatusOK, HistoryResponse{Entries: entries, Limit: limit})
}

// historyID resolves the {id} path value of a history entry.
func historyID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "must be a UUID"}
	}
	return id, nil
}

// handleGetHistory returns one stored comparison
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.failure(w, r, &ErrHistoryDisabled{})
		return
	}
	id, err := historyID(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	entry, err := s.history.GetHistoryEntry(r.Context(), id)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if entry == nil {
		s.failure(w, r, &ErrHistoryNotFound{ID: id.String()})
		return
	}
	s.jsonResponse(w, http.StatusOK, entry)
}

// handleDeleteHistory removes one stored comparison
func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.failure(w, r, &ErrHistoryDisabled{})
		return
	}
	id, err := historyID(r)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	deleted, err := s.history.DeleteHistoryEntry(r.Context(), id)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if !deleted {
		s.failure(w, r, &ErrHistoryNotFound{ID: id.String()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// survey loads the survey table of a label set on first use and caches it.
// Failed loads are not cached, so a file added later is picked up.
func (s *Server) survey(ls types.LabelSet) (*stats.Survey, error) {
	s.surveyMu.Lock()
	defer s.surveyMu.Unlock()

	if sv, ok := s.surveys[ls]; ok {
		return sv, nil
	}
	names, err := artifacts.LoadNameMap(s.catalog.QuestionMapPath())
	if err != nil {
		return nil, err
	}
	sv, err := stats.LoadSurvey(s.catalog.Paths(ls).Survey, names)
	if err != nil {
		return nil, err
	}
	s.surveys[ls] = sv
	return sv, nil
}
