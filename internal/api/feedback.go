package api

import (
	"encoding/json"
	"net/http"

	advisor "github.com/shridharrathore/advisor-gpt-mvp"
)

// FeedbackRequest is the request body for POST /feedback.
type FeedbackRequest struct {
	ResponseID string `json:"response_id"`
	CaseID     string `json:"case_id"`
	AgentID    string `json:"agent_id"`
	Type       string `json:"feedback_type"`
	Comment    string `json:"comment,omitempty"`
}

func (s *Server) handleSubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQueryBody)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.ResponseID == "" {
		s.writeError(w, http.StatusBadRequest, "invalid_request", "response_id is required")
		return
	}
	if req.Type != advisor.FeedbackLike && req.Type != advisor.FeedbackDislike {
		s.writeError(w, http.StatusBadRequest, "invalid_request", "feedback_type must be like or dislike")
		return
	}

	fb := advisor.Feedback{
		ID:         advisor.NewID(),
		ResponseID: req.ResponseID,
		CaseID:     req.CaseID,
		AgentID:    req.AgentID,
		Type:       req.Type,
		Comment:    req.Comment,
		CreatedAt:  advisor.NowUnix(),
	}
	if err := s.store.StoreFeedback(r.Context(), fb); err != nil {
		s.logger.Error("store feedback", "error", err, "response_id", req.ResponseID)
		s.writeError(w, http.StatusInternalServerError, "storage_failed", "could not record feedback")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Feedback recorded successfully",
		"id":      fb.ID,
	})
}

func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	fbs, err := s.store.ListFeedback(r.Context())
	if err != nil {
		s.logger.Error("list feedback", "error", err)
		s.writeError(w, http.StatusInternalServerError, "storage_failed", "could not list feedback")
		return
	}
	if fbs == nil {
		fbs = []advisor.Feedback{}
	}
	s.writeJSON(w, http.StatusOK, fbs)
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	fbs, err := s.store.ListFeedback(r.Context())
	if err != nil {
		s.logger.Error("list feedback", "error", err)
		s.writeError(w, http.StatusInternalServerError, "storage_failed", "could not compute performance report")
		return
	}
	s.writeJSON(w, http.StatusOK, advisor.NewPerformanceReport(fbs))
}
