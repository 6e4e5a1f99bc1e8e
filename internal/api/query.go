package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// maxQueryBody bounds the /query request body.
const maxQueryBody = 1 << 20 // 1 MiB

// QueryRequest is the request body for POST /query.
type QueryRequest struct {
	Query   string `json:"query"`
	CaseID  string `json:"case_id,omitempty"`
	AgentID string `json:"agent_id,omitempty"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQueryBody)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.writeError(w, http.StatusBadRequest, "invalid_request", "query must not be empty")
		return
	}

	resp, err := s.answerer.Answer(r.Context(), req.Query)
	if err != nil {
		s.logger.Error("query failed", "error", err, "case_id", req.CaseID)
		s.writeError(w, http.StatusInternalServerError, "query_failed", "could not produce a response")
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}
