package api

import "net/http"

// HealthResponse is the body for GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Passages int    `json:"passages"`
}

// handleHealth reports liveness and checks the store with a passage count.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.CountPassages(r.Context())
	if err != nil {
		s.logger.Error("health check failed", "error", err)
		s.writeError(w, http.StatusServiceUnavailable, "store_unavailable", "vector store heartbeat failed")
		return
	}
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "healthy",
		Service:  "advisor-gpt-api",
		Passages: count,
	})
}
