package api

import (
	"encoding/json"
	"net/http"
)

// writeJSON writes a JSON response with the given status code. Encoding
// errors after WriteHeader cannot reach the client; they are logged only.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// ErrorResponse is a JSON error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, errName, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: errName, Message: message})
}
