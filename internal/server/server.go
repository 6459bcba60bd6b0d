package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/xaenox/web-agent/internal/chat"
)

// Server exposes the chat service over JSON HTTP.
type Server struct {
	service *chat.Service
	logger  *zap.Logger
}

func New(service *chat.Service, logger *zap.Logger) *Server {
	return &Server{
		service: service,
		logger:  logger,
	}
}

// Handler returns the route table:
//   - POST /api/chat            create-or-continue a conversation turn
//   - GET  /api/chat            history by conversationId or userId
//   - GET  /api/snippets        extracted snippets by conversationId
//   - GET  /healthz             liveness probe
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/chat", s.handleChat).Methods(http.MethodPost)
	r.HandleFunc("/api/chat", s.handleHistory).Methods(http.MethodGet)
	r.HandleFunc("/api/snippets", s.handleSnippets).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps the service error taxonomy onto the wire: invalid
// requests are 400, everything else collapses to an opaque 500. Details
// are only ever logged.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var chatErr *chat.Error
	if errors.As(err, &chatErr) && chatErr.Code == chat.ErrorInvalidRequest {
		s.logger.Debug("Rejected request", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request"})
		return
	}

	s.logger.Error("Failed to process request", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to process message"})
}
