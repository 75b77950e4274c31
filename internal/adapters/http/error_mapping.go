package http

import (
	"log/slog"
	"net/http"

	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps typed domain errors to HTTP statuses. Transient
// upstream failures surface as 503 so clients know a retry can help.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
		message = "invalid request"
	case domain.IsKind(err, domain.ErrSourceNotFound):
		status = http.StatusNotFound
		message = "source not found"
	case domain.IsKind(err, domain.ErrDomainNotAllowed):
		status = http.StatusUnprocessableEntity
		message = "domain not whitelisted"
	case domain.IsKind(err, domain.ErrRetrievalUnavailable),
		domain.IsKind(err, domain.ErrTemporary):
		status = http.StatusServiceUnavailable
		message = "service temporarily unavailable"
	}

	if status >= 500 {
		s.logger.Error("request_failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}
	writeJSON(w, status, errorResponse{Error: message})
}
