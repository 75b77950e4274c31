package http

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/domain"
	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/ports"
)

const maxRequestBody = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type submitRequest struct {
	Sources []ports.SourceSubmission `json:"sources"`
}

type submitResponse struct {
	Results []ports.SubmissionResult `json:"results"`
}

func (s *Server) handleSubmitSources(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "decode submit request", err))
		return
	}
	if len(req.Sources) == 0 {
		s.writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "submit", errEmptyBody))
		return
	}

	results, err := s.submitter.Submit(r.Context(), req.Sources)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if s.metrics != nil {
		for _, res := range results {
			outcome := "rejected"
			if res.Accepted {
				outcome = "accepted"
			}
			s.metrics.SourcesSubmitted.WithLabelValues(outcome).Inc()
		}
	}
	writeJSON(w, http.StatusAccepted, submitResponse{Results: results})
}

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	docs, err := s.repo.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if docs == nil {
		docs = []domain.SourceDocument{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sources": docs})
}

func (s *Server) handleGetSource(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("url")
	unescaped, err := url.PathUnescape(raw)
	if err != nil {
		unescaped = raw
	}
	doc, err := s.repo.GetByURL(r.Context(), unescaped)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type queryRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "decode query request", err))
		return
	}

	started := time.Now()
	answer, err := s.query.Answer(r.Context(), req.Question)
	if err != nil {
		if s.metrics != nil {
			s.metrics.QueriesTotal.WithLabelValues("error").Inc()
		}
		s.writeError(w, r, err)
		return
	}

	if s.metrics != nil {
		result := "fallback"
		if answer.Grounded {
			result = "grounded"
		}
		s.metrics.QueriesTotal.WithLabelValues(result).Inc()
		s.metrics.QueryDuration.Observe(time.Since(started).Seconds())
		s.metrics.CitationsPerAns.Observe(float64(len(answer.Citations)))
	}
	writeJSON(w, http.StatusOK, answer)
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

var errEmptyBody = &emptyBodyError{}

type emptyBodyError struct{}

func (*emptyBodyError) Error() string { return "no sources in request" }
