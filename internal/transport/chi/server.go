// Package chi is the HTTP transport: JSON handlers over the answer pipeline, mounted on a chi router.
package chi

import (
	"context"
	"encoding/json"
	"net/http"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sommelier/internal/domain/intent"
	logpkg "github.com/kailas-cloud/sommelier/internal/logger"
	"github.com/kailas-cloud/sommelier/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/sommelier/internal/usecase/health"
	"github.com/kailas-cloud/sommelier/internal/usecase/synthesis"
)

const maxAskBodyBytes = 64 << 10

type asker interface {
	Ask(ctx context.Context, in answer.AskInput) (answer.Response, error)
}

type classifier interface {
	Classify(raw string) intent.Classification
}

type usageReader interface {
	Usage() synthesis.Usage
}

type healthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// AskRequest is the body of POST /v1/ask.
type AskRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
}

// ClassifyResponse is the body of GET /v1/classify.
type ClassifyResponse struct {
	Question       string         `json:"question"`
	Classification intent.Summary `json:"classification"`
}

// Server holds the HTTP handlers.
type Server struct {
	answers       asker
	classifier    classifier
	usage         usageReader
	health        healthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. usage may be nil when no synthesis budget is tracked.
func NewServer(
	answers asker,
	cls classifier,
	usage usageReader,
	health healthChecker,
	logger *zap.Logger,
) *Server {
	return &Server{
		answers:       answers,
		classifier:    cls,
		usage:         usage,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers,
	}
}

// Ask handles POST /v1/ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	body := http.MaxBytesReader(w, r.Body, maxAskBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	resp, err := s.answers.Ask(r.Context(), answer.AskInput{
		Query:     req.Question,
		SessionID: req.SessionID,
		RequestID: chiMiddleware.GetReqID(r.Context()),
	})
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	if resp.Cached {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	writeJSON(w, http.StatusOK, resp)
}

// Classify handles GET /v1/classify?q=...
func (s *Server) Classify(w http.ResponseWriter, r *http.Request) {
	var q string
	if err := runtime.BindQueryParameter("form", true, true, "q", r.URL.Query(), &q); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid format for parameter q: "+err.Error())
		return
	}
	if q == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "parameter q is required")
		return
	}

	writeJSON(w, http.StatusOK, ClassifyResponse{
		Question:       q,
		Classification: s.classifier.Classify(q).Summary(),
	})
}

// GetUsage handles GET /v1/usage.
func (s *Server) GetUsage(w http.ResponseWriter, _ *http.Request) {
	if s.usage == nil {
		writeError(w, http.StatusNotFound, CodeNotFound, "usage tracking is disabled")
		return
	}
	writeJSON(w, http.StatusOK, s.usage.Usage())
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := logpkg.FromContextOr(ctx, s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
