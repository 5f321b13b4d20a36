package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"

	"pr_compliance_service/internal/domain"
	"pr_compliance_service/internal/domain/entity"
	"pr_compliance_service/pkg/contextx"
	"pr_compliance_service/pkg/errcodes"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type RunEnqueuer interface {
	EnqueueAuditRun(ctx context.Context) (string, error)
}

type SummarySource interface {
	LatestSummaries(ctx context.Context) ([]entity.RepositorySummary, error)
}

// Server is the operator surface: trigger a run, read the latest rollup.
type Server struct {
	runs      RunEnqueuer
	summaries SummarySource
}

func NewServer(runs RunEnqueuer, summaries SummarySource) *Server {
	return &Server{
		runs:      runs,
		summaries: summaries,
	}
}

func (s *Server) RegisterRoutes(router chi.Router) {
	router.Post("/runs", s.handleEnqueueRun)
	router.Get("/summaries/latest", s.handleLatestSummaries)
	router.Get("/healthz", s.handleHealth)
}

func (s *Server) handleEnqueueRun(w http.ResponseWriter, r *http.Request) {
	taskID, err := s.runs.EnqueueAuditRun(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusAccepted, runEnqueuedResponse{TaskID: taskID})
}

func (s *Server) handleLatestSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.summaries.LatestSummaries(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, newSummariesResponse(summaries))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger(r.Context()).Error("failed to encode response", slog.Any("error", err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.CodeOf(err, errcodes.InternalServerError)

	status := http.StatusInternalServerError
	switch code {
	case errcodes.NotFound:
		status = http.StatusNotFound
	case errcodes.InvalidConfiguration:
		status = http.StatusUnprocessableEntity
	case errcodes.RunAlreadyStored:
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		logger(r.Context()).Error("request failed", slog.Any("error", err))
	}

	s.writeJSON(w, r, status, errorResponse{
		Error: errorBody{Code: string(code), Message: err.Error()},
	})
}
