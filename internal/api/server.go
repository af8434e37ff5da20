package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/talentflow/ats/internal/analytics"
	"github.com/talentflow/ats/internal/logger"
	"github.com/talentflow/ats/internal/repositories"
	"github.com/talentflow/ats/internal/services"
	"github.com/talentflow/ats/internal/storage"
	log "github.com/sirupsen/logrus"
)

// Server exposes the tracking system over HTTP.
type Server struct {
	jobs        *repositories.Jobs
	candidates  *repositories.Candidates
	activities  *repositories.Activities
	templates   *repositories.Templates
	interviews  *repositories.Interviews
	pipeline    *services.Pipeline
	notifier    *services.StageNotifier
	snapshotter *analytics.Snapshotter
	resumes     *storage.ResumeStore

	validate *validator.Validate
	server   *http.Server
}

type Dependencies struct {
	Jobs        *repositories.Jobs
	Candidates  *repositories.Candidates
	Activities  *repositories.Activities
	Templates   *repositories.Templates
	Interviews  *repositories.Interviews
	Pipeline    *services.Pipeline
	Notifier    *services.StageNotifier
	Snapshotter *analytics.Snapshotter
	Resumes     *storage.ResumeStore
}

func NewServer(address string, deps Dependencies) *Server {

	s := &Server{
		jobs:        deps.Jobs,
		candidates:  deps.Candidates,
		activities:  deps.Activities,
		templates:   deps.Templates,
		interviews:  deps.Interviews,
		pipeline:    deps.Pipeline,
		notifier:    deps.Notifier,
		snapshotter: deps.Snapshotter,
		resumes:     deps.Resumes,
		validate:    validator.New(),
	}

	s.server = &http.Server{
		Addr:              address,
		Handler:           s.loggingMiddleware(s.routes()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) routes() *http.ServeMux {

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/jobs", s.handleListJobs)
	mux.HandleFunc("POST /api/jobs", s.handleCreateJob)
	mux.HandleFunc("GET /api/jobs/{id}", s.handleGetJob)
	mux.HandleFunc("PUT /api/jobs/{id}", s.handleUpdateJob)
	mux.HandleFunc("DELETE /api/jobs/{id}", s.handleDeleteJob)
	mux.HandleFunc("PATCH /api/jobs/{id}/status", s.handleUpdateJobStatus)
	mux.HandleFunc("PUT /api/jobs/{id}/stages", s.handleUpdateJobStages)

	mux.HandleFunc("GET /api/careers", s.handleCareers)
	mux.HandleFunc("POST /api/careers/{id}/apply", s.handleApply)
	mux.HandleFunc("GET /resumes/{file}", s.handleServeResume)

	mux.HandleFunc("GET /api/candidates", s.handleListCandidates)
	mux.HandleFunc("GET /api/candidates/{id}", s.handleGetCandidate)
	mux.HandleFunc("PATCH /api/candidates/{id}/stage", s.handleMoveStage)
	mux.HandleFunc("PATCH /api/candidates/{id}/rating", s.handleUpdateRating)
	mux.HandleFunc("PATCH /api/candidates/{id}/notes", s.handleUpdateNotes)
	mux.HandleFunc("POST /api/candidates/bulk/stage", s.handleBulkStage)
	mux.HandleFunc("POST /api/candidates/bulk/rating", s.handleBulkRating)
	mux.HandleFunc("POST /api/candidates/bulk/delete", s.handleBulkDelete)
	mux.HandleFunc("POST /api/candidates/{id}/email", s.handleComposeEmail)
	mux.HandleFunc("GET /api/candidates/{id}/activities", s.handleListActivities)

	mux.HandleFunc("GET /api/candidates/{id}/interviews", s.handleListInterviews)
	mux.HandleFunc("POST /api/candidates/{id}/interviews", s.handleScheduleInterview)

	mux.HandleFunc("GET /api/templates", s.handleListTemplates)
	mux.HandleFunc("PUT /api/templates/{stage}", s.handleUpsertTemplate)

	mux.HandleFunc("GET /api/analytics/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/exports/candidates", s.handleExportCandidates)

	return mux
}

func (s *Server) Run() error {
	log.Infof("http server listening on %v", s.server.Addr)
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeHttp).
			Errorf("failed to encode response: %v", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// respondStoreError maps a persistence failure to a 500 and logs it.
func (s *Server) respondStoreError(w http.ResponseWriter, err error) {
	log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("%v", err)
	s.respondError(w, http.StatusInternalServerError, "internal error")
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debugf("%s %s %s %v", r.Method, r.URL.Path, r.RemoteAddr, time.Since(start))
	})
}
