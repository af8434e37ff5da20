package api

import (
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"github.com/talentflow/ats/internal/analytics"
	"github.com/talentflow/ats/internal/metrics"
	"github.com/talentflow/ats/internal/repositories"
	"github.com/talentflow/ats/internal/services"
)

type moveStageRequest struct {
	Stage  string `json:"stage" validate:"required"`
	Author string `json:"author"`
}

type ratingRequest struct {
	Rating int `json:"rating" validate:"min=0,max=5"`
}

type notesRequest struct {
	Notes  string `json:"notes"`
	Author string `json:"author"`
}

type bulkStageRequest struct {
	IDs   []string `json:"ids" validate:"required,min=1"`
	Stage string   `json:"stage" validate:"required"`
}

type bulkRatingRequest struct {
	IDs    []string `json:"ids" validate:"required,min=1"`
	Rating int      `json:"rating" validate:"min=0,max=5"`
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

type composeEmailRequest struct {
	Stage string `json:"stage" validate:"required"`
}

type transitionResponse struct {
	Stage            string `json:"stage"`
	NotificationSent bool   `json:"notificationSent"`
	Warning          string `json:"warning,omitempty"`
}

func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {

	query := r.URL.Query()
	filter := repositories.CandidateFilter{
		JobID:  query.Get("jobId"),
		Stage:  query.Get("stage"),
		Search: query.Get("search"),
	}
	if raw := query.Get("minRating"); raw != "" {
		rating, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "minRating must be a number")
			return
		}
		filter.MinRating = rating
	}

	candidates, err := s.candidates.Get(r.Context(), filter)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, candidates)
}

// handleGetCandidate returns the candidate together with the detail-page
// extras: the resolved display stage and the match score.
func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {

	candidate, err := s.candidates.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if candidate == nil {
		s.respondError(w, http.StatusNotFound, "candidate not found")
		return
	}

	response := map[string]any{
		"candidate":  candidate,
		"matchScore": analytics.MatchScore(candidate.FullName),
	}

	if job, err := s.jobs.GetByID(r.Context(), candidate.JobID); err == nil && job != nil {
		response["job"] = job
		response["displayStage"] = job.DisplayStage(candidate.CurrentStage)
	}

	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleMoveStage(w http.ResponseWriter, r *http.Request) {

	var req moveStageRequest
	if !s.decode(w, r, &req) {
		return
	}

	origin := metrics.TransitionOriginDrag
	recordActivity := false
	if req.Author != "" {
		// The detail page sends the author and gets a timeline entry.
		origin = metrics.TransitionOriginDetail
		recordActivity = true
	}

	result, err := s.pipeline.MoveToStage(r.Context(), services.TransitionRequest{
		CandidateID:    r.PathValue("id"),
		NewStage:       req.Stage,
		Origin:         origin,
		RecordActivity: recordActivity,
		Author:         req.Author,
	})
	if err != nil {
		if errors.Is(err, services.ErrCandidateNotFound) {
			s.respondError(w, http.StatusNotFound, err.Error())
			return
		}
		s.respondStoreError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, transitionResponse{
		Stage:            result.NewStage,
		NotificationSent: result.NotificationSent,
		Warning:          result.NotificationErr,
	})
}

func (s *Server) handleUpdateRating(w http.ResponseWriter, r *http.Request) {

	var req ratingRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.pipeline.UpdateRating(r.Context(), r.PathValue("id"), req.Rating); err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]int{"rating": req.Rating})
}

func (s *Server) handleUpdateNotes(w http.ResponseWriter, r *http.Request) {

	var req notesRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.pipeline.UpdateNotes(r.Context(), r.PathValue("id"), req.Notes, req.Author); err != nil {
		s.respondStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBulkStage(w http.ResponseWriter, r *http.Request) {

	var req bulkStageRequest
	if !s.decode(w, r, &req) {
		return
	}

	report, err := s.pipeline.BulkMoveToStage(r.Context(), req.IDs, req.Stage)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"message":        report.String(),
		"updated":        report.Updated,
		"requested":      report.Requested,
		"notifyFailures": report.NotifyFailures,
	})
}

func (s *Server) handleBulkRating(w http.ResponseWriter, r *http.Request) {

	var req bulkRatingRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.pipeline.BulkSetRating(r.Context(), req.IDs, req.Rating); err != nil {
		s.respondStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBulkDelete(w http.ResponseWriter, r *http.Request) {

	var req bulkDeleteRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.pipeline.BulkDelete(r.Context(), req.IDs); err != nil {
		s.respondStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleComposeEmail renders the stage's template for the candidate and
// sends it immediately.
func (s *Server) handleComposeEmail(w http.ResponseWriter, r *http.Request) {

	var req composeEmailRequest
	if !s.decode(w, r, &req) {
		return
	}

	candidate, err := s.candidates.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if candidate == nil {
		s.respondError(w, http.StatusNotFound, "candidate not found")
		return
	}

	jobTitle := ""
	if job, jobErr := s.jobs.GetByID(r.Context(), candidate.JobID); jobErr == nil && job != nil {
		jobTitle = job.Title
	}

	if err = s.notifier.ComposeForStage(r.Context(), *candidate, jobTitle, req.Stage); err != nil {
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {

	activities, err := s.activities.GetByCandidate(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, activities)
}
