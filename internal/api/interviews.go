package api

import (
	"net/http"
	"time"

	"github.com/talentflow/ats/internal/entities"
)

type scheduleInterviewRequest struct {
	InterviewerID   string `json:"interviewerId"`
	ScheduledAt     string `json:"scheduledAt" validate:"required"`
	InterviewType   string `json:"interviewType" validate:"required"`
	DurationMinutes int    `json:"durationMinutes"`
	Location        string `json:"location"`
	MeetingLink     string `json:"meetingLink"`
	Notes           string `json:"notes"`
}

func (s *Server) handleListInterviews(w http.ResponseWriter, r *http.Request) {

	interviews, err := s.interviews.GetByCandidate(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, interviews)
}

func (s *Server) handleScheduleInterview(w http.ResponseWriter, r *http.Request) {

	var req scheduleInterviewRequest
	if !s.decode(w, r, &req) {
		return
	}

	interviewType, err := entities.ToInterviewType(req.InterviewType)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "scheduledAt must be an RFC 3339 timestamp")
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

	interview := entities.NewInterview(candidate.ID, req.InterviewerID, scheduledAt, interviewType)
	if req.DurationMinutes > 0 {
		interview.DurationMinutes = req.DurationMinutes
	}
	interview.Location = req.Location
	interview.MeetingLink = req.MeetingLink
	interview.Notes = req.Notes

	if err = s.interviews.Add(r.Context(), interview); err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, interview)
}
