package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"github.com/talentflow/ats/internal/entities"
	"github.com/talentflow/ats/internal/logger"
	"github.com/talentflow/ats/internal/storage"
	log "github.com/sirupsen/logrus"
)

// handleCareers is the public listing: active jobs only.
func (s *Server) handleCareers(w http.ResponseWriter, r *http.Request) {

	jobs, err := s.jobs.Get(r.Context(), entities.JobStatusActive)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, jobs)
}

// handleApply accepts a public application as a multipart form. A resume
// upload failure is reported as a warning in the 200 body; the candidate
// record itself is already stored by then.
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {

	job, err := s.jobs.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if job == nil || job.Status != entities.JobStatusActive {
		s.respondError(w, http.StatusNotFound, "job not found")
		return
	}

	if err = r.ParseMultipartForm(8 << 20); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	fullName := r.FormValue("fullName")
	email := r.FormValue("email")
	if fullName == "" || email == "" {
		s.respondError(w, http.StatusBadRequest, "fullName and email are required")
		return
	}

	candidate := entities.NewCandidate(job.ID, fullName, email)
	candidate.Phone = r.FormValue("phone")
	candidate.LinkedinURL = r.FormValue("linkedinUrl")
	candidate.PortfolioURL = r.FormValue("portfolioUrl")
	candidate.CoverLetter = r.FormValue("coverLetter")
	if raw := r.FormValue("yearsOfExperience"); raw != "" {
		years, convErr := strconv.Atoi(raw)
		if convErr != nil {
			s.respondError(w, http.StatusBadRequest, "yearsOfExperience must be a number")
			return
		}
		candidate.YearsOfExperience = years
	}

	if err = s.candidates.Add(r.Context(), candidate); err != nil {
		s.respondStoreError(w, err)
		return
	}

	response := map[string]any{"id": candidate.ID, "stage": candidate.CurrentStage}

	if url, uploadErr := s.saveResume(r); uploadErr != nil {
		if errors.Is(uploadErr, storage.ErrFileTooLarge) ||
			errors.Is(uploadErr, storage.ErrUnsupportedType) {
			response["resumeWarning"] = uploadErr.Error()
		} else {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeStorage).
				Errorf("resume upload failed: %v", uploadErr)
			response["resumeWarning"] = "resume could not be stored"
		}
	} else if url != "" {
		if err = s.candidates.UpdateResumeURL(r.Context(), candidate.ID, url); err != nil {
			s.respondStoreError(w, err)
			return
		}
		response["resumeUrl"] = url
	}

	s.respondJSON(w, http.StatusCreated, response)
}

// saveResume stores the optional resume part. An absent part is not an
// error; the application simply carries no resume.
func (s *Server) saveResume(r *http.Request) (string, error) {

	file, header, err := r.FormFile("resume")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", err
	}
	defer file.Close()

	return s.resumes.Save(header.Filename, file)
}

func (s *Server) handleServeResume(w http.ResponseWriter, r *http.Request) {

	file, contentType, err := s.resumes.Open(r.PathValue("file"))
	if err != nil {
		if errors.Is(err, storage.ErrResumeNotFound) {
			s.respondError(w, http.StatusNotFound, "resume not found")
			return
		}
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeStorage).Errorf("%v", err)
		s.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", contentType)
	if _, err = io.Copy(w, file); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeHttp).
			Errorf("failed to stream resume: %v", err)
	}
}
