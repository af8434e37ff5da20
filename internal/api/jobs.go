package api

import (
	"net/http"

	"github.com/talentflow/ats/internal/entities"
)

type createJobRequest struct {
	Title            string `json:"title" validate:"required"`
	Department       string `json:"department"`
	Location         string `json:"location"`
	EmploymentType   string `json:"employmentType"`
	Description      string `json:"description"`
	Requirements     string `json:"requirements"`
	Responsibilities string `json:"responsibilities"`
	SalaryRange      string `json:"salaryRange"`
	CreatedBy        string `json:"createdBy"`
}

type updateJobStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type stageEditRequest struct {
	// Action is one of add, remove, relabel, recolor.
	Action string `json:"action" validate:"required,oneof=add remove relabel recolor"`
	Label  string `json:"label"`
	Color  string `json:"color"`
	Index  int    `json:"index"`
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {

	status := entities.JobStatus(r.URL.Query().Get("status"))
	if status != "" {
		status = entities.NormalizeJobStatus(string(status))
		if status != entities.JobStatusActive && status != entities.JobStatusClosed {
			s.respondError(w, http.StatusBadRequest, "status must be active or closed")
			return
		}
	}

	jobs, err := s.jobs.Get(r.Context(), status)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {

	var req createJobRequest
	if !s.decode(w, r, &req) {
		return
	}

	job := entities.NewJob(req.Title, req.Department, req.Location, req.EmploymentType)
	job.Description = req.Description
	job.Requirements = req.Requirements
	job.Responsibilities = req.Responsibilities
	job.SalaryRange = req.SalaryRange
	job.CreatedBy = req.CreatedBy

	if err := s.jobs.Add(r.Context(), job); err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, job)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {

	job, err := s.jobs.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if job == nil {
		s.respondError(w, http.StatusNotFound, "job not found")
		return
	}

	s.respondJSON(w, http.StatusOK, job)
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {

	job, err := s.jobs.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if job == nil {
		s.respondError(w, http.StatusNotFound, "job not found")
		return
	}

	var req createJobRequest
	if !s.decode(w, r, &req) {
		return
	}

	job.Title = req.Title
	job.Department = req.Department
	job.Location = req.Location
	job.EmploymentType = req.EmploymentType
	job.Description = req.Description
	job.Requirements = req.Requirements
	job.Responsibilities = req.Responsibilities
	job.SalaryRange = req.SalaryRange

	if err = s.jobs.Update(r.Context(), *job); err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, job)
}

// handleDeleteJob removes the job together with its candidates.
func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {

	if err := s.jobs.Remove(r.Context(), r.PathValue("id")); err != nil {
		s.respondStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateJobStatus(w http.ResponseWriter, r *http.Request) {

	var req updateJobStatusRequest
	if !s.decode(w, r, &req) {
		return
	}

	status := entities.NormalizeJobStatus(req.Status)
	if status != entities.JobStatusActive && status != entities.JobStatusClosed {
		s.respondError(w, http.StatusBadRequest, "status must be active or closed")
		return
	}

	if err := s.jobs.UpdateStatus(r.Context(), r.PathValue("id"), status); err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}

// handleUpdateJobStages applies one edit to the job's stage list and
// persists the whole list back.
func (s *Server) handleUpdateJobStages(w http.ResponseWriter, r *http.Request) {

	job, err := s.jobs.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if job == nil {
		s.respondError(w, http.StatusNotFound, "job not found")
		return
	}

	var req stageEditRequest
	if !s.decode(w, r, &req) {
		return
	}

	stages := job.EffectiveStages()
	switch req.Action {
	case "add":
		if req.Color != "" {
			stages, err = stages.AddWithColor(req.Label, req.Color)
		} else {
			stages, err = stages.Add(req.Label)
		}
	case "remove":
		stages, err = stages.Remove(req.Index)
	case "relabel":
		stages, err = stages.Relabel(req.Index, req.Label)
	case "recolor":
		stages, err = stages.Recolor(req.Index, req.Color)
	}
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err = s.jobs.UpdateStages(r.Context(), job.ID, stages); err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, stages)
}
