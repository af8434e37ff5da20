package entities

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusActive JobStatus = "active"
	JobStatusClosed JobStatus = "closed"
)

// NormalizeJobStatus maps the legacy "open" value, which some callers
// still send, onto the canonical "active". Anything unrecognized is
// returned unchanged so the caller can reject it.
func NormalizeJobStatus(s string) JobStatus {
	switch s {
	case "open", string(JobStatusActive):
		return JobStatusActive
	case string(JobStatusClosed):
		return JobStatusClosed
	default:
		return JobStatus(s)
	}
}

type Job struct {
	ID               string `gorm:"primaryKey"`
	Title            string
	Department       string
	Location         string
	EmploymentType   string
	Description      string
	Requirements     string
	Responsibilities string
	SalaryRange      string
	Status           JobStatus
	Stages           StageList `gorm:"type:text"`
	CreatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func NewJob(title, department, location, employmentType string) Job {
	return Job{
		ID:             uuid.NewString(),
		Title:          title,
		Department:     department,
		Location:       location,
		EmploymentType: employmentType,
		Status:         JobStatusActive,
		Stages:         DefaultStages(),
	}
}

// EffectiveStages returns the job's own pipeline, or the default
// 5-stage one when the job defines none.
func (j Job) EffectiveStages() StageList {
	if len(j.Stages) == 0 {
		return DefaultStages()
	}
	return j.Stages
}

// DisplayStage resolves a candidate's stage id against this job's
// pipeline. A stage removed after the candidate entered it no longer
// resolves; the first stage is used for display so views never break.
func (j Job) DisplayStage(stageID string) Stage {
	stages := j.EffectiveStages()
	if stage, ok := stages.ByID(stageID); ok {
		return stage
	}
	return stages[0]
}
