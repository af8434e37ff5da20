package entities

import (
	"time"

	"github.com/google/uuid"
)

// StageApplied is the stage every candidate starts in when none is given.
const StageApplied = "applied"

const (
	MinRating = 0
	MaxRating = 5
)

type Candidate struct {
	ID                string `gorm:"primaryKey"`
	JobID             string `gorm:"index"`
	FullName          string
	Email             string
	Phone             string
	LinkedinURL       string
	PortfolioURL      string
	CoverLetter       string
	YearsOfExperience int
	ResumeURL         string
	Rating            int
	Notes             string
	CurrentStage      string `gorm:"index"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func NewCandidate(jobID, fullName, email string) Candidate {
	return Candidate{
		ID:           uuid.NewString(),
		JobID:        jobID,
		FullName:     fullName,
		Email:        email,
		CurrentStage: StageApplied,
	}
}
