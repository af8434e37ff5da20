package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type InterviewType string

const (
	InterviewPhone  InterviewType = "phone"
	InterviewVideo  InterviewType = "video"
	InterviewOnsite InterviewType = "onsite"
)

func ToInterviewType(s string) (InterviewType, error) {
	switch s {
	case string(InterviewPhone):
		return InterviewPhone, nil
	case string(InterviewVideo):
		return InterviewVideo, nil
	case string(InterviewOnsite):
		return InterviewOnsite, nil
	default:
		return "", errors.Errorf("invalid interview type %q", s)
	}
}

const (
	InterviewStatusScheduled = "scheduled"
	InterviewStatusCompleted = "completed"
	InterviewStatusCanceled  = "canceled"
)

type Interview struct {
	ID              string `gorm:"primaryKey"`
	CandidateID     string `gorm:"index"`
	InterviewerID   string
	ScheduledAt     time.Time
	InterviewType   InterviewType
	DurationMinutes int
	Location        string
	MeetingLink     string
	Notes           string
	Status          string
	CreatedAt       time.Time
}

func NewInterview(candidateID, interviewerID string, scheduledAt time.Time, interviewType InterviewType) Interview {
	return Interview{
		ID:              uuid.NewString(),
		CandidateID:     candidateID,
		InterviewerID:   interviewerID,
		ScheduledAt:     scheduledAt,
		InterviewType:   interviewType,
		DurationMinutes: 60,
		Status:          InterviewStatusScheduled,
	}
}
