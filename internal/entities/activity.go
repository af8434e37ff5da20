package entities

import (
	"time"

	"github.com/google/uuid"
)

type ActivityType string

const (
	ActivityNote        ActivityType = "note"
	ActivityStageChange ActivityType = "stage_change"
	ActivityInterview   ActivityType = "interview"
)

// Activity is an append-only record of an action taken on a candidate.
// Activities are never updated or deleted.
type Activity struct {
	ID           string `gorm:"primaryKey"`
	CandidateID  string `gorm:"index"`
	ActivityType ActivityType
	Description  string
	Author       string
	CreatedAt    time.Time
}

func NewActivity(candidateID string, activityType ActivityType, description, author string) Activity {
	return Activity{
		ID:           uuid.NewString(),
		CandidateID:  candidateID,
		ActivityType: activityType,
		Description:  description,
		Author:       author,
	}
}
