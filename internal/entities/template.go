package entities

import (
	"time"

	"github.com/google/uuid"
)

// EmailTemplate is a per-stage email with {{placeholder}} tokens in its
// subject and body. At most one active template per stage is consulted
// when sending.
type EmailTemplate struct {
	ID        string `gorm:"primaryKey"`
	Stage     string `gorm:"index"`
	Subject   string
	BodyHTML  string
	IsActive  bool
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewEmailTemplate(stage, subject, bodyHTML, createdBy string) EmailTemplate {
	return EmailTemplate{
		ID:        uuid.NewString(),
		Stage:     stage,
		Subject:   subject,
		BodyHTML:  bodyHTML,
		IsActive:  true,
		CreatedBy: createdBy,
	}
}
