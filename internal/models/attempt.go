package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attempt records one learner submission against one assessment. Score and
// Passed are written exactly once, when the attempt is finalised.
type Attempt struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	AssessmentID string     `gorm:"size:36;not null;index" json:"assessment_id"`
	UserID       string     `gorm:"size:36;not null;index" json:"user_id"`
	Score        int        `gorm:"not null;default:0" json:"score"`
	Passed       bool       `gorm:"not null;default:false" json:"passed"`
	StartedAt    time.Time  `gorm:"not null" json:"started_at"`
	SubmittedAt  *time.Time `json:"submitted_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (a *Attempt) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Answer records which option a learner selected for a question within an
// attempt. Created in bulk at scoring time, never mutated afterwards.
type Answer struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	AttemptID  string    `gorm:"size:36;not null;index" json:"attempt_id"`
	QuestionID string    `gorm:"size:36;not null" json:"question_id"`
	OptionID   string    `gorm:"size:36;not null" json:"option_id"`
	IsCorrect  bool      `gorm:"not null;default:false" json:"is_correct"`
	CreatedAt  time.Time `json:"created_at"`
}

func (a *Answer) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
