package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultPassingScore is the platform-wide pass threshold applied when the
// fixed scoring policy is active.
const DefaultPassingScore = 80

// Assessment is a scored set of questions attached to a module.
type Assessment struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	ModuleID     string     `gorm:"size:36;not null;index" json:"module_id"`
	Title        string     `gorm:"size:255;not null" json:"title"`
	PassingScore int        `gorm:"not null;default:80" json:"passing_score"`
	TimeLimitSec *int       `json:"time_limit_sec"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Questions    []Question `gorm:"foreignKey:AssessmentID"`
}

func (a *Assessment) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.PassingScore == 0 {
		a.PassingScore = DefaultPassingScore
	}
	return nil
}

// Question belongs to an assessment and owns its options.
type Question struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	AssessmentID string    `gorm:"size:36;not null;index" json:"assessment_id"`
	Text         string    `gorm:"type:text;not null" json:"text"`
	Position     int       `gorm:"not null;default:0" json:"position"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Options      []Option  `gorm:"foreignKey:QuestionID"`
}

func (q *Question) BeforeCreate(*gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// Option is one selectable answer for a question. A well-formed question has
// at least one option with IsCorrect set, though authoring does not enforce it.
type Option struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	QuestionID string    `gorm:"size:36;not null;index" json:"question_id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	IsCorrect  bool      `gorm:"not null;default:false" json:"is_correct"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (o *Option) BeforeCreate(*gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
