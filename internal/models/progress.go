package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LessonProgress marks a lesson as completed by a learner.
type LessonProgress struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"size:36;not null;uniqueIndex:idx_lesson_progress_user_lesson" json:"user_id"`
	LessonID    string    `gorm:"size:36;not null;uniqueIndex:idx_lesson_progress_user_lesson" json:"lesson_id"`
	CompletedAt time.Time `gorm:"not null" json:"completed_at"`
}

func (p *LessonProgress) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
