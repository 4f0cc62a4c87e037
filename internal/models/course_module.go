package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CourseModule groups lessons and assessments inside a course.
type CourseModule struct {
	ID          string       `gorm:"primaryKey;size:36" json:"id"`
	CourseID    string       `gorm:"size:36;not null;index" json:"course_id"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	Position    int          `gorm:"not null;default:0" json:"position"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Lessons     []Lesson     `gorm:"foreignKey:ModuleID"`
	Assessments []Assessment `gorm:"foreignKey:ModuleID"`
}

func (m *CourseModule) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
