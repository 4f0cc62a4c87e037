package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lesson is a single content unit inside a module.
type Lesson struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	ModuleID  string    `gorm:"size:36;not null;index" json:"module_id"`
	Type      string    `gorm:"size:32;not null" json:"type"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	VideoRef  string    `gorm:"size:512" json:"video_ref"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	// LessonTypeVideo marks a lesson backed by a video asset.
	LessonTypeVideo = "video"
	// LessonTypeSimulation marks a 3D simulation lesson rendered by the client.
	LessonTypeSimulation = "simulation"
)

func (l *Lesson) BeforeCreate(*gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// HasExternalVideo reports whether the stored video reference is already an
// absolute URL rather than an object-storage public ID.
func (l Lesson) HasExternalVideo() bool {
	return strings.HasPrefix(l.VideoRef, "http://") || strings.HasPrefix(l.VideoRef, "https://")
}
