package models

import (
	"time"

	"gorm.io/datatypes"
)

// CourseLayout is the durable per-course record of editor node positions.
// Positions holds a JSON object mapping node ID to {"x": .., "y": ..}.
type CourseLayout struct {
	CourseID  string         `gorm:"primaryKey;size:36" json:"course_id"`
	Positions datatypes.JSON `gorm:"type:jsonb" json:"positions"`
	UpdatedAt time.Time      `json:"updated_at"`
}
