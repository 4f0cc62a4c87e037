package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/brightpath-labs/cbt-api/internal/models"
)

// SchemaStatus records the outcome of the startup schema verification.
type SchemaStatus struct {
	// AnswerAuditEnabled is false when the answers table is absent in this
	// deployment. Per-question answer history is best-effort: scoring keeps
	// working, the audit writes are skipped for the process lifetime.
	AnswerAuditEnabled bool
}

// VerifySchema checks the deployed schema against the code's expectations
// once at startup, instead of discovering divergence per request. The only
// tolerated divergence is a missing answers table; anything else fails hard.
func VerifySchema(db *gorm.DB) (SchemaStatus, error) {
	migrator := db.Migrator()

	required := []interface{}{
		&models.Course{},
		&models.CourseModule{},
		&models.Lesson{},
		&models.Assessment{},
		&models.Question{},
		&models.Option{},
		&models.Attempt{},
		&models.CourseLayout{},
		&models.LessonProgress{},
	}
	for _, model := range required {
		if !migrator.HasTable(model) {
			return SchemaStatus{}, fmt.Errorf("required table for %T is missing", model)
		}
	}

	return SchemaStatus{
		AnswerAuditEnabled: migrator.HasTable(&models.Answer{}),
	}, nil
}
