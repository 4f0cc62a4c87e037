package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/brightpath-labs/cbt-api/internal/dto"
	"github.com/brightpath-labs/cbt-api/internal/events"
	"github.com/brightpath-labs/cbt-api/internal/models"
	"github.com/brightpath-labs/cbt-api/internal/repository"
)

// ErrInvalidImport indicates the document failed structural validation
// before any row was written.
var ErrInvalidImport = errors.New("invalid import document")

// importSchema is the structural contract for bulk course documents.
// Validation runs before any database write; per-item semantic failures are
// collected into the report instead.
const importSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["course", "modules"],
  "properties": {
    "course": {
      "type": "object",
      "required": ["title"],
      "properties": {
        "title": {"type": "string", "minLength": 1},
        "description": {"type": "string"}
      }
    },
    "modules": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title", "lessons"],
        "properties": {
          "title": {"type": "string", "minLength": 1},
          "lessons": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["title"],
              "properties": {
                "type": {"type": "string"},
                "title": {"type": "string", "minLength": 1},
                "youtube_url": {"type": "string"},
                "questions": {
                  "type": "array",
                  "items": {
                    "type": "object",
                    "required": ["text", "options"],
                    "properties": {
                      "text": {"type": "string", "minLength": 1},
                      "options": {
                        "type": "array",
                        "minItems": 1,
                        "items": {
                          "type": "object",
                          "required": ["text"],
                          "properties": {
                            "text": {"type": "string", "minLength": 1},
                            "correct": {"type": "boolean"}
                          }
                        }
                      }
                    }
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

var compiledImportSchema = jsonschema.MustCompileString("import.schema.json", importSchema)

// ImportService bulk-loads a whole course tree from a JSON document.
type ImportService interface {
	// Import validates and persists the document. Item-level failures do not
	// abort the run; they are reported in the returned report.
	Import(ctx context.Context, raw []byte) (dto.ImportReport, error)
}

type importService struct {
	courses     repository.CourseRepository
	modules     repository.ModuleRepository
	lessons     repository.LessonRepository
	assessments repository.AssessmentRepository
	publisher   *events.Publisher
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewImportService constructs an ImportService instance.
func NewImportService(
	courses repository.CourseRepository,
	modules repository.ModuleRepository,
	lessons repository.LessonRepository,
	assessments repository.AssessmentRepository,
	publisher *events.Publisher,
	logger zerolog.Logger,
) ImportService {
	return &importService{
		courses:     courses,
		modules:     modules,
		lessons:     lessons,
		assessments: assessments,
		publisher:   publisher,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "import_service").Logger(),
		now:         time.Now,
	}
}

func (s *importService) Import(ctx context.Context, raw []byte) (dto.ImportReport, error) {
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return dto.ImportReport{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	if err := compiledImportSchema.Validate(decoded); err != nil {
		return dto.ImportReport{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	var doc dto.ImportDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return dto.ImportReport{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	course := models.Course{
		Title:       s.clean(doc.Course.Title),
		Description: s.clean(doc.Course.Description),
	}
	if err := s.courses.Create(ctx, &course); err != nil {
		return dto.ImportReport{}, err
	}

	report := dto.ImportReport{CourseID: course.ID, Errors: []dto.ImportError{}}

	for i, moduleDoc := range doc.Modules {
		module := models.CourseModule{
			CourseID: course.ID,
			Title:    s.clean(moduleDoc.Title),
			Position: i,
		}
		if err := s.modules.Create(ctx, &module); err != nil {
			report.Errors = append(report.Errors, dto.ImportError{
				Where:   fmt.Sprintf("modules[%d]", i),
				Message: err.Error(),
			})
			continue
		}
		report.Modules++

		for j, lessonDoc := range moduleDoc.Lessons {
			where := fmt.Sprintf("modules[%d].lessons[%d]", i, j)
			if len(lessonDoc.Questions) > 0 {
				s.importAssessment(ctx, module.ID, lessonDoc, where, &report)
				continue
			}
			s.importLesson(ctx, module.ID, j, lessonDoc, where, &report)
		}
	}

	s.publisher.CourseImported(events.CourseImported{
		CourseID:   course.ID,
		Modules:    report.Modules,
		Lessons:    report.Lessons,
		Errors:     len(report.Errors),
		ImportedAt: s.now(),
	})

	s.logger.Info().
		Str("course_id", course.ID).
		Int("modules", report.Modules).
		Int("lessons", report.Lessons).
		Int("assessments", report.Assessments).
		Int("errors", len(report.Errors)).
		Msg("course imported")

	return report, nil
}

func (s *importService) importLesson(ctx context.Context, moduleID string, position int, doc dto.ImportLesson, where string, report *dto.ImportReport) {
	lessonType := doc.Type
	if lessonType == "" {
		lessonType = models.LessonTypeVideo
	}

	lesson := models.Lesson{
		ModuleID: moduleID,
		Type:     lessonType,
		Title:    s.clean(doc.Title),
		VideoRef: doc.YoutubeURL,
		Position: position,
	}
	if err := s.lessons.Create(ctx, &lesson); err != nil {
		report.Errors = append(report.Errors, dto.ImportError{Where: where, Message: err.Error()})
		return
	}
	report.Lessons++
}

// importAssessment turns a lesson entry carrying questions into an
// assessment with its question and option rows.
func (s *importService) importAssessment(ctx context.Context, moduleID string, doc dto.ImportLesson, where string, report *dto.ImportReport) {
	assessment := models.Assessment{
		ModuleID: moduleID,
		Title:    s.clean(doc.Title),
	}
	if err := s.assessments.Create(ctx, &assessment); err != nil {
		report.Errors = append(report.Errors, dto.ImportError{Where: where, Message: err.Error()})
		return
	}
	report.Assessments++

	for k, questionDoc := range doc.Questions {
		questionWhere := fmt.Sprintf("%s.questions[%d]", where, k)
		question := models.Question{
			AssessmentID: assessment.ID,
			Text:         s.clean(questionDoc.Text),
			Position:     k,
		}
		if err := s.assessments.CreateQuestion(ctx, &question); err != nil {
			report.Errors = append(report.Errors, dto.ImportError{Where: questionWhere, Message: err.Error()})
			continue
		}
		report.Questions++

		for l, optionDoc := range questionDoc.Options {
			option := models.Option{
				QuestionID: question.ID,
				Text:       s.clean(optionDoc.Text),
				IsCorrect:  optionDoc.Correct,
			}
			if err := s.assessments.CreateOption(ctx, &option); err != nil {
				report.Errors = append(report.Errors, dto.ImportError{
					Where:   fmt.Sprintf("%s.options[%d]", questionWhere, l),
					Message: err.Error(),
				})
				continue
			}
			report.Options++
		}
	}
}

func (s *importService) clean(value string) string {
	return s.sanitizer.Sanitize(value)
}
