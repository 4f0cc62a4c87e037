package dto

import (
	"time"

	"github.com/brightpath-labs/cbt-api/internal/models"
)

// CourseResponse summarizes a catalog entry.
type CourseResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewCourseResponse converts a Course model into a DTO.
func NewCourseResponse(model models.Course) CourseResponse {
	return CourseResponse{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		Published:   model.Published,
		CreatedAt:   model.CreatedAt,
	}
}

// NewCourseResponseSlice converts course models into DTOs.
func NewCourseResponseSlice(courses []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, NewCourseResponse(course))
	}

	return responses
}

// LessonSummary is a lesson entry inside the course tree.
type LessonSummary struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Position int    `json:"position"`
}

// AssessmentSummary is an assessment entry inside the course tree.
type AssessmentSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	PassingScore  int    `json:"passing_score"`
	TimeLimitSec  *int   `json:"time_limit_sec"`
	QuestionCount int    `json:"question_count"`
}

// ModuleTree is one module with its content.
type ModuleTree struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Position    int                 `json:"position"`
	Lessons     []LessonSummary     `json:"lessons"`
	Assessments []AssessmentSummary `json:"assessments"`
}

// CourseTreeResponse is the full learner-facing course structure.
type CourseTreeResponse struct {
	CourseResponse
	Modules []ModuleTree `json:"modules"`
}

// NewCourseTreeResponse converts a fully loaded course into the tree DTO.
func NewCourseTreeResponse(course models.Course) CourseTreeResponse {
	response := CourseTreeResponse{
		CourseResponse: NewCourseResponse(course),
		Modules:        make([]ModuleTree, 0, len(course.Modules)),
	}

	for _, module := range course.Modules {
		tree := ModuleTree{
			ID:          module.ID,
			Title:       module.Title,
			Position:    module.Position,
			Lessons:     make([]LessonSummary, 0, len(module.Lessons)),
			Assessments: make([]AssessmentSummary, 0, len(module.Assessments)),
		}

		for _, lesson := range module.Lessons {
			tree.Lessons = append(tree.Lessons, LessonSummary{
				ID:       lesson.ID,
				Type:     lesson.Type,
				Title:    lesson.Title,
				Position: lesson.Position,
			})
		}

		for _, assessment := range module.Assessments {
			tree.Assessments = append(tree.Assessments, AssessmentSummary{
				ID:            assessment.ID,
				Title:         assessment.Title,
				PassingScore:  assessment.PassingScore,
				TimeLimitSec:  assessment.TimeLimitSec,
				QuestionCount: len(assessment.Questions),
			})
		}

		response.Modules = append(response.Modules, tree)
	}

	return response
}
