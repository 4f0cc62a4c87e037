package dto

import (
	"encoding/json"
	"time"

	"github.com/brightpath-labs/cbt-api/internal/models"
)

// SubmittedAnswer is one (question, selected option) pair from the client.
// Field names follow the wire contract of the submit endpoint.
type SubmittedAnswer struct {
	QuestionID       string `json:"questionId"`
	SelectedOptionID string `json:"selectedOptionId"`
}

// IsWellFormed reports whether both identifiers are present. Malformed
// entries are filtered out silently rather than rejected.
func (a SubmittedAnswer) IsWellFormed() bool {
	return a.QuestionID != "" && a.SelectedOptionID != ""
}

// UnmarshalJSON decodes an answer entry leniently. An id that is not a JSON
// string, or an entry that is not an object, yields empty fields so the entry
// is filtered out instead of failing the whole submission.
func (a *SubmittedAnswer) UnmarshalJSON(data []byte) error {
	var raw struct {
		QuestionID       json.RawMessage `json:"questionId"`
		SelectedOptionID json.RawMessage `json:"selectedOptionId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		*a = SubmittedAnswer{}
		return nil
	}

	a.QuestionID = decodeStringID(raw.QuestionID)
	a.SelectedOptionID = decodeStringID(raw.SelectedOptionID)

	return nil
}

func decodeStringID(raw json.RawMessage) string {
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		return ""
	}

	return id
}

// SubmitAssessmentRequest is the body of POST /assessments/submit.
type SubmitAssessmentRequest struct {
	AssessmentID string            `json:"assessmentId" validate:"required"`
	UserID       string            `json:"userId"`
	Answers      []SubmittedAnswer `json:"answers"`
}

// SubmitDebug carries optional scoring diagnostics.
type SubmitDebug struct {
	CorrectCount        int `json:"correctCount"`
	TotalQuestions      int `json:"totalQuestions"`
	OptionFallbackCount int `json:"optionFallbackCount"`
}

// SubmitAssessmentResponse is returned on a successful submission.
type SubmitAssessmentResponse struct {
	AttemptID string       `json:"attemptId"`
	Score     int          `json:"score"`
	Passed    bool         `json:"passed"`
	Debug     *SubmitDebug `json:"debug,omitempty"`
}

// AttemptResponse serializes a stored attempt for history listings.
type AttemptResponse struct {
	ID           string     `json:"id"`
	AssessmentID string     `json:"assessment_id"`
	Score        int        `json:"score"`
	Passed       bool       `json:"passed"`
	StartedAt    time.Time  `json:"started_at"`
	SubmittedAt  *time.Time `json:"submitted_at"`
}

// NewAttemptResponse converts an Attempt model into a DTO.
func NewAttemptResponse(model models.Attempt) AttemptResponse {
	return AttemptResponse{
		ID:           model.ID,
		AssessmentID: model.AssessmentID,
		Score:        model.Score,
		Passed:       model.Passed,
		StartedAt:    model.StartedAt,
		SubmittedAt:  model.SubmittedAt,
	}
}

// NewAttemptResponseSlice converts attempt models into DTOs.
func NewAttemptResponseSlice(attempts []models.Attempt) []AttemptResponse {
	responses := make([]AttemptResponse, 0, len(attempts))
	for _, attempt := range attempts {
		responses = append(responses, NewAttemptResponse(attempt))
	}

	return responses
}
