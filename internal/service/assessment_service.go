package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/brightpath-labs/cbt-api/internal/config"
	"github.com/brightpath-labs/cbt-api/internal/dto"
	"github.com/brightpath-labs/cbt-api/internal/events"
	"github.com/brightpath-labs/cbt-api/internal/models"
	"github.com/brightpath-labs/cbt-api/internal/observability"
	"github.com/brightpath-labs/cbt-api/internal/repository"
)

var (
	// ErrInvalidSubmission indicates a malformed submit request. Never retried.
	ErrInvalidSubmission = errors.New("invalid submission")
	// ErrAssessmentNotFound indicates the referenced assessment does not exist.
	ErrAssessmentNotFound = errors.New("assessment not found")
)

// ScoringConfig selects how the pass threshold is determined.
type ScoringConfig struct {
	// Policy is config.ScoringPolicyFixed or config.ScoringPolicyAssessment.
	Policy string
	// PassThreshold applies under the fixed policy.
	PassThreshold int
	// AuditAnswers controls whether per-question answer rows are persisted.
	// Disabled when the startup schema check found no answers table.
	AuditAnswers bool
}

// AssessmentService turns raw submissions into durable, scored attempts.
type AssessmentService interface {
	Submit(ctx context.Context, payload dto.SubmitAssessmentRequest) (dto.SubmitAssessmentResponse, error)
	ListAttempts(ctx context.Context, assessmentID, userID string) ([]dto.AttemptResponse, error)
}

type assessmentService struct {
	assessments repository.AssessmentRepository
	attempts    repository.AttemptRepository
	answers     repository.AnswerRepository
	resolver    CorrectnessResolver
	publisher   *events.Publisher
	validator   *validator.Validate
	scoring     ScoringConfig
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewAssessmentService constructs an AssessmentService instance.
func NewAssessmentService(
	assessments repository.AssessmentRepository,
	attempts repository.AttemptRepository,
	answers repository.AnswerRepository,
	resolver CorrectnessResolver,
	publisher *events.Publisher,
	validate *validator.Validate,
	scoring ScoringConfig,
	logger zerolog.Logger,
) AssessmentService {
	if scoring.Policy == "" {
		scoring.Policy = config.ScoringPolicyFixed
	}
	if scoring.PassThreshold <= 0 {
		scoring.PassThreshold = models.DefaultPassingScore
	}

	return &assessmentService{
		assessments: assessments,
		attempts:    attempts,
		answers:     answers,
		resolver:    resolver,
		publisher:   publisher,
		validator:   validate,
		scoring:     scoring,
		logger:      logger.With().Str("component", "assessment_service").Logger(),
		tracer:      otel.Tracer("github.com/brightpath-labs/cbt-api/internal/service/assessment"),
		now:         time.Now,
	}
}

func (s *assessmentService) Submit(ctx context.Context, payload dto.SubmitAssessmentRequest) (dto.SubmitAssessmentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "assessment.submit")
	defer span.End()
	start := s.now()

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmitAssessmentResponse{}, err
	}
	if payload.AssessmentID == "" {
		return dto.SubmitAssessmentResponse{}, fmt.Errorf("%w: assessmentId is required", ErrInvalidSubmission)
	}
	if payload.UserID == "" {
		return dto.SubmitAssessmentResponse{}, fmt.Errorf("%w: userId is required", ErrInvalidSubmission)
	}

	// Malformed entries are dropped, not rejected; only a submission with no
	// usable answers at all is an error.
	answers := filterWellFormed(payload.Answers)
	if len(answers) == 0 {
		return dto.SubmitAssessmentResponse{}, fmt.Errorf("%w: no well-formed answers", ErrInvalidSubmission)
	}

	assessment, err := s.assessments.GetByID(ctx, payload.AssessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmitAssessmentResponse{}, ErrAssessmentNotFound
		}
		return dto.SubmitAssessmentResponse{}, err
	}

	optionIDs := make([]string, 0, len(answers))
	for _, answer := range answers {
		optionIDs = append(optionIDs, answer.SelectedOptionID)
	}

	correctness, fallbacks, err := s.resolver.Resolve(ctx, assessment.ID, optionIDs)
	if err != nil {
		return dto.SubmitAssessmentResponse{}, err
	}

	attempt := models.Attempt{
		AssessmentID: assessment.ID,
		UserID:       payload.UserID,
		StartedAt:    s.now(),
	}
	if err := s.attempts.Create(ctx, &attempt); err != nil {
		return dto.SubmitAssessmentResponse{}, err
	}

	correct := 0
	answerRows := make([]models.Answer, 0, len(answers))
	for _, answer := range answers {
		isCorrect := correctness[answer.SelectedOptionID]
		if isCorrect {
			correct++
		}
		answerRows = append(answerRows, models.Answer{
			AttemptID:  attempt.ID,
			QuestionID: answer.QuestionID,
			OptionID:   answer.SelectedOptionID,
			IsCorrect:  isCorrect,
		})
	}

	if s.scoring.AuditAnswers {
		if err := s.answers.BulkCreate(ctx, answerRows); err != nil {
			return dto.SubmitAssessmentResponse{}, err
		}
	}

	// Re-queried rather than derived from the correctness map, so the score
	// denominator does not depend on resolver internals.
	totalQuestions, err := s.assessments.CountQuestions(ctx, assessment.ID)
	if err != nil {
		return dto.SubmitAssessmentResponse{}, err
	}

	score := 0
	if totalQuestions > 0 {
		score = int(math.Round(float64(correct) / float64(totalQuestions) * 100))
	}

	threshold := s.scoring.PassThreshold
	if s.scoring.Policy == config.ScoringPolicyAssessment {
		threshold = assessment.PassingScore
	}
	passed := score >= threshold

	submittedAt := s.now()
	if err := s.attempts.Finalize(ctx, attempt.ID, score, passed, submittedAt); err != nil {
		return dto.SubmitAssessmentResponse{}, err
	}

	result := "failed"
	if passed {
		result = "passed"
	}
	observability.Attempts().WithLabelValues(result).Inc()
	observability.ScoringLatency().Observe(s.now().Sub(start).Seconds())
	span.SetAttributes(
		attribute.String("assessment.id", assessment.ID),
		attribute.Int("assessment.score", score),
		attribute.Bool("assessment.passed", passed),
	)

	s.publisher.AttemptScored(events.AttemptScored{
		AttemptID:    attempt.ID,
		AssessmentID: assessment.ID,
		UserID:       payload.UserID,
		Score:        score,
		Passed:       passed,
		ScoredAt:     submittedAt,
	})

	s.logger.Info().
		Str("attempt_id", attempt.ID).
		Str("assessment_id", assessment.ID).
		Int("score", score).
		Bool("passed", passed).
		Msg("attempt scored")

	return dto.SubmitAssessmentResponse{
		AttemptID: attempt.ID,
		Score:     score,
		Passed:    passed,
		Debug: &dto.SubmitDebug{
			CorrectCount:        correct,
			TotalQuestions:      int(totalQuestions),
			OptionFallbackCount: fallbacks,
		},
	}, nil
}

func (s *assessmentService) ListAttempts(ctx context.Context, assessmentID, userID string) ([]dto.AttemptResponse, error) {
	if assessmentID == "" || userID == "" {
		return nil, fmt.Errorf("%w: assessment and user ids are required", ErrInvalidSubmission)
	}

	attempts, err := s.attempts.ListByAssessmentAndUser(ctx, assessmentID, userID)
	if err != nil {
		return nil, err
	}

	return dto.NewAttemptResponseSlice(attempts), nil
}

func filterWellFormed(answers []dto.SubmittedAnswer) []dto.SubmittedAnswer {
	filtered := make([]dto.SubmittedAnswer, 0, len(answers))
	for _, answer := range answers {
		if answer.IsWellFormed() {
			filtered = append(filtered, answer)
		}
	}
	return filtered
}
