package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/brightpath-labs/cbt-api/internal/config"
	"github.com/brightpath-labs/cbt-api/internal/dto"
	"github.com/brightpath-labs/cbt-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type fakeAssessmentRepo struct {
	assessment models.Assessment
	questions  []models.Question
	options    []models.Option
	// hideFromBulk simulates schema drift: these option ids are omitted from
	// the bulk load and only visible through direct lookup.
	hideFromBulk map[string]bool
}

func (f *fakeAssessmentRepo) GetByID(_ context.Context, id string) (models.Assessment, error) {
	if f.assessment.ID != id {
		return models.Assessment{}, gorm.ErrRecordNotFound
	}
	return f.assessment, nil
}

func (f *fakeAssessmentRepo) CountByModule(context.Context, string) (int64, error) { return 0, nil }

func (f *fakeAssessmentRepo) Create(_ context.Context, a *models.Assessment) error {
	f.assessment = *a
	return nil
}

func (f *fakeAssessmentRepo) Update(context.Context, *models.Assessment) error { return nil }

func (f *fakeAssessmentRepo) QuestionIDs(_ context.Context, assessmentID string) ([]string, error) {
	var ids []string
	for _, q := range f.questions {
		if q.AssessmentID == assessmentID {
			ids = append(ids, q.ID)
		}
	}
	return ids, nil
}

func (f *fakeAssessmentRepo) CountQuestions(_ context.Context, assessmentID string) (int64, error) {
	var count int64
	for _, q := range f.questions {
		if q.AssessmentID == assessmentID {
			count++
		}
	}
	return count, nil
}

func (f *fakeAssessmentRepo) GetQuestion(_ context.Context, id string) (models.Question, error) {
	for _, q := range f.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return models.Question{}, gorm.ErrRecordNotFound
}

func (f *fakeAssessmentRepo) CreateQuestion(context.Context, *models.Question) error { return nil }
func (f *fakeAssessmentRepo) UpdateQuestion(context.Context, *models.Question) error { return nil }

func (f *fakeAssessmentRepo) OptionsByQuestionIDs(_ context.Context, questionIDs []string) ([]models.Option, error) {
	members := make(map[string]bool, len(questionIDs))
	for _, id := range questionIDs {
		members[id] = true
	}

	var options []models.Option
	for _, o := range f.options {
		if members[o.QuestionID] && !f.hideFromBulk[o.ID] {
			options = append(options, o)
		}
	}
	return options, nil
}

func (f *fakeAssessmentRepo) OptionsByIDs(_ context.Context, ids []string) ([]models.Option, error) {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var options []models.Option
	for _, o := range f.options {
		if wanted[o.ID] {
			options = append(options, o)
		}
	}
	return options, nil
}

func (f *fakeAssessmentRepo) CountOptionsByQuestion(context.Context, string) (int64, error) {
	return 0, nil
}

func (f *fakeAssessmentRepo) GetOption(_ context.Context, id string) (models.Option, error) {
	for _, o := range f.options {
		if o.ID == id {
			return o, nil
		}
	}
	return models.Option{}, gorm.ErrRecordNotFound
}

func (f *fakeAssessmentRepo) CreateOption(context.Context, *models.Option) error { return nil }
func (f *fakeAssessmentRepo) UpdateOption(context.Context, *models.Option) error { return nil }

type fakeAttemptRepo struct {
	created   []models.Attempt
	finalized map[string]models.Attempt
}

func (f *fakeAttemptRepo) Create(_ context.Context, attempt *models.Attempt) error {
	if attempt.ID == "" {
		attempt.ID = "attempt-1"
	}
	f.created = append(f.created, *attempt)
	return nil
}

func (f *fakeAttemptRepo) Finalize(_ context.Context, id string, score int, passed bool, submittedAt time.Time) error {
	if f.finalized == nil {
		f.finalized = make(map[string]models.Attempt)
	}
	f.finalized[id] = models.Attempt{ID: id, Score: score, Passed: passed, SubmittedAt: &submittedAt}
	return nil
}

func (f *fakeAttemptRepo) GetByID(_ context.Context, id string) (models.Attempt, error) {
	if attempt, ok := f.finalized[id]; ok {
		return attempt, nil
	}
	return models.Attempt{}, gorm.ErrRecordNotFound
}

func (f *fakeAttemptRepo) ListByAssessmentAndUser(_ context.Context, assessmentID, userID string) ([]models.Attempt, error) {
	var attempts []models.Attempt
	for _, a := range f.created {
		if a.AssessmentID == assessmentID && a.UserID == userID {
			attempts = append(attempts, a)
		}
	}
	return attempts, nil
}

type fakeAnswerRepo struct {
	rows []models.Answer
}

func (f *fakeAnswerRepo) BulkCreate(_ context.Context, answers []models.Answer) error {
	f.rows = append(f.rows, answers...)
	return nil
}

func (f *fakeAnswerRepo) CountByAttempt(context.Context, string) (int64, error) {
	return int64(len(f.rows)), nil
}

func (f *fakeAnswerRepo) ListByAttempt(context.Context, string) ([]models.Answer, error) {
	return f.rows, nil
}

// fiveQuestionRepo builds an assessment with five questions, each carrying
// one correct and one wrong option.
func fiveQuestionRepo() *fakeAssessmentRepo {
	repo := &fakeAssessmentRepo{
		assessment:   models.Assessment{ID: "asm-1", ModuleID: "mod-1", Title: "Safety basics", PassingScore: 80},
		hideFromBulk: map[string]bool{},
	}
	for i := 0; i < 5; i++ {
		q := models.Question{ID: questionID(i), AssessmentID: "asm-1", Text: "q"}
		repo.questions = append(repo.questions, q)
		repo.options = append(repo.options,
			models.Option{ID: correctOptionID(i), QuestionID: q.ID, IsCorrect: true},
			models.Option{ID: wrongOptionID(i), QuestionID: q.ID, IsCorrect: false},
		)
	}
	return repo
}

func questionID(i int) string      { return "q-" + string(rune('a'+i)) }
func correctOptionID(i int) string { return "opt-correct-" + string(rune('a'+i)) }
func wrongOptionID(i int) string   { return "opt-wrong-" + string(rune('a'+i)) }

func newTestAssessmentService(repo *fakeAssessmentRepo, attempts *fakeAttemptRepo, answers *fakeAnswerRepo, scoring ScoringConfig) AssessmentService {
	resolver := NewCorrectnessResolver(repo, testLogger())
	return NewAssessmentService(repo, attempts, answers, resolver, nil, validator.New(), scoring, testLogger())
}

func submitAnswers(correct, wrong int) []dto.SubmittedAnswer {
	var answers []dto.SubmittedAnswer
	for i := 0; i < correct; i++ {
		answers = append(answers, dto.SubmittedAnswer{QuestionID: questionID(i), SelectedOptionID: correctOptionID(i)})
	}
	for i := correct; i < correct+wrong; i++ {
		answers = append(answers, dto.SubmittedAnswer{QuestionID: questionID(i), SelectedOptionID: wrongOptionID(i)})
	}
	return answers
}

func TestSubmitScoresAndFinalizesAttempt(t *testing.T) {
	repo := fiveQuestionRepo()
	attempts := &fakeAttemptRepo{}
	answers := &fakeAnswerRepo{}
	svc := newTestAssessmentService(repo, attempts, answers, ScoringConfig{Policy: config.ScoringPolicyFixed, PassThreshold: 80, AuditAnswers: true})

	result, err := svc.Submit(context.Background(), dto.SubmitAssessmentRequest{
		AssessmentID: "asm-1",
		UserID:       "user-1",
		Answers:      submitAnswers(4, 1),
	})
	require.NoError(t, err)

	require.Equal(t, 80, result.Score)
	require.True(t, result.Passed)
	require.NotEmpty(t, result.AttemptID)
	require.NotNil(t, result.Debug)
	require.Equal(t, 4, result.Debug.CorrectCount)
	require.Equal(t, 5, result.Debug.TotalQuestions)
	require.Equal(t, 0, result.Debug.OptionFallbackCount)

	finalized, ok := attempts.finalized[result.AttemptID]
	require.True(t, ok)
	require.Equal(t, 80, finalized.Score)
	require.True(t, finalized.Passed)
	require.NotNil(t, finalized.SubmittedAt)

	require.Len(t, answers.rows, 5)
}

func TestSubmitDropsMalformedAnswers(t *testing.T) {
	repo := fiveQuestionRepo()
	svc := newTestAssessmentService(repo, &fakeAttemptRepo{}, &fakeAnswerRepo{}, ScoringConfig{})

	payload := dto.SubmitAssessmentRequest{
		AssessmentID: "asm-1",
		UserID:       "user-1",
		Answers: append(submitAnswers(4, 0),
			dto.SubmittedAnswer{QuestionID: "", SelectedOptionID: "opt-correct-e"},
			dto.SubmittedAnswer{QuestionID: "q-e", SelectedOptionID: ""},
		),
	}

	result, err := svc.Submit(context.Background(), payload)
	require.NoError(t, err)

	// Four usable answers out of five questions.
	require.Equal(t, 80, result.Score)
	require.Equal(t, 4, result.Debug.CorrectCount)
}

func TestSubmitRejectsAllMalformed(t *testing.T) {
	svc := newTestAssessmentService(fiveQuestionRepo(), &fakeAttemptRepo{}, &fakeAnswerRepo{}, ScoringConfig{})

	_, err := svc.Submit(context.Background(), dto.SubmitAssessmentRequest{
		AssessmentID: "asm-1",
		UserID:       "user-1",
		Answers: []dto.SubmittedAnswer{
			{QuestionID: "", SelectedOptionID: ""},
			{QuestionID: "q-a", SelectedOptionID: ""},
		},
	})
	require.ErrorIs(t, err, ErrInvalidSubmission)
}

func TestSubmitUnknownAssessment(t *testing.T) {
	svc := newTestAssessmentService(fiveQuestionRepo(), &fakeAttemptRepo{}, &fakeAnswerRepo{}, ScoringConfig{})

	_, err := svc.Submit(context.Background(), dto.SubmitAssessmentRequest{
		AssessmentID: "nope",
		UserID:       "user-1",
		Answers:      submitAnswers(1, 0),
	})
	require.ErrorIs(t, err, ErrAssessmentNotFound)
}

func TestSubmitAssessmentPolicyUsesPerAssessmentThreshold(t *testing.T) {
	repo := fiveQuestionRepo()
	repo.assessment.PassingScore = 50

	fixed := newTestAssessmentService(repo, &fakeAttemptRepo{}, &fakeAnswerRepo{}, ScoringConfig{Policy: config.ScoringPolicyFixed, PassThreshold: 80})
	result, err := fixed.Submit(context.Background(), dto.SubmitAssessmentRequest{
		AssessmentID: "asm-1", UserID: "user-1", Answers: submitAnswers(3, 2),
	})
	require.NoError(t, err)
	require.Equal(t, 60, result.Score)
	require.False(t, result.Passed)

	perAssessment := newTestAssessmentService(repo, &fakeAttemptRepo{}, &fakeAnswerRepo{}, ScoringConfig{Policy: config.ScoringPolicyAssessment})
	result, err = perAssessment.Submit(context.Background(), dto.SubmitAssessmentRequest{
		AssessmentID: "asm-1", UserID: "user-1", Answers: submitAnswers(3, 2),
	})
	require.NoError(t, err)
	require.Equal(t, 60, result.Score)
	require.True(t, result.Passed)
}

func TestSubmitZeroQuestionsScoresZero(t *testing.T) {
	repo := &fakeAssessmentRepo{
		assessment:   models.Assessment{ID: "asm-empty", PassingScore: 80},
		hideFromBulk: map[string]bool{},
	}
	svc := newTestAssessmentService(repo, &fakeAttemptRepo{}, &fakeAnswerRepo{}, ScoringConfig{})

	result, err := svc.Submit(context.Background(), dto.SubmitAssessmentRequest{
		AssessmentID: "asm-empty",
		UserID:       "user-1",
		Answers:      []dto.SubmittedAnswer{{QuestionID: "ghost", SelectedOptionID: "ghost-opt"}},
	})
	require.NoError(t, err)
	require.Equal(t, 0, result.Score)
	require.False(t, result.Passed)
}

func TestSubmitRecoversOptionsMissingFromBulkLoad(t *testing.T) {
	repo := fiveQuestionRepo()
	repo.hideFromBulk[correctOptionID(0)] = true

	svc := newTestAssessmentService(repo, &fakeAttemptRepo{}, &fakeAnswerRepo{}, ScoringConfig{})

	result, err := svc.Submit(context.Background(), dto.SubmitAssessmentRequest{
		AssessmentID: "asm-1",
		UserID:       "user-1",
		Answers:      submitAnswers(5, 0),
	})
	require.NoError(t, err)

	require.Equal(t, 100, result.Score)
	require.Equal(t, 1, result.Debug.OptionFallbackCount)
}

func TestSubmitSkipsAnswerAuditWhenDisabled(t *testing.T) {
	answers := &fakeAnswerRepo{}
	svc := newTestAssessmentService(fiveQuestionRepo(), &fakeAttemptRepo{}, answers, ScoringConfig{AuditAnswers: false})

	_, err := svc.Submit(context.Background(), dto.SubmitAssessmentRequest{
		AssessmentID: "asm-1",
		UserID:       "user-1",
		Answers:      submitAnswers(5, 0),
	})
	require.NoError(t, err)
	require.Empty(t, answers.rows)
}

func TestListAttempts(t *testing.T) {
	attempts := &fakeAttemptRepo{}
	svc := newTestAssessmentService(fiveQuestionRepo(), attempts, &fakeAnswerRepo{}, ScoringConfig{})

	_, err := svc.Submit(context.Background(), dto.SubmitAssessmentRequest{
		AssessmentID: "asm-1",
		UserID:       "user-1",
		Answers:      submitAnswers(2, 3),
	})
	require.NoError(t, err)

	listed, err := svc.ListAttempts(context.Background(), "asm-1", "user-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)

	_, err = svc.ListAttempts(context.Background(), "", "user-1")
	require.ErrorIs(t, err, ErrInvalidSubmission)
}
