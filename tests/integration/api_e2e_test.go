package integration_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/brightpath-labs/cbt-api/internal/config"
	"github.com/brightpath-labs/cbt-api/internal/dto"
	"github.com/brightpath-labs/cbt-api/internal/handler"
	"github.com/brightpath-labs/cbt-api/internal/models"
	"github.com/brightpath-labs/cbt-api/internal/repository"
	"github.com/brightpath-labs/cbt-api/internal/router"
	"github.com/brightpath-labs/cbt-api/internal/service"
)

const e2eSecret = "integration-secret"

func setupAPI(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Course{}, &models.CourseModule{}, &models.Lesson{},
		&models.Assessment{}, &models.Question{}, &models.Option{},
		&models.Attempt{}, &models.Answer{}, &models.CourseLayout{},
		&models.LessonProgress{},
	))

	validate := validator.New()
	logger := zerolog.New(io.Discard)

	courseRepo := repository.NewCourseRepository(db)
	moduleRepo := repository.NewModuleRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	graphRepo := repository.NewGraphRepository(db)
	layoutRepo := repository.NewLayoutRepository(db)
	progressRepo := repository.NewProgressRepository(db)

	resolver := service.NewCorrectnessResolver(assessmentRepo, logger)
	assessmentService := service.NewAssessmentService(
		assessmentRepo, attemptRepo, answerRepo, resolver, nil, validate,
		service.ScoringConfig{Policy: config.ScoringPolicyFixed, PassThreshold: 80, AuditAnswers: true},
		logger,
	)
	courseService := service.NewCourseService(courseRepo, logger)
	graphService := service.NewGraphService(
		courseRepo, moduleRepo, lessonRepo, assessmentRepo, graphRepo, layoutRepo,
		nil, nil, validate, time.Minute, logger,
	)
	importService := service.NewImportService(courseRepo, moduleRepo, lessonRepo, assessmentRepo, nil, logger)
	assetService := service.NewAssetService(lessonRepo, nil, time.Minute, logger)
	progressService := service.NewProgressService(progressRepo, lessonRepo, moduleRepo, courseRepo, nil, time.Minute, logger)

	app := fiber.New()
	router.Register(app, router.Dependencies{
		JWTSecret:        e2eSecret,
		SubmitRateLimit:  1000,
		SubmitRateWindow: time.Minute,
		Health:           handler.NewHealthHandler(db, nil),
		Assessment:       handler.NewAssessmentHandler(assessmentService, logger),
		Course:           handler.NewCourseHandler(courseService, logger),
		Lesson:           handler.NewLessonHandler(assetService, logger),
		Progress:         handler.NewProgressHandler(progressService, logger),
		Graph:            handler.NewGraphHandler(graphService, logger),
		Import:           handler.NewImportHandler(importService, logger),
	})

	return app, db
}

func seedAssessment(t *testing.T, db *gorm.DB) {
	t.Helper()

	require.NoError(t, db.Create(&models.Course{ID: "course-1", Title: "Safety", Published: true}).Error)
	require.NoError(t, db.Create(&models.CourseModule{ID: "mod-1", CourseID: "course-1", Title: "Basics"}).Error)
	require.NoError(t, db.Create(&models.Lesson{ID: "les-1", ModuleID: "mod-1", Type: models.LessonTypeVideo, Title: "Intro", VideoRef: "https://youtube.com/watch?v=abc"}).Error)
	require.NoError(t, db.Create(&models.Assessment{ID: "asm-1", ModuleID: "mod-1", Title: "Quiz", PassingScore: 80}).Error)

	for _, q := range []string{"q-1", "q-2"} {
		require.NoError(t, db.Create(&models.Question{ID: q, AssessmentID: "asm-1", Text: "?"}).Error)
		require.NoError(t, db.Create(&models.Option{ID: q + "-right", QuestionID: q, Text: "yes", IsCorrect: true}).Error)
		require.NoError(t, db.Create(&models.Option{ID: q + "-wrong", QuestionID: q, Text: "no"}).Error)
	}
}

func bearer(t *testing.T, sub, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(e2eSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func TestSubmitFlowEndToEnd(t *testing.T) {
	app, db := setupAPI(t)
	seedAssessment(t, db)

	body := `{
		"assessmentId": "asm-1",
		"userId": "user-1",
		"answers": [
			{"questionId": "q-1", "selectedOptionId": "q-1-right"},
			{"questionId": "q-2", "selectedOptionId": "q-2-wrong"}
		]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments/submit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload dto.SubmitAssessmentResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Equal(t, 50, payload.Score)
	require.False(t, payload.Passed)
	require.NotEmpty(t, payload.AttemptID)

	var attempt models.Attempt
	require.NoError(t, db.First(&attempt, "id = ?", payload.AttemptID).Error)
	require.Equal(t, 50, attempt.Score)
	require.NotNil(t, attempt.SubmittedAt)

	var answers int64
	require.NoError(t, db.Model(&models.Answer{}).Where("attempt_id = ?", payload.AttemptID).Count(&answers).Error)
	require.EqualValues(t, 2, answers)
}

func TestAdminGraphRequiresRole(t *testing.T) {
	app, db := setupAPI(t)
	seedAssessment(t, db)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/graph/nodes/q-1?kind=question", nil)
	req.Header.Set("Authorization", bearer(t, "student-1", "student"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodDelete, "/api/admin/graph/nodes/q-1?kind=question", nil)
	req.Header.Set("Authorization", bearer(t, "admin-1", "admin"))
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	var options int64
	require.NoError(t, db.Model(&models.Option{}).Where("question_id = ?", "q-1").Count(&options).Error)
	require.Zero(t, options)
}

func TestImportAndCatalogEndToEnd(t *testing.T) {
	app, _ := setupAPI(t)

	doc := `{
		"course": {"title": "Imported course"},
		"modules": [{"title": "M1", "lessons": [{"title": "L1", "type": "video"}]}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/courses/import", strings.NewReader(doc))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, "admin-1", "admin"))

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var report dto.ImportReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	require.NotEmpty(t, report.CourseID)
	require.Equal(t, 1, report.Modules)

	// The imported course is unpublished, so the public catalog hides it.
	listReq := httptest.NewRequest(http.MethodGet, "/api/v1/courses", nil)
	listResp, err := app.Test(listReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, listResp.StatusCode)

	var courses []dto.CourseResponse
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&courses))
	require.Empty(t, courses)
}

func TestLessonAssetURLEndToEnd(t *testing.T) {
	app, db := setupAPI(t)
	seedAssessment(t, db)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/lessons/les-1/asset-url", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload dto.LessonAssetURLResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Equal(t, dto.AssetSourceExternal, payload.Source)
	require.Equal(t, "https://youtube.com/watch?v=abc", payload.URL)
}

func TestProgressFlowEndToEnd(t *testing.T) {
	app, db := setupAPI(t)
	seedAssessment(t, db)

	complete := httptest.NewRequest(http.MethodPost, "/api/v1/progress/lessons/les-1/complete", nil)
	complete.Header.Set("Authorization", bearer(t, "user-1", "student"))
	resp, err := app.Test(complete)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	progress := httptest.NewRequest(http.MethodGet, "/api/v1/progress/courses/course-1", nil)
	progress.Header.Set("Authorization", bearer(t, "user-1", "student"))
	resp, err = app.Test(progress)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload dto.CourseProgressResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Equal(t, 1, payload.CompletedLessons)
	require.Equal(t, 1, payload.TotalLessons)
}
