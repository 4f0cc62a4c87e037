package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/brightpath-labs/cbt-api/internal/dto"
	"github.com/brightpath-labs/cbt-api/internal/graph"
	"github.com/brightpath-labs/cbt-api/internal/models"
	"github.com/brightpath-labs/cbt-api/internal/repository"
)

func setupGraphService(t *testing.T) (GraphService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Course{}, &models.CourseModule{}, &models.Lesson{},
		&models.Assessment{}, &models.Question{}, &models.Option{},
		&models.CourseLayout{},
	))

	svc := NewGraphService(
		repository.NewCourseRepository(db),
		repository.NewModuleRepository(db),
		repository.NewLessonRepository(db),
		repository.NewAssessmentRepository(db),
		repository.NewGraphRepository(db),
		repository.NewLayoutRepository(db),
		nil,
		nil,
		validator.New(),
		0,
		testLogger(),
	)

	return svc, db
}

// seedCourseTree creates a course with one module holding a lesson and an
// assessment with two questions, each with two options.
func seedCourseTree(t *testing.T, db *gorm.DB) models.Course {
	t.Helper()

	course := models.Course{ID: "course-1", Title: "Electrical safety", Published: true}
	require.NoError(t, db.Create(&course).Error)

	module := models.CourseModule{ID: "mod-1", CourseID: course.ID, Title: "Basics"}
	require.NoError(t, db.Create(&module).Error)

	lesson := models.Lesson{ID: "les-1", ModuleID: module.ID, Type: models.LessonTypeVideo, Title: "Intro"}
	require.NoError(t, db.Create(&lesson).Error)

	assessment := models.Assessment{ID: "asm-1", ModuleID: module.ID, Title: "Quiz"}
	require.NoError(t, db.Create(&assessment).Error)

	for _, q := range []string{"q-1", "q-2"} {
		question := models.Question{ID: q, AssessmentID: assessment.ID, Text: "?"}
		require.NoError(t, db.Create(&question).Error)
		require.NoError(t, db.Create(&models.Option{ID: q + "-right", QuestionID: q, Text: "yes", IsCorrect: true}).Error)
		require.NoError(t, db.Create(&models.Option{ID: q + "-wrong", QuestionID: q, Text: "no"}).Error)
	}

	return course
}

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestLoadGraphProjectsFullTree(t *testing.T) {
	svc, db := setupGraphService(t)
	course := seedCourseTree(t, db)

	response, err := svc.LoadGraph(context.Background(), course.ID)
	require.NoError(t, err)

	// 1 course + 1 module + 1 lesson + 1 assessment + 2 questions + 4 options
	require.Len(t, response.Nodes, 10)
	require.Len(t, response.Edges, 9)
	require.Equal(t, graph.KindCourse, response.Nodes[0].Kind)

	// No layout saved yet.
	for _, node := range response.Nodes {
		require.Nil(t, node.Position)
	}
}

func TestLoadGraphUnknownCourse(t *testing.T) {
	svc, _ := setupGraphService(t)

	_, err := svc.LoadGraph(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNodeNotFound)
}

func TestAutoLayoutPersistsAndServesPositions(t *testing.T) {
	svc, db := setupGraphService(t)
	course := seedCourseTree(t, db)

	layout, err := svc.AutoLayout(context.Background(), course.ID)
	require.NoError(t, err)
	require.Empty(t, layout.Unplaced)
	require.Len(t, layout.Positions, 10)
	require.Contains(t, layout.Positions, "course-1")
	require.Contains(t, layout.Positions, "q-1-right")

	var stored models.CourseLayout
	require.NoError(t, db.First(&stored, "course_id = ?", course.ID).Error)
	require.NotEmpty(t, stored.Positions)

	response, err := svc.LoadGraph(context.Background(), course.ID)
	require.NoError(t, err)
	for _, node := range response.Nodes {
		require.NotNil(t, node.Position, "node %s has no position", node.ID)
	}

	// Recompute overwrites the stored row instead of inserting a second one.
	_, err = svc.AutoLayout(context.Background(), course.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count(t, db, &models.CourseLayout{}))
}

func TestAddChildAppendsAfterSiblings(t *testing.T) {
	svc, db := setupGraphService(t)
	course := seedCourseTree(t, db)

	node, err := svc.AddChild(context.Background(), dto.AddNodeRequest{ParentID: course.ID, ChildKind: "module"})
	require.NoError(t, err)
	require.Equal(t, graph.KindModule, node.Kind)
	require.NotNil(t, node.Module)
	require.Equal(t, 1, node.Module.Position)

	lessonNode, err := svc.AddChild(context.Background(), dto.AddNodeRequest{ParentID: "mod-1", ChildKind: "lesson"})
	require.NoError(t, err)
	require.Equal(t, 1, lessonNode.Lesson.Position)

	optionNode, err := svc.AddChild(context.Background(), dto.AddNodeRequest{ParentID: "q-1", ChildKind: "option"})
	require.NoError(t, err)
	require.False(t, optionNode.Option.IsCorrect)
	require.EqualValues(t, 5, count(t, db, &models.Option{}))
}

func TestAddChildUnknownParent(t *testing.T) {
	svc, _ := setupGraphService(t)

	_, err := svc.AddChild(context.Background(), dto.AddNodeRequest{ParentID: "missing", ChildKind: "module"})
	require.ErrorIs(t, err, ErrNodeNotFound)
}

func TestUpdateNodeByKind(t *testing.T) {
	svc, db := setupGraphService(t)
	seedCourseTree(t, db)

	newTitle := "Advanced basics"
	require.NoError(t, svc.UpdateNode(context.Background(), "mod-1", dto.UpdateNodeRequest{Kind: "module", Title: &newTitle}))

	var module models.CourseModule
	require.NoError(t, db.First(&module, "id = ?", "mod-1").Error)
	require.Equal(t, newTitle, module.Title)

	correct := true
	text := "definitely"
	require.NoError(t, svc.UpdateNode(context.Background(), "q-1-wrong", dto.UpdateNodeRequest{Kind: "option", Text: &text, IsCorrect: &correct}))

	var option models.Option
	require.NoError(t, db.First(&option, "id = ?", "q-1-wrong").Error)
	require.True(t, option.IsCorrect)
	require.Equal(t, text, option.Text)

	require.ErrorIs(t, svc.UpdateNode(context.Background(), "missing", dto.UpdateNodeRequest{Kind: "lesson", Title: &newTitle}), ErrNodeNotFound)
}

func TestDeleteModuleCascades(t *testing.T) {
	svc, db := setupGraphService(t)
	seedCourseTree(t, db)

	require.NoError(t, svc.DeleteNode(context.Background(), "mod-1", "module"))

	require.EqualValues(t, 0, count(t, db, &models.CourseModule{}))
	require.EqualValues(t, 0, count(t, db, &models.Lesson{}))
	require.EqualValues(t, 0, count(t, db, &models.Assessment{}))
	require.EqualValues(t, 0, count(t, db, &models.Question{}))
	require.EqualValues(t, 0, count(t, db, &models.Option{}))
	require.EqualValues(t, 1, count(t, db, &models.Course{}))
}

func TestDeleteQuestionCascadesToOptionsOnly(t *testing.T) {
	svc, db := setupGraphService(t)
	seedCourseTree(t, db)

	require.NoError(t, svc.DeleteNode(context.Background(), "q-1", "question"))

	require.EqualValues(t, 1, count(t, db, &models.Question{}))
	require.EqualValues(t, 2, count(t, db, &models.Option{}))

	var remaining models.Question
	require.NoError(t, db.First(&remaining).Error)
	require.Equal(t, "q-2", remaining.ID)
}

func TestDeleteCourseRejected(t *testing.T) {
	svc, db := setupGraphService(t)
	course := seedCourseTree(t, db)

	err := svc.DeleteNode(context.Background(), course.ID, "course")
	require.ErrorIs(t, err, ErrUnsupportedNode)
	require.EqualValues(t, 1, count(t, db, &models.Course{}))
}

func TestDeleteUnknownNode(t *testing.T) {
	svc, _ := setupGraphService(t)

	require.ErrorIs(t, svc.DeleteNode(context.Background(), "missing", "lesson"), ErrNodeNotFound)
	require.ErrorIs(t, svc.DeleteNode(context.Background(), "missing", "martian"), ErrInvalidNode)
}
