package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/brightpath-labs/cbt-api/internal/dto"
	"github.com/brightpath-labs/cbt-api/internal/events"
	"github.com/brightpath-labs/cbt-api/internal/graph"
	"github.com/brightpath-labs/cbt-api/internal/models"
	"github.com/brightpath-labs/cbt-api/internal/repository"
)

var (
	// ErrNodeNotFound indicates the referenced graph node does not exist.
	ErrNodeNotFound = errors.New("node not found")
	// ErrUnsupportedNode indicates the operation does not apply to this node
	// kind. Courses cannot be deleted through the graph editor.
	ErrUnsupportedNode = errors.New("operation not supported for node kind")
	// ErrInvalidNode indicates a malformed mutation request.
	ErrInvalidNode = errors.New("invalid node request")
)

// GraphService serves the admin course editor: graph projection, auto
// layout, and structural mutations.
type GraphService interface {
	LoadGraph(ctx context.Context, courseID string) (dto.CourseGraphResponse, error)
	AutoLayout(ctx context.Context, courseID string) (dto.LayoutResponse, error)
	AddChild(ctx context.Context, payload dto.AddNodeRequest) (graph.Node, error)
	UpdateNode(ctx context.Context, nodeID string, payload dto.UpdateNodeRequest) error
	DeleteNode(ctx context.Context, nodeID, kind string) error
}

type graphService struct {
	courses     repository.CourseRepository
	modules     repository.ModuleRepository
	lessons     repository.LessonRepository
	assessments repository.AssessmentRepository
	structure   repository.GraphRepository
	layouts     repository.LayoutRepository
	cache       *redis.Client
	publisher   *events.Publisher
	validator   *validator.Validate
	layoutTTL   time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewGraphService constructs a GraphService instance. cache may be nil to
// disable layout caching.
func NewGraphService(
	courses repository.CourseRepository,
	modules repository.ModuleRepository,
	lessons repository.LessonRepository,
	assessments repository.AssessmentRepository,
	structure repository.GraphRepository,
	layouts repository.LayoutRepository,
	cache *redis.Client,
	publisher *events.Publisher,
	validate *validator.Validate,
	layoutTTL time.Duration,
	logger zerolog.Logger,
) GraphService {
	if layoutTTL <= 0 {
		layoutTTL = 10 * time.Minute
	}

	return &graphService{
		courses:     courses,
		modules:     modules,
		lessons:     lessons,
		assessments: assessments,
		structure:   structure,
		layouts:     layouts,
		cache:       cache,
		publisher:   publisher,
		validator:   validate,
		layoutTTL:   layoutTTL,
		logger:      logger.With().Str("component", "graph_service").Logger(),
		now:         time.Now,
	}
}

func layoutCacheKey(courseID string) string {
	return fmt.Sprintf("layout:course:%s", courseID)
}

func (s *graphService) LoadGraph(ctx context.Context, courseID string) (dto.CourseGraphResponse, error) {
	course, err := s.courses.GetTree(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseGraphResponse{}, ErrNodeNotFound
		}
		return dto.CourseGraphResponse{}, err
	}

	nodes, edges := graph.BuildCourseGraph(course)
	positions := s.loadPositions(ctx, courseID)

	response := dto.CourseGraphResponse{
		Nodes: make([]dto.GraphNodeResponse, 0, len(nodes)),
		Edges: edges,
	}
	for _, node := range nodes {
		entry := dto.GraphNodeResponse{Node: node}
		if pos, ok := positions[node.ID]; ok {
			p := pos
			entry.Position = &p
		}
		response.Nodes = append(response.Nodes, entry)
	}

	return response, nil
}

// loadPositions returns the saved layout for a course, consulting the cache
// before the datastore. Failures degrade to an empty layout: the editor
// falls back to client-side placement.
func (s *graphService) loadPositions(ctx context.Context, courseID string) map[string]graph.Position {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, layoutCacheKey(courseID)).Bytes()
		if err == nil {
			var positions map[string]graph.Position
			if json.Unmarshal(raw, &positions) == nil {
				return positions
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Str("course_id", courseID).Msg("layout cache read failed")
		}
	}

	layout, err := s.layouts.Get(ctx, courseID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Err(err).Str("course_id", courseID).Msg("layout load failed")
		}
		return nil
	}

	var positions map[string]graph.Position
	if err := json.Unmarshal(layout.Positions, &positions); err != nil {
		s.logger.Warn().Err(err).Str("course_id", courseID).Msg("stored layout is not decodable")
		return nil
	}

	return positions
}

func (s *graphService) AutoLayout(ctx context.Context, courseID string) (dto.LayoutResponse, error) {
	course, err := s.courses.GetTree(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LayoutResponse{}, ErrNodeNotFound
		}
		return dto.LayoutResponse{}, err
	}

	nodes, edges := graph.BuildCourseGraph(course)
	result := graph.Layout(nodes, edges)

	encoded, err := json.Marshal(result.Positions)
	if err != nil {
		return dto.LayoutResponse{}, err
	}

	layout := models.CourseLayout{
		CourseID:  courseID,
		Positions: datatypes.JSON(encoded),
		UpdatedAt: s.now(),
	}
	if err := s.layouts.Upsert(ctx, &layout); err != nil {
		return dto.LayoutResponse{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, layoutCacheKey(courseID), encoded, s.layoutTTL).Err(); err != nil {
			s.logger.Warn().Err(err).Str("course_id", courseID).Msg("layout cache write failed")
		}
	}

	if len(result.Unplaced) > 0 {
		s.logger.Warn().
			Str("course_id", courseID).
			Int("unplaced", len(result.Unplaced)).
			Msg("layout left nodes unplaced")
	}

	return dto.LayoutResponse{
		Positions: result.Positions,
		Unplaced:  result.Unplaced,
	}, nil
}

func (s *graphService) AddChild(ctx context.Context, payload dto.AddNodeRequest) (graph.Node, error) {
	if err := s.validator.Struct(payload); err != nil {
		return graph.Node{}, err
	}

	switch graph.Kind(payload.ChildKind) {
	case graph.KindModule:
		return s.addModule(ctx, payload.ParentID)
	case graph.KindLesson:
		return s.addLesson(ctx, payload.ParentID)
	case graph.KindAssessment:
		return s.addAssessment(ctx, payload.ParentID)
	case graph.KindQuestion:
		return s.addQuestion(ctx, payload.ParentID)
	case graph.KindOption:
		return s.addOption(ctx, payload.ParentID)
	default:
		return graph.Node{}, fmt.Errorf("%w: unknown child kind %q", ErrInvalidNode, payload.ChildKind)
	}
}

func (s *graphService) addModule(ctx context.Context, courseID string) (graph.Node, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		return graph.Node{}, s.mapNotFound(err)
	}

	position, err := s.modules.CountByCourse(ctx, courseID)
	if err != nil {
		return graph.Node{}, err
	}

	module := models.CourseModule{
		CourseID: courseID,
		Title:    "New module",
		Position: int(position),
	}
	if err := s.modules.Create(ctx, &module); err != nil {
		return graph.Node{}, err
	}

	return graph.Node{ID: module.ID, Kind: graph.KindModule, Label: module.Title, Module: &module}, nil
}

func (s *graphService) addLesson(ctx context.Context, moduleID string) (graph.Node, error) {
	if _, err := s.modules.GetByID(ctx, moduleID); err != nil {
		return graph.Node{}, s.mapNotFound(err)
	}

	position, err := s.lessons.CountByModule(ctx, moduleID)
	if err != nil {
		return graph.Node{}, err
	}

	lesson := models.Lesson{
		ModuleID: moduleID,
		Type:     models.LessonTypeVideo,
		Title:    "New lesson",
		Position: int(position),
	}
	if err := s.lessons.Create(ctx, &lesson); err != nil {
		return graph.Node{}, err
	}

	return graph.Node{ID: lesson.ID, Kind: graph.KindLesson, Label: lesson.Title, Lesson: &lesson}, nil
}

func (s *graphService) addAssessment(ctx context.Context, moduleID string) (graph.Node, error) {
	if _, err := s.modules.GetByID(ctx, moduleID); err != nil {
		return graph.Node{}, s.mapNotFound(err)
	}

	assessment := models.Assessment{
		ModuleID: moduleID,
		Title:    "New assessment",
	}
	if err := s.assessments.Create(ctx, &assessment); err != nil {
		return graph.Node{}, err
	}

	return graph.Node{ID: assessment.ID, Kind: graph.KindAssessment, Label: assessment.Title, Assessment: &assessment}, nil
}

func (s *graphService) addQuestion(ctx context.Context, assessmentID string) (graph.Node, error) {
	if _, err := s.assessments.GetByID(ctx, assessmentID); err != nil {
		return graph.Node{}, s.mapNotFound(err)
	}

	position, err := s.assessments.CountQuestions(ctx, assessmentID)
	if err != nil {
		return graph.Node{}, err
	}

	question := models.Question{
		AssessmentID: assessmentID,
		Text:         "New question",
		Position:     int(position),
	}
	if err := s.assessments.CreateQuestion(ctx, &question); err != nil {
		return graph.Node{}, err
	}

	return graph.Node{ID: question.ID, Kind: graph.KindQuestion, Label: question.Text, Question: &question}, nil
}

func (s *graphService) addOption(ctx context.Context, questionID string) (graph.Node, error) {
	if _, err := s.assessments.GetQuestion(ctx, questionID); err != nil {
		return graph.Node{}, s.mapNotFound(err)
	}

	option := models.Option{
		QuestionID: questionID,
		Text:       "New option",
		IsCorrect:  false,
	}
	if err := s.assessments.CreateOption(ctx, &option); err != nil {
		return graph.Node{}, err
	}

	return graph.Node{ID: option.ID, Kind: graph.KindOption, Label: option.Text, Option: &option}, nil
}

func (s *graphService) UpdateNode(ctx context.Context, nodeID string, payload dto.UpdateNodeRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	switch graph.Kind(payload.Kind) {
	case graph.KindCourse:
		course, err := s.courses.GetByID(ctx, nodeID)
		if err != nil {
			return s.mapNotFound(err)
		}
		if payload.Title != nil {
			course.Title = *payload.Title
		}
		if payload.Text != nil {
			course.Description = *payload.Text
		}
		return s.courses.Update(ctx, &course)

	case graph.KindModule:
		module, err := s.modules.GetByID(ctx, nodeID)
		if err != nil {
			return s.mapNotFound(err)
		}
		if payload.Title != nil {
			module.Title = *payload.Title
		}
		return s.modules.Update(ctx, &module)

	case graph.KindLesson:
		lesson, err := s.lessons.GetByID(ctx, nodeID)
		if err != nil {
			return s.mapNotFound(err)
		}
		if payload.Title != nil {
			lesson.Title = *payload.Title
		}
		if payload.VideoRef != nil {
			lesson.VideoRef = *payload.VideoRef
		}
		return s.lessons.Update(ctx, &lesson)

	case graph.KindAssessment:
		assessment, err := s.assessments.GetByID(ctx, nodeID)
		if err != nil {
			return s.mapNotFound(err)
		}
		if payload.Title != nil {
			assessment.Title = *payload.Title
		}
		return s.assessments.Update(ctx, &assessment)

	case graph.KindQuestion:
		question, err := s.assessments.GetQuestion(ctx, nodeID)
		if err != nil {
			return s.mapNotFound(err)
		}
		if payload.Text != nil {
			question.Text = *payload.Text
		}
		return s.assessments.UpdateQuestion(ctx, &question)

	case graph.KindOption:
		option, err := s.assessments.GetOption(ctx, nodeID)
		if err != nil {
			return s.mapNotFound(err)
		}
		if payload.Text != nil {
			option.Text = *payload.Text
		}
		if payload.IsCorrect != nil {
			option.IsCorrect = *payload.IsCorrect
		}
		return s.assessments.UpdateOption(ctx, &option)

	default:
		return fmt.Errorf("%w: unknown node kind %q", ErrInvalidNode, payload.Kind)
	}
}

func (s *graphService) DeleteNode(ctx context.Context, nodeID, kind string) error {
	var err error
	switch graph.Kind(kind) {
	case graph.KindCourse:
		return ErrUnsupportedNode
	case graph.KindModule:
		err = s.structure.DeleteModuleCascade(ctx, nodeID)
	case graph.KindLesson:
		err = s.structure.DeleteLesson(ctx, nodeID)
	case graph.KindAssessment:
		err = s.structure.DeleteAssessmentCascade(ctx, nodeID)
	case graph.KindQuestion:
		err = s.structure.DeleteQuestionCascade(ctx, nodeID)
	case graph.KindOption:
		err = s.structure.DeleteOption(ctx, nodeID)
	default:
		return fmt.Errorf("%w: unknown node kind %q", ErrInvalidNode, kind)
	}
	if err != nil {
		return s.mapNotFound(err)
	}

	s.publisher.NodeDeleted(events.NodeDeleted{
		NodeID:    nodeID,
		Kind:      kind,
		DeletedAt: s.now(),
	})

	s.logger.Info().Str("node_id", nodeID).Str("kind", kind).Msg("node deleted")

	return nil
}

func (s *graphService) mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNodeNotFound
	}
	return err
}
