// Package events publishes domain events to NATS for downstream consumers
// (analytics, notification fan-out). Publishing is fire-and-forget and
// nil-safe: a service running without a broker simply skips it.
package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Subjects emitted by the API.
const (
	SubjectAttemptScored  = "cbt.attempt.scored"
	SubjectCourseImported = "cbt.course.imported"
	SubjectNodeDeleted    = "cbt.graph.node.deleted"
)

// AttemptScored is emitted after an attempt is finalised.
type AttemptScored struct {
	AttemptID    string    `json:"attempt_id"`
	AssessmentID string    `json:"assessment_id"`
	UserID       string    `json:"user_id"`
	Score        int       `json:"score"`
	Passed       bool      `json:"passed"`
	ScoredAt     time.Time `json:"scored_at"`
}

// CourseImported is emitted after a bulk import completes.
type CourseImported struct {
	CourseID   string    `json:"course_id"`
	Modules    int       `json:"modules"`
	Lessons    int       `json:"lessons"`
	Errors     int       `json:"errors"`
	ImportedAt time.Time `json:"imported_at"`
}

// NodeDeleted is emitted after a cascade delete commits.
type NodeDeleted struct {
	NodeID    string    `json:"node_id"`
	Kind      string    `json:"kind"`
	DeletedAt time.Time `json:"deleted_at"`
}

// Publisher sends events to NATS.
type Publisher struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

// NewPublisher wraps a NATS connection. conn may be nil to disable publishing.
func NewPublisher(conn *nats.Conn, logger zerolog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

// AttemptScored publishes an attempt-scored event.
func (p *Publisher) AttemptScored(event AttemptScored) {
	p.publish(SubjectAttemptScored, event)
}

// CourseImported publishes a course-imported event.
func (p *Publisher) CourseImported(event CourseImported) {
	p.publish(SubjectCourseImported, event)
}

// NodeDeleted publishes a node-deleted event.
func (p *Publisher) NodeDeleted(event NodeDeleted) {
	p.publish(SubjectNodeDeleted, event)
}

func (p *Publisher) publish(subject string, payload interface{}) {
	if p == nil || p.conn == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to encode event")
		return
	}

	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish event")
	}
}
