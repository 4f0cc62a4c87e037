// Package graph holds the in-memory projection of a course content tree used
// by the admin editor, together with the auto-layout engine. Nodes and edges
// are derived from the persisted entities on every load and are never the
// source of truth.
package graph

import "github.com/brightpath-labs/cbt-api/internal/models"

// Kind tags the entity variant a node carries.
type Kind string

const (
	KindCourse     Kind = "course"
	KindModule     Kind = "module"
	KindLesson     Kind = "lesson"
	KindAssessment Kind = "assessment"
	KindQuestion   Kind = "question"
	KindOption     Kind = "option"
)

// Valid reports whether the kind names a known entity variant.
func (k Kind) Valid() bool {
	switch k {
	case KindCourse, KindModule, KindLesson, KindAssessment, KindQuestion, KindOption:
		return true
	}
	return false
}

// Node is a tagged union over the six entity types. Exactly one of the typed
// payload fields is non-nil, matching Kind.
type Node struct {
	ID    string `json:"id"`
	Kind  Kind   `json:"kind"`
	Label string `json:"label"`

	Course     *models.Course       `json:"course,omitempty"`
	Module     *models.CourseModule `json:"module,omitempty"`
	Lesson     *models.Lesson       `json:"lesson,omitempty"`
	Assessment *models.Assessment   `json:"assessment,omitempty"`
	Question   *models.Question     `json:"question,omitempty"`
	Option     *models.Option       `json:"option,omitempty"`
}

// Edge is a directed parent-to-child relation mirroring a foreign key.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// BuildCourseGraph projects a fully loaded course tree into nodes and edges.
// Output order is deterministic: course, then modules in stored order, each
// followed by its lessons, assessments, questions and options.
func BuildCourseGraph(course models.Course) ([]Node, []Edge) {
	nodes := []Node{{ID: course.ID, Kind: KindCourse, Label: course.Title, Course: &course}}
	var edges []Edge

	for i := range course.Modules {
		mod := course.Modules[i]
		nodes = append(nodes, Node{ID: mod.ID, Kind: KindModule, Label: mod.Title, Module: &mod})
		edges = append(edges, Edge{From: course.ID, To: mod.ID})

		for j := range mod.Lessons {
			lesson := mod.Lessons[j]
			nodes = append(nodes, Node{ID: lesson.ID, Kind: KindLesson, Label: lesson.Title, Lesson: &lesson})
			edges = append(edges, Edge{From: mod.ID, To: lesson.ID})
		}

		for j := range mod.Assessments {
			assessment := mod.Assessments[j]
			nodes = append(nodes, Node{ID: assessment.ID, Kind: KindAssessment, Label: assessment.Title, Assessment: &assessment})
			edges = append(edges, Edge{From: mod.ID, To: assessment.ID})

			for k := range assessment.Questions {
				question := assessment.Questions[k]
				nodes = append(nodes, Node{ID: question.ID, Kind: KindQuestion, Label: question.Text, Question: &question})
				edges = append(edges, Edge{From: assessment.ID, To: question.ID})

				for l := range question.Options {
					option := question.Options[l]
					nodes = append(nodes, Node{ID: option.ID, Kind: KindOption, Label: option.Text, Option: &option})
					edges = append(edges, Edge{From: question.ID, To: option.ID})
				}
			}
		}
	}

	return nodes, edges
}
