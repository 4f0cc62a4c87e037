package dto

import "github.com/brightpath-labs/cbt-api/internal/graph"

// GraphNodeResponse is an editor node together with its resolved position.
// Position is nil when no saved layout covers the node yet.
type GraphNodeResponse struct {
	graph.Node
	Position *graph.Position `json:"position,omitempty"`
}

// CourseGraphResponse is the full editor projection of one course.
type CourseGraphResponse struct {
	Nodes []GraphNodeResponse `json:"nodes"`
	Edges []graph.Edge        `json:"edges"`
}

// LayoutResponse carries freshly computed positions plus any nodes the
// layout engine could not place (cycle members).
type LayoutResponse struct {
	Positions map[string]graph.Position `json:"positions"`
	Unplaced  []string                  `json:"unplaced"`
}

// AddNodeRequest creates a default-valued child under a parent node.
type AddNodeRequest struct {
	ParentID  string `json:"parent_id" validate:"required"`
	ChildKind string `json:"child_kind" validate:"required,oneof=module lesson assessment question option"`
}

// UpdateNodeRequest patches the editable fields of a node. Which fields
// apply depends on the node kind; the rest are ignored.
type UpdateNodeRequest struct {
	Kind      string  `json:"kind" validate:"required,oneof=course module lesson assessment question option"`
	Title     *string `json:"title" validate:"omitempty,min=1"`
	Text      *string `json:"text" validate:"omitempty,min=1"`
	IsCorrect *bool   `json:"is_correct"`
	VideoRef  *string `json:"video_ref"`
}
