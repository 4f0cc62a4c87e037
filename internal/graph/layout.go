package graph

// Layout spacing. Columns fan out horizontally within a level, levels stack
// vertically.
const (
	StartX   = 80.0
	StartY   = 60.0
	XSpacing = 240.0
	YSpacing = 180.0
)

// Position is a 2D editor coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Result carries the computed position for every placeable node. Nodes that
// are unreachable from any zero-in-degree root (members of a cycle) cannot be
// levelled and are reported in Unplaced instead of being dropped silently.
type Result struct {
	Positions map[string]Position `json:"positions"`
	Unplaced  []string            `json:"unplaced"`
}

// Layout assigns each node a topological level via Kahn's algorithm and lays
// levels out in rows. Deterministic: identical node and edge slices, in the
// same order, always produce identical output.
func Layout(nodes []Node, edges []Edge) Result {
	inDegree := make(map[string]int, len(nodes))
	order := make(map[string]int, len(nodes))
	for i, n := range nodes {
		inDegree[n.ID] = 0
		order[n.ID] = i
	}

	children := make(map[string][]string, len(nodes))
	for _, e := range edges {
		if _, ok := order[e.From]; !ok {
			continue
		}
		if _, ok := order[e.To]; !ok {
			continue
		}
		children[e.From] = append(children[e.From], e.To)
		inDegree[e.To]++
	}

	level := make(map[string]int, len(nodes))
	var queue []string
	for _, n := range nodes {
		if inDegree[n.ID] == 0 {
			level[n.ID] = 0
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range children[u] {
			if level[u]+1 > level[v] {
				level[v] = level[u] + 1
			}
			inDegree[v]--
			if inDegree[v] == 0 {
				queue = append(queue, v)
			}
		}
	}

	// Nodes still holding in-degree were never dequeued: cycle members.
	var unplaced []string
	placed := make(map[string]struct{}, len(nodes))
	byLevel := make(map[int][]string)
	maxLevel := 0
	for _, n := range nodes {
		if inDegree[n.ID] > 0 {
			unplaced = append(unplaced, n.ID)
			continue
		}
		placed[n.ID] = struct{}{}
		l := level[n.ID]
		byLevel[l] = append(byLevel[l], n.ID)
		if l > maxLevel {
			maxLevel = l
		}
	}

	positions := make(map[string]Position, len(placed))
	for l := 0; l <= maxLevel; l++ {
		row := byLevel[l]
		// Input order is preserved because nodes were scanned in order above.
		for i, id := range row {
			positions[id] = Position{
				X: StartX + float64(i)*XSpacing,
				Y: StartY + float64(l)*YSpacing,
			}
		}
	}

	return Result{Positions: positions, Unplaced: unplaced}
}
