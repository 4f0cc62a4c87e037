package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func nodesFromIDs(ids ...string) []Node {
	nodes := make([]Node, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, Node{ID: id, Kind: KindModule, Label: id})
	}
	return nodes
}

func TestLayoutLevelsAndSpacing(t *testing.T) {
	nodes := nodesFromIDs("course", "mod-a", "mod-b", "lesson-1")
	edges := []Edge{
		{From: "course", To: "mod-a"},
		{From: "course", To: "mod-b"},
		{From: "mod-a", To: "lesson-1"},
	}

	result := Layout(nodes, edges)

	require.Empty(t, result.Unplaced)
	require.Len(t, result.Positions, 4)

	require.Equal(t, Position{X: StartX, Y: StartY}, result.Positions["course"])
	require.Equal(t, Position{X: StartX, Y: StartY + YSpacing}, result.Positions["mod-a"])
	require.Equal(t, Position{X: StartX + XSpacing, Y: StartY + YSpacing}, result.Positions["mod-b"])
	require.Equal(t, Position{X: StartX, Y: StartY + 2*YSpacing}, result.Positions["lesson-1"])
}

func TestLayoutUsesLongestPathLevel(t *testing.T) {
	// d is reachable both directly from a and through b; the longer path wins.
	nodes := nodesFromIDs("a", "b", "d")
	edges := []Edge{
		{From: "a", To: "b"},
		{From: "a", To: "d"},
		{From: "b", To: "d"},
	}

	result := Layout(nodes, edges)

	require.Empty(t, result.Unplaced)
	require.Equal(t, StartY+2*YSpacing, result.Positions["d"].Y)
}

func TestLayoutDeterministic(t *testing.T) {
	nodes := nodesFromIDs("root", "x", "y", "z")
	edges := []Edge{
		{From: "root", To: "x"},
		{From: "root", To: "y"},
		{From: "root", To: "z"},
	}

	first := Layout(nodes, edges)
	for i := 0; i < 10; i++ {
		again := Layout(nodes, edges)
		require.Equal(t, first.Positions, again.Positions)
		require.Equal(t, first.Unplaced, again.Unplaced)
	}

	// Siblings keep input order within their row.
	require.Less(t, first.Positions["x"].X, first.Positions["y"].X)
	require.Less(t, first.Positions["y"].X, first.Positions["z"].X)
}

func TestLayoutReportsCycleMembersAsUnplaced(t *testing.T) {
	nodes := nodesFromIDs("root", "a", "b")
	edges := []Edge{
		{From: "root", To: "a"},
		{From: "a", To: "b"},
		{From: "b", To: "a"},
	}

	result := Layout(nodes, edges)

	require.ElementsMatch(t, []string{"a", "b"}, result.Unplaced)
	require.Contains(t, result.Positions, "root")
	require.NotContains(t, result.Positions, "a")
	require.NotContains(t, result.Positions, "b")
}

func TestLayoutIgnoresEdgesToUnknownNodes(t *testing.T) {
	nodes := nodesFromIDs("root", "child")
	edges := []Edge{
		{From: "root", To: "child"},
		{From: "root", To: "ghost"},
		{From: "ghost", To: "child"},
	}

	result := Layout(nodes, edges)

	require.Empty(t, result.Unplaced)
	require.Len(t, result.Positions, 2)
	require.Equal(t, StartY+YSpacing, result.Positions["child"].Y)
}

func TestLayoutEmptyGraph(t *testing.T) {
	result := Layout(nil, nil)

	require.Empty(t, result.Positions)
	require.Empty(t, result.Unplaced)
}
