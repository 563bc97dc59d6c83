package graph

import (
	"reflect"
	"sort"
	"testing"
)

func TestSubGraphFiltersNodesAndEdges(t *testing.T) {
	g := buildLoopGraph()
	sub := NewSubGraph(g, []int{0, 1, 2}, [][2]int{{0, 1}, {1, 2}, {2, 1}})

	if sub.HasNode(3) {
		t.Fatalf("node 3 should be excluded from the view")
	}
	if !sub.HasNode(1) {
		t.Fatalf("node 1 should be included in the view")
	}
	if sub.HasEdge(2, 3) {
		t.Fatalf("edge 2->3 should be excluded: not in the allow-list")
	}
	if !sub.HasEdge(1, 2) {
		t.Fatalf("edge 1->2 should be included")
	}
}

func TestSubGraphSuccessorsPredecessorsRespectFilters(t *testing.T) {
	g := buildLoopGraph()
	// Exclude node 3 and the edge leaving the loop toward it.
	sub := NewSubGraph(g, []int{0, 1, 2}, [][2]int{{0, 1}, {1, 2}, {2, 1}})

	succ := sub.Successors(2)
	sort.Ints(succ)
	if !reflect.DeepEqual(succ, []int{1}) {
		t.Fatalf("Successors(2) = %v want [1] (2->3 filtered out)", succ)
	}

	pred := sub.Predecessors(1)
	sort.Ints(pred)
	if !reflect.DeepEqual(pred, []int{0, 2}) {
		t.Fatalf("Predecessors(1) = %v want [0 2]", pred)
	}

	if sub.Successors(3) != nil {
		t.Fatalf("Successors of a node outside the view must be empty, got %v", sub.Successors(3))
	}
}

func TestSubGraphPredicatesFeedFilteredSCC(t *testing.T) {
	g := buildLoopGraph()
	sub := NewSubGraph(g, []int{1, 2}, [][2]int{{1, 2}, {2, 1}})

	components := FilteredSCC(g, sub.NodePredicate(), sub.EdgePredicate())
	if !containsSet(components, []int{1, 2}) {
		t.Fatalf("expected {1,2} loop to survive through SubGraph predicates, got %v", components)
	}
	for _, comp := range components {
		for _, n := range comp {
			if n == 0 || n == 3 {
				t.Fatalf("nodes outside the subgraph leaked into a component: %v", components)
			}
		}
	}
}
