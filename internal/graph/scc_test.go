package graph

import "testing"

func containsSet(components [][]int, want []int) bool {
	target := make(map[int]bool, len(want))
	for _, n := range want {
		target[n] = true
	}
	for _, comp := range components {
		if len(comp) != len(want) {
			continue
		}
		match := true
		for _, n := range comp {
			if !target[n] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// buildLoopGraph is a simple natural loop: 0 -> 1 -> 2 -> 1 (back edge),
// 2 -> 3 exits.
func buildLoopGraph() *Graph {
	g := New(4)
	g.AddEdge(0, 1)
	g.AddEdge(1, 2)
	g.AddEdge(2, 1)
	g.AddEdge(2, 3)
	return g
}

func TestFilteredSCCFindsLoopBody(t *testing.T) {
	g := buildLoopGraph()
	all := func(int) bool { return true }
	allEdges := func(int, int) bool { return true }

	components := FilteredSCC(g, all, allEdges)
	if !containsSet(components, []int{1, 2}) {
		t.Fatalf("expected {1,2} to form one SCC, got %v", components)
	}
	if !containsSet(components, []int{0}) {
		t.Fatalf("expected {0} to be its own SCC, got %v", components)
	}
	if !containsSet(components, []int{3}) {
		t.Fatalf("expected {3} to be its own SCC, got %v", components)
	}
}

func TestFilteredSCCRespectsNodeFilter(t *testing.T) {
	g := buildLoopGraph()
	without3 := func(n int) bool { return n != 3 }
	allEdges := func(int, int) bool { return true }

	components := FilteredSCC(g, without3, allEdges)
	for _, comp := range components {
		for _, n := range comp {
			if n == 3 {
				t.Fatalf("node 3 should have been excluded, got %v", components)
			}
		}
	}
	if !containsSet(components, []int{1, 2}) {
		t.Fatalf("expected {1,2} SCC to survive node filtering, got %v", components)
	}
}

func TestFilteredSCCRespectsEdgeFilter(t *testing.T) {
	g := buildLoopGraph()
	all := func(int) bool { return true }
	// Cut the 2 -> 1 back edge: the loop body no longer closes into a cycle.
	noBackEdge := func(from, to int) bool { return !(from == 2 && to == 1) }

	components := FilteredSCC(g, all, noBackEdge)
	if containsSet(components, []int{1, 2}) {
		t.Fatalf("cutting the back edge must split {1,2} into singletons, got %v", components)
	}
	if !containsSet(components, []int{1}) || !containsSet(components, []int{2}) {
		t.Fatalf("expected 1 and 2 as singleton components, got %v", components)
	}
}

func TestFilteredSCCAcyclicGraphIsAllSingletons(t *testing.T) {
	g := buildSampleGraph()
	all := func(int) bool { return true }
	allEdges := func(int, int) bool { return true }

	components := FilteredSCC(g, all, allEdges)
	for _, comp := range components {
		if len(comp) != 1 {
			t.Fatalf("acyclic graph must decompose into singleton SCCs, got %v", comp)
		}
	}
	if len(components) != g.NodeCount {
		t.Fatalf("expected %d singleton components, got %d", g.NodeCount, len(components))
	}
}
