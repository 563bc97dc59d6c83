package graph

// Dominators holds the immediate-dominator relation computed for one
// entry node, by the Cooper/Harvey/Kennedy iterative data-flow algorithm
// ("A Simple, Fast Dominance Algorithm").
type Dominators struct {
	entry int
	idom  map[int]int // node -> immediate dominator; entry has no entry here
	order map[int]int // node -> reverse-postorder index, for the "intersect" walk
}

// Compute runs the dominator algorithm over g starting at entry. g must be
// the same, unmutated graph used for any later dominance-frontier query.
func Compute(g *Graph, entry int) *Dominators {
	rpo := g.ReversePostorder(entry)
	order := make(map[int]int, len(rpo))
	for i, n := range rpo {
		order[n] = i
	}

	idom := make(map[int]int)
	idom[entry] = entry

	changed := true
	for changed {
		changed = false
		for _, n := range rpo {
			if n == entry {
				continue
			}
			var newIdom int
			found := false
			for _, p := range g.pred[n] {
				if _, ok := idom[p]; !ok {
					continue
				}
				if !found {
					newIdom = p
					found = true
					continue
				}
				newIdom = intersect(idom, order, newIdom, p)
			}
			if !found {
				continue
			}
			if prev, ok := idom[n]; !ok || prev != newIdom {
				idom[n] = newIdom
				changed = true
			}
		}
	}

	return &Dominators{entry: entry, idom: idom, order: order}
}

// intersect walks two fingers up the (partially built) dominator tree
// until they meet. order is a reverse-postorder index (entry = 0, smallest
// = closest to the root), so the finger with the larger index is the one
// farther from the root and is the one that advances.
func intersect(idom map[int]int, order map[int]int, a, b int) int {
	for a != b {
		for order[a] > order[b] {
			a = idom[a]
		}
		for order[b] > order[a] {
			b = idom[b]
		}
	}
	return a
}

// ImmediateDominator returns n's immediate dominator, or ok=false for the
// entry node (which has none) or an unreached node.
func (d *Dominators) ImmediateDominator(n int) (int, bool) {
	if n == d.entry {
		return 0, false
	}
	idom, ok := d.idom[n]
	return idom, ok
}

// Dominates reports whether a dominates b (reflexively: a dominates a).
func (d *Dominators) Dominates(a, b int) bool {
	if _, ok := d.idom[b]; !ok && b != d.entry {
		return false
	}
	for {
		if a == b {
			return true
		}
		if b == d.entry {
			return false
		}
		b = d.idom[b]
	}
}

// Frontiers computes the dominance frontier of every node reachable from
// the entry dominators was built from, by walking from each node with
// ≥2 predecessors up the dominator tree from each predecessor until the
// node's immediate dominator is reached (Cooper/Harvey/Kennedy's frontier
// algorithm, as in the original utility/graph.rs dominance_frontiers).
// The result is sorted and deduplicated per node.
func Frontiers(g *Graph, d *Dominators) map[int][]int {
	frontiers := make(map[int][]int)
	for n := range d.order {
		frontiers[n] = nil
	}

	for _, node := range g.Nodes() {
		if _, reached := d.order[node]; !reached {
			continue
		}
		preds := g.pred[node]
		if len(preds) < 2 {
			continue
		}
		idom, hasIdom := d.ImmediateDominator(node)
		if !hasIdom {
			continue
		}
		for _, p := range preds {
			if _, reached := d.order[p]; !reached {
				continue
			}
			runner := p
			for runner != idom {
				frontiers[runner] = append(frontiers[runner], node)
				next, ok := d.ImmediateDominator(runner)
				if !ok {
					break
				}
				runner = next
			}
		}
	}
	for n, list := range frontiers {
		frontiers[n] = sortUnique(list)
	}
	return frontiers
}

func sortUnique(list []int) []int {
	if len(list) == 0 {
		return list
	}
	sorted := append([]int(nil), list...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	out := sorted[:1]
	for _, v := range sorted[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// IteratedFrontier computes IDF(set): the iterated dominance frontier of a
// set of nodes, the fixpoint of repeatedly unioning in DF of every node
// already in the set (used by memory-to-register promotion to place phi
// nodes — spec.md §4.7 step 2).
func IteratedFrontier(frontiers map[int][]int, set []int) []int {
	inSet := make(map[int]bool, len(set))
	var worklist []int
	for _, n := range set {
		if !inSet[n] {
			inSet[n] = true
			worklist = append(worklist, n)
		}
	}
	result := make(map[int]bool)
	for len(worklist) > 0 {
		n := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, f := range frontiers[n] {
			if !result[f] {
				result[f] = true
			}
			if !inSet[f] {
				inSet[f] = true
				worklist = append(worklist, f)
			}
		}
	}
	out := make([]int, 0, len(result))
	for n := range result {
		out = append(out, n)
	}
	return sortUnique(out)
}
