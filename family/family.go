// Package family implements the family detector (spec.md §4.3): grouping
// states that share a predecessor (or a successor) via the same symbol
// into candidate clusters the equivalence probe and merge selector will
// later narrow down.
//
// Grounded on original_source/algorithms.py's familyClustering and
// getPureOneBetweenAlphabet: for each state p and each symbol a, the set
// of states reachable from p via a in one step is a forward candidate
// family; symmetrically for backward via predecessors. Candidates are
// then merged by connected components (two candidates sharing any member
// belong in the same family). Members are not filtered by adjacency: two
// states joined by an edge can both belong to the same family.
package family

import (
	"sort"

	"github.com/msedy/nfared/automaton"
)

// Family is a set of states the detector believes are worth probing for
// equivalence together.
type Family map[automaton.StateID]struct{}

// dsu is a minimal union-find over automaton.StateID, used to collapse
// overlapping candidate sets into connected components.
type dsu struct {
	parent map[automaton.StateID]automaton.StateID
}

func newDSU() *dsu { return &dsu{parent: map[automaton.StateID]automaton.StateID{}} }

func (d *dsu) find(x automaton.StateID) automaton.StateID {
	if _, ok := d.parent[x]; !ok {
		d.parent[x] = x
	}
	if d.parent[x] != x {
		d.parent[x] = d.find(d.parent[x])
	}
	return d.parent[x]
}

func (d *dsu) union(x, y automaton.StateID) {
	rx, ry := d.find(x), d.find(y)
	if rx != ry {
		d.parent[rx] = ry
	}
}

// Detect collects every forward candidate family (states sharing a direct
// predecessor via a common symbol) and every backward candidate family
// (states sharing a direct successor via a common symbol), merges
// candidates transitively by shared membership, and returns the resulting
// families with at least two members.
//
// When allowSelfLoops is false, a state is excluded from a family formed
// via a symbol on which it also self-loops (spec.md §4.3's "self-loop
// exclusion" option, mirroring original_source/nfa.py's getFamilies
// parameter of the same name).
func Detect(a *automaton.Automaton, allowSelfLoops bool) []Family {
	d := newDSU()
	member := map[automaton.StateID]struct{}{}

	addCandidate := func(states map[automaton.StateID]struct{}) {
		var list []automaton.StateID
		for s := range states {
			list = append(list, s)
			member[s] = struct{}{}
		}
		for i := 1; i < len(list); i++ {
			d.union(list[0], list[i])
		}
	}

	for _, p := range a.States() {
		for sym, targets := range a.ForwardIndexRow(p) {
			if len(targets) < 2 {
				continue
			}
			addCandidate(filterSelfLoop(a, sym, targets, allowSelfLoops))
		}
		for sym, sources := range a.BackwardIndexRow(p) {
			if len(sources) < 2 {
				continue
			}
			addCandidate(filterSelfLoop(a, sym, sources, allowSelfLoops))
		}
	}

	groups := map[automaton.StateID]Family{}
	for s := range member {
		root := d.find(s)
		if groups[root] == nil {
			groups[root] = Family{}
		}
		groups[root][s] = struct{}{}
	}

	var out []Family
	for _, fam := range groups {
		if len(fam) >= 2 {
			out = append(out, fam)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return minID(out[i]) < minID(out[j])
	})
	return out
}

func filterSelfLoop(a *automaton.Automaton, sym automaton.Symbol, states map[automaton.StateID]struct{}, allowSelfLoops bool) map[automaton.StateID]struct{} {
	if allowSelfLoops {
		return states
	}
	out := map[automaton.StateID]struct{}{}
	for s := range states {
		if _, selfLoop := a.ForwardSymbols(s, s)[sym]; selfLoop {
			continue
		}
		out[s] = struct{}{}
	}
	return out
}

func minID(f Family) automaton.StateID {
	first := true
	var min automaton.StateID
	for s := range f {
		if first || s < min {
			min = s
			first = false
		}
	}
	return min
}
