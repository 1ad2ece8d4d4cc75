// Package equiv implements the bounded k-step language equivalence probe
// (spec.md §4.2): a cheap stand-in for full bisimulation or DFA-subset-
// construction equivalence, looking only k transitions deep in one
// direction.
//
// Grounded on original_source/nfa.py's isForwardEQ/isBackwardEQ: starting
// from the singleton pair ({r}, {s}), at each round the two sets are
// replaced by the union of their one-step images per symbol. A round
// fails immediately if the two sets disagree on boundary membership
// (accepting states for the forward probe, initial states for the
// backward probe) or on the set of symbols leaving them. Past round k,
// any image state that was not already seen in an earlier round also
// fails the probe — bounded equivalence tolerates closing a loop back
// into known territory, not wandering into new, unprobed states.
package equiv

import (
	"fmt"
	"sort"
	"strings"

	"github.com/msedy/nfared/automaton"
	"github.com/msedy/nfared/nferr"
)

// Direction selects which index (forward or backward) the probe walks,
// and correspondingly which boundary (accepting or initial) it checks.
type Direction uint8

const (
	// Forward compares what each state can reach; its boundary is the
	// accepting-state set.
	Forward Direction = iota
	// Backward compares what can reach each state; its boundary is the
	// initial-state set.
	Backward
)

type stateSet map[automaton.StateID]struct{}

type setPair struct {
	r, s stateSet
}

func singleton(id automaton.StateID) stateSet {
	return stateSet{id: {}}
}

func neighbors(a *automaton.Automaton, dir Direction, s automaton.StateID) map[automaton.Symbol]map[automaton.StateID]struct{} {
	if dir == Forward {
		return a.ForwardIndexRow(s)
	}
	return a.BackwardIndexRow(s)
}

// mergeRows unions the one-step image of every state in set, keyed by
// symbol, mirroring original_source/algorithms.py's mergeDicts.
func mergeRows(a *automaton.Automaton, dir Direction, set stateSet) map[automaton.Symbol]stateSet {
	out := map[automaton.Symbol]stateSet{}
	for s := range set {
		for sym, targets := range neighbors(a, dir, s) {
			if out[sym] == nil {
				out[sym] = stateSet{}
			}
			for t := range targets {
				out[sym][t] = struct{}{}
			}
		}
	}
	return out
}

// hasBoundary reports whether set contains a state in dir's boundary set:
// accepting states for Forward, initial states for Backward.
func hasBoundary(a *automaton.Automaton, dir Direction, set stateSet) bool {
	for s := range set {
		if dir == Forward {
			if a.IsAccepting(s) {
				return true
			}
		} else if a.IsInitial(s) {
			return true
		}
	}
	return false
}

func setsEqual(a, b stateSet) bool {
	if len(a) != len(b) {
		return false
	}
	for s := range a {
		if _, ok := b[s]; !ok {
			return false
		}
	}
	return true
}

// hasUnvisited reports whether set contains a state not present in
// visited.
func hasUnvisited(set stateSet, visited stateSet) bool {
	for s := range set {
		if _, ok := visited[s]; !ok {
			return true
		}
	}
	return false
}

func addAll(dst, src stateSet) {
	for s := range src {
		dst[s] = struct{}{}
	}
}

// setKey renders set as a stable string key for the closed-item set.
func setKey(set stateSet) string {
	ids := make([]automaton.StateID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var b strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&b, "%d,", id)
	}
	return b.String()
}

func pairKey(p setPair) string {
	return setKey(p.r) + "|" + setKey(p.s)
}

// sameSymbolSet reports whether two symbol-keyed rows have identical key
// sets. A symbol present on one side with an empty target set cannot occur
// under the automaton's own invariant (spec.md §3: no key without a
// non-empty value), so key-set comparison alone resolves the question of
// how to treat an apparent asymmetric difference against an absent key:
// there is no such case to handle.
func sameSymbolSet(a, b map[automaton.Symbol]stateSet) bool {
	if len(a) != len(b) {
		return false
	}
	for sym := range a {
		if _, ok := b[sym]; !ok {
			return false
		}
	}
	return true
}

func sortedSymbols(row map[automaton.Symbol]stateSet) []automaton.Symbol {
	out := make([]automaton.Symbol, 0, len(row))
	for sym := range row {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Equivalent reports whether r and s are k-step language equivalent in
// direction dir: spec.md §4.2's bounded probe. It panics with
// nferr.ErrArithmeticDomain if k < 1, matching the "lookahead must be
// positive" programming-error contract from spec.md §7.
func Equivalent(a *automaton.Automaton, dir Direction, r, s automaton.StateID, k int) bool {
	if k < 1 {
		panic(fmt.Errorf("%w: got %d", nferr.ErrArithmeticDomain, k))
	}

	frontier := []setPair{{singleton(r), singleton(s)}}
	closed := map[string]struct{}{}
	visited := stateSet{}
	step := 0

	for len(frontier) > 0 {
		for _, item := range frontier {
			closed[pairKey(item)] = struct{}{}
		}

		var next []setPair
		for _, item := range frontier {
			// The two sides have converged onto the exact same state set:
			// no divergence is possible beyond this point, regardless of
			// which individual states r and s started as.
			if setsEqual(item.r, item.s) {
				continue
			}

			if hasBoundary(a, dir, item.r) != hasBoundary(a, dir, item.s) {
				return false
			}

			rRow := mergeRows(a, dir, item.r)
			sRow := mergeRows(a, dir, item.s)
			if !sameSymbolSet(rRow, sRow) {
				return false
			}

			for _, sym := range sortedSymbols(rRow) {
				rTargets, sTargets := rRow[sym], sRow[sym]
				if step >= k {
					if hasUnvisited(rTargets, visited) || hasUnvisited(sTargets, visited) {
						return false
					}
				}

				npair := setPair{rTargets, sTargets}
				if _, already := closed[pairKey(npair)]; !already {
					next = append(next, npair)
				}
				addAll(visited, rTargets)
				addAll(visited, sTargets)
			}
		}

		frontier = next
		step++
	}
	return true
}
