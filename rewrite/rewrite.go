// Package rewrite implements pseudo-state expansion (spec.md §4.4): a
// transition-rewriting trick that splits each family member into one fresh
// copy per (predecessor, incoming symbol, outgoing symbol, successor)
// combination, exposing equivalences the bounded probe in package equiv
// cannot see while the member is still a single state fielding several
// unrelated paths.
//
// Grounded on original_source/algorithms.py's softDuplicateState: for each
// state being expanded, every predecessor-symbol/successor-symbol
// combination gets its own fresh temporary state carrying just that one
// path, plus the original state's self-loop symbols and accepting/initial
// marks. The original is pruned once fully replicated.
package rewrite

import (
	"github.com/msedy/nfared/automaton"
	"github.com/msedy/nfared/family"
)

// Expand replaces every live member of fam with a set of fresh
// RoleTmp-tagged states, one per distinct (predecessor, backward symbol,
// successor, forward symbol) combination incident to that member, and
// returns the resulting expanded family. Members that are already dead
// (per automaton.IsDead) are pruned and dropped from the family without
// rewriting, matching spec.md §4.4's "skip and continue" edge case.
func Expand(a *automaton.Automaton, fam family.Family) family.Family {
	out := family.Family{}

	for member := range fam {
		if !a.Exists(member) {
			continue
		}
		if a.IsDead(member) {
			a.PruneState(member)
			continue
		}

		preds := a.PurePredecessors(member)
		succs := a.PureSuccessors(member)
		selfSymbols := a.ForwardSymbols(member, member)
		wasInitial := a.IsInitial(member)
		wasAccepting := a.IsAccepting(member)

		type link struct {
			sym  automaton.Symbol
			peer automaton.StateID
		}
		var inLinks, outLinks []link
		for pred := range preds {
			for sym := range a.ForwardSymbols(pred, member) {
				inLinks = append(inLinks, link{sym, pred})
			}
		}
		for succ := range succs {
			for sym := range a.ForwardSymbols(member, succ) {
				outLinks = append(outLinks, link{sym, succ})
			}
		}

		if len(inLinks) == 0 && len(outLinks) == 0 {
			// A pure self-loop island with no external links: nothing to
			// split on, leave it as-is.
			out[member] = struct{}{}
			continue
		}

		created := map[automaton.StateID]struct{}{}
		makeCopy := func() automaton.StateID {
			t, err := a.CreateFresh(automaton.RoleTmp)
			if err != nil {
				panic(err)
			}
			for sym := range selfSymbols {
				a.AddTransition(t, sym, t)
			}
			if wasInitial {
				a.SetInitial(t)
			}
			if wasAccepting {
				a.SetAccepting(t)
			}
			created[t] = struct{}{}
			return t
		}

		switch {
		case len(inLinks) == 0:
			for _, ol := range outLinks {
				t := makeCopy()
				a.AddTransition(t, ol.sym, ol.peer)
			}
		case len(outLinks) == 0:
			for _, il := range inLinks {
				t := makeCopy()
				a.AddTransition(il.peer, il.sym, t)
			}
		default:
			for _, il := range inLinks {
				for _, ol := range outLinks {
					t := makeCopy()
					a.AddTransition(il.peer, il.sym, t)
					a.AddTransition(t, ol.sym, ol.peer)
				}
			}
		}

		a.PruneState(member)
		for t := range created {
			out[t] = struct{}{}
		}
	}

	return out
}
