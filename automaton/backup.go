package automaton

// edgeRecord is a single (from, symbol, to) triple, directionless: it is
// replayed through AddTransition on restore, which repopulates both
// indices.
type edgeRecord struct {
	from StateID
	sym  Symbol
	to   StateID
}

// Backup is a point-in-time snapshot of a subset of an automaton: enough
// to undo a failed minimization attempt on a family (spec.md §4.6's
// "attempt regresses, restore"). It is scoped to the states named at
// capture time and every edge incident to any of them.
type Backup struct {
	states    []StateID
	initial   map[StateID]struct{}
	accepting map[StateID]struct{}
	edges     []edgeRecord
}

// Snapshot captures states and every transition with at least one endpoint
// in states.
func (a *Automaton) Snapshot(states map[StateID]struct{}) *Backup {
	b := &Backup{
		initial:   map[StateID]struct{}{},
		accepting: map[StateID]struct{}{},
	}
	seen := map[edgeRecord]struct{}{}
	for s := range states {
		b.states = append(b.states, s)
		if a.IsInitial(s) {
			b.initial[s] = struct{}{}
		}
		if a.IsAccepting(s) {
			b.accepting[s] = struct{}{}
		}
		if bySym, ok := a.forward[s]; ok {
			for sym, tos := range bySym {
				for to := range tos {
					rec := edgeRecord{s, sym, to}
					if _, dup := seen[rec]; !dup {
						seen[rec] = struct{}{}
						b.edges = append(b.edges, rec)
					}
				}
			}
		}
		if bySym, ok := a.backward[s]; ok {
			for sym, froms := range bySym {
				for from := range froms {
					rec := edgeRecord{from, sym, s}
					if _, dup := seen[rec]; !dup {
						seen[rec] = struct{}{}
						b.edges = append(b.edges, rec)
					}
				}
			}
		}
	}
	return b
}

// Restore re-inserts every state, edge, and initial/accepting mark this
// backup captured.
//
// Resolves an Open Question left unstated by the source material: whether
// restore should bring back only states that survived a failed attempt
// (the intersection of the backup's states with the automaton's current
// states) or the full backed-up set, including states a mid-attempt prune
// cascade already deleted. This module takes the latter reading — Restore
// is unconditional over the captured set — because the narrower reading
// can silently leave a partially-pruned family half-restored, which
// defeats the monotone-non-increase guarantee Restore exists to provide.
func (a *Automaton) Restore(b *Backup) {
	for _, s := range b.states {
		a.states[s] = struct{}{}
	}
	for _, e := range b.edges {
		a.AddTransition(e.from, e.sym, e.to)
	}
	for s := range b.initial {
		a.SetInitial(s)
	}
	for s := range b.accepting {
		a.SetAccepting(s)
	}
}
