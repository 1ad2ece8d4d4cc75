// Package automaton implements the NFA store: the set of states, the
// initial/accepting marks, and the twin forward/backward transition
// indices that every other package in this module mutates through.
//
// Adapted from coregx-coregex's nfa package layout and naming (StateID as
// an opaque integer, a Role-tagged fresh-state factory, per-automaton
// counters instead of package globals per spec.md §9). Where the teacher's
// StateID addresses a Thompson-construction byte automaton, this StateID
// addresses a symbolic multi-letter automaton whose transitions are
// state -> symbol -> state-set, not state -> byte-range -> state.
package automaton

import (
	"fmt"
	"sort"

	"github.com/msedy/nfared/internal/conv"
	"github.com/msedy/nfared/internal/sparse"
	"github.com/msedy/nfared/nferr"
)

// StateID uniquely identifies an automaton state. Identity is a dense,
// monotonically increasing integer assigned by the automaton that owns it;
// two states from different Automaton values are never meaningfully
// comparable.
type StateID uint64

// Symbol is an opaque, equality-comparable input letter.
type Symbol string

// Role tags how a state came to exist, purely for display purposes
// (spec.md §9 "duck-typed state identifiers": printing recovers a stable
// string only at serialization time).
type Role uint8

const (
	// RoleUser marks a state that exists because the input automaton (or a
	// parser) named it directly.
	RoleUser Role = iota
	// RoleMerge marks a state created by MergeStates.
	RoleMerge
	// RoleTmp marks a state created by the pseudo-state rewriter.
	RoleTmp
	// RoleInit marks a state created by CanonicalizeInitial.
	RoleInit
	// RoleFinal marks a state created by CanonicalizeAccepting.
	RoleFinal
)

func (r Role) prefix() string {
	switch r {
	case RoleMerge:
		return "m"
	case RoleTmp:
		return "t"
	case RoleInit:
		return "init"
	case RoleFinal:
		return "Final"
	default:
		return "q"
	}
}

// edgeSet is a state -> symbol -> state-set multimap: the shape shared by
// both the forward and the backward index.
type edgeSet map[StateID]map[Symbol]map[StateID]struct{}

// Automaton is a mutable NFA: states, initial and accepting marks, and the
// forward/backward transition indices. All mutation funnels through
// addEdge/removeEdge so the transpose invariant (p,a,q ∈ forward iff
// q,a,p ∈ backward, spec.md §3) cannot be broken from outside this file.
type Automaton struct {
	states    map[StateID]struct{}
	initial   map[StateID]struct{}
	accepting map[StateID]struct{}
	forward   edgeSet
	backward  edgeSet

	names  map[StateID]string
	byName map[string]StateID
	roles  map[StateID]Role

	nextID       StateID
	roleCounters [5]uint64

	// Warn receives data-dependent anomalies (spec.md §7): a missing
	// transition on prune, or a dead-state query on an absent state. Never
	// called for programming errors, which panic instead. Defaults to a
	// no-op; set a hook to route warnings to a logger.
	Warn func(format string, args ...any)
}

// New returns an empty automaton.
func New() *Automaton {
	return &Automaton{
		states:    map[StateID]struct{}{},
		initial:   map[StateID]struct{}{},
		accepting: map[StateID]struct{}{},
		forward:   edgeSet{},
		backward:  edgeSet{},
		names:     map[StateID]string{},
		byName:    map[string]StateID{},
		roles:     map[StateID]Role{},
		Warn:      func(string, ...any) {},
	}
}

func (a *Automaton) warnf(format string, args ...any) {
	if a.Warn != nil {
		a.Warn(format, args...)
	}
}

// StateByName returns the StateID for name, creating a RoleUser state on
// first reference. Used by the format parsers (external collaborators) to
// turn textual names into opaque identifiers.
func (a *Automaton) StateByName(name string) StateID {
	if id, ok := a.byName[name]; ok {
		return id
	}
	id := a.nextID
	a.nextID++
	a.states[id] = struct{}{}
	a.names[id] = name
	a.byName[name] = id
	a.roles[id] = RoleUser
	return id
}

// Name returns the display name of id: the original parser name for
// RoleUser states, or the role-tagged synthetic name ("m3", "t5", ...) for
// engine-created states.
func (a *Automaton) Name(id StateID) string {
	if name, ok := a.names[id]; ok {
		return name
	}
	return fmt.Sprintf("q%d", id)
}

// CreateFresh mints a new state tagged with role, records its display name,
// and inserts it into States(). It does not mark the state initial or
// accepting; the caller does that explicitly (spec.md §4.1).
func (a *Automaton) CreateFresh(role Role) (StateID, error) {
	if role == RoleUser {
		return 0, nferr.ErrBadRole
	}
	idx := role
	counter := a.roleCounters[idx]
	a.roleCounters[idx] = counter + 1

	id := a.nextID
	a.nextID++
	if _, exists := a.states[id]; exists {
		// Unreachable given a monotonic counter; kept as the invariant
		// check spec.md §3 requires ("fresh identifiers never collide").
		panic(nferr.ErrNameCollision)
	}
	a.states[id] = struct{}{}
	a.names[id] = fmt.Sprintf("%s%d", role.prefix(), counter)
	a.roles[id] = role
	return id, nil
}

// Exists reports whether id is a current member of States().
func (a *Automaton) Exists(id StateID) bool {
	_, ok := a.states[id]
	return ok
}

// States returns the current state set. The returned slice is a fresh
// snapshot; mutating the automaton afterwards does not affect it.
func (a *Automaton) States() []StateID {
	out := make([]StateID, 0, len(a.states))
	for id := range a.states {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsInitial reports whether id is marked initial.
func (a *Automaton) IsInitial(id StateID) bool {
	_, ok := a.initial[id]
	return ok
}

// IsAccepting reports whether id is marked accepting.
func (a *Automaton) IsAccepting(id StateID) bool {
	_, ok := a.accepting[id]
	return ok
}

// SetInitial marks id as an initial state. id must already exist.
func (a *Automaton) SetInitial(id StateID) { a.initial[id] = struct{}{} }

// SetAccepting marks id as an accepting state. id must already exist.
func (a *Automaton) SetAccepting(id StateID) { a.accepting[id] = struct{}{} }

// Initial returns the current initial-state set.
func (a *Automaton) Initial() []StateID { return sortedKeys(a.initial) }

// Accepting returns the current accepting-state set.
func (a *Automaton) Accepting() []StateID { return sortedKeys(a.accepting) }

func sortedKeys(m map[StateID]struct{}) []StateID {
	out := make([]StateID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Alphabet returns the set of symbols occurring in the forward index
// (spec.md §4.1: "set of symbols occurring in forward").
func (a *Automaton) Alphabet() map[Symbol]struct{} {
	out := map[Symbol]struct{}{}
	for _, bySym := range a.forward {
		for sym := range bySym {
			out[sym] = struct{}{}
		}
	}
	return out
}

// TransitionCount returns the number of (from, symbol, to) triples present
// in the forward index (equivalently, the backward index, since they are
// transposes of each other).
func (a *Automaton) TransitionCount() int {
	n := 0
	for _, bySym := range a.forward {
		for _, tos := range bySym {
			n += len(tos)
		}
	}
	return n
}

// addEdge inserts (from, sym, to) into both indices. The only place either
// index is ever written to, so the transpose invariant holds by
// construction.
func (a *Automaton) addEdge(from StateID, sym Symbol, to StateID) {
	if a.forward[from] == nil {
		a.forward[from] = map[Symbol]map[StateID]struct{}{}
	}
	if a.forward[from][sym] == nil {
		a.forward[from][sym] = map[StateID]struct{}{}
	}
	a.forward[from][sym][to] = struct{}{}

	if a.backward[to] == nil {
		a.backward[to] = map[Symbol]map[StateID]struct{}{}
	}
	if a.backward[to][sym] == nil {
		a.backward[to][sym] = map[StateID]struct{}{}
	}
	a.backward[to][sym][from] = struct{}{}
}

// removeEdge deletes (from, sym, to) from both indices, pruning now-empty
// inner keys (spec.md §3: "a symbol key exists only when its value set is
// non-empty; a state key exists only when it has at least one outgoing
// (resp. incoming) symbol with a non-empty target set"). Returns false if
// the edge was not present in the forward index.
func (a *Automaton) removeEdge(from StateID, sym Symbol, to StateID) bool {
	found := false
	if bySym, ok := a.forward[from]; ok {
		if tos, ok := bySym[sym]; ok {
			if _, ok := tos[to]; ok {
				found = true
				delete(tos, to)
				if len(tos) == 0 {
					delete(bySym, sym)
				}
			}
		}
		if len(bySym) == 0 {
			delete(a.forward, from)
		}
	}
	if bySym, ok := a.backward[to]; ok {
		if froms, ok := bySym[sym]; ok {
			delete(froms, from)
			if len(froms) == 0 {
				delete(bySym, sym)
			}
		}
		if len(bySym) == 0 {
			delete(a.backward, to)
		}
	}
	return found
}

// AddTransition inserts the edge from --sym--> to. Idempotent. Ensures
// from and to are members of States() (spec.md §4.1).
func (a *Automaton) AddTransition(from StateID, sym Symbol, to StateID) {
	a.states[from] = struct{}{}
	a.states[to] = struct{}{}
	a.addEdge(from, sym, to)
}

// PruneTransition removes the edge from --sym--> to from both indices.
// Warns (does not abort) if the edge was absent, per spec.md §4.1 and §7.
func (a *Automaton) PruneTransition(from StateID, sym Symbol, to StateID) {
	if !a.removeEdge(from, sym, to) {
		a.warnf("PruneTransition: %v: edge %s --%s--> %s", nferr.ErrMissingTransition, a.Name(from), sym, a.Name(to))
	}
}

// RemoveState deletes s from states, initial, accepting, and both indices'
// top-level entries, assuming no incident transitions remain. Warns (but
// still removes the state entry) if incident edges are found, per
// spec.md §4.1.
func (a *Automaton) RemoveState(s StateID) {
	if !a.Exists(s) {
		a.warnf("RemoveState: %v: %s", nferr.ErrUnknownState, a.Name(s))
	}
	if bySym, ok := a.forward[s]; ok && len(bySym) > 0 {
		a.warnf("RemoveState: state %s still has outgoing transitions", a.Name(s))
	}
	if bySym, ok := a.backward[s]; ok && len(bySym) > 0 {
		a.warnf("RemoveState: state %s still has incoming transitions", a.Name(s))
	}
	delete(a.states, s)
	delete(a.initial, s)
	delete(a.accepting, s)
	delete(a.forward, s)
	delete(a.backward, s)
}

// PureSuccessors returns the forward-reachable-in-one-step states of s,
// excluding s itself (spec.md §9's getPureSuccesors, used by the family
// detector and the pseudo-state rewriter).
func (a *Automaton) PureSuccessors(s StateID) map[StateID]struct{} {
	return pureNeighbors(a.forward, s)
}

// PurePredecessors returns the backward-reachable-in-one-step states of s,
// excluding s itself.
func (a *Automaton) PurePredecessors(s StateID) map[StateID]struct{} {
	return pureNeighbors(a.backward, s)
}

func pureNeighbors(idx edgeSet, s StateID) map[StateID]struct{} {
	out := map[StateID]struct{}{}
	if bySym, ok := idx[s]; ok {
		for _, tos := range bySym {
			for id := range tos {
				if id != s {
					out[id] = struct{}{}
				}
			}
		}
	}
	return out
}

// ForwardIndexRow returns the outgoing row for s: symbol -> target states.
// The returned map is shared with the automaton's internal index and must
// not be mutated by the caller.
func (a *Automaton) ForwardIndexRow(s StateID) map[Symbol]map[StateID]struct{} {
	return a.forward[s]
}

// BackwardIndexRow returns the incoming row for s: symbol -> source
// states. The returned map is shared with the automaton's internal index
// and must not be mutated by the caller.
func (a *Automaton) BackwardIndexRow(s StateID) map[Symbol]map[StateID]struct{} {
	return a.backward[s]
}

// ForwardSymbols returns the set of symbols labeling an edge from --> to.
func (a *Automaton) ForwardSymbols(from, to StateID) map[Symbol]struct{} {
	out := map[Symbol]struct{}{}
	if bySym, ok := a.forward[from]; ok {
		for sym, tos := range bySym {
			if _, ok := tos[to]; ok {
				out[sym] = struct{}{}
			}
		}
	}
	return out
}

// IsDead applies the quick local dead-state test from spec.md §3: no
// outgoing transitions except self-loops and not accepting => forward-dead
// (symmetrically, no incoming transitions except self-loops and not
// initial => backward-dead). Either condition makes the state dead. Warns
// (and treats the state as live) if s is not a member of States().
func (a *Automaton) IsDead(s StateID) bool {
	if !a.Exists(s) {
		a.warnf("IsDead: %v: %s, assuming live", nferr.ErrUnknownState, a.Name(s))
		return false
	}
	if len(a.PureSuccessors(s)) == 0 && !a.IsAccepting(s) {
		return true
	}
	if len(a.PurePredecessors(s)) == 0 && !a.IsInitial(s) {
		return true
	}
	return false
}

// PruneState removes every edge incident to s, then removes s itself.
// Any neighbour (other than s) that becomes dead as a result is pruned
// recursively (spec.md §4.1).
func (a *Automaton) PruneState(s StateID) {
	if !a.Exists(s) {
		a.warnf("PruneState: %v: %s", nferr.ErrUnknownState, a.Name(s))
		return
	}

	if bySym, ok := a.forward[s]; ok {
		for sym, tos := range cloneBySym(bySym) {
			for to := range tos {
				a.PruneTransition(s, sym, to)
				if a.Exists(to) && to != s && a.IsDead(to) {
					a.PruneState(to)
				}
			}
		}
	}
	if bySym, ok := a.backward[s]; ok {
		for sym, froms := range cloneBySym(bySym) {
			for from := range froms {
				a.PruneTransition(from, sym, s)
				if a.Exists(from) && from != s && a.IsDead(from) {
					a.PruneState(from)
				}
			}
		}
	}
	a.RemoveState(s)
}

func cloneBySym(bySym map[Symbol]map[StateID]struct{}) map[Symbol]map[StateID]struct{} {
	out := make(map[Symbol]map[StateID]struct{}, len(bySym))
	for sym, tos := range bySym {
		cp := make(map[StateID]struct{}, len(tos))
		for id := range tos {
			cp[id] = struct{}{}
		}
		out[sym] = cp
	}
	return out
}

// MergeStates folds every state in group into one fresh merge-tagged
// state: incident edges are replicated onto the fresh state first (so
// neighbours never go transiently dead), then every member of group is
// pruned. Edges between members of group, self-loops included, become
// self-loops of the fresh state. The caller is responsible for group being
// language-compatible (spec.md §4.5's merge selector is what establishes
// that).
func (a *Automaton) MergeStates(group map[StateID]struct{}) (StateID, error) {
	m, err := a.CreateFresh(RoleMerge)
	if err != nil {
		return 0, err
	}

	anyInitial, anyAccepting := false, false
	for s := range group {
		if bySym, ok := a.forward[s]; ok {
			for sym, tos := range cloneBySym(bySym) {
				for to := range tos {
					if _, inGroup := group[to]; inGroup {
						to = m
					}
					a.AddTransition(m, sym, to)
				}
			}
		}
		if bySym, ok := a.backward[s]; ok {
			for sym, froms := range cloneBySym(bySym) {
				for from := range froms {
					if _, inGroup := group[from]; inGroup {
						from = m
					}
					a.AddTransition(from, sym, m)
				}
			}
		}
		anyInitial = anyInitial || a.IsInitial(s)
		anyAccepting = anyAccepting || a.IsAccepting(s)
	}
	if anyInitial {
		a.SetInitial(m)
	}
	if anyAccepting {
		a.SetAccepting(m)
	}

	for s := range group {
		a.PruneState(s)
	}
	return m, nil
}

// DeadSweep keeps only states reachable from an initial state and
// co-reachable to an accepting state, pruning the rest (spec.md §4.1).
func (a *Automaton) DeadSweep() {
	reachFromInit := bfs(a.forward, a.Initial())
	reachToAccept := bfs(a.backward, a.Accepting())

	live := map[StateID]struct{}{}
	for id := range reachFromInit {
		if _, ok := reachToAccept[id]; ok {
			live[id] = struct{}{}
		}
	}

	for _, s := range a.States() {
		if _, ok := live[s]; !ok && a.Exists(s) {
			a.PruneState(s)
		}
	}
}

func bfs(idx edgeSet, seeds []StateID) map[StateID]struct{} {
	visited := map[StateID]struct{}{}
	frontier := sparse.NewSparseSet(0)
	queue := make([]StateID, 0, len(seeds))
	for _, s := range seeds {
		id := conv.Uint64ToUint32(uint64(s))
		if !frontier.Contains(id) {
			frontier.Insert(id)
			queue = append(queue, s)
		}
	}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		visited[s] = struct{}{}
		if bySym, ok := idx[s]; ok {
			for _, tos := range bySym {
				for to := range tos {
					id := conv.Uint64ToUint32(uint64(to))
					if !frontier.Contains(id) {
						frontier.Insert(id)
						queue = append(queue, to)
					}
				}
			}
		}
	}
	return visited
}

// CanonicalizeInitial introduces a single fresh central initial state with
// the union of outgoing behaviour of the old initial states; a no-op if
// the automaton already has at most one initial state. Optional: invoked
// by the CLI driver only, never by minimize.Run (spec.md §4.1, §9 "final
// state canonicalization ... treat as optional driver step, not core").
func (a *Automaton) CanonicalizeInitial() {
	old := a.Initial()
	if len(old) <= 1 {
		return
	}
	newInit, err := a.CreateFresh(RoleInit)
	if err != nil {
		panic(err)
	}
	anyAccepting := false
	for _, s := range old {
		if bySym, ok := a.forward[s]; ok {
			for sym, tos := range cloneBySym(bySym) {
				for to := range tos {
					a.AddTransition(newInit, sym, to)
				}
			}
		}
		anyAccepting = anyAccepting || a.IsAccepting(s)
	}
	if anyAccepting {
		a.SetAccepting(newInit)
	}

	a.initial = map[StateID]struct{}{newInit: {}}
	for _, s := range old {
		if a.Exists(s) && a.IsDead(s) {
			a.PruneState(s)
		}
	}
}

// CanonicalizeAccepting introduces a single fresh central accepting state
// with the union of incoming behaviour of the old accepting states that
// are not also initial; a no-op if at most one accepting state exists.
// Optional driver step, symmetric to CanonicalizeInitial.
func (a *Automaton) CanonicalizeAccepting() {
	old := a.Accepting()
	if len(old) <= 1 {
		return
	}
	newFinal, err := a.CreateFresh(RoleFinal)
	if err != nil {
		panic(err)
	}
	for _, s := range old {
		if a.IsInitial(s) {
			continue
		}
		if bySym, ok := a.backward[s]; ok {
			for sym, froms := range cloneBySym(bySym) {
				for from := range froms {
					a.AddTransition(from, sym, newFinal)
				}
			}
		}
	}

	keep := map[StateID]struct{}{newFinal: {}}
	for _, s := range old {
		if a.IsInitial(s) {
			keep[s] = struct{}{}
		}
	}
	a.accepting = keep

	if a.Exists(newFinal) && a.IsDead(newFinal) {
		a.PruneState(newFinal)
	}
	for _, s := range old {
		if a.Exists(s) && a.IsDead(s) {
			a.PruneState(s)
		}
	}
}
