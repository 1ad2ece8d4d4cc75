package automaton_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msedy/nfared/automaton"
)

func smallChain(t *testing.T) (*automaton.Automaton, map[string]automaton.StateID) {
	t.Helper()
	a := automaton.New()
	ids := map[string]automaton.StateID{}
	for _, name := range []string{"q0", "q1", "q2"} {
		ids[name] = a.StateByName(name)
	}
	a.AddTransition(ids["q0"], "a", ids["q1"])
	a.AddTransition(ids["q1"], "b", ids["q2"])
	a.SetInitial(ids["q0"])
	a.SetAccepting(ids["q2"])
	return a, ids
}

func TestStateByNameIsStable(t *testing.T) {
	a := automaton.New()
	first := a.StateByName("q0")
	second := a.StateByName("q0")
	assert.Equal(t, first, second)
	assert.Equal(t, "q0", a.Name(first))
}

func TestAddTransitionCreatesStatesAndIsIdempotent(t *testing.T) {
	a := automaton.New()
	p, q := a.StateByName("p"), a.StateByName("q")
	a.AddTransition(p, "x", q)
	a.AddTransition(p, "x", q)
	assert.True(t, a.Exists(p))
	assert.True(t, a.Exists(q))
	assert.Equal(t, 1, a.TransitionCount())
	assert.Contains(t, a.ForwardSymbols(p, q), automaton.Symbol("x"))
}

func TestPruneTransitionRemovesFromBothIndices(t *testing.T) {
	a, ids := smallChain(t)
	a.PruneTransition(ids["q0"], "a", ids["q1"])
	assert.Empty(t, a.ForwardSymbols(ids["q0"], ids["q1"]))
	assert.Empty(t, a.PurePredecessors(ids["q1"]))
}

func TestIsDeadForwardDeadEnd(t *testing.T) {
	a, ids := smallChain(t)
	// q2 is accepting with no outgoing edges: not forward-dead because accepting.
	assert.False(t, a.IsDead(ids["q2"]))

	orphan := a.StateByName("orphan")
	a.AddTransition(ids["q1"], "c", orphan)
	// orphan has no outgoing edges and is not accepting: forward-dead.
	assert.True(t, a.IsDead(orphan))
}

func TestPruneStateKeepsLiveNeighbour(t *testing.T) {
	a, ids := smallChain(t)
	tail := a.StateByName("tail")
	a.AddTransition(ids["q2"], "c", tail)
	// tail is a dead end (no outgoing, not accepting). Pruning it removes
	// q2's outgoing edge, but q2 stays live (accepting, with predecessor
	// q1), so the cascade must not remove it.
	a.PruneState(tail)
	assert.False(t, a.Exists(tail))
	assert.True(t, a.Exists(ids["q2"]))
}

func TestMergeStatesUnionsBehaviorAndMarks(t *testing.T) {
	a := automaton.New()
	p := a.StateByName("p")
	q := a.StateByName("q")
	r := a.StateByName("r")
	s := a.StateByName("s")
	a.AddTransition(p, "a", r)
	a.AddTransition(q, "a", r)
	a.AddTransition(r, "b", s)
	a.SetInitial(p)
	a.SetAccepting(q)

	merged, err := a.MergeStates(map[automaton.StateID]struct{}{p: {}, q: {}})
	require.NoError(t, err)

	assert.False(t, a.Exists(p))
	assert.False(t, a.Exists(q))
	assert.True(t, a.IsInitial(merged))
	assert.True(t, a.IsAccepting(merged))
	assert.Contains(t, a.ForwardSymbols(merged, r), automaton.Symbol("a"))
}

func TestDeadSweepPrunesUnreachableAndNonCoReachable(t *testing.T) {
	a, ids := smallChain(t)
	island := a.StateByName("island")
	a.AddTransition(island, "z", island)

	a.DeadSweep()

	assert.True(t, a.Exists(ids["q0"]))
	assert.True(t, a.Exists(ids["q1"]))
	assert.True(t, a.Exists(ids["q2"]))
	assert.False(t, a.Exists(island))
}

func TestBackupRestoreRoundTrip(t *testing.T) {
	a, ids := smallChain(t)
	snap := a.Snapshot(map[automaton.StateID]struct{}{ids["q0"]: {}, ids["q1"]: {}})

	a.PruneState(ids["q1"])
	assert.False(t, a.Exists(ids["q1"]))

	a.Restore(snap)
	assert.True(t, a.Exists(ids["q0"]))
	assert.True(t, a.Exists(ids["q1"]))
	assert.Contains(t, a.ForwardSymbols(ids["q0"], ids["q1"]), automaton.Symbol("a"))
}

func TestCanonicalizeInitialMergesMultipleStarts(t *testing.T) {
	a := automaton.New()
	p := a.StateByName("p")
	q := a.StateByName("q")
	r := a.StateByName("r")
	a.AddTransition(p, "a", r)
	a.AddTransition(q, "b", r)
	a.SetInitial(p)
	a.SetInitial(q)
	a.SetAccepting(r)

	a.CanonicalizeInitial()

	assert.Len(t, a.Initial(), 1)
}

func TestCreateFreshRejectsRoleUser(t *testing.T) {
	a := automaton.New()
	_, err := a.CreateFresh(automaton.RoleUser)
	assert.Error(t, err)
}

func TestAlphabetCollectsForwardSymbols(t *testing.T) {
	a, _ := smallChain(t)
	alphabet := a.Alphabet()
	assert.Contains(t, alphabet, automaton.Symbol("a"))
	assert.Contains(t, alphabet, automaton.Symbol("b"))
}
