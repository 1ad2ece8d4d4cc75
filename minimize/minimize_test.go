package minimize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msedy/nfared/automaton"
	"github.com/msedy/nfared/minimize"
)

// twinBranches builds an automaton with two states reachable from the same
// predecessor on the same symbol, both leading identically into a shared
// accepting tail: a canonical case the merge selector should collapse.
func twinBranches() *automaton.Automaton {
	a := automaton.New()
	p := a.StateByName("p")
	q1 := a.StateByName("q1")
	q2 := a.StateByName("q2")
	f := a.StateByName("f")

	a.AddTransition(p, "a", q1)
	a.AddTransition(p, "a", q2)
	a.AddTransition(q1, "b", f)
	a.AddTransition(q2, "b", f)
	a.SetInitial(p)
	a.SetAccepting(f)
	return a
}

func TestRunReducesTwinBranches(t *testing.T) {
	a := twinBranches()
	before := len(a.States())

	result, err := minimize.Run(a, minimize.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, before, result.StatesBefore)
	assert.Less(t, result.StatesAfter, result.StatesBefore)
	assert.LessOrEqual(t, len(a.States()), before)
}

func TestRunIsIdempotentOnAlreadyMinimalAutomaton(t *testing.T) {
	a := automaton.New()
	p := a.StateByName("p")
	q := a.StateByName("q")
	a.AddTransition(p, "a", q)
	a.SetInitial(p)
	a.SetAccepting(q)

	result, err := minimize.Run(a, minimize.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, result.StatesBefore, result.StatesAfter)
}

func TestRunPrunesDeadStatesEvenWithoutFamilies(t *testing.T) {
	a := automaton.New()
	p := a.StateByName("p")
	q := a.StateByName("q")
	island := a.StateByName("island")
	a.AddTransition(p, "a", q)
	a.AddTransition(island, "z", island)
	a.SetInitial(p)
	a.SetAccepting(q)

	result, err := minimize.Run(a, minimize.DefaultConfig())
	require.NoError(t, err)
	assert.False(t, a.Exists(island))
	assert.Less(t, result.StatesAfter, result.StatesBefore)
}

func TestRunRejectsNegativeLookaheadByFallingBackToDefault(t *testing.T) {
	a := twinBranches()
	cfg := minimize.DefaultConfig()
	cfg.Lookahead = -3

	_, err := minimize.Run(a, cfg)
	assert.NoError(t, err)
}

func TestRunRecoversPanicsAsRunError(t *testing.T) {
	// A nil automaton reference makes DeadSweep panic on the first method
	// call, exercising the top-level recover-to-RunError conversion.
	var a *automaton.Automaton
	_, err := minimize.Run(a, minimize.DefaultConfig())
	assert.Error(t, err)
}

func TestRunOnEmptyAutomatonIsNoop(t *testing.T) {
	a := automaton.New()
	result, err := minimize.Run(a, minimize.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 0, result.StatesBefore)
	assert.Equal(t, 0, result.StatesAfter)
}
