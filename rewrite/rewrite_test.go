package rewrite_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/msedy/nfared/automaton"
	"github.com/msedy/nfared/family"
	"github.com/msedy/nfared/rewrite"
)

func TestExpandSplitsOnPredecessorSuccessorPairs(t *testing.T) {
	a := automaton.New()
	p1 := a.StateByName("p1")
	p2 := a.StateByName("p2")
	m := a.StateByName("m")
	s1 := a.StateByName("s1")
	s2 := a.StateByName("s2")

	a.AddTransition(p1, "a", m)
	a.AddTransition(p2, "b", m)
	a.AddTransition(m, "x", s1)
	a.AddTransition(m, "y", s2)
	a.SetInitial(p1)
	a.SetInitial(p2)
	a.SetAccepting(m)

	fam := family.Family{m: {}}
	expanded := rewrite.Expand(a, fam)

	assert.False(t, a.Exists(m))
	assert.Len(t, expanded, 4)
	for st := range expanded {
		assert.True(t, a.IsAccepting(st))
	}
}

func TestExpandPreservesSelfLoop(t *testing.T) {
	a := automaton.New()
	p := a.StateByName("p")
	m := a.StateByName("m")
	s := a.StateByName("s")
	a.AddTransition(p, "a", m)
	a.AddTransition(m, "loop", m)
	a.AddTransition(m, "b", s)
	a.SetInitial(p)
	a.SetAccepting(s)

	fam := family.Family{m: {}}
	expanded := rewrite.Expand(a, fam)

	require := assert.New(t)
	require.Len(expanded, 1)
	for t := range expanded {
		require.Contains(a.ForwardSymbols(t, t), automaton.Symbol("loop"))
	}
}

func TestExpandSkipsDeadMember(t *testing.T) {
	a := automaton.New()
	p := a.StateByName("p")
	dead := a.StateByName("dead")
	a.AddTransition(p, "a", dead)

	fam := family.Family{dead: {}}
	expanded := rewrite.Expand(a, fam)

	assert.Empty(t, expanded)
	assert.False(t, a.Exists(dead))
}
