package timbuk_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msedy/nfared/automaton"
	"github.com/msedy/nfared/format/timbuk"
)

const sample = `Ops a0:1 a1:1 x:0
Automaton A
States q0 q1 q2 q3
Final States q3
Transitions
x -> q0
a0(q0) -> q1
a1(q0) -> q2
a1(q1) -> q3
a1(q2) -> q3
`

func TestParseReadsStatesAndTransitions(t *testing.T) {
	a, err := timbuk.Parse(strings.NewReader(sample))
	require.NoError(t, err)

	q0 := a.StateByName("q0")
	q3 := a.StateByName("q3")

	assert.True(t, a.IsInitial(q0))
	assert.True(t, a.IsAccepting(q3))
	assert.Equal(t, 4, a.TransitionCount())
	assert.Len(t, a.States(), 4)
}

func TestParseRejectsUnrecognizedLine(t *testing.T) {
	_, err := timbuk.Parse(strings.NewReader("this is not valid timbuk syntax"))
	assert.Error(t, err)
}

func TestRoundTripPreservesCounts(t *testing.T) {
	original, err := timbuk.Parse(strings.NewReader(sample))
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, timbuk.Print(&buf, original))

	reparsed, err := timbuk.Parse(strings.NewReader(buf.String()))
	require.NoError(t, err)

	assert.Equal(t, len(original.States()), len(reparsed.States()))
	assert.Equal(t, original.TransitionCount(), reparsed.TransitionCount())
	assert.Equal(t, len(original.Initial()), len(reparsed.Initial()))
	assert.Equal(t, len(original.Accepting()), len(reparsed.Accepting()))
}

func TestPrintEmptyAutomatonStillWritesHeaders(t *testing.T) {
	a := automaton.New()
	var buf strings.Builder
	require.NoError(t, timbuk.Print(&buf, a))
	out := buf.String()
	assert.Contains(t, out, "Ops x:0")
	assert.Contains(t, out, "Automaton A")
	assert.Contains(t, out, "Transitions")
}
