package mergeselect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/msedy/nfared/automaton"
	"github.com/msedy/nfared/mergeselect"
)

func TestSelectWithNoPairsReturnsNoGroups(t *testing.T) {
	groups, err := mergeselect.Select(nil, nil, mergeselect.DefaultConfig())
	assert.NoError(t, err)
	assert.Empty(t, groups)
}

func TestSelectMergesACertifiedForwardPair(t *testing.T) {
	var r, s automaton.StateID = 1, 2
	groups, err := mergeselect.Select(nil, []mergeselect.Pair{{R: r, S: s}}, mergeselect.DefaultConfig())
	assert.NoError(t, err)
	if assert.Len(t, groups, 1) {
		assert.ElementsMatch(t, []automaton.StateID{r, s}, groups[0])
	}
}

func TestSelectChainsTransitivePairsIntoOneGroup(t *testing.T) {
	var a, b, c automaton.StateID = 1, 2, 3
	pairs := []mergeselect.Pair{{R: a, S: b}, {R: b, S: c}}
	groups, err := mergeselect.Select(nil, pairs, mergeselect.DefaultConfig())
	assert.NoError(t, err)
	if assert.Len(t, groups, 1) {
		assert.ElementsMatch(t, []automaton.StateID{a, b, c}, groups[0])
	}
}

func TestSelectRespectsTimeoutFallback(t *testing.T) {
	var r, s automaton.StateID = 1, 2
	cfg := mergeselect.DefaultConfig()
	cfg.Timeout = 0 // DefaultConfig's zero-value guard applies, so this still runs;
	// exercised here mainly to confirm a zero timeout does not panic.
	groups, err := mergeselect.Select(nil, []mergeselect.Pair{{R: r, S: s}}, cfg)
	assert.NoError(t, err)
	assert.NotNil(t, groups)
}
