package timbuk

import (
	"sync"

	"github.com/coregx/ahocorasick"
)

// lineKeyword classifies the first word of a Timbuk format line.
type lineKeyword int

const (
	keywordNone lineKeyword = iota
	keywordOps
	keywordAutomaton
	keywordStates
	keywordFinal
	keywordTransitions
)

var keywordPatterns = []struct {
	text string
	kind lineKeyword
}{
	{"Ops", keywordOps},
	{"Automaton", keywordAutomaton},
	{"Final", keywordFinal},
	{"States", keywordStates},
	{"Transitions", keywordTransitions},
}

var (
	keywordAutoOnce sync.Once
	keywordAuto     *ahocorasick.Automaton
)

// getKeywordAutomaton lazily builds the Aho-Corasick automaton over the
// format's five section keywords. Built once per process: the pattern set
// is fixed, so there is nothing to gain from rebuilding it per parse call.
//
// This repurposes coregx-coregex's ahocorasick dependency, originally
// wired for multi-literal regex prefiltering, as a line-keyword
// classifier: both uses boil down to "which of a fixed small pattern set
// prefixes this byte string".
func getKeywordAutomaton() *ahocorasick.Automaton {
	keywordAutoOnce.Do(func() {
		builder := ahocorasick.NewBuilder()
		for _, kw := range keywordPatterns {
			builder.AddPattern([]byte(kw.text))
		}
		auto, err := builder.Build()
		if err != nil {
			panic(err)
		}
		keywordAuto = auto
	})
	return keywordAuto
}

// classifyLine returns the keyword starting line, or keywordNone if line
// does not begin with one of the format's section keywords.
func classifyLine(line string) lineKeyword {
	auto := getKeywordAutomaton()
	m := auto.Find([]byte(line), 0)
	if m == nil || m.Start != 0 {
		return keywordNone
	}
	matched := line[m.Start:m.End]
	for _, kw := range keywordPatterns {
		if kw.text == matched {
			return kw.kind
		}
	}
	return keywordNone
}
