// Package ba implements spec.md §6.2's bracketed automaton format ("Format
// B"): one state or transition per line, states written as [name] and
// transitions as symbol,[from]->[to]. The sequence of leading [name] lines
// is initial states; the sequence of trailing [name] lines (after the
// first transition line) is accepting states.
//
// Grounded on original_source/parse.py's parseBa and nfa.py's printBa.
package ba

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"

	"github.com/msedy/nfared/automaton"
)

var (
	stateLineRe      = regexp.MustCompile(`^\[(\w+)\]$`)
	transitionLineRe = regexp.MustCompile(`^(\w+)\s*,\s*\[(\w+)\]\s*->\s*\[(\w+)\]$`)
)

// Parse reads a Format B automaton from r. A [name] line before the first
// transition line marks an initial state; a [name] line at or after the
// first transition line marks an accepting state, matching the original
// format's lack of an explicit section header.
func Parse(r io.Reader) (*automaton.Automaton, error) {
	a := automaton.New()
	sc := bufio.NewScanner(r)
	sawTransition := false

	for lineNo := 1; sc.Scan(); lineNo++ {
		line := sc.Text()
		if m := stateLineRe.FindStringSubmatch(line); m != nil {
			s := a.StateByName(m[1])
			if sawTransition {
				a.SetAccepting(s)
			} else {
				a.SetInitial(s)
			}
			continue
		}
		if m := transitionLineRe.FindStringSubmatch(line); m != nil {
			sym, from, to := m[1], m[2], m[3]
			a.AddTransition(a.StateByName(from), automaton.Symbol(sym), a.StateByName(to))
			sawTransition = true
			continue
		}
		if len(line) == 0 {
			continue
		}
		return nil, fmt.Errorf("ba: line %d: unrecognized syntax: %q", lineNo, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ba: %w", err)
	}
	return a, nil
}

// Print writes a to w in Format B. An automaton with no states prints the
// original format's degenerate placeholder, [0] on two lines, matching
// nfa.py's printBa special case for an empty automaton.
func Print(w io.Writer, a *automaton.Automaton) error {
	states := a.States()
	if len(states) == 0 {
		if _, err := fmt.Fprintln(w, "[0]"); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w, "[0]")
		return err
	}

	for _, s := range a.Initial() {
		if _, err := fmt.Fprintf(w, "[%s]\n", a.Name(s)); err != nil {
			return err
		}
	}

	type edge struct{ sym, from, to string }
	var edges []edge
	for _, from := range states {
		for sym, tos := range a.ForwardIndexRow(from) {
			for to := range tos {
				edges = append(edges, edge{string(sym), a.Name(from), a.Name(to)})
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].from != edges[j].from {
			return edges[i].from < edges[j].from
		}
		if edges[i].sym != edges[j].sym {
			return edges[i].sym < edges[j].sym
		}
		return edges[i].to < edges[j].to
	})
	for _, e := range edges {
		if _, err := fmt.Fprintf(w, "%s,[%s]->[%s]\n", e.sym, e.from, e.to); err != nil {
			return err
		}
	}

	for _, s := range a.Accepting() {
		if _, err := fmt.Fprintf(w, "[%s]\n", a.Name(s)); err != nil {
			return err
		}
	}
	return nil
}
