// Package timbuk implements spec.md §6.1's Timbuk-style automaton format:
// an "Ops" alphabet header, an "Automaton <name>" line, a "States" line, a
// "Final States" line, and a "Transitions" block holding both the
// "x -> q0" initial-state markers and the "a(q0) -> q1" transition lines.
//
// Grounded on original_source/parse.py's parseTimbuk and nfa.py's
// printTimbuk. Line classification is done with an Aho-Corasick automaton
// (see keywords.go) rather than a chain of strings.HasPrefix calls, the
// way coregx-coregex uses the same library for multi-literal prefix
// detection.
package timbuk

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/msedy/nfared/automaton"
)

var (
	initialLineRe    = regexp.MustCompile(`^\w+(\(\))?\s*->\s*(\w+)$`)
	transitionLineRe = regexp.MustCompile(`^(\w+)\((\w+)\)\s*->\s*(\w+)$`)
)

// Parse reads a Timbuk format automaton from r.
func Parse(r io.Reader) (*automaton.Automaton, error) {
	a := automaton.New()
	sc := bufio.NewScanner(r)

	for lineNo := 1; sc.Scan(); lineNo++ {
		line := strings.TrimRight(sc.Text(), " \t\r")
		if line == "" {
			continue
		}

		if m := initialLineRe.FindStringSubmatch(line); m != nil {
			s := a.StateByName(m[2])
			a.SetInitial(s)
			continue
		}
		if m := transitionLineRe.FindStringSubmatch(line); m != nil {
			sym, from, to := m[1], m[2], m[3]
			a.AddTransition(a.StateByName(from), automaton.Symbol(sym), a.StateByName(to))
			continue
		}

		switch classifyLine(line) {
		case keywordOps, keywordAutomaton, keywordTransitions:
			// Header lines carry no automaton content this format needs
			// to preserve; the alphabet is recomputed from transitions.
			continue
		case keywordFinal:
			for _, name := range fields(line, "Final", "States") {
				a.SetAccepting(a.StateByName(name))
			}
		case keywordStates:
			for _, name := range fields(line, "States") {
				a.StateByName(name)
			}
		default:
			return nil, fmt.Errorf("timbuk: line %d: unrecognized syntax: %q", lineNo, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("timbuk: %w", err)
	}
	return a, nil
}

// fields splits line into words and drops the given leading keyword
// tokens, returning whatever remains.
func fields(line string, leading ...string) []string {
	words := strings.Fields(line)
	i := 0
	for _, kw := range leading {
		if i < len(words) && words[i] == kw {
			i++
		}
	}
	return words[i:]
}

// Print writes a to w in Timbuk format.
func Print(w io.Writer, a *automaton.Automaton) error {
	alphabet := a.Alphabet()
	symbols := make([]string, 0, len(alphabet))
	for sym := range alphabet {
		symbols = append(symbols, string(sym))
	}
	sort.Strings(symbols)

	var b strings.Builder
	b.WriteString("Ops")
	for _, sym := range symbols {
		fmt.Fprintf(&b, " %s:1", sym)
	}
	b.WriteString(" x:0\n")
	b.WriteString("Automaton A\n")

	b.WriteString("States")
	for _, s := range a.States() {
		fmt.Fprintf(&b, " %s", a.Name(s))
	}
	b.WriteString("\n")

	b.WriteString("Final States")
	for _, s := range a.Accepting() {
		fmt.Fprintf(&b, " %s", a.Name(s))
	}
	b.WriteString("\n")

	b.WriteString("Transitions\n")
	for _, s := range a.Initial() {
		fmt.Fprintf(&b, "x -> %s\n", a.Name(s))
	}

	type edge struct{ sym, from, to string }
	var edges []edge
	for _, from := range a.States() {
		for sym, tos := range a.ForwardIndexRow(from) {
			for to := range tos {
				edges = append(edges, edge{string(sym), a.Name(from), a.Name(to)})
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].sym != edges[j].sym {
			return edges[i].sym < edges[j].sym
		}
		if edges[i].from != edges[j].from {
			return edges[i].from < edges[j].from
		}
		return edges[i].to < edges[j].to
	})
	for _, e := range edges {
		fmt.Fprintf(&b, "%s(%s) -> %s\n", e.sym, e.from, e.to)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
