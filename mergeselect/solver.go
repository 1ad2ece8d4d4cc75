package mergeselect

import (
	"bytes"
	"context"
	"fmt"

	"github.com/crillab/gophersat/maxsat"

	"github.com/msedy/nfared/automaton"
)

// direction picks which per-state Boolean variable (x_B or x_F) a soft
// pair's Tseitin auxiliary gets tied to.
type direction uint8

const (
	backward direction = iota
	forward
)

// hardWeight is used for clauses that must hold in any model (spec.md
// §4.5's "hard" constraints); gophersat's WCNF dialect marks a clause hard
// by giving it a weight greater than the sum of every soft weight, so a
// large constant well above any plausible soft-weight sum is used here.
const hardWeight = 1 << 30

// encoder builds the weighted CNF instance described in mergeselect.go's
// package doc: two variables per state, a hard mutual-exclusion clause per
// state appearing in both directions, and one Tseitin-encoded soft clause
// group per certified pair.
type encoder struct {
	nextVar int
	bVar    map[automaton.StateID]int
	fVar    map[automaton.StateID]int
	clauses []wcnfClause
}

type wcnfClause struct {
	weight  int // hardWeight marks a hard clause
	literal []int
}

func newEncoder() *encoder {
	return &encoder{
		nextVar: 1,
		bVar:    map[automaton.StateID]int{},
		fVar:    map[automaton.StateID]int{},
	}
}

func (e *encoder) varFor(s automaton.StateID, dir direction) int {
	table := e.bVar
	if dir == forward {
		table = e.fVar
	}
	if v, ok := table[s]; ok {
		return v
	}
	v := e.nextVar
	e.nextVar++
	table[s] = v
	return v
}

// addSoftPair adds the Tseitin encoding of a single certified pair (r, s)
// in direction dir: a fresh auxiliary variable p standing for
// (x_dir(r) AND x_dir(s)), tied down by the three hard clauses of the
// standard AND-gate encoding, plus a soft unit clause rewarding p=true.
func (e *encoder) addSoftPair(r, s automaton.StateID, dir direction) {
	rv := e.varFor(r, dir)
	sv := e.varFor(s, dir)
	p := e.nextVar
	e.nextVar++

	e.clauses = append(e.clauses,
		wcnfClause{hardWeight, []int{-p, rv}},
		wcnfClause{hardWeight, []int{-p, sv}},
		wcnfClause{hardWeight, []int{-rv, -sv, p}},
		wcnfClause{1, []int{p}},
	)
}

// addExclusivityClauses adds, for every state with both a backward and a
// forward variable allocated, the hard clause (not x_B) or (not x_F):
// a state cannot be merged by both equivalence directions at once
// (spec.md §4.5).
func (e *encoder) addExclusivityClauses() {
	for s, bv := range e.bVar {
		if fv, ok := e.fVar[s]; ok {
			e.clauses = append(e.clauses, wcnfClause{hardWeight, []int{-bv, -fv}})
		}
	}
}

// wcnf renders the encoder's clause set in DIMACS weighted-CNF text form,
// the input format gophersat's maxsat solver parses.
func (e *encoder) wcnf() []byte {
	var buf bytes.Buffer
	nbVars := e.nextVar - 1
	fmt.Fprintf(&buf, "p wcnf %d %d %d\n", nbVars, len(e.clauses), hardWeight)
	for _, c := range e.clauses {
		fmt.Fprintf(&buf, "%d", c.weight)
		for _, lit := range c.literal {
			fmt.Fprintf(&buf, " %d", lit)
		}
		buf.WriteString(" 0\n")
	}
	return buf.Bytes()
}

// interpret reads a solver model (1-indexed variable -> truth value) back
// into per-state backward/forward truth maps.
func (e *encoder) interpret(model []bool) (backwardTrue, forwardTrue map[automaton.StateID]bool) {
	backwardTrue = map[automaton.StateID]bool{}
	forwardTrue = map[automaton.StateID]bool{}
	lookup := func(v int) bool {
		idx := v - 1
		if idx < 0 || idx >= len(model) {
			return false
		}
		return model[idx]
	}
	for s, v := range e.bVar {
		backwardTrue[s] = lookup(v)
	}
	for s, v := range e.fVar {
		forwardTrue[s] = lookup(v)
	}
	return backwardTrue, forwardTrue
}

// solveWCNF hands a WCNF-formatted instance to gophersat's maxsat package
// and returns the satisfying model's truth assignment.
//
// gophersat's maxsat.ParseWCNF/Problem.Solve do not natively accept a
// context; the solve runs on a goroutine and is abandoned (not killed —
// gophersat has no cancellation hook) if ctx's deadline elapses first,
// matching spec.md §7's "solver timeout" policy of falling back to no
// merges rather than blocking the driver indefinitely.
func solveWCNF(ctx context.Context, wcnf []byte) ([]bool, error) {
	type result struct {
		model []bool
		err   error
	}
	done := make(chan result, 1)

	go func() {
		pb, err := maxsat.ParseWCNF(bytes.NewReader(wcnf))
		if err != nil {
			done <- result{nil, fmt.Errorf("mergeselect: parse wcnf: %w", err)}
			return
		}
		res := pb.Solve()
		if res.Status != maxsat.Sat {
			done <- result{nil, nil}
			return
		}
		done <- result{res.Model, nil}
	}()

	select {
	case r := <-done:
		return r.model, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
