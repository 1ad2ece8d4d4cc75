// Package mergeselect implements the weighted MaxSAT merge selector
// (spec.md §4.5): given the set of state pairs the equivalence probe
// certified as backward-equivalent and forward-equivalent, pick the
// largest conflict-free collection of merges.
//
// Grounded on original_source/algorithms.py's calculateSolver: two Boolean
// variables per state, x_B ("merge by backward equivalence") and x_F
// ("merge by forward equivalence"), a hard constraint x_B -> not x_F per
// state, and one soft constraint per certified pair rewarding the solver
// for setting both endpoints' matching variable to true. The Python
// source expresses the soft constraint directly as a conjunction
// (Z3's add_soft(And(r_B, s_B))); this package's solver, gophersat's
// maxsat package, consumes plain weighted CNF, so each conjunctive soft
// pair is Tseitin-encoded into an auxiliary variable with hard clauses
// pinning it to the conjunction and a soft unit clause on the auxiliary
// variable itself (see solver.go).
package mergeselect

import (
	"context"
	"sort"
	"time"

	"github.com/msedy/nfared/automaton"
	"github.com/msedy/nfared/nferr"
)

// Pair is a certified equivalence between two states, discovered by
// package equiv in one direction.
type Pair struct {
	R, S automaton.StateID
}

// Warn receives a message when the solver misses its deadline. Defaults
// to a no-op.
type Config struct {
	Timeout time.Duration
	Warn    func(format string, args ...any)
}

// DefaultConfig returns the solver's default timeout (spec.md §9).
func DefaultConfig() Config {
	return Config{Timeout: 60 * time.Second, Warn: func(string, ...any) {}}
}

// Select runs the weighted MaxSAT formulation over backwardPairs and
// forwardPairs and returns the resulting merge groups: connected
// components over the pairs whose matching direction variable the solver
// set true for both endpoints.
//
// On solver timeout (spec.md §7's "Solver timeout" anomaly), Select warns
// through cfg.Warn and returns no merge groups rather than extracting a
// partial, potentially inconsistent assignment from a cancelled solve.
func Select(backwardPairs, forwardPairs []Pair, cfg Config) ([][]automaton.StateID, error) {
	if cfg.Warn == nil {
		cfg.Warn = func(string, ...any) {}
	}
	if len(backwardPairs) == 0 && len(forwardPairs) == 0 {
		return nil, nil
	}

	enc := newEncoder()
	for _, p := range backwardPairs {
		enc.addSoftPair(p.R, p.S, backward)
	}
	for _, p := range forwardPairs {
		enc.addSoftPair(p.R, p.S, forward)
	}
	enc.addExclusivityClauses()

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	model, err := solveWCNF(ctx, enc.wcnf())
	if err != nil {
		if err == context.DeadlineExceeded {
			cfg.Warn("mergeselect: %v, falling back to no merges", nferr.ErrSolverTimeout)
			return nil, nil
		}
		return nil, err
	}

	backwardTrue, forwardTrue := enc.interpret(model)
	groups := clusterSurvivingPairs(backwardPairs, backwardTrue, forwardPairs, forwardTrue)
	return groups, nil
}

func clusterSurvivingPairs(backwardPairs []Pair, backwardTrue map[automaton.StateID]bool, forwardPairs []Pair, forwardTrue map[automaton.StateID]bool) [][]automaton.StateID {
	parent := map[automaton.StateID]automaton.StateID{}
	var find func(automaton.StateID) automaton.StateID
	find = func(x automaton.StateID) automaton.StateID {
		if _, ok := parent[x]; !ok {
			parent[x] = x
		}
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	union := func(x, y automaton.StateID) {
		rx, ry := find(x), find(y)
		if rx != ry {
			parent[rx] = ry
		}
	}

	consider := func(pairs []Pair, true_ map[automaton.StateID]bool) {
		for _, p := range pairs {
			if true_[p.R] && true_[p.S] {
				union(p.R, p.S)
			}
		}
	}
	consider(backwardPairs, backwardTrue)
	consider(forwardPairs, forwardTrue)

	groups := map[automaton.StateID][]automaton.StateID{}
	for s := range parent {
		root := find(s)
		groups[root] = append(groups[root], s)
	}

	var out [][]automaton.StateID
	for _, g := range groups {
		if len(g) >= 2 {
			sort.Slice(g, func(i, j int) bool { return g[i] < g[j] })
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
