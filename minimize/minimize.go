// Package minimize implements the top-level driver loop (spec.md §4.6):
// for every family the detector surfaces, expand it into pseudo-states,
// probe all pairs for bounded equivalence, let the merge selector choose
// a conflict-free set of merges, and apply them — backing up and
// restoring whenever an attempt makes no net progress.
//
// Grounded on original_source/reduce.py's main() driver and
// algorithms.py's minimizeFamily/solverMinimization: parse, clean dead
// states, repeatedly shrink families until none shrink further, report
// before/after counts. Config/DefaultConfig/Result follow
// coregx-coregex's meta package's Config/Stats convention.
package minimize

import (
	"time"

	"github.com/msedy/nfared/automaton"
	"github.com/msedy/nfared/equiv"
	"github.com/msedy/nfared/family"
	"github.com/msedy/nfared/mergeselect"
	"github.com/msedy/nfared/nferr"
	"github.com/msedy/nfared/rewrite"
)

// Config tunes the minimization run.
type Config struct {
	// Lookahead is k, the bounded equivalence probe's step count.
	Lookahead int
	// AllowSelfLoops controls whether the family detector keeps a state
	// in a family formed via a symbol the state also self-loops on.
	AllowSelfLoops bool
	// SolverTimeout bounds a single merge-selection call.
	SolverTimeout time.Duration
	// Warn receives the merge selector's warnings (a missed solver
	// deadline). Anomalies raised by the automaton itself go to the
	// automaton's own Warn hook, not here.
	Warn func(format string, args ...any)
}

// DefaultConfig returns the engine's defaults (spec.md §9): lookahead 1,
// self-loops allowed in family formation, a 60 second solver budget.
func DefaultConfig() Config {
	return Config{
		Lookahead:      1,
		AllowSelfLoops: true,
		SolverTimeout:  60 * time.Second,
		Warn:           func(string, ...any) {},
	}
}

// Result summarizes one Run.
type Result struct {
	StatesBefore       int
	StatesAfter        int
	TransitionsBefore  int
	TransitionsAfter   int
	Elapsed            time.Duration
	FamiliesProcessed  int
	MergesApplied      int
}

// Run executes the driver loop over a until no family yields further
// merges, then performs a final dead-state sweep. It recovers any panic
// raised by a lower package (a programming-error invariant violation) and
// returns it wrapped in *nferr.RunError rather than crashing a caller that
// is batch-processing many automata.
func Run(a *automaton.Automaton, cfg Config) (result Result, err error) {
	if cfg.Warn == nil {
		cfg.Warn = func(string, ...any) {}
	}
	if cfg.Lookahead < 1 {
		cfg.Lookahead = DefaultConfig().Lookahead
	}

	defer func() {
		if r := recover(); r != nil {
			err = &nferr.RunError{Cause: r}
		}
	}()

	start := time.Now()
	result.StatesBefore = len(a.States())
	result.TransitionsBefore = a.TransitionCount()
	a.DeadSweep()

	closed := map[string]struct{}{}
	for {
		progressedThisRound := false
		for _, fam := range family.Detect(a, cfg.AllowSelfLoops) {
			key := familyKey(fam)
			if _, done := closed[key]; done {
				continue
			}
			result.FamiliesProcessed++

			merged, progressed := attemptFamily(a, fam, cfg, &result)
			if progressed {
				progressedThisRound = true
			}
			if !merged {
				closed[key] = struct{}{}
			}
		}
		if !progressedThisRound {
			break
		}
	}

	a.DeadSweep()
	result.StatesAfter = len(a.States())
	result.TransitionsAfter = a.TransitionCount()
	result.Elapsed = time.Since(start)
	return result, nil
}

// attemptFamily runs one expand-probe-select-merge cycle on fam. It backs
// up fam's footprint first; if the attempt's merges do not reduce the
// family's state count (spec.md §4.6's "regression" case — pseudo-state
// expansion grew the count and no merge won it back), the backup is
// restored and the states the attempt created are pruned.
//
// Resolves the restore-path Open Question the same way automaton.Restore
// does: on regression, every state automaton.Snapshot captured is brought
// back, not only the subset that happens to still exist.
func attemptFamily(a *automaton.Automaton, fam family.Family, cfg Config, result *Result) (merged, progressed bool) {
	before := len(fam)
	snap := a.Snapshot(fam)

	working := rewrite.Expand(a, fam)
	if len(working) == 0 {
		return false, false
	}

	for {
		backwardPairs, forwardPairs := probeAll(a, working, cfg.Lookahead)
		if len(backwardPairs) == 0 && len(forwardPairs) == 0 {
			break
		}

		groups, err := mergeselect.Select(backwardPairs, forwardPairs, mergeselect.Config{
			Timeout: cfg.SolverTimeout,
			Warn:    cfg.Warn,
		})
		if err != nil || len(groups) == 0 {
			break
		}

		next := family.Family{}
		for s := range working {
			next[s] = struct{}{}
		}
		for _, g := range groups {
			set := map[automaton.StateID]struct{}{}
			for _, s := range g {
				set[s] = struct{}{}
				delete(next, s)
			}
			m, mergeErr := a.MergeStates(set)
			if mergeErr != nil {
				continue
			}
			next[m] = struct{}{}
			result.MergesApplied++
			merged = true
		}
		working = next
	}

	if len(working) >= before {
		a.Restore(snap)
		for s := range working {
			if _, original := fam[s]; !original && a.Exists(s) {
				a.PruneState(s)
			}
		}
		return merged, false
	}
	return merged, true
}

// probeAll computes every certified backward and forward pair among
// working's members.
func probeAll(a *automaton.Automaton, working family.Family, k int) (backwardPairs, forwardPairs []mergeselect.Pair) {
	var members []automaton.StateID
	for s := range working {
		members = append(members, s)
	}
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			r, s := members[i], members[j]
			if equiv.Equivalent(a, equiv.Backward, r, s, k) {
				backwardPairs = append(backwardPairs, mergeselect.Pair{R: r, S: s})
			}
			if equiv.Equivalent(a, equiv.Forward, r, s, k) {
				forwardPairs = append(forwardPairs, mergeselect.Pair{R: r, S: s})
			}
		}
	}
	return backwardPairs, forwardPairs
}

// familyKey builds a stable identity for a family so the driver can mark
// it closed without reprocessing it every round. Sorted decimal IDs
// joined by a separator byte that cannot appear in a base-10 digit
// string, so no two distinct sets collide.
func familyKey(fam family.Family) string {
	ids := make([]automaton.StateID, 0, len(fam))
	for s := range fam {
		ids = append(ids, s)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	buf := make([]byte, 0, len(ids)*8)
	for _, id := range ids {
		buf = appendUint(buf, uint64(id))
		buf = append(buf, '|')
	}
	return string(buf)
}

func appendUint(buf []byte, v uint64) []byte {
	start := len(buf)
	if v == 0 {
		return append(buf, '0')
	}
	for v > 0 {
		buf = append(buf, byte('0'+v%10))
		v /= 10
	}
	for i, j := start, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return buf
}
