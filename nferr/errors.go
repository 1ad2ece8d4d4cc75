// Package nferr declares the sentinel and wrapped error values shared by the
// minimization engine's packages.
//
// Adapted from coregx-coregex's nfa/error.go: a small set of sentinel errors
// for classification (errors.Is) plus a couple of wrapper types that attach
// context for display. Errors.md in spec.md §7 splits these into
// "programming errors" (abort, here expressed as values the caller panics
// with) and "data-dependent anomalies" (logged warnings, never fatal).
package nferr

import (
	"errors"
	"fmt"
)

// Programming errors: a caller encountering these has violated an engine
// invariant. automaton.CreateFresh returns ErrBadRole as an error value;
// ErrNameCollision and ErrArithmeticDomain are raised as panics with the
// sentinel (possibly wrapped). Only minimize.Run recovers panics and
// converts them into a RunError.
var (
	// ErrBadRole indicates CreateFresh was called with an unrecognized role tag.
	ErrBadRole = errors.New("nfared: bad state role")

	// ErrNameCollision indicates a freshly minted state ID already exists.
	// Should be unreachable given a monotonic counter; kept as a defensive
	// invariant check.
	ErrNameCollision = errors.New("nfared: fresh state id collision")

	// ErrArithmeticDomain indicates the equivalence probe was invoked with k < 1.
	ErrArithmeticDomain = errors.New("nfared: lookahead must be >= 1")
)

// Data-dependent anomalies: logged as warnings by the caller-supplied hook,
// never cause an abort.
var (
	// ErrMissingTransition indicates PruneTransition was asked to remove an
	// edge that is not present.
	ErrMissingTransition = errors.New("nfared: transition not present")

	// ErrUnknownState indicates a dead-state or existence query named a
	// state absent from the automaton. Treated as warn-and-assume-live
	// (dead-state query) or warn-and-ignore (existence query).
	ErrUnknownState = errors.New("nfared: state not present")
)

// ErrSolverTimeout indicates the MaxSAT solver did not finish within its
// wall-clock budget. Not fatal: the caller falls back to the conservative
// "no merges from this cluster" reading (spec.md §7).
var ErrSolverTimeout = errors.New("nfared: solver timeout")

// ErrConfig indicates a user-facing configuration mistake (bad CLI arity,
// unknown format flag). The only error kind surfaced to the CLI user as a
// non-zero exit.
var ErrConfig = errors.New("nfared: configuration error")

// ConfigError wraps ErrConfig with the offending input and the reason,
// mirroring coregx-coregex's *CompileError pattern (a sentinel plus a
// detail-carrying wrapper, Unwrap-able to the sentinel for errors.Is).
type ConfigError struct {
	Arg    string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Arg != "" {
		return fmt.Sprintf("configuration error for %q: %s", e.Arg, e.Reason)
	}
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrConfig }

// RunError wraps a panic recovered at minimize.Run's top level, converting
// an invariant-breaking programming error into an ordinary error so a batch
// driver processing many automata survives one malformed instance.
type RunError struct {
	Cause any
}

func (e *RunError) Error() string {
	return fmt.Sprintf("nfared: minimization aborted: %v", e.Cause)
}
