package synth

import "context"

// VerdictKind classifies an oracle decision.
type VerdictKind int

const (
	// Unknown: the oracle timed out, failed, or is absent. The candidate
	// is dropped without being recorded as false. Unknown is the zero
	// value, so a forgotten verdict never proves anything.
	Unknown VerdictKind = iota
	// Proved: the equality holds for every assignment.
	Proved
	// Disproved: a concrete counterexample was found.
	Disproved
)

func (k VerdictKind) String() string {
	switch k {
	case Proved:
		return "proved"
	case Disproved:
		return "disproved"
	case Unknown:
		return "unknown"
	}
	return "invalid"
}

// Verdict is an oracle's answer for one candidate equality.
// Counterexample is set only for Disproved; Err carries the failure
// behind an Unknown, when there is one.
type Verdict struct {
	Kind           VerdictKind
	Counterexample Assignment
	Err            error
}

// Oracle decides universally quantified equalities between two terms.
// Implementations must be safe for concurrent use and must respect ctx
// cancellation; an undecided or failed query yields Unknown, never a
// wrong Proved or Disproved.
type Oracle interface {
	Decide(ctx context.Context, lhs, rhs *Term) Verdict
}

// nullOracle answers Unknown for everything. Used when oracle escalation
// is disabled: candidates that survive the concrete filter are counted
// and dropped instead of being verified.
type nullOracle struct{}

func (nullOracle) Decide(context.Context, *Term, *Term) Verdict {
	return Verdict{Kind: Unknown}
}
