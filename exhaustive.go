package synth

import "context"

// ExhaustiveOracle decides equalities by enumerating every assignment of
// the finite domain. Exact for any width it can afford; Config.validate
// keeps it off domains whose point count is intractable. Also backs the
// final full-domain re-check of the rule set.
type ExhaustiveOracle struct {
	dom   Domain
	nvars int
}

func NewExhaustiveOracle(dom Domain, nvars int) *ExhaustiveOracle {
	return &ExhaustiveOracle{dom: dom, nvars: nvars}
}

// Points returns the total number of assignments.
func (o *ExhaustiveOracle) Points() uint64 {
	total := uint64(1)
	for i := 0; i < o.nvars; i++ {
		total *= o.dom.Mask + 1
	}
	return total
}

func (o *ExhaustiveOracle) Decide(ctx context.Context, lhs, rhs *Term) Verdict {
	pt := make(Assignment, o.nvars)
	total := o.Points()
	for n := uint64(0); n < total; n++ {
		if n&0xfff == 0 && ctx.Err() != nil {
			return Verdict{Kind: Unknown, Err: ctx.Err()}
		}
		v := n
		for i := range pt {
			pt[i] = v & o.dom.Mask
			v >>= o.dom.Width
		}
		if evalTerm(o.dom, lhs, pt) != evalTerm(o.dom, rhs, pt) {
			return Verdict{Kind: Disproved, Counterexample: pt.clone()}
		}
	}
	return Verdict{Kind: Proved}
}
