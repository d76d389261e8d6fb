package synth

import (
	"github.com/benbjohnson/immutable"
)

// Rule is a verified rewrite rule. LHS is the stored rewrite source; a
// directional rule rewrites left to right only, a bidirectional one is
// usable either way. Rules are never edited once added.
type Rule struct {
	LHS           *Term
	RHS           *Term
	Bidirectional bool
	Iteration     int
}

// RuleSet is a versioned, immutable snapshot of verified rules in
// discovery order. Add returns a new snapshot, so a batch of parallel
// validators can keep reading a frozen version while the orchestrator
// prepares the next one; mutation is single-writer at round boundaries.
type RuleSet struct {
	list    *immutable.List[Rule]
	version int
}

func NewRuleSet() *RuleSet {
	return &RuleSet{list: immutable.NewList[Rule]()}
}

func (rs *RuleSet) Len() int { return rs.list.Len() }
func (rs *RuleSet) Version() int { return rs.version }

// Rules materializes the ordered rule list.
func (rs *RuleSet) Rules() []Rule {
	out := make([]Rule, 0, rs.list.Len())
	itr := rs.list.Iterator()
	for !itr.Done() {
		_, r := itr.Next()
		out = append(out, r)
	}
	return out
}

func (rs *RuleSet) Add(r Rule) *RuleSet {
	return &RuleSet{list: rs.list.Append(r), version: rs.version + 1}
}

func (rs *RuleSet) Replace(rules []Rule) *RuleSet {
	l := immutable.NewList[Rule]()
	for _, r := range rules {
		l = l.Append(r)
	}
	return &RuleSet{list: l, version: rs.version + 1}
}

// Covers reports whether the pair is already present in either
// orientation. Terms are hash-consed, so id comparison is structural
// comparison.
func (rs *RuleSet) Covers(a, b *Term) bool {
	itr := rs.list.Iterator()
	for !itr.Done() {
		_, r := itr.Next()
		if (r.LHS.id == a.id && r.RHS.id == b.id) || (r.LHS.id == b.id && r.RHS.id == a.id) {
			return true
		}
	}
	return false
}

// buildRule turns a proved candidate into a stored rule. The candidate
// arrives already oriented with the structurally larger-or-equal side as
// LHS; complexity here is the node count.
//
// Bidirectionality: equal complexity means orientation carries no
// information, so the rule is bidirectional outright. Otherwise the rule
// is bidirectional exactly when neither direction can be reproduced by
// directed rewriting from the opposite direction plus the rest of the
// set. The derivability check seeds only the source side, so a rule does
// not trivially witness its own reverse.
func buildRule(lhs, rhs *Term, iteration int, rest []Rule, lim SatLimits) Rule {
	r := Rule{LHS: lhs, RHS: rhs, Iteration: iteration}
	if lhs.Size() == rhs.Size() {
		r.Bidirectional = true
		return r
	}
	fwd := append(append([]Rule{}, rest...), Rule{LHS: lhs, RHS: rhs})
	rev := append(append([]Rule{}, rest...), Rule{LHS: rhs, RHS: lhs})
	revDerivable := deriveDirected(rhs, lhs, fwd, lim)
	fwdDerivable := deriveDirected(lhs, rhs, rev, lim)
	r.Bidirectional = !revDerivable && !fwdDerivable
	return r
}

// Minimize drops every rule that is re-derivable via saturation from the
// remaining rules. One pass in reverse discovery order suffices: each
// survivor was tested against a superset of the final set, so nothing in
// the result is derivable from the rest of the result. A rule that is not
// re-derivable is never removed.
func Minimize(rules []Rule, lim SatLimits) []Rule {
	kept := append([]Rule{}, rules...)
	for i := len(kept) - 1; i >= 0; i-- {
		rest := make([]Rule, 0, len(kept)-1)
		rest = append(rest, kept[:i]...)
		rest = append(rest, kept[i+1:]...)
		if deriveEqual(kept[i].LHS, kept[i].RHS, rest, lim) == SatDerivable {
			kept = rest
		}
	}
	return kept
}

// holdsOn checks one rule against one sample point.
func (r Rule) holdsOn(ev *Evaluator, pt Assignment) bool {
	return ev.EvalAt(r.LHS, pt) == ev.EvalAt(r.RHS, pt)
}
