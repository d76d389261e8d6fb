package synth

import (
	"testing"
	"time"
)

func testLimits() SatLimits {
	return SatLimits{MaxNodes: 1024, MaxIters: 8, Budget: time.Second}
}

func TestDeriveEqualByCommutativity(t *testing.T) {
	store := NewTermStore(NewDomain(8))
	a, b, c := store.Var(0), store.Var(1), store.Var(2)
	comm := Rule{
		LHS:           store.Apply(OpAdd, a, b),
		RHS:           store.Apply(OpAdd, b, a),
		Bidirectional: true,
	}

	l := store.Apply(OpAdd, store.Apply(OpAdd, a, b), c)
	r := store.Apply(OpAdd, store.Apply(OpAdd, b, a), c)
	if out := deriveEqual(l, r, []Rule{comm}, testLimits()); out != SatDerivable {
		t.Errorf("expected derivable, got %v", out)
	}
}

func TestDeriveEqualExhausted(t *testing.T) {
	store := NewTermStore(NewDomain(8))
	a, b := store.Var(0), store.Var(1)
	comm := Rule{
		LHS:           store.Apply(OpAdd, a, b),
		RHS:           store.Apply(OpAdd, b, a),
		Bidirectional: true,
	}
	l := store.Apply(OpAnd, a, b)
	r := store.Apply(OpAnd, b, a)
	if out := deriveEqual(l, r, []Rule{comm}, testLimits()); out == SatDerivable {
		t.Error("unrelated equality must not be derivable")
	}
}

func TestDeriveEqualCongruence(t *testing.T) {
	store := NewTermStore(NewDomain(8))
	a := store.Var(0)
	dneg := Rule{LHS: store.Apply(OpNot, store.Apply(OpNot, a)), RHS: a}

	l := store.Apply(OpNeg, store.Apply(OpNot, store.Apply(OpNot, a)))
	r := store.Apply(OpNeg, a)
	if out := deriveEqual(l, r, []Rule{dneg}, testLimits()); out != SatDerivable {
		t.Errorf("congruent wrappers must merge, got %v", out)
	}
}

func TestDeriveBoundHit(t *testing.T) {
	store := NewTermStore(NewDomain(8))
	a := store.Var(0)
	// ~x -> ~(x+1) mints a fresh term every iteration, so the node
	// budget must trip before any fixpoint
	grow := Rule{
		LHS: store.Apply(OpNot, a),
		RHS: store.Apply(OpNot, store.Apply(OpAdd, a, store.Const(1))),
	}

	l := store.Apply(OpNot, a)
	r := store.Var(1)
	lim := SatLimits{MaxNodes: 16, MaxIters: 64, Budget: time.Second}
	if out := deriveEqual(l, r, []Rule{grow}, lim); out != SatBound {
		t.Errorf("expected bound hit, got %v", out)
	}
}

func TestDeriveDirectedAsymmetry(t *testing.T) {
	store := NewTermStore(NewDomain(8))
	a := store.Var(0)
	addZero := store.Apply(OpAdd, a, store.Const(0))
	rules := []Rule{{LHS: addZero, RHS: a}}

	if !deriveDirected(addZero, a, rules, testLimits()) {
		t.Error("forward direction must be derivable")
	}
	if deriveDirected(a, addZero, rules, testLimits()) {
		t.Error("reverse direction must not be derivable from a directional rule")
	}
}

func TestLoneVariablePatternNeverMatches(t *testing.T) {
	store := NewTermStore(NewDomain(8))
	a := store.Var(0)
	// bidirectional a <-> (bvadd ?a 0): the bare-variable side must not
	// act as a match source, or every class would rewrite.
	r := Rule{LHS: store.Apply(OpAdd, a, store.Const(0)), RHS: a, Bidirectional: true}
	rws := asRewrites([]Rule{r})
	if len(rws) != 1 {
		t.Fatalf("expected one directed rewrite, got %d", len(rws))
	}
	if rws[0].lhs.IsVar() {
		t.Error("match source must not be a bare variable")
	}
}

func TestUnboundTemplateVariableNeverApplied(t *testing.T) {
	store := NewTermStore(NewDomain(8))
	a, b := store.Var(0), store.Var(1)
	subSelf := Rule{LHS: store.Apply(OpSub, a, a), RHS: store.Const(0), Bidirectional: true}

	// The reverse direction 0 -> (bvsub ?a ?a) has an unbindable
	// variable and must be skipped rather than applied.
	rws := asRewrites([]Rule{subSelf})
	if len(rws) != 1 {
		t.Fatalf("expected one directed rewrite, got %d", len(rws))
	}

	l := store.Apply(OpAdd, store.Const(0), b)
	r := store.Apply(OpAdd, store.Apply(OpSub, b, b), b)
	if out := deriveEqual(l, r, []Rule{subSelf}, testLimits()); out != SatDerivable {
		t.Errorf("expected derivable, got %v", out)
	}
}

func TestEgraphDeterministic(t *testing.T) {
	run := func() SatOutcome {
		store := NewTermStore(NewDomain(8))
		a, b := store.Var(0), store.Var(1)
		comm := Rule{LHS: store.Apply(OpAdd, a, b), RHS: store.Apply(OpAdd, b, a), Bidirectional: true}
		assoc := Rule{
			LHS: store.Apply(OpAdd, store.Apply(OpAdd, a, b), store.Var(2)),
			RHS: store.Apply(OpAdd, a, store.Apply(OpAdd, b, store.Var(2))),
		}
		l := store.Apply(OpAdd, store.Apply(OpAdd, b, a), store.Var(2))
		r := store.Apply(OpAdd, a, store.Apply(OpAdd, b, store.Var(2)))
		return deriveEqual(l, r, []Rule{comm, assoc}, testLimits())
	}
	first := run()
	for i := 0; i < 5; i++ {
		if run() != first {
			t.Fatal("saturation outcome must be reproducible")
		}
	}
	if first != SatDerivable {
		t.Errorf("expected derivable, got %v", first)
	}
}
