package synth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestEvaluator(t *testing.T, store *TermStore, nvars int) *Evaluator {
	t.Helper()
	d := store.Domain()
	return NewEvaluator(d, NewSamples(d, nvars, 8, 32, 7), 0)
}

func TestPartitionGroupsEquivalents(t *testing.T) {
	store := NewTermStore(NewDomain(8))
	ev := newTestEvaluator(t, store, 2)
	a, b := store.Var(0), store.Var(1)
	terms := []*Term{
		a,
		store.Apply(OpAdd, a, b),
		store.Apply(OpAdd, b, a),
		store.Apply(OpAnd, a, b),
	}
	classes := partition(terms, ev)
	require.Len(t, classes, 3)

	var sum *equivClass
	for _, c := range classes {
		if len(c.members) == 2 {
			sum = c
		}
	}
	require.NotNil(t, sum, "the two sums must share a class")
	require.Equal(t, store.Apply(OpAdd, a, b), sum.rep, "representative is the oldest smallest term")
}

func TestProposeCandidatesOrientationAndCoverage(t *testing.T) {
	store := NewTermStore(NewDomain(8))
	ev := newTestEvaluator(t, store, 1)
	a := store.Var(0)
	addZero := store.Apply(OpAdd, a, store.Const(0))
	terms := []*Term{a, addZero}

	cands := ProposeCandidates(terms, ev, NewRuleSet(), nil, 0, false)
	require.Len(t, cands, 1)
	require.Equal(t, addZero, cands[0].LHS, "larger side is the rewrite source")
	require.Equal(t, a, cands[0].RHS)

	covered := NewRuleSet().Add(Rule{LHS: addZero, RHS: a})
	require.Empty(t, ProposeCandidates(terms, ev, covered, nil, 0, false),
		"known pairs are not re-proposed")
}

func TestProposeCandidatesSkipsUndecided(t *testing.T) {
	store := NewTermStore(NewDomain(8))
	ev := newTestEvaluator(t, store, 1)
	a := store.Var(0)
	addZero := store.Apply(OpAdd, a, store.Const(0))
	orZero := store.Apply(OpOr, a, store.Const(0))
	terms := []*Term{a, addZero, orZero}

	undecided := map[pairKey]bool{makePairKey(addZero, a): true}
	cands := ProposeCandidates(terms, ev, NewRuleSet(), undecided, 0, false)
	require.Len(t, cands, 1)
	require.Equal(t, orZero, cands[0].LHS, "only the undecided pair is dropped")
}

func TestProposeCandidatesCap(t *testing.T) {
	store := NewTermStore(NewDomain(8))
	ev := newTestEvaluator(t, store, 1)
	a := store.Var(0)
	zero := store.Const(0)
	terms := []*Term{
		a,
		store.Apply(OpAdd, a, zero),
		store.Apply(OpOr, a, zero),
		store.Apply(OpOr, a, a),
	}
	require.Len(t, ProposeCandidates(terms, ev, NewRuleSet(), nil, 2, false), 2)
	require.Len(t, ProposeCandidates(terms, ev, NewRuleSet(), nil, 0, false), 3)
}

func TestProposeCandidatesNonlinearFilter(t *testing.T) {
	store := NewTermStore(NewDomain(8))
	ev := newTestEvaluator(t, store, 2)
	a, b := store.Var(0), store.Var(1)
	mulAB := store.Apply(OpMul, a, b)
	mulBA := store.Apply(OpMul, b, a)
	mulConst := store.Apply(OpMul, a, store.Const(2))
	addSelf := store.Apply(OpAdd, a, a)
	terms := []*Term{a, b, mulAB, mulBA, mulConst, addSelf}

	cands := ProposeCandidates(terms, ev, NewRuleSet(), nil, 0, true)
	for _, c := range cands {
		require.False(t, hasNonlinearMul(c.LHS), "%s", c.LHS)
		require.False(t, hasNonlinearMul(c.RHS), "%s", c.RHS)
	}
	// constant multiples stay eligible
	require.False(t, hasNonlinearMul(mulConst))
	require.True(t, hasNonlinearMul(store.Apply(OpAdd, mulAB, a)))
}

func TestProposeCandidatesNeverIdentical(t *testing.T) {
	store := NewTermStore(NewDomain(8))
	ev := newTestEvaluator(t, store, 1)
	a := store.Var(0)
	terms := []*Term{a, a, store.Apply(OpAnd, a, a)}
	for _, c := range ProposeCandidates(terms, ev, NewRuleSet(), nil, 0, false) {
		require.NotEqual(t, c.LHS.ID(), c.RHS.ID())
	}
}
