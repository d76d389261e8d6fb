package synth

import "testing"

func TestSamplesDeterministic(t *testing.T) {
	d := NewDomain(8)
	s1 := NewSamples(d, 2, 4, 16, 42)
	s2 := NewSamples(d, 2, 4, 16, 42)
	if s1.Len() != 20 || s2.Len() != 20 {
		t.Fatalf("invalid sample count: %d", s1.Len())
	}
	for i := 0; i < s1.Len(); i++ {
		p1, p2 := s1.Point(i), s2.Point(i)
		for j := range p1 {
			if p1[j] != p2[j] {
				t.Fatal("same seed must give the same points")
			}
		}
	}
}

func TestExhaustiveSamples(t *testing.T) {
	s := NewExhaustiveSamples(NewDomain(3), 2)
	if s.Len() != 64 {
		t.Errorf("invalid point count: %d", s.Len())
	}
}

func TestFingerprintMatchesEval(t *testing.T) {
	d := NewDomain(8)
	store := NewTermStore(d)
	samples := NewSamples(d, 2, 4, 16, 1)
	ev := NewEvaluator(d, samples, 0)

	e := store.Apply(OpXor, store.Apply(OpAdd, store.Var(0), store.Var(1)), store.Var(0))
	fp := ev.Fingerprint(e)
	if len(fp) != samples.Len() {
		t.Fatalf("invalid fingerprint length: %d", len(fp))
	}
	for i := range fp {
		if fp[i] != ev.EvalAt(e, samples.Point(i)) {
			t.Fatal("fingerprint column must equal direct evaluation")
		}
	}
}

// Adding a counterexample extends every fingerprint with a new column;
// the old columns must survive unchanged, so separated terms stay
// separated.
func TestFingerprintMonotone(t *testing.T) {
	d := NewDomain(8)
	store := NewTermStore(d)
	samples := NewSamples(d, 1, 2, 8, 1)
	ev := NewEvaluator(d, samples, 0)

	e := store.Apply(OpMul, store.Var(0), store.Var(0))
	before := append([]uint64{}, ev.Fingerprint(e)...)

	samples.Add(Assignment{0x5a})
	after := ev.Fingerprint(e)
	if len(after) != len(before)+1 {
		t.Fatalf("invalid extended length: %d", len(after))
	}
	for i := range before {
		if after[i] != before[i] {
			t.Fatal("existing columns must not change")
		}
	}
	if after[len(before)] != d.Mul(0x5a, 0x5a) {
		t.Error("invalid new column")
	}
}

func TestFingerprintAuxColumns(t *testing.T) {
	d := NewDomain(8)
	store := NewTermStore(d)
	samples := NewSamples(d, 1, 2, 4, 1)
	ev := NewEvaluator(d, samples, 1)

	if ev.Columns() != 2*samples.Len() {
		t.Fatalf("invalid column count: %d", ev.Columns())
	}
	a := store.Var(0)
	fp := ev.Fingerprint(a)
	aux := NewDomain(4)
	for i := 0; i < samples.Len(); i++ {
		pt := samples.Point(i)
		if fp[2*i] != pt[0] {
			t.Fatal("invalid primary column")
		}
		if fp[2*i+1] != aux.Trunc(pt[0]) {
			t.Fatal("invalid auxiliary column")
		}
	}
}

// Only the first auxVars variables are reinterpreted at half width;
// raising the count must change fingerprints of terms over the later
// variables.
func TestAuxVarCountHonored(t *testing.T) {
	d := NewDomain(8)
	store := NewTermStore(d)
	samples := &Samples{dom: d, nvars: 2}
	samples.Add(Assignment{0, 0x80})

	sum := store.Apply(OpAdd, store.Var(0), store.Var(1))
	fp1 := NewEvaluator(d, samples, 1).Fingerprint(sum)
	fp2 := NewEvaluator(d, samples, 2).Fingerprint(sum)
	if sameFingerprint(fp1, fp2) {
		t.Error("auxiliary variable count must affect fingerprints")
	}
	// var 1 is untouched at count 1, truncated at count 2
	if fp1[1] != 0x80 || fp2[1] != 0 {
		t.Errorf("invalid auxiliary columns: %#x %#x", fp1[1], fp2[1])
	}
}

// The auxiliary interpretation separates terms that agree at the primary
// width on every sampled point but differ under the half-width variable
// reading.
func TestAuxSharpensPartition(t *testing.T) {
	d := NewDomain(8)
	store := NewTermStore(d)
	samples := &Samples{dom: d, nvars: 1}
	samples.Add(Assignment{0x10})
	ev := NewEvaluator(d, samples, 1)

	a := store.Var(0)
	// the auxiliary column sees ?a as 0x10&0xf = 0, so the shift yields 0
	shifted := store.Apply(OpLshr, a, store.Const(4))
	one := store.Const(1)
	if !sameFingerprint([]uint64{1}, []uint64{ev.EvalAt(shifted, samples.Point(0))}) {
		t.Fatal("invalid primary evaluation")
	}
	fp1, fp2 := ev.Fingerprint(shifted), ev.Fingerprint(one)
	if sameFingerprint(fp1, fp2) {
		t.Error("auxiliary column should separate the terms")
	}
}
