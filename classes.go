package synth

// Candidate is one conjectured equality, already oriented: LHS is the
// structurally larger side (ties broken toward the younger term).
type Candidate struct {
	LHS *Term
	RHS *Term
}

// pairKey identifies an unordered term pair by its sorted ids.
type pairKey [2]uint32

func makePairKey(a, b *Term) pairKey {
	if a.id < b.id {
		return pairKey{a.id, b.id}
	}
	return pairKey{b.id, a.id}
}

// equivClass groups terms whose fingerprints agree on every sample point.
type equivClass struct {
	rep     *Term
	members []*Term
}

// partition splits the terms into approximate equivalence classes by
// fingerprint. Classes come out in first-seen order and members keep
// insertion order, so the whole pipeline downstream is deterministic.
// Bucket keys can collide; membership is confirmed by exact vector
// comparison.
func partition(terms []*Term, ev *Evaluator) []*equivClass {
	type bucket struct {
		fp    []uint64
		class *equivClass
	}
	buckets := map[uint64][]*bucket{}
	var classes []*equivClass
	for _, t := range terms {
		fp := ev.Fingerprint(t)
		key := FingerprintKey(fp)
		var cls *equivClass
		for _, b := range buckets[key] {
			if sameFingerprint(fp, b.fp) {
				cls = b.class
				break
			}
		}
		if cls == nil {
			cls = &equivClass{rep: t}
			buckets[key] = append(buckets[key], &bucket{fp: fp, class: cls})
			classes = append(classes, cls)
		}
		if t.Size() < cls.rep.Size() || (t.Size() == cls.rep.Size() && t.id < cls.rep.id) {
			cls.rep = t
		}
		cls.members = append(cls.members, t)
	}
	return classes
}

// orientPair puts the structurally larger side on the left. Equal sizes
// orient toward the younger term so the choice is stable across runs.
func orientPair(a, b *Term) (lhs, rhs *Term) {
	if a.Size() > b.Size() || (a.Size() == b.Size() && a.id > b.id) {
		return a, b
	}
	return b, a
}

// ProposeCandidates turns the fingerprint partition into oriented
// candidate equalities: each class member is paired with the class
// representative, the smallest term in the class. Pairs the rule set
// already covers are skipped here, as are pairs in the undecided set,
// the ones the oracle already gave up on this run; the saturation
// pre-filter and the oracle run later, per candidate. With
// noNonlinearMatch set, terms containing a multiplication of two
// non-constant operands never appear in a candidate.
//
// limit caps the number of candidates; zero or negative means no cap.
func ProposeCandidates(terms []*Term, ev *Evaluator, rules *RuleSet, undecided map[pairKey]bool, limit int, noNonlinearMatch bool) []Candidate {
	eligible := terms
	if noNonlinearMatch {
		eligible = make([]*Term, 0, len(terms))
		for _, t := range terms {
			if !hasNonlinearMul(t) {
				eligible = append(eligible, t)
			}
		}
	}

	var out []Candidate
	for _, cls := range partition(eligible, ev) {
		for _, m := range cls.members {
			if m.id == cls.rep.id {
				continue
			}
			if rules.Covers(m, cls.rep) {
				continue
			}
			if undecided[makePairKey(m, cls.rep)] {
				continue
			}
			lhs, rhs := orientPair(m, cls.rep)
			out = append(out, Candidate{LHS: lhs, RHS: rhs})
			if limit > 0 && len(out) >= limit {
				return out
			}
		}
	}
	return out
}

// hasNonlinearMul reports whether any multiplication in the term has two
// non-constant operands.
func hasNonlinearMul(t *Term) bool {
	if t.op == OpMul && !t.args[0].IsConst() && !t.args[1].IsConst() {
		return true
	}
	for _, a := range t.args {
		if hasNonlinearMul(a) {
			return true
		}
	}
	return false
}
