package synth

// Universe is the growing set of candidate terms. Each Grow call adds one
// level of composition over everything built so far, so the universe at
// iteration i strictly contains the universe at iteration i-1.
type Universe struct {
	store *TermStore
	terms []*Term // insertion order, deterministic
	seen  map[uint32]bool
}

// baseConstants are the constants seeded into the universe: zero, one and
// all-ones cover the identity and annihilator laws.
func baseConstants(dom Domain) []uint64 {
	return []uint64{0, 1, dom.AllOnes()}
}

// NewUniverse seeds the universe with the variables and, unless disabled,
// the base constants.
func NewUniverse(store *TermStore, nvars int, withConsts bool) *Universe {
	u := &Universe{store: store, seen: map[uint32]bool{}}
	for i := 0; i < nvars; i++ {
		u.add(store.Var(i))
	}
	if withConsts {
		for _, c := range baseConstants(store.Domain()) {
			u.add(store.Const(c))
		}
	}
	return u
}

func (u *Universe) add(t *Term) bool {
	if u.seen[t.id] {
		return false
	}
	u.seen[t.id] = true
	u.terms = append(u.terms, t)
	return true
}

// Terms returns the full current universe in insertion order. The slice is
// shared; callers must not mutate it.
func (u *Universe) Terms() []*Term { return u.terms }

func (u *Universe) Len() int { return len(u.terms) }

// Grow composes every enabled operator over the current universe and
// returns the terms that are new this iteration. With commOrder set,
// commutative operators emit only one operand order, shrinking the
// universe at the cost of never surfacing the commutativity rules
// themselves. When allowConsts is false, constant leaves are excluded as
// direct operands; constants already buried inside earlier terms
// persist.
func (u *Universe) Grow(vocab Vocabulary, allowConsts, commOrder bool) []*Term {
	prior := make([]*Term, len(u.terms))
	copy(prior, u.terms)

	usable := func(t *Term) bool {
		return allowConsts || !t.IsConst()
	}

	var added []*Term
	for _, op := range vocab.Operators() {
		switch op.Arity() {
		case 1:
			for _, a := range prior {
				if !usable(a) {
					continue
				}
				if t := u.store.Apply(op, a); u.add(t) {
					added = append(added, t)
				}
			}
		case 2:
			for _, a := range prior {
				if !usable(a) {
					continue
				}
				for _, b := range prior {
					if !usable(b) {
						continue
					}
					if commOrder && op.Commutative() && a.id > b.id {
						continue
					}
					if t := u.store.Apply(op, a, b); u.add(t) {
						added = append(added, t)
					}
				}
			}
		case 3:
			for _, a := range prior {
				if !usable(a) {
					continue
				}
				for _, b := range prior {
					if !usable(b) {
						continue
					}
					for _, c := range prior {
						if !usable(c) {
							continue
						}
						if t := u.store.Apply(op, a, b, c); u.add(t) {
							added = append(added, t)
						}
					}
				}
			}
		}
	}
	return added
}
