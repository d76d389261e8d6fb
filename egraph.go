package synth

import (
	"encoding/binary"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
)

// SatOutcome is the result of a bounded saturation run.
type SatOutcome int

const (
	// SatDerivable: the goal condition was reached; for the validator this
	// means the candidate's two sides joined one class.
	SatDerivable SatOutcome = iota
	// SatExhausted: a fixed point was reached without the goal holding.
	SatExhausted
	// SatBound: a node, iteration or wall-clock bound was hit first.
	// This is expected behavior, not a fault; it is what guarantees
	// termination for every candidate.
	SatBound
)

// SatLimits bounds one saturation run.
type SatLimits struct {
	MaxNodes int
	MaxIters int
	Budget   time.Duration
}

// rewrite is one directed rule application, lhs pattern to rhs template.
type rewrite struct {
	lhs, rhs *Term
}

func varMask(t *Term) uint32 {
	if t.op == OpVar {
		return 1 << t.varIdx
	}
	var m uint32
	for _, a := range t.args {
		m |= varMask(a)
	}
	return m
}

// asRewrites expands verified rules into directed rewrites. Directional
// rules apply left to right only, bidirectional ones both ways. A side
// that is a lone variable matches every class and is never used as a
// match source, and a direction whose template mentions a variable the
// pattern does not bind (as in 0 -> (bvsub ?a ?a)) cannot be applied.
func asRewrites(rules []Rule) []rewrite {
	rws := make([]rewrite, 0, len(rules)*2)
	usable := func(lhs, rhs *Term) bool {
		return !lhs.IsVar() && varMask(rhs)&^varMask(lhs) == 0
	}
	for _, r := range rules {
		if usable(r.LHS, r.RHS) {
			rws = append(rws, rewrite{r.LHS, r.RHS})
		}
		if r.Bidirectional && usable(r.RHS, r.LHS) {
			rws = append(rws, rewrite{r.RHS, r.LHS})
		}
	}
	return rws
}

// enode is one term node in the arena. args hold class ids and are
// re-canonicalized on every rebuild.
type enode struct {
	op     Op
	varIdx uint8
	val    uint64
	args   []uint32
}

// egraph is an arena of term nodes addressed by index, with a union-find
// over node indexes for merged classes. No pointers between nodes, so a
// graph is cheap to build per candidate and needs no sharing discipline.
type egraph struct {
	nodes    []enode
	uf       []uint32
	buckets  map[uint64][]uint32 // canonical signature -> node indexes
	classes  map[uint32][]uint32 // canonical class -> member node indexes
	maxNodes int
	overflow bool
}

func newEgraph(maxNodes int) *egraph {
	return &egraph{
		buckets:  map[uint64][]uint32{},
		classes:  map[uint32][]uint32{},
		maxNodes: maxNodes,
	}
}

func (g *egraph) find(i uint32) uint32 {
	for g.uf[i] != i {
		g.uf[i] = g.uf[g.uf[i]] // path halving
		i = g.uf[i]
	}
	return i
}

// union merges two classes, keeping the smaller root id as canonical so
// that runs are reproducible.
func (g *egraph) union(a, b uint32) {
	ra, rb := g.find(a), g.find(b)
	if ra == rb {
		return
	}
	if ra < rb {
		g.uf[rb] = ra
	} else {
		g.uf[ra] = rb
	}
}

func (g *egraph) canonicalize(i uint32) {
	n := &g.nodes[i]
	for k, a := range n.args {
		n.args[k] = g.find(a)
	}
}

func hashNode(n enode) uint64 {
	h := xxhash.New()
	var raw [8]byte
	raw[0] = byte(n.op)
	raw[1] = n.varIdx
	h.Write(raw[:2])
	binary.LittleEndian.PutUint64(raw[:], n.val)
	h.Write(raw[:])
	for _, a := range n.args {
		binary.LittleEndian.PutUint64(raw[:], uint64(a))
		h.Write(raw[:])
	}
	return h.Sum64()
}

func sameNode(a, b enode) bool {
	if a.op != b.op || a.varIdx != b.varIdx || a.val != b.val || len(a.args) != len(b.args) {
		return false
	}
	for i := range a.args {
		if a.args[i] != b.args[i] {
			return false
		}
	}
	return true
}

// addNode interns a node, returning its class. The second result is false
// when the node budget is exhausted.
func (g *egraph) addNode(op Op, varIdx uint8, val uint64, args []uint32) (uint32, bool) {
	n := enode{op: op, varIdx: varIdx, val: val, args: args}
	for k, a := range n.args {
		n.args[k] = g.find(a)
	}
	h := hashNode(n)
	for _, j := range g.buckets[h] {
		if sameNode(n, g.nodes[j]) {
			return g.find(j), true
		}
	}
	if len(g.nodes) >= g.maxNodes {
		g.overflow = true
		return 0, false
	}
	i := uint32(len(g.nodes))
	g.nodes = append(g.nodes, n)
	g.uf = append(g.uf, i)
	g.buckets[h] = append(g.buckets[h], i)
	return i, true
}

// addTerm interns a whole term, merging structurally equal sub-terms.
func (g *egraph) addTerm(t *Term) (uint32, bool) {
	switch t.op {
	case OpVar:
		return g.addNode(OpVar, t.varIdx, 0, nil)
	case OpConst:
		return g.addNode(OpConst, 0, t.val, nil)
	}
	args := make([]uint32, len(t.args))
	for i, a := range t.args {
		c, ok := g.addTerm(a)
		if !ok {
			return 0, false
		}
		args[i] = c
	}
	return g.addNode(t.op, 0, 0, args)
}

// lookupTerm resolves a term to its class without adding nodes. Only
// meaningful right after a rebuild, when buckets are canonical.
func (g *egraph) lookupTerm(t *Term) (uint32, bool) {
	n := enode{op: t.op, varIdx: t.varIdx, val: t.val}
	if t.op != OpVar && t.op != OpConst {
		n.varIdx = 0
		n.args = make([]uint32, len(t.args))
		for i, a := range t.args {
			c, ok := g.lookupTerm(a)
			if !ok {
				return 0, false
			}
			n.args[i] = g.find(c)
		}
	}
	h := hashNode(n)
	for _, j := range g.buckets[h] {
		if sameNode(n, g.nodes[j]) {
			return g.find(j), true
		}
	}
	return 0, false
}

// rebuild restores the congruence invariant: nodes whose canonical
// signatures collide are merged, repeatedly, until a fixed point. Also
// refreshes the per-class member lists used by matching.
func (g *egraph) rebuild() {
	for {
		changed := false
		g.buckets = make(map[uint64][]uint32, len(g.nodes))
		for i := range g.nodes {
			g.canonicalize(uint32(i))
			h := hashNode(g.nodes[i])
			dup := false
			for _, j := range g.buckets[h] {
				if sameNode(g.nodes[i], g.nodes[j]) {
					if g.find(uint32(i)) != g.find(j) {
						g.union(uint32(i), j)
						changed = true
					}
					dup = true
					break
				}
			}
			if !dup {
				g.buckets[h] = append(g.buckets[h], uint32(i))
			}
		}
		if !changed {
			break
		}
	}
	g.classes = make(map[uint32][]uint32, len(g.nodes))
	for i := range g.nodes {
		c := g.find(uint32(i))
		g.classes[c] = append(g.classes[c], uint32(i))
	}
}

// subst binds rule variables to classes; -1 is unbound.
type subst [maxVars]int32

func emptySubst() subst {
	var s subst
	for i := range s {
		s[i] = -1
	}
	return s
}

// matchPat matches a pattern against a class, invoking yield for every
// consistent variable binding.
func (g *egraph) matchPat(pat *Term, class uint32, s subst, yield func(subst)) {
	class = g.find(class)
	if pat.op == OpVar {
		if s[pat.varIdx] >= 0 {
			if g.find(uint32(s[pat.varIdx])) == class {
				yield(s)
			}
			return
		}
		s[pat.varIdx] = int32(class)
		yield(s)
		return
	}
	for _, i := range g.classes[class] {
		n := g.nodes[i]
		if n.op != pat.op {
			continue
		}
		if pat.op == OpConst {
			if n.val == pat.val {
				yield(s)
			}
			continue
		}
		g.matchArgs(pat.args, n.args, s, yield)
	}
}

func (g *egraph) matchArgs(pats []*Term, classes []uint32, s subst, yield func(subst)) {
	if len(pats) == 0 {
		yield(s)
		return
	}
	g.matchPat(pats[0], classes[0], s, func(s2 subst) {
		g.matchArgs(pats[1:], classes[1:], s2, yield)
	})
}

// instantiate builds the rhs template under a binding, interning any new
// nodes it needs.
func (g *egraph) instantiate(pat *Term, s subst) (uint32, bool) {
	switch pat.op {
	case OpVar:
		return g.find(uint32(s[pat.varIdx])), true
	case OpConst:
		return g.addNode(OpConst, 0, pat.val, nil)
	}
	args := make([]uint32, len(pat.args))
	for i, a := range pat.args {
		c, ok := g.instantiate(a, s)
		if !ok {
			return 0, false
		}
		args[i] = c
	}
	return g.addNode(pat.op, 0, 0, args)
}

type matchRec struct {
	class uint32
	rhs   *Term
	s     subst
}

// run saturates the graph with the given rewrites until stop reports
// success, a fixed point is reached, or a bound trips. stop is evaluated
// only on a freshly rebuilt graph.
func (g *egraph) run(rws []rewrite, lim SatLimits, stop func() bool) SatOutcome {
	deadline := time.Now().Add(lim.Budget)
	for iter := 0; iter < lim.MaxIters; iter++ {
		g.rebuild()
		if stop() {
			return SatDerivable
		}
		if time.Now().After(deadline) {
			return SatBound
		}

		// Collect matches against the frozen graph, then apply. Matching
		// and applying in one pass would make the match set depend on
		// mutation order; sorting the class ids keeps the whole pass
		// reproducible.
		classIDs := make([]uint32, 0, len(g.classes))
		for class := range g.classes {
			classIDs = append(classIDs, class)
		}
		sort.Slice(classIDs, func(i, j int) bool { return classIDs[i] < classIDs[j] })

		var matches []matchRec
		for _, rw := range rws {
			for _, class := range classIDs {
				g.matchPat(rw.lhs, class, emptySubst(), func(s subst) {
					matches = append(matches, matchRec{class: class, rhs: rw.rhs, s: s})
				})
			}
		}

		before := len(g.nodes)
		progress := false
		for _, m := range matches {
			rid, ok := g.instantiate(m.rhs, m.s)
			if !ok {
				return SatBound
			}
			if g.find(rid) != g.find(m.class) {
				g.union(rid, m.class)
				progress = true
			}
		}
		if len(g.nodes) > before {
			progress = true
		}
		if !progress {
			g.rebuild()
			if stop() {
				return SatDerivable
			}
			return SatExhausted
		}
	}
	return SatBound
}

// deriveEqual seeds an e-graph with both sides of a candidate and
// saturates with the verified rules. SatDerivable means the candidate
// follows from the rule set and carries no new information.
func deriveEqual(l, r *Term, rules []Rule, lim SatLimits) SatOutcome {
	g := newEgraph(lim.MaxNodes)
	lc, ok1 := g.addTerm(l)
	rc, ok2 := g.addTerm(r)
	if !ok1 || !ok2 {
		return SatBound
	}
	return g.run(asRewrites(rules), lim, func() bool {
		return g.find(lc) == g.find(rc)
	})
}

// deriveDirected reports whether directed rewriting from src can
// construct dst inside src's class. Unlike deriveEqual the target is not
// seeded, so a rule cannot trivially witness its own reverse.
func deriveDirected(src, dst *Term, rules []Rule, lim SatLimits) bool {
	g := newEgraph(lim.MaxNodes)
	sc, ok := g.addTerm(src)
	if !ok {
		return false
	}
	out := g.run(asRewrites(rules), lim, func() bool {
		c, found := g.lookupTerm(dst)
		return found && g.find(c) == g.find(sc)
	})
	return out == SatDerivable
}
