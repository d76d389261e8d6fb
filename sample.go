package synth

import (
	"math/rand"
)

// Assignment gives every variable a concrete value, one uint64 per
// variable in index order.
type Assignment []uint64

func (a Assignment) clone() Assignment {
	c := make(Assignment, len(a))
	copy(c, a)
	return c
}

// Samples is the global, append-only set of sample points. It is built
// once per run from a seeded generator plus curated boundary values;
// counterexamples are appended as they are discovered and never removed.
type Samples struct {
	dom    Domain
	nvars  int
	points []Assignment
}

// boundaryPool lists the curated values that catch common bugs cheaply:
// zero, one, all-ones, the signed extremes, and powers of two.
func boundaryPool(dom Domain) []uint64 {
	pool := []uint64{0, 1, dom.AllOnes(), dom.MinSigned(), dom.MaxSigned()}
	for sh := uint(1); sh < dom.Width; sh++ {
		pool = append(pool, uint64(1)<<sh)
	}
	return pool
}

// NewSamples builds the initial sample-point set: boundary assignments
// rotated through the curated pool, then fuzz assignments from the seeded
// generator. The construction is fully determined by its arguments.
func NewSamples(dom Domain, nvars, boundary, fuzz int, seed int64) *Samples {
	s := &Samples{dom: dom, nvars: nvars}
	pool := boundaryPool(dom)
	for j := 0; j < boundary; j++ {
		pt := make(Assignment, nvars)
		for i := range pt {
			pt[i] = pool[(j+i*3)%len(pool)]
		}
		s.points = append(s.points, pt)
	}
	rng := rand.New(rand.NewSource(seed))
	for j := 0; j < fuzz; j++ {
		pt := make(Assignment, nvars)
		for i := range pt {
			pt[i] = dom.Trunc(rng.Uint64())
		}
		s.points = append(s.points, pt)
	}
	return s
}

// NewExhaustiveSamples enumerates the entire finite domain instead of
// sampling. Only tractable for narrow widths; Config.validate guards the
// total point count before this is reached.
func NewExhaustiveSamples(dom Domain, nvars int) *Samples {
	s := &Samples{dom: dom, nvars: nvars}
	total := uint64(1)
	for i := 0; i < nvars; i++ {
		total *= dom.Mask + 1
	}
	for n := uint64(0); n < total; n++ {
		pt := make(Assignment, nvars)
		v := n
		for i := range pt {
			pt[i] = v & dom.Mask
			v >>= dom.Width
		}
		s.points = append(s.points, pt)
	}
	return s
}

func (s *Samples) Len() int { return len(s.points) }
func (s *Samples) Point(i int) Assignment { return s.points[i] }
func (s *Samples) NumVars() int { return s.nvars }

// Add appends a counterexample to the set. Once added, the point is part
// of every later fingerprint and soundness check for the rest of the run.
func (s *Samples) Add(pt Assignment) {
	p := make(Assignment, s.nvars)
	for i := range p {
		if i < len(pt) {
			p[i] = s.dom.Trunc(pt[i])
		}
	}
	s.points = append(s.points, p)
}
