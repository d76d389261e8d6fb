package synth

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Evaluator computes concrete value vectors (fingerprints) for terms over
// the current sample-point set. Fingerprints are cached per term id and
// extended column-wise when the sample set grows, so columns computed
// earlier are never recomputed or reordered: once a sample point separates
// two terms, they stay separated.
//
// When auxVars > 0 every sample point contributes a second column holding
// the term's value with the first auxVars variables truncated to half
// width; the remaining variables and all operators stay at the primary
// width, so each auxiliary column is a genuine derived sample point. The
// extra columns only sharpen the approximate equality filter;
// verification always happens at the primary width.
type Evaluator struct {
	dom     Domain
	aux     Domain
	auxVars int
	samples *Samples
	fps     map[uint32][]uint64
}

func NewEvaluator(dom Domain, samples *Samples, auxVars int) *Evaluator {
	auxWidth := dom.Width / 2
	if auxWidth == 0 {
		auxWidth = 1
	}
	return &Evaluator{
		dom:     dom,
		aux:     NewDomain(auxWidth),
		auxVars: auxVars,
		samples: samples,
		fps:     map[uint32][]uint64{},
	}
}

func (e *Evaluator) stride() int {
	if e.auxVars > 0 {
		return 2
	}
	return 1
}

// Columns returns the current fingerprint length.
func (e *Evaluator) Columns() int {
	return e.samples.Len() * e.stride()
}

// Fingerprint returns the term's value vector over all current sample
// points, computing missing columns from the children's cached vectors.
func (e *Evaluator) Fingerprint(t *Term) []uint64 {
	want := e.Columns()
	fp := e.fps[t.id]
	if len(fp) == want {
		return fp
	}

	childFps := make([][]uint64, len(t.args))
	for i, a := range t.args {
		childFps[i] = e.Fingerprint(a)
	}

	stride := e.stride()
	argv := make([]uint64, len(t.args))
	for col := len(fp); col < want; col++ {
		pt := e.samples.Point(col / stride)
		var v uint64
		switch t.op {
		case OpVar:
			v = e.dom.Trunc(pt[t.varIdx])
			if col%stride == 1 && int(t.varIdx) < e.auxVars {
				v = e.aux.Trunc(v)
			}
		case OpConst:
			v = e.dom.Trunc(t.val)
		default:
			for i := range childFps {
				argv[i] = childFps[i][col]
			}
			v = e.dom.EvalOp(t.op, argv)
		}
		fp = append(fp, v)
	}
	e.fps[t.id] = fp
	return fp
}

// EvalAt evaluates the term under a single assignment at the primary
// width. Used by the exhaustive oracle and the soundness checks.
func (e *Evaluator) EvalAt(t *Term, pt Assignment) uint64 {
	return evalTerm(e.dom, t, pt)
}

func evalTerm(d Domain, t *Term, pt Assignment) uint64 {
	switch t.op {
	case OpVar:
		return d.Trunc(pt[t.varIdx])
	case OpConst:
		return d.Trunc(t.val)
	}
	argv := make([]uint64, len(t.args))
	for i, a := range t.args {
		argv[i] = evalTerm(d, a, pt)
	}
	return d.EvalOp(t.op, argv)
}

// FingerprintKey folds a value vector into a bucket key. Keys can collide;
// callers must confirm with an exact vector comparison.
func FingerprintKey(fp []uint64) uint64 {
	h := xxhash.New()
	var raw [8]byte
	for _, v := range fp {
		binary.LittleEndian.PutUint64(raw[:], v)
		h.Write(raw[:])
	}
	return h.Sum64()
}

func sameFingerprint(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
