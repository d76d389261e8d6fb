package synth

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// varNames are the placeholder names available to rules. NumVars selects a
// prefix of this list.
var varNames = [...]string{"a", "b", "c", "d", "e", "f", "g", "h"}

const maxVars = len(varNames)

// Term is an immutable hash-consed term. Terms are created only through a
// TermStore, so two structurally equal terms from the same store share one
// node and one id. Ids are assigned in allocation order; every ordering in
// the pipeline derives from them, which keeps runs reproducible.
type Term struct {
	id      uint32
	op      Op
	varIdx  uint8  // OpVar only
	val     uint64 // OpConst only, already masked
	args    []*Term
	size    uint32 // node count, the complexity metric
	opsMask uint32 // bit per Op present in the subtree
}

func (t *Term) ID() uint32 { return t.id }
func (t *Term) Op() Op { return t.op }
func (t *Term) Size() int { return int(t.size) }
func (t *Term) Args() []*Term { return t.args }

func (t *Term) IsVar() bool { return t.op == OpVar }
func (t *Term) IsConst() bool { return t.op == OpConst }

func (t *Term) VarIndex() int { return int(t.varIdx) }
func (t *Term) Const() uint64 { return t.val }

// ContainsOp reports whether op occurs anywhere in the term.
func (t *Term) ContainsOp(op Op) bool {
	return t.opsMask&(1<<uint(op)) != 0
}

// ContainsClass reports whether any operator of the class occurs in the
// term.
func (t *Term) ContainsClass(c OpClass) bool {
	for op := OpAdd; op < numOps; op++ {
		if opTable[op].class == c && t.ContainsOp(op) {
			return true
		}
	}
	return false
}

// String renders the term in fully-parenthesized prefix notation, with
// free variables carrying a leading '?'.
func (t *Term) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *Term) write(b *strings.Builder) {
	switch t.op {
	case OpVar:
		b.WriteByte('?')
		b.WriteString(varNames[t.varIdx])
	case OpConst:
		fmt.Fprintf(b, "%d", t.val)
	default:
		b.WriteByte('(')
		b.WriteString(t.op.String())
		for _, a := range t.args {
			b.WriteByte(' ')
			a.write(b)
		}
		b.WriteByte(')')
	}
}

type TermStoreStats struct {
	CacheHits    uint `yaml:"cache_hits"`
	CacheLookups uint `yaml:"cache_lookups"`
	Terms        uint `yaml:"terms"`
}

// TermStore hash-conses terms. It is not safe for concurrent use; the
// pipeline only creates terms from the single-writer orchestration path.
type TermStore struct {
	dom     Domain
	buckets map[uint64][]*Term
	terms   []*Term

	Stats TermStoreStats
}

func NewTermStore(dom Domain) *TermStore {
	return &TermStore{
		dom:     dom,
		buckets: map[uint64][]*Term{},
	}
}

func (s *TermStore) Domain() Domain { return s.dom }

// Len returns the number of distinct terms created so far.
func (s *TermStore) Len() int { return len(s.terms) }

// ByID returns the term with the given id.
func (s *TermStore) ByID(id uint32) *Term { return s.terms[id] }

func hashTerm(op Op, varIdx uint8, val uint64, args []*Term) uint64 {
	h := xxhash.New()
	var raw [8]byte
	raw[0] = byte(op)
	raw[1] = varIdx
	h.Write(raw[:2])
	binary.LittleEndian.PutUint64(raw[:], val)
	h.Write(raw[:])
	for _, a := range args {
		binary.LittleEndian.PutUint64(raw[:], uint64(a.id))
		h.Write(raw[:])
	}
	return h.Sum64()
}

func shallowEq(t *Term, op Op, varIdx uint8, val uint64, args []*Term) bool {
	if t.op != op || t.varIdx != varIdx || t.val != val || len(t.args) != len(args) {
		return false
	}
	for i := range args {
		if t.args[i] != args[i] {
			return false
		}
	}
	return true
}

func (s *TermStore) getOrCreate(op Op, varIdx uint8, val uint64, args []*Term) *Term {
	s.Stats.CacheLookups++
	h := hashTerm(op, varIdx, val, args)
	for _, t := range s.buckets[h] {
		if shallowEq(t, op, varIdx, val, args) {
			s.Stats.CacheHits++
			return t
		}
	}
	size := 1
	mask := uint32(1) << uint(op)
	for _, a := range args {
		size += int(a.size)
		mask |= a.opsMask
	}
	t := &Term{
		id:      uint32(len(s.terms)),
		op:      op,
		varIdx:  varIdx,
		val:     val,
		args:    args,
		size:    uint32(size),
		opsMask: mask,
	}
	s.buckets[h] = append(s.buckets[h], t)
	s.terms = append(s.terms, t)
	s.Stats.Terms++
	return t
}

// Var returns the i-th placeholder variable.
func (s *TermStore) Var(i int) *Term {
	if i < 0 || i >= maxVars {
		panic("variable index out of range")
	}
	return s.getOrCreate(OpVar, uint8(i), 0, nil)
}

// Const returns the constant term for v truncated to the store width.
func (s *TermStore) Const(v uint64) *Term {
	return s.getOrCreate(OpConst, 0, s.dom.Trunc(v), nil)
}

// Apply builds op(args...). Unlike a simplifying expression builder, the
// store performs no rewriting: enumeration has to surface terms such as
// (bvadd ?a 0) verbatim or the corresponding rules could never be
// discovered.
func (s *TermStore) Apply(op Op, args ...*Term) *Term {
	if op.Arity() != len(args) {
		panic(fmt.Sprintf("Apply(%s): want %d args, got %d", op, op.Arity(), len(args)))
	}
	held := make([]*Term, len(args))
	copy(held, args)
	return s.getOrCreate(op, 0, 0, held)
}
