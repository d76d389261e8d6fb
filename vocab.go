package synth

type Op uint8

const (
	OpVar Op = iota
	OpConst

	OpAdd
	OpSub
	OpMul
	OpAnd
	OpOr
	OpXor
	OpNeg
	OpNot
	OpShl
	OpLshr
	OpAshr
	OpUlt
	OpSlt
	OpIte

	numOps
)

// OpClass groups operators for the disable flags: a disabled class is
// permanently absent from enumeration, including as a sub-term.
type OpClass uint8

const (
	ClassLeaf OpClass = iota
	ClassArith
	ClassBitwise
	ClassShift
	ClassMul
	ClassCond
)

type opInfo struct {
	name        string
	arity       int
	class       OpClass
	commutative bool
}

var opTable = [numOps]opInfo{
	OpVar:   {"var", 0, ClassLeaf, false},
	OpConst: {"const", 0, ClassLeaf, false},
	OpAdd:   {"bvadd", 2, ClassArith, true},
	OpSub:   {"bvsub", 2, ClassArith, false},
	OpMul:   {"bvmul", 2, ClassMul, true},
	OpAnd:   {"bvand", 2, ClassBitwise, true},
	OpOr:    {"bvor", 2, ClassBitwise, true},
	OpXor:   {"bvxor", 2, ClassBitwise, true},
	OpNeg:   {"bvneg", 1, ClassArith, false},
	OpNot:   {"bvnot", 1, ClassBitwise, false},
	OpShl:   {"bvshl", 2, ClassShift, false},
	OpLshr:  {"bvlshr", 2, ClassShift, false},
	OpAshr:  {"bvashr", 2, ClassShift, false},
	OpUlt:   {"ult", 2, ClassCond, false},
	OpSlt:   {"slt", 2, ClassCond, false},
	OpIte:   {"ite", 3, ClassCond, false},
}

// OpByName resolves an operator by its report name, e.g. "bvadd".
func OpByName(name string) (Op, bool) {
	for op := OpAdd; op < numOps; op++ {
		if opTable[op].name == name {
			return op, true
		}
	}
	return 0, false
}

func (o Op) String() string { return opTable[o].name }
func (o Op) Arity() int { return opTable[o].arity }
func (o Op) Class() OpClass { return opTable[o].class }
func (o Op) Commutative() bool { return opTable[o].commutative }

// Vocabulary is the set of operators enabled for enumeration.
type Vocabulary struct {
	enabled [numOps]bool
}

func DefaultVocabulary() Vocabulary {
	var v Vocabulary
	for op := OpAdd; op < numOps; op++ {
		v.enabled[op] = true
	}
	return v
}

func (v *Vocabulary) DisableClass(c OpClass) {
	for op := OpAdd; op < numOps; op++ {
		if opTable[op].class == c {
			v.enabled[op] = false
		}
	}
}

func (v *Vocabulary) DisableOp(op Op) {
	v.enabled[op] = false
}

func (v Vocabulary) Enabled(op Op) bool {
	return v.enabled[op]
}

func (v Vocabulary) Empty() bool {
	for op := OpAdd; op < numOps; op++ {
		if v.enabled[op] {
			return false
		}
	}
	return true
}

// Operators returns the enabled operators in declaration order, which is
// the order enumeration visits them.
func (v Vocabulary) Operators() []Op {
	ops := make([]Op, 0, int(numOps))
	for op := OpAdd; op < numOps; op++ {
		if v.enabled[op] {
			ops = append(ops, op)
		}
	}
	return ops
}
