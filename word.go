package synth

// Domain is a fixed-width two's-complement integer domain. Values are kept
// in the low Width bits of a uint64; every operation re-masks its result so
// that the high bits are always zero.
type Domain struct {
	Width uint
	Mask  uint64
}

func NewDomain(width uint) Domain {
	if width == 0 || width > 64 {
		panic("domain width out of range")
	}
	mask := ^uint64(0)
	if width < 64 {
		mask = (uint64(1) << width) - 1
	}
	return Domain{Width: width, Mask: mask}
}

func (d Domain) Trunc(v uint64) uint64 {
	return v & d.Mask
}

func (d Domain) SignBit(v uint64) bool {
	return v>>(d.Width-1)&1 == 1
}

// AsInt64 sign-extends a domain value to a native signed integer.
func (d Domain) AsInt64(v uint64) int64 {
	if d.SignBit(v) {
		return int64(v | ^d.Mask)
	}
	return int64(v)
}

func (d Domain) AllOnes() uint64   { return d.Mask }
func (d Domain) MinSigned() uint64 { return uint64(1) << (d.Width - 1) }
func (d Domain) MaxSigned() uint64 { return d.Mask >> 1 }

func (d Domain) Add(a, b uint64) uint64 { return (a + b) & d.Mask }
func (d Domain) Sub(a, b uint64) uint64 { return (a - b) & d.Mask }
func (d Domain) Mul(a, b uint64) uint64 { return (a * b) & d.Mask }
func (d Domain) And(a, b uint64) uint64 { return a & b }
func (d Domain) Or(a, b uint64) uint64  { return a | b }
func (d Domain) Xor(a, b uint64) uint64 { return a ^ b }
func (d Domain) Neg(a uint64) uint64    { return (-a) & d.Mask }
func (d Domain) Not(a uint64) uint64    { return (^a) & d.Mask }

// Shl shifts left; amounts at or beyond the width yield zero.
func (d Domain) Shl(a, b uint64) uint64 {
	if b >= uint64(d.Width) {
		return 0
	}
	return (a << b) & d.Mask
}

// Lshr shifts right filling with zeros; amounts at or beyond the width
// yield zero.
func (d Domain) Lshr(a, b uint64) uint64 {
	if b >= uint64(d.Width) {
		return 0
	}
	return a >> b
}

// Ashr shifts right replicating the sign bit; amounts at or beyond the
// width yield all-ones for negative values and zero otherwise.
func (d Domain) Ashr(a, b uint64) uint64 {
	if b >= uint64(d.Width) {
		if d.SignBit(a) {
			return d.Mask
		}
		return 0
	}
	return uint64(d.AsInt64(a)>>b) & d.Mask
}

// Ult and Slt are mask-valued comparisons: all-ones when the relation
// holds, zero otherwise. This keeps the term language single-sorted.
func (d Domain) Ult(a, b uint64) uint64 {
	if a < b {
		return d.Mask
	}
	return 0
}

func (d Domain) Slt(a, b uint64) uint64 {
	if d.AsInt64(a) < d.AsInt64(b) {
		return d.Mask
	}
	return 0
}

// Ite selects its second operand when the first is nonzero.
func (d Domain) Ite(c, a, b uint64) uint64 {
	if c != 0 {
		return a
	}
	return b
}

// EvalOp applies an operator to already-masked argument values.
func (d Domain) EvalOp(op Op, args []uint64) uint64 {
	switch op {
	case OpAdd:
		return d.Add(args[0], args[1])
	case OpSub:
		return d.Sub(args[0], args[1])
	case OpMul:
		return d.Mul(args[0], args[1])
	case OpAnd:
		return d.And(args[0], args[1])
	case OpOr:
		return d.Or(args[0], args[1])
	case OpXor:
		return d.Xor(args[0], args[1])
	case OpNeg:
		return d.Neg(args[0])
	case OpNot:
		return d.Not(args[0])
	case OpShl:
		return d.Shl(args[0], args[1])
	case OpLshr:
		return d.Lshr(args[0], args[1])
	case OpAshr:
		return d.Ashr(args[0], args[1])
	case OpUlt:
		return d.Ult(args[0], args[1])
	case OpSlt:
		return d.Slt(args[0], args[1])
	case OpIte:
		return d.Ite(args[0], args[1], args[2])
	default:
		panic("EvalOp: not an operator")
	}
}
