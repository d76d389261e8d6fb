package synth

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"github.com/aclements/go-z3/z3"
)

// Z3Oracle decides candidate equalities with the Z3 SMT solver. Each
// Decide call builds a fresh context and solver, so concurrent calls
// never share solver state. The query asserts lhs != rhs: UNSAT proves
// the equality, SAT yields a counterexample assignment from the model.
type Z3Oracle struct {
	dom   Domain
	nvars int
}

func NewZ3Oracle(dom Domain, nvars int) *Z3Oracle {
	return &Z3Oracle{dom: dom, nvars: nvars}
}

type z3query struct {
	ctx     *z3.Context
	solver  *z3.Solver
	dom     Domain
	width   int
	symbols []z3.BV
	cache   map[uint32]z3.BV
}

func (o *Z3Oracle) Decide(ctx context.Context, lhs, rhs *Term) (v Verdict) {
	zctx := z3.NewContext(z3.NewContextConfig())
	stop := interruptOnCancel(ctx, zctx.Interrupt)
	defer stop()
	defer func() {
		if r := recover(); r != nil {
			v = Verdict{Kind: Unknown, Err: fmt.Errorf("solver panic: %v", r)}
		}
		if ctx.Err() != nil {
			v = Verdict{Kind: Unknown, Err: ctx.Err()}
		}
	}()
	return o.decide(zctx, lhs, rhs)
}

// interruptOnCancel interrupts a running Z3 query when ctx is cancelled.
// Interrupt is the one Context method safe to call from another
// goroutine; an interrupted Check returns with an error. The returned
// stop must be called once the query finishes; it waits for the watcher,
// so interrupt is never invoked after stop returns.
func interruptOnCancel(ctx context.Context, interrupt func()) (stop func()) {
	quit := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		select {
		case <-ctx.Done():
			interrupt()
		case <-quit:
		}
	}()
	return func() {
		close(quit)
		<-finished
	}
}

func (o *Z3Oracle) decide(zctx *z3.Context, lhs, rhs *Term) Verdict {
	q := &z3query{
		ctx:   zctx,
		dom:   o.dom,
		width: int(o.dom.Width),
		cache: make(map[uint32]z3.BV),
	}
	q.solver = z3.NewSolver(q.ctx)
	q.symbols = make([]z3.BV, o.nvars)
	for i := 0; i < o.nvars; i++ {
		q.symbols[i] = q.ctx.BVConst(varNames[i], q.width)
	}

	l := q.convert(lhs)
	r := q.convert(rhs)
	q.solver.Assert(l.NE(r))

	sat, err := q.solver.Check()
	if err != nil {
		return Verdict{Kind: Unknown, Err: err}
	}
	if !sat {
		return Verdict{Kind: Proved}
	}

	m := q.solver.Model()
	if m == nil {
		return Verdict{Kind: Unknown, Err: fmt.Errorf("sat without model")}
	}
	cex := make(Assignment, o.nvars)
	for i, sym := range q.symbols {
		v, err := parseZ3Const(m.Eval(sym, true).(z3.BV))
		if err != nil {
			return Verdict{Kind: Unknown, Err: err}
		}
		cex[i] = o.dom.Trunc(v)
	}
	return Verdict{Kind: Disproved, Counterexample: cex}
}

// parseZ3Const decodes a constant bitvector value as Z3 prints it, "#x"
// followed by hex digits or "#b" followed by bits.
func parseZ3Const(c z3.BV) (uint64, error) {
	s := c.String()
	if len(s) < 3 || s[0] != '#' {
		return 0, fmt.Errorf("not a bitvector constant: %q", s)
	}
	base := 0
	switch s[1] {
	case 'x':
		base = 16
	case 'b':
		base = 2
	default:
		return 0, fmt.Errorf("not a bitvector constant: %q", s)
	}
	return strconv.ParseUint(s[2:], base, 64)
}

func (q *z3query) constant(v uint64) z3.BV {
	return q.ctx.FromBigInt(new(big.Int).SetUint64(q.dom.Trunc(v)), q.ctx.BVSort(q.width)).(z3.BV)
}

// convert lowers a term to a Z3 bitvector. Comparisons are mask valued,
// all-ones for true and zero for false, and the conditional tests its
// guard for nonzero, matching the concrete evaluator bit for bit.
func (q *z3query) convert(t *Term) z3.BV {
	if v, ok := q.cache[t.id]; ok {
		return v
	}
	var result z3.BV
	switch t.op {
	case OpVar:
		result = q.symbols[t.varIdx]
	case OpConst:
		result = q.constant(t.val)
	case OpAdd:
		result = q.convert(t.args[0]).Add(q.convert(t.args[1]))
	case OpSub:
		result = q.convert(t.args[0]).Sub(q.convert(t.args[1]))
	case OpMul:
		result = q.convert(t.args[0]).Mul(q.convert(t.args[1]))
	case OpAnd:
		result = q.convert(t.args[0]).And(q.convert(t.args[1]))
	case OpOr:
		result = q.convert(t.args[0]).Or(q.convert(t.args[1]))
	case OpXor:
		result = q.convert(t.args[0]).Xor(q.convert(t.args[1]))
	case OpNeg:
		result = q.convert(t.args[0]).Neg()
	case OpNot:
		result = q.convert(t.args[0]).Not()
	case OpShl:
		result = q.convert(t.args[0]).Lsh(q.convert(t.args[1]))
	case OpLshr:
		result = q.convert(t.args[0]).URsh(q.convert(t.args[1]))
	case OpAshr:
		result = q.convert(t.args[0]).SRsh(q.convert(t.args[1]))
	case OpUlt:
		cond := q.convert(t.args[0]).ULT(q.convert(t.args[1]))
		result = cond.IfThenElse(q.constant(^uint64(0)), q.constant(0)).(z3.BV)
	case OpSlt:
		cond := q.convert(t.args[0]).SLT(q.convert(t.args[1]))
		result = cond.IfThenElse(q.constant(^uint64(0)), q.constant(0)).(z3.BV)
	case OpIte:
		cond := q.convert(t.args[0]).NE(q.constant(0))
		result = cond.IfThenElse(q.convert(t.args[1]), q.convert(t.args[2])).(z3.BV)
	default:
		panic("invalid operator")
	}
	q.cache[t.id] = result
	return result
}
