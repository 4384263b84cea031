package exprcompiler

import (
	"github.com/l7mp/dbsp-sql/pkg/relplan"
	"github.com/l7mp/dbsp-sql/pkg/scalar"
	"github.com/l7mp/dbsp-sql/pkg/types"
)

var binaryOpcode = map[relplan.CallKind]scalar.Opcode{
	relplan.KTimes:             scalar.MUL,
	relplan.KDivide:            scalar.DIV,
	relplan.KMod:               scalar.MOD,
	relplan.KPlus:              scalar.ADD,
	relplan.KMinus:             scalar.SUB,
	relplan.KLessThan:          scalar.LT,
	relplan.KGreaterThan:       scalar.GT,
	relplan.KLessThanOrEqual:   scalar.LTE,
	relplan.KGreaterThanOrEqual: scalar.GTE,
	relplan.KEquals:            scalar.EQ,
	relplan.KNotEquals:         scalar.NEQ,
	relplan.KIsDistinctFrom:    scalar.IS_DISTINCT,
	relplan.KBitAnd:            scalar.BW_AND,
	relplan.KBitOr:             scalar.BW_OR,
	relplan.KBitXor:            scalar.XOR,
}

// makeBinaryExpression implements the common binary-op lowering rule: compute a common type via
// types.Reduce, cast both operands onto it, build the typed Binary node, and cast the result to
// the call's declared output type.
func (c *Compiler) makeBinaryExpression(n *relplan.RexCall, op scalar.Opcode, left, right scalar.Expr) (scalar.Expr, error) {
	declared, err := c.declaredType(n)
	if err != nil {
		return nil, err
	}

	common, err := types.Reduce(left.Type(), right.Type(), n)
	if err != nil {
		return nil, err
	}

	l := scalar.CastTo(left, common)
	r := scalar.CastTo(right, common)

	var resultType *types.Type
	if op.IsComparison() {
		resultType = types.Bool(types.ResultNullability(false, l.Type(), r.Type()))
	} else {
		resultType = common.WithNullable(types.ResultNullability(op == scalar.DIV, l.Type(), r.Type()))
	}

	bin := scalar.NewBinary(op, l, r, resultType)
	return scalar.CastTo(bin, declared), nil
}

// foldBinary left-folds op over args, e.g. PLUS(a,b,c) -> ADD(ADD(a,b),c).
func (c *Compiler) foldBinary(n *relplan.RexCall, op scalar.Opcode, args []scalar.Expr) (scalar.Expr, error) {
	if err := c.requireMinArity(n, args, 1); err != nil {
		return nil, err
	}
	acc := args[0]
	for _, arg := range args[1:] {
		next, err := c.makeBinaryExpression(n, op, acc, arg)
		if err != nil {
			return nil, err
		}
		acc = next
	}
	declared, err := c.declaredType(n)
	if err != nil {
		return nil, err
	}
	return scalar.CastTo(acc, declared), nil
}

func (c *Compiler) foldBoolean(n *relplan.RexCall, op scalar.Opcode, args []scalar.Expr) (scalar.Expr, error) {
	if err := c.requireMinArity(n, args, 1); err != nil {
		return nil, err
	}
	acc := scalar.WrapBool(args[0])
	for _, arg := range args[1:] {
		wrapped := scalar.WrapBool(arg)
		acc = scalar.NewBinary(op, acc, wrapped, types.Bool(false))
	}
	return acc, nil
}
