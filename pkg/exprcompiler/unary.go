package exprcompiler

import (
	"github.com/l7mp/dbsp-sql/pkg/relplan"
	"github.com/l7mp/dbsp-sql/pkg/scalar"
	"github.com/l7mp/dbsp-sql/pkg/types"
)

var unaryNullTest = map[relplan.CallKind]scalar.Opcode{
	relplan.KIsNull:     scalar.IS_NULL,
	relplan.KIsNotNull:  scalar.IS_NOT_NULL,
	relplan.KIsTrue:     scalar.IS_TRUE,
	relplan.KIsFalse:    scalar.IS_FALSE,
	relplan.KIsNotTrue:  scalar.IS_NOT_TRUE,
	relplan.KIsNotFalse: scalar.IS_NOT_FALSE,
}

// compileUnaryNullTest handles the IS_{NULL,NOT_NULL,TRUE,FALSE,NOT_TRUE,NOT_FALSE} family: all
// produce a non-null Bool regardless of the operand's own nullability.
func (c *Compiler) compileUnaryNullTest(n *relplan.RexCall, op scalar.Opcode, operand scalar.Expr) (scalar.Expr, error) {
	return scalar.NewUnary(op, operand, types.Bool(false)), nil
}

func (c *Compiler) compileNot(n *relplan.RexCall, operand scalar.Expr) (scalar.Expr, error) {
	wrapped := scalar.WrapBool(operand)
	return scalar.NewUnary(scalar.NOT, wrapped, types.Bool(false)), nil
}

func (c *Compiler) compileUnaryArith(n *relplan.RexCall, op scalar.Opcode, operand scalar.Expr) (scalar.Expr, error) {
	declared, err := c.declaredType(n)
	if err != nil {
		return nil, err
	}
	return scalar.CastTo(scalar.NewUnary(op, operand, operand.Type()), declared), nil
}

func (c *Compiler) compileCast(n *relplan.RexCall, operand scalar.Expr) (scalar.Expr, error) {
	declared, err := c.declaredType(n)
	if err != nil {
		return nil, err
	}
	return scalar.CastTo(operand, declared), nil
}
