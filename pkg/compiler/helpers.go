package compiler

import (
	"github.com/l7mp/dbsp-sql/pkg/circuit"
	"github.com/l7mp/dbsp-sql/pkg/diag"
	"github.com/l7mp/dbsp-sql/pkg/scalar"
	"github.com/l7mp/dbsp-sql/pkg/types"
)

// castRows emits a Map that casts every field of op's row type onto target, or returns op
// unchanged if the types already agree. Used by Union/Minus to widen operand nullability onto
// the declared output row type before summing.
func (c *Compiler) castRows(op circuit.Operator, target *types.Type, source diag.PlanNode) circuit.Operator {
	srcType := op.OutputType().Elem()
	if srcType.Equal(target) {
		return op
	}

	row := rowVariable(srcType)
	srcFields := srcType.Fields()
	fields := make([]scalar.Expr, len(target.Fields()))
	for i, ft := range target.Fields() {
		fields[i] = scalar.CastTo(scalar.NewFieldAccess(row, i, srcFields[i]), ft)
	}

	closure := scalar.NewClosure("cast", []scalar.Param{{Name: "row", Type: srcType}}, scalar.NewTuple(fields))
	return c.pc.Add(circuit.NewMap(op, closure, source))
}

// indexBy emits an Index operator over op, keyed by key and carrying value, both built from the
// same row variable.
func (c *Compiler) indexBy(op circuit.Operator, row *scalar.Variable, key, value scalar.Expr, name string, source diag.PlanNode) circuit.Operator {
	pair := scalar.NewRawTuple([]scalar.Expr{key, value})
	closure := scalar.NewClosure(name, []scalar.Param{{Name: row.Name, Type: row.Type()}}, pair)
	return c.pc.Add(circuit.NewIndex(op, closure, source))
}
