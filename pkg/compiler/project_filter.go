package compiler

import (
	"github.com/l7mp/dbsp-sql/pkg/circuit"
	"github.com/l7mp/dbsp-sql/pkg/diag"
	"github.com/l7mp/dbsp-sql/pkg/relplan"
	"github.com/l7mp/dbsp-sql/pkg/scalar"
)

// lowerProject emits Map(closure Row -> Tuple(exprs)), casting each projected field to its
// declared result field type. Project never introduces a Distinct.
func (c *Compiler) lowerProject(n *relplan.Project) (circuit.Operator, error) {
	input, err := c.compileNode(n.Input)
	if err != nil {
		return nil, err
	}

	declared, err := c.ConvertType(n.RowType())
	if err != nil {
		return nil, err
	}
	fieldTypes := declared.Fields()
	if len(fieldTypes) != len(n.Exprs) {
		return nil, diag.NewTranslationError(n, "projection field count disagrees with declared row type")
	}

	row := rowVariable(input.OutputType().Elem())
	fields := make([]scalar.Expr, len(n.Exprs))
	for i, rex := range n.Exprs {
		f, err := c.compileExpr(rex, row)
		if err != nil {
			return nil, err
		}
		fields[i] = scalar.CastTo(f, fieldTypes[i])
	}

	body := scalar.NewTuple(fields)
	closure := scalar.NewClosure("proj", []scalar.Param{{Name: "row", Type: row.Type()}}, body)
	return c.pc.Add(circuit.NewMap(input, closure, n)), nil
}

// lowerFilter compiles Condition, wraps it with WRAP_BOOL when nullable (NULL must be treated as
// false, never as true), and emits Filter(closure).
func (c *Compiler) lowerFilter(n *relplan.Filter) (circuit.Operator, error) {
	input, err := c.compileNode(n.Input)
	if err != nil {
		return nil, err
	}

	row := rowVariable(input.OutputType().Elem())
	cond, err := c.compileExpr(n.Condition, row)
	if err != nil {
		return nil, err
	}
	cond = scalar.WrapBool(cond)

	closure := scalar.NewClosure("cond", []scalar.Param{{Name: "row", Type: row.Type()}}, cond)
	return c.pc.Add(circuit.NewFilter(input, closure, n)), nil
}

// lowerValues materializes a constant Z-set of the literal tuples, cast to the declared column
// types. A Values plan node reached through the visitor (as opposed to a DML VALUES clause
// handled directly by tableModify) always becomes a Constant operator.
func (c *Compiler) lowerValues(n *relplan.Values) (circuit.Operator, error) {
	declared, err := c.ConvertType(n.RowType())
	if err != nil {
		return nil, err
	}
	fieldTypes := declared.Fields()

	rows := make([]circuit.ConstantRow, len(n.Rows))
	for i, r := range n.Rows {
		vals, err := evalLiteralRow(r, fieldTypes, n)
		if err != nil {
			return nil, err
		}
		rows[i] = circuit.ConstantRow{Fields: vals, Weight: 1}
	}

	return c.pc.Add(circuit.NewConstant(declared, rows, n)), nil
}
