package compiler

import (
	"github.com/l7mp/dbsp-sql/pkg/circuit"
	"github.com/l7mp/dbsp-sql/pkg/diag"
	"github.com/l7mp/dbsp-sql/pkg/relplan"
	"github.com/l7mp/dbsp-sql/pkg/scalar"
	"github.com/l7mp/dbsp-sql/pkg/types"
)

// lowerCorrelate only recognizes the decorrelated-unnest shape: Apply is an Uncollect over a
// Project over a placeholder Values row. Everything that shape needs from the outer row is named
// by RequiredColumns; the rest of Apply's subtree exists only to carry the upstream's own
// correlation-variable plumbing and is not otherwise consulted.
func (c *Compiler) lowerCorrelate(n *relplan.Correlate) (circuit.Operator, error) {
	uncollect, ok := n.Apply.(*relplan.Uncollect)
	if !ok {
		return nil, diag.NewUnimplementedError(n, "correlate shape other than decorrelated UNNEST")
	}
	proj, ok := uncollect.Input.(*relplan.Project)
	if !ok {
		return nil, diag.NewUnimplementedError(n, "correlate shape other than decorrelated UNNEST")
	}
	if _, ok := proj.Input.(*relplan.Values); !ok {
		return nil, diag.NewUnimplementedError(n, "correlate shape other than decorrelated UNNEST")
	}
	if len(n.RequiredColumns) != 1 {
		return nil, diag.NewUnimplementedError(n, "correlate over more than one unnested column")
	}

	input, err := c.compileNode(n.Input)
	if err != nil {
		return nil, err
	}
	rowType := input.OutputType().Elem()
	arrIdx := n.RequiredColumns[0]
	arrType := rowType.Fields()[arrIdx]
	elemType := arrType.Elem()

	row := rowVariable(rowType)
	arr := scalar.NewFieldAccess(row, arrIdx, arrType)

	outFields := append(append([]*types.Type{}, rowType.Fields()...), elemType)
	primitive := "unnest_with_row"
	if uncollect.WithOrdinal {
		outFields = append(outFields, types.I64(false))
		primitive = "unnest_with_row_ordinal"
	}
	outVecType := types.Vec(types.Tuple(outFields...))

	body := scalar.NewApply(primitive, []scalar.Expr{row, arr}, outVecType)
	closure := scalar.NewClosure("expand", []scalar.Param{{Name: "row", Type: rowType}}, body)
	flat := c.pc.Add(circuit.NewFlatMap(input, closure, n))

	declared, err := c.ConvertType(n.RowType())
	if err != nil {
		return nil, err
	}
	return c.castRows(flat, declared, n), nil
}

// lowerUncollect flattens field Column of Input, a FlatMap over a Vec-typed column.
func (c *Compiler) lowerUncollect(n *relplan.Uncollect) (circuit.Operator, error) {
	input, err := c.compileNode(n.Input)
	if err != nil {
		return nil, err
	}
	rowType := input.OutputType().Elem()
	arrType := rowType.Fields()[n.Column]
	elemType := arrType.Elem()
	row := rowVariable(rowType)

	var body scalar.Expr = scalar.NewFieldAccess(row, n.Column, arrType)
	if n.WithOrdinal {
		outVecType := types.Vec(types.Tuple(elemType, types.I64(false)))
		body = scalar.NewApply("unnest_with_ordinal", []scalar.Expr{body}, outVecType)
	}

	closure := scalar.NewClosure("expand", []scalar.Param{{Name: "row", Type: rowType}}, body)
	flat := c.pc.Add(circuit.NewFlatMap(input, closure, n))

	declared, err := c.ConvertType(n.RowType())
	if err != nil {
		return nil, err
	}
	return c.castRows(flat, declared, n), nil
}
