package compiler

import (
	"github.com/l7mp/dbsp-sql/pkg/circuit"
	"github.com/l7mp/dbsp-sql/pkg/diag"
	"github.com/l7mp/dbsp-sql/pkg/relplan"
	"github.com/l7mp/dbsp-sql/pkg/scalar"
	"github.com/l7mp/dbsp-sql/pkg/types"
)

// lowerWindow threads Input through each OVER(...) group in turn, every group appending its
// aggregate columns as new trailing fields of the running row, then casts the fully assembled row
// onto the declared output shape in one final Map.
func (c *Compiler) lowerWindow(n *relplan.Window) (circuit.Operator, error) {
	current, err := c.compileNode(n.Input)
	if err != nil {
		return nil, err
	}
	origRowType := current.OutputType().Elem()

	for _, g := range n.Groups {
		current, err = c.lowerWindowGroup(current, origRowType, g, n)
		if err != nil {
			return nil, err
		}
	}

	declared, err := c.ConvertType(n.RowType())
	if err != nil {
		return nil, err
	}
	return c.castRows(current, declared, n), nil
}

// lowerWindowGroup indexes the running row by partition key with value (order field, row), wraps
// WindowAggregate between Differential and Integral, and joins the result back onto the running
// row on (partition, order).
func (c *Compiler) lowerWindowGroup(current circuit.Operator, origRowType *types.Type, g relplan.WindowGroup, n *relplan.Window) (circuit.Operator, error) {
	if len(g.OrderBy) != 1 {
		return nil, diag.NewUnimplementedError(n, "window ORDER BY with a column count other than one")
	}
	ob := g.OrderBy[0]
	if ob.Descending {
		return nil, diag.NewUnimplementedError(n, "window ORDER BY DESCENDING")
	}
	orderType := origRowType.Fields()[ob.Index]
	if orderType.MayBeNull || (orderType.Kind != types.KindInteger && orderType.Kind != types.KindTimestamp) {
		return nil, diag.NewUnimplementedError(n, "window ORDER BY over a nullable or non-integer/timestamp column")
	}

	rowType := current.OutputType().Elem()
	row := rowVariable(rowType)

	partitionFields := make([]scalar.Expr, len(g.PartitionBy))
	partitionTypes := make([]*types.Type, len(g.PartitionBy))
	for i, idx := range g.PartitionBy {
		ft := origRowType.Fields()[idx]
		partitionFields[i] = scalar.NewFieldAccess(row, idx, ft)
		partitionTypes[i] = ft
	}
	partitionKeyType := types.RawTuple(partitionTypes...)
	orderField := scalar.NewFieldAccess(row, ob.Index, orderType)

	indexed := c.indexBy(current, row, scalar.NewRawTuple(partitionFields),
		scalar.NewRawTuple([]scalar.Expr{orderField, row}), "windex", n)

	fold, valueType, err := c.buildFold(g.Calls, origRowType, n)
	if err != nil {
		return nil, err
	}

	ovType := types.RawTuple(orderType, rowType)
	ovVar := scalar.NewVariable("ov", ovType)
	unwrappedRow := scalar.NewFieldAccess(ovVar, 1, rowType)
	step := scalar.NewClosure("step", []scalar.Param{
		fold.Step.Params[0],
		{Name: "ov", Type: ovType},
	}, substVar(fold.Step.Body, fold.Step.Params[1].Name, unwrappedRow))
	winFold := circuit.Fold{Init: fold.Init, Step: step, Finalize: fold.Finalize}

	before := circuit.Bound{Unbounded: g.Before.Unbounded, Offset: g.Before.Value}
	after := circuit.Bound{Unbounded: g.After.Unbounded, Offset: g.After.Value}

	winKeyType := types.RawTuple(partitionKeyType, orderType)
	winOutType := types.RawTuple(winKeyType, valueType)

	diffed := c.pc.Add(circuit.NewDifferential(indexed, n))
	wagg := c.pc.Add(circuit.NewWindowAggregate(diffed, winFold, before, after, winOutType, n))
	winResult := c.pc.Add(circuit.NewIntegral(wagg, n))

	runKey := scalar.NewRawTuple([]scalar.Expr{scalar.NewRawTuple(partitionFields), orderField})
	runIdx := c.indexBy(current, row, runKey, row, "runidx", n)

	lVar := scalar.NewVariable("l", rowType)
	rVar := scalar.NewVariable("r", valueType)
	pairFields := make([]scalar.Expr, 0, len(rowType.Fields())+len(valueType.Fields()))
	for i, ft := range rowType.Fields() {
		pairFields = append(pairFields, scalar.NewFieldAccess(lVar, i, ft))
	}
	for i, ft := range valueType.Fields() {
		pairFields = append(pairFields, scalar.NewFieldAccess(rVar, i, ft))
	}
	pair := scalar.NewClosure("window", []scalar.Param{
		{Name: "k", Type: winKeyType},
		{Name: "l", Type: rowType},
		{Name: "r", Type: valueType},
	}, scalar.NewTuple(pairFields))

	return c.pc.Add(circuit.NewJoin(runIdx, winResult, pair, n)), nil
}
