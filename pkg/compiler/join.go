package compiler

import (
	"github.com/l7mp/dbsp-sql/pkg/circuit"
	"github.com/l7mp/dbsp-sql/pkg/diag"
	"github.com/l7mp/dbsp-sql/pkg/relplan"
	"github.com/l7mp/dbsp-sql/pkg/scalar"
	"github.com/l7mp/dbsp-sql/pkg/types"
)

// equiKey is one equi-key comparison extracted from a Join condition: a field of Left equated to
// a field of Right.
type equiKey struct {
	leftIdx, rightIdx int
}

// lowerJoin analyzes Condition into equi-key comparisons plus a leftover predicate, indexes both
// sides by the key tuple (after filtering NULL keys), joins, and reattaches the leftover predicate
// as a Filter. Outer joins union in the unmatched rows of the outer side, NULL-extended.
func (c *Compiler) lowerJoin(n *relplan.Join) (circuit.Operator, error) {
	if n.Type == relplan.JoinSemi || n.Type == relplan.JoinAnti {
		return nil, diag.NewUnimplementedError(n, "SEMI/ANTI join")
	}

	left, err := c.compileNode(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.compileNode(n.Right)
	if err != nil {
		return nil, err
	}

	leftType := left.OutputType().Elem()
	rightType := right.OutputType().Elem()
	leftArity := len(leftType.Fields())

	keys, leftover := analyzeEquiKeys(n.Condition, leftArity)

	declared, err := c.ConvertType(n.RowType())
	if err != nil {
		return nil, err
	}

	lRow := rowVariable(leftType)
	rRow := rowVariable(rightType)

	keyFieldTypes := make([]*types.Type, len(keys))
	lKeyFields := make([]scalar.Expr, len(keys))
	rKeyFields := make([]scalar.Expr, len(keys))
	for i, k := range keys {
		lt := leftType.Fields()[k.leftIdx]
		rt := rightType.Fields()[k.rightIdx]
		kt, err := types.Reduce(lt, rt, n)
		if err != nil {
			return nil, err
		}
		kt = kt.WithNullable(false)
		keyFieldTypes[i] = kt
		lKeyFields[i] = scalar.CastTo(scalar.NewFieldAccess(lRow, k.leftIdx, lt), kt)
		rKeyFields[i] = scalar.CastTo(scalar.NewFieldAccess(rRow, k.rightIdx, rt), kt)
	}
	keyType := types.RawTuple(keyFieldTypes...)

	lFiltered := c.filterNullKeys(left, lRow, keys, true, n)
	rFiltered := c.filterNullKeys(right, rRow, keys, false, n)

	lIdx := c.indexBy(lFiltered, lRow, scalar.NewRawTuple(lKeyFields), lRow, "join_l", n)
	rIdx := c.indexBy(rFiltered, rRow, scalar.NewRawTuple(rKeyFields), rRow, "join_r", n)

	lVar := scalar.NewVariable("l", leftType)
	rVar := scalar.NewVariable("r", rightType)
	pairFields := make([]scalar.Expr, len(declared.Fields()))
	for i, ft := range declared.Fields() {
		if i < leftArity {
			pairFields[i] = scalar.CastTo(scalar.NewFieldAccess(lVar, i, leftType.Fields()[i]), ft)
		} else {
			pairFields[i] = scalar.CastTo(scalar.NewFieldAccess(rVar, i-leftArity, rightType.Fields()[i-leftArity]), ft)
		}
	}
	pair := scalar.NewClosure("join", []scalar.Param{
		{Name: "k", Type: keyType},
		{Name: "l", Type: leftType},
		{Name: "r", Type: rightType},
	}, scalar.NewTuple(pairFields))

	joined := c.pc.Add(circuit.NewJoin(lIdx, rIdx, pair, n))

	if leftover != nil {
		row := rowVariable(joined.OutputType().Elem())
		cond, err := c.compileExpr(leftover, row)
		if err != nil {
			return nil, err
		}
		cond = scalar.WrapBool(cond)
		closure := scalar.NewClosure("cond", []scalar.Param{{Name: "row", Type: row.Type()}}, cond)
		joined = c.pc.Add(circuit.NewFilter(joined, closure, n))
	}

	switch n.Type {
	case relplan.JoinInner:
		return joined, nil
	case relplan.JoinLeft:
		return c.unionUnmatched(joined, left, declared, leftArity, true, n)
	case relplan.JoinRight:
		return c.unionUnmatched(joined, right, declared, leftArity, false, n)
	case relplan.JoinFull:
		withLeft, err := c.unionUnmatched(joined, left, declared, leftArity, true, n)
		if err != nil {
			return nil, err
		}
		return c.unionUnmatched(withLeft, right, declared, leftArity, false, n)
	default:
		return nil, diag.NewUnimplementedError(n, "join type")
	}
}

// analyzeEquiKeys flattens Condition's top-level AND and splits out every conjunct of the shape
// Left.i = Right.j into an equiKey, re-conjoining everything else into the leftover predicate
// (nil if nothing is left over).
func analyzeEquiKeys(cond relplan.Rex, leftArity int) ([]equiKey, relplan.Rex) {
	conjuncts := flattenAnd(cond)

	var keys []equiKey
	var rest []relplan.Rex
	for _, rex := range conjuncts {
		if k, ok := asEquiKey(rex, leftArity); ok {
			keys = append(keys, k)
			continue
		}
		rest = append(rest, rex)
	}

	return keys, rebuildAnd(rest)
}

func flattenAnd(rex relplan.Rex) []relplan.Rex {
	call, ok := rex.(*relplan.RexCall)
	if !ok || call.Kind != relplan.KAnd {
		return []relplan.Rex{rex}
	}
	var out []relplan.Rex
	for _, op := range call.Operands {
		out = append(out, flattenAnd(op)...)
	}
	return out
}

func rebuildAnd(conjuncts []relplan.Rex) relplan.Rex {
	switch len(conjuncts) {
	case 0:
		return nil
	case 1:
		return conjuncts[0]
	default:
		acc := conjuncts[0]
		boolType := &relplan.RelDataType{Kind: relplan.TBoolean}
		for _, rex := range conjuncts[1:] {
			acc = relplan.NewRexCall(relplan.KAnd, []relplan.Rex{acc, rex}, boolType)
		}
		return acc
	}
}

// asEquiKey recognizes rex as Left.i = Right.j (in either operand order), translating the
// combined-row field indices back into per-side indices.
func asEquiKey(rex relplan.Rex, leftArity int) (equiKey, bool) {
	call, ok := rex.(*relplan.RexCall)
	if !ok || call.Kind != relplan.KEquals || len(call.Operands) != 2 {
		return equiKey{}, false
	}
	a, aok := call.Operands[0].(*relplan.RexInputRef)
	b, bok := call.Operands[1].(*relplan.RexInputRef)
	if !aok || !bok {
		return equiKey{}, false
	}
	aLeft := a.Index < leftArity
	bLeft := b.Index < leftArity
	if aLeft == bLeft {
		return equiKey{}, false
	}
	if aLeft {
		return equiKey{leftIdx: a.Index, rightIdx: b.Index - leftArity}, true
	}
	return equiKey{leftIdx: b.Index, rightIdx: a.Index - leftArity}, true
}

// filterNullKeys drops rows where any equi-key field referenced on this side is NULL, so the
// subsequent Index never sees a NULL key (outer-join key-column nullability is removed by this
// filter, not carried into the index).
func (c *Compiler) filterNullKeys(op circuit.Operator, row *scalar.Variable, keys []equiKey, isLeft bool, source diag.PlanNode) circuit.Operator {
	rowType := row.Type()
	var cond scalar.Expr
	for _, k := range keys {
		idx := k.leftIdx
		if !isLeft {
			idx = k.rightIdx
		}
		ft := rowType.Fields()[idx]
		if !ft.MayBeNull {
			continue
		}
		notNull := scalar.NewUnary(scalar.IS_NOT_NULL, scalar.NewFieldAccess(row, idx, ft), types.Bool(false))
		if cond == nil {
			cond = notNull
		} else {
			cond = scalar.NewBinary(scalar.AND, cond, notNull, types.Bool(false))
		}
	}
	if cond == nil {
		return op
	}
	closure := scalar.NewClosure("keynn", []scalar.Param{{Name: row.Name, Type: rowType}}, cond)
	return c.pc.Add(circuit.NewFilter(op, closure, source))
}

// unionUnmatched computes L_un = Distinct(side - Distinct(Project_side(joined))), NULL-extends
// each unmatched row onto the declared output shape, and sums it with joined.
func (c *Compiler) unionUnmatched(joined, side circuit.Operator, declared *types.Type, leftArity int, isLeft bool, source diag.PlanNode) (circuit.Operator, error) {
	offset := 0
	if !isLeft {
		offset = leftArity
	}
	unmatched := c.unmatchedSide(joined, side, offset, source)
	extended := c.extendWithNulls(unmatched, declared, leftArity, isLeft, source)
	return c.pc.Add(circuit.NewSum([]circuit.Operator{joined, extended}, source)), nil
}

func (c *Compiler) unmatchedSide(joined, side circuit.Operator, offset int, source diag.PlanNode) circuit.Operator {
	sideType := side.OutputType().Elem()
	proj := c.projectCols(joined, offset, sideType, source)
	projDistinct := c.pc.Add(circuit.NewDistinct(proj, source))
	neg := c.pc.Add(circuit.NewNegate(projDistinct, source))
	sub := c.pc.Add(circuit.NewSum([]circuit.Operator{side, neg}, source))
	return c.pc.Add(circuit.NewDistinct(sub, source))
}

// projectCols slices len(target.Fields()) consecutive columns out of op starting at offset,
// casting each to its target field type.
func (c *Compiler) projectCols(op circuit.Operator, offset int, target *types.Type, source diag.PlanNode) circuit.Operator {
	rowType := op.OutputType().Elem()
	row := rowVariable(rowType)
	fields := make([]scalar.Expr, len(target.Fields()))
	for i, ft := range target.Fields() {
		fields[i] = scalar.CastTo(scalar.NewFieldAccess(row, offset+i, rowType.Fields()[offset+i]), ft)
	}
	closure := scalar.NewClosure("proj", []scalar.Param{{Name: "row", Type: rowType}}, scalar.NewTuple(fields))
	return c.pc.Add(circuit.NewMap(op, closure, source))
}

// extendWithNulls widens an unmatched one-sided row onto the declared joined row shape, filling
// every field on the other side with NULL.
func (c *Compiler) extendWithNulls(unmatched circuit.Operator, declared *types.Type, leftArity int, isLeft bool, source diag.PlanNode) circuit.Operator {
	sideType := unmatched.OutputType().Elem()
	row := rowVariable(sideType)
	fields := make([]scalar.Expr, len(declared.Fields()))
	for i, ft := range declared.Fields() {
		onThisSide := i < leftArity
		if !isLeft {
			onThisSide = i >= leftArity
		}
		if onThisSide {
			srcIdx := i
			if !isLeft {
				srcIdx = i - leftArity
			}
			fields[i] = scalar.CastTo(scalar.NewFieldAccess(row, srcIdx, sideType.Fields()[srcIdx]), ft)
		} else {
			fields[i] = scalar.NewLiteral(nil, ft)
		}
	}
	closure := scalar.NewClosure("extend", []scalar.Param{{Name: "row", Type: sideType}}, scalar.NewTuple(fields))
	return c.pc.Add(circuit.NewMap(unmatched, closure, source))
}
