package compiler

import (
	"github.com/l7mp/dbsp-sql/pkg/circuit"
	"github.com/l7mp/dbsp-sql/pkg/relplan"
	"github.com/l7mp/dbsp-sql/pkg/scalar"
	"github.com/l7mp/dbsp-sql/pkg/types"
)

// lowerSort indexes Input by the empty key (a single group covering the whole Z-set), folds every
// row into a Vec via repeated push, sorts that vector with a comparator generated from Keys, and
// explodes it back into individual rows, truncated to Fetch/Offset. STRICTLY_ASCENDING/DESCENDING
// collations have no representation in the upstream plan model this visitor consumes, so there is
// nothing here that needs to be rejected as unimplemented.
func (c *Compiler) lowerSort(n *relplan.Sort) (circuit.Operator, error) {
	input, err := c.compileNode(n.Input)
	if err != nil {
		return nil, err
	}
	rowType := input.OutputType().Elem()
	row := rowVariable(rowType)

	emptyKeyType := types.RawTuple()
	indexed := c.indexBy(input, row, scalar.NewRawTuple(nil), row, "index", n)

	vecType := types.Vec(rowType)
	accVar := scalar.NewVariable("acc", vecType)
	rowParam := scalar.NewVariable("row", rowType)
	fold := circuit.Fold{
		Init: scalar.NewApply("vec_new", nil, vecType),
		Step: scalar.NewClosure("step", []scalar.Param{
			{Name: "acc", Type: vecType},
			{Name: "row", Type: rowType},
		}, scalar.NewApplyMethod("push", accVar, []scalar.Expr{rowParam}, vecType)),
		Finalize: scalar.NewClosure("finalize", []scalar.Param{{Name: "acc", Type: vecType}}, accVar),
	}

	aggOutType := types.RawTuple(emptyKeyType, vecType)
	agg := c.pc.Add(circuit.NewAggregate(indexed, fold, aggOutType, n))

	kv := scalar.NewVariable("kv", aggOutType)
	vecField := scalar.NewFieldAccess(kv, 1, vecType)
	// A Z-set element must be a tuple, so the vector travels wrapped in a one-field tuple.
	wrapType := types.Tuple(vecType)
	flatten := scalar.NewClosure("flatten", []scalar.Param{{Name: "kv", Type: aggOutType}}, scalar.NewTuple([]scalar.Expr{vecField}))
	flat := c.pc.Add(circuit.NewMap(agg, flatten, n))

	comparator := buildComparator(n.Keys, rowType)
	sortVar := scalar.NewFieldAccess(scalar.NewVariable("vec", wrapType), 0, vecType)
	var sortBody scalar.Expr = sortVar
	if comparator != nil {
		sortBody = scalar.NewApplyMethod("sort_by", sortVar, []scalar.Expr{scalar.NewSort(comparator)}, vecType)
	}
	if n.Offset > 0 || n.Fetch >= 0 {
		sortBody = scalar.NewApplyMethod("slice", sortBody, []scalar.Expr{
			scalar.NewLiteral(n.Offset, types.I64(false)),
			scalar.NewLiteral(n.Fetch, types.I64(false)),
		}, vecType)
	}
	sortClosure := scalar.NewClosure("sort", []scalar.Param{{Name: "vec", Type: wrapType}}, scalar.NewTuple([]scalar.Expr{sortBody}))
	sorted := c.pc.Add(circuit.NewMap(flat, sortClosure, n))

	// Sort only reorders/truncates rows; it never changes their shape, so the exploding
	// closure just unwraps the sorted vector.
	expandVar := scalar.NewFieldAccess(scalar.NewVariable("vec", wrapType), 0, vecType)
	expand := scalar.NewClosure("expand", []scalar.Param{{Name: "vec", Type: wrapType}}, expandVar)
	return c.pc.Add(circuit.NewFlatMap(sorted, expand, n)), nil
}

// buildComparator builds a lexicographic Comparator chain from an ORDER BY key list.
func buildComparator(keys []relplan.Collation, rowType *types.Type) *scalar.Comparator {
	if len(keys) == 0 {
		return nil
	}
	k := keys[0]
	row := rowVariable(rowType)
	ft := rowType.Fields()[k.Index]
	field := scalar.NewClosure("sortkey", []scalar.Param{{Name: "row", Type: rowType}}, scalar.NewFieldAccess(row, k.Index, ft))
	return scalar.NewComparator(field, !k.Descending, buildComparator(keys[1:], rowType))
}
