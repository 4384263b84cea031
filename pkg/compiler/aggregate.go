package compiler

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"

	"github.com/l7mp/dbsp-sql/pkg/circuit"
	"github.com/l7mp/dbsp-sql/pkg/diag"
	"github.com/l7mp/dbsp-sql/pkg/relplan"
	"github.com/l7mp/dbsp-sql/pkg/scalar"
	"github.com/l7mp/dbsp-sql/pkg/types"
)

// lowerAggregate builds group keys from GroupSet, indexes Input by that tuple, builds a fold from
// the aggregate-call list, emits Aggregate, and flattens key+value to the declared output row via
// a Map. Zero-arity groups get the empty-group correction: a 3-input Sum that forces the default-
// zero tuple to survive even on empty input.
func (c *Compiler) lowerAggregate(n *relplan.Aggregate) (circuit.Operator, error) {
	input, err := c.compileNode(n.Input)
	if err != nil {
		return nil, err
	}

	rowType := input.OutputType().Elem()
	row := rowVariable(rowType)

	keyFields := make([]scalar.Expr, len(n.GroupSet))
	for i, idx := range n.GroupSet {
		keyFields[i] = scalar.NewFieldAccess(row, idx, rowType.Fields()[idx])
	}
	key := scalar.NewRawTuple(keyFields)

	indexed := c.indexBy(input, row, key, row, "index", n)

	fold, valueType, err := c.buildFold(n.Calls, rowType, n)
	if err != nil {
		return nil, err
	}

	aggOutType := types.RawTuple(key.Type(), valueType)
	agg := c.pc.Add(circuit.NewAggregate(indexed, fold, aggOutType, n))

	declared, err := c.ConvertType(n.RowType())
	if err != nil {
		return nil, err
	}

	kv := scalar.NewVariable("kv", aggOutType)
	kField := scalar.NewFieldAccess(kv, 0, key.Type())
	vField := scalar.NewFieldAccess(kv, 1, valueType)
	flatFields := make([]scalar.Expr, 0, len(n.GroupSet)+len(n.Calls))
	for i := range n.GroupSet {
		flatFields = append(flatFields, scalar.CastTo(scalar.NewFieldAccess(kField, i, key.Type().Fields()[i]), declared.Fields()[i]))
	}
	for i := range n.Calls {
		flatFields = append(flatFields, scalar.CastTo(scalar.NewFieldAccess(vField, i, valueType.Fields()[i]), declared.Fields()[len(n.GroupSet)+i]))
	}
	flatten := scalar.NewClosure("flatten", []scalar.Param{{Name: "kv", Type: aggOutType}}, scalar.NewTuple(flatFields))
	flat := c.pc.Add(circuit.NewMap(agg, flatten, n))

	if len(n.GroupSet) > 0 {
		return flat, nil
	}
	return c.emptyGroupCorrection(flat, fold, declared, n)
}

// emptyGroupCorrection implements Sum(agg, Negate(Map(_->z)(agg)), Constant({z->1})),
// which yields {z->1} on empty input and {c->1} otherwise, preserving at-most-one-row semantics
// for an ungrouped aggregate. z is the fold's own default-zero tuple: Finalize applied to Init.
func (c *Compiler) emptyGroupCorrection(flat circuit.Operator, fold circuit.Fold, declared *types.Type, n *relplan.Aggregate) (circuit.Operator, error) {
	zeroRow := substVar(fold.Finalize.Body, fold.Finalize.Params[0].Name, fold.Init)

	zeroVals, err := evalConstTuple(zeroRow)
	if err != nil {
		return nil, diag.NewTranslationError(n, fmt.Sprintf("empty-group default for ungrouped aggregate: %v", err))
	}

	toZero := scalar.NewClosure("toZero", []scalar.Param{{Name: "row", Type: declared}}, zeroRow)
	zeroed := c.pc.Add(circuit.NewMap(flat, toZero, n))
	negated := c.pc.Add(circuit.NewNegate(zeroed, n))
	constant := c.pc.Add(circuit.NewConstant(declared, []circuit.ConstantRow{{Fields: zeroVals, Weight: 1}}, n))

	return c.pc.Add(circuit.NewSum([]circuit.Operator{flat, negated, constant}, n)), nil
}

// aggImpl is the per-aggregate-call init/step/finalize triple, expanded and combined into one
// circuit.Fold operating on a shared RawTuple accumulator.
type aggImpl struct {
	accType  *types.Type
	init     scalar.Expr
	step     func(acc, row scalar.Expr) scalar.Expr
	finalize func(acc scalar.Expr) scalar.Expr
}

func (c *Compiler) buildFold(calls []relplan.AggCall, rowType *types.Type, source diag.PlanNode) (circuit.Fold, *types.Type, error) {
	impls := make([]aggImpl, len(calls))
	for i, call := range calls {
		impl, err := buildAggImpl(call, rowType, source)
		if err != nil {
			return circuit.Fold{}, nil, err
		}
		impls[i] = impl
	}

	accTypes := make([]*types.Type, len(impls))
	initFields := make([]scalar.Expr, len(impls))
	for i, impl := range impls {
		accTypes[i] = impl.accType
		initFields[i] = impl.init
	}
	accType := types.RawTuple(accTypes...)
	init := scalar.NewRawTuple(initFields)

	accVar := scalar.NewVariable("acc", accType)
	row := rowVariable(rowType)
	stepFields := make([]scalar.Expr, len(impls))
	for i, impl := range impls {
		accField := scalar.NewFieldAccess(accVar, i, impl.accType)
		stepFields[i] = impl.step(accField, row)
	}
	step := scalar.NewClosure("step", []scalar.Param{
		{Name: "acc", Type: accType},
		{Name: "row", Type: rowType},
	}, scalar.NewRawTuple(stepFields))

	valueTypes := make([]*types.Type, len(impls))
	for i, call := range calls {
		valueType, err := c.ConvertType(call.Type)
		if err != nil {
			return circuit.Fold{}, nil, err
		}
		valueTypes[i] = valueType
	}
	valueType := types.Tuple(valueTypes...)
	finalizeFields := make([]scalar.Expr, len(impls))
	for i, impl := range impls {
		accField := scalar.NewFieldAccess(accVar, i, impl.accType)
		finalizeFields[i] = scalar.CastTo(impl.finalize(accField), valueTypes[i])
	}
	finalize := scalar.NewClosure("finalize", []scalar.Param{{Name: "acc", Type: accType}}, scalar.NewTuple(finalizeFields))

	return circuit.Fold{Init: init, Step: step, Finalize: finalize}, valueType, nil
}

func buildAggImpl(call relplan.AggCall, rowType *types.Type, source diag.PlanNode) (aggImpl, error) {
	switch call.Func {
	case "COUNT":
		return buildCount(call, rowType), nil
	case "SUM":
		return buildSum(call, rowType, source)
	case "MIN":
		return buildMinMax(call, rowType, scalar.LT, source)
	case "MAX":
		return buildMinMax(call, rowType, scalar.GT, source)
	case "AVG":
		return buildAvg(call, rowType, source)
	default:
		return aggImpl{}, diag.NewUnimplementedError(source, fmt.Sprintf("aggregate function %s", call.Func))
	}
}

func buildCount(call relplan.AggCall, rowType *types.Type) aggImpl {
	accType := types.I64(false)
	one := scalar.NewLiteral(int64(1), accType)

	if len(call.Args) == 0 {
		return aggImpl{
			accType: accType,
			init:    scalar.NewLiteral(int64(0), accType),
			step: func(acc, row scalar.Expr) scalar.Expr {
				return scalar.NewBinary(scalar.ADD, acc, one, accType)
			},
			finalize: func(acc scalar.Expr) scalar.Expr { return acc },
		}
	}

	idx := call.Args[0]
	argType := rowType.Fields()[idx]
	return aggImpl{
		accType: accType,
		init:    scalar.NewLiteral(int64(0), accType),
		step: func(acc, row scalar.Expr) scalar.Expr {
			arg := scalar.NewFieldAccess(row, idx, argType)
			isNull := scalar.NewUnary(scalar.IS_NULL, arg, types.Bool(false))
			inc := scalar.NewBinary(scalar.ADD, acc, one, accType)
			return scalar.NewIf(isNull, acc, inc, accType)
		},
		finalize: func(acc scalar.Expr) scalar.Expr { return acc },
	}
}

func buildSum(call relplan.AggCall, rowType *types.Type, source diag.PlanNode) (aggImpl, error) {
	idx := call.Args[0]
	argType := rowType.Fields()[idx]
	accType := argType.WithNullable(false)
	zero, err := zeroLiteral(accType, source)
	if err != nil {
		return aggImpl{}, err
	}

	return aggImpl{
		accType: accType,
		init:    zero,
		step: func(acc, row scalar.Expr) scalar.Expr {
			arg := scalar.NewFieldAccess(row, idx, argType)
			isNull := scalar.NewUnary(scalar.IS_NULL, arg, types.Bool(false))
			added := scalar.NewBinary(scalar.ADD, acc, scalar.CastTo(arg, accType), accType)
			return scalar.NewIf(isNull, acc, added, accType)
		},
		finalize: func(acc scalar.Expr) scalar.Expr { return acc },
	}, nil
}

func buildMinMax(call relplan.AggCall, rowType *types.Type, better scalar.Opcode, source diag.PlanNode) (aggImpl, error) {
	idx := call.Args[0]
	argType := rowType.Fields()[idx]
	accType := argType.WithNullable(true)

	return aggImpl{
		accType: accType,
		init:    scalar.NewLiteral(nil, accType),
		step: func(acc, row scalar.Expr) scalar.Expr {
			arg := scalar.CastTo(scalar.NewFieldAccess(row, idx, argType), accType)
			argIsNull := scalar.NewUnary(scalar.IS_NULL, arg, types.Bool(false))
			accIsNull := scalar.NewUnary(scalar.IS_NULL, acc, types.Bool(false))
			cmp := scalar.NewBinary(better, arg, acc, types.Bool(false))
			takeArg := scalar.NewIf(accIsNull, arg, scalar.NewIf(cmp, arg, acc, accType), accType)
			return scalar.NewIf(argIsNull, acc, takeArg, accType)
		},
		finalize: func(acc scalar.Expr) scalar.Expr { return acc },
	}, nil
}

func buildAvg(call relplan.AggCall, rowType *types.Type, source diag.PlanNode) (aggImpl, error) {
	idx := call.Args[0]
	argType := rowType.Fields()[idx]
	sumType := argType.WithNullable(false)
	countType := types.I64(false)
	accType := types.RawTuple(sumType, countType)

	zero, err := zeroLiteral(sumType, source)
	if err != nil {
		return aggImpl{}, err
	}
	one := scalar.NewLiteral(int64(1), countType)
	zeroCount := scalar.NewLiteral(int64(0), countType)

	return aggImpl{
		accType: accType,
		init:    scalar.NewRawTuple([]scalar.Expr{zero, zeroCount}),
		step: func(acc, row scalar.Expr) scalar.Expr {
			sumField := scalar.NewFieldAccess(acc, 0, sumType)
			countField := scalar.NewFieldAccess(acc, 1, countType)
			arg := scalar.NewFieldAccess(row, idx, argType)
			isNull := scalar.NewUnary(scalar.IS_NULL, arg, types.Bool(false))
			newSum := scalar.NewIf(isNull, sumField, scalar.NewBinary(scalar.ADD, sumField, scalar.CastTo(arg, sumType), sumType), sumType)
			newCount := scalar.NewIf(isNull, countField, scalar.NewBinary(scalar.ADD, countField, one, countType), countType)
			return scalar.NewRawTuple([]scalar.Expr{newSum, newCount})
		},
		finalize: func(acc scalar.Expr) scalar.Expr {
			sumField := scalar.NewFieldAccess(acc, 0, sumType)
			countField := scalar.NewFieldAccess(acc, 1, countType)
			resultType := sumType.WithNullable(true)
			isEmpty := scalar.NewBinary(scalar.EQ, countField, zeroCount, types.Bool(false))
			avg := scalar.NewBinary(scalar.DIV, sumField, scalar.CastTo(countField, sumType), resultType)
			return scalar.NewIf(isEmpty, scalar.NewLiteral(nil, resultType), avg, resultType)
		},
	}, nil
}

// zeroLiteral builds the fold identity value for t, special-casing Decimal onto apd's own zero
// representation since Go has no literal syntax for it.
func zeroLiteral(t *types.Type, source diag.PlanNode) (scalar.Expr, error) {
	switch t.Kind {
	case types.KindInteger:
		return scalar.NewLiteral(int64(0), t), nil
	case types.KindFloat:
		return scalar.NewLiteral(float64(0), t), nil
	case types.KindDecimal:
		return scalar.NewLiteral(apd.New(0, 0), t), nil
	default:
		return nil, diag.NewUnimplementedError(source, fmt.Sprintf("numeric fold over %s", t))
	}
}
