package compiler

import (
	"fmt"

	"github.com/l7mp/dbsp-sql/pkg/scalar"
)

// substVar substitutes every Variable named name inside e with repl. It also beta-reduces a
// FieldAccess into a RawTupleExpr/TupleExpr it has just substituted into, so that
// substVar(finalizeBody, "acc", init) collapses all the way down to a tree of Literal/If/Binary/
// Unary/Cast nodes when init is itself built only from literals, as every aggregate fold's Init
// is.
func substVar(e scalar.Expr, name string, repl scalar.Expr) scalar.Expr {
	switch v := e.(type) {
	case *scalar.Variable:
		if v.Name == name {
			return repl
		}
		return v
	case *scalar.FieldAccess:
		inner := substVar(v.Expr, name, repl)
		switch t := inner.(type) {
		case *scalar.RawTupleExpr:
			return t.Exprs[v.Index]
		case *scalar.TupleExpr:
			return t.Exprs[v.Index]
		default:
			return scalar.NewFieldAccess(inner, v.Index, v.Type())
		}
	case *scalar.Binary:
		return scalar.NewBinary(v.Op, substVar(v.Left, name, repl), substVar(v.Right, name, repl), v.Type())
	case *scalar.Unary:
		return scalar.NewUnary(v.Op, substVar(v.Operand, name, repl), v.Type())
	case *scalar.If:
		return scalar.NewIf(substVar(v.Cond, name, repl), substVar(v.Then, name, repl), substVar(v.Else, name, repl), v.Type())
	case *scalar.Cast:
		return scalar.NewCast(substVar(v.Expr, name, repl), v.Type())
	case *scalar.RawTupleExpr:
		exprs := make([]scalar.Expr, len(v.Exprs))
		for i, f := range v.Exprs {
			exprs[i] = substVar(f, name, repl)
		}
		return scalar.NewRawTuple(exprs)
	case *scalar.TupleExpr:
		exprs := make([]scalar.Expr, len(v.Exprs))
		for i, f := range v.Exprs {
			exprs[i] = substVar(f, name, repl)
		}
		return scalar.NewTuple(exprs)
	default:
		return v
	}
}

// evalConst folds a closed scalar expression tree of Literal/Cast/Unary(IS_NULL)/Binary(EQ)/If
// nodes down to a Go value. It is only ever asked to fold the fully-substituted default-zero
// expressions the empty-group aggregation correction builds, whose conditions are always
// statically decidable once the fold's own Init literals have been substituted in.
func evalConst(e scalar.Expr) (any, bool) {
	switch v := e.(type) {
	case *scalar.Literal:
		return v.Value, true
	case *scalar.Cast:
		return evalConst(v.Expr)
	case *scalar.Unary:
		if v.Op == scalar.IS_NULL {
			val, ok := evalConst(v.Operand)
			if !ok {
				return nil, false
			}
			return val == nil, true
		}
		return nil, false
	case *scalar.Binary:
		l, lok := evalConst(v.Left)
		r, rok := evalConst(v.Right)
		if !lok || !rok {
			return nil, false
		}
		if v.Op == scalar.EQ {
			return l == r, true
		}
		return nil, false
	case *scalar.If:
		cond, ok := evalConst(v.Cond)
		if !ok {
			return nil, false
		}
		if cond.(bool) {
			return evalConst(v.Then)
		}
		return evalConst(v.Else)
	default:
		return nil, false
	}
}

// evalConstTuple folds every field of a TupleExpr/RawTupleExpr to a Go value, for building a
// Constant operator's literal rows.
func evalConstTuple(e scalar.Expr) ([]any, error) {
	var fields []scalar.Expr
	switch v := e.(type) {
	case *scalar.TupleExpr:
		fields = v.Exprs
	case *scalar.RawTupleExpr:
		fields = v.Exprs
	default:
		return nil, fmt.Errorf("compiler: cannot fold %T to a constant tuple", e)
	}

	vals := make([]any, len(fields))
	for i, f := range fields {
		val, ok := evalConst(f)
		if !ok {
			return nil, fmt.Errorf("compiler: field %d of default-zero tuple is not a compile-time constant", i)
		}
		vals[i] = val
	}
	return vals, nil
}
