package scalar

import "github.com/l7mp/dbsp-sql/pkg/types"

// Cast wraps e in a Cast node targeting t, unless e already has exactly type t, in which case e
// is returned unchanged. Every caller in the expression compiler and the relational lowering
// pass should go through this helper rather than constructing scalar.Cast directly, so that a
// tree never accumulates redundant identity casts.
func CastTo(e Expr, t *types.Type) Expr {
	if e.Type().Equal(t) {
		return e
	}
	return NewCast(e, t)
}

// WrapBool wraps e (a Bool-typed expression) with WRAP_BOOL if e may be null, otherwise returns
// e unchanged. WRAP_BOOL's runtime contract is "treat NULL as FALSE"; it is how a nullable
// boolean expression becomes safe to use as a Filter/Join predicate.
func WrapBool(e Expr) Expr {
	if !e.Type().MayBeNull {
		return e
	}
	return NewUnary(WRAP_BOOL, e, types.Bool(false))
}
