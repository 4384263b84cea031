package exprcompiler

import (
	"fmt"

	"github.com/l7mp/dbsp-sql/pkg/diag"
	"github.com/l7mp/dbsp-sql/pkg/relplan"
	"github.com/l7mp/dbsp-sql/pkg/scalar"
	"github.com/l7mp/dbsp-sql/pkg/types"
)

// typeSuffix names the runtime-function suffix for t, the way the named-function call kinds in
// this file (EXTRACT/FLOOR/CEIL, the numeric functions, POWER, TRUNCATE/ROUND, DIVISION) key their
// primitive table: "i64", "f64", "d" (decimal), "ts", "date", and so on. Binary arithmetic on
// dates and timestamps does not use it; it goes through types.Reduce like every other binary.
func typeSuffix(t *types.Type) string {
	switch t.Kind {
	case types.KindInteger:
		sign := "i"
		if !t.Signed {
			sign = "u"
		}
		return fmt.Sprintf("%s%d", sign, t.Width)
	case types.KindFloat:
		return fmt.Sprintf("f%d", t.Width)
	case types.KindDecimal:
		return "d"
	case types.KindDate:
		return "date"
	case types.KindTimestamp:
		return "ts"
	case types.KindMillisInterval:
		return "interval"
	default:
		return t.Kind.String()
	}
}

// namedCall builds an Apply node for a runtime primitive keyed by name, used by every call kind
// whose semantics are too operand-type-specific to express with the closed Opcode set.
func (c *Compiler) namedCall(name string, args []scalar.Expr, result *types.Type) scalar.Expr {
	return scalar.NewApply(name, args, result)
}

// compileExtractOrFloorCeil dispatches EXTRACT/FLOOR/CEIL to a named runtime function keyed by
// the operand's type suffix and the unit keyword, e.g. extract_i64_YEAR, floor_ts_MONTH. EXTRACT
// with no unit is unimplemented; FLOOR/CEIL without a unit fall back to the ordinary numeric
// Apply (e.g. floor_f64) handled by compileNumericFn instead.
func (c *Compiler) compileExtractOrFloorCeil(n *relplan.RexCall, fn string, args []scalar.Expr) (scalar.Expr, error) {
	if err := c.requireArity(n, args, 1); err != nil {
		return nil, err
	}
	if n.Unit == "" {
		return nil, diag.NewUnimplementedError(n, fmt.Sprintf("%s without a unit keyword", fn))
	}

	declared, err := c.declaredType(n)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("%s_%s_%s", fn, typeSuffix(args[0].Type()), n.Unit)
	return c.namedCall(name, args, declared), nil
}

// compileNumericFn handles the single-operand numeric functions that have no dedicated Opcode:
// numeric_inc, sign, log10, ln, abs, floor/ceil without a unit.
func (c *Compiler) compileNumericFn(n *relplan.RexCall, fn string, args []scalar.Expr) (scalar.Expr, error) {
	if err := c.requireArity(n, args, 1); err != nil {
		return nil, err
	}
	declared, err := c.declaredType(n)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("%s_%s", fn, typeSuffix(args[0].Type()))
	return c.namedCall(name, args, declared), nil
}

// compilePower handles POWER(base, exponent), keyed by both operand type suffixes (e.g.
// power_f64_i32) since the exponent's type genuinely changes which runtime primitive applies.
func (c *Compiler) compilePower(n *relplan.RexCall, args []scalar.Expr) (scalar.Expr, error) {
	if err := c.requireArity(n, args, 2); err != nil {
		return nil, err
	}
	declared, err := c.declaredType(n)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("power_%s_%s", typeSuffix(args[0].Type()), typeSuffix(args[1].Type()))
	return c.namedCall(name, args, declared), nil
}

// compileTruncateOrRound handles TRUNCATE/ROUND, both of which may take an optional scale operand
// and are keyed only by the first operand's type suffix (round_d, truncate_f64, ...).
func (c *Compiler) compileTruncateOrRound(n *relplan.RexCall, fn string, args []scalar.Expr) (scalar.Expr, error) {
	if err := c.requireMinArity(n, args, 1); err != nil {
		return nil, err
	}
	declared, err := c.declaredType(n)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("%s_%s", fn, typeSuffix(args[0].Type()))
	return c.namedCall(name, args, declared), nil
}

// compileStDistance handles ST_DISTANCE(a, b), named with an empty type-suffix pair in the
// runtime table (st_distance__) since GeoPoint has exactly one representation.
func (c *Compiler) compileStDistance(n *relplan.RexCall, args []scalar.Expr) (scalar.Expr, error) {
	if err := c.requireArity(n, args, 2); err != nil {
		return nil, err
	}
	declared, err := c.declaredType(n)
	if err != nil {
		return nil, err
	}
	return c.namedCall("st_distance__", args, declared), nil
}

// compileStPoint handles ST_POINT(lon, lat), producing a GeoPoint value.
func (c *Compiler) compileStPoint(n *relplan.RexCall, args []scalar.Expr) (scalar.Expr, error) {
	if err := c.requireArity(n, args, 2); err != nil {
		return nil, err
	}
	declared, err := c.declaredType(n)
	if err != nil {
		return nil, err
	}
	return c.namedCall("st_point", args, declared), nil
}

// compileArrayValueConstructor builds a Vec literal from its operands.
func (c *Compiler) compileArrayValueConstructor(n *relplan.RexCall, args []scalar.Expr) (scalar.Expr, error) {
	declared, err := c.declaredType(n)
	if err != nil {
		return nil, err
	}
	return c.namedCall("array", args, declared), nil
}

// compileItem handles ITEM(array, index): a runtime, possibly out-of-bounds, array/map lookup
// that returns a nullable result (unlike IndexInto, which is used where the index is known to be
// in range by construction).
func (c *Compiler) compileItem(n *relplan.RexCall, args []scalar.Expr) (scalar.Expr, error) {
	if err := c.requireArity(n, args, 2); err != nil {
		return nil, err
	}
	declared, err := c.declaredType(n)
	if err != nil {
		return nil, err
	}
	return c.namedCall("item", args, declared), nil
}

// compileElement unwraps a single-element array/multiset to its sole member, NULL if the
// collection isn't exactly one element long.
func (c *Compiler) compileElement(n *relplan.RexCall, args []scalar.Expr) (scalar.Expr, error) {
	if err := c.requireArity(n, args, 1); err != nil {
		return nil, err
	}
	declared, err := c.declaredType(n)
	if err != nil {
		return nil, err
	}
	return c.namedCall("element", args, declared), nil
}

// compileCardinality returns the element count of an array/multiset-valued operand.
func (c *Compiler) compileCardinality(n *relplan.RexCall, args []scalar.Expr) (scalar.Expr, error) {
	if err := c.requireArity(n, args, 1); err != nil {
		return nil, err
	}
	declared, err := c.declaredType(n)
	if err != nil {
		return nil, err
	}
	return c.namedCall("cardinality", args, declared), nil
}

// compileDivision handles the INTEGER-division call kind distinct from ordinary DIVIDE: DIVISION
// truncates towards zero rather than producing a float/decimal result.
func (c *Compiler) compileDivision(n *relplan.RexCall, args []scalar.Expr) (scalar.Expr, error) {
	if err := c.requireArity(n, args, 2); err != nil {
		return nil, err
	}
	declared, err := c.declaredType(n)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("division_%s", typeSuffix(args[0].Type()))
	return c.namedCall(name, args, declared), nil
}

// compileReinterpret bit-reinterprets operand as the declared type without a value-preserving
// conversion (used for opaque/user types that CAST can't target structurally).
func (c *Compiler) compileReinterpret(n *relplan.RexCall, args []scalar.Expr) (scalar.Expr, error) {
	if err := c.requireArity(n, args, 1); err != nil {
		return nil, err
	}
	declared, err := c.declaredType(n)
	if err != nil {
		return nil, err
	}
	return c.namedCall("reinterpret", args, declared), nil
}

// compileConcat left-folds the CONCAT opcode over its operands.
func (c *Compiler) compileConcat(n *relplan.RexCall, args []scalar.Expr) (scalar.Expr, error) {
	if err := c.requireMinArity(n, args, 1); err != nil {
		return nil, err
	}
	declared, err := c.declaredType(n)
	if err != nil {
		return nil, err
	}
	acc := args[0]
	for _, arg := range args[1:] {
		nullable := acc.Type().MayBeNull || arg.Type().MayBeNull
		acc = scalar.NewBinary(scalar.CONCAT, acc, arg, types.String(nullable))
	}
	return scalar.CastTo(acc, declared), nil
}

// compileSearch handles a SEARCH call (a Sarg range-set match Calcite uses for IN/BETWEEN
// compaction) by rejecting it with an UnimplementedError; it does not expand the call into an
// OR-of-equalities/ranges tree.
func (c *Compiler) compileSearch(n *relplan.RexCall) (scalar.Expr, error) {
	return nil, diag.NewUnimplementedError(n, "SEARCH (Sarg) expansion")
}
