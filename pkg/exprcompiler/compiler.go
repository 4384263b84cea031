// Package exprcompiler lowers a relplan scalar-expression tree (Rex) into the scalar IR
// (pkg/scalar.Expr) that circuit operator closures are built from. It is a pure tree-to-tree
// translation: no I/O, no global state, every fatal condition is returned as an error carrying
// the offending Rex node for positional diagnostics.
package exprcompiler

import (
	"fmt"

	"github.com/l7mp/dbsp-sql/pkg/diag"
	"github.com/l7mp/dbsp-sql/pkg/relplan"
	"github.com/l7mp/dbsp-sql/pkg/scalar"
	"github.com/l7mp/dbsp-sql/pkg/typeconv"
	"github.com/l7mp/dbsp-sql/pkg/types"
)

// Context carries the row variable a RexInputRef below row arity resolves against, plus a
// trailing constant pool for references at or beyond that arity (Calcite appends constants
// after a row's own fields rather than giving them a separate addressing mode).
type Context struct {
	Row       scalar.Expr
	Constants []scalar.Expr
}

// Compiler lowers Rex trees under a Context. It holds no state of its own beyond the reporter, so
// a single Compiler is safely reused across every Rex tree in a statement.
type Compiler struct {
	Reporter diag.Reporter
}

// New constructs a Compiler. A nil reporter is replaced with diag.NopReporter.
func New(reporter diag.Reporter) *Compiler {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Compiler{Reporter: reporter}
}

// Compile lowers rex under ctx into a scalar.Expr.
func (c *Compiler) Compile(rex relplan.Rex, ctx Context) (scalar.Expr, error) {
	switch n := rex.(type) {
	case *relplan.RexInputRef:
		return c.compileInputRef(n, ctx)
	case *relplan.RexLiteral:
		return c.compileLiteral(n)
	case *relplan.RexCall:
		return c.compileCall(n, ctx)
	default:
		return nil, diag.NewUnimplementedError(rex, fmt.Sprintf("rex node type %T", rex))
	}
}

func (c *Compiler) compileInputRef(n *relplan.RexInputRef, ctx Context) (scalar.Expr, error) {
	rowType := ctx.Row.Type()
	fields := rowType.Fields()
	if n.Index < len(fields) {
		return scalar.NewFieldAccess(ctx.Row, n.Index, fields[n.Index]), nil
	}

	constIdx := n.Index - len(fields)
	if constIdx < 0 || constIdx >= len(ctx.Constants) {
		return nil, diag.NewTranslationError(n,
			fmt.Sprintf("input reference %d out of range (row arity %d, %d constants)",
				n.Index, len(fields), len(ctx.Constants)))
	}
	return ctx.Constants[constIdx], nil
}

func (c *Compiler) compileLiteral(n *relplan.RexLiteral) (scalar.Expr, error) {
	t, err := typeconv.Convert(n.RexType())
	if err != nil {
		return nil, diag.NewTranslationError(n, err.Error())
	}
	return scalar.NewLiteral(n.Value, t), nil
}

func (c *Compiler) compileOperands(n *relplan.RexCall, ctx Context) ([]scalar.Expr, error) {
	out := make([]scalar.Expr, len(n.Operands))
	for i, o := range n.Operands {
		e, err := c.Compile(o, ctx)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func (c *Compiler) declaredType(n *relplan.RexCall) (*types.Type, error) {
	t, err := typeconv.Convert(n.RexType())
	if err != nil {
		return nil, diag.NewTranslationError(n, err.Error())
	}
	return t, nil
}

func (c *Compiler) requireArity(n *relplan.RexCall, args []scalar.Expr, want int) error {
	if len(args) != want {
		return diag.NewTranslationError(n,
			fmt.Sprintf("call kind %d expects %d operand(s), got %d", n.Kind, want, len(args)))
	}
	return nil
}

func (c *Compiler) requireMinArity(n *relplan.RexCall, args []scalar.Expr, min int) error {
	if len(args) < min {
		return diag.NewTranslationError(n,
			fmt.Sprintf("call kind %d expects at least %d operand(s), got %d", n.Kind, min, len(args)))
	}
	return nil
}
