package exprcompiler

import (
	"github.com/l7mp/dbsp-sql/pkg/diag"
	"github.com/l7mp/dbsp-sql/pkg/relplan"
	"github.com/l7mp/dbsp-sql/pkg/scalar"
)

// compileCase implements the condition form of CASE: odd operand arity, operands
// (when_1, then_1, ..., when_k, then_k, else), each when_i used directly as the branch
// predicate (wrapped with WRAP_BOOL). Folds from the ELSE branch outward, right to left, and
// widens the final type to nullable if any branch contributed a nullable value.
func (c *Compiler) compileCase(n *relplan.RexCall, args []scalar.Expr) (scalar.Expr, error) {
	if err := c.requireMinArity(n, args, 3); err != nil {
		return nil, err
	}
	if len(args)%2 != 1 {
		return nil, diag.NewTranslationError(n, "condition-form CASE requires odd operand arity")
	}

	declared, err := c.declaredType(n)
	if err != nil {
		return nil, err
	}

	elseBranch := args[len(args)-1]
	pairs := args[:len(args)-1]

	nullable := elseBranch.Type().MayBeNull
	for i := 0; i < len(pairs); i += 2 {
		if pairs[i+1].Type().MayBeNull {
			nullable = true
		}
	}

	acc := scalar.CastTo(elseBranch, declared.WithNullable(nullable))
	for i := len(pairs) - 2; i >= 0; i -= 2 {
		cond := scalar.WrapBool(pairs[i])
		then := scalar.CastTo(pairs[i+1], declared.WithNullable(nullable))
		acc = scalar.NewIf(cond, then, acc, declared.WithNullable(nullable))
	}

	return acc, nil
}

// compileSwitchedCase implements the switched shape: even operand arity, a shared subject
// compared for equality against each WHEN via EQ, otherwise identical folding to compileCase.
func (c *Compiler) compileSwitchedCase(n *relplan.RexCall, args []scalar.Expr) (scalar.Expr, error) {
	if err := c.requireMinArity(n, args, 4); err != nil {
		return nil, err
	}
	if len(args)%2 != 0 {
		return nil, diag.NewTranslationError(n, "switched CASE requires even operand arity")
	}

	declared, err := c.declaredType(n)
	if err != nil {
		return nil, err
	}

	subject := args[0]
	elseBranch := args[len(args)-1]
	pairs := args[1 : len(args)-1]

	nullable := elseBranch.Type().MayBeNull
	for i := 0; i < len(pairs); i += 2 {
		if pairs[i+1].Type().MayBeNull {
			nullable = true
		}
	}

	acc := scalar.CastTo(elseBranch, declared.WithNullable(nullable))
	for i := len(pairs) - 2; i >= 0; i -= 2 {
		eq, err := c.makeBinaryExpression(n, scalar.EQ, subject, pairs[i])
		if err != nil {
			return nil, err
		}
		cond := scalar.WrapBool(eq)
		then := scalar.CastTo(pairs[i+1], declared.WithNullable(nullable))
		acc = scalar.NewIf(cond, then, acc, declared.WithNullable(nullable))
	}

	return acc, nil
}
