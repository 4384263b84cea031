package circuit

import (
	"fmt"

	"github.com/l7mp/dbsp-sql/pkg/diag"
)

// Distinct drops weights to {0,1}: the non-linear operator that turns a bag into a set. The
// testable property it asserts at evaluation time (a runtime concern, not this IR's) is that
// every surviving element's multiplicity is exactly one.
type Distinct struct {
	base
	Input Operator
}

func NewDistinct(input Operator, source diag.PlanNode) *Distinct {
	return &Distinct{
		base:  newBase(KindDistinct, input.OutputType(), false, source, input),
		Input: input,
	}
}

func (d *Distinct) String() string { return fmt.Sprintf("Distinct(%s)", d.Input) }

// Sum is Z-set addition of N same-typed inputs (the structural operator behind UNION ALL and the
// empty-group aggregation correction).
type Sum struct {
	base
	Operands []Operator
}

func NewSum(operands []Operator, source diag.PlanNode) *Sum {
	multiset := false
	for _, op := range operands {
		multiset = multiset || op.IsMultiset()
	}
	return &Sum{
		base:     newBase(KindSum, operands[0].OutputType(), multiset, source, operands...),
		Operands: operands,
	}
}

func (s *Sum) String() string { return fmt.Sprintf("Sum(%v)", inputIDs(s.Operands)) }

// Subtract computes A - B (Z-set difference via addition of the negation). The MINUS lowering does
// not use it; it emits Negate and Sum instead.
type Subtract struct {
	base
	A, B Operator
}

func NewSubtract(a, b Operator, source diag.PlanNode) *Subtract {
	return &Subtract{
		base: newBase(KindSubtract, a.OutputType(), a.IsMultiset() || b.IsMultiset(), source, a, b),
		A:    a,
		B:    b,
	}
}

func (s *Subtract) String() string { return fmt.Sprintf("Subtract(%s, %s)", s.A, s.B) }

// Negate flips the sign of every weight in Input.
type Negate struct {
	base
	Input Operator
}

func NewNegate(input Operator, source diag.PlanNode) *Negate {
	return &Negate{
		base:  newBase(KindNegate, input.OutputType(), input.IsMultiset(), source, input),
		Input: input,
	}
}

func (n *Negate) String() string { return fmt.Sprintf("Negate(%s)", n.Input) }

// Differential (D) turns a stream of snapshots into a stream of deltas: D(s)[t] = s[t] - s[t-1].
type Differential struct {
	base
	Input Operator
}

func NewDifferential(input Operator, source diag.PlanNode) *Differential {
	return &Differential{
		base:  newBase(KindDifferential, input.OutputType(), input.IsMultiset(), source, input),
		Input: input,
	}
}

func (d *Differential) String() string { return fmt.Sprintf("D(%s)", d.Input) }

// Integral (I) is D's inverse: I(s)[t] = sum(s[0..t]). Composing I after D around an
// incremental operator (I . Op^Δ . D) presents it as if it were non-incremental.
type Integral struct {
	base
	Input Operator
}

func NewIntegral(input Operator, source diag.PlanNode) *Integral {
	return &Integral{
		base:  newBase(KindIntegral, input.OutputType(), input.IsMultiset(), source, input),
		Input: input,
	}
}

func (i *Integral) String() string { return fmt.Sprintf("I(%s)", i.Input) }
