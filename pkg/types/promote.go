package types

import (
	"fmt"

	"github.com/l7mp/dbsp-sql/pkg/diag"
)

// Reduce implements the common-promotion rule used by every binary arithmetic/comparison
// operator in the scalar expression compiler:
//
//   - If either side is Null, the result is the other side made nullable.
//   - Nullability is stripped for the promotion step and OR-combined back onto the result.
//   - Integer x Integer -> Integer of the max width, signed.
//   - Integer x (Float|Decimal) -> the non-integer side.
//   - Float x Float -> the wider side.
//   - Decimal x Integer -> Decimal; Decimal x Float -> Float.
//   - Same type -> that type.
//   - Otherwise: UnsupportedPromotionError.
//
// node is only used to decorate a failure with a source position; it may be nil.
func Reduce(left, right *Type, node diag.PlanNode) (*Type, error) {
	if left.Kind == KindNull {
		return right.WithNullable(true), nil
	}
	if right.Kind == KindNull {
		return left.WithNullable(true), nil
	}

	nullable := left.MayBeNull || right.MayBeNull

	base, err := reduceBase(left, right, node)
	if err != nil {
		return nil, err
	}
	return base.WithNullable(nullable), nil
}

func reduceBase(left, right *Type, node diag.PlanNode) (*Type, error) {
	l := left.WithNullable(false)
	r := right.WithNullable(false)

	if l.SameType(r) {
		return l, nil
	}

	switch {
	case l.Kind == KindInteger && r.Kind == KindInteger:
		width := l.Width
		if r.Width > width {
			width = r.Width
		}
		return Integer(width, true, false), nil

	case l.Kind == KindInteger && (r.Kind == KindFloat || r.Kind == KindDecimal):
		return r, nil
	case r.Kind == KindInteger && (l.Kind == KindFloat || l.Kind == KindDecimal):
		return l, nil

	case l.Kind == KindFloat && r.Kind == KindFloat:
		width := l.Width
		if r.Width > width {
			width = r.Width
		}
		return Float(width, false), nil

	case l.Kind == KindDecimal && r.Kind == KindFloat:
		return r, nil
	case r.Kind == KindDecimal && l.Kind == KindFloat:
		return l, nil
	}

	return nil, diag.NewUnsupportedPromotionError(node, left.String(), right.String())
}

// MayBeNull propagates nullability for an ordinary binary op: the disjunction of the operand
// nullabilities. DIV overrides this (see ResultNullability).
func MayBeNull(left, right *Type) bool {
	return left.MayBeNull || right.MayBeNull
}

// ResultNullability computes the declared nullability of a binary op's result given the DBSP
// opcode and the (already-promoted) operand type. DIV always yields a nullable result: division
// by zero produces NULL rather than a runtime error. Every other arithmetic/comparison op just
// ORs the operand nullabilities.
func ResultNullability(opcodeIsDiv bool, left, right *Type) bool {
	if opcodeIsDiv {
		return true
	}
	return MayBeNull(left, right)
}

// CheckRefInvariant validates the two structural invariants on Ref types that the constructors
// already enforce at construction time; this is a defense-in-depth assertion for verifying that a
// type tree built by means other than the constructors (e.g. deserialization) is still
// well-formed. Nothing in this module calls it.
func CheckRefInvariant(t *Type) error {
	if t == nil {
		return nil
	}
	if t.Kind == KindRef {
		if t.MayBeNull {
			return fmt.Errorf("types: Ref type must not be nullable: %s", t)
		}
		if t.Args[0].Kind == KindRef {
			return fmt.Errorf("types: nested Ref(Ref) is forbidden: %s", t)
		}
	}
	for _, a := range t.Args {
		if err := CheckRefInvariant(a); err != nil {
			return err
		}
	}
	return nil
}

// ContainsAny reports whether t (recursively) mentions the Any placeholder type. Used by the
// check in circuit.PartialCircuit.Seal that no operator's output type still carries an unresolved
// Any.
func ContainsAny(t *Type) bool {
	if t == nil {
		return false
	}
	if t.Kind == KindAny {
		return true
	}
	for _, a := range t.Args {
		if ContainsAny(a) {
			return true
		}
	}
	return false
}
