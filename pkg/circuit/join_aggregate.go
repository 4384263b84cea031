package circuit

import (
	"fmt"

	"github.com/l7mp/dbsp-sql/pkg/diag"
	"github.com/l7mp/dbsp-sql/pkg/scalar"
	"github.com/l7mp/dbsp-sql/pkg/types"
)

// Join pairs matching keys of two indexed inputs. Pair is a closure (K,L,R) -> Out; Left and
// Right must already be indexed (promoted by Index) on the comparable key type.
type Join struct {
	base
	Left, Right Operator
	Pair        *scalar.Closure
}

func NewJoin(left, right Operator, pair *scalar.Closure, source diag.PlanNode) *Join {
	return &Join{
		base:  newBase(KindJoin, types.ZSet(pair.Body.Type(), types.Weight()), true, source, left, right),
		Left:  left,
		Right: right,
		Pair:  pair,
	}
}

func (j *Join) String() string {
	return fmt.Sprintf("Join(%s, %s, %s)", j.Pair.DebugName, j.Left, j.Right)
}

// Fold is the init/step/finalize triple that drives an Aggregate or WindowAggregate operator.
// Init is the fold's zero accumulator value, Step is a closure (Acc, Row) -> Acc, and Finalize is
// a closure Acc -> Value producing the aggregate's externally visible result.
type Fold struct {
	Init     scalar.Expr
	Step     *scalar.Closure
	Finalize *scalar.Closure
}

// Aggregate folds the values of an indexed Input by key, producing a new indexed Z-set of
// (key, Finalize(fold-over-values)) pairs. NewAggregate's outType argument is the declared (K,V)
// element type of the result, since neither Init nor Finalize alone determines it (Finalize may widen nullability).
type Aggregate struct {
	base
	Input Operator
	Fold  Fold
}

func NewAggregate(input Operator, fold Fold, outType *types.Type, source diag.PlanNode) *Aggregate {
	return &Aggregate{
		base:  newBase(KindAggregate, types.ZSet(outType, types.Weight()), input.IsMultiset(), source, input),
		Input: input,
		Fold:  fold,
	}
}

func (a *Aggregate) String() string { return fmt.Sprintf("Aggregate(%s)", a.Input) }

// Bound is one side (PRECEDING/FOLLOWING) of a window frame. Unbounded marks an unbounded frame
// edge; otherwise Offset is the number of order-key units the frame extends on that side.
type Bound struct {
	Unbounded bool
	Offset    int64
}

// WindowAggregate folds values within a sliding frame of an indexed Input, keyed by
// (partition, order). Before/After describe the frame's lower/upper bound relative to each row's
// own order key.
type WindowAggregate struct {
	base
	Input        Operator
	Fold         Fold
	Before, After Bound
}

func NewWindowAggregate(input Operator, fold Fold, before, after Bound, outType *types.Type, source diag.PlanNode) *WindowAggregate {
	return &WindowAggregate{
		base:   newBase(KindWindowAggregate, types.ZSet(outType, types.Weight()), input.IsMultiset(), source, input),
		Input:  input,
		Fold:   fold,
		Before: before,
		After:  after,
	}
}

func (w *WindowAggregate) String() string { return fmt.Sprintf("WindowAggregate(%s)", w.Input) }
