// Package circuit implements the output IR of the relational-to-circuit lowering pass: a DAG of
// pure, immutable operator nodes over Z-sets. Nodes here are never executed by this module; they
// describe a streaming computation for a back-end runtime to interpret. Every operator carries a
// unique id, a reference to the plan node it was lowered from (for diagnostics), a declared
// output element type, an isMultiset flag, and its input operators.
package circuit

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/l7mp/dbsp-sql/pkg/diag"
	"github.com/l7mp/dbsp-sql/pkg/types"
)

// Kind identifies an operator variant for dispatch (rewrite passes, renderers, back-ends).
type Kind int

const (
	KindSource Kind = iota
	KindSink
	KindNoop
	KindMap
	KindFilter
	KindIndex
	KindMapIndex
	KindFlatMap
	KindJoin
	KindAggregate
	KindWindowAggregate
	KindDistinct
	KindSum
	KindSubtract
	KindNegate
	KindDifferential
	KindIntegral
	KindConstant
)

func (k Kind) String() string {
	switch k {
	case KindSource:
		return "Source"
	case KindSink:
		return "Sink"
	case KindNoop:
		return "Noop"
	case KindMap:
		return "Map"
	case KindFilter:
		return "Filter"
	case KindIndex:
		return "Index"
	case KindMapIndex:
		return "MapIndex"
	case KindFlatMap:
		return "FlatMap"
	case KindJoin:
		return "Join"
	case KindAggregate:
		return "Aggregate"
	case KindWindowAggregate:
		return "WindowAggregate"
	case KindDistinct:
		return "Distinct"
	case KindSum:
		return "Sum"
	case KindSubtract:
		return "Subtract"
	case KindNegate:
		return "Negate"
	case KindDifferential:
		return "Differential"
	case KindIntegral:
		return "Integral"
	case KindConstant:
		return "Constant"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Operator is implemented by every circuit IR node. It is a descriptor, not an executor: there is
// deliberately no Process/Evaluate method on this interface, since evaluating a sealed circuit is
// a back-end runtime's concern.
type Operator interface {
	ID() string
	Kind() Kind
	OutputType() *types.Type
	IsMultiset() bool
	Inputs() []Operator
	Source() diag.PlanNode
	String() string
}

// base is embedded by every concrete operator and implements the id/kind/type/input bookkeeping
// common to all of them.
type base struct {
	id       string
	kind     Kind
	outType  *types.Type
	multiset bool
	inputs   []Operator
	source   diag.PlanNode
}

func newBase(kind Kind, outType *types.Type, multiset bool, source diag.PlanNode, inputs ...Operator) base {
	return base{
		id:       uuid.NewString(),
		kind:     kind,
		outType:  outType,
		multiset: multiset,
		inputs:   inputs,
		source:   source,
	}
}

func (b base) ID() string            { return b.id }
func (b base) Kind() Kind            { return b.kind }
func (b base) OutputType() *types.Type { return b.outType }
func (b base) IsMultiset() bool      { return b.multiset }
func (b base) Inputs() []Operator    { return b.inputs }
func (b base) Source() diag.PlanNode { return b.source }

func inputIDs(ops []Operator) []string {
	ids := make([]string, len(ops))
	for i, op := range ops {
		ids[i] = op.ID()
	}
	return ids
}
