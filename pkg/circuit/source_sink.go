package circuit

import (
	"fmt"

	"github.com/l7mp/dbsp-sql/pkg/diag"
	"github.com/l7mp/dbsp-sql/pkg/types"
)

// Source is a named base table, the only operator kind with no inputs.
type Source struct {
	base
	Name string
}

// NewSource builds a Source whose output element type is elemType, wrapped in a Z-set of weight
// type Weight.
func NewSource(name string, elemType *types.Type, source diag.PlanNode) *Source {
	return &Source{
		base: newBase(KindSource, types.ZSet(elemType, types.Weight()), true, source),
		Name: name,
	}
}

func (s *Source) String() string { return fmt.Sprintf("Source(%s)", s.Name) }

// Sink is a named, observable view output. It wraps the terminal operator of a CREATE VIEW
// statement without changing its element type.
type Sink struct {
	base
	Name  string
	Input Operator
}

func NewSink(name string, input Operator, source diag.PlanNode) *Sink {
	return &Sink{
		base:  newBase(KindSink, input.OutputType(), input.IsMultiset(), source, input),
		Name:  name,
		Input: input,
	}
}

func (s *Sink) String() string { return fmt.Sprintf("Sink(%s, %s)", s.Name, s.Input) }

// Noop is a suppressed sink: a named view whose output policy marks it not observable. It carries
// the same name/type bookkeeping as Sink so the view can still be located by name later.
type Noop struct {
	base
	Name  string
	Input Operator
}

func NewNoop(name string, input Operator, source diag.PlanNode) *Noop {
	return &Noop{
		base:  newBase(KindNoop, input.OutputType(), input.IsMultiset(), source, input),
		Name:  name,
		Input: input,
	}
}

func (n *Noop) String() string { return fmt.Sprintf("Noop(%s, %s)", n.Name, n.Input) }

// ConstantRow is one literal tuple and its weight in a Constant operator's materialized Z-set.
type ConstantRow struct {
	Fields []any
	Weight int64
}

// Constant is a literal Z-set with no inputs, used for VALUES clauses outside DML context and for
// the identity summand in the empty-group aggregation correction.
type Constant struct {
	base
	Rows []ConstantRow
}

func NewConstant(elemType *types.Type, rows []ConstantRow, source diag.PlanNode) *Constant {
	return &Constant{
		base: newBase(KindConstant, types.ZSet(elemType, types.Weight()), true, source),
		Rows: rows,
	}
}

func (c *Constant) String() string { return fmt.Sprintf("Constant(%d rows)", len(c.Rows)) }
