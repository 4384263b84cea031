package circuit

import (
	"fmt"

	"github.com/l7mp/dbsp-sql/pkg/diag"
	"github.com/l7mp/dbsp-sql/pkg/scalar"
	"github.com/l7mp/dbsp-sql/pkg/types"
)

// Map applies Closure (Row -> Row') to every element of Input, preserving weights.
type Map struct {
	base
	Input   Operator
	Closure *scalar.Closure
}

func NewMap(input Operator, closure *scalar.Closure, source diag.PlanNode) *Map {
	return &Map{
		base:    newBase(KindMap, types.ZSet(closure.Body.Type(), types.Weight()), input.IsMultiset(), source, input),
		Input:   input,
		Closure: closure,
	}
}

func (m *Map) String() string { return fmt.Sprintf("Map(%s, %s)", m.Closure.DebugName, m.Input) }

// Filter applies Closure (Row -> Bool) to every element of Input, keeping weights of rows for
// which it returns true.
type Filter struct {
	base
	Input   Operator
	Closure *scalar.Closure
}

func NewFilter(input Operator, closure *scalar.Closure, source diag.PlanNode) *Filter {
	return &Filter{
		base:    newBase(KindFilter, input.OutputType(), input.IsMultiset(), source, input),
		Input:   input,
		Closure: closure,
	}
}

func (f *Filter) String() string { return fmt.Sprintf("Filter(%s, %s)", f.Closure.DebugName, f.Input) }

// Index applies Closure (Row -> (K,V)) to every element of Input, promoting a plain Z-set to an
// indexed Z-set keyed by K. Closure.Body must produce the (K,V) pair, conventionally a RawTuple.
type Index struct {
	base
	Input   Operator
	Closure *scalar.Closure
}

func NewIndex(input Operator, closure *scalar.Closure, source diag.PlanNode) *Index {
	return &Index{
		base:    newBase(KindIndex, types.ZSet(closure.Body.Type(), types.Weight()), input.IsMultiset(), source, input),
		Input:   input,
		Closure: closure,
	}
}

func (i *Index) String() string { return fmt.Sprintf("Index(%s, %s)", i.Closure.DebugName, i.Input) }

// MapIndex applies Closure to every (K,V) element of an already-indexed Input, producing a new
// indexed Z-set.
type MapIndex struct {
	base
	Input   Operator
	Closure *scalar.Closure
}

func NewMapIndex(input Operator, closure *scalar.Closure, source diag.PlanNode) *MapIndex {
	return &MapIndex{
		base:    newBase(KindMapIndex, types.ZSet(closure.Body.Type(), types.Weight()), input.IsMultiset(), source, input),
		Input:   input,
		Closure: closure,
	}
}

func (m *MapIndex) String() string {
	return fmt.Sprintf("MapIndex(%s, %s)", m.Closure.DebugName, m.Input)
}

// FlatMap applies Closure (Row -> Vec<Row'>) to every element of Input, expanding each input row
// to zero or more output rows, each inheriting the input row's weight.
type FlatMap struct {
	base
	Input   Operator
	Closure *scalar.Closure
}

func NewFlatMap(input Operator, closure *scalar.Closure, source diag.PlanNode) *FlatMap {
	elem := closure.Body.Type().Elem()
	return &FlatMap{
		base:    newBase(KindFlatMap, types.ZSet(elem, types.Weight()), true, source, input),
		Input:   input,
		Closure: closure,
	}
}

func (f *FlatMap) String() string { return fmt.Sprintf("FlatMap(%s, %s)", f.Closure.DebugName, f.Input) }
