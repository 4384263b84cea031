package compiler

import (
	"github.com/l7mp/dbsp-sql/pkg/circuit"
	"github.com/l7mp/dbsp-sql/pkg/relplan"
)

// lowerTableScan reuses a previously emitted Source or Sink for the scanned table, unwrapping a
// Sink to its underlying producer, or emits a fresh Source otherwise.
func (c *Compiler) lowerTableScan(n *relplan.TableScan) (circuit.Operator, error) {
	if op, ok := c.pc.LookupOutput(n.Table); ok {
		if sink, ok := op.(*circuit.Sink); ok {
			return sink.Input, nil
		}
		if noop, ok := op.(*circuit.Noop); ok {
			return noop.Input, nil
		}
	}

	if op, ok := c.pc.LookupInput(n.Table); ok {
		return op, nil
	}

	elemType, err := c.ConvertType(n.RowType())
	if err != nil {
		return nil, err
	}
	src := c.pc.Add(circuit.NewSource(n.Table, elemType, n))
	c.pc.AddInput(n.Table, src)
	return src, nil
}
