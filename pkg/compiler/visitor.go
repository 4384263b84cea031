package compiler

import (
	"github.com/l7mp/dbsp-sql/pkg/circuit"
	"github.com/l7mp/dbsp-sql/pkg/diag"
	"github.com/l7mp/dbsp-sql/pkg/relplan"
)

// compileNode recursively compiles one plan node, memoizing by node identity so that a plan DAG
// (not just a tree) is lowered exactly once: re-visiting an already-memoized node is a no-op that
// returns the cached operator.
func (c *Compiler) compileNode(n relplan.Node) (circuit.Operator, error) {
	if op, ok := c.memo[n]; ok {
		return op, nil
	}

	op, err := c.lower(n)
	if err != nil {
		return nil, err
	}

	c.memo[n] = op
	return op, nil
}

func (c *Compiler) lower(n relplan.Node) (circuit.Operator, error) {
	switch node := n.(type) {
	case *relplan.TableScan:
		return c.lowerTableScan(node)
	case *relplan.Project:
		return c.lowerProject(node)
	case *relplan.Filter:
		return c.lowerFilter(node)
	case *relplan.Values:
		return c.lowerValues(node)
	case *relplan.SetOp:
		return c.lowerSetOp(node)
	case *relplan.Aggregate:
		return c.lowerAggregate(node)
	case *relplan.Join:
		return c.lowerJoin(node)
	case *relplan.Window:
		return c.lowerWindow(node)
	case *relplan.Sort:
		return c.lowerSort(node)
	case *relplan.Correlate:
		return c.lowerCorrelate(node)
	case *relplan.Uncollect:
		return c.lowerUncollect(node)
	default:
		return nil, diag.NewUnimplementedError(n, "unsupported plan node")
	}
}
