package compiler

import (
	"github.com/l7mp/dbsp-sql/pkg/circuit"
	"github.com/l7mp/dbsp-sql/pkg/diag"
	"github.com/l7mp/dbsp-sql/pkg/relplan"
	"github.com/l7mp/dbsp-sql/pkg/scalar"
	"github.com/l7mp/dbsp-sql/pkg/types"
)

func (c *Compiler) lowerSetOp(n *relplan.SetOp) (circuit.Operator, error) {
	left, err := c.compileNode(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.compileNode(n.Right)
	if err != nil {
		return nil, err
	}
	declared, err := c.ConvertType(n.RowType())
	if err != nil {
		return nil, err
	}

	switch n.Kind {
	case relplan.SetUnion:
		l := c.castRows(left, declared, n)
		r := c.castRows(right, declared, n)
		sum := c.pc.Add(circuit.NewSum([]circuit.Operator{l, r}, n))
		if !n.All {
			return c.pc.Add(circuit.NewDistinct(sum, n)), nil
		}
		return sum, nil

	case relplan.SetMinus:
		l := c.castRows(left, declared, n)
		r := c.castRows(right, declared, n)
		neg := c.pc.Add(circuit.NewNegate(r, n))
		sum := c.pc.Add(circuit.NewSum([]circuit.Operator{l, neg}, n))
		if !n.All {
			return c.pc.Add(circuit.NewDistinct(sum, n)), nil
		}
		return sum, nil

	case relplan.SetIntersect:
		return c.lowerIntersect(n, left, right, declared)

	default:
		return nil, diag.NewUnimplementedError(n, "set operation kind")
	}
}

// lowerIntersect indexes both sides by the full row (value = empty raw tuple) and joins with a
// "return key" pair closure, so a row survives only when both sides contain it.
func (c *Compiler) lowerIntersect(n *relplan.SetOp, left, right circuit.Operator, declared *types.Type) (circuit.Operator, error) {
	l := c.castRows(left, declared, n)
	r := c.castRows(right, declared, n)

	empty := types.RawTuple()
	lRow := rowVariable(l.OutputType().Elem())
	lIdx := c.indexBy(l, lRow, lRow, scalar.NewRawTuple(nil), "index", n)
	rRow := rowVariable(r.OutputType().Elem())
	rIdx := c.indexBy(r, rRow, rRow, scalar.NewRawTuple(nil), "index", n)

	kVar := scalar.NewVariable("k", declared)
	pair := scalar.NewClosure("pair", []scalar.Param{
		{Name: "k", Type: declared},
		{Name: "l", Type: empty},
		{Name: "r", Type: empty},
	}, kVar)

	join := c.pc.Add(circuit.NewJoin(lIdx, rIdx, pair, n))
	if !n.All {
		return c.pc.Add(circuit.NewDistinct(join, n)), nil
	}
	return join, nil
}
