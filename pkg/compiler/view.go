package compiler

import (
	"fmt"

	"github.com/l7mp/dbsp-sql/pkg/circuit"
	"github.com/l7mp/dbsp-sql/pkg/diag"
	"github.com/l7mp/dbsp-sql/pkg/relplan"
)

// createView runs the plan visitor over the view's query and wraps its terminal operator in a
// Sink or a Noop depending on the sticky next-view-visible toggle, which is reset to true (the
// default) whether or not this statement consumed it.
func (c *Compiler) createView(stmt *relplan.CreateView) (circuit.Operator, error) {
	visible := c.nextViewVisible
	c.nextViewVisible = true

	if _, exists := c.pc.LookupOutput(stmt.Name); exists {
		dup := diag.NewDuplicateDefinitionError(stmt, stmt.Name)
		c.reporter.Report(stmt.Pos(), diag.SeverityWarning, "duplicate definition", dup.Error())
		return nil, nil
	}

	op, err := c.compileNode(stmt.Query)
	if err != nil {
		return nil, err
	}

	var out circuit.Operator
	if visible {
		out = c.pc.Add(circuit.NewSink(stmt.Name, op, stmt))
	} else {
		out = c.pc.Add(circuit.NewNoop(stmt.Name, op, stmt))
	}

	if err := c.pc.AddOutput(stmt.Name, out); err != nil {
		return nil, diag.NewTranslationError(stmt, err.Error())
	}
	return out, nil
}

func (c *Compiler) dropView(stmt *relplan.DropView) error {
	if _, exists := c.pc.LookupOutput(stmt.Name); !exists {
		return diag.NewTranslationError(stmt, fmt.Sprintf("view %q does not exist", stmt.Name))
	}
	c.pc.DropOutput(stmt.Name)
	return nil
}
