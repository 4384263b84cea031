package compiler

import (
	"fmt"

	"github.com/l7mp/dbsp-sql/pkg/circuit"
	"github.com/l7mp/dbsp-sql/pkg/diag"
	"github.com/l7mp/dbsp-sql/pkg/relplan"
	"github.com/l7mp/dbsp-sql/pkg/types"
)

// Table is the side model for one declared base table: its schema, and the materialized Z-set of
// rows inserted via DML, if any. It is independent of the operator graph except that DDL may
// force a Source operator to exist even when no view references the table yet.
type Table struct {
	Name     string
	RowType  *types.Type
	Contents []circuit.ConstantRow
}

func (c *Compiler) createTable(stmt *relplan.CreateTable) error {
	if _, exists := c.tables[stmt.Name]; exists {
		return diag.NewTranslationError(stmt, fmt.Sprintf("table %q already exists", stmt.Name))
	}

	fields := make([]relplan.RelField, len(stmt.Columns))
	for i, col := range stmt.Columns {
		fields[i] = relplan.RelField{Name: col.Name, Type: col.Type}
	}
	rowType, err := c.ConvertType(relplan.Struct(fields...))
	if err != nil {
		return diag.NewTranslationError(stmt, err.Error())
	}

	c.tables[stmt.Name] = &Table{Name: stmt.Name, RowType: rowType}

	if c.forceSourceOnCreate {
		if _, exists := c.pc.LookupInput(stmt.Name); !exists {
			src := c.pc.Add(circuit.NewSource(stmt.Name, rowType, stmt))
			c.pc.AddInput(stmt.Name, src)
		}
	}
	return nil
}

func (c *Compiler) dropTable(stmt *relplan.DropTable) error {
	if _, exists := c.tables[stmt.Name]; !exists {
		return diag.NewTranslationError(stmt, fmt.Sprintf("table %q does not exist", stmt.Name))
	}
	delete(c.tables, stmt.Name)
	return nil
}

// tableModify evaluates a VALUES-shaped INSERT/DELETE batch against its table's literal row type
// and folds the result into the table's materialized contents, returning the updated contents as
// a Constant operator per the DML return convention of CompileStatement.
func (c *Compiler) tableModify(stmt *relplan.TableModify) (*circuit.Constant, error) {
	tbl, ok := c.tables[stmt.Table]
	if !ok {
		return nil, diag.NewTranslationError(stmt, fmt.Sprintf("table %q does not exist", stmt.Table))
	}

	if stmt.CopyFrom != "" {
		return c.copyTableContents(tbl, stmt)
	}

	fieldTypes := tbl.RowType.Fields()
	for _, change := range stmt.Changes {
		vals, err := evalLiteralRow(change.Row, fieldTypes, stmt)
		if err != nil {
			return nil, err
		}
		weight := int64(1)
		if change.Kind == relplan.RowDelete {
			weight = -1
		}
		tbl.Contents = append(tbl.Contents, circuit.ConstantRow{Fields: vals, Weight: weight})
	}

	return circuit.NewConstant(tbl.RowType, tbl.Contents, stmt), nil
}

// copyTableContents implements INSERT INTO t (SELECT * FROM s): it folds every row of the source
// table's materialized Z-set into the destination at the same weight, without going through the
// operator graph, since table contents are a side model independent of the circuit per the DML
// convention tableModify already follows for literal VALUES batches.
func (c *Compiler) copyTableContents(tbl *Table, stmt *relplan.TableModify) (*circuit.Constant, error) {
	src, ok := c.tables[stmt.CopyFrom]
	if !ok {
		return nil, diag.NewTranslationError(stmt, fmt.Sprintf("table %q does not exist", stmt.CopyFrom))
	}
	if !tbl.RowType.Equal(src.RowType) {
		return nil, diag.NewTypeMismatchError(stmt, tbl.RowType.String(), src.RowType.String())
	}

	for _, row := range src.Contents {
		fields := make([]any, len(row.Fields))
		copy(fields, row.Fields)
		tbl.Contents = append(tbl.Contents, circuit.ConstantRow{Fields: fields, Weight: row.Weight})
	}

	return circuit.NewConstant(tbl.RowType, tbl.Contents, stmt), nil
}

// evalLiteralRow resolves a VALUES row to its plain Go values. Only RexLiteral entries are
// supported: the upstream constant-folding pass is expected to have already reduced any VALUES
// expression to a literal before it reaches this compiler.
func evalLiteralRow(exprs []relplan.Rex, fieldTypes []*types.Type, node diag.PlanNode) ([]any, error) {
	if len(exprs) != len(fieldTypes) {
		return nil, diag.NewTranslationError(node, fmt.Sprintf("row has %d values, want %d", len(exprs), len(fieldTypes)))
	}
	vals := make([]any, len(exprs))
	for i, e := range exprs {
		lit, ok := e.(*relplan.RexLiteral)
		if !ok {
			return nil, diag.NewUnimplementedError(node, "non-literal VALUES entry")
		}
		vals[i] = lit.Value
	}
	return vals, nil
}
