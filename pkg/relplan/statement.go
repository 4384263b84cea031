package relplan

import (
	"fmt"

	"github.com/l7mp/dbsp-sql/pkg/diag"
)

// ColumnDef is one column of a CREATE TABLE.
type ColumnDef struct {
	Name     string
	Type     *RelDataType
	Nullable bool
}

// Key names a PRIMARY KEY or UNIQUE constraint's column list; Unique=false with a non-empty
// Columns list marks the implicit primary key.
type Key struct {
	Columns []string
	Unique  bool
}

// Statement is the external collaborator's top-level unit of work: a DDL declaration or a DML
// row-change batch. compileStatement dispatches on the concrete type.
type Statement interface {
	StatementPos() diag.Position
}

// CreateTable declares a new base table. Base tables are always append/update/delete inputs to
// the circuit, never views: there's no plan tree attached, only a schema.
type CreateTable struct {
	SourcePos
	Name    string
	Columns []ColumnDef
	Keys    []Key
}

func (s *CreateTable) StatementPos() diag.Position { return s.Pos() }
func (s *CreateTable) Describe() string            { return fmt.Sprintf("create table %s", s.Name) }

// DropTable removes a previously declared base table from the compiler's table registry. Circuit
// operators already emitted for the table, and views still reading from it, are left in place.
type DropTable struct {
	SourcePos
	Name string
}

func (s *DropTable) StatementPos() diag.Position { return s.Pos() }
func (s *DropTable) Describe() string            { return fmt.Sprintf("drop table %s", s.Name) }

// CreateView declares a named, possibly materialized query: Query is the root of the relational
// plan tree compileStatement lowers into the view's corresponding circuit subgraph.
type CreateView struct {
	SourcePos
	Name         string
	Query        Node
	Materialized bool
}

func (s *CreateView) StatementPos() diag.Position { return s.Pos() }
func (s *CreateView) Describe() string            { return fmt.Sprintf("create view %s", s.Name) }

// DropView removes a previously declared view's named output; the operators already emitted for
// it stay in the circuit under construction.
type DropView struct {
	SourcePos
	Name string
}

func (s *DropView) StatementPos() diag.Position { return s.Pos() }
func (s *DropView) Describe() string            { return fmt.Sprintf("drop view %s", s.Name) }

// RowChangeKind distinguishes an insertion from a deletion within a TableModify batch; DBSP has
// no separate UPDATE primitive, an update is a delete paired with an insert of the new row.
type RowChangeKind int

const (
	RowInsert RowChangeKind = iota
	RowDelete
)

// RowChange is one weighted row edit against a base table, expressed as literal Rex values in
// column order.
type RowChange struct {
	Kind RowChangeKind
	Row  []Rex
}

// TableModify is a DML batch: a list of row insertions/deletions against one base table, applied
// atomically as a single step of the input Z-set. CopyFrom names a second table whose entire
// materialized contents should be folded into Table (the decorrelated, already-planned shape of
// INSERT INTO t (SELECT * FROM s)); when set, Changes is ignored.
type TableModify struct {
	SourcePos
	Table    string
	Changes  []RowChange
	CopyFrom string
}

func (s *TableModify) StatementPos() diag.Position { return s.Pos() }
func (s *TableModify) Describe() string            { return fmt.Sprintf("insert into %s", s.Table) }
