package relplan

import (
	"fmt"

	"github.com/l7mp/dbsp-sql/pkg/diag"
)

// JoinType is the upstream join kind. FULL and the two semi/anti variants are included because
// the lowering rules for outer joins need to distinguish which side's unmatched rows get padded.
type JoinType int

const (
	JoinInner JoinType = iota
	JoinLeft
	JoinRight
	JoinFull
	JoinSemi
	JoinAnti
)

// AggCall is one aggregate function call within an Aggregate node: the function, the input
// columns it reduces over, and whether DISTINCT was requested on its inputs.
type AggCall struct {
	Func     string // "COUNT", "SUM", "MIN", "MAX", "AVG", and similar
	Args     []int  // indices into the input row
	Distinct bool
	Type     *RelDataType
	Name     string
}

// Collation is one ORDER BY key: the input column and its direction/null placement.
type Collation struct {
	Index      int
	Descending bool
	NullsFirst bool
}

// RelRange is a window frame bound, expressed the way the window-lowering rule wants it: a
// number of ROWS, or a RANGE expressed in the ordering column's own units. Unbounded is true for
// UNBOUNDED PRECEDING/FOLLOWING, in which case Value is unused.
type RelRange struct {
	Unbounded bool
	Value     int64 // row count, or RANGE offset in the ordering column's unit
}

// WindowGroup bundles one OVER(...) clause's partition/order keys, frame bounds and the
// aggregate calls computed within it; a single Window node can carry several such groups when
// the query has multiple OVER clauses sharing a scan.
type WindowGroup struct {
	PartitionBy []int
	OrderBy     []Collation
	Before      RelRange
	After       RelRange
	Calls       []AggCall
}

// Node is implemented by every relational plan node.
type Node interface {
	diag.PlanNode
	RowType() *RelDataType
	Inputs() []Node
}

type nodeBase struct {
	SourcePos
	Type *RelDataType
}

func (n nodeBase) RowType() *RelDataType { return n.Type }

// SetRowType assigns a node's declared row type. It exists so that a fixture or test builder
// outside this package can populate RowType without naming the unexported nodeBase field in a
// composite literal; Join declares its own "Type"-named field (the join kind), which would
// otherwise shadow the promoted one.
func (n *nodeBase) SetRowType(t *RelDataType) { n.Type = t }

// TableScan reads a base table in full.
type TableScan struct {
	nodeBase
	Table   string
	Columns []string
}

func (n *TableScan) Describe() string { return fmt.Sprintf("TableScan(%s)", n.Table) }
func (n *TableScan) Inputs() []Node   { return nil }

// Project computes a fixed list of scalar expressions over its input row.
type Project struct {
	nodeBase
	Input Node
	Exprs []Rex
	Names []string
}

func (n *Project) Describe() string { return "Project" }
func (n *Project) Inputs() []Node   { return []Node{n.Input} }

// Filter drops input rows for which Condition evaluates to false or null.
type Filter struct {
	nodeBase
	Input     Node
	Condition Rex
}

func (n *Filter) Describe() string { return "Filter" }
func (n *Filter) Inputs() []Node   { return []Node{n.Input} }

// Join pairs rows of Left and Right for which Condition holds, per JoinType's semantics.
type Join struct {
	nodeBase
	Left, Right Node
	Type        JoinType
	Condition   Rex
}

func (n *Join) Describe() string { return fmt.Sprintf("Join(%d)", n.Type) }
func (n *Join) Inputs() []Node   { return []Node{n.Left, n.Right} }

// Aggregate groups Input by GroupSet and reduces each group with Calls.
type Aggregate struct {
	nodeBase
	Input    Node
	GroupSet []int
	Calls    []AggCall
}

func (n *Aggregate) Describe() string { return "Aggregate" }
func (n *Aggregate) Inputs() []Node   { return []Node{n.Input} }

// SetOpKind distinguishes UNION, INTERSECT and EXCEPT/MINUS.
type SetOpKind int

const (
	SetUnion SetOpKind = iota
	SetIntersect
	SetMinus
)

// SetOp combines two same-shaped inputs per Kind. All=false drops duplicates (Distinct).
type SetOp struct {
	nodeBase
	Left, Right Node
	Kind        SetOpKind
	All         bool
}

func (n *SetOp) Describe() string { return fmt.Sprintf("SetOp(%d,all=%v)", n.Kind, n.All) }
func (n *SetOp) Inputs() []Node   { return []Node{n.Left, n.Right} }

// Values is an inline constant relation: each entry of Rows is one row's list of literal Rex
// values (always *RexLiteral in practice, but typed as Rex to reuse the same evaluator path).
type Values struct {
	nodeBase
	Rows [][]Rex
}

func (n *Values) Describe() string { return fmt.Sprintf("Values(%d rows)", len(n.Rows)) }
func (n *Values) Inputs() []Node   { return nil }

// Sort orders Input by Keys, optionally truncating to a Fetch/Offset window (LIMIT/OFFSET).
// Fetch < 0 means unbounded.
type Sort struct {
	nodeBase
	Input  Node
	Keys   []Collation
	Fetch  int64
	Offset int64
}

func (n *Sort) Describe() string { return "Sort" }
func (n *Sort) Inputs() []Node   { return []Node{n.Input} }

// Window evaluates one or more OVER(...) aggregate groups against Input, appending their results
// as extra trailing columns rather than collapsing rows the way Aggregate does.
type Window struct {
	nodeBase
	Input  Node
	Groups []WindowGroup
}

func (n *Window) Describe() string { return fmt.Sprintf("Window(%d groups)", len(n.Groups)) }
func (n *Window) Inputs() []Node   { return []Node{n.Input} }

// Correlate evaluates Apply once per row of Input, carrying Input's row into Apply's scope
// through CorrelationID, and joins the two row streams (a decorrelated LATERAL join).
type Correlate struct {
	nodeBase
	Input, Apply    Node
	CorrelationID   int
	RequiredColumns []int
}

func (n *Correlate) Describe() string { return "Correlate" }
func (n *Correlate) Inputs() []Node   { return []Node{n.Input, n.Apply} }

// Uncollect flattens an array/multiset-valued column of Input into one output row per element.
type Uncollect struct {
	nodeBase
	Input       Node
	Column      int
	WithOrdinal bool
}

func (n *Uncollect) Describe() string { return "Uncollect" }
func (n *Uncollect) Inputs() []Node   { return []Node{n.Input} }
