package relplan

import (
	"fmt"

	"github.com/l7mp/dbsp-sql/pkg/diag"
)

// CallKind is the closed-ish set of relational scalar-expression operator kinds the expression
// compiler (pkg/exprcompiler) knows how to dispatch on. It mirrors a Calcite-style SqlKind.
type CallKind int

const (
	KTimes CallKind = iota
	KDivide
	KMod
	KPlus
	KMinus
	KLessThan
	KGreaterThan
	KLessThanOrEqual
	KGreaterThanOrEqual
	KEquals
	KNotEquals
	KIsDistinctFrom
	KIsNotDistinctFrom
	KOr
	KAnd
	KNot
	KIsTrue
	KIsFalse
	KIsNotTrue
	KIsNotFalse
	KIsNull
	KIsNotNull
	KUnaryMinus
	KUnaryPlus
	KBitAnd
	KBitOr
	KBitXor
	KCast
	KReinterpret
	KCase
	KExtract
	KFloor
	KCeil
	KArrayValueConstructor
	KItem
	KStPoint
	KStDistance
	KConcat
	KTruncate
	KRound
	KNumericInc
	KSign
	KLog10
	KLn
	KAbs
	KPower
	KCardinality
	KElement
	KDivision
	KSearch
)

// TimeUnit names the optional unit keyword on EXTRACT/FLOOR/CEIL (e.g. YEAR, MONTH).
type TimeUnit string

const (
	UnitYear   TimeUnit = "YEAR"
	UnitMonth  TimeUnit = "MONTH"
	UnitDay    TimeUnit = "DAY"
	UnitHour   TimeUnit = "HOUR"
	UnitMinute TimeUnit = "MINUTE"
	UnitSecond TimeUnit = "SECOND"
)

// SourcePos is an upstream source position, attached to every Rex/Rel node.
type SourcePos struct {
	Line, Column int
	File         string
}

func (p SourcePos) Pos() diag.Position {
	return diag.Position{Line: p.Line, Column: p.Column, File: p.File}
}

// Rex is implemented by every relational scalar-expression node.
type Rex interface {
	diag.PlanNode
	RexType() *RelDataType
}

type rexBase struct {
	SourcePos
	Type *RelDataType
}

func (r rexBase) RexType() *RelDataType { return r.Type }

// RexInputRef refers to field Index of the enclosing row, or, when Index is beyond the row's
// arity, to slot (Index - rowArity) of the trailing constant pool (Calcite-style constants
// appended after the row's own fields).
type RexInputRef struct {
	rexBase
	Index int
}

func (r *RexInputRef) Describe() string { return fmt.Sprintf("$%d", r.Index) }

// NewRexInputRef builds a RexInputRef at the zero source position, the constructor the upstream
// adapter (or a test fixture) uses when it doesn't need to track a parse-time position.
func NewRexInputRef(index int, t *RelDataType) *RexInputRef {
	return &RexInputRef{rexBase: rexBase{Type: t}, Index: index}
}

// RexLiteral is a constant value with its declared type. Value is nil for SQL NULL.
type RexLiteral struct {
	rexBase
	Value any
}

func (r *RexLiteral) Describe() string { return fmt.Sprintf("literal(%v)", r.Value) }

// NewRexLiteral builds a RexLiteral at the zero source position.
func NewRexLiteral(value any, t *RelDataType) *RexLiteral {
	return &RexLiteral{rexBase: rexBase{Type: t}, Value: value}
}

// RexCall is a function/operator invocation: Kind picks the dispatch branch in the expression
// compiler, Unit carries the optional EXTRACT/FLOOR/CEIL unit keyword (empty otherwise).
type RexCall struct {
	rexBase
	Kind     CallKind
	Operands []Rex
	Unit     TimeUnit
}

func (r *RexCall) Describe() string {
	return fmt.Sprintf("call(%d, %d operands)", r.Kind, len(r.Operands))
}

// NewRexCall builds a RexCall at the zero source position and with no unit keyword. Use the
// struct literal directly when a unit keyword is needed (EXTRACT/FLOOR/CEIL).
func NewRexCall(kind CallKind, operands []Rex, t *RelDataType) *RexCall {
	return &RexCall{rexBase: rexBase{Type: t}, Kind: kind, Operands: operands}
}
