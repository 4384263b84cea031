// Package scalar implements the scalar expression IR: the small, closed algebra of typed
// expression nodes that circuit operator closures (Map, Filter, Join pair functions, Aggregate
// folds, ...) are built from. Every node here carries a fully resolved *types.Type; the scalar
// expression compiler (pkg/exprcompiler) is responsible for inserting the casts that make that
// true before a node is ever constructed.
//
// Expressions are modeled as a closed set of tagged struct types implementing the Expr
// interface, matched over by the relational lowering visitor, rather than as a class hierarchy:
// this keeps exhaustiveness checking a matter of a type switch instead of virtual dispatch.
package scalar

import (
	"fmt"
	"strings"

	"github.com/l7mp/dbsp-sql/pkg/types"
)

// Expr is implemented by every scalar IR node.
type Expr interface {
	Type() *types.Type
	String() string
}

type base struct {
	typ *types.Type
}

func (b base) Type() *types.Type { return b.typ }

// Literal is a typed constant value. NULL literals still carry the target field type so that
// downstream type checks (and casts) have something to compare against.
type Literal struct {
	base
	Value any
}

func NewLiteral(value any, t *types.Type) *Literal {
	return &Literal{base: base{t}, Value: value}
}

func (l *Literal) String() string {
	if l.Value == nil {
		return fmt.Sprintf("NULL:%s", l.typ)
	}
	return fmt.Sprintf("%v:%s", l.Value, l.typ)
}

// Variable is a named, typed reference into the enclosing closure's environment (e.g. the row
// parameter itself, or a captured key/value binding introduced by Index/Join/Aggregate).
type Variable struct {
	base
	Name string
}

func NewVariable(name string, t *types.Type) *Variable {
	return &Variable{base: base{t}, Name: name}
}

func (v *Variable) String() string { return v.Name }

// FieldAccess projects field Index out of a tuple-typed expression.
type FieldAccess struct {
	base
	Expr  Expr
	Index int
}

func NewFieldAccess(e Expr, index int, t *types.Type) *FieldAccess {
	return &FieldAccess{base: base{t}, Expr: e, Index: index}
}

func (f *FieldAccess) String() string { return fmt.Sprintf("%s.%d", f.Expr, f.Index) }

// Deref dereferences a Ref-typed expression.
type Deref struct {
	base
	Expr Expr
}

func NewDeref(e Expr) *Deref {
	return &Deref{base: base{e.Type().Elem()}, Expr: e}
}

func (d *Deref) String() string { return fmt.Sprintf("*%s", d.Expr) }

// Ref takes a reference to e.
type Ref struct {
	base
	Expr Expr
}

func NewRef(e Expr) *Ref {
	return &Ref{base: base{types.Ref(e.Type())}, Expr: e}
}

func (r *Ref) String() string { return fmt.Sprintf("&%s", r.Expr) }

// Clone deep-copies the value produced by e; inserted where the lowering needs to break aliasing
// between two places that would otherwise share a Ref.
type Clone struct {
	base
	Expr Expr
}

func NewClone(e Expr) *Clone {
	return &Clone{base: base{e.Type()}, Expr: e}
}

func (c *Clone) String() string { return fmt.Sprintf("clone(%s)", c.Expr) }

// Cast converts e to Target. Casts are inserted eagerly by the compiler so that every node in a
// finished tree already carries its final, resolved type.
type Cast struct {
	base
	Expr Expr
}

func NewCast(e Expr, target *types.Type) *Cast {
	return &Cast{base: base{target}, Expr: e}
}

func (c *Cast) String() string { return fmt.Sprintf("cast<%s>(%s)", c.typ, c.Expr) }

// Binary applies Op to Left and Right, producing ResultType.
type Binary struct {
	base
	Op          Opcode
	Left, Right Expr
}

func NewBinary(op Opcode, left, right Expr, result *types.Type) *Binary {
	return &Binary{base: base{result}, Op: op, Left: left, Right: right}
}

func (b *Binary) String() string { return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right) }

// Unary applies Op to Operand, producing ResultType.
type Unary struct {
	base
	Op      Opcode
	Operand Expr
}

func NewUnary(op Opcode, operand Expr, result *types.Type) *Unary {
	return &Unary{base: base{result}, Op: op, Operand: operand}
}

func (u *Unary) String() string { return fmt.Sprintf("%s(%s)", u.Op, u.Operand) }

// If is a typed conditional. Then and Else must already share a common (possibly widened) type,
// which becomes the node's type.
type If struct {
	base
	Cond, Then, Else Expr
}

func NewIf(cond, then, els Expr, result *types.Type) *If {
	return &If{base: base{result}, Cond: cond, Then: then, Else: els}
}

func (i *If) String() string { return fmt.Sprintf("if(%s, %s, %s)", i.Cond, i.Then, i.Else) }

// Apply invokes a named runtime function on Args (e.g. "extract_i64_YEAR", "power_f64_i32").
// Name is the key the back-end resolves against its primitive table; the core never interprets
// it beyond carrying it through.
type Apply struct {
	base
	Name string
	Args []Expr
}

func NewApply(name string, args []Expr, result *types.Type) *Apply {
	return &Apply{base: base{result}, Name: name, Args: args}
}

func (a *Apply) String() string {
	parts := make([]string, len(a.Args))
	for i, arg := range a.Args {
		parts[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", a.Name, strings.Join(parts, ", "))
}

// ApplyMethod invokes a named method on Receiver with Args; used for runtime primitives that are
// more naturally expressed as a receiver method than a free function (e.g. vector push).
type ApplyMethod struct {
	base
	Name     string
	Receiver Expr
	Args     []Expr
}

func NewApplyMethod(name string, receiver Expr, args []Expr, result *types.Type) *ApplyMethod {
	return &ApplyMethod{base: base{result}, Name: name, Receiver: receiver, Args: args}
}

func (a *ApplyMethod) String() string {
	parts := make([]string, len(a.Args))
	for i, arg := range a.Args {
		parts[i] = arg.String()
	}
	return fmt.Sprintf("%s.%s(%s)", a.Receiver, a.Name, strings.Join(parts, ", "))
}

// Param is a typed, named closure parameter.
type Param struct {
	Name string
	Type *types.Type
}

// Closure is a named, typed lambda: a circuit operator's Map/Filter/Join/Aggregate payload.
// Naming is cosmetic (it exists for debugging and diagnostics) and must never alter semantics.
type Closure struct {
	base
	DebugName string
	Params    []Param
	Body      Expr
}

func NewClosure(debugName string, params []Param, body Expr) *Closure {
	paramTypes := make([]*types.Type, len(params))
	for i, p := range params {
		paramTypes[i] = p.Type
	}
	return &Closure{
		base:      base{types.Tuple(paramTypes...)}, // signature tuple, informational only
		DebugName: debugName,
		Params:    params,
		Body:      body,
	}
}

func (c *Closure) String() string {
	names := make([]string, len(c.Params))
	for i, p := range c.Params {
		names[i] = fmt.Sprintf("%s: %s", p.Name, p.Type)
	}
	return fmt.Sprintf("%s(|%s| %s)", c.DebugName, strings.Join(names, ", "), c.Body)
}

// IndexInto indexes Array at Index (a runtime vector index, not a static field access).
type IndexInto struct {
	base
	Array, Index Expr
}

func NewIndexInto(array, index Expr, result *types.Type) *IndexInto {
	return &IndexInto{base: base{result}, Array: array, Index: index}
}

func (i *IndexInto) String() string { return fmt.Sprintf("%s[%s]", i.Array, i.Index) }

// RawTuple builds an untagged (value-only) tuple from Exprs.
type RawTupleExpr struct {
	base
	Exprs []Expr
}

func NewRawTuple(exprs []Expr) *RawTupleExpr {
	fields := make([]*types.Type, len(exprs))
	for i, e := range exprs {
		fields[i] = e.Type()
	}
	return &RawTupleExpr{base: base{types.RawTuple(fields...)}, Exprs: exprs}
}

func (r *RawTupleExpr) String() string { return joinExprs("raw_tuple", r.Exprs) }

// Tuple builds a tagged tuple from Exprs.
type TupleExpr struct {
	base
	Exprs []Expr
}

func NewTuple(exprs []Expr) *TupleExpr {
	fields := make([]*types.Type, len(exprs))
	for i, e := range exprs {
		fields[i] = e.Type()
	}
	return &TupleExpr{base: base{types.Tuple(fields...)}, Exprs: exprs}
}

func (t *TupleExpr) String() string { return joinExprs("tuple", t.Exprs) }

// StructField is one field of a Struct expression.
type StructField struct {
	Name  string
	Value Expr
}

// Struct builds a named struct literal. Path records the struct's declared type name; the
// struct's result type may still be types.Any() until a later resolution pass narrows it.
type Struct struct {
	base
	Path   string
	Fields []StructField
}

func NewStruct(path string, fields []StructField, result *types.Type) *Struct {
	return &Struct{base: base{result}, Path: path, Fields: fields}
}

func (s *Struct) String() string {
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Value)
	}
	return fmt.Sprintf("%s{%s}", s.Path, strings.Join(parts, ", "))
}

// Comparator describes one key of a lexicographic ordering: a field-selecting closure, a sort
// direction, and the remaining comparator chain to use on ties.
type Comparator struct {
	base
	Field Expr // a Closure Row -> field value
	Asc   bool
	Rest  *Comparator // nil at the end of the chain
}

func NewComparator(field Expr, asc bool, rest *Comparator) *Comparator {
	return &Comparator{base: base{types.Bool(false)}, Field: field, Asc: asc, Rest: rest}
}

func (c *Comparator) String() string {
	dir := "ASC"
	if !c.Asc {
		dir = "DESC"
	}
	if c.Rest == nil {
		return fmt.Sprintf("%s %s", c.Field, dir)
	}
	return fmt.Sprintf("%s %s, %s", c.Field, dir, c.Rest)
}

// Sort wraps a Comparator chain into a value usable as a runtime sort key function.
type Sort struct {
	base
	Inner *Comparator
}

func NewSort(inner *Comparator) *Sort {
	return &Sort{base: base{inner.Type()}, Inner: inner}
}

func (s *Sort) String() string { return fmt.Sprintf("sort(%s)", s.Inner) }

// PathSegment is one step of a Path expression: either a static field name or a dynamic index
// expression.
type PathSegment struct {
	Field string // set when this segment is a static field name
	Index Expr   // set when this segment is a dynamic index
}

// Path is a chain of field/index accesses whose final type may still be Any when the accessed
// struct's shape isn't fully known at emission time (types.Any()).
type Path struct {
	base
	Root     Expr
	Segments []PathSegment
}

func NewPath(root Expr, segments []PathSegment, result *types.Type) *Path {
	return &Path{base: base{result}, Root: root, Segments: segments}
}

func (p *Path) String() string {
	var b strings.Builder
	b.WriteString(p.Root.String())
	for _, s := range p.Segments {
		if s.Index != nil {
			fmt.Fprintf(&b, "[%s]", s.Index)
		} else {
			fmt.Fprintf(&b, ".%s", s.Field)
		}
	}
	return b.String()
}

func joinExprs(name string, exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(parts, ", "))
}
