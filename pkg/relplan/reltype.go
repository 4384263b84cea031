// Package relplan models the external collaborator's output: a normalized, decorrelated
// relational plan (projections, filters, joins, aggregation, window functions, set operations,
// sort/limit, values, correlation/unnest) together with its embedded scalar-expression trees and
// upstream type descriptors.
//
// None of the types here are produced by this module. They stand in for whatever the real SQL
// parser and cost-based optimizer hand the circuit compiler upstream (Calcite's RelNode/RexNode
// in the system this module is modeled on); the compiler's job starts at convertType and
// compileStatement, both of which take a relplan value as input.
package relplan

// TypeKind is the upstream type descriptor's kind tag, the shape the type compiler
// (pkg/typeconv.Convert) sees before it has been lowered to the circuit compiler's own
// pkg/types.Type universe. It deliberately mirrors a Calcite-style SqlTypeName rather than
// pkg/types.Kind: the two enums happen to overlap almost completely, but keeping them distinct
// types documents the boundary and stops a stray rename on one side from silently compiling
// against the other.
type TypeKind int

const (
	TNull TypeKind = iota
	TBoolean
	TSmallInt // 16-bit
	TInteger  // 32-bit
	TBigInt   // 64-bit
	TReal     // 32-bit float
	TDouble   // 64-bit float
	TDecimal
	TVarchar
	TDate
	TTimestamp
	TIntervalMillis
	TGeoPoint
	TKeyword
	TUSize
	TArray  // Args[0] = element
	TMap    // Args[0] = key, Args[1] = value (lowered to User("map", ...))
	TStruct // Fields holds the named members
	TAny
)

// RelDataType is the upstream type descriptor attached to every RexNode and to every plan node's
// row type.
type RelDataType struct {
	Kind     TypeKind
	Nullable bool
	Args     []*RelDataType // element/key/value types for Array/Map

	// Fields is populated for TStruct: the row type of a relational operator.
	Fields []RelField

	// UserTypeName is populated when Kind doesn't have a closed-form mapping and the type
	// compiler should fall back to a named user type.
	UserTypeName string
}

// RelField is one named, typed column of a struct/row type.
type RelField struct {
	Name string
	Type *RelDataType
}

// Struct is a convenience constructor for a row type.
func Struct(fields ...RelField) *RelDataType {
	return &RelDataType{Kind: TStruct, Fields: fields}
}
