// Package types implements the closed type universe of the circuit compiler: base scalar
// kinds, the composite type constructors (tuple, raw tuple, reference, vector, Z-set, weight),
// and the promotion and nullability rules every scalar operator relies on. See detailed
// background on the underlying Z-set algebra in https://mihaibudiu.github.io/work/dbsp-spec.pdf.
//
// Types are immutable once built. Two Types are interchangeable ("sameType") when their Kind,
// width, sign, name and generic arguments match, whatever their nullability; callers should never mutate a *Type returned from a
// constructor, and must call With* to derive a variant.
package types

import (
	"fmt"
	"strings"
)

// Kind enumerates the closed set of type constructors recognized by the circuit compiler.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInteger
	KindFloat
	KindDecimal
	KindString
	KindDate
	KindTimestamp
	KindMillisInterval
	KindGeoPoint
	KindKeyword
	KindUSize
	KindRef
	KindTuple
	KindRawTuple
	KindVec
	KindZSet
	KindWeight
	KindAny
	KindUser
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindDecimal:
		return "decimal"
	case KindString:
		return "string"
	case KindDate:
		return "date"
	case KindTimestamp:
		return "timestamp"
	case KindMillisInterval:
		return "millis_interval"
	case KindGeoPoint:
		return "geopoint"
	case KindKeyword:
		return "keyword"
	case KindUSize:
		return "usize"
	case KindRef:
		return "ref"
	case KindTuple:
		return "tuple"
	case KindRawTuple:
		return "raw_tuple"
	case KindVec:
		return "vec"
	case KindZSet:
		return "zset"
	case KindWeight:
		return "weight"
	case KindAny:
		return "any"
	case KindUser:
		return "user"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Type is the universal type descriptor used throughout the scalar IR and the circuit operators.
// It is deliberately a flat struct rather than an interface hierarchy: the visitor style used by
// the rest of the compiler matches a tagged value much better than a class tree, and keeps
// equality and hashing trivial.
type Type struct {
	Kind      Kind
	MayBeNull bool

	// Width/Signed apply to KindInteger and KindFloat.
	Width  int
	Signed bool

	// Args holds the generic argument list: the element type for Ref/Vec, the field types for
	// Tuple/RawTuple, (element, weight) for ZSet, and the declared generic arguments for User.
	Args []*Type

	// Name applies to KindUser: the upstream type name (e.g. a UDT or extension type).
	Name string
}

// Null is the type of the SQL NULL literal before it is unified with a concrete field type.
var Null = &Type{Kind: KindNull, MayBeNull: true}

// Bool constructs a possibly-nullable boolean type.
func Bool(nullable bool) *Type { return &Type{Kind: KindBool, MayBeNull: nullable} }

// Integer constructs a signed or unsigned integer type of the given bit width.
// Width must be one of 16, 32, 64; the constructor does not validate it so that callers
// converting from an untrusted upstream descriptor can report a TranslationError themselves.
func Integer(width int, signed, nullable bool) *Type {
	return &Type{Kind: KindInteger, Width: width, Signed: signed, MayBeNull: nullable}
}

// I16, I32, I64 are convenience constructors for the common integer widths.
func I16(nullable bool) *Type { return Integer(16, true, nullable) }
func I32(nullable bool) *Type { return Integer(32, true, nullable) }
func I64(nullable bool) *Type { return Integer(64, true, nullable) }

// Float constructs a floating point type of the given bit width (32 or 64).
func Float(width int, nullable bool) *Type {
	return &Type{Kind: KindFloat, Width: width, MayBeNull: nullable}
}

func F32(nullable bool) *Type { return Float(32, nullable) }
func F64(nullable bool) *Type { return Float(64, nullable) }

// Decimal, String, Date, Timestamp, MillisInterval, GeoPoint, Keyword, USize, Weight, Any are the
// remaining base kinds; none of them carry generic arguments.
func Decimal(nullable bool) *Type        { return &Type{Kind: KindDecimal, MayBeNull: nullable} }
func String(nullable bool) *Type         { return &Type{Kind: KindString, MayBeNull: nullable} }
func Date(nullable bool) *Type           { return &Type{Kind: KindDate, MayBeNull: nullable} }
func Timestamp(nullable bool) *Type      { return &Type{Kind: KindTimestamp, MayBeNull: nullable} }
func MillisInterval(nullable bool) *Type { return &Type{Kind: KindMillisInterval, MayBeNull: nullable} }
func GeoPoint(nullable bool) *Type       { return &Type{Kind: KindGeoPoint, MayBeNull: nullable} }
func Keyword(nullable bool) *Type        { return &Type{Kind: KindKeyword, MayBeNull: nullable} }
func USize(nullable bool) *Type          { return &Type{Kind: KindUSize, MayBeNull: nullable} }
func Weight() *Type                      { return &Type{Kind: KindWeight, MayBeNull: false} }
func Any() *Type                         { return &Type{Kind: KindAny, MayBeNull: false} }

// Ref constructs a reference to elem. Ref is never nullable and Ref(Ref(_)) is forbidden: both
// are invariants of the type universe, not just lowering conventions, so the constructor panics
// rather than silently producing an ill-formed type. Every caller of Ref is internal to this
// module and under our control, so a panic here indicates a compiler bug, not bad input.
func Ref(elem *Type) *Type {
	if elem.Kind == KindRef {
		panic("types: Ref(Ref(_)) is forbidden")
	}
	return &Type{Kind: KindRef, MayBeNull: false, Args: []*Type{elem}}
}

// Tuple constructs a tuple type over the given field types. A tuple's nullability is never
// implied by its fields; callers widen it explicitly (e.g. outer-join row widening).
func Tuple(fields ...*Type) *Type {
	return &Type{Kind: KindTuple, Args: fields}
}

// RawTuple constructs a raw tuple type: a tuple without row-level null tracking, used as the
// value half of indexed Z-sets built for "return key" style joins.
func RawTuple(fields ...*Type) *Type {
	return &Type{Kind: KindRawTuple, Args: fields}
}

// Vec constructs a vector type, used by Sort/Limit's intermediate fold.
func Vec(elem *Type) *Type {
	return &Type{Kind: KindVec, Args: []*Type{elem}}
}

// ZSet constructs a Z-set type over the given element type and weight type. The element type of
// a ZSet must be a tuple; the constructor panics on violation for the same reason Ref does.
func ZSet(elem, weight *Type) *Type {
	if elem.Kind != KindTuple && elem.Kind != KindRawTuple {
		panic("types: ZSet element type must be a tuple")
	}
	return &Type{Kind: KindZSet, Args: []*Type{elem, weight}}
}

// User constructs a reference to a named, externally defined generic type.
func User(name string, nullable bool, args ...*Type) *Type {
	return &Type{Kind: KindUser, Name: name, MayBeNull: nullable, Args: args}
}

// WithNullable returns a copy of t with MayBeNull set to nullable. It is the only supported way
// to change nullability after construction; it is invalid (and panics) to call it on a Ref.
func (t *Type) WithNullable(nullable bool) *Type {
	if t.Kind == KindRef && nullable {
		panic("types: Ref cannot be made nullable")
	}
	cp := *t
	cp.MayBeNull = nullable
	return &cp
}

// Elem returns the element type of a Ref, Vec, or the element half of a ZSet.
func (t *Type) Elem() *Type {
	switch t.Kind {
	case KindRef, KindVec:
		return t.Args[0]
	case KindZSet:
		return t.Args[0]
	default:
		panic(fmt.Sprintf("types: Elem() on non-container kind %s", t.Kind))
	}
}

// WeightType returns the weight half of a ZSet type.
func (t *Type) WeightType() *Type {
	if t.Kind != KindZSet {
		panic("types: WeightType() on non-ZSet kind " + t.Kind.String())
	}
	return t.Args[1]
}

// Fields returns the field types of a Tuple or RawTuple.
func (t *Type) Fields() []*Type {
	if t.Kind != KindTuple && t.Kind != KindRawTuple {
		panic("types: Fields() on non-tuple kind " + t.Kind.String())
	}
	return t.Args
}

// IsNumeric reports whether t's base kind participates in arithmetic promotion.
func (t *Type) IsNumeric() bool {
	switch t.Kind {
	case KindInteger, KindFloat, KindDecimal:
		return true
	default:
		return false
	}
}

// Equal reports whether t and other are the exact same type, including nullability.
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Kind != other.Kind || t.MayBeNull != other.MayBeNull ||
		t.Width != other.Width || t.Signed != other.Signed || t.Name != other.Name {
		return false
	}
	if len(t.Args) != len(other.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(other.Args[i]) {
			return false
		}
	}
	return true
}

// SameType reports whether t and other agree on everything except nullability. This is the
// comparison the promotion rules in Reduce use to decide whether two operands are "the same
// type" modulo null.
func (t *Type) SameType(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Kind != other.Kind || t.Width != other.Width || t.Signed != other.Signed || t.Name != other.Name {
		return false
	}
	if len(t.Args) != len(other.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].SameType(other.Args[i]) {
			return false
		}
	}
	return true
}

// String renders a human-readable type signature, used in diagnostics and node descriptions.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}

	var b strings.Builder
	if t.MayBeNull {
		b.WriteString("?")
	}

	switch t.Kind {
	case KindInteger:
		sign := "i"
		if !t.Signed {
			sign = "u"
		}
		fmt.Fprintf(&b, "%s%d", sign, t.Width)
	case KindFloat:
		fmt.Fprintf(&b, "f%d", t.Width)
	case KindRef:
		fmt.Fprintf(&b, "ref<%s>", t.Args[0])
	case KindVec:
		fmt.Fprintf(&b, "vec<%s>", t.Args[0])
	case KindTuple:
		b.WriteString(joinTypes("tuple", t.Args))
	case KindRawTuple:
		b.WriteString(joinTypes("raw_tuple", t.Args))
	case KindZSet:
		fmt.Fprintf(&b, "zset<%s,%s>", t.Args[0], t.Args[1])
	case KindUser:
		b.WriteString(joinTypes(t.Name, t.Args))
	default:
		b.WriteString(t.Kind.String())
	}
	return b.String()
}

func joinTypes(name string, args []*Type) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(parts, ", "))
}
