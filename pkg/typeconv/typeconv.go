// Package typeconv converts the upstream relplan.RelDataType descriptors into this module's own
// pkg/types.Type universe. It is the single seam where the two type systems meet: everything
// downstream of Convert only ever sees pkg/types.
package typeconv

import (
	"fmt"

	"github.com/l7mp/dbsp-sql/pkg/relplan"
	"github.com/l7mp/dbsp-sql/pkg/types"
)

// Convert lowers an upstream type descriptor to the circuit compiler's own type. Array/Map
// descriptors without a closed-form target fall back to a named User type rather than failing,
// since the scalar compiler only needs a stable identity for them, not a structural one.
func Convert(t *relplan.RelDataType) (*types.Type, error) {
	if t == nil {
		return nil, fmt.Errorf("typeconv: nil type descriptor")
	}

	switch t.Kind {
	case relplan.TNull:
		return types.Null, nil
	case relplan.TBoolean:
		return types.Bool(t.Nullable), nil
	case relplan.TSmallInt:
		return types.Integer(16, true, t.Nullable), nil
	case relplan.TInteger:
		return types.Integer(32, true, t.Nullable), nil
	case relplan.TBigInt:
		return types.Integer(64, true, t.Nullable), nil
	case relplan.TReal:
		return types.Float(32, t.Nullable), nil
	case relplan.TDouble:
		return types.Float(64, t.Nullable), nil
	case relplan.TDecimal:
		return types.Decimal(t.Nullable), nil
	case relplan.TVarchar:
		return types.String(t.Nullable), nil
	case relplan.TDate:
		return types.Date(t.Nullable), nil
	case relplan.TTimestamp:
		return types.Timestamp(t.Nullable), nil
	case relplan.TIntervalMillis:
		return types.MillisInterval(t.Nullable), nil
	case relplan.TGeoPoint:
		return types.GeoPoint(t.Nullable), nil
	case relplan.TKeyword:
		return types.Keyword(t.Nullable), nil
	case relplan.TUSize:
		return types.USize(t.Nullable), nil
	case relplan.TArray:
		if len(t.Args) != 1 {
			return nil, fmt.Errorf("typeconv: array type needs exactly one element arg, got %d", len(t.Args))
		}
		elem, err := Convert(t.Args[0])
		if err != nil {
			return nil, err
		}
		return types.Vec(elem), nil
	case relplan.TMap:
		if len(t.Args) != 2 {
			return nil, fmt.Errorf("typeconv: map type needs exactly two args, got %d", len(t.Args))
		}
		key, err := Convert(t.Args[0])
		if err != nil {
			return nil, err
		}
		val, err := Convert(t.Args[1])
		if err != nil {
			return nil, err
		}
		return types.User("map", t.Nullable, key, val), nil
	case relplan.TStruct:
		fields := make([]*types.Type, len(t.Fields))
		for i, f := range t.Fields {
			ft, err := Convert(f.Type)
			if err != nil {
				return nil, err
			}
			fields[i] = ft
		}
		return types.Tuple(fields...).WithNullable(t.Nullable), nil
	case relplan.TAny:
		return types.Any(), nil
	default:
		if t.UserTypeName != "" {
			return types.User(t.UserTypeName, t.Nullable), nil
		}
		return nil, fmt.Errorf("typeconv: no mapping for upstream type kind %d", t.Kind)
	}
}

// RowType converts a TStruct upstream row type into a circuit Tuple type, failing if t isn't a
// struct. This is the entry point plan-node handlers use for an operator's row type, as opposed
// to a single field's type.
func RowType(t *relplan.RelDataType) (*types.Type, error) {
	if t.Kind != relplan.TStruct {
		return nil, fmt.Errorf("typeconv: expected a struct row type, got kind %d", t.Kind)
	}
	return Convert(t)
}
