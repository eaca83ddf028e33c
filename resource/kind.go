package resource

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"
	"google.golang.org/protobuf/types/known/structpb"
)

// Kind is the agent's internal dynamic value: a tagged union over null, f64,
// string, bool, list-of-Kind, and map-of-string-to-Kind (spec.md §3). It is the
// type every ComponentConfig attribute is read as before a constructor converts it
// to a concrete Go type.
type Kind struct {
	null bool
	num  float64
	str  string
	b    bool
	list []Kind
	obj  map[string]Kind
	kind kindTag
}

type kindTag int

const (
	kindNull kindTag = iota
	kindNumber
	kindString
	kindBool
	kindList
	kindMap
)

// NullKind is the Kind representing JSON/config null.
var NullKind = Kind{kind: kindNull, null: true}

// NumberKind wraps a float64.
func NumberKind(f float64) Kind { return Kind{kind: kindNumber, num: f} }

// StringKind wraps a string.
func StringKind(s string) Kind { return Kind{kind: kindString, str: s} }

// BoolKind wraps a bool.
func BoolKind(b bool) Kind { return Kind{kind: kindBool, b: b} }

// ListKind wraps a list of Kind.
func ListKind(l []Kind) Kind { return Kind{kind: kindList, list: l} }

// MapKind wraps a string-keyed map of Kind.
func MapKind(m map[string]Kind) Kind { return Kind{kind: kindMap, obj: m} }

// IsNull reports whether this Kind is null.
func (k Kind) IsNull() bool { return k.kind == kindNull }

// AsFloat64 converts to float64, accepting a string containing a number (spec.md
// §9: "converters must accept 'string containing a number' for numeric targets").
func (k Kind) AsFloat64() (float64, error) {
	switch k.kind {
	case kindNumber:
		return k.num, nil
	case kindString:
		return cast.ToFloat64E(k.str)
	case kindBool:
		if k.b {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("cannot convert %v to number", k.kind)
	}
}

// AsInt converts to int using the same leniency as AsFloat64.
func (k Kind) AsInt() (int, error) {
	f, err := k.AsFloat64()
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// AsString converts to string. Numbers and bools are stringified; this direction
// has no leniency requirement but is still total over the representable subset.
func (k Kind) AsString() (string, error) {
	switch k.kind {
	case kindString:
		return k.str, nil
	case kindNumber:
		return cast.ToStringE(k.num)
	case kindBool:
		return cast.ToStringE(k.b)
	default:
		return "", fmt.Errorf("cannot convert %v to string", k.kind)
	}
}

// AsBool converts to bool. Strings that strconv.ParseBool accepts ("true",
// "FALSE", "1", "t", ...) convert, and so does every number (nonzero is true);
// anything else errors.
func (k Kind) AsBool() (bool, error) {
	switch k.kind {
	case kindBool:
		return k.b, nil
	case kindString:
		return cast.ToBoolE(k.str)
	case kindNumber:
		return k.num != 0, nil
	default:
		return false, fmt.Errorf("cannot convert %v to bool", k.kind)
	}
}

// AsList converts to []Kind.
func (k Kind) AsList() ([]Kind, error) {
	if k.kind != kindList {
		return nil, fmt.Errorf("cannot convert %v to list", k.kind)
	}
	return k.list, nil
}

// AsMap converts to map[string]Kind.
func (k Kind) AsMap() (map[string]Kind, error) {
	if k.kind != kindMap {
		return nil, fmt.Errorf("cannot convert %v to map", k.kind)
	}
	return k.obj, nil
}

func (t kindTag) String() string {
	switch t {
	case kindNull:
		return "null"
	case kindNumber:
		return "number"
	case kindString:
		return "string"
	case kindBool:
		return "bool"
	case kindList:
		return "list"
	case kindMap:
		return "map"
	default:
		return "unknown"
	}
}

// ToInterface unwraps a Kind into the plain Go value it carries (nil,
// float64, string, bool, []interface{}, or map[string]interface{}), with no
// cross-type conversion. Callers that need leniency should use the As* methods
// instead; this is for decoders that need the exact underlying representation.
func (k Kind) ToInterface() interface{} {
	switch k.kind {
	case kindNull:
		return nil
	case kindNumber:
		return k.num
	case kindString:
		return k.str
	case kindBool:
		return k.b
	case kindList:
		out := make([]interface{}, len(k.list))
		for i, v := range k.list {
			out[i] = v.ToInterface()
		}
		return out
	case kindMap:
		out := make(map[string]interface{}, len(k.obj))
		for key, v := range k.obj {
			out[key] = v.ToInterface()
		}
		return out
	default:
		return nil
	}
}

// ToStructValue converts a Kind to its google.protobuf.Value wire counterpart,
// via structpb.NewValue on the plain Go value ToInterface already knows how to
// produce rather than a hand-rolled recursive switch over structpb's value
// kinds. Testable property (spec.md §8): Kind <-> structpb.Value is a
// round-trip bijection for the representable subset.
func (k Kind) ToStructValue() (*structpb.Value, error) {
	return structpb.NewValue(k.ToInterface())
}

// KindFromStructValue is the inverse of ToStructValue, built on
// structpb.Value's own AsInterface rather than re-deriving its tag switch.
func KindFromStructValue(v *structpb.Value) (Kind, error) {
	if v == nil {
		return NullKind, nil
	}
	return kindFromAny(v.AsInterface()), nil
}

// MarshalJSON implements json.Marshaler.
func (k Kind) MarshalJSON() ([]byte, error) {
	switch k.kind {
	case kindNull:
		return []byte("null"), nil
	case kindNumber:
		return json.Marshal(k.num)
	case kindString:
		return json.Marshal(k.str)
	case kindBool:
		return json.Marshal(k.b)
	case kindList:
		return json.Marshal(k.list)
	case kindMap:
		return json.Marshal(k.obj)
	default:
		return nil, fmt.Errorf("unknown kind %v", k.kind)
	}
}

// UnmarshalJSON implements json.Unmarshaler, decoding arbitrary JSON into a Kind.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*k = kindFromAny(raw)
	return nil
}

func kindFromAny(raw interface{}) Kind {
	switch v := raw.(type) {
	case nil:
		return NullKind
	case float64:
		return NumberKind(v)
	case string:
		return StringKind(v)
	case bool:
		return BoolKind(v)
	case []interface{}:
		out := make([]Kind, len(v))
		for i, item := range v {
			out[i] = kindFromAny(item)
		}
		return ListKind(out)
	case map[string]interface{}:
		out := make(map[string]Kind, len(v))
		for key, item := range v {
			out[key] = kindFromAny(item)
		}
		return MapKind(out)
	default:
		return NullKind
	}
}
