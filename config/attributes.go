package config

import (
	"fmt"

	"go.viam.com/utils"
)

// DecodeInto decodes a component's attribute map into a constructor-specific
// struct, the same shape the teacher's component constructors use to turn
// their `utils.AttributeMap` config into a typed `*Config` (spec.md §3
// "Attributes are opaque to the core and are read by constructors"). Struct
// tags are `mapstructure:"..."`, the tag utils.TransformAttributeMapToStruct
// itself decodes by.
func (c ComponentConfig) DecodeInto(dst interface{}) error {
	_, err := utils.TransformAttributeMapToStruct(dst, c.Attributes)
	return err
}

// decodeAttributeInto reads a single key out of attrs into dst using
// AttributeMap's own typed, lenient accessors (spec.md §9 numeric leniency:
// "string containing a number" converts for numeric targets).
func decodeAttributeInto(attrs utils.AttributeMap, key string, dst interface{}) error {
	switch d := dst.(type) {
	case *float64:
		*d = attrs.Float64(key, 0)
	case *int:
		*d = attrs.Int(key, 0)
	case *string:
		*d = attrs.String(key)
	case *bool:
		*d = attrs.Bool(key, false)
	default:
		return fmt.Errorf("unsupported attribute destination type %T", dst)
	}
	return nil
}
