package schema

import "reflect"

// Type is the declared data type of a setting. It drives environment
// variable coercion and exact-type constraints.
type Type uint8

const (
	// TypeAny marks an undeclared type; environment text is used verbatim.
	TypeAny Type = iota
	// TypeString represents a string value.
	TypeString
	// TypeInt represents an integer value.
	TypeInt
	// TypeFloat represents a floating-point value.
	TypeFloat
	// TypeBool represents a boolean value.
	TypeBool
	// TypeArray represents an array value.
	TypeArray
	// TypeObject represents an object/map value.
	TypeObject
	// TypeNull represents an explicit null.
	TypeNull
)

// String returns the string representation of the type.
func (t Type) String() string {
	switch t {
	case TypeAny:
		return "any"
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeArray:
		return "array"
	case TypeObject:
		return "object"
	case TypeNull:
		return "null"
	default:
		return "unknown"
	}
}

// Structured reports whether values of this type are parsed from JSON literals.
func (t Type) Structured() bool {
	return t == TypeArray || t == TypeObject
}

// TypeOf returns the Type tag of a runtime value.
func TypeOf(v any) Type {
	switch v.(type) {
	case nil:
		return TypeNull
	case bool:
		return TypeBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeInt
	case float32, float64:
		return TypeFloat
	case string:
		return TypeString
	case map[string]any:
		return TypeObject
	}

	switch reflect.TypeOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return TypeArray
	case reflect.Map:
		return TypeObject
	default:
		return TypeAny
	}
}
