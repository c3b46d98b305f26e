package vm

import (
	"fmt"
	"strconv"
)

// Value is anything a member can return or receive.
//
// Instances are *Object. Go strings, numbers, booleans and nil pass
// through unchanged; the model does not box them.
type Value any

// ---------------------------------------------------------------------------
// Type checking
// ---------------------------------------------------------------------------

// IsNil returns true for nil and for a nil *Object.
func IsNil(v Value) bool {
	if v == nil {
		return true
	}
	if obj, ok := v.(*Object); ok {
		return obj == nil
	}
	return false
}

// AsObject returns v as an instance, or nil if it is not one.
func AsObject(v Value) *Object {
	obj, _ := v.(*Object)
	return obj
}

// ---------------------------------------------------------------------------
// Printing
// ---------------------------------------------------------------------------

// Format renders a value for display. Strings are printed verbatim,
// instances as "ClassName {var: value, ...}". An instance reached again
// while it is still being printed renders as "<ClassName>".
func Format(v Value) string {
	return format(v, nil)
}

func format(v Value, seen map[*Object]bool) string {
	if IsNil(v) {
		return "nil"
	}
	if obj := AsObject(v); obj != nil {
		return obj.format(seen)
	}
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
