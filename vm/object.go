package vm

import (
	"fmt"
	"strings"
)

// Object represents an instance of a Glucose class.
//
// An object holds a pointer to its class's vtable, not a copy of it, so
// members attached to the class after the object was created are visible
// through the object as well.
type Object struct {
	vtable *VTable // Pointer to member dispatch table
	slots  []Value // Instance variables, inherited ones first
}

// Member is either a Method or a *Property stored in a vtable slot.
type Member interface {
	Name() string
}

// ---------------------------------------------------------------------------
// Object creation
// ---------------------------------------------------------------------------

// NewObject creates a new Object with the given vtable and slot count.
// All slots are initialized to nil.
func NewObject(vt *VTable, numSlots int) *Object {
	return &Object{
		vtable: vt,
		slots:  make([]Value, numSlots),
	}
}

// NewObjectWithSlots creates a new Object and initializes its slots.
// The slice is copied.
func NewObjectWithSlots(vt *VTable, slots []Value) *Object {
	obj := &Object{vtable: vt, slots: make([]Value, len(slots))}
	copy(obj.slots, slots)
	return obj
}

// ---------------------------------------------------------------------------
// Slot access
// ---------------------------------------------------------------------------

// GetSlot returns the value at the given slot index.
// Panics if index is out of range.
func (obj *Object) GetSlot(index int) Value {
	if index < 0 || index >= len(obj.slots) {
		panic("Object.GetSlot: index out of range")
	}
	return obj.slots[index]
}

// SetSlot sets the value at the given slot index.
// Panics if index is out of range.
func (obj *Object) SetSlot(index int, value Value) {
	if index < 0 || index >= len(obj.slots) {
		panic("Object.SetSlot: index out of range")
	}
	obj.slots[index] = value
}

// Class returns the object's class, or nil if it has no vtable.
func (obj *Object) Class() *Class {
	if obj.vtable == nil {
		return nil
	}
	return obj.vtable.class
}

// ---------------------------------------------------------------------------
// Debugging
// ---------------------------------------------------------------------------

// ClassName returns the name of the object's class, or "?" if vtable is nil.
func (obj *Object) ClassName() string {
	if obj.vtable == nil || obj.vtable.class == nil {
		return "?"
	}
	return obj.vtable.class.Name
}

// String renders the object as "ClassName {var: value, ...}".
func (obj *Object) String() string {
	return obj.format(nil)
}

// format renders obj, printing any object already on the path from the
// outermost object as "<ClassName>" so reference cycles terminate.
func (obj *Object) format(seen map[*Object]bool) string {
	if seen[obj] {
		return "<" + obj.ClassName() + ">"
	}
	cls := obj.Class()
	if cls == nil {
		return obj.ClassName() + " {}"
	}
	names := cls.AllInstVarNames()
	if len(names) == 0 {
		return cls.Name + " {}"
	}
	if seen == nil {
		seen = make(map[*Object]bool)
	}
	seen[obj] = true
	defer delete(seen, obj)

	var sb strings.Builder
	sb.WriteString(cls.Name)
	sb.WriteString(" {")
	for i, name := range names {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %s", name, format(obj.slots[i], seen))
	}
	sb.WriteString("}")
	return sb.String()
}
