package vm

import (
	"fmt"
	"sync"
)

// Class represents a Glucose class: a name, an optional superclass, the
// instance variables it adds, and its own dispatch table.
type Class struct {
	Name       string   // Class name
	Superclass *Class   // Parent class (nil for a root)
	VTable     *VTable  // Member dispatch table
	InstVars   []string // Instance variable names declared by this class
	NumSlots   int      // Total number of slots needed, inherited included
}

// ---------------------------------------------------------------------------
// Instance variables
// ---------------------------------------------------------------------------

// InstVarIndex returns the slot index for an instance variable by name.
// Returns -1 if the variable is not found.
func (c *Class) InstVarIndex(name string) int {
	for i, n := range c.InstVars {
		if n == name {
			return c.instVarOffset() + i
		}
	}
	if c.Superclass != nil {
		return c.Superclass.InstVarIndex(name)
	}
	return -1
}

// HasInstVar returns true if instances of this class carry a slot of
// that name, declared here or inherited.
func (c *Class) HasInstVar(name string) bool {
	return c.InstVarIndex(name) >= 0
}

// instVarOffset returns the starting slot index for this class's instance variables.
func (c *Class) instVarOffset() int {
	if c.Superclass == nil {
		return 0
	}
	return c.Superclass.NumSlots
}

// AllInstVarNames returns all instance variable names including inherited ones.
func (c *Class) AllInstVarNames() []string {
	if c.Superclass == nil {
		return c.InstVars
	}
	inherited := c.Superclass.AllInstVarNames()
	result := make([]string, len(inherited)+len(c.InstVars))
	copy(result, inherited)
	copy(result[len(inherited):], c.InstVars)
	return result
}

// NewInstance creates a new instance of this class with nil slots.
func (c *Class) NewInstance() *Object {
	return NewObject(c.VTable, c.NumSlots)
}

// NewInstanceWithSlots creates a new instance with initial slot values.
func (c *Class) NewInstanceWithSlots(slots []Value) *Object {
	if len(slots) != c.NumSlots {
		panic(fmt.Sprintf("Class.NewInstanceWithSlots: %s has %d slots, got %d", c.Name, c.NumSlots, len(slots)))
	}
	return NewObjectWithSlots(c.VTable, slots)
}

// ---------------------------------------------------------------------------
// Hierarchy
// ---------------------------------------------------------------------------

// IsSubclassOf returns true if c is a subclass of other (or is the same class).
func (c *Class) IsSubclassOf(other *Class) bool {
	for current := c; current != nil; current = current.Superclass {
		if current == other {
			return true
		}
	}
	return false
}

// Superclasses returns all superclasses from immediate parent to root.
func (c *Class) Superclasses() []*Class {
	var result []*Class
	for current := c.Superclass; current != nil; current = current.Superclass {
		result = append(result, current)
	}
	return result
}

// Lineage returns the class followed by its superclasses, most-derived first.
func (c *Class) Lineage() []*Class {
	return append([]*Class{c}, c.Superclasses()...)
}

// Depth returns the inheritance depth (0 for a root class).
func (c *Class) Depth() int {
	return len(c.Superclasses())
}

// String implements the Stringer interface.
func (c *Class) String() string {
	return c.Name
}

// ---------------------------------------------------------------------------
// Member registration
// ---------------------------------------------------------------------------

// AddMethod declares a native method on this class.
// The selector will be interned in the given SelectorTable.
func (c *Class) AddMethod(selectors *SelectorTable, method Method) {
	c.VTable.AddMember(selectors.Intern(method.Name()), method)
}

// AddMethod0 declares a zero-argument method on this class.
func (c *Class) AddMethod0(selectors *SelectorTable, name string, fn Method0Func) {
	c.AddMethod(selectors, NewMethod0(name, fn))
}

// AddMethod1 declares a one-argument method on this class.
func (c *Class) AddMethod1(selectors *SelectorTable, name string, fn Method1Func) {
	c.AddMethod(selectors, NewMethod1(name, fn))
}

// AddPrimitiveMethod declares a variable-arity method on this class.
func (c *Class) AddPrimitiveMethod(selectors *SelectorTable, name string, fn PrimitiveFunc) {
	c.AddMethod(selectors, NewPrimitiveMethod(name, fn))
}

// AddProperty declares a native computed property on this class.
func (c *Class) AddProperty(selectors *SelectorTable, name string, get GetterFunc, set SetterFunc) {
	c.VTable.AddMember(selectors.Intern(name), NewProperty(name, get, set))
}

// Attach adds an installed member to this class. It fails with
// ErrSlotExists if the class already has its own member of that name, or
// if its instances carry an instance variable of that name; the class is
// left unchanged either way.
func (c *Class) Attach(selectors *SelectorTable, member Member, origin Origin) error {
	name := member.Name()
	if c.HasInstVar(name) {
		return fmt.Errorf("%w: %s.%s is an instance variable", ErrSlotExists, c.Name, name)
	}
	if err := c.VTable.Attach(selectors.Intern(name), member, origin); err != nil {
		return fmt.Errorf("%w: %s.%s", err, c.Name, name)
	}
	return nil
}

// LookupMember looks up a member by name, walking superclasses.
func (c *Class) LookupMember(selectors *SelectorTable, name string) Member {
	id := selectors.Lookup(name)
	if id < 0 {
		return nil
	}
	return c.VTable.Lookup(id)
}

// HasMember returns true if this class (not superclasses) has a member
// of that name, native or installed.
func (c *Class) HasMember(selectors *SelectorTable, name string) bool {
	id := selectors.Lookup(name)
	if id < 0 {
		return false
	}
	return c.VTable.HasMember(id)
}

// Declares returns true if the name is taken on this class, either by a
// member in its own vtable or by an instance variable of its instances.
// Instance variables always win over vtable members on access, so an
// inherited one counts.
func (c *Class) Declares(selectors *SelectorTable, name string) bool {
	return c.HasInstVar(name) || c.HasMember(selectors, name)
}

// ---------------------------------------------------------------------------
// ClassTable: class registry
// ---------------------------------------------------------------------------

// ClassTable manages registered classes by name, remembering the order
// in which they were first registered.
// It's thread-safe for concurrent access.
type ClassTable struct {
	mu      sync.RWMutex
	classes map[string]*Class
	order   []string
}

// NewClassTable creates a new empty class table.
func NewClassTable() *ClassTable {
	return &ClassTable{
		classes: make(map[string]*Class),
	}
}

// Register adds a class to the table.
// Returns the previous class with this name, or nil.
func (ct *ClassTable) Register(c *Class) *Class {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	old, exists := ct.classes[c.Name]
	if !exists {
		ct.order = append(ct.order, c.Name)
	}
	ct.classes[c.Name] = c
	return old
}

// Lookup finds a class by name.
func (ct *ClassTable) Lookup(name string) *Class {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return ct.classes[name]
}

// Has returns true if a class with this name is registered.
func (ct *ClassTable) Has(name string) bool {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	_, ok := ct.classes[name]
	return ok
}

// All returns all registered classes in registration order.
func (ct *ClassTable) All() []*Class {
	ct.mu.RLock()
	defer ct.mu.RUnlock()

	result := make([]*Class, 0, len(ct.order))
	for _, name := range ct.order {
		result = append(result, ct.classes[name])
	}
	return result
}

// Len returns the number of registered classes.
func (ct *ClassTable) Len() int {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return len(ct.classes)
}

// ---------------------------------------------------------------------------
// Class creation helpers
// ---------------------------------------------------------------------------

// NewClass creates a new class with the given name and superclass.
// The VTable is created and linked to the superclass's.
func NewClass(name string, superclass *Class) *Class {
	var parentVT *VTable
	var numSlots int
	if superclass != nil {
		parentVT = superclass.VTable
		numSlots = superclass.NumSlots
	}

	c := &Class{
		Name:       name,
		Superclass: superclass,
		NumSlots:   numSlots,
	}
	c.VTable = NewVTable(c, parentVT)
	return c
}

// NewClassWithInstVars creates a new class with instance variables.
func NewClassWithInstVars(name string, superclass *Class, instVars []string) *Class {
	c := NewClass(name, superclass)
	c.InstVars = instVars
	c.NumSlots += len(instVars)
	return c
}
