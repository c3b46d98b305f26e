package vm

// Method represents a callable member.
//
// Every method is bound to the class that defines it (its owner). The
// owner is what a super send starts from, so a method keeps resolving to
// the same ancestor no matter which subclass the receiver belongs to.
type Method interface {
	Member
	Invoke(call *Call, args []Value) Value
	Arity() int // -1 for variable arity
}

// PrimitiveFunc is a Go function that implements a method of any arity.
type PrimitiveFunc func(call *Call, args []Value) Value

// Method0Func is a primitive taking no arguments.
type Method0Func func(call *Call) Value

// Method1Func is a primitive taking one argument.
type Method1Func func(call *Call, arg1 Value) Value

// Method2Func is a primitive taking two arguments.
type Method2Func func(call *Call, arg1, arg2 Value) Value

// ---------------------------------------------------------------------------
// Arity-specialized method wrappers
// ---------------------------------------------------------------------------

// PrimitiveMethod wraps a general PrimitiveFunc as a Method.
type PrimitiveMethod struct {
	name  string
	arity int
	fn    PrimitiveFunc
}

func (m *PrimitiveMethod) Invoke(call *Call, args []Value) Value {
	return m.fn(call, args)
}

func (m *PrimitiveMethod) Name() string { return m.name }
func (m *PrimitiveMethod) Arity() int   { return m.arity }

// Method0 wraps a zero-argument primitive.
type Method0 struct {
	name string
	fn   Method0Func
}

func (m *Method0) Invoke(call *Call, args []Value) Value {
	return m.fn(call)
}

func (m *Method0) Name() string { return m.name }
func (m *Method0) Arity() int   { return 0 }

// Method1 wraps a one-argument primitive.
type Method1 struct {
	name string
	fn   Method1Func
}

func (m *Method1) Invoke(call *Call, args []Value) Value {
	return m.fn(call, args[0])
}

func (m *Method1) Name() string { return m.name }
func (m *Method1) Arity() int   { return 1 }

// ---------------------------------------------------------------------------
// Factory functions
// ---------------------------------------------------------------------------

// NewPrimitiveMethod creates a new primitive method with variable arity.
func NewPrimitiveMethod(name string, fn PrimitiveFunc) Method {
	return &PrimitiveMethod{name: name, arity: -1, fn: fn}
}

// NewPrimitiveMethodN creates a primitive method that takes exactly n
// arguments in a slice.
func NewPrimitiveMethodN(name string, n int, fn PrimitiveFunc) Method {
	return &PrimitiveMethod{name: name, arity: n, fn: fn}
}

// NewMethod0 creates a new zero-argument primitive method.
func NewMethod0(name string, fn Method0Func) Method {
	return &Method0{name: name, fn: fn}
}

// NewMethod1 creates a new one-argument primitive method.
func NewMethod1(name string, fn Method1Func) Method {
	return &Method1{name: name, fn: fn}
}

// ---------------------------------------------------------------------------
// Bound methods
// ---------------------------------------------------------------------------

// BoundMethod is what reading a method as a property yields: the method
// together with the receiver it was read from.
type BoundMethod struct {
	vm       *VM
	receiver *Object
	owner    *Class
	selector int
	method   Method
}

// Call invokes the bound method on its receiver.
func (b *BoundMethod) Call(args ...Value) (Value, error) {
	return b.vm.invokeMethod(b.owner, b.receiver, b.selector, b.method, args)
}

// Receiver returns the instance the method is bound to.
func (b *BoundMethod) Receiver() *Object { return b.receiver }

// Method returns the underlying method.
func (b *BoundMethod) Method() Method { return b.method }

// String implements fmt.Stringer.
func (b *BoundMethod) String() string {
	return "<method " + b.owner.Name + "." + b.method.Name() + ">"
}
