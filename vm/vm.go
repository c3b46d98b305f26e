package vm

import "fmt"

// VM owns the global tables of an object model and performs dispatch.
type VM struct {
	Selectors *SelectorTable // member name -> ID
	Classes   *ClassTable    // class name -> Class
}

// Default is the process-wide VM used by the package-level helpers of
// package mixin.
var Default = NewVM()

// NewVM creates an empty VM.
func NewVM() *VM {
	return &VM{
		Selectors: NewSelectorTable(),
		Classes:   NewClassTable(),
	}
}

// DefineClass creates a class and registers it under its name.
func (vm *VM) DefineClass(name string, superclass *Class, instVars ...string) *Class {
	c := NewClassWithInstVars(name, superclass, instVars)
	vm.Classes.Register(c)
	return c
}

// ---------------------------------------------------------------------------
// Call: invocation context
// ---------------------------------------------------------------------------

type callKind uint8

const (
	callMethod callKind = iota
	callGet
	callSet
)

// Call is passed to every method body, getter and setter.
type Call struct {
	VM       *VM
	Receiver *Object // the instance the member was reached through
	Class    *Class  // the class whose vtable supplied the member
	Selector int

	kind callKind
	err  error
}

// Name returns the selector name being invoked.
func (c *Call) Name() string {
	return c.VM.Selectors.Name(c.Selector)
}

// Super invokes the nearest ancestor implementation of the member being
// run, starting the lookup at the defining class's superclass. Inside a
// getter it reads the ancestor property; inside a setter it takes exactly
// one argument and writes the ancestor property.
func (c *Call) Super(args ...Value) (Value, error) {
	switch c.kind {
	case callGet:
		return c.VM.superGet(c.Class, c.Receiver, c.Selector)
	case callSet:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: super setter %s.%s takes 1 argument, got %d", ErrArity, c.Class.Name, c.Name(), len(args))
		}
		return nil, c.VM.superSet(c.Class, c.Receiver, c.Selector, args[0])
	}
	return c.VM.SendSuper(c.Class, c.Receiver, c.Selector, args...)
}

// Send sends a message to the receiver.
func (c *Call) Send(name string, args ...Value) (Value, error) {
	return c.VM.Send(c.Receiver, name, args...)
}

// Get reads a member or instance variable of the receiver.
func (c *Call) Get(name string) (Value, error) {
	return c.VM.Get(c.Receiver, name)
}

// Set writes a member or instance variable of the receiver.
func (c *Call) Set(name string, value Value) error {
	return c.VM.Set(c.Receiver, name, value)
}

// Fail records err as the outcome of this call and returns nil, so a
// body can write `return call.Fail(err)`. The error is returned by the
// Send, Get or Set that started the call.
func (c *Call) Fail(err error) Value {
	if c.err == nil {
		c.err = err
	}
	return nil
}

// Err returns the error recorded with Fail, if any.
func (c *Call) Err() error {
	return c.err
}

// ---------------------------------------------------------------------------
// Dispatch
// ---------------------------------------------------------------------------

// Send invokes the named member on receiver. Methods are called directly;
// a property or instance variable is read and, if it holds a bound method,
// that method is called.
func (vm *VM) Send(receiver *Object, name string, args ...Value) (Value, error) {
	if receiver == nil {
		return nil, fmt.Errorf("%w: send %s", ErrNilReceiver, name)
	}
	cls := receiver.Class()
	if idx := cls.InstVarIndex(name); idx >= 0 {
		return vm.callValue(cls, name, receiver.GetSlot(idx), args)
	}
	selector := vm.Selectors.Lookup(name)
	member, owner := cls.VTable.LookupWithOwner(selector)
	if member == nil {
		return nil, vm.doesNotUnderstand(cls, name)
	}
	return vm.dispatch(owner.class, receiver, selector, member, args)
}

// SendSuper invokes the member for selector as found on from's superclass
// chain, with receiver as the instance. from is the class that defines the
// calling member, not the receiver's class.
func (vm *VM) SendSuper(from *Class, receiver *Object, selector int, args ...Value) (Value, error) {
	member, owner := vm.superLookup(from, selector)
	if member == nil {
		return nil, vm.superMissing(from, selector)
	}
	return vm.dispatch(owner.class, receiver, selector, member, args)
}

// Get reads name on receiver: an instance variable, a computed property,
// or a method (returned as a *BoundMethod).
func (vm *VM) Get(receiver *Object, name string) (Value, error) {
	if receiver == nil {
		return nil, fmt.Errorf("%w: get %s", ErrNilReceiver, name)
	}
	cls := receiver.Class()
	if idx := cls.InstVarIndex(name); idx >= 0 {
		return receiver.GetSlot(idx), nil
	}
	selector := vm.Selectors.Lookup(name)
	member, owner := cls.VTable.LookupWithOwner(selector)
	if member == nil {
		return nil, vm.doesNotUnderstand(cls, name)
	}
	return vm.read(owner.class, receiver, selector, member)
}

// Set writes name on receiver: an instance variable or a computed
// property with a setter.
func (vm *VM) Set(receiver *Object, name string, value Value) error {
	if receiver == nil {
		return fmt.Errorf("%w: set %s", ErrNilReceiver, name)
	}
	cls := receiver.Class()
	if idx := cls.InstVarIndex(name); idx >= 0 {
		receiver.SetSlot(idx, value)
		return nil
	}
	selector := vm.Selectors.Lookup(name)
	member, owner := cls.VTable.LookupWithOwner(selector)
	if member == nil {
		return vm.doesNotUnderstand(cls, name)
	}
	return vm.write(owner.class, receiver, selector, member, value)
}

// RespondsTo returns true if receiver has an instance variable or a
// member of that name.
func (vm *VM) RespondsTo(receiver *Object, name string) bool {
	if receiver == nil {
		return false
	}
	cls := receiver.Class()
	return cls.HasInstVar(name) || cls.LookupMember(vm.Selectors, name) != nil
}

func (vm *VM) dispatch(owner *Class, receiver *Object, selector int, member Member, args []Value) (Value, error) {
	switch m := member.(type) {
	case Method:
		return vm.invokeMethod(owner, receiver, selector, m, args)
	case *Property:
		v, err := vm.invokeGetter(owner, receiver, selector, m)
		if err != nil {
			return nil, err
		}
		return vm.callValue(owner, m.Name(), v, args)
	}
	return nil, fmt.Errorf("%w: %s.%s", ErrNotCallable, owner.Name, member.Name())
}

func (vm *VM) read(owner *Class, receiver *Object, selector int, member Member) (Value, error) {
	switch m := member.(type) {
	case *Property:
		return vm.invokeGetter(owner, receiver, selector, m)
	case Method:
		return &BoundMethod{vm: vm, receiver: receiver, owner: owner, selector: selector, method: m}, nil
	}
	return nil, fmt.Errorf("%w: %s.%s", ErrDoesNotUnderstand, owner.Name, member.Name())
}

func (vm *VM) write(owner *Class, receiver *Object, selector int, member Member, value Value) error {
	p, ok := member.(*Property)
	if !ok {
		return fmt.Errorf("%w: %s.%s is a method", ErrReadOnly, owner.Name, member.Name())
	}
	if !p.CanSet() {
		return fmt.Errorf("%w: %s.%s", ErrReadOnly, owner.Name, p.Name())
	}
	call := &Call{VM: vm, Receiver: receiver, Class: owner, Selector: selector, kind: callSet}
	p.set(call, value)
	return call.err
}

func (vm *VM) invokeMethod(owner *Class, receiver *Object, selector int, m Method, args []Value) (Value, error) {
	if arity := m.Arity(); arity >= 0 && arity != len(args) {
		return nil, fmt.Errorf("%w: %s.%s takes %d, got %d", ErrArity, owner.Name, m.Name(), arity, len(args))
	}
	call := &Call{VM: vm, Receiver: receiver, Class: owner, Selector: selector, kind: callMethod}
	result := m.Invoke(call, args)
	if call.err != nil {
		return nil, call.err
	}
	return result, nil
}

func (vm *VM) invokeGetter(owner *Class, receiver *Object, selector int, p *Property) (Value, error) {
	if !p.CanGet() {
		return nil, fmt.Errorf("%w: %s.%s", ErrWriteOnly, owner.Name, p.Name())
	}
	call := &Call{VM: vm, Receiver: receiver, Class: owner, Selector: selector, kind: callGet}
	result := p.get(call)
	if call.err != nil {
		return nil, call.err
	}
	return result, nil
}

// callValue calls v if it is a bound method.
func (vm *VM) callValue(cls *Class, name string, v Value, args []Value) (Value, error) {
	if bm, ok := v.(*BoundMethod); ok {
		return bm.Call(args...)
	}
	return nil, fmt.Errorf("%w: %s.%s", ErrNotCallable, cls.Name, name)
}

// ---------------------------------------------------------------------------
// Super lookup
// ---------------------------------------------------------------------------

func (vm *VM) superLookup(from *Class, selector int) (Member, *VTable) {
	if from == nil || from.Superclass == nil {
		return nil, nil
	}
	return from.Superclass.VTable.LookupWithOwner(selector)
}

func (vm *VM) superGet(from *Class, receiver *Object, selector int) (Value, error) {
	member, owner := vm.superLookup(from, selector)
	if member == nil {
		return nil, vm.superMissing(from, selector)
	}
	return vm.read(owner.class, receiver, selector, member)
}

func (vm *VM) superSet(from *Class, receiver *Object, selector int, value Value) error {
	member, owner := vm.superLookup(from, selector)
	if member == nil {
		return vm.superMissing(from, selector)
	}
	return vm.write(owner.class, receiver, selector, member, value)
}

func (vm *VM) superMissing(from *Class, selector int) error {
	name := "?"
	if from != nil {
		name = from.Name
	}
	return fmt.Errorf("%w: super %s from %s", ErrDoesNotUnderstand, vm.Selectors.Name(selector), name)
}

func (vm *VM) doesNotUnderstand(cls *Class, name string) error {
	return fmt.Errorf("%w: %s>>%s", ErrDoesNotUnderstand, cls.Name, name)
}
