package mixin

import (
	"fmt"

	"github.com/chazu/glucose/vm"
)

// Kind distinguishes accessor descriptors from method descriptors.
type Kind uint8

const (
	KindAccessor Kind = iota + 1
	KindMethod
)

func (k Kind) String() string {
	switch k {
	case KindAccessor:
		return "accessor"
	case KindMethod:
		return "method"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Descriptor describes one capability: a computed property or a method.
type Descriptor struct {
	Kind Kind

	// Accessor kind
	Get vm.GetterFunc
	Set vm.SetterFunc

	// Method kind
	Fn    vm.PrimitiveFunc
	Arity int // -1 for variable arity
}

// Accessor describes a computed property. At least one of get and set
// has to be non-nil.
func Accessor(get vm.GetterFunc, set vm.SetterFunc) Descriptor {
	return Descriptor{Kind: KindAccessor, Get: get, Set: set}
}

// Getter describes a read-only computed property.
func Getter(get vm.GetterFunc) Descriptor {
	return Accessor(get, nil)
}

// Method describes a variable-arity method.
func Method(fn vm.PrimitiveFunc) Descriptor {
	return Descriptor{Kind: KindMethod, Fn: fn, Arity: -1}
}

// MethodN describes a method taking exactly n arguments.
func MethodN(n int, fn vm.PrimitiveFunc) Descriptor {
	return Descriptor{Kind: KindMethod, Fn: fn, Arity: n}
}

// Method0 describes a method taking no arguments.
func Method0(fn vm.Method0Func) Descriptor {
	if fn == nil {
		return MethodN(0, nil)
	}
	return MethodN(0, func(call *vm.Call, args []vm.Value) vm.Value { return fn(call) })
}

// Method1 describes a method taking one argument.
func Method1(fn vm.Method1Func) Descriptor {
	if fn == nil {
		return MethodN(1, nil)
	}
	return MethodN(1, func(call *vm.Call, args []vm.Value) vm.Value { return fn(call, args[0]) })
}

// Method2 describes a method taking two arguments.
func Method2(fn vm.Method2Func) Descriptor {
	if fn == nil {
		return MethodN(2, nil)
	}
	return MethodN(2, func(call *vm.Call, args []vm.Value) vm.Value { return fn(call, args[0], args[1]) })
}

// Validate reports whether the descriptor can be installed.
func (d Descriptor) Validate() error {
	switch d.Kind {
	case KindAccessor:
		if d.Get == nil && d.Set == nil {
			return fmt.Errorf("%w: accessor needs a getter or a setter", ErrInvalidCapability)
		}
		if d.Fn != nil {
			return fmt.Errorf("%w: accessor carries a method body", ErrInvalidCapability)
		}
	case KindMethod:
		if d.Fn == nil {
			return fmt.Errorf("%w: method has no body", ErrInvalidCapability)
		}
		if d.Get != nil || d.Set != nil {
			return fmt.Errorf("%w: method carries accessor functions", ErrInvalidCapability)
		}
		if d.Arity < -1 {
			return fmt.Errorf("%w: arity %d", ErrInvalidCapability, d.Arity)
		}
	default:
		return fmt.Errorf("%w: unknown kind %s", ErrInvalidCapability, d.Kind)
	}
	return nil
}

// member builds the vtable member for name.
func (d Descriptor) member(name string) vm.Member {
	if d.Kind == KindAccessor {
		return vm.NewProperty(name, d.Get, d.Set)
	}
	if d.Arity < 0 {
		return vm.NewPrimitiveMethod(name, d.Fn)
	}
	return vm.NewPrimitiveMethodN(name, d.Arity, d.Fn)
}
