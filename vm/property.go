package vm

// GetterFunc computes a property value. It runs on every read; results are
// never cached. call.Receiver is the instance the property was read from.
type GetterFunc func(call *Call) Value

// SetterFunc stores a property value.
type SetterFunc func(call *Call, value Value)

// Property is a computed member made of a getter, a setter, or both.
type Property struct {
	name string
	get  GetterFunc
	set  SetterFunc
}

// NewProperty creates a computed property. Either function may be nil,
// but not both; that is the caller's responsibility.
func NewProperty(name string, get GetterFunc, set SetterFunc) *Property {
	return &Property{name: name, get: get, set: set}
}

// Name returns the property name.
func (p *Property) Name() string { return p.name }

// CanGet returns true if the property has a getter.
func (p *Property) CanGet() bool { return p.get != nil }

// CanSet returns true if the property has a setter.
func (p *Property) CanSet() bool { return p.set != nil }
