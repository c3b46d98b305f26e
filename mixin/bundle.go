package mixin

import "fmt"

// Property is one named entry of a bundle.
type Property struct {
	Name       string
	Descriptor Descriptor
}

// Bundle is an ordered set of named capabilities.
//
// A bundle is built with NewBundle and With. Registering a bundle stores a
// copy, so the caller may keep building or reuse the original without
// affecting what was registered.
type Bundle struct {
	name  string
	props []Property
}

// NewBundle creates an empty bundle. The name identifies the bundle in
// installation records and chain listings.
func NewBundle(name string) *Bundle {
	return &Bundle{name: name}
}

// With appends a capability and returns the bundle for chaining.
func (b *Bundle) With(name string, d Descriptor) *Bundle {
	b.props = append(b.props, Property{Name: name, Descriptor: d})
	return b
}

// Name returns the bundle name.
func (b *Bundle) Name() string { return b.name }

// Len returns the number of capabilities in the bundle.
func (b *Bundle) Len() int { return len(b.props) }

// Properties returns the capabilities in declaration order.
func (b *Bundle) Properties() []Property {
	out := make([]Property, len(b.props))
	copy(out, b.props)
	return out
}

// Names returns the capability names in declaration order.
func (b *Bundle) Names() []string {
	out := make([]string, len(b.props))
	for i, p := range b.props {
		out[i] = p.Name
	}
	return out
}

// Validate checks that every name is non-empty and unique within the
// bundle and that every descriptor is well formed.
func (b *Bundle) Validate() error {
	if b.name == "" {
		return fmt.Errorf("%w: bundle has no name", ErrInvalidCapability)
	}
	seen := make(map[string]bool, len(b.props))
	for _, p := range b.props {
		if p.Name == "" {
			return fmt.Errorf("%w: bundle %s: empty property name", ErrInvalidCapability, b.name)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: bundle %s: duplicate property %q", ErrInvalidCapability, b.name, p.Name)
		}
		seen[p.Name] = true
		if err := p.Descriptor.Validate(); err != nil {
			return fmt.Errorf("bundle %s: property %q: %w", b.name, p.Name, err)
		}
	}
	return nil
}

func (b *Bundle) clone() *Bundle {
	return &Bundle{name: b.name, props: b.Properties()}
}
