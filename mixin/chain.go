package mixin

import (
	"fmt"
	"strings"

	"github.com/chazu/glucose/vm"
)

// Link is one implementation of a name along a class chain.
type Link struct {
	Class  *vm.Class
	Member vm.Member
	Origin vm.Origin
}

func (l Link) String() string {
	s := l.Class.Name + "." + l.Member.Name()
	if l.Origin.Installed() {
		s += " [" + l.Origin.Bundle + "]"
	}
	return s
}

// Chain lists the classes from c up to its root that hold their own
// implementation of name, most-derived first. Classes that neither declare
// nor were given the name are skipped; this is the order in which
// successive super calls visit implementations.
func Chain(selectors *vm.SelectorTable, c *vm.Class, name string) []Link {
	id := selectors.Lookup(name)
	if id < 0 {
		return nil
	}
	var links []Link
	for cls := c; cls != nil; cls = cls.Superclass {
		m := cls.VTable.LookupLocal(id)
		if m == nil {
			continue
		}
		origin, _ := cls.VTable.OriginOf(id)
		links = append(links, Link{Class: cls, Member: m, Origin: origin})
	}
	return links
}

// Chain lists implementations of name along c's chain using the
// registry's selectors.
func (r *Registry) Chain(c *vm.Class, name string) []Link {
	return Chain(r.vm.Selectors, c, name)
}

// FormatChain renders links as "D.baz -> B.baz -> A.baz".
func FormatChain(links []Link) string {
	parts := make([]string, len(links))
	for i, l := range links {
		parts[i] = l.String()
	}
	return strings.Join(parts, " -> ")
}

// guardAttach rejects a plan that would displace anything c owns. Members
// a class declares itself are the targets of super calls from its
// subclasses, so an install may add slots but never replace or hide one.
func (r *Registry) guardAttach(c *vm.Class, plan []planned) error {
	for _, p := range plan {
		if !c.Declares(r.vm.Selectors, p.name) {
			continue
		}
		what := "member"
		if c.HasInstVar(p.name) {
			what = "instance variable"
		}
		return fmt.Errorf("%w: bundle %s: %s already has %s %q", ErrCapabilityCollision, p.bundle, c.Name, what, p.name)
	}
	return nil
}
