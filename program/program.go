// Package program builds a runnable object model from a glucose.toml
// manifest: it defines the declared classes, registers the declared
// mixins, installs classes in the configured order and evaluates the
// manifest's expressions.
package program

import (
	"fmt"
	"io"

	"github.com/tliron/commonlog"

	"github.com/chazu/glucose/manifest"
	"github.com/chazu/glucose/mixin"
	"github.com/chazu/glucose/vm"
)

var log = commonlog.GetLogger("glucose.program")

// Program is a manifest compiled into a VM and a mixin registry.
type Program struct {
	Manifest *manifest.Manifest
	VM       *vm.VM
	Registry *mixin.Registry
}

// Build defines every class of m and registers every mixin. Nothing is
// installed until Install or Run. Registry options are applied after the
// manifest's own install settings.
func Build(m *manifest.Manifest, opts ...mixin.Option) (*Program, error) {
	machine := vm.NewVM()
	opts = append([]mixin.Option{mixin.WithTransitive(m.Install.Transitive)}, opts...)
	p := &Program{
		Manifest: m,
		VM:       machine,
		Registry: mixin.NewRegistry(machine, opts...),
	}

	for _, decl := range m.Lineage() {
		if err := p.defineClass(decl); err != nil {
			return nil, err
		}
	}
	for _, decl := range m.Mixins {
		if err := p.registerMixin(decl); err != nil {
			return nil, err
		}
	}
	log.Debug("program built", "project", m.Project.Name, "classes", len(m.Classes), "mixins", len(m.Mixins))
	return p, nil
}

func (p *Program) defineClass(decl manifest.ClassDecl) error {
	var super *vm.Class
	if decl.Extends != "" {
		super = p.VM.Classes.Lookup(decl.Extends)
	}
	c := p.VM.DefineClass(decl.Name, super, decl.Vars...)

	for _, mem := range decl.Methods {
		if c.Declares(p.VM.Selectors, mem.Name) {
			return fmt.Errorf("class %s: %s declared twice", decl.Name, mem.Name)
		}
		b, err := compileBody(decl.Name, mem.Name, mem.Body, mem.Args)
		if err != nil {
			return fmt.Errorf("class %s: %w", decl.Name, err)
		}
		c.AddMethod(p.VM.Selectors, vm.NewPrimitiveMethodN(mem.Name, len(mem.Args), b.method()))
	}
	for _, mem := range decl.Properties {
		if c.Declares(p.VM.Selectors, mem.Name) {
			return fmt.Errorf("class %s: %s declared twice", decl.Name, mem.Name)
		}
		get, set, err := p.accessor(c, mem)
		if err != nil {
			return fmt.Errorf("class %s: %w", decl.Name, err)
		}
		if get == nil && set == nil {
			return fmt.Errorf("class %s: accessor %s needs get or store", decl.Name, mem.Name)
		}
		c.AddProperty(p.VM.Selectors, mem.Name, get, set)
	}
	return nil
}

// accessor compiles the getter and setter of an accessor declared on, or
// mixed into, c.
func (p *Program) accessor(c *vm.Class, mem manifest.MemberDecl) (vm.GetterFunc, vm.SetterFunc, error) {
	var (
		get vm.GetterFunc
		set vm.SetterFunc
	)
	if mem.Get != "" {
		b, err := compileBody(c.Name, mem.Name, mem.Get, nil)
		if err != nil {
			return nil, nil, err
		}
		get = b.getter()
	}
	if mem.Store != "" {
		if !c.HasInstVar(mem.Store) {
			return nil, nil, fmt.Errorf("%s: store %q is not an instance variable of %s", mem.Name, mem.Store, c.Name)
		}
		set = storeSetter(mem.Store)
	}
	return get, set, nil
}

func (p *Program) registerMixin(decl manifest.MixinDecl) error {
	target := p.VM.Classes.Lookup(decl.Target)
	if target == nil {
		return fmt.Errorf("mixin %s: unknown class %s", decl.Name, decl.Target)
	}
	bundle := mixin.NewBundle(decl.Name)
	for _, mem := range decl.Properties {
		switch mem.Kind {
		case manifest.KindMethod:
			b, err := compileBody(decl.Target, mem.Name, mem.Body, mem.Args)
			if err != nil {
				return fmt.Errorf("mixin %s: %w", decl.Name, err)
			}
			bundle.With(mem.Name, mixin.MethodN(len(mem.Args), b.method()))
		default:
			get, set, err := p.accessor(target, mem)
			if err != nil {
				return fmt.Errorf("mixin %s: %w", decl.Name, err)
			}
			bundle.With(mem.Name, mixin.Accessor(get, set))
		}
	}
	if err := p.Registry.Mixin(target, bundle); err != nil {
		return fmt.Errorf("mixin %s: %w", decl.Name, err)
	}
	return nil
}

// Class returns the named class, or an error if the manifest declares no
// such class.
func (p *Program) Class(name string) (*vm.Class, error) {
	c := p.VM.Classes.Lookup(name)
	if c == nil {
		return nil, fmt.Errorf("%w: no class %s", vm.ErrDoesNotUnderstand, name)
	}
	return c, nil
}

// Install installs every class named in the manifest's install order.
// Installing twice is a no-op.
func (p *Program) Install() error {
	for _, name := range p.Manifest.Install.Order {
		c, err := p.Class(name)
		if err != nil {
			return err
		}
		if err := p.Registry.Install(c); err != nil {
			return fmt.Errorf("install %s: %w", name, err)
		}
	}
	return nil
}

// Eval evaluates one expression on a fresh instance.
func (p *Program) Eval(ev manifest.Eval) (vm.Value, error) {
	c, err := p.Class(ev.New)
	if err != nil {
		return nil, err
	}
	obj := c.NewInstance()
	if ev.Get != "" {
		return p.VM.Get(obj, ev.Get)
	}
	args := make([]vm.Value, len(ev.Args))
	for i, a := range ev.Args {
		args[i] = a
	}
	return p.VM.Send(obj, ev.Send, args...)
}

// Run installs the program and writes one "<label> <value>" line per
// evaluated expression. An eval with no label is labelled with the member
// it reaches.
func (p *Program) Run(w io.Writer) error {
	if err := p.Install(); err != nil {
		return err
	}
	for i, ev := range p.Manifest.Evals {
		v, err := p.Eval(ev)
		if err != nil {
			return fmt.Errorf("eval %d: %w", i+1, err)
		}
		label := ev.Label
		if label == "" {
			label = ev.New + "." + ev.Send + ev.Get
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", label, vm.Format(v)); err != nil {
			return err
		}
	}
	return nil
}

// Chain installs the program and returns the implementations of member
// along class's chain, most-derived first.
func (p *Program) Chain(class, member string) ([]mixin.Link, error) {
	c, err := p.Class(class)
	if err != nil {
		return nil, err
	}
	if err := p.Install(); err != nil {
		return nil, err
	}
	links := p.Registry.Chain(c, member)
	if len(links) == 0 {
		return nil, fmt.Errorf("%w: %s>>%s", vm.ErrDoesNotUnderstand, class, member)
	}
	return links, nil
}
