// Package manifest handles glucose.toml program configuration.
//
// A manifest declares a class hierarchy, the capability bundles to mix
// into it, the order in which classes are installed, and a list of
// expressions to evaluate once everything is installed.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest file looked up in a program directory.
const FileName = "glucose.toml"

// Member kinds.
const (
	KindMethod   = "method"
	KindAccessor = "accessor"
)

// Manifest represents a glucose.toml file.
type Manifest struct {
	Project Project     `toml:"project"`
	Install Install     `toml:"install"`
	Classes []ClassDecl `toml:"class"`
	Mixins  []MixinDecl `toml:"mixin"`
	Evals   []Eval      `toml:"eval"`

	// Path is the absolute path of the loaded file (set at load time).
	Path string `toml:"-"`
}

// Project contains program metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Install configures the install step.
type Install struct {
	// Transitive installs uninstalled ancestors before each class.
	Transitive bool `toml:"transitive"`
	// Order lists classes to install. Defaults to declaration order.
	Order []string `toml:"order"`
}

// ClassDecl declares one class.
type ClassDecl struct {
	Name       string       `toml:"name"`
	Extends    string       `toml:"extends"`
	Vars       []string     `toml:"vars"`
	Methods    []MemberDecl `toml:"method"`
	Properties []MemberDecl `toml:"property"`
}

// MixinDecl declares a capability bundle against a target class.
type MixinDecl struct {
	Name       string       `toml:"name"`
	Target     string       `toml:"target"`
	Properties []MemberDecl `toml:"property"`
}

// MemberDecl declares a method or a computed property.
//
// Methods use Body and Args. Accessors use Get for the getter body and
// Store to name the instance variable the setter writes; an accessor with
// no Store is read-only and one with no Get is write-only.
type MemberDecl struct {
	Name  string   `toml:"name"`
	Kind  string   `toml:"kind"`
	Args  []string `toml:"args"`
	Body  string   `toml:"body"`
	Get   string   `toml:"get"`
	Store string   `toml:"store"`
}

// Eval is one expression evaluated after installation: a new instance of
// New either receives Send with Args, or is read with Get.
type Eval struct {
	Label string   `toml:"label"`
	New   string   `toml:"new"`
	Send  string   `toml:"send"`
	Get   string   `toml:"get"`
	Args  []string `toml:"args"`
}

// Load parses the glucose.toml file in the given directory.
func Load(dir string) (*Manifest, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile parses a manifest from an explicit path.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	return Parse(data, abs)
}

// Parse decodes and validates manifest data. path is used in errors only.
func Parse(data []byte, path string) (*Manifest, error) {
	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	m.Path = path

	m.applyDefaults()
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

// FindAndLoad walks up from startDir to find a glucose.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// Dir returns the directory containing the manifest.
func (m *Manifest) Dir() string {
	return filepath.Dir(m.Path)
}

// Class returns the declaration of the named class, or nil.
func (m *Manifest) Class(name string) *ClassDecl {
	for i := range m.Classes {
		if m.Classes[i].Name == name {
			return &m.Classes[i]
		}
	}
	return nil
}

func (m *Manifest) applyDefaults() {
	if len(m.Install.Order) == 0 {
		for _, c := range m.Classes {
			m.Install.Order = append(m.Install.Order, c.Name)
		}
	}
	for i := range m.Classes {
		for j := range m.Classes[i].Methods {
			if m.Classes[i].Methods[j].Kind == "" {
				m.Classes[i].Methods[j].Kind = KindMethod
			}
		}
		for j := range m.Classes[i].Properties {
			if m.Classes[i].Properties[j].Kind == "" {
				m.Classes[i].Properties[j].Kind = KindAccessor
			}
		}
	}
	for i := range m.Mixins {
		for j := range m.Mixins[i].Properties {
			p := &m.Mixins[i].Properties[j]
			if p.Kind != "" {
				continue
			}
			if p.Body != "" {
				p.Kind = KindMethod
			} else {
				p.Kind = KindAccessor
			}
		}
		if m.Mixins[i].Name == "" {
			m.Mixins[i].Name = fmt.Sprintf("%s#%d", m.Mixins[i].Target, i+1)
		}
	}
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

// Validate checks references between declarations.
func (m *Manifest) Validate() error {
	var errs []error
	seen := make(map[string]bool)
	for _, c := range m.Classes {
		if c.Name == "" {
			errs = append(errs, errors.New("class with no name"))
			continue
		}
		if seen[c.Name] {
			errs = append(errs, fmt.Errorf("class %s declared twice", c.Name))
		}
		seen[c.Name] = true
		for _, mem := range c.Methods {
			if err := checkMember(mem, KindMethod); err != nil {
				errs = append(errs, fmt.Errorf("class %s: %w", c.Name, err))
			}
		}
		for _, mem := range c.Properties {
			if err := checkMember(mem, KindAccessor); err != nil {
				errs = append(errs, fmt.Errorf("class %s: %w", c.Name, err))
			}
		}
	}
	for _, c := range m.Classes {
		if c.Extends != "" && !seen[c.Extends] {
			errs = append(errs, fmt.Errorf("class %s extends unknown class %s", c.Name, c.Extends))
		}
	}
	if err := m.checkCycles(); err != nil {
		errs = append(errs, err)
	}
	for _, mx := range m.Mixins {
		if !seen[mx.Target] {
			errs = append(errs, fmt.Errorf("mixin %s targets unknown class %q", mx.Name, mx.Target))
		}
		for _, mem := range mx.Properties {
			if err := checkMember(mem, ""); err != nil {
				errs = append(errs, fmt.Errorf("mixin %s: %w", mx.Name, err))
			}
		}
	}
	for _, name := range m.Install.Order {
		if !seen[name] {
			errs = append(errs, fmt.Errorf("install order names unknown class %s", name))
		}
	}
	for i, ev := range m.Evals {
		if !seen[ev.New] {
			errs = append(errs, fmt.Errorf("eval %d: unknown class %q", i+1, ev.New))
		}
		if (ev.Send == "") == (ev.Get == "") {
			errs = append(errs, fmt.Errorf("eval %d: exactly one of send and get is required", i+1))
		}
		if ev.Get != "" && len(ev.Args) > 0 {
			errs = append(errs, fmt.Errorf("eval %d: get takes no args", i+1))
		}
	}
	return errors.Join(errs...)
}

func checkMember(mem MemberDecl, want string) error {
	if mem.Name == "" {
		return errors.New("member with no name")
	}
	if want != "" && mem.Kind != want {
		return fmt.Errorf("%s: kind %q not allowed here", mem.Name, mem.Kind)
	}
	switch mem.Kind {
	case KindMethod:
		if mem.Get != "" || mem.Store != "" {
			return fmt.Errorf("%s: method takes body and args only", mem.Name)
		}
	case KindAccessor:
		if mem.Body != "" || len(mem.Args) > 0 {
			return fmt.Errorf("%s: accessor takes get and store only", mem.Name)
		}
	default:
		return fmt.Errorf("%s: unknown kind %q", mem.Name, mem.Kind)
	}
	return nil
}

func (m *Manifest) checkCycles() error {
	parent := make(map[string]string, len(m.Classes))
	for _, c := range m.Classes {
		parent[c.Name] = c.Extends
	}
	for _, c := range m.Classes {
		steps := 0
		for cur := c.Extends; cur != ""; cur = parent[cur] {
			if cur == c.Name || steps > len(m.Classes) {
				return fmt.Errorf("class %s inherits from itself", c.Name)
			}
			steps++
		}
	}
	return nil
}

// Lineage returns the classes in an order where every superclass comes
// before its subclasses, keeping declaration order otherwise.
func (m *Manifest) Lineage() []ClassDecl {
	placed := make(map[string]bool, len(m.Classes))
	out := make([]ClassDecl, 0, len(m.Classes))
	var place func(c ClassDecl)
	place = func(c ClassDecl) {
		if placed[c.Name] {
			return
		}
		if c.Extends != "" {
			if parent := m.Class(c.Extends); parent != nil {
				place(*parent)
			}
		}
		placed[c.Name] = true
		out = append(out, c)
	}
	for _, c := range m.Classes {
		place(c)
	}
	return out
}
