package mixin

import (
	"fmt"
	"sync"
	"time"
	"weak"

	"github.com/tliron/commonlog"

	"github.com/chazu/glucose/vm"
)

// Registry holds pending capability bundles per target class and the
// installation records of the classes it has installed.
//
// Targets are held weakly: registering a bundle against a class does not
// keep the class alive. A single mutex guards all state; registration and
// installation are setup-time operations.
type Registry struct {
	mu      sync.Mutex
	vm      *vm.VM
	bundles map[weak.Pointer[vm.Class]][]*Bundle
	records map[weak.Pointer[vm.Class]]*Record
	seq     int

	log        commonlog.Logger
	transitive bool
	now        func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registration and installation events.
func WithLogger(log commonlog.Logger) Option {
	return func(r *Registry) {
		r.log = log
	}
}

// WithTransitive makes Install apply uninstalled ancestors first, root
// first, each with its own record.
func WithTransitive(transitive bool) Option {
	return func(r *Registry) {
		r.transitive = transitive
	}
}

// WithClock sets the time source for Record.InstalledAt.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates an empty registry that installs into classes of
// the given VM.
func NewRegistry(machine *vm.VM, opts ...Option) *Registry {
	r := &Registry{
		vm:      machine,
		bundles: make(map[weak.Pointer[vm.Class]][]*Bundle),
		records: make(map[weak.Pointer[vm.Class]]*Record),
		log:     commonlog.GetLogger("glucose.mixin"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// VM returns the VM the registry installs into.
func (r *Registry) VM() *vm.VM {
	return r.vm
}

// Mixin registers b against target. Bundles accumulate per target; when
// two bundles for the same target share a property name, the one
// registered last wins at install time.
//
// A malformed bundle fails with ErrInvalidCapability here rather than at
// install time. Registering against a class that is already installed is
// accepted and logged, but the bundle is never applied to that class:
// installation is one-shot, and Reset discards the bundle along with the
// records.
func (r *Registry) Mixin(target *vm.Class, b *Bundle) error {
	if target == nil {
		return fmt.Errorf("%w: nil target", ErrInvalidCapability)
	}
	if b == nil {
		return fmt.Errorf("%w: nil bundle for %s", ErrInvalidCapability, target.Name)
	}
	if err := b.Validate(); err != nil {
		return fmt.Errorf("mixin %s: %w", target.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := weak.Make(target)
	r.bundles[key] = append(r.bundles[key], b.clone())
	if _, installed := r.records[key]; installed {
		r.log.Warning("bundle registered after install; it will not be applied",
			"class", target.Name, "bundle", b.Name())
		return nil
	}
	r.log.Debug("bundle registered", "class", target.Name, "bundle", b.Name(), "properties", b.Len())
	return nil
}

// Lookup returns the bundles registered against target, in registration
// order. The result is a fresh slice; the bundles themselves are shared
// and must not be modified.
func (r *Registry) Lookup(target *vm.Class) []*Bundle {
	if target == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookupLocked(target)
}

func (r *Registry) lookupLocked(target *vm.Class) []*Bundle {
	found := r.bundles[weak.Make(target)]
	out := make([]*Bundle, len(found))
	copy(out, found)
	return out
}

// Targets returns the live classes that have bundles registered against
// them. Entries for collected classes are dropped.
func (r *Registry) Targets() []*vm.Class {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*vm.Class
	for key := range r.bundles {
		c := key.Value()
		if c == nil {
			delete(r.bundles, key)
			continue
		}
		out = append(out, c)
	}
	return out
}

// Reset forgets all bundles, including ones registered after their
// target was installed, and all installation records. Members already
// attached to classes stay attached. Bundles have to be registered again
// before the next Install applies anything.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bundles = make(map[weak.Pointer[vm.Class]][]*Bundle)
	r.records = make(map[weak.Pointer[vm.Class]]*Record)
	r.seq = 0
}

// ---------------------------------------------------------------------------
// Process-wide registry
// ---------------------------------------------------------------------------

// Head is the process-wide registry, installing into vm.Default.
var Head = NewRegistry(vm.Default)

// Mixin registers b against target on Head.
func Mixin(target *vm.Class, b *Bundle) error {
	return Head.Mixin(target, b)
}

// Install installs c on Head.
func Install(c *vm.Class) error {
	return Head.Install(c)
}
