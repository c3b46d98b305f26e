package mixin

import (
	"errors"
	"fmt"
	"slices"
	"weak"

	"github.com/google/uuid"

	"github.com/chazu/glucose/vm"
)

// Install attaches the bundles registered directly against c onto c.
//
// A class that already has a record is skipped, so calling Install twice
// is the same as calling it once. Ancestors are not installed unless the
// registry was built WithTransitive(true). A property whose name c already
// declares fails the whole install with ErrCapabilityCollision before
// anything is attached; no record is created in that case.
func (r *Registry) Install(c *vm.Class) error {
	if c == nil {
		return errors.New("mixin: install nil class")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.transitive {
		ancestors := c.Superclasses()
		for i := len(ancestors) - 1; i >= 0; i-- {
			if _, err := r.installLocked(ancestors[i]); err != nil {
				return err
			}
		}
	}
	_, err := r.installLocked(c)
	return err
}

// InstallAll installs each class in order and stops at the first error.
func (r *Registry) InstallAll(classes ...*vm.Class) error {
	for _, c := range classes {
		if err := r.Install(c); err != nil {
			return err
		}
	}
	return nil
}

// Installed returns the record for c, if c has been installed.
func (r *Registry) Installed(c *vm.Class) (*Record, bool) {
	if c == nil {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[weak.Make(c)]
	return rec, ok
}

// Records returns all installation records in install order.
func (r *Registry) Records() []*Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	slices.SortFunc(out, func(a, b *Record) int { return a.Sequence - b.Sequence })
	return out
}

// planned is one capability to attach after merging all bundles.
type planned struct {
	name   string
	desc   Descriptor
	bundle string
}

func (r *Registry) installLocked(c *vm.Class) (*Record, error) {
	key := weak.Make(c)
	if rec, ok := r.records[key]; ok {
		r.log.Debug("class already installed", "class", c.Name)
		return rec, nil
	}

	bundles := r.bundles[key]
	plan := mergeBundles(bundles)

	if err := r.guardAttach(c, plan); err != nil {
		r.log.Error("install failed", "class", c.Name, "error", err.Error())
		return nil, err
	}

	selectors := r.vm.Selectors
	names := make([]string, 0, len(plan))
	for _, p := range plan {
		if err := c.Attach(selectors, p.desc.member(p.name), vm.Origin{Bundle: p.bundle}); err != nil {
			// guardAttach already rejected every name that could fail here
			return nil, fmt.Errorf("%w: %v", ErrCapabilityCollision, err)
		}
		names = append(names, p.name)
	}

	r.seq++
	rec := &Record{
		ID:          uuid.New(),
		Class:       c.Name,
		Sequence:    r.seq,
		Names:       names,
		Bundles:     bundleNames(bundles),
		InstalledAt: r.now(),
		target:      key,
	}
	if c.Superclass != nil {
		rec.Superclass = c.Superclass.Name
	}
	r.records[key] = rec

	r.log.Info("class installed", "class", c.Name, "bundles", len(bundles), "properties", len(names))
	return rec, nil
}

// mergeBundles flattens bundles in registration order. A later bundle's
// descriptor replaces an earlier one of the same name but keeps the
// position where the name first appeared.
func mergeBundles(bundles []*Bundle) []planned {
	var plan []planned
	index := make(map[string]int)
	for _, b := range bundles {
		for _, p := range b.props {
			entry := planned{name: p.Name, desc: p.Descriptor, bundle: b.name}
			if i, ok := index[p.Name]; ok {
				plan[i] = entry
				continue
			}
			index[p.Name] = len(plan)
			plan = append(plan, entry)
		}
	}
	return plan
}

func bundleNames(bundles []*Bundle) []string {
	out := make([]string, len(bundles))
	for i, b := range bundles {
		out[i] = b.name
	}
	return out
}
