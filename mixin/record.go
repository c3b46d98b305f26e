package mixin

import (
	"slices"
	"time"
	"weak"

	"github.com/google/uuid"

	"github.com/chazu/glucose/vm"
)

// Record is the installation record of one class.
type Record struct {
	ID          uuid.UUID
	Class       string   // class name at install time
	Superclass  string   // "" for a root class
	Sequence    int      // 1 for the first class installed by the registry
	Names       []string // applied capability names, in attach order
	Bundles     []string // contributing bundle names, in registration order
	InstalledAt time.Time

	target weak.Pointer[vm.Class]
}

// Target returns the installed class, or nil if it has been collected.
func (r *Record) Target() *vm.Class {
	return r.target.Value()
}

// Applied returns true if the named capability was attached by this install.
func (r *Record) Applied(name string) bool {
	return slices.Contains(r.Names, name)
}
