package vm

import (
	"slices"
	"sync"
)

// SelectorTable maps member names ("baz", "egg") to the dense IDs that
// index vtable slots. IDs are handed out in interning order and are never
// reused, so a slot index stays valid for the life of the VM.
type SelectorTable struct {
	mu    sync.RWMutex
	ids   map[string]int
	names []string // names[id]
}

// NewSelectorTable creates an empty selector table.
func NewSelectorTable() *SelectorTable {
	return &SelectorTable{ids: make(map[string]int)}
}

// Intern returns the ID for name, assigning the next free ID on first use.
func (st *SelectorTable) Intern(name string) int {
	if id := st.Lookup(name); id >= 0 {
		return id
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if id, ok := st.ids[name]; ok {
		return id
	}
	st.names = append(st.names, name)
	id := len(st.names) - 1
	st.ids[name] = id
	return id
}

// Lookup returns the ID for name, or -1 if name was never interned.
// Unlike Intern it never grows the table, so dispatch on an unknown name
// costs nothing.
func (st *SelectorTable) Lookup(name string) int {
	st.mu.RLock()
	id, ok := st.ids[name]
	st.mu.RUnlock()
	if !ok {
		return -1
	}
	return id
}

// Name returns the name behind id, or "" for an unassigned ID.
func (st *SelectorTable) Name(id int) string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if id < 0 || id >= len(st.names) {
		return ""
	}
	return st.names[id]
}

// Len reports how many names have been interned.
func (st *SelectorTable) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.names)
}

// All returns every interned name, indexed by ID.
func (st *SelectorTable) All() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return slices.Clone(st.names)
}
