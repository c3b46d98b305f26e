package vm

// VTable holds the member dispatch table for a class.
//
// Members are stored in a slice indexed by selector ID. Inheritance is
// handled by walking the parent chain when a member is not found locally.
// Each slot also records its Origin so installed capabilities can be told
// apart from members the class declared itself.
type VTable struct {
	class   *Class   // The class this vtable belongs to
	parent  *VTable  // Parent vtable for inheritance lookup
	members []Member // Members indexed by selector ID
	origins []Origin // Origin of each non-nil member
}

// Origin records where a vtable slot came from. The zero value means the
// class declared the member natively.
type Origin struct {
	Bundle string // Name of the installing bundle, "" for native members
}

// Installed returns true if the slot was attached by a capability bundle.
func (o Origin) Installed() bool { return o.Bundle != "" }

// Lookup finds a member by selector ID, walking the inheritance chain.
// Returns nil if no member is found.
func (vt *VTable) Lookup(selector int) Member {
	m, _ := vt.LookupWithOwner(selector)
	return m
}

// LookupWithOwner is like Lookup but also returns the vtable that holds
// the member, which identifies the defining class.
func (vt *VTable) LookupWithOwner(selector int) (Member, *VTable) {
	for v := vt; v != nil; v = v.parent {
		if m := v.LookupLocal(selector); m != nil {
			return m, v
		}
	}
	return nil, nil
}

// LookupLocal finds a member by selector ID in this vtable only.
// Does not check parent vtables.
func (vt *VTable) LookupLocal(selector int) Member {
	if selector >= 0 && selector < len(vt.members) {
		return vt.members[selector]
	}
	return nil
}

// OriginOf returns the origin of a local slot and whether it is occupied.
func (vt *VTable) OriginOf(selector int) (Origin, bool) {
	if vt.LookupLocal(selector) == nil {
		return Origin{}, false
	}
	return vt.origins[selector], true
}

// AddMember adds or replaces a native member at the given selector ID.
// The members slice is grown as needed.
func (vt *VTable) AddMember(selector int, member Member) {
	vt.put(selector, member, Origin{})
}

// Attach adds an installed member at the given selector ID. Unlike
// AddMember it never replaces an occupied slot; it returns ErrSlotExists
// instead and leaves the table untouched.
func (vt *VTable) Attach(selector int, member Member, origin Origin) error {
	if vt.LookupLocal(selector) != nil {
		return ErrSlotExists
	}
	vt.put(selector, member, origin)
	return nil
}

func (vt *VTable) put(selector int, member Member, origin Origin) {
	if selector >= len(vt.members) {
		grown := make([]Member, selector+1)
		copy(grown, vt.members)
		vt.members = grown

		grownOrigins := make([]Origin, selector+1)
		copy(grownOrigins, vt.origins)
		vt.origins = grownOrigins
	}
	vt.members[selector] = member
	vt.origins[selector] = origin
}

// HasMember returns true if this vtable (not parents) has a member for selector.
func (vt *VTable) HasMember(selector int) bool {
	return vt.LookupLocal(selector) != nil
}

// Parent returns the parent vtable (for inheritance).
func (vt *VTable) Parent() *VTable {
	return vt.parent
}

// Class returns the class this vtable belongs to.
func (vt *VTable) Class() *Class {
	return vt.class
}

// SlotCount returns the number of member slots (including nil slots).
func (vt *VTable) SlotCount() int {
	return len(vt.members)
}

// LocalMembers returns all non-nil members defined in this vtable.
// Returns a map of selector ID to member.
func (vt *VTable) LocalMembers() map[int]Member {
	result := make(map[int]Member)
	for i, m := range vt.members {
		if m != nil {
			result[i] = m
		}
	}
	return result
}

// NewVTable creates a new vtable for a class.
func NewVTable(class *Class, parent *VTable) *VTable {
	return &VTable{
		class:   class,
		parent:  parent,
		members: make([]Member, 0, 16),
		origins: make([]Origin, 0, 16),
	}
}
