// Package mixin attaches capability bundles to classes after definition.
//
// Usage is two-phase. Bundles are registered against a target class with
// Mixin, either before or after the class is defined; each class is then
// installed explicitly with Install:
//
//	mixin.Mixin(b, mixin.NewBundle("egg").
//		With("egg", mixin.Getter(func(call *vm.Call) vm.Value { return call.Receiver })))
//	mixin.Install(a)
//	mixin.Install(b)
//	mixin.Install(c)
//
// Installation is idempotent per class and never transitive by default:
// installing a subclass does not apply its ancestors' bundles to the
// ancestors. A bundle may not shadow a name its target declares itself;
// that fails with ErrCapabilityCollision and leaves the class untouched.
//
// Ancestor calls need no bookkeeping here. An installed method is owned by
// the class it was installed on, so vm.Call.Super keeps resolving through
// the ordinary superclass chain.
package mixin
