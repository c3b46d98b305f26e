package mixin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/glucose/vm"
)

func newTestRegistry(t *testing.T, opts ...Option) (*vm.VM, *Registry) {
	t.Helper()
	machine := vm.NewVM()
	return machine, NewRegistry(machine, opts...)
}

func selfGetter(call *vm.Call) vm.Value { return call.Receiver }

func TestMixinRejectsMalformedBundles(t *testing.T) {
	machine, reg := newTestRegistry(t)
	a := machine.DefineClass("A", nil)

	noop := func(call *vm.Call, args []vm.Value) vm.Value { return nil }

	cases := map[string]*Bundle{
		"empty accessor":      NewBundle("b").With("x", Accessor(nil, nil)),
		"method without body": NewBundle("b").With("x", Method(nil)),
		"unknown kind":        NewBundle("b").With("x", Descriptor{}),
		"accessor with body":  NewBundle("b").With("x", Descriptor{Kind: KindAccessor, Get: selfGetter, Fn: noop}),
		"method with getter":  NewBundle("b").With("x", Descriptor{Kind: KindMethod, Fn: noop, Get: selfGetter}),
		"bad arity":           NewBundle("b").With("x", MethodN(-2, noop)),
		"duplicate name":      NewBundle("b").With("x", Getter(selfGetter)).With("x", Getter(selfGetter)),
		"empty name":          NewBundle("b").With("", Getter(selfGetter)),
		"unnamed bundle":      NewBundle("").With("x", Getter(selfGetter)),
		"nil method0":         NewBundle("b").With("x", Method0(nil)),
	}
	for name, b := range cases {
		t.Run(name, func(t *testing.T) {
			err := reg.Mixin(a, b)
			assert.ErrorIs(t, err, ErrInvalidCapability)
		})
	}

	assert.Empty(t, reg.Lookup(a), "rejected bundles must not be stored")
	assert.ErrorIs(t, reg.Mixin(nil, NewBundle("b")), ErrInvalidCapability)
	assert.ErrorIs(t, reg.Mixin(a, nil), ErrInvalidCapability)
}

func TestLookupKeepsRegistrationOrder(t *testing.T) {
	machine, reg := newTestRegistry(t)
	a := machine.DefineClass("A", nil)
	b := machine.DefineClass("B", a)

	require.NoError(t, reg.Mixin(a, NewBundle("first").With("x", Getter(selfGetter))))
	require.NoError(t, reg.Mixin(a, NewBundle("second").With("y", Getter(selfGetter))))

	got := reg.Lookup(a)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Name())
	assert.Equal(t, "second", got[1].Name())

	assert.Empty(t, reg.Lookup(b), "lookup is per target, not inherited")
	assert.Empty(t, reg.Lookup(nil))
}

func TestMixinStoresACopy(t *testing.T) {
	machine, reg := newTestRegistry(t)
	a := machine.DefineClass("A", nil)

	b := NewBundle("grow").With("x", Getter(selfGetter))
	require.NoError(t, reg.Mixin(a, b))
	b.With("y", Getter(selfGetter))

	got := reg.Lookup(a)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"x"}, got[0].Names())
}

func TestTargetsAndReset(t *testing.T) {
	machine, reg := newTestRegistry(t)
	a := machine.DefineClass("A", nil)
	b := machine.DefineClass("B", a)

	require.NoError(t, reg.Mixin(a, NewBundle("m").With("x", Getter(selfGetter))))
	require.NoError(t, reg.Mixin(b, NewBundle("n").With("y", Getter(selfGetter))))
	assert.ElementsMatch(t, []*vm.Class{a, b}, reg.Targets())

	require.NoError(t, reg.Install(a))
	reg.Reset()

	assert.Empty(t, reg.Targets())
	assert.Empty(t, reg.Records())
	_, installed := reg.Installed(a)
	assert.False(t, installed)
	assert.True(t, a.HasMember(machine.Selectors, "x"), "reset does not detach members")
}

func TestLateRegistrationIsNotApplied(t *testing.T) {
	machine, reg := newTestRegistry(t)
	a := machine.DefineClass("A", nil)

	require.NoError(t, reg.Install(a))
	require.NoError(t, reg.Mixin(a, NewBundle("late").With("x", Getter(selfGetter))))
	require.NoError(t, reg.Install(a))

	assert.False(t, a.HasMember(machine.Selectors, "x"))
	assert.Len(t, reg.Lookup(a), 1, "the bundle is still recorded")

	reg.Reset()
	assert.Empty(t, reg.Lookup(a), "reset discards the late bundle")
	require.NoError(t, reg.Install(a))
	assert.False(t, a.HasMember(machine.Selectors, "x"), "a discarded bundle is never applied")

	rec, installed := reg.Installed(a)
	require.True(t, installed)
	assert.Empty(t, rec.Names)

	require.NoError(t, reg.Mixin(a, NewBundle("again").With("x", Getter(selfGetter))))
	assert.False(t, a.HasMember(machine.Selectors, "x"), "A is installed again, so this bundle is late as well")
}

func TestHeadHelpers(t *testing.T) {
	t.Cleanup(Head.Reset)

	x := vm.Default.DefineClass("HeadX", nil)
	require.NoError(t, Mixin(x, NewBundle("egg").With("egg", Getter(selfGetter))))
	require.NoError(t, Install(x))

	obj := x.NewInstance()
	got, err := vm.Default.Get(obj, "egg")
	require.NoError(t, err)
	assert.Same(t, obj, got)
	assert.Same(t, vm.Default, Head.VM())
}
