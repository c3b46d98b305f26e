package mixin

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/glucose/vm"
)

// constant returns a zero-argument method body yielding s.
func constant(s string) vm.Method0Func {
	return func(call *vm.Call) vm.Value { return s }
}

// appendSuper returns a body that yields `<super> > marker`.
func appendSuper(marker string) vm.Method0Func {
	return func(call *vm.Call) vm.Value {
		prev, err := call.Super()
		if err != nil {
			return call.Fail(err)
		}
		return vm.Format(prev) + " > " + marker
	}
}

// ---------------------------------------------------------------------------
// Computed property demo
// ---------------------------------------------------------------------------

func TestInstalledGetterReturnsInstance(t *testing.T) {
	machine, reg := newTestRegistry(t)
	a := machine.DefineClass("A", nil)
	b := machine.DefineClass("B", a)
	c := machine.DefineClass("C", b)
	a.AddMethod0(machine.Selectors, "foo", constant("foo"))
	b.AddMethod0(machine.Selectors, "bar", constant("bar"))
	c.AddMethod0(machine.Selectors, "baz", constant("baz"))

	require.NoError(t, reg.Mixin(b, NewBundle("egg").With("egg", Getter(selfGetter))))
	require.NoError(t, reg.InstallAll(a, b, c))

	x := c.NewInstance()
	got, err := machine.Get(x, "egg")
	require.NoError(t, err)
	assert.Same(t, x, got, "egg must be the instance it was read from")

	y := b.NewInstance()
	got, err = machine.Get(y, "egg")
	require.NoError(t, err)
	assert.Same(t, y, got)

	// Native members are untouched.
	foo, err := machine.Send(x, "foo")
	require.NoError(t, err)
	assert.Equal(t, "foo", foo)
}

func TestInstalledAccessorWithSetter(t *testing.T) {
	machine, reg := newTestRegistry(t)
	a := machine.DefineClass("A", nil, "raw")

	bundle := NewBundle("upper").With("label", Accessor(
		func(call *vm.Call) vm.Value { v, _ := call.Get("raw"); return v },
		func(call *vm.Call, v vm.Value) {
			if err := call.Set("raw", "<"+vm.Format(v)+">"); err != nil {
				call.Fail(err)
			}
		},
	))
	require.NoError(t, reg.Mixin(a, bundle))
	require.NoError(t, reg.Install(a))

	obj := a.NewInstance()
	require.NoError(t, machine.Set(obj, "label", "x"))
	got, err := machine.Get(obj, "label")
	require.NoError(t, err)
	assert.Equal(t, "<x>", got)
}

// ---------------------------------------------------------------------------
// Ancestor chain demo
// ---------------------------------------------------------------------------

func buildChain(machine *vm.VM) (a, b, c, d *vm.Class) {
	a = machine.DefineClass("A", nil)
	b = machine.DefineClass("B", a)
	c = machine.DefineClass("C", b)
	d = machine.DefineClass("D", c)
	a.AddMethod0(machine.Selectors, "baz", constant(`"A"`))
	b.AddMethod0(machine.Selectors, "baz", appendSuper(`"B"`))
	d.AddMethod0(machine.Selectors, "baz", appendSuper(`"D"`))
	return a, b, c, d
}

func TestSuperChainSurvivesInstall(t *testing.T) {
	machine, reg := newTestRegistry(t)
	a, b, c, d := buildChain(machine)

	require.NoError(t, reg.InstallAll(a, b, c, d))

	got, err := machine.Send(d.NewInstance(), "baz")
	require.NoError(t, err)
	assert.Equal(t, `"A" > "B" > "D"`, got)

	got, err = machine.Send(c.NewInstance(), "baz")
	require.NoError(t, err)
	assert.Equal(t, `"A" > "B"`, got)
}

func TestInstalledOverrideOnIntermediateClass(t *testing.T) {
	machine, reg := newTestRegistry(t)
	a, b, c, d := buildChain(machine)

	require.NoError(t, reg.Mixin(c, NewBundle("cm").With("baz", Method0(appendSuper(`"Cm"`)))))
	require.NoError(t, reg.InstallAll(a, b, c, d))

	got, err := machine.Send(d.NewInstance(), "baz")
	require.NoError(t, err)
	assert.Equal(t, `"A" > "B" > "Cm" > "D"`, got)

	got, err = machine.Send(c.NewInstance(), "baz")
	require.NoError(t, err)
	assert.Equal(t, `"A" > "B" > "Cm"`, got)

	got, err = machine.Send(b.NewInstance(), "baz")
	require.NoError(t, err)
	assert.Equal(t, `"A" > "B"`, got, "ancestors are unaffected")
}

func TestInstallOrderDoesNotMatter(t *testing.T) {
	orders := map[string][]int{
		"root first":    {0, 1, 2, 3},
		"leaf first":    {3, 2, 1, 0},
		"interleaved":   {2, 0, 3, 1},
		"only involved": {2},
	}
	for name, order := range orders {
		t.Run(name, func(t *testing.T) {
			machine, reg := newTestRegistry(t)
			a, b, c, d := buildChain(machine)
			classes := []*vm.Class{a, b, c, d}
			require.NoError(t, reg.Mixin(c, NewBundle("cm").With("baz", Method0(appendSuper(`"Cm"`)))))

			for _, i := range order {
				require.NoError(t, reg.Install(classes[i]))
			}

			got, err := machine.Send(d.NewInstance(), "baz")
			require.NoError(t, err)
			assert.Equal(t, `"A" > "B" > "Cm" > "D"`, got)
		})
	}
}

// ---------------------------------------------------------------------------
// Idempotence and records
// ---------------------------------------------------------------------------

func TestInstallIsIdempotent(t *testing.T) {
	machine, reg := newTestRegistry(t)
	a := machine.DefineClass("A", nil)
	calls := 0
	require.NoError(t, reg.Mixin(a, NewBundle("count").With("n", Getter(func(call *vm.Call) vm.Value {
		calls++
		return calls
	}))))

	require.NoError(t, reg.Install(a))
	first, ok := reg.Installed(a)
	require.True(t, ok)
	slots := a.VTable.SlotCount()
	members := len(a.VTable.LocalMembers())

	require.NoError(t, reg.Install(a))
	second, ok := reg.Installed(a)
	require.True(t, ok)

	assert.Same(t, first, second)
	assert.Equal(t, slots, a.VTable.SlotCount())
	assert.Equal(t, members, len(a.VTable.LocalMembers()))
	assert.Len(t, reg.Records(), 1)

	got, err := machine.Get(a.NewInstance(), "n")
	require.NoError(t, err)
	assert.Equal(t, 1, got, "getter runs once per read, not once per install")
}

func TestRecordContents(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	machine, reg := newTestRegistry(t, WithClock(func() time.Time { return fixed }))
	a := machine.DefineClass("A", nil)
	b := machine.DefineClass("B", a)

	require.NoError(t, reg.Mixin(b, NewBundle("one").With("x", Getter(selfGetter)).With("y", Getter(selfGetter))))
	require.NoError(t, reg.Mixin(b, NewBundle("two").With("z", Getter(selfGetter))))
	require.NoError(t, reg.InstallAll(a, b))

	recs := reg.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "A", recs[0].Class)
	assert.Empty(t, recs[0].Names)
	assert.Equal(t, 1, recs[0].Sequence)

	rec := recs[1]
	assert.Equal(t, "B", rec.Class)
	assert.Equal(t, "A", rec.Superclass)
	assert.Equal(t, 2, rec.Sequence)
	assert.Equal(t, []string{"x", "y", "z"}, rec.Names)
	assert.Equal(t, []string{"one", "two"}, rec.Bundles)
	assert.Equal(t, fixed, rec.InstalledAt)
	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.Same(t, b, rec.Target())
	assert.True(t, rec.Applied("y"))
	assert.False(t, rec.Applied("w"))
}

// ---------------------------------------------------------------------------
// Merge policy
// ---------------------------------------------------------------------------

func TestLastRegisteredBundleWins(t *testing.T) {
	machine, reg := newTestRegistry(t)
	a := machine.DefineClass("A", nil)

	require.NoError(t, reg.Mixin(a, NewBundle("old").
		With("greet", Method0(constant("old"))).
		With("keep", Method0(constant("keep")))))
	require.NoError(t, reg.Mixin(a, NewBundle("new").With("greet", Method0(constant("new")))))
	require.NoError(t, reg.Install(a))

	obj := a.NewInstance()
	got, err := machine.Send(obj, "greet")
	require.NoError(t, err)
	assert.Equal(t, "new", got)

	got, err = machine.Send(obj, "keep")
	require.NoError(t, err)
	assert.Equal(t, "keep", got)

	rec, _ := reg.Installed(a)
	assert.Equal(t, []string{"greet", "keep"}, rec.Names)

	origin, ok := a.VTable.OriginOf(machine.Selectors.Lookup("greet"))
	require.True(t, ok)
	assert.Equal(t, "new", origin.Bundle)
}

func TestMethodArgumentsReachBody(t *testing.T) {
	machine, reg := newTestRegistry(t)
	a := machine.DefineClass("A", nil)

	require.NoError(t, reg.Mixin(a, NewBundle("math").
		With("add", Method2(func(call *vm.Call, x, y vm.Value) vm.Value { return x.(int) + y.(int) })).
		With("count", Method(func(call *vm.Call, args []vm.Value) vm.Value { return len(args) }))))
	require.NoError(t, reg.Install(a))

	obj := a.NewInstance()
	got, err := machine.Send(obj, "add", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, got)

	_, err = machine.Send(obj, "add", 2)
	assert.ErrorIs(t, err, vm.ErrArity)

	got, err = machine.Send(obj, "count", 1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	bound, err := machine.Get(obj, "add")
	require.NoError(t, err)
	bm, ok := bound.(*vm.BoundMethod)
	require.True(t, ok)
	got, err = bm.Call(10, 1)
	require.NoError(t, err)
	assert.Equal(t, 11, got)
	assert.Same(t, obj, bm.Receiver())
}

// ---------------------------------------------------------------------------
// Collisions
// ---------------------------------------------------------------------------

func TestCollisionWithOwnMethod(t *testing.T) {
	machine, reg := newTestRegistry(t)
	a := machine.DefineClass("A", nil)
	a.AddMethod0(machine.Selectors, "foo", constant("native"))
	original := a.LookupMember(machine.Selectors, "foo")

	require.NoError(t, reg.Mixin(a, NewBundle("clash").
		With("fresh", Method0(constant("fresh"))).
		With("foo", Method0(constant("mixin")))))

	err := reg.Install(a)
	require.ErrorIs(t, err, ErrCapabilityCollision)
	assert.Contains(t, err.Error(), `"foo"`)

	assert.Same(t, original, a.LookupMember(machine.Selectors, "foo"))
	assert.False(t, a.HasMember(machine.Selectors, "fresh"), "nothing is attached on collision")
	_, installed := reg.Installed(a)
	assert.False(t, installed)

	got, err := machine.Send(a.NewInstance(), "foo")
	require.NoError(t, err)
	assert.Equal(t, "native", got)

	// The failure repeats rather than turning into a silent no-op.
	assert.ErrorIs(t, reg.Install(a), ErrCapabilityCollision)
}

func TestCollisionWithInstanceVariable(t *testing.T) {
	machine, reg := newTestRegistry(t)
	a := machine.DefineClass("A", nil, "label")
	b := machine.DefineClass("B", a)

	require.NoError(t, reg.Mixin(b, NewBundle("shadow").With("label", Getter(selfGetter))))
	err := reg.Install(b)
	require.ErrorIs(t, err, ErrCapabilityCollision)
	assert.Contains(t, err.Error(), "instance variable")
}

func TestOverridingInheritedMemberIsNotACollision(t *testing.T) {
	machine, reg := newTestRegistry(t)
	a := machine.DefineClass("A", nil)
	b := machine.DefineClass("B", a)
	a.AddMethod0(machine.Selectors, "foo", constant("a"))

	require.NoError(t, reg.Mixin(b, NewBundle("over").With("foo", Method0(appendSuper("b")))))
	require.NoError(t, reg.Install(b))

	got, err := machine.Send(b.NewInstance(), "foo")
	require.NoError(t, err)
	assert.Equal(t, "a > b", got)
}

// ---------------------------------------------------------------------------
// Cross-class independence
// ---------------------------------------------------------------------------

func TestSubclassInstallLeavesAncestorAlone(t *testing.T) {
	machine, reg := newTestRegistry(t)
	a := machine.DefineClass("A", nil)
	b := machine.DefineClass("B", a)

	require.NoError(t, reg.Mixin(a, NewBundle("egg").With("egg", Getter(selfGetter))))
	require.NoError(t, reg.Install(b))

	_, err := machine.Get(a.NewInstance(), "egg")
	assert.ErrorIs(t, err, vm.ErrDoesNotUnderstand)
	_, err = machine.Get(b.NewInstance(), "egg")
	assert.ErrorIs(t, err, vm.ErrDoesNotUnderstand)

	_, installed := reg.Installed(a)
	assert.False(t, installed)
}

func TestTransitiveInstallsAncestorsFirst(t *testing.T) {
	machine, reg := newTestRegistry(t, WithTransitive(true))
	a := machine.DefineClass("A", nil)
	b := machine.DefineClass("B", a)
	c := machine.DefineClass("C", b)

	require.NoError(t, reg.Mixin(a, NewBundle("egg").With("egg", Getter(selfGetter))))
	require.NoError(t, reg.Install(c))

	recs := reg.Records()
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{recs[0].Class, recs[1].Class, recs[2].Class})

	obj := c.NewInstance()
	got, err := machine.Get(obj, "egg")
	require.NoError(t, err)
	assert.Same(t, obj, got)
}

// ---------------------------------------------------------------------------
// Timing of registration and instance creation
// ---------------------------------------------------------------------------

func TestMixinBeforeDeclarationMatchesAfter(t *testing.T) {
	run := func(mixinFirst bool) string {
		machine, reg := newTestRegistry(t)
		a := machine.DefineClass("A", nil)
		b := machine.DefineClass("B", a)
		bundle := NewBundle("tag").With("tag", Method0(appendSuper("tag")))

		if mixinFirst {
			require.NoError(t, reg.Mixin(b, bundle))
		}
		a.AddMethod0(machine.Selectors, "tag", constant("a"))
		if !mixinFirst {
			require.NoError(t, reg.Mixin(b, bundle))
		}
		require.NoError(t, reg.InstallAll(a, b))

		got, err := machine.Send(b.NewInstance(), "tag")
		require.NoError(t, err)
		return got.(string)
	}

	assert.Equal(t, run(false), run(true))
	assert.Equal(t, "a > tag", run(true))
}

func TestExistingInstancesSeeInstalledMembers(t *testing.T) {
	machine, reg := newTestRegistry(t)
	a := machine.DefineClass("A", nil)
	early := a.NewInstance()

	require.NoError(t, reg.Mixin(a, NewBundle("egg").With("egg", Getter(selfGetter))))
	require.NoError(t, reg.Install(a))

	got, err := machine.Get(early, "egg")
	require.NoError(t, err)
	assert.Same(t, early, got)
}
