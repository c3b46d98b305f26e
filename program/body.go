package program

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/chazu/glucose/vm"
)

// SelfBody is the body that returns the receiver itself rather than a
// rendered string.
const SelfBody = "self"

// body is a compiled member body.
type body struct {
	args []string
	self bool
	tmpl *template.Template
}

func compileBody(owner, name, src string, args []string) (*body, error) {
	b := &body{args: args}
	if strings.TrimSpace(src) == SelfBody {
		b.self = true
		return b, nil
	}
	t, err := template.New(owner + "." + name).Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", owner, name, err)
	}
	b.tmpl = t
	return b, nil
}

func (b *body) eval(call *vm.Call, args []vm.Value) (vm.Value, error) {
	if b.self {
		return call.Receiver, nil
	}
	var sb strings.Builder
	if err := b.tmpl.Execute(&sb, &scope{call: call, names: b.args, args: args}); err != nil {
		return nil, err
	}
	return sb.String(), nil
}

func (b *body) method() vm.PrimitiveFunc {
	return func(call *vm.Call, args []vm.Value) vm.Value {
		v, err := b.eval(call, args)
		if err != nil {
			return call.Fail(err)
		}
		return v
	}
}

func (b *body) getter() vm.GetterFunc {
	return func(call *vm.Call) vm.Value {
		v, err := b.eval(call, nil)
		if err != nil {
			return call.Fail(err)
		}
		return v
	}
}

// storeSetter writes the assigned value to an instance variable.
func storeSetter(store string) vm.SetterFunc {
	return func(call *vm.Call, value vm.Value) {
		if err := call.Set(store, value); err != nil {
			call.Fail(err)
		}
	}
}

// scope is the dot of a body template.
type scope struct {
	call  *vm.Call
	names []string
	args  []vm.Value
}

// Super calls the ancestor implementation of the running member.
func (s *scope) Super(args ...any) (string, error) {
	v, err := s.call.Super(values(args)...)
	if err != nil {
		return "", err
	}
	return vm.Format(v), nil
}

// Self renders the receiver.
func (s *scope) Self() string {
	return vm.Format(s.call.Receiver)
}

// Send sends a message to the receiver.
func (s *scope) Send(name string, args ...any) (string, error) {
	v, err := s.call.Send(name, values(args)...)
	if err != nil {
		return "", err
	}
	return vm.Format(v), nil
}

// Get reads a member or instance variable of the receiver.
func (s *scope) Get(name string) (string, error) {
	v, err := s.call.Get(name)
	if err != nil {
		return "", err
	}
	return vm.Format(v), nil
}

// Arg renders the declared argument of that name.
func (s *scope) Arg(name string) (string, error) {
	for i, n := range s.names {
		if n != name {
			continue
		}
		if i >= len(s.args) {
			return "", fmt.Errorf("%w: argument %s not passed", vm.ErrArity, name)
		}
		return vm.Format(s.args[i]), nil
	}
	return "", fmt.Errorf("no argument named %s", name)
}

func values(args []any) []vm.Value {
	out := make([]vm.Value, len(args))
	for i, a := range args {
		out[i] = a
	}
	return out
}
