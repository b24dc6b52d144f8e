// Package signal implements SignalExtension and the typed Signal wrappers: a
// signal is an ObjectExtension that, when run, invokes every connected slot
// extension and counts how many reported a result (ok == true).
package signal

import (
	"reflect"

	"github.com/wudi/stew/arguments"
	"github.com/wudi/stew/object"
	"github.com/wudi/stew/variable"
)

// SignalExtension is a concrete ObjectExtension representing one signal.
// When created without a name, its meta-name is derived deterministically
// from the signature's type identity, so two such signals with the same
// argument list share a name.
type SignalExtension struct {
	*object.BaseExtension
	signature reflect.Type
}

func signatureName(sig reflect.Type) string {
	return "signal<" + sig.String() + ">"
}

// NewSignalExtension creates a signal extension whose slots must accept the
// arguments described by signature, a func reflect.Type such as
// reflect.TypeOf(func(int, string) {}). name is the extension's own
// meta-name as it appears in its owning Object's extension map (what
// FindExtension/Invoke look up); an empty name defaults to one derived from
// the signature's type identity, the same for every signature with the
// same argument list. A non-empty name (e.g. "ticked", "sigVoid") is used
// as given.
func NewSignalExtension(name string, signature reflect.Type) *SignalExtension {
	if name == "" {
		name = signatureName(signature)
	}
	return &SignalExtension{
		BaseExtension: object.NewBaseExtension(name),
		signature:     signature,
	}
}

// verifySignature reports whether args has at least as many elements as
// signature's arity and converts cleanly into a call tuple for it.
func (s *SignalExtension) verifySignature(args arguments.PackagedArguments) bool {
	if args.Size() < s.signature.NumIn() {
		return false
	}
	_, err := args.ToTuple(s.signature)
	return err == nil
}

// RunOverride verifies the signature, then iterates a fixed snapshot of the
// connections container, invoking every valid connection whose source is
// this signal and counting the slots whose Run reports ok == true.
//
// container.Guarded locks and unlocks per call rather than holding its
// mutex for the loop's duration, so a slot is free to mutate this container
// mid-trigger (e.g. adding another connection) without deadlocking — the
// mutation simply lands outside this trigger's already-captured snapshot.
func (s *SignalExtension) RunOverride(args arguments.PackagedArguments) (variable.Variable, bool) {
	if !s.verifySignature(args) {
		return variable.Variable{}, false
	}
	conns := s.Connections()
	snapshot := conns.Snapshot()
	var count int64
	for i := range snapshot {
		entry, ok := conns.At(i)
		if !ok || !entry.Valid() || entry.Source() != object.Extension(s) {
			continue
		}
		if _, ran := object.Run(entry.Target(), args); ran {
			count++
		}
	}
	return variable.New(count), true
}

// Trigger runs the signal and returns the activation count, or -1 when args
// does not satisfy the signature.
func (s *SignalExtension) Trigger(args arguments.PackagedArguments) int64 {
	result, ok := object.Run(s, args)
	if !ok {
		return -1
	}
	count, _ := variable.As[int64](result)
	return count
}

// Connect creates a Connection with source=s, target=slot, inserts it into
// both endpoints' containers, and returns it.
func (s *SignalExtension) Connect(slot object.Extension) *object.Connection {
	return object.Connect(s, slot)
}

// ConnectByName resolves name against s's owning Object and connects to
// that extension, failing cleanly when s is not attached or name is
// unknown.
func (s *SignalExtension) ConnectByName(name string) (*object.Connection, bool) {
	host := s.Host()
	if host == nil {
		return nil, false
	}
	target, ok := host.FindExtension(name)
	if !ok {
		return nil, false
	}
	return s.Connect(target), true
}

// Disconnect removes c from both endpoints' containers.
func (s *SignalExtension) Disconnect(c *object.Connection) {
	object.DisconnectConnection(c)
}

// ConnectionCount returns the number of connections sourced from s.
func (s *SignalExtension) ConnectionCount() int {
	n := 0
	s.Connections().Each(func(c *object.Connection) {
		if c.Source() == object.Extension(s) {
			n++
		}
	})
	return n
}
