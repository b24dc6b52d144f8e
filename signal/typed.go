package signal

import (
	"reflect"

	"github.com/wudi/stew/arguments"
	"github.com/wudi/stew/object"
)

// Go has no variadic type parameter packs, so a single generic signal
// template is rendered here as one family member per arity actually needed
// by the system — Signal0 through Signal3 — each a thin statically typed
// wrapper around a *SignalExtension that packages its arguments and
// forwards to Trigger.

// Signal0 is a typed Signal<void()>.
type Signal0 struct{ ext *SignalExtension }

// NewSignal0 builds a zero-argument signal named name (or signature-derived
// when name is "").
func NewSignal0(name string) *Signal0 {
	return &Signal0{ext: NewSignalExtension(name, reflect.TypeOf(func() {}))}
}

// Extension returns the underlying SignalExtension, e.g. to attach it to an
// Object.
func (s *Signal0) Extension() *SignalExtension { return s.ext }

// Trigger fires the signal with no arguments.
func (s *Signal0) Trigger() int64 {
	return s.ext.Trigger(arguments.New())
}

// Signal1 is a typed Signal<void(A)>.
type Signal1[A any] struct{ ext *SignalExtension }

// NewSignal1 builds a one-argument signal named name.
func NewSignal1[A any](name string) *Signal1[A] {
	return &Signal1[A]{ext: NewSignalExtension(name, reflect.TypeOf(func(A) {}))}
}

// Extension returns the underlying SignalExtension.
func (s *Signal1[A]) Extension() *SignalExtension { return s.ext }

// Trigger fires the signal with one argument.
func (s *Signal1[A]) Trigger(a A) int64 {
	return s.ext.Trigger(arguments.New(a))
}

// Signal2 is a typed Signal<void(A,B)>.
type Signal2[A, B any] struct{ ext *SignalExtension }

// NewSignal2 builds a two-argument signal named name.
func NewSignal2[A, B any](name string) *Signal2[A, B] {
	return &Signal2[A, B]{ext: NewSignalExtension(name, reflect.TypeOf(func(A, B) {}))}
}

// Extension returns the underlying SignalExtension.
func (s *Signal2[A, B]) Extension() *SignalExtension { return s.ext }

// Trigger fires the signal with two arguments.
func (s *Signal2[A, B]) Trigger(a A, b B) int64 {
	return s.ext.Trigger(arguments.New(a, b))
}

// Signal3 is a typed Signal<void(A,B,C)>.
type Signal3[A, B, C any] struct{ ext *SignalExtension }

// NewSignal3 builds a three-argument signal named name.
func NewSignal3[A, B, C any](name string) *Signal3[A, B, C] {
	return &Signal3[A, B, C]{ext: NewSignalExtension(name, reflect.TypeOf(func(A, B, C) {}))}
}

// Extension returns the underlying SignalExtension.
func (s *Signal3[A, B, C]) Extension() *SignalExtension { return s.ext }

// Trigger fires the signal with three arguments.
func (s *Signal3[A, B, C]) Trigger(a A, b B, c C) int64 {
	return s.ext.Trigger(arguments.New(a, b, c))
}

// AsExtension is a convenience so call sites can pass any typed Signal's
// underlying extension where an object.Extension is expected (e.g. when
// attaching to an Object).
func AsExtension(ext *SignalExtension) object.Extension { return ext }
