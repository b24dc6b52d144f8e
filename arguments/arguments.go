// Package arguments implements PackagedArguments: an ordered, copy-on-write
// sequence of Variable values shared by reference so that copying is O(1)
// until the first mutation.
package arguments

import (
	"reflect"

	stewerrors "github.com/wudi/stew/errors"
	"github.com/wudi/stew/typeinfo"
	"github.com/wudi/stew/variable"
)

// descriptor is the shared backing store. Share copies the *descriptor
// pointer and bumps refCount; any mutating method first clones the slice if
// refCount > 1. A plain Go assignment of a PackagedArguments also copies
// the pointer but does not bump refCount, so a mutation through such a copy
// is visible through the original.
type descriptor struct {
	values   []variable.Variable
	refCount int
}

// PackagedArguments is a small value type wrapping a shared descriptor.
type PackagedArguments struct {
	d *descriptor
}

// New builds a PackagedArguments from a variadic list of concrete values,
// wrapping each in a Variable.
func New(values ...any) PackagedArguments {
	vs := make([]variable.Variable, len(values))
	for i, v := range values {
		vs[i] = variable.New(v)
	}
	return FromVariables(vs)
}

// FromVariables builds a PackagedArguments from already-constructed
// Variables, taking ownership of the slice.
func FromVariables(vs []variable.Variable) PackagedArguments {
	return PackagedArguments{d: &descriptor{values: vs, refCount: 1}}
}

// Share returns a cheap copy that aliases the same descriptor, incrementing
// its refcount so the next mutation on either copy clones first.
func (p PackagedArguments) Share() PackagedArguments {
	if p.d == nil {
		return PackagedArguments{}
	}
	p.d.refCount++
	return PackagedArguments{d: p.d}
}

// unique returns a descriptor this PackagedArguments can mutate in place,
// cloning the backing slice first when it is shared. After any mutating
// call the caller's descriptor is unique.
func (p *PackagedArguments) unique() *descriptor {
	if p.d == nil {
		p.d = &descriptor{refCount: 1}
		return p.d
	}
	if p.d.refCount <= 1 {
		return p.d
	}
	p.d.refCount--
	clone := make([]variable.Variable, len(p.d.values))
	copy(clone, p.d.values)
	p.d = &descriptor{values: clone, refCount: 1}
	return p.d
}

// Size returns the number of arguments.
func (p PackagedArguments) Size() int {
	if p.d == nil {
		return 0
	}
	return len(p.d.values)
}

// IsEmpty reports whether Size() == 0.
func (p PackagedArguments) IsEmpty() bool {
	return p.Size() == 0
}

// Get returns the Variable at index i.
func (p PackagedArguments) Get(i int) (variable.Variable, error) {
	if p.d == nil || i < 0 || i >= len(p.d.values) {
		return variable.Variable{}, stewerrors.New(stewerrors.ErrBadTypeId, "PackagedArguments.Get", "index out of range")
	}
	return p.d.values[i], nil
}

// GetAs returns the argument at index i converted to T.
func GetAs[T any](p PackagedArguments, i int) (T, error) {
	var zero T
	v, err := p.Get(i)
	if err != nil {
		return zero, err
	}
	return variable.As[T](v)
}

// AddBack appends v, copy-on-write.
func (p *PackagedArguments) AddBack(v variable.Variable) {
	d := p.unique()
	d.values = append(d.values, v)
}

// AddFront prepends v, copy-on-write.
func (p *PackagedArguments) AddFront(v variable.Variable) {
	d := p.unique()
	d.values = append([]variable.Variable{v}, d.values...)
}

// Cat returns a new PackagedArguments with other's values appended after
// this one's. Neither operand is mutated.
func (p PackagedArguments) Cat(other PackagedArguments) PackagedArguments {
	combined := make([]variable.Variable, 0, p.Size()+other.Size())
	combined = append(combined, p.slice()...)
	combined = append(combined, other.slice()...)
	return FromVariables(combined)
}

// Prepend returns a new PackagedArguments with other's values placed before
// this one's.
func (p PackagedArguments) Prepend(other PackagedArguments) PackagedArguments {
	return other.Cat(p)
}

func (p PackagedArguments) slice() []variable.Variable {
	if p.d == nil {
		return nil
	}
	return p.d.values
}

// ToTuple materializes the fixed-arity argument list a callable of type fn
// (a reflect.Type whose Kind is reflect.Func) expects, converting each
// element with variable.As. Extra trailing arguments beyond the callable's
// arity are ignored, never an error.
func (p PackagedArguments) ToTuple(fn reflect.Type) ([]reflect.Value, error) {
	if fn.Kind() != reflect.Func {
		return nil, stewerrors.New(stewerrors.ErrBadTypeId, "PackagedArguments.ToTuple", "target is not a function type")
	}
	arity := fn.NumIn()
	if p.Size() < arity {
		return nil, stewerrors.New(stewerrors.ErrSignatureMismatch, "PackagedArguments.ToTuple", "not enough arguments")
	}
	out := make([]reflect.Value, arity)
	for i := 0; i < arity; i++ {
		paramType := fn.In(i)
		v, _ := p.Get(i)
		converted, err := convertTo(v, paramType)
		if err != nil {
			return nil, err
		}
		out[i] = converted
	}
	return out, nil
}

// convertTo runs the argument through the same registry-backed conversion
// Variable.ConvertTo uses, so a PackagedArguments built from e.g. a string
// satisfies a callable expecting an int exactly the way a bare
// Variable.As[int] would. Types the registry has never seen (pointers,
// interfaces, structs — an owner Object, an ObjectExtension, a
// caller-defined argument type) fall back to identity/reflect-convertible
// matching, since there is no registered converter to consult for them.
func convertTo(v variable.Variable, target reflect.Type) (reflect.Value, error) {
	if v.Empty() {
		return reflect.Value{}, stewerrors.New(stewerrors.ErrBadTypeId, "PackagedArguments.ToTuple", "argument is empty")
	}
	raw := v.Raw()
	rv := reflect.ValueOf(raw)
	if rv.Type() == target {
		return rv, nil
	}

	if converted, err := v.ConvertTo(typeinfo.FromReflect(target)); err == nil {
		cv := reflect.ValueOf(converted)
		if cv.Type() == target {
			return cv, nil
		}
		if cv.Type().ConvertibleTo(target) {
			return cv.Convert(target), nil
		}
	}

	if rv.Type().ConvertibleTo(target) && target.Kind() != reflect.Interface {
		return rv.Convert(target), nil
	}
	if target.Kind() == reflect.Interface && rv.Type().Implements(target) {
		return rv, nil
	}
	return reflect.Value{}, stewerrors.New(stewerrors.ErrBadVariableCast, "PackagedArguments.ToTuple",
		"argument type does not match and is not convertible")
}
