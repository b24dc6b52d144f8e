// Package invokable implements Invokable: an ObjectExtension that wraps an
// arbitrary Go function and exposes it through the same run/invoke path as
// any other extension. Go has no compile-time member-function-pointer
// binding, so the "prepend owner, then self" rule for a bound member
// function is applied here by inspecting fn's declared parameter types
// once, at construction.
package invokable

import (
	"reflect"

	"github.com/wudi/stew/arguments"
	stewerrors "github.com/wudi/stew/errors"
	"github.com/wudi/stew/object"
	"github.com/wudi/stew/trace"
	"github.com/wudi/stew/variable"
)

var (
	objectPtrType    = reflect.TypeOf((*object.Object)(nil))
	extensionIfcType = reflect.TypeOf((*object.Extension)(nil)).Elem()
)

// Invokable wraps fn as an ObjectExtension.
type Invokable struct {
	*object.BaseExtension
	fn          reflect.Value
	fnType      reflect.Type
	prependHost bool
	prependSelf bool
}

// New wraps fn (any Go func value) as a named Invokable extension. An empty
// name defaults to DefaultName(fn).
func New(name string, fn any) *Invokable {
	if name == "" {
		name = DefaultName(fn)
	}
	v := reflect.ValueOf(fn)
	t := v.Type()
	inv := &Invokable{BaseExtension: object.NewBaseExtension(name), fn: v, fnType: t}

	if t.NumIn() > 0 && t.In(0) == objectPtrType {
		inv.prependHost = true
	}
	idx := 0
	if inv.prependHost {
		idx = 1
	}
	if t.NumIn() > idx && t.In(idx) == extensionIfcType {
		inv.prependSelf = true
	}
	return inv
}

// DefaultName returns the default meta-name for fn: its reflected function
// type, used when no explicit name is given to New.
func DefaultName(fn any) string {
	return reflect.TypeOf(fn).String()
}

// RunOverride prepends host and/or self as fn's signature demands, converts
// the arguments to a fixed-arity tuple, calls fn, and wraps the result. A
// panic from fn is recovered and reported as ok == false rather than
// propagating, except a *errors.Precondition panic, which is re-raised.
func (inv *Invokable) RunOverride(args arguments.PackagedArguments) (result variable.Variable, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, fatal := r.(*stewerrors.Precondition); fatal {
				panic(r)
			}
			trace.Default().Log(trace.Error, "Invokable.RunOverride", "invokable.go", 0,
				"panic in %s: %v", inv.MetaName(), r)
			result, ok = variable.Variable{}, false
		}
	}()

	packaged := args.Share()
	if inv.prependSelf {
		packaged.AddFront(variable.New(object.Extension(inv)))
	}
	if inv.prependHost {
		packaged.AddFront(variable.New(inv.Host()))
	}

	tuple, err := packaged.ToTuple(inv.fnType)
	if err != nil {
		return variable.Variable{}, false
	}
	out := inv.fn.Call(tuple)
	if inv.fnType.NumOut() == 0 {
		return variable.EmptyResult(), true
	}
	return variable.New(out[0].Interface()), true
}
