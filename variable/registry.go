package variable

import (
	"fmt"
	"sync"

	stewerrors "github.com/wudi/stew/errors"
	"github.com/wudi/stew/typeinfo"
)

// Converter is a registered (source, target) conversion: a pair of a
// target-type identity and a convert function, either of which may be
// missing on a zero-value Converter (that is ErrInvalidConverter, not a nil
// map entry, since converters are stored by value in the registry).
type Converter struct {
	Target  typeinfo.TypeInfo
	Convert func(v any) (any, error)
}

func (c Converter) valid() bool {
	return c.Target.IsValid() && c.Convert != nil
}

// Registry is the process-wide TypeInfo -> Operators and
// (TypeInfo,TypeInfo) -> Converter map. It is populated lazily on first use
// (registerBuiltins, called once via sync.Once from the package-level
// Default accessor) and is read-only in steady state; registering after
// first use from multiple goroutines is guarded by a mutex but registering
// a duplicate type or converter pair is a precondition violation.
type Registry struct {
	mu         sync.RWMutex
	operators  map[typeinfo.TypeInfo]*Operators
	converters map[typeinfo.TypeInfo]map[typeinfo.TypeInfo]Converter
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry, lazily pre-registering the
// built-in arithmetic/string-like types and their converter matrix the
// first time it is called from anywhere in the process.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = newRegistry()
		registerBuiltins(defaultRegistry)
	})
	return defaultRegistry
}

func newRegistry() *Registry {
	return &Registry{
		operators:  make(map[typeinfo.TypeInfo]*Operators),
		converters: make(map[typeinfo.TypeInfo]map[typeinfo.TypeInfo]Converter),
	}
}

// RegisterType registers the operator vtable for t. Registering the same
// type twice is a fatal precondition violation.
func (r *Registry) RegisterType(t typeinfo.TypeInfo, ops *Operators) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.operators[t]; exists {
		stewerrors.Raise("variable.Registry.RegisterType", fmt.Sprintf("type %s already registered", t.Name()))
	}
	ops.Type = t
	r.operators[t] = ops
}

// GetOperators returns the vtable registered for t, if any.
func (r *Registry) GetOperators(t typeinfo.TypeInfo) (*Operators, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ops, ok := r.operators[t]
	return ops, ok
}

// RegisterConverter registers the conversion from source to target.
// Registering the same (source,target) pair twice is a precondition
// violation.
func (r *Registry) RegisterConverter(source typeinfo.TypeInfo, conv Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byTarget, ok := r.converters[source]
	if !ok {
		byTarget = make(map[typeinfo.TypeInfo]Converter)
		r.converters[source] = byTarget
	}
	if _, exists := byTarget[conv.Target]; exists {
		stewerrors.Raise("variable.Registry.RegisterConverter",
			fmt.Sprintf("converter %s -> %s already registered", source.Name(), conv.Target.Name()))
	}
	byTarget[conv.Target] = conv
}

// GetConverter returns the registered converter from source to target, if
// any. Converting a type to itself never consults the registry — callers
// must check that first.
func (r *Registry) GetConverter(source, target typeinfo.TypeInfo) (Converter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byTarget, ok := r.converters[source]
	if !ok {
		return Converter{}, false
	}
	conv, ok := byTarget[target]
	if !ok || !conv.valid() {
		return Converter{}, false
	}
	return conv, true
}

// Convert performs source -> target conversion using the registry, failing
// with ErrUnregisteredType when no converter is registered for the pair,
// ErrInvalidConverter when the registered converter lacks its target type or
// convert function, and ErrConversionFailed when the converter itself errors.
func (r *Registry) Convert(v any, source, target typeinfo.TypeInfo) (any, error) {
	if source.Equal(target) {
		return v, nil
	}
	r.mu.RLock()
	conv, ok := r.converters[source][target]
	r.mu.RUnlock()
	if !ok {
		return nil, stewerrors.New(stewerrors.ErrUnregisteredType, "variable.Registry.Convert",
			fmt.Sprintf("%s -> %s", source.Name(), target.Name()))
	}
	if !conv.valid() {
		return nil, stewerrors.New(stewerrors.ErrInvalidConverter, "variable.Registry.Convert",
			fmt.Sprintf("%s -> %s", source.Name(), target.Name()))
	}
	out, err := conv.Convert(v)
	if err != nil {
		return nil, stewerrors.New(stewerrors.ErrConversionFailed, "variable.Registry.Convert", err.Error())
	}
	return out, nil
}

func undefinedOperator(name string) error {
	return stewerrors.New(stewerrors.ErrUndefinedOperator, "variable.Operators", name)
}
