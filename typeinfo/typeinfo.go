// Package typeinfo gives native Go types a process-stable identity and a
// human-readable name, the way stew's dynamic-type layer identifies the
// values flowing through Variable and PackagedArguments.
package typeinfo

import "reflect"

// TypeInfo wraps a reflect.Type so callers get value semantics, equality and
// a display name without repeating reflect boilerplate at every call site.
type TypeInfo struct {
	rt reflect.Type
}

// Of returns the TypeInfo describing the type T. For an interface type T it
// describes the interface type itself, never the zero TypeInfo.
func Of[T any]() TypeInfo {
	var zero T
	rt := reflect.TypeOf(zero)
	if rt == nil {
		// T is itself an interface type instantiated with a nil value;
		// fall back to the interface's own reflect.Type.
		rt = reflect.TypeOf((*T)(nil)).Elem()
	}
	return TypeInfo{rt: rt}
}

// FromValue returns the TypeInfo describing the dynamic type of v.
func FromValue(v any) TypeInfo {
	if v == nil {
		return TypeInfo{}
	}
	return TypeInfo{rt: reflect.TypeOf(v)}
}

// FromReflect wraps an already-resolved reflect.Type.
func FromReflect(rt reflect.Type) TypeInfo {
	return TypeInfo{rt: rt}
}

// IsValid reports whether the TypeInfo denotes a known type.
func (t TypeInfo) IsValid() bool {
	return t.rt != nil
}

// Reflect exposes the underlying reflect.Type for callers that need it
// (conversion and operator dispatch do).
func (t TypeInfo) Reflect() reflect.Type {
	return t.rt
}

// Name returns the displayable name of the type, or "<invalid>" when empty.
func (t TypeInfo) Name() string {
	if t.rt == nil {
		return "<invalid>"
	}
	return t.rt.String()
}

// Equal reports whether two TypeInfo values denote the same native type.
// Two TypeInfo values compare equal iff they wrap the same reflect.Type,
// which is itself comparable and canonicalized by the runtime.
func (t TypeInfo) Equal(other TypeInfo) bool {
	return t.rt == other.rt
}

// String implements fmt.Stringer.
func (t TypeInfo) String() string {
	return t.Name()
}
