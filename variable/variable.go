package variable

import (
	stewerrors "github.com/wudi/stew/errors"
	"github.com/wudi/stew/typeinfo"
)

// Variable is the type-erased value carrier: storage plus a cached,
// non-owning pointer to the operator vtable registered for storage's type.
// The zero Variable is "empty" (no storage, no ops).
type Variable struct {
	storage  any
	typ      typeinfo.TypeInfo
	ops      *Operators
	registry *Registry
}

// New constructs a Variable from a concrete value, looking up and caching
// the operator vtable for its type in the default registry.
func New(v any) Variable {
	return NewIn(Default(), v)
}

// NewIn constructs a Variable against an explicit registry, which tests use
// to exercise custom-registered types without touching the process-wide
// default registry.
func NewIn(r *Registry, v any) Variable {
	if v == nil {
		return Variable{registry: r}
	}
	t := typeinfo.FromValue(v)
	ops, _ := r.GetOperators(t)
	return Variable{storage: v, typ: t, ops: ops, registry: r}
}

// Empty reports whether the Variable carries no value.
func (v Variable) Empty() bool {
	return v.storage == nil
}

// Void is the type a void-returning invocation wraps its result in, so a
// present Variable carrying the void type stays distinguishable from a
// truly-missing Variable{} (Object.Invoke/object.Run's "none" result).
type Void struct{}

// EmptyResult returns a non-empty Variable carrying the Void type, the value
// Invokable.RunOverride hands back for a callable with no return value.
// Named EmptyResult (not Empty) to avoid colliding with the Variable.Empty
// predicate above.
func EmptyResult() Variable {
	return New(Void{})
}

// Type returns the current TypeInfo, failing with ErrBadTypeId when empty.
func (v Variable) Type() (typeinfo.TypeInfo, error) {
	if v.Empty() {
		return typeinfo.TypeInfo{}, stewerrors.New(stewerrors.ErrBadTypeId, "Variable.Type", "")
	}
	return v.typ, nil
}

// IsTypeOf reports whether Variable currently stores a T (a runtime type
// check).
func IsTypeOf[T any](v Variable) bool {
	if v.Empty() {
		return false
	}
	return v.typ.Equal(typeinfo.Of[T]())
}

func (v Variable) registryOrDefault() *Registry {
	if v.registry != nil {
		return v.registry
	}
	return Default()
}

// As returns the stored value as a T: the exact stored value when the type
// matches, otherwise the result of converting it via the registry. Any
// failure propagates ErrConversionFailed/ErrUnregisteredType.
func As[T any](v Variable) (T, error) {
	var zero T
	if v.Empty() {
		return zero, stewerrors.New(stewerrors.ErrBadTypeId, "variable.As", "")
	}
	target := typeinfo.Of[T]()
	if v.typ.Equal(target) {
		return v.storage.(T), nil
	}
	converted, err := v.registryOrDefault().Convert(v.storage, v.typ, target)
	if err != nil {
		return zero, err
	}
	out, ok := converted.(T)
	if !ok {
		return zero, stewerrors.New(stewerrors.ErrBadVariableCast, "variable.As", "converter returned an unexpected type")
	}
	return out, nil
}

// ConvertTo returns the stored value converted to target: the exact stored
// value when target matches the current type, otherwise the result of
// running the registry's converter chain. This is the reflect-driven
// counterpart of As[T] that arguments.PackagedArguments.ToTuple uses, since
// a generic As[T] can't be called with a run-time-only reflect.Type.
func (v Variable) ConvertTo(target typeinfo.TypeInfo) (any, error) {
	if v.Empty() {
		return nil, stewerrors.New(stewerrors.ErrBadTypeId, "Variable.ConvertTo", "")
	}
	if v.typ.Equal(target) {
		return v.storage, nil
	}
	return v.registryOrDefault().Convert(v.storage, v.typ, target)
}

// rightOperand converts other to v's type when the types differ: every
// binary operator converts the right operand to the left's type first.
func (v Variable) rightOperand(other Variable) (any, error) {
	if other.Empty() {
		return nil, stewerrors.New(stewerrors.ErrBadTypeId, "Variable operator", "right operand is empty")
	}
	if v.typ.Equal(other.typ) {
		return other.storage, nil
	}
	return v.registryOrDefault().Convert(other.storage, other.typ, v.typ)
}

func (v Variable) binary(opName string, slot BinaryFn, other Variable) (Variable, error) {
	// "if the left operand is empty, behave as copy ... of the right"
	if v.Empty() {
		return other, nil
	}
	right, err := v.rightOperand(other)
	if err != nil {
		return Variable{}, err
	}
	if v.ops == nil {
		return Variable{}, stewerrors.New(stewerrors.ErrUnregisteredType, "Variable operator", v.typ.Name())
	}
	if slot == nil {
		return Variable{}, undefinedOperator(opName)
	}
	result, err := slot(v.storage, right)
	if err != nil {
		return Variable{}, err
	}
	return NewIn(v.registryOrDefault(), result), nil
}

func (v Variable) Add(other Variable) (Variable, error) { return v.binary("add", opsSlot(v, func(o *Operators) BinaryFn { return o.Add }), other) }
func (v Variable) Sub(other Variable) (Variable, error) { return v.binary("sub", opsSlot(v, func(o *Operators) BinaryFn { return o.Sub }), other) }
func (v Variable) Mul(other Variable) (Variable, error) { return v.binary("mul", opsSlot(v, func(o *Operators) BinaryFn { return o.Mul }), other) }
func (v Variable) Div(other Variable) (Variable, error) { return v.binary("div", opsSlot(v, func(o *Operators) BinaryFn { return o.Div }), other) }
func (v Variable) BwAnd(other Variable) (Variable, error) { return v.binary("bw_and", opsSlot(v, func(o *Operators) BinaryFn { return o.BwAnd }), other) }
func (v Variable) BwOr(other Variable) (Variable, error) { return v.binary("bw_or", opsSlot(v, func(o *Operators) BinaryFn { return o.BwOr }), other) }
func (v Variable) BwXor(other Variable) (Variable, error) { return v.binary("bw_xor", opsSlot(v, func(o *Operators) BinaryFn { return o.BwXor }), other) }

// BwShl/BwShr take a plain shift count.
func (v Variable) BwShl(count uint64) (Variable, error) { return v.shift("bw_shl", count, func(o *Operators) ShiftFn { return o.BwShl }) }
func (v Variable) BwShr(count uint64) (Variable, error) { return v.shift("bw_shr", count, func(o *Operators) ShiftFn { return o.BwShr }) }

func (v Variable) shift(name string, count uint64, pick func(*Operators) ShiftFn) (Variable, error) {
	if v.Empty() || v.ops == nil {
		return Variable{}, stewerrors.New(stewerrors.ErrUnregisteredType, "Variable operator", v.typ.Name())
	}
	fn := pick(v.ops)
	if fn == nil {
		return Variable{}, undefinedOperator(name)
	}
	result, err := fn(v.storage, count)
	if err != nil {
		return Variable{}, err
	}
	return NewIn(v.registryOrDefault(), result), nil
}

func opsSlot(v Variable, pick func(*Operators) BinaryFn) BinaryFn {
	if v.ops == nil {
		return nil
	}
	return pick(v.ops)
}

// Eq/Less/Leq/Gt/Geq are comparison operators: they use the left operand's
// vtable after converting the right operand when types differ.
func (v Variable) Eq(other Variable) (bool, error)  { return v.compare("eq", func(o *Operators) BinaryFn { return o.Eq }, other) }
func (v Variable) Less(other Variable) (bool, error) { return v.compare("less", func(o *Operators) BinaryFn { return o.Less }, other) }
func (v Variable) Leq(other Variable) (bool, error)  { return v.compare("leq", func(o *Operators) BinaryFn { return o.Leq }, other) }
func (v Variable) Gt(other Variable) (bool, error)  { return v.compare("gt", func(o *Operators) BinaryFn { return o.Gt }, other) }
func (v Variable) Geq(other Variable) (bool, error)  { return v.compare("geq", func(o *Operators) BinaryFn { return o.Geq }, other) }

func (v Variable) compare(name string, pick func(*Operators) BinaryFn, other Variable) (bool, error) {
	if v.Empty() || v.ops == nil {
		return false, stewerrors.New(stewerrors.ErrUnregisteredType, "Variable operator", v.typ.Name())
	}
	right, err := v.rightOperand(other)
	if err != nil {
		return false, err
	}
	fn := pick(v.ops)
	if fn == nil {
		return false, undefinedOperator(name)
	}
	out, err := fn(v.storage, right)
	if err != nil {
		return false, err
	}
	return out.(bool), nil
}

// And/Or/Not are the logical operators (&&, ||, !).
func (v Variable) And(other Variable) (bool, error) {
	if v.Empty() || v.ops == nil || v.ops.Land == nil {
		return false, undefinedOperator("land")
	}
	right, err := v.rightOperand(other)
	if err != nil {
		return false, err
	}
	out, err := v.ops.Land(v.storage, right)
	if err != nil {
		return false, err
	}
	return out.(bool), nil
}

func (v Variable) Or(other Variable) (bool, error) {
	if v.Empty() || v.ops == nil || v.ops.Lor == nil {
		return false, undefinedOperator("lor")
	}
	right, err := v.rightOperand(other)
	if err != nil {
		return false, err
	}
	out, err := v.ops.Lor(v.storage, right)
	if err != nil {
		return false, err
	}
	return out.(bool), nil
}

func (v Variable) Not() (bool, error) {
	if v.Empty() || v.ops == nil || v.ops.Lnot == nil {
		return false, undefinedOperator("lnot")
	}
	out, err := v.ops.Lnot(v.storage)
	if err != nil {
		return false, err
	}
	return out.(bool), nil
}

// Ptr/CPtr expose a raw pointer to the stored value through the vtable,
// returning nil when unsupported.
func (v Variable) Ptr() any {
	if v.Empty() || v.ops == nil || v.ops.Ptr == nil {
		return nil
	}
	return v.ops.Ptr(v.storage)
}

func (v Variable) CPtr() any {
	if v.Empty() || v.ops == nil || v.ops.CPtr == nil {
		return nil
	}
	return v.ops.CPtr(v.storage)
}

// Raw returns the stored value exactly as held, with no conversion.
func (v Variable) Raw() any {
	return v.storage
}
