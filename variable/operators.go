package variable

import "github.com/wudi/stew/typeinfo"

// Byte is a type distinct from any integer type, with its own registered
// operators and converters, kept alongside the integer widths rather than
// folded into uint8.
type Byte uint8

// BinaryFn computes a binary operator over two values already known to
// share the vtable owner's type (the right operand has been converted by
// the caller beforehand).
type BinaryFn func(left, right any) (any, error)

// UnaryFn computes a unary operator (bw_not, lnot) over a single value.
type UnaryFn func(v any) (any, error)

// ShiftFn computes bw_shl/bw_shr; the right operand is a plain shift count.
type ShiftFn func(left any, count uint64) (any, error)

// PtrFn exposes a raw pointer to the stored value, or nil when unsupported.
type PtrFn func(v any) any

// Operators is the vtable registered once per native type. Any field may be
// nil, meaning "unsupported"; Variable.operator calls fail with
// ErrUndefinedOperator when the slot they need is nil. Lifetime is global:
// a vtable is registered once per type in the Registry and never mutated
// after registration.
type Operators struct {
	Type typeinfo.TypeInfo

	Add   BinaryFn
	Sub   BinaryFn
	Mul   BinaryFn
	Div   BinaryFn
	BwAnd BinaryFn
	BwOr  BinaryFn
	BwXor BinaryFn
	BwNot UnaryFn
	BwShl ShiftFn
	BwShr ShiftFn

	Land UnaryFn2
	Lor  UnaryFn2
	Lnot UnaryFn

	Eq    BinaryFn
	Less  BinaryFn
	Leq   BinaryFn
	Gt    BinaryFn
	Geq   BinaryFn

	Ptr  PtrFn
	CPtr PtrFn
}

// UnaryFn2 is used by the two logical binary operators (&&, ||), which in
// Go's value model still take two already-typed operands.
type UnaryFn2 func(left, right any) (any, error)
