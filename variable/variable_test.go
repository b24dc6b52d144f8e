package variable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stewerrors "github.com/wudi/stew/errors"
)

func TestVariable_Empty(t *testing.T) {
	assert.True(t, Variable{}.Empty())
	assert.False(t, New(1).Empty())
}

func TestVariable_Type(t *testing.T) {
	t.Run("empty fails with ErrBadTypeId", func(t *testing.T) {
		_, err := Variable{}.Type()
		assert.ErrorIs(t, err, stewerrors.ErrBadTypeId)
	})

	t.Run("non-empty reports its type", func(t *testing.T) {
		ty, err := New(3.14).Type()
		require.NoError(t, err)
		assert.Equal(t, "float64", ty.Name())
	})
}

func TestIsTypeOf(t *testing.T) {
	assert.True(t, IsTypeOf[int](New(5)))
	assert.False(t, IsTypeOf[string](New(5)))
	assert.False(t, IsTypeOf[int](Variable{}))
}

func TestVariable_As(t *testing.T) {
	t.Run("exact type returns stored value", func(t *testing.T) {
		out, err := As[int](New(5))
		require.NoError(t, err)
		assert.Equal(t, 5, out)
	})

	t.Run("cross-type uses the registered converter", func(t *testing.T) {
		out, err := As[string](New(5))
		require.NoError(t, err)
		assert.Equal(t, "5", out)
	})

	t.Run("malformed string parse fails", func(t *testing.T) {
		_, err := As[int](New("not-a-number"))
		assert.Error(t, err)
	})

	t.Run("empty variable fails", func(t *testing.T) {
		_, err := As[int](Variable{})
		assert.ErrorIs(t, err, stewerrors.ErrBadTypeId)
	})
}

func TestVariable_RoundtripConversions(t *testing.T) {
	// Testable Property: Variable(a:A) -> B -> A round-trips for every pair
	// in the built-in converter matrix, for representable values.
	t.Run("int -> float64 -> int", func(t *testing.T) {
		asFloat, err := As[float64](New(42))
		require.NoError(t, err)
		asInt, err := As[int](New(asFloat))
		require.NoError(t, err)
		assert.Equal(t, 42, asInt)
	})

	t.Run("int -> string -> int", func(t *testing.T) {
		asString, err := As[string](New(123))
		require.NoError(t, err)
		asInt, err := As[int](New(asString))
		require.NoError(t, err)
		assert.Equal(t, 123, asInt)
	})

	t.Run("bool -> string -> bool", func(t *testing.T) {
		asString, err := As[string](New(true))
		require.NoError(t, err)
		asBool, err := As[bool](New(asString))
		require.NoError(t, err)
		assert.True(t, asBool)
	})

	t.Run("byte -> uint64 -> byte", func(t *testing.T) {
		asU, err := As[uint64](New(Byte(200)))
		require.NoError(t, err)
		asByte, err := As[Byte](New(asU))
		require.NoError(t, err)
		assert.Equal(t, Byte(200), asByte)
	})

	t.Run("int64 -> uint64 -> int64 preserves magnitude beyond float64's mantissa", func(t *testing.T) {
		const big int64 = 9223372036854775807 // math.MaxInt64, far past 2^53
		asU, err := As[uint64](New(big))
		require.NoError(t, err)
		assert.Equal(t, uint64(big), asU)
		back, err := As[int64](New(asU))
		require.NoError(t, err)
		assert.Equal(t, big, back)
	})

	t.Run("uint64 -> int64 -> uint64 preserves magnitude beyond float64's mantissa", func(t *testing.T) {
		const big uint64 = 18446744073709551615 // math.MaxUint64
		asI, err := As[int64](New(big))
		require.NoError(t, err)
		back, err := As[uint64](New(asI))
		require.NoError(t, err)
		assert.Equal(t, big, back)
	})
}

func TestVariable_SignedToUnsignedConversionWraps(t *testing.T) {
	// Native Go conversion semantics: int64(-1) -> uint64 wraps to
	// math.MaxUint64 rather than going through an intermediate float64,
	// whose behavior converting a negative value to unsigned is not
	// well-defined.
	asU, err := As[uint64](New(int64(-1)))
	require.NoError(t, err)
	assert.Equal(t, uint64(18446744073709551615), asU)
}

func TestVariable_BinaryOperators(t *testing.T) {
	t.Run("add same type", func(t *testing.T) {
		out, err := New(2).Add(New(3))
		require.NoError(t, err)
		v, _ := As[int](out)
		assert.Equal(t, 5, v)
	})

	t.Run("add converts mismatched right operand", func(t *testing.T) {
		out, err := New(2).Add(New("3"))
		require.NoError(t, err)
		v, _ := As[int](out)
		assert.Equal(t, 5, v)
	})

	t.Run("empty left operand behaves as copy of right", func(t *testing.T) {
		out, err := Variable{}.Add(New(7))
		require.NoError(t, err)
		v, _ := As[int](out)
		assert.Equal(t, 7, v)
	})

	t.Run("divide by zero fails", func(t *testing.T) {
		_, err := New(1).Div(New(0))
		assert.Error(t, err)
	})

	t.Run("undefined operator fails", func(t *testing.T) {
		_, err := New(1.5).BwAnd(New(2.5))
		assert.ErrorIs(t, err, stewerrors.ErrUndefinedOperator)
	})

	t.Run("unregistered type fails", func(t *testing.T) {
		_, err := New(customKind{1}).Add(New(customKind{2}))
		assert.ErrorIs(t, err, stewerrors.ErrUnregisteredType)
	})
}

func TestVariable_Shift(t *testing.T) {
	out, err := New(1).BwShl(3)
	require.NoError(t, err)
	v, _ := As[int](out)
	assert.Equal(t, 8, v)
}

func TestVariable_Comparisons(t *testing.T) {
	eq, err := New(3).Eq(New(3))
	require.NoError(t, err)
	assert.True(t, eq)

	less, err := New(2).Less(New(3))
	require.NoError(t, err)
	assert.True(t, less)

	geq, err := New(3).Geq(New("3"))
	require.NoError(t, err)
	assert.True(t, geq)
}

func TestVariable_Logical(t *testing.T) {
	and, err := New(true).And(New(false))
	require.NoError(t, err)
	assert.False(t, and)

	or, err := New(false).Or(New(true))
	require.NoError(t, err)
	assert.True(t, or)

	not, err := New(true).Not()
	require.NoError(t, err)
	assert.False(t, not)
}

func TestVariable_PtrCPtr(t *testing.T) {
	assert.Nil(t, New(5).Ptr())
	assert.Nil(t, New(5).CPtr())
}

func TestEmptyResult(t *testing.T) {
	r := EmptyResult()
	assert.False(t, r.Empty())
	assert.True(t, IsTypeOf[Void](r))
}
