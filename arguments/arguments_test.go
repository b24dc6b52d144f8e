package arguments

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/stew/variable"
)

func TestPackagedArguments_Basics(t *testing.T) {
	p := New("one", 2, 3.3)
	assert.Equal(t, 3, p.Size())
	assert.False(t, p.IsEmpty())

	v, err := p.Get(0)
	require.NoError(t, err)
	s, err := variable.As[string](v)
	require.NoError(t, err)
	assert.Equal(t, "one", s)

	_, err = p.Get(10)
	assert.Error(t, err)
}

func TestPackagedArguments_CopyOnWrite(t *testing.T) {
	// Testable Property: copying and then mutating one copy leaves the
	// other unchanged.
	original := New(1, 2)
	shared := original.Share()

	shared.AddBack(variable.New(3))

	assert.Equal(t, 2, original.Size())
	assert.Equal(t, 3, shared.Size())

	v, _ := shared.Get(2)
	n, _ := variable.As[int](v)
	assert.Equal(t, 3, n)
}

func TestPackagedArguments_AddFront(t *testing.T) {
	p := New(2, 3)
	p.AddFront(variable.New(1))
	require.Equal(t, 3, p.Size())
	v, _ := p.Get(0)
	n, _ := variable.As[int](v)
	assert.Equal(t, 1, n)
}

func TestPackagedArguments_CatPrepend(t *testing.T) {
	a := New(1, 2)
	b := New(3, 4)

	cat := a.Cat(b)
	assert.Equal(t, 4, cat.Size())
	assert.Equal(t, 2, a.Size(), "Cat must not mutate its receiver")
	assert.Equal(t, 2, b.Size(), "Cat must not mutate its argument")

	prep := a.Prepend(b)
	first, _ := prep.Get(0)
	n, _ := variable.As[int](first)
	assert.Equal(t, 3, n)
}

func TestPackagedArguments_ToTuple(t *testing.T) {
	t.Run("matches declared arity and converts", func(t *testing.T) {
		p := New("one", 2, 3.3)
		fnType := reflect.TypeOf(func(string, int, float64) {})
		tuple, err := p.ToTuple(fnType)
		require.NoError(t, err)
		require.Len(t, tuple, 3)
		assert.Equal(t, "one", tuple[0].Interface())
		assert.Equal(t, 2, tuple[1].Interface())
		assert.InDelta(t, 3.3, tuple[2].Interface().(float64), 0.0001)
	})

	t.Run("ignores trailing arguments beyond arity", func(t *testing.T) {
		p := New(1, 2, 3, 4)
		fnType := reflect.TypeOf(func(int, int) {})
		tuple, err := p.ToTuple(fnType)
		require.NoError(t, err)
		assert.Len(t, tuple, 2)
	})

	t.Run("fewer arguments than arity fails", func(t *testing.T) {
		p := New(1)
		fnType := reflect.TypeOf(func(int, int) {})
		_, err := p.ToTuple(fnType)
		assert.Error(t, err)
	})

	t.Run("non-func type fails", func(t *testing.T) {
		p := New(1)
		_, err := p.ToTuple(reflect.TypeOf(1))
		assert.Error(t, err)
	})
}

func TestGetAs(t *testing.T) {
	p := New(1, "two")
	n, err := GetAs[int](p, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	s, err := GetAs[string](p, 1)
	require.NoError(t, err)
	assert.Equal(t, "two", s)
}
