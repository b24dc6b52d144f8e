package metaclass

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stewerrors "github.com/wudi/stew/errors"
)

func TestRegistry_Register(t *testing.T) {
	t.Run("inserts by name", func(t *testing.T) {
		r := NewRegistry()
		mc, _ := New("Widget1")
		require.NoError(t, r.Register(mc))

		found, ok := r.Find("Widget1")
		require.True(t, ok)
		assert.Same(t, mc, found)
	})

	t.Run("duplicate name fails", func(t *testing.T) {
		r := NewRegistry()
		mc, _ := New("Widget2")
		require.NoError(t, r.Register(mc))
		err := r.Register(mc)
		assert.ErrorIs(t, err, stewerrors.ErrMetaClassExists)
	})

	t.Run("recursively registers unregistered supers", func(t *testing.T) {
		r := NewRegistry()
		base, _ := New("Base6")
		sub, _ := New("Sub6", WithSuper(base))
		require.NoError(t, r.Register(sub))

		_, ok := r.Find("Base6")
		assert.True(t, ok)
	})

	t.Run("shared super already registered is non-fatal", func(t *testing.T) {
		r := NewRegistry()
		base, _ := New("Base7")
		require.NoError(t, r.Register(base))

		subA, _ := New("SubA7", WithSuper(base))
		subB, _ := New("SubB7", WithSuper(base))
		require.NoError(t, r.Register(subA))
		require.NoError(t, r.Register(subB))
	})
}

func TestRegistry_Override(t *testing.T) {
	t.Run("requires existing binding", func(t *testing.T) {
		r := NewRegistry()
		mc, _ := New("Widget3")
		err := r.Override(mc)
		assert.ErrorIs(t, err, stewerrors.ErrMetaClassNotFound)
	})

	t.Run("replaces the binding", func(t *testing.T) {
		r := NewRegistry()
		first, _ := New("Widget4")
		require.NoError(t, r.Register(first))

		second, _ := New("Widget4")
		require.NoError(t, r.Override(second))

		found, _ := r.Find("Widget4")
		assert.Same(t, second, found)
	})
}

func TestRegistry_Find_Unknown(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Find("Nonexistent")
	assert.False(t, ok)
}
