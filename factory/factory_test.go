package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/stew/arguments"
	stewerrors "github.com/wudi/stew/errors"
	"github.com/wudi/stew/metaclass"
	"github.com/wudi/stew/object"
	"github.com/wudi/stew/variable"
)

// stubExt is the minimal object.Extension used to populate an extension
// metaclass's creator for factory tests.
type stubExt struct {
	*object.BaseExtension
}

func newStubExt(name string) (metaclass.Instance, error) {
	return &stubExt{BaseExtension: object.NewBaseExtension(name)}, nil
}

func (s *stubExt) RunOverride(args arguments.PackagedArguments) (variable.Variable, bool) {
	return variable.EmptyResult(), true
}

func objectCreator(name string) (metaclass.Instance, error) {
	return object.NewObject(name), nil
}

func newRegistry() *metaclass.Registry {
	return metaclass.NewRegistry()
}

func TestFactory_Create_UnknownClass(t *testing.T) {
	f := New(newRegistry())
	_, err := f.Create("Nope", "x")
	assert.ErrorIs(t, err, stewerrors.ErrMetaClassNotFound)
}

func TestFactory_Create_AttachesExtensions(t *testing.T) {
	reg := newRegistry()

	loggerExt, err := metaclass.New("Logger", metaclass.WithExtensionFlag(), metaclass.WithCreator(newStubExt))
	require.NoError(t, err)

	widget, err := metaclass.New("Widget", metaclass.WithCreator(objectCreator), metaclass.WithMetaExtension(loggerExt))
	require.NoError(t, err)

	require.NoError(t, reg.Register(widget))

	f := New(reg)
	obj, err := f.Create("Widget", "w1")
	require.NoError(t, err)
	require.NotNil(t, obj)

	_, ok := obj.FindExtension("Logger")
	assert.True(t, ok)
}

func TestFactory_Create_SkipsAbstractExtensions(t *testing.T) {
	reg := newRegistry()

	abstractExt, err := metaclass.New("AbstractLogger", metaclass.WithExtensionFlag(), metaclass.WithAbstract())
	require.NoError(t, err)

	widget, err := metaclass.New("Widget2", metaclass.WithCreator(objectCreator), metaclass.WithMetaExtension(abstractExt))
	require.NoError(t, err)
	require.NoError(t, reg.Register(widget))

	f := New(reg)
	obj, err := f.Create("Widget2", "w2")
	require.NoError(t, err)

	_, ok := obj.FindExtension("AbstractLogger")
	assert.False(t, ok)
}

func TestFactory_RegisterOverrideFind(t *testing.T) {
	reg := newRegistry()
	f := New(reg)

	mc, err := metaclass.New("Standalone", metaclass.WithCreator(objectCreator))
	require.NoError(t, err)
	require.NoError(t, f.Register(mc))

	found, ok := f.Find("Standalone")
	require.True(t, ok)
	assert.Same(t, mc, found)

	mc.Reopen()
	require.NoError(t, f.Override(mc))
}

func TestFactory_New_NilRegistryUsesDefault(t *testing.T) {
	f := New(nil)
	assert.NotNil(t, f)
}
