// Package factory implements ObjectFactory: create an Object from a
// registered metaclass and finalize it by attaching every extension
// metaclass on its inheritance chain, resolving the metaclass's super chain
// before finalizing an instance.
package factory

import (
	stewerrors "github.com/wudi/stew/errors"
	"github.com/wudi/stew/metaclass"
	"github.com/wudi/stew/object"
)

// ObjectFactory wraps a metaclass.Registry with instance creation and
// finalization.
type ObjectFactory struct {
	registry *metaclass.Registry
}

// New builds an ObjectFactory over registry. A nil registry uses the
// process-wide default.
func New(registry *metaclass.Registry) *ObjectFactory {
	if registry == nil {
		registry = metaclass.Default()
	}
	return &ObjectFactory{registry: registry}
}

// Register inserts mc (and, recursively, its unregistered supers).
func (f *ObjectFactory) Register(mc *metaclass.MetaClass) error {
	return f.registry.Register(mc)
}

// Override replaces the binding for an existing metaclass name.
func (f *ObjectFactory) Override(mc *metaclass.MetaClass) error {
	return f.registry.Override(mc)
}

// Find looks up a registered metaclass by name.
func (f *ObjectFactory) Find(name string) (*metaclass.MetaClass, bool) {
	return f.registry.Find(name)
}

// Create looks up className, creates an instance named instanceName, and
// finalizes it: every extension metaclass on the inheritance chain
// (leaves-up, duplicates skipped, per MetaClass.AllExtensions) is
// instantiated and attached, skipping any whose metaclass is abstract.
func (f *ObjectFactory) Create(className, instanceName string) (*object.Object, error) {
	mc, ok := f.registry.Find(className)
	if !ok {
		return nil, stewerrors.New(stewerrors.ErrMetaClassNotFound, "ObjectFactory.Create", className)
	}
	instance, err := mc.Create(instanceName)
	if err != nil {
		return nil, err
	}
	obj, ok := instance.(*object.Object)
	if !ok {
		return nil, stewerrors.New(stewerrors.ErrMetaClassNotFound, "ObjectFactory.Create",
			className+": creator did not produce an *object.Object")
	}

	for _, ext := range mc.AllExtensions() {
		if ext.IsAbstract() {
			continue
		}
		extInstance, err := ext.Create(ext.Name())
		if err != nil {
			continue
		}
		objExt, ok := extInstance.(object.Extension)
		if !ok {
			continue
		}
		_ = obj.AddExtension(objExt)
	}
	return obj, nil
}
