// Package object implements Object, ObjectExtension and Connection: a named
// entity that hosts a name-keyed map of attached extensions, each owned by
// exactly one Object at a time.
package object

import (
	"sync"

	"github.com/wudi/stew/arguments"
	stewerrors "github.com/wudi/stew/errors"
	"github.com/wudi/stew/metaclass"
	"github.com/wudi/stew/variable"
)

// Object is a named entity carrying a meta-name plus a name -> Extension
// map populated by the factory at creation time and mutable afterward.
type Object struct {
	mu         sync.RWMutex
	name       string
	metaClass  *metaclass.MetaClass
	extensions map[string]Extension
}

// NewObject creates an Object named name with no attached extensions. The
// factory package populates extensions afterward from the metaclass's
// extension set.
func NewObject(name string) *Object {
	return &Object{name: name, extensions: make(map[string]Extension)}
}

// SetMetaClass implements metaclass.Instance, letting MetaClass.Create hand
// new instances back to the factory without metaclass importing object.
func (o *Object) SetMetaClass(mc *metaclass.MetaClass) {
	o.mu.Lock()
	o.metaClass = mc
	o.mu.Unlock()
}

// MetaClass returns the metaclass this Object was created from, or nil if
// it was built directly with NewObject.
func (o *Object) MetaClass() *metaclass.MetaClass {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.metaClass
}

// Name returns the Object's own meta-name.
func (o *Object) Name() string { return o.name }

// AddExtension attaches ext to o: sets the back-pointer, fires OnAttached,
// and inserts into the extensions map under ext.MetaName(). It fails if
// ext already belongs to this or another Object.
func (o *Object) AddExtension(ext Extension) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if ext.Host() != nil {
		return stewerrors.New(stewerrors.ErrExtensionAlreadyOwned, "Object.AddExtension", ext.MetaName())
	}
	ext.setHost(o)
	ext.OnAttached()
	o.extensions[ext.MetaName()] = ext
	return nil
}

// RemoveExtension detaches and erases ext. Precondition: ext is currently
// owned by o.
func (o *Object) RemoveExtension(ext Extension) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if owned, ok := o.extensions[ext.MetaName()]; !ok || owned != ext {
		return stewerrors.New(stewerrors.ErrExtensionNotOwned, "Object.RemoveExtension", ext.MetaName())
	}
	ext.setHost(nil)
	ext.OnDetached()
	delete(o.extensions, ext.MetaName())
	return nil
}

// FindExtension is a single map lookup.
func (o *Object) FindExtension(name string) (Extension, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	ext, ok := o.extensions[name]
	return ext, ok
}

// Invoke forwards args to the extension named name through Run, returning
// ok == false when no such extension is attached.
func (o *Object) Invoke(name string, args arguments.PackagedArguments) (variable.Variable, bool) {
	ext, ok := o.FindExtension(name)
	if !ok {
		return variable.Variable{}, false
	}
	return Run(ext, args)
}
