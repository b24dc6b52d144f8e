package object

import (
	"sync"

	"github.com/wudi/stew/arguments"
	stewerrors "github.com/wudi/stew/errors"
	"github.com/wudi/stew/container"
	"github.com/wudi/stew/metaclass"
	"github.com/wudi/stew/trace"
	"github.com/wudi/stew/variable"
)

// ConnectionContainer is the per-extension reference-counted guarded
// sequence of Connections — the one hot, concurrent structure in the
// system.
type ConnectionContainer = container.Guarded[*Connection]

// Extension is implemented by every concrete object extension
// (signal.SignalExtension, invokable.Invokable, ...). setHost is unexported
// so only types embedding *BaseExtension (in this package or via promotion
// from another package) can implement it.
type Extension interface {
	MetaName() string
	Host() *Object
	Connections() *ConnectionContainer
	RunOverride(args arguments.PackagedArguments) (variable.Variable, bool)
	OnAttached()
	OnDetached()

	setHost(o *Object)
}

// BaseExtension implements everything Extension needs except RunOverride,
// which every concrete extension type supplies itself. Concrete types embed
// *BaseExtension and add their own RunOverride method.
type BaseExtension struct {
	mu          sync.RWMutex
	name        string
	host        *Object
	connections ConnectionContainer
	metaClass   *metaclass.MetaClass
}

// NewBaseExtension initializes a BaseExtension named name.
func NewBaseExtension(name string) *BaseExtension {
	return &BaseExtension{name: name}
}

// MetaName returns the extension's meta-name.
func (e *BaseExtension) MetaName() string { return e.name }

// SetMetaClass implements metaclass.Instance, letting an extension
// metaclass's Create hand newly built extensions back to the factory
// without metaclass importing object.
func (e *BaseExtension) SetMetaClass(mc *metaclass.MetaClass) {
	e.mu.Lock()
	e.metaClass = mc
	e.mu.Unlock()
}

// MetaClass returns the metaclass this extension was created from, or nil.
func (e *BaseExtension) MetaClass() *metaclass.MetaClass {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.metaClass
}

// Host returns the owning Object, or nil while detached.
func (e *BaseExtension) Host() *Object {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.host
}

func (e *BaseExtension) setHost(o *Object) {
	e.mu.Lock()
	e.host = o
	e.mu.Unlock()
}

// Connections returns the extension's own connection container.
func (e *BaseExtension) Connections() *ConnectionContainer {
	return &e.connections
}

// OnAttached/OnDetached default to no-ops; concrete extensions override
// them by declaring their own method of the same name, which shadows these
// when the value is held through the Extension interface.
func (e *BaseExtension) OnAttached() {}
func (e *BaseExtension) OnDetached() {}

// Run is the sole public entry point for invoking an extension:
// reentrancy-safe because the connections container is retained across the
// call to RunOverride, deferring any concurrent structural mutation until
// the guard is released (container.Guarded.Retain/Release). A panic inside
// RunOverride is caught, logged, and surfaced as a plain (None, false)
// result instead of crashing the caller; a *errors.Precondition panic is
// re-raised, since precondition violations stay fatal.
func Run(ext Extension, args arguments.PackagedArguments) (result variable.Variable, ok bool) {
	conns := ext.Connections()
	conns.Retain()
	defer conns.Release()
	defer func() {
		if r := recover(); r != nil {
			if _, fatal := r.(*stewerrors.Precondition); fatal {
				panic(r)
			}
			trace.Default().Log(trace.Error, "object.Run", "extension.go", 0,
				"panic in %s.RunOverride: %v", ext.MetaName(), r)
			result, ok = variable.Variable{}, false
		}
	}()
	return ext.RunOverride(args)
}

// Connect creates a Connection from source to target, inserts it into both
// endpoints' containers, and returns it.
func Connect(source, target Extension) *Connection {
	c := newConnection(source, target)
	AddConnection(source, c)
	AddConnection(target, c)
	return c
}

// DisconnectConnection invalidates c and removes it from both endpoints'
// containers.
func DisconnectConnection(c *Connection) {
	disconnectOne(c)
}

// AddConnection inserts c into ext's own container. Precondition: c is not
// already present (checked by pointer identity); violating it is fatal.
func AddConnection(ext Extension, c *Connection) {
	if FindConnection(ext, c) {
		stewerrors.Raise("object.AddConnection", "connection already present in "+ext.MetaName()+"'s container")
	}
	ext.Connections().Append(c)
}

// RemoveConnection erases c from ext's container. Precondition: c is
// present.
func RemoveConnection(ext Extension, c *Connection) {
	removed := ext.Connections().Remove(func(existing *Connection) bool { return existing == c })
	if !removed {
		stewerrors.Raise("object.RemoveConnection", "connection not present in "+ext.MetaName()+"'s container")
	}
}

// Disconnect tears down every connection in ext's container, invalidating
// each and removing it from both endpoints' containers.
func Disconnect(ext Extension) {
	var all []*Connection
	ext.Connections().Each(func(c *Connection) { all = append(all, c) })
	for _, c := range all {
		disconnectOne(c)
	}
}

// DisconnectTarget tears down only the connections in ext's container where
// ext is the target.
func DisconnectTarget(ext Extension) {
	var victims []*Connection
	ext.Connections().Each(func(c *Connection) {
		if c.Target() == ext {
			victims = append(victims, c)
		}
	})
	for _, c := range victims {
		disconnectOne(c)
	}
}

func disconnectOne(c *Connection) {
	c.invalidate()
	c.Source().Connections().Remove(func(existing *Connection) bool { return existing == c })
	c.Target().Connections().Remove(func(existing *Connection) bool { return existing == c })
}

// FindConnection performs a linear search of ext's own container for c;
// callers that need the result to stay stable against concurrent mutation
// must already hold the container guard (Retain).
func FindConnection(ext Extension, c *Connection) bool {
	found := false
	ext.Connections().Each(func(existing *Connection) {
		if existing == c {
			found = true
		}
	})
	return found
}
