package metaclass

import (
	"sync"

	stewerrors "github.com/wudi/stew/errors"
)

// Registry is the process-wide meta-name -> *MetaClass map backing
// ObjectFactory's registration half: reads and writes never observe a torn
// entry, and lookups are safe to interleave with registration.
type Registry struct {
	mu      sync.RWMutex
	classes map[string]*MetaClass
}

// NewRegistry creates an empty registry. Most callers use the process-wide
// Default(); tests build their own to avoid cross-test pollution.
func NewRegistry() *Registry {
	return &Registry{classes: make(map[string]*MetaClass)}
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide metaclass registry, created on first
// use by Library.Initialize (or lazily here if a caller reaches it first).
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = NewRegistry()
	})
	return defaultReg
}

// Register inserts mc under its name if absent, then recursively registers
// any of its supers that are not yet registered (non-fatal if a super is
// already present).
func (r *Registry) Register(mc *MetaClass) error {
	r.mu.Lock()
	if _, exists := r.classes[mc.Name()]; exists {
		r.mu.Unlock()
		return stewerrors.New(stewerrors.ErrMetaClassExists, "Registry.Register", mc.Name())
	}
	r.classes[mc.Name()] = mc
	r.mu.Unlock()

	for _, super := range mc.Supers() {
		// Ignore "already registered": deep-registration of supers is
		// non-fatal when they are shared across multiple metaclasses.
		_ = r.Register(super)
	}
	return nil
}

// Override replaces the binding for an existing name. It requires the name
// to already be registered and does not rebind instances already created
// from the old metaclass.
func (r *Registry) Override(mc *MetaClass) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.classes[mc.Name()]; !exists {
		return stewerrors.New(stewerrors.ErrMetaClassNotFound, "Registry.Override", mc.Name())
	}
	r.classes[mc.Name()] = mc
	return nil
}

// Find looks up a metaclass by name.
func (r *Registry) Find(name string) (*MetaClass, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	mc, ok := r.classes[name]
	return mc, ok
}
