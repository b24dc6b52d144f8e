// Package metaclass implements the metaclass descriptors and process-wide
// factory registry: inheritance-chain walking over an ordered super list,
// plus a mutex-guarded name->value map with sync.Once lazy init for the
// process-wide default.
package metaclass

import (
	"fmt"
	"sync"

	stewerrors "github.com/wudi/stew/errors"
)

// VisitResult is returned by a visitor callback passed to Visit/IsDerivedFrom.
type VisitResult int

const (
	// Continue tells Visit to keep walking the remaining super-metaclasses.
	Continue VisitResult = iota
	// Abort stops the walk immediately; Visit returns Abort to its caller.
	Abort
)

// Instance is implemented by whatever a concrete MetaClass creates. It lets
// this package hand back newly created objects without importing the
// object package (which itself imports metaclass for *MetaClass pointers),
// avoiding an import cycle.
type Instance interface {
	SetMetaClass(*MetaClass)
}

// Creator builds a new Instance named instanceName. Concrete metaclasses
// supply one via WithCreator; abstract metaclasses leave it nil.
type Creator func(instanceName string) (Instance, error)

// MetaClass is an immutable-after-seal descriptor: a meta-name,
// sealed/abstract/extension flags, an ordered super list, and a
// name->extension-metaclass map. A metaclass body runs a sequence of
// registrars (Option values) at construction; when construction completes,
// Seal() runs automatically.
type MetaClass struct {
	mu         sync.RWMutex
	name       string
	sealed     bool
	abstract   bool
	extension  bool
	supers     []*MetaClass
	extensions map[string]*MetaClass
	creator    Creator
}

// Option configures a MetaClass during New, before it is sealed.
type Option func(*MetaClass) error

// New constructs and seals a MetaClass. Options run in order; if any
// returns an error, New returns that error instead of a partially built
// metaclass.
func New(name string, opts ...Option) (*MetaClass, error) {
	if !IsValidMetaName(name) {
		return nil, stewerrors.New(stewerrors.ErrInvalidMetaName, "metaclass.New", name)
	}
	mc := &MetaClass{
		name:       name,
		extensions: make(map[string]*MetaClass),
	}
	for _, opt := range opts {
		if err := opt(mc); err != nil {
			return nil, err
		}
	}
	mc.sealed = true
	return mc, nil
}

// WithAbstract marks the metaclass abstract: Create always fails.
func WithAbstract() Option {
	return func(mc *MetaClass) error {
		mc.abstract = true
		return nil
	}
}

// WithExtensionFlag marks the metaclass as describing an object extension
// type, the flag addMetaExtension checks on every candidate.
func WithExtensionFlag() Option {
	return func(mc *MetaClass) error {
		mc.extension = true
		return nil
	}
}

// WithSuper adds super to the metaclass's ordered super list. Multiple
// inheritance is modeled exactly this way: a vector of super-metaclass
// pointers walked by Visit.
func WithSuper(super *MetaClass) Option {
	return func(mc *MetaClass) error {
		if super == nil {
			return stewerrors.New(stewerrors.ErrMetaClassNotFound, "metaclass.WithSuper", "nil super")
		}
		mc.supers = append(mc.supers, super)
		return nil
	}
}

// WithCreator supplies the factory function used by Create.
func WithCreator(c Creator) Option {
	return func(mc *MetaClass) error {
		mc.creator = c
		return nil
	}
}

// WithMetaExtension calls AddExtension(ext) as part of construction, before
// the metaclass seals.
func WithMetaExtension(ext *MetaClass) Option {
	return func(mc *MetaClass) error {
		return mc.addExtensionLocked(ext)
	}
}

// Name returns the metaclass's meta-name.
func (mc *MetaClass) Name() string { return mc.name }

// IsSealed reports whether further AddExtension calls will fail.
func (mc *MetaClass) IsSealed() bool {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.sealed
}

// IsAbstract reports whether Create always fails for this metaclass.
func (mc *MetaClass) IsAbstract() bool {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.abstract
}

// IsExtension reports whether this metaclass describes an object extension
// type (a prerequisite for being added as another metaclass's extension).
func (mc *MetaClass) IsExtension() bool {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.extension
}

// Supers returns a copy of the ordered super-metaclass list.
func (mc *MetaClass) Supers() []*MetaClass {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	out := make([]*MetaClass, len(mc.supers))
	copy(out, mc.supers)
	return out
}

// Visit visits self, then recurses into each super in order, calling fn at
// every node. It stops and returns Abort the moment fn returns Abort.
func (mc *MetaClass) Visit(fn func(*MetaClass) VisitResult) VisitResult {
	if fn(mc) == Abort {
		return Abort
	}
	for _, super := range mc.Supers() {
		if super.Visit(fn) == Abort {
			return Abort
		}
	}
	return Continue
}

// IsDerivedFrom reports whether a visit starting at mc reaches other.
func (mc *MetaClass) IsDerivedFrom(other *MetaClass) bool {
	if other == nil {
		return false
	}
	found := false
	mc.Visit(func(node *MetaClass) VisitResult {
		if node == other {
			found = true
			return Abort
		}
		return Continue
	})
	return found
}

// AddExtension adds ext as an extension metaclass of mc. It fails when mc
// is sealed, ext is nil, ext.IsExtension() is false, or an extension with
// ext's name already exists anywhere in mc's metaclass-plus-super chain.
func (mc *MetaClass) AddExtension(ext *MetaClass) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.addExtensionLocked(ext)
}

func (mc *MetaClass) addExtensionLocked(ext *MetaClass) error {
	if mc.sealed {
		return stewerrors.New(stewerrors.ErrMetaClassSealed, "MetaClass.AddExtension", mc.name)
	}
	if ext == nil {
		return stewerrors.New(stewerrors.ErrExtensionNotExtension, "MetaClass.AddExtension", "nil candidate")
	}
	if !ext.IsExtension() {
		return stewerrors.New(stewerrors.ErrExtensionNotExtension, "MetaClass.AddExtension", ext.name)
	}
	if _, exists := mc.findExtensionLocked(ext.name); exists {
		return stewerrors.New(stewerrors.ErrDuplicateExtension, "MetaClass.AddExtension", ext.name)
	}
	mc.extensions[ext.name] = ext
	return nil
}

// FindExtension searches mc then its supers (in Visit order) for an
// extension metaclass registered under name, returning the first match.
func (mc *MetaClass) FindExtension(name string) (*MetaClass, bool) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.findExtensionLocked(name)
}

func (mc *MetaClass) findExtensionLocked(name string) (*MetaClass, bool) {
	if ext, ok := mc.extensions[name]; ok {
		return ext, true
	}
	for _, super := range mc.supers {
		if ext, ok := super.FindExtension(name); ok {
			return ext, true
		}
	}
	return nil, false
}

// Extensions returns a shallow copy of mc's own extension-metaclass set
// (not including supers' extensions).
func (mc *MetaClass) Extensions() map[string]*MetaClass {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	out := make(map[string]*MetaClass, len(mc.extensions))
	for k, v := range mc.extensions {
		out[k] = v
	}
	return out
}

// AllExtensions walks the full inheritance chain leaves-up (supers first,
// depth-first in super order, then mc's own extensions), skipping names
// already seen, producing the order the factory uses to finalize an
// instance.
func (mc *MetaClass) AllExtensions() []*MetaClass {
	seen := make(map[string]bool)
	var out []*MetaClass
	var walk func(*MetaClass)
	walk = func(node *MetaClass) {
		for _, super := range node.Supers() {
			walk(super)
		}
		for name, ext := range node.Extensions() {
			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, ext)
		}
	}
	walk(mc)
	return out
}

// Create instantiates a new Instance named instanceName, failing when mc
// is abstract or has no creator.
func (mc *MetaClass) Create(instanceName string) (Instance, error) {
	if mc.IsAbstract() {
		return nil, stewerrors.New(stewerrors.ErrAbstractMetaClass, "MetaClass.Create", mc.name)
	}
	if mc.creator == nil {
		return nil, stewerrors.New(stewerrors.ErrAbstractMetaClass, "MetaClass.Create", fmt.Sprintf("%s has no creator", mc.name))
	}
	instance, err := mc.creator(instanceName)
	if err != nil {
		return nil, err
	}
	instance.SetMetaClass(mc)
	return instance, nil
}

// Reopen un-seals mc so AddExtension can run again. Production code should
// not call this; it exists for tests that exercise runtime metaclass
// extension.
func (mc *MetaClass) Reopen() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.sealed = false
}

// Seal reseals mc after a Reopen window closes.
func (mc *MetaClass) Seal() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.sealed = true
}
