// Package container implements a reference-counted guarded sequence — the
// one hot, concurrent structure the core makes heavy use of as
// object.ConnectionContainer. It is a standalone generic utility,
// independent of anything signal-specific, so other hot concurrent
// sequences can reuse it.
package container

import (
	"sync"
	"sync/atomic"
)

// Validatable is implemented by element types so the container can tell a
// "live" element from the invalid sentinel via an explicit method, since Go
// has no operator-bool overload to hook a pointer-like validity check into.
type Validatable interface {
	Valid() bool
}

// Guarded is a reference-counted sequence container. Each container has a
// mutex guarding its slice and an atomic refcount: Retain increments the
// refcount and, on 0->1, snapshots the current length as the guarded
// view's boundary; Release decrements and, on 1->0, compacts by erasing
// every element whose Valid() is false.
type Guarded[T Validatable] struct {
	mu       sync.Mutex
	refCount atomic.Int32
	items    []T
	viewEnd  int // valid only while refCount.Load() > 0
}

// New returns an empty guarded sequence.
func New[T Validatable]() *Guarded[T] {
	return &Guarded[T]{}
}

// Retain increments the refcount, snapshotting the guarded view boundary on
// the 0->1 transition. Elements appended after Retain land beyond the
// snapshot and are therefore never "in view" for that guard's lifetime:
// append always succeeds immediately, but erase of an in-view element is
// deferred until the guard is released.
func (g *Guarded[T]) Retain() int32 {
	n := g.refCount.Add(1)
	if n == 1 {
		g.mu.Lock()
		g.viewEnd = len(g.items)
		g.mu.Unlock()
	}
	return n
}

// Release decrements the refcount, compacting invalid elements out of the
// backing slice on the 1->0 transition.
func (g *Guarded[T]) Release() int32 {
	n := g.refCount.Add(-1)
	if n == 0 {
		g.mu.Lock()
		g.compactLocked()
		g.mu.Unlock()
	}
	return n
}

func (g *Guarded[T]) compactLocked() {
	kept := g.items[:0]
	for _, item := range g.items {
		if item.Valid() {
			kept = append(kept, item)
		}
	}
	g.items = kept
}

// Guarded reports whether the container currently has at least one
// outstanding Retain.
func (g *Guarded[T]) Guarded() bool {
	return g.refCount.Load() > 0
}

// Append adds an element at the end of the container. This always succeeds
// immediately, guarded or not, because the new element's index is beyond
// any outstanding view's boundary.
func (g *Guarded[T]) Append(item T) {
	g.mu.Lock()
	g.items = append(g.items, item)
	g.mu.Unlock()
}

// EffectiveSize returns the number of slots in the backing slice, including
// invalid (nullified) ones.
func (g *Guarded[T]) EffectiveSize() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.items)
}

// Size returns the number of valid elements the container currently holds,
// i.e. the "dense" size callers observe through iteration.
func (g *Guarded[T]) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, item := range g.items {
		if item.Valid() {
			n++
		}
	}
	return n
}

// Snapshot returns a copy of the elements within the currently guarded
// view (or the whole container, if not guarded). SignalExtension.RunOverride calls
// this once per trigger, after Retain, to get the stable index range a
// trigger iterates — elements appended afterwards are excluded, matching
// "connections added during a trigger are not invoked by that trigger".
func (g *Guarded[T]) Snapshot() []T {
	g.mu.Lock()
	defer g.mu.Unlock()
	end := len(g.items)
	if g.refCount.Load() > 0 {
		end = g.viewEnd
	}
	out := make([]T, end)
	copy(out, g.items[:end])
	return out
}

// At returns the live element currently stored at index i within the
// backing slice, so a caller iterating a Snapshot can observe in-place
// nullification performed by Remove during the same guard window: the next
// iteration step skips the null entry.
func (g *Guarded[T]) At(i int) (T, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var zero T
	if i < 0 || i >= len(g.items) {
		return zero, false
	}
	return g.items[i], true
}

// Remove finds the first element matching pred and erases it: while the
// container is guarded and the element falls within the guarded view, it
// is replaced in place with the zero-value sentinel (so existing snapshot
// indices stay valid and observe the null on their next step); otherwise
// it is spliced out immediately.
func (g *Guarded[T]) Remove(pred func(T) bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, item := range g.items {
		if !pred(item) {
			continue
		}
		if g.refCount.Load() > 0 && i < g.viewEnd {
			var zero T
			g.items[i] = zero
		} else {
			g.items = append(g.items[:i], g.items[i+1:]...)
		}
		return true
	}
	return false
}

// Clear empties the container. While guarded, every element is nullified
// in place instead of removed so iterators in flight see a dense-skipping
// empty sequence; once unguarded, it clears outright.
func (g *Guarded[T]) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.refCount.Load() > 0 {
		var zero T
		for i := range g.items {
			g.items[i] = zero
		}
		return
	}
	g.items = nil
}

// Each iterates every valid element, skipping invalid (nullified) slots, so
// callers that don't need guard semantics see the same dense view a
// Snapshot-driven loop would.
func (g *Guarded[T]) Each(fn func(T)) {
	g.mu.Lock()
	items := make([]T, len(g.items))
	copy(items, g.items)
	g.mu.Unlock()
	for _, item := range items {
		if item.Valid() {
			fn(item)
		}
	}
}
