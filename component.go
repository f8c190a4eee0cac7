// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package ember

import (
	"iter"
	"reflect"
)

// cloners is the process-wide table from component type to a clone
// function (§4.B). It is intentionally the one piece of package state that
// is process-global: clone behavior is a property of a component *kind*,
// not of any one World, so sharing it across worlds is correct rather than
// a singleton smell.
var cloners = make(map[reflect.Type]func(any) (any, error))

// RegisterCloner installs a deep-clone function for component type T. Types
// without a registered cloner fall back to a shallow field-wise copy;
// register a cloner for any type that owns a handle or other resource a
// shallow copy would alias.
func RegisterCloner[T any](fn func(T) T) {
	var zero T
	t := reflect.TypeOf(zero)
	cloners[t] = func(v any) (any, error) {
		return fn(v.(T)), nil
	}
}

// MarkUnclonable installs a cloner for T that always fails with
// UnclonableComponent, for component kinds that own a GPU or OS handle and
// must never be silently aliased by duplicate_entity.
func MarkUnclonable[T any]() {
	var zero T
	t := reflect.TypeOf(zero)
	cloners[t] = func(any) (any, error) {
		return nil, &WorldError{Kind: UnclonableComponent, Type: t.String()}
	}
}

// typeOf returns the reflect.Type for T, for callers building a Group
// query from a list of component types.
func typeOf[T any]() reflect.Type {
	var zero T
	return reflect.TypeOf(zero)
}

func cloneValue(t reflect.Type, v any) (any, error) {
	if fn, ok := cloners[t]; ok {
		return fn(v)
	}
	// Shallow field-wise copy: valid for plain data records (the common
	// case); struct assignment already does this in Go.
	rv := reflect.ValueOf(v)
	out := reflect.New(rv.Type()).Elem()
	out.Set(rv)
	return out.Interface(), nil
}

// AddComponent attaches a component of type T to e. It fails with
// DuplicateComponent if e already holds one.
func AddComponent[T any](w *World, e Entity, c T) error {
	w.mu.Lock()
	if !w.alive[e] {
		w.mu.Unlock()
		return &WorldError{Kind: EntityNotFound, Entity: e}
	}
	t := reflect.TypeOf(c)
	store := w.storeFor(t)
	if _, exists := store.get(e); exists {
		w.mu.Unlock()
		return &WorldError{Kind: DuplicateComponent, Entity: e, Type: t.String()}
	}
	store.set(e, c)
	w.addedQueue = append(w.addedQueue, ComponentAddedEvent{Entity: e, Type: t})
	w.mu.Unlock()
	return nil
}

// AddDefaultComponent attaches a zero-valued component of type T to e.
func AddDefaultComponent[T any](w *World, e Entity) error {
	var zero T
	return AddComponent(w, e, zero)
}

// GetComponent returns e's component of type T, failing with
// MissingComponent if e does not have one.
func GetComponent[T any](w *World, e Entity) (T, error) {
	var zero T
	w.mu.Lock()
	defer w.mu.Unlock()
	t := reflect.TypeOf(zero)
	store, ok := w.stores[t]
	if !ok {
		return zero, &WorldError{Kind: MissingComponent, Entity: e, Type: t.String()}
	}
	v, ok := store.get(e)
	if !ok {
		return zero, &WorldError{Kind: MissingComponent, Entity: e, Type: t.String()}
	}
	return v.(T), nil
}

// TryGetComponent returns e's component of type T and true, or the zero
// value and false if e does not have one.
func TryGetComponent[T any](w *World, e Entity) (T, bool) {
	var zero T
	w.mu.Lock()
	defer w.mu.Unlock()
	t := reflect.TypeOf(zero)
	store, ok := w.stores[t]
	if !ok {
		return zero, false
	}
	v, ok := store.get(e)
	if !ok {
		return zero, false
	}
	return v.(T), true
}

// SetComponent overwrites e's existing component of type T in place. It
// fails with MissingComponent if e does not already hold one — systems use
// this to write back results (e.g. physics transforms), never to create.
func SetComponent[T any](w *World, e Entity, c T) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	t := reflect.TypeOf(c)
	store, ok := w.stores[t]
	if !ok {
		return &WorldError{Kind: MissingComponent, Entity: e, Type: t.String()}
	}
	if _, exists := store.get(e); !exists {
		return &WorldError{Kind: MissingComponent, Entity: e, Type: t.String()}
	}
	store.set(e, c)
	return nil
}

// RemoveComponent detaches e's component of type T. It fails with
// MissingComponent if e does not hold one.
func RemoveComponent[T any](w *World, e Entity) error {
	var zero T
	w.mu.Lock()
	defer w.mu.Unlock()
	t := reflect.TypeOf(zero)
	store, ok := w.stores[t]
	if !ok || !store.remove(e) {
		return &WorldError{Kind: MissingComponent, Entity: e, Type: t.String()}
	}
	return nil
}

// View returns a lazy sequence of every entity holding a component of type
// T together with that component, in entity-registration order. The
// sequence is produced from a snapshot taken at the moment View is called;
// mutation that happens during iteration is not observed until the next
// call to View.
func View[T any](w *World) iter.Seq2[Entity, T] {
	var zero T
	t := reflect.TypeOf(zero)

	w.mu.Lock()
	order := append([]Entity(nil), w.order...)
	store, ok := w.stores[t]
	var snapshot map[Entity]T
	if ok {
		snapshot = make(map[Entity]T, len(store.entities))
		for ent, idx := range store.byEntity {
			snapshot[ent] = store.values[idx].(T)
		}
	}
	w.mu.Unlock()

	return func(yield func(Entity, T) bool) {
		for _, e := range order {
			v, ok := snapshot[e]
			if !ok {
				continue
			}
			if !yield(e, v) {
				return
			}
		}
	}
}

// Group returns every entity holding all of the given component types, in
// registration order.
func Group(w *World, types ...reflect.Type) []Entity {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Entity, 0, len(w.order))
	for _, e := range w.order {
		all := true
		for _, t := range types {
			store, ok := w.stores[t]
			if !ok {
				all = false
				break
			}
			if _, ok := store.get(e); !ok {
				all = false
				break
			}
		}
		if all {
			out = append(out, e)
		}
	}
	return out
}

// DuplicateEntity creates a new entity with a fresh id and clones of every
// component on src, using each type's registered cloner (or a shallow copy
// if none is registered). It does not copy any parent-child relationship;
// this core has none.
func DuplicateEntity(w *World, src Entity, name string) (Entity, error) {
	w.mu.Lock()
	if !w.alive[src] {
		w.mu.Unlock()
		return 0, &WorldError{Kind: EntityNotFound, Entity: src}
	}
	type pending struct {
		t reflect.Type
		v any
	}
	var clones []pending
	for t, store := range w.stores {
		v, ok := store.get(src)
		if !ok {
			continue
		}
		cloned, err := cloneValue(t, v)
		if err != nil {
			w.mu.Unlock()
			return 0, err
		}
		clones = append(clones, pending{t, cloned})
	}
	w.mu.Unlock()

	dst := w.CreateEntity(name)
	w.mu.Lock()
	for _, c := range clones {
		store := w.storeFor(c.t)
		store.set(dst, c.v)
		w.addedQueue = append(w.addedQueue, ComponentAddedEvent{Entity: dst, Type: c.t})
	}
	w.mu.Unlock()
	return dst, nil
}
