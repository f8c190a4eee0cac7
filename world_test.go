// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package ember

import (
	"errors"
	"testing"
)

type Position struct{ X, Y, Z float64 }

func TestWorldBasics(t *testing.T) {
	w := NewWorld()
	e1 := w.CreateEntity("Alpha")
	e2 := w.CreateEntity("Beta")

	if err := AddComponent(w, e1, Position{10, 20, 0}); err != nil {
		t.Fatalf("AddComponent: %v", err)
	}

	var got []Entity
	var pos []Position
	for e, p := range View[Position](w) {
		got = append(got, e)
		pos = append(pos, p)
	}
	if len(got) != 1 || got[0] != e1 || pos[0] != (Position{10, 20, 0}) {
		t.Fatalf("view after add: got entities=%v positions=%v", got, pos)
	}

	if ok := w.DestroyEntity(e1); !ok {
		t.Fatalf("DestroyEntity(e1) returned false")
	}

	var afterDestroy []Entity
	for e := range View[Position](w) {
		afterDestroy = append(afterDestroy, e)
	}
	if len(afterDestroy) != 0 {
		t.Fatalf("view after destroy: got %v, want empty", afterDestroy)
	}

	if e2 == e1 {
		t.Fatalf("entity ids must be unique: e1=%d e2=%d", e1, e2)
	}
}

func TestAddComponentDuplicateFails(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity("E")
	if err := AddComponent(w, e, Position{}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	err := AddComponent(w, e, Position{1, 2, 3})
	var werr *WorldError
	if !errors.As(err, &werr) || werr.Kind != DuplicateComponent {
		t.Fatalf("expected DuplicateComponent, got %v", err)
	}
}

func TestGetComponentMissingFails(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity("E")
	_, err := GetComponent[Position](w, e)
	var werr *WorldError
	if !errors.As(err, &werr) || werr.Kind != MissingComponent {
		t.Fatalf("expected MissingComponent, got %v", err)
	}
}

func TestTryGetComponent(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity("E")
	if _, ok := TryGetComponent[Position](w, e); ok {
		t.Fatalf("expected not ok before add")
	}
	_ = AddComponent(w, e, Position{1, 1, 1})
	p, ok := TryGetComponent[Position](w, e)
	if !ok || p != (Position{1, 1, 1}) {
		t.Fatalf("got (%v, %v), want ({1 1 1}, true)", p, ok)
	}
}

func TestRemoveComponent(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity("E")
	_ = AddComponent(w, e, Position{})
	if err := RemoveComponent[Position](w, e); err != nil {
		t.Fatalf("RemoveComponent: %v", err)
	}
	if _, ok := TryGetComponent[Position](w, e); ok {
		t.Fatalf("component still present after remove")
	}
}

func TestGroup(t *testing.T) {
	type Velocity struct{ DX, DY float64 }
	w := NewWorld()
	e1 := w.CreateEntity("has-both")
	e2 := w.CreateEntity("position-only")
	_ = AddComponent(w, e1, Position{})
	_ = AddComponent(w, e1, Velocity{})
	_ = AddComponent(w, e2, Position{})

	posType := typeOf[Position]()
	velType := typeOf[Velocity]()
	group := Group(w, posType, velType)
	if len(group) != 1 || group[0] != e1 {
		t.Fatalf("Group(Position, Velocity) got %v, want [%d]", group, e1)
	}
}

func TestDuplicateEntityClonesComponents(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity("Original")
	_ = AddComponent(w, e, Position{1, 2, 3})

	dup, err := DuplicateEntity(w, e, "Clone")
	if err != nil {
		t.Fatalf("DuplicateEntity: %v", err)
	}
	if dup == e {
		t.Fatalf("duplicate must have a fresh id")
	}
	p, err := GetComponent[Position](w, dup)
	if err != nil || p != (Position{1, 2, 3}) {
		t.Fatalf("duplicate's component got (%v, %v), want ({1 2 3}, nil)", p, err)
	}
}
