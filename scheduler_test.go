// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package ember

import (
	"errors"
	"testing"
)

type recordingSystem struct {
	priority int32
	label    string
	record   *[]string
}

func (s *recordingSystem) Priority() int32 { return s.priority }
func (s *recordingSystem) Init(w *World) error {
	*s.record = append(*s.record, "init:"+s.label)
	return nil
}
func (s *recordingSystem) Update(w *World, dt float64) error {
	*s.record = append(*s.record, "update:"+s.label)
	return nil
}
func (s *recordingSystem) Shutdown(w *World) error {
	*s.record = append(*s.record, "shutdown:"+s.label)
	return nil
}

func TestSchedulerPriorityOrdering(t *testing.T) {
	w := NewWorld()
	sched := NewScheduler(w)
	var record []string

	sysC := &recordingSystem{priority: 3, label: "3", record: &record}
	sysA := &recordingSystem{priority: 1, label: "1", record: &record}
	sysB := &recordingSystem{priority: 2, label: "2", record: &record}

	for _, s := range []*recordingSystem{sysC, sysA, sysB} {
		if err := sched.Register(s, false); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}

	if err := sched.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := sched.Update(1.0 / 60); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := sched.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	want := []string{
		"init:1", "init:2", "init:3",
		"update:1", "update:2", "update:3",
		"shutdown:3", "shutdown:2", "shutdown:1",
	}
	if len(record) != len(want) {
		t.Fatalf("got %v, want %v", record, want)
	}
	for i := range want {
		if record[i] != want[i] {
			t.Fatalf("got %v, want %v", record, want)
		}
	}
}

func TestSchedulerRegisterTwiceFails(t *testing.T) {
	w := NewWorld()
	sched := NewScheduler(w)
	var record []string
	s := &recordingSystem{priority: 1, record: &record}
	if err := sched.Register(s, false); err != nil {
		t.Fatalf("first register: %v", err)
	}
	err := sched.Register(s, false)
	var serr *SchedulerError
	if !errors.As(err, &serr) || serr.Kind != DuplicateSystem {
		t.Fatalf("expected DuplicateSystem, got %v", err)
	}
}

func TestSchedulerUpdateBeforeInitializeFails(t *testing.T) {
	w := NewWorld()
	sched := NewScheduler(w)
	err := sched.Update(0.016)
	var serr *SchedulerError
	if !errors.As(err, &serr) || serr.Kind != NotInitialized {
		t.Fatalf("expected NotInitialized, got %v", err)
	}
}

func TestSchedulerInitializeTwiceFails(t *testing.T) {
	w := NewWorld()
	sched := NewScheduler(w)
	if err := sched.Initialize(); err != nil {
		t.Fatalf("first initialize: %v", err)
	}
	err := sched.Initialize()
	var serr *SchedulerError
	if !errors.As(err, &serr) || serr.Kind != AlreadyInitialized {
		t.Fatalf("expected AlreadyInitialized, got %v", err)
	}
}

type disposingSystem struct {
	recordingSystem
	disposed *bool
}

func (d *disposingSystem) Dispose(w *World) error {
	*d.disposed = true
	return nil
}

func TestSchedulerDisposeSkipsSharedSystems(t *testing.T) {
	w := NewWorld()
	sched := NewScheduler(w)
	var record []string
	var sceneDisposed, sharedDisposed bool

	sceneSystem := &disposingSystem{recordingSystem{priority: 1, record: &record}, &sceneDisposed}
	sharedSystem := &disposingSystem{recordingSystem{priority: 2, record: &record}, &sharedDisposed}

	_ = sched.Register(sceneSystem, false)
	_ = sched.Register(sharedSystem, true)
	_ = sched.Initialize()
	_ = sched.Dispose()

	if !sceneDisposed {
		t.Errorf("per-scene system was not disposed")
	}
	if sharedDisposed {
		t.Errorf("shared system must not be disposed by Dispose")
	}
	if sched.State() != Disposed {
		t.Errorf("scheduler state got %v, want Disposed", sched.State())
	}
}
