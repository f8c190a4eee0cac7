// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package ember

import (
	"log/slog"
	"sort"
)

// System is one unit of per-frame behavior registered with a Scheduler.
// Priority is a 32-bit signed integer; lower runs earlier. Systems with
// equal priority run in registration order.
type System interface {
	Priority() int32
	Init(w *World) error
	Update(w *World, dt float64) error
	Shutdown(w *World) error
}

// Disposer is implemented by per-scene systems that hold releasable
// resources (GPU buffers, file handles). Scheduler.Dispose only calls this
// on non-shared systems; shared systems outlive any one scene.
type Disposer interface {
	Dispose(w *World) error
}

// SchedulerState is the Scheduler's lifecycle state.
type SchedulerState int

const (
	Uninitialized SchedulerState = iota
	Initialized
	Disposed
)

type registration struct {
	system System
	shared bool
	order  int
}

// Scheduler registers, orders, initializes, ticks, and tears down systems
// for one Scene. Shared systems (registered with shared=true) survive
// Scheduler.Shutdown and are only torn down by ShutdownAll, so a single
// long-lived system (e.g. the 2D renderer) can be reused across scenes.
type Scheduler struct {
	world *World
	state SchedulerState

	regs     []*registration
	bySystem map[System]*registration

	log *slog.Logger
}

// NewScheduler constructs a scheduler that will operate on w.
func NewScheduler(w *World) *Scheduler {
	return &Scheduler{
		world:    w,
		bySystem: make(map[System]*registration),
		log:      slog.Default().With("component", "scheduler"),
	}
}

// Register adds system to the scheduler. The same system instance may not
// be registered twice. shared marks whether the system's lifetime spans
// multiple scenes (see Shutdown vs ShutdownAll).
func (s *Scheduler) Register(system System, shared bool) error {
	if _, dup := s.bySystem[system]; dup {
		return &SchedulerError{Kind: DuplicateSystem}
	}
	r := &registration{system: system, shared: shared, order: len(s.regs)}
	s.regs = append(s.regs, r)
	s.bySystem[system] = r
	return nil
}

func (s *Scheduler) sortedAscending() []*registration {
	out := append([]*registration(nil), s.regs...)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].system.Priority(), out[j].system.Priority()
		if pi != pj {
			return pi < pj
		}
		return out[i].order < out[j].order
	})
	return out
}

func (s *Scheduler) sortedDescending() []*registration {
	asc := s.sortedAscending()
	out := make([]*registration, len(asc))
	for i, r := range asc {
		out[len(asc)-1-i] = r
	}
	return out
}

// Initialize invokes every registered system's Init hook in ascending
// priority order. It may only be called once.
func (s *Scheduler) Initialize() error {
	if s.state != Uninitialized {
		return &SchedulerError{Kind: AlreadyInitialized}
	}
	for _, r := range s.sortedAscending() {
		if err := r.system.Init(s.world); err != nil {
			s.log.Error("system init failed", "priority", r.system.Priority(), "err", err)
		}
	}
	s.state = Initialized
	return nil
}

// Update invokes every registered system's per-frame hook in ascending
// priority order. It is forbidden before Initialize.
func (s *Scheduler) Update(dt float64) error {
	if s.state == Uninitialized {
		return &SchedulerError{Kind: NotInitialized}
	}
	for _, r := range s.sortedAscending() {
		if err := r.system.Update(s.world, dt); err != nil {
			s.log.Error("system update failed", "priority", r.system.Priority(), "err", err)
		}
	}
	return nil
}

// Shutdown invokes shutdown hooks in descending priority for all
// non-shared systems; shared systems are left intact.
func (s *Scheduler) Shutdown() error {
	for _, r := range s.sortedDescending() {
		if r.shared {
			continue
		}
		if err := r.system.Shutdown(s.world); err != nil {
			s.log.Error("system shutdown failed", "priority", r.system.Priority(), "err", err)
		}
	}
	return nil
}

// ShutdownAll invokes shutdown hooks in descending priority for every
// system, shared or not. Intended for process exit.
func (s *Scheduler) ShutdownAll() error {
	for _, r := range s.sortedDescending() {
		if err := r.system.Shutdown(s.world); err != nil {
			s.log.Error("system shutdown failed", "priority", r.system.Priority(), "err", err)
		}
	}
	return nil
}

// Dispose releases resources held by non-shared systems that implement
// Disposer. Shared systems are never disposed here.
func (s *Scheduler) Dispose() error {
	for _, r := range s.sortedDescending() {
		if r.shared {
			continue
		}
		d, ok := r.system.(Disposer)
		if !ok {
			continue
		}
		if err := d.Dispose(s.world); err != nil {
			s.log.Error("system dispose failed", "priority", r.system.Priority(), "err", err)
		}
	}
	s.state = Disposed
	return nil
}

// State returns the scheduler's current lifecycle state.
func (s *Scheduler) State() SchedulerState { return s.state }

// Systems returns every registered system, in registration order.
func (s *Scheduler) Systems() []System {
	out := make([]System, len(s.regs))
	for i, r := range s.regs {
		out[i] = r.system
	}
	return out
}

// onEntityCreated logs a newly created entity. World.SetOnEntityCreated is
// wired to this by NewScene, so a scheduler's systems at least see entity
// creation traced even though none currently subscribe to it directly.
func (s *Scheduler) onEntityCreated(e Entity) {
	s.log.Debug("entity created", "entity", e)
}

// UpdateEditRenderSystems pumps only the registered systems implementing
// EditRenderSystem, in ascending priority order, against editorCamera. It
// bypasses primary-camera discovery and the scheduler's Initialized/Play
// state entirely, since a Scene in Edit state calls this before the
// scheduler is ever initialized.
func (s *Scheduler) UpdateEditRenderSystems(editorCamera *Camera) error {
	for _, r := range s.sortedAscending() {
		edit, ok := r.system.(EditRenderSystem)
		if !ok {
			continue
		}
		if err := edit.UpdateEdit(s.world, editorCamera); err != nil {
			s.log.Error("edit render system update failed", "priority", r.system.Priority(), "err", err)
		}
	}
	return nil
}
