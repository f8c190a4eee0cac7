// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package ember

import "log/slog"

// SceneState is a Scene's edit/play lifecycle state.
type SceneState int

const (
	Edit SceneState = iota
	Play
)

// Scene binds one World to one Scheduler and carries the edit/play
// lifecycle and viewport size. Scene, like World, is never a process
// singleton: a process may construct as many as it needs.
type Scene struct {
	world     *World
	scheduler *Scheduler
	state     SceneState

	viewportW, viewportH int
	editorCamera         *Camera

	log *slog.Logger
}

// NewScene constructs a Scene with a fresh World and Scheduler bound
// together, and wires entity-creation notifications from the World to the
// Scheduler.
func NewScene() *Scene {
	w := NewWorld()
	sched := NewScheduler(w)
	w.SetOnEntityCreated(sched.onEntityCreated)
	s := &Scene{
		world:     w,
		scheduler: sched,
		state:     Edit,
		log:       slog.Default().With("component", "scene"),
	}
	return s
}

// World returns the scene's World.
func (s *Scene) World() *World { return s.world }

// Scheduler returns the scene's Scheduler.
func (s *Scene) Scheduler() *Scheduler { return s.scheduler }

// State returns the scene's current edit/play state.
func (s *Scene) State() SceneState { return s.state }

// fallbackCameraSetter is implemented by rendering systems that fall back
// to an explicit camera when no primary camera exists (§4.D, 2D only).
type fallbackCameraSetter interface {
	SetFallbackCamera(cam *Camera)
}

// SetEditorCamera installs the camera used for rendering while the scene
// is in Edit state, and as the 2D-rendering fallback at runtime when no
// primary camera exists (§4.D). It immediately propagates to every
// already-registered system that supports a fallback camera; a system
// registered afterward picks up the current editor camera the next time
// SetEditorCamera is called.
func (s *Scene) SetEditorCamera(c *Camera) {
	s.editorCamera = c
	for _, sys := range s.scheduler.Systems() {
		if setter, ok := sys.(fallbackCameraSetter); ok {
			setter.SetFallbackCamera(c)
		}
	}
}

// EditorCamera returns the camera installed via SetEditorCamera.
func (s *Scene) EditorCamera() *Camera { return s.editorCamera }

// CreateEntity delegates to the World.
func (s *Scene) CreateEntity(name string) Entity {
	return s.world.CreateEntity(name)
}

// DuplicateEntity creates a new entity with a fresh id, cloning every
// component on src via the component registry (§4.B). Only src's own
// components are cloned; this core has no parent-child graph.
func (s *Scene) DuplicateEntity(src Entity) (Entity, error) {
	name := s.world.Name(src)
	return DuplicateEntity(s.world, src, name)
}

// OnRuntimeStart transitions the scene to Play and initializes the
// scheduler. Any physics/audio bootstrapping is the responsibility of the
// built-in systems, not the scene itself.
func (s *Scene) OnRuntimeStart() error {
	s.state = Play
	return s.scheduler.Initialize()
}

// OnRuntimeStop shuts down per-scene (non-shared) systems and returns the
// scene to Edit state. The world is left intact for a subsequent restart.
func (s *Scene) OnRuntimeStop() error {
	err := s.scheduler.Shutdown()
	s.state = Edit
	return err
}

// OnUpdateEdit pumps only the registered rendering systems that implement
// EditRenderSystem (§4.D), passing editorCamera as the active camera and
// bypassing primary-camera discovery entirely. Physics, animation, and
// audio are never pumped here; they only run under OnUpdateRuntime.
func (s *Scene) OnUpdateEdit(dt float64) error {
	if s.state != Edit {
		return nil
	}
	return s.scheduler.UpdateEditRenderSystems(s.editorCamera)
}

// OnUpdateRuntime ticks the scheduler while the scene is in Play. The
// rendering systems look up the primary camera themselves.
func (s *Scene) OnUpdateRuntime(dt float64) error {
	if s.state != Play {
		return nil
	}
	return s.scheduler.Update(dt)
}

// OnViewportResize updates the viewport size and propagates it to every
// camera that does not have a fixed aspect ratio.
func (s *Scene) OnViewportResize(w, h int) {
	s.viewportW, s.viewportH = w, h
	for _, cam := range View[*Camera](s.world) {
		cam.SetViewportSize(w, h)
	}
}

// ViewportSize returns the scene's current viewport in pixels.
func (s *Scene) ViewportSize() (int, int) { return s.viewportW, s.viewportH }

// PrimaryCamera returns the first camera marked primary, in registration
// order, or nil if none exists. 2D rendering falls back to the editor
// camera when this returns nil; 3D rendering is skipped for the frame.
func (s *Scene) PrimaryCamera() *Camera {
	for _, cam := range View[*Camera](s.world) {
		if cam.IsPrimary() {
			return cam
		}
	}
	return nil
}
