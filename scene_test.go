// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package ember

import (
	"testing"

	"github.com/galvanized-forge/ember/render"
)

func TestNewSceneWiresEntityCreatedNotificationToScheduler(t *testing.T) {
	scene := NewScene()
	if scene.world.onEntityCreated == nil {
		t.Fatalf("expected NewScene to wire World.onEntityCreated to the scheduler")
	}
	// Must not panic: CreateEntity invokes the wired notification.
	scene.CreateEntity("probe")
}

func newTestSpriteRenderSystem(t *testing.T) (*SpriteRenderSystem, *fakeRenderBackend) {
	t.Helper()
	fb := &fakeRenderBackend{}
	res, err := render.NewResources(fb)
	if err != nil {
		t.Fatalf("NewResources: %v", err)
	}
	batch, err := render.NewBatch2D(fb, res)
	if err != nil {
		t.Fatalf("NewBatch2D: %v", err)
	}
	return NewSpriteRenderSystem(batch, res, 1), fb
}

func TestSceneSetEditorCameraPropagatesToRegisteredFallbackCameraSetters(t *testing.T) {
	scene := NewScene()
	sys, _ := newTestSpriteRenderSystem(t)
	if err := scene.Scheduler().Register(sys, true); err != nil {
		t.Fatalf("Register: %v", err)
	}

	cam := primaryTestCamera()
	scene.SetEditorCamera(cam)

	if sys.fallbackCamera != cam {
		t.Fatalf("expected SetEditorCamera to propagate to the registered SpriteRenderSystem")
	}
}

func TestSceneOnUpdateEditPumpsOnlyEditRenderSystemsAgainstEditorCamera(t *testing.T) {
	scene := NewScene()
	sys, fb := newTestSpriteRenderSystem(t)
	if err := scene.Scheduler().Register(sys, true); err != nil {
		t.Fatalf("Register: %v", err)
	}
	physics := NewPhysicsSystem(&fakePhysicsWorld{}, 0.02)
	if err := scene.Scheduler().Register(physics, false); err != nil {
		t.Fatalf("Register: %v", err)
	}

	e := scene.CreateEntity("sprite")
	if err := AddComponent(scene.World(), e, NewTransform()); err != nil {
		t.Fatalf("AddComponent(Transform): %v", err)
	}
	if err := AddComponent(scene.World(), e, Sprite{Color: [4]float32{1, 1, 1, 1}}); err != nil {
		t.Fatalf("AddComponent(Sprite): %v", err)
	}

	cam := primaryTestCamera()
	cam.SetPrimary(false)
	scene.SetEditorCamera(cam)

	if err := scene.OnUpdateEdit(0.016); err != nil {
		t.Fatalf("OnUpdateEdit: %v", err)
	}
	if len(fb.indexDraws) == 0 {
		t.Fatalf("expected OnUpdateEdit to draw the sprite against the editor camera")
	}
	if physics.world.(*fakePhysicsWorld).steps != 0 {
		t.Fatalf("expected OnUpdateEdit to never pump PhysicsSystem")
	}
}

func TestSceneOnUpdateEditIsNoOpOutsideEditState(t *testing.T) {
	scene := NewScene()
	sys, fb := newTestSpriteRenderSystem(t)
	if err := scene.Scheduler().Register(sys, true); err != nil {
		t.Fatalf("Register: %v", err)
	}
	scene.SetEditorCamera(primaryTestCamera())

	if err := scene.OnRuntimeStart(); err != nil {
		t.Fatalf("OnRuntimeStart: %v", err)
	}
	if err := scene.OnUpdateEdit(0.016); err != nil {
		t.Fatalf("OnUpdateEdit: %v", err)
	}
	if len(fb.indexDraws) != 0 {
		t.Fatalf("expected OnUpdateEdit to no-op once the scene left Edit state")
	}
}
