// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package render

import (
	"testing"

	"github.com/galvanized-forge/ember/math/lin"
)

func TestMesh3DDrawModelIssuesOneDrawCallPerMesh(t *testing.T) {
	fb := newFakeBackend()
	m := NewMesh3D(fb)
	vp := lin.NewM4I()
	m.BeginScene(0, vp, lin.V3{}, lin.V3{X: 1, Y: 2, Z: 3}, [3]float32{1, 1, 1}, 32)

	model := lin.NewM4I()
	normal := lin.NewM3I()
	white := [4]float32{1, 1, 1, 1}
	if err := m.DrawModel(1, 36, model, normal, white, true, 7, 42); err != nil {
		t.Fatalf("DrawModel: %v", err)
	}
	if err := m.DrawModel(1, 36, model, normal, white, true, 7, 43); err != nil {
		t.Fatalf("DrawModel: %v", err)
	}
	m.EndScene()

	if len(fb.indexDraws) != 2 {
		t.Fatalf("expected one draw_indexed call per DrawModel, got %d", len(fb.indexDraws))
	}
	if fb.indexDraws[0] != 36 || fb.indexDraws[1] != 36 {
		t.Fatalf("expected indexCount 36 per call, got %v", fb.indexDraws)
	}
	if len(fb.boundTextures) != 2 || fb.boundTextures[0] != 7 {
		t.Fatalf("expected texture 7 bound for each draw, got %v", fb.boundTextures)
	}
}

func TestMesh3DDrawModelOutsideSceneFails(t *testing.T) {
	fb := newFakeBackend()
	m := NewMesh3D(fb)
	model := lin.NewM4I()
	normal := lin.NewM3I()
	if err := m.DrawModel(1, 36, model, normal, [4]float32{1, 1, 1, 1}, true, 7, 0); err == nil {
		t.Fatalf("expected an error drawing a model before begin_scene")
	}
}

func TestResolveTexturePrecedence(t *testing.T) {
	white := TextureHandle(1)
	own := TextureHandle(2)
	override := TextureHandle(3)

	if got := ResolveTexture(override, own, white); got != override {
		t.Fatalf("expected override to win, got %v", got)
	}
	if got := ResolveTexture(0, own, white); got != own {
		t.Fatalf("expected mesh's own texture when no override, got %v", got)
	}
	if got := ResolveTexture(0, 0, white); got != white {
		t.Fatalf("expected default white when neither override nor own set, got %v", got)
	}
}
