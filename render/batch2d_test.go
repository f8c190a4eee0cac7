// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package render

import (
	"testing"

	"github.com/galvanized-forge/ember/math/lin"
)

func newTestBatch(t *testing.T) (*Batch2D, *fakeBackend, *Resources) {
	t.Helper()
	fb := newFakeBackend()
	res, err := NewResources(fb)
	if err != nil {
		t.Fatalf("NewResources: %v", err)
	}
	b, err := NewBatch2D(fb, res)
	if err != nil {
		t.Fatalf("NewBatch2D: %v", err)
	}
	return b, fb, res
}

func TestBatchFlushAtQuadCap(t *testing.T) {
	b, fb, res := newTestBatch(t)
	vp := lin.NewM4I()
	b.BeginScene(0, vp)

	tex := res.WhiteTexture()
	for i := 0; i < MaxQuads+1; i++ {
		if err := b.DrawQuad(lin.V3{}, lin.V2{X: 1, Y: 1}, 0, [4]float32{1, 1, 1, 1}, tex, int32(i)); err != nil {
			t.Fatalf("DrawQuad %d: %v", i, err)
		}
	}
	if err := b.EndScene(); err != nil {
		t.Fatalf("EndScene: %v", err)
	}

	if len(fb.indexDraws) != 2 {
		t.Fatalf("expected exactly 2 draw_indexed calls, got %d (%v)", len(fb.indexDraws), fb.indexDraws)
	}
	if fb.indexDraws[0] != MaxQuads*6 {
		t.Fatalf("first draw indexCount got %d, want %d", fb.indexDraws[0], MaxQuads*6)
	}
	if fb.indexDraws[1] != 6 {
		t.Fatalf("second draw indexCount got %d, want 6", fb.indexDraws[1])
	}
}

func TestBatchFlushOnTextureSlotExhaustion(t *testing.T) {
	b, fb, res := newTestBatch(t)
	vp := lin.NewM4I()
	b.BeginScene(0, vp)

	textures := make([]TextureHandle, 17)
	for i := range textures {
		tex, err := res.TextureFromDimensions(1, 1, []byte{1, 2, 3, 4})
		if err != nil {
			t.Fatalf("TextureFromDimensions %d: %v", i, err)
		}
		textures[i] = tex
	}

	for i, tex := range textures {
		if err := b.DrawQuad(lin.V3{}, lin.V2{X: 1, Y: 1}, 0, [4]float32{1, 1, 1, 1}, tex, int32(i)); err != nil {
			t.Fatalf("DrawQuad %d: %v", i, err)
		}
	}
	if err := b.EndScene(); err != nil {
		t.Fatalf("EndScene: %v", err)
	}

	if len(fb.indexDraws) != 2 {
		t.Fatalf("expected exactly 2 draw_indexed calls for 17 distinct textures, got %d (%v)", len(fb.indexDraws), fb.indexDraws)
	}
	// Slot 0 is reserved for the white texture, so only MaxTextureSlots-1
	// slots are available for these (non-white) textures before a flush.
	if fb.indexDraws[0] != (MaxTextureSlots-1)*6 {
		t.Fatalf("first draw indexCount got %d, want %d (15 quads of 6 each)", fb.indexDraws[0], (MaxTextureSlots-1)*6)
	}
	if fb.indexDraws[1] != 2*6 {
		t.Fatalf("second draw indexCount got %d, want %d (the remaining 2 quads)", fb.indexDraws[1], 2*6)
	}
}

func TestBatchReusesSlotForRepeatedTexture(t *testing.T) {
	b, fb, res := newTestBatch(t)
	vp := lin.NewM4I()
	b.BeginScene(0, vp)

	tex := res.WhiteTexture()
	for i := 0; i < 5; i++ {
		if err := b.DrawQuad(lin.V3{}, lin.V2{X: 1, Y: 1}, 0, [4]float32{1, 1, 1, 1}, tex, int32(i)); err != nil {
			t.Fatalf("DrawQuad %d: %v", i, err)
		}
	}
	if err := b.EndScene(); err != nil {
		t.Fatalf("EndScene: %v", err)
	}
	if len(fb.indexDraws) != 1 {
		t.Fatalf("expected a single draw call for 5 quads sharing one texture, got %d", len(fb.indexDraws))
	}
	if fb.indexDraws[0] != 5*6 {
		t.Fatalf("indexCount got %d, want %d", fb.indexDraws[0], 5*6)
	}
}

func TestBatchEmptySceneFlushesNothing(t *testing.T) {
	b, fb, _ := newTestBatch(t)
	vp := lin.NewM4I()
	b.BeginScene(0, vp)
	if err := b.EndScene(); err != nil {
		t.Fatalf("EndScene: %v", err)
	}
	if len(fb.indexDraws) != 0 {
		t.Fatalf("expected no draw calls for an empty scene, got %d", len(fb.indexDraws))
	}
}

func TestBatchDrawLineAndRect(t *testing.T) {
	b, fb, _ := newTestBatch(t)
	vp := lin.NewM4I()
	b.BeginScene(0, vp)
	b.DrawLine(lin.V3{X: 0, Y: 0}, lin.V3{X: 1, Y: 1}, [4]float32{1, 0, 0, 1})
	b.DrawRect(lin.V3{}, lin.V2{X: 2, Y: 2}, [4]float32{0, 1, 0, 1})
	if err := b.EndScene(); err != nil {
		t.Fatalf("EndScene: %v", err)
	}
	if len(fb.lineDraws) != 1 {
		t.Fatalf("expected a single batched draw_lines call, got %d", len(fb.lineDraws))
	}
	// 1 line (2 verts) + a rect's 4 edges (8 verts) = 10 vertices.
	if fb.lineDraws[0] != 10 {
		t.Fatalf("vertex count got %d, want 10", fb.lineDraws[0])
	}
}

func TestBatchFlushBindsEveryAssignedTextureSlotToItsUnit(t *testing.T) {
	b, fb, res := newTestBatch(t)
	vp := lin.NewM4I()
	b.BeginScene(0, vp)

	tex, err := res.TextureFromDimensions(1, 1, []byte{5, 6, 7, 8})
	if err != nil {
		t.Fatalf("TextureFromDimensions: %v", err)
	}
	if err := b.DrawQuad(lin.V3{}, lin.V2{X: 1, Y: 1}, 0, [4]float32{1, 1, 1, 1}, res.WhiteTexture(), 0); err != nil {
		t.Fatalf("DrawQuad (white): %v", err)
	}
	if err := b.DrawQuad(lin.V3{}, lin.V2{X: 1, Y: 1}, 0, [4]float32{1, 1, 1, 1}, tex, 1); err != nil {
		t.Fatalf("DrawQuad (tex): %v", err)
	}
	if err := b.EndScene(); err != nil {
		t.Fatalf("EndScene: %v", err)
	}

	if len(fb.boundTextures) != 2 {
		t.Fatalf("expected BindTextureUnit called once per assigned slot, got %d (%v)", len(fb.boundTextures), fb.boundTextures)
	}
	if fb.boundTextures[0] != res.WhiteTexture() {
		t.Fatalf("expected unit 0 bound to the white texture, got %v", fb.boundTextures[0])
	}
	if fb.boundTextures[1] != tex {
		t.Fatalf("expected unit 1 bound to the second texture, got %v", fb.boundTextures[1])
	}
}

func TestBatchReservesSlotZeroForWhiteTexture(t *testing.T) {
	b, _, res := newTestBatch(t)
	vp := lin.NewM4I()
	b.BeginScene(0, vp)

	slot, ok := b.textureSlot(res.WhiteTexture())
	if !ok || slot != 0 {
		t.Fatalf("expected the white texture to occupy slot 0, got slot %d ok=%v", slot, ok)
	}

	tex, err := res.TextureFromDimensions(1, 1, []byte{9, 9, 9, 9})
	if err != nil {
		t.Fatalf("TextureFromDimensions: %v", err)
	}
	slot, ok = b.textureSlot(tex)
	if !ok || slot != 1 {
		t.Fatalf("expected the first on-demand texture to occupy slot 1, got slot %d ok=%v", slot, ok)
	}
}

func TestDrawQuadOutsideSceneFails(t *testing.T) {
	b, _, res := newTestBatch(t)
	if err := b.DrawQuad(lin.V3{}, lin.V2{X: 1, Y: 1}, 0, [4]float32{1, 1, 1, 1}, res.WhiteTexture(), 0); err == nil {
		t.Fatalf("expected an error drawing a quad before begin_scene")
	}
}
