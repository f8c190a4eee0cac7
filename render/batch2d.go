// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package render

import (
	"fmt"
	"math"

	"github.com/galvanized-forge/ember/math/lin"
)

// Batch2D limits (§4.H). MaxQuads bounds one flush's worth of geometry;
// MaxTextureSlots bounds how many distinct textures one draw call can
// sample from, same as the teacher's Packet.TextureIDs bundling several
// texture references into a single Packet but capped by the shader's
// fixed sampler array size.
const (
	MaxQuads        = 10000
	MaxVertices     = MaxQuads * 4
	MaxIndices      = MaxQuads * 6
	MaxTextureSlots = 16
)

// QuadVertex is one corner of a batched quad.
type QuadVertex struct {
	Position lin.V3
	Color    [4]float32
	TexCoord lin.V2
	TexIndex float32
	EntityID int32
}

// Batch2D accumulates quads and lines into CPU-side buffers and flushes
// them to the GPU in as few draw calls as geometry and texture-slot limits
// allow (§4.H). It follows the teacher's Packets reuse-by-resetting
// convention (packet.go's GetPacket) rather than reallocating buffers
// every frame.
type Batch2D struct {
	backend   Backend
	resources *Resources
	shader    ShaderHandle
	va        VertexArrayHandle
	lineVA    VertexArrayHandle

	vertices  []QuadVertex
	quadCount int

	textureSlots [MaxTextureSlots]TextureHandle
	slotCount    int

	lineVertices []QuadVertex
	lineCount    int

	active   bool
	viewProj lin.M4
}

// NewBatch2D allocates a batch renderer bound to backend/resources,
// uploading its index buffer once up front. The index buffer
// content never changes between flushes: each quad's 6 indices are a fixed
// offset pattern into its own 4 vertices.
func NewBatch2D(backend Backend, resources *Resources) (*Batch2D, error) {
	va, err := resources.CreateVertexArray(quadVertexAttributes, MaxIndices)
	if err != nil {
		return nil, err
	}
	lineVA, err := resources.CreateVertexArray(quadVertexAttributes, 0)
	if err != nil {
		return nil, err
	}
	indices := make([]uint32, MaxIndices)
	for q := 0; q < MaxQuads; q++ {
		base := uint32(q * 4)
		i := q * 6
		indices[i+0] = base + 0
		indices[i+1] = base + 1
		indices[i+2] = base + 2
		indices[i+3] = base + 2
		indices[i+4] = base + 3
		indices[i+5] = base + 0
	}
	backend.UploadIndexData(va, indices)

	return &Batch2D{
		backend:      backend,
		resources:    resources,
		va:           va,
		lineVA:       lineVA,
		vertices:     make([]QuadVertex, 0, MaxVertices),
		lineVertices: make([]QuadVertex, 0, 256),
	}, nil
}

// quadVertexStride is the byte width of one QuadVertex as the backend will
// pack it: 3+4+2+1+1 float32 fields.
const quadVertexStride = (3 + 4 + 2 + 1 + 1) * 4

// quadVertexAttributes is QuadVertex's interleaved attribute layout:
// position(3) color(4) texcoord(2) texindex(1) entity-id(1).
var quadVertexAttributes = []int32{3, 4, 2, 1, 1}

// BeginScene starts a new batch for viewProj. Any previous scene must have
// already been ended with EndScene; calling BeginScene resets accumulated
// geometry and the texture-slot cache.
func (b *Batch2D) BeginScene(shader ShaderHandle, viewProj *lin.M4) {
	b.shader = shader
	b.viewProj = *viewProj
	b.vertices = b.vertices[:0]
	b.quadCount = 0
	b.textureSlots[0] = b.resources.WhiteTexture()
	b.slotCount = 1
	b.lineVertices = b.lineVertices[:0]
	b.lineCount = 0
	b.active = true
}

// textureSlot returns the slot index for tex, allocating a new slot if tex
// hasn't been seen yet in the current batch. Slot 0 is reserved for the
// default white texture (seeded by BeginScene), so an untextured/tinted
// draw_quad call always lands on slot 0; on-demand assignment for any
// other texture starts at slot 1. It reports false if the batch has no
// free slot for a genuinely new texture, so the caller can flush and retry
// against a freshly emptied slot cache.
func (b *Batch2D) textureSlot(tex TextureHandle) (int, bool) {
	for i := 0; i < b.slotCount; i++ {
		if b.textureSlots[i] == tex {
			return i, true
		}
	}
	if b.slotCount >= MaxTextureSlots {
		return 0, false
	}
	b.textureSlots[b.slotCount] = tex
	b.slotCount++
	return b.slotCount - 1, true
}

// DrawQuad appends one quad centered at position, sized size, rotated by
// rotation radians about Z, tinted color, sampling tex across its full 0..1
// UV range. It flushes the current batch first if the quad cap or the
// texture-slot cap would otherwise be exceeded (§4.H).
func (b *Batch2D) DrawQuad(position lin.V3, size lin.V2, rotation float64, color [4]float32, tex TextureHandle, entityID int32) error {
	return b.DrawQuadRegion(position, size, rotation, lin.V2{X: 0, Y: 0}, lin.V2{X: 1, Y: 1}, color, tex, entityID)
}

// DrawQuadRegion is DrawQuad with an explicit UV sub-rect, used by the
// sprite-atlas path (a sub_texture component naming a frame's source rect
// within a larger sheet) rather than sampling a texture's full extent.
func (b *Batch2D) DrawQuadRegion(position lin.V3, size lin.V2, rotation float64, uv0, uv1 lin.V2, color [4]float32, tex TextureHandle, entityID int32) error {
	if !b.active {
		return &RendererError{Kind: BackendCallFailed, Log: "draw_quad called outside begin_scene/end_scene"}
	}
	if b.quadCount >= MaxQuads {
		if err := b.Flush(); err != nil {
			return err
		}
	}
	if _, ok := b.textureSlot(tex); !ok {
		if err := b.Flush(); err != nil {
			return err
		}
		b.textureSlot(tex) // guaranteed to fit in a freshly emptied batch
	}
	slot, _ := b.textureSlot(tex)

	hx, hy := size.X/2, size.Y/2
	corners := [4]lin.V2{{X: -hx, Y: -hy}, {X: hx, Y: -hy}, {X: hx, Y: hy}, {X: -hx, Y: hy}}
	uvs := [4]lin.V2{{X: uv0.X, Y: uv0.Y}, {X: uv1.X, Y: uv0.Y}, {X: uv1.X, Y: uv1.Y}, {X: uv0.X, Y: uv1.Y}}

	sin, cos := math.Sincos(rotation)
	for i, c := range corners {
		x := c.X*cos - c.Y*sin + position.X
		y := c.X*sin + c.Y*cos + position.Y
		b.vertices = append(b.vertices, QuadVertex{
			Position: lin.V3{X: x, Y: y, Z: position.Z},
			Color:    color,
			TexCoord: uvs[i],
			TexIndex: float32(slot),
			EntityID: entityID,
		})
	}
	b.quadCount++
	return nil
}

// DrawSprite draws a quad at position, scaled to (scaleX, scaleY) and
// rotated by rotationZ radians, the common path a sprite-rendering system
// uses every frame after reading an entity's Transform and Source texture
// region. It takes plain values rather than an ember.Transform so this
// package stays free of an import cycle back to the root module.
func (b *Batch2D) DrawSprite(position lin.V3, scaleX, scaleY, rotationZ float64, tex TextureHandle, color [4]float32, entityID int32) error {
	return b.DrawQuad(position, lin.V2{X: scaleX, Y: scaleY}, rotationZ, color, tex, entityID)
}

// DrawLine appends a single line segment from p0 to p1. Lines are batched
// separately from quads since they use a different primitive topology and
// draw call (backend.DrawLines), but share the same flush-on-scene-end
// discipline.
func (b *Batch2D) DrawLine(p0, p1 lin.V3, color [4]float32) {
	b.lineVertices = append(b.lineVertices,
		QuadVertex{Position: p0, Color: color},
		QuadVertex{Position: p1, Color: color},
	)
	b.lineCount++
}

// DrawRect draws the four edges of an axis-aligned rectangle centered at
// position with the given size, as four DrawLine calls.
func (b *Batch2D) DrawRect(position lin.V3, size lin.V2, color [4]float32) {
	hx, hy := size.X/2, size.Y/2
	tl := lin.V3{X: position.X - hx, Y: position.Y + hy, Z: position.Z}
	tr := lin.V3{X: position.X + hx, Y: position.Y + hy, Z: position.Z}
	br := lin.V3{X: position.X + hx, Y: position.Y - hy, Z: position.Z}
	bl := lin.V3{X: position.X - hx, Y: position.Y - hy, Z: position.Z}
	b.DrawLine(tl, tr, color)
	b.DrawLine(tr, br, color)
	b.DrawLine(br, bl, color)
	b.DrawLine(bl, tl, color)
}

// Flush uploads accumulated quad geometry and issues one DrawIndexed call,
// then clears the quad buffer and texture-slot cache so the next Flush (or
// EndScene) starts a fresh batch. Flushing an empty batch is a no-op.
func (b *Batch2D) Flush() error {
	if b.quadCount == 0 {
		return nil
	}
	b.backend.UploadVertexData(b.va, packQuadVertices(b.vertices))
	for i := 0; i < b.slotCount; i++ {
		b.backend.BindTextureUnit(i, b.textureSlots[i])
	}
	if err := b.backend.DrawIndexed(b.va, b.quadCount*6); err != nil {
		return &RendererError{Kind: BackendCallFailed, Log: fmt.Sprintf("draw_indexed: %v", err)}
	}
	b.vertices = b.vertices[:0]
	b.quadCount = 0
	b.textureSlots[0] = b.resources.WhiteTexture()
	b.slotCount = 1
	return nil
}

// flushLines uploads and draws the accumulated line segments, clearing the
// line buffer.
func (b *Batch2D) flushLines() error {
	if b.lineCount == 0 {
		return nil
	}
	b.backend.UploadVertexData(b.lineVA, packQuadVertices(b.lineVertices))
	if err := b.backend.DrawLines(b.lineVA, b.lineCount*2); err != nil {
		return &RendererError{Kind: BackendCallFailed, Log: fmt.Sprintf("draw_lines: %v", err)}
	}
	b.lineVertices = b.lineVertices[:0]
	b.lineCount = 0
	return nil
}

// EndScene flushes any remaining quads and lines and marks the batch
// inactive; DrawQuad/DrawLine must not be called again until the next
// BeginScene.
func (b *Batch2D) EndScene() error {
	if err := b.Flush(); err != nil {
		return err
	}
	if err := b.flushLines(); err != nil {
		return err
	}
	b.active = false
	return nil
}

// packQuadVertices is a placeholder for the byte-layout packing a real
// backend needs; it's kept separate so a GL-specific backend can swap in
// its own tightly packed encoding without touching batch accounting.
func packQuadVertices(vs []QuadVertex) []byte {
	buf := make([]byte, 0, len(vs)*quadVertexStride)
	for _, v := range vs {
		buf = appendFloat32(buf, float32(v.Position.X), float32(v.Position.Y), float32(v.Position.Z))
		buf = appendFloat32(buf, v.Color[0], v.Color[1], v.Color[2], v.Color[3])
		buf = appendFloat32(buf, float32(v.TexCoord.X), float32(v.TexCoord.Y))
		buf = appendFloat32(buf, v.TexIndex, float32(v.EntityID))
	}
	return buf
}

func appendFloat32(buf []byte, vs ...float32) []byte {
	for _, v := range vs {
		bits := math.Float32bits(v)
		buf = append(buf, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
	}
	return buf
}
