// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package render

import (
	"fmt"

	"github.com/galvanized-forge/ember/math/lin"
)

// Mesh3D draws 3D meshes with a single directional/point light and Phong
// shading (§4.I). Unlike Batch2D it issues one draw call per model rather
// than batching several meshes together — mirroring vu's model.go, which
// renders each bound Model with its own draw call rather than merging
// geometry across models.
type Mesh3D struct {
	backend Backend
	shader  ShaderHandle
	active  bool

	viewProj   lin.M4
	cameraPos  lin.V3
	lightPos   lin.V3
	lightColor [3]float32
	shininess  float32
}

// NewMesh3D returns a mesh renderer bound to backend.
func NewMesh3D(backend Backend) *Mesh3D {
	return &Mesh3D{backend: backend}
}

// BeginScene sets the per-scene uniforms (view-projection, camera position,
// and the single light's position/color/shininess) that every DrawModel
// call in the scene shares.
func (m *Mesh3D) BeginScene(shader ShaderHandle, viewProj *lin.M4, cameraPos, lightPos lin.V3, lightColor [3]float32, shininess float32) {
	m.shader = shader
	m.viewProj = *viewProj
	m.cameraPos = cameraPos
	m.lightPos = lightPos
	m.lightColor = lightColor
	m.shininess = shininess
	m.active = true

	m.backend.UseShader(shader)
	m.backend.SetUniformMat4(shader, "u_viewProj", m4ToArray(viewProj))
	m.backend.SetUniformVec3(shader, "u_cameraPos", v3ToArray(cameraPos))
	m.backend.SetUniformVec3(shader, "u_lightPos", v3ToArray(lightPos))
	m.backend.SetUniformVec3(shader, "u_lightColor", lightColor)
	m.backend.SetUniformFloat(shader, "u_shininess", shininess)
}

// DrawModel draws one already-GPU-resident mesh: va/indexCount identify its
// vertex array (built and cached by the caller via Resources, since Mesh is
// owned by the root package and this package stays free of an import cycle
// back to it), model/normal are the entity's model and normal matrices,
// baseColor is the material's tint, useTexture tells the shader whether to
// modulate that tint by the sampled texture or ignore it entirely, and
// texture is the already-resolved diffuse texture (see ResolveTexture).
func (m *Mesh3D) DrawModel(va VertexArrayHandle, indexCount int, model *lin.M4, normal *lin.M3, baseColor [4]float32, useTexture bool, texture TextureHandle, entityID int32) error {
	if !m.active {
		return &RendererError{Kind: BackendCallFailed, Log: "draw_model called outside begin_scene/end_scene"}
	}
	m.backend.SetUniformMat4(m.shader, "u_model", m4ToArray(model))
	m.backend.SetUniformMat3(m.shader, "u_normalMatrix", m3ToArray(normal))
	m.backend.SetUniformVec4(m.shader, "u_baseColor", baseColor)
	m.backend.SetUniformInt(m.shader, "u_useTexture", boolToInt(useTexture))
	m.backend.SetUniformInt(m.shader, "u_entityID", int(entityID))
	m.backend.BindTextureUnit(0, texture)
	if err := m.backend.DrawIndexed(va, indexCount); err != nil {
		return &RendererError{Kind: BackendCallFailed, Log: fmt.Sprintf("draw_model: %v", err)}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// EndScene marks the mesh renderer inactive; DrawModel must not be called
// again until the next BeginScene.
func (m *Mesh3D) EndScene() {
	m.active = false
}

// m4ToArray lays out an M4 in the row-major order the teacher's matrix
// fields are declared in (Xx,Xy,Xz,Xw,Yx,...), matching inverse4.go's
// element ordering.
func m4ToArray(m *lin.M4) [16]float32 {
	return [16]float32{
		float32(m.Xx), float32(m.Xy), float32(m.Xz), float32(m.Xw),
		float32(m.Yx), float32(m.Yy), float32(m.Yz), float32(m.Yw),
		float32(m.Zx), float32(m.Zy), float32(m.Zz), float32(m.Zw),
		float32(m.Wx), float32(m.Wy), float32(m.Wz), float32(m.Ww),
	}
}

func m3ToArray(m *lin.M3) [9]float32 {
	return [9]float32{
		float32(m.Xx), float32(m.Xy), float32(m.Xz),
		float32(m.Yx), float32(m.Yy), float32(m.Yz),
		float32(m.Zx), float32(m.Zy), float32(m.Zz),
	}
}

func v3ToArray(v lin.V3) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}
