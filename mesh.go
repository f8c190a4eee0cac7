// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package ember

import "github.com/galvanized-forge/ember/math/lin"

// Vertex is one CPU-side mesh vertex. EntityID is written by the 3D
// renderer at draw time so a framebuffer's integer attachment can resolve
// a pixel back to the entity that drew it (§4.J).
type Vertex struct {
	Position lin.V3
	Normal   lin.V3
	TexCoord lin.V2
	EntityID int32
}

// Material holds the texture-path hints a Mesh was authored with, plus its
// base tint color. Resolving a path to a loaded texture is the host's job;
// the mesh only remembers where to look.
type Material struct {
	DiffusePath  string
	SpecularPath string
	NormalPath   string
	HeightPath   string
	BaseColor    [4]float32
}

// Mesh is the CPU-side vertex/index data for one drawable shape, plus its
// material hints. GPU resources (vertex array, vertex/index buffers) are
// not part of this struct — they live in the render package's resource
// factories and are created lazily on first draw (ensure_gpu_initialized),
// keyed off this Mesh's identity.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Material Material

	gpuInitialized bool
	gpuHandle      any // set by the render package's mesh factory
}

// NewMesh returns a Mesh with the given CPU vertex/index data. An
// unspecified (zero-value) BaseColor defaults to opaque white, the same
// tint-free default the texture factories use for an absent diffuse map.
func NewMesh(vertices []Vertex, indices []uint32, mat Material) *Mesh {
	if mat.BaseColor == ([4]float32{}) {
		mat.BaseColor = [4]float32{1, 1, 1, 1}
	}
	return &Mesh{Vertices: vertices, Indices: indices, Material: mat}
}

// GPUInitialized reports whether ensure_gpu_initialized has run for this
// mesh.
func (m *Mesh) GPUInitialized() bool { return m.gpuInitialized }

// MarkGPUInitialized records the opaque GPU handle produced by a render
// backend's mesh factory and marks the mesh as having GPU resources. It is
// idempotent: calling it again just replaces the handle.
func (m *Mesh) MarkGPUInitialized(handle any) {
	m.gpuInitialized = true
	m.gpuHandle = handle
}

// GPUHandle returns the opaque handle recorded by MarkGPUInitialized, or
// nil if the mesh has not been initialized on the GPU yet.
func (m *Mesh) GPUHandle() any { return m.gpuHandle }
