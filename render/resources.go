// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package render

import (
	"fmt"
	"sync"
)

// DefaultWhitePixels is the byte-exact RGBA payload of the eager default
// texture (§6 File formats): one opaque white texel.
var DefaultWhitePixels = []byte{0xFF, 0xFF, 0xFF, 0xFF}

// Resources caches GPU resources keyed by the path or descriptor that
// produced them, so repeated requests for the same shader pair or texture
// path return the same handle instead of re-uploading. It mirrors the way
// the teacher's load.Locator centralizes asset lookup, narrowed here to
// GPU-resident handles rather than file bytes (the teacher's own
// render.opengl keeps no such cache: every Texture/Shader is built fresh by
// its owning Model).
type Resources struct {
	backend Backend

	mu           sync.Mutex
	shaders      map[shaderKey]ShaderHandle
	textures     map[string]TextureHandle
	textureSizes map[string][2]int
	white        TextureHandle
}

type shaderKey struct {
	vertSrc, fragSrc string
}

// NewResources creates a resource cache bound to backend and eagerly
// uploads the 1x1 opaque white default texture (§4.G), so renderers can
// always bind a texture even when a sprite or material has none.
func NewResources(backend Backend) (*Resources, error) {
	r := &Resources{
		backend:      backend,
		shaders:      make(map[shaderKey]ShaderHandle),
		textures:     make(map[string]TextureHandle),
		textureSizes: make(map[string][2]int),
	}
	white, err := backend.UploadTexture(DefaultWhitePixels, 1, 1)
	if err != nil {
		return nil, &RendererError{Kind: BackendCallFailed, Log: fmt.Sprintf("default white texture: %v", err)}
	}
	r.white = white
	return r, nil
}

// WhiteTexture returns the handle of the eager default white texture. It is
// never released by Release or ReleaseAll; it lives for the lifetime of the
// Resources cache.
func (r *Resources) WhiteTexture() TextureHandle { return r.white }

// Shader returns the cached handle for the given vertex/fragment source
// pair, compiling and caching it on first request.
func (r *Resources) Shader(vertSrc, fragSrc string) (ShaderHandle, error) {
	key := shaderKey{vertSrc, fragSrc}

	r.mu.Lock()
	defer r.mu.Unlock()
	if sh, ok := r.shaders[key]; ok {
		return sh, nil
	}
	sh, err := r.backend.CompileShader(vertSrc, fragSrc)
	if err != nil {
		return 0, &RendererError{Kind: ShaderCompileFailed, Log: err.Error()}
	}
	r.shaders[key] = sh
	return sh, nil
}

// TextureFromFile returns the cached handle for the texture decoded from
// path, decoding, flipping, and uploading it on first request. Filtering is
// linear-min/nearest-mag with repeat wrap and mip levels 0..8, per §6.
func (r *Resources) TextureFromFile(path string) (TextureHandle, error) {
	r.mu.Lock()
	if tex, ok := r.textures[path]; ok {
		r.mu.Unlock()
		return tex, nil
	}
	r.mu.Unlock()

	pixels, w, h, err := r.backend.DecodeTextureFile(path)
	if err != nil {
		return 0, &ResourceError{Kind: AssetNotFound, Path: path}
	}
	tex, err := r.backend.UploadTexture(pixels, w, h)
	if err != nil {
		return 0, &RendererError{Kind: BackendCallFailed, Log: fmt.Sprintf("upload texture %s: %v", path, err)}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tex2, ok := r.textures[path]; ok {
		// Lost a race with a concurrent load of the same path: release
		// the duplicate upload and keep the winner.
		r.backend.ReleaseTexture(tex)
		return tex2, nil
	}
	r.textures[path] = tex
	r.textureSizes[path] = [2]int{w, h}
	return tex, nil
}

// TextureSize returns the pixel dimensions of a texture previously loaded by
// TextureFromFile, and whether path has been loaded at all. A sub_texture
// component uses this to convert its atlas Rect into normalized UVs.
func (r *Resources) TextureSize(path string) (width, height int, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dims, ok := r.textureSizes[path]
	if !ok {
		return 0, 0, false
	}
	return dims[0], dims[1], true
}

// TextureFromDimensions uploads a new, uncached texture of the given
// dimensions and pixel data. Unlike TextureFromFile these are never
// deduplicated: callers own the returned handle and must Release it
// themselves.
func (r *Resources) TextureFromDimensions(width, height int, pixels []byte) (TextureHandle, error) {
	if len(pixels) != width*height*4 {
		return 0, &ResourceError{Kind: InvalidAssetFormat, Path: fmt.Sprintf("%dx%d", width, height)}
	}
	tex, err := r.backend.UploadTexture(pixels, width, height)
	if err != nil {
		return 0, &RendererError{Kind: BackendCallFailed, Log: err.Error()}
	}
	return tex, nil
}

// SetTextureData replaces tex's pixel contents in place. size must equal
// width*height*4 (RGBA8); a mismatch is rejected rather than read out of
// bounds.
func (r *Resources) SetTextureData(tex TextureHandle, width, height int, pixels []byte) error {
	if len(pixels) != width*height*4 {
		return &ResourceError{Kind: InvalidAssetFormat, Path: fmt.Sprintf("%dx%d", width, height)}
	}
	if err := r.backend.SetTextureData(tex, pixels, width, height); err != nil {
		return &RendererError{Kind: BackendCallFailed, Log: err.Error()}
	}
	return nil
}

// ReleaseTexture releases a texture previously returned by TextureFromFile
// or TextureFromDimensions. Releasing the default white texture or the zero
// handle is a no-op. Any other handle that is not in the path cache,
// including one already released, is passed to the backend again.
func (r *Resources) ReleaseTexture(tex TextureHandle) {
	if tex == 0 || tex == r.white {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for path, cached := range r.textures {
		if cached == tex {
			delete(r.textures, path)
			delete(r.textureSizes, path)
			r.backend.ReleaseTexture(tex)
			return
		}
	}
	// Not a cached-by-path texture (e.g. one from TextureFromDimensions,
	// or already released): release unconditionally, let the backend
	// treat a second release of its own handle as a no-op.
	r.backend.ReleaseTexture(tex)
}

// CreateVertexArray allocates a new, uncached vertex array whose interleaved
// float32 attributes have the given component counts in order, sized to
// hold indexCapacity indices. Vertex arrays are never deduplicated: each
// mesh or batch owns its own.
func (r *Resources) CreateVertexArray(attributeSpans []int32, indexCapacity int) (VertexArrayHandle, error) {
	va, err := r.backend.CreateVertexArray(attributeSpans, indexCapacity)
	if err != nil {
		return 0, &RendererError{Kind: BackendCallFailed, Log: err.Error()}
	}
	return va, nil
}

// ReleaseVertexArray releases a vertex array. Releasing the zero handle is
// a no-op.
func (r *Resources) ReleaseVertexArray(va VertexArrayHandle) {
	if va == 0 {
		return
	}
	r.backend.ReleaseVertexArray(va)
}

// UploadVertexData replaces va's vertex buffer contents, a thin pass-through
// so a mesh-rendering system only needs a *Resources, not the Backend
// itself, to lazily initialize a mesh's GPU buffers.
func (r *Resources) UploadVertexData(va VertexArrayHandle, data []byte) {
	r.backend.UploadVertexData(va, data)
}

// UploadIndexData replaces va's index buffer contents.
func (r *Resources) UploadIndexData(va VertexArrayHandle, indices []uint32) {
	r.backend.UploadIndexData(va, indices)
}

// ResolveTexture picks the first non-zero handle in the override-then-own
// resolution chain (§4.I): a renderer-level override texture, failing that
// the mesh's own material texture, failing that the default white texture.
func ResolveTexture(overrideTex, ownTex, whiteTex TextureHandle) TextureHandle {
	if overrideTex != 0 {
		return overrideTex
	}
	if ownTex != 0 {
		return ownTex
	}
	return whiteTex
}

// ReleaseAll releases every cached texture except the default white texture
// and empties the shader cache; cached shaders are forgotten, not released
// through the backend. Intended for scene teardown.
func (r *Resources) ReleaseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for path, tex := range r.textures {
		r.backend.ReleaseTexture(tex)
		delete(r.textures, path)
		delete(r.textureSizes, path)
	}
	r.shaders = make(map[shaderKey]ShaderHandle)
}
