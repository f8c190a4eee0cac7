// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package ember

import "github.com/galvanized-forge/ember/math/lin"

// Projection selects whether a Camera behaves as orthographic or
// perspective.
type Projection int

const (
	Orthographic Projection = iota
	Perspective
)

// Camera is a positioned view into the scene. Its view, projection, and
// view-projection matrices are lazily recomputed and cached; every setter
// marks the cache dirty unless the new value equals the old one.
type Camera struct {
	projection Projection

	// orthographic parameters
	size float64
	// perspective parameters
	fovY float64
	// shared
	near, far, aspect float64
	fixedAspect       bool
	primary           bool

	position lin.V3
	rotation lin.V3 // Euler radians; a 2D camera only uses Z
	scale    lin.V3

	dirty          bool
	view, proj, vp lin.M4
}

// NewOrthographicCamera returns a camera with the given half-height size
// (the projection spans 2*size*aspect wide by 2*size tall) and near/far planes.
func NewOrthographicCamera(size, near, far float64) *Camera {
	c := &Camera{
		projection: Orthographic,
		size:       size,
		near:       near,
		far:        far,
		aspect:     1,
		scale:      lin.V3{X: 1, Y: 1, Z: 1},
		dirty:      true,
	}
	return c
}

// NewPerspectiveCamera returns a camera with the given vertical
// field-of-view in radians and near/far planes.
func NewPerspectiveCamera(fovY, near, far float64) *Camera {
	c := &Camera{
		projection: Perspective,
		fovY:       fovY,
		near:       near,
		far:        far,
		aspect:     1,
		scale:      lin.V3{X: 1, Y: 1, Z: 1},
		dirty:      true,
	}
	return c
}

// Position returns the camera's world position.
func (c *Camera) Position() lin.V3 { return c.position }

// SetPosition moves the camera. Setting the same position is a no-op and
// does not dirty the cache.
func (c *Camera) SetPosition(p lin.V3) {
	if c.position == p {
		return
	}
	c.position = p
	c.dirty = true
}

// Rotation returns the camera's Euler rotation in radians.
func (c *Camera) Rotation() lin.V3 { return c.rotation }

// SetRotation sets the camera's Euler rotation in radians.
func (c *Camera) SetRotation(r lin.V3) {
	if c.rotation == r {
		return
	}
	c.rotation = r
	c.dirty = true
}

// SetPrimary marks or unmarks this camera as the scene's primary camera
// (§4.D primary-camera discovery). It does not affect cached matrices.
func (c *Camera) SetPrimary(primary bool) { c.primary = primary }

// IsPrimary reports whether this camera is marked primary.
func (c *Camera) IsPrimary() bool { return c.primary }

// Aspect returns the current width/height aspect ratio.
func (c *Camera) Aspect() float64 { return c.aspect }

// SetViewportSize updates the aspect ratio from a pixel viewport. Zero
// width or height is a no-op: it must not divide by zero and must not
// dirty the cache.
func (c *Camera) SetViewportSize(w, h int) {
	if c.fixedAspect || w <= 0 || h <= 0 {
		return
	}
	aspect := float64(w) / float64(h)
	if aspect == c.aspect {
		return
	}
	c.aspect = aspect
	c.dirty = true
}

// SetFixedAspectRatio locks the aspect ratio against viewport-resize
// propagation (§4.D on_viewport_resize only updates cameras with this
// unset).
func (c *Camera) SetFixedAspectRatio(fixed bool) { c.fixedAspect = fixed }

// FixedAspectRatio reports whether this camera ignores viewport resize.
func (c *Camera) FixedAspectRatio() bool { return c.fixedAspect }

func (c *Camera) recompute() {
	if !c.dirty {
		return
	}
	model := lin.ComposeTRS(&c.position, &c.rotation, &c.scale)
	c.view.Inv(model)

	switch c.projection {
	case Orthographic:
		halfH := c.size
		halfW := c.size * c.aspect
		c.proj.Ortho(-halfW, halfW, -halfH, halfH, c.near, c.far)
	case Perspective:
		c.proj.Persp(lin.Deg(c.fovY), c.aspect, c.near, c.far)
	}
	c.vp.Mult(&c.proj, &c.view)
	c.dirty = false
}

// View returns the cached view matrix, recomputing it first if dirty.
func (c *Camera) View() *lin.M4 {
	c.recompute()
	return &c.view
}

// ProjectionMatrix returns the cached projection matrix, recomputing it first
// if dirty.
func (c *Camera) ProjectionMatrix() *lin.M4 {
	c.recompute()
	return &c.proj
}

// ViewProjection returns the cached projection*view matrix.
func (c *Camera) ViewProjection() *lin.M4 {
	c.recompute()
	return &c.vp
}
