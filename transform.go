// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package ember

import "github.com/galvanized-forge/ember/math/lin"

// Transform is the TRS component every positioned entity carries.
// Rotation is Euler radians; the model matrix is always composed in the
// fixed order Translate · RotateZ · RotateY · RotateX · Scale.
type Transform struct {
	Translation lin.V3
	Rotation    lin.V3
	Scale       lin.V3
}

// NewTransform returns a Transform at the origin with unit scale.
func NewTransform() Transform {
	return Transform{Scale: lin.V3{X: 1, Y: 1, Z: 1}}
}

// Model returns the composed model matrix. It is a pure function of t's
// own fields, so it is safe to compute on demand rather than caching it on
// the component (only Camera caches, since its inputs include the viewport
// as well as its own TRS fields).
func (t *Transform) Model() *lin.M4 {
	return lin.ComposeTRS(&t.Translation, &t.Rotation, &t.Scale)
}

// NormalMatrix returns transpose(inverse(upper-left 3x3 of Model())), used
// to transform surface normals correctly under non-uniform scaling.
func (t *Transform) NormalMatrix() *lin.M3 {
	return lin.NormalMatrix(t.Model())
}

// RotationQuaternion returns t's Euler rotation converted to a unit
// quaternion, for hosts that interpolate or serialize orientation in
// quaternion form (e.g. network replication, animation blending) rather
// than as raw Euler angles.
func (t *Transform) RotationQuaternion() lin.Q {
	unitScale := lin.V3{X: 1, Y: 1, Z: 1}
	rotOnly := lin.ComposeTRS(&lin.V3{}, &t.Rotation, &unitScale)
	m3 := lin.NewM3().SetM4(rotOnly)
	return *lin.NewQ().SetM(m3)
}
