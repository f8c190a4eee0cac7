// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

// trs.go composes Euler-angle translate-rotate-scale transforms and derives
// normal matrices from them. The rest of the package tracks rotation with
// quaternions; this file exists because entities and cameras are specified
// in the engine as Euler angles (radians) rather than quaternions.

import "math"

// V2 is a 2D vector, used for texture coordinates and other 2D-only data
// the rest of this package (all V3/V4-based) has no use for.
type V2 struct {
	X, Y float64
}

// V3Radians converts each component of a degrees vector to radians.
func V3Radians(deg *V3) *V3 {
	return &V3{Rad(deg.X), Rad(deg.Y), Rad(deg.Z)}
}

// V3Degrees converts each component of a radians vector to degrees.
func V3Degrees(rad *V3) *V3 {
	return &V3{Deg(rad.X), Deg(rad.Y), Deg(rad.Z)}
}

// RotateX sets m to a rotation of ang radians about the X axis.
func (m *M4) RotateX(ang float64) *M4 {
	var r M3
	r.SetAa(1, 0, 0, ang)
	return m.setM3(&r)
}

// RotateY sets m to a rotation of ang radians about the Y axis.
func (m *M4) RotateY(ang float64) *M4 {
	var r M3
	r.SetAa(0, 1, 0, ang)
	return m.setM3(&r)
}

// RotateZ sets m to a rotation of ang radians about the Z axis.
func (m *M4) RotateZ(ang float64) *M4 {
	var r M3
	r.SetAa(0, 0, 1, ang)
	return m.setM3(&r)
}

// setM3 copies a 3x3 rotation into the upper-left of m, identity elsewhere.
func (m *M4) setM3(r *M3) *M4 {
	m.Xx, m.Xy, m.Xz, m.Xw = r.Xx, r.Xy, r.Xz, 0
	m.Yx, m.Yy, m.Yz, m.Yw = r.Yx, r.Yy, r.Yz, 0
	m.Zx, m.Zy, m.Zz, m.Zw = r.Zx, r.Zy, r.Zz, 0
	m.Wx, m.Wy, m.Wz, m.Ww = 0, 0, 0, 1
	return m
}

// ComposeTRS builds the model matrix Translate·RotateZ·RotateY·RotateX·Scale
// from a translation, an Euler rotation (radians), and a per-axis scale.
// This intrinsic order is fixed: callers must not reorder it.
func ComposeTRS(translation, rotation, scale *V3) *M4 {
	var rx, ry, rz, s, m M4
	rx.RotateX(rotation.X)
	ry.RotateY(rotation.Y)
	rz.RotateZ(rotation.Z)
	s.Scale4(scale.X, scale.Y, scale.Z)

	m.Mult(&rz, &ry) // rz * ry
	m.Mult(&m, &rx)  // (rz*ry) * rx
	m.Mult(&m, &s)   // ((rz*ry)*rx) * s
	m.Wx, m.Wy, m.Wz = translation.X, translation.Y, translation.Z
	return &m
}

// Scale4 sets m to a pure scale matrix, leaving translation at zero.
func (m *M4) Scale4(sx, sy, sz float64) *M4 {
	m.Xx, m.Xy, m.Xz, m.Xw = sx, 0, 0, 0
	m.Yx, m.Yy, m.Yz, m.Yw = 0, sy, 0, 0
	m.Zx, m.Zy, m.Zz, m.Zw = 0, 0, sz, 0
	m.Wx, m.Wy, m.Wz, m.Ww = 0, 0, 0, 1
	return m
}

// TranslateMT4 post-multiplies m by a translation, i.e. sets the W row of m
// (the translation column in this row-major-as-columns layout) to the given
// values composed with the existing rotation/scale upper 3x3.
func (m *M4) TranslateMT4(x, y, z float64) *M4 {
	m.Wx = m.Xx*x + m.Yx*y + m.Zx*z + m.Wx
	m.Wy = m.Xy*x + m.Yy*y + m.Zy*z + m.Wy
	m.Wz = m.Xz*x + m.Yz*y + m.Zz*z + m.Wz
	return m
}

// NormalMatrix returns the transpose of the inverse of the upper-left 3x3
// of model, used to correctly transform surface normals under non-uniform
// scaling.
func NormalMatrix(model *M4) *M3 {
	var upper M3
	upper.SetM4(model)
	var inv M3
	inv.Inv(&upper)
	var normal M3
	normal.Transpose(&inv)
	return &normal
}

// Decompose extracts translation, Euler rotation (radians) and scale from a
// TRS-composed model matrix. Scale is recovered from the column lengths of
// the upper-left 3x3; rotation is recovered assuming the fixed Rz*Ry*Rx
// composition order used by ComposeTRS.
func Decompose(model *M4) (translation, rotation, scale *V3) {
	translation = &V3{X: model.Wx, Y: model.Wy, Z: model.Wz}

	sx := math.Sqrt(model.Xx*model.Xx + model.Yx*model.Yx + model.Zx*model.Zx)
	sy := math.Sqrt(model.Xy*model.Xy + model.Yy*model.Yy + model.Zy*model.Zy)
	sz := math.Sqrt(model.Xz*model.Xz + model.Yz*model.Yz + model.Zz*model.Zz)
	scale = &V3{X: sx, Y: sy, Z: sz}

	// Normalize out scale to recover the pure rotation matrix.
	r := M3{
		Xx: model.Xx / sx, Xy: model.Xy / sy, Xz: model.Xz / sz,
		Yx: model.Yx / sx, Yy: model.Yy / sy, Yz: model.Yz / sz,
		Zx: model.Zx / sx, Zy: model.Zy / sy, Zz: model.Zz / sz,
	}

	// For R = Rz*Ry*Rx as built by ComposeTRS, standard Euler extraction:
	ry := math.Asin(Clamp(-r.Zx, -1, 1))
	var rx, rz float64
	if math.Abs(r.Zx) < 1-Epsilon {
		rx = math.Atan2(r.Zy, r.Zz)
		rz = math.Atan2(r.Yx, r.Xx)
	} else {
		// Gimbal lock: pick rz = 0.
		rx = math.Atan2(-r.Yz, r.Yy)
		rz = 0
	}
	rotation = &V3{X: rx, Y: ry, Z: rz}
	return translation, rotation, scale
}
