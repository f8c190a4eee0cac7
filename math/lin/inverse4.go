// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

// Inv sets m to the inverse of a, returning m. Unlike M3.Inv, the package
// has no general 4x4 inverse; cameras need one to turn a TRS model matrix
// into a view matrix without assuming anything about how it was composed.
// Singular matrices are left as the zero matrix.
func (m *M4) Inv(a *M4) *M4 {
	e := [16]float64{
		a.Xx, a.Xy, a.Xz, a.Xw,
		a.Yx, a.Yy, a.Yz, a.Yw,
		a.Zx, a.Zy, a.Zz, a.Zw,
		a.Wx, a.Wy, a.Wz, a.Ww,
	}
	var inv [16]float64

	inv[0] = e[5]*e[10]*e[15] - e[5]*e[11]*e[14] - e[9]*e[6]*e[15] + e[9]*e[7]*e[14] + e[13]*e[6]*e[11] - e[13]*e[7]*e[10]
	inv[4] = -e[4]*e[10]*e[15] + e[4]*e[11]*e[14] + e[8]*e[6]*e[15] - e[8]*e[7]*e[14] - e[12]*e[6]*e[11] + e[12]*e[7]*e[10]
	inv[8] = e[4]*e[9]*e[15] - e[4]*e[11]*e[13] - e[8]*e[5]*e[15] + e[8]*e[7]*e[13] + e[12]*e[5]*e[11] - e[12]*e[7]*e[9]
	inv[12] = -e[4]*e[9]*e[14] + e[4]*e[10]*e[13] + e[8]*e[5]*e[14] - e[8]*e[6]*e[13] - e[12]*e[5]*e[10] + e[12]*e[6]*e[9]

	inv[1] = -e[1]*e[10]*e[15] + e[1]*e[11]*e[14] + e[9]*e[2]*e[15] - e[9]*e[3]*e[14] - e[13]*e[2]*e[11] + e[13]*e[3]*e[10]
	inv[5] = e[0]*e[10]*e[15] - e[0]*e[11]*e[14] - e[8]*e[2]*e[15] + e[8]*e[3]*e[14] + e[12]*e[2]*e[11] - e[12]*e[3]*e[10]
	inv[9] = -e[0]*e[9]*e[15] + e[0]*e[11]*e[13] + e[8]*e[1]*e[15] - e[8]*e[3]*e[13] - e[12]*e[1]*e[11] + e[12]*e[3]*e[9]
	inv[13] = e[0]*e[9]*e[14] - e[0]*e[10]*e[13] - e[8]*e[1]*e[14] + e[8]*e[2]*e[13] + e[12]*e[1]*e[10] - e[12]*e[2]*e[9]

	inv[2] = e[1]*e[6]*e[15] - e[1]*e[7]*e[14] - e[5]*e[2]*e[15] + e[5]*e[3]*e[14] + e[13]*e[2]*e[7] - e[13]*e[3]*e[6]
	inv[6] = -e[0]*e[6]*e[15] + e[0]*e[7]*e[14] + e[4]*e[2]*e[15] - e[4]*e[3]*e[14] - e[12]*e[2]*e[7] + e[12]*e[3]*e[6]
	inv[10] = e[0]*e[5]*e[15] - e[0]*e[7]*e[13] - e[4]*e[1]*e[15] + e[4]*e[3]*e[13] + e[12]*e[1]*e[7] - e[12]*e[3]*e[5]
	inv[14] = -e[0]*e[5]*e[14] + e[0]*e[6]*e[13] + e[4]*e[1]*e[14] - e[4]*e[2]*e[13] - e[12]*e[1]*e[6] + e[12]*e[2]*e[5]

	inv[3] = -e[1]*e[6]*e[11] + e[1]*e[7]*e[10] + e[5]*e[2]*e[11] - e[5]*e[3]*e[10] - e[9]*e[2]*e[7] + e[9]*e[3]*e[6]
	inv[7] = e[0]*e[6]*e[11] - e[0]*e[7]*e[10] - e[4]*e[2]*e[11] + e[4]*e[3]*e[10] + e[8]*e[2]*e[7] - e[8]*e[3]*e[6]
	inv[11] = -e[0]*e[5]*e[11] + e[0]*e[7]*e[9] + e[4]*e[1]*e[11] - e[4]*e[3]*e[9] - e[8]*e[1]*e[7] + e[8]*e[3]*e[5]
	inv[15] = e[0]*e[5]*e[10] - e[0]*e[6]*e[9] - e[4]*e[1]*e[10] + e[4]*e[2]*e[9] + e[8]*e[1]*e[6] - e[8]*e[2]*e[5]

	det := e[0]*inv[0] + e[1]*inv[4] + e[2]*inv[8] + e[3]*inv[12]
	if det == 0 {
		*m = M4{}
		return m
	}
	s := 1 / det
	m.Xx, m.Xy, m.Xz, m.Xw = inv[0]*s, inv[1]*s, inv[2]*s, inv[3]*s
	m.Yx, m.Yy, m.Yz, m.Yw = inv[4]*s, inv[5]*s, inv[6]*s, inv[7]*s
	m.Zx, m.Zy, m.Zz, m.Zw = inv[8]*s, inv[9]*s, inv[10]*s, inv[11]*s
	m.Wx, m.Wy, m.Wz, m.Ww = inv[12]*s, inv[13]*s, inv[14]*s, inv[15]*s
	return m
}
