// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

import (
	"math"
	"testing"
)

func TestComposeTRSIdentity(t *testing.T) {
	m := ComposeTRS(&V3{0, 0, 0}, &V3{0, 0, 0}, &V3{1, 1, 1})
	want := NewM4I()
	if !m.Aeq(want) {
		t.Errorf("identity compose got %+v, want identity", m)
	}
}

func TestComposeTRSTranslationOnly(t *testing.T) {
	m := ComposeTRS(&V3{1, 2, 3}, &V3{0, 0, 0}, &V3{1, 1, 1})
	if !Aeq(m.Wx, 1) || !Aeq(m.Wy, 2) || !Aeq(m.Wz, 3) {
		t.Errorf("translation got (%v,%v,%v), want (1,2,3)", m.Wx, m.Wy, m.Wz)
	}
}

func TestComposeDecomposeRoundTrip(t *testing.T) {
	cases := []struct {
		t, r, s V3
	}{
		{V3{0, 0, 0}, V3{0, 0, 0}, V3{1, 1, 1}},
		{V3{5, -2, 3}, V3{0.3, -0.6, 1.1}, V3{1, 1, 1}},
		{V3{0, 0, 0}, V3{math.Pi / 4, -math.Pi / 3, math.Pi / 6}, V3{2, 3, 0.5}},
		{V3{-1, 10, 2}, V3{-math.Pi + 0.2, 0.1, 0.5}, V3{1, 1, 1}},
	}
	for i, c := range cases {
		m := ComposeTRS(&c.t, &c.r, &c.s)
		gotT, gotR, gotS := Decompose(m)
		if !nearV3(gotT, &c.t, 1e-4) {
			t.Errorf("case %d: translation got %+v, want %+v", i, gotT, c.t)
		}
		if !nearV3(gotS, &c.s, 1e-4) {
			t.Errorf("case %d: scale got %+v, want %+v", i, gotS, c.s)
		}
		m2 := ComposeTRS(gotT, gotR, gotS)
		if !m.Aeq(m2) {
			t.Errorf("case %d: recomposed matrix does not match original\ngot  %+v\nwant %+v", i, m2, m)
		}
	}
}

func nearV3(a, b *V3, tol float64) bool {
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol && math.Abs(a.Z-b.Z) < tol
}

func TestNormalMatrixUniformScale(t *testing.T) {
	m := ComposeTRS(&V3{0, 0, 0}, &V3{0.4, 0.2, -0.3}, &V3{2, 2, 2})
	n := NormalMatrix(m)
	var upper M3
	upper.SetM4(m)
	var rot M3
	rot.Set(&upper).Scale(0.25)
	if !n.Aeq(&rot) {
		t.Errorf("normal matrix under uniform scale got %+v, want %+v", n, rot)
	}
}

func TestV3RadiansDegreesRoundTrip(t *testing.T) {
	deg := &V3{90, 180, 270}
	rad := V3Radians(deg)
	back := V3Degrees(rad)
	if !nearV3(back, deg, 1e-9) {
		t.Errorf("round trip got %+v, want %+v", back, deg)
	}
}
