// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package ember

import (
	"math"
	"testing"

	"github.com/galvanized-forge/ember/math/lin"
)

func TestTransformDefaultIsIdentityPlusUnitScale(t *testing.T) {
	tr := NewTransform()
	if tr.Scale != (lin.V3{X: 1, Y: 1, Z: 1}) {
		t.Fatalf("default scale got %v, want (1,1,1)", tr.Scale)
	}
	m := tr.Model()
	id := lin.NewM4I()
	if !m.Aeq(id) {
		t.Fatalf("default transform model got %+v, want identity", m)
	}
}

func TestTransformModelTranslates(t *testing.T) {
	tr := NewTransform()
	tr.Translation = lin.V3{X: 1, Y: 2, Z: 3}
	m := tr.Model()
	if m.Wx != 1 || m.Wy != 2 || m.Wz != 3 {
		t.Fatalf("translated model got (%v,%v,%v), want (1,2,3)", m.Wx, m.Wy, m.Wz)
	}
}

func TestTransformRotationQuaternionIsIdentityForZeroRotation(t *testing.T) {
	tr := NewTransform()
	q := tr.RotationQuaternion()
	if !q.Aeq(lin.QI) {
		t.Fatalf("identity rotation quaternion got %+v, want %+v", q, lin.QI)
	}
}

func TestTransformRotationQuaternionTracksEulerRotation(t *testing.T) {
	tr := NewTransform()
	tr.Rotation = lin.V3{Z: math.Pi / 2}
	q := tr.RotationQuaternion()
	if q.Aeq(lin.QI) {
		t.Fatalf("expected a non-identity quaternion for a 90 degree rotation")
	}
	if q.Len() < 0.999 || q.Len() > 1.001 {
		t.Fatalf("expected a unit quaternion, got length %v", q.Len())
	}
}
