// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package ember

import (
	"math"
	"testing"

	"github.com/galvanized-forge/ember/math/lin"
)

func TestCameraAspect(t *testing.T) {
	c := NewOrthographicCamera(10, -1, 1)
	c.SetViewportSize(1920, 1080)
	want := 1920.0 / 1080.0
	if math.Abs(c.Aspect()-want) > 1e-4 {
		t.Fatalf("aspect got %v, want %v", c.Aspect(), want)
	}

	c.SetViewportSize(0, 1080)
	if math.Abs(c.Aspect()-want) > 1e-9 {
		t.Fatalf("zero-width resize must not change aspect: got %v, want %v", c.Aspect(), want)
	}
}

func TestCameraSetViewportZeroIsNoOp(t *testing.T) {
	c := NewOrthographicCamera(10, -1, 1)
	c.recompute() // settle initial dirty state
	before := c.dirty
	c.SetViewportSize(0, 100)
	if c.dirty != before {
		t.Fatalf("zero-dimension viewport resize must not dirty the cache")
	}
	c.SetViewportSize(100, 0)
	if c.dirty != before {
		t.Fatalf("zero-dimension viewport resize must not dirty the cache")
	}
}

func TestCameraSettingSameValueDoesNotDirty(t *testing.T) {
	c := NewPerspectiveCamera(math.Pi/4, 0.1, 100)
	c.recompute()
	c.SetPosition(lin.V3{})
	if c.dirty {
		t.Fatalf("setting position to its current value must not dirty the cache")
	}
	c.SetPosition(lin.V3{X: 1})
	if !c.dirty {
		t.Fatalf("setting a new position must dirty the cache")
	}
}

func TestCameraViewProjectionRecomputesLazily(t *testing.T) {
	c := NewOrthographicCamera(5, -1, 1)
	c.SetViewportSize(800, 600)
	vp1 := *c.ViewProjection()
	if c.dirty {
		t.Fatalf("ViewProjection must clear the dirty flag")
	}
	vp2 := *c.ViewProjection()
	if !vp1.Aeq(&vp2) {
		t.Fatalf("repeated ViewProjection calls without mutation must be stable")
	}
}
