// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package anim

import "testing"

func walkClip() Clip {
	return Clip{
		Name: "walk",
		FPS:  8,
		Frames: []Frame{
			{Source: Rect{0, 0, 16, 16}},
			{Source: Rect{16, 0, 16, 16}},
			{Source: Rect{32, 0, 16, 16}},
			{Source: Rect{48, 0, 16, 16}},
		},
	}
}

func TestAnimationRoundTrip(t *testing.T) {
	clip := walkClip()
	s := NewState()
	s.Play("walk")

	want := []int{1, 2, 3, 0, 1}
	for i, w := range want {
		res := Advance(&s, clip, 0.125)
		if !res.FrameChanged {
			t.Fatalf("advance %d: expected frame change", i)
		}
		if s.Frame != w {
			t.Fatalf("advance %d: frame got %d, want %d", i, s.Frame, w)
		}
	}
}

func TestAnimationClampsWhenNotLooping(t *testing.T) {
	clip := walkClip()
	s := NewState()
	s.Loop = false
	s.Play("walk")

	for i := 0; i < 3; i++ {
		Advance(&s, clip, 0.125)
	}
	if s.Frame != 3 {
		t.Fatalf("got frame %d, want 3 (last frame)", s.Frame)
	}
	if s.Playing {
		t.Fatalf("expected Playing=false after reaching the last frame without looping")
	}

	res := Advance(&s, clip, 0.125)
	if res.FrameChanged {
		t.Fatalf("advancing a paused-by-clamp state must not change frame")
	}
	if s.Frame != 3 {
		t.Fatalf("frame must stay clamped at 3, got %d", s.Frame)
	}
}

func TestAnimationEventLabelsEmittedOnce(t *testing.T) {
	clip := walkClip()
	clip.Frames[2].EventLabels = []string{"footstep"}
	s := NewState()
	s.Play("walk")

	var seen []string
	for i := 0; i < 3; i++ {
		res := Advance(&s, clip, 0.125)
		seen = append(seen, res.Events...)
	}
	if len(seen) != 1 || seen[0] != "footstep" {
		t.Fatalf("expected exactly one footstep event, got %v", seen)
	}
}

func TestAnimationPauseStopsAdvancing(t *testing.T) {
	clip := walkClip()
	s := NewState()
	s.Play("walk")
	s.Pause()
	res := Advance(&s, clip, 1.0)
	if res.FrameChanged || s.Frame != 0 {
		t.Fatalf("paused state must not advance, got frame %d changed=%v", s.Frame, res.FrameChanged)
	}
}
