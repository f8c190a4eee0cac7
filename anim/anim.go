// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package anim implements frame-indexed 2D sprite-clip playback (§4.N).
// This is unrelated to the teacher's own animation.go, which poses a
// skeletal joint hierarchy from baked bone-transform frames — that model
// has no sub-texture rect or event-label concept and is out of scope here.
// The source-rect shape instead follows phanxgames-willow's atlas.go
// TextureRegion (a named rect within a packed atlas page).
package anim

import (
	"math"

	"golang.org/x/text/width"
)

// Rect is a source rectangle in atlas pixels, following willow's
// TextureRegion convention.
type Rect struct {
	X, Y, Width, Height int
}

// Frame is one step of a Clip: a source rect, a normalized 0..1 pivot, and
// zero or more event labels emitted exactly once when the frame becomes
// current.
type Frame struct {
	Source      Rect
	PivotX      float64
	PivotY      float64
	EventLabels []string
}

// Clip is a named, fixed-rate sequence of frames.
type Clip struct {
	Name   string
	FPS    float64
	Frames []Frame
}

// Duration returns the clip's length in seconds at its authored FPS.
func (c Clip) Duration() float64 {
	if c.FPS <= 0 {
		return 0
	}
	return float64(len(c.Frames)) / c.FPS
}

// Asset is a named set of clips an animation component references by name.
type Asset struct {
	Clips map[string]Clip
}

// State is the playback state carried on an entity's animation component.
type State struct {
	ClipName string
	Frame    int
	Elapsed  float64
	Playing  bool
	Loop     bool
	Speed    float64
}

// NewState returns a stopped state with nominal (1.0) speed and looping
// enabled, ready to Play a clip.
func NewState() State {
	return State{Speed: 1, Loop: true}
}

// Play starts (or restarts) playback of clipName from frame 0.
func (s *State) Play(clipName string) {
	s.ClipName = clipName
	s.Frame = 0
	s.Elapsed = 0
	s.Playing = true
}

// Pause freezes playback at the current frame.
func (s *State) Pause() { s.Playing = false }

// Resume continues playback from the current frame.
func (s *State) Resume() { s.Playing = true }

// Seek sets the playback position to elapsed seconds without recomputing
// Frame; the next Advance derives the frame from it. Used by an editor
// scrubbing the timeline.
func (s *State) Seek(elapsed float64) {
	s.Elapsed = elapsed
}

// AdvanceResult reports what changed during one Advance call, so a caller
// can decide whether to push a new sub-texture rect and emit events.
type AdvanceResult struct {
	FrameChanged bool
	NewFrame     int
	Events       []string
}

// Advance steps state by dt seconds against clip, returning whether the
// current frame index changed (and to what) and any event labels newly
// entered. State is mutated in place; clip is read only.
func Advance(s *State, clip Clip, dt float64) AdvanceResult {
	if !s.Playing || clip.FPS <= 0 || len(clip.Frames) == 0 {
		return AdvanceResult{}
	}
	prevFrame := s.Frame
	s.Elapsed += dt * s.Speed

	frameCount := len(clip.Frames)
	rawIndex := int(math.Floor(s.Elapsed * clip.FPS))

	var idx int
	if s.Loop {
		idx = ((rawIndex % frameCount) + frameCount) % frameCount
	} else {
		idx = rawIndex
		if idx >= frameCount-1 {
			idx = frameCount - 1
			s.Playing = false
		}
		if idx < 0 {
			idx = 0
		}
	}
	s.Frame = idx

	if idx == prevFrame {
		return AdvanceResult{}
	}
	return AdvanceResult{
		FrameChanged: true,
		NewFrame:     idx,
		Events:       normalizeLabels(clip.Frames[idx].EventLabels),
	}
}

// normalizeLabels folds each event label to its canonical (halfwidth)
// form, so a label authored in a fullwidth editor still matches a
// plain-ASCII comparison downstream (e.g. a HUD looking for "hit").
func normalizeLabels(labels []string) []string {
	if len(labels) == 0 {
		return nil
	}
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = width.Fold.String(l)
	}
	return out
}
