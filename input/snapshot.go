// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package input holds the per-frame keyboard/mouse snapshot systems query
// through Snapshot (§4.L). Unlike the teacher's own device/input.go, which
// aggregates a native event stream across goroutines and channels into a
// Pressed structure, window/event-loop integration is out of scope here:
// the host owns that transport and calls Set* once per frame before
// Scene.OnUpdateRuntime. Snapshot itself is a plain, synchronous value.
package input

// Snapshot is the read-only-during-update view of input state. Key and
// mouse button codes are caller-defined strings, following the teacher's
// own Pressed.Down map[string]int convention rather than inventing a
// platform-specific key-code enum this core has no business owning.
type Snapshot struct {
	down    map[string]int
	mouseX  float64
	mouseY  float64
	hasMove bool
}

// NewSnapshot returns an empty snapshot with nothing pressed.
func NewSnapshot() *Snapshot {
	return &Snapshot{down: make(map[string]int)}
}

// SetKeyDown records code as held, starting its press duration at 1 if it
// was not already down.
func (s *Snapshot) SetKeyDown(code string) {
	if _, ok := s.down[code]; !ok {
		s.down[code] = 1
	}
}

// SetKeyUp records code as released.
func (s *Snapshot) SetKeyUp(code string) {
	delete(s.down, code)
}

// Tick ages every currently-held code's press duration by one frame. The
// host calls this once per frame, before applying the frame's Set* calls,
// mirroring the teacher's updateDurations step.
func (s *Snapshot) Tick() {
	for code, d := range s.down {
		s.down[code] = d + 1
	}
}

// SetMousePosition records the mouse position for this frame, in host
// window coordinates.
func (s *Snapshot) SetMousePosition(x, y float64) {
	s.mouseX, s.mouseY = x, y
	s.hasMove = true
}

// IsKeyPressed reports whether code is currently held.
func (s *Snapshot) IsKeyPressed(code string) bool {
	_, ok := s.down[code]
	return ok
}

// IsMouseButtonPressed reports whether button (a code in the same space as
// keys) is currently held.
func (s *Snapshot) IsMouseButtonPressed(button string) bool {
	return s.IsKeyPressed(button)
}

// PressDuration returns how many frames code has been continuously held,
// or 0 if it is not currently down.
func (s *Snapshot) PressDuration(code string) int {
	return s.down[code]
}

// MousePosition returns the last recorded mouse position.
func (s *Snapshot) MousePosition() (x, y float64) {
	return s.mouseX, s.mouseY
}

// Reset clears all held keys/buttons without touching mouse position,
// useful when a window loses focus and the host can no longer trust which
// keys are still physically down.
func (s *Snapshot) Reset() {
	s.down = make(map[string]int)
}
