// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package glbackend is the concrete go-gl/go-glfw implementation of
// render.Backend (§6), the reference backend the spec's abstraction is
// meant to be driven against. It follows the teacher's device package in
// spirit ("minimal platform/os access to a 3D rendering context and user
// input"), but delegates the platform layer to go-gl/glfw instead of the
// teacher's own os_darwin/os_windows cgo/native code, since that native
// layer is OS-source, not a Go dependency this exercise can reuse.
package glbackend

import (
	"fmt"

	"github.com/galvanized-forge/ember/input"
	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Window wraps a single GLFW window and its OpenGL context. Its Update
// loop is modeled on the teacher's device.Device: open once, then poll
// every frame for a Pressed-equivalent input.Snapshot and a swap.
type Window struct {
	handle  *glfw.Window
	input   *input.Snapshot
	resized bool
}

// NewWindow creates and opens an OS window with a current OpenGL 3.3 core
// context, following the device.New/Open two-step the teacher's Device
// interface documents (window creation separated from showing/polling).
func NewWindow(title string, width, height int) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glbackend: glfw.Init: %w", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	handle, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("glbackend: CreateWindow: %w", err)
	}
	handle.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("glbackend: gl.Init: %w", err)
	}

	w := &Window{handle: handle, input: input.NewSnapshot()}
	handle.SetKeyCallback(w.onKey)
	handle.SetCursorPosCallback(w.onCursorPos)
	handle.SetSizeCallback(w.onResize)
	return w, nil
}

func (w *Window) onKey(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	code := fmt.Sprintf("key-%d", int(key))
	switch action {
	case glfw.Press, glfw.Repeat:
		w.input.SetKeyDown(code)
	case glfw.Release:
		w.input.SetKeyUp(code)
	}
}

func (w *Window) onCursorPos(_ *glfw.Window, x, y float64) {
	w.input.SetMousePosition(x, y)
}

func (w *Window) onResize(_ *glfw.Window, width, height int) {
	w.resized = true
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Size returns the window's current framebuffer size.
func (w *Window) Size() (width, height int) {
	return w.handle.GetSize()
}

// Resized reports whether the window has been resized since the last
// call to Resized, then clears the flag.
func (w *Window) Resized() bool {
	r := w.resized
	w.resized = false
	return r
}

// ShouldClose reports whether the user requested the window be closed.
func (w *Window) ShouldClose() bool { return w.handle.ShouldClose() }

// PollEvents processes pending OS window/input events. It must be called
// once per frame, before reading Snapshot.
func (w *Window) PollEvents() {
	w.input.Tick()
	glfw.PollEvents()
}

// Snapshot returns the accumulated input state since the last Reset.
func (w *Window) Snapshot() *input.Snapshot { return w.input }

// SwapBuffers exchanges the front and back drawing buffers.
func (w *Window) SwapBuffers() { w.handle.SwapBuffers() }

// Dispose releases the window and terminates GLFW.
func (w *Window) Dispose() {
	w.handle.Destroy()
	glfw.Terminate()
}
