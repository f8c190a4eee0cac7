// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package render

import "fmt"

// AttachmentFormat is the closed set of pixel formats a Framebuffer
// attachment may use (§4.J, §6).
type AttachmentFormat int

const (
	RGBA8 AttachmentFormat = iota
	RedInteger
	Depth24Stencil8
)

func (f AttachmentFormat) String() string {
	switch f {
	case RGBA8:
		return "RGBA8"
	case RedInteger:
		return "RED_INTEGER"
	case Depth24Stencil8:
		return "DEPTH24_STENCIL8"
	default:
		return "UnknownAttachmentFormat"
	}
}

// MaxFramebufferDimension is the largest width or height a Framebuffer may
// be created or resized to (§4.J).
const MaxFramebufferDimension = 8192

// NoEntityID is the sentinel returned by ReadPixel for a RedInteger
// attachment when the sampled texel carries no entity (background, or out
// of bounds).
const NoEntityID int32 = -1

// AttachmentDescriptor describes one Framebuffer attachment slot.
type AttachmentDescriptor struct {
	Format AttachmentFormat
}

// Framebuffer is an off-screen render target with one or more attachments,
// used for picking (an entity-id integer attachment, §4.J) and other
// render-to-texture passes. It is backed by an in-memory plane for the
// integer attachment so picking is testable without a live GPU context;
// color/depth attachments are descriptors only, with no storage behind them.
//
// Grounded on the teacher's layer.go ("an extra render pass where objects
// are drawn to an off screen texture"), generalized from vu's single
// fixed-purpose 1024x1024 image/shadow layer to an arbitrary attachment
// list with an integer entity-id attachment vu itself never implements.
type Framebuffer struct {
	width, height int
	attachments   []AttachmentDescriptor

	bound bool

	// entityPlanes holds one int32-per-pixel plane per RedInteger
	// attachment, indexed by attachment index into attachments (nil for
	// every other attachment); row-major from the bottom-left, mirroring
	// vu's texture-coordinate convention (Y increases up).
	entityPlanes [][]int32
}

// NewFramebuffer creates a framebuffer of the given size with the given
// attachments. width and height must be in (0, MaxFramebufferDimension];
// anything else is a DimensionOutOfRange error.
func NewFramebuffer(width, height int, attachments []AttachmentDescriptor) (*Framebuffer, error) {
	if width <= 0 || height <= 0 || width > MaxFramebufferDimension || height > MaxFramebufferDimension {
		return nil, &RendererError{Kind: DimensionOutOfRange, Code: width*100000 + height}
	}
	fb := &Framebuffer{width: width, height: height, attachments: attachments}
	fb.allocatePlanes()
	return fb, nil
}

func (fb *Framebuffer) allocatePlanes() {
	fb.entityPlanes = make([][]int32, len(fb.attachments))
	for i, a := range fb.attachments {
		if a.Format != RedInteger {
			continue
		}
		plane := make([]int32, fb.width*fb.height)
		for j := range plane {
			plane[j] = NoEntityID
		}
		fb.entityPlanes[i] = plane
	}
}

// integerPlane returns the entity-id plane backing attachmentIndex, or an
// error if the index is out of range or does not name a RedInteger
// attachment.
func (fb *Framebuffer) integerPlane(attachmentIndex int) ([]int32, error) {
	if attachmentIndex < 0 || attachmentIndex >= len(fb.attachments) {
		return nil, &RendererError{Kind: BackendCallFailed, Log: fmt.Sprintf("attachment index %d out of range", attachmentIndex)}
	}
	plane := fb.entityPlanes[attachmentIndex]
	if plane == nil {
		return nil, &RendererError{Kind: BackendCallFailed, Log: fmt.Sprintf("attachment %d is not a RED_INTEGER attachment", attachmentIndex)}
	}
	return plane, nil
}

// Width and Height return the framebuffer's current pixel dimensions.
func (fb *Framebuffer) Width() int  { return fb.width }
func (fb *Framebuffer) Height() int { return fb.height }

// Bind marks this framebuffer as the active render target.
func (fb *Framebuffer) Bind() { fb.bound = true }

// Unbind marks this framebuffer as no longer the active render target.
func (fb *Framebuffer) Unbind() { fb.bound = false }

// Bound reports whether this framebuffer is the currently active render
// target.
func (fb *Framebuffer) Bound() bool { return fb.bound }

// Resize reallocates the framebuffer's attachments to the new dimensions,
// discarding their previous contents. Resizing to the framebuffer's
// current size is a no-op. width/height out of (0, MaxFramebufferDimension]
// is a DimensionOutOfRange error and leaves the framebuffer unchanged.
func (fb *Framebuffer) Resize(width, height int) error {
	if width <= 0 || height <= 0 || width > MaxFramebufferDimension || height > MaxFramebufferDimension {
		return &RendererError{Kind: DimensionOutOfRange, Code: width*100000 + height}
	}
	if width == fb.width && height == fb.height {
		return nil
	}
	fb.width, fb.height = width, height
	fb.allocatePlanes()
	return nil
}

// WriteEntityID records entityID at pixel (x, y) of the RedInteger
// attachment at attachmentIndex, as a rendering pass writing an entity-id
// fragment would. Coordinates outside the framebuffer bounds are a
// PixelReadOutOfRange error; an attachmentIndex out of range or not naming
// a RedInteger attachment is a BackendCallFailed error.
func (fb *Framebuffer) WriteEntityID(attachmentIndex, x, y int, entityID int32) error {
	plane, err := fb.integerPlane(attachmentIndex)
	if err != nil {
		return err
	}
	idx, err := fb.pixelIndex(x, y)
	if err != nil {
		return err
	}
	plane[idx] = entityID
	return nil
}

// ReadPixel samples the RedInteger attachment at attachmentIndex, position
// (x, y), returning the entity id written there, or NoEntityID if nothing
// has been written. It is an error to call ReadPixel with an attachmentIndex
// that is out of range or does not name a RedInteger attachment, or with
// coordinates outside the framebuffer's bounds (§4.J).
func (fb *Framebuffer) ReadPixel(attachmentIndex, x, y int) (int32, error) {
	plane, err := fb.integerPlane(attachmentIndex)
	if err != nil {
		return 0, err
	}
	idx, err := fb.pixelIndex(x, y)
	if err != nil {
		return 0, err
	}
	return plane[idx], nil
}

func (fb *Framebuffer) pixelIndex(x, y int) (int, error) {
	if x < 0 || y < 0 || x >= fb.width || y >= fb.height {
		return 0, &RendererError{Kind: PixelReadOutOfRange, Log: fmt.Sprintf("(%d,%d) outside %dx%d", x, y, fb.width, fb.height)}
	}
	return y*fb.width + x, nil
}

// ClearAttachment resets every pixel of the RedInteger attachment at
// attachmentIndex to value, leaving other attachments untouched (§210). It
// is an error if attachmentIndex is out of range or does not name a
// RedInteger attachment.
func (fb *Framebuffer) ClearAttachment(attachmentIndex int, value int32) error {
	plane, err := fb.integerPlane(attachmentIndex)
	if err != nil {
		return err
	}
	for i := range plane {
		plane[i] = value
	}
	return nil
}
