// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package glbackend

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"
	"unsafe"

	"github.com/galvanized-forge/ember/render"
	"github.com/go-gl/gl/v3.3-core/gl"
	_ "golang.org/x/image/bmp"
)

// glVertexArray tracks the GL object names backing one render.VertexArrayHandle,
// mirroring the teacher's own opengl.go practice of keeping the native ids
// needed to release a resource alongside its logical one.
type glVertexArray struct {
	vao, vbo, ebo uint32
	stride        int32
}

// Backend is the go-gl implementation of render.Backend. It tracks its own
// GL object tables since render.Backend's handle types are backend-opaque
// uint32s the render package never interprets itself (render/render.go).
type Backend struct {
	currentShader uint32 // track to avoid redundant UseProgram calls, per opengl.go

	vertexArrays map[render.VertexArrayHandle]*glVertexArray
	nextVA       render.VertexArrayHandle

	uniformLocations map[render.ShaderHandle]map[string]int32
}

// New returns an uninitialized Backend; call Init once a current GL context
// exists (after NewWindow).
func New() *Backend {
	return &Backend{
		vertexArrays:     make(map[render.VertexArrayHandle]*glVertexArray),
		uniformLocations: make(map[render.ShaderHandle]map[string]int32),
	}
}

// Init sets the fixed render state: depth testing, and alpha blending with
// SRC_ALPHA/ONE_MINUS_SRC_ALPHA. It does not load the GL function pointers;
// the window constructor calls gl.Init when it creates the context.
func (b *Backend) Init() error {
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	return nil
}

func (b *Backend) SetClearColor(r, g, b2, a float32) { gl.ClearColor(r, g, b2, a) }

func (b *Backend) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (b *Backend) SetLineWidth(w float32) { gl.LineWidth(w) }

func (b *Backend) DrawIndexed(va render.VertexArrayHandle, indexCount int) error {
	v, ok := b.vertexArrays[va]
	if !ok {
		return fmt.Errorf("glbackend: unknown vertex array %d", va)
	}
	gl.BindVertexArray(v.vao)
	gl.DrawElements(gl.TRIANGLES, int32(indexCount), gl.UNSIGNED_INT, gl.PtrOffset(0))
	return nil
}

func (b *Backend) DrawLines(va render.VertexArrayHandle, vertexCount int) error {
	v, ok := b.vertexArrays[va]
	if !ok {
		return fmt.Errorf("glbackend: unknown vertex array %d", va)
	}
	gl.BindVertexArray(v.vao)
	gl.DrawArrays(gl.LINES, 0, int32(vertexCount))
	return nil
}

// CompileShader compiles and links vertSrc/fragSrc, following opengl.go's
// bindShader compile-then-link-then-check-log sequence.
func (b *Backend) CompileShader(vertSrc, fragSrc string) (render.ShaderHandle, error) {
	vs, err := compileStage(gl.VERTEX_SHADER, vertSrc)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vs)

	fs, err := compileStage(gl.FRAGMENT_SHADER, fragSrc)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fs)

	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var length int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &length)
		log := strings.Repeat("\x00", int(length+1))
		gl.GetProgramInfoLog(program, length, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("glbackend: link failed: %s", log)
	}

	sh := render.ShaderHandle(program)
	b.uniformLocations[sh] = make(map[string]int32)
	return sh, nil
}

func compileStage(stage uint32, src string) (uint32, error) {
	shader := gl.CreateShader(stage)
	csrc, free := gl.Strs(src + "\x00")
	defer free()
	gl.ShaderSource(shader, 1, csrc, nil)
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var length int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &length)
		log := strings.Repeat("\x00", int(length+1))
		gl.GetShaderInfoLog(shader, length, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("glbackend: compile failed: %s", log)
	}
	return shader, nil
}

func (b *Backend) UseShader(sh render.ShaderHandle) {
	id := uint32(sh)
	if b.currentShader == id {
		return
	}
	gl.UseProgram(id)
	b.currentShader = id
}

func (b *Backend) uniformLocation(sh render.ShaderHandle, name string) int32 {
	locs := b.uniformLocations[sh]
	if loc, ok := locs[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(uint32(sh), gl.Str(name+"\x00"))
	locs[name] = loc
	return loc
}

func (b *Backend) SetUniformMat4(sh render.ShaderHandle, name string, m [16]float32) {
	gl.UniformMatrix4fv(b.uniformLocation(sh, name), 1, false, &m[0])
}

func (b *Backend) SetUniformMat3(sh render.ShaderHandle, name string, m [9]float32) {
	gl.UniformMatrix3fv(b.uniformLocation(sh, name), 1, false, &m[0])
}

func (b *Backend) SetUniformVec3(sh render.ShaderHandle, name string, v [3]float32) {
	gl.Uniform3f(b.uniformLocation(sh, name), v[0], v[1], v[2])
}

func (b *Backend) SetUniformVec4(sh render.ShaderHandle, name string, v [4]float32) {
	gl.Uniform4f(b.uniformLocation(sh, name), v[0], v[1], v[2], v[3])
}

func (b *Backend) SetUniformFloat(sh render.ShaderHandle, name string, v float32) {
	gl.Uniform1f(b.uniformLocation(sh, name), v)
}

func (b *Backend) SetUniformInt(sh render.ShaderHandle, name string, v int) {
	gl.Uniform1i(b.uniformLocation(sh, name), int32(v))
}

// DecodeTextureFile decodes path into RGBA8 pixels, flipping vertically so
// row 0 is the bottom row (OpenGL's texture-coordinate convention, per
// math/lin's own Y-increases-up comment in vector.go).
func (b *Backend) DecodeTextureFile(path string) ([]byte, int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, 0, 0, err
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		srcY := bounds.Min.Y + (h - 1 - y)
		for x := 0; x < w; x++ {
			r, g, bl, a := img.At(bounds.Min.X+x, srcY).RGBA()
			i := (y*w + x) * 4
			pixels[i+0] = byte(r >> 8)
			pixels[i+1] = byte(g >> 8)
			pixels[i+2] = byte(bl >> 8)
			pixels[i+3] = byte(a >> 8)
		}
	}
	return pixels, w, h, nil
}

func (b *Backend) UploadTexture(pixels []byte, w, h int) (render.TextureHandle, error) {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	return render.TextureHandle(tex), nil
}

func (b *Backend) SetTextureData(tex render.TextureHandle, pixels []byte, w, h int) error {
	gl.BindTexture(gl.TEXTURE_2D, uint32(tex))
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return nil
}

func (b *Backend) ReleaseTexture(tex render.TextureHandle) {
	if tex == 0 {
		return
	}
	id := uint32(tex)
	gl.DeleteTextures(1, &id)
}

func (b *Backend) BindTextureUnit(unit int, tex render.TextureHandle) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, uint32(tex))
}

// CreateVertexArray allocates a VAO with one interleaved VBO whose float32
// attributes have the spans given in attributeSpans, and an EBO sized for
// indexCapacity uint32 indices. Batch2D and the mesh-rendering system each
// pass their own layout (quad vertices vs. position/normal/texcoord/entity
// mesh vertices), so this makes no assumption about which one it is.
func (b *Backend) CreateVertexArray(attributeSpans []int32, indexCapacity int) (render.VertexArrayHandle, error) {
	var vao, vbo, ebo uint32
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)
	gl.GenBuffers(1, &ebo)

	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, 0, nil, gl.DYNAMIC_DRAW)
	if indexCapacity > 0 {
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, indexCapacity*4, nil, gl.STATIC_DRAW)
	}

	var strideFloats int32
	for _, span := range attributeSpans {
		strideFloats += span
	}
	stride := strideFloats * 4

	offset := 0
	attr := uint32(0)
	for _, span := range attributeSpans {
		gl.VertexAttribPointer(attr, span, gl.FLOAT, false, stride, gl.PtrOffset(offset))
		gl.EnableVertexAttribArray(attr)
		offset += int(span) * 4
		attr++
	}

	b.nextVA++
	handle := b.nextVA
	b.vertexArrays[handle] = &glVertexArray{vao: vao, vbo: vbo, ebo: ebo, stride: stride}
	return handle, nil
}

func (b *Backend) UploadVertexData(va render.VertexArrayHandle, data []byte) {
	v, ok := b.vertexArrays[va]
	if !ok || len(data) == 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, v.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data), unsafe.Pointer(&data[0]), gl.DYNAMIC_DRAW)
}

func (b *Backend) UploadIndexData(va render.VertexArrayHandle, indices []uint32) {
	v, ok := b.vertexArrays[va]
	if !ok || len(indices) == 0 {
		return
	}
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, v.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)
}

func (b *Backend) ReleaseVertexArray(va render.VertexArrayHandle) {
	v, ok := b.vertexArrays[va]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &v.vao)
	gl.DeleteBuffers(1, &v.vbo)
	gl.DeleteBuffers(1, &v.ebo)
	delete(b.vertexArrays, va)
}
