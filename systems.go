// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package ember

import (
	"log/slog"
	"math"
	"os"

	"github.com/galvanized-forge/ember/anim"
	"github.com/galvanized-forge/ember/audio"
	"github.com/galvanized-forge/ember/math/lin"
	"github.com/galvanized-forge/ember/render"
)

// Built-in system priorities (§4.O), ordered earliest-first: physics steps
// before anything reads a Transform this frame, animation writes its
// sub-texture rects before the renderers sample them, 2D draws before 3D
// (matching the teacher's own sprite-before-model layer order), and audio
// runs last since it only reacts to state already settled this frame.
const (
	PhysicsSystemPriority      int32 = 100
	AnimationSystemPriority    int32 = 200
	SpriteRenderSystemPriority int32 = 300
	MeshRenderSystemPriority   int32 = 400
	AudioSystemPriority        int32 = 500
)

// Sprite is a flat-colored or plain-textured 2D drawable (§4.H). An entity
// with both Sprite and SubTexture is not meaningful; SubTexture supersedes
// it for atlas-framed animation.
type Sprite struct {
	TexturePath string
	Color       [4]float32
}

// SubTexture is a 2D drawable sampling one named rect of a larger atlas
// (§4.N), the frame the animation system's playback advances. Region is
// normally written by AnimationSystem, not the host.
type SubTexture struct {
	TexturePath string
	Region      anim.Rect
	Color       [4]float32
}

// AnimationPlayer is the per-entity playback component driving an atlas
// Asset's clips into a SubTexture (§4.N).
type AnimationPlayer struct {
	Asset anim.Asset
	State anim.State
}

// ModelRenderer marks an entity's Mesh as eligible for 3D drawing and
// optionally overrides its material's diffuse texture (§4.I's
// override-then-own-then-white resolution chain).
type ModelRenderer struct {
	TextureOverridePath string
}

// PhysicsBody is the minimal surface the physics proxy needs from one body
// in an external physics engine: its world transform, read back into the
// entity's Transform every step. It deliberately does not model shapes,
// materials, or collision callbacks — those are internal to whatever engine
// is plugged in (§6 "their internals are out of scope").
type PhysicsBody interface {
	Position() lin.V3
	Rotation() lin.V3
}

// PhysicsWorld is the minimal surface the physics proxy needs from an
// external physics engine: the ability to advance it by a fixed substep.
type PhysicsWorld interface {
	Step(dt float64)
}

// RigidBody binds an entity's Transform to a PhysicsBody owned by an
// external physics world. The core never constructs a PhysicsBody itself;
// a host wires one in when it hands the body to the physics engine.
type RigidBody struct {
	Body PhysicsBody
}

// PhysicsSystem steps an external physics world at a fixed substep and
// writes the resulting transforms back onto every entity with a RigidBody
// (§4.O item 2). It is per-scene and disposable: a scene's physics world
// does not outlive the scene.
type PhysicsSystem struct {
	world PhysicsWorld

	substep     float64
	accumulated float64

	log *slog.Logger
}

// NewPhysicsSystem returns a physics proxy stepping world at a fixed
// substep of substepSeconds per tick, accumulating any fractional frame
// time the way a fixed-timestep simulation must to stay independent of
// frame rate.
func NewPhysicsSystem(world PhysicsWorld, substepSeconds float64) *PhysicsSystem {
	return &PhysicsSystem{
		world:   world,
		substep: substepSeconds,
		log:     slog.Default().With("component", "physics_system"),
	}
}

func (s *PhysicsSystem) Priority() int32 { return PhysicsSystemPriority }

func (s *PhysicsSystem) Init(w *World) error { return nil }

// Update advances the physics world by as many fixed substeps as dt has
// accumulated, then copies every RigidBody's current pose into its
// Transform. A world with no substep configured (substep <= 0) never steps,
// so a scene can register this system before a physics world exists.
func (s *PhysicsSystem) Update(w *World, dt float64) error {
	if s.world != nil && s.substep > 0 {
		s.accumulated += dt
		for s.accumulated >= s.substep {
			s.world.Step(s.substep)
			s.accumulated -= s.substep
		}
	}
	for e, body := range View[RigidBody](w) {
		if body.Body == nil {
			continue
		}
		t, err := GetComponent[Transform](w, e)
		if err != nil {
			continue
		}
		t.Translation = body.Body.Position()
		t.Rotation = body.Body.Rotation()
		if err := SetComponent(w, e, t); err != nil {
			s.log.Error("write back physics transform failed", "entity", e, "err", err)
		}
	}
	return nil
}

func (s *PhysicsSystem) Shutdown(w *World) error { return nil }

// Dispose releases this system's physics world reference. The world itself
// is owned and torn down by whatever host constructed it.
func (s *PhysicsSystem) Dispose(w *World) error {
	s.world = nil
	return nil
}

// AnimationSystem advances every entity's AnimationPlayer and, on a frame
// change, writes the new atlas rect into its SubTexture and reports any
// event labels the newly entered frame carries (§4.N, §4.O item 3). It is
// shared: one instance serves every scene.
type AnimationSystem struct {
	// OnAnimationEvent, if set, is called once per event label newly
	// entered this tick, after the SubTexture has already been updated.
	OnAnimationEvent func(e Entity, clipName, label string)

	log *slog.Logger
}

// NewAnimationSystem returns an animation-playback system.
func NewAnimationSystem() *AnimationSystem {
	return &AnimationSystem{log: slog.Default().With("component", "animation_system")}
}

func (s *AnimationSystem) Priority() int32 { return AnimationSystemPriority }

func (s *AnimationSystem) Init(w *World) error { return nil }

func (s *AnimationSystem) Update(w *World, dt float64) error {
	for e, player := range View[AnimationPlayer](w) {
		clip, ok := player.Asset.Clips[player.State.ClipName]
		if !ok {
			continue
		}
		result := anim.Advance(&player.State, clip, dt)
		if err := SetComponent(w, e, player); err != nil {
			s.log.Error("write back animation state failed", "entity", e, "err", err)
			continue
		}
		if !result.FrameChanged {
			continue
		}
		if sub, ok := TryGetComponent[SubTexture](w, e); ok {
			sub.Region = clip.Frames[result.NewFrame].Source
			if err := SetComponent(w, e, sub); err != nil {
				s.log.Error("write back sub_texture region failed", "entity", e, "err", err)
			}
		}
		if s.OnAnimationEvent != nil {
			for _, label := range result.Events {
				s.OnAnimationEvent(e, player.State.ClipName, label)
			}
		}
	}
	return nil
}

func (s *AnimationSystem) Shutdown(w *World) error { return nil }

// EditRenderSystem is implemented by the built-in rendering systems that
// can be pumped directly against an explicit camera while a scene is in
// Edit state (§4.D), bypassing primary-camera discovery entirely. Scene
// calls this through Scheduler.UpdateEditRenderSystems rather than the
// ordinary Update hook.
type EditRenderSystem interface {
	UpdateEdit(w *World, editorCamera *Camera) error
}

// SpriteRenderSystem draws every transform+sprite and transform+sub_texture
// entity through a shared Batch2D (§4.O item 4). It is shared across scenes,
// the same as the teacher's single renderer instance drawing every model
// bound to it.
type SpriteRenderSystem struct {
	batch     *render.Batch2D
	resources *render.Resources
	shader    render.ShaderHandle

	fallbackCamera *Camera

	log *slog.Logger
}

// NewSpriteRenderSystem returns a 2D rendering system drawing through batch,
// resolving textures via resources, using shader for every draw.
func NewSpriteRenderSystem(batch *render.Batch2D, resources *render.Resources, shader render.ShaderHandle) *SpriteRenderSystem {
	return &SpriteRenderSystem{
		batch:     batch,
		resources: resources,
		shader:    shader,
		log:       slog.Default().With("component", "sprite_render_system"),
	}
}

func (s *SpriteRenderSystem) Priority() int32 { return SpriteRenderSystemPriority }

func (s *SpriteRenderSystem) Init(w *World) error { return nil }

// SetFallbackCamera installs the camera 2D rendering falls back to when no
// primary camera exists (§4.D). A Scene wires its editor camera in here
// whenever SetEditorCamera is called.
func (s *SpriteRenderSystem) SetFallbackCamera(cam *Camera) { s.fallbackCamera = cam }

// Update draws every Sprite and SubTexture entity against the scene's
// primary camera (§4.D), falling back to the installed fallback (editor)
// camera if no primary camera exists. With neither available, 2D drawing
// is skipped entirely for the frame.
func (s *SpriteRenderSystem) Update(w *World, dt float64) error {
	cam := primaryCamera(w)
	if cam == nil {
		cam = s.fallbackCamera
	}
	if cam == nil {
		return nil
	}
	return s.draw(w, cam)
}

// UpdateEdit draws against editorCamera unconditionally, for Scene's edit
// pump (§4.D); it ignores primary-camera discovery and the fallback camera
// installed via SetFallbackCamera.
func (s *SpriteRenderSystem) UpdateEdit(w *World, editorCamera *Camera) error {
	if editorCamera == nil {
		return nil
	}
	return s.draw(w, editorCamera)
}

func (s *SpriteRenderSystem) draw(w *World, cam *Camera) error {
	s.batch.BeginScene(s.shader, cam.ViewProjection())

	for e, sprite := range View[Sprite](w) {
		t, err := GetComponent[Transform](w, e)
		if err != nil {
			continue
		}
		tex, err := s.resolveSpriteTexture(sprite.TexturePath)
		if err != nil {
			s.log.Error("resolve sprite texture failed", "entity", e, "path", sprite.TexturePath, "err", err)
			continue
		}
		if err := s.batch.DrawSprite(t.Translation, t.Scale.X, t.Scale.Y, t.Rotation.Z, tex, sprite.Color, int32(e)); err != nil {
			s.log.Error("draw sprite failed", "entity", e, "err", err)
		}
	}

	for e, sub := range View[SubTexture](w) {
		t, err := GetComponent[Transform](w, e)
		if err != nil {
			continue
		}
		tex, err := s.resolveSpriteTexture(sub.TexturePath)
		if err != nil {
			s.log.Error("resolve sub_texture texture failed", "entity", e, "path", sub.TexturePath, "err", err)
			continue
		}
		uv0, uv1 := atlasUV(s.resources, sub.TexturePath, sub.Region)
		size := lin.V2{X: t.Scale.X, Y: t.Scale.Y}
		if err := s.batch.DrawQuadRegion(t.Translation, size, t.Rotation.Z, uv0, uv1, sub.Color, tex, int32(e)); err != nil {
			s.log.Error("draw sub_texture failed", "entity", e, "err", err)
		}
	}

	return s.batch.EndScene()
}

func (s *SpriteRenderSystem) resolveSpriteTexture(path string) (render.TextureHandle, error) {
	if path == "" {
		return s.resources.WhiteTexture(), nil
	}
	return s.resources.TextureFromFile(path)
}

// atlasUV converts region (in atlas pixels) into normalized 0..1 UV bounds
// for path's loaded texture, following willow's TextureRegion convention
// (§4.N). A texture that hasn't been loaded yet (size unknown) falls back
// to the full 0..1 rect rather than dividing by zero.
func atlasUV(resources *render.Resources, path string, region anim.Rect) (uv0, uv1 lin.V2) {
	width, height, ok := resources.TextureSize(path)
	if !ok || width == 0 || height == 0 {
		return lin.V2{X: 0, Y: 0}, lin.V2{X: 1, Y: 1}
	}
	u0 := float64(region.X) / float64(width)
	v0 := float64(region.Y) / float64(height)
	u1 := float64(region.X+region.Width) / float64(width)
	v1 := float64(region.Y+region.Height) / float64(height)
	return lin.V2{X: u0, Y: v0}, lin.V2{X: u1, Y: v1}
}

func (s *SpriteRenderSystem) Shutdown(w *World) error { return nil }

// MeshRenderSystem draws every transform+mesh+model_renderer entity through
// a shared Mesh3D (§4.O item 5), lazily uploading each Mesh's GPU buffers on
// its first frame (ensure_gpu_initialized).
type MeshRenderSystem struct {
	mesh3D    *render.Mesh3D
	resources *render.Resources
	shader    render.ShaderHandle

	lightPos   lin.V3
	lightColor [3]float32
	shininess  float32

	log *slog.Logger
}

// NewMeshRenderSystem returns a 3D rendering system drawing through mesh3D,
// resolving textures and vertex arrays via resources, lighting every model
// with a single light at lightPos/lightColor and shininess.
func NewMeshRenderSystem(mesh3D *render.Mesh3D, resources *render.Resources, shader render.ShaderHandle, lightPos lin.V3, lightColor [3]float32, shininess float32) *MeshRenderSystem {
	return &MeshRenderSystem{
		mesh3D:     mesh3D,
		resources:  resources,
		shader:     shader,
		lightPos:   lightPos,
		lightColor: lightColor,
		shininess:  shininess,
		log:        slog.Default().With("component", "mesh_render_system"),
	}
}

func (s *MeshRenderSystem) Priority() int32 { return MeshRenderSystemPriority }

func (s *MeshRenderSystem) Init(w *World) error { return nil }

// Update draws every Mesh+ModelRenderer entity against the scene's primary
// camera. Unlike 2D rendering, 3D rendering has no runtime editor-camera
// fallback (§4.D): with no primary camera, 3D drawing is simply skipped
// this frame. UpdateEdit still pumps 3D drawing against the editor camera
// explicitly while a scene is in Edit state.
func (s *MeshRenderSystem) Update(w *World, dt float64) error {
	cam := primaryCamera(w)
	if cam == nil {
		return nil
	}
	return s.draw(w, cam)
}

// UpdateEdit draws against editorCamera unconditionally, for Scene's edit
// pump (§4.D).
func (s *MeshRenderSystem) UpdateEdit(w *World, editorCamera *Camera) error {
	if editorCamera == nil {
		return nil
	}
	return s.draw(w, editorCamera)
}

func (s *MeshRenderSystem) draw(w *World, cam *Camera) error {
	s.mesh3D.BeginScene(s.shader, cam.ViewProjection(), cam.Position(), s.lightPos, s.lightColor, s.shininess)

	for e, mesh := range View[*Mesh](w) {
		renderer, ok := TryGetComponent[ModelRenderer](w, e)
		if !ok {
			continue
		}
		t, err := GetComponent[Transform](w, e)
		if err != nil {
			continue
		}
		va, indexCount, err := s.ensureGPUInitialized(mesh)
		if err != nil {
			s.log.Error("mesh gpu init failed", "entity", e, "err", err)
			continue
		}
		overrideTex, err := s.resolveTexture(renderer.TextureOverridePath)
		if err != nil {
			s.log.Error("resolve model override texture failed", "entity", e, "err", err)
			continue
		}
		ownTex, err := s.resolveTexture(mesh.Material.DiffusePath)
		if err != nil {
			s.log.Error("resolve mesh material texture failed", "entity", e, "err", err)
			continue
		}
		tex := render.ResolveTexture(overrideTex, ownTex, s.resources.WhiteTexture())
		useTexture := tex != s.resources.WhiteTexture()
		if err := s.mesh3D.DrawModel(va, indexCount, t.Model(), t.NormalMatrix(), mesh.Material.BaseColor, useTexture, tex, int32(e)); err != nil {
			s.log.Error("draw model failed", "entity", e, "err", err)
		}
	}

	s.mesh3D.EndScene()
	return nil
}

func (s *MeshRenderSystem) resolveTexture(path string) (render.TextureHandle, error) {
	if path == "" {
		return 0, nil
	}
	return s.resources.TextureFromFile(path)
}

// ensureGPUInitialized uploads mesh's CPU vertex/index data to a fresh
// vertex array the first time it is drawn, then remembers the handle on the
// Mesh itself (§4.I ensure_gpu_initialized) so later frames skip the upload.
func (s *MeshRenderSystem) ensureGPUInitialized(mesh *Mesh) (render.VertexArrayHandle, int, error) {
	if mesh.GPUInitialized() {
		return mesh.GPUHandle().(render.VertexArrayHandle), len(mesh.Indices), nil
	}
	va, err := s.resources.CreateVertexArray(meshVertexAttributes, len(mesh.Indices))
	if err != nil {
		return 0, 0, err
	}
	s.resources.UploadVertexData(va, packMeshVertices(mesh.Vertices))
	s.resources.UploadIndexData(va, mesh.Indices)
	mesh.MarkGPUInitialized(va)
	return va, len(mesh.Indices), nil
}

// meshVertexAttributes is Vertex's interleaved attribute layout:
// position(3) normal(3) texcoord(2) entity-id(1).
var meshVertexAttributes = []int32{3, 3, 2, 1}

// meshVertexStride is the byte width of one packed Vertex.
const meshVertexStride = (3 + 3 + 2 + 1) * 4

func packMeshVertices(vs []Vertex) []byte {
	buf := make([]byte, 0, len(vs)*meshVertexStride)
	for _, v := range vs {
		buf = appendFloat32LE(buf,
			float32(v.Position.X), float32(v.Position.Y), float32(v.Position.Z),
			float32(v.Normal.X), float32(v.Normal.Y), float32(v.Normal.Z),
			float32(v.TexCoord.X), float32(v.TexCoord.Y),
			float32(v.EntityID),
		)
	}
	return buf
}

func appendFloat32LE(buf []byte, vs ...float32) []byte {
	for _, v := range vs {
		bits := math.Float32bits(v)
		buf = append(buf, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
	}
	return buf
}

func (s *MeshRenderSystem) Shutdown(w *World) error { return nil }

// primaryCamera finds the first camera marked primary, in registration
// order, mirroring Scene.PrimaryCamera's own lookup — duplicated here
// rather than taking a *Scene, since a System only ever sees the *World.
func primaryCamera(w *World) *Camera {
	for _, cam := range View[*Camera](w) {
		if cam.IsPrimary() {
			return cam
		}
	}
	return nil
}

// ClipLoader resolves a Source.ClipPath into raw sound data ready for
// audio.Audio.BindSound. Injected so tests can substitute an in-memory
// loader instead of touching the filesystem.
type ClipLoader func(path string) (*audio.Data, error)

// DiskClipLoader reads path as a WAV file from the local filesystem, the
// default ClipLoader a host uses outside of tests.
func DiskClipLoader(path string) (*audio.Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return audio.LoadWav(path, f)
}

// AudioSystem listens for component add/remove on audio sources and drives
// their play/pause/stop state into an external Audio engine (§4.O item 6).
// It is shared across scenes, the same as the rendering systems.
type AudioSystem struct {
	engine   audio.Audio
	loadClip ClipLoader

	dataCache map[string]*audio.Data
	bound     map[Entity]uint64

	log *slog.Logger
}

// NewAudioSystem returns an audio-playback system driving engine, resolving
// each Source's ClipPath through loadClip.
func NewAudioSystem(engine audio.Audio, loadClip ClipLoader) *AudioSystem {
	return &AudioSystem{
		engine:    engine,
		loadClip:  loadClip,
		dataCache: make(map[string]*audio.Data),
		bound:     make(map[Entity]uint64),
		log:       slog.Default().With("component", "audio_system"),
	}
}

func (s *AudioSystem) Priority() int32 { return AudioSystemPriority }

func (s *AudioSystem) Init(w *World) error { return s.engine.Init() }

// Update drains the world's component-added queue to notice freshly added
// audio.Source/audio.Listener components, places the listener, and drives
// every source's own Play/Pause/Stop state machine into the engine.
//
// The engine interface (audio.Audio) has no per-sound pause primitive —
// only bind/play/release — so Paused is adapted as a logical-only state:
// it stops the engine voice the same as Stopped, but leaves the Source's
// bound sound handle released rather than resumable, and a subsequent Play
// call re-binds and re-plays from the top. This is a deliberate narrowing,
// not an oversight: the core only specifies that play/pause/stop reach the
// engine, not that pause be sample-accurate resumable.
func (s *AudioSystem) Update(w *World, dt float64) error {
	for _, evt := range w.drainComponentAdded() {
		if evt.Type == typeOf[audio.Listener]() {
			if listener, ok := TryGetComponent[audio.Listener](w, evt.Entity); ok && listener.Active {
				if t, err := GetComponent[Transform](w, evt.Entity); err == nil {
					s.engine.PlaceListener(t.Translation.X, t.Translation.Y, t.Translation.Z)
				}
			}
		}
	}

	for e, source := range View[audio.Source](w) {
		sound, isBound := s.bound[e]
		switch source.State() {
		case audio.Playing:
			if !isBound {
				data, ok := s.dataCache[source.ClipPath]
				if !ok {
					var err error
					data, err = s.loadClip(source.ClipPath)
					if err != nil {
						s.log.Error("load clip failed", "entity", e, "clip", source.ClipPath, "err", err)
						continue
					}
					s.dataCache[source.ClipPath] = data
				}
				var soundRef, buffRef uint64
				if err := s.engine.BindSound(&soundRef, &buffRef, data); err != nil {
					s.log.Error("bind sound failed", "entity", e, "clip", source.ClipPath, "err", err)
					continue
				}
				s.bound[e] = soundRef
				sound = soundRef
			}
			x, y, z := 0.0, 0.0, 0.0
			if t, err := GetComponent[Transform](w, e); err == nil {
				x, y, z = t.Translation.X, t.Translation.Y, t.Translation.Z
			}
			s.engine.SetSourceGain(sound, source.Volume())
			s.engine.SetSourcePitch(sound, source.Pitch())
			if source.Is3D {
				s.engine.SetSourceDistance(sound, source.MinDistance, source.MaxDistance)
			}
			s.engine.PlaySound(sound, x, y, z)
		case audio.Paused, audio.Stopped:
			if isBound {
				s.engine.ReleaseSound(sound)
				delete(s.bound, e)
			}
		}
	}
	return nil
}

func (s *AudioSystem) Shutdown(w *World) error {
	for e, sound := range s.bound {
		s.engine.ReleaseSound(sound)
		delete(s.bound, e)
	}
	s.engine.Dispose()
	return nil
}
