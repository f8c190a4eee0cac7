// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package ember

import (
	"fmt"
	"os"

	"github.com/galvanized-forge/ember/audio"
	"github.com/galvanized-forge/ember/math/lin"
	"github.com/galvanized-forge/ember/render"
	"gopkg.in/yaml.v3"
)

// BuiltinSystemConfig is the enable/priority-override shape shared by every
// built-in system's YAML entry (§4.O). Priority of 0 means "use the
// system's own package-level default"; a scene authored without any
// priority overrides behaves exactly like registering the systems in code.
type BuiltinSystemConfig struct {
	Enabled  bool  `yaml:"enabled"`
	Priority int32 `yaml:"priority"`
}

// PhysicsConfig is the physics proxy's YAML entry.
type PhysicsConfig struct {
	BuiltinSystemConfig `yaml:",inline"`
	SubstepSeconds      float64 `yaml:"substep_seconds"`
}

// AnimationConfig is the animation-playback system's YAML entry. It has no
// tunable parameters of its own; clips and state live on entities.
type AnimationConfig struct {
	BuiltinSystemConfig `yaml:",inline"`
}

// SpriteRenderConfig is the 2D rendering system's YAML entry.
type SpriteRenderConfig struct {
	BuiltinSystemConfig `yaml:",inline"`
}

// MeshRenderConfig is the 3D rendering system's YAML entry, carrying the
// single light's position, color, and shininess (§4.I).
type MeshRenderConfig struct {
	BuiltinSystemConfig `yaml:",inline"`
	LightPosition       [3]float64 `yaml:"light_position"`
	LightColor          [3]float32 `yaml:"light_color"`
	Shininess           float32    `yaml:"shininess"`
}

// AudioConfig is the audio-playback system's YAML entry.
type AudioConfig struct {
	BuiltinSystemConfig `yaml:",inline"`
}

// SchedulerConfig declaratively lists which built-in systems a scene should
// register, their priority overrides, and their tunable parameters,
// following gazed-vu's own separation of authored YAML configuration from
// code (load/shd.go's shader descriptor). It cannot, by itself, describe
// the host collaborators (a physics world, the shared renderers, an audio
// engine) those systems drive; RegisterBuiltins takes those separately as
// BuiltinDeps.
type SchedulerConfig struct {
	Physics      PhysicsConfig      `yaml:"physics"`
	Animation    AnimationConfig    `yaml:"animation"`
	SpriteRender SpriteRenderConfig `yaml:"sprite_render"`
	MeshRender   MeshRenderConfig   `yaml:"mesh_render"`
	Audio        AudioConfig        `yaml:"audio"`
}

// ParseSchedulerConfig decodes a SchedulerConfig from in-memory YAML bytes.
func ParseSchedulerConfig(data []byte) (*SchedulerConfig, error) {
	var cfg SchedulerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ember: scheduler config: %w", err)
	}
	return &cfg, nil
}

// LoadSchedulerConfig reads and parses a SchedulerConfig from a YAML file on
// disk.
func LoadSchedulerConfig(path string) (*SchedulerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ember: scheduler config: %w", err)
	}
	return ParseSchedulerConfig(data)
}

// BuiltinDeps bundles the host-provided collaborators the built-in systems
// need beyond what a SchedulerConfig can describe in plain YAML: a physics
// world to step, the shared 2D/3D renderers with their GPU resource cache
// and shaders, and an audio engine plus clip loader. A nil PhysicsWorld,
// Batch2D, Mesh3D, Resources or AudioEngine means the corresponding system
// is skipped even if its config entry is enabled, since RegisterBuiltins has
// nothing to drive it with. A nil ClipLoader falls back to DiskClipLoader.
type BuiltinDeps struct {
	PhysicsWorld PhysicsWorld

	Batch2D      *render.Batch2D
	SpriteShader render.ShaderHandle
	Mesh3D       *render.Mesh3D
	MeshShader   render.ShaderHandle
	Resources    *render.Resources

	AudioEngine audio.Audio
	ClipLoader  ClipLoader
}

// prioritySystem overrides a wrapped System's Priority while forwarding
// every other call, letting a SchedulerConfig priority entry reorder a
// built-in system without touching its package-level default constant.
type prioritySystem struct {
	System
	priority int32
}

func (p *prioritySystem) Priority() int32 { return p.priority }

// Dispose forwards to the wrapped system if it is itself a Disposer, so
// wrapping a per-scene system (PhysicsSystem) for a priority override
// doesn't silently drop its resource cleanup.
func (p *prioritySystem) Dispose(w *World) error {
	if d, ok := p.System.(Disposer); ok {
		return d.Dispose(w)
	}
	return nil
}

func withPriority(s System, override int32) System {
	if override == 0 {
		return s
	}
	return &prioritySystem{System: s, priority: override}
}

// RegisterBuiltins registers every system enabled in cfg against sched,
// using deps for the external collaborators YAML alone cannot describe. It
// follows §4.O's sharing rule: physics is scoped to this scene's own
// physics world and registered per-scene (disposed with the scene);
// animation, rendering, and audio are registered shared, since one instance
// of each legitimately serves every scene a host runs.
func (cfg *SchedulerConfig) RegisterBuiltins(sched *Scheduler, deps BuiltinDeps) error {
	if cfg.Physics.Enabled && deps.PhysicsWorld != nil {
		sys := withPriority(NewPhysicsSystem(deps.PhysicsWorld, cfg.Physics.SubstepSeconds), cfg.Physics.Priority)
		if err := sched.Register(sys, false); err != nil {
			return err
		}
	}
	if cfg.Animation.Enabled {
		sys := withPriority(NewAnimationSystem(), cfg.Animation.Priority)
		if err := sched.Register(sys, true); err != nil {
			return err
		}
	}
	if cfg.SpriteRender.Enabled && deps.Batch2D != nil && deps.Resources != nil {
		sys := withPriority(NewSpriteRenderSystem(deps.Batch2D, deps.Resources, deps.SpriteShader), cfg.SpriteRender.Priority)
		if err := sched.Register(sys, true); err != nil {
			return err
		}
	}
	if cfg.MeshRender.Enabled && deps.Mesh3D != nil && deps.Resources != nil {
		lp := cfg.MeshRender.LightPosition
		lightPos := lin.V3{X: lp[0], Y: lp[1], Z: lp[2]}
		sys := withPriority(NewMeshRenderSystem(deps.Mesh3D, deps.Resources, deps.MeshShader, lightPos, cfg.MeshRender.LightColor, cfg.MeshRender.Shininess), cfg.MeshRender.Priority)
		if err := sched.Register(sys, true); err != nil {
			return err
		}
	}
	if cfg.Audio.Enabled && deps.AudioEngine != nil {
		loader := deps.ClipLoader
		if loader == nil {
			loader = DiskClipLoader
		}
		sys := withPriority(NewAudioSystem(deps.AudioEngine, loader), cfg.Audio.Priority)
		if err := sched.Register(sys, true); err != nil {
			return err
		}
	}
	return nil
}

// SceneConfig is the top-level YAML descriptor for one scene: its viewport
// size and which built-in systems to register.
type SceneConfig struct {
	Name      string          `yaml:"name"`
	Viewport  [2]int          `yaml:"viewport"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ParseSceneConfig decodes a SceneConfig from in-memory YAML bytes.
func ParseSceneConfig(data []byte) (*SceneConfig, error) {
	var cfg SceneConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ember: scene config: %w", err)
	}
	return &cfg, nil
}

// LoadSceneConfig reads and parses a SceneConfig from a YAML file on disk.
func LoadSceneConfig(path string) (*SceneConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ember: scene config: %w", err)
	}
	return ParseSceneConfig(data)
}

// Apply sets scene's viewport size (if cfg specifies one) and registers its
// built-in systems per cfg.Scheduler, using deps for the collaborators YAML
// cannot describe.
func (cfg *SceneConfig) Apply(scene *Scene, deps BuiltinDeps) error {
	if cfg.Viewport[0] > 0 && cfg.Viewport[1] > 0 {
		scene.OnViewportResize(cfg.Viewport[0], cfg.Viewport[1])
	}
	return cfg.Scheduler.RegisterBuiltins(scene.Scheduler(), deps)
}
