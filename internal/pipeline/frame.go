// Package pipeline implements the deferred lighting passes: lighting,
// resolve, sky composite and post-process, plus the debug-view protocol
// they share. Every pass is a pure function of a Frame.
package pipeline

import (
	"fmt"

	"deferred-renderer/internal/envmap"
	"deferred-renderer/internal/gbuffer"
	"deferred-renderer/internal/sky"
)

// Attachment names used when declaring pass read/write sets.
const (
	AttachGBuffer   = "gbuffer"
	AttachOcclusion = "occlusion"
	AttachEnv       = "env"
	AttachDiffuse   = "diffuse"
	AttachSpecular  = "specular"
	AttachScene     = "scene"
	AttachLuma      = "luma"
	AttachPostLuma  = "postluma"
	AttachOutput    = "output"
)

// Frame carries one frame's parameters and attachments through the passes.
type Frame struct {
	Params FrameParams
	Lights []Light
	Sun    DirectionalLight

	GBuffer   *gbuffer.GBuffer
	Occlusion *gbuffer.OcclusionBuffer // optional
	Env       *envmap.Maps             // optional, nil disables IBL
	Sky       *sky.Atmosphere          // optional, nil leaves background black

	Diffuse  *gbuffer.Vec3Buffer
	Specular *gbuffer.Vec3Buffer
	Scene    *gbuffer.Vec3Buffer
	Luma     *gbuffer.LumaBuffer
	PostLuma *gbuffer.LumaBuffer
	Output   *gbuffer.Vec3Buffer

	// Workers bounds per-pass parallelism; 0 uses GOMAXPROCS.
	Workers int
}

// Targets are the attachments a frame writes, allocated once per size
// and reused across frames.
type Targets struct {
	Diffuse, Specular, Scene, Output *gbuffer.Vec3Buffer
	Luma, PostLuma                   *gbuffer.LumaBuffer
}

func NewTargets(w, h int) *Targets {
	return &Targets{
		Diffuse:  gbuffer.NewVec3Buffer(w, h),
		Specular: gbuffer.NewVec3Buffer(w, h),
		Scene:    gbuffer.NewVec3Buffer(w, h),
		Output:   gbuffer.NewVec3Buffer(w, h),
		Luma:     gbuffer.NewLumaBuffer(w, h),
		PostLuma: gbuffer.NewLumaBuffer(w, h),
	}
}

// Bind points the frame's outputs at t.
func (f *Frame) Bind(t *Targets) {
	f.Diffuse, f.Specular, f.Scene, f.Output = t.Diffuse, t.Specular, t.Scene, t.Output
	f.Luma, f.PostLuma = t.Luma, t.PostLuma
}

// Validate checks that the G-buffer and every output match the frame size.
func (f *Frame) Validate() error {
	if f.GBuffer == nil {
		return fmt.Errorf("pipeline: frame has no gbuffer")
	}
	if err := f.GBuffer.Validate(); err != nil {
		return err
	}
	w, h := f.Params.Width, f.Params.Height
	if f.GBuffer.Width != w || f.GBuffer.Height != h {
		return fmt.Errorf("pipeline: gbuffer %dx%d, frame %dx%d: %w",
			f.GBuffer.Width, f.GBuffer.Height, w, h, gbuffer.ErrSizeMismatch)
	}
	for name, b := range map[string]*gbuffer.Vec3Buffer{
		AttachDiffuse: f.Diffuse, AttachSpecular: f.Specular, AttachScene: f.Scene, AttachOutput: f.Output,
	} {
		if b == nil || b.Width != w || b.Height != h || len(b.Pix) != w*h*3 {
			return fmt.Errorf("pipeline: %s attachment: %w", name, gbuffer.ErrSizeMismatch)
		}
	}
	for name, b := range map[string]*gbuffer.LumaBuffer{AttachLuma: f.Luma, AttachPostLuma: f.PostLuma} {
		if b == nil || b.Width != w || b.Height != h || len(b.Pix) != w*h {
			return fmt.Errorf("pipeline: %s attachment: %w", name, gbuffer.ErrSizeMismatch)
		}
	}
	return nil
}
