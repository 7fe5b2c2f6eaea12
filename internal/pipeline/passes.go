package pipeline

import "context"

// The pass types declare their attachment sets for the frame graph.

type LightingPass struct{}

func (LightingPass) Name() string    { return "lighting" }
func (LightingPass) Reads() []string { return []string{AttachGBuffer, AttachEnv} }
func (LightingPass) Writes() []string {
	return []string{AttachDiffuse, AttachSpecular}
}
func (LightingPass) Execute(ctx context.Context, f *Frame) error { return Lighting(ctx, f) }

type ResolvePass struct{}

func (ResolvePass) Name() string { return "resolve" }
func (ResolvePass) Reads() []string {
	return []string{AttachGBuffer, AttachDiffuse, AttachSpecular}
}
func (ResolvePass) Writes() []string                            { return []string{AttachScene, AttachLuma} }
func (ResolvePass) Execute(ctx context.Context, f *Frame) error { return ResolveScene(ctx, f) }

type SkyPass struct{}

func (SkyPass) Name() string                                { return "sky" }
func (SkyPass) Reads() []string                             { return []string{AttachGBuffer, AttachScene} }
func (SkyPass) Writes() []string                            { return []string{AttachScene} }
func (SkyPass) Execute(ctx context.Context, f *Frame) error { return SkyDome(ctx, f) }

type PostPass struct{}

func (PostPass) Name() string { return "post" }
func (PostPass) Reads() []string {
	return []string{AttachGBuffer, AttachOcclusion, AttachDiffuse, AttachSpecular, AttachScene}
}
func (PostPass) Writes() []string                            { return []string{AttachOutput, AttachPostLuma} }
func (PostPass) Execute(ctx context.Context, f *Frame) error { return PostProcess(ctx, f) }
