package batch

import (
	"context"
	"fmt"
	"sync"

	"deferred-renderer/internal/config"
	"deferred-renderer/internal/envmap"
	"deferred-renderer/internal/gbuffer"
	"deferred-renderer/internal/mathutil"
	"deferred-renderer/internal/texture"
)

// Shared holds the inputs every job of a run reads: geometry is rendered
// once and only read by the passes, environment maps are immutable after
// baking.
type Shared struct {
	Config    *config.Config
	GBuffer   *gbuffer.GBuffer
	Occlusion *gbuffer.OcclusionBuffer
	// Env is set when the environment comes from an image.
	Env *envmap.Maps

	mu  sync.Mutex
	sky map[mathutil.Vec3]*envmap.Maps
}

// Prepare rasterizes the configured scene and loads a fixed environment.
// cfg must already be resolved and validated.
func Prepare(ctx context.Context, cfg *config.Config, images texture.Resolver) (*Shared, error) {
	w, h := cfg.Width*cfg.Supersample, cfg.Height*cfg.Supersample
	gb, err := cfg.Scene.GBuffer(ctx, cfg.Camera, w, h, cfg.Workers)
	if err != nil {
		return nil, err
	}
	occ, err := cfg.Scene.Occlusion(ctx, cfg.Camera, w, h, cfg.Workers)
	if err != nil {
		return nil, err
	}
	s := &Shared{Config: cfg, GBuffer: gb, Occlusion: occ, sky: make(map[mathutil.Vec3]*envmap.Maps)}

	if cfg.Env.Source == "image" {
		if images == nil {
			images = texture.NewCache(texture.BuildIndex(cfg.Env.Dir))
		}
		bake := cfg.BakeOptions()
		src, err := texture.Environment(images, cfg.Env.Image, bake.Width, cfg.Env.Intensity)
		if err != nil {
			return nil, fmt.Errorf("batch: environment: %w", err)
		}
		s.Env, err = envmap.Bake(ctx, envmap.FromMap(src), bake)
		if err != nil {
			return nil, fmt.Errorf("batch: environment: %w", err)
		}
	}
	return s, nil
}

// Environment returns the maps lighting a job with the sun at sun: the
// image environment when configured, otherwise the sky model baked once
// per sun direction. nil means no image-based lighting.
func (s *Shared) Environment(ctx context.Context, sun mathutil.Vec3) (*envmap.Maps, error) {
	cfg := s.Config
	switch {
	case s.Env != nil:
		return s.Env, nil
	case cfg.Env.Source != "sky":
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.sky[sun]; ok {
		return m, nil
	}
	m, err := envmap.Bake(ctx, envmap.FromSky(cfg.SkyModel(), sun), cfg.BakeOptions())
	if err != nil {
		return nil, fmt.Errorf("batch: bake sky: %w", err)
	}
	s.sky[sun] = m
	return m, nil
}
