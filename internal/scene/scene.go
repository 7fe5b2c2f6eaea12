// Package scene is a small analytic geometry pass: it ray-casts spheres
// and a ground plane into a G-buffer and an occlusion-ID buffer so the
// deferred passes have something to light.
package scene

import (
	"context"
	"fmt"
	"math"

	"deferred-renderer/internal/gbuffer"
	"deferred-renderer/internal/mathutil"
	"deferred-renderer/internal/parallel"
	"deferred-renderer/internal/pipeline"
)

// Camera is a look-at pinhole camera. FOV is vertical, in degrees.
type Camera struct {
	Position mathutil.Vec3 `json:"position"`
	Target   mathutil.Vec3 `json:"target"`
	Up       mathutil.Vec3 `json:"up"`
	FOV      float64       `json:"fov"`
}

func (c Camera) View() mathutil.Mat4 {
	up := c.Up
	if up.IsZero() {
		up = mathutil.Vec3{0, 1, 0}
	}
	return mathutil.LookAt(c.Position, c.Target, up)
}

func (c Camera) FOVRadians() float64 {
	if c.FOV <= 0 {
		return mathutil.Deg2Rad(60)
	}
	return mathutil.Deg2Rad(c.FOV)
}

// Params returns the camera part of a frame's parameters.
func (c Camera) Params(w, h int) pipeline.FrameParams {
	return pipeline.FrameParams{
		View:    c.View(),
		ViewPos: c.Position,
		FOV:     c.FOVRadians(),
		Width:   w,
		Height:  h,
	}
}

type Material struct {
	Albedo    mathutil.Vec3 `json:"albedo"`
	Roughness float64       `json:"roughness"`
	Metallic  float64       `json:"metallic"`
}

type Sphere struct {
	ID       uint8         `json:"id"`
	Center   mathutil.Vec3 `json:"center"`
	Radius   float64       `json:"radius"`
	Material Material      `json:"material"`
}

// Plane is an infinite plane, or a disc around Point when Extent > 0.
type Plane struct {
	ID       uint8         `json:"id"`
	Point    mathutil.Vec3 `json:"point"`
	Normal   mathutil.Vec3 `json:"normal"`
	Extent   float64       `json:"extent"`
	Material Material      `json:"material"`
}

type Scene struct {
	Spheres []Sphere `json:"spheres"`
	Ground  *Plane   `json:"ground,omitempty"`
}

// Default is three spheres spanning the material space on a grey floor.
func Default() Scene {
	return Scene{
		Spheres: []Sphere{
			{ID: 40, Center: mathutil.Vec3{-2.2, 1, 0}, Radius: 1,
				Material: Material{Albedo: mathutil.Vec3{0.8, 0.2, 0.15}, Roughness: 0.9}},
			{ID: 80, Center: mathutil.Vec3{0, 1, 0}, Radius: 1,
				Material: Material{Albedo: mathutil.Vec3{0.95, 0.75, 0.35}, Roughness: 0.3, Metallic: 1}},
			{ID: 120, Center: mathutil.Vec3{2.2, 1, 0}, Radius: 1,
				Material: Material{Albedo: mathutil.Vec3{0.2, 0.4, 0.8}, Roughness: 0.1}},
		},
		Ground: &Plane{
			ID: 200, Normal: mathutil.Vec3{0, 1, 0}, Extent: 12,
			Material: Material{Albedo: mathutil.Splat(0.5), Roughness: 0.8},
		},
	}
}

// Hit is the closest surface along a ray.
type Hit struct {
	T        float64
	Position mathutil.Vec3
	Normal   mathutil.Vec3
	ID       uint8
	Material Material
}

const tMin = 1e-4

func (s Sphere) intersect(origin, dir mathutil.Vec3, tMax float64) (float64, bool) {
	oc := origin.Sub(s.Center)
	halfB := oc.Dot(dir)
	c := oc.Dot(oc) - s.Radius*s.Radius
	disc := halfB*halfB - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := -halfB - sq
	if t < tMin || t > tMax {
		t = -halfB + sq
		if t < tMin || t > tMax {
			return 0, false
		}
	}
	return t, true
}

func (p Plane) intersect(origin, dir mathutil.Vec3, tMax float64) (float64, bool) {
	n := p.Normal.Normalize()
	denom := n.Dot(dir)
	if math.Abs(denom) < 1e-9 {
		return 0, false
	}
	t := p.Point.Sub(origin).Dot(n) / denom
	if t < tMin || t > tMax {
		return 0, false
	}
	if p.Extent > 0 && origin.Add(dir.Scale(t)).Sub(p.Point).Len() > p.Extent {
		return 0, false
	}
	return t, true
}

// Trace returns the closest hit along a unit direction.
func (sc Scene) Trace(origin, dir mathutil.Vec3) (Hit, bool) {
	best := Hit{T: math.Inf(1)}
	found := false
	for _, s := range sc.Spheres {
		if t, ok := s.intersect(origin, dir, best.T); ok {
			p := origin.Add(dir.Scale(t))
			best = Hit{T: t, Position: p, Normal: p.Sub(s.Center).Normalize(), ID: s.ID, Material: s.Material}
			found = true
		}
	}
	if g := sc.Ground; g != nil {
		if t, ok := g.intersect(origin, dir, best.T); ok {
			n := g.Normal.Normalize()
			if n.Dot(dir) > 0 {
				n = n.Scale(-1)
			}
			best = Hit{T: t, Position: origin.Add(dir.Scale(t)), Normal: n, ID: g.ID, Material: g.Material}
			found = true
		}
	}
	return best, found
}

// GBuffer ray-casts one sample per pixel. Missed pixels keep a zero normal.
func (sc Scene) GBuffer(ctx context.Context, cam Camera, w, h, workers int) (*gbuffer.GBuffer, error) {
	gb := gbuffer.New(w, h)
	p := cam.Params(w, h)
	err := parallel.ForRows(ctx, h, workers, func(y int) {
		for x := 0; x < w; x++ {
			hit, ok := sc.Trace(cam.Position, p.CameraRay(x, y))
			if !ok {
				continue
			}
			gb.Store(y*w+x, gbuffer.Texel{
				Position:  hit.Position,
				Normal:    hit.Normal,
				Albedo:    hit.Material.Albedo,
				Roughness: hit.Material.Roughness,
				Metallic:  hit.Material.Metallic,
			})
		}
	})
	if err != nil {
		return nil, fmt.Errorf("scene: gbuffer: %w", err)
	}
	return gb, nil
}

// Occlusion writes object ids at the occlusion buffer's own resolution,
// using the same camera aspect as the screen.
func (sc Scene) Occlusion(ctx context.Context, cam Camera, screenW, screenH, workers int) (*gbuffer.OcclusionBuffer, error) {
	occ := gbuffer.NewOcclusionBuffer(gbuffer.OcclusionWidth, gbuffer.OcclusionHeight)
	p := cam.Params(screenW, screenH)
	err := parallel.ForRows(ctx, occ.Height, workers, func(y int) {
		for x := 0; x < occ.Width; x++ {
			// map the texel center onto the screen's pixel grid
			sx := int((float64(x) + 0.5) / float64(occ.Width) * float64(screenW))
			sy := int((float64(y) + 0.5) / float64(occ.Height) * float64(screenH))
			if hit, ok := sc.Trace(cam.Position, p.CameraRay(sx, sy)); ok {
				occ.Set(x, y, hit.ID)
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("scene: occlusion: %w", err)
	}
	return occ, nil
}
