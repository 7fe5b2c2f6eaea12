package pipeline

import (
	"math"

	"deferred-renderer/internal/mathutil"
)

// FrameParams is the per-frame push-constant block. It is copied into each
// pass by value and never mutated once a frame is submitted.
type FrameParams struct {
	View    mathutil.Mat4 // world to view
	ViewPos mathutil.Vec3
	FOV     float64 // vertical field of view, radians
	Width   int
	Height  int
	Debug   DebugMode

	Exposure float64
	Vignette float64 // opacity in [0,1]

	// Near and Far bound the view depth that counts toward post-luma
	// metering.
	Near, Far float64

	Sun       mathutil.Vec3
	Turbidity float64
}

// Light is a point light with HDR color; falloff is inverse square.
type Light struct {
	Position mathutil.Vec3
	Color    mathutil.Vec3
}

// DirectionalLight shines along Direction (pointing away from the source).
type DirectionalLight struct {
	Direction mathutil.Vec3
	Color     mathutil.Vec3
}

// Enabled reports whether the light contributes anything.
func (d DirectionalLight) Enabled() bool {
	return !d.Color.IsZero() && !d.Direction.IsZero()
}

// ViewDepth is the distance of a world position in front of the camera.
func (p FrameParams) ViewDepth(pos mathutil.Vec3) float64 {
	return -p.View.MulPoint(pos)[2]
}

// CameraRay returns the world-space direction through the center of
// pixel (x, y).
func (p FrameParams) CameraRay(x, y int) mathutil.Vec3 {
	tanHalf := math.Tan(p.FOV / 2)
	aspect := float64(p.Width) / float64(p.Height)
	sx := (2*(float64(x)+0.5)/float64(p.Width) - 1) * aspect * tanHalf
	sy := (1 - 2*(float64(y)+0.5)/float64(p.Height)) * tanHalf
	dir := mathutil.Vec3{sx, sy, -1}
	return p.View.Rotation().Transpose().MulVec3(dir).Normalize()
}
