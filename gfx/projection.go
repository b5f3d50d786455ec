package gfx

import (
	"github.com/achilleasa/orrery/types"
	"github.com/chewxy/math32"
)

// Minimum depth a point must have to be projected.
const minProjectionDepth float32 = 1e-6

// A Projection maps eye-space positions to window coordinates (origin at the
// top-left corner, y pointing down).
type Projection struct {
	halfW, halfH float32
	scale        float32
}

// Create a projection for the given view.
func NewProjection(v View) Projection {
	halfH := float32(v.Height) * 0.5
	tan := math32.Tan(v.FOV * 0.5)
	scale := float32(0)
	if tan > 0 {
		scale = halfH / tan
	}
	return Projection{
		halfW: float32(v.Width) * 0.5,
		halfH: halfH,
		scale: scale,
	}
}

// Project an eye-space point. The second return value is false for points
// behind the observer.
func (p Projection) Project(eye types.Vec3) (types.Vec2, bool) {
	depth := -eye[2]
	if depth < minProjectionDepth {
		return types.Vec2{}, false
	}
	return types.XY(
		p.halfW+eye[0]/depth*p.scale,
		p.halfH-eye[1]/depth*p.scale,
	), true
}

// Projected size in pixels of a length at the given positive depth.
func (p Projection) Size(length, depth float32) float32 {
	if depth < minProjectionDepth {
		return 0
	}
	return length / depth * p.scale
}

// Clip the segment a-b against the near plane. Returns false if the segment
// lies entirely behind it.
func ClipSegment(a, b types.Vec3, near float32) (types.Vec3, types.Vec3, bool) {
	if near < minProjectionDepth {
		near = minProjectionDepth
	}
	da, db := -a[2], -b[2]
	switch {
	case da < near && db < near:
		return a, b, false
	case da < near:
		a = lerpToDepth(b, a, near)
	case db < near:
		b = lerpToDepth(a, b, near)
	}
	return a, b, true
}

func lerpToDepth(in, out types.Vec3, depth float32) types.Vec3 {
	din, dout := -in[2], -out[2]
	t := (din - depth) / (din - dout)
	return in.Add(out.Sub(in).Mul(t))
}
