package scene

import "github.com/go-gl/mathgl/mgl64"

// A bounding sphere.
type Sphere struct {
	Center mgl64.Vec3
	Radius float64
}

// A bounding capsule: all points within Radius of the segment A-B.
type Capsule struct {
	A      mgl64.Vec3
	B      mgl64.Vec3
	Radius float64
}

// Build the capsule whose axis joins the first and last point and whose radius
// encloses every point plus the given padding. An empty point list yields a
// zero capsule.
func BoundCapsule(points []mgl64.Vec3, padding float64) Capsule {
	if len(points) == 0 {
		return Capsule{}
	}

	c := Capsule{A: points[0], B: points[len(points)-1]}
	for _, p := range points {
		if d := DistanceToSegment(p, c.A, c.B); d > c.Radius {
			c.Radius = d
		}
	}
	c.Radius += padding
	return c
}

// Transform the capsule endpoints with fn, keeping the radius.
func (c Capsule) Transform(fn func(mgl64.Vec3) mgl64.Vec3) Capsule {
	return Capsule{A: fn(c.A), B: fn(c.B), Radius: c.Radius}
}

// Euclidean distance from p to the segment a-b.
func DistanceToSegment(p, a, b mgl64.Vec3) float64 {
	ab := b.Sub(a)
	lenSq := ab.Dot(ab)
	if lenSq == 0 {
		return p.Sub(a).Len()
	}

	t := p.Sub(a).Dot(ab) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p.Sub(a.Add(ab.Mul(t))).Len()
}
