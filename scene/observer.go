package scene

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Result of a frustum test.
type Visibility uint8

const (
	Outside Visibility = iota
	Intersect
	Inside
)

// A plane in Hessian normal form; points with a positive distance are on the
// inner side.
type Plane struct {
	Normal mgl64.Vec3
	D      float64
}

// Signed distance of p from the plane.
func (p Plane) Distance(v mgl64.Vec3) float64 {
	return p.Normal.Dot(v) + p.D
}

// The view frustum in eye space. The far side is open; planes are the near
// plane followed by the four side planes. The corner rays at z = -1 are kept
// for projection helpers.
type Frustum struct {
	Planes  [5]Plane
	Corners [4]mgl64.Vec3
}

func (fr Frustum) String() string {
	return fmt.Sprintf(
		"Frustum Rays:\nTL : (%3.3f, %3.3f, %3.3f)\nTR : (%3.3f, %3.3f, %3.3f)\nBL : (%3.3f, %3.3f, %3.3f)\nBR : (%3.3f, %3.3f, %3.3f)",
		fr.Corners[0][0], fr.Corners[0][1], fr.Corners[0][2],
		fr.Corners[1][0], fr.Corners[1][1], fr.Corners[1][2],
		fr.Corners[2][0], fr.Corners[2][1], fr.Corners[2][2],
		fr.Corners[3][0], fr.Corners[3][1], fr.Corners[3][2],
	)
}

// Test a sphere against the frustum. Spheres with a non-positive radius are
// always reported as outside.
func (fr *Frustum) TestSphere(s Sphere) Visibility {
	if !(s.Radius > 0) {
		return Outside
	}

	result := Inside
	for _, p := range fr.Planes {
		d := p.Distance(s.Center)
		if d < -s.Radius {
			return Outside
		}
		if d < s.Radius {
			result = Intersect
		}
	}
	return result
}

// Test a capsule against the frustum.
func (fr *Frustum) TestCapsule(c Capsule) Visibility {
	result := Inside
	for _, p := range fr.Planes {
		da, db := p.Distance(c.A), p.Distance(c.B)
		if math.Max(da, db) < -c.Radius {
			return Outside
		}
		if math.Min(da, db) < c.Radius {
			result = Intersect
		}
	}
	return result
}

// The Observer is the viewpoint a frame is rendered from.
type Observer struct {
	// Universal position (km).
	Position mgl64.Vec3

	// Rotation from eye space to universal space.
	Orientation mgl64.Quat

	// Vertical field of view in radians.
	FOV float64

	// Simulation time (days).
	Time float64

	// The body the observer is attached to; it is always rendered.
	Reference NodeID
}

func NewObserver(fov float64) *Observer {
	return &Observer{
		Orientation: mgl64.QuatIdent(),
		FOV:         fov,
	}
}

// Orient the observer so it looks at target with the given up vector.
func (o *Observer) LookAt(target, up mgl64.Vec3) {
	dir := target.Sub(o.Position)
	if dir.Len() == 0 {
		return
	}
	dir = dir.Normalize()

	right := dir.Cross(up)
	if right.Len() < 1e-12 {
		right = dir.Cross(mgl64.Vec3{1, 0, 0})
		if right.Len() < 1e-12 {
			right = dir.Cross(mgl64.Vec3{0, 1, 0})
		}
	}
	right = right.Normalize()
	camUp := right.Cross(dir)

	// Eye X maps to right, eye Y to up and eye -Z to the view direction.
	rot := mgl64.Mat3FromCols(right, camUp, dir.Mul(-1))
	o.Orientation = mgl64.Mat4ToQuat(rot.Mat4()).Normalize()
}

// Transform a universal position into eye space.
func (o *Observer) ToEye(world mgl64.Vec3) mgl64.Vec3 {
	return o.Orientation.Conjugate().Rotate(world.Sub(o.Position))
}

// Rotate a universal direction into eye space.
func (o *Observer) DirectionToEye(dir mgl64.Vec3) mgl64.Vec3 {
	return o.Orientation.Conjugate().Rotate(dir)
}

// Build the eye-space frustum for the given aspect ratio and near plane
// distance. The four corner rays are generated first and each side plane is
// spanned by two adjacent rays.
func (o *Observer) Frustum(aspect, near float64) Frustum {
	var fr Frustum

	tanY := math.Tan(o.FOV * 0.5)
	tanX := tanY * aspect

	fr.Corners[0] = mgl64.Vec3{-tanX, tanY, -1}
	fr.Corners[1] = mgl64.Vec3{tanX, tanY, -1}
	fr.Corners[2] = mgl64.Vec3{-tanX, -tanY, -1}
	fr.Corners[3] = mgl64.Vec3{tanX, -tanY, -1}

	fr.Planes[0] = Plane{Normal: mgl64.Vec3{0, 0, -1}, D: -near}

	center := mgl64.Vec3{0, 0, -1}
	sides := [4][2]int{{0, 1}, {1, 3}, {3, 2}, {2, 0}}
	for i, pair := range sides {
		n := fr.Corners[pair[0]].Cross(fr.Corners[pair[1]]).Normalize()
		if n.Dot(center) < 0 {
			n = n.Mul(-1)
		}
		fr.Planes[i+1] = Plane{Normal: n}
	}

	return fr
}

// Calculate the angular size of a pixel at unit distance for a window with
// the given height.
func PixelSize(fov float64, windowHeight int) float64 {
	if windowHeight <= 0 {
		return 0
	}
	return 2 * math.Tan(fov*0.5) / float64(windowHeight)
}
