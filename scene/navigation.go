package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Field of view limits enforced by Zoom.
const (
	MinFOV = math.Pi / 180 / 60
	MaxFOV = 2 * math.Pi / 3
)

// Direction of observer movement relative to the current view.
type Direction uint8

const (
	Forward Direction = iota
	Backward
	Left
	Right
	Up
	Down
)

// Eye-space unit vectors for each movement direction.
var directionVectors = [...]mgl64.Vec3{
	Forward:  {0, 0, -1},
	Backward: {0, 0, 1},
	Left:     {-1, 0, 0},
	Right:    {1, 0, 0},
	Up:       {0, 1, 0},
	Down:     {0, -1, 0},
}

// Move the observer by distance km along a view-relative direction.
func (o *Observer) Move(dir Direction, distance float64) {
	if int(dir) >= len(directionVectors) {
		return
	}
	offset := o.Orientation.Rotate(directionVectors[dir]).Mul(distance)
	o.Position = o.Position.Add(offset)
}

// Rotate the view by yaw (around the eye Y axis) and pitch (around the eye X
// axis), both in radians.
func (o *Observer) Rotate(yaw, pitch float64) {
	yawQuat := mgl64.QuatRotate(yaw, mgl64.Vec3{0, 1, 0})
	pitchQuat := mgl64.QuatRotate(pitch, mgl64.Vec3{1, 0, 0})
	o.Orientation = o.Orientation.Mul(yawQuat).Mul(pitchQuat).Normalize()
}

// Scale the field of view by factor, clamped to [MinFOV, MaxFOV].
func (o *Observer) Zoom(factor float64) {
	if !(factor > 0) {
		return
	}
	o.FOV = math.Min(math.Max(o.FOV*factor, MinFOV), MaxFOV)
}

// The universal view direction.
func (o *Observer) ViewDirection() mgl64.Vec3 {
	return o.Orientation.Rotate(mgl64.Vec3{0, 0, -1})
}
