// Package eclipse decides whether one body shadows another.
package eclipse

import (
	"math"

	"github.com/achilleasa/orrery/scene"
	"github.com/go-gl/mathgl/mgl64"
)

// Casters smaller than this fraction of the receiver radius are ignored.
const MinCasterRatio = 0.01

// A Body taking part in an eclipse test. Positions are universal (km).
type Body struct {
	ID       scene.NodeID
	Position mgl64.Vec3
	Radius   float64
}

// A light source treated as a disc of the given radius.
type DirectionalLight struct {
	Position mgl64.Vec3
	Radius   float64
}

// A Shadow describes the shadow cone of a caster where it crosses the
// receiver. The shadow ellipse on the receiver is the intersection of the
// receiver sphere with a cylinder of the given radii around the axis.
type Shadow struct {
	Caster scene.NodeID
	Time   float64

	// Caster center relative to the receiver center.
	Origin mgl64.Vec3

	// Unit direction of the shadow axis (away from the light).
	Direction mgl64.Vec3

	// Radii of the umbra and penumbra at the receiver distance. A negative
	// umbra radius indicates an annular eclipse.
	UmbraRadius    float64
	PenumbraRadius float64

	// Fraction of the light disc covered at the center of the shadow.
	MaxDepth float64
}

// Test whether caster shadows receiver under light. If it does, a shadow
// descriptor is appended to shadows and true is returned.
func Test(receiver, caster Body, light DirectionalLight, now float64, shadows []Shadow) ([]Shadow, bool) {
	if caster.ID == receiver.ID || caster.Radius < receiver.Radius*MinCasterRatio || !(receiver.Radius > 0) {
		return shadows, false
	}

	axis := caster.Position.Sub(light.Position)
	lightDist := axis.Len()
	if lightDist <= light.Radius || lightDist == 0 {
		return shadows, false
	}
	axis = axis.Mul(1 / lightDist)

	// The receiver must lie downstream of the caster.
	toReceiver := receiver.Position.Sub(caster.Position)
	t := toReceiver.Dot(axis)
	if t <= 0 {
		return shadows, false
	}

	// Both cones start at the caster limb and widen (penumbra) or narrow
	// (umbra) with the angular radius of the light as seen from the caster.
	penumbra := caster.Radius + t*(light.Radius+caster.Radius)/lightDist
	umbra := caster.Radius - t*(light.Radius-caster.Radius)/lightDist

	axisDist := toReceiver.Sub(axis.Mul(t)).Len()
	if axisDist >= receiver.Radius+penumbra {
		return shadows, false
	}

	// Angular radii as seen from the receiver.
	appCaster := caster.Radius / t
	appLight := light.Radius / (lightDist + t)
	maxDepth := 1.0
	if appLight > 0 {
		maxDepth = math.Min(1, appCaster/appLight)
	}

	return append(shadows, Shadow{
		Caster:         caster.ID,
		Time:           now,
		Origin:         caster.Position.Sub(receiver.Position),
		Direction:      axis,
		UmbraRadius:    umbra,
		PenumbraRadius: penumbra,
		MaxDepth:       maxDepth * maxDepth,
	}), true
}
