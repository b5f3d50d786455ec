package scene

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// OrbitKey identifies an orbit definition. Two orbits with identical
// parameters share a key, so their trajectory samples are interchangeable.
type OrbitKey uint64

// The Orbit interface is implemented by all trajectory definitions. Positions
// are relative to the parent node, in km; time is in days.
type Orbit interface {
	Key() OrbitKey

	// Position relative to the parent at time t.
	PositionAt(t float64) mgl64.Vec3

	// Orbital period; zero for aperiodic trajectories.
	Period() float64

	// Radius of a sphere centered at the parent enclosing the whole trajectory.
	BoundingRadius() float64

	// Upper bound of the trajectory curvature (1/km).
	MaxCurvature() float64

	// The time span over which the trajectory is defined.
	ValidRange() (begin, end float64)
}

// An EllipticalOrbit is a two-body Keplerian orbit.
type EllipticalOrbit struct {
	SemiMajorAxis      float64
	Eccentricity       float64
	Inclination        float64
	AscendingNode      float64
	ArgOfPeriapsis     float64
	MeanAnomalyAtEpoch float64
	Epoch              float64
	PeriodDays         float64

	key      OrbitKey
	rotation mgl64.Mat3
	ready    bool
}

// Create an elliptical orbit. Eccentricities outside [0, 1) are clamped.
func NewEllipticalOrbit(semiMajorAxis, eccentricity, inclination, ascendingNode, argOfPeriapsis, meanAnomaly, epoch, period float64) *EllipticalOrbit {
	o := &EllipticalOrbit{
		SemiMajorAxis:      semiMajorAxis,
		Eccentricity:       math.Max(0, math.Min(eccentricity, 0.999)),
		Inclination:        inclination,
		AscendingNode:      ascendingNode,
		ArgOfPeriapsis:     argOfPeriapsis,
		MeanAnomalyAtEpoch: meanAnomaly,
		Epoch:              epoch,
		PeriodDays:         period,
	}
	o.init()
	return o
}

func (o *EllipticalOrbit) init() {
	o.rotation = mgl64.Rotate3DZ(o.AscendingNode).
		Mul3(mgl64.Rotate3DX(o.Inclination)).
		Mul3(mgl64.Rotate3DZ(o.ArgOfPeriapsis))
	o.key = hashOrbitParams(1,
		o.SemiMajorAxis, o.Eccentricity, o.Inclination, o.AscendingNode,
		o.ArgOfPeriapsis, o.MeanAnomalyAtEpoch, o.Epoch, o.PeriodDays,
	)
	o.ready = true
}

func (o *EllipticalOrbit) Key() OrbitKey {
	if !o.ready {
		o.init()
	}
	return o.key
}

func (o *EllipticalOrbit) Period() float64 {
	return o.PeriodDays
}

func (o *EllipticalOrbit) BoundingRadius() float64 {
	return o.SemiMajorAxis * (1 + o.Eccentricity)
}

// The curvature of an ellipse peaks at the ends of its major axis with a value of a/b^2.
func (o *EllipticalOrbit) MaxCurvature() float64 {
	b2 := o.SemiMajorAxis * o.SemiMajorAxis * (1 - o.Eccentricity*o.Eccentricity)
	if b2 <= 0 {
		return 0
	}
	return o.SemiMajorAxis / b2
}

func (o *EllipticalOrbit) ValidRange() (float64, float64) {
	return math.Inf(-1), math.Inf(1)
}

func (o *EllipticalOrbit) PositionAt(t float64) mgl64.Vec3 {
	if !o.ready {
		o.init()
	}

	meanAnomaly := o.MeanAnomalyAtEpoch
	if o.PeriodDays != 0 {
		meanAnomaly += 2 * math.Pi * (t - o.Epoch) / o.PeriodDays
	}
	ecc := o.eccentricAnomaly(meanAnomaly)

	x := o.SemiMajorAxis * (math.Cos(ecc) - o.Eccentricity)
	y := o.SemiMajorAxis * math.Sqrt(1-o.Eccentricity*o.Eccentricity) * math.Sin(ecc)
	return o.rotation.Mul3x1(mgl64.Vec3{x, y, 0})
}

// Solve Kepler's equation M = E - e*sin(E) using Newton iterations.
func (o *EllipticalOrbit) eccentricAnomaly(meanAnomaly float64) float64 {
	meanAnomaly = math.Mod(meanAnomaly, 2*math.Pi)
	ecc := meanAnomaly
	if o.Eccentricity > 0.8 {
		ecc = math.Pi
	}
	for i := 0; i < 16; i++ {
		delta := (ecc - o.Eccentricity*math.Sin(ecc) - meanAnomaly) / (1 - o.Eccentricity*math.Cos(ecc))
		ecc -= delta
		if math.Abs(delta) < 1e-12 {
			break
		}
	}
	return ecc
}

// A FixedOrbit keeps an object at a constant offset from its parent.
type FixedOrbit struct {
	Offset mgl64.Vec3
}

func (o *FixedOrbit) Key() OrbitKey {
	return hashOrbitParams(2, o.Offset[0], o.Offset[1], o.Offset[2])
}

func (o *FixedOrbit) PositionAt(float64) mgl64.Vec3 {
	return o.Offset
}

func (o *FixedOrbit) Period() float64 {
	return 0
}

func (o *FixedOrbit) BoundingRadius() float64 {
	return o.Offset.Len()
}

func (o *FixedOrbit) MaxCurvature() float64 {
	return 0
}

func (o *FixedOrbit) ValidRange() (float64, float64) {
	return math.Inf(-1), math.Inf(1)
}

func hashOrbitParams(kind byte, params ...float64) OrbitKey {
	h := fnv.New64a()
	var buf [8]byte
	h.Write([]byte{kind})
	for _, p := range params {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(p))
		h.Write(buf[:])
	}
	return OrbitKey(h.Sum64())
}
