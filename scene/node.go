package scene

import (
	"math"

	"github.com/achilleasa/orrery/types"
	"github.com/go-gl/mathgl/mgl64"
)

// The Kind discriminant selects which payload a Node carries. Callers switch
// on it instead of probing payload pointers.
type Kind uint8

const (
	KindStar Kind = iota
	KindBody
	KindDeepSky
)

func (k Kind) String() string {
	switch k {
	case KindStar:
		return "star"
	case KindBody:
		return "body"
	case KindDeepSky:
		return "deep-sky"
	}
	return "unknown"
}

// Capability flags advertised by a node.
type Capability uint32

const (
	HasSurface Capability = 1 << iota
	HasAtmosphere
	HasRings
	HasCometTail
	ShowBodyAxes
	ShowFrameAxes
	ShowSunDirection
	ShowVelocityVector
	Emissive
)

// Class is the object category used for label, orbit and color selection.
// Values are single bits so they can be combined into masks.
type Class uint32

const (
	ClassPlanet Class = 1 << iota
	ClassDwarfPlanet
	ClassMoon
	ClassAsteroid
	ClassComet
	ClassSpacecraft
	ClassStar
	ClassGalaxy
	ClassNebula
	ClassOpenCluster

	ClassNone Class = 0
	ClassAll  Class = 1<<10 - 1
)

var classNames = []struct {
	class Class
	name  string
}{
	{ClassPlanet, "planet"},
	{ClassDwarfPlanet, "dwarf-planet"},
	{ClassMoon, "moon"},
	{ClassAsteroid, "asteroid"},
	{ClassComet, "comet"},
	{ClassSpacecraft, "spacecraft"},
	{ClassStar, "star"},
	{ClassGalaxy, "galaxy"},
	{ClassNebula, "nebula"},
	{ClassOpenCluster, "open-cluster"},
}

func (c Class) String() string {
	for _, cn := range classNames {
		if cn.class == c {
			return cn.name
		}
	}
	return "none"
}

// Parse a class name as returned by Class.String.
func ParseClass(name string) (Class, bool) {
	for _, cn := range classNames {
		if cn.name == name {
			return cn.class, true
		}
	}
	return ClassNone, false
}

// Unique node identifier assigned by the Universe. Zero is never assigned.
type NodeID uint32

// Payload for KindStar nodes.
type StarInfo struct {
	// Absolute visual magnitude.
	AbsMag float64

	// Surface temperature in Kelvin; used for color selection.
	Temperature float64
}

// Luminosity in solar units.
func (s *StarInfo) Luminosity() float64 {
	return math.Pow(10, (SolarAbsMag-s.AbsMag)/2.5)
}

// Payload for KindBody nodes.
type BodyInfo struct {
	// Geometric albedo.
	Albedo float64

	// Base surface color.
	Color types.Color

	// Ellipsoid semi-axes as fractions of the node radius.
	SemiAxes mgl64.Vec3

	// Sidereal rotation period (days) and axial tilt (radians).
	RotationPeriod float64
	Obliquity      float64
}

// Body orientation at time t.
func (b *BodyInfo) Orientation(t float64) mgl64.Quat {
	tilt := mgl64.QuatRotate(b.Obliquity, mgl64.Vec3{1, 0, 0})
	if b.RotationPeriod == 0 {
		return tilt
	}
	spin := mgl64.QuatRotate(2*math.Pi*math.Mod(t/b.RotationPeriod, 1), mgl64.Vec3{0, 0, 1})
	return tilt.Mul(spin)
}

// Payload for KindDeepSky nodes.
type DeepSkyInfo struct {
	AbsMag float64
}

// A Node is one object of the universe hierarchy. Exactly one of the payload
// pointers is set, matching Kind.
type Node struct {
	ID    NodeID
	Name  string
	Kind  Kind
	Class Class
	Caps  Capability

	// Mean radius in km.
	Radius float64

	// Exempt from magnitude and feature-size culling.
	AlwaysVisible bool

	// Orbit relative to the parent. Nodes without an orbit sit at their
	// parent's position, or at Position for roots.
	Orbit    Orbit
	Position mgl64.Vec3

	Star    *StarInfo
	Body    *BodyInfo
	DeepSky *DeepSkyInfo

	Parent   *Node
	Children []*Node

	index int
}

// Has reports whether all the capability bits in c are set.
func (n *Node) Has(c Capability) bool {
	return n.Caps&c == c
}

// Add child nodes.
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// The star whose system contains this node; nil for deep-sky nodes and
// orphan bodies.
func (n *Node) SystemStar() *Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Kind == KindStar {
			return cur
		}
	}
	return nil
}
