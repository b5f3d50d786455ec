package scene

import (
	"fmt"
	"math"

	"github.com/achilleasa/orrery/types"
	"github.com/go-gl/mathgl/mgl64"
)

// Time step (days) used for velocity estimation.
const velocityStep = 1e-3

// A Marker decorates an object with a glyph and an optional label.
type Marker struct {
	Target NodeID
	Symbol string
	Size   float32
	Color  types.Color
	Label  string
}

// An Asterism is a named pattern on the celestial sphere; only its label
// anchor direction is needed here.
type Asterism struct {
	Name      string
	Direction mgl64.Vec3
}

// Unit direction in universal coordinates for a right ascension and
// declination given in degrees.
func RADecToDirection(ra, dec float64) mgl64.Vec3 {
	raRad, decRad := mgl64.DegToRad(ra), mgl64.DegToRad(dec)
	return mgl64.Vec3{
		math.Cos(decRad) * math.Cos(raRad),
		math.Cos(decRad) * math.Sin(raRad),
		math.Sin(decRad),
	}
}

// The Universe owns the object hierarchy.
type Universe struct {
	Roots     []*Node
	Markers   []Marker
	Asterisms []Asterism

	nodes  []*Node
	byName map[string]*Node
}

// Create a universe from a list of root nodes. Node IDs, parent links and
// the internal indices are (re)assigned.
func NewUniverse(roots ...*Node) (*Universe, error) {
	u := &Universe{
		Roots:  roots,
		byName: make(map[string]*Node),
	}

	var err error
	for _, root := range roots {
		root.Parent = nil
		if err = u.register(root); err != nil {
			return nil, err
		}
	}
	return u, nil
}

func (u *Universe) register(n *Node) error {
	switch {
	case n.Kind == KindStar && n.Star == nil,
		n.Kind == KindBody && n.Body == nil,
		n.Kind == KindDeepSky && n.DeepSky == nil:
		return fmt.Errorf("scene: node '%s' of kind %s is missing its payload", n.Name, n.Kind)
	case n.Kind > KindDeepSky:
		return fmt.Errorf("scene: node '%s' has unknown kind %d", n.Name, n.Kind)
	}

	n.index = len(u.nodes)
	n.ID = NodeID(n.index + 1)
	u.nodes = append(u.nodes, n)
	if n.Name != "" {
		if _, exists := u.byName[n.Name]; !exists {
			u.byName[n.Name] = n
		}
	}

	for _, child := range n.Children {
		child.Parent = n
		if err := u.register(child); err != nil {
			return err
		}
	}
	return nil
}

// All nodes in depth-first order.
func (u *Universe) Nodes() []*Node {
	return u.nodes
}

// Lookup node by id.
func (u *Universe) Node(id NodeID) *Node {
	if id == 0 || int(id) > len(u.nodes) {
		return nil
	}
	return u.nodes[id-1]
}

// Lookup node by name.
func (u *Universe) Find(name string) *Node {
	return u.byName[name]
}

// A Snapshot is the immutable state of the universe at one instant. The
// renderer only reads snapshots, never live nodes' positions.
type Snapshot struct {
	Time float64

	universe   *Universe
	positions  []mgl64.Vec3
	velocities []mgl64.Vec3
	bounds     []float64
}

// Evaluate every node at time t.
func (u *Universe) Snapshot(t float64) *Snapshot {
	s := &Snapshot{
		Time:       t,
		universe:   u,
		positions:  make([]mgl64.Vec3, len(u.nodes)),
		velocities: make([]mgl64.Vec3, len(u.nodes)),
		bounds:     make([]float64, len(u.nodes)),
	}

	for _, root := range u.Roots {
		s.evaluate(root, root.Position, mgl64.Vec3{})
	}
	return s
}

func (s *Snapshot) evaluate(n *Node, parentPos, parentVel mgl64.Vec3) float64 {
	pos, vel := parentPos, parentVel
	if n.Orbit != nil {
		pos = parentPos.Add(n.Orbit.PositionAt(s.Time))
		ahead := n.Orbit.PositionAt(s.Time + velocityStep)
		behind := n.Orbit.PositionAt(s.Time - velocityStep)
		vel = parentVel.Add(ahead.Sub(behind).Mul(1 / (2 * velocityStep)))
	} else if n.Parent == nil {
		pos = n.Position
	}
	s.positions[n.index] = pos
	s.velocities[n.index] = vel

	bound := n.Radius
	for _, child := range n.Children {
		childBound := s.evaluate(child, pos, vel)
		reach := s.positions[child.index].Sub(pos).Len()
		if child.Orbit != nil {
			reach = math.Max(reach, child.Orbit.BoundingRadius())
		}
		bound = math.Max(bound, reach+childBound)
	}
	s.bounds[n.index] = bound
	return bound
}

func (s *Snapshot) Universe() *Universe {
	return s.universe
}

// Universal position of n.
func (s *Snapshot) Position(n *Node) mgl64.Vec3 {
	return s.positions[n.index]
}

// Universal velocity of n (km/day).
func (s *Snapshot) Velocity(n *Node) mgl64.Vec3 {
	return s.velocities[n.index]
}

// Radius of the sphere centered at n enclosing n, all its descendants and
// their orbits.
func (s *Snapshot) BoundingRadius(n *Node) float64 {
	return s.bounds[n.index]
}

// Position of the center of the orbit n follows (its parent's position).
func (s *Snapshot) OrbitCenter(n *Node) mgl64.Vec3 {
	if n.Parent == nil {
		return n.Position
	}
	return s.positions[n.Parent.index]
}
