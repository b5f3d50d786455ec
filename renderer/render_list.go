package renderer

import (
	"math"

	"github.com/achilleasa/orrery/renderer/annotation"
	"github.com/achilleasa/orrery/scene"
	"github.com/achilleasa/orrery/types"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl64"
)

// Renderable selects how a render list entry is drawn.
type Renderable uint8

const (
	RenderableStar Renderable = iota
	RenderableBody
	RenderableCometTail
	RenderableBodyAxes
	RenderableFrameAxes
	RenderableSunDirection
	RenderableVelocityVector
)

var renderableNames = []string{"star", "body", "comet-tail", "body-axes", "frame-axes", "sun-direction", "velocity-vector"}

func (r Renderable) String() string {
	if int(r) < len(renderableNames) {
		return renderableNames[r]
	}
	return "unknown"
}

// A RenderListEntry describes one drawable for the current frame. Positions
// are in eye space and all Z values are positive depths along the view axis.
type RenderListEntry struct {
	Kind Renderable
	Node *scene.Node

	Position types.Vec3

	// Unit direction to the brightest light.
	Sun types.Vec3

	Distance float32
	Radius   float32

	CenterZ float32
	NearZ   float32
	FarZ    float32

	DiscSizeInPixels float32
	AppMag           float32
	IsOpaque         bool

	Lights *LightList
}

// An OrbitPathListEntry describes one orbit path to draw. CenterZ is the
// depth of the orbit's center so the whole path sorts as one unit. NearZ and
// FarZ bound the depths the path can reach; the path is drawn in every depth
// partition that range overlaps.
type OrbitPathListEntry struct {
	CenterZ float32
	NearZ   float32
	FarZ    float32
	Radius  float32
	Node    *scene.Node

	// Eye-space position of the orbit center.
	Origin  types.Vec3
	Opacity float32
}

// Length of axis decorations relative to the body radius.
const axisScale = 2

// Comet tail length (km) at 1 AU from the sun.
const cometTailLengthAt1AU = 1e8

// Per frame state shared by the traversal helpers.
type frameState struct {
	obs       *scene.Observer
	snap      *scene.Snapshot
	frustum   scene.Frustum
	pixelSize float64
	faintest  float64
	reference *scene.Node
}

// Build the render and orbit path lists. One light list is checked out of
// the pool for every root star system.
func (r *Renderer) buildRenderLists(f *frameState) {
	u := f.snap.Universe()
	for _, root := range u.Roots {
		if root.Kind == scene.KindDeepSky {
			continue
		}

		lights := r.lights.Get()
		r.collectLights(root, f.snap, lights)
		r.traverse(f, root, lights)
	}
}

// Visit n and its subtree. Returns true if anything in the subtree produced
// a render list entry.
func (r *Renderer) traverse(f *frameState, n *scene.Node, lights *LightList) bool {
	if n.Orbit != nil {
		r.addOrbitToRenderList(f, n)
	}

	pos := f.snap.Position(n)
	eye := f.obs.ToEye(pos)
	dist := eye.Len()
	bound := f.snap.BoundingRadius(n)

	if dist-bound > r.config.DistanceLimit {
		return false
	}
	if f.frustum.TestSphere(scene.Sphere{Center: eye, Radius: bound}) == scene.Outside {
		return false
	}

	visibleChildren := false
	if len(n.Children) != 0 && r.shouldVisitChildren(f, n, dist, bound) {
		for _, child := range n.Children {
			if r.traverse(f, child, lights) {
				visibleChildren = true
			}
		}
	}

	emitted := r.addNodeToRenderList(f, n, pos, eye, dist, lights, visibleChildren)
	return emitted || visibleChildren
}

// Children are skipped when the whole subtree projects to less than
// MinimumOrbitSize pixels, unless the observer is inside the subtree bounds
// or the subtree contains the observer's reference body.
func (r *Renderer) shouldVisitChildren(f *frameState, n *scene.Node, dist, bound float64) bool {
	if dist <= bound {
		return true
	}
	for cur := f.reference; cur != nil; cur = cur.Parent {
		if cur == n {
			return true
		}
	}
	return bound/(dist*f.pixelSize) >= float64(r.config.MinimumOrbitSize)
}

func (r *Renderer) addNodeToRenderList(f *frameState, n *scene.Node, pos, eye mgl64.Vec3, dist float64, lights *LightList, visibleChildren bool) bool {
	var (
		appMag    float64
		sun       mgl64.Vec3
		featureOK bool
	)

	disc := 0.0
	if dist > 0 {
		disc = n.Radius / (dist * f.pixelSize)
	}

	switch n.Kind {
	case scene.KindStar:
		if r.config.RenderFlags&ShowStars == 0 {
			return false
		}
		appMag = scene.AbsToAppMag(n.Star.AbsMag, dist)
		// Stars are point sources and exempt from the feature size rule.
		featureOK = true
	case scene.KindBody:
		if r.config.RenderFlags&ShowPlanets == 0 {
			return false
		}
		appMag, sun = r.bodyAppMag(f, n, pos, dist, lights)
		featureOK = disc >= float64(r.config.MinimumFeatureSize) || visibleChildren
	default:
		return false
	}

	if f.frustum.TestSphere(scene.Sphere{Center: eye, Radius: n.Radius}) == scene.Outside {
		return false
	}
	alwaysVisible := r.config.VisibilityPolicy(n, f.obs)
	if !alwaysVisible && (appMag > f.faintest || !featureOK) {
		return false
	}

	entry := RenderListEntry{
		Node:             n,
		Position:         types.Vec3From64(eye),
		Sun:              types.Vec3From64(f.obs.DirectionToEye(sun)),
		Distance:         float32(dist),
		Radius:           float32(n.Radius),
		DiscSizeInPixels: float32(disc),
		AppMag:           float32(appMag),
		Lights:           lights,
	}

	if n.Kind == scene.KindStar {
		entry.Kind = RenderableStar
		entry.IsOpaque = disc > 1
		r.appendEntry(entry)
	} else {
		entry.Kind = RenderableBody
		entry.IsOpaque = true
		r.appendEntry(entry)
		r.addBodyDecorations(f, n, pos, entry)
	}

	r.addObjectLabel(f, n, entry, alwaysVisible)
	return true
}

// Apparent magnitude of a body lit by every light in the list; the brightest
// contribution wins. The direction to that light is also returned.
func (r *Renderer) bodyAppMag(f *frameState, n *scene.Node, pos mgl64.Vec3, dist float64, lights *LightList) (float64, mgl64.Vec3) {
	best := math.Inf(1)
	var sun mgl64.Vec3
	toViewer := f.obs.Position.Sub(pos)

	for i := range lights.Lights {
		light := &lights.Lights[i]
		toLight := light.Position.Sub(pos)
		sunDist := toLight.Len()
		if sunDist == 0 {
			continue
		}

		phase := 0.0
		if viewLen := toViewer.Len(); viewLen > 0 {
			phase = math.Acos(mgl64.Clamp(toLight.Dot(toViewer)/(sunDist*viewLen), -1, 1))
		}
		mag := scene.ReflectedAppMag(light.Luminosity, n.Body.Albedo, n.Radius, sunDist, dist, phase)
		if mag < best || sun.Len() == 0 {
			best = math.Min(best, mag)
			sun = toLight.Mul(1 / sunDist)
		}
	}
	return best, sun
}

func (r *Renderer) addBodyDecorations(f *frameState, n *scene.Node, pos mgl64.Vec3, body RenderListEntry) {
	if n.Has(scene.HasCometTail) && r.config.RenderFlags&ShowCometTails != 0 && body.Sun.Len() > 0 {
		sunDist := math.Inf(1)
		for _, light := range body.Lights.Lights {
			sunDist = math.Min(sunDist, light.Position.Sub(pos).Len())
		}
		distAU := math.Max(sunDist/scene.KmPerAU, 0.1)
		tail := body
		tail.Kind = RenderableCometTail
		tail.Radius = float32(math.Min(cometTailLengthAt1AU/(distAU*distAU), cometTailLengthAt1AU*10))
		tail.IsOpaque = false
		r.appendEntry(tail)
	}

	decorations := []struct {
		capability scene.Capability
		kind       Renderable
	}{
		{scene.ShowBodyAxes, RenderableBodyAxes},
		{scene.ShowFrameAxes, RenderableFrameAxes},
		{scene.ShowSunDirection, RenderableSunDirection},
		{scene.ShowVelocityVector, RenderableVelocityVector},
	}
	for _, dec := range decorations {
		if !n.Has(dec.capability) {
			continue
		}
		if dec.kind == RenderableSunDirection && body.Sun.Len() == 0 {
			continue
		}
		if dec.kind == RenderableVelocityVector && f.snap.Velocity(n).Len() == 0 {
			continue
		}
		entry := body
		entry.Kind = dec.kind
		entry.Radius = body.Radius * axisScale
		entry.IsOpaque = false
		r.appendEntry(entry)
	}
}

// Append an entry computing its depth metrics. NearZ is clamped so that no
// entry spans a depth ratio larger than MaxDepthRatio.
func (r *Renderer) appendEntry(e RenderListEntry) {
	e.CenterZ = -e.Position[2]
	e.NearZ = e.CenterZ - e.Radius
	e.FarZ = e.CenterZ + e.Radius
	e.NearZ = math32.Max(e.NearZ, math32.Max(r.config.MinNearPlane, e.FarZ/r.config.MaxDepthRatio))
	r.renderList = append(r.renderList, e)
}

// Queue orbit paths for nodes with orbits. Star orbits are handled by
// addStarOrbitToRenderList.
func (r *Renderer) addOrbitToRenderList(f *frameState, n *scene.Node) {
	if r.config.RenderFlags&ShowOrbits == 0 {
		return
	}
	selected := n.ID == r.selection
	if !selected && r.config.OrbitMask&n.Class == 0 {
		return
	}

	if n.Kind == scene.KindStar {
		r.addStarOrbitToRenderList(f, n, selected)
		return
	}
	r.appendOrbitPath(f, n, selected)
}

// Binary star orbits are only drawn while stars are shown.
func (r *Renderer) addStarOrbitToRenderList(f *frameState, n *scene.Node, selected bool) {
	if r.config.RenderFlags&ShowStars == 0 {
		return
	}
	r.appendOrbitPath(f, n, selected)
}

func (r *Renderer) appendOrbitPath(f *frameState, n *scene.Node, selected bool) {
	radius := n.Orbit.BoundingRadius()
	if !(radius > 0) || n.Orbit.Period() <= 0 {
		return
	}

	origin := f.obs.ToEye(f.snap.OrbitCenter(n))
	dist := origin.Len()

	opacity := float32(1)
	if dist > radius {
		size := radius / (dist * f.pixelSize)
		minSize := float64(r.config.MinimumOrbitSize)
		if size < minSize && !selected {
			return
		}
		if minSize > 0 {
			opacity = float32(mgl64.Clamp((size-minSize)/(3*minSize)+0.25, 0.25, 1))
		}
	}
	if f.frustum.TestSphere(scene.Sphere{Center: origin, Radius: radius}) == scene.Outside {
		return
	}

	centerZ, rad := float32(-origin[2]), float32(radius)
	farZ := centerZ + rad
	if farZ <= r.config.MinNearPlane {
		return
	}
	nearZ := math32.Max(centerZ-rad, math32.Max(r.config.MinNearPlane, farZ/r.config.MaxDepthRatio))

	r.orbitList = append(r.orbitList, OrbitPathListEntry{
		CenterZ: centerZ,
		NearZ:   nearZ,
		FarZ:    farZ,
		Radius:  rad,
		Node:    n,
		Origin:  types.Vec3From64(origin),
		Opacity: opacity,
	})
}

// Label an emitted object if its category is enabled. Objects that are both
// tiny and near the magnitude limit are left unlabelled.
func (r *Renderer) addObjectLabel(f *frameState, n *scene.Node, e RenderListEntry, alwaysVisible bool) {
	if r.config.LabelMode&labelModeForClass(n.Class) == 0 {
		return
	}
	if !alwaysVisible && e.DiscSizeInPixels < 1 && float64(e.AppMag) >= f.faintest-1 {
		return
	}
	r.sortedAnnotations.Add(n.Name, e.Position, annotation.Style{
		Color: r.config.Colors.LabelColor(n.Class),
	}, annotation.NoDepth)
}
