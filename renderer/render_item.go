package renderer

import (
	"github.com/achilleasa/orrery/gfx"
	"github.com/achilleasa/orrery/renderer/annotation"
	"github.com/achilleasa/orrery/renderer/eclipse"
	"github.com/achilleasa/orrery/scene"
	"github.com/achilleasa/orrery/types"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// Star sprite textures.
	gaussianStarTexture = "gaussian"
	discStarTexture     = "disc"
	glareTexture        = "glare"

	// Magnitude range over which a star fades from full brightness to
	// invisible.
	starFadeSpan = 4.5

	minStarSize = 1.5
	maxStarSize = 16

	minDeepSkySize = 2
	maxDeepSkySize = 256
)

// A deep-sky object queued for the glare pass.
type deepSkyEntry struct {
	node     *scene.Node
	position types.Vec3
	depth    float32
	size     float32
	color    types.Color
}

// Star batches are drawn as points when the point style is selected, as
// sprites when the context supports them and as billboard quads otherwise.
func (r *Renderer) starMode() gfx.StarMode {
	switch {
	case r.config.StarStyle == PointStars || r.config.RenderFlags&ShowStarsAsPoints != 0:
		return gfx.StarPoints
	case r.config.StarStyle == FuzzyPointStars && r.ctx.Capabilities()&gfx.PointSprite != 0:
		return gfx.StarSprites
	}
	return gfx.StarQuads
}

func (r *Renderer) beginStars(f *frameState) {
	switch r.starMode() {
	case gfx.StarPoints:
		r.starPoints.StartPoints(r.ctx)
	case gfx.StarSprites:
		r.starPoints.SetTexture(gaussianStarTexture)
		r.starPoints.StartSprites(r.ctx)
	default:
		texture := gaussianStarTexture
		if r.config.StarStyle == ScaledDiscStars {
			texture = discStarTexture
		}
		r.starQuads.SetTexture(texture)
		r.starQuads.Start(r.ctx)
		r.starQuads.SetBillboardOrientation(types.QuatIdent())
	}
}

func (r *Renderer) finishStars() {
	r.starPoints.Finish()
	r.starQuads.Finish()
}

// Queue a star primitive. size is in pixels and converted to eye units for
// billboard quads.
func (r *Renderer) addStarPrimitive(f *frameState, pos types.Vec3, depth float32, col types.Color, size float32) {
	switch r.starMode() {
	case gfx.StarPoints, gfx.StarSprites:
		r.starPoints.AddStar(pos, col, size)
	default:
		r.starQuads.AddStar(pos, col, size*float32(f.pixelSize)*math32.Max(depth, r.config.MinNearPlane))
	}
}

// Pixel size and opacity of a star of the given apparent magnitude.
func (r *Renderer) starAppearance(appMag, faintest float32) (size, alpha float32) {
	brightness := (faintest - appMag) / starFadeSpan
	alpha = math32.Max(math32.Min(brightness, 1), 0.05)

	size = minStarSize
	if brightness > 1 {
		scale := float32(1)
		if r.config.StarStyle == ScaledDiscStars {
			scale = 2
		}
		size += (brightness - 1) * scale * minStarSize
	}
	return math32.Min(size, maxStarSize), alpha
}

func (r *Renderer) renderEntry(f *frameState, e *RenderListEntry) {
	switch e.Kind {
	case RenderableStar:
		r.renderStar(f, e)
	case RenderableBody:
		r.renderBody(f, e)
	case RenderableCometTail:
		r.renderCometTail(e)
	case RenderableBodyAxes:
		r.renderBodyAxes(f, e)
	case RenderableFrameAxes:
		r.renderFrameAxes(f, e)
	case RenderableSunDirection:
		r.ctx.DrawLines(gfx.LineStrip, []types.Vec3{e.Position, e.Position.Add(e.Sun.Mul(e.Radius))}, r.config.Colors.SunDirection)
	case RenderableVelocityVector:
		vel := types.Vec3From64(f.obs.DirectionToEye(f.snap.Velocity(e.Node).Normalize()))
		r.ctx.DrawLines(gfx.LineStrip, []types.Vec3{e.Position, e.Position.Add(vel.Mul(e.Radius))}, r.config.Colors.VelocityVector)
	}
}

// Stars with a resolved disc are drawn as emissive spheres with a glare
// sprite on top; all others only as sprites.
func (r *Renderer) renderStar(f *frameState, e *RenderListEntry) {
	col := r.config.StarColors.Lookup(float32(e.Node.Star.Temperature))
	size, alpha := r.starAppearance(e.AppMag, float32(f.faintest))

	if e.DiscSizeInPixels > 1 {
		r.ctx.DrawBody(gfx.Body{
			Name:        e.Node.Name,
			Position:    e.Position,
			Radius:      e.Radius,
			SemiAxes:    types.XYZ(1, 1, 1),
			Orientation: types.QuatIdent(),
			Color:       col,
			DiscSize:    e.DiscSizeInPixels,
			Emissive:    true,
		})
		size = math32.Max(size, e.DiscSizeInPixels*2)
	}
	r.addStarPrimitive(f, e.Position, e.CenterZ, col.WithAlpha(alpha), size)
}

func (r *Renderer) bodyOrientation(f *frameState, n *scene.Node) types.Quat {
	q := f.obs.Orientation.Conjugate().Mul(n.Body.Orientation(f.snap.Time))
	return types.QuatFrom64(q.W, q.V)
}

func (r *Renderer) renderBody(f *frameState, e *RenderListEntry) {
	n := e.Node
	pos := f.snap.Position(n)

	semiAxes := types.Vec3From64(n.Body.SemiAxes)
	if semiAxes.Len() == 0 {
		semiAxes = types.XYZ(1, 1, 1)
	}

	body := gfx.Body{
		Name:         n.Name,
		Position:     e.Position,
		Radius:       e.Radius,
		SemiAxes:     semiAxes,
		Orientation:  r.bodyOrientation(f, n),
		Color:        n.Body.Color,
		DiscSize:     e.DiscSizeInPixels,
		Emissive:     n.Has(scene.Emissive),
		Atmosphere:   n.Has(scene.HasAtmosphere) && r.config.RenderFlags&ShowAtmospheres != 0,
		Rings:        n.Has(scene.HasRings),
		RingSections: int(r.detail.RingSystemSections),
		Ambient:      r.config.AmbientLightLevel,
	}

	for _, light := range e.Lights.Lights {
		toLight := light.Position.Sub(pos)
		distAU := toLight.Len() / scene.KmPerAU
		if distAU == 0 {
			continue
		}
		body.Lights = append(body.Lights, gfx.Light{
			Direction:  types.Vec3From64(f.obs.DirectionToEye(toLight.Normalize())),
			Color:      light.Color,
			Irradiance: float32(light.Luminosity / (distAU * distAU)),
		})
	}

	if r.config.RenderFlags&ShowEclipseShadows != 0 {
		body.Shadows = r.eclipseShadows(f, n, pos, e.Lights)
	}
	r.ctx.DrawBody(body)
}

// Find the shadows cast on n by its parent, its siblings and its children.
func (r *Renderer) eclipseShadows(f *frameState, n *scene.Node, pos mgl64.Vec3, lights *LightList) []gfx.Shadow {
	r.shadows = r.shadows[:0]
	receiver := eclipse.Body{ID: n.ID, Position: pos, Radius: n.Radius}

	test := func(caster *scene.Node) {
		if caster == nil || caster.Kind != scene.KindBody || caster == n {
			return
		}
		cb := eclipse.Body{ID: caster.ID, Position: f.snap.Position(caster), Radius: caster.Radius}
		for _, light := range lights.Lights {
			r.shadows, _ = eclipse.Test(receiver, cb, eclipse.DirectionalLight{Position: light.Position, Radius: light.Radius}, f.snap.Time, r.shadows)
		}
	}

	if n.Parent != nil {
		test(n.Parent)
		for _, sibling := range n.Parent.Children {
			test(sibling)
		}
	}
	for _, child := range n.Children {
		test(child)
	}

	if len(r.shadows) == 0 {
		return nil
	}
	out := make([]gfx.Shadow, len(r.shadows))
	for i, s := range r.shadows {
		out[i] = gfx.Shadow{
			Origin:         types.Vec3From64(f.obs.DirectionToEye(s.Origin)),
			Direction:      types.Vec3From64(f.obs.DirectionToEye(s.Direction)),
			UmbraRadius:    float32(s.UmbraRadius),
			PenumbraRadius: float32(s.PenumbraRadius),
			MaxDepth:       float32(s.MaxDepth),
		}
	}
	r.frameShadows += len(out)
	return out
}

// A comet tail is drawn as a fan of lines pointing away from the sun.
func (r *Renderer) renderCometTail(e *RenderListEntry) {
	away := e.Sun.Mul(-1)
	tip := e.Position.Add(away.Mul(e.Radius))

	side := away.Cross(e.Position)
	if side.Len() == 0 {
		side = away.Cross(types.XYZ(0, 1, 0))
	}
	side = side.Normalize().Mul(e.Radius * 0.15)

	r.ctx.DrawLines(gfx.LineSegments, []types.Vec3{
		e.Position, tip,
		e.Position, tip.Add(side),
		e.Position, tip.Sub(side),
	}, r.config.Colors.CometTail.WithAlpha(0.6))
}

func (r *Renderer) renderBodyAxes(f *frameState, e *RenderListEntry) {
	q := r.bodyOrientation(f, e.Node)
	r.drawAxes(e, q.Rotate(types.XYZ(1, 0, 0)), q.Rotate(types.XYZ(0, 1, 0)), q.Rotate(types.XYZ(0, 0, 1)), r.config.Colors.BodyAxes)
}

func (r *Renderer) renderFrameAxes(f *frameState, e *RenderListEntry) {
	axis := func(v mgl64.Vec3) types.Vec3 {
		return types.Vec3From64(f.obs.DirectionToEye(v))
	}
	r.drawAxes(e, axis(mgl64.Vec3{1, 0, 0}), axis(mgl64.Vec3{0, 1, 0}), axis(mgl64.Vec3{0, 0, 1}), r.config.Colors.FrameAxes)
}

func (r *Renderer) drawAxes(e *RenderListEntry, x, y, z types.Vec3, col types.Color) {
	r.ctx.DrawLines(gfx.LineSegments, []types.Vec3{
		e.Position, e.Position.Add(x.Mul(e.Radius)),
		e.Position, e.Position.Add(y.Mul(e.Radius)),
		e.Position, e.Position.Add(z.Mul(e.Radius)),
	}, col)
}

// Queue the deep-sky objects that pass the distance, frustum and magnitude
// tests. Their labels go to the background queue.
func (r *Renderer) addDeepSky(f *frameState) {
	r.deepSky = r.deepSky[:0]
	for _, n := range f.snap.Universe().Nodes() {
		if n.Kind != scene.KindDeepSky || r.config.RenderFlags&renderFlagForDeepSky(n.Class) == 0 {
			continue
		}

		eye := f.obs.ToEye(f.snap.Position(n))
		dist := eye.Len()
		if dist-n.Radius > r.config.DistanceLimit || float32(-eye[2]) <= r.config.MinNearPlane {
			continue
		}
		if f.frustum.TestSphere(scene.Sphere{Center: eye, Radius: n.Radius}) == scene.Outside {
			continue
		}
		appMag := scene.AbsToAppMag(n.DeepSky.AbsMag, dist)
		if appMag > f.faintest && !r.config.VisibilityPolicy(n, f.obs) {
			continue
		}

		size := float32(mgl64.Clamp(n.Radius/(dist*f.pixelSize), minDeepSkySize, maxDeepSkySize))
		_, alpha := r.starAppearance(float32(appMag), float32(f.faintest))
		entry := deepSkyEntry{
			node:     n,
			position: types.Vec3From64(eye),
			depth:    float32(-eye[2]),
			size:     size,
			color:    r.config.Colors.LabelColor(n.Class).WithAlpha(alpha),
		}
		r.deepSky = append(r.deepSky, entry)

		if r.config.LabelMode&labelModeForClass(n.Class) != 0 {
			r.backgroundAnnotations.Add(n.Name, entry.position, annotation.Style{Color: r.config.Colors.LabelColor(n.Class)}, annotation.NoDepth)
		}
	}
}

// Draw the queued deep-sky objects as glare sprites behind everything else,
// inside a depth range enclosing all of them. Returns the number of objects
// drawn.
func (r *Renderer) renderDeepSky(f *frameState) int {
	if len(r.deepSky) == 0 {
		return 0
	}

	nearZ, farZ := r.deepSky[0].depth, r.deepSky[0].depth
	for _, e := range r.deepSky[1:] {
		nearZ = math32.Min(nearZ, e.depth)
		farZ = math32.Max(farZ, e.depth)
	}
	r.ctx.SetDepthRange(nearZ/(1+r.config.DepthBias), farZ*(1+r.config.DepthBias))

	if r.ctx.Capabilities()&gfx.PointSprite != 0 {
		r.starPoints.SetTexture(glareTexture)
		r.starPoints.StartSprites(r.ctx)
		for _, e := range r.deepSky {
			r.starPoints.AddStar(e.position, e.color, e.size)
		}
		r.starPoints.Finish()
	} else {
		r.starQuads.SetTexture(glareTexture)
		r.starQuads.Start(r.ctx)
		r.starQuads.SetBillboardOrientation(types.QuatIdent())
		for _, e := range r.deepSky {
			r.starQuads.AddStar(e.position, e.color, e.size*float32(f.pixelSize)*e.depth)
		}
		r.starQuads.Finish()
	}
	return len(r.deepSky)
}
