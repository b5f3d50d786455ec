package renderer

import (
	"math"
	"testing"

	"github.com/achilleasa/orrery/gfx"
	"github.com/achilleasa/orrery/renderer/annotation"
	"github.com/achilleasa/orrery/scene"
	"github.com/achilleasa/orrery/types"
	"github.com/go-gl/mathgl/mgl64"
)

type testSystem struct {
	universe *scene.Universe
	sun      *scene.Node
	earth    *scene.Node
	moon     *scene.Node
}

// A sun-earth-moon system. moonAnomaly selects where the moon sits along its
// orbit at t=0; math.Pi places it between the earth and the sun.
func newTestSystem(t *testing.T, moonAnomaly float64) *testSystem {
	sys := &testSystem{
		sun: &scene.Node{
			Name:   "Sun",
			Kind:   scene.KindStar,
			Class:  scene.ClassStar,
			Radius: 696000,
			Star:   &scene.StarInfo{AbsMag: scene.SolarAbsMag, Temperature: 5800},
		},
		earth: &scene.Node{
			Name:   "Earth",
			Kind:   scene.KindBody,
			Class:  scene.ClassPlanet,
			Caps:   scene.HasAtmosphere,
			Radius: 6371,
			Orbit:  scene.NewEllipticalOrbit(scene.KmPerAU, 0, 0, 0, 0, 0, 0, 365.25),
			Body:   &scene.BodyInfo{Albedo: 0.3, Color: types.RGB(0.3, 0.4, 0.8)},
		},
		moon: &scene.Node{
			Name:   "Moon",
			Kind:   scene.KindBody,
			Class:  scene.ClassMoon,
			Radius: 1737,
			Orbit:  scene.NewEllipticalOrbit(384400, 0, 0, 0, 0, moonAnomaly, 0, 27.32),
			Body:   &scene.BodyInfo{Albedo: 0.12, Color: types.RGB(0.6, 0.6, 0.6)},
		},
	}
	sys.sun.Add(sys.earth.Add(sys.moon))

	var err error
	if sys.universe, err = scene.NewUniverse(sys.sun); err != nil {
		t.Fatal(err)
	}
	return sys
}

// An observer hovering dist km above the earth (along +Z) looking at it.
func (sys *testSystem) observer(snap *scene.Snapshot, dist float64) *scene.Observer {
	earthPos := snap.Position(sys.earth)
	obs := scene.NewObserver(math.Pi / 4)
	obs.Position = earthPos.Add(mgl64.Vec3{0, 0, dist})
	obs.LookAt(earthPos, mgl64.Vec3{0, 1, 0})
	return obs
}

func newTestRenderer(t *testing.T, ctx gfx.Context, cfg *Config) *Renderer {
	r, err := New(ctx, 800, 600, DefaultDetailOptions(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func findBody(rec *gfx.Recorder, name string) *gfx.Body {
	for _, cmd := range rec.Filter(gfx.OpDrawBody) {
		if cmd.Body.Name == name {
			b := cmd.Body
			return &b
		}
	}
	return nil
}

func findLabel(rec *gfx.Recorder, text string) int {
	for index, cmd := range rec.Commands {
		if cmd.Op == gfx.OpDrawLabel && cmd.Label.Text == text {
			return index
		}
	}
	return -1
}

func TestNewErrors(t *testing.T) {
	rec := gfx.NewRecorder(0)
	badDetail := DefaultDetailOptions()
	badDetail.ShadowTextureSize = 100

	type spec struct {
		ctx    gfx.Context
		w, h   int
		detail DetailOptions
		expErr error
	}
	specs := []spec{
		{nil, 800, 600, DefaultDetailOptions(), ErrNoContext},
		{rec, 0, 600, DefaultDetailOptions(), ErrInvalidViewport},
		{rec, 800, -1, DefaultDetailOptions(), ErrInvalidViewport},
		{rec, 800, 600, badDetail, ErrInvalidDetailOptions},
		{rec, 800, 600, DetailOptions{2, 100, 256, 128}, ErrInvalidDetailOptions},
		{rec, 800, 600, DefaultDetailOptions(), nil},
	}

	for index, s := range specs {
		_, err := New(s.ctx, s.w, s.h, s.detail, nil)
		if err != s.expErr {
			t.Fatalf("[spec %d] expected error %v; got %v", index, s.expErr, err)
		}
	}
}

func TestRenderFrame(t *testing.T) {
	sys := newTestSystem(t, 0)
	snap := sys.universe.Snapshot(0)
	obs := sys.observer(snap, 1e6)

	rec := gfx.NewRecorder(gfx.PointSprite | gfx.DepthBuffer)
	r := newTestRenderer(t, rec, nil)
	if err := r.Render(obs, snap, 6); err != nil {
		t.Fatal(err)
	}

	if rec.Commands[0].Op != gfx.OpBeginFrame || rec.Commands[len(rec.Commands)-1].Op != gfx.OpEndFrame {
		t.Fatal("expected frame to be bracketed by BeginFrame/EndFrame")
	}

	earth := findBody(rec, "Earth")
	if earth == nil {
		t.Fatal("expected earth to be drawn")
	}
	if findBody(rec, "Moon") == nil {
		t.Fatal("expected moon to be drawn")
	}
	// The sun lies outside the field of view.
	for _, e := range r.RenderList() {
		if e.Node == sys.sun {
			t.Fatal("expected the sun to be frustum culled")
		}
	}

	if len(earth.Lights) != 1 {
		t.Fatalf("expected earth to be lit by 1 light; got %d", len(earth.Lights))
	}
	if dir := earth.Lights[0].Direction; dir[0] > -0.99 {
		t.Fatalf("expected light direction to point along -X in eye space; got %v", dir)
	}
	if !earth.Atmosphere {
		t.Fatal("expected earth to be drawn with an atmosphere")
	}

	// Every draw inside the partitions must follow a depth range change.
	seenDepthRange := false
	for _, cmd := range rec.Commands {
		switch cmd.Op {
		case gfx.OpSetDepthRange:
			seenDepthRange = true
			if !(cmd.Near > 0) || cmd.Far <= cmd.Near {
				t.Fatalf("invalid depth range [%f, %f]", cmd.Near, cmd.Far)
			}
		case gfx.OpDrawBody:
			if !seenDepthRange {
				t.Fatal("expected a depth range to be set before drawing bodies")
			}
		}
	}

	if findLabel(rec, "Earth") == -1 || findLabel(rec, "Moon") == -1 {
		t.Fatal("expected earth and moon labels")
	}

	stats := r.Stats()
	if stats.Frame != 1 || stats.RenderListEntries != len(r.RenderList()) || stats.Partitions != len(r.Partitions()) {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.LightLists != 1 {
		t.Fatalf("expected 1 light list; got %d", stats.LightLists)
	}
}

func TestRenderListInvariants(t *testing.T) {
	sys := newTestSystem(t, 0)
	snap := sys.universe.Snapshot(0)
	obs := sys.observer(snap, 1e6)

	r := newTestRenderer(t, gfx.NewRecorder(0), nil)
	r.SetRenderFlags(r.RenderFlags() | ShowOrbits)
	if err := r.Render(obs, snap, 6); err != nil {
		t.Fatal(err)
	}

	list := r.RenderList()
	if len(list) == 0 {
		t.Fatal("expected a non-empty render list")
	}
	for index, e := range list {
		if index > 0 && e.CenterZ > list[index-1].CenterZ {
			t.Fatalf("[entry %d] expected render list to be sorted far to near", index)
		}
		if e.NearZ < r.config.MinNearPlane {
			t.Fatalf("[entry %d] near plane %f below the minimum", index, e.NearZ)
		}
		if e.FarZ/e.NearZ > r.config.MaxDepthRatio*1.0001 {
			t.Fatalf("[entry %d] depth ratio %f exceeds the maximum", index, e.FarZ/e.NearZ)
		}
	}

	parts := r.Partitions()
	for index := 1; index < len(parts); index++ {
		if parts[index].NearZ != parts[index-1].FarZ {
			t.Fatalf("[partition %d] expected partitions to be contiguous", index)
		}
	}
}

func TestMagnitudeAndVisibilityPolicy(t *testing.T) {
	sys := newTestSystem(t, 0)
	snap := sys.universe.Snapshot(0)
	obs := sys.observer(snap, 1e6)

	cfg := DefaultConfig()
	cfg.RenderFlags &^= ShowAutoMag

	rec := gfx.NewRecorder(0)
	r := newTestRenderer(t, rec, &cfg)

	// Nothing is brighter than magnitude -30.
	if err := r.Render(obs, snap, -30); err != nil {
		t.Fatal(err)
	}
	if got := rec.Count(gfx.OpDrawBody); got != 0 {
		t.Fatalf("expected every body to be culled by magnitude; got %d", got)
	}

	// The reference body is always drawn.
	obs.Reference = sys.earth.ID
	if err := r.Render(obs, snap, -30); err != nil {
		t.Fatal(err)
	}
	if findBody(rec, "Earth") == nil || findBody(rec, "Moon") != nil {
		t.Fatal("expected only the reference body to be drawn")
	}

	// A custom policy takes over.
	obs.Reference = 0
	r.SetVisibilityPolicy(func(n *scene.Node, _ *scene.Observer) bool { return n.Class == scene.ClassMoon })
	if err := r.Render(obs, snap, -30); err != nil {
		t.Fatal(err)
	}
	if findBody(rec, "Earth") != nil || findBody(rec, "Moon") == nil {
		t.Fatal("expected only the moon to be drawn")
	}
}

func TestCulling(t *testing.T) {
	sys := newTestSystem(t, 0)
	snap := sys.universe.Snapshot(0)

	type spec struct {
		descr  string
		setup  func(r *Renderer, obs *scene.Observer)
		expNum int
	}
	specs := []spec{
		{"default", func(*Renderer, *scene.Observer) {}, 2},
		{"looking away", func(_ *Renderer, obs *scene.Observer) {
			obs.LookAt(obs.Position.Add(mgl64.Vec3{0, 0, 1}), mgl64.Vec3{0, 1, 0})
		}, 0},
		{"distance limit", func(r *Renderer, _ *scene.Observer) { r.SetDistanceLimit(1e5) }, 0},
		{"planets hidden", func(r *Renderer, _ *scene.Observer) { r.SetRenderFlags(r.RenderFlags() &^ ShowPlanets) }, 0},
		{"feature size", func(r *Renderer, _ *scene.Observer) { r.SetMinimumFeatureSize(3) }, 1},
		// The earth's subtree projects to ~280 pixels; above that its
		// children are skipped.
		{"orbit size", func(r *Renderer, _ *scene.Observer) { r.SetMinimumOrbitSize(1000) }, 1},
	}

	for index, s := range specs {
		rec := gfx.NewRecorder(0)
		r := newTestRenderer(t, rec, nil)
		obs := sys.observer(snap, 1e6)
		s.setup(r, obs)

		if err := r.Render(obs, snap, 6); err != nil {
			t.Fatal(err)
		}
		if got := rec.Count(gfx.OpDrawBody); got != s.expNum {
			t.Fatalf("[spec %d: %s] expected %d bodies; got %d", index, s.descr, s.expNum, got)
		}
	}
}

func TestOrbitPaths(t *testing.T) {
	sys := newTestSystem(t, 0)
	snap := sys.universe.Snapshot(0)
	obs := sys.observer(snap, 1e6)

	rec := gfx.NewRecorder(0)
	r := newTestRenderer(t, rec, nil)

	if err := r.Render(obs, snap, 6); err != nil {
		t.Fatal(err)
	}
	if len(r.OrbitPathList()) != 0 {
		t.Fatal("expected no orbit paths while orbits are hidden")
	}

	r.SetRenderFlags(r.RenderFlags() | ShowOrbits)
	if err := r.Render(obs, snap, 6); err != nil {
		t.Fatal(err)
	}
	if got := len(r.OrbitPathList()); got != 2 {
		t.Fatalf("expected 2 orbit paths; got %d", got)
	}
	orbits := r.OrbitPathList()
	for i := 1; i < len(orbits); i++ {
		if orbits[i].CenterZ > orbits[i-1].CenterZ {
			t.Fatalf("expected orbit paths sorted far to near; entry %d at %v follows %v", i, orbits[i].CenterZ, orbits[i-1].CenterZ)
		}
	}

	strips := 0
	for _, cmd := range rec.Filter(gfx.OpDrawLines) {
		if cmd.LineMode == gfx.LineStrip && len(cmd.Points) > 1 {
			strips++
		}
	}
	if strips == 0 {
		t.Fatal("expected orbit paths to be drawn as line strips")
	}
	if r.Stats().OrbitCacheEntries != 2 {
		t.Fatalf("expected 2 cached orbits; got %d", r.Stats().OrbitCacheEntries)
	}

	// A second frame at the same time is served from the cache.
	computed := r.Stats().OrbitSamples
	if err := r.Render(obs, snap, 6); err != nil {
		t.Fatal(err)
	}
	if r.Stats().OrbitSamples != computed {
		t.Fatalf("expected no new samples; computed %d more", r.Stats().OrbitSamples-computed)
	}

	// Masked orbits are skipped unless selected.
	r.SetOrbitMask(scene.ClassPlanet)
	if err := r.Render(obs, snap, 6); err != nil {
		t.Fatal(err)
	}
	if got := len(r.OrbitPathList()); got != 1 {
		t.Fatalf("expected 1 orbit path with moons masked; got %d", got)
	}
	r.SetSelection(sys.moon.ID)
	if err := r.Render(obs, snap, 6); err != nil {
		t.Fatal(err)
	}
	if got := len(r.OrbitPathList()); got != 2 {
		t.Fatalf("expected the selected moon orbit to be drawn; got %d paths", got)
	}
}

func TestEclipseShadowsOnBodies(t *testing.T) {
	// The moon sits between the sun and the earth.
	sys := newTestSystem(t, math.Pi)
	snap := sys.universe.Snapshot(0)
	obs := sys.observer(snap, 1e6)

	rec := gfx.NewRecorder(0)
	r := newTestRenderer(t, rec, nil)
	if err := r.Render(obs, snap, 6); err != nil {
		t.Fatal(err)
	}

	earth := findBody(rec, "Earth")
	if earth == nil || len(earth.Shadows) != 1 {
		t.Fatalf("expected earth to receive 1 shadow; got %+v", earth)
	}
	if earth.Shadows[0].PenumbraRadius <= 0 {
		t.Fatalf("expected a positive penumbra radius; got %f", earth.Shadows[0].PenumbraRadius)
	}
	if r.Stats().Shadows != 1 {
		t.Fatalf("expected stats to report 1 shadow; got %d", r.Stats().Shadows)
	}

	r.SetRenderFlags(r.RenderFlags() &^ ShowEclipseShadows)
	if err := r.Render(obs, snap, 6); err != nil {
		t.Fatal(err)
	}
	if earth = findBody(rec, "Earth"); len(earth.Shadows) != 0 {
		t.Fatal("expected no shadows with eclipse shadows disabled")
	}
}

func TestMarkersAndSelection(t *testing.T) {
	sys := newTestSystem(t, 0)
	sys.universe.Markers = append(sys.universe.Markers, scene.Marker{
		Target: sys.earth.ID,
		Symbol: "diamond",
		Color:  types.RGB(1, 0, 0),
		Label:  "Home",
	})
	snap := sys.universe.Snapshot(0)
	obs := sys.observer(snap, 1e6)

	rec := gfx.NewRecorder(0)
	r := newTestRenderer(t, rec, nil)
	r.SetSelection(sys.earth.ID)
	if err := r.Render(obs, snap, 6); err != nil {
		t.Fatal(err)
	}

	home := findLabel(rec, "Home")
	if home == -1 {
		t.Fatal("expected marker label to be drawn")
	}
	if m := rec.Commands[home].Label.Marker; m == nil || m.Symbol != gfx.MarkerDiamond || m.Size != defaultMarkerSize {
		t.Fatalf("unexpected marker glyph %+v", m)
	}

	var cursor bool
	lastBody := -1
	for index, cmd := range rec.Commands {
		if cmd.Op == gfx.OpDrawBody {
			lastBody = index
		}
		if cmd.Op == gfx.OpDrawLabel && cmd.Label.Marker != nil && cmd.Label.Marker.Symbol == gfx.MarkerSelection {
			cursor = true
		}
	}
	if !cursor {
		t.Fatal("expected a selection cursor")
	}
	if home < lastBody {
		t.Fatal("expected foreground labels to be drawn after all bodies")
	}

	r.SetRenderFlags(r.RenderFlags() &^ ShowMarkers)
	if err := r.Render(obs, snap, 6); err != nil {
		t.Fatal(err)
	}
	if findLabel(rec, "Home") != -1 {
		t.Fatal("expected markers to be hidden")
	}
}

func TestAnnotationQueues(t *testing.T) {
	sys := newTestSystem(t, 0)
	snap := sys.universe.Snapshot(0)
	obs := sys.observer(snap, 1e6)

	rec := gfx.NewRecorder(0)
	r := newTestRenderer(t, rec, nil)
	r.SetLabelMode(NoLabels)

	r.AddBackgroundAnnotation("back", types.XYZ(0, 0, -1), annotation.Style{Color: types.RGB(1, 1, 1)})
	r.AddForegroundAnnotation("front", types.XYZ(0, 0, -1), annotation.Style{Color: types.RGB(1, 1, 1)})
	if err := r.Render(obs, snap, 6); err != nil {
		t.Fatal(err)
	}

	back, front := findLabel(rec, "back"), findLabel(rec, "front")
	if back == -1 || front == -1 || back > front {
		t.Fatalf("expected background label before foreground label; got %d, %d", back, front)
	}
	if findBody(rec, "Earth") == nil {
		t.Fatal("expected earth to be drawn")
	}
	for index, cmd := range rec.Commands {
		if cmd.Op == gfx.OpDrawBody && (index < back || index > front) {
			t.Fatal("expected bodies to be drawn between background and foreground labels")
		}
	}

	// Queued labels only live for one frame.
	if err := r.Render(obs, snap, 6); err != nil {
		t.Fatal(err)
	}
	if findLabel(rec, "back") != -1 || findLabel(rec, "front") != -1 {
		t.Fatal("expected annotation queues to be cleared after each frame")
	}

	r.AddForegroundAnnotation("front", types.XYZ(0, 0, -1), annotation.Style{Color: types.RGB(1, 1, 1)})
	r.ClearAnnotations()
	if err := r.Render(obs, snap, 6); err != nil {
		t.Fatal(err)
	}
	if findLabel(rec, "front") != -1 {
		t.Fatal("expected ClearAnnotations to drop queued labels")
	}
}

func TestStarBatching(t *testing.T) {
	const numStars = 5000

	var roots []*scene.Node
	for i := 0; i < numStars; i++ {
		angle := float64(i) * 2 * math.Pi / numStars
		roots = append(roots, &scene.Node{
			Kind:     scene.KindStar,
			Class:    scene.ClassStar,
			Radius:   696000,
			Position: mgl64.Vec3{1e13 * math.Cos(angle), 1e13 * math.Sin(angle), -10 * scene.KmPerParsec},
			Star:     &scene.StarInfo{AbsMag: 1, Temperature: 5800},
		})
	}
	u, err := scene.NewUniverse(roots...)
	if err != nil {
		t.Fatal(err)
	}
	snap := u.Snapshot(0)
	obs := scene.NewObserver(math.Pi / 4)

	type spec struct {
		caps       gfx.Capability
		style      StarStyle
		expMode    gfx.StarMode
		expBatches int
	}
	specs := []spec{
		{gfx.PointSprite, FuzzyPointStars, gfx.StarSprites, 3},
		{0, FuzzyPointStars, gfx.StarQuads, 3},
		{gfx.PointSprite, PointStars, gfx.StarPoints, 3},
		{0, ScaledDiscStars, gfx.StarQuads, 3},
	}

	for index, s := range specs {
		rec := gfx.NewRecorder(s.caps)
		r := newTestRenderer(t, rec, nil)
		r.SetStarStyle(s.style)
		if err := r.Render(obs, snap, 6); err != nil {
			t.Fatal(err)
		}

		batches := rec.Filter(gfx.OpDrawStars)
		if len(batches) != s.expBatches {
			t.Fatalf("[spec %d] expected %d star batches; got %d", index, s.expBatches, len(batches))
		}
		for _, b := range batches {
			if b.Stars.Mode != s.expMode {
				t.Fatalf("[spec %d] expected star mode %s; got %s", index, s.expMode, b.Stars.Mode)
			}
			if len(b.Stars.Vertices) != b.Stars.Count*s.expMode.VerticesPerStar() {
				t.Fatalf("[spec %d] vertex count does not match star count", index)
			}
		}
		if rec.StarCount() != numStars || r.Stats().StarsDrawn != numStars {
			t.Fatalf("[spec %d] expected %d stars; got %d", index, numStars, rec.StarCount())
		}
		if r.Stats().LightLists != numStars {
			t.Fatalf("[spec %d] expected one light list per star system; got %d", index, r.Stats().LightLists)
		}
	}
}

func TestAutoMag(t *testing.T) {
	r := newTestRenderer(t, gfx.NewRecorder(0), nil)

	if got := r.autoMag(math.Pi / 4); math.Abs(got-8.5) > 1e-6 {
		t.Fatalf("expected auto magnitude 8.5 at 45 degrees; got %f", got)
	}
	if r.autoMag(math.Pi/16) <= r.autoMag(math.Pi/4) {
		t.Fatal("expected narrower fields of view to reveal fainter objects")
	}
	if r.autoMag(math.Pi/2) >= r.autoMag(math.Pi/4) {
		t.Fatal("expected wider fields of view to hide faint objects")
	}
}

func TestRenderAfterClose(t *testing.T) {
	sys := newTestSystem(t, 0)
	snap := sys.universe.Snapshot(0)

	r := newTestRenderer(t, gfx.NewRecorder(0), nil)
	r.Close()
	if err := r.Render(sys.observer(snap, 1e6), snap, 6); err != ErrNoContext {
		t.Fatalf("expected ErrNoContext; got %v", err)
	}
	// Closing twice is harmless.
	r.Close()
}
