package renderer

import (
	"testing"

	"github.com/achilleasa/orrery/gfx"
	"github.com/achilleasa/orrery/renderer/annotation"
	"github.com/achilleasa/orrery/scene"
	"github.com/achilleasa/orrery/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchers(t *testing.T) {
	r := newTestRenderer(t, gfx.NewRecorder(0), nil)

	var first, second []*Config
	w1 := NewFuncWatcher(func(cfg *Config) { first = append(first, cfg) })
	w2 := NewFuncWatcher(func(cfg *Config) { second = append(second, cfg) })
	r.AddWatcher(w1)
	r.AddWatcher(w2)

	assert.False(t, r.SettingsHaveChanged())
	r.SetRenderFlags(ShowStars | ShowOrbits)
	assert.True(t, r.SettingsHaveChanged())
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, ShowStars|ShowOrbits, first[0].RenderFlags)

	// Watchers receive private copies.
	first[0].RenderFlags = 0
	first[0].StarColors.Entries[0].Kelvin = -1
	assert.Equal(t, ShowStars|ShowOrbits, r.RenderFlags())
	assert.NotEqual(t, float32(-1), r.config.StarColors.Entries[0].Kelvin)
	assert.NotNil(t, first[0].VisibilityPolicy)

	r.MarkSettingsChanged(false)
	r.RemoveWatcher(w1)
	r.RemoveWatcher(NewFuncWatcher(nil))
	r.SetLabelMode(StarLabels)
	assert.Len(t, first, 1)
	require.Len(t, second, 2)
	assert.Equal(t, StarLabels, second[1].LabelMode)
	assert.True(t, r.SettingsHaveChanged())
}

func TestSettersNotify(t *testing.T) {
	r := newTestRenderer(t, gfx.NewRecorder(0), nil)

	notifications := 0
	r.AddWatcher(NewFuncWatcher(func(*Config) { notifications++ }))

	setters := []func(){
		func() { r.SetRenderFlags(ShowStars) },
		func() { r.SetLabelMode(NoLabels) },
		func() { r.SetOrbitMask(scene.ClassPlanet) },
		func() { r.SetAmbientLightLevel(0.2) },
		func() { r.SetMinimumOrbitSize(10) },
		func() { r.SetMinimumFeatureSize(2) },
		func() { r.SetDistanceLimit(1e12) },
		func() { r.SetFaintestAM45deg(7) },
		func() { r.SetStarStyle(PointStars) },
		func() { r.SetScreenDPI(144) },
		func() { r.SetTextureResolution(TextureHigh) },
		func() { r.SetVideoSync(false) },
		func() { r.SetColorScheme(DefaultColorScheme()) },
		func() { r.SetStarColorTable(nil) },
		func() { r.SetVisibilityPolicy(nil) },
		func() { require.NoError(t, r.SetOrbitPathSamplePoints(64)) },
	}
	for index, set := range setters {
		set()
		assert.Equal(t, index+1, notifications, "setter %d", index)
	}

	cfg := r.Config()
	assert.Equal(t, ShowStars, cfg.RenderFlags)
	assert.Equal(t, scene.ClassPlanet, cfg.OrbitMask)
	assert.Equal(t, float32(7), cfg.FaintestAutoMag45deg)
	assert.Equal(t, PointStars, cfg.StarStyle)
	assert.Equal(t, 144, cfg.ScreenDPI)
	assert.False(t, cfg.VideoSync)
	assert.Equal(t, 64, r.orbitCache.Resolution())

	assert.Equal(t, ErrInvalidDetailOptions, r.SetOrbitPathSamplePoints(2))
}

func TestSetConfig(t *testing.T) {
	r := newTestRenderer(t, gfx.NewRecorder(0), nil)

	cfg := DefaultConfig()
	cfg.MaxAnnotations = 1
	cfg.MaxDepthPartitions = 4
	cfg.VisibilityPolicy = nil
	require.NoError(t, r.SetConfig(&cfg))

	style := annotation.Style{Color: types.RGB(1, 1, 1)}
	assert.True(t, r.AddForegroundAnnotation("a", types.XYZ(0, 0, -1), style))
	assert.False(t, r.AddForegroundAnnotation("b", types.XYZ(0, 0, -1), style))
	assert.Equal(t, 4, r.partitioner.MaxPartitions)
	assert.NotNil(t, r.config.VisibilityPolicy)

	// Zero sizing values fall back to the defaults.
	cfg.StarBufferCapacity = 0
	require.NoError(t, r.SetConfig(&cfg))
	assert.Equal(t, DefaultConfig().StarBufferCapacity, r.starQuads.Capacity())
}

func TestLightPool(t *testing.T) {
	var pool LightPool

	a := pool.Get()
	b := pool.Get()
	a.Lights = append(a.Lights, LightSource{Luminosity: 1})
	assert.Equal(t, 2, pool.Borrowed())
	assert.Equal(t, 0, pool.Free())

	pool.Put(a)
	assert.Equal(t, 1, pool.Borrowed())
	assert.Equal(t, 1, pool.Free())
	assert.Equal(t, 0, a.Len())

	// Recycled lists are handed out again.
	c := pool.Get()
	assert.True(t, c == a)

	pool.Recycle()
	assert.Equal(t, 0, pool.Borrowed())
	assert.Equal(t, 2, pool.Free())

	// Foreign lists are ignored.
	pool.Put(&LightList{})
	assert.Equal(t, 2, pool.Free())
	_ = b
}

func TestConfigClone(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()

	clone.Colors.PlanetLabel = types.RGB(1, 0, 1)
	clone.StarColors.Entries[0].Color = types.RGB(0, 1, 0)
	assert.NotEqual(t, clone.Colors.PlanetLabel, cfg.Colors.PlanetLabel)
	assert.NotEqual(t, clone.StarColors.Entries[0].Color, cfg.StarColors.Entries[0].Color)
	assert.NotNil(t, clone.VisibilityPolicy)
}

func TestSinkOnlyFlagsAreKept(t *testing.T) {
	sys := newTestSystem(t, 0)
	snap := sys.universe.Snapshot(0)

	rec := gfx.NewRecorder(0)
	r := newTestRenderer(t, rec, nil)
	sinkOnly := ShowDiagrams | ShowCloudMaps | ShowNightMaps | ShowBoundaries | ShowCloudShadows
	r.SetRenderFlags(ShowStars | ShowPlanets | sinkOnly)
	r.SetLabelMode(PlanetLabels | LocationLabels)
	require.NoError(t, r.Render(sys.observer(snap, 1e6), snap, 6))

	assert.Equal(t, ShowStars|ShowPlanets|sinkOnly, r.RenderFlags())
	assert.Equal(t, PlanetLabels|LocationLabels, r.LabelMode())
	assert.NotNil(t, findBody(rec, "Earth"))
}
