package renderer

import (
	"github.com/achilleasa/orrery/scene"
	"github.com/achilleasa/orrery/types"
	"github.com/jinzhu/copier"
)

// A VisibilityPolicy reports whether a node must be drawn regardless of its
// apparent magnitude and projected size. Frustum culling still applies.
type VisibilityPolicy func(node *scene.Node, observer *scene.Observer) bool

// The default policy keeps nodes flagged as always visible and the body the
// observer is attached to.
func DefaultVisibilityPolicy(node *scene.Node, observer *scene.Observer) bool {
	return node.AlwaysVisible || (observer != nil && observer.Reference != 0 && observer.Reference == node.ID)
}

// ColorScheme holds the label, orbit and decoration colors.
type ColorScheme struct {
	Background types.Color

	StarLabel          types.Color
	PlanetLabel        types.Color
	DwarfPlanetLabel   types.Color
	MoonLabel          types.Color
	AsteroidLabel      types.Color
	CometLabel         types.Color
	SpacecraftLabel    types.Color
	GalaxyLabel        types.Color
	NebulaLabel        types.Color
	OpenClusterLabel   types.Color
	ConstellationLabel types.Color
	CelestialGrid      types.Color

	StarOrbit        types.Color
	PlanetOrbit      types.Color
	DwarfPlanetOrbit types.Color
	MoonOrbit        types.Color
	AsteroidOrbit    types.Color
	CometOrbit       types.Color
	SpacecraftOrbit  types.Color
	SelectedOrbit    types.Color

	Selection      types.Color
	BodyAxes       types.Color
	FrameAxes      types.Color
	SunDirection   types.Color
	VelocityVector types.Color
	CometTail      types.Color
}

// The built-in color scheme.
func DefaultColorScheme() ColorScheme {
	return ColorScheme{
		Background: types.RGB(0, 0, 0),

		StarLabel:          types.RGB(0.471, 0.356, 0.682),
		PlanetLabel:        types.RGB(0.407, 0.333, 0.964),
		DwarfPlanetLabel:   types.RGB(0.557, 0.409, 0.974),
		MoonLabel:          types.RGB(0.231, 0.733, 0.792),
		AsteroidLabel:      types.RGB(0.596, 0.305, 0.164),
		CometLabel:         types.RGB(0.768, 0.607, 0.227),
		SpacecraftLabel:    types.RGB(0.93, 0.93, 0.93),
		GalaxyLabel:        types.RGB(0.0, 0.45, 0.5),
		NebulaLabel:        types.RGB(0.541, 0.764, 0.278),
		OpenClusterLabel:   types.RGB(0.239, 0.572, 0.396),
		ConstellationLabel: types.RGB(0.225, 0.301, 0.36),
		CelestialGrid:      types.RGB(0.3, 0.3, 0.3),

		StarOrbit:        types.RGB(0.5, 0.5, 0.8),
		PlanetOrbit:      types.RGB(0.3, 0.323, 0.833),
		DwarfPlanetOrbit: types.RGB(0.3, 0.323, 0.833),
		MoonOrbit:        types.RGB(0.08, 0.407, 0.392),
		AsteroidOrbit:    types.RGB(0.58, 0.152, 0.08),
		CometOrbit:       types.RGB(0.639, 0.487, 0.168),
		SpacecraftOrbit:  types.RGB(0.4, 0.4, 0.4),
		SelectedOrbit:    types.RGB(1.0, 0.0, 0.0),

		Selection:      types.RGB(1.0, 0.0, 0.0),
		BodyAxes:       types.RGB(0.8, 0.8, 0.8),
		FrameAxes:      types.RGB(0.5, 0.8, 0.5),
		SunDirection:   types.RGB(1.0, 1.0, 0.5),
		VelocityVector: types.RGB(0.5, 0.8, 1.0),
		CometTail:      types.RGB(0.6, 0.7, 1.0),
	}
}

// The label color for an object class.
func (cs *ColorScheme) LabelColor(c scene.Class) types.Color {
	switch c {
	case scene.ClassStar:
		return cs.StarLabel
	case scene.ClassPlanet:
		return cs.PlanetLabel
	case scene.ClassDwarfPlanet:
		return cs.DwarfPlanetLabel
	case scene.ClassMoon:
		return cs.MoonLabel
	case scene.ClassAsteroid:
		return cs.AsteroidLabel
	case scene.ClassComet:
		return cs.CometLabel
	case scene.ClassSpacecraft:
		return cs.SpacecraftLabel
	case scene.ClassGalaxy:
		return cs.GalaxyLabel
	case scene.ClassNebula:
		return cs.NebulaLabel
	case scene.ClassOpenCluster:
		return cs.OpenClusterLabel
	}
	return cs.SpacecraftLabel
}

// The orbit color for an object class.
func (cs *ColorScheme) OrbitColor(c scene.Class) types.Color {
	switch c {
	case scene.ClassStar:
		return cs.StarOrbit
	case scene.ClassPlanet:
		return cs.PlanetOrbit
	case scene.ClassDwarfPlanet:
		return cs.DwarfPlanetOrbit
	case scene.ClassMoon:
		return cs.MoonOrbit
	case scene.ClassAsteroid:
		return cs.AsteroidOrbit
	case scene.ClassComet:
		return cs.CometOrbit
	}
	return cs.SpacecraftOrbit
}

// Config holds every tunable consulted by the frame loop. A Renderer owns
// one Config; callers change it through the Renderer setters so that
// watchers are notified.
type Config struct {
	RenderFlags RenderFlags
	LabelMode   LabelMode

	// Classes whose orbits are drawn when ShowOrbits is set.
	OrbitMask scene.Class

	AmbientLightLevel float32

	// Minimum projected size in pixels for an orbit to be drawn and for a
	// subtree's children to be visited.
	MinimumOrbitSize float32

	// Bodies with a smaller projected disc (pixels) are culled unless they
	// have visible children.
	MinimumFeatureSize float32

	// Subtrees farther than this (km) are pruned.
	DistanceLimit float64

	// Faintest magnitude at a 45 degree field of view when ShowAutoMag is set.
	FaintestAutoMag45deg float32

	ScreenDPI         int
	StarStyle         StarStyle
	TextureResolution TextureResolution
	VideoSync         bool

	Colors     ColorScheme
	StarColors *types.ColorTemperatureTable

	// Annotation queue capacities.
	MaxAnnotations       int
	MaxSortedAnnotations int

	// Orbit cache eviction.
	OrbitCacheMaxAge        uint64
	OrbitCacheFlushInterval uint64

	// Depth partitioning.
	MinNearPlane       float32
	MaxDepthRatio      float32
	MaxDepthPartitions int
	DepthBias          float32

	// Stars per batch for the star buffers.
	StarBufferCapacity int

	VisibilityPolicy VisibilityPolicy `copier:"-"`
}

// The default configuration.
func DefaultConfig() Config {
	return Config{
		RenderFlags:             DefaultRenderFlags,
		LabelMode:               DefaultLabelMode,
		OrbitMask:               scene.ClassPlanet | scene.ClassDwarfPlanet | scene.ClassMoon | scene.ClassAsteroid | scene.ClassComet | scene.ClassSpacecraft,
		AmbientLightLevel:       0.1,
		MinimumOrbitSize:        20,
		MinimumFeatureSize:      0,
		DistanceLimit:           1e24,
		FaintestAutoMag45deg:    8.5,
		ScreenDPI:               96,
		StarStyle:               FuzzyPointStars,
		TextureResolution:       TextureMedium,
		VideoSync:               true,
		Colors:                  DefaultColorScheme(),
		StarColors:              types.DefaultStarColors(),
		MaxAnnotations:          256,
		MaxSortedAnnotations:    1024,
		OrbitCacheMaxAge:        120,
		OrbitCacheFlushInterval: 60,
		MinNearPlane:            1e-3,
		MaxDepthRatio:           1e5,
		MaxDepthPartitions:      32,
		DepthBias:               0.01,
		StarBufferCapacity:      2048,
		VisibilityPolicy:        DefaultVisibilityPolicy,
	}
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := new(Config)
	if err := copier.CopyWithOption(out, c, copier.Option{DeepCopy: true}); err != nil {
		// Config only holds plain values; fall back to a shallow copy.
		*out = *c
	}
	out.VisibilityPolicy = c.VisibilityPolicy
	return out
}

// Fill zero values with their defaults.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.StarColors == nil {
		c.StarColors = def.StarColors
	}
	if c.VisibilityPolicy == nil {
		c.VisibilityPolicy = def.VisibilityPolicy
	}
	if c.MaxAnnotations <= 0 {
		c.MaxAnnotations = def.MaxAnnotations
	}
	if c.MaxSortedAnnotations <= 0 {
		c.MaxSortedAnnotations = def.MaxSortedAnnotations
	}
	if c.OrbitCacheFlushInterval == 0 {
		c.OrbitCacheFlushInterval = def.OrbitCacheFlushInterval
	}
	if !(c.MinNearPlane > 0) {
		c.MinNearPlane = def.MinNearPlane
	}
	if !(c.MaxDepthRatio > 1) {
		c.MaxDepthRatio = def.MaxDepthRatio
	}
	if c.MaxDepthPartitions <= 0 {
		c.MaxDepthPartitions = def.MaxDepthPartitions
	}
	if c.StarBufferCapacity <= 0 {
		c.StarBufferCapacity = def.StarBufferCapacity
	}
	if !(c.DistanceLimit > 0) {
		c.DistanceLimit = def.DistanceLimit
	}
}
