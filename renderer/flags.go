package renderer

import (
	"fmt"

	"github.com/achilleasa/orrery/scene"
)

// RenderFlags select the feature categories drawn each frame.
//
// ShowDiagrams, ShowCloudMaps, ShowNightMaps, ShowBoundaries and
// ShowCloudShadows, like the LocationLabels label mode, are never consulted
// by the renderer. They round-trip through settings and the flag listing so
// a context drawing those features can read them via RenderFlags().
type RenderFlags uint64

const (
	ShowStars RenderFlags = 1 << iota
	ShowPlanets
	ShowGalaxies
	ShowDiagrams
	ShowCloudMaps
	ShowOrbits
	ShowCelestialSphere
	ShowNightMaps
	ShowAtmospheres
	ShowSmoothLines
	ShowEclipseShadows
	ShowStarsAsPoints
	ShowRingShadows
	ShowBoundaries
	ShowAutoMag
	ShowCometTails
	ShowMarkers
	ShowPartialTrajectories
	ShowNebulae
	ShowOpenClusters
	ShowCloudShadows
)

const DefaultRenderFlags = ShowStars | ShowPlanets | ShowGalaxies | ShowCloudMaps |
	ShowAtmospheres | ShowSmoothLines | ShowEclipseShadows | ShowRingShadows |
	ShowAutoMag | ShowCometTails | ShowMarkers | ShowNebulae | ShowOpenClusters

// LabelMode selects the label categories drawn each frame.
type LabelMode uint32

const (
	StarLabels LabelMode = 1 << iota
	PlanetLabels
	MoonLabels
	ConstellationLabels
	GalaxyLabels
	AsteroidLabels
	SpacecraftLabels
	LocationLabels
	CometLabels
	NebulaLabels
	OpenClusterLabels
	I18nConstellationLabels
	DwarfPlanetLabels

	NoLabels      LabelMode = 0
	BodyLabelMask           = PlanetLabels | DwarfPlanetLabels | MoonLabels | AsteroidLabels | SpacecraftLabels | CometLabels
)

const DefaultLabelMode = PlanetLabels | DwarfPlanetLabels | MoonLabels | StarLabels

// Star rendering styles.
type StarStyle uint8

const (
	FuzzyPointStars StarStyle = iota
	PointStars
	ScaledDiscStars
)

// Texture detail level.
type TextureResolution uint8

const (
	TextureLow TextureResolution = iota
	TextureMedium
	TextureHigh
)

type flagName struct {
	bit  uint64
	name string
}

var renderFlagNames = []flagName{
	{uint64(ShowStars), "stars"},
	{uint64(ShowPlanets), "planets"},
	{uint64(ShowGalaxies), "galaxies"},
	{uint64(ShowDiagrams), "diagrams"},
	{uint64(ShowCloudMaps), "cloud-maps"},
	{uint64(ShowOrbits), "orbits"},
	{uint64(ShowCelestialSphere), "celestial-sphere"},
	{uint64(ShowNightMaps), "night-maps"},
	{uint64(ShowAtmospheres), "atmospheres"},
	{uint64(ShowSmoothLines), "smooth-lines"},
	{uint64(ShowEclipseShadows), "eclipse-shadows"},
	{uint64(ShowStarsAsPoints), "stars-as-points"},
	{uint64(ShowRingShadows), "ring-shadows"},
	{uint64(ShowBoundaries), "boundaries"},
	{uint64(ShowAutoMag), "auto-mag"},
	{uint64(ShowCometTails), "comet-tails"},
	{uint64(ShowMarkers), "markers"},
	{uint64(ShowPartialTrajectories), "partial-trajectories"},
	{uint64(ShowNebulae), "nebulae"},
	{uint64(ShowOpenClusters), "open-clusters"},
	{uint64(ShowCloudShadows), "cloud-shadows"},
}

var labelModeNames = []flagName{
	{uint64(StarLabels), "stars"},
	{uint64(PlanetLabels), "planets"},
	{uint64(MoonLabels), "moons"},
	{uint64(ConstellationLabels), "constellations"},
	{uint64(GalaxyLabels), "galaxies"},
	{uint64(AsteroidLabels), "asteroids"},
	{uint64(SpacecraftLabels), "spacecraft"},
	{uint64(LocationLabels), "locations"},
	{uint64(CometLabels), "comets"},
	{uint64(NebulaLabels), "nebulae"},
	{uint64(OpenClusterLabels), "open-clusters"},
	{uint64(I18nConstellationLabels), "i18n-constellations"},
	{uint64(DwarfPlanetLabels), "dwarf-planets"},
}

var starStyleNames = []string{"fuzzy", "points", "scaled-discs"}

var textureResolutionNames = []string{"low", "medium", "high"}

func namesOf(bits uint64, table []flagName) []string {
	names := make([]string, 0, len(table))
	for _, fn := range table {
		if bits&fn.bit != 0 {
			names = append(names, fn.name)
		}
	}
	return names
}

func parseNames(names []string, table []flagName, kind string) (uint64, error) {
	var bits uint64
next:
	for _, name := range names {
		for _, fn := range table {
			if fn.name == name {
				bits |= fn.bit
				continue next
			}
		}
		return 0, fmt.Errorf("renderer: unknown %s '%s'", kind, name)
	}
	return bits, nil
}

// Names of the enabled flags.
func (f RenderFlags) Names() []string {
	return namesOf(uint64(f), renderFlagNames)
}

// Parse a list of render flag names.
func ParseRenderFlags(names []string) (RenderFlags, error) {
	bits, err := parseNames(names, renderFlagNames, "render flag")
	return RenderFlags(bits), err
}

// All known render flag names.
func RenderFlagNames() []string {
	return namesOf(^uint64(0), renderFlagNames)
}

// Names of the enabled label categories.
func (m LabelMode) Names() []string {
	return namesOf(uint64(m), labelModeNames)
}

// Parse a list of label category names.
func ParseLabelMode(names []string) (LabelMode, error) {
	bits, err := parseNames(names, labelModeNames, "label category")
	return LabelMode(bits), err
}

// All known label category names.
func LabelModeNames() []string {
	return namesOf(^uint64(0), labelModeNames)
}

func (s StarStyle) String() string {
	if int(s) < len(starStyleNames) {
		return starStyleNames[s]
	}
	return "unknown"
}

// Parse a star style name.
func ParseStarStyle(name string) (StarStyle, error) {
	for index, n := range starStyleNames {
		if n == name {
			return StarStyle(index), nil
		}
	}
	return FuzzyPointStars, fmt.Errorf("renderer: unknown star style '%s'", name)
}

func (r TextureResolution) String() string {
	if int(r) < len(textureResolutionNames) {
		return textureResolutionNames[r]
	}
	return "unknown"
}

// Parse a texture resolution name.
func ParseTextureResolution(name string) (TextureResolution, error) {
	for index, n := range textureResolutionNames {
		if n == name {
			return TextureResolution(index), nil
		}
	}
	return TextureMedium, fmt.Errorf("renderer: unknown texture resolution '%s'", name)
}

// Names of the classes in an orbit mask.
func ClassNames(mask scene.Class) []string {
	names := []string{}
	for bit := scene.Class(1); bit <= scene.ClassAll && bit != 0; bit <<= 1 {
		if mask&bit != 0 {
			names = append(names, bit.String())
		}
	}
	return names
}

// Parse a list of class names into a mask.
func ParseClassNames(names []string) (scene.Class, error) {
	var mask scene.Class
	for _, name := range names {
		c, ok := scene.ParseClass(name)
		if !ok {
			return scene.ClassNone, fmt.Errorf("renderer: unknown class '%s'", name)
		}
		mask |= c
	}
	return mask, nil
}

// The label category enabling labels for a class.
func labelModeForClass(c scene.Class) LabelMode {
	switch c {
	case scene.ClassStar:
		return StarLabels
	case scene.ClassPlanet:
		return PlanetLabels
	case scene.ClassDwarfPlanet:
		return DwarfPlanetLabels
	case scene.ClassMoon:
		return MoonLabels
	case scene.ClassAsteroid:
		return AsteroidLabels
	case scene.ClassComet:
		return CometLabels
	case scene.ClassSpacecraft:
		return SpacecraftLabels
	case scene.ClassGalaxy:
		return GalaxyLabels
	case scene.ClassNebula:
		return NebulaLabels
	case scene.ClassOpenCluster:
		return OpenClusterLabels
	}
	return NoLabels
}

// The render flag controlling whether deep-sky objects of a class are drawn.
func renderFlagForDeepSky(c scene.Class) RenderFlags {
	switch c {
	case scene.ClassNebula:
		return ShowNebulae
	case scene.ClassOpenCluster:
		return ShowOpenClusters
	}
	return ShowGalaxies
}
