package reader

import (
	"math"
	"strings"
	"testing"

	"github.com/achilleasa/orrery/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultUniverse(t *testing.T) {
	u, err := DefaultUniverse()
	require.NoError(t, err)

	sol := u.Find("Sol")
	require.NotNil(t, sol)
	assert.Equal(t, scene.KindStar, sol.Kind)
	assert.True(t, sol.Has(scene.Emissive))

	moon := u.Find("Moon")
	require.NotNil(t, moon)
	assert.Equal(t, "Earth", moon.Parent.Name)
	assert.Equal(t, scene.ClassMoon, moon.Class)
	assert.Equal(t, sol, moon.SystemStar())

	jupiter := u.Find("Jupiter")
	require.NotNil(t, jupiter)
	assert.True(t, jupiter.Has(scene.HasRings|scene.HasAtmosphere))
	assert.Len(t, jupiter.Children, 4)

	andromeda := u.Find("Andromeda Galaxy")
	require.NotNil(t, andromeda)
	assert.Equal(t, scene.KindDeepSky, andromeda.Kind)
	assert.Equal(t, scene.ClassGalaxy, andromeda.Class)

	require.Len(t, u.Markers, 1)
	assert.Equal(t, u.Find("Mars").ID, u.Markers[0].Target)
	assert.NotEmpty(t, u.Asterisms)
}

func TestParseUniverse(t *testing.T) {
	doc := `
systems:
  - name: Star
    kind: star
    radius: 1000
    absMag: 4.83
    temperature: 5800
    children:
      - name: World
        radius: 10
        albedo: 0.3
        color: "#ff0000"
        capabilities: [surface, rings]
        orbit:
          semiMajorAxis: 5000
          eccentricity: 0
          inclination: 90
          period: 100
      - name: Station
        class: spacecraft
        radius: 0.1
        orbit:
          fixed: [0, 100, 0]
asterisms:
  - {name: North, ra: 0, dec: 90}
`
	u, err := ParseUniverse(strings.NewReader(doc))
	require.NoError(t, err)

	world := u.Find("World")
	require.NotNil(t, world)
	assert.Equal(t, scene.ClassPlanet, world.Class)
	assert.Equal(t, float32(1), world.Body.Color.R)
	assert.True(t, world.Has(scene.HasSurface|scene.HasRings))

	// An inclination of 90 degrees should move a quarter period into +Z
	pos := world.Orbit.PositionAt(25)
	assert.InDelta(t, 5000, math.Abs(pos[2]), 1e-3)

	station := u.Find("Station")
	require.NotNil(t, station)
	assert.Equal(t, scene.ClassSpacecraft, station.Class)
	assert.InDelta(t, 100, station.Orbit.PositionAt(0)[1], 1e-9)

	require.Len(t, u.Asterisms, 1)
	assert.InDelta(t, 1, u.Asterisms[0].Direction[2], 1e-9)
}

func TestParseUniverseErrors(t *testing.T) {
	type spec struct {
		doc    string
		expErr string
	}
	specs := []spec{
		{"systems: [{kind: star, radius: 1}]", "object without a name"},
		{"systems: [{name: A, kind: star}]", "object 'A' must have a positive radius"},
		{"systems: [{name: A, kind: quasar, radius: 1}]", "object 'A' has unknown kind 'quasar'"},
		{"systems: [{name: A, class: blob, radius: 1}]", "unknown class 'blob'"},
		{"systems: [{name: A, radius: 1, capabilities: [wings]}]", "object 'A' has unknown capability 'wings'"},
		{"systems: [{name: A, radius: 1, orbit: {semiMajorAxis: 1}}]", "elliptical orbit requires a positive semi-major axis and period"},
		{"systems: [{name: A, radius: 1, orbit: {semiMajorAxis: 1, period: 1, eccentricity: 1.2}}]", "unsupported eccentricity"},
		{"systems: [{name: A, radius: 1, color: 'nope'}]", "invalid hex value"},
		{"systems: [{name: A, radius: 1}]\nmarkers: [{target: B}]", "marker references unknown object 'B'"},
		{"systems: [", "could not parse"},
	}

	for index, s := range specs {
		_, err := ParseUniverse(strings.NewReader(s.doc))
		if err == nil || !strings.Contains(err.Error(), s.expErr) {
			t.Fatalf("[spec %d] expected error containing %q; got %v", index, s.expErr, err)
		}
	}
}
