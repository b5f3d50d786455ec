package scene

import "math"

const (
	KmPerParsec    = 3.0856775814913673e13
	KmPerLightYear = 9.4607304725808e12
	KmPerAU        = 149597870.7

	// Absolute visual magnitude of the sun.
	SolarAbsMag = 4.83
)

// Convert an absolute magnitude to the apparent magnitude at distance km.
func AbsToAppMag(absMag, distanceKm float64) float64 {
	if distanceKm <= 0 {
		return math.Inf(-1)
	}
	return absMag + 5*(math.Log10(distanceKm/KmPerParsec)-1)
}

// Convert a luminosity in solar units to an absolute magnitude.
func LumToAbsMag(lum float64) float64 {
	if lum <= 0 {
		return math.Inf(1)
	}
	return SolarAbsMag - 2.5*math.Log10(lum)
}

// Apparent magnitude of a body reflecting light from a source of luminosity
// sunLum (solar units). Distances are in km; phaseAngle is the sun-body-viewer
// angle in radians.
func ReflectedAppMag(sunLum, albedo, radius, sunDistance, viewerDistance, phaseAngle float64) float64 {
	if sunDistance <= 0 {
		return math.Inf(1)
	}
	phase := (1 + math.Cos(phaseAngle)) * 0.5
	lum := sunLum * albedo * phase * (radius * radius) / (4 * sunDistance * sunDistance)
	return AbsToAppMag(LumToAbsMag(lum), viewerDistance)
}
