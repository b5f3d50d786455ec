package gfx

import (
	"fmt"

	"github.com/achilleasa/orrery/types"
)

// Symbols that can be used as marker glyphs.
type MarkerSymbol uint8

const (
	MarkerDiamond MarkerSymbol = iota
	MarkerSquare
	MarkerCircle
	MarkerTriangle
	MarkerPlus
	MarkerX
	MarkerCrosshair
	MarkerSelection
)

var markerNames = []string{"diamond", "square", "circle", "triangle", "plus", "x", "crosshair", "selection"}

func (s MarkerSymbol) String() string {
	if int(s) < len(markerNames) {
		return markerNames[s]
	}
	return "unknown"
}

// Parse a marker symbol name.
func ParseMarkerSymbol(name string) (MarkerSymbol, error) {
	for index, n := range markerNames {
		if n == name {
			return MarkerSymbol(index), nil
		}
	}
	return MarkerDiamond, fmt.Errorf("gfx: unknown marker symbol '%s'", name)
}

// A Marker glyph drawn at a label anchor.
type Marker struct {
	Symbol MarkerSymbol

	// Glyph size in pixels.
	Size  float32
	Color types.Color
}

// A Label is a 2D text and/or marker anchored to an eye-space position.
type Label struct {
	Text     string
	Position types.Vec3
	Color    types.Color
	Marker   *Marker
	Align    Alignment
}
