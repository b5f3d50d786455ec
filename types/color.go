package types

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is a linear RGBA color with float components in the [0, 1] range.
type Color struct {
	R, G, B, A float32
}

// Define an opaque color.
func RGB(r, g, b float32) Color {
	return Color{r, g, b, 1}
}

// Define a color with alpha.
func RGBA(r, g, b, a float32) Color {
	return Color{r, g, b, a}
}

// Parse a "#rrggbb" hex color.
func ParseHexColor(hex string) (Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return Color{}, fmt.Errorf("color: invalid hex value '%s'", hex)
	}
	return Color{float32(c.R), float32(c.G), float32(c.B), 1}, nil
}

// Hex returns the "#rrggbb" representation of the color ignoring alpha.
func (c Color) Hex() string {
	return colorful.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B)}.Clamped().Hex()
}

// WithAlpha returns a copy of the color with its alpha replaced.
func (c Color) WithAlpha(a float32) Color {
	c.A = a
	return c
}

// Scale RGB components by s, keeping alpha intact.
func (c Color) Scale(s float32) Color {
	return Color{c.R * s, c.G * s, c.B * s, c.A}
}

// Bytes packs the color into one byte per channel.
func (c Color) Bytes() [4]uint8 {
	return [4]uint8{toByte(c.R), toByte(c.G), toByte(c.B), toByte(c.A)}
}

func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
