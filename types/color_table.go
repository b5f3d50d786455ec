package types

import (
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// A ColorTemperatureTable maps a star surface temperature (Kelvin) to the
// color used when drawing it. Lookups interpolate between the two closest
// entries in RGB space.
type ColorTemperatureTable struct {
	Entries []TemperatureColor
}

// A single table entry.
type TemperatureColor struct {
	Kelvin float32
	Color  Color
}

// Create a table from an arbitrary list of entries.
func NewColorTemperatureTable(entries []TemperatureColor) *ColorTemperatureTable {
	sorted := make([]TemperatureColor, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Kelvin < sorted[j].Kelvin })
	return &ColorTemperatureTable{Entries: sorted}
}

// The default blackbody-like table used for star colors.
func DefaultStarColors() *ColorTemperatureTable {
	return NewColorTemperatureTable([]TemperatureColor{
		{2000, RGB(1.00, 0.54, 0.25)},
		{3000, RGB(1.00, 0.69, 0.43)},
		{4000, RGB(1.00, 0.80, 0.62)},
		{5000, RGB(1.00, 0.89, 0.80)},
		{5800, RGB(1.00, 0.95, 0.91)},
		{6500, RGB(1.00, 1.00, 1.00)},
		{8000, RGB(0.89, 0.91, 1.00)},
		{10000, RGB(0.79, 0.84, 1.00)},
		{15000, RGB(0.70, 0.77, 1.00)},
		{30000, RGB(0.62, 0.71, 1.00)},
	})
}

// Lookup the color for the given temperature. Temperatures outside the table
// range clamp to the first or last entry.
func (t *ColorTemperatureTable) Lookup(kelvin float32) Color {
	n := len(t.Entries)
	if n == 0 {
		return RGB(1, 1, 1)
	}
	if kelvin <= t.Entries[0].Kelvin {
		return t.Entries[0].Color
	}
	if kelvin >= t.Entries[n-1].Kelvin {
		return t.Entries[n-1].Color
	}

	hi := sort.Search(n, func(i int) bool { return t.Entries[i].Kelvin >= kelvin })
	lo := hi - 1
	a, b := t.Entries[lo], t.Entries[hi]
	f := float64((kelvin - a.Kelvin) / (b.Kelvin - a.Kelvin))

	ca := colorful.Color{R: float64(a.Color.R), G: float64(a.Color.G), B: float64(a.Color.B)}
	cb := colorful.Color{R: float64(b.Color.R), G: float64(b.Color.G), B: float64(b.Color.B)}
	out := ca.BlendRgb(cb, f)
	return Color{float32(out.R), float32(out.G), float32(out.B), 1}
}
