package renderer

import (
	"fmt"

	"github.com/achilleasa/orrery/gfx"
	"github.com/achilleasa/orrery/renderer/annotation"
	"github.com/achilleasa/orrery/scene"
	"github.com/achilleasa/orrery/types"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	selectionCursorSize = 20
	defaultMarkerSize   = 10

	// Celestial grid label spacing.
	gridRAStepHours  = 2
	gridDecStepDeg   = 30
	gridLabelMaxDecl = 60
)

// Queue a label drawn on top of everything else. Returns false if the queue
// is full. Queued foreground and background labels are drawn by the next
// Render call and then discarded.
func (r *Renderer) AddForegroundAnnotation(text string, pos types.Vec3, style annotation.Style) bool {
	return r.foregroundAnnotations.Add(text, pos, style, annotation.NoDepth)
}

// Queue a label drawn behind everything else.
func (r *Renderer) AddBackgroundAnnotation(text string, pos types.Vec3, style annotation.Style) bool {
	return r.backgroundAnnotations.Add(text, pos, style, annotation.NoDepth)
}

// Queue a depth sorted label for the current frame. A negative depth sorts
// by the anchor depth.
func (r *Renderer) AddSortedAnnotation(text string, pos types.Vec3, style annotation.Style, depth float32) bool {
	return r.sortedAnnotations.Add(text, pos, style, depth)
}

// Drop every queued foreground and background label.
func (r *Renderer) ClearAnnotations() {
	r.foregroundAnnotations.Clear()
	r.backgroundAnnotations.Clear()
}

// Drop every queued depth sorted label.
func (r *Renderer) ClearSortedAnnotations() {
	r.sortedAnnotations.Clear()
}

// Mark the selected node with a cursor glyph.
func (r *Renderer) addSelectionCursor(f *frameState) {
	if r.selection == 0 {
		return
	}
	n := f.snap.Universe().Node(r.selection)
	if n == nil {
		return
	}

	eye := f.obs.ToEye(f.snap.Position(n))
	if eye[2] >= 0 {
		return
	}
	r.foregroundAnnotations.Add("", types.Vec3From64(eye), annotation.Style{
		Color: r.config.Colors.Selection,
		Marker: &gfx.Marker{
			Symbol: gfx.MarkerSelection,
			Size:   selectionCursorSize,
			Color:  r.config.Colors.Selection,
		},
	}, annotation.NoDepth)
}

// Queue the universe markers as foreground labels.
func (r *Renderer) addMarkers(f *frameState) {
	if r.config.RenderFlags&ShowMarkers == 0 {
		return
	}

	u := f.snap.Universe()
	for _, m := range u.Markers {
		n := u.Node(m.Target)
		if n == nil {
			continue
		}
		eye := f.obs.ToEye(f.snap.Position(n))
		if eye[2] >= 0 {
			continue
		}

		symbol, err := gfx.ParseMarkerSymbol(m.Symbol)
		if err != nil {
			symbol = gfx.MarkerDiamond
		}
		size := m.Size
		if size <= 0 {
			size = defaultMarkerSize
		}
		r.foregroundAnnotations.Add(m.Label, types.Vec3From64(eye), annotation.Style{
			Color:  m.Color,
			Marker: &gfx.Marker{Symbol: symbol, Size: size, Color: m.Color},
		}, annotation.NoDepth)
	}
}

// Queue the celestial grid and constellation labels. Both live on the
// celestial sphere so only their direction matters; anchors are placed at
// unit depth.
func (r *Renderer) addSkyLabels(f *frameState) {
	if r.config.RenderFlags&ShowCelestialSphere != 0 {
		r.addCelestialGridLabels(f)
	}
	if r.config.LabelMode&(ConstellationLabels|I18nConstellationLabels) != 0 {
		style := annotation.Style{Color: r.config.Colors.ConstellationLabel, Align: gfx.AlignCenter}
		for _, a := range f.snap.Universe().Asterisms {
			r.addSkyLabel(f, a.Name, a.Direction, style)
		}
	}
}

func (r *Renderer) addCelestialGridLabels(f *frameState) {
	style := annotation.Style{Color: r.config.Colors.CelestialGrid}
	for hours := 0; hours < 24; hours += gridRAStepHours {
		r.addSkyLabel(f, fmt.Sprintf("%dh", hours), scene.RADecToDirection(float64(hours)*15, 0), style)
	}
	for dec := -gridLabelMaxDecl; dec <= gridLabelMaxDecl; dec += gridDecStepDeg {
		if dec == 0 {
			continue
		}
		r.addSkyLabel(f, fmt.Sprintf("%+d°", dec), scene.RADecToDirection(0, float64(dec)), style)
	}
}

func (r *Renderer) addSkyLabel(f *frameState, text string, dir mgl64.Vec3, style annotation.Style) {
	eye := f.obs.DirectionToEye(dir)
	if eye[2] >= 0 {
		return
	}
	r.backgroundAnnotations.Add(text, types.Vec3From64(eye), style, annotation.NoDepth)
}
