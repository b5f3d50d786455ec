package gfx

import "github.com/achilleasa/orrery/types"

// Capability flags advertised by a Context.
type Capability uint32

const (
	// Native point sprites are available; fuzzy stars are drawn as sprites
	// instead of billboard quads.
	PointSprite Capability = 1 << iota

	// Anti-aliased line rendering.
	LineSmoothing

	// A hardware depth buffer exists; SetDepthRange is meaningful.
	DepthBuffer
)

// The Context is an opaque, ordered drawing sink. All geometry passed to it is
// in eye space (observer at the origin looking down -Z).
type Context interface {
	// Capabilities supported by this context.
	Capabilities() Capability

	// Start a new frame.
	BeginFrame(View)

	// Set the near/far clip planes (positive depths) used for subsequent draws.
	SetDepthRange(near, far float32)

	// Draw a batch of star primitives.
	DrawStars(StarBatch)

	// Draw a lit body.
	DrawBody(Body)

	// Draw a polyline.
	DrawLines(LineMode, []types.Vec3, types.Color)

	// Draw a text label and/or marker glyph.
	DrawLabel(Label)

	// Complete the frame.
	EndFrame()
}

// View describes the viewport of a frame.
type View struct {
	Width  int
	Height int

	// Vertical field of view in radians.
	FOV float32

	Background types.Color
}

// Aspect ratio of the view.
func (v View) Aspect() float32 {
	if v.Height == 0 {
		return 1
	}
	return float32(v.Width) / float32(v.Height)
}

// StarMode selects how a star batch is rasterized.
type StarMode uint8

const (
	// One vertex per star, fixed size points.
	StarPoints StarMode = iota

	// One vertex per star, textured point sprites sized per vertex.
	StarSprites

	// Four vertices per star forming a billboard quad.
	StarQuads
)

func (m StarMode) String() string {
	switch m {
	case StarPoints:
		return "points"
	case StarSprites:
		return "sprites"
	case StarQuads:
		return "quads"
	}
	return "unknown"
}

// Vertices per star for the given mode.
func (m StarMode) VerticesPerStar() int {
	if m == StarQuads {
		return 4
	}
	return 1
}

// A StarVertex carries a packed color to keep per-vertex bandwidth low.
type StarVertex struct {
	Position types.Vec3
	TexCoord types.Vec2
	Color    [4]uint8
	Size     float32
}

// A StarBatch is one draw call worth of stars. Vertices is only valid for the
// duration of the DrawStars call.
type StarBatch struct {
	Mode     StarMode
	Texture  string
	Vertices []StarVertex

	// Number of stars (not vertices) in the batch.
	Count int
}

// A Light illuminating a body.
type Light struct {
	// Unit eye-space direction from the body to the light.
	Direction  types.Vec3
	Color      types.Color
	Irradiance float32
}

// A Shadow cast on a body by another body, expressed in eye space.
type Shadow struct {
	Origin         types.Vec3
	Direction      types.Vec3
	UmbraRadius    float32
	PenumbraRadius float32
	MaxDepth       float32
}

// A Body is a lit ellipsoid.
type Body struct {
	Name        string
	Position    types.Vec3
	Radius      float32
	SemiAxes    types.Vec3
	Orientation types.Quat
	Color       types.Color

	// Projected size in pixels.
	DiscSize float32

	Emissive     bool
	Atmosphere   bool
	Rings        bool
	RingSections int

	Ambient float32
	Lights  []Light
	Shadows []Shadow
}

// LineMode selects how DrawLines connects its vertices.
type LineMode uint8

const (
	LineStrip LineMode = iota
	LineLoop
	LineSegments
)

// Horizontal label alignment relative to the anchor.
type Alignment uint8

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)
