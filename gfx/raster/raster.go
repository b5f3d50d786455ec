// Package raster implements a software gfx.Context that draws frames into an
// RGBA image.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"

	"github.com/achilleasa/orrery/gfx"
	"github.com/achilleasa/orrery/types"
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

const (
	circleSegments = 24
	lineWidth      = 1.0

	// Horizontal gap in pixels between a label anchor and its text.
	labelOffset = 4
)

// Context rasterizes frames into an in-memory image using anti-aliased
// vector paths for geometry and a fixed bitmap face for labels.
type Context struct {
	img  *image.RGBA
	view gfx.View
	proj gfx.Projection
	ras  *vector.Rasterizer
	face font.Face

	near, far float32
	frames    int
}

// Create a raster context with the given image dimensions.
func New(width, height int) *Context {
	c := &Context{
		ras:  &vector.Rasterizer{},
		face: basicfont.Face7x13,
	}
	c.resize(width, height)
	return c
}

func (c *Context) resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if c.img != nil && c.img.Bounds().Dx() == width && c.img.Bounds().Dy() == height {
		return
	}
	c.img = image.NewRGBA(image.Rect(0, 0, width, height))
	c.ras.Reset(width, height)
}

// The last rendered frame.
func (c *Context) Image() *image.RGBA {
	return c.img
}

// Number of completed frames.
func (c *Context) Frames() int {
	return c.frames
}

// Encode the last frame as PNG.
func (c *Context) WritePNG(w io.Writer) error {
	if err := png.Encode(w, c.img); err != nil {
		return errors.Wrap(err, "raster: could not encode frame")
	}
	return nil
}

// Write the last frame to a PNG file.
func (c *Context) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "raster: could not create '%s'", path)
	}
	defer f.Close()
	return c.WritePNG(f)
}

func (c *Context) Capabilities() gfx.Capability {
	return gfx.LineSmoothing
}

func (c *Context) BeginFrame(v gfx.View) {
	c.resize(v.Width, v.Height)
	c.view = v
	c.proj = gfx.NewProjection(v)
	c.near, c.far = 0, math32.MaxFloat32

	bg := v.Background
	bg.A = 1
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(toNRGBA(bg)), image.Point{}, draw.Src)
}

func (c *Context) SetDepthRange(near, far float32) {
	c.near, c.far = near, far
}

func (c *Context) DrawStars(b gfx.StarBatch) {
	stride := b.Mode.VerticesPerStar()
	for i := 0; i < b.Count && (i+1)*stride <= len(b.Vertices); i++ {
		verts := b.Vertices[i*stride : (i+1)*stride]

		center := verts[0].Position
		size := verts[0].Size
		if b.Mode == gfx.StarQuads {
			// Quads carry their size in the corner offsets.
			center = verts[0].Position.Add(verts[2].Position).Mul(0.5)
			size = c.proj.Size(verts[2].Position.Sub(verts[0].Position).Len()/math32.Sqrt2, -center[2])
		}

		p, ok := c.proj.Project(center)
		if !ok {
			continue
		}
		col := color.NRGBA{verts[0].Color[0], verts[0].Color[1], verts[0].Color[2], verts[0].Color[3]}
		if size <= 1.5 {
			c.blendPixel(int(p[0]), int(p[1]), col)
			continue
		}
		c.fillCircle(p[0], p[1], size*0.5, col)
	}
}

func (c *Context) DrawBody(b gfx.Body) {
	p, ok := c.proj.Project(b.Position)
	if !ok {
		return
	}
	radius := c.proj.Size(b.Radius, -b.Position[2])
	if radius < 0.5 {
		radius = 0.5
	}

	col := b.Color
	if !b.Emissive {
		col = col.Scale(shade(b))
	}
	col.A = 1
	c.fillCircle(p[0], p[1], radius, toNRGBA(col))
}

// Flat shading factor for a body: ambient plus the lit fraction of the disc
// seen from the observer, weighted by each light's irradiance.
func shade(b gfx.Body) float32 {
	toObserver := b.Position.Mul(-1).Normalize()
	lit := float32(0)
	for _, l := range b.Lights {
		phase := (1 + l.Direction.Dot(toObserver)) * 0.5
		lit += phase * math32.Min(l.Irradiance, 1)
	}
	s := b.Ambient + (1-b.Ambient)*lit
	if s > 1 {
		return 1
	}
	return s
}

func (c *Context) DrawLines(mode gfx.LineMode, points []types.Vec3, col types.Color) {
	if len(points) < 2 {
		return
	}
	src := toNRGBA(col)
	switch mode {
	case gfx.LineSegments:
		for i := 0; i+1 < len(points); i += 2 {
			c.strokeSegment(points[i], points[i+1], src)
		}
	default:
		for i := 0; i+1 < len(points); i++ {
			c.strokeSegment(points[i], points[i+1], src)
		}
		if mode == gfx.LineLoop && len(points) > 2 {
			c.strokeSegment(points[len(points)-1], points[0], src)
		}
	}
}

func (c *Context) DrawLabel(l gfx.Label) {
	p, ok := c.proj.Project(l.Position)
	if !ok {
		return
	}

	if l.Marker != nil {
		c.drawMarker(p, l.Marker)
	}
	if l.Text == "" {
		return
	}

	width := font.MeasureString(c.face, l.Text).Round()
	x := int(p[0])
	switch l.Align {
	case gfx.AlignLeft:
		x += labelOffset
	case gfx.AlignCenter:
		x -= width / 2
	case gfx.AlignRight:
		x -= width + labelOffset
	}
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(toNRGBA(l.Color)),
		Face: c.face,
		Dot:  fixed.P(x, int(p[1])+c.face.Metrics().Ascent.Round()/2),
	}
	d.DrawString(l.Text)
}

func (c *Context) EndFrame() {
	c.frames++
}

func (c *Context) strokeSegment(a, b types.Vec3, col color.NRGBA) {
	a, b, ok := gfx.ClipSegment(a, b, c.near)
	if !ok {
		return
	}
	pa, okA := c.proj.Project(a)
	pb, okB := c.proj.Project(b)
	if !okA || !okB {
		return
	}
	c.strokeLine(pa, pb, lineWidth, col)
}

func (c *Context) strokeLine(a, b types.Vec2, width float32, col color.NRGBA) {
	d := b.Sub(a)
	l := math32.Hypot(d[0], d[1])
	if l < 1e-3 {
		c.blendPixel(int(a[0]), int(a[1]), col)
		return
	}
	nx, ny := -d[1]/l*width*0.5, d[0]/l*width*0.5

	c.ras.Reset(c.img.Bounds().Dx(), c.img.Bounds().Dy())
	c.ras.MoveTo(a[0]+nx, a[1]+ny)
	c.ras.LineTo(b[0]+nx, b[1]+ny)
	c.ras.LineTo(b[0]-nx, b[1]-ny)
	c.ras.LineTo(a[0]-nx, a[1]-ny)
	c.ras.ClosePath()
	c.ras.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{})
}

func (c *Context) fillCircle(cx, cy, radius float32, col color.NRGBA) {
	c.ras.Reset(c.img.Bounds().Dx(), c.img.Bounds().Dy())
	for i := 0; i <= circleSegments; i++ {
		theta := 2 * math32.Pi * float32(i) / circleSegments
		x, y := cx+radius*math32.Cos(theta), cy+radius*math32.Sin(theta)
		if i == 0 {
			c.ras.MoveTo(x, y)
		} else {
			c.ras.LineTo(x, y)
		}
	}
	c.ras.ClosePath()
	c.ras.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{})
}

func (c *Context) drawMarker(p types.Vec2, m *gfx.Marker) {
	col := toNRGBA(m.Color)
	s := m.Size * 0.5
	x, y := p[0], p[1]
	line := func(x0, y0, x1, y1 float32) {
		c.strokeLine(types.XY(x0, y0), types.XY(x1, y1), lineWidth, col)
	}

	switch m.Symbol {
	case gfx.MarkerSquare:
		line(x-s, y-s, x+s, y-s)
		line(x+s, y-s, x+s, y+s)
		line(x+s, y+s, x-s, y+s)
		line(x-s, y+s, x-s, y-s)
	case gfx.MarkerCircle:
		for i := 0; i < circleSegments; i++ {
			t0 := 2 * math32.Pi * float32(i) / circleSegments
			t1 := 2 * math32.Pi * float32(i+1) / circleSegments
			line(x+s*math32.Cos(t0), y+s*math32.Sin(t0), x+s*math32.Cos(t1), y+s*math32.Sin(t1))
		}
	case gfx.MarkerTriangle:
		line(x, y-s, x+s, y+s)
		line(x+s, y+s, x-s, y+s)
		line(x-s, y+s, x, y-s)
	case gfx.MarkerPlus:
		line(x-s, y, x+s, y)
		line(x, y-s, x, y+s)
	case gfx.MarkerX:
		line(x-s, y-s, x+s, y+s)
		line(x-s, y+s, x+s, y-s)
	case gfx.MarkerCrosshair, gfx.MarkerSelection:
		// Four ticks pointing at the anchor with a gap in the middle.
		g := s * 0.4
		line(x-s, y, x-g, y)
		line(x+g, y, x+s, y)
		line(x, y-s, x, y-g)
		line(x, y+g, x, y+s)
	default:
		line(x, y-s, x+s, y)
		line(x+s, y, x, y+s)
		line(x, y+s, x-s, y)
		line(x-s, y, x, y-s)
	}
}

func (c *Context) blendPixel(x, y int, col color.NRGBA) {
	if !(image.Point{x, y}.In(c.img.Bounds())) {
		return
	}
	draw.Draw(c.img, image.Rect(x, y, x+1, y+1), image.NewUniform(col), image.Point{}, draw.Over)
}

func toNRGBA(c types.Color) color.NRGBA {
	b := c.Bytes()
	return color.NRGBA{b[0], b[1], b[2], b[3]}
}
