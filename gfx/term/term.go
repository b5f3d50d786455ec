// Package term implements a gfx.Context that draws frames as character cells
// on a tcell screen.
package term

import (
	"github.com/achilleasa/orrery/gfx"
	"github.com/achilleasa/orrery/types"
	"github.com/chewxy/math32"
	"github.com/gdamore/tcell/v2"
)

// Terminal cells are roughly twice as tall as they are wide. Frames are
// projected onto a virtual pixel grid with two rows per cell.
const rowsPerCell = 2

// The subset of tcell.Screen used by the context.
type Screen interface {
	Size() (int, int)
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Show()
}

var markerRunes = map[gfx.MarkerSymbol]rune{
	gfx.MarkerDiamond:   '◆',
	gfx.MarkerSquare:    '■',
	gfx.MarkerCircle:    '○',
	gfx.MarkerTriangle:  '▲',
	gfx.MarkerPlus:      '+',
	gfx.MarkerX:         'x',
	gfx.MarkerCrosshair: '⊕',
	gfx.MarkerSelection: '◎',
}

// Context draws into a Screen. Geometry is painted in submission order.
type Context struct {
	screen Screen
	proj   gfx.Projection
	bg     tcell.Color

	cols, rows int
	near       float32
}

// Create a terminal context backed by screen.
func New(screen Screen) *Context {
	return &Context{screen: screen}
}

// The virtual pixel dimensions to pass to the renderer for the current
// screen size.
func (c *Context) Viewport() (int, int) {
	cols, rows := c.screen.Size()
	return cols, rows * rowsPerCell
}

func (c *Context) Capabilities() gfx.Capability {
	return 0
}

func (c *Context) BeginFrame(v gfx.View) {
	c.cols, c.rows = c.screen.Size()
	c.proj = gfx.NewProjection(gfx.View{Width: c.cols, Height: c.rows * rowsPerCell, FOV: v.FOV})
	c.bg = toColor(v.Background)
	c.near = 0

	style := tcell.StyleDefault.Background(c.bg)
	for y := 0; y < c.rows; y++ {
		for x := 0; x < c.cols; x++ {
			c.screen.SetContent(x, y, ' ', nil, style)
		}
	}
}

func (c *Context) SetDepthRange(near, _ float32) {
	c.near = near
}

func (c *Context) DrawStars(b gfx.StarBatch) {
	stride := b.Mode.VerticesPerStar()
	for i := 0; i < b.Count && (i+1)*stride <= len(b.Vertices); i++ {
		v := b.Vertices[i*stride]
		pos := v.Position
		if b.Mode == gfx.StarQuads {
			pos = pos.Add(b.Vertices[i*stride+2].Position).Mul(0.5)
		}
		x, y, ok := c.cell(pos)
		if !ok {
			continue
		}

		col := tcell.NewRGBColor(int32(v.Color[0]), int32(v.Color[1]), int32(v.Color[2]))
		ch := '.'
		switch {
		case v.Color[3] > 200 && v.Size > 3:
			ch = '*'
		case v.Color[3] > 128:
			ch = '+'
		}
		c.put(x, y, ch, col)
	}
}

func (c *Context) DrawBody(b gfx.Body) {
	p, ok := c.proj.Project(b.Position)
	if !ok {
		return
	}
	col := b.Color
	if !b.Emissive {
		col = col.Scale(math32.Max(b.Ambient, litFraction(b)))
	}
	fg := toColor(col)

	radius := c.proj.Size(b.Radius, -b.Position[2])
	if radius < 1 {
		c.put(int(p[0]), int(p[1])/rowsPerCell, '●', fg)
		return
	}

	x0, x1 := int(p[0]-radius), int(p[0]+radius)
	y0, y1 := int((p[1]-radius)/rowsPerCell), int((p[1]+radius)/rowsPerCell)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx := float32(x) + 0.5 - p[0]
			dy := (float32(y)+0.5)*rowsPerCell - p[1]
			if dx*dx+dy*dy <= radius*radius {
				c.put(x, y, '█', fg)
			}
		}
	}
}

func litFraction(b gfx.Body) float32 {
	toObserver := b.Position.Mul(-1).Normalize()
	lit := float32(0)
	for _, l := range b.Lights {
		lit += (1 + l.Direction.Dot(toObserver)) * 0.5 * math32.Min(l.Irradiance, 1)
	}
	return math32.Min(lit, 1)
}

func (c *Context) DrawLines(mode gfx.LineMode, points []types.Vec3, col types.Color) {
	fg := toColor(col)
	step := 1
	if mode == gfx.LineSegments {
		step = 2
	}
	for i := 0; i+1 < len(points); i += step {
		c.segment(points[i], points[i+1], fg)
	}
	if mode == gfx.LineLoop && len(points) > 2 {
		c.segment(points[len(points)-1], points[0], fg)
	}
}

func (c *Context) DrawLabel(l gfx.Label) {
	x, y, ok := c.cell(l.Position)
	if !ok {
		return
	}

	if l.Marker != nil {
		ch, found := markerRunes[l.Marker.Symbol]
		if !found {
			ch = markerRunes[gfx.MarkerDiamond]
		}
		c.put(x, y, ch, toColor(l.Marker.Color))
	}

	text := []rune(l.Text)
	switch l.Align {
	case gfx.AlignLeft:
		x++
	case gfx.AlignCenter:
		x -= len(text) / 2
	case gfx.AlignRight:
		x -= len(text) + 1
	}
	fg := toColor(l.Color)
	for i, ch := range text {
		c.put(x+i, y, ch, fg)
	}
}

func (c *Context) EndFrame() {
	c.screen.Show()
}

// Walk a segment in cell space one cell at a time.
func (c *Context) segment(a, b types.Vec3, fg tcell.Color) {
	a, b, ok := gfx.ClipSegment(a, b, c.near)
	if !ok {
		return
	}
	pa, okA := c.proj.Project(a)
	pb, okB := c.proj.Project(b)
	if !okA || !okB {
		return
	}

	ax, ay := pa[0], pa[1]/rowsPerCell
	bx, by := pb[0], pb[1]/rowsPerCell
	steps := int(math32.Max(math32.Abs(bx-ax), math32.Abs(by-ay)))
	// Avoid walking absurdly long off-screen segments.
	if limit := 4 * (c.cols + c.rows); steps > limit {
		steps = limit
	}
	if steps == 0 {
		c.put(int(ax), int(ay), '·', fg)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float32(i) / float32(steps)
		c.put(int(ax+(bx-ax)*t), int(ay+(by-ay)*t), '·', fg)
	}
}

func (c *Context) cell(eye types.Vec3) (int, int, bool) {
	p, ok := c.proj.Project(eye)
	if !ok {
		return 0, 0, false
	}
	return int(p[0]), int(p[1]) / rowsPerCell, true
}

func (c *Context) put(x, y int, ch rune, fg tcell.Color) {
	if x < 0 || y < 0 || x >= c.cols || y >= c.rows {
		return
	}
	c.screen.SetContent(x, y, ch, nil, tcell.StyleDefault.Foreground(fg).Background(c.bg))
}

func toColor(c types.Color) tcell.Color {
	b := c.Bytes()
	return tcell.NewRGBColor(int32(b[0]), int32(b[1]), int32(b[2]))
}
