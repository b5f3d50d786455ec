package term

import (
	"math"
	"strings"
	"testing"

	"github.com/achilleasa/orrery/gfx"
	"github.com/achilleasa/orrery/types"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScreen struct {
	cols, rows int
	cells      [][]rune
	styles     [][]tcell.Style
	shown      int
}

func newFakeScreen(cols, rows int) *fakeScreen {
	s := &fakeScreen{cols: cols, rows: rows}
	s.cells = make([][]rune, rows)
	s.styles = make([][]tcell.Style, rows)
	for y := range s.cells {
		s.cells[y] = make([]rune, cols)
		s.styles[y] = make([]tcell.Style, cols)
	}
	return s
}

func (s *fakeScreen) Size() (int, int) { return s.cols, s.rows }
func (s *fakeScreen) Show()            { s.shown++ }
func (s *fakeScreen) SetContent(x, y int, primary rune, _ []rune, style tcell.Style) {
	s.cells[y][x] = primary
	s.styles[y][x] = style
}

func (s *fakeScreen) row(y int) string {
	return string(s.cells[y])
}

func (s *fakeScreen) count(ch rune) int {
	n := 0
	for _, row := range s.cells {
		for _, c := range row {
			if c == ch {
				n++
			}
		}
	}
	return n
}

func testView() gfx.View {
	return gfx.View{Width: 40, Height: 40, FOV: float32(math.Pi / 2), Background: types.RGB(0, 0, 0)}
}

func TestViewport(t *testing.T) {
	c := New(newFakeScreen(80, 24))
	w, h := c.Viewport()
	assert.Equal(t, 80, w)
	assert.Equal(t, 48, h)
}

func TestFrameClearAndShow(t *testing.T) {
	screen := newFakeScreen(40, 20)
	c := New(screen)
	c.BeginFrame(testView())
	c.EndFrame()

	assert.Equal(t, 40*20, screen.count(' '))
	assert.Equal(t, 1, screen.shown)
}

func TestDrawPrimitives(t *testing.T) {
	type spec struct {
		draw  func(c *Context)
		glyph rune
		min   int
	}
	specs := []spec{
		{
			func(c *Context) {
				c.DrawStars(gfx.StarBatch{
					Mode:     gfx.StarPoints,
					Vertices: []gfx.StarVertex{{Position: types.XYZ(0, 0, -1), Color: [4]uint8{255, 255, 255, 255}, Size: 4}},
					Count:    1,
				})
			},
			'*', 1,
		},
		{
			func(c *Context) {
				c.DrawStars(gfx.StarBatch{
					Mode:     gfx.StarPoints,
					Vertices: []gfx.StarVertex{{Position: types.XYZ(0, 0, -1), Color: [4]uint8{255, 255, 255, 40}, Size: 1}},
					Count:    1,
				})
			},
			'.', 1,
		},
		{
			func(c *Context) {
				c.DrawBody(gfx.Body{Position: types.XYZ(0, 0, -10), Radius: 5, Color: types.RGB(1, 1, 1), Emissive: true})
			},
			'█', 20,
		},
		{
			func(c *Context) {
				c.DrawBody(gfx.Body{Position: types.XYZ(0, 0, -1e6), Radius: 1, Color: types.RGB(1, 1, 1)})
			},
			'●', 1,
		},
		{
			func(c *Context) {
				c.DrawLines(gfx.LineLoop, []types.Vec3{
					types.XYZ(-0.5, -0.5, -1), types.XYZ(0.5, -0.5, -1), types.XYZ(0.5, 0.5, -1),
				}, types.RGB(1, 0, 0))
			},
			'·', 10,
		},
		{
			func(c *Context) {
				c.DrawLabel(gfx.Label{
					Position: types.XYZ(0, 0, -1),
					Marker:   &gfx.Marker{Symbol: gfx.MarkerSelection, Size: 20},
				})
			},
			'◎', 1,
		},
	}

	for index, s := range specs {
		screen := newFakeScreen(40, 20)
		c := New(screen)
		c.BeginFrame(testView())
		s.draw(c)
		c.EndFrame()

		if got := screen.count(s.glyph); got < s.min {
			t.Fatalf("[spec %d] expected at least %d %q cells; got %d", index, s.min, s.glyph, got)
		}
	}
}

func TestLabelAlignment(t *testing.T) {
	screen := newFakeScreen(40, 20)
	c := New(screen)
	c.BeginFrame(testView())
	c.DrawLabel(gfx.Label{Text: "Moon", Position: types.XYZ(0, 0, -1), Color: types.RGB(1, 1, 1), Align: gfx.AlignCenter})
	c.DrawLabel(gfx.Label{Text: "far-off-screen", Position: types.XYZ(100, 0, -1)})
	c.DrawLabel(gfx.Label{Text: "behind", Position: types.XYZ(0, 0, 1)})
	c.EndFrame()

	// The anchor projects to column 20, row 10.
	assert.Equal(t, 18, strings.Index(screen.row(10), "Moon"))
	assert.Equal(t, 0, screen.count('b'))
}

func TestSimulationScreen(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()
	screen.SetSize(30, 10)

	c := New(screen)
	w, h := c.Viewport()
	assert.Equal(t, 30, w)
	assert.Equal(t, 20, h)

	c.BeginFrame(testView())
	c.DrawLabel(gfx.Label{Text: "Sun", Position: types.XYZ(0, 0, -1), Color: types.RGB(1, 1, 0)})
	c.EndFrame()
}
