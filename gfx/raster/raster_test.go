package raster

import (
	"bytes"
	"image/color"
	"image/png"
	"math"
	"path/filepath"
	"testing"

	"github.com/achilleasa/orrery/gfx"
	"github.com/achilleasa/orrery/types"
)

func testView() gfx.View {
	return gfx.View{
		Width:      64,
		Height:     64,
		FOV:        float32(math.Pi / 2),
		Background: types.RGB(0, 0, 1),
	}
}

var blue = color.RGBA{0, 0, 255, 255}

func TestBeginFrameClearsToBackground(t *testing.T) {
	c := New(16, 16)
	c.BeginFrame(testView())

	if got := c.Image().Bounds().Dx(); got != 64 {
		t.Fatalf("expected frame to be resized to 64 px; got %d", got)
	}
	for _, pt := range [][2]int{{0, 0}, {63, 63}, {32, 10}} {
		if got := c.Image().RGBAAt(pt[0], pt[1]); got != blue {
			t.Fatalf("expected pixel %v to match the background; got %v", pt, got)
		}
	}
	c.EndFrame()
	if c.Frames() != 1 {
		t.Fatalf("expected frame count 1; got %d", c.Frames())
	}
}

func TestDrawPrimitives(t *testing.T) {
	type spec struct {
		draw  func(c *Context)
		pixel [2]int
	}
	specs := []spec{
		// Emissive body at the view center, 10 km radius at depth 20.
		{
			func(c *Context) {
				c.DrawBody(gfx.Body{Position: types.XYZ(0, 0, -20), Radius: 10, Color: types.RGB(1, 1, 0), Emissive: true})
			},
			[2]int{32, 32},
		},
		// Lit body facing its light.
		{
			func(c *Context) {
				c.DrawBody(gfx.Body{
					Position: types.XYZ(0, 0, -20),
					Radius:   10,
					Color:    types.RGB(1, 1, 1),
					Ambient:  0.1,
					Lights:   []gfx.Light{{Direction: types.XYZ(0, 0, 1), Color: types.RGB(1, 1, 1), Irradiance: 1}},
				})
			},
			[2]int{32, 32},
		},
		// Horizontal line through the view center.
		{
			func(c *Context) {
				c.DrawLines(gfx.LineStrip, []types.Vec3{types.XYZ(-1, 0, -1), types.XYZ(1, 0, -1)}, types.RGB(1, 1, 1))
			},
			[2]int{16, 32},
		},
		// Large point star.
		{
			func(c *Context) {
				c.DrawStars(gfx.StarBatch{
					Mode:     gfx.StarSprites,
					Vertices: []gfx.StarVertex{{Position: types.XYZ(0, 0, -5), Color: [4]uint8{255, 255, 255, 255}, Size: 6}},
					Count:    1,
				})
			},
			[2]int{32, 32},
		},
		// Marker glyph.
		{
			func(c *Context) {
				c.DrawLabel(gfx.Label{
					Position: types.XYZ(0, 0, -1),
					Marker:   &gfx.Marker{Symbol: gfx.MarkerPlus, Size: 20, Color: types.RGB(1, 0, 0)},
				})
			},
			[2]int{32, 26},
		},
	}

	for index, s := range specs {
		c := New(64, 64)
		c.BeginFrame(testView())
		s.draw(c)
		c.EndFrame()

		if got := c.Image().RGBAAt(s.pixel[0], s.pixel[1]); got == blue {
			t.Fatalf("[spec %d] expected pixel %v to be drawn over", index, s.pixel)
		}
	}
}

func TestGeometryBehindObserverIsSkipped(t *testing.T) {
	c := New(64, 64)
	c.BeginFrame(testView())
	c.DrawBody(gfx.Body{Position: types.XYZ(0, 0, 20), Radius: 10, Color: types.RGB(1, 1, 1), Emissive: true})
	c.DrawLines(gfx.LineStrip, []types.Vec3{types.XYZ(-1, 0, 1), types.XYZ(1, 0, 1)}, types.RGB(1, 1, 1))
	c.DrawLabel(gfx.Label{Text: "hidden", Position: types.XYZ(0, 0, 1), Color: types.RGB(1, 1, 1)})
	c.EndFrame()

	img := c.Image()
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if got := img.RGBAAt(x, y); got != blue {
				t.Fatalf("expected untouched frame; pixel (%d, %d) is %v", x, y, got)
			}
		}
	}
}

func TestLabelText(t *testing.T) {
	c := New(64, 64)
	c.BeginFrame(testView())
	c.DrawLabel(gfx.Label{Text: "Earth", Position: types.XYZ(0, 0, -1), Color: types.RGB(1, 1, 1), Align: gfx.AlignCenter})
	c.EndFrame()

	drawn := 0
	img := c.Image()
	for y := 20; y < 44; y++ {
		for x := 0; x < 64; x++ {
			if img.RGBAAt(x, y) != blue {
				drawn++
			}
		}
	}
	if drawn == 0 {
		t.Fatal("expected label glyphs to be drawn")
	}
}

func TestPNGOutput(t *testing.T) {
	c := New(64, 64)
	c.BeginFrame(testView())
	c.EndFrame()

	var buf bytes.Buffer
	if err := c.WritePNG(&buf); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 64 {
		t.Fatalf("expected a 64x64 image; got %v", img.Bounds())
	}

	path := filepath.Join(t.TempDir(), "frame.png")
	if err = c.SavePNG(path); err != nil {
		t.Fatal(err)
	}
	if err = c.SavePNG(filepath.Join(t.TempDir(), "missing", "frame.png")); err == nil {
		t.Fatal("expected an error writing into a missing directory")
	}
}
