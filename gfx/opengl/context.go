// Package opengl implements a fixed-function OpenGL 2.1 gfx.Context and a
// glfw window with observer controls.
package opengl

import (
	"image"
	"image/draw"

	"github.com/achilleasa/orrery/gfx"
	"github.com/achilleasa/orrery/types"
	"github.com/chewxy/math32"
	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	// Fixed-function pipelines guarantee eight lights.
	maxLights = 8

	sphereStacks = 24
	sphereSlices = 48

	spriteTextureSize = 64

	atmosphereScale = 1.025
	ringInnerScale  = 1.2
	ringOuterScale  = 2.2

	labelOffset = 4

	// Rendered label images kept between frames.
	maxCachedLabels = 512
)

// Context issues immediate-mode GL calls. It must only be used on the
// thread that owns the GL context.
type Context struct {
	view gfx.View
	proj gfx.Projection
	near float32
	far  float32

	textures map[string]uint32
	sphere   []sphereVertex
	face     font.Face
	labels   map[string]*image.RGBA
}

type sphereVertex struct {
	pos types.Vec3
}

// Create a context for the GL context current on the calling thread.
// gl.Init must have been called.
func NewContext() *Context {
	c := &Context{
		textures: make(map[string]uint32),
		face:     basicfont.Face7x13,
		labels:   make(map[string]*image.RGBA),
	}
	c.sphere = buildSphere()
	c.textures["gaussian"] = uploadTexture(spriteImage(func(r float32) float32 {
		return math32.Exp(-r * r * 8)
	}))
	c.textures["disc"] = uploadTexture(spriteImage(func(r float32) float32 {
		return math32.Max(0, math32.Min(1, (1-r)*spriteTextureSize*0.5))
	}))
	return c
}

// Release GL resources.
func (c *Context) Release() {
	for name, tex := range c.textures {
		gl.DeleteTextures(1, &tex)
		delete(c.textures, name)
	}
}

func (c *Context) Capabilities() gfx.Capability {
	return gfx.PointSprite | gfx.LineSmoothing | gfx.DepthBuffer
}

func (c *Context) BeginFrame(v gfx.View) {
	c.view = v
	c.proj = gfx.NewProjection(v)

	gl.Viewport(0, 0, int32(v.Width), int32(v.Height))
	gl.ClearColor(v.Background.R, v.Background.G, v.Background.B, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Enable(gl.LINE_SMOOTH)
	gl.Enable(gl.NORMALIZE)
	gl.Disable(gl.LIGHTING)
	gl.Disable(gl.TEXTURE_2D)
	gl.Enable(gl.DEPTH_TEST)

	c.SetDepthRange(1e-3, 1e9)
}

func (c *Context) SetDepthRange(near, far float32) {
	c.near, c.far = near, far

	proj := mgl32.Perspective(c.view.FOV, c.view.Aspect(), near, far)
	gl.MatrixMode(gl.PROJECTION)
	gl.LoadMatrixf(&proj[0])
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadIdentity()

	// Each depth range gets a fresh depth buffer.
	gl.Clear(gl.DEPTH_BUFFER_BIT)
}

func (c *Context) DrawStars(b gfx.StarBatch) {
	if b.Count == 0 {
		return
	}
	gl.DepthMask(false)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
	defer func() {
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		gl.DepthMask(true)
	}()

	switch b.Mode {
	case gfx.StarPoints:
		gl.PointSize(1)
		gl.Begin(gl.POINTS)
		for _, v := range b.Vertices[:b.Count] {
			gl.Color4ub(v.Color[0], v.Color[1], v.Color[2], v.Color[3])
			gl.Vertex3f(v.Position[0], v.Position[1], v.Position[2])
		}
		gl.End()
	case gfx.StarSprites:
		c.bindTexture(b.Texture)
		gl.Enable(gl.POINT_SPRITE)
		gl.TexEnvi(gl.POINT_SPRITE, gl.COORD_REPLACE, gl.TRUE)
		for _, v := range b.Vertices[:b.Count] {
			// Point size cannot change inside Begin/End.
			gl.PointSize(v.Size)
			gl.Begin(gl.POINTS)
			gl.Color4ub(v.Color[0], v.Color[1], v.Color[2], v.Color[3])
			gl.Vertex3f(v.Position[0], v.Position[1], v.Position[2])
			gl.End()
		}
		gl.Disable(gl.POINT_SPRITE)
		gl.Disable(gl.TEXTURE_2D)
	case gfx.StarQuads:
		c.bindTexture(b.Texture)
		gl.Begin(gl.QUADS)
		for _, v := range b.Vertices[:b.Count*4] {
			gl.Color4ub(v.Color[0], v.Color[1], v.Color[2], v.Color[3])
			gl.TexCoord2f(v.TexCoord[0], v.TexCoord[1])
			gl.Vertex3f(v.Position[0], v.Position[1], v.Position[2])
		}
		gl.End()
		gl.Disable(gl.TEXTURE_2D)
	}
}

func (c *Context) DrawBody(b gfx.Body) {
	semi := b.SemiAxes
	if semi == (types.Vec3{}) {
		semi = types.XYZ(b.Radius, b.Radius, b.Radius)
	}

	if b.Emissive {
		gl.Disable(gl.LIGHTING)
	} else {
		c.setupLights(b)
	}

	rot := mgl32.Quat{W: b.Orientation.W, V: mgl32.Vec3(b.Orientation.V)}
	if rot.Len() == 0 {
		rot = mgl32.QuatIdent()
	}
	model := rot.Mat4()

	gl.PushMatrix()
	gl.Translatef(b.Position[0], b.Position[1], b.Position[2])
	gl.MultMatrixf(&model[0])

	gl.PushMatrix()
	gl.Scalef(semi[0], semi[1], semi[2])
	gl.Color4f(b.Color.R, b.Color.G, b.Color.B, 1)
	c.drawSphere()
	if b.Atmosphere {
		gl.Scalef(atmosphereScale, atmosphereScale, atmosphereScale)
		gl.Color4f(0.4, 0.6, 1.0, 0.2)
		c.drawSphere()
	}
	gl.PopMatrix()

	if b.Rings && b.RingSections >= 3 {
		c.drawRings(b.Radius, b.RingSections, b.Color)
	}
	gl.PopMatrix()
	gl.Disable(gl.LIGHTING)
}

func (c *Context) setupLights(b gfx.Body) {
	gl.Enable(gl.LIGHTING)
	gl.Enable(gl.COLOR_MATERIAL)
	gl.ColorMaterial(gl.FRONT_AND_BACK, gl.AMBIENT_AND_DIFFUSE)

	ambient := [4]float32{b.Ambient, b.Ambient, b.Ambient, 1}
	gl.LightModelfv(gl.LIGHT_MODEL_AMBIENT, &ambient[0])

	for i := 0; i < maxLights; i++ {
		light := uint32(gl.LIGHT0 + i)
		if i >= len(b.Lights) {
			gl.Disable(light)
			continue
		}
		l := b.Lights[i]
		irr := math32.Min(l.Irradiance, 1)
		// Directional lights: w = 0. The modelview is identity here so the
		// direction stays in eye space.
		pos := [4]float32{l.Direction[0], l.Direction[1], l.Direction[2], 0}
		diffuse := [4]float32{l.Color.R * irr, l.Color.G * irr, l.Color.B * irr, 1}
		gl.Lightfv(light, gl.POSITION, &pos[0])
		gl.Lightfv(light, gl.DIFFUSE, &diffuse[0])
		gl.Enable(light)
	}
}

func (c *Context) drawSphere() {
	gl.Begin(gl.TRIANGLE_STRIP)
	for _, v := range c.sphere {
		gl.Normal3f(v.pos[0], v.pos[1], v.pos[2])
		gl.Vertex3f(v.pos[0], v.pos[1], v.pos[2])
	}
	gl.End()
}

func (c *Context) drawRings(radius float32, sections int, col types.Color) {
	gl.Disable(gl.LIGHTING)
	gl.Color4f(col.R, col.G, col.B, 0.5)
	gl.Begin(gl.TRIANGLE_STRIP)
	for i := 0; i <= sections; i++ {
		theta := 2 * math32.Pi * float32(i) / float32(sections)
		sin, cos := math32.Sincos(theta)
		gl.Vertex3f(cos*radius*ringInnerScale, 0, sin*radius*ringInnerScale)
		gl.Vertex3f(cos*radius*ringOuterScale, 0, sin*radius*ringOuterScale)
	}
	gl.End()
}

func (c *Context) DrawLines(mode gfx.LineMode, points []types.Vec3, col types.Color) {
	if len(points) < 2 {
		return
	}
	var glMode uint32
	switch mode {
	case gfx.LineLoop:
		glMode = gl.LINE_LOOP
	case gfx.LineSegments:
		glMode = gl.LINES
	default:
		glMode = gl.LINE_STRIP
	}

	gl.Color4f(col.R, col.G, col.B, col.A)
	gl.Begin(glMode)
	for _, p := range points {
		gl.Vertex3f(p[0], p[1], p[2])
	}
	gl.End()
}

func (c *Context) DrawLabel(l gfx.Label) {
	p, ok := c.proj.Project(l.Position)
	if !ok {
		return
	}

	c.beginOverlay()
	defer c.endOverlay()

	if l.Marker != nil {
		drawMarker(p, l.Marker)
	}
	if l.Text == "" {
		return
	}

	img := c.labelImage(l.Text)
	x := p[0]
	switch l.Align {
	case gfx.AlignLeft:
		x += labelOffset
	case gfx.AlignCenter:
		x -= float32(img.Bounds().Dx()) * 0.5
	case gfx.AlignRight:
		x -= float32(img.Bounds().Dx() + labelOffset)
	}
	y := p[1] - float32(img.Bounds().Dy())*0.5

	// The label image is white; the current color tints it.
	gl.PixelTransferf(gl.RED_SCALE, l.Color.R)
	gl.PixelTransferf(gl.GREEN_SCALE, l.Color.G)
	gl.PixelTransferf(gl.BLUE_SCALE, l.Color.B)
	gl.RasterPos2f(x, y)
	gl.PixelZoom(1, -1)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.DrawPixels(int32(img.Bounds().Dx()), int32(img.Bounds().Dy()), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.PixelZoom(1, 1)
	gl.PixelTransferf(gl.RED_SCALE, 1)
	gl.PixelTransferf(gl.GREEN_SCALE, 1)
	gl.PixelTransferf(gl.BLUE_SCALE, 1)
}

func (c *Context) EndFrame() {
	gl.Flush()
}

// Switch to a window-space orthographic projection with y pointing down.
func (c *Context) beginOverlay() {
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.LIGHTING)
	gl.MatrixMode(gl.PROJECTION)
	gl.PushMatrix()
	gl.LoadIdentity()
	gl.Ortho(0, float64(c.view.Width), float64(c.view.Height), 0, -1, 1)
	gl.MatrixMode(gl.MODELVIEW)
	gl.PushMatrix()
	gl.LoadIdentity()
}

func (c *Context) endOverlay() {
	gl.MatrixMode(gl.PROJECTION)
	gl.PopMatrix()
	gl.MatrixMode(gl.MODELVIEW)
	gl.PopMatrix()
	gl.Enable(gl.DEPTH_TEST)
}

func (c *Context) labelImage(text string) *image.RGBA {
	if img, ok := c.labels[text]; ok {
		return img
	}
	if len(c.labels) >= maxCachedLabels {
		c.labels = make(map[string]*image.RGBA)
	}

	metrics := c.face.Metrics()
	width := font.MeasureString(c.face, text).Ceil()
	height := metrics.Height.Ceil()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: c.face,
		Dot:  fixed.P(0, metrics.Ascent.Ceil()),
	}
	d.DrawString(text)
	c.labels[text] = img
	return img
}

func (c *Context) bindTexture(name string) {
	tex, ok := c.textures[name]
	if !ok {
		tex = c.textures["gaussian"]
	}
	gl.Enable(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, tex)
}

func drawMarker(p types.Vec2, m *gfx.Marker) {
	s := m.Size * 0.5
	x, y := p[0], p[1]
	gl.Color4f(m.Color.R, m.Color.G, m.Color.B, m.Color.A)
	gl.LineWidth(1)

	switch m.Symbol {
	case gfx.MarkerSquare:
		gl.Begin(gl.LINE_LOOP)
		gl.Vertex2f(x-s, y-s)
		gl.Vertex2f(x+s, y-s)
		gl.Vertex2f(x+s, y+s)
		gl.Vertex2f(x-s, y+s)
		gl.End()
	case gfx.MarkerCircle:
		gl.Begin(gl.LINE_LOOP)
		for i := 0; i < sphereSlices; i++ {
			sin, cos := math32.Sincos(2 * math32.Pi * float32(i) / sphereSlices)
			gl.Vertex2f(x+cos*s, y+sin*s)
		}
		gl.End()
	case gfx.MarkerTriangle:
		gl.Begin(gl.LINE_LOOP)
		gl.Vertex2f(x, y-s)
		gl.Vertex2f(x+s, y+s)
		gl.Vertex2f(x-s, y+s)
		gl.End()
	case gfx.MarkerPlus:
		gl.Begin(gl.LINES)
		gl.Vertex2f(x-s, y)
		gl.Vertex2f(x+s, y)
		gl.Vertex2f(x, y-s)
		gl.Vertex2f(x, y+s)
		gl.End()
	case gfx.MarkerX:
		gl.Begin(gl.LINES)
		gl.Vertex2f(x-s, y-s)
		gl.Vertex2f(x+s, y+s)
		gl.Vertex2f(x-s, y+s)
		gl.Vertex2f(x+s, y-s)
		gl.End()
	case gfx.MarkerCrosshair, gfx.MarkerSelection:
		g := s * 0.4
		gl.Begin(gl.LINES)
		gl.Vertex2f(x-s, y)
		gl.Vertex2f(x-g, y)
		gl.Vertex2f(x+g, y)
		gl.Vertex2f(x+s, y)
		gl.Vertex2f(x, y-s)
		gl.Vertex2f(x, y-g)
		gl.Vertex2f(x, y+g)
		gl.Vertex2f(x, y+s)
		gl.End()
	default:
		gl.Begin(gl.LINE_LOOP)
		gl.Vertex2f(x, y-s)
		gl.Vertex2f(x+s, y)
		gl.Vertex2f(x, y+s)
		gl.Vertex2f(x-s, y)
		gl.End()
	}
}

// Unit sphere as a single triangle strip with degenerate stitches between
// stacks.
func buildSphere() []sphereVertex {
	out := make([]sphereVertex, 0, sphereStacks*(sphereSlices+2)*2)
	point := func(stack, slice int) types.Vec3 {
		phi := math32.Pi * float32(stack) / sphereStacks
		theta := 2 * math32.Pi * float32(slice) / sphereSlices
		sinPhi, cosPhi := math32.Sincos(phi)
		sinTheta, cosTheta := math32.Sincos(theta)
		return types.XYZ(sinPhi*cosTheta, cosPhi, sinPhi*sinTheta)
	}
	for stack := 0; stack < sphereStacks; stack++ {
		for slice := 0; slice <= sphereSlices; slice++ {
			a, b := point(stack, slice), point(stack+1, slice)
			if slice == 0 && stack > 0 {
				out = append(out, sphereVertex{a})
			}
			out = append(out, sphereVertex{a}, sphereVertex{b})
		}
		out = append(out, out[len(out)-1])
	}
	return out
}

// Radially symmetric RGBA sprite; falloff maps the normalized radius to alpha.
func spriteImage(falloff func(r float32) float32) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, spriteTextureSize, spriteTextureSize))
	draw.Draw(img, img.Bounds(), image.Transparent, image.Point{}, draw.Src)
	half := float32(spriteTextureSize) * 0.5
	for y := 0; y < spriteTextureSize; y++ {
		for x := 0; x < spriteTextureSize; x++ {
			dx, dy := (float32(x)+0.5-half)/half, (float32(y)+0.5-half)/half
			a := falloff(math32.Sqrt(dx*dx + dy*dy))
			off := img.PixOffset(x, y)
			img.Pix[off+0] = 255
			img.Pix[off+1] = 255
			img.Pix[off+2] = 255
			img.Pix[off+3] = uint8(math32.Max(0, math32.Min(1, a)) * 255)
		}
	}
	return img
}

func uploadTexture(img *image.RGBA) uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexImage2D(
		gl.TEXTURE_2D, 0, gl.RGBA8,
		int32(img.Bounds().Dx()), int32(img.Bounds().Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix),
	)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return tex
}
