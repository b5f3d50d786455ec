package opengl

import (
	"fmt"
	"math/rand"

	"github.com/achilleasa/orrery/scene"
	"github.com/achilleasa/orrery/types"
	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	// Coefficients for converting delta cursor movements to yaw/pitch angles.
	mouseSensitivityX = 0.005
	mouseSensitivityY = 0.005

	// Zoom factor per scroll wheel step.
	scrollZoom = 0.9

	// Height in pixels of the statistics overlay.
	stackedSeriesHeight = 40
)

// A KeyHandler receives key presses the window does not handle itself.
type KeyHandler func(key glfw.Key, mods glfw.ModifierKey)

// Window is a glfw window driving an observer with the keyboard and mouse.
//
//	arrows       move (shift: 10x)
//	page up/down move up/down
//	mouse drag   look around
//	scroll       zoom
//	tab          toggle the statistics overlay
//	escape       close
type Window struct {
	win      *glfw.Window
	ctx      *Context
	observer *scene.Observer

	// Distance (km) covered by one movement key press.
	MoveSpeed float64

	onKey KeyHandler

	lastCursorPos types.Vec2
	mousePressed  bool

	showStats bool
	series    *stackedSeries
}

// Open a window with a GL 2.1 context. The caller must have locked the
// calling goroutine to its OS thread.
func NewWindow(width, height int, title string, vsync bool, observer *scene.Observer) (*Window, error) {
	var err error
	if err = glfw.Init(); err != nil {
		return nil, fmt.Errorf("opengl: failed to initialize glfw: %s", err.Error())
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("opengl: could not create window: %s", err.Error())
	}
	win.MakeContextCurrent()

	if err = gl.Init(); err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("opengl: could not init opengl: %s", err.Error())
	}
	if vsync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	w := &Window{
		win:       win,
		ctx:       NewContext(),
		observer:  observer,
		MoveSpeed: 1e4,
	}

	win.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	win.SetKeyCallback(w.onKeyEvent)
	win.SetMouseButtonCallback(w.onMouseEvent)
	win.SetCursorPosCallback(w.onCursorPosEvent)
	win.SetScrollCallback(w.onScrollEvent)

	return w, nil
}

// The drawing context bound to this window.
func (w *Window) Context() *Context {
	return w.ctx
}

// Current framebuffer size in pixels.
func (w *Window) Size() (int, int) {
	return w.win.GetFramebufferSize()
}

// Register a handler for keys not used for navigation.
func (w *Window) SetKeyHandler(h KeyHandler) {
	w.onKey = h
}

func (w *Window) ShouldClose() bool {
	return w.win.ShouldClose()
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

// Draw the statistics overlay if enabled and present the frame. Each sample
// value becomes one band of the stacked series.
func (w *Window) Present(samples ...float32) {
	if w.showStats && len(samples) > 0 {
		width, height := w.Size()
		if w.series == nil || len(w.series.series) != len(samples) || len(w.series.series[0]) != width {
			w.series = makeStackedSeries(len(samples), width)
		}
		for index, v := range samples {
			w.series.Append(index, v)
		}
		w.ctx.beginOverlay()
		w.series.Render(uint32(height-stackedSeriesHeight), stackedSeriesHeight)
		w.ctx.endOverlay()
	}
	w.win.SwapBuffers()
}

// Release GL resources and close the window.
func (w *Window) Close() {
	if w.win == nil {
		return
	}
	w.ctx.Release()
	w.win.Destroy()
	w.win = nil
	glfw.Terminate()
}

func (w *Window) onKeyEvent(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press && action != glfw.Repeat {
		return
	}

	var moveDir scene.Direction
	switch key {
	case glfw.KeyEscape:
		w.win.SetShouldClose(true)
		return
	case glfw.KeyUp:
		moveDir = scene.Forward
	case glfw.KeyDown:
		moveDir = scene.Backward
	case glfw.KeyLeft:
		moveDir = scene.Left
	case glfw.KeyRight:
		moveDir = scene.Right
	case glfw.KeyPageUp:
		moveDir = scene.Up
	case glfw.KeyPageDown:
		moveDir = scene.Down
	case glfw.KeyTab:
		w.showStats = !w.showStats
		if w.showStats && w.series != nil {
			w.series.Clear()
		}
		return
	default:
		if w.onKey != nil {
			w.onKey(key, mods)
		}
		return
	}

	speed := w.MoveSpeed
	if mods&glfw.ModShift == glfw.ModShift {
		speed *= 10
	}
	w.observer.Move(moveDir, speed)
}

func (w *Window) onMouseEvent(win *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft {
		return
	}

	w.mousePressed = action == glfw.Press
	if w.mousePressed {
		xPos, yPos := win.GetCursorPos()
		w.lastCursorPos = types.XY(float32(xPos), float32(yPos))
	}
}

func (w *Window) onCursorPosEvent(_ *glfw.Window, xPos, yPos float64) {
	if !w.mousePressed {
		return
	}

	newPos := types.XY(float32(xPos), float32(yPos))
	delta := w.lastCursorPos.Sub(newPos)
	w.lastCursorPos = newPos

	// Scale by the field of view so dragging feels the same when zoomed.
	scale := w.observer.FOV
	w.observer.Rotate(float64(delta[0])*mouseSensitivityX*scale, float64(delta[1])*mouseSensitivityY*scale)
}

func (w *Window) onScrollEvent(_ *glfw.Window, _, yOff float64) {
	switch {
	case yOff > 0:
		w.observer.Zoom(scrollZoom)
	case yOff < 0:
		w.observer.Zoom(1 / scrollZoom)
	}
}

type stackedSeries struct {
	series [][]float32
	colors []types.Vec3
}

func makeStackedSeries(numSeries, histCount int) *stackedSeries {
	s := &stackedSeries{
		series: make([][]float32, numSeries),
		colors: make([]types.Vec3, numSeries),
	}

	for sIndex := 0; sIndex < numSeries; sIndex++ {
		s.series[sIndex] = make([]float32, histCount)
		s.colors[sIndex] = types.Vec3{rand.Float32(), rand.Float32(), 1.0}
	}

	return s
}

// Clear series
func (s *stackedSeries) Clear() {
	histCount := len(s.series[0])
	for sIndex := 0; sIndex < len(s.series); sIndex++ {
		s.series[sIndex] = make([]float32, histCount)
	}
}

// Shift series values and append new value at the end.
func (s *stackedSeries) Append(seriesIndex int, val float32) {
	s.series[seriesIndex] = append(s.series[seriesIndex][1:], val)
}

func (s *stackedSeries) Render(rY, rHeight uint32) {
	gl.LineWidth(1.0)
	gl.Begin(gl.LINES)
	for x := 0; x < len(s.series[0]); x++ {
		var sum float32 = 0
		var scale float32 = 1.0
		for seriesIndex := 0; seriesIndex < len(s.series); seriesIndex++ {
			sum += s.series[seriesIndex][x]
		}
		if sum > 0.0 {
			scale = float32(rHeight) / sum
		}

		var y float32 = float32(rY)
		for seriesIndex := 0; seriesIndex < len(s.series); seriesIndex++ {
			sH := s.series[seriesIndex][x] * scale
			gl.Color3fv(&s.colors[seriesIndex][0])
			gl.Vertex2f(float32(x), y)
			gl.Vertex2f(float32(x), y+sH)
			y += sH
		}
	}
	gl.End()
}
