package cmd

import (
	"math"
	"runtime"
	"time"

	"github.com/achilleasa/orrery/gfx/opengl"
	"github.com/achilleasa/orrery/gfx/raster"
	"github.com/achilleasa/orrery/gfx/term"
	"github.com/achilleasa/orrery/renderer"
	"github.com/achilleasa/orrery/scene"
	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/urfave/cli"
)

const (
	// Rotation step for keyboard look controls (radians).
	lookStep = math.Pi / 90

	// Zoom factor per key press.
	zoomStep = 0.9

	// Interval between terminal frames.
	terminalFrameInterval = 100 * time.Millisecond
)

// Render a still frame to a PNG image.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	s, err := newSession(ctx)
	if err != nil {
		return err
	}

	width, height := ctx.Int("width"), ctx.Int("height")
	rc := raster.New(width, height)
	r, err := renderer.New(rc, width, height, s.settings.Detail, &s.settings.Render)
	if err != nil {
		return err
	}
	defer r.Close()
	r.SetSelection(s.selection)

	if err = r.Render(s.observer, s.snapshot(), s.faintest); err != nil {
		return err
	}

	out := ctx.String("out")
	if err = rc.SavePNG(out); err != nil {
		return err
	}
	logger.Noticef("wrote frame to %s", out)

	displayFrameStats(r.Stats())
	return nil
}

// Render the scene as text on the terminal.
//
//	arrows   look around
//	w/s      move forward/backward
//	+/-      zoom
//	[/]      slow down/speed up time
//	space    pause time
//	o        toggle orbits
//	l        toggle body labels
//	c        cycle star style
//	q/esc    quit
func RenderTerminal(ctx *cli.Context) error {
	setupLogging(ctx)

	s, err := newSession(ctx)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err = screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	tc := term.New(screen)
	width, height := tc.Viewport()
	r, err := renderer.New(tc, width, height, s.settings.Detail, &s.settings.Render)
	if err != nil {
		return err
	}
	defer r.Close()
	r.SetSelection(s.selection)

	watcher := s.watchSettings()
	if watcher != nil {
		defer watcher.Close()
	}

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(terminalFrameInterval)
	defer ticker.Stop()

	timeRate := ctx.Float64("time-rate")
	paused := false
	lastFrame := time.Now()
	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
				if err = r.Resize(tc.Viewport()); err != nil {
					logger.Warning(err)
				}
			case *tcell.EventKey:
				switch ev.Key() {
				case tcell.KeyEscape, tcell.KeyCtrlC:
					return nil
				case tcell.KeyUp:
					s.observer.Rotate(0, lookStep*s.observer.FOV)
				case tcell.KeyDown:
					s.observer.Rotate(0, -lookStep*s.observer.FOV)
				case tcell.KeyLeft:
					s.observer.Rotate(lookStep*s.observer.FOV, 0)
				case tcell.KeyRight:
					s.observer.Rotate(-lookStep*s.observer.FOV, 0)
				case tcell.KeyRune:
					if ev.Rune() == 'q' {
						return nil
					}
					timeRate, paused = handleCommonKey(ev.Rune(), s, r, timeRate, paused)
				}
			}
		case <-ticker.C:
			now := time.Now()
			if !paused {
				s.advance(timeRate * now.Sub(lastFrame).Seconds())
			}
			lastFrame = now

			applySettingsUpdate(watcher, r)
			if err = r.Render(s.observer, s.snapshot(), s.faintest); err != nil {
				return err
			}
		}
	}
}

// Keys shared by the terminal and window front-ends. Returns the updated
// time rate (days per second) and pause state.
func handleCommonKey(key rune, s *session, r *renderer.Renderer, timeRate float64, paused bool) (float64, bool) {
	switch key {
	case 'w':
		s.observer.Move(scene.Forward, moveDistance(s))
	case 's':
		s.observer.Move(scene.Backward, moveDistance(s))
	case '+', '=':
		s.observer.Zoom(zoomStep)
	case '-':
		s.observer.Zoom(1 / zoomStep)
	case '[':
		timeRate *= 0.5
	case ']':
		if timeRate == 0 {
			timeRate = 1.0 / 24
		}
		timeRate *= 2
	case ' ':
		paused = !paused
	case 'o':
		r.SetRenderFlags(r.RenderFlags() ^ renderer.ShowOrbits)
	case 'l':
		r.SetLabelMode(r.LabelMode() ^ renderer.BodyLabelMask)
	case 'c':
		r.SetStarStyle((r.StarStyle() + 1) % 3)
	}
	return timeRate, paused
}

// Render an interactive view in an OpenGL window.
func RenderInteractive(ctx *cli.Context) error {
	setupLogging(ctx)

	// glfw and GL calls must come from the main thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	s, err := newSession(ctx)
	if err != nil {
		return err
	}

	win, err := opengl.NewWindow(ctx.Int("width"), ctx.Int("height"), "orrery", s.settings.Render.VideoSync, s.observer)
	if err != nil {
		return err
	}
	defer win.Close()
	win.MoveSpeed = moveDistance(s)

	width, height := win.Size()
	r, err := renderer.New(win.Context(), width, height, s.settings.Detail, &s.settings.Render)
	if err != nil {
		return err
	}
	defer r.Close()
	r.SetSelection(s.selection)

	watcher := s.watchSettings()
	if watcher != nil {
		defer watcher.Close()
	}

	timeRate := ctx.Float64("time-rate")
	paused := false
	win.SetKeyHandler(func(key glfw.Key, _ glfw.ModifierKey) {
		if ch, ok := glfwKeyRunes[key]; ok {
			timeRate, paused = handleCommonKey(ch, s, r, timeRate, paused)
		}
	})

	lastFrame := time.Now()
	for !win.ShouldClose() {
		win.PollEvents()

		now := time.Now()
		if !paused {
			s.advance(timeRate * now.Sub(lastFrame).Seconds())
		}
		lastFrame = now

		if w, h := win.Size(); w != r.View().Width || h != r.View().Height {
			if err = r.Resize(w, h); err != nil {
				logger.Warning(err)
			}
		}

		applySettingsUpdate(watcher, r)
		if err = r.Render(s.observer, s.snapshot(), s.faintest); err != nil {
			return err
		}

		stats := r.Stats()
		win.Present(
			float32(stats.StarsDrawn),
			float32(stats.RenderListEntries),
			float32(stats.OrbitPaths),
			float32(stats.ForegroundLabels+stats.BackgroundLabels+stats.SortedLabels),
		)
	}

	displayFrameStats(r.Stats())
	return nil
}

var glfwKeyRunes = map[glfw.Key]rune{
	glfw.KeyW:            'w',
	glfw.KeyS:            's',
	glfw.KeyEqual:        '+',
	glfw.KeyKPAdd:        '+',
	glfw.KeyMinus:        '-',
	glfw.KeyKPSubtract:   '-',
	glfw.KeyLeftBracket:  '[',
	glfw.KeyRightBracket: ']',
	glfw.KeySpace:        ' ',
	glfw.KeyO:            'o',
	glfw.KeyL:            'l',
	glfw.KeyC:            'c',
}

// Movement step: a tenth of the current distance to the target.
func moveDistance(s *session) float64 {
	d := s.observer.Position.Sub(s.snapshot().Position(s.target)).Len() * 0.1
	if !(d > 0) {
		return defaultDistance * 0.1
	}
	return d
}
