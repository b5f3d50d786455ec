package cmd

import (
	"fmt"
	"math"
	"os"

	"github.com/achilleasa/orrery/config"
	"github.com/achilleasa/orrery/renderer"
	"github.com/achilleasa/orrery/scene"
	"github.com/achilleasa/orrery/scene/reader"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/urfave/cli"
)

const (
	// Observer distance in target radii when --distance is not set.
	defaultDistanceRadii = 8

	// Fallback viewing distance for targets without a radius (km).
	defaultDistance = 1e6
)

// Flags shared by every render subcommand.
var renderFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "universe, u",
		Usage: "universe description file or URL (defaults to the built-in solar system)",
	},
	cli.StringFlag{
		Name:  "config, c",
		Usage: "render settings file (defaults to " + config.DefaultFile + " if present)",
	},
	cli.StringFlag{
		Name:  "target, t",
		Value: "Earth",
		Usage: "name of the object to look at",
	},
	cli.Float64Flag{
		Name:  "distance",
		Usage: "observer distance from the target in km (0 picks a distance from the target radius)",
	},
	cli.Float64Flag{
		Name:  "fov",
		Value: 45,
		Usage: "vertical field of view in degrees",
	},
	cli.Float64Flag{
		Name:  "time",
		Usage: "simulation time in days",
	},
	cli.Float64Flag{
		Name:  "faintest",
		Value: 6.5,
		Usage: "faintest apparent magnitude drawn when auto-mag is disabled",
	},
	cli.StringSliceFlag{
		Name:  "flags",
		Value: &cli.StringSlice{},
		Usage: "override the enabled render flags (see the flags command)",
	},
	cli.StringSliceFlag{
		Name:  "labels",
		Value: &cli.StringSlice{},
		Usage: "override the enabled label categories (see the flags command)",
	},
	cli.StringFlag{
		Name:  "select",
		Usage: "name of the object to mark as selected (defaults to the target)",
	},
}

// The flags accepted by every render subcommand.
func RenderFlags() []cli.Flag {
	out := make([]cli.Flag, len(renderFlags))
	copy(out, renderFlags)
	return out
}

// A session bundles the state shared by the render subcommands: the loaded
// universe, the settings and the observer.
type session struct {
	settings     *config.Settings
	settingsPath string

	universe  *scene.Universe
	target    *scene.Node
	selection scene.NodeID
	observer  *scene.Observer
	faintest  float32
}

func newSession(ctx *cli.Context) (*session, error) {
	s := &session{
		faintest: float32(ctx.Float64("faintest")),
	}

	var err error
	if s.settings, s.settingsPath, err = loadSettings(ctx.String("config")); err != nil {
		return nil, err
	}
	if err = applyOverrides(ctx, &s.settings.Render); err != nil {
		return nil, err
	}

	if path := ctx.String("universe"); path != "" {
		s.universe, err = reader.ReadUniverse(path)
	} else {
		s.universe, err = reader.DefaultUniverse()
	}
	if err != nil {
		return nil, err
	}

	if s.target = s.universe.Find(ctx.String("target")); s.target == nil {
		return nil, fmt.Errorf("unknown target '%s'", ctx.String("target"))
	}
	s.selection = s.target.ID
	if name := ctx.String("select"); name != "" {
		sel := s.universe.Find(name)
		if sel == nil {
			return nil, fmt.Errorf("unknown selection '%s'", name)
		}
		s.selection = sel.ID
	}

	s.observer = scene.NewObserver(ctx.Float64("fov") * math.Pi / 180)
	s.observer.Time = ctx.Float64("time")
	s.placeObserver(ctx.Float64("distance"))

	logger.Infof("observing %s at t=%.2f days", s.target.Name, s.observer.Time)
	return s, nil
}

// Load the settings file. An empty path tries the default location and falls
// back to the built-in defaults if no file exists there.
func loadSettings(path string) (*config.Settings, string, error) {
	if path == "" {
		def, err := config.DefaultPath()
		if err != nil {
			return nil, "", err
		}
		if _, err = os.Stat(def); err != nil {
			logger.Infof("no settings file at %s; using defaults", def)
			return config.Default(), "", nil
		}
		path = def
	}

	s, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	logger.Infof("loaded settings from %s", path)
	return s, path, nil
}

func applyOverrides(ctx *cli.Context, cfg *renderer.Config) error {
	var err error
	if names := ctx.StringSlice("flags"); len(names) != 0 {
		if cfg.RenderFlags, err = renderer.ParseRenderFlags(names); err != nil {
			return err
		}
	}
	if names := ctx.StringSlice("labels"); len(names) != 0 {
		if cfg.LabelMode, err = renderer.ParseLabelMode(names); err != nil {
			return err
		}
	}
	return nil
}

// Place the observer at distance km from the target, above its orbital
// plane, looking at it. Zero picks a distance from the target radius.
func (s *session) placeObserver(distance float64) {
	if !(distance > 0) {
		distance = s.target.Radius * defaultDistanceRadii
		if !(distance > 0) {
			distance = defaultDistance
		}
	}

	center := s.snapshot().Position(s.target)
	offset := mgl64.Vec3{0, -0.6, 0.8}.Mul(distance)
	s.observer.Position = center.Add(offset)
	s.observer.LookAt(center, mgl64.Vec3{0, 0, 1})
	s.observer.Reference = s.target.ID
}

// Snapshot the universe at the observer time.
func (s *session) snapshot() *scene.Snapshot {
	return s.universe.Snapshot(s.observer.Time)
}

// Advance simulation time by dt days keeping the observer at the same
// offset from the target.
func (s *session) advance(dt float64) {
	if dt == 0 {
		return
	}
	before := s.snapshot().Position(s.target)
	s.observer.Time += dt
	after := s.snapshot().Position(s.target)
	s.observer.Position = s.observer.Position.Add(after.Sub(before))
}

// Watch the settings file, if one was loaded.
func (s *session) watchSettings() *config.Watcher {
	if s.settingsPath == "" {
		return nil
	}
	w, err := config.Watch(s.settingsPath)
	if err != nil {
		logger.Warningf("settings will not be reloaded: %v", err)
		return nil
	}
	return w
}

// Apply a pending settings reload between frames.
func applySettingsUpdate(w *config.Watcher, r *renderer.Renderer) {
	if w == nil {
		return
	}
	select {
	case s := <-w.Updates():
		if err := r.SetConfig(&s.Render); err != nil {
			logger.Errorf("could not apply reloaded settings: %v", err)
			return
		}
		if s.Detail.OrbitPathSamplePoints != 0 {
			if err := r.SetOrbitPathSamplePoints(s.Detail.OrbitPathSamplePoints); err != nil {
				logger.Warningf("ignoring orbit sample count: %v", err)
			}
		}
		logger.Notice("applied reloaded settings")
	case err := <-w.Errors():
		logger.Debugf("settings watcher: %v", err)
	default:
	}
}

func displayFrameStats(stats renderer.FrameStats) {
	logger.Noticef("frame statistics\n%s", stats.Table())
}
