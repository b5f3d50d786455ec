package reader

import (
	"bytes"
	_ "embed"
	"io"
	"time"

	"github.com/achilleasa/orrery/asset"
	"github.com/achilleasa/orrery/log"
	"github.com/achilleasa/orrery/scene"
	"github.com/achilleasa/orrery/types"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed data/solar_system.yaml
var defaultUniverse []byte

var logger = log.New("universe reader")

// Raw document types as they appear in universe files. Angles are in degrees.
type rawUniverse struct {
	Systems   []*rawNode    `yaml:"systems"`
	Asterisms []rawAsterism `yaml:"asterisms"`
	Markers   []rawMarker   `yaml:"markers"`
}

type rawNode struct {
	Name           string     `yaml:"name"`
	Kind           string     `yaml:"kind"`
	Class          string     `yaml:"class"`
	Radius         float64    `yaml:"radius"`
	AlwaysVisible  bool       `yaml:"alwaysVisible"`
	AbsMag         float64    `yaml:"absMag"`
	Temperature    float64    `yaml:"temperature"`
	Albedo         float64    `yaml:"albedo"`
	Color          string     `yaml:"color"`
	SemiAxes       []float64  `yaml:"semiAxes"`
	RotationPeriod float64    `yaml:"rotationPeriod"`
	Obliquity      float64    `yaml:"obliquity"`
	Capabilities   []string   `yaml:"capabilities"`
	Position       []float64  `yaml:"position"`
	Orbit          *rawOrbit  `yaml:"orbit"`
	Children       []*rawNode `yaml:"children"`
}

type rawOrbit struct {
	SemiMajorAxis  float64   `yaml:"semiMajorAxis"`
	Eccentricity   float64   `yaml:"eccentricity"`
	Inclination    float64   `yaml:"inclination"`
	AscendingNode  float64   `yaml:"ascendingNode"`
	ArgOfPeriapsis float64   `yaml:"argOfPeriapsis"`
	MeanAnomaly    float64   `yaml:"meanAnomaly"`
	Epoch          float64   `yaml:"epoch"`
	Period         float64   `yaml:"period"`
	Fixed          []float64 `yaml:"fixed"`
}

type rawAsterism struct {
	Name string  `yaml:"name"`
	RA   float64 `yaml:"ra"`
	Dec  float64 `yaml:"dec"`
}

type rawMarker struct {
	Target string  `yaml:"target"`
	Symbol string  `yaml:"symbol"`
	Size   float32 `yaml:"size"`
	Color  string  `yaml:"color"`
	Label  string  `yaml:"label"`
}

var capabilityNames = map[string]scene.Capability{
	"surface":        scene.HasSurface,
	"atmosphere":     scene.HasAtmosphere,
	"rings":          scene.HasRings,
	"cometTail":      scene.HasCometTail,
	"bodyAxes":       scene.ShowBodyAxes,
	"frameAxes":      scene.ShowFrameAxes,
	"sunDirection":   scene.ShowSunDirection,
	"velocityVector": scene.ShowVelocityVector,
	"emissive":       scene.Emissive,
}

// Read a universe description from a local file or URL.
func ReadUniverse(path string) (*scene.Universe, error) {
	res, err := asset.NewResource(path, nil)
	if err != nil {
		return nil, err
	}
	return readResource(res)
}

// Parse the built-in solar system description.
func DefaultUniverse() (*scene.Universe, error) {
	return readResource(asset.NewResourceFromStream("solar_system.yaml", bytes.NewReader(defaultUniverse)))
}

// Parse a universe description from a stream.
func ParseUniverse(r io.Reader) (*scene.Universe, error) {
	return readResource(asset.NewResourceFromStream("stream.yaml", r))
}

func readResource(res *asset.Resource) (*scene.Universe, error) {
	start := time.Now()
	data, err := res.ReadAll()
	if err != nil {
		return nil, err
	}

	var raw rawUniverse
	if err = yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "universe reader: could not parse '%s'", res.Path())
	}

	roots := make([]*scene.Node, 0, len(raw.Systems))
	for _, rn := range raw.Systems {
		node, err := buildNode(rn, true)
		if err != nil {
			return nil, errors.Wrapf(err, "universe reader: '%s'", res.Path())
		}
		roots = append(roots, node)
	}

	u, err := scene.NewUniverse(roots...)
	if err != nil {
		return nil, err
	}

	for _, ra := range raw.Asterisms {
		u.Asterisms = append(u.Asterisms, scene.Asterism{
			Name:      ra.Name,
			Direction: scene.RADecToDirection(ra.RA, ra.Dec),
		})
	}

	for _, rm := range raw.Markers {
		target := u.Find(rm.Target)
		if target == nil {
			return nil, errors.Errorf("universe reader: marker references unknown object '%s'", rm.Target)
		}
		col := types.RGB(1, 1, 1)
		if rm.Color != "" {
			if col, err = types.ParseHexColor(rm.Color); err != nil {
				return nil, errors.Wrapf(err, "universe reader: marker for '%s'", rm.Target)
			}
		}
		u.Markers = append(u.Markers, scene.Marker{
			Target: target.ID,
			Symbol: rm.Symbol,
			Size:   rm.Size,
			Color:  col,
			Label:  rm.Label,
		})
	}

	logger.Infof("parsed %d objects from %s in %d ms", len(u.Nodes()), res.Path(), time.Since(start).Nanoseconds()/1e6)
	return u, nil
}

func buildNode(rn *rawNode, isRoot bool) (*scene.Node, error) {
	if rn.Name == "" {
		return nil, errors.New("object without a name")
	}
	if !(rn.Radius > 0) {
		return nil, errors.Errorf("object '%s' must have a positive radius", rn.Name)
	}

	n := &scene.Node{
		Name:          rn.Name,
		Radius:        rn.Radius,
		AlwaysVisible: rn.AlwaysVisible,
	}

	var err error
	switch rn.Kind {
	case "star":
		n.Kind = scene.KindStar
		n.Class = scene.ClassStar
		n.Caps |= scene.Emissive
		n.Star = &scene.StarInfo{AbsMag: rn.AbsMag, Temperature: rn.Temperature}
	case "deep-sky":
		n.Kind = scene.KindDeepSky
		n.DeepSky = &scene.DeepSkyInfo{AbsMag: rn.AbsMag}
		if n.Class, err = parseClass(rn.Class, scene.ClassGalaxy); err != nil {
			return nil, err
		}
	case "", "body":
		n.Kind = scene.KindBody
		if n.Class, err = parseClass(rn.Class, scene.ClassPlanet); err != nil {
			return nil, err
		}
		body := &scene.BodyInfo{
			Albedo:         rn.Albedo,
			Color:          types.RGB(1, 1, 1),
			SemiAxes:       mgl64.Vec3{1, 1, 1},
			RotationPeriod: rn.RotationPeriod,
			Obliquity:      mgl64.DegToRad(rn.Obliquity),
		}
		if rn.Color != "" {
			if body.Color, err = types.ParseHexColor(rn.Color); err != nil {
				return nil, errors.Wrapf(err, "object '%s'", rn.Name)
			}
		}
		if len(rn.SemiAxes) == 3 {
			body.SemiAxes = mgl64.Vec3{rn.SemiAxes[0], rn.SemiAxes[1], rn.SemiAxes[2]}
		}
		n.Body = body
	default:
		return nil, errors.Errorf("object '%s' has unknown kind '%s'", rn.Name, rn.Kind)
	}

	for _, capName := range rn.Capabilities {
		c, ok := capabilityNames[capName]
		if !ok {
			return nil, errors.Errorf("object '%s' has unknown capability '%s'", rn.Name, capName)
		}
		n.Caps |= c
	}

	if len(rn.Position) != 0 {
		if len(rn.Position) != 3 {
			return nil, errors.Errorf("object '%s' position must have 3 components", rn.Name)
		}
		if !isRoot {
			logger.Warningf("ignoring position of non-root object '%s'", rn.Name)
		}
		n.Position = mgl64.Vec3{rn.Position[0], rn.Position[1], rn.Position[2]}
	}

	if rn.Orbit != nil {
		if n.Orbit, err = buildOrbit(rn.Orbit); err != nil {
			return nil, errors.Wrapf(err, "object '%s'", rn.Name)
		}
	}

	for _, rc := range rn.Children {
		child, err := buildNode(rc, false)
		if err != nil {
			return nil, err
		}
		n.Add(child)
	}

	return n, nil
}

func buildOrbit(ro *rawOrbit) (scene.Orbit, error) {
	if len(ro.Fixed) != 0 {
		if len(ro.Fixed) != 3 {
			return nil, errors.New("fixed orbit offset must have 3 components")
		}
		return &scene.FixedOrbit{Offset: mgl64.Vec3{ro.Fixed[0], ro.Fixed[1], ro.Fixed[2]}}, nil
	}

	if !(ro.SemiMajorAxis > 0) || !(ro.Period > 0) {
		return nil, errors.New("elliptical orbit requires a positive semi-major axis and period")
	}
	if ro.Eccentricity < 0 || ro.Eccentricity >= 1 {
		return nil, errors.Errorf("unsupported eccentricity %f", ro.Eccentricity)
	}

	return scene.NewEllipticalOrbit(
		ro.SemiMajorAxis,
		ro.Eccentricity,
		mgl64.DegToRad(ro.Inclination),
		mgl64.DegToRad(ro.AscendingNode),
		mgl64.DegToRad(ro.ArgOfPeriapsis),
		mgl64.DegToRad(ro.MeanAnomaly),
		ro.Epoch,
		ro.Period,
	), nil
}

func parseClass(name string, def scene.Class) (scene.Class, error) {
	if name == "" {
		return def, nil
	}
	c, ok := scene.ParseClass(name)
	if !ok {
		return scene.ClassNone, errors.Errorf("unknown class '%s'", name)
	}
	return c, nil
}
