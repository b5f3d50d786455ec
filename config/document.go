package config

import (
	"github.com/achilleasa/orrery/renderer"
	"github.com/achilleasa/orrery/types"
	"github.com/pkg/errors"
)

// The on-disk layout. Pointer fields distinguish missing keys from zero
// values so partial documents only override what they mention.
type document struct {
	Render     renderSection     `toml:"render"`
	Limits     limitsSection     `toml:"limits"`
	Detail     detailSection     `toml:"detail"`
	Colors     map[string]string `toml:"colors,omitempty"`
	StarColors []starColor       `toml:"star_colors,omitempty"`
}

type renderSection struct {
	Flags                []string `toml:"flags"`
	Labels               []string `toml:"labels"`
	Orbits               []string `toml:"orbits"`
	StarStyle            *string  `toml:"star_style,omitempty"`
	TextureResolution    *string  `toml:"texture_resolution,omitempty"`
	AmbientLight         *float32 `toml:"ambient_light,omitempty"`
	MinimumOrbitSize     *float32 `toml:"minimum_orbit_size,omitempty"`
	MinimumFeatureSize   *float32 `toml:"minimum_feature_size,omitempty"`
	DistanceLimit        *float64 `toml:"distance_limit,omitempty"`
	FaintestAutoMag45deg *float32 `toml:"faintest_auto_mag_45deg,omitempty"`
	ScreenDPI            *int     `toml:"screen_dpi,omitempty"`
	VideoSync            *bool    `toml:"video_sync,omitempty"`
}

type limitsSection struct {
	MaxAnnotations          *int     `toml:"max_annotations,omitempty"`
	MaxSortedAnnotations    *int     `toml:"max_sorted_annotations,omitempty"`
	OrbitCacheMaxAge        *uint64  `toml:"orbit_cache_max_age,omitempty"`
	OrbitCacheFlushInterval *uint64  `toml:"orbit_cache_flush_interval,omitempty"`
	MinNearPlane            *float32 `toml:"min_near_plane,omitempty"`
	MaxDepthRatio           *float32 `toml:"max_depth_ratio,omitempty"`
	MaxDepthPartitions      *int     `toml:"max_depth_partitions,omitempty"`
	DepthBias               *float32 `toml:"depth_bias,omitempty"`
	StarBufferCapacity      *int     `toml:"star_buffer_capacity,omitempty"`
}

type detailSection struct {
	RingSystemSections    *uint32 `toml:"ring_system_sections,omitempty"`
	OrbitPathSamplePoints *uint32 `toml:"orbit_path_sample_points,omitempty"`
	ShadowTextureSize     *uint32 `toml:"shadow_texture_size,omitempty"`
	EclipseTextureSize    *uint32 `toml:"eclipse_texture_size,omitempty"`
}

type starColor struct {
	Kelvin float32 `toml:"kelvin"`
	Color  string  `toml:"color"`
}

func (rs *renderSection) apply(cfg *renderer.Config) error {
	var err error
	if rs.Flags != nil {
		if cfg.RenderFlags, err = renderer.ParseRenderFlags(rs.Flags); err != nil {
			return errors.Wrap(err, "config: [render] flags")
		}
	}
	if rs.Labels != nil {
		if cfg.LabelMode, err = renderer.ParseLabelMode(rs.Labels); err != nil {
			return errors.Wrap(err, "config: [render] labels")
		}
	}
	if rs.Orbits != nil {
		if cfg.OrbitMask, err = renderer.ParseClassNames(rs.Orbits); err != nil {
			return errors.Wrap(err, "config: [render] orbits")
		}
	}
	if rs.StarStyle != nil {
		if cfg.StarStyle, err = renderer.ParseStarStyle(*rs.StarStyle); err != nil {
			return errors.Wrap(err, "config: [render] star_style")
		}
	}
	if rs.TextureResolution != nil {
		if cfg.TextureResolution, err = renderer.ParseTextureResolution(*rs.TextureResolution); err != nil {
			return errors.Wrap(err, "config: [render] texture_resolution")
		}
	}

	setFloat32(&cfg.AmbientLightLevel, rs.AmbientLight)
	setFloat32(&cfg.MinimumOrbitSize, rs.MinimumOrbitSize)
	setFloat32(&cfg.MinimumFeatureSize, rs.MinimumFeatureSize)
	setFloat32(&cfg.FaintestAutoMag45deg, rs.FaintestAutoMag45deg)
	if rs.DistanceLimit != nil {
		cfg.DistanceLimit = *rs.DistanceLimit
	}
	if rs.ScreenDPI != nil {
		cfg.ScreenDPI = *rs.ScreenDPI
	}
	if rs.VideoSync != nil {
		cfg.VideoSync = *rs.VideoSync
	}
	return nil
}

func renderSectionFrom(cfg *renderer.Config) renderSection {
	style := cfg.StarStyle.String()
	res := cfg.TextureResolution.String()
	return renderSection{
		Flags:                cfg.RenderFlags.Names(),
		Labels:               cfg.LabelMode.Names(),
		Orbits:               renderer.ClassNames(cfg.OrbitMask),
		StarStyle:            &style,
		TextureResolution:    &res,
		AmbientLight:         &cfg.AmbientLightLevel,
		MinimumOrbitSize:     &cfg.MinimumOrbitSize,
		MinimumFeatureSize:   &cfg.MinimumFeatureSize,
		DistanceLimit:        &cfg.DistanceLimit,
		FaintestAutoMag45deg: &cfg.FaintestAutoMag45deg,
		ScreenDPI:            &cfg.ScreenDPI,
		VideoSync:            &cfg.VideoSync,
	}
}

func (ls *limitsSection) apply(cfg *renderer.Config) {
	setInt(&cfg.MaxAnnotations, ls.MaxAnnotations)
	setInt(&cfg.MaxSortedAnnotations, ls.MaxSortedAnnotations)
	setInt(&cfg.MaxDepthPartitions, ls.MaxDepthPartitions)
	setInt(&cfg.StarBufferCapacity, ls.StarBufferCapacity)
	setFloat32(&cfg.MinNearPlane, ls.MinNearPlane)
	setFloat32(&cfg.MaxDepthRatio, ls.MaxDepthRatio)
	setFloat32(&cfg.DepthBias, ls.DepthBias)
	if ls.OrbitCacheMaxAge != nil {
		cfg.OrbitCacheMaxAge = *ls.OrbitCacheMaxAge
	}
	if ls.OrbitCacheFlushInterval != nil {
		cfg.OrbitCacheFlushInterval = *ls.OrbitCacheFlushInterval
	}
}

func limitsSectionFrom(cfg *renderer.Config) limitsSection {
	return limitsSection{
		MaxAnnotations:          &cfg.MaxAnnotations,
		MaxSortedAnnotations:    &cfg.MaxSortedAnnotations,
		OrbitCacheMaxAge:        &cfg.OrbitCacheMaxAge,
		OrbitCacheFlushInterval: &cfg.OrbitCacheFlushInterval,
		MinNearPlane:            &cfg.MinNearPlane,
		MaxDepthRatio:           &cfg.MaxDepthRatio,
		MaxDepthPartitions:      &cfg.MaxDepthPartitions,
		DepthBias:               &cfg.DepthBias,
		StarBufferCapacity:      &cfg.StarBufferCapacity,
	}
}

func (ds *detailSection) apply(opts *renderer.DetailOptions) {
	setUint32(&opts.RingSystemSections, ds.RingSystemSections)
	setUint32(&opts.OrbitPathSamplePoints, ds.OrbitPathSamplePoints)
	setUint32(&opts.ShadowTextureSize, ds.ShadowTextureSize)
	setUint32(&opts.EclipseTextureSize, ds.EclipseTextureSize)
}

func detailSectionFrom(opts *renderer.DetailOptions) detailSection {
	return detailSection{
		RingSystemSections:    &opts.RingSystemSections,
		OrbitPathSamplePoints: &opts.OrbitPathSamplePoints,
		ShadowTextureSize:     &opts.ShadowTextureSize,
		EclipseTextureSize:    &opts.EclipseTextureSize,
	}
}

// Map the [colors] keys to the scheme fields.
func colorFields(cs *renderer.ColorScheme) map[string]*types.Color {
	return map[string]*types.Color{
		"background":          &cs.Background,
		"star_label":          &cs.StarLabel,
		"planet_label":        &cs.PlanetLabel,
		"dwarf_planet_label":  &cs.DwarfPlanetLabel,
		"moon_label":          &cs.MoonLabel,
		"asteroid_label":      &cs.AsteroidLabel,
		"comet_label":         &cs.CometLabel,
		"spacecraft_label":    &cs.SpacecraftLabel,
		"galaxy_label":        &cs.GalaxyLabel,
		"nebula_label":        &cs.NebulaLabel,
		"open_cluster_label":  &cs.OpenClusterLabel,
		"constellation_label": &cs.ConstellationLabel,
		"celestial_grid":      &cs.CelestialGrid,
		"star_orbit":          &cs.StarOrbit,
		"planet_orbit":        &cs.PlanetOrbit,
		"dwarf_planet_orbit":  &cs.DwarfPlanetOrbit,
		"moon_orbit":          &cs.MoonOrbit,
		"asteroid_orbit":      &cs.AsteroidOrbit,
		"comet_orbit":         &cs.CometOrbit,
		"spacecraft_orbit":    &cs.SpacecraftOrbit,
		"selected_orbit":      &cs.SelectedOrbit,
		"selection":           &cs.Selection,
		"body_axes":           &cs.BodyAxes,
		"frame_axes":          &cs.FrameAxes,
		"sun_direction":       &cs.SunDirection,
		"velocity_vector":     &cs.VelocityVector,
		"comet_tail":          &cs.CometTail,
	}
}

func applyColors(values map[string]string, cs *renderer.ColorScheme) error {
	fields := colorFields(cs)
	for key, hex := range values {
		field, ok := fields[key]
		if !ok {
			return errors.Errorf("config: unknown color '%s'", key)
		}
		c, err := types.ParseHexColor(hex)
		if err != nil {
			return errors.Wrapf(err, "config: [colors] %s", key)
		}
		*field = c
	}
	return nil
}

func colorsFrom(cs *renderer.ColorScheme) map[string]string {
	out := make(map[string]string)
	for key, field := range colorFields(cs) {
		out[key] = field.Hex()
	}
	return out
}

func setFloat32(dst *float32, src *float32) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setUint32(dst *uint32, src *uint32) {
	if src != nil {
		*dst = *src
	}
}
