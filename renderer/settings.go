package renderer

import (
	"github.com/achilleasa/orrery/renderer/depth"
	"github.com/achilleasa/orrery/scene"
	"github.com/achilleasa/orrery/types"
)

// Every setter below updates the configuration, marks the settings as
// changed and notifies the registered watchers.

// A copy of the current configuration.
func (r *Renderer) Config() *Config {
	return r.config.Clone()
}

func (r *Renderer) RenderFlags() RenderFlags {
	return r.config.RenderFlags
}

func (r *Renderer) SetRenderFlags(flags RenderFlags) {
	r.config.RenderFlags = flags
	r.notifyWatchers()
}

func (r *Renderer) LabelMode() LabelMode {
	return r.config.LabelMode
}

func (r *Renderer) SetLabelMode(mode LabelMode) {
	r.config.LabelMode = mode
	r.notifyWatchers()
}

func (r *Renderer) OrbitMask() scene.Class {
	return r.config.OrbitMask
}

func (r *Renderer) SetOrbitMask(mask scene.Class) {
	r.config.OrbitMask = mask
	r.notifyWatchers()
}

func (r *Renderer) SetAmbientLightLevel(level float32) {
	r.config.AmbientLightLevel = level
	r.notifyWatchers()
}

func (r *Renderer) SetMinimumOrbitSize(pixels float32) {
	r.config.MinimumOrbitSize = pixels
	r.notifyWatchers()
}

func (r *Renderer) SetMinimumFeatureSize(pixels float32) {
	r.config.MinimumFeatureSize = pixels
	r.notifyWatchers()
}

func (r *Renderer) SetDistanceLimit(km float64) {
	r.config.DistanceLimit = km
	r.notifyWatchers()
}

func (r *Renderer) FaintestAM45deg() float32 {
	return r.config.FaintestAutoMag45deg
}

func (r *Renderer) SetFaintestAM45deg(mag float32) {
	r.config.FaintestAutoMag45deg = mag
	r.notifyWatchers()
}

func (r *Renderer) StarStyle() StarStyle {
	return r.config.StarStyle
}

func (r *Renderer) SetStarStyle(style StarStyle) {
	r.config.StarStyle = style
	r.notifyWatchers()
}

func (r *Renderer) SetScreenDPI(dpi int) {
	r.config.ScreenDPI = dpi
	r.notifyWatchers()
}

func (r *Renderer) SetTextureResolution(res TextureResolution) {
	r.config.TextureResolution = res
	r.notifyWatchers()
}

func (r *Renderer) SetVideoSync(enabled bool) {
	r.config.VideoSync = enabled
	r.notifyWatchers()
}

func (r *Renderer) SetColorScheme(scheme ColorScheme) {
	r.config.Colors = scheme
	r.notifyWatchers()
}

// Replace the star color table. A nil table restores the default one.
func (r *Renderer) SetStarColorTable(table *types.ColorTemperatureTable) {
	if table == nil {
		table = types.DefaultStarColors()
	}
	r.config.StarColors = table
	r.notifyWatchers()
}

// Replace the visibility policy. A nil policy restores the default one.
func (r *Renderer) SetVisibilityPolicy(policy VisibilityPolicy) {
	if policy == nil {
		policy = DefaultVisibilityPolicy
	}
	r.config.VisibilityPolicy = policy
	r.notifyWatchers()
}

// Replace the whole configuration. Buffers, queues and the partitioner are
// reallocated if their sizing parameters changed. A nil VisibilityPolicy in
// cfg keeps the current one.
func (r *Renderer) SetConfig(cfg *Config) error {
	next := cfg.Clone()
	if next.VisibilityPolicy == nil {
		next.VisibilityPolicy = r.config.VisibilityPolicy
	}
	next.applyDefaults()

	prev := r.config
	r.config = next

	if next.StarBufferCapacity != prev.StarBufferCapacity && r.ctx != nil {
		if err := r.allocStarBuffers(); err != nil {
			r.config = prev
			return err
		}
	}
	if next.MaxAnnotations != prev.MaxAnnotations || next.MaxSortedAnnotations != prev.MaxSortedAnnotations {
		r.allocAnnotationQueues()
	}
	if next.MaxDepthRatio != prev.MaxDepthRatio || next.MaxDepthPartitions != prev.MaxDepthPartitions {
		r.partitioner = depth.NewPartitioner(next.MaxDepthRatio, next.MaxDepthPartitions)
	}

	r.notifyWatchers()
	return nil
}
