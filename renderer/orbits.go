package renderer

import (
	"github.com/achilleasa/orrery/gfx"
	"github.com/achilleasa/orrery/scene"
	"github.com/achilleasa/orrery/types"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl64"
)

// The sampling window for an orbit path at time t. Full orbits cover the
// period leading up to t; partial trajectories only the trailing half.
func (r *Renderer) orbitWindow(orbit scene.Orbit, t float64) (begin, end float64) {
	period := orbit.Period()
	begin, end = t-period, t
	if r.config.RenderFlags&ShowPartialTrajectories != 0 {
		begin = t - period*0.5
	}

	validBegin, validEnd := orbit.ValidRange()
	if begin < validBegin {
		begin = validBegin
	}
	if end > validEnd {
		end = validEnd
	}
	return begin, end
}

// Draw the slice of an orbit path whose depth lies in [near, far] using the
// cached samples. Sections whose capsule lies outside the frustum are skipped
// and break the line strip.
func (r *Renderer) renderOrbit(f *frameState, entry *OrbitPathListEntry, near, far float32) {
	n := entry.Node
	begin, end := r.orbitWindow(n.Orbit, f.snap.Time)
	if !(end > begin) {
		return
	}

	co := r.orbitCache.Get(n.Orbit, begin, end)
	if co.Empty() {
		return
	}

	col := r.config.Colors.OrbitColor(n.Class)
	if n.ID == r.selection {
		col = r.config.Colors.SelectedOrbit
	}
	col = col.WithAlpha(col.A * entry.Opacity)

	center := f.snap.OrbitCenter(n)
	toEye := func(p mgl64.Vec3) mgl64.Vec3 {
		return f.obs.ToEye(center.Add(p))
	}

	// The cached span may be wider than the window; samples outside it
	// are skipped.
	from, to := begin-co.Step(), end+co.Step()

	r.orbitPoints = r.orbitPoints[:0]
	for _, section := range co.Sections {
		samples := co.SectionSamples(section)
		if samples[len(samples)-1].T < from || samples[0].T > to {
			continue
		}

		bounds := section.Bounds.Transform(toEye)
		if f.frustum.TestCapsule(bounds) == scene.Outside {
			r.flushOrbitStrip(col, near, far)
			continue
		}

		// Consecutive visible sections share their boundary sample.
		if len(r.orbitPoints) != 0 {
			samples = samples[1:]
		}
		for _, s := range samples {
			if s.T < from || s.T > to {
				continue
			}
			r.orbitPoints = append(r.orbitPoints, types.Vec3From64(toEye(s.Pos)))
		}
	}

	// Close the path at the body's current position.
	if len(r.orbitPoints) != 0 {
		r.orbitPoints = append(r.orbitPoints, types.Vec3From64(f.obs.ToEye(f.snap.Position(n))))
	}
	r.flushOrbitStrip(col, near, far)
}

// Draw the collected points clipped to the depth slab [near, far]. Each run
// of the polyline inside the slab becomes its own line strip.
func (r *Renderer) flushOrbitStrip(col types.Color, near, far float32) {
	pts := r.orbitPoints
	r.clipPoints = r.clipPoints[:0]
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		t0, t1, ok := clipToSlab(-a[2], -b[2], near, far)
		if !ok {
			r.flushClipped(col)
			continue
		}
		if len(r.clipPoints) == 0 || t0 > 0 {
			r.flushClipped(col)
			r.clipPoints = append(r.clipPoints, clampDepth(lerpVec(a, b, t0), near, far))
		}
		r.clipPoints = append(r.clipPoints, clampDepth(lerpVec(a, b, t1), near, far))
		if t1 < 1 {
			r.flushClipped(col)
		}
	}
	r.flushClipped(col)
	r.orbitPoints = r.orbitPoints[:0]
}

func (r *Renderer) flushClipped(col types.Color) {
	if len(r.clipPoints) > 1 {
		r.ctx.DrawLines(gfx.LineStrip, r.clipPoints, col)
	}
	r.clipPoints = r.clipPoints[:0]
}

// Parametric range of the segment from depth da to db that lies in
// [near, far].
func clipToSlab(da, db, near, far float32) (t0, t1 float32, ok bool) {
	t0, t1 = 0, 1
	dd := db - da
	if dd == 0 {
		return t0, t1, da >= near && da <= far
	}
	tn, tf := (near-da)/dd, (far-da)/dd
	if tn > tf {
		tn, tf = tf, tn
	}
	if tn > t0 {
		t0 = tn
	}
	if tf < t1 {
		t1 = tf
	}
	return t0, t1, t0 < t1
}

// Interpolated points can land just outside the slab due to rounding.
func clampDepth(p types.Vec3, near, far float32) types.Vec3 {
	p[2] = -math32.Min(math32.Max(-p[2], near), far)
	return p
}

func lerpVec(a, b types.Vec3, t float32) types.Vec3 {
	switch t {
	case 0:
		return a
	case 1:
		return b
	}
	return a.Add(b.Sub(a).Mul(t))
}

// Change the number of samples per orbital period. Cached orbits are
// invalidated.
func (r *Renderer) SetOrbitPathSamplePoints(samples uint32) error {
	if samples < 3 {
		return ErrInvalidDetailOptions
	}
	r.detail.OrbitPathSamplePoints = samples
	r.orbitCache.SetResolution(int(samples))
	r.notifyWatchers()
	return nil
}
