package orbitcache

import (
	"math"
	"testing"

	"github.com/achilleasa/orrery/scene"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingOrbit records the times it was evaluated at.
type countingOrbit struct {
	*scene.EllipticalOrbit
	evaluated []float64
	begin     float64
	end       float64
}

func newCountingOrbit(period float64) *countingOrbit {
	return &countingOrbit{
		EllipticalOrbit: scene.NewEllipticalOrbit(1e6, 0.2, 0.1, 0, 0, 0, 0, period),
		begin:           math.Inf(-1),
		end:             math.Inf(1),
	}
}

func (o *countingOrbit) PositionAt(t float64) mgl64.Vec3 {
	o.evaluated = append(o.evaluated, t)
	return o.EllipticalOrbit.PositionAt(t)
}

func (o *countingOrbit) ValidRange() (float64, float64) {
	return o.begin, o.end
}

func assertWellFormed(t *testing.T, co *CachedOrbit, sectionSize int) {
	t.Helper()
	for i := 1; i < len(co.Samples); i++ {
		require.Greater(t, co.Samples[i].T, co.Samples[i-1].T, "samples must be strictly increasing")
	}

	next := 0
	for index, sec := range co.Sections {
		require.Equal(t, next, sec.First, "section %d must start where the previous one ended", index)
		require.LessOrEqual(t, sec.Count, sectionSize)
		for _, s := range co.SectionSamples(sec) {
			require.LessOrEqual(t, scene.DistanceToSegment(s.Pos, sec.Bounds.A, sec.Bounds.B), sec.Bounds.Radius+1e-6)
		}
		next += sec.Count
	}
	require.Equal(t, len(co.Samples), next, "sections must cover every sample")
}

func TestOrbitWindowExtension(t *testing.T) {
	orbit := newCountingOrbit(365)
	cache := New(256)
	step := 365.0 / 256

	first := cache.Get(orbit, 0, 100)
	require.False(t, first.Empty())
	assert.Equal(t, 0.0, first.Begin)
	assert.GreaterOrEqual(t, first.End, 100.0)
	firstCount := len(first.Samples)
	assertWellFormed(t, first, DefaultSectionSize)

	orbit.evaluated = orbit.evaluated[:0]
	second := cache.Get(orbit, 50, 150)

	assert.Equal(t, 0.0, second.Begin)
	assert.GreaterOrEqual(t, second.End, 150.0)
	assert.Less(t, second.End, 150+step)
	assert.Equal(t, 1, cache.Len())

	// Only the part beyond the previous span should have been sampled
	require.NotEmpty(t, orbit.evaluated)
	for _, tm := range orbit.evaluated {
		assert.Greater(t, tm, 100.0)
		assert.LessOrEqual(t, tm, 150+step)
	}
	assert.Equal(t, len(second.Samples)-firstCount, len(orbit.evaluated))
	assertWellFormed(t, second, DefaultSectionSize)

	// Extending must produce the same samples as sampling from scratch
	fresh := New(256).Get(newCountingOrbit(365), 0, 150)
	require.Equal(t, len(fresh.Samples), len(second.Samples))
	for i := range fresh.Samples {
		assert.Equal(t, fresh.Samples[i], second.Samples[i])
	}
}

func TestOrbitCacheIdempotence(t *testing.T) {
	orbit := newCountingOrbit(100)
	cache := New(64)

	cache.Get(orbit, 10, 60)
	passes := cache.Stats().ResamplePasses
	computed := cache.Stats().SamplesComputed

	type spec struct {
		begin, end float64
	}
	specs := []spec{
		{10, 60},
		{20, 50},
		{30, 30},
	}
	for index, s := range specs {
		co := cache.Get(orbit, s.begin, s.end)
		if co.Begin > s.begin || co.End < s.end {
			t.Fatalf("[spec %d] expected span [%f, %f] to cover window [%f, %f]", index, co.Begin, co.End, s.begin, s.end)
		}
	}

	stats := cache.Stats()
	if stats.ResamplePasses != passes || stats.SamplesComputed != computed {
		t.Fatalf("expected no resampling for covered windows; got %d passes and %d samples", stats.ResamplePasses-passes, stats.SamplesComputed-computed)
	}
	if stats.Hits != uint64(len(specs)) {
		t.Fatalf("expected %d hits; got %d", len(specs), stats.Hits)
	}
}

func TestOrbitCacheBackwardExtensionAndRegeneration(t *testing.T) {
	orbit := newCountingOrbit(100)
	cache := New(100)

	cache.Get(orbit, 50, 60)
	co := cache.Get(orbit, 40, 55)
	assert.Equal(t, 40.0, co.Begin)
	assert.Equal(t, 60.0, co.End)
	assert.Len(t, co.Samples, 21)
	assertWellFormed(t, co, DefaultSectionSize)

	// A disjoint window replaces the cached span
	co = cache.Get(orbit, 500, 510)
	assert.Equal(t, 500.0, co.Begin)
	assert.Equal(t, 510.0, co.End)
	assert.Equal(t, uint64(1), cache.Stats().Regenerations)
}

func TestOrbitCacheDegenerateWindows(t *testing.T) {
	orbit := newCountingOrbit(100)
	orbit.begin, orbit.end = 0, 50
	cache := New(100)

	type spec struct {
		begin, end float64
		expEmpty   bool
		expBegin   float64
		expEnd     float64
	}
	specs := []spec{
		{math.NaN(), 10, true, 0, 0},
		{20, 10, true, 0, 0},
		{60, 70, true, 0, 0},
		{-10, 10, false, 0, 10},
		{40, 90, false, 40, 50},
	}

	for index, s := range specs {
		co := cache.Get(orbit, s.begin, s.end)
		if co.Empty() != s.expEmpty {
			t.Fatalf("[spec %d] expected empty to be %t; got %t", index, s.expEmpty, co.Empty())
		}
		if s.expEmpty {
			continue
		}
		if co.Begin != s.expBegin || co.End != s.expEnd {
			t.Fatalf("[spec %d] expected span [%f, %f]; got [%f, %f]", index, s.expBegin, s.expEnd, co.Begin, co.End)
		}
	}
}

func TestOrbitCacheMaxSamples(t *testing.T) {
	orbit := newCountingOrbit(10)
	cache := New(10)
	cache.SetMaxSamples(50)

	co := cache.Get(orbit, 0, 1000)
	assert.Len(t, co.Samples, 50)
	assert.Equal(t, 1000.0, co.End)
}

func TestOrbitCacheFlush(t *testing.T) {
	cache := New(32)
	a, b := newCountingOrbit(10), newCountingOrbit(20)

	cache.SetFrame(1)
	cache.Get(a, 0, 5)
	cache.Get(b, 0, 5)

	cache.SetFrame(50)
	cache.Get(b, 0, 5)

	if evicted := cache.Flush(50, 100); evicted != 0 {
		t.Fatalf("expected no evictions while entries are young; got %d", evicted)
	}
	if evicted := cache.Flush(60, 20); evicted != 1 {
		t.Fatalf("expected 1 eviction; got %d", evicted)
	}
	if cache.Len() != 1 {
		t.Fatalf("expected 1 remaining entry; got %d", cache.Len())
	}

	cache.SetResolution(64)
	if cache.Len() != 0 {
		t.Fatal("expected a resolution change to invalidate every entry")
	}
}

func TestSlidingWindowSpanStaysBounded(t *testing.T) {
	orbit := newCountingOrbit(365)
	cache := New(256)
	step := 365.0 / 256
	window := 365.0

	var co *CachedOrbit
	for now := window; now <= 20*window; now += 5 {
		co = cache.Get(orbit, now-window, now)
		require.LessOrEqual(t, co.Begin, now-window)
		require.GreaterOrEqual(t, co.End, now)
	}

	windowSamples := int(window/step) + 2
	assert.LessOrEqual(t, len(co.Samples), spanTrimFactor*windowSamples)
	assert.Greater(t, cache.Stats().TrimmedSamples, uint64(0))
	assertWellFormed(t, co, DefaultSectionSize)

	// Trimming keeps samples on the grid and never resamples the window.
	for _, s := range co.Samples {
		k := s.T / step
		assert.InDelta(t, math.Round(k), k, 1e-6)
	}
	covered := cache.Stats().SamplesComputed
	cache.Get(orbit, 20*window-window, 20*window)
	assert.Equal(t, covered, cache.Stats().SamplesComputed)
}
