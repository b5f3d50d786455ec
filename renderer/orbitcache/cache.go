// Package orbitcache memoizes sampled orbit trajectories.
//
// Samples are always taken on the grid k*step where step is the orbit period
// divided by the sampling resolution. Because the grid does not depend on
// the requested window, extending a cached span only needs to sample the
// missing grid points and the result is identical to sampling the whole
// window from scratch.
package orbitcache

import (
	"math"

	"github.com/achilleasa/orrery/log"
	"github.com/achilleasa/orrery/scene"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// Default number of samples per orbital period.
	DefaultResolution = 256

	// Default number of samples bounded by one section capsule.
	DefaultSectionSize = 32

	// Default upper bound for the samples kept per orbit.
	DefaultMaxSamples = 1 << 16

	// Sampling step (days) for orbits without a period.
	DefaultAperiodicStep = 1.0

	// Once a span grows past this many window lengths, samples more than
	// one window length away from the requested window are dropped.
	spanTrimFactor = 4
)

var logger = log.New("orbit cache")

// One trajectory sample.
type Sample struct {
	T   float64
	Pos mgl64.Vec3
}

// A Section is a contiguous run of samples enclosed by a capsule.
type Section struct {
	First  int
	Count  int
	Bounds scene.Capsule
}

// A CachedOrbit holds the samples of one orbit definition over the span
// [Begin, End]. Samples are strictly increasing in T and Sections partition
// them contiguously without overlap.
type CachedOrbit struct {
	Key      scene.OrbitKey
	Samples  []Sample
	Sections []Section
	Begin    float64
	End      float64

	// Frame count when this entry was last returned by Get.
	LastUsed uint64

	step       float64
	kBegin     int64
	kEnd       int64
	resolution int
}

// Empty reports whether the entry holds no samples.
func (co *CachedOrbit) Empty() bool {
	return len(co.Samples) == 0
}

// Step returns the sampling interval in days.
func (co *CachedOrbit) Step() float64 {
	return co.step
}

// The samples of a section plus the first sample of the next one so that
// consecutive sections join without gaps when drawn as line strips.
func (co *CachedOrbit) SectionSamples(s Section) []Sample {
	end := s.First + s.Count + 1
	if end > len(co.Samples) {
		end = len(co.Samples)
	}
	return co.Samples[s.First:end]
}

// Stats counts cache activity.
type Stats struct {
	Hits            uint64
	ResamplePasses  uint64
	SamplesComputed uint64
	Regenerations   uint64
	Evictions       uint64
	TrimmedSamples  uint64
}

// The Cache owns every CachedOrbit it creates. It must only be used from the
// render loop.
type Cache struct {
	entries map[scene.OrbitKey]*CachedOrbit

	resolution    int
	sectionSize   int
	maxSamples    int
	aperiodicStep float64

	frame uint64
	stats Stats
}

// Create a cache sampling each orbit period with the given resolution. A
// non-positive resolution selects DefaultResolution.
func New(resolution int) *Cache {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	return &Cache{
		entries:       make(map[scene.OrbitKey]*CachedOrbit),
		resolution:    resolution,
		sectionSize:   DefaultSectionSize,
		maxSamples:    DefaultMaxSamples,
		aperiodicStep: DefaultAperiodicStep,
	}
}

// Set the number of samples per section. Existing entries are dropped.
func (c *Cache) SetSectionSize(size int) {
	if size < 1 || size == c.sectionSize {
		return
	}
	c.sectionSize = size
	c.InvalidateAll()
}

// Set the upper bound for samples kept per orbit.
func (c *Cache) SetMaxSamples(max int) {
	if max < 2 || max == c.maxSamples {
		return
	}
	c.maxSamples = max
	c.InvalidateAll()
}

// Set the sampling resolution. Changing it drops every cached entry.
func (c *Cache) SetResolution(resolution int) {
	if resolution <= 0 || resolution == c.resolution {
		return
	}
	c.resolution = resolution
	c.InvalidateAll()
}

func (c *Cache) Resolution() int {
	return c.resolution
}

// Set the frame count used to stamp entries returned by Get.
func (c *Cache) SetFrame(frame uint64) {
	c.frame = frame
}

func (c *Cache) Len() int {
	return len(c.entries)
}

func (c *Cache) Stats() Stats {
	return c.stats
}

// Drop every cached entry.
func (c *Cache) InvalidateAll() {
	if len(c.entries) != 0 {
		logger.Debugf("invalidating %d entries", len(c.entries))
	}
	c.entries = make(map[scene.OrbitKey]*CachedOrbit)
}

// Remove every entry not used since currentFrame - maxAge. Returns the number
// of evicted entries.
func (c *Cache) Flush(currentFrame, maxAge uint64) int {
	var threshold uint64
	if currentFrame > maxAge {
		threshold = currentFrame - maxAge
	}

	evicted := 0
	for key, entry := range c.entries {
		if entry.LastUsed < threshold {
			delete(c.entries, key)
			evicted++
		}
	}
	c.stats.Evictions += uint64(evicted)
	if evicted != 0 {
		logger.Debugf("flush at frame %d evicted %d entries; %d remaining", currentFrame, evicted, len(c.entries))
	}
	return evicted
}

// Get the cached trajectory of orbit covering [begin, end]. The window is
// clamped to the orbit's valid range; empty or invalid windows yield an
// entry without samples. Get never fails.
func (c *Cache) Get(orbit scene.Orbit, begin, end float64) *CachedOrbit {
	key := orbit.Key()
	step := c.stepFor(orbit)

	kBegin, kEnd, ok := c.gridWindow(orbit, step, begin, end)
	if !ok {
		return &CachedOrbit{Key: key, LastUsed: c.frame, step: step, resolution: c.resolution}
	}

	entry, found := c.entries[key]
	switch {
	case found && entry.step == step && kBegin >= entry.kBegin && kEnd <= entry.kEnd:
		c.stats.Hits++
	case found && entry.step == step && kBegin <= entry.kEnd+1 && kEnd >= entry.kBegin-1 &&
		max64(kEnd, entry.kEnd)-min64(kBegin, entry.kBegin) < int64(c.maxSamples):
		c.extend(entry, orbit, kBegin, kEnd)
	default:
		if found {
			c.stats.Regenerations++
		}
		entry = &CachedOrbit{
			Key:        key,
			step:       step,
			resolution: c.resolution,
			kBegin:     kBegin,
			kEnd:       kBegin - 1,
		}
		c.extend(entry, orbit, kBegin, kEnd)
		c.entries[key] = entry
	}

	entry.LastUsed = c.frame
	return entry
}

func (c *Cache) stepFor(orbit scene.Orbit) float64 {
	if period := orbit.Period(); period > 0 {
		return period / float64(c.resolution)
	}
	return c.aperiodicStep
}

// Map a time window to the inclusive range of grid indices covering it.
func (c *Cache) gridWindow(orbit scene.Orbit, step, begin, end float64) (int64, int64, bool) {
	validBegin, validEnd := orbit.ValidRange()
	begin = math.Max(begin, validBegin)
	end = math.Min(end, validEnd)
	if math.IsNaN(begin) || math.IsNaN(end) || begin > end || math.IsInf(end, 0) {
		return 0, 0, false
	}

	kEnd := int64(math.Ceil(end / step))
	if math.IsInf(begin, -1) {
		return kEnd - int64(c.maxSamples) + 1, kEnd, true
	}

	kBegin := int64(math.Floor(begin / step))
	if kEnd-kBegin+1 > int64(c.maxSamples) {
		kBegin = kEnd - int64(c.maxSamples) + 1
	}

	// Grid points outside the valid range cannot be evaluated.
	if t := float64(kBegin) * step; t < validBegin {
		kBegin++
	}
	if t := float64(kEnd) * step; t > validEnd {
		kEnd--
	}
	if kBegin > kEnd {
		return 0, 0, false
	}
	return kBegin, kEnd, true
}

// Sample the grid points in [kBegin, kEnd] not yet covered by entry and
// rebuild its sections.
func (c *Cache) extend(entry *CachedOrbit, orbit scene.Orbit, kBegin, kEnd int64) {
	var head, tail []Sample
	if kBegin < entry.kBegin {
		head = c.sample(orbit, entry.step, kBegin, entry.kBegin-1)
		entry.kBegin = kBegin
	}
	if kEnd > entry.kEnd {
		from := entry.kEnd + 1
		if len(entry.Samples) == 0 {
			from = entry.kBegin
		}
		tail = c.sample(orbit, entry.step, from, kEnd)
		entry.kEnd = kEnd
	}
	c.stats.ResamplePasses++

	if len(head) != 0 {
		merged := make([]Sample, 0, len(head)+len(entry.Samples)+len(tail))
		merged = append(merged, head...)
		entry.Samples = append(merged, entry.Samples...)
	}
	entry.Samples = append(entry.Samples, tail...)
	c.trim(entry, kBegin, kEnd)

	entry.Begin = float64(entry.kBegin) * entry.step
	entry.End = float64(entry.kEnd) * entry.step
	entry.Sections = buildSections(entry.Samples, c.sectionSize, orbit.MaxCurvature())
}

// Keep a sliding window from growing the span without bound. Sample i of an
// entry always sits at grid index kBegin+i.
func (c *Cache) trim(entry *CachedOrbit, kBegin, kEnd int64) {
	window := kEnd - kBegin + 1
	if entry.kEnd-entry.kBegin+1 <= spanTrimFactor*window {
		return
	}

	keepFrom := max64(kBegin-window, entry.kBegin)
	keepTo := min64(kEnd+window, entry.kEnd)
	first, last := int(keepFrom-entry.kBegin), int(keepTo-entry.kBegin)

	c.stats.TrimmedSamples += uint64(len(entry.Samples) - (last - first + 1))
	entry.Samples = append([]Sample(nil), entry.Samples[first:last+1]...)
	entry.kBegin, entry.kEnd = keepFrom, keepTo
}

func (c *Cache) sample(orbit scene.Orbit, step float64, from, to int64) []Sample {
	if to < from {
		return nil
	}
	out := make([]Sample, 0, to-from+1)
	for k := from; k <= to; k++ {
		t := float64(k) * step
		out = append(out, Sample{T: t, Pos: orbit.PositionAt(t)})
	}
	c.stats.SamplesComputed += uint64(len(out))
	return out
}

// Split samples into runs of sectionSize. Each capsule encloses the run and
// the first sample of the next run, padded by the maximum distance between
// the curve and its chords: curvature * chord^2 / 8.
func buildSections(samples []Sample, sectionSize int, maxCurvature float64) []Section {
	if len(samples) == 0 {
		return nil
	}

	sections := make([]Section, 0, len(samples)/sectionSize+1)
	points := make([]mgl64.Vec3, 0, sectionSize+1)
	for first := 0; first < len(samples); first += sectionSize {
		count := sectionSize
		if first+count > len(samples) {
			count = len(samples) - first
		}
		last := first + count
		if last >= len(samples) {
			last = len(samples) - 1
		}

		points = points[:0]
		maxChord := 0.0
		for i := first; i <= last; i++ {
			points = append(points, samples[i].Pos)
			if i > first {
				maxChord = math.Max(maxChord, samples[i].Pos.Sub(samples[i-1].Pos).Len())
			}
		}

		sections = append(sections, Section{
			First:  first,
			Count:  count,
			Bounds: scene.BoundCapsule(points, maxCurvature*maxChord*maxChord/8),
		})
	}
	return sections
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
