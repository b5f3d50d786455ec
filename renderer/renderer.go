package renderer

import (
	"math"
	"sort"
	"time"

	"github.com/achilleasa/orrery/gfx"
	"github.com/achilleasa/orrery/log"
	"github.com/achilleasa/orrery/renderer/annotation"
	"github.com/achilleasa/orrery/renderer/depth"
	"github.com/achilleasa/orrery/renderer/eclipse"
	"github.com/achilleasa/orrery/renderer/orbitcache"
	"github.com/achilleasa/orrery/renderer/starbuf"
	"github.com/achilleasa/orrery/scene"
	"github.com/achilleasa/orrery/types"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

var logger = log.New("renderer")

// The Renderer owns all per-frame state: the render lists, the light pool,
// the orbit cache, the star buffers and the annotation queues. A Renderer is
// not safe for concurrent use; all calls must come from the thread that owns
// the drawing context.
type Renderer struct {
	ctx    gfx.Context
	detail DetailOptions
	config *Config
	view   gfx.View

	watchers        []Watcher
	settingsChanged bool

	frameCount uint64
	selection  scene.NodeID

	renderList []RenderListEntry
	orbitList  []OrbitPathListEntry
	deepSky    []deepSkyEntry
	lights     LightPool

	orbitCache  *orbitcache.Cache
	partitioner *depth.Partitioner
	partitions  []depth.Partition

	starQuads  *starbuf.StarVertexBuffer
	starPoints *starbuf.PointStarVertexBuffer

	foregroundAnnotations *annotation.Queue
	backgroundAnnotations *annotation.Queue
	sortedAnnotations     *annotation.Queue

	stats FrameStats

	// Scratch storage reused between frames.
	extents      []depth.Extent
	assignments  []int
	orbitPoints  []types.Vec3
	clipPoints   []types.Vec3
	shadows      []eclipse.Shadow
	frameShadows int
}

// Create a renderer drawing into ctx with the given viewport. A nil cfg
// selects DefaultConfig.
func New(ctx gfx.Context, width, height int, detail DetailOptions, cfg *Config) (*Renderer, error) {
	if ctx == nil {
		return nil, ErrNoContext
	}
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidViewport
	}
	if err := detail.validate(); err != nil {
		return nil, err
	}

	if cfg == nil {
		def := DefaultConfig()
		cfg = &def
	}
	config := cfg.Clone()
	config.applyDefaults()

	r := &Renderer{
		ctx:    ctx,
		detail: detail,
		config: config,
		view: gfx.View{
			Width:      width,
			Height:     height,
			FOV:        float32(math.Pi / 4),
			Background: config.Colors.Background,
		},
		orbitCache:  orbitcache.New(int(detail.OrbitPathSamplePoints)),
		partitioner: depth.NewPartitioner(config.MaxDepthRatio, config.MaxDepthPartitions),
	}

	if err := r.allocStarBuffers(); err != nil {
		return nil, err
	}
	r.allocAnnotationQueues()

	logger.Noticef("initialized %dx%d renderer (star style: %s, orbit samples: %d)", width, height, config.StarStyle, detail.OrbitPathSamplePoints)
	return r, nil
}

func (r *Renderer) allocStarBuffers() error {
	quads, err := starbuf.NewStarVertexBuffer(r.config.StarBufferCapacity)
	if err != nil {
		return errors.Wrap(err, "renderer: could not allocate star quad buffer")
	}
	points, err := starbuf.NewPointStarVertexBuffer(r.config.StarBufferCapacity)
	if err != nil {
		return errors.Wrap(err, "renderer: could not allocate star point buffer")
	}
	r.starQuads, r.starPoints = quads, points
	return nil
}

func (r *Renderer) allocAnnotationQueues() {
	r.foregroundAnnotations = annotation.NewQueue(r.config.MaxAnnotations)
	r.backgroundAnnotations = annotation.NewQueue(r.config.MaxAnnotations)
	r.sortedAnnotations = annotation.NewQueue(r.config.MaxSortedAnnotations)
}

// Change the viewport dimensions.
func (r *Renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrInvalidViewport
	}
	r.view.Width, r.view.Height = width, height
	return nil
}

// The current viewport.
func (r *Renderer) View() gfx.View {
	return r.view
}

// Release the drawing context and the buffers. Render fails with
// ErrNoContext after Close.
func (r *Renderer) Close() {
	if r.ctx == nil {
		return
	}
	r.orbitCache.InvalidateAll()
	r.lights.Recycle()
	r.renderList, r.orbitList = nil, nil
	r.starQuads, r.starPoints = nil, nil
	r.ctx = nil
	logger.Notice("shut down renderer")
}

// Stats for the last rendered frame.
func (r *Renderer) Stats() FrameStats {
	return r.stats
}

// Number of frames rendered so far.
func (r *Renderer) FrameCount() uint64 {
	return r.frameCount
}

// Select a node; its orbit is always drawn and a selection cursor marks it.
// A zero id clears the selection.
func (r *Renderer) SetSelection(id scene.NodeID) {
	r.selection = id
}

func (r *Renderer) Selection() scene.NodeID {
	return r.selection
}

// Render one frame of snap as seen by obs. faintestMag is the faintest
// apparent magnitude drawn when ShowAutoMag is not set.
func (r *Renderer) Render(obs *scene.Observer, snap *scene.Snapshot, faintestMag float32) error {
	if r.ctx == nil {
		return ErrNoContext
	}
	start := time.Now()

	r.frameCount++
	r.renderList = r.renderList[:0]
	r.orbitList = r.orbitList[:0]
	r.frameShadows = 0
	r.lights.Recycle()
	r.sortedAnnotations.Clear()
	r.orbitCache.SetFrame(r.frameCount)
	r.starQuads.ResetStats()
	r.starPoints.ResetStats()

	r.view.FOV = float32(obs.FOV)
	r.view.Background = r.config.Colors.Background

	f := &frameState{
		obs:       obs,
		snap:      snap,
		frustum:   obs.Frustum(float64(r.view.Aspect()), float64(r.config.MinNearPlane)),
		pixelSize: r.calcPixelSize(obs.FOV),
		faintest:  float64(faintestMag),
	}
	if r.config.RenderFlags&ShowAutoMag != 0 {
		f.faintest = r.autoMag(obs.FOV)
	}
	if obs.Reference != 0 {
		f.reference = snap.Universe().Node(obs.Reference)
	}

	r.buildRenderLists(f)
	r.addDeepSky(f)
	r.addSelectionCursor(f)
	r.addMarkers(f)
	r.addSkyLabels(f)

	sort.SliceStable(r.renderList, func(i, j int) bool {
		return r.renderList[i].CenterZ > r.renderList[j].CenterZ
	})
	sort.SliceStable(r.orbitList, func(i, j int) bool {
		return r.orbitList[i].CenterZ > r.orbitList[j].CenterZ
	})
	r.sortedAnnotations.Sort()
	r.buildPartitions()

	r.ctx.BeginFrame(r.view)
	annotation.Render(r.ctx, r.backgroundAnnotations)
	deepSky := r.renderDeepSky(f)
	r.renderPartitions(f)
	annotation.Render(r.ctx, r.foregroundAnnotations)
	r.ctx.EndFrame()

	r.collectStats(f, deepSky)
	r.stats.RenderTime = time.Since(start)

	r.foregroundAnnotations.Clear()
	r.backgroundAnnotations.Clear()
	if r.frameCount%r.config.OrbitCacheFlushInterval == 0 {
		if evicted := r.orbitCache.Flush(r.frameCount, r.config.OrbitCacheMaxAge); evicted > 0 {
			logger.Debugf("evicted %d stale orbit cache entries", evicted)
		}
	}
	return nil
}

// Angular size of one pixel at unit distance.
func (r *Renderer) calcPixelSize(fov float64) float64 {
	return scene.PixelSize(fov, r.view.Height)
}

// The faintest magnitude shown with auto magnitude enabled. Narrower fields
// of view reveal fainter objects.
func (r *Renderer) autoMag(fov float64) float64 {
	fovDeg := mgl64.RadToDeg(fov)
	return float64(r.config.FaintestAutoMag45deg) * math.Sqrt(2*45/(45+fovDeg))
}

// Split the depth range covered by the render and orbit lists into
// partitions and assign every entry to the partition containing its near
// face.
func (r *Renderer) buildPartitions() {
	r.extents = r.extents[:0]
	for i := range r.renderList {
		e := &r.renderList[i]
		r.extents = append(r.extents, depth.Extent{NearZ: e.NearZ, FarZ: e.FarZ})
	}
	for i := range r.orbitList {
		o := &r.orbitList[i]
		r.extents = append(r.extents, depth.Extent{NearZ: o.NearZ, FarZ: o.FarZ})
	}

	r.partitions = r.partitioner.Partition(r.extents)
	r.assignments = depth.Assign(r.partitions, r.extents[:len(r.renderList)])
}

// Draw the partitions far to near. Each partition sets its own depth range,
// then draws the slices of the orbit paths inside it, its render list
// entries and finally the sorted labels lying behind its near plane.
func (r *Renderer) renderPartitions(f *frameState) {
	nextLabel := 0
	for p := len(r.partitions) - 1; p >= 0; p-- {
		part := r.partitions[p]
		near, far := part.DepthRange(r.config.DepthBias)
		r.ctx.SetDepthRange(near, far)

		for i := range r.orbitList {
			o := &r.orbitList[i]
			if o.NearZ <= part.FarZ && o.FarZ >= part.NearZ {
				r.renderOrbit(f, o, part.NearZ, part.FarZ)
			}
		}

		r.beginStars(f)
		for i := range r.renderList {
			if r.assignments[i] == p {
				r.renderEntry(f, &r.renderList[i])
			}
		}
		r.finishStars()

		nextLabel = annotation.RenderRange(r.ctx, r.sortedAnnotations, nextLabel, part.NearZ)
	}
	annotation.RenderFrom(r.ctx, r.sortedAnnotations, nextLabel)
}

func (r *Renderer) collectStats(f *frameState, deepSky int) {
	quads, points := r.starQuads.Stats(), r.starPoints.Stats()
	cacheStats := r.orbitCache.Stats()

	r.stats = FrameStats{
		Frame:               r.frameCount,
		FaintestMag:         float32(f.faintest),
		RenderListEntries:   len(r.renderList),
		OrbitPaths:          len(r.orbitList),
		DeepSkyObjects:      deepSky,
		LightLists:          r.lights.Borrowed(),
		Partitions:          len(r.partitions),
		StarBatches:         quads.DrawCalls + points.DrawCalls,
		StarsDrawn:          quads.StarsDrawn + points.StarsDrawn,
		ForegroundLabels:    r.foregroundAnnotations.Len(),
		BackgroundLabels:    r.backgroundAnnotations.Len(),
		SortedLabels:        r.sortedAnnotations.Len(),
		DroppedLabels:       r.foregroundAnnotations.Dropped() + r.backgroundAnnotations.Dropped() + r.sortedAnnotations.Dropped(),
		OrbitCacheEntries:   r.orbitCache.Len(),
		OrbitCacheHits:      cacheStats.Hits,
		OrbitSamples:        cacheStats.SamplesComputed,
		OrbitCacheEvictions: int(cacheStats.Evictions),
		Shadows:             r.frameShadows,
	}
}

// The render list built for the last frame, sorted far to near.
func (r *Renderer) RenderList() []RenderListEntry {
	return r.renderList
}

// The orbit paths drawn in the last frame.
func (r *Renderer) OrbitPathList() []OrbitPathListEntry {
	return r.orbitList
}

// The depth partitions used in the last frame, near to far.
func (r *Renderer) Partitions() []depth.Partition {
	return r.partitions
}
