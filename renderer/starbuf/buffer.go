// Package starbuf accumulates star primitives and submits them to a gfx
// context in as few draw calls as possible.
package starbuf

import (
	"fmt"

	"github.com/achilleasa/orrery/gfx"
	"github.com/achilleasa/orrery/types"
)

var quadTexCoords = [4]types.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// Counters shared by both buffer types.
type Stats struct {
	DrawCalls  int
	StarsDrawn int
}

// batch holds the vertex storage and flush logic common to both buffers.
type batch struct {
	ctx      gfx.Context
	capacity int
	vertices []gfx.StarVertex
	count    int
	mode     gfx.StarMode
	texture  string
	stats    Stats
}

func newBatch(capacity, verticesPerStar int) (batch, error) {
	if capacity <= 0 {
		return batch{}, fmt.Errorf("starbuf: invalid capacity %d", capacity)
	}
	return batch{
		capacity: capacity,
		vertices: make([]gfx.StarVertex, capacity*verticesPerStar),
	}, nil
}

func (b *batch) start(ctx gfx.Context, mode gfx.StarMode) {
	b.ctx = ctx
	b.mode = mode
	b.count = 0
}

// Capacity in stars.
func (b *batch) Capacity() int {
	return b.capacity
}

// Number of stars waiting to be submitted.
func (b *batch) Pending() int {
	return b.count
}

// Submit the accumulated stars. Without an active pass they are dropped.
func (b *batch) Render() {
	if b.ctx == nil {
		b.count = 0
		return
	}
	if b.count == 0 {
		return
	}
	b.ctx.DrawStars(gfx.StarBatch{
		Mode:     b.mode,
		Texture:  b.texture,
		Vertices: b.vertices[:b.count*b.mode.VerticesPerStar()],
		Count:    b.count,
	})
	b.stats.DrawCalls++
	b.stats.StarsDrawn += b.count
	b.count = 0
}

// Flush any remaining stars and end the pass.
func (b *batch) Finish() {
	b.Render()
	b.ctx = nil
}

// Set the sprite texture used by subsequent batches.
func (b *batch) SetTexture(name string) {
	if name != b.texture {
		b.Render()
		b.texture = name
	}
}

func (b *batch) Stats() Stats {
	return b.stats
}

func (b *batch) ResetStats() {
	b.stats = Stats{}
}

// A StarVertexBuffer renders stars as billboard quads.
type StarVertexBuffer struct {
	batch

	// Billboard basis shared by every quad of the current batch.
	right types.Vec3
	up    types.Vec3
}

// Create a quad buffer holding up to capacity stars per draw call.
func NewStarVertexBuffer(capacity int) (*StarVertexBuffer, error) {
	b, err := newBatch(capacity, 4)
	if err != nil {
		return nil, err
	}
	return &StarVertexBuffer{
		batch: b,
		right: types.XYZ(1, 0, 0),
		up:    types.XYZ(0, 1, 0),
	}, nil
}

// Begin an accumulation pass.
func (sb *StarVertexBuffer) Start(ctx gfx.Context) {
	sb.start(ctx, gfx.StarQuads)
}

// Compute the billboard basis for orientation q once for the whole batch.
func (sb *StarVertexBuffer) SetBillboardOrientation(q types.Quat) {
	sb.right = q.Rotate(types.XYZ(1, 0, 0))
	sb.up = q.Rotate(types.XYZ(0, 1, 0))
}

// Append a star. If the buffer is full the accumulated stars are submitted
// first. Stars added outside a Start/Finish pass are ignored.
func (sb *StarVertexBuffer) AddStar(pos types.Vec3, col types.Color, size float32) {
	if sb.ctx == nil {
		return
	}
	if sb.count == sb.capacity {
		sb.Render()
	}

	half := size * 0.5
	r := sb.right.Mul(half)
	u := sb.up.Mul(half)
	packed := col.Bytes()

	corners := [4]types.Vec3{
		pos.Sub(r).Sub(u),
		pos.Add(r).Sub(u),
		pos.Add(r).Add(u),
		pos.Sub(r).Add(u),
	}
	base := sb.count * 4
	for i, corner := range corners {
		sb.vertices[base+i] = gfx.StarVertex{
			Position: corner,
			TexCoord: quadTexCoords[i],
			Color:    packed,
			Size:     size,
		}
	}
	sb.count++
}

// A PointStarVertexBuffer renders stars as points or point sprites.
type PointStarVertexBuffer struct {
	batch
}

// Create a point buffer holding up to capacity stars per draw call.
func NewPointStarVertexBuffer(capacity int) (*PointStarVertexBuffer, error) {
	b, err := newBatch(capacity, 1)
	if err != nil {
		return nil, err
	}
	return &PointStarVertexBuffer{batch: b}, nil
}

// Begin a pass drawing fixed size points.
func (pb *PointStarVertexBuffer) StartPoints(ctx gfx.Context) {
	pb.start(ctx, gfx.StarPoints)
}

// Begin a pass drawing textured point sprites.
func (pb *PointStarVertexBuffer) StartSprites(ctx gfx.Context) {
	pb.start(ctx, gfx.StarSprites)
}

// Append a star. If the buffer is full the accumulated stars are submitted
// first. Stars added outside a StartPoints/StartSprites pass are ignored.
func (pb *PointStarVertexBuffer) AddStar(pos types.Vec3, col types.Color, size float32) {
	if pb.ctx == nil {
		return
	}
	if pb.count == pb.capacity {
		pb.Render()
	}
	pb.vertices[pb.count] = gfx.StarVertex{
		Position: pos,
		Color:    col.Bytes(),
		Size:     size,
	}
	pb.count++
}
