// Package annotation implements the label queues composited with the 3D scene.
package annotation

import (
	"sort"

	"github.com/achilleasa/orrery/gfx"
	"github.com/achilleasa/orrery/types"
)

const (
	// Maximum number of runes stored per label; longer text is truncated.
	MaxLabelLength = 32

	// Depth value meaning "use the anchor depth".
	NoDepth float32 = -1
)

// Style controls how an annotation is drawn.
type Style struct {
	Color  types.Color
	Marker *gfx.Marker
	Align  gfx.Alignment
}

// An Annotation is a label anchored to an eye-space position. The text is
// stored in a fixed buffer so that queues can be refilled every frame without
// allocating.
type Annotation struct {
	text   [MaxLabelLength]rune
	length int

	Style
	Position types.Vec3

	// Explicit depth used for sorting; negative values select the anchor's
	// depth instead.
	Depth float32
}

// Text returns the stored (possibly truncated) label text.
func (a *Annotation) Text() string {
	return string(a.text[:a.length])
}

// Number of runes stored.
func (a *Annotation) Len() int {
	return a.length
}

// Store text, truncating it to MaxLabelLength runes.
func (a *Annotation) SetText(text string) {
	a.length = 0
	for _, r := range text {
		if a.length == MaxLabelLength {
			break
		}
		a.text[a.length] = r
		a.length++
	}
}

// The depth used for sorting: the explicit depth if set, otherwise the
// positive view-axis depth of the anchor.
func (a *Annotation) SortDepth() float32 {
	if a.Depth >= 0 {
		return a.Depth
	}
	return -a.Position[2]
}

// A Queue is a fixed capacity list of annotations.
type Queue struct {
	items   []Annotation
	dropped int
}

// Create a queue that accepts up to capacity annotations per frame.
func NewQueue(capacity int) *Queue {
	if capacity < 0 {
		capacity = 0
	}
	return &Queue{items: make([]Annotation, 0, capacity)}
}

// Add an annotation. When the queue is full the annotation is dropped and
// false is returned.
func (q *Queue) Add(text string, pos types.Vec3, style Style, depth float32) bool {
	if len(q.items) == cap(q.items) {
		q.dropped++
		return false
	}

	q.items = q.items[:len(q.items)+1]
	a := &q.items[len(q.items)-1]
	a.SetText(text)
	a.Style = style
	a.Position = pos
	a.Depth = depth
	return true
}

// Remove all annotations and reset the dropped counter.
func (q *Queue) Clear() {
	q.items = q.items[:0]
	q.dropped = 0
}

func (q *Queue) Len() int {
	return len(q.items)
}

func (q *Queue) Cap() int {
	return cap(q.items)
}

// Number of annotations rejected since the last Clear.
func (q *Queue) Dropped() int {
	return q.dropped
}

// Get the annotation at index i.
func (q *Queue) At(i int) *Annotation {
	return &q.items[i]
}

// Sort the queue farthest first. Annotations with equal depth keep their
// insertion order.
func (q *Queue) Sort() {
	sort.SliceStable(q.items, func(i, j int) bool {
		return q.items[i].SortDepth() > q.items[j].SortDepth()
	})
}

// Render every annotation in queue order.
func Render(ctx gfx.Context, q *Queue) {
	for i := range q.items {
		draw(ctx, &q.items[i])
	}
}

// Render the annotations of a sorted queue starting at index start whose
// depth is at least nearZ. Because the queue is sorted farthest first and
// partitions are visited far to near, this renders every label behind the
// near plane of the current partition that an earlier partition did not
// consume. The index of the first unrendered annotation is returned.
func RenderRange(ctx gfx.Context, q *Queue, start int, nearZ float32) int {
	i := start
	for ; i < len(q.items); i++ {
		if q.items[i].SortDepth() < nearZ {
			break
		}
		draw(ctx, &q.items[i])
	}
	return i
}

// Render the annotations from index start to the end of the queue.
func RenderFrom(ctx gfx.Context, q *Queue, start int) {
	for i := start; i < len(q.items); i++ {
		draw(ctx, &q.items[i])
	}
}

func draw(ctx gfx.Context, a *Annotation) {
	ctx.DrawLabel(gfx.Label{
		Text:     a.Text(),
		Position: a.Position,
		Color:    a.Color,
		Marker:   a.Marker,
		Align:    a.Align,
	})
}
