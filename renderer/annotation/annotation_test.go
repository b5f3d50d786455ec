package annotation

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/achilleasa/orrery/gfx"
	"github.com/achilleasa/orrery/types"
)

func TestLabelTruncation(t *testing.T) {
	type spec struct {
		text   string
		expLen int
	}
	specs := []spec{
		{"", 0},
		{"Sol", 3},
		{strings.Repeat("x", MaxLabelLength), MaxLabelLength},
		{strings.Repeat("x", MaxLabelLength+10), MaxLabelLength},
		// Multi-byte runes are counted as single characters
		{strings.Repeat("α", MaxLabelLength+1), MaxLabelLength},
	}

	q := NewQueue(len(specs))
	for index, s := range specs {
		if !q.Add(s.text, types.XYZ(0, 0, -1), Style{}, NoDepth) {
			t.Fatalf("[spec %d] expected label to be accepted", index)
		}
		a := q.At(index)
		if a.Len() != s.expLen || utf8.RuneCountInString(a.Text()) != s.expLen {
			t.Fatalf("[spec %d] expected %d runes; got %d", index, s.expLen, a.Len())
		}
		if !strings.HasPrefix(s.text, a.Text()) {
			t.Fatalf("[spec %d] expected stored text to be a prefix of the input", index)
		}
	}
}

func TestQueueCapacity(t *testing.T) {
	q := NewQueue(2)
	for i := 0; i < 2; i++ {
		if !q.Add("a", types.Vec3{}, Style{}, NoDepth) {
			t.Fatalf("expected label %d to be accepted", i)
		}
	}
	if q.Add("overflow", types.Vec3{}, Style{}, NoDepth) {
		t.Fatal("expected label to be dropped when the queue is full")
	}
	if q.Len() != 2 || q.Dropped() != 1 {
		t.Fatalf("expected 2 queued and 1 dropped; got %d and %d", q.Len(), q.Dropped())
	}

	q.Clear()
	if q.Len() != 0 || q.Dropped() != 0 || q.Cap() != 2 {
		t.Fatal("expected clear to empty the queue and keep its capacity")
	}
}

func TestSortedQueueOrdering(t *testing.T) {
	q := NewQueue(16)
	depths := []float32{5, 50, 0.5, 50, 500, 7}
	for i, d := range depths {
		q.Add(string(rune('a'+i)), types.XYZ(0, 0, -d), Style{}, NoDepth)
	}
	// The override takes precedence over the anchor depth
	q.Add("override", types.XYZ(0, 0, -1), Style{}, 1000)
	q.Sort()

	for i := 1; i < q.Len(); i++ {
		if q.At(i-1).SortDepth() < q.At(i).SortDepth() {
			t.Fatalf("expected depth at %d (%f) to be >= depth at %d (%f)", i-1, q.At(i-1).SortDepth(), i, q.At(i).SortDepth())
		}
	}
	if q.At(0).Text() != "override" {
		t.Fatalf("expected override to sort first; got %s", q.At(0).Text())
	}

	// Equal depths keep insertion order (b before d)
	if q.At(2).Text() != "b" || q.At(3).Text() != "d" {
		t.Fatalf("expected stable ordering for equal depths; got %s, %s", q.At(2).Text(), q.At(3).Text())
	}
}

func TestRenderRange(t *testing.T) {
	q := NewQueue(8)
	for _, d := range []float32{1000, 200, 150, 20, 2} {
		q.Add("label", types.XYZ(0, 0, -d), Style{Color: types.RGB(1, 1, 1)}, NoDepth)
	}
	q.Sort()

	rec := gfx.NewRecorder(0)
	next := RenderRange(rec, q, 0, 100)
	if next != 3 || rec.Count(gfx.OpDrawLabel) != 3 {
		t.Fatalf("expected 3 labels beyond depth 100; got next=%d and %d draws", next, rec.Count(gfx.OpDrawLabel))
	}
	next = RenderRange(rec, q, next, 10)
	if next != 4 {
		t.Fatalf("expected next index 4; got %d", next)
	}
	RenderFrom(rec, q, next)
	if rec.Count(gfx.OpDrawLabel) != 5 {
		t.Fatalf("expected every label to be drawn exactly once; got %d", rec.Count(gfx.OpDrawLabel))
	}

	rec = gfx.NewRecorder(0)
	Render(rec, q)
	if rec.Count(gfx.OpDrawLabel) != q.Len() {
		t.Fatalf("expected Render to draw the whole queue; got %d", rec.Count(gfx.OpDrawLabel))
	}
}
