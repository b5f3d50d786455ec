package renderer

import (
	"github.com/achilleasa/orrery/scene"
	"github.com/achilleasa/orrery/types"
	"github.com/go-gl/mathgl/mgl64"
)

// A LightSource illuminating the bodies of a star system.
type LightSource struct {
	Node *scene.Node

	// Universal position (km).
	Position mgl64.Vec3
	Color    types.Color

	// Luminosity in solar units.
	Luminosity float64

	// Radius in km.
	Radius float64
}

// A LightList holds the lights of one local light environment.
type LightList struct {
	Lights []LightSource
}

// Reset the list keeping its storage.
func (l *LightList) Reset() {
	l.Lights = l.Lights[:0]
}

// Len returns the number of lights.
func (l *LightList) Len() int {
	return len(l.Lights)
}

// The LightPool owns every LightList. Lists are borrowed with Get for one
// frame and either returned individually with Put or all at once with
// Recycle.
type LightPool struct {
	free     []*LightList
	borrowed []*LightList
}

// Check out an empty list.
func (p *LightPool) Get() *LightList {
	var l *LightList
	if n := len(p.free); n > 0 {
		l = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		l = &LightList{Lights: make([]LightSource, 0, 4)}
	}
	l.Reset()
	p.borrowed = append(p.borrowed, l)
	return l
}

// Return a list to the pool. Lists not obtained from this pool are ignored.
func (p *LightPool) Put(l *LightList) {
	for i, cur := range p.borrowed {
		if cur == l {
			p.borrowed = append(p.borrowed[:i], p.borrowed[i+1:]...)
			l.Reset()
			p.free = append(p.free, l)
			return
		}
	}
}

// Return every borrowed list to the pool.
func (p *LightPool) Recycle() {
	for _, l := range p.borrowed {
		l.Reset()
		p.free = append(p.free, l)
	}
	p.borrowed = p.borrowed[:0]
}

// Number of lists currently checked out.
func (p *LightPool) Borrowed() int {
	return len(p.borrowed)
}

// Number of idle lists.
func (p *LightPool) Free() int {
	return len(p.free)
}

// Fill l with every star in the subtree rooted at n.
func (r *Renderer) collectLights(n *scene.Node, snap *scene.Snapshot, l *LightList) {
	if n.Kind == scene.KindStar {
		l.Lights = append(l.Lights, LightSource{
			Node:       n,
			Position:   snap.Position(n),
			Color:      r.config.StarColors.Lookup(float32(n.Star.Temperature)),
			Luminosity: n.Star.Luminosity(),
			Radius:     n.Radius,
		})
	}
	for _, child := range n.Children {
		r.collectLights(child, snap, l)
	}
}
