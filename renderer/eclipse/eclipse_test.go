package eclipse

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	au         = 1.496e8
	moonOrbit  = 384400
	sunRadius  = 696000
	earthRad   = 6371
	moonRadius = 1737
)

func TestEclipsePredicate(t *testing.T) {
	sun := DirectionalLight{Radius: sunRadius}
	earth := Body{ID: 1, Position: mgl64.Vec3{au, 0, 0}, Radius: earthRad}

	type spec struct {
		descr    string
		receiver Body
		caster   Body
		exp      bool
	}
	specs := []spec{
		{
			"solar eclipse",
			earth,
			Body{ID: 2, Position: mgl64.Vec3{au - moonOrbit, 0, 0}, Radius: moonRadius},
			true,
		},
		{
			"lunar eclipse",
			Body{ID: 2, Position: mgl64.Vec3{au + moonOrbit, 0, 0}, Radius: moonRadius},
			earth,
			true,
		},
		{
			"grazing penumbra",
			earth,
			Body{ID: 2, Position: mgl64.Vec3{au - moonOrbit, earthRad + 2000, 0}, Radius: moonRadius},
			true,
		},
		{
			"caster off axis",
			earth,
			Body{ID: 2, Position: mgl64.Vec3{au - 600000, 300000, 0}, Radius: moonRadius},
			false,
		},
		{
			"receiver upstream of caster",
			earth,
			Body{ID: 2, Position: mgl64.Vec3{au + moonOrbit, 0, 0}, Radius: moonRadius},
			false,
		},
		{
			"caster too small",
			earth,
			Body{ID: 2, Position: mgl64.Vec3{au - moonOrbit, 0, 0}, Radius: earthRad / 200},
			false,
		},
		{
			"self shadowing",
			earth,
			earth,
			false,
		},
	}

	for index, s := range specs {
		shadows, ok := Test(s.receiver, s.caster, sun, 42, nil)
		if ok != s.exp {
			t.Fatalf("[spec %d: %s] expected %t; got %t", index, s.descr, s.exp, ok)
		}
		if ok != (len(shadows) == 1) {
			t.Fatalf("[spec %d: %s] expected a shadow descriptor only on success; got %d", index, s.descr, len(shadows))
		}
	}
}

func TestShadowGeometry(t *testing.T) {
	sun := DirectionalLight{Radius: sunRadius}
	earth := Body{ID: 1, Position: mgl64.Vec3{au, 0, 0}, Radius: earthRad}
	moon := Body{ID: 2, Position: mgl64.Vec3{au - moonOrbit, 0, 0}, Radius: moonRadius}

	existing := []Shadow{{Caster: 99}}
	shadows, ok := Test(earth, moon, sun, 42, existing)
	if !ok || len(shadows) != 2 {
		t.Fatalf("expected shadow to be appended to existing list; got %d entries", len(shadows))
	}

	s := shadows[1]
	if s.Caster != moon.ID || s.Time != 42 {
		t.Fatalf("unexpected caster/time %d/%f", s.Caster, s.Time)
	}
	if !s.Direction.ApproxEqualThreshold(mgl64.Vec3{1, 0, 0}, 1e-9) {
		t.Fatalf("expected shadow axis along +X; got %v", s.Direction)
	}
	if !s.Origin.ApproxEqualThreshold(mgl64.Vec3{-moonOrbit, 0, 0}, 1e-6) {
		t.Fatalf("expected origin relative to receiver; got %v", s.Origin)
	}
	if s.PenumbraRadius <= moonRadius || s.UmbraRadius >= moonRadius {
		t.Fatalf("expected penumbra wider and umbra narrower than the caster; got %f / %f", s.PenumbraRadius, s.UmbraRadius)
	}
	// The moon almost exactly covers the sun as seen from earth
	if s.MaxDepth < 0.9 || s.MaxDepth > 1 {
		t.Fatalf("expected near total max depth; got %f", s.MaxDepth)
	}
}
