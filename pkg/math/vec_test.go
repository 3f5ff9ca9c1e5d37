package math

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestVec3Arithmetic(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, -1, 0.5}

	if got, want := a.Add(b), (Vec3{5, 1, 3.5}); got != want {
		t.Errorf("Vec3.Add() = %v, want %v", got, want)
	}
	if got, want := a.Sub(b), (Vec3{-3, 3, 2.5}); got != want {
		t.Errorf("Vec3.Sub() = %v, want %v", got, want)
	}
	if got, want := a.Scale(2), (Vec3{2, 4, 6}); got != want {
		t.Errorf("Vec3.Scale() = %v, want %v", got, want)
	}
}

func TestVec3MinMax(t *testing.T) {
	a := Vec3{1, -2, 3}
	b := Vec3{0, 5, 3}

	if got, want := a.Min(b), (Vec3{0, -2, 3}); got != want {
		t.Errorf("Vec3.Min() = %v, want %v", got, want)
	}
	if got, want := a.Max(b), (Vec3{1, 5, 3}); got != want {
		t.Errorf("Vec3.Max() = %v, want %v", got, want)
	}
}

func TestVec3NearlyEqual(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Vec3
		threshold float64
		want      bool
	}{
		{"identical", Vec3{1, 2, 3}, Vec3{1, 2, 3}, 1e-7, true},
		{"within threshold", Vec3{0, 0, 0}, Vec3{5e-8, -5e-8, 0}, 1e-7, true},
		{"one axis out", Vec3{0, 0, 0}, Vec3{0, 0, 2e-7}, 1e-7, false},
		// The test is per axis, not Euclidean.
		{"diagonal inside box", Vec3{0, 0, 0}, Vec3{0.9, 0.9, 0.9}, 1, true},
		{"on the boundary", Vec3{0, 0, 0}, Vec3{1, 0, 0}, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.NearlyEqual(tt.b, tt.threshold); got != tt.want {
				t.Errorf("NearlyEqual() = %v, want %v", got, tt.want)
			}
			if got := tt.b.NearlyEqual(tt.a, tt.threshold); got != tt.want {
				t.Errorf("NearlyEqual() not symmetric: got %v", got)
			}
		})
	}
}

func TestVec3R3(t *testing.T) {
	v := Vec3{0.5, -1.25, 8}
	p := v.R3()
	if p != (r3.Vec{X: 0.5, Y: -1.25, Z: 8}) {
		t.Errorf("R3() = %v", p)
	}
	if back := FromR3(p); back != v {
		t.Errorf("FromR3(R3()) = %v, want %v", back, v)
	}
}

func TestBoundsOf(t *testing.T) {
	points := []Vec3{{1, 2, 3}, {-1, 5, 0}, {0, 0, 7}}
	b := BoundsOf(points)

	if b.Min != (Vec3{-1, 0, 0}) {
		t.Errorf("Min = %v, want (-1,0,0)", b.Min)
	}
	if b.Max != (Vec3{1, 5, 7}) {
		t.Errorf("Max = %v, want (1,5,7)", b.Max)
	}
	if got, want := b.Size(), (Vec3{2, 5, 7}); got != want {
		t.Errorf("Size() = %v, want %v", got, want)
	}
	if got, want := b.Center(), (Vec3{0, 2.5, 3.5}); got != want {
		t.Errorf("Center() = %v, want %v", got, want)
	}

	want := math.Sqrt(4 + 25 + 49)
	if got := b.Diagonal(); math.Abs(got-want) > 1e-12 {
		t.Errorf("Diagonal() = %v, want %v", got, want)
	}
}

func TestBoundsOfEmpty(t *testing.T) {
	b := BoundsOf(nil)
	if b != (Bounds{}) {
		t.Errorf("BoundsOf(nil) = %v, want zero box", b)
	}
	if b.Diagonal() != 0 {
		t.Errorf("Diagonal() = %v, want 0", b.Diagonal())
	}
}

func TestBoundsExtend(t *testing.T) {
	b := BoundsOf([]Vec3{{0, 0, 0}})
	b.Extend(Vec3{1, -1, 2})
	b.Extend(Vec3{0.5, 0.5, 0.5})

	if b.Min != (Vec3{0, -1, 0}) || b.Max != (Vec3{1, 0.5, 2}) {
		t.Errorf("Extend() = %v", b)
	}
}
