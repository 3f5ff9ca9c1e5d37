package math

import "gonum.org/v1/gonum/spatial/r3"

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min Vec3
	Max Vec3
}

// BoundsOf returns the bounding box of points. An empty slice yields the zero box.
func BoundsOf(points []Vec3) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b.Extend(p)
	}
	return b
}

// Extend grows the box to contain p.
func (b *Bounds) Extend(p Vec3) {
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// Size returns the extent along each axis.
func (b Bounds) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b Bounds) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Diagonal returns the length of the box diagonal, computed in double precision.
func (b Bounds) Diagonal() float64 {
	return r3.Norm(r3.Sub(b.Max.R3(), b.Min.R3()))
}
