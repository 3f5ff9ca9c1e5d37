// Package math provides the point and bounds types shared by the mesh packages.
package math

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a 3D point or vector stored in single precision.
type Vec3 struct {
	X, Y, Z float32
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Min returns the component-wise minimum.
func (v Vec3) Min(other Vec3) Vec3 {
	return Vec3{min(v.X, other.X), min(v.Y, other.Y), min(v.Z, other.Z)}
}

// Max returns the component-wise maximum.
func (v Vec3) Max(other Vec3) Vec3 {
	return Vec3{max(v.X, other.X), max(v.Y, other.Y), max(v.Z, other.Z)}
}

// NearlyEqual reports whether every axis differs by less than threshold.
// Differences are taken in double precision so they are exact.
func (v Vec3) NearlyEqual(other Vec3, threshold float64) bool {
	return math.Abs(float64(v.X)-float64(other.X)) < threshold &&
		math.Abs(float64(v.Y)-float64(other.Y)) < threshold &&
		math.Abs(float64(v.Z)-float64(other.Z)) < threshold
}

// R3 widens v to a double precision vector.
func (v Vec3) R3() r3.Vec {
	return r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

// FromR3 narrows a double precision vector.
func FromR3(p r3.Vec) Vec3 {
	return Vec3{float32(p.X), float32(p.Y), float32(p.Z)}
}
