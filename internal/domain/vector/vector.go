// Package vector provides the small 3D vector type used by the flight model.
//
// Axes follow the range convention: X points at the target, Y to the right
// of the target line and Z up.
package vector

import "gonum.org/v1/gonum/spatial/r3"

// Vec3 is an immutable 3D vector.
type Vec3 struct{ X, Y, Z float64 }

// New returns the vector (x, y, z).
func New(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) vec() r3.Vec { return r3.Vec{X: v.X, Y: v.Y, Z: v.Z} }

func fromVec(p r3.Vec) Vec3 { return Vec3{X: p.X, Y: p.Y, Z: p.Z} }

// Add returns the component-wise sum v + o.
func (v Vec3) Add(o Vec3) Vec3 { return fromVec(r3.Add(v.vec(), o.vec())) }

// Sub returns the component-wise difference v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return fromVec(r3.Sub(v.vec(), o.vec())) }

// Scale returns v with every component multiplied by k.
func (v Vec3) Scale(k float64) Vec3 { return fromVec(r3.Scale(k, v.vec())) }

// Dot returns the scalar product of v and o.
func (v Vec3) Dot(o Vec3) float64 { return r3.Dot(v.vec(), o.vec()) }

// Magnitude returns the Euclidean norm.
func (v Vec3) Magnitude() float64 { return r3.Norm(v.vec()) }

// Normalize returns the unit vector colinear with v. The zero vector
// normalizes to itself rather than NaN.
func (v Vec3) Normalize() Vec3 {
	if v.Magnitude() == 0 {
		return Vec3{}
	}
	return fromVec(r3.Unit(v.vec()))
}

// HorizontalMagnitude is the norm of the X/Y projection.
func (v Vec3) HorizontalMagnitude() float64 {
	return r3.Norm(r3.Vec{X: v.X, Y: v.Y})
}
