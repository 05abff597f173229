package vector

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestVec3(t *testing.T) {
	Convey("Given two vectors", t, func() {
		a := New(1, 2, 3)
		b := New(4, -5, 6)

		Convey("Add and Sub are component-wise", func() {
			So(a.Add(b), ShouldResemble, New(5, -3, 9))
			So(b.Sub(a), ShouldResemble, New(3, -7, 3))
		})

		Convey("Scale multiplies every component", func() {
			So(a.Scale(-2), ShouldResemble, New(-2, -4, -6))
		})

		Convey("Dot is the scalar product", func() {
			So(a.Dot(b), ShouldEqual, 4-10+18)
		})

		Convey("Magnitude is the Euclidean norm", func() {
			So(New(3, 4, 0).Magnitude(), ShouldAlmostEqual, 5.0, 1e-12)
			So(New(3, 4, 12).HorizontalMagnitude(), ShouldAlmostEqual, 5.0, 1e-12)
		})
	})

	Convey("Given a vector to normalize", t, func() {
		Convey("A non-zero vector becomes unit length", func() {
			u := New(0, 3, 4).Normalize()
			So(u.Magnitude(), ShouldAlmostEqual, 1.0, 1e-12)
			So(u.Y, ShouldAlmostEqual, 0.6, 1e-12)
		})

		Convey("The zero vector stays zero instead of NaN", func() {
			u := Vec3{}.Normalize()
			So(u, ShouldResemble, Vec3{})
			So(math.IsNaN(u.X), ShouldBeFalse)
		})
	})
}
