package clubhead

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func ptr(v float64) *float64 { return &v }

func TestEstimate(t *testing.T) {
	Convey("Given a full measurement with no category", t, func() {
		m := Estimate(ptr(60.5), ptr(1.2), ptr(3.5), "")

		Convey("Then the default smash factor is assumed", func() {
			So(*m.ClubSpeed, ShouldEqual, 43.21)
			So(*m.Smash, ShouldEqual, 1.4)
		})

		Convey("And face and path follow the weighted blend", func() {
			So(*m.FaceAngle, ShouldEqual, 1.31)
			So(*m.PathAngle, ShouldEqual, 0.25)
			So(*m.FaceToPath, ShouldEqual, 1.06)
		})
	})

	Convey("Given a horizontal launch whose path lands on a rounding tie", t, func() {
		m := Estimate(ptr(60), ptr(1.25), ptr(0), "")

		Convey("Then ties round to even", func() {
			So(*m.FaceAngle, ShouldEqual, 1.0)
			So(*m.PathAngle, ShouldEqual, 0.62)
			So(*m.FaceToPath, ShouldEqual, 0.38)
		})
	})

	Convey("Given each known category", t, func() {
		cases := map[string]float64{
			"woods":     1.48,
			"mid_irons": 1.35,
			"wedges":    1.25,
			"putter":    DefaultSmashFactor,
		}
		for category, smash := range cases {
			m := Estimate(ptr(70), nil, nil, category)
			So(*m.Smash, ShouldEqual, smash)
			So(*m.ClubSpeed, ShouldAlmostEqual, 70/smash, 0.005)
		}
	})

	Convey("Given missing inputs", t, func() {
		Convey("When ball speed is absent", func() {
			m := Estimate(nil, ptr(1), ptr(1), "woods")

			Convey("Then speed fields are nil but face and path are still estimated", func() {
				So(m.ClubSpeed, ShouldBeNil)
				So(m.Smash, ShouldBeNil)
				So(m.FaceAngle, ShouldNotBeNil)
			})
		})

		Convey("When ball speed is zero", func() {
			m := Estimate(ptr(0), nil, nil, "")

			Convey("Then no speed estimate is fabricated", func() {
				So(m.ClubSpeed, ShouldBeNil)
				So(m.Smash, ShouldBeNil)
			})
		})

		Convey("When only one direction input is present", func() {
			m := Estimate(ptr(50), ptr(2), nil, "")

			Convey("Then face and path are nil", func() {
				So(m.FaceAngle, ShouldBeNil)
				So(m.PathAngle, ShouldBeNil)
				So(m.FaceToPath, ShouldBeNil)
			})
		})
	})
}
