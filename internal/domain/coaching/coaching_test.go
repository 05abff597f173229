package coaching_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/fairway/internal/domain/coaching"
	"github.com/smartystreets/goconvey/convey"
)

var tips = []coaching.Tip{
	{Shape: "Slice", Handedness: "both", Priority: 1, CoachingCues: []string{"generic"}},
	{Shape: "Slice", Handedness: "RH", Priority: 5, Diagnostics: []string{"open face"}, CoachingCues: []string{"a", "b", "c", "d"}},
	{Shape: "Slice", Handedness: "rh", Priority: 5, CoachingCues: []string{"second"}},
	{Shape: "Slice", Handedness: "LH", Priority: 9, CoachingCues: []string{"lefty"}},
	{Shape: "Hook", Priority: 2, QuickChecks: []string{"grip"}},
}

func TestSelect(t *testing.T) {
	convey.Convey("Given a right-handed slice", t, func() {
		g := coaching.Select(tips, "Slice", "RH")

		convey.Convey("Then the highest-priority RH tip wins and the first of a tie is kept", func() {
			convey.So(g.Diagnostics, convey.ShouldResemble, []string{"open face"})
			convey.So(g.CoachingCues, convey.ShouldResemble, []string{"a", "b", "c", "d"})
		})

		convey.Convey("And the short cues are the first three", func() {
			convey.So(g.CoachingCuesShort, convey.ShouldResemble, []string{"a", "b", "c"})
		})

		convey.Convey("And missing lists are empty, not nil", func() {
			convey.So(g.QuickChecks, convey.ShouldNotBeNil)
			convey.So(g.QuickChecks, convey.ShouldBeEmpty)
		})
	})

	convey.Convey("Given a left-handed slice", t, func() {
		g := coaching.Select(tips, "Slice", "lh")

		convey.Convey("Then handedness matches case-insensitively", func() {
			convey.So(g.CoachingCues, convey.ShouldResemble, []string{"lefty"})
		})
	})

	convey.Convey("Given a tip with no handedness", t, func() {
		g := coaching.Select(tips, "Hook", "LH")

		convey.Convey("Then it applies to both hands", func() {
			convey.So(g.QuickChecks, convey.ShouldResemble, []string{"grip"})
			convey.So(g.CoachingCuesShort, convey.ShouldBeEmpty)
		})
	})

	convey.Convey("Given a shape with no tips", t, func() {
		g := coaching.Select(tips, "PushDraw", "RH")

		convey.Convey("Then four empty lists encode as arrays", func() {
			b, err := json.Marshal(g)
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(b), convey.ShouldEqual,
				`{"diagnostics":[],"coaching_cues":[],"quick_checks":[],"practice_drills":[],"coaching_cues_short":[]}`)
		})
	})

	convey.Convey("Given no tips at all", t, func() {
		convey.So(coaching.Select(nil, "Slice", "RH"), convey.ShouldResemble, coaching.Empty())
	})
}
