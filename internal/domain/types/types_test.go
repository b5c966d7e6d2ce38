package types_test

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mgrady/gridiron/internal/domain/types"
)

func TestContestKeyValidate(t *testing.T) {
	Convey("Given contest keys", t, func() {
		valid := types.ContestKey{Guild: "g1", League: "l1", Season: 2025, Week: 3}

		Convey("a fully populated key validates", func() {
			So(valid.Validate(), ShouldBeNil)
		})

		Convey("an empty guild is rejected", func() {
			k := valid
			k.Guild = "  "
			So(errors.Is(k.Validate(), types.ErrInvalidID), ShouldBeTrue)
		})

		Convey("an empty league is rejected", func() {
			k := valid
			k.League = ""
			So(errors.Is(k.Validate(), types.ErrInvalidID), ShouldBeTrue)
		})

		Convey("an out-of-range week is rejected", func() {
			k := valid
			k.Week = 0
			So(errors.Is(k.Validate(), types.ErrOutOfRange), ShouldBeTrue)
			k.Week = 24
			So(errors.Is(k.Validate(), types.ErrOutOfRange), ShouldBeTrue)
		})

		Convey("an out-of-range season is rejected", func() {
			k := valid
			k.Season = 1800
			So(errors.Is(k.Validate(), types.ErrOutOfRange), ShouldBeTrue)
		})

		Convey("String renders all components", func() {
			So(valid.String(), ShouldEqual, "g1/l1/2025/3")
		})
	})
}

func TestWinPct(t *testing.T) {
	Convey("Given standings rows", t, func() {
		Convey("ties count as half a win", func() {
			r := types.TeamRecord{TeamID: "t1", Wins: 5, Losses: 4, Ties: 1}
			So(r.WinPct(), ShouldAlmostEqual, 0.55)
		})

		Convey("a team with no games has zero win percentage", func() {
			So(types.TeamRecord{TeamID: "t2"}.WinPct(), ShouldEqual, 0)
		})
	})
}

func TestValidateMember(t *testing.T) {
	Convey("Member ids must be non-empty", t, func() {
		So(types.ValidateMember("m1"), ShouldBeNil)
		So(errors.Is(types.ValidateMember(" "), types.ErrInvalidID), ShouldBeTrue)
	})
}
