package series_test

import (
	"testing"

	"github.com/heatboard/heatboard/internal/domain/model"
	"github.com/heatboard/heatboard/internal/domain/series"
	. "github.com/smartystreets/goconvey/convey"
)

const hourNs = int64(3_600_000_000_000)

func TestBin(t *testing.T) {
	Convey("Given elapsed times", t, func() {
		Convey("When converting to elapsed-hour bins", func() {
			So(series.Bin(0), ShouldEqual, 0)
			So(series.Bin(59_000_000_000), ShouldEqual, 0)   // under one minute
			So(series.Bin(60_000_000_000), ShouldEqual, 1)   // one minute
			So(series.Bin(hourNs), ShouldEqual, 1)           // exactly one hour
			So(series.Bin(hourNs+60_000_000_000), ShouldEqual, 2)
			So(series.Bin(25*hourNs), ShouldEqual, 25)
		})
	})
}

func TestBuild(t *testing.T) {
	Convey("Given a submission set spanning several bins", t, func() {
		set := model.SubmissionSet{
			"alice": {
				10_000: 1 * hourNs,
				30_000: 3 * hourNs,
			},
			"bob": {
				20_000: 2 * hourNs,
			},
		}

		result := series.Build(set)

		Convey("Then the bins are the sorted union of observed hours", func() {
			So(result.Bins, ShouldResemble, []int{1, 2, 3})
		})

		Convey("And the legend orders users by max raw score descending", func() {
			So(result.Users, ShouldResemble, []string{"alice", "bob"})
		})

		Convey("And score columns fill forward monotonically", func() {
			// alice: 100 at bin 1, carried through bin 2, 300 at bin 3.
			So(result.Scores[0][0], ShouldEqual, 100.0)
			So(result.Scores[1][0], ShouldEqual, 100.0)
			So(result.Scores[2][0], ShouldEqual, 300.0)
			// bob: nothing at bin 1, 200 from bin 2 onward.
			So(result.Scores[0][1], ShouldEqual, 0.0)
			So(result.Scores[1][1], ShouldEqual, 200.0)
			So(result.Scores[2][1], ShouldEqual, 200.0)

			for col := range result.Users {
				for row := 1; row < len(result.Bins); row++ {
					So(result.Scores[row][col], ShouldBeGreaterThanOrEqualTo, result.Scores[row-1][col])
				}
			}
		})

		Convey("And ranks track each row independently", func() {
			So(result.Ranks[0], ShouldResemble, []int{1, 2}) // alice 100, bob 0
			So(result.Ranks[1], ShouldResemble, []int{2, 1}) // bob overtakes
			So(result.Ranks[2], ShouldResemble, []int{1, 2}) // alice retakes
		})
	})

	Convey("Given multiple submissions in the same bin", t, func() {
		set := model.SubmissionSet{
			"alice": {
				10_000: 30 * 60_000_000_000, // 30 min -> bin 1
				12_000: 50 * 60_000_000_000, // 50 min -> bin 1
			},
		}

		result := series.Build(set)

		Convey("Then the bin keeps the maximum", func() {
			So(result.Bins, ShouldResemble, []int{1})
			So(result.Scores[0][0], ShouldEqual, 120.0)
		})
	})

	Convey("Given tied scores within a row", t, func() {
		set := model.SubmissionSet{
			"a": {10_000: 1 * hourNs},
			"b": {10_000: 1 * hourNs},
			"c": {10_000: 1 * hourNs},
			"d": {9_000: 1 * hourNs},
		}

		result := series.Build(set)

		Convey("Then tied users share a rank and the next rank skips", func() {
			So(result.Ranks[0], ShouldResemble, []int{1, 1, 1, 4})
		})
	})

	Convey("Given a user with no submissions", t, func() {
		set := model.SubmissionSet{
			"alice": {10_000: 1 * hourNs},
			"idle":  {},
			"lazy":  {},
		}

		result := series.Build(set)

		Convey("Then they contribute an all-zero column but still hold a rank", func() {
			So(result.Users, ShouldResemble, []string{"alice", "idle", "lazy"})
			So(result.Scores[0][1], ShouldEqual, 0.0)
			So(result.Scores[0][2], ShouldEqual, 0.0)
			So(result.Ranks[0], ShouldResemble, []int{1, 2, 2})
		})
	})

	Convey("Given an empty submission set", t, func() {
		result := series.Build(model.SubmissionSet{})

		Convey("Then everything is empty and nothing panics", func() {
			So(result.Bins, ShouldBeEmpty)
			So(result.Users, ShouldBeEmpty)
			So(result.Scores, ShouldBeEmpty)
			So(result.Distribution(), ShouldBeEmpty)
		})
	})
}

func TestDistribution(t *testing.T) {
	Convey("Given a built series", t, func() {
		set := model.SubmissionSet{
			"alice": {30_000: 1 * hourNs},
			"bob":   {10_000: 2 * hourNs},
			"carol": {20_000: 1 * hourNs},
		}

		result := series.Build(set)

		Convey("When taking the final-bin distribution", func() {
			bars := result.Distribution()

			Convey("Then scores are descending with 1-based rank positions", func() {
				So(len(bars), ShouldEqual, 3)
				So(bars[0], ShouldResemble, series.DistributionBar{Rank: 1, Score: 300.0})
				So(bars[1], ShouldResemble, series.DistributionBar{Rank: 2, Score: 200.0})
				So(bars[2], ShouldResemble, series.DistributionBar{Rank: 3, Score: 100.0})
			})
		})
	})
}
