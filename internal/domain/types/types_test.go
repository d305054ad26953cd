package types_test

import (
	"encoding/json"
	"testing"
	"time"

	types "github.com/okian/surfelo/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEntry(t *testing.T) {
	Convey("Given an Entry struct", t, func() {
		Convey("When creating an entry with zero values", func() {
			entry := types.Entry{}

			Convey("Then it should have default values", func() {
				So(entry.Rank, ShouldEqual, 0)
				So(entry.PlayerID, ShouldEqual, "")
				So(entry.Rating, ShouldEqual, 0.0)
				So(entry.LastMatchDate.IsZero(), ShouldBeTrue)
			})
		})

		Convey("When encoding to JSON", func() {
			entry := types.Entry{
				Rank:          1,
				PlayerID:      "104925",
				Name:          "Novak Djokovic",
				Rating:        2104.5,
				Matches:       1200,
				LastMatchDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			}
			data, err := json.Marshal(entry)

			Convey("Then it should use snake_case keys and ISO dates", func() {
				So(err, ShouldBeNil)
				So(string(data), ShouldContainSubstring, `"player_id":"104925"`)
				So(string(data), ShouldContainSubstring, `"last_match_date":"2024-01-15T00:00:00Z"`)
			})
		})

		Convey("When embedding it in a Specialist", func() {
			s := types.Specialist{
				Entry:     types.Entry{PlayerID: "104745", Rating: 2200},
				Surface:   "Clay",
				Advantage: 250,
			}
			data, err := json.Marshal(s)

			Convey("Then the entry fields are flattened", func() {
				So(err, ShouldBeNil)
				So(string(data), ShouldContainSubstring, `"player_id":"104745"`)
				So(string(data), ShouldContainSubstring, `"surface":"Clay"`)
			})
		})
	})
}
