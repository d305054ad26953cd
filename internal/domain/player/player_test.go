package player_test

import (
	"testing"
	"time"

	"github.com/okian/surfelo/internal/domain/model"
	"github.com/okian/surfelo/internal/domain/player"
	. "github.com/smartystreets/goconvey/convey"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRoster(t *testing.T) {
	Convey("Given a default roster", t, func() {
		r := player.NewRoster()

		Convey("Then it tracks the four default surfaces at 1300", func() {
			So(r.Surfaces(), ShouldResemble, []model.Surface{"Hard", "Clay", "Grass", "Carpet"})
			So(r.StartingRating(), ShouldEqual, 1300.0)
			So(r.Len(), ShouldEqual, 0)
		})

		Convey("Then surface matching is exact", func() {
			So(r.ValidSurface("Clay"), ShouldBeTrue)
			So(r.ValidSurface("clay"), ShouldBeFalse)
			So(r.ValidSurface("Concrete"), ShouldBeFalse)
			So(r.ValidSurface(""), ShouldBeFalse)
		})

		Convey("When a player is created", func() {
			s := r.GetOrCreate("104925")

			Convey("Then every surface is seeded densely", func() {
				So(s.ID, ShouldEqual, "104925")
				So(s.Name, ShouldEqual, model.UnknownPlayerName)
				for _, surface := range r.Surfaces() {
					So(s.Ratings[surface], ShouldEqual, 1300.0)
					So(s.PeakRating[surface], ShouldEqual, 1300.0)
					So(s.MatchesPlayed, ShouldContainKey, surface)
					So(s.PeakRatingDate, ShouldContainKey, surface)
				}
				So(s.TotalMatches, ShouldEqual, 0)
				So(s.HasPlayed(), ShouldBeFalse)
			})

			Convey("Then GetOrCreate returns the same state", func() {
				So(r.GetOrCreate("104925"), ShouldPointTo, s)
				got, ok := r.Get("104925")
				So(ok, ShouldBeTrue)
				So(got, ShouldPointTo, s)
				So(r.Len(), ShouldEqual, 1)
			})
		})

		Convey("When players are added out of order", func() {
			for _, id := range []string{"300", "100", "200"} {
				r.GetOrCreate(id)
			}

			Convey("Then IDs and Each are sorted", func() {
				So(r.IDs(), ShouldResemble, []string{"100", "200", "300"})
				var seen []string
				r.Each(func(s *player.State) { seen = append(seen, s.ID) })
				So(seen, ShouldResemble, []string{"100", "200", "300"})
			})
		})

		Convey("When the roster is cloned", func() {
			s := r.GetOrCreate("1")
			s.RecordMatch("Hard", 1350, day(2020, 1, 6))
			c := r.Clone()

			Convey("Then the clone is equal but independent", func() {
				So(c, ShouldResemble, r)
				cs, _ := c.Get("1")
				cs.Ratings["Hard"] = 1
				cs.Rename("Someone")
				So(s.Ratings["Hard"], ShouldEqual, 1350.0)
				So(s.Name, ShouldEqual, model.UnknownPlayerName)
			})
		})
	})

	Convey("Given custom roster options", t, func() {
		r := player.NewRoster(
			player.WithSurfaces("Clay", "Clay", "", "Grass"),
			player.WithStartingRating(1500),
		)

		Convey("Then duplicates and blanks are dropped", func() {
			So(r.Surfaces(), ShouldResemble, []model.Surface{"Clay", "Grass"})
			So(r.GetOrCreate("x").Ratings["Clay"], ShouldEqual, 1500.0)
			So(r.ValidSurface("Hard"), ShouldBeFalse)
		})
	})

	Convey("Given an empty surface list", t, func() {
		r := player.NewRoster(player.WithSurfaces())

		Convey("Then defaults are kept", func() {
			So(len(r.Surfaces()), ShouldEqual, 4)
		})
	})
}

func TestState(t *testing.T) {
	Convey("Given a fresh player", t, func() {
		s := player.NewRoster().GetOrCreate("104925")

		Convey("When names arrive", func() {
			s.Rename("Rafael Nadal")
			So(s.Name, ShouldEqual, "Rafael Nadal")

			Convey("Then the last write wins and blanks become Unknown", func() {
				s.Rename("  R. Nadal ")
				So(s.Name, ShouldEqual, "R. Nadal")
				s.Rename("")
				So(s.Name, ShouldEqual, model.UnknownPlayerName)
			})
		})

		Convey("When a match is recorded", func() {
			d := day(2023, 5, 29)
			s.RecordMatch("Clay", 1365, d)

			Convey("Then counts, date and peak move", func() {
				So(s.Ratings["Clay"], ShouldEqual, 1365.0)
				So(s.MatchesPlayed["Clay"], ShouldEqual, 1)
				So(s.TotalMatches, ShouldEqual, 1)
				So(s.LastMatchDate, ShouldEqual, d)
				So(s.PeakRating["Clay"], ShouldEqual, 1365.0)
				So(s.PeakRatingDate["Clay"], ShouldEqual, d)
				So(s.HasPlayed(), ShouldBeTrue)
			})

			Convey("And a lower rating and an older date follow", func() {
				s.RecordMatch("Clay", 1340, day(2023, 1, 2))

				Convey("Then the peak and last match date do not regress", func() {
					So(s.Ratings["Clay"], ShouldEqual, 1340.0)
					So(s.PeakRating["Clay"], ShouldEqual, 1365.0)
					So(s.PeakRatingDate["Clay"], ShouldEqual, d)
					So(s.LastMatchDate, ShouldEqual, d)
					So(s.TotalMatches, ShouldEqual, 2)
				})
			})

			Convey("And a match on another surface follows", func() {
				s.RecordMatch("Hard", 1280, day(2023, 8, 28))

				Convey("Then TotalMatches is the sum over surfaces", func() {
					sum := 0
					for _, n := range s.MatchesPlayed {
						sum += n
					}
					So(s.TotalMatches, ShouldEqual, sum)
					So(s.PeakRating["Hard"], ShouldEqual, 1300.0)
				})
			})
		})

		Convey("When decay is applied", func() {
			s.RecordMatch("Clay", 1500, day(2020, 1, 1))
			s.RecordMatch("Hard", 1100, day(2020, 1, 1))
			changed := s.DecayToward(1300, 0.5, day(2022, 1, 1))

			Convey("Then every surface moves halfway to the baseline", func() {
				So(changed, ShouldBeTrue)
				So(s.Ratings["Clay"], ShouldEqual, 1400.0)
				So(s.Ratings["Hard"], ShouldEqual, 1200.0)
				So(s.Ratings["Grass"], ShouldEqual, 1300.0)
			})

			Convey("Then repeating it with the same factor is a no-op", func() {
				before := s.Clone()
				So(s.DecayToward(1300, 0.5, day(2022, 1, 1)), ShouldBeFalse)
				So(s, ShouldResemble, before)
			})
		})

		Convey("When decay lifts a rating above its peak", func() {
			s.RecordMatch("Grass", 1200, day(2020, 6, 1))
			s.DecayToward(1400, 0.5, day(2022, 6, 1))

			Convey("Then the peak follows", func() {
				So(s.Ratings["Grass"], ShouldEqual, 1300.0)
				So(s.PeakRating["Hard"], ShouldEqual, 1350.0)
				So(s.PeakRatingDate["Hard"], ShouldEqual, day(2022, 6, 1))
			})
		})

		Convey("Then BestRating picks the top surface", func() {
			s.RecordMatch("Grass", 1420, day(2021, 7, 1))
			surface, r := s.BestRating()
			So(surface, ShouldEqual, model.Surface("Grass"))
			So(r, ShouldEqual, 1420.0)
		})
	})
}
