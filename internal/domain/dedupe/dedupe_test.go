package dedupe_test

import (
	"fmt"
	"strings"
	"testing"

	dedupe "github.com/okian/surfelo/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDeduper(t *testing.T) {
	Convey("Given a new Deduper", t, func() {
		Convey("When creating a deduper with default options", func() {
			d := dedupe.NewDeduper()

			Convey("Then it should start empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording match ids", func() {
			d := dedupe.NewDeduper()

			Convey("And the id is new", func() {
				seen := d.SeenAndRecord("2023-520-101")

				Convey("Then it should return false and record the id", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the id was already seen", func() {
				d.SeenAndRecord("2023-520-101")
				seen := d.SeenAndRecord("2023-520-101")

				Convey("Then it should return true", func() {
					So(seen, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And multiple ids are recorded", func() {
				ids := []string{"m-1", "m-2", "m-3", "m-4", "m-5"}
				for _, id := range ids {
					So(d.SeenAndRecord(id), ShouldBeFalse)
				}

				Convey("Then all ids should be recorded", func() {
					So(d.Size(), ShouldEqual, len(ids))
					for _, id := range ids {
						So(d.SeenAndRecord(id), ShouldBeTrue)
					}
				})
			})
		})

		Convey("When unrecording ids", func() {
			d := dedupe.NewDeduper()
			d.SeenAndRecord("m-1")

			Convey("And the id exists", func() {
				d.Unrecord("m-1")

				Convey("Then it should be removed", func() {
					So(d.Size(), ShouldEqual, 0)
					So(d.SeenAndRecord("m-1"), ShouldBeFalse)
				})
			})

			Convey("And the id doesn't exist", func() {
				d.Unrecord("m-404")

				Convey("Then it should not affect the size", func() {
					So(d.Size(), ShouldEqual, 1)
				})
			})
		})

		Convey("When using bounded mode with eviction", func() {
			d := dedupe.NewDeduper(dedupe.WithMaxSize(3))
			for _, id := range []string{"a", "b", "c"} {
				d.SeenAndRecord(id)
			}

			Convey("And the deduper is at capacity", func() {
				So(d.SeenAndRecord("d"), ShouldBeFalse)

				Convey("Then it should evict the oldest and keep the rest", func() {
					So(d.Size(), ShouldEqual, 3)
					So(d.SeenAndRecord("b"), ShouldBeTrue)
					So(d.SeenAndRecord("c"), ShouldBeTrue)
					So(d.SeenAndRecord("d"), ShouldBeTrue)
					So(d.SeenAndRecord("a"), ShouldBeFalse)
				})
			})

			Convey("And an id in the middle is unrecorded", func() {
				d.Unrecord("b")
				d.SeenAndRecord("d")
				d.SeenAndRecord("e")

				Convey("Then eviction skips the removed id", func() {
					So(d.Size(), ShouldEqual, 3)
					So(d.SeenAndRecord("c"), ShouldBeTrue)
					So(d.SeenAndRecord("d"), ShouldBeTrue)
					So(d.SeenAndRecord("e"), ShouldBeTrue)
				})
			})
		})

		Convey("When using unbounded mode", func() {
			d := dedupe.NewDeduper(dedupe.WithMaxSize(0))
			for i := 0; i < 100000; i++ {
				d.SeenAndRecord(fmt.Sprintf("m-%d", i))
			}

			Convey("Then all ids should be kept without eviction", func() {
				So(d.Size(), ShouldEqual, 100000)
				So(d.SeenAndRecord("m-0"), ShouldBeTrue)
			})
		})
	})

	Convey("Given a deduper with edge cases", t, func() {
		Convey("When recording very long ids", func() {
			d := dedupe.NewDeduper()
			long := strings.Repeat("x", 10000)

			Convey("Then it should handle them", func() {
				So(d.SeenAndRecord(long), ShouldBeFalse)
				So(d.SeenAndRecord(long), ShouldBeTrue)
			})
		})

		Convey("When using max size one", func() {
			d := dedupe.NewDeduper(dedupe.WithMaxSize(1))
			d.SeenAndRecord("a")
			d.SeenAndRecord("b")

			Convey("Then only the newest id is kept", func() {
				So(d.Size(), ShouldEqual, 1)
				So(d.SeenAndRecord("b"), ShouldBeTrue)
			})
		})

		Convey("When using negative max size", func() {
			d := dedupe.NewDeduper(dedupe.WithMaxSize(-1))
			for i := 0; i < 60000; i++ {
				d.SeenAndRecord(fmt.Sprintf("m-%d", i))
			}

			Convey("Then it should be unbounded", func() {
				So(d.Size(), ShouldEqual, 60000)
			})
		})
	})
}
