package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "surfelo")
				So(manager.subsystem, ShouldEqual, "engine")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("tennis"),
				WithSubsystem("atp"),
				WithMetricPrefix("hist"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithCustomLabels(map[string]string{"tour": "atp"}),
				WithPrometheusRegistry(registry),
			)
			manager.RecordMatchProcessed()

			Convey("Then metric names carry the namespace, subsystem and prefix", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "tennis_atp_hist_matches_processed_total")
			})
		})

		Convey("When empty option values are supplied", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithCustomLabels(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "surfelo")
				So(manager.subsystem, ShouldEqual, "engine")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
				So(manager.customLabels, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		registry := prometheus.NewRegistry()
		manager := NewManager(WithPrometheusRegistry(registry))

		Convey("When recording engine metrics", func() {
			manager.RecordMatchProcessed()
			manager.RecordMatchProcessed()
			manager.RecordMatchSkipped("invalid_surface")
			manager.RecordMatchSkipped("invalid_surface")
			manager.RecordMatchSkipped("missing_id")
			manager.RecordSuspiciousChange()
			manager.RecordRatingDelta(-12.5)
			manager.UpdatePlayers(42)

			Convey("Then counters reflect the calls", func() {
				So(testutil.ToFloat64(manager.matchesProcessed), ShouldEqual, 2)
				So(testutil.ToFloat64(manager.matchesSkipped.WithLabelValues("invalid_surface")), ShouldEqual, 2)
				So(testutil.ToFloat64(manager.matchesSkipped.WithLabelValues("missing_id")), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.suspiciousChanges), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.playersTotal), ShouldEqual, 42)
				So(testutil.CollectAndCount(manager.ratingDelta), ShouldEqual, 1)
			})
		})

		Convey("When recording decay sweeps", func() {
			manager.RecordDecaySweep(3)
			manager.RecordDecaySweep(0)

			Convey("Then sweeps and decayed players are both counted", func() {
				So(testutil.ToFloat64(manager.decaySweeps), ShouldEqual, 2)
				So(testutil.ToFloat64(manager.playersDecayed), ShouldEqual, 3)
			})
		})

		Convey("When recording persistence results", func() {
			manager.RecordPersist("json", 3.5, nil)
			manager.RecordPersist("sqlite", 8, errors.New("disk full"))

			Convey("Then only the failure is counted as an error", func() {
				So(testutil.ToFloat64(manager.persistErrors.WithLabelValues("sqlite")), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.persistErrors.WithLabelValues("json")), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a disabled manager", t, func() {
		registry := prometheus.NewRegistry()
		manager := NewManager(WithPrometheusRegistry(registry), WithMetricsEnabled(false))

		Convey("When recording", func() {
			manager.RecordMatchProcessed()
			manager.RecordDecaySweep(5)

			Convey("Then nothing is observed", func() {
				So(testutil.ToFloat64(manager.matchesProcessed), ShouldEqual, 0)
				So(testutil.ToFloat64(manager.playersDecayed), ShouldEqual, 0)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global recorders", t, func() {
		Convey("Then they should not panic", func() {
			So(func() {
				RecordMatchProcessed()
				RecordMatchSkipped("duplicate")
				RecordRatingDelta(4)
				RecordSuspiciousChange()
				UpdatePlayers(10)
				RecordDecaySweep(1)
				RecordBatchDuration(120)
				RecordInputRows("atp_matches_2023.csv", 2900)
				RecordPersist("parquet", 12, nil)
				RecordErrorByComponent("source", "bad_row")
			}, ShouldNotPanic)
		})

		Convey("When gathering the global registry", func() {
			RecordMatchProcessed()
			families, err := GetRegistry().Gather()

			Convey("Then it holds the recorded engine metrics", func() {
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, mf := range families {
					names = append(names, mf.GetName())
				}
				So(names, ShouldContain, "surfelo_engine_matches_processed_total")
				So(testutil.ToFloat64(globalManager.matchesProcessed), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When writing the textfile", func() {
			path := filepath.Join(t.TempDir(), "surfelo.prom")
			err := WriteTextfile(path)

			Convey("Then the exposition contains engine metrics", func() {
				So(err, ShouldBeNil)
				data, readErr := os.ReadFile(path)
				So(readErr, ShouldBeNil)
				So(strings.Contains(string(data), "surfelo_engine_matches_processed_total"), ShouldBeTrue)
			})
		})

		Convey("When the textfile directory does not exist", func() {
			err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))

			Convey("Then a wrapped error is returned", func() {
				So(errors.Is(err, ErrWriteTextfile), ShouldBeTrue)
			})
		})
	})
}
