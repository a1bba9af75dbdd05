package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry and custom names", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("board"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then collectors are registered under the custom names", func() {
				So(manager, ShouldNotBeNil)
				manager.queries.WithLabelValues("memory", "rank", "asc").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				found := false
				for _, f := range families {
					if f.GetName() == "test_board_queries_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When options receive empty values", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithNamespace(""), WithSubsystem(""), WithHistogramBuckets(nil), WithPrometheusRegistry(registry))

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "fideboard")
				So(manager.subsystem, ShouldEqual, "rankings")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording a query", func() {
			before := testutil.ToFloat64(globalManager.queries.WithLabelValues("memory", "delta_month", "desc"))
			RecordQuery("memory", "delta_month", "desc")
			RecordQueryLatency("memory", 1.5)

			Convey("Then the labelled counter advances", func() {
				after := testutil.ToFloat64(globalManager.queries.WithLabelValues("memory", "delta_month", "desc"))
				So(after-before, ShouldEqual, 1)
			})
		})

		Convey("When recording ingest outcomes", func() {
			beforeSkipped := testutil.ToFloat64(globalManager.ingestSkipped.WithLabelValues("low_rating"))
			RecordIngestSkipped("low_rating", 7)
			RecordIngestSkipped("low_rating", 0)
			RecordRatingsIngested("historical", 3)
			RecordSnapshotIngested(1700000000)

			Convey("Then skips add up and zero is ignored", func() {
				after := testutil.ToFloat64(globalManager.ingestSkipped.WithLabelValues("low_rating"))
				So(after-beforeSkipped, ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.lastIngestUnix), ShouldEqual, 1700000000)
			})
		})

		Convey("When setting gauges", func() {
			UpdateRankedPlayers(237)
			UpdateRatingLists(13)
			UpdateSystemGoroutineCount(12)

			Convey("Then they hold the last value", func() {
				So(testutil.ToFloat64(globalManager.rankedPlayers), ShouldEqual, 237)
				So(testutil.ToFloat64(globalManager.listsAvailable), ShouldEqual, 13)
				So(testutil.ToFloat64(globalManager.systemGoroutineCount), ShouldEqual, 12)
			})
		})

		Convey("When recording HTTP and error metrics", func() {
			So(func() {
				RecordHTTPRequest("/rankings", "GET", "200")
				RecordHTTPRequestDuration("/rankings", "GET", "200", 3)
				RecordErrorByComponent("http", "client_error")
				RecordErrorByType("client_error", "low")
				RecordErrorByEndpoint("/rankings", "GET", "client_error")
				RecordQueryError("sqlite", "scan")
				RecordIndexRebuild(2)
				UpdateSystemMemoryUsage(1024)
				RecordSystemGCPauseTime(0.2)
			}, ShouldNotPanic)
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		RecordQuery("memory", "rank", "asc")
		families, err := GetRegistry().Gather()

		Convey("Then it exposes fideboard metrics only", func() {
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
			for _, f := range families {
				So(strings.HasPrefix(f.GetName(), "fideboard_"), ShouldBeTrue)
			}
		})
	})
}
