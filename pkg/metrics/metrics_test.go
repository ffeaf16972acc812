package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/versuslab/versus/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewManager(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		reg := prometheus.NewRegistry()

		Convey("When creating a manager with options", func() {
			m := metrics.NewManager(
				metrics.WithRegistry(reg),
				metrics.WithNamespace("test"),
				metrics.WithSubsystem("ranking"),
				metrics.WithHistogramBuckets([]float64{1, 10, 100}),
			)

			Convey("Then it should be created without panicking", func() {
				So(m, ShouldNotBeNil)
			})

			Convey("And the registry should hold the registered metrics", func() {
				families, err := reg.Gather()
				So(err, ShouldBeNil)
				// Counters without observations do appear; vecs without
				// label values do not.
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestPackageHelpers(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording every metric kind", func() {
			So(func() {
				metrics.RecordVoteCast()
				metrics.RecordVoteRejected("stale")
				metrics.RecordVoteLatency(12.5)
				metrics.UpdateTotalVotes(42)
				metrics.RecordMatchupServed()
				metrics.RecordEpochReset()
				metrics.RecordSessionCreated()
				metrics.RecordSessionExpired()
				metrics.UpdateActiveSessions(3)
				metrics.RecordStoreError("merge_global")
				metrics.RecordStoreFallback()
				metrics.RecordAuditAppend()
				metrics.RecordAuditDrop()
				metrics.UpdateAuditQueueDepth(7)
				metrics.RecordHTTPRequest("votes", "POST", "200")
				metrics.RecordHTTPRequestDuration("votes", "POST", "200", 3.2)
			}, ShouldNotPanic)
		})

		Convey("When gathering from the global registry", func() {
			families, err := metrics.GetRegistry().Gather()

			Convey("Then the recorded metrics should be present", func() {
				So(err, ShouldBeNil)
				names := make(map[string]bool, len(families))
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["versus_ranking_votes_cast_total"], ShouldBeTrue)
				So(names["versus_ranking_http_requests_total"], ShouldBeTrue)
				So(names["versus_ranking_sampler_epoch_resets_total"], ShouldBeTrue)
			})
		})
	})
}
