package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ats_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	StageTransitionsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ats_stage_transitions_total",
			Help: "Total number of candidate stage transitions.",
		},
		[]string{"origin"},
	)
	NotificationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ats_notifications_total",
			Help: "Total number of candidate email notifications by outcome.",
		},
		[]string{"outcome"},
	)
	ExportsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ats_exports_total",
			Help: "Total number of candidate exports by format.",
		},
		[]string{"format"},
	)
	SnapshotDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ats_analytics_snapshot_duration_seconds",
			Help:    "Duration of each analytics snapshot computation in seconds.",
			Buckets: []float64{0.01, 0.05, 0.25, 1, 5},
		},
	)
)

const (
	TransitionOriginDrag   = "drag"
	TransitionOriginBulk   = "bulk"
	TransitionOriginDetail = "detail"

	NotificationSent   = "sent"
	NotificationFailed = "failed"
)

func StartMetricsServer(address string) {

	prometheus.MustRegister(ErrorsCounter)
	prometheus.MustRegister(StageTransitionsCounter)
	prometheus.MustRegister(NotificationsCounter)
	prometheus.MustRegister(ExportsCounter)
	prometheus.MustRegister(SnapshotDuration)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(address, mux))
	}()
}
