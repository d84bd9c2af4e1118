package monitor

import (
	"expvar"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	ConnectedPeers  prometheus.Gauge
	MessagesRelayed prometheus.Counter
	DecodeFailures  prometheus.Counter
	RelayLatency    prometheus.Histogram
	SnapshotBytes   prometheus.Histogram
	GamesFinished   prometheus.Counter
}

func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		ConnectedPeers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_peers",
			Help:      "Number of peers currently registered",
		}),
		MessagesRelayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_relayed_total",
			Help:      "Total number of state updates relayed to peers",
		}),
		DecodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_failures_total",
			Help:      "Total number of connection-ending frame decode failures",
		}),
		RelayLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "relay_latency_seconds",
			Help:      "Time spent relaying one state update",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		SnapshotBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_bytes",
			Help:      "Encoded size of relayed snapshots",
			Buckets:   prometheus.ExponentialBuckets(64, 2, 10),
		}),
		GamesFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Total number of game_over messages received",
		}),
	}

	prometheus.MustRegister(
		m.ConnectedPeers,
		m.MessagesRelayed,
		m.DecodeFailures,
		m.RelayLatency,
		m.SnapshotBytes,
		m.GamesFinished,
	)

	return m
}

type Monitor struct {
	metrics   *Metrics
	startTime time.Time
}

func NewMonitor(namespace string) *Monitor {
	return &Monitor{
		metrics:   NewMetrics(namespace),
		startTime: time.Now(),
	}
}

// StartServer publishes /metrics plus expvar on its own address.
func (m *Monitor) StartServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/debug/vars", expvar.Handler())

	expvar.Publish("uptime_seconds", expvar.Func(func() interface{} {
		return time.Since(m.startTime).Seconds()
	}))

	go http.ListenAndServe(addr, mux)
}

func (m *Monitor) PeerConnected() {
	if m != nil {
		m.metrics.ConnectedPeers.Inc()
	}
}

func (m *Monitor) PeerDisconnected() {
	if m != nil {
		m.metrics.ConnectedPeers.Dec()
	}
}

func (m *Monitor) MessageRelayed(size int, took time.Duration) {
	if m != nil {
		m.metrics.MessagesRelayed.Inc()
		m.metrics.SnapshotBytes.Observe(float64(size))
		m.metrics.RelayLatency.Observe(took.Seconds())
	}
}

func (m *Monitor) DecodeFailure() {
	if m != nil {
		m.metrics.DecodeFailures.Inc()
	}
}

func (m *Monitor) GameFinished() {
	if m != nil {
		m.metrics.GamesFinished.Inc()
	}
}
