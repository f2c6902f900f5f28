package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Signaling traffic counters, incremented from the hub loop.
var (
	Joins = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signaling_joins_total",
		Help: "Successful room joins.",
	})
	JoinRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signaling_join_rejections_total",
		Help: "Joins rejected because the room was full.",
	})
	Relays = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signaling_relays_total",
		Help: "Signaling payloads relayed between peers.",
	})
	Disconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signaling_disconnects_total",
		Help: "Participants removed by leave or connection loss.",
	})
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "signaling_active_rooms",
		Help: "Rooms with at least one participant.",
	})
	ClusterRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "signaling_cluster_rooms",
		Help: "Occupied rooms across all instances, from presence events.",
	})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
