package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Business metrics
	RoomsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voxroom_rooms_created_total",
			Help: "Total rooms created",
		},
	)

	RoomsEnded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voxroom_rooms_ended_total",
			Help: "Total rooms ended",
		},
		[]string{"reason"}, // "explicit", "creator_left", "deleted"
	)

	MessagesPosted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voxroom_messages_posted_total",
			Help: "Total messages posted",
		},
		[]string{"type"}, // "text" or "system"
	)

	RoomJoins = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voxroom_room_joins_total",
			Help: "Total successful room joins",
		},
	)

	JoinRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voxroom_join_rejections_total",
			Help: "Total rejected room joins",
		},
		[]string{"reason"}, // "not_found", "access_denied", "capacity"
	)

	// Infrastructure metrics
	ConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "voxroom_ws_connected_clients",
			Help: "Currently connected WebSocket clients",
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "voxroom_active_room_sessions",
			Help: "Currently active room sessions",
		},
	)

	StoreLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "voxroom_store_latency_seconds",
			Help:    "Store operation latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25},
		},
		[]string{"op"},
	)
)
