package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "livechat_ws_connections",
		Help: "Currently open websocket connections.",
	})

	channelsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "livechat_ws_channels",
		Help: "Fan-out channels created in this process.",
	})

	eventsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "livechat_ws_events_total",
		Help: "Inbound websocket events by type.",
	}, []string{"type"})

	errorsCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "livechat_ws_errors_total",
		Help: "Error frames sent to clients.",
	})
)
