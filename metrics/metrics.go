package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	// Connection metrics
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_connections_active",
		Help: "The current number of active WebSocket connections.",
	})
	TotalConnections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_connections_total",
		Help: "The total number of WebSocket connections accepted.",
	})
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_sessions_active",
		Help: "The current number of conversation sessions with at least one member.",
	})
	ConnectionsReaped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_connections_reaped_total",
		Help: "The total number of connections closed by the liveness reaper.",
	}, []string{"reason"})

	// Message metrics
	MessagesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_messages_received_total",
		Help: "The total number of frames received from clients.",
	})
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_messages_sent_total",
		Help: "The total number of frames sent to clients.",
	})
	Translations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_translations_total",
		Help: "The total number of translation attempts by outcome.",
	}, []string{"outcome"})

	// Broker metrics
	BrokerEventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_broker_events_published_total",
		Help: "The total number of events published to the message broker.",
	}, []string{"broker_type"})
)

// StartServer starts the HTTP server for Prometheus metrics.
func StartServer(port int, path string, logger *zap.SugaredLogger) {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Infow("starting metrics server", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Errorw("metrics server exited", "error", err)
		}
	}()
}
