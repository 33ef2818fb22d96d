package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the chat service.
// Counters only ever increase; the gauges mirror derived database state and
// are refreshed opportunistically after writes.
type Metrics struct {
	registry *prometheus.Registry

	messagesSent    *prometheus.CounterVec
	usernameChanges prometheus.Counter
	chatClears      *prometheus.CounterVec
	messageLength   prometheus.Histogram

	activeRooms       prometheus.Gauge
	totalUsers        prometheus.Gauge
	messagesToday     prometheus.Gauge
	databaseConnected prometheus.Gauge
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		messagesSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chatapp_messages_total",
			Help: "Total messages sent",
		}, []string{"room"}),
		usernameChanges: factory.NewCounter(prometheus.CounterOpts{
			Name: "chatapp_username_changes_total",
			Help: "Total username changes",
		}),
		chatClears: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chatapp_chat_clears_total",
			Help: "Total chat clears",
		}, []string{"room"}),
		messageLength: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chatapp_message_length_chars",
			Help:    "Distribution of message lengths",
			Buckets: []float64{10, 50, 100, 200, 500, 1000},
		}),
		activeRooms: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chatapp_active_rooms",
			Help: "Number of active rooms",
		}),
		totalUsers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chatapp_total_users",
			Help: "Total number of users",
		}),
		messagesToday: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chatapp_messages_today",
			Help: "Messages sent today",
		}),
		databaseConnected: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chatapp_database_connected",
			Help: "Database connection status (1=connected, 0=disconnected)",
		}),
	}
}

// Handler returns the Prometheus text exposition handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// MessageSent records a posted message and its length.
func (m *Metrics) MessageSent(room string, length int) {
	m.messagesSent.WithLabelValues(room).Inc()
	m.messageLength.Observe(float64(length))
}

// UsernameChanged records a completed rename.
func (m *Metrics) UsernameChanged() {
	m.usernameChanges.Inc()
}

// ChatCleared records a room clear.
func (m *Metrics) ChatCleared(room string) {
	m.chatClears.WithLabelValues(room).Inc()
}

// SetGauges updates the derived state gauges.
func (m *Metrics) SetGauges(rooms, users, messagesToday int64) {
	m.activeRooms.Set(float64(rooms))
	m.totalUsers.Set(float64(users))
	m.messagesToday.Set(float64(messagesToday))
}

// SetDatabaseConnected flips the connection status gauge.
func (m *Metrics) SetDatabaseConnected(connected bool) {
	if connected {
		m.databaseConnected.Set(1)
	} else {
		m.databaseConnected.Set(0)
	}
}
