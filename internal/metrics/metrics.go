// Package metrics exposes prometheus counters for the sync engine. A nil
// *Collector is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "crewlink"

// Frame kinds
const (
	FrameEnvelope  = "envelope"
	FramePlainText = "plaintext"
	FrameUnknown   = "unknown"
)

// Session results
const (
	SessionOpened = "opened"
	SessionFailed = "failed"
	SessionClosed = "closed"
)

// Collector groups the client metrics
type Collector struct {
	framesReceived *prometheus.CounterVec
	intents        *prometheus.CounterVec
	sessions       *prometheus.CounterVec
	connState      prometheus.Gauge
}

// New creates the collector and registers it on reg
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		framesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_received_total",
			Help:      "Inbound frames by decoded kind.",
		}, []string{"kind"}),
		intents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intents_total",
			Help:      "Outbound player intents by type and outcome.",
		}, []string{"type", "outcome"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Connection attempts by result.",
		}, []string{"result"}),
		connState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connection_state",
			Help:      "Current connection state (0 disconnected, 1 connecting, 2 open, 3 closed).",
		}),
	}

	for _, col := range []prometheus.Collector{c.framesReceived, c.intents, c.sessions, c.connState} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// FrameReceived counts one inbound frame
func (c *Collector) FrameReceived(kind string) {
	if c == nil {
		return
	}
	c.framesReceived.WithLabelValues(kind).Inc()
}

// Intent counts one outbound intent
func (c *Collector) Intent(typ, outcome string) {
	if c == nil {
		return
	}
	c.intents.WithLabelValues(typ, outcome).Inc()
}

// Session counts one connection attempt result
func (c *Collector) Session(result string) {
	if c == nil {
		return
	}
	c.sessions.WithLabelValues(result).Inc()
}

// ConnectionState records the numeric connection state
func (c *Collector) ConnectionState(state int) {
	if c == nil {
		return
	}
	c.connState.Set(float64(state))
}
