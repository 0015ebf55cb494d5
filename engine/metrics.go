package engine

import (
	"github.com/prometheus/client_golang/prometheus"

	"i4.energy/across/qube/nmea"
)

const (
	resultDispatched = "dispatched"
	resultUnverified = "unverified"
	resultUnhandled  = "unhandled"

	outcomeAnswered = "answered"
	outcomeTimeout  = "timeout"
	outcomeAborted  = "aborted"
)

// Metrics counts protocol activity per device. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	sentences *prometheus.CounterVec
	drops     *prometheus.CounterVec
	frames    *prometheus.CounterVec
	waits     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sentences: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qube",
			Name:      "sentences_total",
			Help:      "Complete sentences received, by dispatch result.",
		}, []string{"device", "result"}),
		drops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qube",
			Name:      "frames_dropped_total",
			Help:      "Partial frames discarded by the parser, by reason.",
		}, []string{"device", "reason"}),
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qube",
			Name:      "frames_queued_total",
			Help:      "Frames handed to the transport queue.",
		}, []string{"device"}),
		waits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qube",
			Name:      "response_waits_total",
			Help:      "Response waits performed by operator commands, by outcome.",
		}, []string{"device", "outcome"}),
	}
	reg.MustRegister(m.sentences, m.drops, m.frames, m.waits)
	return m
}

func (m *Metrics) sentence(device, result string) {
	if m == nil {
		return
	}
	m.sentences.WithLabelValues(device, result).Inc()
}

func (m *Metrics) dropped(device string, reason nmea.Drop) {
	if m == nil {
		return
	}
	m.drops.WithLabelValues(device, reason.String()).Inc()
}

func (m *Metrics) frameQueued(device string) {
	if m == nil {
		return
	}
	m.frames.WithLabelValues(device).Inc()
}

func (m *Metrics) waited(device, outcome string) {
	if m == nil {
		return
	}
	m.waits.WithLabelValues(device, outcome).Inc()
}
