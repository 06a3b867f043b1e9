package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConfirmationMetrics exposes counters/histograms for the confirmation flow.
type ConfirmationMetrics struct {
	inboundTotal   *prometheus.CounterVec
	intentTotal    *prometheus.CounterVec
	outboundTotal  *prometheus.CounterVec
	reminderTotal  *prometheus.CounterVec
	webhookLatency *prometheus.HistogramVec
}

func NewConfirmationMetrics(reg prometheus.Registerer) *ConfirmationMetrics {
	m := &ConfirmationMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fisiogestor",
			Subsystem: "confirmation",
			Name:      "inbound_webhook_total",
			Help:      "Total inbound WhatsApp webhooks by outcome",
		}, []string{"outcome"}),
		intentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fisiogestor",
			Subsystem: "confirmation",
			Name:      "intent_total",
			Help:      "Classified reply intents",
		}, []string{"intent"}),
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fisiogestor",
			Subsystem: "confirmation",
			Name:      "outbound_total",
			Help:      "Outbound WhatsApp sends by kind and status",
		}, []string{"kind", "status"}),
		reminderTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fisiogestor",
			Subsystem: "confirmation",
			Name:      "reminder_total",
			Help:      "Reminder dispatch attempts by status",
		}, []string{"status"}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fisiogestor",
			Subsystem: "confirmation",
			Name:      "webhook_latency_seconds",
			Help:      "Latency of inbound webhook processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.intentTotal, m.outboundTotal, m.reminderTotal, m.webhookLatency)
	return m
}

func (m *ConfirmationMetrics) ObserveInbound(outcome string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(outcome).Inc()
}

func (m *ConfirmationMetrics) ObserveIntent(intent string) {
	if m == nil {
		return
	}
	m.intentTotal.WithLabelValues(intent).Inc()
}

func (m *ConfirmationMetrics) ObserveOutbound(kind, status string) {
	if m == nil {
		return
	}
	m.outboundTotal.WithLabelValues(kind, status).Inc()
}

func (m *ConfirmationMetrics) ObserveReminder(status string) {
	if m == nil {
		return
	}
	m.reminderTotal.WithLabelValues(status).Inc()
}

func (m *ConfirmationMetrics) ObserveWebhookLatency(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.webhookLatency.WithLabelValues(outcome).Observe(seconds)
}
