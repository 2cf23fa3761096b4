package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes counters/histograms for chat and webhook flows.
type ChatMetrics struct {
	turnsTotal    *prometheus.CounterVec
	turnLatency   *prometheus.HistogramVec
	webhooksTotal *prometheus.CounterVec
	quotesTotal   *prometheus.CounterVec
	leadsRecorded prometheus.Counter
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "peachclean",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total conversation turns handled",
		}, []string{"channel", "status"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "peachclean",
			Subsystem: "chat",
			Name:      "turn_latency_seconds",
			Help:      "Latency of conversation turn handling",
			Buckets:   prometheus.DefBuckets,
		}, []string{"channel"}),
		webhooksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "peachclean",
			Subsystem: "messenger",
			Name:      "inbound_webhook_total",
			Help:      "Total inbound messaging-platform webhooks",
		}, []string{"event_type", "status"}),
		quotesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "peachclean",
			Subsystem: "pricing",
			Name:      "quotes_total",
			Help:      "Total quotes computed per service",
		}, []string{"service"}),
		leadsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "peachclean",
			Subsystem: "leads",
			Name:      "recorded_total",
			Help:      "Total qualified leads recorded",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.turnLatency, m.webhooksTotal, m.quotesTotal, m.leadsRecorded)
	return m
}

func (m *ChatMetrics) ObserveTurn(channel, status string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(channel, status).Inc()
}

func (m *ChatMetrics) ObserveTurnLatency(channel string, seconds float64) {
	if m == nil {
		return
	}
	m.turnLatency.WithLabelValues(channel).Observe(seconds)
}

func (m *ChatMetrics) ObserveWebhook(eventType, status string) {
	if m == nil {
		return
	}
	m.webhooksTotal.WithLabelValues(eventType, status).Inc()
}

func (m *ChatMetrics) ObserveQuote(service string) {
	if m == nil {
		return
	}
	m.quotesTotal.WithLabelValues(service).Inc()
}

func (m *ChatMetrics) ObserveLeadRecorded() {
	if m == nil {
		return
	}
	m.leadsRecorded.Inc()
}
