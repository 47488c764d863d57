package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AssistantMetrics records automation pipeline and chat routing activity.
type AssistantMetrics struct {
	oracleDuration     *prometheus.HistogramVec
	oracleFailure      *prometheus.CounterVec
	automationExecuted *prometheus.CounterVec
	automationUndone   prometheus.Counter
	chatIntents        *prometheus.CounterVec
}

// NewAssistantMetrics registers the assistant metrics on the provided registerer.
func NewAssistantMetrics(reg prometheus.Registerer) *AssistantMetrics {
	if reg == nil {
		return &AssistantMetrics{}
	}
	oracleDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "oracle_request_duration_seconds",
		Help:    "Duration of language model requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	oracleFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "oracle_request_failures",
		Help: "Failed language model requests.",
	}, []string{"operation"})
	automationExecuted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "automation_commands_executed",
		Help: "Executed bulk automation commands.",
	}, []string{"action"})
	automationUndone := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "automation_commands_undone",
		Help: "Undone bulk automation commands.",
	})
	chatIntents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_intents_routed",
		Help: "Chat messages routed per classified intent.",
	}, []string{"intent"})
	reg.MustRegister(oracleDuration, oracleFailure, automationExecuted, automationUndone, chatIntents)
	return &AssistantMetrics{
		oracleDuration:     oracleDuration,
		oracleFailure:      oracleFailure,
		automationExecuted: automationExecuted,
		automationUndone:   automationUndone,
		chatIntents:        chatIntents,
	}
}

// ObserveOracleDuration records the duration of one model call.
func (m *AssistantMetrics) ObserveOracleDuration(operation string, duration time.Duration) {
	if m == nil || m.oracleDuration == nil {
		return
	}
	m.oracleDuration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncOracleFailure increments the failure counter for the named operation.
func (m *AssistantMetrics) IncOracleFailure(operation string) {
	if m == nil || m.oracleFailure == nil {
		return
	}
	m.oracleFailure.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncAutomationExecuted increments the executed counter for the action.
func (m *AssistantMetrics) IncAutomationExecuted(action string) {
	if m == nil || m.automationExecuted == nil {
		return
	}
	m.automationExecuted.WithLabelValues(normalizeLabel(action)).Inc()
}

// IncAutomationUndone increments the undo counter.
func (m *AssistantMetrics) IncAutomationUndone() {
	if m == nil || m.automationUndone == nil {
		return
	}
	m.automationUndone.Inc()
}

// IncChatIntent increments the routed counter for the classified intent.
func (m *AssistantMetrics) IncChatIntent(intent string) {
	if m == nil || m.chatIntents == nil {
		return
	}
	m.chatIntents.WithLabelValues(normalizeLabel(intent)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
