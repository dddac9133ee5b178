package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels shared by the chat metrics.
const (
	OutcomeOK           = "ok"
	OutcomeError        = "error"
	OutcomeUnconfigured = "unconfigured"
	OutcomeDegraded     = "degraded"
)

var (
	ReplyDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "support_chat_reply_seconds",
		Help:    "Time spent waiting for the language model to answer",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"outcome"})

	ChatTurns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "support_chat_turns_total",
		Help: "Chat turns committed, by reply outcome",
	}, []string{"outcome"})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "support_chat_events_published_total",
		Help: "Chat turn events handed to the event bus",
	}, []string{"topic", "result"})
)
