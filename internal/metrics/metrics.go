package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HighlightSessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anan_highlight_sessions_total",
		Help: "Highlight sessions by outcome",
	}, []string{"outcome"})

	HighlightTicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "anan_highlight_ticks_total",
		Help: "Sync driver ticks that computed a position",
	})

	HighlightSuppressedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "anan_highlight_suppressed_total",
		Help: "Highlight frames withheld while the user was scrolling",
	})

	QuestionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anan_questions_total",
		Help: "Ask-and-speak tasks by outcome",
	}, []string{"outcome"})

	ChatRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "anan_chat_request_duration_seconds",
		Help:    "Chat answer duration including tool calls",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30},
	}, []string{"model"})

	ToolCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anan_tool_calls_total",
		Help: "Tool invocations by tool and status",
	}, []string{"tool", "status"})

	TTSRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "anan_tts_request_duration_seconds",
		Help:    "TTS synthesis duration",
		Buckets: []float64{0.1, 0.5, 1, 2, 5},
	})

	TTSCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anan_tts_cache_total",
		Help: "Synthesized audio cache lookups by result",
	}, []string{"result"})

	ClientsConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "anan_ws_clients_connected",
		Help: "Connected WebSocket clients",
	})
)
