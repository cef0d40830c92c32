package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HTTPRequestDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "http_request_duration_seconds",
	Help:    "Duration of HTTP requests in seconds.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "path", "status"})

var HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of HTTP requests.",
}, []string{"method", "path", "status"})

// Database Metrics
var DBQueryDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "db_query_duration_seconds",
	Help:    "Duration of database queries in seconds.",
	Buckets: prometheus.DefBuckets,
}, []string{"query_type", "repository", "status"})

var DBQueryErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "db_query_errors_total",
	Help: "Total number of failed database queries.",
}, []string{"query_type", "repository"})

// Chat-bot Metrics
var ChatCommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "chat_commands_total",
	Help: "Total number of chat commands dispatched, by platform and command kind.",
}, []string{"platform", "command"})

var ChatMessagesSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "chat_messages_sent_total",
	Help: "Total number of outbound chat messages, by platform and status.",
}, []string{"platform", "status"})
