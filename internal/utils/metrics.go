package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

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

// External store client metrics
var StoreRequestDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "school_store_request_duration_seconds",
	Help:    "Duration of school data store requests in seconds.",
	Buckets: prometheus.DefBuckets,
}, []string{"operation", "status"})
