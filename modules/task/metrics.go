package task

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_mutations_total",
			Help: "Total number of task mutations by action",
		},
		[]string{"action"},
	)

	// Failed history appends; the triggering mutation still succeeded.
	auditFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_audit_failures_total",
			Help: "Total number of task history appends that failed",
		},
		[]string{"action"},
	)
)
