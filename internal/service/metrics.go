package service

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opLoad           = "load"
	opCreate         = "create"
	opDelete         = "delete"
	opToggleComplete = "toggle_complete"
	opEdit           = "edit"
	opBulkComplete   = "bulk_complete"
	opBulkDelete     = "bulk_delete"
	opSetOrder       = "set_order"
	opClearCompleted = "clear_completed"
	opReplaceAll     = "replace_all"
	opSetTheme       = "set_theme"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todo_task_operations_total",
			Help: "Total number of task store operations",
		},
		[]string{"operation", "status"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "todo_task_operation_duration_seconds",
			Help:    "Duration of task store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// status: success, rejected (бизнес-ошибка) или error
func observe(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		var busErr *BusinessError
		if errors.As(err, &busErr) {
			status = "rejected"
		} else {
			status = "error"
		}
	}
	operationsTotal.WithLabelValues(operation, status).Inc()
	operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
