package mongodb

import (
	"sync"
	"time"

	apperrors "github.com/NomadCrew/cats-backend/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StoreMetrics holds Prometheus metrics for document store operations.
type StoreMetrics struct {
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

var (
	storeMetricsOnce   sync.Once
	globalStoreMetrics *StoreMetrics
)

// getStoreMetrics registers the store metrics once and returns them.
func getStoreMetrics() *StoreMetrics {
	storeMetricsOnce.Do(func() {
		globalStoreMetrics = &StoreMetrics{
			duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "docstore_operation_duration_seconds",
				Help:    "Time taken by document store operations",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			}, []string{"collection", "operation"}),
			errors: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "docstore_operation_errors_total",
				Help: "Total number of failed document store operations by error type",
			}, []string{"collection", "operation", "type"}),
		}
	})
	return globalStoreMetrics
}

// observe records one operation. Absence is not an error and is not counted.
func (m *StoreMetrics) observe(collection, operation string, start time.Time, err error) {
	m.duration.WithLabelValues(collection, operation).Observe(time.Since(start).Seconds())
	if err == nil {
		return
	}
	errType := string(apperrors.ServerError)
	if appErr, ok := apperrors.As(err); ok {
		errType = string(appErr.Type)
	}
	m.errors.WithLabelValues(collection, operation, errType).Inc()
}
