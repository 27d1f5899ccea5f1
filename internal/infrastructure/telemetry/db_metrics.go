package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PoolStats is a snapshot of the database connection pool
type PoolStats struct {
	MaxOpen      int
	Open         int
	InUse        int
	Idle         int
	WaitCount    int64
	WaitDuration time.Duration
}

// PoolStatsFunc reads the current pool statistics
type PoolStatsFunc func() (PoolStats, error)

// RegisterDBPoolMetrics exports the pool statistics as observable
// instruments, read on every collection. Unregister the returned
// registration before closing the database.
func RegisterDBPoolMetrics(meter metric.Meter, stats PoolStatsFunc) (metric.Registration, error) {
	connections, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Number of connections in the pool by state"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return nil, err
	}
	maxOpen, err := meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Maximum number of open connections"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return nil, err
	}
	waits, err := meter.Int64ObservableCounter("db_pool_wait_total",
		metric.WithDescription("Connections waited for"),
		metric.WithUnit("{wait}"))
	if err != nil {
		return nil, err
	}
	waitTime, err := meter.Float64ObservableCounter("db_pool_wait_duration_seconds",
		metric.WithDescription("Time spent waiting for a connection"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	inUse := metric.WithAttributes(attribute.String("state", "in_use"))
	idle := metric.WithAttributes(attribute.String("state", "idle"))

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s, err := stats()
		if err != nil {
			return err
		}
		o.ObserveInt64(connections, int64(s.InUse), inUse)
		o.ObserveInt64(connections, int64(s.Idle), idle)
		o.ObserveInt64(maxOpen, int64(s.MaxOpen))
		o.ObserveInt64(waits, s.WaitCount)
		o.ObserveFloat64(waitTime, s.WaitDuration.Seconds())
		return nil
	}, connections, maxOpen, waits, waitTime)
}
