package metrics

import (
	"path"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
)

var (
	storage tstorage.Storage
	mu      sync.RWMutex
)

// InitMetrics opens the embedded timeseries store under workdir/metrics
func InitMetrics(workdir string) error {
	mu.Lock()
	defer mu.Unlock()
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(path.Join(workdir, "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithRetention(time.Hour*24*7),
	)
	if err != nil {
		return err
	}
	storage = s
	return nil
}

// SetGauge records a gauge sample for the named metric at the current time
func SetGauge(name string, value int64) {
	mu.RLock()
	defer mu.RUnlock()
	if storage == nil {
		return
	}
	_ = storage.InsertRows([]tstorage.Row{
		{
			Metric: name,
			DataPoint: tstorage.DataPoint{
				Timestamp: time.Now().Unix(),
				Value:     float64(value),
			},
		},
	})
}

// Latest returns the most recent sample for the named metric within the
// past hour, or 0 when no sample exists.
func Latest(name string) float64 {
	mu.RLock()
	defer mu.RUnlock()
	if storage == nil {
		return 0
	}
	now := time.Now().Unix()
	points, err := storage.Select(name, nil, now-3600, now+1)
	if err != nil || len(points) == 0 {
		return 0
	}
	return points[len(points)-1].Value
}

// Close flushes and closes the timeseries store
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}
