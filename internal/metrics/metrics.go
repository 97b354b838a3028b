package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	TrendsFetched     int64
	NewTrendsDetected int64
	RunsSkipped       int64
	SlackMessagesSent int64
	StoreDegradations int64
	FetchFailures     int64
	DeliveryFailures  int64

	// Timings
	LastRunDuration    time.Duration
	AverageRunDuration time.Duration
	TotalRunDuration   time.Duration
	RunCount           int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddTrendsFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TrendsFetched += int64(n)
}

func (m *Metrics) AddNewTrendsDetected(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NewTrendsDetected += int64(n)
}

func (m *Metrics) IncrementRunsSkipped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RunsSkipped++
}

func (m *Metrics) IncrementSlackMessagesSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SlackMessagesSent++
}

func (m *Metrics) IncrementStoreDegradations() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StoreDegradations++
}

func (m *Metrics) IncrementFetchFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchFailures++
}

func (m *Metrics) IncrementDeliveryFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeliveryFailures++
}

func (m *Metrics) RecordRunDuration(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastRunDuration = duration
	m.TotalRunDuration += duration
	m.RunCount++

	if m.RunCount > 0 {
		m.AverageRunDuration = m.TotalRunDuration / time.Duration(m.RunCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"trends_fetched":          m.TrendsFetched,
		"new_trends_detected":     m.NewTrendsDetected,
		"runs_skipped":            m.RunsSkipped,
		"slack_messages_sent":     m.SlackMessagesSent,
		"store_degradations":      m.StoreDegradations,
		"fetch_failures":          m.FetchFailures,
		"delivery_failures":       m.DeliveryFailures,
		"last_run_duration_ms":    m.LastRunDuration.Milliseconds(),
		"average_run_duration_ms": m.AverageRunDuration.Milliseconds(),
		"last_run_time":           m.LastRunTime.Format(time.RFC3339),
		"last_error_time":         m.LastErrorTime.Format(time.RFC3339),
		"last_error":              m.LastError,
		"is_healthy":              m.IsHealthy,
	}
}
