package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu              sync.Mutex
	requestCount    map[string]int64
	errorCount      map[string]int64
	rateLimitCount  map[string]int64
	verifierOutcome map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:    make(map[string]int64),
		errorCount:      make(map[string]int64),
		rateLimitCount:  make(map[string]int64),
		verifierOutcome: make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordRateLimitDecision counts limiter verdicts per action.
func (m *Metrics) RecordRateLimitDecision(action string, allowed bool) {
	if m == nil {
		return
	}
	key := action + "|" + strconv.FormatBool(allowed)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rateLimitCount[key]++
}

// RecordVerification counts subscription verifier outcomes per source.
func (m *Metrics) RecordVerification(source string, valid bool) {
	if m == nil {
		return
	}
	key := source + "|" + strconv.FormatBool(valid)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifierOutcome[key]++
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
