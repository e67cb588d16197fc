package sender

import (
	"sync"
	"time"
)

// RateTracker computes a smoothed bytes/sec rate from cumulative bytes sent
// in the current session. Adapted from the teacher's telemetry collector,
// which tracked bandwidth for an AI transport optimizer; here the same
// windowed-bytes/elapsed-time math feeds progress-event rate and ETA
// instead.
type RateTracker struct {
	mu        sync.Mutex
	start     time.Time
	bytesSent uint64
}

// NewRateTracker starts a tracker with its window beginning now.
func NewRateTracker() *RateTracker {
	return &RateTracker{start: time.Now()}
}

// Add records that n more bytes were sent in this session.
func (r *RateTracker) Add(n uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bytesSent += n
}

// BytesPerSecond returns the average send rate since the tracker started.
func (r *RateTracker) BytesPerSecond() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	elapsed := time.Since(r.start).Seconds()
	if elapsed <= 0 || r.bytesSent == 0 {
		return 0
	}
	return float64(r.bytesSent) / elapsed
}

// ETA estimates the time remaining to send remainingBytes at the current
// rate. Returns 0 if the rate isn't known yet.
func (r *RateTracker) ETA(remainingBytes uint64) time.Duration {
	rate := r.BytesPerSecond()
	if rate <= 0 {
		return 0
	}
	return time.Duration(float64(remainingBytes) / rate * float64(time.Second))
}
