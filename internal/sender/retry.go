package sender

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"net"
	"time"
)

// DialConfig controls the backoff+jitter dial retry loop. Adapted from the
// teacher's retry manager: the exponential-backoff-with-jitter math
// survives, but the per-identifier circuit breaker doesn't, since courier
// opens exactly one connection per transfer rather than juggling many.
type DialConfig struct {
	MaxAttempts    int
	BaseBackoff    time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
	JitterFraction float64
}

// DefaultDialConfig returns the backoff parameters courier dials with.
func DefaultDialConfig() DialConfig {
	return DialConfig{
		MaxAttempts:    5,
		BaseBackoff:    200 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

func (c DialConfig) backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := float64(c.BaseBackoff) * math.Pow(c.Multiplier, float64(attempt-1))
	if d > float64(c.MaxBackoff) {
		d = float64(c.MaxBackoff)
	}
	jitter := d * c.JitterFraction * (rand.Float64()*2 - 1)
	d += jitter
	if d < float64(c.BaseBackoff) {
		d = float64(c.BaseBackoff)
	}
	return time.Duration(d)
}

// DialWithRetry dials addr over TCP, making up to cfg.MaxAttempts attempts
// in all with backoff+jitter between them, and enables TCP_NODELAY on
// success.
func DialWithRetry(ctx context.Context, addr string, cfg DialConfig) (net.Conn, error) {
	var lastErr error
	var dialer net.Dialer

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			if tc, ok := conn.(*net.TCPConn); ok {
				tc.SetNoDelay(true)
			}
			return conn, nil
		}
		lastErr = err
		if attempt == cfg.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(cfg.backoff(attempt)):
		}
	}
	return nil, fmt.Errorf("sender: dial %s after %d attempts: %w", addr, cfg.MaxAttempts, lastErr)
}
