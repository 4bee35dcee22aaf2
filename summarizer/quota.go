package summarizer

import (
	"context"
	"sync"
	"time"

	"arxiv-daily/config"
)

// QuotaLimiter enforces per-minute and daily limits on summarization LLM
// calls. It runs in-memory under the single-process batch assumption;
// counters reset when the process restarts.
type QuotaLimiter struct {
	mu sync.Mutex

	dailyLimit int
	usedToday  int
	dayKey     string

	interval time.Duration
	lastCall time.Time
}

// NewQuotaLimiter builds a limiter from config. Values of 0 or below
// disable the corresponding limit.
func NewQuotaLimiter(cfg config.QuotaConfig) *QuotaLimiter {
	requestsPerDay := cfg.RequestsPerDay
	if requestsPerDay < 0 {
		requestsPerDay = 0
	}

	requestsPerMinute := cfg.RequestsPerMinute
	if requestsPerMinute < 0 {
		requestsPerMinute = 0
	}

	var interval time.Duration
	if requestsPerMinute > 0 {
		interval = time.Minute / time.Duration(requestsPerMinute)
	}

	return &QuotaLimiter{
		dailyLimit: requestsPerDay,
		interval:   interval,
	}
}

// WaitAndReserve applies the limits ahead of one LLM call.
// - Daily budget exhausted: returns (false, nil); the caller skips the call.
// - Context cancelled while pacing: returns (false, error).
func (l *QuotaLimiter) WaitAndReserve(ctx context.Context) (bool, error) {
	for {
		l.mu.Lock()

		now := time.Now().UTC()
		todayKey := now.Format("2006-01-02")
		if l.dayKey != todayKey {
			l.dayKey = todayKey
			l.usedToday = 0
		}

		if l.dailyLimit > 0 && l.usedToday >= l.dailyLimit {
			l.mu.Unlock()
			return false, nil
		}

		var delay time.Duration
		if l.interval > 0 && !l.lastCall.IsZero() {
			nextAllowed := l.lastCall.Add(l.interval)
			delay = time.Until(nextAllowed)
		}

		if delay <= 0 {
			l.usedToday++
			l.lastCall = now
			l.mu.Unlock()
			return true, nil
		}

		// Release the lock while pacing, then re-evaluate.
		l.mu.Unlock()
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}
