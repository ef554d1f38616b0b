package spotify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultRequestsPerMinute = 90

// rateLimiter enforces two policies over a rolling 60-second window: a hard
// ceiling of limit requests, and a minimum spacing of window/limit between
// consecutive requests to smooth bursts. The timestamp ledger is the one
// piece of shared mutable state in the facade; every read-modify-write cycle
// holds the mutex. The clock and sleep are injectable so tests can drive it
// deterministically.
type rateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	minGap time.Duration
	ledger []time.Time
	now    func() time.Time
	sleep  func(time.Duration)
	log    *zap.Logger
}

func newRateLimiter(perMinute int, log *zap.Logger) *rateLimiter {
	if perMinute <= 0 {
		perMinute = defaultRequestsPerMinute
	}
	return &rateLimiter{
		limit:  perMinute,
		window: time.Minute,
		minGap: time.Minute / time.Duration(perMinute),
		now:    time.Now,
		sleep:  time.Sleep,
		log:    log,
	}
}

// wait blocks until issuing one more request stays under the ceiling, then
// records the request in the ledger.
func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.prune(now)

	if len(r.ledger) >= r.limit {
		sleepFor := r.window - now.Sub(r.ledger[0]) + 100*time.Millisecond
		if sleepFor > 0 {
			r.log.Info("rate limit approached, sleeping",
				zap.Duration("sleep", sleepFor),
				zap.Int("requests_in_window", len(r.ledger)))
			r.sleep(sleepFor)

			// Recompute: an unknown amount of time passed while asleep.
			now = r.now()
			r.prune(now)
		}
	}

	if n := len(r.ledger); n > 0 {
		if gap := now.Sub(r.ledger[n-1]); gap < r.minGap {
			r.sleep(r.minGap - gap)
			now = r.now()
		}
	}

	r.ledger = append(r.ledger, now)
}

func (r *rateLimiter) prune(now time.Time) {
	cut := 0
	for cut < len(r.ledger) && now.Sub(r.ledger[cut]) > r.window {
		cut++
	}
	r.ledger = r.ledger[cut:]
}
