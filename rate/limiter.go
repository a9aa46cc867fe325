package rate

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter tracks a token bucket per client id and forgets clients that
// stay quiet longer than the expiry.
type Limiter struct {
	expiry   time.Duration
	burst    int
	limitRPS float64

	mu      sync.Mutex
	clients map[string]*clientLimiter
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

func NewLimiter(burst int, expiry time.Duration, limitRPS float64) *Limiter {
	lm := &Limiter{
		expiry:   expiry,
		burst:    burst,
		limitRPS: limitRPS,
		clients:  make(map[string]*clientLimiter),
	}
	go lm.sweep()
	return lm
}

// Check reports whether id is still within its budget, counting this
// call against it.
func (l *Limiter) Check(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cl, ok := l.clients[id]
	if !ok {
		cl = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(l.limitRPS), l.burst),
		}
		l.clients[id] = cl
	}

	cl.lastAccess = time.Now()
	return cl.limiter.Allow()
}

func (l *Limiter) sweep() {
	for range time.Tick(time.Minute) {
		l.mu.Lock()
		for id, cl := range l.clients {
			if time.Since(cl.lastAccess) > l.expiry {
				delete(l.clients, id)
			}
		}
		l.mu.Unlock()
	}
}

// Every converts an interval between permitted events to a rate.
func Every(interval time.Duration) float64 {
	return float64(rate.Every(interval))
}
