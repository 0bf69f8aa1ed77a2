package ratelimit

import (
	"sync"
	"time"
)

// Limiter counts requests per key in fixed windows.
type Limiter struct {
	mu       sync.Mutex
	counters map[string]*counter
	window   time.Duration
	max      int
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type counter struct {
	count     int
	expiresAt time.Time
}

// NewLimiter creates a limiter allowing max requests per key and window.
// Stop releases the cleanup goroutine.
func NewLimiter(window time.Duration, max int) *Limiter {
	l := &Limiter{
		counters: make(map[string]*counter),
		window:   window,
		max:      max,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go l.cleanup(time.Minute)
	return l
}

// Allow reports whether a request for key fits in the current window and
// counts it if so.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	c, exists := l.counters[key]
	if !exists || now.After(c.expiresAt) {
		l.counters[key] = &counter{
			count:     1,
			expiresAt: now.Add(l.window),
		}
		return true
	}
	if c.count >= l.max {
		return false
	}
	c.count++
	return true
}

// Remaining returns the number of requests key may still make in its window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, exists := l.counters[key]
	if !exists || l.now().After(c.expiresAt) {
		return l.max
	}
	return max(l.max-c.count, 0)
}

// Window returns the window length.
func (l *Limiter) Window() time.Duration {
	return l.window
}

func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *Limiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.purge()
		case <-l.stop:
			return
		}
	}
}

// purge drops expired counters.
func (l *Limiter) purge() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for key, c := range l.counters {
		if now.After(c.expiresAt) {
			delete(l.counters, key)
		}
	}
}
