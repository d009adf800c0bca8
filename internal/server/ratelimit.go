package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"folio/internal/errors"

	"golang.org/x/time/rate"
)

// limiterEvictionAge is both the cleanup interval and the idle time after which a limiter is dropped
const limiterEvictionAge = 10 * time.Minute

// Route groups with separate budgets
const (
	scopeResume  = "resume"
	scopeContact = "contact"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LimiterManager keeps one token bucket per scope and client key.
// Idle buckets are evicted in the background.
type LimiterManager struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	rate     rate.Limit
	burst    int
	done     chan struct{}
	once     sync.Once
	logger   *errors.Logger
}

// NewRateLimiter creates a new manager.
// requestsPerMin is the refill rate, burstCapacity is the token bucket size.
func NewRateLimiter(requestsPerMin, burstCapacity int, logger *errors.Logger) *LimiterManager {
	m := &LimiterManager{
		limiters: make(map[string]*clientLimiter),
		rate:     rate.Limit(float64(requestsPerMin) / 60.0),
		burst:    burstCapacity,
		done:     make(chan struct{}),
		logger:   logger,
	}

	go m.cleanupRoutine(limiterEvictionAge)
	return m
}

// Allow takes a token from the bucket of key within scope
func (m *LimiterManager) Allow(scope, key string) bool {
	m.mu.Lock()
	id := scope + "|" + key
	entry, exists := m.limiters[id]
	if !exists {
		entry = &clientLimiter{limiter: rate.NewLimiter(m.rate, m.burst)}
		m.limiters[id] = entry
	}
	entry.lastSeen = time.Now()
	m.mu.Unlock()

	return entry.limiter.Allow()
}

// GetStats reports the configured budget and the live buckets per scope
func (m *LimiterManager) GetStats() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	perScope := make(map[string]int)
	for id := range m.limiters {
		scope, _, _ := strings.Cut(id, "|")
		perScope[scope]++
	}

	return map[string]any{
		"active_limiters": len(m.limiters),
		"by_scope":        perScope,
		"rate_per_minute": float64(m.rate) * 60.0,
		"burst_capacity":  m.burst,
	}
}

func (m *LimiterManager) cleanupRoutine(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup(interval)
		case <-m.done:
			return
		}
	}
}

// cleanup drops buckets idle for longer than evictionAge
func (m *LimiterManager) cleanup(evictionAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-evictionAge)
	for id, entry := range m.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(m.limiters, id)
		}
	}
	m.logger.Debug("Rate limiter cleanup completed", "remaining_limiters", len(m.limiters))
}

// Close stops the cleanup goroutine
func (m *LimiterManager) Close() {
	m.once.Do(func() { close(m.done) })
}

// rateLimitMiddleware rejects requests beyond the per-client budget of scope with 429
func (s *Server) rateLimitMiddleware(scope string) func(http.HandlerFunc) http.HandlerFunc {
	if s.RateLimiter == nil {
		return func(next http.HandlerFunc) http.HandlerFunc { return next }
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := getRateLimitKey(r, s.RateLimit.ByAPIKey, s.RateLimit.ByIP)
			if key == "" || s.RateLimiter.Allow(scope, key) {
				next(w, r)
				return
			}

			limitType, _, _ := strings.Cut(key, ":")
			s.deps.Observability.RecordRateLimitHit(r.Context(), scope+"_"+limitType)
			s.Logger.Info("Rate limit exceeded",
				"scope", scope,
				"limit_type", limitType,
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r))
			w.Header().Set("Retry-After", "60")
			writeErrorResponse(w, "Rate limit exceeded", "Too many requests", http.StatusTooManyRequests)
		}
	}
}

func getRateLimitKey(r *http.Request, byAPIKey, byIP bool) string {
	if byAPIKey {
		if apiKey := requestAPIKey(r); apiKey != "" {
			return "api:" + apiKey
		}
	}

	if byIP {
		return "ip:" + getClientIP(r)
	}

	return ""
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := parseFirstIP(xff); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(xri); ip != nil {
			return xri
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// parseFirstIP parses the first valid IP from a comma-separated list
func parseFirstIP(ips string) string {
	for ip := range strings.SplitSeq(ips, ",") {
		ip = strings.TrimSpace(ip)
		if parsed := net.ParseIP(ip); parsed != nil {
			return ip
		}
	}
	return ""
}
