package httputil

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter limits requests per client IP with a token bucket per client.
// Idle clients are dropped during a sweep that runs every cleanupEvery calls.
type RateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*client
	limit        rate.Limit
	burst        int
	idle         time.Duration
	now          func() time.Time
	requestCount int
	cleanupEvery int
	proxies      []netip.Prefix
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perSecond requests per client with bursts of burst.
// A burst below 1 is raised to 1.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		clients:      make(map[string]*client),
		limit:        rate.Limit(perSecond),
		burst:        burst,
		idle:         10 * time.Minute,
		now:          time.Now,
		cleanupEvery: 100,
	}
}

// Allow reports whether a request from key may proceed.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.requestCount++
	if rl.requestCount%rl.cleanupEvery == 0 {
		rl.cleanupIdle(now)
		rl.requestCount = 0
	}

	c, ok := rl.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) cleanupIdle(now time.Time) {
	for key, c := range rl.clients {
		if now.Sub(c.lastSeen) > rl.idle {
			delete(rl.clients, key)
		}
	}
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(rl.ClientIP(r)) {
			w.Header().Set("Retry-After", "1")
			_ = WriteJSON(w, http.StatusTooManyRequests, ErrorBody{Error: "Rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TrustProxies makes ClientIP honour X-Forwarded-For on requests arriving
// from one of proxies, given as CIDR prefixes or plain addresses. Call it
// before the limiter serves requests.
func (rl *RateLimiter) TrustProxies(proxies ...string) error {
	for _, p := range proxies {
		if !strings.Contains(p, "/") {
			addr, err := netip.ParseAddr(p)
			if err != nil {
				return fmt.Errorf("invalid trusted proxy %q: %w", p, err)
			}
			addr = addr.Unmap()
			rl.proxies = append(rl.proxies, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		prefix, err := netip.ParsePrefix(p)
		if err != nil {
			return fmt.Errorf("invalid trusted proxy %q: %w", p, err)
		}
		rl.proxies = append(rl.proxies, prefix.Masked())
	}
	return nil
}

// ClientIP returns the address requests are limited by. Without trusted
// proxies it is the host part of RemoteAddr and X-Forwarded-For is ignored.
// Behind trusted proxies it is the right-most forwarded address that is not
// itself a trusted proxy.
func (rl *RateLimiter) ClientIP(r *http.Request) string {
	ip := remoteHost(r)
	if !rl.isTrusted(ip) {
		return ip
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		ip = hop
		if !rl.isTrusted(hop) {
			break
		}
	}
	return ip
}

func (rl *RateLimiter) isTrusted(ip string) bool {
	if len(rl.proxies) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range rl.proxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteHost(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
