package httpx

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/marabinga/passport-dc/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines a token bucket per key.
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

func (c RateLimitConfig) limit() rate.Limit {
	if c.Window <= 0 || c.RequestsPerWindow <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(c.RequestsPerWindow) / c.Window.Seconds())
}

// Profiles used by the portal routes. Each can be overridden with
// RATELIMIT_{NAME}_REQUESTS, RATELIMIT_{NAME}_WINDOW_SEC and RATELIMIT_{NAME}_BURST.
var (
	// LoginLimit guards /auth/discord and its callback.
	LoginLimit = RateLimitConfig{RequestsPerWindow: 10, Window: time.Minute, Burst: 10}

	// JoinLimit guards guild joins, which spend the bot's Discord quota.
	JoinLimit = RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	// APILimit is for authenticated reads.
	APILimit = RateLimitConfig{RequestsPerWindow: 60, Window: time.Minute, Burst: 60}

	// PublicLimit is for health and docs endpoints.
	PublicLimit = RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}
)

func init() {
	LoginLimit = RateLimitFromEnv("LOGIN", LoginLimit)
	JoinLimit = RateLimitFromEnv("JOIN", JoinLimit)
	APILimit = RateLimitFromEnv("API", APILimit)
	PublicLimit = RateLimitFromEnv("PUBLIC", PublicLimit)
}

// RateLimitFromEnv overlays RATELIMIT_{name}_* variables onto def.
// Unparseable or non-positive values are ignored.
func RateLimitFromEnv(name string, def RateLimitConfig) RateLimitConfig {
	positive := func(key string) (int, bool) {
		n, err := strconv.Atoi(os.Getenv("RATELIMIT_" + name + "_" + key))
		return n, err == nil && n > 0
	}

	cfg := def
	if n, ok := positive("REQUESTS"); ok {
		cfg.RequestsPerWindow = n
	}
	if n, ok := positive("WINDOW_SEC"); ok {
		cfg.Window = time.Duration(n) * time.Second
	}
	if n, ok := positive("BURST"); ok {
		cfg.Burst = n
	}
	return cfg
}

// KeyFunc picks the bucket a request is charged to. An empty key skips
// limiting for that request.
type KeyFunc func(*http.Request) string

// ClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SessionUser keys by the authenticated Discord user id.
func SessionUser(r *http.Request) string {
	id, _ := UserIDFromContext(r.Context())
	return id
}

// JoinKeys concatenates the non-empty keys of fns with sep.
func JoinKeys(sep string, fns ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(fns))
		for _, fn := range fns {
			if k := fn(r); k != "" {
				parts = append(parts, k)
			}
		}
		return strings.Join(parts, sep)
	}
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// Limiter holds one token bucket per key and forgets idle keys.
type Limiter struct {
	cfg     RateLimitConfig
	idleTTL time.Duration

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

// NewLimiter builds a Limiter. Buckets idle for longer than the window
// (minimum five minutes) are dropped.
func NewLimiter(cfg RateLimitConfig) *Limiter {
	return &Limiter{
		cfg:       cfg,
		idleTTL:   max(cfg.Window, 5*time.Minute),
		buckets:   make(map[string]*bucket),
		lastSweep: time.Now(),
	}
}

// Allow spends one token for key. When it is refused, retryAfter says how
// long until the next token.
func (l *Limiter) Allow(key string) (ok bool, retryAfter time.Duration) {
	now := time.Now()

	l.mu.Lock()
	b, found := l.buckets[key]
	if !found {
		b = &bucket{lim: rate.NewLimiter(l.cfg.limit(), l.cfg.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	if now.Sub(l.lastSweep) > l.idleTTL {
		l.sweepLocked(now)
	}
	l.mu.Unlock()

	r := b.lim.ReserveN(now, 1)
	if !r.OK() {
		return false, l.cfg.Window
	}
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return false, d
	}
	return true, 0
}

// Len reports how many keys are currently tracked.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *Limiter) sweepLocked(now time.Time) {
	l.lastSweep = now
	for k, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idleTTL {
			delete(l.buckets, k)
		}
	}
}

// Middleware charges each request to key(r) and answers 429 when the bucket is empty.
func (l *Limiter) Middleware(key KeyFunc) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				slogx.FromContext(r.Context()).Warn("rate limit: no key, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			ok, wait := l.Allow(k)
			if !ok {
				secs := max(int(wait.Seconds()+0.5), 1)
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.RequestsPerWindow))
				w.Header().Set("X-RateLimit-Window", l.cfg.Window.String())

				slogx.FromContext(r.Context()).Warn("rate limit exceeded",
					"key", k,
					"path", r.URL.Path,
					"retry_after", secs,
				)
				WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded",
					"Too many requests. Please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByIP limits per client address.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	return NewLimiter(cfg).Middleware(ClientIP)
}

// RateLimitByUser limits per signed-in user, falling back to the client
// address for anonymous requests.
func RateLimitByUser(cfg RateLimitConfig) Middleware {
	return NewLimiter(cfg).Middleware(JoinKeys(":", SessionUser, ClientIP))
}
