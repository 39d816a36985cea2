package handlers

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ersonp/campaign-core/internal/domain/entities"
	"github.com/ersonp/campaign-core/internal/domain/services"
	"github.com/ersonp/campaign-core/internal/infrastructure/metrics"
)

const requestIDHeader = "X-Request-ID"

type contextKey int

const (
	userKey contextKey = iota
	routeKey
)

// routeInfo is filled in by the router once a route matches so the outer
// middleware can label metrics and logs with the path template.
type routeInfo struct {
	template string
}

// withUser stores the authenticated user in ctx.
func withUser(ctx context.Context, user *entities.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// userFrom returns the authenticated user. It is only valid behind requireAuth.
func userFrom(r *http.Request) *entities.User {
	user, _ := r.Context().Value(userKey).(*entities.User)
	return user
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// observe assigns a request id, attaches a request-scoped logger, records
// Prometheus metrics and writes one access log line per request.
func observe(logger zerolog.Logger, m *metrics.Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		done := m.RequestStarted()

		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		reqLogger := logger.With().Str("request_id", requestID).Logger()
		info := &routeInfo{}
		ctx := context.WithValue(reqLogger.WithContext(r.Context()), routeKey, info)

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r.WithContext(ctx))
		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		done(r.Method, info.template, rec.status)
		reqLogger.Info().
			Str("method", r.Method).
			Str("route", info.template).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// captureRoute records the matched path template. It runs inside the router.
func captureRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if info, ok := r.Context().Value(routeKey).(*routeInfo); ok {
			if route := mux.CurrentRoute(r); route != nil {
				info.template, _ = route.GetPathTemplate()
			}
		}
		next.ServeHTTP(w, r)
	})
}

// recoverPanics turns a handler panic into a 500.
func recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				zerolog.Ctx(r.Context()).Error().Interface("panic", v).Msg("handler panicked")
				respondError(w, http.StatusInternalServerError, internalErrorMessage)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requireAuth resolves the session cookie to a user before the handler runs.
func requireAuth(auth *services.AuthService, cookieName string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if c, err := r.Cookie(cookieName); err == nil {
				token = c.Value
			}

			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				respondFailure(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
		})
	}
}

// ipLimiter applies a token bucket per client address. Clients idle long
// enough for their bucket to refill are evicted, since a fresh bucket
// behaves the same.
type ipLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPLimiter(perMinute, burst int) *ipLimiter {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	idle := time.Minute
	if perMinute > 0 {
		interval := time.Minute / time.Duration(perMinute)
		limit = rate.Every(interval)
		idle = time.Duration(burst) * interval
	}
	return &ipLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   limit,
		burst:   burst,
		idle:    idle,
		now:     time.Now,
	}
}

func (l *ipLimiter) allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	if now.Sub(l.lastSweep) >= l.idle {
		l.sweep(now)
	}
	c, ok := l.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	l.mu.Unlock()

	return c.limiter.AllowN(now, 1)
}

// sweep drops idle clients. Callers hold mu.
func (l *ipLimiter) sweep(now time.Time) {
	for key, c := range l.clients {
		if now.Sub(c.lastSeen) >= l.idle {
			delete(l.clients, key)
		}
	}
	l.lastSweep = now
}

// middleware rejects requests over the limit with 429.
func (l *ipLimiter) middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientIP(r)) {
			zerolog.Ctx(r.Context()).Warn().Str("client", clientIP(r)).Msg("rate limit exceeded")
			w.Header().Set("Retry-After", "60")
			respondError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next(w, r)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
