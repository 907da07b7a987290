package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
	"todoTracker/internal/logger"
	"todoTracker/internal/service"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const RequestIdKey contextKey = "request_id"

const requestIDHeader = "X-Request-ID"

func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), RequestIdKey, id)))
	})
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIdKey).(string); ok {
		return id
	}
	return ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.status == 0 {
		sr.status = code
		sr.ResponseWriter.WriteHeader(code)
	}
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.WriteHeader(http.StatusOK)
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

// Logging пишет одну строку на запрос. Шаблон маршрута и id задачи известны
// только после роутинга chi, поэтому читаются после next
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		fields := []zap.Field{
			zap.String("request_id", GetRequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("route", routePattern(r)),
			zap.Int("status", rec.status),
			zap.Int("bytes_written", rec.bytes),
			zap.Duration("ms", time.Since(start)),
		}
		if id := taskID(r); id != 0 {
			fields = append(fields, zap.Int64("task_id", id))
		}

		level := zap.InfoLevel
		switch {
		case rec.status >= 500:
			level = zap.ErrorLevel
		case rec.status >= 400:
			level = zap.WarnLevel
		}
		logger.Log(level, "HTTP: Запрос обработан", fields...)
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

func taskID(r *http.Request) int64 {
	if chi.RouteContext(r.Context()) == nil {
		return 0
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

type window struct {
	count   int
	resetAt time.Time
}

// limiter - фиксированное окно на IP клиента
type limiter struct {
	mu      sync.Mutex
	limit   int
	period  time.Duration
	now     func() time.Time
	clients map[string]*window
}

// allow возвращает остаток запросов в окне и момент его сброса
func (l *limiter) allow(ip string) (remaining int, resetAt time.Time, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	win, exists := l.clients[ip]
	if !exists || !now.Before(win.resetAt) {
		if !exists {
			l.sweep(now)
		}
		win = &window{resetAt: now.Add(l.period)}
		l.clients[ip] = win
	}
	if win.count >= l.limit {
		return 0, win.resetAt, false
	}
	win.count++
	return l.limit - win.count, win.resetAt, true
}

// sweep убирает истёкшие окна, чтобы карта не росла с числом клиентов
func (l *limiter) sweep(now time.Time) {
	for ip, win := range l.clients {
		if !now.Before(win.resetAt) {
			delete(l.clients, ip)
		}
	}
}

// RateLimit ограничивает число запросов с одного IP за period; limit <= 0 отключает ограничение.
// Отказ отдаётся в форме бизнес-ошибки RATE_LIMITED
func RateLimit(limit int, period time.Duration) func(http.Handler) http.Handler {
	return rateLimit(limit, period, time.Now)
}

func rateLimit(limit int, period time.Duration, now func() time.Time) func(http.Handler) http.Handler {
	if period <= 0 {
		period = time.Minute
	}
	l := &limiter{
		limit:   limit,
		period:  period,
		now:     now,
		clients: make(map[string]*window),
	}

	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			remaining, resetAt, ok := l.allow(clientIP(r))

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

			if !ok {
				retryAfter := int(resetAt.Sub(l.now()).Round(time.Second).Seconds())
				rejectRateLimited(w, r, retryAfter)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rejectRateLimited(w http.ResponseWriter, r *http.Request, retryAfter int) {
	busErr := service.NewRateLimitError(retryAfter)
	busErr.Details["request_id"] = GetRequestID(r.Context())

	logger.Warn("HTTP: Превышен лимит запросов",
		zap.String("client_ip", clientIP(r)),
		zap.Int("retry_after", retryAfter))

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = sonic.ConfigStd.NewEncoder(w).Encode(map[string]any{
		"error":   busErr.Code,
		"message": busErr.Message,
		"details": busErr.Details,
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
