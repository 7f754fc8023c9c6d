package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"soulp/logs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// cleanupInterval 超过这个时间没有请求的 IP 记录会被清理
const cleanupInterval = 2 * time.Minute

// RateLimiter 每个 IP 在一秒窗口内的请求次数限制
// 清理在请求路径上顺带完成，不启动后台 goroutine
type RateLimiter struct {
	mu          sync.Mutex
	limit       int
	window      time.Duration
	counts      map[string]int
	lastReset   map[string]time.Time
	lastCleanup time.Time
	now         func() time.Time
}

// NewRateLimiter limit<=0 表示不限
func NewRateLimiter(limit int) *RateLimiter {
	return &RateLimiter{
		limit:     limit,
		window:    time.Second,
		counts:    make(map[string]int),
		lastReset: make(map[string]time.Time),
		now:       time.Now,
	}
}

// Allow 记一次请求，超过阈值返回 false
func (rl *RateLimiter) Allow(ip string) bool {
	if rl == nil || rl.limit <= 0 {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastCleanup) > cleanupInterval {
		for k, last := range rl.lastReset {
			if now.Sub(last) > 2*rl.window {
				delete(rl.lastReset, k)
				delete(rl.counts, k)
			}
		}
		rl.lastCleanup = now
	}

	// 窗口过期则重置计数
	if last, ok := rl.lastReset[ip]; !ok || now.Sub(last) > rl.window {
		rl.counts[ip] = 0
		rl.lastReset[ip] = now
	}
	rl.counts[ip]++
	return rl.counts[ip] <= rl.limit
}

// Handler 超限返回 429
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientIP(r)) {
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// BodyLimit 限制请求体大小
func BodyLimit(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if n > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// unmatchedRoute 没有命中路由模板时的标签，避免原始路径撑爆指标基数
const unmatchedRoute = "unmatched"

// StatusObserver 每个请求结束后回调路由模板和状态码
type StatusObserver func(route string, status int)

// AccessLog 记录访问日志，并把路由模板和状态码交给 observe
func AccessLog(observe StatusObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := unmatchedRoute
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logs.Debug("[HTTP] %s %s (%s) -> %d (%s) req=%s",
				r.Method, r.URL.Path, route, status, time.Since(start), chimw.GetReqID(r.Context()))
			if observe != nil {
				observe(route, status)
			}
		})
	}
}
