package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"travelblog/internal/i18n"
	"travelblog/internal/logger"
	"travelblog/internal/observability"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimiter — фиксированное окно на redis: INCR + EXPIRE по ключу rl:<scope>:<ip>.
// Без redis или при его ошибке запросы пропускаются.
type RateLimiter struct {
	rdb    *redis.Client
	limit  int64
	window time.Duration
}

func NewRateLimiter(rdb *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{rdb: rdb, limit: int64(limit), window: window}
}

func (l *RateLimiter) Limit(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil || l.rdb == nil || l.limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := fmt.Sprintf("rl:%s:%s", scope, clientIP(r))

			n, err := l.rdb.Incr(ctx, key).Result()
			if err == nil && n == 1 {
				err = l.rdb.Expire(ctx, key, l.window).Err()
			}
			if err != nil {
				logger.WithCtx(ctx).Warn("RateLimit: redis недоступен, запрос пропущен", zap.String("scope", scope), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			if n > l.limit {
				observability.RateLimited.WithLabelValues(scope).Inc()
				retry, err := l.rdb.TTL(ctx, key).Result()
				if err != nil || retry <= 0 {
					retry = l.window
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(retry.Round(time.Second).Seconds())))
				logger.WithCtx(ctx).Warn("RateLimit: превышен лимит", zap.String("scope", scope), zap.String("key", key))
				deny(w, r, http.StatusTooManyRequests, i18n.MsgTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP — первый адрес из X-Forwarded-For (сервис стоит за прокси), иначе RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
