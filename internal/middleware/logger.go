package middleware

import (
	"net/http"
	"time"

	"travelblog/internal/logger"

	"go.uber.org/zap"
)

// Logging пишет по строке на запрос. Пользователя, найденного Protect во вложенном
// обработчике, Logging узнаёт через statusRecorder.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := recorder(w)
		next.ServeHTTP(rec, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("route", routeTemplate(r)),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		}
		if rec.user != nil {
			fields = append(fields, zap.Int64("user_id", rec.user.ID), zap.String("role", string(rec.user.Role)))
		}

		log := logger.WithCtx(r.Context())
		switch {
		case rec.status >= 500:
			log.Error("HTTP-запрос", fields...)
		case rec.status >= 400:
			log.Warn("HTTP-запрос", fields...)
		default:
			log.Info("HTTP-запрос", fields...)
		}
	})
}
