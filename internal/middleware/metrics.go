package middleware

import (
	"net/http"
	"strconv"
	"time"

	"travelblog/internal/observability"
)

// Metrics считает запросы и латентность по шаблону маршрута. Ставится через router.Use.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := recorder(w)
		next.ServeHTTP(rec, r)

		route := routeTemplate(r)
		observability.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		observability.HTTPDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
