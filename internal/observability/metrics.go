// Package observability — метрики Prometheus сервиса.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelblog_http_requests_total",
		Help: "Total number of HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "travelblog_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	// RedisErrors считает ошибки redis по имени команды (redis.Nil не считается).
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelblog_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	ArticleViews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "travelblog_article_views_total",
		Help: "Total number of single-article reads",
	})

	Uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelblog_uploads_total",
		Help: "Accepted and rejected uploads by target",
	}, []string{"target", "result"})

	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelblog_emails_total",
		Help: "Email jobs by result (sent, failed, dropped)",
	}, []string{"result"})

	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelblog_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	}, []string{"scope"})
)
