package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"travelblog/internal/i18n"
	"travelblog/internal/logger"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

// Recoverer перехватывает панику, пишет стек в лог, отправляет событие в Sentry
// (если он настроен) и отвечает 500 в общем формате.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.WithCtx(r.Context()).Error("panic recovered",
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()),
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method),
			)

			hub := sentry.GetHubFromContext(r.Context())
			if hub == nil {
				hub = sentry.CurrentHub().Clone()
			}
			hub.Scope().SetRequest(r)
			hub.RecoverWithContext(r.Context(), fmt.Errorf("panic: %v", rec))

			deny(w, r, http.StatusInternalServerError, i18n.MsgServerError)
		}()
		next.ServeHTTP(w, r)
	})
}
