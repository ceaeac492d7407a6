package middleware

import (
	"net/http"

	"travelblog/internal/i18n"
	"travelblog/internal/reqctx"

	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

// RequestID присваивает запросу id (или берёт из заголовка) и определяет язык ответа.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(HeaderRequestID)
		if rid == "" || len(rid) > 64 {
			rid = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, rid)

		ctx := reqctx.WithRequestID(r.Context(), rid)
		ctx = reqctx.WithLang(ctx, i18n.FromRequest(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
