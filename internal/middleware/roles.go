package middleware

import (
	"errors"
	"net/http"

	"travelblog/internal/authz"
	"travelblog/internal/i18n"
	"travelblog/internal/logger"
	"travelblog/internal/models"

	"go.uber.org/zap"
)

// Authorize — роль пользователя должна входить в список. Ставится после Protect.
func Authorize(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r.Context())
			if !ok {
				deny(w, r, http.StatusUnauthorized, i18n.MsgUnauthorized)
				return
			}
			if !authz.HasRole(u.Role, roles) {
				logger.WithCtx(r.Context()).Warn("Доступ запрещён", zap.String("role", string(u.Role)))
				deny(w, r, http.StatusForbidden, i18n.MsgForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Guard проверяет роль по таблице прав. Владение ресурсом проверяет сервис.
func Guard(p *authz.Policy, res authz.Resource, act authz.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := Actor(r.Context())
			err := p.CheckRole(actor, res, act)
			switch {
			case errors.Is(err, authz.ErrUnauthenticated):
				deny(w, r, http.StatusUnauthorized, i18n.MsgUnauthorized)
				return
			case err != nil:
				logger.WithCtx(r.Context()).Warn("Доступ запрещён",
					zap.String("role", string(actor.Role)),
					zap.String("resource", string(res)),
					zap.String("action", string(act)))
				deny(w, r, http.StatusForbidden, i18n.MsgForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
