package middleware

import (
	"context"
	"net/http"
	"strings"

	"travelblog/internal/i18n"
	"travelblog/internal/logger"
	"travelblog/internal/models"
	"travelblog/internal/utils"

	"go.uber.org/zap"
)

// UserLoader загружает пользователя по id из токена.
type UserLoader interface {
	Me(ctx context.Context, id int64) (*models.User, error)
}

// RevocationChecker — чёрный список токенов (по jti).
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type Auth struct {
	secret  string
	users   UserLoader
	revoked RevocationChecker
}

func NewAuth(secret string, users UserLoader, revoked RevocationChecker) *Auth {
	return &Auth{secret: secret, users: users, revoked: revoked}
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// authenticate проверяет токен, чёрный список и существование пользователя.
func (a *Auth) authenticate(r *http.Request, token string) (*models.User, *utils.Claims, bool) {
	ctx := r.Context()
	log := logger.WithCtx(ctx)

	claims, err := utils.ParseToken(a.secret, token)
	if err != nil {
		log.Warn("JWTAuth: неверный или просроченный токен", zap.Error(err))
		return nil, nil, false
	}

	if a.revoked != nil {
		revoked, err := a.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			// redis недоступен — пропускаем, токен всё равно проверен подписью
			log.Warn("JWTAuth: не удалось проверить чёрный список", zap.Error(err))
		}
		if revoked {
			log.Warn("JWTAuth: токен отозван", zap.String("jti", claims.ID))
			return nil, nil, false
		}
	}

	u, err := a.users.Me(ctx, claims.UserID)
	if err != nil {
		log.Warn("JWTAuth: пользователь токена не найден", zap.Int64("claims_user_id", claims.UserID), zap.Error(err))
		return nil, nil, false
	}
	return u, claims, true
}

// Protect пропускает только запросы с действительным Bearer-токеном.
func (a *Auth) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearer(r)
		if token == "" {
			logger.WithCtx(r.Context()).Warn("JWTAuth: отсутствует access token")
			deny(w, r, http.StatusUnauthorized, i18n.MsgUnauthorized)
			return
		}
		u, claims, ok := a.authenticate(r, token)
		if !ok {
			deny(w, r, http.StatusUnauthorized, i18n.MsgUnauthorized)
			return
		}
		markUser(w, u)
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), u, claims)))
	})
}

// OptionalAuth прикрепляет пользователя, если токен действителен; иначе запрос идёт анонимно.
func (a *Auth) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := bearer(r); token != "" {
			if u, claims, ok := a.authenticate(r, token); ok {
				markUser(w, u)
				r = r.WithContext(withUser(r.Context(), u, claims))
			}
		}
		next.ServeHTTP(w, r)
	})
}
