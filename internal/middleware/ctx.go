package middleware

import (
	"context"
	"net/http"

	"travelblog/internal/authz"
	"travelblog/internal/i18n"
	"travelblog/internal/models"
	"travelblog/internal/reqctx"
	"travelblog/internal/utils"
	"travelblog/internal/utils/helpers"
)

type ctxKey int

const (
	ctxUser ctxKey = iota
	ctxClaims
)

func withUser(ctx context.Context, u *models.User, claims *utils.Claims) context.Context {
	ctx = context.WithValue(ctx, ctxUser, u)
	ctx = context.WithValue(ctx, ctxClaims, claims)
	return reqctx.WithUserID(ctx, u.ID)
}

// CurrentUser — пользователь, загруженный Protect/OptionalAuth.
func CurrentUser(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(ctxUser).(*models.User)
	return u, ok && u != nil
}

// Claims — разобранный токен текущего запроса (нужен для logout).
func Claims(ctx context.Context) (*utils.Claims, bool) {
	c, ok := ctx.Value(ctxClaims).(*utils.Claims)
	return c, ok && c != nil
}

// Actor возвращает аноним-актора, если пользователь не аутентифицирован.
func Actor(ctx context.Context) authz.Actor {
	u, ok := CurrentUser(ctx)
	if !ok {
		return authz.Actor{}
	}
	return authz.Actor{ID: u.ID, Role: u.Role}
}

func deny(w http.ResponseWriter, r *http.Request, status int, key string) {
	helpers.Error(w, status, i18n.T(reqctx.GetLang(r.Context()), key))
}
