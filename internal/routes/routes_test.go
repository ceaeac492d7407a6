package routes

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"travelblog/internal/authz"
	"travelblog/internal/handlers"
	"travelblog/internal/i18n"
	"travelblog/internal/middleware"
	"travelblog/internal/models"
	"travelblog/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "routes-test-secret"

type users map[int64]*models.User

func (u users) Me(_ context.Context, id int64) (*models.User, error) {
	if x, ok := u[id]; ok {
		return x, nil
	}
	return nil, models.NewUnauthorizedError(i18n.MsgUnauthorized)
}

// loginOnly отвечает на вход всегда неверными учётными данными.
type loginOnly struct{}

func (loginOnly) Register(context.Context, models.RegisterRequest) (*models.AuthResponse, error) {
	return nil, models.NewValidationError(i18n.MsgAuthRegistrationClosed)
}

func (loginOnly) Login(context.Context, models.LoginRequest) (*models.AuthResponse, error) {
	return nil, models.NewUnauthorizedError(i18n.MsgAuthInvalidCredentials)
}

func (loginOnly) Logout(context.Context, *utils.Claims) error { return nil }

func (loginOnly) UpdateDetails(context.Context, int64, models.UpdateDetailsRequest) (*models.User, error) {
	return nil, nil
}

func (loginOnly) UpdatePassword(context.Context, int64, models.UpdatePasswordRequest) (*models.AuthResponse, error) {
	return nil, nil
}

var (
	adminUser  = &models.User{ID: 1, Role: models.RoleAdmin}
	editorUser = &models.User{ID: 2, Role: models.RoleEditor}
	plainUser  = &models.User{ID: 3, Role: models.RoleUser}
)

// newRouter собирает маршруты; сервисы, до которых запрос доходить не должен, — nil.
func newRouter(t *testing.T, rdb *redis.Client) *mux.Router {
	t.Helper()
	known := users{adminUser.ID: adminUser, editorUser.ID: editorUser, plainUser.ID: plainUser}
	h := Handlers{
		Article:  handlers.NewArticleHandler(nil, 1<<20),
		Search:   handlers.NewSearchHandler(nil),
		Taxonomy: handlers.NewTaxonomyHandler(nil),
		Comment:  handlers.NewCommentHandler(nil),
		Auth:     handlers.NewAuthHandler(loginOnly{}),
		Password: handlers.NewPasswordHandler(nil),
		User:     handlers.NewUserHandler(nil, 1<<20),
		Setting:  handlers.NewSettingHandler(nil, 1<<20),
		Stats:    handlers.NewStatsHandler(nil),
		Media:    handlers.NewMediaHandler(nil, 1<<20),
		Logs:     handlers.NewLogsHandler(t.TempDir(), 7),
		Health:   handlers.NewHealthHandler(nil),
	}
	d := Deps{
		Auth:    middleware.NewAuth(secret, known, nil),
		Policy:  authz.Default(),
		Limiter: middleware.NewRateLimiter(rdb, 2, time.Minute),
	}
	r := mux.NewRouter()
	InitRoutes(r, h, d)
	return r
}

func call(r http.Handler, method, path string, u *models.User, t *testing.T) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	if u != nil {
		tok, err := utils.GenerateToken(secret, u.ID, string(u.Role), time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAccessMatrix(t *testing.T) {
	r := newRouter(t, nil)

	cases := []struct {
		method, path string
		user         *models.User
		want         int
	}{
		{http.MethodPost, "/api/blogs", nil, http.StatusUnauthorized},
		{http.MethodPost, "/api/blogs", plainUser, http.StatusForbidden},
		{http.MethodPut, "/api/blogs/5", plainUser, http.StatusForbidden},
		{http.MethodDelete, "/api/blogs/5", nil, http.StatusUnauthorized},
		{http.MethodPut, "/api/blogs/5/cover", plainUser, http.StatusForbidden},
		{http.MethodPost, "/api/blogs/5/comments", nil, http.StatusUnauthorized},
		{http.MethodGet, "/api/comments", plainUser, http.StatusForbidden},
		{http.MethodPut, "/api/comments/1/status", plainUser, http.StatusForbidden},
		{http.MethodGet, "/api/users", editorUser, http.StatusForbidden},
		{http.MethodDelete, "/api/users/3", editorUser, http.StatusForbidden},
		{http.MethodPut, "/api/users/3/avatar", plainUser, http.StatusForbidden},
		{http.MethodGet, "/api/settings", editorUser, http.StatusForbidden},
		{http.MethodPut, "/api/settings/logo", editorUser, http.StatusForbidden},
		{http.MethodGet, "/api/stats/dashboard", plainUser, http.StatusForbidden},
		{http.MethodGet, "/api/media", plainUser, http.StatusForbidden},
		{http.MethodPost, "/api/media", nil, http.StatusUnauthorized},
		{http.MethodGet, "/api/admin/logs/days", editorUser, http.StatusForbidden},
		{http.MethodGet, "/api/auth/me", nil, http.StatusUnauthorized},
		{http.MethodPost, "/api/auth/logout", nil, http.StatusUnauthorized},
		{http.MethodPut, "/api/auth/updatedetails", nil, http.StatusUnauthorized},
	}
	for _, c := range cases {
		rec := call(r, c.method, c.path, c.user, t)
		assert.Equal(t, c.want, rec.Code, "%s %s", c.method, c.path)
	}
}

func TestPublicRoutes(t *testing.T) {
	r := newRouter(t, nil)

	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/health", nil, t).Code)
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/ready", nil, t).Code)
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/admin/logs/days", adminUser, t).Code)
	assert.Equal(t, http.StatusNotFound, call(r, http.MethodGet, "/api/nothing", nil, t).Code)

	rec := call(r, http.MethodPost, "/api/auth/login", nil, t)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginIsRateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	r := newRouter(t, rdb)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodPost, "/api/auth/login", nil, t).Code)
	}
	rec := call(r, http.MethodPost, "/api/auth/login", nil, t)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// другие маршруты считаются отдельно
	assert.Equal(t, http.StatusBadRequest, call(r, http.MethodPost, "/api/auth/register", nil, t).Code)
}
