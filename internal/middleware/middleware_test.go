package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"travelblog/internal/authz"
	"travelblog/internal/models"
	"travelblog/internal/reqctx"
	"travelblog/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "mw-secret"

type usersFunc func(ctx context.Context, id int64) (*models.User, error)

func (f usersFunc) Me(ctx context.Context, id int64) (*models.User, error) { return f(ctx, id) }

type revokedSet map[string]bool

func (s revokedSet) IsRevoked(_ context.Context, jti string) (bool, error) { return s[jti], nil }

func knownUsers(users ...*models.User) usersFunc {
	return func(_ context.Context, id int64) (*models.User, error) {
		for _, u := range users {
			if u.ID == id {
				return u, nil
			}
		}
		return nil, errors.New("not found")
	}
}

func token(t *testing.T, id int64, role models.Role) string {
	t.Helper()
	tok, err := utils.GenerateToken(secret, id, string(role), time.Hour)
	require.NoError(t, err)
	return tok
}

func echoActor() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a := Actor(r.Context())
		uid, _ := reqctx.GetUserID(r.Context())
		w.Header().Set("X-Actor", strconv.FormatInt(a.ID, 10)+":"+string(a.Role))
		w.Header().Set("X-Ctx-User", strconv.FormatInt(uid, 10))
		w.WriteHeader(http.StatusNoContent)
	})
}

func do(h http.Handler, tok string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestProtect(t *testing.T) {
	editor := &models.User{ID: 7, Role: models.RoleEditor}
	revokedTok := token(t, 7, models.RoleEditor)
	claims, err := utils.ParseToken(secret, revokedTok)
	require.NoError(t, err)

	auth := NewAuth(secret, knownUsers(editor), revokedSet{claims.ID: true})
	h := auth.Protect(echoActor())

	rec := do(h, token(t, 7, models.RoleEditor))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "7:editor", rec.Header().Get("X-Actor"))
	assert.Equal(t, "7", rec.Header().Get("X-Ctx-User"))

	rec = do(h, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"未授权访问"}`, rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(h, "garbage").Code)
	assert.Equal(t, http.StatusUnauthorized, do(h, revokedTok).Code, "revoked token")
	assert.Equal(t, http.StatusUnauthorized, do(h, token(t, 99, models.RoleAdmin)).Code, "deleted user")

	other, err := utils.GenerateToken("other", 7, "editor", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(h, other).Code)
}

func TestProtectUsesStoredRole(t *testing.T) {
	// роль берётся из БД, а не из токена
	u := &models.User{ID: 3, Role: models.RoleUser}
	h := NewAuth(secret, knownUsers(u), nil).Protect(echoActor())
	rec := do(h, token(t, 3, models.RoleAdmin))
	assert.Equal(t, "3:user", rec.Header().Get("X-Actor"))
}

func TestOptionalAuth(t *testing.T) {
	u := &models.User{ID: 5, Role: models.RoleAdmin}
	h := NewAuth(secret, knownUsers(u), nil).OptionalAuth(echoActor())

	assert.Equal(t, "0:", do(h, "").Header().Get("X-Actor"))
	assert.Equal(t, "0:", do(h, "broken").Header().Get("X-Actor"))

	rec := do(h, token(t, 5, models.RoleAdmin))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "5:admin", rec.Header().Get("X-Actor"))
}

func TestAuthorizeAndGuard(t *testing.T) {
	users := knownUsers(
		&models.User{ID: 1, Role: models.RoleAdmin},
		&models.User{ID: 2, Role: models.RoleEditor},
		&models.User{ID: 3, Role: models.RoleUser},
	)
	auth := NewAuth(secret, users, nil)
	adminOnly := auth.Protect(Authorize(models.RoleAdmin)(echoActor()))
	staffGuard := auth.OptionalAuth(Guard(authz.Default(), authz.Stats, authz.Read)(echoActor()))

	assert.Equal(t, http.StatusNoContent, do(adminOnly, token(t, 1, models.RoleAdmin)).Code)
	assert.Equal(t, http.StatusForbidden, do(adminOnly, token(t, 2, models.RoleEditor)).Code)

	assert.Equal(t, http.StatusNoContent, do(staffGuard, token(t, 2, models.RoleEditor)).Code)
	assert.Equal(t, http.StatusForbidden, do(staffGuard, token(t, 3, models.RoleUser)).Code)
	assert.Equal(t, http.StatusUnauthorized, do(staffGuard, "").Code)

	assert.Equal(t, http.StatusUnauthorized, do(Authorize(models.RoleAdmin)(echoActor()), "").Code)
}

func TestRequestID(t *testing.T) {
	var rid, lang string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid, _ = reqctx.GetRequestID(r.Context())
		lang = reqctx.GetLang(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/x?lang=en", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEmpty(t, rid)
	assert.Equal(t, rid, rec.Header().Get(HeaderRequestID))
	assert.Equal(t, "en", lang)

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "abc-123", rid)
	assert.Equal(t, "zh", lang)
}

func TestRecovererAnswers500(t *testing.T) {
	h := RequestID(Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))
	req := httptest.NewRequest(http.MethodGet, "/x?lang=en", nil)
	rec := httptest.NewRecorder()
	require.NotPanics(t, func() { h.ServeHTTP(rec, req) })
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Server error"}`, rec.Body.String())
}

func TestMetricsAndLoggingShareRecorder(t *testing.T) {
	u := &models.User{ID: 9, Role: models.RoleEditor}
	auth := NewAuth(secret, knownUsers(u), nil)

	var seen *statusRecorder
	router := mux.NewRouter()
	router.Use(Metrics, Logging, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = w.(*statusRecorder)
			next.ServeHTTP(w, r)
		})
	})
	router.Handle("/api/blogs/{id}", auth.Protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/blogs/{id}", routeTemplate(r))
		w.WriteHeader(http.StatusAccepted)
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/blogs/12", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, 9, models.RoleEditor))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, http.StatusAccepted, seen.status)
	assert.Same(t, u, seen.user)
}

func TestRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	limiter := NewRateLimiter(rdb, 2, time.Minute)
	h := limiter.Limit("login")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, call("10.0.0.1").Code)
	limited := call("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "60", limited.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2").Code)
	assert.Equal(t, time.Minute, mr.TTL("rl:login:10.0.0.1"))

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, call("10.0.0.1").Code)
}

func TestRateLimiterFailsOpen(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	t.Cleanup(func() { _ = rdb.Close() })

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	h := NewRateLimiter(rdb, 1, time.Minute).Limit("login")(next)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(h, "").Code)
	}
}

func TestRateLimiterWithoutRedis(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	h := NewRateLimiter(nil, 1, time.Minute).Limit("login")(next)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(h, "").Code)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", clientIP(req))
	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "203.0.113.5", clientIP(req))
}
