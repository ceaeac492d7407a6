package routes

import (
	"net/http"

	"travelblog/internal/authz"
	"travelblog/internal/handlers"
	"travelblog/internal/middleware"
	"travelblog/internal/models"

	"github.com/gorilla/mux"
)

type Handlers struct {
	Article  *handlers.ArticleHandler
	Search   *handlers.SearchHandler
	Taxonomy *handlers.TaxonomyHandler
	Comment  *handlers.CommentHandler
	Auth     *handlers.AuthHandler
	Password *handlers.PasswordHandler
	User     *handlers.UserHandler
	Setting  *handlers.SettingHandler
	Stats    *handlers.StatsHandler
	Media    *handlers.MediaHandler
	Logs     *handlers.LogsHandler
	Health   *handlers.HealthHandler
}

type Deps struct {
	Auth    *middleware.Auth
	Policy  *authz.Policy
	Limiter *middleware.RateLimiter
}

func InitRoutes(router *mux.Router, h Handlers, d Deps) {
	router.Use(middleware.Metrics, middleware.Logging)

	router.HandleFunc("/health", h.Health.Health).Methods(http.MethodGet)
	router.HandleFunc("/ready", h.Health.Ready).Methods(http.MethodGet)

	// guarded: Protect + проверка роли по таблице прав.
	guarded := func(res authz.Resource, act authz.Action, fn http.HandlerFunc) http.Handler {
		return d.Auth.Protect(middleware.Guard(d.Policy, res, act)(fn))
	}
	limited := func(scope string, fn http.HandlerFunc) http.Handler {
		return d.Limiter.Limit(scope)(fn)
	}

	api := router.PathPrefix("/api").Subrouter()

	// --- Статьи (публичное чтение, черновики видит только staff) ---
	blogs := api.PathPrefix("/blogs").Subrouter()
	blogs.Handle("", d.Auth.OptionalAuth(http.HandlerFunc(h.Article.List))).Methods(http.MethodGet)
	blogs.HandleFunc("/popular", h.Article.Popular).Methods(http.MethodGet)
	blogs.HandleFunc("/cities", h.Taxonomy.Cities).Methods(http.MethodGet)
	blogs.Handle("/slug/{slug}", d.Auth.OptionalAuth(http.HandlerFunc(h.Article.GetBySlug))).Methods(http.MethodGet)
	blogs.Handle("/{id:[0-9]+}", d.Auth.OptionalAuth(http.HandlerFunc(h.Article.Get))).Methods(http.MethodGet)
	blogs.Handle("", guarded(authz.Article, authz.Create, h.Article.Create)).Methods(http.MethodPost)
	blogs.Handle("/{id:[0-9]+}", guarded(authz.Article, authz.Update, h.Article.Update)).Methods(http.MethodPut)
	blogs.Handle("/{id:[0-9]+}", guarded(authz.Article, authz.Delete, h.Article.Delete)).Methods(http.MethodDelete)
	blogs.Handle("/{id:[0-9]+}/cover", guarded(authz.Article, authz.Upload, h.Article.UploadCover)).Methods(http.MethodPut)

	// --- Комментарии ---
	blogs.HandleFunc("/{id:[0-9]+}/comments", h.Comment.Thread).Methods(http.MethodGet)
	blogs.Handle("/{id:[0-9]+}/comments", guarded(authz.Comment, authz.Create, h.Comment.Create)).Methods(http.MethodPost)
	api.Handle("/comments", guarded(authz.Comment, authz.List, h.Comment.List)).Methods(http.MethodGet)
	api.Handle("/comments/{id:[0-9]+}/status", guarded(authz.Comment, authz.Moderate, h.Comment.SetStatus)).Methods(http.MethodPut)
	api.Handle("/comments/{id:[0-9]+}", guarded(authz.Comment, authz.Delete, h.Comment.Delete)).Methods(http.MethodDelete)

	api.HandleFunc("/categories", h.Taxonomy.Categories).Methods(http.MethodGet)
	api.HandleFunc("/search", h.Search.Search).Methods(http.MethodGet)

	// --- Аутентификация ---
	auth := api.PathPrefix("/auth").Subrouter()
	auth.Handle("/register", limited("register", h.Auth.Register)).Methods(http.MethodPost)
	auth.Handle("/login", limited("login", h.Auth.Login)).Methods(http.MethodPost)
	auth.Handle("/forgotpassword", limited("forgotpassword", h.Password.ForgotPassword)).Methods(http.MethodPost)
	auth.HandleFunc("/resetpassword/{token}", h.Password.ResetPassword).Methods(http.MethodPut)

	self := auth.PathPrefix("").Subrouter()
	self.Use(d.Auth.Protect)
	self.HandleFunc("/me", h.Auth.Me).Methods(http.MethodGet)
	self.HandleFunc("/logout", h.Auth.Logout).Methods(http.MethodGet, http.MethodPost)
	self.HandleFunc("/updatedetails", h.Auth.UpdateDetails).Methods(http.MethodPut)
	self.HandleFunc("/updatepassword", h.Auth.UpdatePassword).Methods(http.MethodPut)

	// --- Пользователи (admin) ---
	api.Handle("/users", guarded(authz.User, authz.List, h.User.List)).Methods(http.MethodGet)
	api.Handle("/users", guarded(authz.User, authz.Create, h.User.Create)).Methods(http.MethodPost)
	api.Handle("/users/{id:[0-9]+}", guarded(authz.User, authz.Read, h.User.Get)).Methods(http.MethodGet)
	api.Handle("/users/{id:[0-9]+}", guarded(authz.User, authz.Update, h.User.Update)).Methods(http.MethodPut)
	api.Handle("/users/{id:[0-9]+}", guarded(authz.User, authz.Delete, h.User.Delete)).Methods(http.MethodDelete)
	api.Handle("/users/{id:[0-9]+}/avatar", guarded(authz.User, authz.Upload, h.User.UploadAvatar)).Methods(http.MethodPut)

	// --- Настройки ---
	api.HandleFunc("/settings/public", h.Setting.Public).Methods(http.MethodGet)
	api.Handle("/settings", guarded(authz.Settings, authz.Read, h.Setting.Get)).Methods(http.MethodGet)
	api.Handle("/settings", guarded(authz.Settings, authz.Update, h.Setting.Update)).Methods(http.MethodPut)
	api.Handle("/settings/logo", guarded(authz.Settings, authz.Upload, h.Setting.UploadLogo)).Methods(http.MethodPut)
	api.Handle("/settings/favicon", guarded(authz.Settings, authz.Upload, h.Setting.UploadFavicon)).Methods(http.MethodPut)

	api.Handle("/stats/dashboard", guarded(authz.Stats, authz.Read, h.Stats.Dashboard)).Methods(http.MethodGet)

	// --- Медиатека ---
	api.Handle("/media", guarded(authz.Media, authz.List, h.Media.List)).Methods(http.MethodGet)
	api.Handle("/media", guarded(authz.Media, authz.Create, h.Media.Upload)).Methods(http.MethodPost)
	api.Handle("/media/{id}", guarded(authz.Media, authz.Read, h.Media.Get)).Methods(http.MethodGet)
	api.Handle("/media/{id}", guarded(authz.Media, authz.Update, h.Media.Update)).Methods(http.MethodPut)
	api.Handle("/media/{id}", guarded(authz.Media, authz.Delete, h.Media.Delete)).Methods(http.MethodDelete)

	// --- Логи (admin) ---
	logs := api.PathPrefix("/admin/logs").Subrouter()
	logs.Use(d.Auth.Protect, middleware.Authorize(models.RoleAdmin))
	logs.HandleFunc("", h.Logs.Entries).Methods(http.MethodGet)
	logs.HandleFunc("/days", h.Logs.Days).Methods(http.MethodGet)
	logs.HandleFunc("/stats", h.Logs.Stats).Methods(http.MethodGet)
}
