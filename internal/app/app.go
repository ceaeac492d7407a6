package app

import (
	"context"
	"fmt"
	"time"

	"travelblog/internal/authz"
	"travelblog/internal/cache"
	"travelblog/internal/config"
	"travelblog/internal/db"
	"travelblog/internal/handlers"
	"travelblog/internal/logger"
	"travelblog/internal/middleware"
	"travelblog/internal/repository"
	"travelblog/internal/routes"
	"travelblog/internal/services"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	emailWorkers       = 3
	emailQueueSize     = 100
	logRetentionDays   = 7
	resetCleanupPeriod = time.Hour
)

// App — собранное приложение: маршрутизатор и ресурсы, которые нужно закрыть при остановке.
type App struct {
	Router *mux.Router
	Pool   *pgxpool.Pool
	Redis  *redis.Client
	Queue  *services.EmailQueue

	stopCleaner context.CancelFunc
}

func InitApp(ctx context.Context, cfg *config.Config) (*App, error) {
	ttl, err := cfg.TokenTTL()
	if err != nil {
		return nil, err
	}

	pool, err := db.NewPostgresConnection(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	logger.Log.Info("Подключение к БД установлено", zap.String("dsn", cfg.GetDSNSafe()))

	if cfg.AutoMigrate {
		version, err := db.Migrate(pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		logger.Log.Info("Миграции применены", zap.Uint("version", version))
	}

	rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		// Без redis сервис работает: отзыв токенов и rate limit отключаются.
		logger.Log.Warn("Redis недоступен", zap.Error(err))
		rdb = nil
	}

	// Репозитории
	userRepo := repository.NewUserRepository(pool)
	articleRepo := repository.NewArticleRepo(pool)
	commentRepo := repository.NewCommentRepo(pool)
	settingRepo := repository.NewSettingRepo(pool)
	statsRepo := repository.NewStatsRepo(pool, articleRepo)
	mediaStore := repository.NewMediaStore(cfg.MediaStorePath)
	blacklist := repository.NewTokenBlacklist(rdb)

	// Почта
	var mailer services.Mailer
	if es := services.NewEmailService(cfg); es != nil {
		mailer = es
	}
	queue := services.NewEmailQueue(mailer, emailQueueSize)
	queue.Start(emailWorkers)

	// Сервисы
	policy := authz.Default()
	uploader := services.NewUploader(cfg.FileUploadPath, cfg.MaxFileUpload)
	settingsSvc, err := services.NewSettingsService(ctx, settingRepo, uploader)
	if err != nil {
		queue.Close()
		pool.Close()
		return nil, fmt.Errorf("settings: %w", err)
	}
	authSvc := services.NewAuthService(userRepo, settingsSvc, blacklist, cfg.JWTSecret, ttl)
	passwordSvc := services.NewPasswordService(userRepo, authSvc, settingsSvc, queue, cfg.FrontendURL)
	userSvc := services.NewUserService(userRepo, uploader)
	articleSvc := services.NewArticleService(articleRepo, settingsSvc, policy, uploader)
	commentSvc := services.NewCommentService(commentRepo, articleRepo, settingsSvc, policy, queue, cfg.FrontendURL)
	statsSvc := services.NewStatsService(statsRepo)
	mediaSvc := services.NewMediaService(mediaStore, policy, cfg.FileUploadPath, cfg.MediaMaxUpload)

	if created, err := authSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminName, cfg.AdminPassword); err != nil {
		logger.Log.Error("Не удалось создать администратора", zap.Error(err))
	} else if created {
		logger.Log.Info("Создан администратор", zap.String("email", cfg.AdminEmail))
	}

	checks := map[string]handlers.Pinger{"postgres": pool.Ping}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	// Хендлеры
	h := routes.Handlers{
		Article:  handlers.NewArticleHandler(articleSvc, cfg.MaxFileUpload),
		Search:   handlers.NewSearchHandler(articleSvc),
		Taxonomy: handlers.NewTaxonomyHandler(articleSvc),
		Comment:  handlers.NewCommentHandler(commentSvc),
		Auth:     handlers.NewAuthHandler(authSvc),
		Password: handlers.NewPasswordHandler(passwordSvc),
		User:     handlers.NewUserHandler(userSvc, cfg.MaxFileUpload),
		Setting:  handlers.NewSettingHandler(settingsSvc, cfg.MaxFileUpload),
		Stats:    handlers.NewStatsHandler(statsSvc),
		Media:    handlers.NewMediaHandler(mediaSvc, cfg.MediaMaxUpload),
		Logs:     handlers.NewLogsHandler(logger.Dir, logRetentionDays),
		Health:   handlers.NewHealthHandler(checks),
	}
	deps := routes.Deps{
		Auth:    middleware.NewAuth(cfg.JWTSecret, authSvc, blacklist),
		Policy:  policy,
		Limiter: middleware.NewRateLimiter(rdb, cfg.RateLimitPerMinute, time.Minute),
	}

	router := mux.NewRouter()
	routes.InitRoutes(router, h, deps)

	cleanerCtx, stop := context.WithCancel(context.Background())
	StartResetTokenCleaner(cleanerCtx, userRepo, resetCleanupPeriod)

	return &App{Router: router, Pool: pool, Redis: rdb, Queue: queue, stopCleaner: stop}, nil
}

// Close останавливает фоновые задачи, дожидается отправки писем и закрывает соединения.
func (a *App) Close() {
	a.stopCleaner()
	a.Queue.Close()
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	a.Pool.Close()
}

type resetTokenCleaner interface {
	ClearExpiredResetTokens(ctx context.Context) (int64, error)
}

// StartResetTokenCleaner периодически гасит просроченные токены сброса пароля.
func StartResetTokenCleaner(ctx context.Context, repo resetTokenCleaner, every time.Duration) {
	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				n, err := repo.ClearExpiredResetTokens(ctx)
				if err != nil {
					logger.Log.Warn("Ошибка очистки токенов сброса", zap.Error(err))
					continue
				}
				if n > 0 {
					logger.Log.Info("Очищены просроченные токены сброса", zap.Int64("count", n))
				}
			}
		}
	}()
}
