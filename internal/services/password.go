package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"travelblog/internal/i18n"
	"travelblog/internal/logger"
	"travelblog/internal/models"
	"travelblog/internal/repository"
	"travelblog/internal/utils"
	"travelblog/internal/utils/helpers"

	"go.uber.org/zap"
)

const resetTokenTTL = 10 * time.Minute

type PasswordService struct {
	repo        UserRepo
	auth        *AuthService
	settings    *SettingsService
	queue       *EmailQueue
	frontendURL string
	now         func() time.Time
}

func NewPasswordService(repo UserRepo, auth *AuthService, settings *SettingsService, queue *EmailQueue, frontendURL string) *PasswordService {
	return &PasswordService{
		repo:        repo,
		auth:        auth,
		settings:    settings,
		queue:       queue,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		now:         time.Now,
	}
}

// ForgotPassword ставит письмо со ссылкой сброса в очередь. Наличие email не раскрывается:
// для неизвестного адреса возвращается nil.
func (s *PasswordService) ForgotPassword(ctx context.Context, email string) error {
	log := logger.WithCtx(ctx)
	email = strings.ToLower(strings.TrimSpace(email))
	log.Info("Запрос на сброс пароля", zap.String("email", email))

	if email == "" {
		return models.NewValidationError(i18n.MsgUserEmailRequired)
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		log.Warn("Сброс пароля для неизвестного email", zap.String("email", email))
		return nil
	}
	if err != nil {
		return err
	}

	token, hash, err := utils.NewResetToken()
	if err != nil {
		return err
	}
	if err := s.repo.SetResetToken(ctx, u.ID, hash, s.now().Add(resetTokenTTL)); err != nil {
		log.Error("Ошибка сохранения токена сброса", zap.Error(err))
		return err
	}

	link := s.frontendURL + "/reset-password?token=" + url.QueryEscape(token)
	site := s.settings.Current().SiteName
	s.queue.Enqueue(EmailJob{
		To:      []string{u.Email},
		Subject: site + " - 重置密码",
		Body:    helpers.BuildPasswordResetHTML(site, u.Name, link),
	})

	log.Info("Письмо для сброса пароля поставлено в очередь", zap.Int64("target_id", u.ID))
	return nil
}

// ResetPassword устанавливает новый пароль по токену из письма и выдаёт JWT.
func (s *PasswordService) ResetPassword(ctx context.Context, token, password string) (*models.AuthResponse, error) {
	log := logger.WithCtx(ctx)

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, models.NewValidationError(i18n.MsgAuthResetInvalid)
	}
	u, err := s.repo.GetByResetToken(ctx, utils.HashResetToken(token))
	if errors.Is(err, repository.ErrNotFound) {
		log.Warn("Недействительный или просроченный токен сброса")
		return nil, models.NewValidationError(i18n.MsgAuthResetInvalid)
	}
	if err != nil {
		return nil, err
	}

	hash, err := hashValidPassword(password)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ResetPassword(ctx, u.ID, hash); err != nil {
		log.Error("Ошибка сброса пароля", zap.Error(err))
		return nil, err
	}
	u.PasswordHash = hash

	log.Info("Пароль сброшен", zap.Int64("target_id", u.ID))
	return s.auth.issue(u)
}
