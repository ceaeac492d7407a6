package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"travelblog/internal/i18n"
	"travelblog/internal/logger"
	"travelblog/internal/models"
	"travelblog/internal/repository"
	"travelblog/internal/utils"

	"go.uber.org/zap"
)

// TokenRevoker — хранилище отозванных токенов (redis).
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type AuthService struct {
	repo     UserRepo
	settings *SettingsService
	revoker  TokenRevoker
	secret   string
	ttl      time.Duration
}

func NewAuthService(repo UserRepo, settings *SettingsService, revoker TokenRevoker, secret string, ttl time.Duration) *AuthService {
	return &AuthService{repo: repo, settings: settings, revoker: revoker, secret: secret, ttl: ttl}
}

func (s *AuthService) issue(u *models.User) (*models.AuthResponse, error) {
	token, err := utils.GenerateToken(s.secret, u.ID, string(u.Role), s.ttl)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: u.Public()}, nil
}

// Register — самостоятельная регистрация; роль всегда user.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	log := logger.WithCtx(ctx)
	log.Info("Регистрация пользователя (service)", zap.String("email", req.Email))

	if !s.settings.Current().EnableRegistration {
		log.Warn("Регистрация отключена в настройках")
		return nil, models.NewForbiddenError(i18n.MsgAuthRegistrationClosed)
	}

	u, err := newUser(req.Name, req.Email, req.Password, models.RoleUser)
	if err != nil {
		log.Warn("Валидация регистрации не пройдена", zap.Error(err))
		return nil, err
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			log.Warn("Email уже зарегистрирован", zap.String("email", u.Email))
		} else {
			log.Error("Ошибка создания пользователя", zap.Error(err))
		}
		return nil, duplicateEmail(err)
	}

	log.Info("Пользователь зарегистрирован (service)", zap.Int64("new_user_id", u.ID))
	return s.issue(u)
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	log := logger.WithCtx(ctx)
	email := strings.TrimSpace(req.Email)
	log.Info("Попытка входа (service)", zap.String("email", email))

	if email == "" || req.Password == "" {
		return nil, models.NewValidationError(i18n.MsgAuthCredentialsRequired)
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		log.Warn("Пользователь не найден (service)", zap.String("email", email))
		return nil, models.NewUnauthorizedError(i18n.MsgAuthInvalidCredentials)
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPasswordHash(req.Password, u.PasswordHash) {
		log.Warn("Неверный пароль (service)", zap.Int64("target_id", u.ID))
		return nil, models.NewUnauthorizedError(i18n.MsgAuthInvalidCredentials)
	}

	log.Info("Вход выполнен (service)", zap.Int64("target_id", u.ID))
	return s.issue(u)
}

// Me загружает пользователя по id из токена; используется и middleware.Protect.
func (s *AuthService) Me(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.NewUnauthorizedError(i18n.MsgUnauthorized)
	}
	return u, err
}

// Logout отзывает токен до его истечения.
func (s *AuthService) Logout(ctx context.Context, claims *utils.Claims) error {
	logger.WithCtx(ctx).Info("Выход пользователя (service)", zap.String("jti", claims.ID))
	var exp time.Time
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	return s.revoker.Revoke(ctx, claims.ID, exp)
}

func (s *AuthService) UpdateDetails(ctx context.Context, userID int64, req models.UpdateDetailsRequest) (*models.User, error) {
	log := logger.WithCtx(ctx)
	log.Info("Обновление профиля (service)")

	u, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if u.Name, err = validName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Email != nil {
		if u.Email, err = validUserEmail(*req.Email); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, duplicateEmail(err)
	}
	return u, nil
}

// UpdatePassword меняет пароль после проверки текущего и выдаёт новый токен.
func (s *AuthService) UpdatePassword(ctx context.Context, userID int64, req models.UpdatePasswordRequest) (*models.AuthResponse, error) {
	log := logger.WithCtx(ctx)
	log.Info("Смена пароля (service)")

	u, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !utils.CheckPasswordHash(req.CurrentPassword, u.PasswordHash) {
		log.Warn("Неверный текущий пароль")
		return nil, models.NewUnauthorizedError(i18n.MsgAuthWrongPassword)
	}
	if u.PasswordHash, err = hashValidPassword(req.NewPassword); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return s.issue(u)
}

// EnsureAdmin создаёт администратора при первом запуске, если его ещё нет.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, name, password string) (bool, error) {
	log := logger.WithCtx(ctx)
	if password == "" {
		return false, nil
	}
	exists, err := s.repo.AdminExists(ctx)
	if err != nil || exists {
		return false, err
	}

	u, err := newUser(name, email, password, models.RoleAdmin)
	if err != nil {
		return false, err
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			log.Warn("Пользователь с ADMIN_EMAIL уже существует, администратор не создан", zap.String("email", u.Email))
			return false, nil
		}
		return false, err
	}
	log.Info("Создан администратор по умолчанию", zap.String("email", u.Email))
	return true, nil
}
