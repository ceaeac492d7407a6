package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"travelblog/internal/authz"
	"travelblog/internal/i18n"
	"travelblog/internal/logger"
	"travelblog/internal/models"
	"travelblog/internal/query"
	"travelblog/internal/repository"
	"travelblog/internal/utils"

	"go.uber.org/zap"
)

const (
	maxNameRunes   = 50
	minPasswordLen = 6
)

type UserRepo interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, q query.ListQuery) ([]*models.User, int64, error)
	ListProjected(ctx context.Context, q query.ListQuery) ([]map[string]any, int64, error)
	Update(ctx context.Context, u *models.User) error
	SetAvatar(ctx context.Context, id int64, path string) error
	Delete(ctx context.Context, id int64) error
	SetResetToken(ctx context.Context, id int64, tokenHash string, expire time.Time) error
	GetByResetToken(ctx context.Context, tokenHash string) (*models.User, error)
	ResetPassword(ctx context.Context, id int64, passwordHash string) error
	AdminExists(ctx context.Context) (bool, error)
}

// UserService — администрирование пользователей.
type UserService struct {
	repo     UserRepo
	uploader *Uploader
}

func NewUserService(repo UserRepo, uploader *Uploader) *UserService {
	return &UserService{repo: repo, uploader: uploader}
}

func (s *UserService) List(ctx context.Context, values url.Values) (query.Result, error) {
	log := logger.WithCtx(ctx)
	q, err := query.Parse(values, repository.UserListSchema, 0)
	if err != nil {
		log.Warn("Некорректные параметры списка пользователей", zap.Error(err))
		return query.Result{}, models.NewValidationError(i18n.MsgInvalidQuery, err.Error())
	}

	if len(q.Select) > 0 {
		rows, total, err := s.repo.ListProjected(ctx, q)
		if err != nil {
			return query.Result{}, err
		}
		return query.NewResult(rows, len(rows), total, q), nil
	}

	users, total, err := s.repo.List(ctx, q)
	if err != nil {
		return query.Result{}, err
	}
	return query.NewResult(users, len(users), total, q), nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		logger.WithCtx(ctx).Warn("Пользователь не найден (service)", zap.Int64("target_id", id))
		return nil, models.NewNotFoundError(i18n.MsgUserNotFound)
	}
	return u, err
}

func (s *UserService) Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	log := logger.WithCtx(ctx)
	log.Info("Создание пользователя (service)", zap.String("email", req.Email), zap.String("role", string(req.Role)))

	if req.Role == "" {
		req.Role = models.RoleUser
	}
	if !req.Role.Valid() {
		return nil, models.NewValidationError(i18n.MsgUserRoleInvalid)
	}
	u, err := newUser(req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		log.Warn("Валидация пользователя не пройдена", zap.Error(err))
		return nil, err
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, duplicateEmail(err)
	}

	log.Info("Пользователь создан (service)", zap.Int64("target_id", u.ID))
	return u, nil
}

func (s *UserService) Update(ctx context.Context, id int64, req models.UpdateUserRequest) (*models.User, error) {
	log := logger.WithCtx(ctx)
	log.Info("Обновление пользователя (service)", zap.Int64("target_id", id))

	u, err := s.Get(ctx, id)
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
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, models.NewValidationError(i18n.MsgUserRoleInvalid)
		}
		u.Role = *req.Role
	}
	if req.Password != nil {
		if u.PasswordHash, err = hashValidPassword(*req.Password); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, u); err != nil {
		log.Error("Ошибка при обновлении пользователя (service)", zap.Int64("target_id", id), zap.Error(err))
		return nil, duplicateEmail(err)
	}
	log.Info("Пользователь обновлён (service)", zap.Int64("target_id", id))
	return u, nil
}

// Delete запрещает удалять самого себя.
func (s *UserService) Delete(ctx context.Context, actor authz.Actor, id int64) error {
	log := logger.WithCtx(ctx)
	log.Info("Сервис: удаление user", zap.Int64("target_id", id))

	if actor.ID == id {
		log.Warn("Попытка удалить текущего пользователя", zap.Int64("target_id", id))
		return models.NewValidationError(i18n.MsgUserCannotDeleteSelf)
	}
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return models.NewNotFoundError(i18n.MsgUserNotFound)
	}
	if err != nil {
		log.Error("Ошибка удаления users (service)", zap.Int64("target_id", id), zap.Error(err))
	}
	return err
}

func (s *UserService) SetAvatar(ctx context.Context, id int64, up *FileUpload) (*models.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	public, err := s.uploader.Save(ctx, up, AvatarTarget(id))
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetAvatar(ctx, id, public); err != nil {
		return nil, err
	}
	u.Avatar = public
	return u, nil
}

func newUser(name, email, password string, role models.Role) (*models.User, error) {
	var err error
	u := &models.User{Role: role, Avatar: models.DefaultAvatar}
	if u.Name, err = validName(name); err != nil {
		return nil, err
	}
	if u.Email, err = validUserEmail(email); err != nil {
		return nil, err
	}
	if u.PasswordHash, err = hashValidPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

func validName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", models.NewValidationError(i18n.MsgUserNameRequired)
	}
	if utf8.RuneCountInString(name) > maxNameRunes {
		return "", models.NewValidationError(i18n.MsgUserNameTooLong)
	}
	return name, nil
}

func validUserEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", models.NewValidationError(i18n.MsgUserEmailRequired)
	}
	if !validEmail(email) {
		return "", models.NewValidationError(i18n.MsgUserEmailInvalid)
	}
	return email, nil
}

func hashValidPassword(password string) (string, error) {
	if password == "" {
		return "", models.NewValidationError(i18n.MsgUserPasswordRequired)
	}
	if len(password) < minPasswordLen {
		return "", models.NewValidationError(i18n.MsgUserPasswordTooShort)
	}
	return utils.HashPassword(password)
}

func duplicateEmail(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return models.NewValidationError(i18n.MsgUserEmailTaken)
	}
	return err
}
