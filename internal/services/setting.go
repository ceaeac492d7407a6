package services

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"

	"travelblog/internal/i18n"
	"travelblog/internal/logger"
	"travelblog/internal/models"
	"travelblog/internal/repository"

	"go.uber.org/zap"
)

var emailRe = regexp.MustCompile(`^\w+([.\-]?\w+)*@\w+([.\-]?\w+)*(\.\w{2,3})+$`)

func validEmail(s string) bool { return emailRe.MatchString(s) }

// SettingsService держит снимок настроек в памяти. Снимок загружается один раз при старте
// и заменяется целиком после каждого изменения.
type SettingsService struct {
	repo     repository.SettingRepo
	uploader *Uploader

	mu      sync.Mutex // сериализует изменения
	current atomic.Pointer[models.Setting]
}

// NewSettingsService загружает настройки, создавая строку по умолчанию, если её нет.
func NewSettingsService(ctx context.Context, repo repository.SettingRepo, uploader *Uploader) (*SettingsService, error) {
	s, err := repo.Ensure(ctx, models.DefaultSetting())
	if err != nil {
		return nil, err
	}
	svc := &SettingsService{repo: repo, uploader: uploader}
	svc.current.Store(s)
	logger.WithCtx(ctx).Info("Настройки сайта загружены", zap.String("site_name", s.SiteName), zap.Int("per_page", s.ArticlesPerPage))
	return svc, nil
}

// Current возвращает копию текущего снимка.
func (s *SettingsService) Current() models.Setting {
	return *s.current.Load()
}

func (s *SettingsService) Public() models.PublicSetting {
	return s.Current().Public()
}

func (s *SettingsService) Update(ctx context.Context, req models.UpdateSettingRequest) (*models.Setting, error) {
	log := logger.WithCtx(ctx)
	log.Info("Обновление настроек")

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.Current()
	if req.SiteName != nil {
		name := strings.TrimSpace(*req.SiteName)
		if name == "" {
			log.Warn("Валидация не пройдена: пустое название сайта")
			return nil, models.NewValidationError(i18n.MsgSettingsNameRequired)
		}
		next.SiteName = name
	}
	if req.SiteDescription != nil {
		next.SiteDescription = strings.TrimSpace(*req.SiteDescription)
	}
	if req.ContactEmail != nil {
		email := strings.ToLower(strings.TrimSpace(*req.ContactEmail))
		if !validEmail(email) {
			log.Warn("Валидация не пройдена: email", zap.String("email", email))
			return nil, models.NewValidationError(i18n.MsgSettingsEmailInvalid)
		}
		next.ContactEmail = email
	}
	if req.FooterText != nil {
		next.FooterText = *req.FooterText
	}
	if req.ArticlesPerPage != nil {
		if n := *req.ArticlesPerPage; n < 1 || n > 100 {
			log.Warn("Валидация не пройдена: articlesPerPage", zap.Int("value", n))
			return nil, models.NewValidationError(i18n.MsgSettingsPerPageInvalid)
		}
		next.ArticlesPerPage = *req.ArticlesPerPage
	}
	if req.EnableComments != nil {
		next.EnableComments = *req.EnableComments
	}
	if req.EnableRegistration != nil {
		next.EnableRegistration = *req.EnableRegistration
	}
	if req.SocialMedia != nil {
		next.SocialMedia = *req.SocialMedia
	}

	if err := s.repo.Save(ctx, &next); err != nil {
		log.Error("Ошибка сохранения настроек (repo)", zap.Error(err))
		return nil, err
	}
	s.current.Store(&next)
	log.Info("Настройки обновлены")
	return &next, nil
}

func (s *SettingsService) SetLogo(ctx context.Context, up *FileUpload) (*models.Setting, error) {
	return s.setAsset(ctx, up, LogoTarget, func(st *models.Setting, p string) { st.Logo = p })
}

func (s *SettingsService) SetFavicon(ctx context.Context, up *FileUpload) (*models.Setting, error) {
	return s.setAsset(ctx, up, FaviconTarget, func(st *models.Setting, p string) { st.Favicon = p })
}

func (s *SettingsService) setAsset(ctx context.Context, up *FileUpload, t UploadTarget, apply func(*models.Setting, string)) (*models.Setting, error) {
	public, err := s.uploader.Save(ctx, up, t)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.Current()
	apply(&next, public)
	if err := s.repo.Save(ctx, &next); err != nil {
		logger.WithCtx(ctx).Error("Ошибка сохранения настроек (repo)", zap.Error(err))
		return nil, err
	}
	s.current.Store(&next)
	return &next, nil
}
