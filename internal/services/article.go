package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"
	"unicode/utf8"

	"travelblog/internal/authz"
	"travelblog/internal/i18n"
	"travelblog/internal/logger"
	"travelblog/internal/models"
	"travelblog/internal/observability"
	"travelblog/internal/query"
	"travelblog/internal/repository"
	"travelblog/internal/utils"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

const (
	maxTitleRunes   = 100
	maxExcerptRunes = 200
	maxTags         = 10
	slugAttempts    = 20
	DefaultPopular  = 6
	DefaultSearch   = 20
)

type ArticleService interface {
	List(ctx context.Context, actor authz.Actor, values url.Values, lang string) (query.Result, error)
	Get(ctx context.Context, actor authz.Actor, id int64, lang string) (*models.Article, error)
	GetBySlug(ctx context.Context, actor authz.Actor, slug, lang string) (*models.Article, error)
	Create(ctx context.Context, actor authz.Actor, req models.CreateArticleRequest) (*models.Article, error)
	Update(ctx context.Context, actor authz.Actor, id int64, req models.UpdateArticleRequest) (*models.Article, error)
	Delete(ctx context.Context, actor authz.Actor, id int64) error
	SetCover(ctx context.Context, actor authz.Actor, id int64, up *FileUpload) (*models.Article, error)
	Popular(ctx context.Context, limit int, lang string) ([]*models.Article, error)
	Cities(ctx context.Context) ([]string, error)
	Categories() []models.CategoryInfo
	Search(ctx context.Context, text string, limit int, lang string) ([]*models.Article, error)
}

type articleService struct {
	repo      repository.ArticleRepo
	settings  *SettingsService
	policy    *authz.Policy
	uploader  *Uploader
	sanitizer *bluemonday.Policy
}

func NewArticleService(repo repository.ArticleRepo, settings *SettingsService, policy *authz.Policy, uploader *Uploader) ArticleService {
	p := bluemonday.UGCPolicy()
	p.AllowElements("img")
	p.AllowAttrs("src", "alt").OnElements("img")
	return &articleService{repo: repo, settings: settings, policy: policy, uploader: uploader, sanitizer: p}
}

// List разбирает параметры запроса; анонимы и обычные пользователи видят только опубликованные статьи.
func (s *articleService) List(ctx context.Context, actor authz.Actor, values url.Values, lang string) (query.Result, error) {
	log := logger.WithCtx(ctx)

	q, err := query.Parse(values, repository.ArticleListSchema, s.settings.Current().ArticlesPerPage)
	if err != nil {
		log.Warn("Некорректные параметры списка статей", zap.Error(err))
		return query.Result{}, models.NewValidationError(i18n.MsgInvalidQuery, err.Error())
	}
	if !actor.IsStaff() {
		q = q.WithFilter(query.Filter{Field: "published", Op: query.Eq, Value: true})
	}
	log.Debug("Получение списка статей",
		zap.Int("page", q.Page), zap.Int("limit", q.Limit), zap.Int("filters", len(q.Filters)))

	if len(q.Select) > 0 {
		rows, total, err := s.repo.ListProjected(ctx, q)
		if err != nil {
			log.Error("Ошибка получения списка статей (repo)", zap.Error(err))
			return query.Result{}, err
		}
		return query.NewResult(rows, len(rows), total, q), nil
	}

	list, total, err := s.repo.List(ctx, q)
	if err != nil {
		log.Error("Ошибка получения списка статей (repo)", zap.Error(err))
		return query.Result{}, err
	}
	for _, a := range list {
		a.Localize(lang)
	}
	log.Debug("Список статей получен", zap.Int("count", len(list)), zap.Int64("total", total))
	return query.NewResult(list, len(list), total, q), nil
}

func (s *articleService) Get(ctx context.Context, actor authz.Actor, id int64, lang string) (*models.Article, error) {
	a, err := s.repo.View(ctx, id, actor.IsStaff())
	return s.viewed(ctx, a, err, lang)
}

func (s *articleService) GetBySlug(ctx context.Context, actor authz.Actor, slug, lang string) (*models.Article, error) {
	a, err := s.repo.ViewBySlug(ctx, slug, actor.IsStaff())
	return s.viewed(ctx, a, err, lang)
}

func (s *articleService) viewed(ctx context.Context, a *models.Article, err error, lang string) (*models.Article, error) {
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.NewNotFoundError(i18n.MsgArticleNotFound)
	}
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка получения статьи (repo)", zap.Error(err))
		return nil, err
	}
	observability.ArticleViews.Inc()
	a.Localize(lang)
	return a, nil
}

func (s *articleService) Create(ctx context.Context, actor authz.Actor, req models.CreateArticleRequest) (*models.Article, error) {
	log := logger.WithCtx(ctx)
	log.Info("Создание статьи",
		zap.String("title", strings.TrimSpace(req.Title)),
		zap.Bool("published", req.Published),
		zap.Int("tags_count", len(req.Tags)),
	)

	if err := s.policy.CheckRole(actor, authz.Article, authz.Create); err != nil {
		return nil, policyError(err)
	}

	a := &models.Article{
		Title:      strings.TrimSpace(req.Title),
		TitleEn:    optional(req.TitleEn),
		Content:    req.Content,
		ContentEn:  optional(req.ContentEn),
		Excerpt:    strings.TrimSpace(req.Excerpt),
		ExcerptEn:  optional(req.ExcerptEn),
		Category:   req.Category,
		CoverImage: strings.TrimSpace(req.CoverImage),
		AuthorID:   actor.ID,
		Published:  req.Published,
		Featured:   req.Featured,
		Tags:       normalizeTags(req.Tags),
		Location:   req.Location,
	}
	if a.CoverImage == "" {
		a.CoverImage = models.DefaultCoverImage
	}
	s.sanitize(a)
	if err := validateArticle(a); err != nil {
		log.Warn("Валидация статьи не пройдена", zap.Error(err))
		return nil, err
	}

	if err := s.insertWithSlug(ctx, a); err != nil {
		log.Error("Ошибка создания статьи (repo)", zap.Error(err))
		return nil, err
	}

	created, err := s.repo.GetByID(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	log.Info("Статья создана", zap.Int64("id", created.ID), zap.String("slug", created.Slug))
	return created, nil
}

func (s *articleService) Update(ctx context.Context, actor authz.Actor, id int64, req models.UpdateArticleRequest) (*models.Article, error) {
	log := logger.WithCtx(ctx)
	log.Info("Обновление статьи", zap.Int64("id", id))

	a, err := s.owned(ctx, actor, id, authz.Update)
	if err != nil {
		return nil, err
	}

	titleChanged := false
	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		titleChanged = t != a.Title
		a.Title = t
	}
	if req.TitleEn != nil {
		a.TitleEn = optional(*req.TitleEn)
	}
	if req.Content != nil {
		a.Content = *req.Content
	}
	if req.ContentEn != nil {
		a.ContentEn = optional(*req.ContentEn)
	}
	if req.Excerpt != nil {
		a.Excerpt = strings.TrimSpace(*req.Excerpt)
	}
	if req.ExcerptEn != nil {
		a.ExcerptEn = optional(*req.ExcerptEn)
	}
	if req.Category != nil {
		a.Category = *req.Category
	}
	if req.CoverImage != nil {
		a.CoverImage = strings.TrimSpace(*req.CoverImage)
	}
	if req.Published != nil {
		a.Published = *req.Published
	}
	if req.Featured != nil {
		a.Featured = *req.Featured
	}
	if req.Tags != nil {
		a.Tags = normalizeTags(*req.Tags)
	}
	if req.Location != nil {
		a.Location = req.Location
	}

	s.sanitize(a)
	if err := validateArticle(a); err != nil {
		log.Warn("Валидация статьи не пройдена", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	if titleChanged {
		err = s.saveWithSlug(ctx, a)
	} else {
		err = s.repo.Update(ctx, a)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.NewNotFoundError(i18n.MsgArticleNotFound)
	}
	if err != nil {
		log.Error("Ошибка обновления статьи (repo)", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	log.Info("Статья обновлена", zap.Int64("id", id), zap.Bool("published", a.Published))
	return a, nil
}

func (s *articleService) Delete(ctx context.Context, actor authz.Actor, id int64) error {
	log := logger.WithCtx(ctx)
	log.Info("Удаление статьи", zap.Int64("id", id))

	if _, err := s.owned(ctx, actor, id, authz.Delete); err != nil {
		return err
	}
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return models.NewNotFoundError(i18n.MsgArticleNotFound)
	}
	if err != nil {
		log.Error("Ошибка удаления статьи (repo)", zap.Int64("id", id), zap.Error(err))
		return err
	}

	log.Info("Статья удалена", zap.Int64("id", id))
	return nil
}

// SetCover проверяет владение до чтения файла.
func (s *articleService) SetCover(ctx context.Context, actor authz.Actor, id int64, up *FileUpload) (*models.Article, error) {
	a, err := s.owned(ctx, actor, id, authz.Upload)
	if err != nil {
		return nil, err
	}
	public, err := s.uploader.Save(ctx, up, CoverTarget(id))
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetCover(ctx, id, public); err != nil {
		logger.WithCtx(ctx).Error("Ошибка сохранения обложки (repo)", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	a.CoverImage = public
	return a, nil
}

func (s *articleService) Popular(ctx context.Context, limit int, lang string) ([]*models.Article, error) {
	if limit <= 0 || limit > 50 {
		limit = DefaultPopular
	}
	list, err := s.repo.Popular(ctx, limit)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка получения популярных статей (repo)", zap.Error(err))
		return nil, err
	}
	for _, a := range list {
		a.Localize(lang)
	}
	return list, nil
}

func (s *articleService) Cities(ctx context.Context) ([]string, error) {
	return s.repo.Cities(ctx)
}

func (s *articleService) Categories() []models.CategoryInfo {
	return models.Categories
}

func (s *articleService) Search(ctx context.Context, text string, limit int, lang string) ([]*models.Article, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, models.NewValidationError(i18n.MsgSearchQueryRequired)
	}
	if limit <= 0 || limit > 100 {
		limit = DefaultSearch
	}
	logger.WithCtx(ctx).Debug("Поиск статей", zap.String("q", text), zap.Int("limit", limit))

	list, err := s.repo.Search(ctx, text, limit)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка поиска статей (repo)", zap.Error(err))
		return nil, err
	}
	for _, a := range list {
		a.Localize(lang)
	}
	return list, nil
}

// owned загружает статью и проверяет право актора на действие с учётом авторства.
func (s *articleService) owned(ctx context.Context, actor authz.Actor, id int64, act authz.Action) (*models.Article, error) {
	if err := s.policy.CheckRole(actor, authz.Article, act); err != nil {
		return nil, policyError(err)
	}
	a, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.NewNotFoundError(i18n.MsgArticleNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := s.policy.Check(actor, authz.Article, act, a.AuthorID); err != nil {
		logger.WithCtx(ctx).Warn("Нет прав на статью",
			zap.Int64("id", id), zap.Int64("author_id", a.AuthorID), zap.String("action", string(act)))
		return nil, policyError(err)
	}
	return a, nil
}

func (s *articleService) sanitize(a *models.Article) {
	a.Content = s.sanitizer.Sanitize(a.Content)
	if a.ContentEn != nil {
		clean := s.sanitizer.Sanitize(*a.ContentEn)
		a.ContentEn = &clean
	}
}

// insertWithSlug вставляет статью, подбирая свободный slug: base, base-2 … base-20, затем base-<random>.
func (s *articleService) insertWithSlug(ctx context.Context, a *models.Article) error {
	return s.withSlug(a, func() error { return s.repo.Create(ctx, a) })
}

func (s *articleService) saveWithSlug(ctx context.Context, a *models.Article) error {
	return s.withSlug(a, func() error { return s.repo.Update(ctx, a) })
}

func (s *articleService) withSlug(a *models.Article, save func() error) error {
	base := utils.Slugify(a.Title)
	for n := 1; n <= slugAttempts+1; n++ {
		if n <= slugAttempts {
			a.Slug = utils.SlugWithSuffix(base, n)
		} else {
			a.Slug = base + "-" + randomSuffix()
		}
		err := save()
		if !errors.Is(err, repository.ErrDuplicate) {
			return err
		}
	}
	return models.NewConflictError(i18n.MsgServerError)
}

func randomSuffix() string {
	b := make([]byte, 3)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func validateArticle(a *models.Article) error {
	switch {
	case a.Title == "":
		return models.NewValidationError(i18n.MsgArticleTitleRequired)
	case utf8.RuneCountInString(a.Title) > maxTitleRunes:
		return models.NewValidationError(i18n.MsgArticleTitleTooLong)
	case strings.TrimSpace(a.Content) == "":
		return models.NewValidationError(i18n.MsgArticleContentRequired)
	case a.Excerpt == "":
		return models.NewValidationError(i18n.MsgArticleExcerptRequired)
	case utf8.RuneCountInString(a.Excerpt) > maxExcerptRunes:
		return models.NewValidationError(i18n.MsgArticleExcerptTooLong)
	case !a.Category.Valid():
		return models.NewValidationError(i18n.MsgArticleCategoryInvalid)
	case len(a.Tags) > maxTags:
		return models.NewValidationError(i18n.MsgArticleTooManyTags, maxTags)
	}
	if a.CoverImage == "" {
		a.CoverImage = models.DefaultCoverImage
	}
	return validateLocation(a.Location)
}

func validateLocation(loc *models.Location) error {
	if loc == nil {
		return nil
	}
	if loc.Type == "" {
		loc.Type = "Point"
	}
	if loc.Type != "Point" {
		return models.NewValidationError(i18n.MsgArticleLocationInvalid)
	}
	if len(loc.Coordinates) == 0 {
		return nil
	}
	if len(loc.Coordinates) != 2 {
		return models.NewValidationError(i18n.MsgArticleLocationInvalid)
	}
	lng, lat := loc.Coordinates[0], loc.Coordinates[1]
	if lng < -180 || lng > 180 || lat < -90 || lat > 90 {
		return models.NewValidationError(i18n.MsgArticleLocationInvalid)
	}
	return nil
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func normalizeTags(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// policyError переводит ошибки authz в ошибки приложения.
func policyError(err error) error {
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		return models.NewUnauthorizedError(i18n.MsgUnauthorized)
	case errors.Is(err, authz.ErrForbidden):
		return models.NewForbiddenError(i18n.MsgForbidden)
	}
	return err
}
