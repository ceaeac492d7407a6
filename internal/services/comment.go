package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"travelblog/internal/authz"
	"travelblog/internal/i18n"
	"travelblog/internal/logger"
	"travelblog/internal/models"
	"travelblog/internal/query"
	"travelblog/internal/repository"
	"travelblog/internal/utils/helpers"

	"go.uber.org/zap"
)

const maxCommentRunes = 500

type CommentService struct {
	repo        repository.CommentRepo
	articles    repository.ArticleRepo
	settings    *SettingsService
	policy      *authz.Policy
	queue       *EmailQueue
	frontendURL string
}

func NewCommentService(repo repository.CommentRepo, articles repository.ArticleRepo, settings *SettingsService,
	policy *authz.Policy, queue *EmailQueue, frontendURL string) *CommentService {
	return &CommentService{
		repo:        repo,
		articles:    articles,
		settings:    settings,
		policy:      policy,
		queue:       queue,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// Thread возвращает одобренные комментарии статьи: верхний уровень с ответами в Replies.
func (s *CommentService) Thread(ctx context.Context, articleID int64) ([]*models.Comment, error) {
	list, err := s.repo.ListByArticle(ctx, articleID, models.CommentApproved)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка получения комментариев (repo)", zap.Int64("article_id", articleID), zap.Error(err))
		return nil, err
	}
	return buildThread(list), nil
}

func buildThread(list []*models.Comment) []*models.Comment {
	roots := make([]*models.Comment, 0, len(list))
	byID := make(map[int64]*models.Comment, len(list))
	for _, c := range list {
		if c.ParentID == nil {
			byID[c.ID] = c
			roots = append(roots, c)
		}
	}
	for _, c := range list {
		if c.ParentID == nil {
			continue
		}
		if parent, ok := byID[*c.ParentID]; ok {
			parent.Replies = append(parent.Replies, c)
		}
	}
	return roots
}

func (s *CommentService) Create(ctx context.Context, actor authz.Actor, articleID int64, req models.CreateCommentRequest) (*models.Comment, error) {
	log := logger.WithCtx(ctx)
	log.Info("Новый комментарий", zap.Int64("article_id", articleID))

	if err := s.policy.CheckRole(actor, authz.Comment, authz.Create); err != nil {
		return nil, policyError(err)
	}
	settings := s.settings.Current()
	if !settings.EnableComments {
		return nil, models.NewForbiddenError(i18n.MsgCommentsDisabled)
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, models.NewValidationError(i18n.MsgCommentContentRequired)
	}
	if utf8.RuneCountInString(content) > maxCommentRunes {
		return nil, models.NewValidationError(i18n.MsgCommentTooLong)
	}

	article, err := s.articles.GetByID(ctx, articleID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !article.Published) {
		return nil, models.NewNotFoundError(i18n.MsgArticleNotFound)
	}
	if err != nil {
		return nil, err
	}

	if req.Parent != nil {
		parent, err := s.repo.GetByID(ctx, *req.Parent)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.NewValidationError(i18n.MsgCommentInvalidParent)
		}
		if err != nil {
			return nil, err
		}
		// один уровень вложенности: отвечать можно только на комментарий верхнего уровня той же статьи
		if parent.ArticleID != articleID || parent.ParentID != nil {
			log.Warn("Недопустимый родительский комментарий", zap.Int64("parent_id", parent.ID))
			return nil, models.NewValidationError(i18n.MsgCommentInvalidParent)
		}
	}

	c := &models.Comment{
		ArticleID: articleID,
		UserID:    actor.ID,
		ParentID:  req.Parent,
		Content:   content,
		Status:    models.CommentPending,
	}
	if actor.IsStaff() {
		c.Status = models.CommentApproved
	}
	if err := s.repo.Create(ctx, c); err != nil {
		log.Error("Ошибка создания комментария (repo)", zap.Error(err))
		return nil, err
	}

	created, err := s.repo.GetByID(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if created.Status == models.CommentPending {
		s.notify(settings, article, created)
	}
	log.Info("Комментарий создан", zap.Int64("comment_id", created.ID), zap.String("status", string(created.Status)))
	return created, nil
}

func (s *CommentService) notify(settings models.Setting, article *models.Article, c *models.Comment) {
	if settings.ContactEmail == "" {
		return
	}
	author := ""
	if c.User != nil {
		author = c.User.Name
	}
	link := fmt.Sprintf("%s/admin/comments?status=pending&article=%d", s.frontendURL, article.ID)
	s.queue.Enqueue(EmailJob{
		To:      []string{settings.ContactEmail},
		Subject: settings.SiteName + " - 新评论待审核",
		Body:    helpers.BuildNewCommentHTML(settings.SiteName, article.Title, author, c.Content, link),
	})
}

// List — список для модерации (фильтры status, article, user …).
func (s *CommentService) List(ctx context.Context, values url.Values) (query.Result, error) {
	q, err := query.Parse(values, repository.CommentListSchema, 0)
	if err != nil {
		logger.WithCtx(ctx).Warn("Некорректные параметры списка комментариев", zap.Error(err))
		return query.Result{}, models.NewValidationError(i18n.MsgInvalidQuery, err.Error())
	}
	if len(q.Select) > 0 {
		rows, total, err := s.repo.ListProjected(ctx, q)
		if err != nil {
			return query.Result{}, err
		}
		return query.NewResult(rows, len(rows), total, q), nil
	}
	list, total, err := s.repo.List(ctx, q)
	if err != nil {
		return query.Result{}, err
	}
	return query.NewResult(list, len(list), total, q), nil
}

func (s *CommentService) SetStatus(ctx context.Context, id int64, status models.CommentStatus) (*models.Comment, error) {
	if !status.Valid() {
		return nil, models.NewValidationError(i18n.MsgCommentStatusInvalid)
	}
	c, err := s.repo.UpdateStatus(ctx, id, status)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.NewNotFoundError(i18n.MsgCommentNotFound)
	}
	if err != nil {
		return nil, err
	}
	logger.WithCtx(ctx).Info("Статус комментария изменён", zap.Int64("comment_id", id), zap.String("status", string(status)))
	return c, nil
}

// Delete — автор комментария или администратор.
func (s *CommentService) Delete(ctx context.Context, actor authz.Actor, id int64) error {
	c, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return models.NewNotFoundError(i18n.MsgCommentNotFound)
	}
	if err != nil {
		return err
	}
	if err := s.policy.Check(actor, authz.Comment, authz.Delete, c.UserID); err != nil {
		return policyError(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	logger.WithCtx(ctx).Info("Комментарий удалён", zap.Int64("comment_id", id))
	return nil
}
