package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"travelblog/internal/authz"
	"travelblog/internal/i18n"
	"travelblog/internal/models"
	"travelblog/internal/query"
	"travelblog/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCommentRepo struct {
	mu       sync.Mutex
	nextID   int64
	comments map[int64]*models.Comment
}

func newMemCommentRepo() *memCommentRepo {
	return &memCommentRepo{comments: map[int64]*models.Comment{}}
}

func (m *memCommentRepo) Create(_ context.Context, c *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	c.CreatedAt = time.Now()
	cp := *c
	m.comments[c.ID] = &cp
	return nil
}

func (m *memCommentRepo) GetByID(_ context.Context, id int64) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	cp.User = &models.AuthorRef{ID: c.UserID, Name: "游客"}
	return &cp, nil
}

func (m *memCommentRepo) ListByArticle(_ context.Context, articleID int64, status models.CommentStatus) ([]*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Comment{}
	for id := int64(1); id <= m.nextID; id++ {
		c, ok := m.comments[id]
		if ok && c.ArticleID == articleID && c.Status == status {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memCommentRepo) List(context.Context, query.ListQuery) ([]*models.Comment, int64, error) {
	return nil, 0, nil
}

func (m *memCommentRepo) ListProjected(context.Context, query.ListQuery) ([]map[string]any, int64, error) {
	return nil, 0, nil
}

func (m *memCommentRepo) UpdateStatus(_ context.Context, id int64, status models.CommentStatus) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c.Status = status
	cp := *c
	return &cp, nil
}

func (m *memCommentRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

func commentArticles(published bool) *stubArticleRepo {
	return &stubArticleRepo{
		getByID: func(_ context.Context, id int64) (*models.Article, error) {
			if id != 1 {
				return nil, repository.ErrNotFound
			}
			return &models.Article{ID: 1, Title: "乌镇", Published: published}, nil
		},
	}
}

func TestCommentCreateAndThread(t *testing.T) {
	repo := newMemCommentRepo()
	mailer := newChanMailer()
	queue := NewEmailQueue(mailer, 8)
	queue.Start(1)
	defer queue.Close()

	svc := NewCommentService(repo, commentArticles(true), newTestSettings(nil), authz.Default(), queue, "http://x/")
	ctx := context.Background()

	root, err := svc.Create(ctx, editor, 1, models.CreateCommentRequest{Content: "  很美  "})
	require.NoError(t, err)
	assert.Equal(t, models.CommentApproved, root.Status)
	assert.Equal(t, "很美", root.Content)

	reply, err := svc.Create(ctx, reader, 1, models.CreateCommentRequest{Content: "同意", Parent: &root.ID})
	require.NoError(t, err)
	assert.Equal(t, models.CommentPending, reply.Status)

	select {
	case job := <-mailer.sent:
		assert.Equal(t, []string{"contact@jiangnan.com"}, job.To)
		assert.Contains(t, job.Body, "http://x/admin/comments?status=pending&amp;article=1")
	case <-time.After(2 * time.Second):
		t.Fatal("moderation email was not sent")
	}

	_, err = svc.Create(ctx, reader, 1, models.CreateCommentRequest{Content: "嵌套", Parent: &reply.ID})
	assertCode(t, err, models.CodeValidation, i18n.MsgCommentInvalidParent)

	thread, err := svc.Thread(ctx, 1)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Empty(t, thread[0].Replies)

	_, err = svc.SetStatus(ctx, reply.ID, models.CommentApproved)
	require.NoError(t, err)
	thread, err = svc.Thread(ctx, 1)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	require.Len(t, thread[0].Replies, 1)
	assert.Equal(t, reply.ID, thread[0].Replies[0].ID)
}

func TestCommentCreateRejects(t *testing.T) {
	ctx := context.Background()

	disabled := NewCommentService(newMemCommentRepo(), commentArticles(true),
		newTestSettings(func(s *models.Setting) { s.EnableComments = false }), authz.Default(), nil, "")
	_, err := disabled.Create(ctx, reader, 1, models.CreateCommentRequest{Content: "hi"})
	assertCode(t, err, models.CodeForbidden, i18n.MsgCommentsDisabled)

	draft := NewCommentService(newMemCommentRepo(), commentArticles(false), newTestSettings(nil), authz.Default(), nil, "")
	_, err = draft.Create(ctx, reader, 1, models.CreateCommentRequest{Content: "hi"})
	assertCode(t, err, models.CodeNotFound, i18n.MsgArticleNotFound)

	svc := NewCommentService(newMemCommentRepo(), commentArticles(true), newTestSettings(nil), authz.Default(), nil, "")
	_, err = svc.Create(ctx, authz.Actor{}, 1, models.CreateCommentRequest{Content: "hi"})
	assertCode(t, err, models.CodeUnauthorized, "")
	_, err = svc.Create(ctx, reader, 1, models.CreateCommentRequest{Content: " "})
	assertCode(t, err, models.CodeValidation, i18n.MsgCommentContentRequired)
	missing := int64(42)
	_, err = svc.Create(ctx, reader, 1, models.CreateCommentRequest{Content: "hi", Parent: &missing})
	assertCode(t, err, models.CodeValidation, i18n.MsgCommentInvalidParent)
}

func TestCommentDeleteOwnership(t *testing.T) {
	repo := newMemCommentRepo()
	svc := NewCommentService(repo, commentArticles(true), newTestSettings(nil), authz.Default(), nil, "")
	ctx := context.Background()

	c, err := svc.Create(ctx, reader, 1, models.CreateCommentRequest{Content: "hi"})
	require.NoError(t, err)

	err = svc.Delete(ctx, authz.Actor{ID: 77, Role: models.RoleUser}, c.ID)
	assertCode(t, err, models.CodeForbidden, "")

	require.NoError(t, svc.Delete(ctx, reader, c.ID))
	err = svc.Delete(ctx, admin, c.ID)
	assertCode(t, err, models.CodeNotFound, i18n.MsgCommentNotFound)
}

func TestCommentSetStatusValidates(t *testing.T) {
	svc := NewCommentService(newMemCommentRepo(), commentArticles(true), newTestSettings(nil), authz.Default(), nil, "")
	_, err := svc.SetStatus(context.Background(), 1, "deleted")
	assertCode(t, err, models.CodeValidation, i18n.MsgCommentStatusInvalid)
	_, err = svc.SetStatus(context.Background(), 1, models.CommentSpam)
	assertCode(t, err, models.CodeNotFound, i18n.MsgCommentNotFound)
}
