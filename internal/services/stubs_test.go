package services

import (
	"context"
	"sync"
	"time"

	"travelblog/internal/models"
	"travelblog/internal/query"
	"travelblog/internal/repository"
)

type stubArticleRepo struct {
	create        func(ctx context.Context, a *models.Article) error
	list          func(ctx context.Context, q query.ListQuery) ([]*models.Article, int64, error)
	listProjected func(ctx context.Context, q query.ListQuery) ([]map[string]any, int64, error)
	getByID       func(ctx context.Context, id int64) (*models.Article, error)
	view          func(ctx context.Context, id int64, includeDrafts bool) (*models.Article, error)
	update        func(ctx context.Context, a *models.Article) error
	setCover      func(ctx context.Context, id int64, path string) error
	delete        func(ctx context.Context, id int64) error
	search        func(ctx context.Context, text string, limit int) ([]*models.Article, error)
}

func (s *stubArticleRepo) Create(ctx context.Context, a *models.Article) error {
	return s.create(ctx, a)
}
func (s *stubArticleRepo) List(ctx context.Context, q query.ListQuery) ([]*models.Article, int64, error) {
	return s.list(ctx, q)
}
func (s *stubArticleRepo) ListProjected(ctx context.Context, q query.ListQuery) ([]map[string]any, int64, error) {
	return s.listProjected(ctx, q)
}
func (s *stubArticleRepo) GetByID(ctx context.Context, id int64) (*models.Article, error) {
	return s.getByID(ctx, id)
}
func (s *stubArticleRepo) View(ctx context.Context, id int64, includeDrafts bool) (*models.Article, error) {
	return s.view(ctx, id, includeDrafts)
}
func (s *stubArticleRepo) ViewBySlug(ctx context.Context, _ string, includeDrafts bool) (*models.Article, error) {
	return s.view(ctx, 0, includeDrafts)
}
func (s *stubArticleRepo) Update(ctx context.Context, a *models.Article) error {
	return s.update(ctx, a)
}
func (s *stubArticleRepo) SetCover(ctx context.Context, id int64, path string) error {
	return s.setCover(ctx, id, path)
}
func (s *stubArticleRepo) Delete(ctx context.Context, id int64) error { return s.delete(ctx, id) }
func (s *stubArticleRepo) Popular(context.Context, int) ([]*models.Article, error) {
	return []*models.Article{}, nil
}
func (s *stubArticleRepo) Recent(context.Context, int) ([]*models.Article, error) {
	return []*models.Article{}, nil
}
func (s *stubArticleRepo) Cities(context.Context) ([]string, error) { return []string{}, nil }
func (s *stubArticleRepo) Search(ctx context.Context, text string, limit int) ([]*models.Article, error) {
	return s.search(ctx, text, limit)
}

type stubSettingRepo struct {
	mu    sync.Mutex
	row   *models.Setting
	saves int
}

func (s *stubSettingRepo) Get(context.Context) (*models.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.row == nil {
		return nil, repository.ErrNotFound
	}
	cp := *s.row
	return &cp, nil
}

func (s *stubSettingRepo) Ensure(ctx context.Context, d models.Setting) (*models.Setting, error) {
	s.mu.Lock()
	if s.row == nil {
		s.row = &d
	}
	s.mu.Unlock()
	return s.Get(ctx)
}

func (s *stubSettingRepo) Save(_ context.Context, st *models.Setting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.UpdatedAt = time.Now()
	cp := *st
	s.row = &cp
	s.saves++
	return nil
}

func newTestSettings(mutate func(*models.Setting)) *SettingsService {
	d := models.DefaultSetting()
	if mutate != nil {
		mutate(&d)
	}
	svc, err := NewSettingsService(context.Background(), &stubSettingRepo{row: &d}, nil)
	if err != nil {
		panic(err)
	}
	return svc
}

// memUserRepo — пользователи в памяти с уникальностью email.
type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[int64]*models.User{}}
}

func (m *memUserRepo) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt, u.UpdatedAt = time.Now(), time.Now()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUserRepo) List(context.Context, query.ListQuery) ([]*models.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.User{}
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (m *memUserRepo) ListProjected(context.Context, query.ListQuery) ([]map[string]any, int64, error) {
	return []map[string]any{}, 0, nil
}

func (m *memUserRepo) Update(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, existing := range m.users {
		if id != u.ID && existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUserRepo) SetAvatar(_ context.Context, id int64, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Avatar = path
	return nil
}

func (m *memUserRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memUserRepo) SetResetToken(_ context.Context, id int64, hash string, expire time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.users[id]
	u.ResetPasswordToken, u.ResetPasswordExpire = &hash, &expire
	return nil
}

func (m *memUserRepo) GetByResetToken(_ context.Context, hash string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ResetPasswordToken != nil && *u.ResetPasswordToken == hash && u.ResetPasswordExpire.After(time.Now()) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUserRepo) ResetPassword(_ context.Context, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.users[id]
	u.PasswordHash, u.ResetPasswordToken, u.ResetPasswordExpire = hash, nil, nil
	return nil
}

func (m *memUserRepo) AdminExists(context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Role == models.RoleAdmin {
			return true, nil
		}
	}
	return false, nil
}

// chanMailer складывает письма в канал.
type chanMailer struct {
	sent chan EmailJob
}

func newChanMailer() *chanMailer { return &chanMailer{sent: make(chan EmailJob, 16)} }

func (m *chanMailer) SendHTML(to []string, subject, body string) error {
	m.sent <- EmailJob{To: to, Subject: subject, Body: body}
	return nil
}

type stubRevoker struct {
	revoked map[string]time.Time
}

func (r *stubRevoker) Revoke(_ context.Context, jti string, exp time.Time) error {
	if r.revoked == nil {
		r.revoked = map[string]time.Time{}
	}
	r.revoked[jti] = exp
	return nil
}

func (r *stubRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := r.revoked[jti]
	return ok, nil
}
