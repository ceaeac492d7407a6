package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"travelblog/internal/authz"
	"travelblog/internal/i18n"
	"travelblog/internal/middleware"
	"travelblog/internal/models"
	"travelblog/internal/query"
	"travelblog/internal/services"
	"travelblog/internal/utils"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

const testSecret = "handlers-test-secret"

var (
	admin  = &models.User{ID: 1, Name: "管理员", Email: "admin@example.com", Role: models.RoleAdmin}
	editor = &models.User{ID: 2, Name: "小编", Email: "editor@example.com", Role: models.RoleEditor}
	reader = &models.User{ID: 3, Name: "读者", Email: "reader@example.com", Role: models.RoleUser}
)

type userTable map[int64]*models.User

func (t userTable) Me(_ context.Context, id int64) (*models.User, error) {
	if u, ok := t[id]; ok {
		return u, nil
	}
	return nil, models.NewUnauthorizedError(i18n.MsgUnauthorized)
}

var knownUsers = userTable{admin.ID: admin, editor.ID: editor, reader.ID: reader}

func bearerFor(t *testing.T, u *models.User) string {
	t.Helper()
	tok, err := utils.GenerateToken(testSecret, u.ID, string(u.Role), time.Hour)
	require.NoError(t, err)
	return tok
}

// mount вешает обработчик на mux, чтобы работали переменные пути; protect добавляет Protect.
func mount(method, pattern string, h http.HandlerFunc, protect bool) *mux.Router {
	r := mux.NewRouter()
	var handler http.Handler = h
	if protect {
		handler = middleware.NewAuth(testSecret, knownUsers, nil).Protect(handler)
	}
	r.Handle(pattern, handler).Methods(method)
	return r
}

func send(h http.Handler, method, target string, body any, tok string) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func bodyOf(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// --- заглушки сервисов ---

type stubAuth struct {
	register       func(models.RegisterRequest) (*models.AuthResponse, error)
	login          func(models.LoginRequest) (*models.AuthResponse, error)
	loggedOut      []*utils.Claims
	updateDetails  func(int64, models.UpdateDetailsRequest) (*models.User, error)
	updatePassword func(int64, models.UpdatePasswordRequest) (*models.AuthResponse, error)
}

func (s *stubAuth) Register(_ context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	return s.register(req)
}

func (s *stubAuth) Login(_ context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	return s.login(req)
}

func (s *stubAuth) Logout(_ context.Context, c *utils.Claims) error {
	s.loggedOut = append(s.loggedOut, c)
	return nil
}

func (s *stubAuth) UpdateDetails(_ context.Context, id int64, req models.UpdateDetailsRequest) (*models.User, error) {
	return s.updateDetails(id, req)
}

func (s *stubAuth) UpdatePassword(_ context.Context, id int64, req models.UpdatePasswordRequest) (*models.AuthResponse, error) {
	return s.updatePassword(id, req)
}

type stubPassword struct {
	forgotErr error
	forgot    []string
	reset     func(token, password string) (*models.AuthResponse, error)
}

func (s *stubPassword) ForgotPassword(_ context.Context, email string) error {
	s.forgot = append(s.forgot, email)
	return s.forgotErr
}

func (s *stubPassword) ResetPassword(_ context.Context, token, password string) (*models.AuthResponse, error) {
	return s.reset(token, password)
}

type stubUsers struct {
	deleted []int64
	avatar  *services.FileUpload
}

func (s *stubUsers) List(context.Context, url.Values) (query.Result, error) {
	return query.NewResult([]*models.User{admin}, 1, 1, query.ListQuery{Page: 1, Limit: 25}), nil
}

func (s *stubUsers) Get(_ context.Context, id int64) (*models.User, error) {
	if u, ok := knownUsers[id]; ok {
		return u, nil
	}
	return nil, models.NewNotFoundError(i18n.MsgUserNotFound)
}

func (s *stubUsers) Create(_ context.Context, req models.CreateUserRequest) (*models.User, error) {
	return &models.User{ID: 10, Name: req.Name, Email: req.Email, Role: req.Role}, nil
}

func (s *stubUsers) Update(_ context.Context, id int64, _ models.UpdateUserRequest) (*models.User, error) {
	return s.Get(context.Background(), id)
}

func (s *stubUsers) Delete(_ context.Context, actor authz.Actor, id int64) error {
	if actor.ID == id {
		return models.NewValidationError(i18n.MsgUserCannotDeleteSelf)
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubUsers) SetAvatar(_ context.Context, id int64, up *services.FileUpload) (*models.User, error) {
	if up == nil {
		return nil, models.NewValidationError(i18n.MsgUploadMissing)
	}
	s.avatar = up
	data, _ := io.ReadAll(up.File)
	u := *knownUsers[id]
	u.Avatar = "/uploads/avatars/" + string(data)
	return &u, nil
}

type stubMedia struct {
	uploaded   []byte
	alt, title string
	items      []*models.Media
	typeFilter string
}

func (s *stubMedia) List(_ context.Context, typePrefix string) ([]*models.Media, error) {
	s.typeFilter = typePrefix
	return s.items, nil
}

func (s *stubMedia) Get(_ context.Context, id string) (*models.Media, error) {
	for _, m := range s.items {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, models.NewNotFoundError(i18n.MsgMediaNotFound)
}

func (s *stubMedia) Upload(_ context.Context, actor authz.Actor, up *services.FileUpload, alt, title string) (*models.Media, error) {
	if up == nil {
		return nil, models.NewValidationError(i18n.MsgUploadMissing)
	}
	data, err := io.ReadAll(up.File)
	if err != nil {
		return nil, err
	}
	s.uploaded, s.alt, s.title = data, alt, title
	return &models.Media{ID: "m1", OriginalFilename: up.Filename, Alt: alt, Title: title, UploadedBy: actor.ID}, nil
}

func (s *stubMedia) Update(_ context.Context, actor authz.Actor, id string, req models.UpdateMediaRequest) (*models.Media, error) {
	m, err := s.Get(context.Background(), id)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin && m.UploadedBy != actor.ID {
		return nil, models.NewForbiddenError(i18n.MsgForbidden)
	}
	if req.Alt != nil {
		m.Alt = *req.Alt
	}
	return m, nil
}

func (s *stubMedia) Delete(context.Context, authz.Actor, string) error { return nil }

type stubArticles struct {
	services.ArticleService // методы, которые тест не переопределил, паникуют

	create func(authz.Actor, models.CreateArticleRequest) (*models.Article, error)
	get    func(authz.Actor, int64, string) (*models.Article, error)
	search func(string, int, string) ([]*models.Article, error)
}

func (s *stubArticles) Create(_ context.Context, a authz.Actor, req models.CreateArticleRequest) (*models.Article, error) {
	return s.create(a, req)
}

func (s *stubArticles) Get(_ context.Context, a authz.Actor, id int64, lang string) (*models.Article, error) {
	return s.get(a, id, lang)
}

func (s *stubArticles) Search(_ context.Context, text string, limit int, lang string) ([]*models.Article, error) {
	return s.search(text, limit, lang)
}

type stubSettings struct {
	current models.Setting
	logo    *services.FileUpload
}

func (s *stubSettings) Current() models.Setting      { return s.current }
func (s *stubSettings) Public() models.PublicSetting { return s.current.Public() }

func (s *stubSettings) Update(_ context.Context, req models.UpdateSettingRequest) (*models.Setting, error) {
	if req.SiteName != nil {
		s.current.SiteName = *req.SiteName
	}
	return &s.current, nil
}

func (s *stubSettings) SetLogo(_ context.Context, up *services.FileUpload) (*models.Setting, error) {
	if up == nil {
		return nil, models.NewValidationError(i18n.MsgUploadMissing)
	}
	s.logo = up
	s.current.Logo = "/uploads/logo/logo.png"
	return &s.current, nil
}

func (s *stubSettings) SetFavicon(context.Context, *services.FileUpload) (*models.Setting, error) {
	return &s.current, nil
}

type stubComments struct {
	created []models.CreateCommentRequest
	status  models.CommentStatus
}

func (s *stubComments) Thread(_ context.Context, articleID int64) ([]*models.Comment, error) {
	return []*models.Comment{{ID: 1, ArticleID: articleID, Content: "好地方", Status: models.CommentApproved,
		Replies: []*models.Comment{{ID: 2, ArticleID: articleID, Content: "同意", Status: models.CommentApproved}}}}, nil
}

func (s *stubComments) Create(_ context.Context, actor authz.Actor, articleID int64, req models.CreateCommentRequest) (*models.Comment, error) {
	s.created = append(s.created, req)
	status := models.CommentPending
	if actor.IsStaff() {
		status = models.CommentApproved
	}
	return &models.Comment{ID: 3, ArticleID: articleID, UserID: actor.ID, Content: req.Content, ParentID: req.Parent, Status: status}, nil
}

func (s *stubComments) List(context.Context, url.Values) (query.Result, error) {
	return query.NewResult([]*models.Comment{}, 0, 0, query.ListQuery{Page: 1, Limit: 25}), nil
}

func (s *stubComments) SetStatus(_ context.Context, id int64, status models.CommentStatus) (*models.Comment, error) {
	if !status.Valid() {
		return nil, models.NewValidationError(i18n.MsgCommentStatusInvalid)
	}
	s.status = status
	return &models.Comment{ID: id, Status: status}, nil
}

func (s *stubComments) Delete(context.Context, authz.Actor, int64) error { return nil }
