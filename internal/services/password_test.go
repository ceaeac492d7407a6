package services

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"travelblog/internal/i18n"
	"travelblog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var resetLinkRe = regexp.MustCompile(`reset-password\?token=([^"&]+)`)

func TestForgotAndResetPassword(t *testing.T) {
	repo := newMemUserRepo()
	settings := newTestSettings(nil)
	auth, _ := newAuth(repo, settings)
	_, err := auth.Register(context.Background(), models.RegisterRequest{Name: "小明", Email: "a@b.com", Password: "123456"})
	require.NoError(t, err)

	mailer := newChanMailer()
	queue := NewEmailQueue(mailer, 4)
	queue.Start(1)
	defer queue.Close()

	svc := NewPasswordService(repo, auth, settings, queue, "http://localhost:5173/")
	require.NoError(t, svc.ForgotPassword(context.Background(), "A@B.com"))

	var job EmailJob
	select {
	case job = <-mailer.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("reset email was not sent")
	}
	assert.Equal(t, []string{"a@b.com"}, job.To)
	assert.True(t, strings.HasPrefix(job.Subject, settings.Current().SiteName))
	assert.Contains(t, job.Body, "http://localhost:5173/reset-password?token=")

	m := resetLinkRe.FindStringSubmatch(job.Body)
	require.Len(t, m, 2)
	token, err := url.QueryUnescape(m[1])
	require.NoError(t, err)

	res, err := svc.ResetPassword(context.Background(), token, "newpass")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	_, err = auth.Login(context.Background(), models.LoginRequest{Email: "a@b.com", Password: "newpass"})
	require.NoError(t, err)

	_, err = svc.ResetPassword(context.Background(), token, "another")
	assertCode(t, err, models.CodeValidation, i18n.MsgAuthResetInvalid)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	repo := newMemUserRepo()
	settings := newTestSettings(nil)
	auth, _ := newAuth(repo, settings)
	mailer := newChanMailer()
	queue := NewEmailQueue(mailer, 4)
	queue.Start(1)

	svc := NewPasswordService(repo, auth, settings, queue, "http://x")
	require.NoError(t, svc.ForgotPassword(context.Background(), "nobody@b.com"))
	queue.Close()
	assert.Empty(t, mailer.sent)

	err := svc.ForgotPassword(context.Background(), " ")
	assertCode(t, err, models.CodeValidation, i18n.MsgUserEmailRequired)
}

func TestResetPasswordExpired(t *testing.T) {
	repo := newMemUserRepo()
	settings := newTestSettings(nil)
	auth, _ := newAuth(repo, settings)
	_, err := auth.Register(context.Background(), models.RegisterRequest{Name: "a", Email: "a@b.com", Password: "123456"})
	require.NoError(t, err)

	mailer := newChanMailer()
	queue := NewEmailQueue(mailer, 4)
	queue.Start(1)
	defer queue.Close()

	svc := NewPasswordService(repo, auth, settings, queue, "http://x")
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	require.NoError(t, svc.ForgotPassword(context.Background(), "a@b.com"))

	job := <-mailer.sent
	token, err := url.QueryUnescape(resetLinkRe.FindStringSubmatch(job.Body)[1])
	require.NoError(t, err)

	_, err = svc.ResetPassword(context.Background(), token, "newpass")
	assertCode(t, err, models.CodeValidation, i18n.MsgAuthResetInvalid)
}
