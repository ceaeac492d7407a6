package handlers

import (
	"context"
	"net/http"
	"strings"

	"travelblog/internal/i18n"
	"travelblog/internal/logger"
	"travelblog/internal/models"
	"travelblog/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type passwordService interface {
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) (*models.AuthResponse, error)
}

type PasswordHandler struct {
	svc passwordService
}

func NewPasswordHandler(svc passwordService) *PasswordHandler {
	return &PasswordHandler{svc: svc}
}

type forgotReq struct {
	Email string `json:"email"`
}

type resetReq struct {
	Password string `json:"password"`
}

// ForgotPassword godoc
// @Summary      Запрос сброса пароля
// @Description  Ответ одинаковый для зарегистрированного и неизвестного email.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body forgotReq true "Email пользователя"
// @Success      200 {object} helpers.Response
// @Failure      400 {object} helpers.Response
// @Router       /api/auth/forgotpassword [post]
func (h *PasswordHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.ForgotPassword(r.Context(), req.Email); err != nil {
		if models.HasCode(err, models.CodeValidation) {
			writeError(w, r, err)
			return
		}
		// Сбой отправки не раскрываем клиенту.
		logger.WithCtx(r.Context()).Error("Сбой при запросе сброса пароля",
			zap.String("email_masked", maskEmail(req.Email)), zap.Error(err))
	}
	helpers.Message(w, http.StatusOK, i18n.T(lang(r), i18n.MsgAuthResetSent))
}

// ResetPassword godoc
// @Summary      Сброс пароля по токену из письма
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token path string   true "Токен из письма"
// @Param        body  body resetReq true "Новый пароль"
// @Success      200 {object} models.AuthResponse
// @Failure      400 {object} helpers.Response
// @Router       /api/auth/resetpassword/{token} [put]
func (h *PasswordHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.svc.ResetPassword(r.Context(), mux.Vars(r)["token"], req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.Token(w, http.StatusOK, res.Token, res.User)
}

func maskEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.IndexByte(email, '@')
	switch {
	case at < 0:
		return "***"
	case at <= 1:
		return "***" + email[at:]
	}
	return email[:1] + "***" + email[at:]
}
