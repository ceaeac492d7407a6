package handlers

import (
	"context"
	"net/http"

	"travelblog/internal/i18n"
	"travelblog/internal/logger"
	"travelblog/internal/middleware"
	"travelblog/internal/models"
	"travelblog/internal/utils"
	"travelblog/internal/utils/helpers"

	"go.uber.org/zap"
)

type authService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Logout(ctx context.Context, claims *utils.Claims) error
	UpdateDetails(ctx context.Context, userID int64, req models.UpdateDetailsRequest) (*models.User, error)
	UpdatePassword(ctx context.Context, userID int64, req models.UpdatePasswordRequest) (*models.AuthResponse, error)
}

type AuthHandler struct {
	auth authService
}

func NewAuthHandler(auth authService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register godoc
// @Summary      Регистрация
// @Description  Новый пользователь всегда получает роль user. Может быть отключена в настройках.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body models.RegisterRequest true "Имя, email, пароль"
// @Success      201 {object} models.AuthResponse
// @Failure      400 {object} helpers.Response
// @Failure      429 {object} helpers.Response
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.auth.Register(r.Context(), req)
	if err != nil {
		logger.WithCtx(r.Context()).Warn("Регистрация отклонена", zap.Error(err))
		writeError(w, r, err)
		return
	}
	helpers.Token(w, http.StatusCreated, res.Token, res.User)
}

// Login godoc
// @Summary      Вход
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body models.LoginRequest true "Email и пароль"
// @Success      200 {object} models.AuthResponse
// @Failure      400 {object} helpers.Response
// @Failure      401 {object} helpers.Response
// @Failure      429 {object} helpers.Response
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.auth.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.Token(w, http.StatusOK, res.Token, res.User)
}

// Me godoc
// @Summary      Текущий пользователь
// @Tags         auth
// @Produce      json
// @Success      200 {object} helpers.Response{data=models.PublicUser}
// @Failure      401 {object} helpers.Response
// @Security     ApiKeyAuth
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, r, models.NewUnauthorizedError(i18n.MsgUnauthorized))
		return
	}
	helpers.JSON(w, http.StatusOK, u.Public())
}

// Logout godoc
// @Summary      Выход
// @Description  Токен попадает в чёрный список до истечения срока действия.
// @Tags         auth
// @Produce      json
// @Success      200 {object} helpers.Response
// @Failure      401 {object} helpers.Response
// @Security     ApiKeyAuth
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.Claims(r.Context())
	if !ok {
		writeError(w, r, models.NewUnauthorizedError(i18n.MsgUnauthorized))
		return
	}
	if err := h.auth.Logout(r.Context(), claims); err != nil {
		writeError(w, r, err)
		return
	}
	helpers.Message(w, http.StatusOK, i18n.T(lang(r), i18n.MsgAuthLoggedOut))
}

// UpdateDetails godoc
// @Summary      Обновить имя или email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body models.UpdateDetailsRequest true "Изменяемые поля"
// @Success      200 {object} helpers.Response{data=models.PublicUser}
// @Failure      400 {object} helpers.Response
// @Security     ApiKeyAuth
// @Router       /api/auth/updatedetails [put]
func (h *AuthHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, r, models.NewUnauthorizedError(i18n.MsgUnauthorized))
		return
	}
	var req models.UpdateDetailsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.auth.UpdateDetails(r.Context(), u.ID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, updated.Public())
}

// UpdatePassword godoc
// @Summary      Сменить пароль
// @Description  Требует текущий пароль, возвращает новый токен.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body models.UpdatePasswordRequest true "Текущий и новый пароль"
// @Success      200 {object} models.AuthResponse
// @Failure      400 {object} helpers.Response
// @Failure      401 {object} helpers.Response
// @Security     ApiKeyAuth
// @Router       /api/auth/updatepassword [put]
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, r, models.NewUnauthorizedError(i18n.MsgUnauthorized))
		return
	}
	var req models.UpdatePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.auth.UpdatePassword(r.Context(), u.ID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.Token(w, http.StatusOK, res.Token, res.User)
}
