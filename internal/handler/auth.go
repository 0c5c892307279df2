package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/report-vault/internal/middleware"
	"github.com/iliyamo/report-vault/internal/service"
)

// requestTimeout bounds the store work of a single request.
const requestTimeout = 5 * time.Second

// AuthHandler bundles dependencies for the /auth endpoints.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(a *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: a}
}

// ----- DTOs -----

type credentialsReq struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type changePasswordReq struct {
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
}

// loginResp is the login payload.  Only these profile fields ever leave
// the server; the password hash and session id stay behind.
type loginResp struct {
	Message     string     `json:"message"`
	AuthToken   string     `json:"auth_token"`
	ID          uint64     `json:"id"`
	Email       string     `json:"email"`
	LoginCount  int        `json:"login_count"`
	LastLoginAt *time.Time `json:"last_login_at"`
	LastLoginIP string     `json:"last_login_ip"`
}

type indexResp struct {
	Message string   `json:"message"`
	User    string   `json:"user"`
	Roles   []string `json:"roles"`
}

// Register: POST /auth/register {email, password}
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusUnprocessableEntity, MsgInvalidInput)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if _, err := h.Auth.Register(ctx, req.Email, req.Password); err != nil {
		return writeError(c, err)
	}
	return message(c, http.StatusOK, MsgRegistered)
}

// Login: POST /auth/login {email, password}.  The caller address is
// c.RealIP(): the TCP peer, or X-Forwarded-For only behind a configured
// trusted proxy.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusUnprocessableEntity, MsgInvalidInput)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	res, err := h.Auth.Login(ctx, req.Email, req.Password, c.RealIP())
	if err != nil {
		return writeError(c, err)
	}
	u := res.User
	return render(c, http.StatusOK, loginResp{
		Message:     MsgLoggedIn,
		AuthToken:   res.Token,
		ID:          u.ID,
		Email:       u.Email,
		LoginCount:  u.LoginCount,
		LastLoginAt: u.LastLoginAt,
		LastLoginIP: u.LastLoginIP,
	})
}

// Index: GET /auth/index.  Echoes who the token belongs to.
func (h *AuthHandler) Index(c echo.Context) error {
	u := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	roles, err := h.Auth.Roles(ctx, u)
	if err != nil {
		return writeError(c, err)
	}
	return render(c, http.StatusOK, indexResp{Message: MsgIndex, User: u.Email, Roles: roles})
}

// ChangePassword: PUT|POST /auth/change_password {current_password, new_password}
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusUnprocessableEntity, MsgInvalidInput)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Auth.ChangePassword(ctx, middleware.CurrentUser(c), req.CurrentPassword, req.NewPassword); err != nil {
		return writeError(c, err)
	}
	return message(c, http.StatusOK, MsgPasswordChanged)
}

// Logout: GET|DELETE /auth/logout
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Auth.Logout(ctx, middleware.CurrentUser(c)); err != nil {
		return writeError(c, err)
	}
	return message(c, http.StatusOK, MsgLoggedOut)
}

// DeleteUser: GET|DELETE /auth/delete_user
func (h *AuthHandler) DeleteUser(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Auth.DeleteAccount(ctx, middleware.CurrentUser(c)); err != nil {
		return writeError(c, err)
	}
	return message(c, http.StatusOK, MsgUserDeleted)
}
