package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-guide-marketplace/internal/middleware"
	"github.com/iliyamo/tour-guide-marketplace/internal/model"
	"github.com/iliyamo/tour-guide-marketplace/internal/service"
)

const refreshCookie = "refreshToken"

// AuthHandler serves login, token refresh and logout.
type AuthHandler struct {
	auth   *service.AuthService
	secure bool // production cookies: Secure and SameSite=None
}

func NewAuthHandler(auth *service.AuthService, production bool) *AuthHandler {
	return &AuthHandler{auth: auth, secure: production}
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type sessionResp struct {
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
	User         model.User `json:"user"`
}

// Login checks the credentials and sets the token cookies.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel, _ := scope(c)
	defer cancel()

	s, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}
	h.setCookies(c, s)
	return respond(c, http.StatusOK, "User Logged In Successfully", sessionResp{AccessToken: s.AccessToken, RefreshToken: s.RefreshToken, User: s.User})
}

// Refresh rotates the refresh token taken from the cookie or the body.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	raw := req.RefreshToken
	if raw == "" {
		if ck, err := c.Cookie(refreshCookie); err == nil {
			raw = ck.Value
		}
	}
	ctx, cancel, _ := scope(c)
	defer cancel()

	s, err := h.auth.Refresh(ctx, raw)
	if err != nil {
		return err
	}
	h.setCookies(c, s)
	return respond(c, http.StatusOK, "New Access Token Retrieved Successfully", sessionResp{AccessToken: s.AccessToken, RefreshToken: s.RefreshToken, User: s.User})
}

// Logout revokes the presented refresh token, or every session of the
// authenticated caller when none is presented, and clears the cookies.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	raw := req.RefreshToken
	if raw == "" {
		if ck, err := c.Cookie(refreshCookie); err == nil {
			raw = ck.Value
		}
	}
	ctx, cancel, caller := scope(c)
	defer cancel()

	if err := h.auth.Logout(ctx, raw, caller.UserID); err != nil {
		return err
	}
	h.clearCookies(c)
	return respond(c, http.StatusOK, "User Logged Out Successfully", nil)
}

func (h *AuthHandler) cookie(name, value string, exp time.Time) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if h.secure {
		ck.SameSite = http.SameSiteNoneMode
	}
	return ck
}

func (h *AuthHandler) setCookies(c echo.Context, s *service.Session) {
	c.SetCookie(h.cookie(middleware.AccessCookie, s.AccessToken, s.AccessExp))
	c.SetCookie(h.cookie(refreshCookie, s.RefreshToken, s.RefreshExp))
}

func (h *AuthHandler) clearCookies(c echo.Context) {
	for _, name := range []string{middleware.AccessCookie, refreshCookie} {
		ck := h.cookie(name, "", time.Unix(0, 0))
		ck.MaxAge = -1
		c.SetCookie(ck)
	}
}
