package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-pms/internal/clock"
	"github.com/iliyamo/hotel-pms/internal/config"
	"github.com/iliyamo/hotel-pms/internal/utils"
)

// AuthHandler issues admin bearer tokens.
type AuthHandler struct {
	Cfg   config.Config
	Clock clock.Clock
	Log   *slog.Logger
}

func NewAuthHandler(cfg config.Config, clk clock.Clock, log *slog.Logger) *AuthHandler {
	if clk == nil {
		clk = clock.Real()
	}
	return &AuthHandler{Cfg: cfg, Clock: clk, Log: log}
}

type tokenReq struct {
	Password string `json:"password" validate:"required"`
}

type tokenResp struct {
	Token   string    `json:"token"`
	Role    string    `json:"role"`
	Expires time.Time `json:"expires"`
}

// Token: POST /v1/auth/token.  Exchanges the admin password for an
// ADMIN access token.  Disabled when no password hash is configured.
func (h *AuthHandler) Token(c echo.Context) error {
	if h.Cfg.AdminPasswordHash == "" {
		return fail(c, http.StatusNotFound, "admin login is disabled", nil)
	}
	var req tokenReq
	if err := c.Bind(&req); err != nil || c.Validate(&req) != nil {
		return fail(c, http.StatusBadRequest, "password required", nil)
	}
	if !utils.VerifyPassword(h.Cfg.AdminPasswordHash, req.Password) {
		h.Log.Warn("admin login rejected", "remote_ip", c.RealIP())
		return fail(c, http.StatusUnauthorized, "invalid credentials", nil)
	}
	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, "admin", utils.RoleAdmin, h.Cfg.AccessTTLMin, h.Clock.Now())
	if err != nil {
		h.Log.Error("issue access token", "error", err)
		return fail(c, http.StatusInternalServerError, "issue access failed", nil)
	}
	return ok(c, http.StatusOK, tokenResp{Token: tok.Token, Role: utils.RoleAdmin, Expires: tok.Exp})
}
