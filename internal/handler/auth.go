package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rapid-reservation/rapid-api/internal/config"
	"github.com/rapid-reservation/rapid-api/internal/repository"
	"github.com/rapid-reservation/rapid-api/internal/utils"
)

// AuthHandler bundles dependencies for the login endpoint.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

// anonymousHash is a well-formed bcrypt digest that is matched against
// the supplied password when the username does not exist, so both
// failure paths spend one bcrypt comparison and an unknown account
// cannot be told apart from a wrong password by response timing.
const anonymousHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userPart struct {
	UserID   uint64 `json:"user_id"`
	UserName string `json:"user_name"`
	IsAdmin  bool   `json:"isadmin"`
}

type loginResp struct {
	Token   string   `json:"token"`
	Expires string   `json:"expires"`
	User    userPart `json:"user"`
}

// Login verifies credentials and issues a session token. Exactly one
// store read happens per attempt, and an unknown username and a wrong
// password produce the identical response so the endpoint cannot be
// used to enumerate accounts.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, err := h.Users.GetByUserName(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.VerifyPassword(anonymousHash, req.Password)
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		utils.ErrorLogger.Errorf("login: user lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.UserID, u.UserName, u.IsAdmin, h.Cfg.AccessTTLMin)
	if err != nil {
		utils.ErrorLogger.Errorf("login: token issue failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}

	return c.JSON(http.StatusOK, loginResp{
		Token:   token.Token,
		Expires: token.Exp.Format(time.RFC3339),
		User:    userPart{UserID: u.UserID, UserName: u.UserName, IsAdmin: u.IsAdmin},
	})
}

// Me is a simple protected endpoint returning the caller's identity as
// decoded from the session token, without touching the store.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":   c.Get("user_id"),
		"user_name": c.Get("user_name"),
		"isadmin":   c.Get("is_admin"),
	})
}
