package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mkurov/storefront/internal/config"
	"github.com/mkurov/storefront/internal/model"
	"github.com/mkurov/storefront/internal/store"
	"github.com/mkurov/storefront/internal/token"
	"github.com/mkurov/storefront/internal/utils"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Store  store.Store
	Tokens *token.Store
}

func NewAuthHandler(cfg config.Config, st store.Store, tokens *token.Store) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Store: st, Tokens: tokens}
}

// ----- DTOs -----

type registerReq struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
type loginReq struct {
	Username string `json:"username"` // username or email
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string `json:"token"`
	Expires string `json:"expires"`
}
type authResp struct {
	User    *model.User `json:"user"`
	Access  tokenPart   `json:"access"`
	Refresh tokenPart   `json:"refresh"`
}

func (h *AuthHandler) issueTokens(c echo.Context, u *model.User) (*authResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.IsAdmin, h.Cfg.AccessTTLMin)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return nil, err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Tokens.Save(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return nil, err
	}
	return &authResp{
		User:    u,
		Access:  tokenPart{Token: access.Token, Expires: access.Exp.Format("2006-01-02T15:04:05Z07:00")},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp.Format("2006-01-02T15:04:05Z07:00")},
	}, nil
}

// Register creates a user and returns tokens immediately.  Username and
// email uniqueness is checked before the insert; the storage port does
// not enforce it, so the check happens here where it can answer with a
// clean 409.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/email/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Store.GetUserByUsername(ctx, req.Username); err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
	} else if !errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if _, err := h.Store.GetUserByEmail(ctx, req.Email); err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	} else if !errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash failed"})
	}
	u, err := h.Store.CreateUser(ctx, model.NewUser{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	})
	if err != nil {
		// A backend with unique keys may still catch a lost race.
		if errors.Is(err, store.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "username or email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	resp, err := h.issueTokens(c, u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login authenticates by username (or email, when the value contains
// an @) and returns tokens.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	var u *model.User
	var err error
	if strings.Contains(req.Username, "@") {
		u, err = h.Store.GetUserByEmail(ctx, strings.ToLower(req.Username))
	} else {
		u, err = h.Store.GetUserByUsername(ctx, req.Username)
	}
	if errors.Is(err, store.ErrNotFound) || (err == nil && !utils.VerifyPassword(u.PasswordHash, req.Password)) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	resp, err := h.issueTokens(c, u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, resp)
}

// Refresh rotates a refresh token and returns a fresh token pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	hash := utils.HashRefreshRaw(req.RefreshToken)
	userID, err := h.Tokens.Validate(ctx, hash)
	if errors.Is(err, token.ErrInvalid) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token store error"})
	}
	u, err := h.Store.GetUserByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}

	if err := h.Tokens.Revoke(ctx, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token store error"})
	}
	resp, err := h.issueTokens(c, u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout revokes a refresh token.  Always answers 204; revoking an
// unknown token changes nothing.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Tokens.Revoke(ctx, utils.HashRefreshRaw(req.RefreshToken)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token store error"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Store.GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, u)
}
