package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/todohub/internal/accounts"
	"github.com/geocoder89/todohub/internal/domain/user"
	"github.com/geocoder89/todohub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type AccountService interface {
	Register(ctx context.Context, name, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	Details(ctx context.Context, userID string) (*user.User, error)
}

type AuthHandler struct {
	accounts AccountService
	log      *slog.Logger
}

func NewAuthHandler(accounts AccountService, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}

	return &AuthHandler{
		accounts: accounts,
		log:      log,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" form:"name" binding:"required"`
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if err := Bind(ctx, &req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": BindError(err),
		})
		return
	}

	token, err := h.accounts.Register(ctx.Request.Context(), req.Name, req.Email, req.Password)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists"})
			return
		}

		h.log.ErrorContext(ctx.Request.Context(), "register failed", "err", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	RespondMessage(ctx, http.StatusOK, "User created successfully", gin.H{"token": token})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if err := Bind(ctx, &req); err != nil {
		RespondMessage(ctx, http.StatusBadRequest, "Invalid request body", gin.H{
			"details": BindError(err),
		})
		return
	}

	token, err := h.accounts.Login(ctx.Request.Context(), req.Email, req.Password)

	switch {
	case errors.Is(err, accounts.ErrUnknownEmail):
		RespondText(ctx, http.StatusBadRequest, "user does not exist")
		return
	case errors.Is(err, accounts.ErrWrongPassword):
		RespondText(ctx, http.StatusBadRequest, "invalid password")
		return
	case err != nil:
		h.log.ErrorContext(ctx.Request.Context(), "login failed", "err", err)
		RespondMessage(ctx, http.StatusInternalServerError, "Internal Server Error", nil)
		return
	}

	RespondMessage(ctx, http.StatusOK, "login successful", gin.H{"token": token})
}

// Protected only confirms the token was accepted by the auth gate.
func (h *AuthHandler) Protected(ctx *gin.Context) {
	RespondMessage(ctx, http.StatusOK, "access granted", nil)
}

func (h *AuthHandler) UserDetails(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	u, err := h.accounts.Details(ctx.Request.Context(), userID)

	if err != nil {
		respondLookupError(ctx, h.log, err)
		return
	}

	RespondMessage(ctx, http.StatusOK, "success", gin.H{"user": u})
}

// respondLookupError maps a failed user-scoped operation to 404 for a missing
// user and to 400 with the error text otherwise.
func respondLookupError(ctx *gin.Context, log *slog.Logger, err error) {
	if errors.Is(err, user.ErrNotFound) {
		RespondMessage(ctx, http.StatusNotFound, "User not found", nil)
		return
	}

	log.WarnContext(ctx.Request.Context(), "request failed", "route", ctx.FullPath(), "err", err)
	_ = ctx.Error(err)
	RespondMessage(ctx, http.StatusBadRequest, err.Error(), nil)
}
