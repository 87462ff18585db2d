package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"leadchat/internal/app"
	"leadchat/internal/transport/http/middleware"
	"leadchat/internal/transport/http/response"
)

type AuthHandler struct {
	authService *app.AuthService
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

func NewAuthHandler(authService *app.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid registration data")
		return
	}

	result, err := h.authService.Register(app.RegisterInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "Invalid registration data")
		case errors.Is(err, app.ErrUsernameExists):
			response.Error(c, http.StatusConflict, "Username already exists")
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to register")
		}
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{Token: result.Token, User: result.User})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid login data")
		return
	}

	result, err := h.authService.Login(app.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "Invalid login data")
		case errors.Is(err, app.ErrInvalidCredential):
			response.Error(c, http.StatusUnauthorized, "Invalid username or password")
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to log in")
		}
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: result.Token, User: result.User})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "invalid token payload")
		return
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil || user == nil {
		response.Error(c, http.StatusNotFound, "User not found")
		return
	}
	c.JSON(http.StatusOK, user)
}
