package handler

import (
	"errors"
	"net/http"

	"Medilink/internal/auth"
	"Medilink/internal/model"
	"Medilink/internal/repo"
	"Medilink/internal/service"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

type AuthHandler interface {
	LoginPatient(c *gin.Context)
	LoginDoctor(c *gin.Context)
	Register(c *gin.Context)
}

type authHandler struct {
	service service.UserService
	tokens  *auth.Manager
}

func NewAuthHandler(service service.UserService, tokens *auth.Manager) AuthHandler {
	return &authHandler{
		service: service,
		tokens:  tokens,
	}
}

func (h *authHandler) LoginPatient(c *gin.Context) {
	h.login(c, model.RolePatient)
}

func (h *authHandler) LoginDoctor(c *gin.Context) {
	h.login(c, model.RoleDoctor)
}

func (h *authHandler) login(c *gin.Context, role string) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	user, err := h.service.Login(c.Request.Context(), req.Email, req.Password, role)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Login failed"})
		return
	}

	pair, err := h.tokens.CreateTokenPair(user.Email, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"token":        pair.Token,
		"refreshToken": pair.RefreshToken,
		"user":         user.Public(),
	})
}

func (h *authHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	user, err := h.service.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, repo.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "An account with this email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Registration failed"})
		return
	}

	pair, err := h.tokens.CreateTokenPair(user.Email, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Registration failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"token":   pair.Token,
		"user":    user.Public(),
	})
}
