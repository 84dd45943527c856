package handler

import (
	"errors"
	"net/http"

	"Medilink/internal/auth"
	"Medilink/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler interface {
	Info(c *gin.Context)
	Me(c *gin.Context)
}

type userHandler struct {
	service service.UserService
}

func NewUserHandler(service service.UserService) UserHandler {
	return &userHandler{
		service: service,
	}
}

// Info returns the public profile for an email. The chat screen uses it to
// render the counterpart's header.
func (h *userHandler) Info(c *gin.Context) {
	email := c.Param("email")

	profile, err := h.service.Info(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, service.ErrUnknownUser) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    profile,
	})
}

// Me returns the authenticated caller's own profile.
func (h *userHandler) Me(c *gin.Context) {
	profile, err := h.service.Info(c.Request.Context(), auth.Identity(c))
	if err != nil {
		if errors.Is(err, service.ErrUnknownUser) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    profile,
	})
}
