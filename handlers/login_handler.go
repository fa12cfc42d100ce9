package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Login exchanges admin credentials for a token.
func (h *Handler) Login(c *gin.Context) {
	var credentials struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&credentials); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
		return
	}

	token, err := h.Auth.Authenticate(credentials.Email, credentials.Password)
	if err != nil {
		h.Log.Warn("admin login failed", map[string]string{"email": credentials.Email, "ip": c.ClientIP()})
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	h.Log.Info("admin logged in", map[string]string{"email": credentials.Email})
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"admin": h.Auth.Admin(),
	})
}
