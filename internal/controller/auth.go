package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"habitflow/internal/identity"
	"habitflow/internal/models"
)

type credentials struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
}

type authResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Register creates an account and returns the user with a bearer token.
func (h *Controller) Register(c *gin.Context) {
	ctx := c.Request.Context()
	var body credentials
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	user, token, err := h.auth.Register(ctx, body.Email, body.Password, body.DisplayName)
	if err != nil {
		respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusCreated, authResponse{User: user, Token: token})
}

// Login verifies credentials and returns the user with a bearer token.
func (h *Controller) Login(c *gin.Context) {
	ctx := c.Request.Context()
	var body credentials
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	user, token, err := h.auth.Login(ctx, body.Email, body.Password)
	if err != nil {
		respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, authResponse{User: user, Token: token})
}

// ResetPassword swaps the password for an account that proves ownership
// with the old one.
func (h *Controller) ResetPassword(c *gin.Context) {
	ctx := c.Request.Context()
	var body struct {
		Email       string `json:"email" binding:"required"`
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := h.auth.ResetPassword(ctx, body.Email, body.OldPassword, body.NewPassword); err != nil {
		respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// respondAuthError surfaces the coded auth errors so clients can branch on
// the code string.
func respondAuthError(c *gin.Context, err error) {
	var coded *identity.Error
	if !errors.As(err, &coded) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	status := http.StatusBadRequest
	switch coded {
	case identity.ErrEmailInUse:
		status = http.StatusConflict
	case identity.ErrUserNotFound:
		status = http.StatusNotFound
	case identity.ErrWrongPassword:
		status = http.StatusUnauthorized
	case identity.ErrTooManyRetries:
		status = http.StatusTooManyRequests
	case identity.ErrNetwork:
		status = http.StatusServiceUnavailable
	case identity.ErrUnknown:
		status = http.StatusInternalServerError
	}
	c.JSON(status, coded)
}
