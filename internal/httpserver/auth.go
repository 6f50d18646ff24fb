package httpserver

import (
	"errors"
	"net/http"

	"veggi-storefront/internal/backend"
	"veggi-storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Avatar   string `json:"avatar"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

type userResponse struct {
	Success bool         `json:"success"`
	User    *domain.User `json:"user"`
	IsAdmin bool         `json:"isAdmin"`
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Please enter email and password")
		return
	}
	token, err := h.backend.Login(c.Request.Context(), backend.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		respondBackendError(c, h.logger, err, "Invalid email or password")
		return
	}
	h.establish(c, token, http.StatusOK)
}

func (h *handlers) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Please enter name, a valid email and a password of at least 6 characters")
		return
	}
	token, err := h.backend.Register(c.Request.Context(), backend.Registration{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Avatar:   req.Avatar,
	})
	if err != nil {
		respondBackendError(c, h.logger, err, "Registration failed")
		return
	}
	h.establish(c, token, http.StatusCreated)
}

// establish re-reads the user for token, as the role only comes from
// /auth/me, and binds both to the session.
func (h *handlers) establish(c *gin.Context, token string, status int) {
	if token == "" {
		respondError(c, http.StatusBadGateway, "Login failed")
		return
	}
	user, err := h.backend.Me(c.Request.Context(), token)
	if err != nil {
		respondBackendError(c, h.logger, err, "Login failed")
		return
	}
	sessionFrom(c).SetAuth(user, token)
	c.JSON(status, userResponse{Success: true, User: user, IsAdmin: user.IsAdmin()})
}

func (h *handlers) logout(c *gin.Context) {
	sess := sessionFrom(c)
	if token := sess.Token(); token != "" {
		if err := h.backend.Logout(c.Request.Context(), token); err != nil {
			h.logger.Warn("backend logout failed", zap.Error(err))
		}
	}
	sess.ClearAuth()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

// me re-validates the stored token so a revoked backend session signs the
// shopper out here too.
func (h *handlers) me(c *gin.Context) {
	sess := sessionFrom(c)
	token := sess.Token()
	if token == "" {
		respondError(c, http.StatusUnauthorized, "Not logged in")
		return
	}
	user, err := h.backend.Me(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			sess.ClearAuth()
			respondError(c, http.StatusUnauthorized, "Not logged in")
			return
		}
		respondBackendError(c, h.logger, err, "Could not load user")
		return
	}
	sess.SetAuth(user, token)
	c.JSON(http.StatusOK, userResponse{Success: true, User: user, IsAdmin: user.IsAdmin()})
}

func (h *handlers) forgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Please enter a valid email")
		return
	}
	if err := h.backend.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondBackendError(c, h.logger, err, "Could not send reset email")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email sent to " + req.Email})
}

func (h *handlers) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Please enter the new password twice")
		return
	}
	if req.Password != req.ConfirmPassword {
		respondError(c, http.StatusBadRequest, "Passwords do not match")
		return
	}
	if err := h.backend.ResetPassword(c.Request.Context(), c.Param("token"), req.Password, req.ConfirmPassword); err != nil {
		respondBackendError(c, h.logger, err, "Password reset failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
