package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/expense-tracker-api/config"
	userapp "github.com/oksasatya/expense-tracker-api/internal/application"
	"github.com/oksasatya/expense-tracker-api/internal/domain/entity"
	"github.com/oksasatya/expense-tracker-api/internal/interface/middleware"
	"github.com/oksasatya/expense-tracker-api/pkg/helpers"
	"github.com/oksasatya/expense-tracker-api/pkg/mailer"
	"github.com/oksasatya/expense-tracker-api/pkg/response"
	"github.com/oksasatya/expense-tracker-api/pkg/validation"
)

type AuthHandler struct {
	Svc    *userapp.UserService
	Logger *logrus.Logger
	Cfg    *config.Config
	Pub    *helpers.RabbitPublisher
}

func NewAuthHandler(svc *userapp.UserService, logger *logrus.Logger, cfg *config.Config, pub *helpers.RabbitPublisher) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cfg: cfg, Pub: pub}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func userSummary(u *entity.User) gin.H {
	return gin.H{
		"id":             u.ID,
		"email":          u.Email,
		"name":           u.Name,
		"email_verified": u.EmailVerified,
	}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, token, exp, err := h.Svc.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, userapp.ErrDuplicateEmail):
			response.Error[any](c, http.StatusConflict, "email already registered", nil)
		case errors.Is(err, helpers.ErrWeakPassword):
			response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
		default:
			h.Logger.WithError(err).Error("register failed")
			response.Error[any](c, http.StatusInternalServerError, "registration failed", nil)
		}
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"user": userSummary(u), "token": token},
		"user registered", gin.H{"expires_at": exp})
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, token, exp, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": userSummary(u), "token": token},
		"login successful", gin.H{"expires_at": exp})
}

// ForgotPassword POST /api/auth/forgot-password
// Always acknowledges, never reveals whether the email exists.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	token, u, err := h.Svc.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		h.Logger.WithError(err).Error("password reset request failed")
		response.Error[any](c, http.StatusInternalServerError, "request failed", nil)
		return
	}
	if token != "" && u != nil {
		link := h.Cfg.ResetPasswordURL + "?token=" + token
		h.enqueueEmail(c, mailer.EmailJob{
			To:      u.Email,
			Subject: "Reset your password",
			Text: "Hi " + u.Name + ",\n\nUse the link below to reset your password. " +
				"It expires in " + h.Cfg.ResetTokenTTL.String() + ".\n\n" + link + "\n",
		})
	}
	response.Success[any](c, http.StatusOK, nil,
		"if the email exists, a password reset link has been sent", nil)
}

// ResetPassword POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,pwd"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, userapp.ErrInvalidOrExpiredToken):
			response.Error[any](c, http.StatusBadRequest, "invalid or expired token", nil)
		case errors.Is(err, helpers.ErrWeakPassword):
			response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
		default:
			h.Logger.WithError(err).Error("password reset failed")
			response.Error[any](c, http.StatusInternalServerError, "reset failed", nil)
		}
		return
	}
	response.Success[any](c, http.StatusOK, nil, "password reset successfully", nil)
}

// ChangePassword POST /api/auth/change-password (auth required)
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,pwd"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ChangePassword(c.Request.Context(), uid, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, userapp.ErrInvalidCredentials):
			response.Error[any](c, http.StatusBadRequest, "current password is incorrect", nil)
		case errors.Is(err, helpers.ErrWeakPassword):
			response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
		default:
			h.Logger.WithError(err).Error("password change failed")
			response.Error[any](c, http.StatusInternalServerError, "change failed", nil)
		}
		return
	}
	response.Success[any](c, http.StatusOK, nil, "password changed successfully", nil)
}

// SendVerification POST /api/auth/send-verification (auth required)
func (h *AuthHandler) SendVerification(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	token, u, err := h.Svc.RequestEmailVerification(c.Request.Context(), uid)
	if err != nil {
		h.Logger.WithError(err).Error("verification token issue failed")
		response.Error[any](c, http.StatusInternalServerError, "request failed", nil)
		return
	}
	if token == "" {
		response.Success(c, http.StatusOK, gin.H{"already_verified": true}, "already verified", nil)
		return
	}
	link := h.Cfg.VerifyEmailURL + "?token=" + token
	h.enqueueEmail(c, mailer.EmailJob{
		To:      u.Email,
		Subject: "Verify your email address",
		Text: "Hi " + u.Name + ",\n\nConfirm this email address with the link below. " +
			"It expires in " + h.Cfg.VerifyTokenTTL.String() + ".\n\n" + link + "\n",
	})
	response.Success[any](c, http.StatusOK, nil, "verification email sent", nil)
}

// VerifyEmail POST /api/auth/verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		if errors.Is(err, userapp.ErrInvalidOrExpiredToken) {
			response.Error[any](c, http.StatusBadRequest, "invalid or expired token", nil)
			return
		}
		h.Logger.WithError(err).Error("email verification failed")
		response.Error[any](c, http.StatusInternalServerError, "verification failed", nil)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "email verified successfully", nil)
}

func (h *AuthHandler) enqueueEmail(c *gin.Context, job mailer.EmailJob) {
	if h.Pub == nil || h.Cfg == nil || !h.Cfg.MailSendEnabled {
		return
	}
	if err := h.Pub.PublishJSON(c.Request.Context(), job); err != nil {
		h.Logger.WithError(err).WithField("to", job.To).Warn("email enqueue failed")
	}
}
