package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/expense-tracker-api/internal/application"
	"github.com/oksasatya/expense-tracker-api/internal/domain/entity"
	"github.com/oksasatya/expense-tracker-api/internal/interface/middleware"
	"github.com/oksasatya/expense-tracker-api/pkg/response"
	"github.com/oksasatya/expense-tracker-api/pkg/validation"
)

type UserHandler struct {
	Svc    *userapp.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *userapp.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

func profileJSON(u *entity.User) gin.H {
	return gin.H{
		"id":             u.ID,
		"email":          u.Email,
		"name":           u.Name,
		"email_verified": u.EmailVerified,
		"created_at":     u.CreatedAt,
		"updated_at":     u.UpdatedAt,
	}
}

// GetProfile GET /api/users/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.GetProfile(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, userapp.ErrUserNotFound) {
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
			return
		}
		h.Logger.WithError(err).Error("get profile failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to fetch profile", nil)
		return
	}
	response.Success(c, http.StatusOK, profileJSON(u), "profile fetched", nil)
}

type updateProfileRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=120"`
	Email *string `json:"email" binding:"omitempty,email"`
}

// UpdateProfile PUT /api/users/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), uid, userapp.UpdateProfileInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, userapp.ErrUserNotFound):
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
		case errors.Is(err, userapp.ErrDuplicateEmail):
			response.Error[any](c, http.StatusConflict, "email already registered", nil)
		default:
			h.Logger.WithError(err).Error("update profile failed")
			response.Error[any](c, http.StatusInternalServerError, "failed to update profile", nil)
		}
		return
	}
	response.Success(c, http.StatusOK, profileJSON(u), "profile updated", nil)
}

// DeleteAccount DELETE /api/users/account
// Requires the current password; removes the user and, via cascade,
// every transaction they own.
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.DeleteAccount(c.Request.Context(), uid, req.Password); err != nil {
		switch {
		case errors.Is(err, userapp.ErrInvalidCredentials):
			response.Error[any](c, http.StatusBadRequest, "password is incorrect", nil)
		case errors.Is(err, userapp.ErrUserNotFound):
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
		default:
			h.Logger.WithError(err).Error("account deletion failed")
			response.Error[any](c, http.StatusInternalServerError, "failed to delete account", nil)
		}
		return
	}
	response.Success[any](c, http.StatusOK, nil, "account deleted", nil)
}

// Stats GET /api/users/stats
func (h *UserHandler) Stats(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	st, err := h.Svc.Stats(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, userapp.ErrUserNotFound) {
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
			return
		}
		h.Logger.WithError(err).Error("stats failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to fetch stats", nil)
		return
	}
	monthly := make([]gin.H, 0, len(st.MonthlyStats))
	for _, m := range st.MonthlyStats {
		monthly = append(monthly, gin.H{
			"month":             m.Month,
			"transaction_count": m.TransactionCount,
			"total_income":      centsString(m.TotalIncomeCents),
			"total_expense":     centsString(m.TotalExpenseCents),
		})
	}
	response.Success(c, http.StatusOK, gin.H{
		"total_transactions": st.TotalTransactions,
		"account_created":    st.AccountCreated,
		"email_verified":     st.EmailVerified,
		"monthly_stats":      monthly,
	}, "stats fetched", nil)
}
