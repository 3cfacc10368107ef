package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	txapp "github.com/oksasatya/expense-tracker-api/internal/application"
	"github.com/oksasatya/expense-tracker-api/internal/domain/entity"
	repo "github.com/oksasatya/expense-tracker-api/internal/domain/repository"
	"github.com/oksasatya/expense-tracker-api/internal/interface/middleware"
	"github.com/oksasatya/expense-tracker-api/pkg/money"
	"github.com/oksasatya/expense-tracker-api/pkg/response"
	"github.com/oksasatya/expense-tracker-api/pkg/validation"
)

type TransactionHandler struct {
	Svc    *txapp.TransactionService
	Logger *logrus.Logger
}

func NewTransactionHandler(svc *txapp.TransactionService, logger *logrus.Logger) *TransactionHandler {
	return &TransactionHandler{Svc: svc, Logger: logger}
}

func centsString(cents int64) string { return money.Format(cents) }

func transactionJSON(t *entity.Transaction) gin.H {
	return gin.H{
		"id":          t.ID,
		"kind":        t.Kind,
		"amount":      money.Format(t.AmountCents),
		"category":    t.Category,
		"description": t.Description,
		"timestamp":   t.Timestamp,
		"created_at":  t.CreatedAt,
		"updated_at":  t.UpdatedAt,
	}
}

// writeLedgerError maps service sentinels onto HTTP statuses; anything
// unrecognized is a 500 with the detail kept in the log.
func (h *TransactionHandler) writeLedgerError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, txapp.ErrTransactionNotFound):
		response.Error[any](c, http.StatusNotFound, "transaction not found", nil)
	case errors.Is(err, txapp.ErrInvalidKind),
		errors.Is(err, txapp.ErrInvalidAmount),
		errors.Is(err, txapp.ErrMissingCategory):
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
	default:
		h.Logger.WithError(err).Error(op + " failed")
		response.Error[any](c, http.StatusInternalServerError, op+" failed", nil)
	}
}

type createTransactionRequest struct {
	Kind        string     `json:"kind" binding:"required,oneof=income expense"`
	Amount      string     `json:"amount" binding:"required"`
	Category    string     `json:"category" binding:"required"`
	Description string     `json:"description"`
	Timestamp   *time.Time `json:"timestamp"`
}

// Create POST /api/transactions
func (h *TransactionHandler) Create(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	t, err := h.Svc.Create(c.Request.Context(), uid, txapp.CreateTransactionInput{
		Kind:        req.Kind,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Timestamp:   req.Timestamp,
	})
	if err != nil {
		h.writeLedgerError(c, err, "create transaction")
		return
	}
	response.Success(c, http.StatusCreated, transactionJSON(t), "transaction created", nil)
}

// Get GET /api/transactions/:id
func (h *TransactionHandler) Get(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	id, ok := pathID(c)
	if !ok {
		return
	}
	t, err := h.Svc.Get(c.Request.Context(), uid, id)
	if err != nil {
		h.writeLedgerError(c, err, "get transaction")
		return
	}
	response.Success(c, http.StatusOK, transactionJSON(t), "transaction fetched", nil)
}

// List GET /api/transactions
// Query params: kind, category, date_from, date_to (YYYY-MM-DD, inclusive),
// page, page_size.
func (h *TransactionHandler) List(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	f, err := filterFromQuery(c)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(txapp.DefaultPageSize)))

	items, total, err := h.Svc.List(c.Request.Context(), uid, f, page, pageSize)
	if err != nil {
		h.writeLedgerError(c, err, "list transactions")
		return
	}
	out := make([]gin.H, 0, len(items))
	for i := range items {
		out = append(out, transactionJSON(&items[i]))
	}
	response.Success(c, http.StatusOK, out, "transactions fetched", gin.H{
		"page":      page,
		"page_size": pageSize,
		"total":     total,
	})
}

type updateTransactionRequest struct {
	Kind        *string    `json:"kind" binding:"omitempty,oneof=income expense"`
	Amount      *string    `json:"amount"`
	Category    *string    `json:"category"`
	Description *string    `json:"description"`
	Timestamp   *time.Time `json:"timestamp"`
}

// Update PUT /api/transactions/:id
func (h *TransactionHandler) Update(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	t, err := h.Svc.Update(c.Request.Context(), uid, id, txapp.UpdateTransactionInput{
		Kind:        req.Kind,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Timestamp:   req.Timestamp,
	})
	if err != nil {
		h.writeLedgerError(c, err, "update transaction")
		return
	}
	response.Success(c, http.StatusOK, transactionJSON(t), "transaction updated", nil)
}

// Delete DELETE /api/transactions/:id
func (h *TransactionHandler) Delete(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), uid, id); err != nil {
		h.writeLedgerError(c, err, "delete transaction")
		return
	}
	response.Success[any](c, http.StatusOK, nil, "transaction deleted", nil)
}

// Summary GET /api/transactions/summary
// Accepts the same filter params as List; aggregates the full filtered set.
func (h *TransactionHandler) Summary(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	f, err := filterFromQuery(c)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	sum, err := h.Svc.Summary(c.Request.Context(), uid, f)
	if err != nil {
		h.writeLedgerError(c, err, "summarize transactions")
		return
	}
	breakdown := make(map[string]string, len(sum.CategoryBreakdown))
	for cat, cents := range sum.CategoryBreakdown {
		breakdown[cat] = money.Format(cents)
	}
	response.Success(c, http.StatusOK, gin.H{
		"total_income":       money.Format(sum.TotalIncomeCents),
		"total_expense":      money.Format(sum.TotalExpenseCents),
		"balance":            money.Format(sum.BalanceCents),
		"category_breakdown": breakdown,
	}, "summary computed", nil)
}

// Categories GET /api/transactions/categories
func (h *TransactionHandler) Categories(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	income, expense, err := h.Svc.Categories(c.Request.Context(), uid)
	if err != nil {
		h.writeLedgerError(c, err, "list categories")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"income":  income,
		"expense": expense,
	}, "categories fetched", nil)
}

// Search GET /api/transactions/search?q=...&size=...
func (h *TransactionHandler) Search(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "query parameter q is required", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.Search(c.Request.Context(), uid, q, size)
	if err != nil {
		h.Logger.WithError(err).Error("transaction search failed")
		response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", gin.H{"count": len(hits)})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		response.Error[any](c, http.StatusBadRequest, "invalid transaction id", nil)
		return 0, false
	}
	return id, true
}

func filterFromQuery(c *gin.Context) (repo.TransactionFilter, error) {
	var f repo.TransactionFilter
	if v := c.Query("kind"); v != "" {
		kind := entity.Kind(v)
		if !kind.Valid() {
			return f, errors.New("kind must be income or expense")
		}
		f.Kind = &kind
	}
	if v := c.Query("category"); v != "" {
		f.Category = &v
	}
	if v := c.Query("date_from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, errors.New("date_from must be YYYY-MM-DD")
		}
		f.DateFrom = &t
	}
	if v := c.Query("date_to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, errors.New("date_to must be YYYY-MM-DD")
		}
		f.DateTo = &t
	}
	return f, nil
}
