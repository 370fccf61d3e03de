package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adigold/splitbook/internal/middleware"
	"github.com/adigold/splitbook/internal/models"
	"github.com/adigold/splitbook/internal/service"
)

// LedgerHandler serves accounts, categories, transaction listings and the
// monthly summary.
type LedgerHandler struct {
	ledger *service.LedgerService
}

// NewLedgerHandler creates a LedgerHandler backed by the ledger service.
func NewLedgerHandler(ledger *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

type createAccountBody struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

type createCategoryBody struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func accountJSON(a *models.Account) gin.H {
	return gin.H{
		"id":        a.ID,
		"name":      a.Name,
		"currency":  string(a.Currency),
		"createdAt": isoTime(a.CreatedAt),
	}
}

func transactionJSON(t *models.Transaction) gin.H {
	return gin.H{
		"id":          t.ID,
		"accountId":   t.AccountID,
		"categoryId":  t.CategoryID,
		"amount":      models.FormatAmount(t.Amount),
		"currency":    string(t.Currency),
		"date":        t.Date,
		"description": t.Description,
		"createdAt":   isoTime(t.CreatedAt),
	}
}

// CreateAccount handles POST /accounts.
func (h *LedgerHandler) CreateAccount(c *gin.Context) {
	var body createAccountBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadJSON(c, err)
		return
	}

	account, err := h.ledger.CreateAccount(c.Request.Context(), middleware.GetUserID(c), body.Name, body.Currency)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, accountJSON(account))
}

// ListAccounts handles GET /accounts.
func (h *LedgerHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.ledger.ListAccounts(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(accounts))
	for _, a := range accounts {
		items = append(items, accountJSON(a))
	}
	c.JSON(http.StatusOK, gin.H{"accounts": items})
}

// CreateCategory handles POST /categories.
func (h *LedgerHandler) CreateCategory(c *gin.Context) {
	var body createCategoryBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadJSON(c, err)
		return
	}

	category, err := h.ledger.CreateCategory(c.Request.Context(), middleware.GetUserID(c), body.Name, body.Kind)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":   category.ID,
		"name": category.Name,
		"kind": string(category.Kind),
	})
}

// ListCategories handles GET /categories.
func (h *LedgerHandler) ListCategories(c *gin.Context) {
	categories, err := h.ledger.ListCategories(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(categories))
	for _, cat := range categories {
		items = append(items, gin.H{
			"id":   cat.ID,
			"name": cat.Name,
			"kind": string(cat.Kind),
		})
	}
	c.JSON(http.StatusOK, gin.H{"categories": items})
}

// ListTransactions handles GET /accounts/:id/transactions.
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		respondBadJSON(c, err)
		return
	}
	offset, err := intQuery(c, "offset", 0)
	if err != nil {
		respondBadJSON(c, err)
		return
	}

	txns, total, svcErr := h.ledger.ListTransactions(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), limit, offset)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}

	items := make([]gin.H, 0, len(txns))
	for _, t := range txns {
		items = append(items, transactionJSON(t))
	}
	c.JSON(http.StatusOK, gin.H{
		"items":   items,
		"total":   total,
		"hasMore": offset+len(items) < total,
	})
}

// Summary handles GET /summary?year=&month=.
func (h *LedgerHandler) Summary(c *gin.Context) {
	year, err := intQuery(c, "year", 0)
	if err != nil {
		respondBadJSON(c, err)
		return
	}
	month, err := intQuery(c, "month", 0)
	if err != nil {
		respondBadJSON(c, err)
		return
	}

	summary, svcErr := h.ledger.Summary(c.Request.Context(), middleware.GetUserID(c), year, month)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}

	categories := make([]gin.H, 0, len(summary.Categories))
	for _, t := range summary.Categories {
		categories = append(categories, gin.H{
			"categoryId":   t.CategoryID,
			"categoryName": t.CategoryName,
			"kind":         string(t.Kind),
			"total":        models.FormatAmount(t.Total),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"month":         summary.Month,
		"categories":    categories,
		"totalExpenses": models.FormatAmount(summary.TotalExpenses),
		"totalIncome":   models.FormatAmount(summary.TotalIncome),
	})
}
