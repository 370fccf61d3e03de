package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adigold/splitbook/internal/middleware"
	"github.com/adigold/splitbook/internal/models"
	"github.com/adigold/splitbook/internal/service"
)

// RecurringHandler serves recurring-template management and application.
type RecurringHandler struct {
	recurring *service.RecurringService
}

// NewRecurringHandler creates a RecurringHandler backed by the recurring
// service.
func NewRecurringHandler(recurring *service.RecurringService) *RecurringHandler {
	return &RecurringHandler{recurring: recurring}
}

type createTemplateBody struct {
	AccountID   string `json:"accountId"`
	CategoryID  string `json:"categoryId"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	DayOfMonth  int    `json:"dayOfMonth"`
	Description string `json:"description"`
}

func templateJSON(t *models.RecurringTemplate) gin.H {
	return gin.H{
		"id":          t.ID,
		"accountId":   t.AccountID,
		"categoryId":  t.CategoryID,
		"amount":      models.FormatAmount(t.Amount),
		"currency":    string(t.Currency),
		"dayOfMonth":  t.DayOfMonth,
		"description": t.Description,
		"createdAt":   isoTime(t.CreatedAt),
	}
}

// Create handles POST /recurring-templates.
func (h *RecurringHandler) Create(c *gin.Context) {
	var body createTemplateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadJSON(c, err)
		return
	}

	tmpl, err := h.recurring.CreateTemplate(c.Request.Context(), middleware.GetUserID(c), service.CreateTemplateInput{
		AccountID:   body.AccountID,
		CategoryID:  body.CategoryID,
		Amount:      body.Amount,
		Currency:    body.Currency,
		DayOfMonth:  body.DayOfMonth,
		Description: body.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, templateJSON(tmpl))
}

// List handles GET /recurring-templates.
func (h *RecurringHandler) List(c *gin.Context) {
	templates, err := h.recurring.ListTemplates(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(templates))
	for _, t := range templates {
		items = append(items, templateJSON(t))
	}
	c.JSON(http.StatusOK, gin.H{"templates": items})
}

// ApplyDue handles POST /recurring-templates/apply. Applying twice in the
// same month is harmless: already-applied templates are skipped.
func (h *RecurringHandler) ApplyDue(c *gin.Context) {
	applied, err := h.recurring.ApplyDue(c.Request.Context(), middleware.GetUserID(c), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"applied": applied})
}
