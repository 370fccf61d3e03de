package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/adigold/splitbook/internal/middleware"
	"github.com/adigold/splitbook/internal/models"
	"github.com/adigold/splitbook/internal/service"
)

// ExpenseHandler serves shared-expense settlement.
type ExpenseHandler struct {
	expenses *service.ExpenseService
}

// NewExpenseHandler creates an ExpenseHandler backed by the expense
// service.
func NewExpenseHandler(expenses *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

type shareBody struct {
	PayerID     string `json:"payerId"`
	ShareAmount string `json:"shareAmount"`
}

type createExpenseBody struct {
	Amount       string      `json:"amount"`
	Currency     string      `json:"currency"`
	CategoryID   string      `json:"categoryId"`
	Date         string      `json:"date"`
	Description  string      `json:"description"`
	Participants []shareBody `json:"participants"`
}

type participantResponse struct {
	ID          string `json:"id"`
	PayerID     string `json:"payerId"`
	ShareAmount string `json:"shareAmount"`
	Status      string `json:"status"`
	PaidAt      string `json:"paidAt,omitempty"`
}

type expenseResponse struct {
	ID           string                `json:"id"`
	OwnerID      string                `json:"ownerId"`
	Amount       string                `json:"amount"`
	Currency     string                `json:"currency"`
	CategoryID   string                `json:"categoryId"`
	Date         string                `json:"date"`
	Description  string                `json:"description,omitempty"`
	Settled      bool                  `json:"settled"`
	Participants []participantResponse `json:"participants"`
	CreatedAt    string                `json:"createdAt"`
}

func toExpenseResponse(e *models.SharedExpense) expenseResponse {
	resp := expenseResponse{
		ID:           e.ID,
		OwnerID:      e.OwnerID,
		Amount:       models.FormatAmount(e.Amount),
		Currency:     string(e.Currency),
		CategoryID:   e.CategoryID,
		Date:         e.Date,
		Description:  e.Description,
		Settled:      e.Settled(),
		Participants: make([]participantResponse, 0, len(e.Participants)),
		CreatedAt:    isoTime(e.CreatedAt),
	}
	for i := range e.Participants {
		p := &e.Participants[i]
		pr := participantResponse{
			ID:          p.ID,
			PayerID:     p.PayerID,
			ShareAmount: models.FormatAmount(p.ShareAmount),
			Status:      string(p.Status),
		}
		if p.PaidAt != 0 {
			pr.PaidAt = isoTime(p.PaidAt)
		}
		resp.Participants = append(resp.Participants, pr)
	}
	return resp
}

// Create handles POST /shared-expenses.
func (h *ExpenseHandler) Create(c *gin.Context) {
	var body createExpenseBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadJSON(c, err)
		return
	}

	in := service.CreateExpenseInput{
		Amount:      body.Amount,
		Currency:    body.Currency,
		CategoryID:  body.CategoryID,
		Date:        body.Date,
		Description: body.Description,
	}
	for _, p := range body.Participants {
		in.Participants = append(in.Participants, service.ShareInput{
			PayerID:     p.PayerID,
			ShareAmount: p.ShareAmount,
		})
	}

	expense, err := h.expenses.Create(c.Request.Context(), middleware.GetUserID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toExpenseResponse(expense))
}

// List handles GET /shared-expenses.
func (h *ExpenseHandler) List(c *gin.Context) {
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

	page, err := h.expenses.List(c.Request.Context(), middleware.GetUserID(c), service.ListExpensesInput{
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]expenseResponse, 0, len(page.Items))
	for _, e := range page.Items {
		items = append(items, toExpenseResponse(e))
	}

	c.JSON(http.StatusOK, gin.H{
		"items":   items,
		"total":   page.Total,
		"hasMore": page.HasMore,
	})
}

// MarkPaid handles POST /participants/:participantId/pay.
func (h *ExpenseHandler) MarkPaid(c *gin.Context) {
	result, err := h.expenses.MarkParticipantPaid(c.Request.Context(), c.Param("participantId"), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     result.ID,
		"status": string(result.Status),
		"paidAt": isoTime(result.PaidAt),
	})
}

// Cancel handles DELETE /shared-expenses/:id.
func (h *ExpenseHandler) Cancel(c *gin.Context) {
	if err := h.expenses.Cancel(c.Request.Context(), c.Param("id"), middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// intQuery parses an optional integer query parameter.
func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
