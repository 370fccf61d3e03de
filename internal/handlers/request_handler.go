package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adigold/splitbook/internal/middleware"
	"github.com/adigold/splitbook/internal/models"
	"github.com/adigold/splitbook/internal/service"
)

// RequestHandler serves the transaction-request workflow.
type RequestHandler struct {
	requests *service.RequestService
}

// NewRequestHandler creates a RequestHandler backed by the request
// service.
func NewRequestHandler(requests *service.RequestService) *RequestHandler {
	return &RequestHandler{requests: requests}
}

type createRequestBody struct {
	FromAccountID string `json:"fromAccountId"`
	ToAccountID   string `json:"toAccountId"`
	CategoryID    string `json:"categoryId"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Date          string `json:"date"`
	Description   string `json:"description"`
}

type requestResponse struct {
	ID            string `json:"id"`
	FromAccountID string `json:"fromAccountId"`
	ToAccountID   string `json:"toAccountId"`
	CategoryID    string `json:"categoryId"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Date          string `json:"date"`
	Description   string `json:"description,omitempty"`
	Status        string `json:"status"`
	CreatedAt     string `json:"createdAt"`
}

func toRequestResponse(r *models.TransactionRequest) requestResponse {
	return requestResponse{
		ID:            r.ID,
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
		CategoryID:    r.CategoryID,
		Amount:        models.FormatAmount(r.Amount),
		Currency:      string(r.Currency),
		Date:          r.Date,
		Description:   r.Description,
		Status:        string(r.Status),
		CreatedAt:     isoTime(r.CreatedAt),
	}
}

// Create handles POST /transaction-requests.
func (h *RequestHandler) Create(c *gin.Context) {
	var body createRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadJSON(c, err)
		return
	}

	req, err := h.requests.Create(c.Request.Context(), middleware.GetUserID(c), service.CreateRequestInput{
		FromAccountID: body.FromAccountID,
		ToAccountID:   body.ToAccountID,
		CategoryID:    body.CategoryID,
		Amount:        body.Amount,
		Currency:      body.Currency,
		Date:          body.Date,
		Description:   body.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toRequestResponse(req))
}

// Approve handles POST /transaction-requests/:id/approve.
func (h *RequestHandler) Approve(c *gin.Context) {
	req, err := h.requests.Approve(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRequestResponse(req))
}

// Reject handles POST /transaction-requests/:id/reject.
func (h *RequestHandler) Reject(c *gin.Context) {
	req, err := h.requests.Reject(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRequestResponse(req))
}
