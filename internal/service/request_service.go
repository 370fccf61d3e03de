package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/adigold/splitbook/internal/errs"
	"github.com/adigold/splitbook/internal/models"
	"github.com/adigold/splitbook/internal/storage"
)

// RequestService implements the transaction-request workflow: one user
// asks another to approve a transaction, and the request moves from
// PENDING to exactly one of APPROVED or REJECTED.
type RequestService struct {
	store storage.Store
}

// NewRequestService creates a new RequestService with the given storage
// backend.
func NewRequestService(store storage.Store) *RequestService {
	return &RequestService{store: store}
}

// CreateRequestInput carries the wire-form fields for a new request.
type CreateRequestInput struct {
	FromAccountID string
	ToAccountID   string
	CategoryID    string
	Amount        string
	Currency      string
	Date          string
	Description   string
}

// Create validates the input and persists a new PENDING request. The
// caller must own the from account.
func (s *RequestService) Create(ctx context.Context, callerUserID string, in CreateRequestInput) (*models.TransactionRequest, error) {
	fields := make(map[string]string)

	amount, err := models.ParseAmount(in.Amount)
	if err != nil {
		fields["amount"] = err.Error()
	} else if amount.Sign() <= 0 {
		fields["amount"] = "amount must be positive"
	}

	currency := models.Currency(in.Currency)
	if !currency.Valid() {
		fields["currency"] = "currency must be one of USD, EUR, ILS"
	}

	if err := models.ValidateDate(in.Date); err != nil {
		fields["date"] = err.Error()
	}

	if in.FromAccountID == "" {
		fields["fromAccountId"] = "fromAccountId is required"
	}
	if in.ToAccountID == "" {
		fields["toAccountId"] = "toAccountId is required"
	}
	if in.CategoryID == "" {
		fields["categoryId"] = "categoryId is required"
	}

	if len(fields) > 0 {
		return nil, errs.NewFieldValidation(fields)
	}

	fromAccount, err := s.store.GetAccount(ctx, in.FromAccountID)
	if err != nil {
		return nil, errs.NewServer(err)
	}
	if fromAccount == nil {
		return nil, errs.NewNotFound("account", in.FromAccountID)
	}

	toAccount, err := s.store.GetAccount(ctx, in.ToAccountID)
	if err != nil {
		return nil, errs.NewServer(err)
	}
	if toAccount == nil {
		return nil, errs.NewNotFound("account", in.ToAccountID)
	}

	if fromAccount.UserID != callerUserID {
		return nil, errs.AccessDenied()
	}

	category, err := s.store.GetCategory(ctx, in.CategoryID)
	if err != nil {
		return nil, errs.NewServer(err)
	}
	if category == nil {
		return nil, errs.NewNotFound("category", in.CategoryID)
	}

	req := &models.TransactionRequest{
		FromAccountID: in.FromAccountID,
		ToAccountID:   in.ToAccountID,
		CategoryID:    in.CategoryID,
		Amount:        amount,
		Currency:      currency,
		Date:          in.Date,
		Description:   in.Description,
		Status:        models.RequestPending,
	}
	if err := s.store.CreateTransactionRequest(ctx, req); err != nil {
		slog.Error("CreateTransactionRequest failed", "error", err)
		return nil, errs.NewServer(err)
	}

	slog.Info("Transaction request created",
		"request_id", req.ID,
		"from_account", req.FromAccountID,
		"to_account", req.ToAccountID,
		"amount", models.FormatAmount(req.Amount),
		"currency", req.Currency,
	)
	return req, nil
}

// Approve settles a PENDING request as APPROVED and posts the transaction
// to the approver's account. The status flip and the ledger post happen in
// one atomic unit: if posting fails, the request stays PENDING. A request
// already settled yields a validation error naming the terminal state,
// never a second ledger entry.
func (s *RequestService) Approve(ctx context.Context, requestID, callerUserID string) (*models.TransactionRequest, error) {
	return s.settle(ctx, requestID, callerUserID, models.RequestApproved)
}

// Reject settles a PENDING request as REJECTED with no ledger effect.
func (s *RequestService) Reject(ctx context.Context, requestID, callerUserID string) (*models.TransactionRequest, error) {
	return s.settle(ctx, requestID, callerUserID, models.RequestRejected)
}

func (s *RequestService) settle(ctx context.Context, requestID, callerUserID string, status models.RequestStatus) (*models.TransactionRequest, error) {
	req, err := s.store.GetTransactionRequest(ctx, requestID)
	if err != nil {
		return nil, errs.NewServer(err)
	}
	if req == nil {
		return nil, errs.NewNotFound("transaction request", requestID)
	}

	// Only the owner of the receiving account may settle the request.
	toAccount, err := s.store.GetAccount(ctx, req.ToAccountID)
	if err != nil {
		return nil, errs.NewServer(err)
	}
	if toAccount == nil || toAccount.UserID != callerUserID {
		return nil, errs.AccessDenied()
	}

	if req.Status != models.RequestPending {
		return nil, alreadySettled(req.Status)
	}

	var post *models.Transaction
	if status == models.RequestApproved {
		post = &models.Transaction{
			AccountID:   req.ToAccountID,
			CategoryID:  req.CategoryID,
			Amount:      req.Amount,
			Currency:    req.Currency,
			Date:        req.Date,
			Description: req.Description,
		}
	}

	applied, err := s.store.SettleTransactionRequest(ctx, requestID, status, post)
	if err != nil {
		slog.Error("SettleTransactionRequest failed", "request_id", requestID, "error", err)
		return nil, errs.NewServer(err)
	}
	if !applied {
		// Lost a settle race: report the state the winner left behind.
		current, err := s.store.GetTransactionRequest(ctx, requestID)
		if err != nil || current == nil {
			return nil, alreadySettled(models.RequestStatus("processed"))
		}
		return nil, alreadySettled(current.Status)
	}

	req.Status = status
	slog.Info("Transaction request settled",
		"request_id", requestID,
		"status", status,
		"user_id", callerUserID,
	)
	return req, nil
}

func alreadySettled(status models.RequestStatus) *errs.Validation {
	return errs.NewValidation("request already %s", strings.ToLower(string(status)))
}
