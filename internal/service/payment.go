package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/tour-guide-marketplace/internal/apperr"
	"github.com/iliyamo/tour-guide-marketplace/internal/authz"
	"github.com/iliyamo/tour-guide-marketplace/internal/model"
	"github.com/iliyamo/tour-guide-marketplace/internal/repository"
)

// PaymentService opens payment intents and records receipts against
// bookings.
type PaymentService struct {
	payments  PaymentRepository
	bookings  BookingRepository
	processor PaymentProcessor
	currency  string

	Now func() time.Time
}

func NewPaymentService(payments PaymentRepository, bookings BookingRepository, processor PaymentProcessor, currency string) *PaymentService {
	if currency == "" {
		currency = "usd"
	}
	return &PaymentService{
		payments:  payments,
		bookings:  bookings,
		processor: processor,
		currency:  currency,
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreatePaymentIntent asks the processor for a client secret covering
// amount, given in major units.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, caller authz.Caller, amount model.Money) (string, error) {
	if err := authz.Authorize(caller, authz.CreatePaymentIntent); err != nil {
		return "", err
	}
	if !amount.IsPositive() {
		return "", apperr.Validation("amount must be greater than zero")
	}
	if err := checkMoney("amount", amount, model.MaxAmount); err != nil {
		return "", err
	}
	return s.processor.CreateIntent(ctx, model.MinorUnits(amount), s.currency)
}

// SavePaymentInput is the receipt reported by the client after the
// processor confirmed the charge.
type SavePaymentInput struct {
	BookingID     string
	TouristEmail  string
	Amount        model.Money
	Method        string
	TransactionID string
}

// SavePayment records a completed receipt for the caller's booking, marks
// it PAID and, when it is still CONFIRMED, completes it.  All three writes
// happen together.
func (s *PaymentService) SavePayment(ctx context.Context, caller authz.Caller, in SavePaymentInput) (*model.Payment, error) {
	if err := authz.Authorize(caller, authz.SavePayment); err != nil {
		return nil, err
	}
	if in.BookingID == "" {
		return nil, apperr.Validation("bookingId is required")
	}
	if !in.Amount.IsPositive() {
		return nil, apperr.Validation("amount must be greater than zero")
	}
	if err := checkMoney("amount", in.Amount, model.MaxAmount); err != nil {
		return nil, err
	}

	v, err := s.bookings.GetByID(ctx, in.BookingID)
	if err != nil {
		return nil, notFoundAs(err, "booking not found")
	}
	if err := authz.Authorize(caller, authz.SavePayment, authz.Is(v.TouristID)); err != nil {
		return nil, err
	}
	if v.Status != model.StatusConfirmed && v.Status != model.StatusCompleted {
		return nil, apperr.Validation("booking is %s; only confirmed or completed bookings can be paid", v.Status)
	}

	now := s.Now()
	email := strings.TrimSpace(in.TouristEmail)
	if email == "" {
		email = caller.Email
	}
	p := &model.Payment{
		ID:            uuid.NewString(),
		BookingID:     v.ID,
		TouristEmail:  email,
		Amount:        in.Amount,
		Method:        in.Method,
		Status:        model.PaymentCompleted,
		TransactionID: in.TransactionID,
		PaymentDate:   now,
	}
	settle := model.Settlement{BookingID: v.ID, From: v.Status, To: v.Status}
	if v.Status == model.StatusConfirmed {
		settle.To = model.StatusCompleted
		settle.Entry = &model.StatusEntry{
			Status:    model.StatusCompleted,
			ChangedBy: caller.UserID,
			Role:      caller.Role,
			ChangedAt: now,
		}
	}

	if err := s.payments.Record(ctx, p, settle); err != nil {
		switch {
		case errors.Is(err, repository.ErrPaymentExists):
			return nil, apperr.Conflict("payment already recorded for this booking")
		case errors.Is(err, repository.ErrStaleBooking):
			return nil, apperr.Conflict("booking was updated by another request, reload and try again")
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperr.NotFound("booking not found")
		}
		return nil, err
	}
	return p, nil
}

// GetByBookingID returns the receipt of a booking visible to the caller.
func (s *PaymentService) GetByBookingID(ctx context.Context, caller authz.Caller, bookingID string) (*model.Payment, error) {
	v, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, notFoundAs(err, "booking not found")
	}
	if err := authz.Authorize(caller, authz.ViewPayment,
		authz.AnyOf(authz.Is(v.TouristID), authz.Is(v.AssignedGuide()))); err != nil {
		return nil, err
	}
	p, err := s.payments.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, notFoundAs(err, "payment not found")
	}
	return &p, nil
}
