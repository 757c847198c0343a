package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-guide-marketplace/internal/model"
	"github.com/iliyamo/tour-guide-marketplace/internal/service"
)

// PaymentHandler serves payment intents and receipts.
type PaymentHandler struct {
	payments *service.PaymentService
}

func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type intentReq struct {
	Amount model.Money `json:"amount"`
}

type savePaymentReq struct {
	BookingID     string      `json:"bookingId" validate:"required"`
	TouristEmail  string      `json:"touristEmail" validate:"omitempty,email"`
	Amount        model.Money `json:"amount"`
	Method        string      `json:"method" validate:"required"`
	TransactionID string      `json:"transactionId" validate:"required"`
}

// CreateIntent returns the processor's client secret for the amount.
func (h *PaymentHandler) CreateIntent(c echo.Context) error {
	var req intentReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel, caller := scope(c)
	defer cancel()

	secret, err := h.payments.CreatePaymentIntent(ctx, caller, req.Amount)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Payment intent created successfully", map[string]string{"clientSecret": secret})
}

// Save records the receipt reported after a successful charge.
func (h *PaymentHandler) Save(c echo.Context) error {
	var req savePaymentReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel, caller := scope(c)
	defer cancel()

	p, err := h.payments.SavePayment(ctx, caller, service.SavePaymentInput{
		BookingID:     req.BookingID,
		TouristEmail:  req.TouristEmail,
		Amount:        req.Amount,
		Method:        req.Method,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Payment saved successfully", p)
}

func (h *PaymentHandler) GetByBooking(c echo.Context) error {
	ctx, cancel, caller := scope(c)
	defer cancel()

	p, err := h.payments.GetByBookingID(ctx, caller, c.Param("bookingId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Payment fetched successfully", p)
}
