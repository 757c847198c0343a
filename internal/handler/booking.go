package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-guide-marketplace/internal/authz"
	"github.com/iliyamo/tour-guide-marketplace/internal/model"
	"github.com/iliyamo/tour-guide-marketplace/internal/service"
)

// BookingHandler serves booking creation, lifecycle and lookups.
type BookingHandler struct {
	bookings *service.BookingService
}

func NewBookingHandler(bookings *service.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

type createBookingReq struct {
	BookingType model.BookingKind `json:"bookingType" validate:"required,oneof=TOUR_PACKAGE GUIDE_HIRE"`
	TourID      string            `json:"tourId"`
	GuideID     string            `json:"guideId"`
	HourlyRate  *model.Money      `json:"hourlyRate"`
	Hours       *model.Money      `json:"hours"`
	TourDate    string            `json:"tourDate" validate:"required"`
}

type statusReq struct {
	Status model.BookingStatus `json:"status" validate:"required"`
}

func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingReq
	if err := bind(c, &req); err != nil {
		return err
	}
	date, err := parseDate(req.TourDate)
	if err != nil {
		return err
	}
	ctx, cancel, caller := scope(c)
	defer cancel()

	b, err := h.bookings.Create(ctx, caller, service.CreateBookingInput{
		Kind:       req.BookingType,
		TourID:     req.TourID,
		GuideID:    req.GuideID,
		HourlyRate: req.HourlyRate,
		Hours:      req.Hours,
		TourDate:   date,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Booking created successfully", b)
}

func (h *BookingHandler) List(c echo.Context) error {
	ctx, cancel, caller := scope(c)
	defer cancel()

	page, err := h.bookings.List(ctx, caller, pageRequest(c))
	if err != nil {
		return err
	}
	return respondPage(c, "Bookings retrieved successfully", page)
}

func (h *BookingHandler) Get(c echo.Context) error {
	ctx, cancel, caller := scope(c)
	defer cancel()

	v, err := h.bookings.Get(ctx, caller, c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Booking fetched successfully", v)
}

// UpdateStatus moves a booking to the status named in the body.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	var req statusReq
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.transition(c, req.Status, "Booking status updated successfully")
}

// Complete is the guide shortcut for moving a booking to COMPLETED.
func (h *BookingHandler) Complete(c echo.Context) error {
	return h.transition(c, model.StatusCompleted, "Booking marked as completed")
}

func (h *BookingHandler) transition(c echo.Context, to model.BookingStatus, msg string) error {
	ctx, cancel, caller := scope(c)
	defer cancel()

	v, err := h.bookings.Transition(ctx, caller, c.Param("id"), to)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, msg, v)
}

func (h *BookingHandler) GuidePending(c echo.Context) error {
	return h.list(c, "Pending bookings fetched successfully", h.bookings.GuidePending)
}

func (h *BookingHandler) GuideActive(c echo.Context) error {
	return h.list(c, "Active bookings fetched successfully", h.bookings.GuideActive)
}

func (h *BookingHandler) NeedPayment(c echo.Context) error {
	return h.list(c, "Bookings awaiting payment fetched successfully", h.bookings.NeedPayment)
}

func (h *BookingHandler) Unpaid(c echo.Context) error {
	return h.list(c, "Unpaid bookings fetched successfully", h.bookings.Unpaid)
}

func (h *BookingHandler) Paid(c echo.Context) error {
	return h.list(c, "Paid bookings fetched successfully", h.bookings.Paid)
}

// ByTarget finds the caller's booking of a guide or tour.
func (h *BookingHandler) ByTarget(c echo.Context) error {
	ctx, cancel, caller := scope(c)
	defer cancel()

	v, err := h.bookings.ByTarget(ctx, caller, c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Booking fetched successfully", v)
}

type listFunc func(context.Context, authz.Caller) ([]model.BookingView, error)

func (h *BookingHandler) list(c echo.Context, msg string, fn listFunc) error {
	ctx, cancel, caller := scope(c)
	defer cancel()

	views, err := fn(ctx, caller)
	if err != nil {
		return err
	}
	if views == nil {
		views = []model.BookingView{}
	}
	return respond(c, http.StatusOK, msg, views)
}
