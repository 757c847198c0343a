package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/tour-guide-marketplace/internal/apperr"
	"github.com/iliyamo/tour-guide-marketplace/internal/authz"
	"github.com/iliyamo/tour-guide-marketplace/internal/model"
	"github.com/iliyamo/tour-guide-marketplace/internal/queue"
	"github.com/iliyamo/tour-guide-marketplace/internal/repository"
)

// BookingService runs the booking lifecycle.
type BookingService struct {
	bookings BookingRepository
	users    UserRepository
	tours    TourRepository
	events   EventPublisher
	log      *slog.Logger

	// Now is the clock used for timestamps and the tour-date guard.
	Now func() time.Time
}

func NewBookingService(bookings BookingRepository, users UserRepository, tours TourRepository, events EventPublisher, log *slog.Logger) *BookingService {
	return &BookingService{
		bookings: bookings,
		users:    users,
		tours:    tours,
		events:   events,
		log:      log,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateBookingInput is the tourist's booking request.  Which fields are
// required depends on Kind.
type CreateBookingInput struct {
	Kind       model.BookingKind
	TourID     string
	GuideID    string
	HourlyRate *model.Money
	Hours      *model.Money
	TourDate   time.Time
}

// Create books a tour package or hires a guide on behalf of a tourist.
// The booking starts PENDING and UNPAID with one history entry.
func (s *BookingService) Create(ctx context.Context, caller authz.Caller, in CreateBookingInput) (*model.Booking, error) {
	if err := authz.Authorize(caller, authz.CreateBooking); err != nil {
		return nil, err
	}
	if in.TourDate.IsZero() {
		return nil, apperr.Validation("tourDate is required")
	}

	now := s.Now()
	b := &model.Booking{
		ID:            uuid.NewString(),
		Kind:          in.Kind,
		TouristID:     caller.UserID,
		TourDate:      in.TourDate.UTC(),
		Status:        model.StatusPending,
		PaymentStatus: model.PaymentUnpaid,
		StatusHistory: []model.StatusEntry{{
			Status:    model.StatusPending,
			ChangedBy: caller.UserID,
			Role:      caller.Role,
			ChangedAt: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	switch in.Kind {
	case model.KindGuideHire:
		if in.GuideID == "" || in.HourlyRate == nil || in.Hours == nil {
			return nil, apperr.Validation("guideId, hourlyRate, and hours are required for GUIDE_HIRE")
		}
		if !in.HourlyRate.IsPositive() || !in.Hours.IsPositive() {
			return nil, apperr.Validation("hourlyRate and hours must be greater than zero")
		}
		if err := checkMoney("hourlyRate", *in.HourlyRate, model.MaxAmount); err != nil {
			return nil, err
		}
		if err := checkMoney("hours", *in.Hours, model.MaxHours); err != nil {
			return nil, err
		}
		total := in.HourlyRate.Mul(*in.Hours).Round(2)
		if err := checkMoney("totalPrice", total, model.MaxAmount); err != nil {
			return nil, err
		}
		guide, err := s.users.GetByID(ctx, in.GuideID)
		if err != nil {
			return nil, notFoundAs(err, "guide not found")
		}
		if guide.Role != model.RoleGuide {
			return nil, apperr.NotFound("guide not found")
		}
		b.GuideID = &guide.ID
		b.HourlyRate = in.HourlyRate
		b.Hours = in.Hours
		b.TotalPrice = total

	case model.KindTourPackage:
		if in.TourID == "" {
			return nil, apperr.Validation("tourId is required for TOUR_PACKAGE")
		}
		tour, err := s.tours.GetByID(ctx, in.TourID)
		if err != nil {
			return nil, notFoundAs(err, "tour not found")
		}
		b.TourID = &tour.ID
		b.TourGuideID = &tour.GuideID
		b.TotalPrice = tour.Price

	default:
		return nil, apperr.Validation("invalid booking type %q", in.Kind)
	}

	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Transition moves a booking to the requested status on behalf of its
// tourist or assigned guide.
func (s *BookingService) Transition(ctx context.Context, caller authz.Caller, id string, to model.BookingStatus) (*model.BookingView, error) {
	if !requestable[to] {
		return nil, apperr.Validation("invalid status %q", to)
	}

	v, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "booking not found")
	}
	if v.Status == to {
		return &v, nil
	}

	owner := authz.Is(v.TouristID)
	if caller.Role == model.RoleGuide {
		owner = authz.Is(v.AssignedGuide())
	}
	if err := authz.Authorize(caller, authz.TransitionBooking, owner); err != nil {
		return nil, err
	}

	now := s.Now()
	if err := decide(caller.Role, &v.Booking, to, now); err != nil {
		return nil, err
	}

	from := v.Status
	entry := model.StatusEntry{Status: to, ChangedBy: caller.UserID, Role: caller.Role, ChangedAt: now}
	var completedAt *time.Time
	if to == model.StatusCompleted {
		completedAt = &now
	}

	if err := s.bookings.UpdateStatus(ctx, v.ID, from, entry, completedAt); err != nil {
		if errors.Is(err, repository.ErrStaleBooking) {
			return nil, apperr.Conflict("booking was updated by another request, reload and try again")
		}
		return nil, err
	}

	v.Status = to
	v.StatusHistory = append(v.StatusHistory, entry)
	v.UpdatedAt = now
	if completedAt != nil {
		v.CompletedAt = completedAt
	}

	s.publish(ctx, &v.Booking, from, entry)
	return &v, nil
}

func (s *BookingService) publish(ctx context.Context, b *model.Booking, from model.BookingStatus, e model.StatusEntry) {
	ev := queue.BookingStatusChanged{
		BookingID:   b.ID,
		BookingType: string(b.Kind),
		TouristID:   b.TouristID,
		GuideID:     b.AssignedGuide(),
		From:        string(from),
		To:          string(e.Status),
		ChangedBy:   e.ChangedBy,
		Role:        string(e.Role),
		TotalPrice:  b.TotalPrice.StringFixed(2),
		ChangedAt:   e.ChangedAt,
	}
	if err := s.events.PublishStatusChanged(ctx, ev); err != nil {
		s.log.Warn("booking event not published", "booking_id", b.ID, "err", err)
	}
}

// Get returns one booking if the caller is its tourist, its assigned guide
// or an admin.
func (s *BookingService) Get(ctx context.Context, caller authz.Caller, id string) (*model.BookingView, error) {
	v, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "booking not found")
	}
	if err := authz.Authorize(caller, authz.ViewBooking,
		authz.AnyOf(authz.Is(v.TouristID), authz.Is(v.AssignedGuide()))); err != nil {
		return nil, err
	}
	return &v, nil
}

// List pages through the bookings visible to the caller, newest first.
func (s *BookingService) List(ctx context.Context, caller authz.Caller, req PageRequest) (Page[model.BookingView], error) {
	if err := authz.Authorize(caller, authz.ListBookings); err != nil {
		return Page[model.BookingView]{}, err
	}
	req = req.normalize()

	f := scopeFor(caller)
	f.Limit, f.Offset = req.Limit, req.offset()

	views, total, err := s.bookings.List(ctx, f)
	if err != nil {
		return Page[model.BookingView]{}, err
	}
	return Page[model.BookingView]{
		Data: visibleTo(caller, views),
		Meta: newMeta(req, total),
	}, nil
}

// GuidePending is the guide's inbox: PENDING and CANCELLED bookings.
func (s *BookingService) GuidePending(ctx context.Context, caller authz.Caller) ([]model.BookingView, error) {
	if err := authz.Authorize(caller, authz.GuideQueue); err != nil {
		return nil, err
	}
	return s.listAll(ctx, caller, repository.BookingFilter{
		GuideID:  caller.UserID,
		Statuses: []model.BookingStatus{model.StatusPending, model.StatusCancelled},
	})
}

// GuideActive lists the guide's CONFIRMED bookings followed by COMPLETED
// ones, newest first within each group.
func (s *BookingService) GuideActive(ctx context.Context, caller authz.Caller) ([]model.BookingView, error) {
	if err := authz.Authorize(caller, authz.GuideQueue); err != nil {
		return nil, err
	}
	views, err := s.listAll(ctx, caller, repository.BookingFilter{
		GuideID:  caller.UserID,
		Statuses: []model.BookingStatus{model.StatusConfirmed, model.StatusCompleted},
	})
	if err != nil {
		return nil, err
	}
	sortActive(views)
	return views, nil
}

func sortActive(views []model.BookingView) {
	rank := func(s model.BookingStatus) int {
		switch s {
		case model.StatusConfirmed:
			return 0
		case model.StatusCompleted:
			return 1
		}
		return 2
	}
	sort.SliceStable(views, func(i, j int) bool {
		ri, rj := rank(views[i].Status), rank(views[j].Status)
		if ri != rj {
			return ri < rj
		}
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
}

// ByTarget finds the caller's booking of a guide (GUIDE_HIRE) or, failing
// that, of a tour (TOUR_PACKAGE) with the given id.
func (s *BookingService) ByTarget(ctx context.Context, caller authz.Caller, targetID string) (*model.BookingView, error) {
	if err := authz.Authorize(caller, authz.TouristLookup); err != nil {
		return nil, err
	}
	if targetID == "" {
		return nil, apperr.Validation("target id is required")
	}

	lookups := []repository.BookingFilter{
		{TouristID: caller.UserID, Kind: model.KindGuideHire, HiredGuideID: targetID, Limit: 1},
		{TouristID: caller.UserID, Kind: model.KindTourPackage, TourID: targetID, Limit: 1},
	}
	for _, f := range lookups {
		views, _, err := s.bookings.List(ctx, f)
		if err != nil {
			return nil, err
		}
		if len(views) > 0 {
			return &views[0], nil
		}
	}
	return nil, apperr.NotFound("booking not found")
}

// NeedPayment lists the caller's completed bookings that are still unpaid.
func (s *BookingService) NeedPayment(ctx context.Context, caller authz.Caller) ([]model.BookingView, error) {
	if err := authz.Authorize(caller, authz.TouristLookup); err != nil {
		return nil, err
	}
	return s.listAll(ctx, caller, repository.BookingFilter{
		TouristID:     caller.UserID,
		Statuses:      []model.BookingStatus{model.StatusCompleted},
		PaymentStatus: model.PaymentUnpaid,
	})
}

// Unpaid lists completed, unpaid bookings visible to the caller.
func (s *BookingService) Unpaid(ctx context.Context, caller authz.Caller) ([]model.BookingView, error) {
	return s.settlement(ctx, caller, model.PaymentUnpaid)
}

// Paid lists completed, paid bookings visible to the caller.  An empty
// result is reported as not found.
func (s *BookingService) Paid(ctx context.Context, caller authz.Caller) ([]model.BookingView, error) {
	views, err := s.settlement(ctx, caller, model.PaymentPaid)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, apperr.NotFound("no paid bookings found")
	}
	return views, nil
}

func (s *BookingService) settlement(ctx context.Context, caller authz.Caller, ps model.PaymentStatus) ([]model.BookingView, error) {
	if err := authz.Authorize(caller, authz.ListSettlement); err != nil {
		return nil, err
	}
	f := scopeFor(caller)
	f.Statuses = []model.BookingStatus{model.StatusCompleted}
	f.PaymentStatus = ps
	return s.listAll(ctx, caller, f)
}

func (s *BookingService) listAll(ctx context.Context, caller authz.Caller, f repository.BookingFilter) ([]model.BookingView, error) {
	views, _, err := s.bookings.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return visibleTo(caller, views), nil
}

// scopeFor restricts a listing to the caller's own bookings.
func scopeFor(caller authz.Caller) repository.BookingFilter {
	switch caller.Role {
	case model.RoleTourist:
		return repository.BookingFilter{TouristID: caller.UserID}
	case model.RoleGuide:
		return repository.BookingFilter{GuideID: caller.UserID}
	}
	return repository.BookingFilter{}
}

// visibleTo drops any booking the caller may not see.  Storage already
// filters by scopeFor.
func visibleTo(caller authz.Caller, views []model.BookingView) []model.BookingView {
	out := make([]model.BookingView, 0, len(views))
	for _, v := range views {
		if canSee(caller, &v.Booking) {
			out = append(out, v)
		}
	}
	return out
}

func canSee(caller authz.Caller, b *model.Booking) bool {
	switch caller.Role {
	case model.RoleAdmin:
		return true
	case model.RoleTourist:
		return b.TouristID == caller.UserID
	case model.RoleGuide:
		return caller.UserID != "" && b.AssignedGuide() == caller.UserID
	}
	return false
}
