package service_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iliyamo/tour-guide-marketplace/internal/apperr"
	"github.com/iliyamo/tour-guide-marketplace/internal/authz"
	"github.com/iliyamo/tour-guide-marketplace/internal/model"
	"github.com/iliyamo/tour-guide-marketplace/internal/queue"
	"github.com/iliyamo/tour-guide-marketplace/internal/repository"
	"github.com/iliyamo/tour-guide-marketplace/internal/service"
)

var (
	tourist      = authz.Caller{UserID: "tourist-1", Role: model.RoleTourist, Email: "t@example.com"}
	otherTourist = authz.Caller{UserID: "tourist-2", Role: model.RoleTourist}
	guide        = authz.Caller{UserID: "guide-1", Role: model.RoleGuide}
	otherGuide   = authz.Caller{UserID: "guide-2", Role: model.RoleGuide}
	admin        = authz.Caller{UserID: "admin-1", Role: model.RoleAdmin}
)

type bookingDeps struct {
	bookings *service.MockBookingRepository
	users    *service.MockUserRepository
	tours    *service.MockTourRepository
	events   *service.MockEventPublisher
}

func newBookingService(t *testing.T, now time.Time) (*service.BookingService, bookingDeps) {
	ctrl := gomock.NewController(t)
	d := bookingDeps{
		bookings: service.NewMockBookingRepository(ctrl),
		users:    service.NewMockUserRepository(ctrl),
		tours:    service.NewMockTourRepository(ctrl),
		events:   service.NewMockEventPublisher(ctrl),
	}
	svc := service.NewBookingService(d.bookings, d.users, d.tours, d.events, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.Now = func() time.Time { return now }
	return svc, d
}

func dec(s string) *model.Money {
	d := decimal.RequireFromString(s)
	return &d
}

func strPtr(s string) *string { return &s }

func hireView(status model.BookingStatus, tourDate time.Time) model.BookingView {
	return model.BookingView{Booking: model.Booking{
		ID:            "booking-1",
		Kind:          model.KindGuideHire,
		TouristID:     tourist.UserID,
		GuideID:       strPtr(guide.UserID),
		TotalPrice:    decimal.NewFromInt(150),
		TourDate:      tourDate,
		Status:        status,
		PaymentStatus: model.PaymentUnpaid,
		StatusHistory: []model.StatusEntry{{Status: model.StatusPending, ChangedBy: tourist.UserID, Role: model.RoleTourist}},
	}}
}

func TestBookingService_Create(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	tourDate := now.Add(72 * time.Hour)

	type testCase struct {
		name      string
		caller    authz.Caller
		in        service.CreateBookingInput
		setupMock func(d bookingDeps)
		wantKind  apperr.Kind
		wantTotal string
	}

	tests := []testCase{
		{
			name:   "TourPackageCopiesPrice",
			caller: tourist,
			in:     service.CreateBookingInput{Kind: model.KindTourPackage, TourID: "tour-1", TourDate: tourDate},
			setupMock: func(d bookingDeps) {
				d.tours.EXPECT().GetByID(gomock.Any(), "tour-1").
					Return(model.Tour{ID: "tour-1", GuideID: guide.UserID, Price: decimal.NewFromInt(100)}, nil)
				d.bookings.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantTotal: "100",
		},
		{
			name:   "GuideHireMultiplies",
			caller: tourist,
			in: service.CreateBookingInput{Kind: model.KindGuideHire, GuideID: guide.UserID,
				HourlyRate: dec("25.50"), Hours: dec("3"), TourDate: tourDate},
			setupMock: func(d bookingDeps) {
				d.users.EXPECT().GetByID(gomock.Any(), guide.UserID).
					Return(model.User{ID: guide.UserID, Role: model.RoleGuide}, nil)
				d.bookings.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantTotal: "76.5",
		},
		{
			name:   "GuideHireRoundsTotalToCents",
			caller: tourist,
			in: service.CreateBookingInput{Kind: model.KindGuideHire, GuideID: guide.UserID,
				HourlyRate: dec("12.34"), Hours: dec("1.33"), TourDate: tourDate},
			setupMock: func(d bookingDeps) {
				d.users.EXPECT().GetByID(gomock.Any(), guide.UserID).
					Return(model.User{ID: guide.UserID, Role: model.RoleGuide}, nil)
				d.bookings.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantTotal: "16.41",
		},
		{
			name:   "HireRateFractionOfCent",
			caller: tourist,
			in: service.CreateBookingInput{Kind: model.KindGuideHire, GuideID: guide.UserID,
				HourlyRate: dec("12.345"), Hours: dec("2"), TourDate: tourDate},
			wantKind: apperr.KindValidation,
		},
		{
			name:   "HireHoursTooPrecise",
			caller: tourist,
			in: service.CreateBookingInput{Kind: model.KindGuideHire, GuideID: guide.UserID,
				HourlyRate: dec("10"), Hours: dec("1.001"), TourDate: tourDate},
			wantKind: apperr.KindValidation,
		},
		{
			name:   "HireRateOverflowsColumn",
			caller: tourist,
			in: service.CreateBookingInput{Kind: model.KindGuideHire, GuideID: guide.UserID,
				HourlyRate: dec("99999999999"), Hours: dec("1"), TourDate: tourDate},
			wantKind: apperr.KindValidation,
		},
		{
			name:   "HireTotalOverflowsColumn",
			caller: tourist,
			in: service.CreateBookingInput{Kind: model.KindGuideHire, GuideID: guide.UserID,
				HourlyRate: dec("9999999999"), Hours: dec("2"), TourDate: tourDate},
			wantKind: apperr.KindValidation,
		},
		{
			name:     "GuideCannotBook",
			caller:   guide,
			in:       service.CreateBookingInput{Kind: model.KindTourPackage, TourID: "tour-1", TourDate: tourDate},
			wantKind: apperr.KindPermission,
		},
		{
			name:     "HireMissingHours",
			caller:   tourist,
			in:       service.CreateBookingInput{Kind: model.KindGuideHire, GuideID: guide.UserID, HourlyRate: dec("10"), TourDate: tourDate},
			wantKind: apperr.KindValidation,
		},
		{
			name:     "PackageMissingTour",
			caller:   tourist,
			in:       service.CreateBookingInput{Kind: model.KindTourPackage, TourDate: tourDate},
			wantKind: apperr.KindValidation,
		},
		{
			name:     "UnknownKind",
			caller:   tourist,
			in:       service.CreateBookingInput{Kind: "SAFARI", TourDate: tourDate},
			wantKind: apperr.KindValidation,
		},
		{
			name:     "MissingDate",
			caller:   tourist,
			in:       service.CreateBookingInput{Kind: model.KindTourPackage, TourID: "tour-1"},
			wantKind: apperr.KindValidation,
		},
		{
			name:   "HiredUserIsNotGuide",
			caller: tourist,
			in: service.CreateBookingInput{Kind: model.KindGuideHire, GuideID: otherTourist.UserID,
				HourlyRate: dec("10"), Hours: dec("1"), TourDate: tourDate},
			setupMock: func(d bookingDeps) {
				d.users.EXPECT().GetByID(gomock.Any(), otherTourist.UserID).
					Return(model.User{ID: otherTourist.UserID, Role: model.RoleTourist}, nil)
			},
			wantKind: apperr.KindNotFound,
		},
		{
			name:     "TourMissing",
			caller:   tourist,
			in:       service.CreateBookingInput{Kind: model.KindTourPackage, TourID: "nope", TourDate: tourDate},
			setupMock: func(d bookingDeps) {
				d.tours.EXPECT().GetByID(gomock.Any(), "nope").Return(model.Tour{}, repository.ErrNotFound)
			},
			wantKind: apperr.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newBookingService(t, now)
			if tt.setupMock != nil {
				tt.setupMock(d)
			}

			got, err := svc.Create(context.Background(), tt.caller, tt.in)

			if tt.wantKind != 0 {
				assert.True(t, apperr.IsKind(err, tt.wantKind), "got %v", err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, got.ID)
			assert.True(t, decimal.RequireFromString(tt.wantTotal).Equal(got.TotalPrice), "total %s", got.TotalPrice)
			assert.Equal(t, model.StatusPending, got.Status)
			assert.Equal(t, model.PaymentUnpaid, got.PaymentStatus)
			require.Len(t, got.StatusHistory, 1)
			assert.Equal(t, model.StatusEntry{Status: model.StatusPending, ChangedBy: tourist.UserID, Role: model.RoleTourist, ChangedAt: now}, got.StatusHistory[0])
		})
	}
}

func TestBookingService_Transition(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	type testCase struct {
		name      string
		caller    authz.Caller
		current   model.BookingView
		to        model.BookingStatus
		setupMock func(d bookingDeps)
		wantKind  apperr.Kind
		wantMsg   string
	}

	persisted := func(from, to model.BookingStatus, by authz.Caller) func(d bookingDeps) {
		return func(d bookingDeps) {
			d.bookings.EXPECT().
				UpdateStatus(gomock.Any(), "booking-1", from,
					model.StatusEntry{Status: to, ChangedBy: by.UserID, Role: by.Role, ChangedAt: now}, gomock.Any()).
				Return(nil)
			d.events.EXPECT().PublishStatusChanged(gomock.Any(), gomock.Any()).Return(nil)
		}
	}

	tests := []testCase{
		{name: "GuideConfirms", caller: guide, current: hireView(model.StatusPending, tomorrow), to: model.StatusConfirmed,
			setupMock: persisted(model.StatusPending, model.StatusConfirmed, guide)},
		{name: "TouristCancelsPending", caller: tourist, current: hireView(model.StatusPending, tomorrow), to: model.StatusCancelled,
			setupMock: persisted(model.StatusPending, model.StatusCancelled, tourist)},
		{name: "GuideCompletesAfterDate", caller: guide, current: hireView(model.StatusConfirmed, yesterday), to: model.StatusCompleted,
			setupMock: persisted(model.StatusConfirmed, model.StatusCompleted, guide)},
		{name: "GuideCompletesEarly", caller: guide, current: hireView(model.StatusConfirmed, tomorrow), to: model.StatusCompleted,
			wantKind: apperr.KindValidation, wantMsg: "cannot complete booking before tour date"},
		{name: "TouristConfirms", caller: tourist, current: hireView(model.StatusPending, tomorrow), to: model.StatusConfirmed,
			wantKind: apperr.KindPermission, wantMsg: "tourist cannot confirm booking"},
		{name: "TouristCancelsConfirmed", caller: tourist, current: hireView(model.StatusConfirmed, tomorrow), to: model.StatusCancelled,
			wantKind: apperr.KindValidation},
		{name: "StrangerTourist", caller: otherTourist, current: hireView(model.StatusPending, tomorrow), to: model.StatusCancelled,
			wantKind: apperr.KindPermission},
		{name: "StrangerGuide", caller: otherGuide, current: hireView(model.StatusPending, tomorrow), to: model.StatusConfirmed,
			wantKind: apperr.KindPermission},
		{name: "AdminCannotTransition", caller: admin, current: hireView(model.StatusPending, tomorrow), to: model.StatusConfirmed,
			wantKind: apperr.KindPermission},
		{name: "PendingNotRequestable", caller: guide, current: hireView(model.StatusConfirmed, tomorrow), to: model.StatusPending,
			wantKind: apperr.KindValidation},
		{
			name: "StaleWriteConflicts", caller: guide, current: hireView(model.StatusPending, tomorrow), to: model.StatusConfirmed,
			setupMock: func(d bookingDeps) {
				d.bookings.EXPECT().UpdateStatus(gomock.Any(), "booking-1", model.StatusPending, gomock.Any(), gomock.Any()).
					Return(repository.ErrStaleBooking)
			},
			wantKind: apperr.KindConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newBookingService(t, now)
			if tt.to != model.StatusPending {
				d.bookings.EXPECT().GetByID(gomock.Any(), "booking-1").Return(tt.current, nil)
			}
			if tt.setupMock != nil {
				tt.setupMock(d)
			}

			got, err := svc.Transition(context.Background(), tt.caller, "booking-1", tt.to)

			if tt.wantKind != 0 {
				assert.True(t, apperr.IsKind(err, tt.wantKind), "got %v", err)
				if tt.wantMsg != "" {
					assert.EqualError(t, err, tt.wantMsg)
				}
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.to, got.Status)
			assert.Len(t, got.StatusHistory, len(tt.current.StatusHistory)+1)
			assert.Equal(t, tt.to, got.StatusHistory[len(got.StatusHistory)-1].Status)
			if tt.to == model.StatusCompleted {
				require.NotNil(t, got.CompletedAt)
				assert.Equal(t, now, *got.CompletedAt)
			}
		})
	}
}

func TestBookingService_Transition_NoOp(t *testing.T) {
	svc, d := newBookingService(t, time.Now())
	current := hireView(model.StatusConfirmed, time.Now())
	d.bookings.EXPECT().GetByID(gomock.Any(), "booking-1").Return(current, nil)

	got, err := svc.Transition(context.Background(), guide, "booking-1", model.StatusConfirmed)

	require.NoError(t, err)
	assert.Equal(t, current, *got)
}

func TestBookingService_Transition_NoOpPrecedesOwnership(t *testing.T) {
	svc, d := newBookingService(t, time.Now())
	current := hireView(model.StatusConfirmed, time.Now())
	d.bookings.EXPECT().GetByID(gomock.Any(), "booking-1").Return(current, nil).Times(2)

	got, err := svc.Transition(context.Background(), otherGuide, "booking-1", model.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, current, *got)

	_, err = svc.Transition(context.Background(), otherGuide, "booking-1", model.StatusCancelled)
	assert.True(t, apperr.IsKind(err, apperr.KindPermission), "got %v", err)
}

func TestBookingService_Transition_PublishFailureIgnored(t *testing.T) {
	ctrl := gomock.NewController(t)
	bookings := service.NewMockBookingRepository(ctrl)
	events := service.NewMockEventPublisher(ctrl)
	var logs bytes.Buffer
	svc := service.NewBookingService(bookings, service.NewMockUserRepository(ctrl), service.NewMockTourRepository(ctrl),
		events, slog.New(slog.NewTextHandler(&logs, nil)))

	bookings.EXPECT().GetByID(gomock.Any(), "booking-1").Return(hireView(model.StatusPending, time.Now()), nil)
	bookings.EXPECT().UpdateStatus(gomock.Any(), "booking-1", model.StatusPending, gomock.Any(), nil).Return(nil)
	events.EXPECT().PublishStatusChanged(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	got, err := svc.Transition(context.Background(), guide, "booking-1", model.StatusConfirmed)

	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, got.Status)
	assert.Equal(t, 1, strings.Count(logs.String(), "level=WARN"), logs.String())
	assert.Contains(t, logs.String(), "booking_id=booking-1")
	assert.Contains(t, logs.String(), "broker down")
}

func TestBookingService_Transition_TourPackageOwner(t *testing.T) {
	now := time.Now().UTC()
	pkg := model.BookingView{Booking: model.Booking{
		ID:          "booking-1",
		Kind:        model.KindTourPackage,
		TouristID:   tourist.UserID,
		TourID:      strPtr("tour-1"),
		TourGuideID: strPtr(guide.UserID),
		TourDate:    now.Add(time.Hour),
		Status:      model.StatusPending,
	}}

	t.Run("OwnerConfirms", func(t *testing.T) {
		svc, d := newBookingService(t, now)
		d.bookings.EXPECT().GetByID(gomock.Any(), "booking-1").Return(pkg, nil)
		d.bookings.EXPECT().UpdateStatus(gomock.Any(), "booking-1", model.StatusPending, gomock.Any(), nil).Return(nil)
		d.events.EXPECT().PublishStatusChanged(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, ev queue.BookingStatusChanged) error {
				assert.Equal(t, guide.UserID, ev.GuideID)
				assert.Equal(t, "CONFIRMED", ev.To)
				return nil
			})

		_, err := svc.Transition(context.Background(), guide, "booking-1", model.StatusConfirmed)
		assert.NoError(t, err)
	})

	t.Run("OtherGuideDenied", func(t *testing.T) {
		svc, d := newBookingService(t, now)
		d.bookings.EXPECT().GetByID(gomock.Any(), "booking-1").Return(pkg, nil)

		_, err := svc.Transition(context.Background(), otherGuide, "booking-1", model.StatusConfirmed)
		assert.True(t, apperr.IsKind(err, apperr.KindPermission))
	})
}

// Scenario: guide confirms, cannot complete before the tour date, and can
// once it has passed.  Each step feeds the stored state into the next.
func TestBookingService_ConfirmThenComplete(t *testing.T) {
	tourDate := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	clock := tourDate.Add(-48 * time.Hour)

	svc, d := newBookingService(t, clock)
	svc.Now = func() time.Time { return clock }

	stored := hireView(model.StatusPending, tourDate)
	d.bookings.EXPECT().GetByID(gomock.Any(), "booking-1").DoAndReturn(
		func(context.Context, string) (model.BookingView, error) { return stored, nil }).Times(3)
	d.bookings.EXPECT().UpdateStatus(gomock.Any(), "booking-1", gomock.Any(), gomock.Any(), gomock.Any()).Times(2).
		DoAndReturn(func(_ context.Context, _ string, from model.BookingStatus, e model.StatusEntry, done *time.Time) error {
			require.Equal(t, stored.Status, from)
			stored.Status = e.Status
			stored.StatusHistory = append(stored.StatusHistory, e)
			stored.CompletedAt = done
			return nil
		})
	d.events.EXPECT().PublishStatusChanged(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	got, err := svc.Transition(context.Background(), guide, "booking-1", model.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, got.Status)

	_, err = svc.Transition(context.Background(), guide, "booking-1", model.StatusCompleted)
	assert.EqualError(t, err, "cannot complete booking before tour date")
	assert.Equal(t, model.StatusConfirmed, stored.Status)

	clock = tourDate.Add(time.Minute)
	got, err = svc.Transition(context.Background(), guide, "booking-1", model.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
	assert.Len(t, stored.StatusHistory, 3)
}

func TestBookingService_List(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name       string
		caller     authz.Caller
		req        service.PageRequest
		wantFilter repository.BookingFilter
		rows       []model.BookingView
		total      int
		wantIDs    []string
		wantMeta   service.PageMeta
	}{
		{
			name:       "TouristScoped",
			caller:     tourist,
			req:        service.PageRequest{Page: 1, Limit: 10},
			wantFilter: repository.BookingFilter{TouristID: tourist.UserID, Limit: 10},
			rows: []model.BookingView{
				{Booking: model.Booking{ID: "mine", TouristID: tourist.UserID}},
				{Booking: model.Booking{ID: "theirs", TouristID: otherTourist.UserID}},
			},
			total:    2,
			wantIDs:  []string{"mine"},
			wantMeta: service.PageMeta{Total: 2, Page: 1, Limit: 10, TotalPages: 1},
		},
		{
			name:       "GuideScoped",
			caller:     guide,
			req:        service.PageRequest{Page: 2, Limit: 1},
			wantFilter: repository.BookingFilter{GuideID: guide.UserID, Limit: 1, Offset: 1},
			rows: []model.BookingView{
				{Booking: model.Booking{ID: "hire", Kind: model.KindGuideHire, GuideID: strPtr(guide.UserID)}},
				{Booking: model.Booking{ID: "foreign", Kind: model.KindGuideHire, GuideID: strPtr(otherGuide.UserID)}},
			},
			total:    3,
			wantIDs:  []string{"hire"},
			wantMeta: service.PageMeta{Total: 3, Page: 2, Limit: 1, TotalPages: 3},
		},
		{
			name:       "AdminSeesAll",
			caller:     admin,
			req:        service.PageRequest{},
			wantFilter: repository.BookingFilter{Limit: 10},
			rows: []model.BookingView{
				{Booking: model.Booking{ID: "a", CreatedAt: now}},
				{Booking: model.Booking{ID: "b", CreatedAt: now}},
			},
			total:    2,
			wantIDs:  []string{"a", "b"},
			wantMeta: service.PageMeta{Total: 2, Page: 1, Limit: 10, TotalPages: 1},
		},
		{
			name:       "PageBeyondTotal",
			caller:     tourist,
			req:        service.PageRequest{Page: 5, Limit: 10},
			wantFilter: repository.BookingFilter{TouristID: tourist.UserID, Limit: 10, Offset: 40},
			rows:       []model.BookingView{},
			total:      3,
			wantIDs:    []string{},
			wantMeta:   service.PageMeta{Total: 3, Page: 5, Limit: 10, TotalPages: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newBookingService(t, now)
			d.bookings.EXPECT().List(gomock.Any(), tt.wantFilter).Return(tt.rows, tt.total, nil)

			page, err := svc.List(context.Background(), tt.caller, tt.req)
			require.NoError(t, err)

			ids := []string{}
			for _, v := range page.Data {
				ids = append(ids, v.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantMeta, page.Meta)
		})
	}
}

func TestBookingService_Get(t *testing.T) {
	view := hireView(model.StatusPending, time.Now())

	for _, c := range []struct {
		caller authz.Caller
		ok     bool
	}{
		{tourist, true}, {guide, true}, {admin, true}, {otherTourist, false}, {otherGuide, false},
	} {
		t.Run(c.caller.UserID, func(t *testing.T) {
			svc, d := newBookingService(t, time.Now())
			d.bookings.EXPECT().GetByID(gomock.Any(), "booking-1").Return(view, nil)

			got, err := svc.Get(context.Background(), c.caller, "booking-1")
			if c.ok {
				require.NoError(t, err)
				assert.Equal(t, "booking-1", got.ID)
				return
			}
			assert.True(t, apperr.IsKind(err, apperr.KindPermission))
		})
	}
}

func TestBookingService_ByTarget(t *testing.T) {
	svc, d := newBookingService(t, time.Now())
	pkg := model.BookingView{Booking: model.Booking{ID: "pkg", Kind: model.KindTourPackage, TouristID: tourist.UserID}}

	gomock.InOrder(
		d.bookings.EXPECT().List(gomock.Any(), repository.BookingFilter{
			TouristID: tourist.UserID, Kind: model.KindGuideHire, HiredGuideID: "tour-1", Limit: 1,
		}).Return(nil, 0, nil),
		d.bookings.EXPECT().List(gomock.Any(), repository.BookingFilter{
			TouristID: tourist.UserID, Kind: model.KindTourPackage, TourID: "tour-1", Limit: 1,
		}).Return([]model.BookingView{pkg}, 1, nil),
	)

	got, err := svc.ByTarget(context.Background(), tourist, "tour-1")
	require.NoError(t, err)
	assert.Equal(t, "pkg", got.ID)
}

func TestBookingService_GuideActiveOrdersConfirmedFirst(t *testing.T) {
	svc, d := newBookingService(t, time.Now())
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mk := func(id string, s model.BookingStatus, h int) model.BookingView {
		return model.BookingView{Booking: model.Booking{ID: id, Kind: model.KindGuideHire, GuideID: strPtr(guide.UserID),
			Status: s, CreatedAt: base.Add(time.Duration(h) * time.Hour)}}
	}
	d.bookings.EXPECT().List(gomock.Any(), repository.BookingFilter{
		GuideID:  guide.UserID,
		Statuses: []model.BookingStatus{model.StatusConfirmed, model.StatusCompleted},
	}).Return([]model.BookingView{
		mk("done-3", model.StatusCompleted, 3),
		mk("conf-2", model.StatusConfirmed, 2),
		mk("done-1", model.StatusCompleted, 1),
	}, 3, nil)

	got, err := svc.GuideActive(context.Background(), guide)
	require.NoError(t, err)

	var ids []string
	for _, v := range got {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []string{"conf-2", "done-3", "done-1"}, ids)
}

func TestBookingService_Paid(t *testing.T) {
	t.Run("EmptyIsNotFound", func(t *testing.T) {
		svc, d := newBookingService(t, time.Now())
		d.bookings.EXPECT().List(gomock.Any(), repository.BookingFilter{
			TouristID:     tourist.UserID,
			Statuses:      []model.BookingStatus{model.StatusCompleted},
			PaymentStatus: model.PaymentPaid,
		}).Return([]model.BookingView{}, 0, nil)

		_, err := svc.Paid(context.Background(), tourist)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})

	t.Run("UnpaidForGuideFiltersForeign", func(t *testing.T) {
		svc, d := newBookingService(t, time.Now())
		d.bookings.EXPECT().List(gomock.Any(), gomock.Any()).Return([]model.BookingView{
			{Booking: model.Booking{ID: "mine", Kind: model.KindTourPackage, TourGuideID: strPtr(guide.UserID)}},
			{Booking: model.Booking{ID: "orphan", Kind: model.KindTourPackage}},
		}, 2, nil)

		got, err := svc.Unpaid(context.Background(), guide)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "mine", got[0].ID)
	})
}
