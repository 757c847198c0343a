// Package service implements the marketplace workflows: booking lifecycle,
// payments, tours, users and authentication.  Every operation takes the
// authenticated caller and is gated through authz before touching storage.
package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/iliyamo/tour-guide-marketplace/internal/apperr"
	"github.com/iliyamo/tour-guide-marketplace/internal/model"
	"github.com/iliyamo/tour-guide-marketplace/internal/queue"
	"github.com/iliyamo/tour-guide-marketplace/internal/repository"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=service

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	List(ctx context.Context, limit, offset int) ([]model.User, int, error)
	Update(ctx context.Context, u *model.User) error
}

type TokenRepository interface {
	StoreRefresh(ctx context.Context, userID, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (string, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

type TourRepository interface {
	Create(ctx context.Context, t *model.Tour) error
	GetByID(ctx context.Context, id string) (model.Tour, error)
	List(ctx context.Context, category string) ([]model.Tour, error)
	ListByGuide(ctx context.Context, guideID string) ([]model.Tour, error)
	Update(ctx context.Context, t *model.Tour) error
	Delete(ctx context.Context, id, guideID string) error
}

type BookingRepository interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id string) (model.BookingView, error)
	List(ctx context.Context, f repository.BookingFilter) ([]model.BookingView, int, error)
	UpdateStatus(ctx context.Context, id string, from model.BookingStatus, entry model.StatusEntry, completedAt *time.Time) error
}

type PaymentRepository interface {
	GetByBookingID(ctx context.Context, bookingID string) (model.Payment, error)
	Record(ctx context.Context, p *model.Payment, s model.Settlement) error
}

// PaymentProcessor opens a charge with the external processor and returns
// the client-side confirmation secret.
type PaymentProcessor interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (string, error)
}

// MediaUploader stores an image and returns its public URL.
type MediaUploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// EventPublisher announces booking status changes.
type EventPublisher interface {
	PublishStatusChanged(ctx context.Context, ev queue.BookingStatusChanged) error
}

// Upload is an optional file attached to a create or update request.
type Upload struct {
	Filename string
	Body     io.Reader
}

// notFoundAs translates repository.ErrNotFound into a client-facing
// not-found error and passes anything else through.
func notFoundAs(err error, format string, args ...any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(format, args...)
	}
	return err
}
