package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/tour-guide-marketplace/internal/model"
)

// ErrPaymentExists is returned when a booking already has a completed
// receipt.
var ErrPaymentExists = errors.New("payment already recorded")

// PaymentRepo stores payment receipts.
type PaymentRepo struct {
	db *sql.DB
}

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

const paymentColumns = `id, booking_id, tourist_email, amount, method, status,
	transaction_id, payment_date`

// GetByBookingID returns the most recent receipt for a booking.
func (r *PaymentRepo) GetByBookingID(ctx context.Context, bookingID string) (model.Payment, error) {
	var p model.Payment
	err := r.db.QueryRowContext(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE booking_id = ? ORDER BY payment_date DESC, id LIMIT 1",
		bookingID).Scan(&p.ID, &p.BookingID, &p.TouristEmail, &p.Amount, &p.Method,
		&p.Status, &p.TransactionID, &p.PaymentDate)
	return p, notFound(err)
}

// Record stores p and applies s to the booking in one transaction.  The
// booking row is locked first; if it is gone ErrNotFound is returned, if
// its status is no longer s.From ErrStaleBooking, and if a completed
// receipt already exists ErrPaymentExists.
func (r *PaymentRepo) Record(ctx context.Context, p *model.Payment, s model.Settlement) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer rollback(tx)

	var status model.BookingStatus
	if err := tx.QueryRowContext(ctx,
		"SELECT status FROM bookings WHERE id = ? FOR UPDATE", s.BookingID).Scan(&status); err != nil {
		return notFound(err)
	}
	if status != s.From {
		return ErrStaleBooking
	}

	var paid int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM payments WHERE booking_id = ? AND status = ?",
		s.BookingID, model.PaymentCompleted).Scan(&paid); err != nil {
		return err
	}
	if paid > 0 {
		return ErrPaymentExists
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO payments (id, booking_id, tourist_email, amount, method, status,
			transaction_id, payment_date)
		 VALUES (?,?,?,?,?,?,?,?)`,
		p.ID, p.BookingID, p.TouristEmail, p.Amount, p.Method, p.Status,
		p.TransactionID, p.PaymentDate.UTC()); err != nil {
		return err
	}

	if s.Entry != nil {
		_, err = tx.ExecContext(ctx,
			`UPDATE bookings SET payment_status = ?, status = ?,
				completed_at = COALESCE(completed_at, ?)
			 WHERE id = ?`,
			model.PaymentPaid, s.To, s.Entry.ChangedAt.UTC(), s.BookingID)
		if err == nil {
			err = insertHistory(ctx, tx, s.BookingID, *s.Entry)
		}
	} else {
		_, err = tx.ExecContext(ctx,
			"UPDATE bookings SET payment_status = ? WHERE id = ?", model.PaymentPaid, s.BookingID)
	}
	if err != nil {
		return err
	}
	return tx.Commit()
}
