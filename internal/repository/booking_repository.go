package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/tour-guide-marketplace/internal/model"
)

// BookingRepo stores bookings and their append-only status history.  Rows
// are always read through bookingSelect so the tour owner, the parties'
// contact details and the tour summary come back with the booking.
type BookingRepo struct {
	db *sql.DB
}

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// BookingFilter narrows a booking listing.  Zero-valued fields are ignored.
// GuideID matches the assigned guide: the hired guide of a GUIDE_HIRE
// booking or the tour owner of a TOUR_PACKAGE booking.
type BookingFilter struct {
	TouristID     string
	GuideID       string
	Kind          model.BookingKind
	HiredGuideID  string
	TourID        string
	Statuses      []model.BookingStatus
	PaymentStatus model.PaymentStatus
	// Limit 0 returns every matching row.
	Limit  int
	Offset int
}

const bookingFrom = `
FROM bookings b
LEFT JOIN tours t  ON t.id  = b.tour_id
LEFT JOIN users tu ON tu.id = b.tourist_id
LEFT JOIN users g  ON g.id  = COALESCE(b.guide_id, t.guide_id)`

const bookingSelect = `SELECT b.id, b.booking_type, b.tourist_id, b.tour_id, b.guide_id,
	b.hourly_rate, b.hours, t.guide_id, b.total_price, b.tour_date, b.status,
	b.payment_status, b.completed_at, b.created_at, b.updated_at,
	tu.name, tu.email, tu.phone, tu.picture,
	g.id, g.name, g.email, g.phone, g.picture,
	t.title, t.location, t.duration` + bookingFrom

// where renders the filter as a SQL predicate over the bookingFrom aliases.
func (f BookingFilter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.TouristID != "" {
		conds = append(conds, "b.tourist_id = ?")
		args = append(args, f.TouristID)
	}
	if f.GuideID != "" {
		conds = append(conds, "(b.guide_id = ? OR (b.booking_type = 'TOUR_PACKAGE' AND t.guide_id = ?))")
		args = append(args, f.GuideID, f.GuideID)
	}
	if f.Kind != "" {
		conds = append(conds, "b.booking_type = ?")
		args = append(args, f.Kind)
	}
	if f.HiredGuideID != "" {
		conds = append(conds, "b.guide_id = ?")
		args = append(args, f.HiredGuideID)
	}
	if f.TourID != "" {
		conds = append(conds, "b.tour_id = ?")
		args = append(args, f.TourID)
	}
	if len(f.Statuses) > 0 {
		conds = append(conds, "b.status IN ("+placeholders(len(f.Statuses))+")")
		for _, s := range f.Statuses {
			args = append(args, s)
		}
	}
	if f.PaymentStatus != "" {
		conds = append(conds, "b.payment_status = ?")
		args = append(args, f.PaymentStatus)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func scanBooking(row rowScanner) (model.BookingView, error) {
	var (
		v                                model.BookingView
		tourID, guideID, tourGuideID     sql.NullString
		rate, hours                      decimal.NullDecimal
		completedAt                      sql.NullTime
		tName, tEmail, tPhone, tPicture  sql.NullString
		gID, gName, gEmail, gPhone, gPic sql.NullString
		tourTitle, tourLoc, tourDuration sql.NullString
	)
	b := &v.Booking
	err := row.Scan(&b.ID, &b.Kind, &b.TouristID, &tourID, &guideID,
		&rate, &hours, &tourGuideID, &b.TotalPrice, &b.TourDate, &b.Status,
		&b.PaymentStatus, &completedAt, &b.CreatedAt, &b.UpdatedAt,
		&tName, &tEmail, &tPhone, &tPicture,
		&gID, &gName, &gEmail, &gPhone, &gPic,
		&tourTitle, &tourLoc, &tourDuration)
	if err != nil {
		return model.BookingView{}, err
	}

	b.TourID = nullString(tourID)
	b.GuideID = nullString(guideID)
	b.TourGuideID = nullString(tourGuideID)
	b.HourlyRate = nullDecimal(rate)
	b.Hours = nullDecimal(hours)
	if completedAt.Valid {
		t := completedAt.Time
		b.CompletedAt = &t
	}
	b.StatusHistory = []model.StatusEntry{}

	if tName.Valid {
		v.Tourist = &model.Contact{ID: b.TouristID, Name: tName.String, Email: tEmail.String,
			Phone: tPhone.String, Picture: tPicture.String}
	}
	if gID.Valid {
		v.Guide = &model.Contact{ID: gID.String, Name: gName.String, Email: gEmail.String,
			Phone: gPhone.String, Picture: gPic.String}
	}
	if tourTitle.Valid && b.TourID != nil {
		v.Tour = &model.TourInfo{ID: *b.TourID, Title: tourTitle.String,
			Location: tourLoc.String, Duration: tourDuration.String}
	}
	return v, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullDecimal(d decimal.NullDecimal) *model.Money {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

// Create inserts b together with its initial history entries.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer rollback(tx)

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bookings (id, booking_type, tourist_id, tour_id, guide_id, hourly_rate,
			hours, total_price, tour_date, status, payment_status, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		b.ID, b.Kind, b.TouristID, b.TourID, b.GuideID, nullMoney(b.HourlyRate),
		nullMoney(b.Hours), b.TotalPrice, b.TourDate.UTC(), b.Status, b.PaymentStatus,
		b.CreatedAt.UTC(), b.UpdatedAt.UTC())
	if err != nil {
		return err
	}
	for _, e := range b.StatusHistory {
		if err := insertHistory(ctx, tx, b.ID, e); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertHistory(ctx context.Context, tx *sql.Tx, bookingID string, e model.StatusEntry) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO booking_status_history (booking_id, status, changed_by, role, changed_at)
		 VALUES (?,?,?,?,?)`,
		bookingID, e.Status, e.ChangedBy, e.Role, e.ChangedAt.UTC())
	return err
}

// GetByID loads one booking with its joins and full history.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (model.BookingView, error) {
	v, err := scanBooking(r.db.QueryRowContext(ctx, bookingSelect+" WHERE b.id = ?", id))
	if err != nil {
		return model.BookingView{}, notFound(err)
	}
	views := []model.BookingView{v}
	if err := r.attachHistory(ctx, views); err != nil {
		return model.BookingView{}, err
	}
	return views[0], nil
}

// List returns the bookings matching f, newest first, and the number of
// rows matching f before paging.
func (r *BookingRepo) List(ctx context.Context, f BookingFilter) ([]model.BookingView, int, error) {
	where, args := f.where()

	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bookings b LEFT JOIN tours t ON t.id = b.tour_id"+where,
		args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := bookingSelect + where + " ORDER BY b.created_at DESC, b.id"
	if f.Limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	views := []model.BookingView{}
	for rows.Next() {
		v, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.attachHistory(ctx, views); err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// attachHistory loads the status history of every booking in views with a
// single query, in insertion order.
func (r *BookingRepo) attachHistory(ctx context.Context, views []model.BookingView) error {
	if len(views) == 0 {
		return nil
	}
	idx := make(map[string]int, len(views))
	args := make([]any, 0, len(views))
	for i := range views {
		idx[views[i].ID] = i
		args = append(args, views[i].ID)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT booking_id, status, changed_by, role, changed_at
		 FROM booking_status_history
		 WHERE booking_id IN (`+placeholders(len(args))+`)
		 ORDER BY id`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			bookingID string
			e         model.StatusEntry
		)
		if err := rows.Scan(&bookingID, &e.Status, &e.ChangedBy, &e.Role, &e.ChangedAt); err != nil {
			return err
		}
		if i, ok := idx[bookingID]; ok {
			views[i].StatusHistory = append(views[i].StatusHistory, e)
		}
	}
	return rows.Err()
}

// UpdateStatus moves the booking from `from` to entry.Status and appends
// entry to its history in one transaction.  The update only applies while
// the stored status still equals from; otherwise ErrStaleBooking is
// returned and nothing is written.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id string, from model.BookingStatus, entry model.StatusEntry, completedAt *time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer rollback(tx)

	var done any
	if completedAt != nil {
		done = completedAt.UTC()
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ?, completed_at = COALESCE(?, completed_at)
		 WHERE id = ? AND status = ?`,
		entry.Status, done, id, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStaleBooking
	}
	if err := insertHistory(ctx, tx, id, entry); err != nil {
		return err
	}
	return tx.Commit()
}
