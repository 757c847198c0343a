package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/iliyamo/tour-guide-marketplace/internal/model"
)

// TourRepo stores guide listings in the `tours` table.
type TourRepo struct {
	db *sql.DB
}

func NewTourRepo(db *sql.DB) *TourRepo { return &TourRepo{db: db} }

// tourSelect joins the owning guide's contact details.  The LEFT JOIN
// keeps tours whose guide row is gone.
const tourSelect = `SELECT t.id, t.guide_id, t.title, t.location, t.price, t.duration,
	t.description, t.category, t.spots, t.cover_photo, t.created_at, t.updated_at,
	COALESCE(u.name, ''), COALESCE(u.email, '')
FROM tours t
LEFT JOIN users u ON u.id = t.guide_id`

func scanTour(row rowScanner) (model.Tour, error) {
	var (
		t          model.Tour
		spots      []byte
		name, mail string
	)
	err := row.Scan(&t.ID, &t.GuideID, &t.Title, &t.Location, &t.Price, &t.Duration,
		&t.Description, &t.Category, &spots, &t.CoverPhoto, &t.CreatedAt, &t.UpdatedAt,
		&name, &mail)
	if err != nil {
		return model.Tour{}, err
	}
	t.Spots = []string{}
	if len(spots) > 0 {
		if err := json.Unmarshal(spots, &t.Spots); err != nil {
			return model.Tour{}, fmt.Errorf("decode spots of tour %s: %w", t.ID, err)
		}
	}
	if name != "" || mail != "" {
		t.Guide = &model.Contact{ID: t.GuideID, Name: name, Email: mail}
	}
	return t, nil
}

func encodeSpots(spots []string) ([]byte, error) {
	if spots == nil {
		spots = []string{}
	}
	return json.Marshal(spots)
}

// Create inserts t.
func (r *TourRepo) Create(ctx context.Context, t *model.Tour) error {
	spots, err := encodeSpots(t.Spots)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO tours (id, guide_id, title, location, price, duration, description,
			category, spots, cover_photo)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		t.ID, t.GuideID, t.Title, t.Location, t.Price, t.Duration, t.Description,
		t.Category, spots, t.CoverPhoto)
	return err
}

// GetByID returns the tour with its guide contact, or ErrNotFound.
func (r *TourRepo) GetByID(ctx context.Context, id string) (model.Tour, error) {
	t, err := scanTour(r.db.QueryRowContext(ctx, tourSelect+" WHERE t.id = ?", id))
	return t, notFound(err)
}

// List returns every tour, newest first, optionally restricted to a
// category.
func (r *TourRepo) List(ctx context.Context, category string) ([]model.Tour, error) {
	if category != "" {
		return r.query(ctx, tourSelect+" WHERE t.category = ? ORDER BY t.created_at DESC", category)
	}
	return r.query(ctx, tourSelect+" ORDER BY t.created_at DESC")
}

// ListByGuide returns the tours owned by guideID.
func (r *TourRepo) ListByGuide(ctx context.Context, guideID string) ([]model.Tour, error) {
	return r.query(ctx, tourSelect+" WHERE t.guide_id = ? ORDER BY t.created_at DESC", guideID)
}

func (r *TourRepo) query(ctx context.Context, q string, args ...any) ([]model.Tour, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tours := []model.Tour{}
	for rows.Next() {
		t, err := scanTour(rows)
		if err != nil {
			return nil, err
		}
		tours = append(tours, t)
	}
	return tours, rows.Err()
}

// Update writes the mutable columns of t.  The owner and cover photo are
// not touched; the guide_id predicate makes a foreign tour look missing.
func (r *TourRepo) Update(ctx context.Context, t *model.Tour) error {
	spots, err := encodeSpots(t.Spots)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE tours SET title=?, location=?, price=?, duration=?, description=?,
			category=?, spots=?
		 WHERE id=? AND guide_id=?`,
		t.Title, t.Location, t.Price, t.Duration, t.Description, t.Category, spots,
		t.ID, t.GuideID)
	if err != nil {
		return err
	}
	return requireRow(ctx, r.db, res, "SELECT COUNT(*) FROM tours WHERE id=? AND guide_id=?", t.ID, t.GuideID)
}

// Delete removes the tour when it belongs to guideID.
func (r *TourRepo) Delete(ctx context.Context, id, guideID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tours WHERE id=? AND guide_id=?", id, guideID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
