package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/tour-guide-marketplace/internal/model"
)

// UserRepo stores accounts in the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, name, email, password_hash, phone, picture, address,
	price_per_hour, role, is_active, is_deleted, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (model.User, error) {
	var (
		u     model.User
		price decimal.NullDecimal
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Picture,
		&u.Address, &price, &u.Role, &u.IsActive, &u.IsDeleted, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	if price.Valid {
		p := price.Decimal
		u.PricePerHour = &p
	}
	return u, nil
}

// Create inserts u.  The email is normalized before storage.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = NormalizeEmail(u.Email)
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, phone, picture, address,
			price_per_hour, role, is_active)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Phone, u.Picture, u.Address,
		nullMoney(u.PricePerHour), u.Role, u.IsActive)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// GetByEmail fetches a non-deleted user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? AND is_deleted=0 LIMIT 1",
		NormalizeEmail(email)))
	return u, notFound(err)
}

// GetByID fetches a non-deleted user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? AND is_deleted=0 LIMIT 1", id))
	return u, notFound(err)
}

// List returns one page of users, newest first, and the total count.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]model.User, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE is_deleted=0").Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE is_deleted=0 ORDER BY created_at DESC, id LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// Update overwrites the mutable profile columns.  Email is never written.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET name=?, password_hash=?, phone=?, picture=?, address=?,
			price_per_hour=?, role=?, is_active=?
		 WHERE id=? AND is_deleted=0`,
		u.Name, u.PasswordHash, u.Phone, u.Picture, u.Address,
		nullMoney(u.PricePerHour), u.Role, u.IsActive, u.ID)
	if err != nil {
		return err
	}
	return requireRow(ctx, r.DB, res, "SELECT COUNT(*) FROM users WHERE id=? AND is_deleted=0", u.ID)
}

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func nullMoney(m *model.Money) decimal.NullDecimal {
	if m == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *m, Valid: true}
}

// requireRow maps a zero-row update to ErrNotFound.  MySQL reports zero
// affected rows when the new values equal the old ones, so existence is
// re-checked before giving up.
func requireRow(ctx context.Context, db *sql.DB, res sql.Result, existsQuery string, args ...any) error {
	n, err := res.RowsAffected()
	if err != nil || n > 0 {
		return err
	}
	var c int
	if err := db.QueryRowContext(ctx, existsQuery, args...).Scan(&c); err != nil {
		return err
	}
	if c == 0 {
		return ErrNotFound
	}
	return nil
}
