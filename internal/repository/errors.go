// Package repository holds the MySQL-backed stores.  Lookups that match no
// row return ErrNotFound so services can translate it without depending on
// database/sql.
package repository

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when a user insert hits the unique email key.
var ErrEmailExists = errors.New("email already exists")

// ErrStaleBooking is returned by a conditional status update when the
// booking no longer holds the status the caller read.
var ErrStaleBooking = errors.New("booking status changed concurrently")

const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// rollback is deferred by transactional methods; it is a no-op after Commit.
func rollback(tx *sql.Tx) { _ = tx.Rollback() }
