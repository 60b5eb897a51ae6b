package order

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// MigrationHint tells an operator how to create the missing schema.
const MigrationHint = "The orders table does not exist yet. Apply migrations/0001_init.sql to the database (psql \"$DATABASE_URL\" -f migrations/0001_init.sql) and try again."

var (
	// ErrOrdersTableMissing is returned when the orders table has not been
	// created; its message carries MigrationHint.
	ErrOrdersTableMissing = errors.New(MigrationHint)
	// ErrNotFound is returned when no order has the requested id.
	ErrNotFound = errors.New("order not found")
)

// undefinedTable is the Postgres SQLSTATE for a missing relation.
const undefinedTable = "42P01"

var missingTableMarkers = []string{
	"Could not find the table",
	`relation "public.orders" does not exist`,
	`relation "orders" does not exist`,
	"schema cache",
}

// isMissingTable recognises a missing orders table whether it surfaces as a
// driver error or only as text from a proxy in front of the database.
func isMissingTable(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == undefinedTable {
		return true
	}
	msg := err.Error()
	for _, marker := range missingTableMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
