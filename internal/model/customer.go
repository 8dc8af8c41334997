package model

import "time"

// Customer is read-only from this service's perspective: the CRM owns the
// table, we only correlate inbound senders against it. Phone is free-text and
// matched as an opaque string.
type Customer struct {
	ID        int64     `db:"id"`
	FullName  string    `db:"full_name"`
	Phone     *string   `db:"phone"` // nullable
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
