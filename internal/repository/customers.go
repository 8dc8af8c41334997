package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/fiootv/comms-gateway/internal/model"
)

// CustomersRepository reads the CRM customers table. This service never
// writes it.
type CustomersRepository interface {
	// FindByPhone returns at most one customer whose stored phone equals the
	// raw or the normalized identifier. (nil, nil) when nothing matches; if
	// several rows could match, the store's default ordering decides.
	FindByPhone(ctx context.Context, raw, normalized string) (*model.Customer, error)
}

type CustomersRepositoryImpl struct {
	db *sqlx.DB
}

func NewCustomersRepository(db *sqlx.DB) *CustomersRepositoryImpl {
	return &CustomersRepositoryImpl{db: db}
}

var _ CustomersRepository = (*CustomersRepositoryImpl)(nil)

func (r *CustomersRepositoryImpl) FindByPhone(ctx context.Context, raw, normalized string) (*model.Customer, error) {
	var c model.Customer
	err := r.db.GetContext(ctx, &c, `
		SELECT id, full_name, phone, email, created_at, updated_at
		  FROM customers
		 WHERE phone IN (?, ?) LIMIT 1
	`, normalized, raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
