package repository

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/fiootv/comms-gateway/internal/model"
)

// ErrDuplicateConversation signals that a row with the same
// (channel, external_id) already exists. Provider webhook retries hit this.
var ErrDuplicateConversation = errors.New("conversation already recorded")

const mysqlErrDuplicateEntry = 1062

// ConversationsRepository defines persistence for the conversations table.
type ConversationsRepository interface {
	// Insert writes one conversation row. Returns ErrDuplicateConversation
	// when (channel, external_id) is already present.
	Insert(ctx context.Context, tx *sqlx.Tx, c model.Conversation) error
	BatchUpdateStatus(ctx context.Context, tx *sqlx.Tx, ids []string, status model.ConversationStatus) error
}

type ConversationsRepositoryImpl struct {
	db *sqlx.DB
}

func NewConversationsRepository(db *sqlx.DB) *ConversationsRepositoryImpl {
	return &ConversationsRepositoryImpl{db: db}
}

var _ ConversationsRepository = (*ConversationsRepositoryImpl)(nil)

func (r *ConversationsRepositoryImpl) withTx(ctx context.Context, tx *sqlx.Tx, fn func(*sqlx.Tx) error) error {
	if tx != nil {
		return fn(tx)
	}
	t, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = t.Rollback() }()
	if err := fn(t); err != nil {
		return err
	}
	return t.Commit()
}

// Insert persists one conversation row as a single atomic statement.
func (r *ConversationsRepositoryImpl) Insert(ctx context.Context, tx *sqlx.Tx, c model.Conversation) error {
	const q = `
		INSERT INTO conversations
		    (id, customer_id, channel, direction, body, status, external_id, metadata, created_by, created_at, updated_at)
		VALUES
		    (?,  ?,           ?,       ?,         ?,    ?,      ?,           ?,        ?,          NOW(),      NOW())
	`
	err := r.withTx(ctx, tx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, q,
			c.ID, c.CustomerID, c.Channel.String(), c.Direction.String(),
			c.Body, c.Status.String(), c.ExternalID, c.Metadata, c.CreatedBy,
		)
		return err
	})
	if isDuplicateEntry(err) {
		return ErrDuplicateConversation
	}
	return err
}

// BatchUpdateStatus updates status for many conversations using a single statement.
func (r *ConversationsRepositoryImpl) BatchUpdateStatus(ctx context.Context, tx *sqlx.Tx, ids []string, status model.ConversationStatus) error {
	if len(ids) == 0 {
		return nil
	}
	const base = `UPDATE conversations SET status = ?, updated_at = NOW() WHERE id IN (?)`
	query, args, err := sqlx.In(base, status, ids)
	if err != nil {
		return err
	}
	query = r.db.Rebind(query)

	return r.withTx(ctx, tx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	})
}

func isDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry
}
