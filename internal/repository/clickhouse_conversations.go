package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/fiootv/comms-gateway/internal/model"
)

// CHConversationsRepository lists conversation history from ClickHouse (final view).
type CHConversationsRepository interface {
	List(ctx context.Context, f ConversationFilter) ([]model.Conversation, error)
}

// ConversationFilter narrows the report query. Zero values mean "any".
type ConversationFilter struct {
	CustomerID int64
	Channel    model.Channel
	Status     model.ConversationStatus
	Limit      int
	Offset     int
}

type chConversationsRepository struct {
	ch *sqlx.DB // ClickHouse connection
}

func NewCHConversationsRepository(ch *sqlx.DB) CHConversationsRepository {
	return &chConversationsRepository{ch: ch}
}

func (r *chConversationsRepository) List(ctx context.Context, f ConversationFilter) ([]model.Conversation, error) {
	if f.Limit <= 0 || f.Limit > 1000 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	q := `
		SELECT id, customer_id, channel, direction, body, status, external_id, metadata, created_by, created_at, updated_at
		FROM commsgw.conversations_latest
		WHERE 1 = 1
	`
	args := []any{}

	if f.CustomerID > 0 {
		q += " AND customer_id = ?"
		args = append(args, f.CustomerID)
	}
	if f.Channel != "" {
		q += " AND channel = ?"
		args = append(args, f.Channel.String())
	}
	if f.Status != "" {
		q += " AND status = ?"
		args = append(args, f.Status.String())
	}

	q += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, f.Limit, f.Offset)

	var rows []model.Conversation
	if err := r.ch.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}
