package outbound

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fiootv/comms-gateway/internal/model"
	"github.com/fiootv/comms-gateway/internal/repository"
	"github.com/fiootv/comms-gateway/internal/util"
)

const (
	SMSKafkaTopic      = "comms.sms"
	WhatsAppKafkaTopic = "comms.whatsapp"
	EmailKafkaTopic    = "comms.email"
)

// TopicFor maps a channel to its sender-worker topic.
func TopicFor(ch model.Channel) string {
	switch ch {
	case model.ChannelWhatsApp:
		return WhatsAppKafkaTopic
	case model.ChannelEmail:
		return EmailKafkaTopic
	default:
		return SMSKafkaTopic
	}
}

// Enqueuer is what the HTTP layer needs from this service.
type Enqueuer interface {
	Enqueue(ctx context.Context, agentID int64, msg model.OutboundMessage) (string, error)
}

// Service atomically persists a pending conversation row and its outbox event.
type Service struct {
	db     *sqlx.DB
	convs  repository.ConversationsRepository
	outbox repository.OutboxRepository
}

func New(db *sqlx.DB, convs repository.ConversationsRepository, outbox repository.OutboxRepository) *Service {
	return &Service{db: db, convs: convs, outbox: outbox}
}

var _ Enqueuer = (*Service)(nil)

// Enqueue generates a ULID and writes `conversations(pending)` plus `outbox`
// within a single transaction. The sender worker picks the envelope up from
// Kafka and advances the row to sent or failed. Returns the conversation ID.
func (s *Service) Enqueue(ctx context.Context, agentID int64, msg model.OutboundMessage) (string, error) {
	convID := util.NewID()

	meta := model.OutboundMetadata{Subject: msg.Subject}
	if msg.Channel == model.ChannelEmail {
		meta.EmailAddress = msg.To
	} else {
		meta.PhoneNumber = msg.To
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}

	conv := model.Conversation{
		ID:         convID,
		CustomerID: &msg.CustomerID,
		Channel:    msg.Channel,
		Direction:  model.DirectionOutbound,
		Body:       msg.Body,
		Status:     model.StatusPending,
		ExternalID: convID, // provider id is not known until dispatch
		Metadata:   metaJSON,
		CreatedBy:  &agentID,
	}

	env := model.Envelope{
		ID:      convID,
		AgentID: agentID,
		Message: msg,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.convs.Insert(ctx, tx, conv); err != nil {
		return "", fmt.Errorf("insert conversation pending: %w", err)
	}

	if err := s.outbox.Insert(ctx, tx, "conversation", convID, TopicFor(msg.Channel), payload); err != nil {
		return "", fmt.Errorf("insert outbox: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return convID, nil
}
