package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fiootv/comms-gateway/internal/model"
	"github.com/fiootv/comms-gateway/internal/repository"
	"github.com/fiootv/comms-gateway/internal/util"
)

var (
	// ErrCorrelation : the customer lookup failed; nothing was persisted and
	// the provider should retry the whole webhook.
	ErrCorrelation = errors.New("customer correlation failed")
	// ErrPersistence : the conversation insert failed; provider should retry.
	ErrPersistence = errors.New("conversation persist failed")
)

// Message is one inbound provider callback after form decoding, before
// normalization.
type Message struct {
	Channel        model.Channel
	ExternalID     string // provider message id (MessageSid)
	From           string // possibly prefixed sender identifier
	To             string
	Body           string
	ProviderStatus string // MessageStatus, kept in metadata only
	Direction      string // raw Direction field, kept in metadata only
	NumMedia       string // raw NumMedia field
	Media          []model.MediaItem
}

// Result reports what Record did.
type Result struct {
	ConversationID string
	CustomerID     *int64
	Duplicate      bool
}

// Service reconciles inbound messages against customer records and persists
// them as conversation rows.
type Service struct {
	customers repository.CustomersRepository
	convs     repository.ConversationsRepository
	log       *zap.Logger
}

func New(customers repository.CustomersRepository, convs repository.ConversationsRepository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{customers: customers, convs: convs, log: log}
}

// Record runs the inbound pipeline: strip transport prefixes from the sender,
// correlate against customers by raw-or-normalized phone, then insert one
// conversation row with direction=inbound and status=delivered. A message
// from an unknown number is still retained, with a null customer id.
// A replayed webhook (same channel + external id) is a no-op reported via
// Result.Duplicate.
func (s *Service) Record(ctx context.Context, msg Message) (Result, error) {
	cleanFrom := util.StripTransportPrefixes(msg.From)

	cust, err := s.customers.FindByPhone(ctx, msg.From, cleanFrom)
	if err != nil {
		s.log.Error("inbound: customer lookup failed",
			zap.String("channel", msg.Channel.String()),
			zap.String("external_id", msg.ExternalID),
			zap.Error(err))
		return Result{}, fmt.Errorf("%w: %v", ErrCorrelation, err)
	}

	var customerID *int64
	if cust != nil {
		customerID = &cust.ID
	}

	meta := model.InboundMetadata{
		PhoneNumber:   cleanFrom,
		From:          msg.From,
		To:            msg.To,
		MessageStatus: msg.ProviderStatus,
		Direction:     msg.Direction,
		NumMedia:      msg.NumMedia,
		MediaURLs:     msg.Media,
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return Result{}, fmt.Errorf("%w: marshal metadata: %v", ErrPersistence, err)
	}

	conv := model.Conversation{
		ID:         util.NewID(),
		CustomerID: customerID,
		Channel:    msg.Channel,
		Direction:  model.DirectionInbound,
		Body:       msg.Body, // verbatim, never reformatted
		Status:     model.StatusDelivered,
		ExternalID: msg.ExternalID,
		Metadata:   metaJSON,
		CreatedBy:  nil, // webhook inserts are not attributed to an operator
	}

	if err := s.convs.Insert(ctx, nil, conv); err != nil {
		if errors.Is(err, repository.ErrDuplicateConversation) {
			s.log.Info("inbound: duplicate delivery, skipping",
				zap.String("channel", msg.Channel.String()),
				zap.String("external_id", msg.ExternalID))
			return Result{CustomerID: customerID, Duplicate: true}, nil
		}
		s.log.Error("inbound: conversation insert failed",
			zap.String("channel", msg.Channel.String()),
			zap.String("external_id", msg.ExternalID),
			zap.String("body", truncate(msg.Body, 100)),
			zap.Error(err))
		return Result{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.log.Info("inbound: message recorded",
		zap.String("channel", msg.Channel.String()),
		zap.String("external_id", msg.ExternalID),
		zap.String("conversation_id", conv.ID),
		zap.Bool("matched", customerID != nil))

	return Result{ConversationID: conv.ID, CustomerID: customerID}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
