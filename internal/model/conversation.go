package model

import (
	"strings"
	"time"
)

type Channel string

const (
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelEmail    Channel = "email"
)

func (c Channel) String() string { return string(c) }

func (c Channel) Valid() bool {
	return c == ChannelSMS || c == ChannelWhatsApp || c == ChannelEmail
}

// ParseChannel normalizes input. Returns (value, true) if valid;
// otherwise (sms, false).
func ParseChannel(s string) (Channel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sms":
		return ChannelSMS, true
	case "whatsapp":
		return ChannelWhatsApp, true
	case "email":
		return ChannelEmail, true
	default:
		return ChannelSMS, false
	}
}

type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

func (d Direction) String() string { return string(d) }

type ConversationStatus string

const (
	StatusPending   ConversationStatus = "pending"
	StatusSent      ConversationStatus = "sent"
	StatusDelivered ConversationStatus = "delivered"
	StatusFailed    ConversationStatus = "failed"
)

func (s ConversationStatus) String() string { return string(s) }

func (s ConversationStatus) Valid() bool {
	return s == StatusPending || s == StatusSent || s == StatusDelivered || s == StatusFailed
}

// Conversation is the DB entity persisted in the conversations table: one row
// per sent or received message. Rows are immutable after creation except for
// status, which the sender worker advances for outbound messages.
type Conversation struct {
	ID         string             `db:"id"`
	CustomerID *int64             `db:"customer_id"` // nil when no correlation was found
	Channel    Channel            `db:"channel"`
	Direction  Direction          `db:"direction"`
	Body       string             `db:"body"`
	Status     ConversationStatus `db:"status"`
	ExternalID string             `db:"external_id"` // provider message id
	Metadata   []byte             `db:"metadata"`    // raw provider fields, JSON, audit only
	CreatedBy  *int64             `db:"created_by"`  // nil for webhook inserts
	CreatedAt  time.Time          `db:"created_at"`
	UpdatedAt  time.Time          `db:"updated_at"`
}

// MediaItem is one attachment declared by the provider on an inbound message.
type MediaItem struct {
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
}

// InboundMetadata is the metadata bag stored alongside an inbound conversation
// row. It preserves the provider's raw fields and is never interpreted by
// downstream logic.
type InboundMetadata struct {
	PhoneNumber   string      `json:"phone_number"`
	From          string      `json:"from"`
	To            string      `json:"to,omitempty"`
	MessageStatus string      `json:"message_status,omitempty"`
	Direction     string      `json:"direction,omitempty"`
	NumMedia      string      `json:"num_media,omitempty"`
	MediaURLs     []MediaItem `json:"media_urls,omitempty"`
}

// OutboundMetadata is the metadata bag for operator-sent messages.
type OutboundMetadata struct {
	PhoneNumber  string `json:"phone_number,omitempty"`
	EmailAddress string `json:"email_address,omitempty"`
	Subject      string `json:"subject,omitempty"`
}
