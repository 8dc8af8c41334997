package model

// Envelope is the payload published to Kafka (via Debezium outbox SMT).
type Envelope struct {
	ID      string          `json:"id"`       // conversation ULID
	AgentID int64           `json:"agent_id"` // acting operator
	Message OutboundMessage `json:"message"`
}
