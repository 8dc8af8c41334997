package model

// OutboundMessage is an operator-initiated send request, as accepted by the
// API and carried through Kafka to the sender worker.
type OutboundMessage struct {
	Channel    Channel `json:"channel"`
	To         string  `json:"to"`
	Subject    string  `json:"subject,omitempty"` // email only
	Body       string  `json:"body"`
	CustomerID int64   `json:"customer_id"`
}
