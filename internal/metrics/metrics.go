package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	InboundWebhooksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commsgw_inbound_webhooks_total",
			Help: "Inbound webhook invocations by channel and outcome",
		},
		[]string{"channel", "outcome"}, // sms|whatsapp|email , success|duplicate|ignored|rejected|error
	)

	OutboundMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commsgw_outbound_messages_total",
			Help: "Outbound message lifecycle counter by stage and channel",
		},
		[]string{"stage", "channel"}, // queued|sent|failed , sms|whatsapp|email
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		InboundWebhooksTotal,
		OutboundMessagesTotal,
	)
}
