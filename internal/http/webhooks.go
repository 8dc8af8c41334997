package http

import (
	"errors"
	"net/http"

	echo "github.com/labstack/echo/v4"

	"github.com/fiootv/comms-gateway/internal/metrics"
	"github.com/fiootv/comms-gateway/internal/model"
	"github.com/fiootv/comms-gateway/internal/service/inbound"
	"github.com/fiootv/comms-gateway/internal/util"
)

// webhookRoute fixes the behavior of one inbound endpoint. The three provider
// callbacks share a single flow; only the channel tag and attachment support
// differ per route.
type webhookRoute struct {
	channel       model.Channel
	supportsMedia bool
	detectChannel bool // generic endpoint: infer sms vs whatsapp from prefixes
}

// inboundWebhookHandler accepts a form-encoded provider callback, filters out
// anything that is not an inbound message, and hands the decoded payload to
// the inbound service. One invocation, one of four outcomes: ignored,
// rejected, error, success.
func inboundWebhookHandler(svc *inbound.Service, route webhookRoute) echo.HandlerFunc {
	return func(c echo.Context) error {
		messageSid := c.FormValue("MessageSid")
		from := c.FormValue("From")
		to := c.FormValue("To")
		body := c.FormValue("Body")
		messageStatus := c.FormValue("MessageStatus")
		direction := c.FormValue("Direction")
		numMedia := c.FormValue("NumMedia")

		channel := route.channel
		supportsMedia := route.supportsMedia
		if route.detectChannel {
			if util.HasWhatsAppPrefix(from) || util.HasWhatsAppPrefix(to) {
				channel = model.ChannelWhatsApp
				supportsMedia = true
			} else {
				channel = model.ChannelSMS
				supportsMedia = false
			}
		}

		// Delivery-status callbacks for messages we sent come through the same
		// endpoint; they are acknowledged and dropped here.
		if direction != "inbound" {
			metrics.InboundWebhooksTotal.WithLabelValues(channel.String(), "ignored").Inc()
			return c.JSON(http.StatusOK, map[string]string{"status": "ignored"})
		}

		if messageSid == "" || from == "" || body == "" {
			c.Logger().Warnf("webhook %s: missing required data (sid=%q)", channel, messageSid)
			metrics.InboundWebhooksTotal.WithLabelValues(channel.String(), "rejected").Inc()
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing required data"})
		}

		var media []model.MediaItem
		if supportsMedia {
			media = inbound.ExtractMedia(numMedia, c.FormValue)
		}

		res, err := svc.Record(c.Request().Context(), inbound.Message{
			Channel:        channel,
			ExternalID:     messageSid,
			From:           from,
			To:             to,
			Body:           body,
			ProviderStatus: messageStatus,
			Direction:      direction,
			NumMedia:       numMedia,
			Media:          media,
		})
		if err != nil {
			metrics.InboundWebhooksTotal.WithLabelValues(channel.String(), "error").Inc()
			if errors.Is(err, inbound.ErrCorrelation) {
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
			}
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to store message"})
		}

		if res.Duplicate {
			metrics.InboundWebhooksTotal.WithLabelValues(channel.String(), "duplicate").Inc()
		} else {
			metrics.InboundWebhooksTotal.WithLabelValues(channel.String(), "success").Inc()
		}

		return c.JSON(http.StatusOK, map[string]string{"status": "success"})
	}
}
