package http

import (
	"net/http"
	"strings"
	"unicode/utf8"

	echo "github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/fiootv/comms-gateway/internal/http/middleware"
	"github.com/fiootv/comms-gateway/internal/metrics"
	"github.com/fiootv/comms-gateway/internal/model"
	"github.com/fiootv/comms-gateway/internal/service/outbound"
	"github.com/fiootv/comms-gateway/internal/util"
)

// Twilio caps a concatenated message at 1600 characters.
const maxBodyRunes = 1600

type sendReq struct {
	Channel    string `json:"channel"` // "sms" | "whatsapp" | "email"
	To         string `json:"to"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	CustomerID int64  `json:"customer_id"`
}

func sendMessageHandler(enq outbound.Enqueuer) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req sendReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}

		channel, ok := model.ParseChannel(req.Channel)
		if !ok {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid channel"})
		}

		req.To = strings.TrimSpace(req.To)
		req.Body = strings.TrimSpace(req.Body)
		req.Subject = strings.TrimSpace(req.Subject)
		if channel != model.ChannelEmail {
			req.To = util.StripTransportPrefixes(req.To)
		}

		if req.To == "" || req.Body == "" || req.CustomerID <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing required fields"})
		}
		if channel == model.ChannelEmail && req.Subject == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing subject"})
		}
		if channel != model.ChannelEmail && utf8.RuneCountInString(req.Body) > maxBodyRunes {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "body too long"})
		}

		agentID, ok := middleware.AgentIDFromCtx(c)
		if !ok || agentID <= 0 {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}

		convID, err := enq.Enqueue(c.Request().Context(), agentID, model.OutboundMessage{
			Channel:    channel,
			To:         req.To,
			Subject:    req.Subject,
			Body:       req.Body,
			CustomerID: req.CustomerID,
		})
		if err != nil {
			log.Errorf("enqueue failed: %v", err)

			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}

		metrics.OutboundMessagesTotal.WithLabelValues("queued", channel.String()).Inc()

		return c.JSON(http.StatusAccepted, map[string]any{
			"enqueued": true,
			"id":       convID,
			"channel":  channel.String(),
		})
	}
}
