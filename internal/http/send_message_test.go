package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	echo "github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/fiootv/comms-gateway/internal/model"
)

type stubEnqueuer struct {
	last    model.OutboundMessage
	agentID int64
	calls   int
}

func (s *stubEnqueuer) Enqueue(_ context.Context, agentID int64, msg model.OutboundMessage) (string, error) {
	s.calls++
	s.agentID = agentID
	s.last = msg
	return "01K3ZV7Q3E8B4N9XK3ZV7Q3E8B", nil
}

func postSend(h echo.HandlerFunc, body string, agentID int64) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if agentID > 0 {
		c.Set("agent_id", agentID)
	}
	_ = h(c)
	return rec
}

func TestSendMessageHandler(t *testing.T) {
	assert := assert.New(t)

	t.Run("enqueues sms", func(t *testing.T) {
		enq := &stubEnqueuer{}
		rec := postSend(sendMessageHandler(enq),
			`{"channel":"sms","to":"+15550001111","body":"renewal due","customer_id":9}`, 3)
		assert.Equal(http.StatusAccepted, rec.Code)
		assert.Equal(1, enq.calls)
		assert.EqualValues(3, enq.agentID)
		assert.Equal(model.ChannelSMS, enq.last.Channel)
		assert.Equal("+15550001111", enq.last.To)
	})

	t.Run("strips transport prefix from recipient", func(t *testing.T) {
		enq := &stubEnqueuer{}
		rec := postSend(sendMessageHandler(enq),
			`{"channel":"whatsapp","to":"whatsapp:+15550001111","body":"hi","customer_id":9}`, 3)
		assert.Equal(http.StatusAccepted, rec.Code)
		assert.Equal("+15550001111", enq.last.To)
	})

	t.Run("email requires subject", func(t *testing.T) {
		enq := &stubEnqueuer{}
		rec := postSend(sendMessageHandler(enq),
			`{"channel":"email","to":"a@b.example","body":"hi","customer_id":9}`, 3)
		assert.Equal(http.StatusBadRequest, rec.Code)
		assert.Zero(enq.calls)
	})

	t.Run("rejects invalid channel", func(t *testing.T) {
		enq := &stubEnqueuer{}
		rec := postSend(sendMessageHandler(enq),
			`{"channel":"fax","to":"+15550001111","body":"hi","customer_id":9}`, 3)
		assert.Equal(http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects missing customer", func(t *testing.T) {
		enq := &stubEnqueuer{}
		rec := postSend(sendMessageHandler(enq),
			`{"channel":"sms","to":"+15550001111","body":"hi"}`, 3)
		assert.Equal(http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects unauthenticated", func(t *testing.T) {
		enq := &stubEnqueuer{}
		rec := postSend(sendMessageHandler(enq),
			`{"channel":"sms","to":"+15550001111","body":"hi","customer_id":9}`, 0)
		assert.Equal(http.StatusUnauthorized, rec.Code)
		assert.Zero(enq.calls)
	})

	t.Run("rejects oversized sms body", func(t *testing.T) {
		enq := &stubEnqueuer{}
		long := strings.Repeat("x", maxBodyRunes+1)
		rec := postSend(sendMessageHandler(enq),
			`{"channel":"sms","to":"+15550001111","body":"`+long+`","customer_id":9}`, 3)
		assert.Equal(http.StatusBadRequest, rec.Code)
	})
}
