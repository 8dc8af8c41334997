package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"github.com/fiootv/comms-gateway/internal/model"
	"github.com/fiootv/comms-gateway/internal/repository"
)

type fakeCustomers struct {
	byPhone map[string]model.Customer
	err     error
}

func (f *fakeCustomers) FindByPhone(_ context.Context, raw, normalized string) (*model.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, key := range []string{normalized, raw} {
		if c, ok := f.byPhone[key]; ok {
			return &c, nil
		}
	}
	return nil, nil
}

type fakeConversations struct {
	rows []model.Conversation
	err  error
	seen map[string]bool
}

func (f *fakeConversations) Insert(_ context.Context, _ *sqlx.Tx, c model.Conversation) error {
	if f.err != nil {
		return f.err
	}
	key := c.Channel.String() + ":" + c.ExternalID
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	if f.seen[key] {
		return repository.ErrDuplicateConversation
	}
	f.seen[key] = true
	f.rows = append(f.rows, c)
	return nil
}

func (f *fakeConversations) BatchUpdateStatus(_ context.Context, _ *sqlx.Tx, _ []string, _ model.ConversationStatus) error {
	return nil
}

func TestRecord(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	t.Run("correlates by normalized phone", func(t *testing.T) {
		customers := &fakeCustomers{byPhone: map[string]model.Customer{
			"+15551234567": {ID: 42, FullName: "Jordan Smith"},
		}}
		convs := &fakeConversations{}
		svc := New(customers, convs, nil)

		res, err := svc.Record(ctx, Message{
			Channel:    model.ChannelWhatsApp,
			ExternalID: "SM900",
			From:       "whatsapp:+15551234567",
			Body:       "hi",
			Direction:  "inbound",
		})
		assert.NoError(err)
		assert.NotNil(res.CustomerID)
		assert.EqualValues(42, *res.CustomerID)
		assert.Len(convs.rows, 1)

		row := convs.rows[0]
		assert.Equal(model.ChannelWhatsApp, row.Channel)
		assert.Equal(model.DirectionInbound, row.Direction)
		assert.Equal(model.StatusDelivered, row.Status)
		assert.Equal("SM900", row.ExternalID)
		assert.Nil(row.CreatedBy)
	})

	t.Run("correlates by raw identifier", func(t *testing.T) {
		customers := &fakeCustomers{byPhone: map[string]model.Customer{
			"whatsapp:+15551234567": {ID: 7},
		}}
		convs := &fakeConversations{}
		svc := New(customers, convs, nil)

		res, err := svc.Record(ctx, Message{
			Channel:    model.ChannelWhatsApp,
			ExternalID: "SM901",
			From:       "whatsapp:+15551234567",
			Body:       "hi",
		})
		assert.NoError(err)
		assert.NotNil(res.CustomerID)
		assert.EqualValues(7, *res.CustomerID)
	})

	t.Run("unknown sender is still retained", func(t *testing.T) {
		convs := &fakeConversations{}
		svc := New(&fakeCustomers{}, convs, nil)

		res, err := svc.Record(ctx, Message{
			Channel:    model.ChannelSMS,
			ExternalID: "SM123",
			From:       "+15550001111",
			Body:       "Hello",
			Direction:  "inbound",
		})
		assert.NoError(err)
		assert.Nil(res.CustomerID)
		assert.Len(convs.rows, 1)
		assert.Nil(convs.rows[0].CustomerID)
		assert.Equal("SM123", convs.rows[0].ExternalID)
	})

	t.Run("body is preserved verbatim", func(t *testing.T) {
		convs := &fakeConversations{}
		svc := New(&fakeCustomers{}, convs, nil)

		body := "  line one\nline two\t🙂  "
		_, err := svc.Record(ctx, Message{
			Channel:    model.ChannelSMS,
			ExternalID: "SM124",
			From:       "+15550001111",
			Body:       body,
		})
		assert.NoError(err)
		assert.Equal(body, convs.rows[0].Body)
	})

	t.Run("metadata preserves raw provider fields", func(t *testing.T) {
		convs := &fakeConversations{}
		svc := New(&fakeCustomers{}, convs, nil)

		media := []model.MediaItem{{URL: "https://m/0", ContentType: "image/jpeg"}}
		_, err := svc.Record(ctx, Message{
			Channel:        model.ChannelWhatsApp,
			ExternalID:     "SM125",
			From:           "whatsapp:+15550001111",
			To:             "whatsapp:+15559990000",
			Body:           "pic",
			ProviderStatus: "received",
			Direction:      "inbound",
			NumMedia:       "1",
			Media:          media,
		})
		assert.NoError(err)

		var meta model.InboundMetadata
		assert.NoError(json.Unmarshal(convs.rows[0].Metadata, &meta))
		assert.Equal("+15550001111", meta.PhoneNumber)
		assert.Equal("whatsapp:+15550001111", meta.From)
		assert.Equal("whatsapp:+15559990000", meta.To)
		assert.Equal("received", meta.MessageStatus)
		assert.Equal("inbound", meta.Direction)
		assert.Equal("1", meta.NumMedia)
		assert.Equal(media, meta.MediaURLs)
	})

	t.Run("lookup failure aborts before persisting", func(t *testing.T) {
		convs := &fakeConversations{}
		svc := New(&fakeCustomers{err: errors.New("connection refused")}, convs, nil)

		_, err := svc.Record(ctx, Message{
			Channel:    model.ChannelSMS,
			ExternalID: "SM126",
			From:       "+15550001111",
			Body:       "Hello",
		})
		assert.ErrorIs(err, ErrCorrelation)
		assert.Empty(convs.rows)
	})

	t.Run("insert failure is reported", func(t *testing.T) {
		convs := &fakeConversations{err: errors.New("deadlock")}
		svc := New(&fakeCustomers{}, convs, nil)

		_, err := svc.Record(ctx, Message{
			Channel:    model.ChannelSMS,
			ExternalID: "SM127",
			From:       "+15550001111",
			Body:       "Hello",
		})
		assert.ErrorIs(err, ErrPersistence)
	})

	t.Run("replayed webhook is a no-op", func(t *testing.T) {
		convs := &fakeConversations{}
		svc := New(&fakeCustomers{}, convs, nil)

		msg := Message{
			Channel:    model.ChannelSMS,
			ExternalID: "SM128",
			From:       "+15550001111",
			Body:       "Hello",
		}
		first, err := svc.Record(ctx, msg)
		assert.NoError(err)
		assert.False(first.Duplicate)

		second, err := svc.Record(ctx, msg)
		assert.NoError(err)
		assert.True(second.Duplicate)
		assert.Len(convs.rows, 1)
	})
}
