package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseChannel(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		in    string
		want  Channel
		valid bool
	}{
		{"sms", ChannelSMS, true},
		{"SMS", ChannelSMS, true},
		{" whatsapp ", ChannelWhatsApp, true},
		{"email", ChannelEmail, true},
		{"", ChannelSMS, false},
		{"fax", ChannelSMS, false},
	}
	for _, tc := range cases {
		got, ok := ParseChannel(tc.in)
		assert.Equal(tc.want, got, "input %q", tc.in)
		assert.Equal(tc.valid, ok, "input %q", tc.in)
	}
}

func TestConversationStatusValid(t *testing.T) {
	assert := assert.New(t)

	for _, s := range []ConversationStatus{StatusPending, StatusSent, StatusDelivered, StatusFailed} {
		assert.True(s.Valid())
	}
	assert.False(ConversationStatus("queued").Valid())
	assert.False(ConversationStatus("").Valid())
}
