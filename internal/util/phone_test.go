package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripTransportPrefixes(t *testing.T) {
	assert := assert.New(t)

	t.Run("whatsapp prefix", func(t *testing.T) {
		assert.Equal("+15551234567", StripTransportPrefixes("whatsapp:+15551234567"))
	})

	t.Run("sms prefix", func(t *testing.T) {
		assert.Equal("+15551234567", StripTransportPrefixes("sms:+15551234567"))
	})

	t.Run("no prefix unchanged", func(t *testing.T) {
		assert.Equal("+15551234567", StripTransportPrefixes("+15551234567"))
	})

	t.Run("stacked prefixes", func(t *testing.T) {
		assert.Equal("+15551234567", StripTransportPrefixes("whatsapp:sms:+15551234567"))
	})

	t.Run("prefix not at front is kept", func(t *testing.T) {
		assert.Equal("+1555whatsapp:123", StripTransportPrefixes("+1555whatsapp:123"))
	})

	t.Run("no digit reformatting", func(t *testing.T) {
		assert.Equal("00 44 7700-900123", StripTransportPrefixes("00 44 7700-900123"))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal("", StripTransportPrefixes(""))
	})

	t.Run("idempotent", func(t *testing.T) {
		for _, in := range []string{"whatsapp:+15551234567", "+15551234567", "sms:whatsapp:+1", ""} {
			once := StripTransportPrefixes(in)
			assert.Equal(once, StripTransportPrefixes(once))
		}
	})
}

func TestHasWhatsAppPrefix(t *testing.T) {
	assert := assert.New(t)
	assert.True(HasWhatsAppPrefix("whatsapp:+15551234567"))
	assert.False(HasWhatsAppPrefix("+15551234567"))
	assert.False(HasWhatsAppPrefix("sms:+15551234567"))
}
