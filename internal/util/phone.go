package util

import "strings"

// transportPrefixes are the channel markers Twilio-style providers prepend to
// phone identifiers.
var transportPrefixes = []string{"whatsapp:", "sms:"}

// StripTransportPrefixes removes known channel-transport prefixes from the
// front of a raw identifier, repeatedly, so stacked markers all come off.
// It does not validate or reformat the number itself; input without a prefix
// comes back unchanged. Idempotent.
func StripTransportPrefixes(raw string) string {
	s := raw
	for {
		stripped := false
		for _, p := range transportPrefixes {
			if strings.HasPrefix(s, p) {
				s = s[len(p):]
				stripped = true
			}
		}
		if !stripped {
			return s
		}
	}
}

// HasWhatsAppPrefix reports whether the identifier carries the WhatsApp
// channel marker.
func HasWhatsAppPrefix(raw string) bool {
	return strings.HasPrefix(raw, "whatsapp:")
}
